// Package artifacts writes the outputs of a tokenization run to an output directory.
//
// Every file is first written to a temporary file in the same directory and then atomically
// renamed into place. A run holds an exclusive lock on "<dir>/.lock" while it writes, so
// concurrent processes sharing an output directory never interleave their files.
package artifacts

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// DefaultDirCreationPerm is used when creating the output directory.
var DefaultDirCreationPerm = os.FileMode(0755)

// Names of the files written by WriteRun.
const (
	IDsFile      = "ids.txt"
	TokensFile   = "tokens.txt"
	DecodedFile  = "decoded.txt"
	ParquetFile  = "ids.parquet"
	ManifestFile = "manifest.json"
	lockFile     = ".lock"
)

// Run holds the results of training on a corpus, encoding it and decoding it back.
type Run struct {
	// Corpus is the path of the input text, informative only.
	Corpus string

	// Symbols is the vocabulary in ID order.
	Symbols []string

	// NumMerges is the number of merges learned.
	NumMerges int

	// IDs is the encoded corpus.
	IDs []int

	// Decoded is the decoding of IDs.
	Decoded string

	// RoundTrip reports whether Decoded equals the original corpus.
	RoundTrip bool

	// InputChars is the number of characters (runes) in the original corpus.
	InputChars int
}

// Manifest is the content of manifest.json.
type Manifest struct {
	RunID      string    `json:"run_id"`
	CreatedAt  time.Time `json:"created_at"`
	Corpus     string    `json:"corpus,omitempty"`
	VocabSize  int       `json:"vocab_size"`
	NumMerges  int       `json:"num_merges"`
	NumTokens  int       `json:"num_tokens"`
	InputChars int       `json:"input_chars"`
	RoundTrip  bool      `json:"round_trip"`
	Files      []string  `json:"files"`
}

// TokenRow is one row of ids.parquet.
type TokenRow struct {
	Position int64  `parquet:"position"`
	ID       int64  `parquet:"id"`
	Token    string `parquet:"token"`
}

// Writer writes runs to an output directory.
type Writer struct {
	Dir string
}

// NewWriter returns a Writer rooted at dir. The directory is created on the first write.
func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir}
}

// Path returns the path of the given file name in the output directory.
func (w *Writer) Path(name string) string {
	return filepath.Join(w.Dir, name)
}

// WriteRun writes all files of the run, and returns its manifest.
func (w *Writer) WriteRun(run Run) (*Manifest, error) {
	for i, id := range run.IDs {
		if id < 0 || id >= len(run.Symbols) {
			return nil, errors.Errorf("token #%d has id %d, outside of vocabulary of %d symbols", i, id, len(run.Symbols))
		}
	}
	if err := os.MkdirAll(w.Dir, DefaultDirCreationPerm); err != nil {
		return nil, errors.Wrapf(err, "failed to create output directory %q", w.Dir)
	}

	manifest := &Manifest{
		RunID:      uuid.New().String(),
		CreatedAt:  time.Now().UTC(),
		Corpus:     run.Corpus,
		VocabSize:  len(run.Symbols),
		NumMerges:  run.NumMerges,
		NumTokens:  len(run.IDs),
		InputChars: run.InputChars,
		RoundTrip:  run.RoundTrip,
		Files:      []string{IDsFile, TokensFile, DecodedFile, ParquetFile},
	}
	outputs := []struct {
		name  string
		write func(io.Writer) error
	}{
		{IDsFile, func(out io.Writer) error { return WriteIDs(out, run.IDs) }},
		{TokensFile, func(out io.Writer) error { return writeTokens(out, run.Symbols) }},
		{DecodedFile, func(out io.Writer) error { _, err := io.WriteString(out, run.Decoded); return err }},
		{ParquetFile, func(out io.Writer) error { return writeParquet(out, run.IDs, run.Symbols) }},
		// Manifest goes last: its presence marks a complete run.
		{ManifestFile, func(out io.Writer) error { return writeJSON(out, manifest) }},
	}

	lockPath := w.Path(lockFile)
	var mainErr error
	errLock := execOnFileLock(lockPath, func() {
		for _, output := range outputs {
			if mainErr = writeAtomic(w.Path(output.name), output.write); mainErr != nil {
				return
			}
		}
	})
	if mainErr != nil {
		return nil, mainErr
	}
	if errLock != nil {
		return nil, errors.WithMessagef(errLock, "while locking %q to write run", lockPath)
	}
	klog.V(1).Infof("run %s: wrote %d files to %q", manifest.RunID, len(outputs), w.Dir)
	return manifest, nil
}

// WriteFile atomically writes one extra file to the output directory, under the directory lock.
func (w *Writer) WriteFile(name string, content []byte) error {
	if err := os.MkdirAll(w.Dir, DefaultDirCreationPerm); err != nil {
		return errors.Wrapf(err, "failed to create output directory %q", w.Dir)
	}
	lockPath := w.Path(lockFile)
	var mainErr error
	errLock := execOnFileLock(lockPath, func() {
		mainErr = writeAtomic(w.Path(name), func(out io.Writer) error {
			_, err := out.Write(content)
			return err
		})
	})
	if mainErr != nil {
		return mainErr
	}
	if errLock != nil {
		return errors.WithMessagef(errLock, "while locking %q to write %q", lockPath, name)
	}
	return nil
}

// writeAtomic writes to filePath+".tmp" and then atomically moves it to filePath.
func writeAtomic(filePath string, write func(io.Writer) error) error {
	tmpPath := filePath + ".tmp"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return errors.Wrapf(err, "creating temporary file %q", tmpPath)
	}
	var tmpFileClosed bool
	defer func() {
		// If we exit with an error, make sure to close and remove unfinished temporary file.
		if !tmpFileClosed {
			if err := tmpFile.Close(); err != nil {
				klog.Warningf("Failed closing temporary file %q: %v", tmpPath, err)
			}
			if err := os.Remove(tmpPath); err != nil {
				klog.Warningf("Failed removing temporary file %q: %v", tmpPath, err)
			}
		}
	}()

	buffered := bufio.NewWriter(tmpFile)
	if err := write(buffered); err != nil {
		return errors.Wrapf(err, "while writing %q", tmpPath)
	}
	if err := buffered.Flush(); err != nil {
		return errors.Wrapf(err, "while writing %q", tmpPath)
	}
	tmpFileClosed = true
	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrapf(err, "failed to close temporary file %q", tmpPath)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrapf(err, "failed to move %q to %q", tmpPath, filePath)
	}
	return nil
}

// execOnFileLock opens the lockPath file (or creates if it doesn't yet exist), locks it, and executes the function.
// If the lockPath is already locked, it polls every 50 to 100 milliseconds (randomly), until it acquires the lock.
func execOnFileLock(lockPath string, fn func()) (err error) {
	fileLock := flock.New(lockPath)
	for {
		locked, err := fileLock.TryLock()
		if err != nil {
			return errors.Wrapf(err, "while trying to lock %q", lockPath)
		}
		if locked {
			break
		}
		time.Sleep(time.Millisecond * time.Duration(50+rand.Intn(50)))
	}

	// Setup clean up in a deferred function, so it happens even if `fn()` panics.
	defer func() {
		unlockErr := fileLock.Unlock()
		if unlockErr != nil {
			if err == nil {
				err = errors.Wrapf(unlockErr, "unlocking file %q", lockPath)
			} else {
				klog.Errorf("Error unlocking file %q: %v", lockPath, unlockErr)
			}
		}
	}()

	fn()
	return
}

// WriteIDs writes one token ID per line, the format read back by ReadIDs.
func WriteIDs(out io.Writer, ids []int) error {
	for _, id := range ids {
		if _, err := fmt.Fprintln(out, id); err != nil {
			return err
		}
	}
	return nil
}

// writeTokens writes one "id<TAB>symbol" line per symbol, with the symbol Go-quoted so
// that whitespace-like runes inside symbols stay visible.
func writeTokens(out io.Writer, symbols []string) error {
	for id, symbol := range symbols {
		if _, err := fmt.Fprintf(out, "%d\t%s\n", id, strconv.Quote(symbol)); err != nil {
			return err
		}
	}
	return nil
}

func writeParquet(out io.Writer, ids []int, symbols []string) error {
	rows := make([]TokenRow, len(ids))
	for i, id := range ids {
		rows[i] = TokenRow{Position: int64(i), ID: int64(id), Token: symbols[id]}
	}
	return parquet.Write(out, rows)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// ReadIDs reads a file with one token ID per line, as written to ids.txt.
// Blank lines are ignored.
func ReadIDs(path string) ([]int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read ids file %q", path)
	}
	return ParseIDs(content)
}

// ParseIDs parses whitespace-separated token IDs.
func ParseIDs(content []byte) ([]int, error) {
	fields := strings.Fields(string(content))
	ids := make([]int, 0, len(fields))
	for i, field := range fields {
		id, err := strconv.Atoi(field)
		if err != nil {
			return nil, errors.Wrapf(err, "token #%d %q is not an integer", i, field)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ReadManifest reads the manifest.json of a completed run.
func ReadManifest(path string) (*Manifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read manifest %q", path)
	}
	var manifest Manifest
	if err := json.Unmarshal(content, &manifest); err != nil {
		return nil, errors.Wrapf(err, "failed to parse manifest %q", path)
	}
	return &manifest, nil
}
