package artifacts

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRun() Run {
	return Run{
		Corpus:     "corpus.txt",
		Symbols:    []string{"[NEWLINE]", "[SPACE]", "[TAB]", "a", "b", "ab", "　"},
		NumMerges:  1,
		IDs:        []int{5, 1, 3, 6, 0},
		Decoded:    "ab a　\n",
		RoundTrip:  true,
		InputChars: 6,
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestWriteRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w := NewWriter(dir)
	run := testRun()
	manifest, err := w.WriteRun(run)
	require.NoError(t, err)

	assert.Equal(t, "5\n1\n3\n6\n0\n", readFile(t, w.Path(IDsFile)))
	assert.Equal(t, run.Decoded, readFile(t, w.Path(DecodedFile)))
	assert.Equal(t,
		"0\t\"[NEWLINE]\"\n1\t\"[SPACE]\"\n2\t\"[TAB]\"\n3\t\"a\"\n4\t\"b\"\n5\t\"ab\"\n6\t\"\\u3000\"\n",
		readFile(t, w.Path(TokensFile)))

	rows, err := parquet.ReadFile[TokenRow](w.Path(ParquetFile))
	require.NoError(t, err)
	require.Len(t, rows, len(run.IDs))
	assert.Equal(t, TokenRow{Position: 0, ID: 5, Token: "ab"}, rows[0])
	assert.Equal(t, TokenRow{Position: 4, ID: 0, Token: "[NEWLINE]"}, rows[4])

	_, err = uuid.Parse(manifest.RunID)
	require.NoError(t, err)
	read, err := ReadManifest(w.Path(ManifestFile))
	require.NoError(t, err)
	assert.Equal(t, manifest.RunID, read.RunID)
	assert.Equal(t, 7, read.VocabSize)
	assert.Equal(t, 1, read.NumMerges)
	assert.Equal(t, 5, read.NumTokens)
	assert.Equal(t, 6, read.InputChars)
	assert.True(t, read.RoundTrip)

	// No temporary files are left behind.
	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestWriteRunInvalidID(t *testing.T) {
	run := testRun()
	run.IDs = append(run.IDs, len(run.Symbols))
	_, err := NewWriter(t.TempDir()).WriteRun(run)
	require.Error(t, err)
}

func TestWriteRunConcurrent(t *testing.T) {
	w := NewWriter(t.TempDir())
	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = w.WriteRun(testRun())
		}()
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
	ids, err := ReadIDs(w.Path(IDsFile))
	require.NoError(t, err)
	assert.Equal(t, testRun().IDs, ids)
}

func TestWriteFile(t *testing.T) {
	w := NewWriter(filepath.Join(t.TempDir(), "nested", "out"))
	require.NoError(t, w.WriteFile("tokenizer.json", []byte("{}\n")))
	assert.Equal(t, "{}\n", readFile(t, w.Path("tokenizer.json")))
}

func TestParseIDs(t *testing.T) {
	ids, err := ParseIDs([]byte("1\n2\n\n 30 \r\n4"))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 30, 4}, ids)

	ids, err = ParseIDs(nil)
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = ParseIDs([]byte("1\nx\n"))
	require.Error(t, err)
}

func TestReadIDsMissing(t *testing.T) {
	_, err := ReadIDs(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}
