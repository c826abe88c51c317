// Package corpus loads the text files used to train and evaluate tokenizers.
package corpus

import (
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/exp/mmap"
	"k8s.io/klog/v2"
)

// Load returns the contents of the text file at path.
//
// The file is memory-mapped and copied out as a string; it must be valid UTF-8.
func Load(path string) (string, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to mmap corpus %q", path)
	}
	defer func() { _ = reader.Close() }()

	buf := make([]byte, reader.Len())
	if len(buf) > 0 {
		if _, err := reader.ReadAt(buf, 0); err != nil {
			return "", errors.Wrapf(err, "failed to read corpus %q", path)
		}
	}
	if !utf8.Valid(buf) {
		return "", errors.Errorf("corpus %q is not valid UTF-8", path)
	}
	klog.V(1).Infof("loaded corpus %q: %d bytes", path, len(buf))
	return string(buf), nil
}

// LoadAll loads every path, in order.
func LoadAll(paths ...string) ([]string, error) {
	texts := make([]string, 0, len(paths))
	for _, path := range paths {
		text, err := Load(path)
		if err != nil {
			return nil, err
		}
		texts = append(texts, text)
	}
	return texts, nil
}

// Concat joins texts into a single training corpus.
// Texts are separated by a newline, so the last word of one text never fuses with the first word of the next.
func Concat(texts ...string) string {
	return strings.Join(texts, "\n")
}
