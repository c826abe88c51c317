package sentencepiece

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestTokenizer loads the SentencePiece model pointed to by $WORDBPE_SPM_MODEL, e.g. the
// "tokenizer.model" of google/flan-t5-small, or skips the test.
func newTestTokenizer(t *testing.T) *Tokenizer {
	t.Helper()
	modelPath := os.Getenv("WORDBPE_SPM_MODEL")
	if modelPath == "" {
		t.Skip("WORDBPE_SPM_MODEL not set")
	}
	if _, err := os.Stat(modelPath); err != nil {
		t.Skipf("SentencePiece model %q not available: %v", modelPath, err)
	}
	tok, err := NewFromPath(modelPath)
	require.NoError(t, err)
	return tok
}

func TestNewFromPathErrors(t *testing.T) {
	_, err := NewFromPath("")
	require.Error(t, err)
	_, err = NewFromPath(t.TempDir() + "/missing.model")
	require.Error(t, err)
}

// TestEncodeWithSpansMatchesEncode verifies that EncodeWithSpans produces the same IDs as Encode.
func TestEncodeWithSpansMatchesEncode(t *testing.T) {
	tok := newTestTokenizer(t)
	inputs := []string{
		"hello",
		"hello world",
		"The quick brown fox jumps over the lazy dog.",
		"Multiple  spaces   here",
		"Hello, 世界!",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			ids, err := tok.Encode(input)
			require.NoError(t, err)
			result, err := tok.EncodeWithSpans(input)
			require.NoError(t, err)
			assert.Equal(t, ids, result.IDs)
			require.Len(t, result.Spans, len(result.IDs))
			for i, span := range result.Spans {
				assert.GreaterOrEqual(t, span.Start, 0, "token %d", i)
				assert.LessOrEqual(t, span.Start, span.End, "token %d", i)
				assert.LessOrEqual(t, span.End, len(input), "token %d", i)
			}
		})
	}
}

func TestEncodeEmpty(t *testing.T) {
	tok := newTestTokenizer(t)
	result, err := tok.EncodeWithSpans("")
	require.NoError(t, err)
	assert.Empty(t, result.IDs)
	assert.Empty(t, result.Spans)
}

func TestDecode(t *testing.T) {
	tok := newTestTokenizer(t)
	ids, err := tok.Encode("hello world")
	require.NoError(t, err)
	text, err := tok.Decode(ids)
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
	assert.Positive(t, tok.VocabSize())
}
