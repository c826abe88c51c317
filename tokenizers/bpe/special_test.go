package bpe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreprocess(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"word", "word"},
		{"a b", "a [SPACE] b"},
		{"a\nb\tc", "a [NEWLINE] b [TAB] c"},
		{"  ", " [SPACE]  [SPACE] "},
		{"x\r\ny", "x\r [NEWLINE] y"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, preprocess(tt.in), "preprocess(%q)", tt.in)
	}
}

func TestPostprocess(t *testing.T) {
	assert.Equal(t, "a b\nc\td", postprocess("a[SPACE]b[NEWLINE]c[TAB]d"))
	assert.Equal(t, "[SPACE", postprocess("[SPACE"))
	assert.Equal(t, "x[ SPACE]", postprocess("x[[SPACE]SPACE]"))
	for _, text := range []string{"", "plain", " lead", "mid dle\n", "\t\t \n"} {
		assert.Equal(t, text, postprocess(concatWords(splitWords(preprocess(text)))))
	}
}

func concatWords(words []string) string {
	var out string
	for _, w := range words {
		out += w
	}
	return out
}

func TestSplitWords(t *testing.T) {
	assert.Equal(t, []string{"a", MarkerSpace, "b"}, splitWords(preprocess("a b")))
	assert.Equal(t, []string{MarkerSpace, MarkerSpace}, splitWords(preprocess("  ")))
	// Other Unicode whitespace is part of the word.
	assert.Equal(t, []string{"a　b\r", MarkerNewline}, splitWords(preprocess("a　b\r\n")))
	assert.Empty(t, splitWords(preprocess("")))
}

func TestSegmentsMatchSplitWords(t *testing.T) {
	for _, text := range []string{"", "a", " a", "a ", "ab  cd\n\tef", "博士 学位\r\n论文", "[SPACE] x"} {
		segs := segments(text)
		words := splitWords(preprocess(text))
		if assert.Len(t, segs, len(words), "%q", text) {
			for i, seg := range segs {
				assert.Equal(t, words[i], seg.value)
				if !isMarker(seg.value) || seg.end-seg.start > 1 {
					assert.Equal(t, seg.value, text[seg.start:seg.end])
				}
			}
		}
	}
}
