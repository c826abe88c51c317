// Package api defines the Tokenizer API shared by the word-bounded BPE engine and the
// baseline tokenizers it is compared against.
package api

import "fmt"

// TokenSpan represents the byte span of a token in the original text.
// Start and End are byte offsets (not rune offsets), suitable for slicing
// Go strings directly: originalText[span.Start:span.End].
type TokenSpan struct {
	Start int // start byte position (inclusive)
	End   int // end byte position (exclusive)
}

// EncodingResult contains tokens with their spans in the original text.
type EncodingResult struct {
	IDs   []int       // token IDs
	Spans []TokenSpan // byte spans for each token (use originalText[span.Start:span.End] to extract)
}

// Tokenizer interface allows one convert text to "tokens" (integer ids) and back.
//
// Both directions may fail: a text may contain symbols the vocabulary doesn't know, and a
// sequence of ids may contain ids outside the vocabulary.
type Tokenizer interface {
	Encode(text string) ([]int, error)
	Decode(ids []int) (string, error)
}

// TokenizerWithSpans extends Tokenizer with span tracking capability.
// This is useful to map each token back to its byte position in the original text.
type TokenizerWithSpans interface {
	Tokenizer
	// EncodeWithSpans returns tokens along with their byte spans in the original text.
	EncodeWithSpans(text string) (EncodingResult, error)
}

// Trainer is implemented by tokenizers that learn their vocabulary from a corpus.
// Calling Train again discards the previous vocabulary.
type Trainer interface {
	Train(text string, vocabSize int)
}

// Vocabulary gives read-only access to a tokenizer's symbol table.
type Vocabulary interface {
	VocabSize() int
	IDToToken(id int) (string, bool)
	TokenToID(token string) (int, bool)
}

// SpecialToken is an enum of the reserved whitespace markers.
type SpecialToken int

const (
	TokSpace SpecialToken = iota
	TokNewline
	TokTab
	TokSpecialTokensCount
)

// String implements fmt.Stringer.
func (t SpecialToken) String() string {
	switch t {
	case TokSpace:
		return "space"
	case TokNewline:
		return "newline"
	case TokTab:
		return "tab"
	default:
		return fmt.Sprintf("SpecialToken(%d)", int(t))
	}
}
