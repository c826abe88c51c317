// Package sentencepiece wraps Google's SentencePiece tokenizer (through github.com/eliben/go-sentencepiece)
// behind the api.Tokenizer interface, so it can serve as a baseline for the word-bounded BPE tokenizer.
package sentencepiece

import (
	"strings"

	esentencepiece "github.com/eliben/go-sentencepiece"
	"github.com/gomlx/go-wordbpe/tokenizers/api"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// metaspace is the character SentencePiece uses in its pieces to represent a space.
const metaspace = "▁"

// NewFromPath creates a SentencePiece tokenizer from a "tokenizer.model" file, which must be a
// serialized SentencePiece ModelProto.
func NewFromPath(modelPath string) (*Tokenizer, error) {
	if modelPath == "" {
		return nil, errors.New("no SentencePiece model file given")
	}
	proc, err := esentencepiece.NewProcessorFromPath(modelPath)
	if err != nil {
		return nil, errors.Wrapf(err, "can't create sentencepiece tokenizer from %q", modelPath)
	}
	info := proc.ModelInfo()
	klog.V(1).Infof("loaded SentencePiece model %q with %d pieces", modelPath, info.VocabularySize)
	return &Tokenizer{
		Processor: proc,
		Info:      info,
	}, nil
}

// Tokenizer implements api.Tokenizer based on SentencePiece tokenizer by Google.
type Tokenizer struct {
	*esentencepiece.Processor
	Info *esentencepiece.ModelInfo
}

// Compile time assert that sentencepiece.Tokenizer implements api.Tokenizer interface.
var _ api.Tokenizer = &Tokenizer{}

// Compile time assert that sentencepiece.Tokenizer implements api.TokenizerWithSpans interface.
var _ api.TokenizerWithSpans = &Tokenizer{}

// VocabSize returns the number of pieces in the model.
func (p *Tokenizer) VocabSize() int {
	return p.Info.VocabularySize
}

// Encode returns the text encoded into a sequence of ids.
// The error is always nil: SentencePiece maps unknown characters to its unknown token.
func (p *Tokenizer) Encode(text string) ([]int, error) {
	tokens := p.Processor.Encode(text)
	ids := make([]int, len(tokens))
	for i, tok := range tokens {
		ids[i] = tok.ID
	}
	return ids, nil
}

// EncodeWithSpans returns the text encoded into a sequence of ids along with their byte spans.
//
// Pieces are located in the original text after dropping their leading metaspace. A piece that
// can't be found (e.g. a byte-fallback or normalized piece) gets an empty span at the current position.
func (p *Tokenizer) EncodeWithSpans(text string) (api.EncodingResult, error) {
	tokens := p.Processor.Encode(text)
	res := api.EncodingResult{
		IDs:   make([]int, len(tokens)),
		Spans: make([]api.TokenSpan, len(tokens)),
	}
	pos := 0
	for i, tok := range tokens {
		res.IDs[i] = tok.ID
		piece, hasSpace := strings.CutPrefix(tok.Text, metaspace)
		start := pos
		if hasSpace {
			for pos < len(text) && isSpace(text[pos]) {
				pos++
			}
		}
		if piece == "" {
			res.Spans[i] = api.TokenSpan{Start: start, End: pos}
			continue
		}
		if idx := strings.Index(text[pos:], piece); idx >= 0 {
			start = pos + idx
			pos = start + len(piece)
		} else {
			start = pos
		}
		res.Spans[i] = api.TokenSpan{Start: start, End: pos}
	}
	return res, nil
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// Decode returns the text from a sequence of ids.
// The error is always nil.
func (p *Tokenizer) Decode(ids []int) (string, error) {
	return p.Processor.Decode(ids), nil
}
