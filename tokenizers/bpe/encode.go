package bpe

import (
	"slices"

	"github.com/gomlx/go-wordbpe/tokenizers/api"
	"github.com/pkg/errors"
)

// Encode returns the text encoded into a sequence of ids.
//
// Within each word, the leftmost adjacent pair that has a merge rule is merged, and the scan
// restarts from the beginning of the word, until no pair can be merged. This is not the
// order in which merges were learned when several pairs apply at once.
//
// It fails with ErrUnknownSymbol if the text holds a character never seen in training.
func (e *Engine) Encode(text string) ([]int, error) {
	if e.untrained() {
		return nil, ErrUntrainedModel
	}
	ids := make([]int, 0, len(text)/2)
	for _, word := range splitWords(preprocess(text)) {
		symbols, err := e.encodeWord(word)
		if err != nil {
			return nil, err
		}
		ids = append(ids, symbols...)
	}
	return ids, nil
}

// EncodeWithSpans returns the text encoded into a sequence of ids along with their byte spans.
// It implements api.TokenizerWithSpans.
func (e *Engine) EncodeWithSpans(text string) (api.EncodingResult, error) {
	if e.untrained() {
		return api.EncodingResult{}, ErrUntrainedModel
	}
	result := api.EncodingResult{IDs: []int{}, Spans: []api.TokenSpan{}}
	for _, seg := range segments(text) {
		symbols, err := e.encodeWord(seg.value)
		if err != nil {
			return api.EncodingResult{}, err
		}
		if len(symbols) == 1 {
			// Markers, and words collapsed into a single symbol, cover the whole segment.
			result.IDs = append(result.IDs, symbols[0])
			result.Spans = append(result.Spans, api.TokenSpan{Start: seg.start, End: seg.end})
			continue
		}
		pos := seg.start
		for _, id := range symbols {
			end := pos + len(e.symbols.values[id])
			result.IDs = append(result.IDs, id)
			result.Spans = append(result.Spans, api.TokenSpan{Start: pos, End: end})
			pos = end
		}
	}
	return result, nil
}

// encodeWord encodes one word of preprocessed text.
func (e *Engine) encodeWord(word string) ([]int, error) {
	if isMarker(word) {
		id, ok := e.symbols.lookup(word)
		if !ok {
			return nil, errors.Wrapf(ErrUnknownSymbol, "marker %q", word)
		}
		return []int{id}, nil
	}

	symbols := make([]int, 0, len(word))
	for _, r := range word {
		id, ok := e.symbols.lookup(string(r))
		if !ok {
			return nil, errors.Wrapf(ErrUnknownSymbol, "character %q in word %q", r, word)
		}
		symbols = append(symbols, id)
	}

	for merged := true; merged; {
		merged = false
		for i := 0; i+1 < len(symbols); i++ {
			if result, ok := e.merges[pairKey{symbols[i], symbols[i+1]}]; ok {
				symbols[i] = result
				symbols = slices.Delete(symbols, i+1, i+2)
				merged = true
				break
			}
		}
	}
	return symbols, nil
}
