package bpe

import (
	"strings"

	"github.com/pkg/errors"
)

// Decode returns the text from a sequence of ids: their symbols are concatenated and every
// marker is replaced by the whitespace it stands for.
//
// It fails with ErrUnknownID if any id is outside the vocabulary.
func (e *Engine) Decode(ids []int) (string, error) {
	if e.untrained() {
		return "", ErrUntrainedModel
	}
	var sb strings.Builder
	for _, id := range ids {
		symbol, ok := e.symbols.value(id)
		if !ok {
			return "", errors.Wrapf(ErrUnknownID, "id %d, vocabulary has %d symbols", id, e.symbols.len())
		}
		sb.WriteString(symbol)
	}
	return postprocess(sb.String()), nil
}
