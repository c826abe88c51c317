// Package bpe implements a word-bounded Byte-Pair-Encoding tokenizer that learns its
// vocabulary and merge rules from a training corpus.
//
// Words are delimited by whitespace, and whitespace itself is kept as reserved marker
// symbols ([SPACE], [NEWLINE], [TAB]) so that decoding restores the original text exactly.
// Merges never cross a word boundary.
//
// An Engine is not safe for concurrent use while Train runs. Once trained, concurrent
// calls to Encode, Decode and the read-only accessors are safe.
package bpe

import (
	"github.com/gomlx/go-wordbpe/tokenizers/api"
	"github.com/pkg/errors"
)

var (
	// ErrUntrainedModel is returned by Encode and Decode before the vocabulary is populated.
	ErrUntrainedModel = errors.New("tokenizer needs to be trained first")

	// ErrUnknownSymbol is returned by Encode when the text holds a character outside the vocabulary.
	ErrUnknownSymbol = errors.New("unknown symbol")

	// ErrUnknownID is returned by Decode for an ID outside the vocabulary.
	ErrUnknownID = errors.New("unknown token id")
)

// Engine holds a symbol vocabulary, its inverse and the ordered merge-rule table.
type Engine struct {
	symbols   *symbolTable
	merges    map[pairKey]int
	mergeList []Merge
}

// Compile time assert that Engine implements the api interfaces.
var (
	_ api.TokenizerWithSpans = &Engine{}
	_ api.Trainer            = &Engine{}
	_ api.Vocabulary         = &Engine{}
)

// New returns an untrained Engine.
func New() *Engine {
	e := &Engine{}
	e.reset()
	return e
}

func (e *Engine) reset() {
	e.symbols = newSymbolTable()
	e.merges = make(map[pairKey]int)
	e.mergeList = nil
}

// FromVocabulary rebuilds a trained Engine from its symbols in ID order and its merges in
// the order they were learned, as (left, right) symbol strings.
//
// It checks the invariants Train guarantees: symbols are distinct, every marker is present,
// and each merge refers to known symbols whose concatenation is itself a symbol.
func FromVocabulary(symbols []string, merges [][2]string) (*Engine, error) {
	e := New()
	for id, s := range symbols {
		if s == "" {
			return nil, errors.Errorf("symbol %d is empty", id)
		}
		if _, created := e.symbols.intern(s); !created {
			return nil, errors.Errorf("symbol %q is duplicated (id %d)", s, id)
		}
	}
	for _, sp := range specialTokens {
		if _, ok := e.symbols.lookup(sp.marker); !ok {
			return nil, errors.Errorf("vocabulary lacks the %s marker %q", sp.token, sp.marker)
		}
	}
	for i, m := range merges {
		left, ok := e.symbols.lookup(m[0])
		if !ok {
			return nil, errors.Errorf("merge #%d: left symbol %q not in vocabulary", i, m[0])
		}
		right, ok := e.symbols.lookup(m[1])
		if !ok {
			return nil, errors.Errorf("merge #%d: right symbol %q not in vocabulary", i, m[1])
		}
		result, ok := e.symbols.lookup(m[0] + m[1])
		if !ok {
			return nil, errors.Errorf("merge #%d: merged symbol %q not in vocabulary", i, m[0]+m[1])
		}
		key := pairKey{left, right}
		if _, dup := e.merges[key]; dup {
			return nil, errors.Errorf("merge #%d: pair (%q, %q) is duplicated", i, m[0], m[1])
		}
		e.merges[key] = result
		e.mergeList = append(e.mergeList, Merge{Left: left, Right: right, Result: result})
	}
	return e, nil
}

func (e *Engine) untrained() bool {
	return e.symbols == nil || e.symbols.len() == 0
}

// VocabSize returns the number of symbols in the vocabulary.
func (e *Engine) VocabSize() int {
	if e.symbols == nil {
		return 0
	}
	return e.symbols.len()
}

// Symbols returns the vocabulary in ID order: Symbols()[id] is the symbol of id.
func (e *Engine) Symbols() []string {
	if e.symbols == nil {
		return nil
	}
	out := make([]string, len(e.symbols.values))
	copy(out, e.symbols.values)
	return out
}

// Merges returns the merge rules in the order they were learned.
func (e *Engine) Merges() []Merge {
	out := make([]Merge, len(e.mergeList))
	copy(out, e.mergeList)
	return out
}

// TokenToID converts a symbol to its ID.
func (e *Engine) TokenToID(token string) (int, bool) {
	if e.symbols == nil {
		return 0, false
	}
	return e.symbols.lookup(token)
}

// IDToToken converts an ID to its symbol.
func (e *Engine) IDToToken(id int) (string, bool) {
	if e.symbols == nil {
		return "", false
	}
	return e.symbols.value(id)
}

// SpecialTokenID returns the ID of the marker for the given special token.
func (e *Engine) SpecialTokenID(token api.SpecialToken) (int, error) {
	if e.untrained() {
		return 0, ErrUntrainedModel
	}
	if token < 0 || int(token) >= len(specialTokens) {
		return 0, errors.Errorf("unknown special token: %s (%d)", token, int(token))
	}
	id, ok := e.symbols.lookup(specialTokens[token].marker)
	if !ok {
		return 0, errors.Errorf("special token %s not found", token)
	}
	return id, nil
}

// Marker returns the reserved marker symbol for the given special token.
func Marker(token api.SpecialToken) (string, bool) {
	if token < 0 || int(token) >= len(specialTokens) {
		return "", false
	}
	return specialTokens[token].marker, true
}
