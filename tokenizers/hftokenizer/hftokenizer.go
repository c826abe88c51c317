// Package hftokenizer reads and writes trained bpe.Engine vocabularies in a tokenizer.json
// document modeled after HuggingFace's format: the vocabulary as a symbol to ID map, the
// merges as "left right" strings in the order they were learned, and the whitespace markers
// listed as added tokens.
//
// The documents use their own model type, "WordBPE": they are not loadable by HuggingFace
// tokenizers, whose BPE applies merges by rank.
package hftokenizer

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/gomlx/go-wordbpe/tokenizers/api"
	"github.com/gomlx/go-wordbpe/tokenizers/bpe"
	"github.com/pkg/errors"
)

// ModelType is the model.type of documents written by this package.
const ModelType = "WordBPE"

// FileName is the conventional name of tokenizer.json files.
const FileName = "tokenizer.json"

// FormatVersion is the version field of documents written by this package.
const FormatVersion = "1.0"

// TokenizerJSON represents the structure of a tokenizer.json file.
type TokenizerJSON struct {
	Version      string        `json:"version"`
	AddedTokens  []AddedToken  `json:"added_tokens"`
	PreTokenizer *PreTokenizer `json:"pre_tokenizer"`
	Decoder      *Decoder      `json:"decoder"`
	Model        Model         `json:"model"`
}

// AddedToken represents a special token added to the vocabulary.
type AddedToken struct {
	ID         int    `json:"id"`
	Content    string `json:"content"`
	SingleWord bool   `json:"single_word"`
	Normalized bool   `json:"normalized"`
	Special    bool   `json:"special"`
}

// PreTokenizer describes how text is split into words before BPE.
type PreTokenizer struct {
	Type string `json:"type"`
	// Markers maps each registered whitespace character to its marker.
	Markers map[string]string `json:"markers"`
}

// Decoder describes how tokens are turned back into text.
type Decoder struct {
	Type string `json:"type"`
}

// Model represents the tokenizer model.
type Model struct {
	Type   string         `json:"type"`
	Vocab  map[string]int `json:"vocab"`
	Merges []string       `json:"merges"`
}

var markerLiterals = map[api.SpecialToken]string{
	api.TokSpace:   " ",
	api.TokNewline: "\n",
	api.TokTab:     "\t",
}

// FromEngine converts a trained engine to its tokenizer.json representation.
func FromEngine(e *bpe.Engine) (*TokenizerJSON, error) {
	if e.VocabSize() == 0 {
		return nil, bpe.ErrUntrainedModel
	}
	tj := &TokenizerJSON{
		Version: FormatVersion,
		PreTokenizer: &PreTokenizer{
			Type:    "WhitespaceMarkers",
			Markers: make(map[string]string, len(markerLiterals)),
		},
		Decoder: &Decoder{Type: "WhitespaceMarkers"},
		Model: Model{
			Type:   ModelType,
			Vocab:  make(map[string]int, e.VocabSize()),
			Merges: make([]string, 0, len(e.Merges())),
		},
	}
	for id, symbol := range e.Symbols() {
		tj.Model.Vocab[symbol] = id
	}
	for _, m := range e.Merges() {
		left, _ := e.IDToToken(m.Left)
		right, _ := e.IDToToken(m.Right)
		tj.Model.Merges = append(tj.Model.Merges, left+" "+right)
	}
	for tok := api.SpecialToken(0); tok < api.TokSpecialTokensCount; tok++ {
		id, err := e.SpecialTokenID(tok)
		if err != nil {
			return nil, err
		}
		marker, _ := bpe.Marker(tok)
		tj.AddedTokens = append(tj.AddedTokens, AddedToken{ID: id, Content: marker, SingleWord: true, Special: true})
		tj.PreTokenizer.Markers[markerLiterals[tok]] = marker
	}
	return tj, nil
}

// Save writes the trained engine as a tokenizer.json document to w.
func Save(w io.Writer, e *bpe.Engine) error {
	tj, err := FromEngine(e)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(tj); err != nil {
		return errors.Wrapf(err, "failed to encode tokenizer.json")
	}
	return nil
}

// SaveFile writes the trained engine to a tokenizer.json file at filePath.
func SaveFile(filePath string, e *bpe.Engine) error {
	var buf bytes.Buffer
	if err := Save(&buf, e); err != nil {
		return err
	}
	if err := os.WriteFile(filePath, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write tokenizer.json file %q", filePath)
	}
	return nil
}

// NewFromFile loads a trained engine from a local tokenizer.json file path.
func NewFromFile(filePath string) (*bpe.Engine, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read tokenizer.json file %q", filePath)
	}
	e, err := NewFromContent(content)
	if err != nil {
		return nil, errors.WithMessagef(err, "while loading %q", filePath)
	}
	return e, nil
}

// NewFromContent loads a trained engine from tokenizer.json content.
func NewFromContent(content []byte) (*bpe.Engine, error) {
	var tj TokenizerJSON
	if err := json.Unmarshal(content, &tj); err != nil {
		return nil, errors.Wrapf(err, "failed to parse tokenizer.json")
	}
	return tj.Engine()
}

// Engine rebuilds the bpe.Engine described by tj.
func (tj *TokenizerJSON) Engine() (*bpe.Engine, error) {
	if tj.Model.Type != ModelType {
		return nil, errors.Errorf("unsupported model type %q, want %q", tj.Model.Type, ModelType)
	}

	// Build reverse vocab (id -> token), which must be dense.
	symbols := make([]string, len(tj.Model.Vocab))
	seen := make([]bool, len(tj.Model.Vocab))
	for token, id := range tj.Model.Vocab {
		if id < 0 || id >= len(symbols) {
			return nil, errors.Errorf("token %q has id %d, outside of vocabulary of %d tokens", token, id, len(symbols))
		}
		if seen[id] {
			return nil, errors.Errorf("id %d is assigned to both %q and %q", id, symbols[id], token)
		}
		symbols[id] = token
		seen[id] = true
	}

	merges := make([][2]string, 0, len(tj.Model.Merges))
	for i, merge := range tj.Model.Merges {
		// Symbols never hold U+0020, so the first space is the separator.
		left, right, ok := strings.Cut(merge, " ")
		if !ok || left == "" || right == "" {
			return nil, errors.Errorf("merge #%d %q is not of the form \"left right\"", i, merge)
		}
		merges = append(merges, [2]string{left, right})
	}

	e, err := bpe.FromVocabulary(symbols, merges)
	if err != nil {
		return nil, errors.WithMessagef(err, "invalid tokenizer.json vocabulary")
	}

	for _, at := range tj.AddedTokens {
		if id, ok := e.TokenToID(at.Content); !ok || id != at.ID {
			return nil, errors.Errorf("added token %q has id %d, but the vocabulary disagrees", at.Content, at.ID)
		}
	}
	return e, nil
}
