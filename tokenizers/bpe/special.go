package bpe

import (
	"strings"

	"github.com/gomlx/go-wordbpe/tokenizers/api"
)

// Reserved markers standing in for literal whitespace. They are seeded into every
// vocabulary and are never split or merged.
const (
	MarkerSpace   = "[SPACE]"
	MarkerNewline = "[NEWLINE]"
	MarkerTab     = "[TAB]"
)

type specialToken struct {
	token   api.SpecialToken
	marker  string
	literal rune
}

// specialTokens is indexed by api.SpecialToken.
var specialTokens = []specialToken{
	{api.TokSpace, MarkerSpace, ' '},
	{api.TokNewline, MarkerNewline, '\n'},
	{api.TokTab, MarkerTab, '\t'},
}

var (
	preprocessReplacer  *strings.Replacer
	postprocessReplacer *strings.Replacer
	markers             map[string]struct{}
	literals            map[rune]string
)

func init() {
	var pre, post []string
	markers = make(map[string]struct{}, len(specialTokens))
	literals = make(map[rune]string, len(specialTokens))
	for _, sp := range specialTokens {
		pre = append(pre, string(sp.literal), " "+sp.marker+" ")
		post = append(post, sp.marker, string(sp.literal))
		markers[sp.marker] = struct{}{}
		literals[sp.literal] = sp.marker
	}
	preprocessReplacer = strings.NewReplacer(pre...)
	postprocessReplacer = strings.NewReplacer(post...)
}

// preprocess turns every registered whitespace character into a freestanding marker word.
func preprocess(text string) string {
	return preprocessReplacer.Replace(text)
}

// postprocess restores the literal whitespace behind every marker.
func postprocess(text string) string {
	return postprocessReplacer.Replace(text)
}

// splitWords splits preprocessed text into words. Only U+0020 separates words: every
// registered whitespace character has already become a marker word, and any other
// character, including other Unicode spaces, belongs to the word it appears in.
func splitWords(preprocessed string) []string {
	return strings.FieldsFunc(preprocessed, func(r rune) bool { return r == ' ' })
}

func isMarker(word string) bool {
	_, ok := markers[word]
	return ok
}

// segment is a word of the original (not preprocessed) text with its byte span.
type segment struct {
	value      string
	start, end int
}

// segments yields the same words as splitWords(preprocess(text)), but keeps track of where
// each one sits in text. A registered whitespace character yields its marker as value.
func segments(text string) []segment {
	var out []segment
	wordStart := -1
	for i, r := range text {
		marker, isSpace := literals[r]
		if !isSpace {
			if wordStart < 0 {
				wordStart = i
			}
			continue
		}
		if wordStart >= 0 {
			out = append(out, segment{value: text[wordStart:i], start: wordStart, end: i})
			wordStart = -1
		}
		out = append(out, segment{value: marker, start: i, end: i + 1})
	}
	if wordStart >= 0 {
		out = append(out, segment{value: text[wordStart:], start: wordStart, end: len(text)})
	}
	return out
}
