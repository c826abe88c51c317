package bpe

import (
	"maps"
	"slices"
	"strings"

	"github.com/emirpasic/gods/v2/maps/linkedhashmap"
	"k8s.io/klog/v2"
)

// trainingWord is one distinct word of the corpus as its current symbol sequence.
type trainingWord struct {
	symbols []int
	freq    int
}

// trainingState is the word-frequency table: distinct words in order of first appearance in
// the corpus. A state is never modified once built; each training step returns a new one.
type trainingState struct {
	words []trainingWord
}

// Train learns the vocabulary and merge rules from text, discarding any previous training.
//
// The base vocabulary holds every character of text plus the whitespace markers, sorted and
// numbered from 0. Then, up to vocabSize minus the base vocabulary size times, the most
// frequent adjacent pair of symbols is merged into a new symbol. Ties go to the pair found
// first when scanning words in order of first appearance, each word left to right. Training
// stops early when every word has become a single symbol.
//
// Pair statistics are recomputed from scratch after every merge, so the cost grows with
// corpus size times the number of merges: bound both for large inputs.
func (e *Engine) Train(text string, vocabSize int) {
	e.reset()

	words, counts := countWords(splitWords(preprocess(text)))
	for _, s := range baseAlphabet(words) {
		e.symbols.intern(s)
	}
	state := newTrainingState(words, counts, e.symbols)

	numMerges := vocabSize - e.symbols.len()
	klog.V(1).Infof("bpe: %d distinct words, base vocabulary of %d symbols, %d merges requested",
		len(words), e.symbols.len(), max(numMerges, 0))
	if numMerges <= 0 {
		return
	}

	for i := 0; i < numMerges; i++ {
		next, merge, ok := e.step(state)
		if !ok {
			klog.V(1).Infof("bpe: stopped after %d merges, no pairs left", i)
			break
		}
		state = next
		if klog.V(2).Enabled() {
			klog.Infof("bpe: merge %d/%d %q + %q -> %q (id %d)", i+1, numMerges,
				e.symbols.values[merge.Left], e.symbols.values[merge.Right],
				e.symbols.values[merge.Result], merge.Result)
		}
	}
	klog.V(1).Infof("bpe: vocabulary of %d symbols, %d merges", e.symbols.len(), len(e.mergeList))
}

// step performs one merge: it picks the best pair of st, records the merge rule and returns
// the rewritten state. It returns false if st has no adjacent pairs left.
func (e *Engine) step(st trainingState) (trainingState, Merge, bool) {
	pair, _, ok := bestPair(st.pairStats())
	if !ok {
		return st, Merge{}, false
	}
	// A concatenation learned earlier through another pair keeps its ID.
	result, _ := e.symbols.intern(e.symbols.values[pair.Left] + e.symbols.values[pair.Right])
	merge := Merge{Left: pair.Left, Right: pair.Right, Result: result}
	e.merges[pair] = result
	e.mergeList = append(e.mergeList, merge)
	return st.apply(pair, result), merge, true
}

// countWords returns the distinct words in order of first appearance and their counts.
func countWords(words []string) ([]string, map[string]int) {
	counts := make(map[string]int)
	var order []string
	for _, w := range words {
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}
	return order, counts
}

// baseAlphabet returns the sorted set of every character of the non-marker words plus all markers.
func baseAlphabet(words []string) []string {
	set := make(map[string]struct{})
	for _, sp := range specialTokens {
		set[sp.marker] = struct{}{}
	}
	for _, w := range words {
		if isMarker(w) {
			continue
		}
		for _, r := range w {
			set[string(r)] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(set))
}

func newTrainingState(words []string, counts map[string]int, symbols *symbolTable) trainingState {
	st := trainingState{words: make([]trainingWord, 0, len(words))}
	for _, w := range words {
		var ids []int
		if isMarker(w) {
			id, _ := symbols.lookup(w)
			ids = []int{id}
		} else {
			ids = make([]int, 0, len(w))
			for _, r := range w {
				id, _ := symbols.lookup(string(r))
				ids = append(ids, id)
			}
		}
		st.words = append(st.words, trainingWord{symbols: ids, freq: counts[w]})
	}
	return st
}

// pairStats counts every adjacent pair, weighted by word frequency. The returned map
// iterates in order of first encounter.
func (st trainingState) pairStats() *linkedhashmap.Map[pairKey, int] {
	stats := linkedhashmap.New[pairKey, int]()
	for _, w := range st.words {
		for i := 0; i+1 < len(w.symbols); i++ {
			key := pairKey{w.symbols[i], w.symbols[i+1]}
			count, _ := stats.Get(key)
			stats.Put(key, count+w.freq)
		}
	}
	return stats
}

// bestPair returns the pair with the strictly highest count; the earliest one wins ties.
func bestPair(stats *linkedhashmap.Map[pairKey, int]) (best pairKey, bestCount int, found bool) {
	stats.Each(func(key pairKey, count int) {
		if !found || count > bestCount {
			best, bestCount, found = key, count, true
		}
	})
	return
}

// apply returns the state with every occurrence of pair replaced by merged.
func (st trainingState) apply(pair pairKey, merged int) trainingState {
	next := trainingState{words: make([]trainingWord, len(st.words))}
	for i, w := range st.words {
		next.words[i] = trainingWord{symbols: replacePair(w.symbols, pair, merged), freq: w.freq}
	}
	return next
}

// replacePair scans ids left to right and replaces each non-overlapping occurrence of pair
// with merged. It returns ids itself, unmodified, if pair doesn't occur.
func replacePair(ids []int, pair pairKey, merged int) []int {
	found := false
	for i := 0; i+1 < len(ids); i++ {
		if ids[i] == pair.Left && ids[i+1] == pair.Right {
			found = true
			break
		}
	}
	if !found {
		return ids
	}

	out := make([]int, 0, len(ids)-1)
	for i := 0; i < len(ids); {
		if i+1 < len(ids) && ids[i] == pair.Left && ids[i+1] == pair.Right {
			out = append(out, merged)
			i += 2
		} else {
			out = append(out, ids[i])
			i++
		}
	}
	return out
}

// describe renders a symbol sequence for debugging.
func (st trainingState) describe(symbols *symbolTable) []string {
	out := make([]string, len(st.words))
	for i, w := range st.words {
		parts := make([]string, len(w.symbols))
		for j, id := range w.symbols {
			parts[j] = symbols.values[id]
		}
		out[i] = strings.Join(parts, " ")
	}
	return out
}
