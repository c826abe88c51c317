package bpe

// symbolTable interns symbol strings: every distinct symbol is stored once and referred to
// by its index, which is also its token ID. Entries are append-only.
type symbolTable struct {
	values []string
	ids    map[string]int
}

func newSymbolTable() *symbolTable {
	return &symbolTable{ids: make(map[string]int)}
}

// intern returns the ID of s, appending it with the next sequential ID if it's new.
func (st *symbolTable) intern(s string) (id int, created bool) {
	if id, ok := st.ids[s]; ok {
		return id, false
	}
	id = len(st.values)
	st.values = append(st.values, s)
	st.ids[s] = id
	return id, true
}

func (st *symbolTable) lookup(s string) (int, bool) {
	id, ok := st.ids[s]
	return id, ok
}

func (st *symbolTable) value(id int) (string, bool) {
	if id < 0 || id >= len(st.values) {
		return "", false
	}
	return st.values[id], true
}

func (st *symbolTable) len() int {
	return len(st.values)
}

// pairKey is an ordered pair of adjacent symbols.
type pairKey struct {
	Left, Right int
}

// Merge is one learned merge rule: symbols Left and Right, adjacent in that order, are
// replaced by Result. All three are token IDs.
type Merge struct {
	Left, Right, Result int
}
