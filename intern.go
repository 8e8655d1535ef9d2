package lacc

import "fmt"

// StringLabel is the stable handle handed to the back end for an
// interned string.  The empty label means "no string".
type StringLabel string

const NoLabel StringLabel = ""

// StringTable interns byte strings and hands out one label per
// distinct contents.  The table lives for a whole translation unit.
type StringTable struct {
	labels map[string]StringLabel
	data   [][]byte
}

func NewStringTable() *StringTable {
	return &StringTable{labels: map[string]StringLabel{}}
}

// Intern returns the label of s, allocating one when the contents have
// not been seen before.
func (st *StringTable) Intern(s []byte) StringLabel {
	if l, ok := st.labels[string(s)]; ok {
		return l
	}
	l := StringLabel(fmt.Sprintf(".LC%d", len(st.data)))
	st.labels[string(s)] = l
	st.data = append(st.data, append([]byte(nil), s...))
	return l
}

// Lookup returns the contents previously interned under l.
func (st *StringTable) Lookup(l StringLabel) ([]byte, bool) {
	for s, label := range st.labels {
		if label == l {
			return []byte(s), true
		}
	}
	return nil, false
}

// Len returns how many distinct strings have been interned.
func (st *StringTable) Len() int {
	return len(st.data)
}
