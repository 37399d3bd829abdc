package columnstore

import (
	"fmt"
	"slices"

	"kcvdb/pkg/types"
)

// snapshot is an immutable sorted run of entries. len(entries) is the
// logical size and cap(entries) the backing capacity; nothing in
// entries[len:cap] is ever read.
type snapshot struct {
	entries []types.Entry
}

var emptySnapshot = &snapshot{entries: []types.Entry{}}

// newSnapshot panics if entries are not strictly ascending by column.
// A broken order would silently corrupt every later binary search.
func newSnapshot(entries []types.Entry) *snapshot {
	for i := 1; i < len(entries); i++ {
		if types.CompareEntries(entries[i-1], entries[i]) >= 0 {
			panic(fmt.Sprintf("columnstore: snapshot out of order at %d: %q >= %q",
				i, entries[i-1].Column, entries[i].Column))
		}
	}
	return &snapshot{entries: entries}
}

func (s *snapshot) isEmpty() bool {
	return len(s.entries) == 0
}

func (s *snapshot) len() int {
	return len(s.entries)
}

func (s *snapshot) capacity() int {
	return cap(s.entries)
}

// indexOf returns the position of col and true when present, otherwise the
// index at which col would be inserted to keep the order and false.
func (s *snapshot) indexOf(col types.Column) (int, bool) {
	return slices.BinarySearchFunc(s.entries, col, func(e types.Entry, c types.Column) int {
		return types.CompareColumns(e.Column, c)
	})
}

func (s *snapshot) entryAt(i int) types.Entry {
	return s.entries[i]
}

// bound resolves col to a slice boundary, ignoring whether it was found.
func (s *snapshot) bound(col types.Column) int {
	i, _ := s.indexOf(col)
	return i
}
