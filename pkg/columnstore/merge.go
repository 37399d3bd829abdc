package columnstore

import (
	"bytes"
	"slices"

	"kcvdb/pkg/types"
)

// sortAdditions returns private copies of the additions ordered by column
// with one entry per column. When a column repeats, the last supplied entry
// wins.
func sortAdditions(additions []types.Entry) []types.Entry {
	if len(additions) == 0 {
		return nil
	}

	add := make([]types.Entry, len(additions))
	for i, e := range additions {
		add[i] = cloneEntry(e)
	}
	slices.SortStableFunc(add, types.CompareEntries)

	out := add[:0]
	for i, e := range add {
		if i+1 < len(add) && types.CompareEntries(e, add[i+1]) == 0 {
			continue
		}
		out = append(out, e)
	}
	return out
}

// sortDeletions drops columns that are re-added in the same batch and orders
// the rest. An addition always overrides a deletion of the same column.
func sortDeletions(deletions []types.Column, add []types.Entry) []types.Column {
	if len(deletions) == 0 {
		return nil
	}

	del := make([]types.Column, 0, len(deletions))
	for _, col := range deletions {
		_, added := slices.BinarySearchFunc(add, col, func(e types.Entry, c types.Column) int {
			return types.CompareColumns(e.Column, c)
		})
		if !added {
			del = append(del, col)
		}
	}
	slices.SortFunc(del, types.CompareColumns)
	return del
}

// merge combines the old entries with sorted additions and deletions in one
// linear pass. The returned slice has len equal to the number of live
// entries and cap len(old)+len(add).
func merge(old []types.Entry, add []types.Entry, del []types.Column) []types.Entry {
	out := make([]types.Entry, 0, len(old)+len(add))

	iold, iadd, idel := 0, 0, 0
	for iold < len(old) {
		if iadd < len(add) {
			cmp := types.CompareEntries(add[iadd], old[iold])
			if cmp <= 0 {
				out = append(out, add[iadd])
				iadd++
				if cmp == 0 {
					iold++
				}
				continue
			}
		}

		candidate := old[iold]
		iold++

		deleted := false
		for idel < len(del) {
			cmp := types.CompareColumns(del[idel], candidate.Column)
			if cmp > 0 {
				break
			}
			idel++
			if cmp == 0 {
				deleted = true
				break
			}
		}
		if !deleted {
			out = append(out, candidate)
		}
	}

	return append(out, add[iadd:]...)
}

// shrink reallocates entries to their exact size when the live share of the
// backing array falls below threshold.
func shrink(entries []types.Entry, threshold float64) []types.Entry {
	if cap(entries) == 0 || float64(len(entries))/float64(cap(entries)) >= threshold {
		return entries
	}

	exact := make([]types.Entry, len(entries))
	copy(exact, entries)
	return exact
}

func cloneEntry(e types.Entry) types.Entry {
	return types.Entry{Column: bytes.Clone(e.Column), Value: bytes.Clone(e.Value)}
}
