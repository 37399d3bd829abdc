package columnstore

import "kcvdb/pkg/types"

// SliceQuery selects the half-open column range [Start, End), optionally
// capped to a number of entries.
type SliceQuery struct {
	Start types.Column
	End   types.Column

	limit   int
	limited bool
}

func NewSliceQuery(start, end types.Column) SliceQuery {
	return SliceQuery{Start: start, End: end}
}

// WithLimit caps the result size. Negative limits are treated as zero.
func (q SliceQuery) WithLimit(n int) SliceQuery {
	q.limit = max(n, 0)
	q.limited = true
	return q
}

func (q SliceQuery) HasLimit() bool {
	return q.limited
}

func (q SliceQuery) Limit() int {
	return q.limit
}
