package batch

import "kcvdb/pkg/types"

// Mutation groups the column changes applied to one key in a single step.
type Mutation struct {
	Additions []types.Entry  `json:"additions,omitempty"`
	Deletions []types.Column `json:"deletions,omitempty"`
}

func (m *Mutation) Count() int {
	return len(m.Additions) + len(m.Deletions)
}

func (m *Mutation) IsEmpty() bool {
	return m.Count() == 0
}
