// Package keystore maps row keys to their column stores.
//
// Keys are kept in a concurrent skip list so they can be listed in order
// while other goroutines read and write. Each key owns one
// columnstore.Store that is created on the first write to the key.
package keystore

import (
	"bytes"
	"sync/atomic"

	"github.com/zhangyunhao116/skipmap"

	"kcvdb/pkg/columnstore"
	"kcvdb/pkg/config"
	"kcvdb/pkg/types"
)

type rowIndex = skipmap.FuncMap[[]byte, *columnstore.Store]

func newRowIndex() *rowIndex {
	return skipmap.NewFunc[[]byte, *columnstore.Store](func(a, b []byte) bool {
		return bytes.Compare(a, b) < 0
	})
}

// Stats is a point-in-time summary of a KeyColumnValueStore.
type Stats struct {
	Keys      int    `json:"keys"`
	Entries   int    `json:"entries"`
	Mutations uint64 `json:"mutations"`
}

// KeyColumnValueStore is a named collection of rows.
type KeyColumnValueStore struct {
	name string
	cfg  config.ColumnStoreConfig

	rows      atomic.Pointer[rowIndex]
	mutations atomic.Uint64
}

func NewKeyColumnValueStore(name string, cfg config.ColumnStoreConfig) *KeyColumnValueStore {
	s := &KeyColumnValueStore{name: name, cfg: cfg}
	s.rows.Store(newRowIndex())
	return s
}

func (s *KeyColumnValueStore) Name() string {
	return s.name
}

// ContainsKey reports whether key holds at least one column.
func (s *KeyColumnValueStore) ContainsKey(key types.Key, level types.ConsistencyLevel) bool {
	cvs, ok := s.rows.Load().Load(key)
	return ok && !cvs.IsEmpty(level)
}

func (s *KeyColumnValueStore) Get(key types.Key, col types.Column, level types.ConsistencyLevel) (types.Value, bool) {
	cvs, ok := s.rows.Load().Load(key)
	if !ok {
		return nil, false
	}
	return cvs.Get(col, level)
}

// GetSlice returns the columns of key within q. Unknown keys yield an empty
// result.
func (s *KeyColumnValueStore) GetSlice(key types.Key, q columnstore.SliceQuery, level types.ConsistencyLevel) []types.Entry {
	cvs, ok := s.rows.Load().Load(key)
	if !ok {
		return []types.Entry{}
	}
	return cvs.GetSlice(q, level)
}

// Mutate applies one batch to key, creating the row on first use.
func (s *KeyColumnValueStore) Mutate(key types.Key, additions []types.Entry, deletions []types.Column, level types.ConsistencyLevel) {
	rows := s.rows.Load()
	cvs, ok := rows.Load(key)
	if !ok {
		if len(additions) == 0 {
			// nothing to delete from a row that does not exist
			return
		}
		cvs, _ = rows.LoadOrStore(bytes.Clone(key), columnstore.New(s.cfg))
	}

	cvs.Mutate(additions, deletions, level)
	s.mutations.Add(1)
}

// Keys calls fn with a copy of every non-empty row key in ascending order
// until fn returns false.
func (s *KeyColumnValueStore) Keys(level types.ConsistencyLevel, fn func(key types.Key) bool) {
	s.rows.Load().Range(func(key []byte, cvs *columnstore.Store) bool {
		if cvs.IsEmpty(level) {
			return true
		}
		return fn(bytes.Clone(key))
	})
}

func (s *KeyColumnValueStore) Stats() Stats {
	var st Stats
	s.rows.Load().Range(func(_ []byte, cvs *columnstore.Store) bool {
		if n := cvs.Len(types.Default); n > 0 {
			st.Keys++
			st.Entries += n
		}
		return true
	})
	st.Mutations = s.mutations.Load()
	return st
}

// Clear drops every row. Writes racing with Clear may land in the
// discarded index.
func (s *KeyColumnValueStore) Clear() {
	s.rows.Store(newRowIndex())
}
