// Package columnstore holds the ordered columns of a single row.
//
// A Store publishes an immutable snapshot through an atomic pointer. Readers
// load the pointer once per operation and never observe a half-applied
// mutation; writers build a complete replacement off to the side and swap it
// in. Under types.KeyConsistent reads and writes additionally share a mutex.
package columnstore

import (
	"bytes"
	"sync"
	"sync/atomic"

	"kcvdb/pkg/config"
	"kcvdb/pkg/types"
)

type Store struct {
	data atomic.Pointer[snapshot]

	// writeMu serializes mutations regardless of consistency level.
	writeMu sync.Mutex
	keyLock sync.Mutex

	shrinkThreshold float64
}

// New returns an empty store. A zero ShrinkThreshold selects
// config.DefaultShrinkThreshold.
func New(cfg config.ColumnStoreConfig) *Store {
	s := &Store{shrinkThreshold: cfg.ShrinkThreshold}
	if s.shrinkThreshold <= 0 {
		s.shrinkThreshold = config.DefaultShrinkThreshold
	}
	s.data.Store(emptySnapshot)
	return s
}

func (s *Store) IsEmpty(level types.ConsistencyLevel) bool {
	lock := s.lockFor(level)
	lock.Lock()
	defer lock.Unlock()

	return s.data.Load().isEmpty()
}

// Len returns the number of live columns.
func (s *Store) Len(level types.ConsistencyLevel) int {
	lock := s.lockFor(level)
	lock.Lock()
	defer lock.Unlock()

	return s.data.Load().len()
}

// Get returns a copy of the value stored under col, if any.
func (s *Store) Get(col types.Column, level types.ConsistencyLevel) (types.Value, bool) {
	lock := s.lockFor(level)
	lock.Lock()
	defer lock.Unlock()

	data := s.data.Load()
	i, found := data.indexOf(col)
	if !found {
		return nil, false
	}
	return bytes.Clone(data.entryAt(i).Value), true
}

// GetSlice returns the entries in [q.Start, q.End) in ascending column order.
// An inverted or empty range yields an empty result. The entries are copies
// and may be modified by the caller.
func (s *Store) GetSlice(q SliceQuery, level types.ConsistencyLevel) []types.Entry {
	lock := s.lockFor(level)
	lock.Lock()
	defer lock.Unlock()

	data := s.data.Load()
	start, end := data.bound(q.Start), data.bound(q.End)
	if start >= end {
		return []types.Entry{}
	}
	if q.HasLimit() && q.Limit() < end-start {
		end = start + q.Limit()
	}

	result := make([]types.Entry, 0, end-start)
	for i := start; i < end; i++ {
		result = append(result, cloneEntry(data.entryAt(i)))
	}
	return result
}

// Mutate upserts additions and removes deletions as one atomic step. The
// store keeps its own copies of the added columns and values.
func (s *Store) Mutate(additions []types.Entry, deletions []types.Column, level types.ConsistencyLevel) {
	add := sortAdditions(additions)
	del := sortDeletions(deletions, add)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	lock := s.lockFor(level)
	lock.Lock()
	defer lock.Unlock()

	merged := merge(s.data.Load().entries, add, del)
	s.data.Store(newSnapshot(shrink(merged, s.shrinkThreshold)))
}
