package columnstore

import (
	"sync"

	"kcvdb/pkg/types"
)

type noLock struct{}

func (noLock) Lock()   {}
func (noLock) Unlock() {}

// lockFor selects the lock guarding an operation at the given level.
// KeyConsistent operations share the store's mutex; any other level runs
// without exclusion.
func (s *Store) lockFor(level types.ConsistencyLevel) sync.Locker {
	if level == types.KeyConsistent {
		return &s.keyLock
	}
	return noLock{}
}
