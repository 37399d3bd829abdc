package keystore

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/zhangyunhao116/skipmap"

	"kcvdb/pkg/batch"
	"kcvdb/pkg/config"
	"kcvdb/pkg/dberrors"
	"kcvdb/pkg/types"
)

// Manager owns the named stores of a node.
type Manager struct {
	cfg    config.ColumnStoreConfig
	stores *skipmap.FuncMap[string, *KeyColumnValueStore]
	closed atomic.Bool
}

func NewManager(cfg config.ColumnStoreConfig) *Manager {
	return &Manager{
		cfg: cfg,
		stores: skipmap.NewFunc[string, *KeyColumnValueStore](func(a, b string) bool {
			return a < b
		}),
	}
}

// OpenDatabase returns the store called name, creating it if needed.
func (m *Manager) OpenDatabase(name string) (*KeyColumnValueStore, error) {
	if m.closed.Load() {
		return nil, dberrors.ErrClosed
	}
	if name == "" {
		return nil, fmt.Errorf("%w: empty store name", dberrors.ErrInvalidArgument)
	}

	if s, ok := m.stores.Load(name); ok {
		return s, nil
	}

	s, loaded := m.stores.LoadOrStore(name, NewKeyColumnValueStore(name, m.cfg))
	if !loaded {
		slog.Debug("store opened", "name", name)
	}
	return s, nil
}

// Lookup returns an already opened store.
func (m *Manager) Lookup(name string) (*KeyColumnValueStore, error) {
	if m.closed.Load() {
		return nil, dberrors.ErrClosed
	}
	s, ok := m.stores.Load(name)
	if !ok {
		return nil, fmt.Errorf("store %q: %w", name, dberrors.ErrNotFound)
	}
	return s, nil
}

// MutateMany applies per-key batches grouped by store name. Each key's batch
// is atomic on its own; there is no atomicity across keys.
func (m *Manager) MutateMany(mutations map[string]map[string]batch.Mutation, level types.ConsistencyLevel) error {
	for name, rows := range mutations {
		s, err := m.OpenDatabase(name)
		if err != nil {
			return fmt.Errorf("failed to open store %q: %w", name, err)
		}
		for key, mut := range rows {
			s.Mutate([]byte(key), mut.Additions, mut.Deletions, level)
		}
	}
	return nil
}

// Names lists opened stores in ascending order.
func (m *Manager) Names() []string {
	names := make([]string, 0, m.stores.Len())
	m.stores.Range(func(name string, _ *KeyColumnValueStore) bool {
		names = append(names, name)
		return true
	})
	return names
}

// Stats returns per-store statistics keyed by store name.
func (m *Manager) Stats() map[string]Stats {
	out := make(map[string]Stats, m.stores.Len())
	m.stores.Range(func(name string, s *KeyColumnValueStore) bool {
		out[name] = s.Stats()
		return true
	})
	return out
}

// ClearStorage empties every store while keeping them open.
func (m *Manager) ClearStorage() error {
	if m.closed.Load() {
		return dberrors.ErrClosed
	}
	m.stores.Range(func(_ string, s *KeyColumnValueStore) bool {
		s.Clear()
		return true
	})
	slog.Info("storage cleared", "stores", m.stores.Len())
	return nil
}

func (m *Manager) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return dberrors.ErrClosed
	}
	return nil
}
