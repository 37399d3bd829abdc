package keystore

import (
	"fmt"
	"sync"
	"testing"

	"kcvdb/pkg/columnstore"
	"kcvdb/pkg/config"
	"kcvdb/pkg/types"
)

func newTestStore() *KeyColumnValueStore {
	return NewKeyColumnValueStore("edges", config.Default().ColumnStore)
}

func entries(kv ...string) []types.Entry {
	out := make([]types.Entry, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, types.Entry{Column: []byte(kv[i]), Value: []byte(kv[i+1])})
	}
	return out
}

func TestKeyColumnValueStore_MutateAndRead(t *testing.T) {
	s := newTestStore()
	s.Mutate([]byte("k1"), entries("c1", "v1", "c2", "v2"), nil, types.Default)

	v, ok := s.Get([]byte("k1"), []byte("c2"), types.Default)
	if !ok || string(v) != "v2" {
		t.Fatalf("expected c2=v2, got %q (found=%v)", v, ok)
	}
	if _, ok := s.Get([]byte("k2"), []byte("c1"), types.Default); ok {
		t.Fatal("unknown key returned a value")
	}

	got := s.GetSlice([]byte("k1"), columnstore.NewSliceQuery([]byte("c1"), []byte("c2")), types.KeyConsistent)
	if len(got) != 1 || string(got[0].Column) != "c1" {
		t.Fatalf("unexpected slice %+v", got)
	}
	if got := s.GetSlice([]byte("nope"), columnstore.NewSliceQuery(nil, []byte("z")), types.Default); len(got) != 0 {
		t.Fatalf("unknown key slice returned %d entries", len(got))
	}
}

func TestKeyColumnValueStore_ContainsKey(t *testing.T) {
	s := newTestStore()
	key := []byte("k1")

	if s.ContainsKey(key, types.Default) {
		t.Fatal("empty store contains key")
	}

	s.Mutate(key, entries("c1", "v1"), nil, types.Default)
	if !s.ContainsKey(key, types.Default) {
		t.Fatal("expected key after write")
	}

	s.Mutate(key, nil, []types.Column{[]byte("c1")}, types.Default)
	if s.ContainsKey(key, types.Default) {
		t.Fatal("key with no columns should not be reported")
	}
}

func TestKeyColumnValueStore_DeleteOnUnknownKeyIsNoop(t *testing.T) {
	s := newTestStore()
	s.Mutate([]byte("k1"), nil, []types.Column{[]byte("c1")}, types.Default)

	if st := s.Stats(); st.Keys != 0 || st.Mutations != 0 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestKeyColumnValueStore_KeyIsCopied(t *testing.T) {
	s := newTestStore()
	key := []byte("k1")
	s.Mutate(key, entries("c1", "v1"), nil, types.Default)
	key[1] = '9'

	if !s.ContainsKey([]byte("k1"), types.Default) {
		t.Fatal("caller mutation of key leaked into the index")
	}
}

func TestKeyColumnValueStore_KeysInOrder(t *testing.T) {
	s := newTestStore()
	for _, k := range []string{"k3", "k1", "k2", "k4"} {
		s.Mutate([]byte(k), entries("c", "v"), nil, types.Default)
	}
	s.Mutate([]byte("k2"), nil, []types.Column{[]byte("c")}, types.Default)

	var keys []string
	s.Keys(types.Default, func(key types.Key) bool {
		keys = append(keys, string(key))
		return true
	})
	if fmt.Sprint(keys) != "[k1 k3 k4]" {
		t.Fatalf("unexpected keys %v", keys)
	}

	s.Keys(types.Default, func(key types.Key) bool {
		key[0] = 'z'
		return true
	})
	if !s.ContainsKey([]byte("k1"), types.Default) {
		t.Fatal("caller change to an iterated key leaked into the index")
	}

	var first []string
	s.Keys(types.KeyConsistent, func(key types.Key) bool {
		first = append(first, string(key))
		return false
	})
	if len(first) != 1 {
		t.Fatalf("iteration did not stop early: %v", first)
	}
}

func TestKeyColumnValueStore_StatsAndClear(t *testing.T) {
	s := newTestStore()
	s.Mutate([]byte("a"), entries("c1", "v", "c2", "v"), nil, types.Default)
	s.Mutate([]byte("b"), entries("c1", "v"), nil, types.Default)

	st := s.Stats()
	if st.Keys != 2 || st.Entries != 3 || st.Mutations != 2 {
		t.Fatalf("unexpected stats %+v", st)
	}

	s.Clear()
	if st := s.Stats(); st.Keys != 0 || st.Entries != 0 {
		t.Fatalf("expected empty store after Clear, got %+v", st)
	}
}

func TestKeyColumnValueStore_ConcurrentFirstWrite(t *testing.T) {
	s := newTestStore()
	key := []byte("hot")

	var wg sync.WaitGroup
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			s.Mutate(key, entries(fmt.Sprintf("c%02d", w), "v"), nil, types.Default)
		}(w)
	}
	wg.Wait()

	got := s.GetSlice(key, columnstore.NewSliceQuery(nil, []byte("z")), types.Default)
	if len(got) != 16 {
		t.Fatalf("expected all 16 columns in one row, got %d", len(got))
	}
}
