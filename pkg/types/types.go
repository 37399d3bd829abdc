package types

import (
	"bytes"
	"fmt"
	"strings"

	"kcvdb/pkg/dberrors"
)

// Key identifies a row. Immutable once handed to a store.
type Key = []byte

// Column identifies a cell within a row.
type Column = []byte

// Value is the opaque payload of a cell.
type Value = []byte

// Entry is a single (column, value) cell. Entries order by Column only.
type Entry struct {
	Column Column `json:"column"`
	Value  Value  `json:"value"`
}

// CompareColumns orders columns by unsigned lexicographic byte comparison.
func CompareColumns(a, b Column) int {
	return bytes.Compare(a, b)
}

// CompareEntries orders entries by their columns.
func CompareEntries(a, b Entry) int {
	return bytes.Compare(a.Column, b.Column)
}

// ConsistencyLevel is supplied by the caller's transaction and selects the
// locking strategy of an operation.
type ConsistencyLevel uint8

const (
	Default ConsistencyLevel = iota
	KeyConsistent
)

func (l ConsistencyLevel) String() string {
	switch l {
	case Default:
		return "default"
	case KeyConsistent:
		return "key_consistent"
	default:
		return fmt.Sprintf("ConsistencyLevel(%d)", uint8(l))
	}
}

// ParseConsistencyLevel parses the textual form used in configs and requests.
// An empty string maps to Default.
func ParseConsistencyLevel(s string) (ConsistencyLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return Default, nil
	case "key_consistent", "key-consistent":
		return KeyConsistent, nil
	default:
		return Default, fmt.Errorf("%w: unknown consistency level %q", dberrors.ErrInvalidArgument, s)
	}
}
