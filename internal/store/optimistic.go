package store

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// clone deep-copies a value through its JSON form. Snapshots taken for
// optimistic transactions must never share memory with the published state,
// or a rollback would restore already-mutated data.
func clone[T any](v *T) (*T, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot state: %w", err)
	}
	out := new(T)
	if err := json.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("failed to restore snapshot: %w", err)
	}
	return out, nil
}

// sameJSON compares two values structurally via their canonical JSON form.
// Refetches only replace published state when this reports false, avoiding
// redundant re-renders downstream.
func sameJSON(a, b any) bool {
	ab, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}
