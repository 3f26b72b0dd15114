// Package cache holds the two device-local persistence tiers: a secure tier
// for credentials and identity, and a general tier for serialized domain
// snapshots. Both are last-write-wins with no versioning.
package cache

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("cache: key not found")

// Secure tier keys.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
	KeyDeviceID     = "device_id"
)

// General tier snapshot keys.
const (
	KeyMenu        = "menu"
	KeyPreferences = "user_preferences"
	KeyRecipes     = "recipes"
)

// SecureStore is the credential tier: opaque strings under well-known keys.
type SecureStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// SnapshotStore is the general tier: JSON-serialized domain snapshots keyed
// by logical name.
type SnapshotStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

var (
	_ SecureStore   = (*SecureFileStore)(nil)
	_ SecureStore   = (*Memory)(nil)
	_ SnapshotStore = (*SQLiteStore)(nil)
	_ SnapshotStore = (*RedisStore)(nil)
	_ SnapshotStore = (*MemorySnapshots)(nil)
)
