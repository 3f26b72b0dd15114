package store

import (
	"context"
	"errors"

	"github.com/mealwise/mealwise-go/internal/cache"
	"github.com/mealwise/mealwise-go/internal/gateway"
)

// Credentials adapts the secure cache tier to the gateway's credential
// interface. The gateway reads and refreshes through it; the session store
// writes into it on login and clears it on logout.
type Credentials struct {
	secure cache.SecureStore
}

func NewCredentials(secure cache.SecureStore) *Credentials {
	return &Credentials{secure: secure}
}

func (c *Credentials) AccessToken(ctx context.Context) (string, error) {
	return c.get(ctx, cache.KeyAccessToken)
}

func (c *Credentials) RefreshToken(ctx context.Context) (string, error) {
	return c.get(ctx, cache.KeyRefreshToken)
}

func (c *Credentials) StoreAccessToken(ctx context.Context, token string) error {
	return c.secure.Set(ctx, cache.KeyAccessToken, token)
}

// SetPair stores both credentials after a successful login or verification.
func (c *Credentials) SetPair(ctx context.Context, access, refresh string) error {
	if err := c.secure.Set(ctx, cache.KeyAccessToken, access); err != nil {
		return err
	}
	return c.secure.Set(ctx, cache.KeyRefreshToken, refresh)
}

// Clear removes both credentials.
func (c *Credentials) Clear(ctx context.Context) error {
	if err := c.secure.Delete(ctx, cache.KeyAccessToken); err != nil {
		return err
	}
	return c.secure.Delete(ctx, cache.KeyRefreshToken)
}

func (c *Credentials) get(ctx context.Context, key string) (string, error) {
	value, err := c.secure.Get(ctx, key)
	if errors.Is(err, cache.ErrNotFound) {
		return "", nil
	}
	return value, err
}

var _ gateway.CredentialSource = (*Credentials)(nil)
