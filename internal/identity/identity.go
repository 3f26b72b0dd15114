// Package identity wraps the federated sign-in collaborator. The provider
// issues an identity token that the session layer forwards to the API; the
// API is the authority on the resulting account.
package identity

import (
	"context"
)

// Provider is an opaque token-issuing collaborator.
type Provider interface {
	// Exchange trades an authorization code for a verified identity token.
	Exchange(ctx context.Context, code string) (string, error)

	// SignOut ends the provider-side session. Best-effort; the caller
	// proceeds with local cleanup regardless.
	SignOut(ctx context.Context) error
}

// Noop is used when no federated provider is configured.
type Noop struct{}

func (Noop) Exchange(ctx context.Context, code string) (string, error) {
	return "", ErrNotConfigured
}

func (Noop) SignOut(ctx context.Context) error {
	return nil
}
