package identity

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

var ErrNotConfigured = errors.New("identity: no federated provider configured")

// OIDCProvider implements Provider against an OpenID Connect issuer.
type OIDCProvider struct {
	oauth      *oauth2.Config
	verifier   *oidc.IDTokenVerifier
	endSession string

	mu        sync.Mutex
	lastToken string
}

// OIDCConfig holds the provider settings from configuration.
type OIDCConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// NewOIDCProvider discovers the issuer and prepares the code-exchange flow.
func NewOIDCProvider(ctx context.Context, cfg OIDCConfig) (*OIDCProvider, error) {
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC issuer: %w", err)
	}

	// end_session_endpoint is optional in discovery metadata.
	var claims struct {
		EndSessionEndpoint string `json:"end_session_endpoint"`
	}
	_ = provider.Claims(&claims)

	return &OIDCProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier:   provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		endSession: claims.EndSessionEndpoint,
	}, nil
}

// AuthCodeURL returns the URL the host UI opens to start the sign-in flow.
func (p *OIDCProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// Exchange trades the authorization code for tokens and verifies the ID
// token before handing it on.
func (p *OIDCProvider) Exchange(ctx context.Context, code string) (string, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return "", errors.New("identity: token response carried no id_token")
	}
	if _, err := p.verifier.Verify(ctx, rawIDToken); err != nil {
		return "", fmt.Errorf("failed to verify identity token: %w", err)
	}

	p.mu.Lock()
	p.lastToken = rawIDToken
	p.mu.Unlock()
	return rawIDToken, nil
}

// SignOut calls the issuer's end-session endpoint when one was advertised.
func (p *OIDCProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	token := p.lastToken
	p.lastToken = ""
	p.mu.Unlock()

	if p.endSession == "" || token == "" {
		return nil
	}

	endpoint := p.endSession + "?" + url.Values{"id_token_hint": {token}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Printf("[Identity] end-session call failed: %v", err)
		return err
	}
	_ = resp.Body.Close()
	return nil
}

var _ Provider = (*OIDCProvider)(nil)
var _ Provider = Noop{}
