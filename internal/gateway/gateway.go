// Package gateway is the single chokepoint for outbound API calls. It
// attaches the bearer credential and locale to every request, classifies
// transport failures, and transparently refreshes an expired credential once
// before giving up.
package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mealwise/mealwise-go/internal/apperr"
	"github.com/mealwise/mealwise-go/internal/metrics"
)

// RequestTimeout is enforced uniformly; there is no per-call override.
const RequestTimeout = 30 * time.Second

// expiryLeeway triggers a proactive refresh when the access token is about
// to lapse, saving the 401 round trip.
const expiryLeeway = 30 * time.Second

// CredentialSource supplies the gateway with credentials and receives the
// refreshed access token. The gateway never touches the cache itself; the
// session layer owns persistence behind this interface.
type CredentialSource interface {
	AccessToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) (string, error)
	StoreAccessToken(ctx context.Context, token string) error
}

// Gateway wraps a single http.Client with the cross-cutting request policy.
type Gateway struct {
	baseURL string
	locale  string
	creds   CredentialSource
	client  *http.Client

	refreshMu sync.Mutex
}

// New creates a Gateway for the given API base URL and locale.
func New(baseURL, locale string, creds CredentialSource) *Gateway {
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		locale:  locale,
		creds:   creds,
		client: &http.Client{
			Timeout: RequestTimeout,
		},
	}
}

// do performs one logical API call. Authenticated calls carry the bearer
// credential; on a 401 the gateway refreshes once and replays the original
// request once. A failure of the refresh itself propagates the original
// error.
func (g *Gateway) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	token := ""
	if authed {
		var err error
		token, err = g.creds.AccessToken(ctx)
		if err != nil || token == "" {
			return apperr.New(apperr.InvalidCredentials, "", "no access credential")
		}
		if tokenExpiring(token) {
			if refreshed, err := g.refresh(ctx); err == nil {
				token = refreshed
			} else {
				log.Printf("[Gateway] proactive refresh failed: %v", err)
			}
		}
	}

	status, respBody, err := g.send(ctx, method, path, payload, token)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && authed {
		refreshed, refreshErr := g.refresh(ctx)
		if refreshErr != nil {
			// The refresh failed; the original 401 propagates.
			err := classifyStatus(status, respBody)
			metrics.Requests.WithLabelValues("domain").Inc()
			return err
		}
		status, respBody, err = g.send(ctx, method, path, payload, refreshed)
		if err != nil {
			return err
		}
	}

	if status >= 200 && status < 300 {
		metrics.Requests.WithLabelValues("ok").Inc()
		if out != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("failed to decode response: %w", err)
			}
		}
		return nil
	}

	err = classifyStatus(status, respBody)
	if apperr.IsKind(err, apperr.ServerFault) {
		metrics.Requests.WithLabelValues("server_fault").Inc()
	} else {
		metrics.Requests.WithLabelValues("domain").Inc()
	}
	return err
}

// send performs a single HTTP round trip and classifies transport failures.
func (g *Gateway) send(ctx context.Context, method, path string, payload []byte, token string) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept-Language", g.locale)
	req.Header.Set("X-Request-ID", uuid.New().String())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, nil, classifyTransport(err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, classifyTransport(err)
	}
	return resp.StatusCode, respBody, nil
}

// refresh exchanges the stored refresh credential for a new access
// credential and hands it back to the credential source.
func (g *Gateway) refresh(ctx context.Context) (string, error) {
	g.refreshMu.Lock()
	defer g.refreshMu.Unlock()

	refreshToken, err := g.creds.RefreshToken(ctx)
	if err != nil || refreshToken == "" {
		return "", apperr.New(apperr.InvalidRefreshToken, "", "no refresh credential")
	}

	metrics.TokenRefreshes.Inc()

	payload, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return "", err
	}
	status, respBody, err := g.send(ctx, http.MethodPost, "/v1/auth/refresh", payload, "")
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 {
		return "", classifyStatus(status, respBody)
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("failed to decode refresh response: %w", err)
	}
	if err := g.creds.StoreAccessToken(ctx, out.AccessToken); err != nil {
		return "", fmt.Errorf("failed to store refreshed credential: %w", err)
	}
	log.Printf("[Gateway] access credential refreshed")
	return out.AccessToken, nil
}

// tokenExpiring reports whether the access token's exp claim is inside the
// leeway window. The claim is read unverified; the server remains the
// authority on token validity.
func tokenExpiring(token string) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return time.Until(claims.ExpiresAt.Time) < expiryLeeway
}

// classifyTransport maps a round-trip failure to its error kind.
func classifyTransport(err error) error {
	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		metrics.Requests.WithLabelValues("timeout").Inc()
		return apperr.Wrap(apperr.Timeout, "request timed out", err)
	}
	metrics.Requests.WithLabelValues("network").Inc()
	return apperr.Wrap(apperr.Network, "network unreachable", err)
}

// errorPayload is the server's error body shape.
type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// classifyStatus maps a non-2xx response to its error kind.
func classifyStatus(status int, body []byte) error {
	var payload errorPayload
	_ = json.Unmarshal(body, &payload)
	if payload.Message == "" {
		payload.Message = http.StatusText(status)
	}

	switch {
	case status >= 500:
		return apperr.New(apperr.ServerFault, payload.Code, payload.Message)
	case status == http.StatusUnauthorized:
		switch payload.Code {
		case "invalid_credentials":
			return apperr.New(apperr.InvalidCredentials, payload.Code, payload.Message)
		case "invalid_refresh_token":
			return apperr.New(apperr.InvalidRefreshToken, payload.Code, payload.Message)
		default:
			return apperr.New(apperr.TokenExpired, payload.Code, payload.Message)
		}
	case status == http.StatusNotFound:
		return apperr.New(apperr.NotFound, payload.Code, payload.Message)
	case status == http.StatusConflict:
		if payload.Code == "already_exists" {
			return apperr.New(apperr.AlreadyExists, payload.Code, payload.Message)
		}
		return apperr.New(apperr.Conflict, payload.Code, payload.Message)
	case status == http.StatusPreconditionFailed:
		return apperr.New(apperr.Precondition, payload.Code, payload.Message)
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return apperr.New(apperr.Validation, payload.Code, payload.Message)
	default:
		return apperr.New(apperr.Unknown, payload.Code, payload.Message)
	}
}
