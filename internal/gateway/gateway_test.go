package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealwise/mealwise-go/internal/apperr"
	"github.com/mealwise/mealwise-go/internal/types"
)

type fakeCreds struct {
	mu      sync.Mutex
	access  string
	refresh string
	stored  []string
}

func (c *fakeCreds) AccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.access, nil
}

func (c *fakeCreds) RefreshToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refresh, nil
}

func (c *fakeCreds) StoreAccessToken(ctx context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.access = token
	c.stored = append(c.stored, token)
	return nil
}

func TestRequestHeaders(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	g := New(server.URL, "de-DE", &fakeCreds{access: "token-a", refresh: "token-r"})
	require.NoError(t, g.do(context.Background(), http.MethodGet, "/v1/meal-plan", nil, nil, true))

	assert.Equal(t, "Bearer token-a", got.Get("Authorization"))
	assert.Equal(t, "de-DE", got.Get("Accept-Language"))
	assert.NotEmpty(t, got.Get("X-Request-ID"))
}

func TestRefreshAndReplay(t *testing.T) {
	t.Run("should refresh once and replay once on 401", func(t *testing.T) {
		var refreshCalls, planCalls int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/v1/auth/refresh":
				refreshCalls++
				var req types.RefreshRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "token-r", req.RefreshToken)
				_ = json.NewEncoder(w).Encode(types.RefreshResponse{AccessToken: "token-b"})
			case "/v1/meal-plan":
				planCalls++
				if r.Header.Get("Authorization") != "Bearer token-b" {
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
				_ = json.NewEncoder(w).Encode(types.MealPlan{})
			}
		}))
		defer server.Close()

		creds := &fakeCreds{access: "token-a", refresh: "token-r"}
		g := New(server.URL, "en-US", creds)

		var plan types.MealPlan
		err := g.do(context.Background(), http.MethodGet, "/v1/meal-plan", nil, &plan, true)
		require.NoError(t, err)

		assert.Equal(t, 1, refreshCalls)
		assert.Equal(t, 2, planCalls)
		assert.Equal(t, []string{"token-b"}, creds.stored)
	})

	t.Run("should surface a second 401 without a second refresh", func(t *testing.T) {
		var refreshCalls int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/v1/auth/refresh" {
				refreshCalls++
				_ = json.NewEncoder(w).Encode(types.RefreshResponse{AccessToken: "token-b"})
				return
			}
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		g := New(server.URL, "en-US", &fakeCreds{access: "token-a", refresh: "token-r"})
		err := g.do(context.Background(), http.MethodGet, "/v1/meal-plan", nil, nil, true)

		assert.Equal(t, 1, refreshCalls)
		assert.Equal(t, apperr.TokenExpired, apperr.KindOf(err))
	})

	t.Run("should propagate the original error when refresh fails", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/v1/auth/refresh" {
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"code": "invalid_refresh_token"})
				return
			}
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"code": "token_expired", "message": "expired"})
		}))
		defer server.Close()

		g := New(server.URL, "en-US", &fakeCreds{access: "token-a", refresh: "token-r"})
		err := g.do(context.Background(), http.MethodGet, "/v1/meal-plan", nil, nil, true)

		assert.Equal(t, apperr.TokenExpired, apperr.KindOf(err))
	})
}

func TestErrorClassification(t *testing.T) {
	t.Run("should classify 5xx as server fault", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		g := New(server.URL, "en-US", &fakeCreds{access: "t", refresh: "r"})
		err := g.do(context.Background(), http.MethodGet, "/v1/recipes", nil, nil, true)
		assert.Equal(t, apperr.ServerFault, apperr.KindOf(err))
	})

	t.Run("should classify domain errors by code", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"code":    "recipe_in_meal_plan",
				"message": "recipe is referenced by a meal plan",
			})
		}))
		defer server.Close()

		g := New(server.URL, "en-US", &fakeCreds{access: "t", refresh: "r"})
		err := g.do(context.Background(), http.MethodDelete, "/v1/recipes/x", nil, nil, true)

		require.Equal(t, apperr.Conflict, apperr.KindOf(err))
		var appErr *apperr.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "recipe_in_meal_plan", appErr.Code)
	})

	t.Run("should classify a timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		g := New(server.URL, "en-US", &fakeCreds{access: "t", refresh: "r"})
		g.client.Timeout = 20 * time.Millisecond

		err := g.do(context.Background(), http.MethodGet, "/v1/recipes", nil, nil, true)
		assert.Equal(t, apperr.Timeout, apperr.KindOf(err))
	})

	t.Run("should classify an unreachable host", func(t *testing.T) {
		g := New("http://127.0.0.1:1", "en-US", &fakeCreds{access: "t", refresh: "r"})
		err := g.do(context.Background(), http.MethodGet, "/v1/recipes", nil, nil, true)
		assert.Equal(t, apperr.Network, apperr.KindOf(err))
	})
}

func TestUploadImage(t *testing.T) {
	var gotContentType, gotAuth string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		gotBody = make([]byte, r.ContentLength)
		_, _ = r.Body.Read(gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	g := New("http://api.invalid", "en-US", &fakeCreds{access: "t", refresh: "r"})
	target := &types.UploadTarget{
		UploadURL:   server.URL + "/signed",
		PublicURL:   "https://cdn.example.com/img.jpg",
		ContentType: "image/jpeg",
	}
	require.NoError(t, g.UploadImage(context.Background(), target, []byte("jpegdata")))

	assert.Equal(t, "image/jpeg", gotContentType)
	assert.Empty(t, gotAuth)
	assert.Equal(t, []byte("jpegdata"), gotBody)
}
