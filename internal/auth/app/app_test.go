package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	setRequiredEnv(t)
	t.Setenv("GOOGLE_CLIENT_ID", "web-client.apps.googleusercontent.com")
	t.Setenv("GOOGLE_CLIENT_SECRET", "shh")
	t.Setenv("BASE_URL", "https://app.example.com")
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	return cfg
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.JWTRefreshSecret = cfg.JWTSecret

	_, err := New(cfg)
	require.ErrorContains(t, err, "invalid configuration")
}

func TestApplicationWiring(t *testing.T) {
	cfg := testConfig(t)

	application, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(application.cancel)

	h := application.Handler()

	t.Run("readyz reports apple disabled", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Status string            `json:"status"`
			Checks map[string]string `json:"checks"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.Equal(t, "disabled", body.Checks["apple"])
	})

	t.Run("authorize redirects to google with our callback", func(t *testing.T) {
		q := url.Values{
			"client_id":    {"google"},
			"redirect_uri": {"myapp://"},
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/authorize?"+q.Encode(), nil))
		require.Equal(t, http.StatusFound, rec.Code)

		loc, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(loc.String(), cfg.GoogleAuthURL))
		require.Equal(t, "https://app.example.com/api/auth/callback", loc.Query().Get("redirect_uri"))
		require.True(t, strings.HasSuffix(loc.Query().Get("state"), ".native"))
	})

	t.Run("apple sign-in is misconfigured", func(t *testing.T) {
		rec := httptest.NewRecorder()
		body := strings.NewReader(`{"identityToken":"x","rawNonce":"n"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/auth/apple", body)
		req.Header.Set("Content-Type", "application/json")
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	require.NoError(t, application.shutdownTracing(context.Background()))
}
