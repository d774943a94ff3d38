package httpx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/betomoedano/expo-oauth-example/pkg/httpx"
	"github.com/betomoedano/expo-oauth-example/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var guardSecret = []byte("guard-test-secret")

func mintAccess(t *testing.T, ttl time.Duration, now time.Time) string {
	t.Helper()
	s, err := jwtx.NewSignerHS256(guardSecret)
	require.NoError(t, err)
	tok, err := s.Sign(jwtx.NewAccessClaims("user-42", jwtx.Profile{Email: "u@example.com"}, ttl, "", now))
	require.NoError(t, err)
	return tok
}

func TestAuthGuard(t *testing.T) {
	verifier := jwtx.NewVerifierHS256(guardSecret, "", jwtx.TokenTypeAccess)

	var rejected []string
	guard := httpx.AuthGuard(verifier,
		httpx.WithSessionCookie("auth_token"),
		httpx.WithRejectHook(func(_ *http.Request, reason string) { rejected = append(rejected, reason) }),
	)

	protected := guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := httpx.ClaimsFromContext(r.Context())
		require.True(t, ok)
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"sub": c.Subject, "uid": httpx.UserIDFromContext(r.Context())})
	}))

	serve := func(req *http.Request) (*httptest.ResponseRecorder, httpx.ErrorBody) {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		var body httpx.ErrorBody
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
		return rec, body
	}

	t.Run("valid bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/session", nil)
		req.Header.Set("Authorization", "Bearer "+mintAccess(t, time.Minute, time.Now()))

		rec, _ := serve(req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"sub":"user-42","uid":"user-42"}`, rec.Body.String())
	})

	t.Run("valid session cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/session", nil)
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: mintAccess(t, time.Minute, time.Now())})

		rec, _ := serve(req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		rec, body := serve(httptest.NewRequest(http.MethodGet, "/session", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Missing or invalid authorization header", body.Error)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/session", nil)
		req.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: mintAccess(t, time.Minute, time.Now())})

		rec, body := serve(req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, httpx.ReasonMissingToken, body.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/session", nil)
		req.Header.Set("Authorization", "Bearer "+mintAccess(t, 20*time.Second, time.Now().Add(-time.Minute)))

		rec, body := serve(req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Token expired", body.Error)
	})

	t.Run("forged token", func(t *testing.T) {
		other, err := jwtx.NewSignerHS256([]byte("someone-elses-secret"))
		require.NoError(t, err)
		tok, err := other.Sign(jwtx.NewAccessClaims("user-42", jwtx.Profile{}, time.Minute, "", time.Now()))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/session", nil)
		req.Header.Set("Authorization", "Bearer "+tok)

		rec, body := serve(req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Invalid token", body.Error)
	})

	require.Equal(t, []string{
		httpx.ReasonMissingToken,
		httpx.ReasonMissingToken,
		httpx.ReasonExpiredToken,
		httpx.ReasonInvalidToken,
	}, rejected)
}

func TestAuthGuardMisconfigured(t *testing.T) {
	t.Run("nil verifier", func(t *testing.T) {
		h := httpx.AuthGuard(nil)(okHandler())
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.JSONEq(t, `{"error":"Server misconfiguration","code":"server_misconfiguration"}`, rec.Body.String())
	})

	t.Run("empty secret", func(t *testing.T) {
		h := httpx.AuthGuard(jwtx.NewVerifierHS256(nil, "", jwtx.TokenTypeAccess))(okHandler())
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+mintAccess(t, time.Minute, time.Now()))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
