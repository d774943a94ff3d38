package authsdk

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGeneratePKCEChallenge(t *testing.T) {
	t.Parallel()

	pkce, err := GeneratePKCEChallenge()
	require.NoError(t, err)
	require.NotNil(t, pkce)
	require.Len(t, pkce.Verifier, 43)
	require.Equal(t, "S256", pkce.Method)

	hash := sha256.Sum256([]byte(pkce.Verifier))
	require.Equal(t, base64.RawURLEncoding.EncodeToString(hash[:]), pkce.Challenge)

	other, err := GeneratePKCEChallenge()
	require.NoError(t, err)
	require.NotEqual(t, pkce.Verifier, other.Verifier)
}

func TestGenerateStateAndNonce(t *testing.T) {
	t.Parallel()

	s, err := GenerateState()
	require.NoError(t, err)
	require.Regexp(t, `^[a-f0-9]{64}$`, s)

	n, err := GenerateAppleNonce()
	require.NoError(t, err)
	hash := sha256.Sum256([]byte(n.Raw))
	require.Equal(t, base64.RawURLEncoding.EncodeToString(hash[:]), n.Hashed)
}

func TestBuildAuthorizeURL(t *testing.T) {
	t.Parallel()

	client := NewSDKClient("https://app.example.com/")

	t.Run("minimal parameters", func(t *testing.T) {
		raw := client.BuildAuthorizeURL(AuthorizeParams{RedirectURI: "myapp://"})
		u, err := url.Parse(raw)
		require.NoError(t, err)
		require.Equal(t, "/api/auth/authorize", u.Path)
		require.Equal(t, "app.example.com", u.Host)

		q := u.Query()
		require.Equal(t, "google", q.Get("client_id"))
		require.Equal(t, "myapp://", q.Get("redirect_uri"))
		require.False(t, q.Has("state"))
		require.False(t, q.Has("code_challenge"))
	})

	t.Run("all parameters", func(t *testing.T) {
		pkce, err := GeneratePKCEChallenge()
		require.NoError(t, err)

		raw := client.BuildAuthorizeURL(AuthorizeParams{
			RedirectURI: "https://app.example.com",
			State:       "state123",
			Scopes:      []string{"openid", "email"},
			PKCE:        pkce,
		})
		u, err := url.Parse(raw)
		require.NoError(t, err)
		q := u.Query()
		require.Equal(t, "state123", q.Get("state"))
		require.Equal(t, "openid email", q.Get("scope"))
		require.Equal(t, pkce.Challenge, q.Get("code_challenge"))
		require.Equal(t, "S256", q.Get("code_challenge_method"))
	})
}

func TestParseErrorResponse(t *testing.T) {
	t.Parallel()

	resp := func(code int) *http.Response { return &http.Response{StatusCode: code} }

	t.Run("success", func(t *testing.T) {
		require.NoError(t, parseErrorResponse(resp(http.StatusOK), nil))
	})

	t.Run("service error body", func(t *testing.T) {
		err := parseErrorResponse(resp(http.StatusUnauthorized), []byte(`{"error":"Refresh token expired","code":"refresh_token_expired"}`))
		require.ErrorIs(t, err, ErrRefreshTokenExpired)
		require.NotErrorIs(t, err, ErrInvalidRefreshToken)
		require.True(t, IsUnauthorized(err))

		var e *Error
		require.True(t, errors.As(err, &e))
		require.Equal(t, "Refresh token expired", e.Message)
	})

	t.Run("non json body", func(t *testing.T) {
		err := parseErrorResponse(resp(http.StatusBadGateway), []byte("<html>"))
		var e *Error
		require.True(t, errors.As(err, &e))
		require.Equal(t, http.StatusBadGateway, e.StatusCode)
		require.Equal(t, ErrorCodeServerError, e.Code)
		require.False(t, IsUnauthorized(err))
	})
}

func TestUserFromClaimsExpiry(t *testing.T) {
	t.Parallel()

	require.True(t, User{}.Expiry().IsZero())
	require.Equal(t, int64(1700000000), User{ExpiresAt: 1700000000}.Expiry().Unix())
}
