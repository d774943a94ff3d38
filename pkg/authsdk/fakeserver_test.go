package authsdk_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/betomoedano/expo-oauth-example/internal/auth/domain"
	"github.com/betomoedano/expo-oauth-example/internal/auth/service"
	"github.com/betomoedano/expo-oauth-example/pkg/authsdk"
	"github.com/betomoedano/expo-oauth-example/pkg/httpx"
	"github.com/betomoedano/expo-oauth-example/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var testIdentity = domain.Identity{
	Subject:  "google-42",
	Email:    "ada@example.com",
	Name:     "Ada Lovelace",
	Provider: domain.ProviderGoogle,
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// fakeServer mimics the auth service endpoints the SDK talks to, minting
// real tokens so the guard and the client decode them for real.
type fakeServer struct {
	*httptest.Server
	tokens *service.TokenService
	clock  *testClock

	refreshCalls  atomic.Int32
	protectedHits atomic.Int32
	rejectHits    atomic.Int32
	failRefresh   atomic.Bool

	mu sync.Mutex

	// refreshGate, when set, holds every /refresh until it is closed.
	refreshGate   chan struct{}
	lastCode      string
	lastVerifier  string
	lastPlatform  string
	logouts       int
	logoutRefresh string
	lastApple     authsdk.AppleRequest
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()

	clock := &testClock{t: time.Now().Truncate(time.Second)}
	tokens, err := service.NewTokenService(service.TokenConfig{
		AccessSecret:  []byte("sdk-access-secret"),
		RefreshSecret: []byte("sdk-refresh-secret"),
		Issuer:        "https://auth.test",
		AccessTTL:     20 * time.Second,
		RefreshTTL:    24 * time.Hour,
	})
	require.NoError(t, err)
	tokens.WithClock(clock.now)

	f := &fakeServer{tokens: tokens, clock: clock}

	guard := httpx.AuthGuard(tokens.AccessVerifier(), httpx.WithSessionCookie(authsdk.AccessCookieName))

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+authsdk.PathToken, f.handleToken)
	mux.HandleFunc("POST "+authsdk.PathRefresh, f.handleRefresh)
	mux.HandleFunc("POST "+authsdk.PathLogout, f.handleLogout)
	mux.HandleFunc("POST "+authsdk.PathApple, f.handleApple)
	mux.HandleFunc("POST "+authsdk.PathGoogle, f.handleGoogle)
	mux.Handle("GET "+authsdk.PathSession, guard(http.HandlerFunc(f.handleSession)))
	mux.Handle("/protected", guard(http.HandlerFunc(f.handleProtected)))
	mux.HandleFunc("/reject", func(w http.ResponseWriter, r *http.Request) {
		f.rejectHits.Add(1)
		authsdk.ErrInvalidToken.WriteError(w)
	})

	f.Server = httptest.NewTLSServer(mux)
	t.Cleanup(f.Close)
	return f
}

// holdRefresh makes /refresh block until the returned channel is closed.
func (f *fakeServer) holdRefresh() chan struct{} {
	gate := make(chan struct{})
	f.mu.Lock()
	f.refreshGate = gate
	f.mu.Unlock()
	return gate
}

func (f *fakeServer) sdk() *authsdk.SDKClient {
	return authsdk.NewSDKClient(f.URL).WithHTTPClient(f.Client())
}

func (f *fakeServer) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || r.PostForm.Get("code") == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if r.PostForm.Get("code") == "bad-code" {
		authsdk.NewError(http.StatusBadRequest, authsdk.ErrorCodeProviderExchangeError, "invalid_grant").WriteError(w)
		return
	}

	f.mu.Lock()
	f.lastCode = r.PostForm.Get("code")
	f.lastVerifier = r.PostForm.Get("code_verifier")
	f.lastPlatform = r.PostForm.Get("platform")
	f.mu.Unlock()

	pair, err := f.tokens.Mint(r.Context(), testIdentity)
	if err != nil {
		authsdk.ErrServerError.WriteError(w)
		return
	}

	if r.PostForm.Get("platform") == authsdk.PlatformWeb {
		f.setCookies(w, pair)
		httpx.WriteJSON(w, http.StatusOK, authsdk.WebTokenResponse{
			Success:   true,
			IssuedAt:  pair.IssuedAt.Unix(),
			ExpiresAt: pair.AccessExpiresAt.Unix(),
		})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (f *fakeServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	f.refreshCalls.Add(1)
	f.mu.Lock()
	gate := f.refreshGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	var req authsdk.RefreshRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	if f.failRefresh.Load() {
		authsdk.ErrInvalidRefreshToken.WriteError(w)
		return
	}

	token := req.RefreshToken
	if req.Platform == authsdk.PlatformWeb {
		if c, err := r.Cookie(authsdk.RefreshCookieName); err == nil {
			token = c.Value
		}
	}
	if token == "" {
		authsdk.ErrMissingRefreshToken.WriteError(w)
		return
	}

	pair, _, err := f.tokens.Rotate(r.Context(), token)
	switch {
	case errors.Is(err, service.ErrRefreshExpired):
		authsdk.ErrRefreshTokenExpired.WriteError(w)
		return
	case err != nil:
		authsdk.ErrInvalidRefreshToken.WriteError(w)
		return
	}

	if req.Platform == authsdk.PlatformWeb {
		f.setCookies(w, pair)
		claims, _ := jwtx.ParseUnverified(pair.AccessToken)
		httpx.WriteJSON(w, http.StatusOK, authsdk.UserFromClaims(claims))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (f *fakeServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LogoutRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	f.logouts++
	f.logoutRefresh = req.RefreshToken
	f.mu.Unlock()

	for _, name := range []string{authsdk.AccessCookieName, authsdk.RefreshCookieName} {
		http.SetCookie(w, &http.Cookie{Name: name, Path: "/", MaxAge: -1, HttpOnly: true, Secure: true})
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.SuccessResponse{Success: true})
}

func (f *fakeServer) handleApple(w http.ResponseWriter, r *http.Request) {
	var req authsdk.AppleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IdentityToken == "" {
		authsdk.ErrMissingIDToken.WriteError(w)
		return
	}
	if req.RawNonce != "expected-nonce" {
		authsdk.ErrInvalidNonce.WriteError(w)
		return
	}
	f.mu.Lock()
	f.lastApple = req
	f.mu.Unlock()

	id := testIdentity
	id.Provider = domain.ProviderApple
	if req.GivenName != "" {
		id.Name = req.GivenName + " " + req.FamilyName
	}
	f.writePair(w, r, id)
}

func (f *fakeServer) handleGoogle(w http.ResponseWriter, r *http.Request) {
	var req authsdk.GoogleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IDToken == "" {
		authsdk.ErrMissingIDToken.WriteError(w)
		return
	}
	f.writePair(w, r, testIdentity)
}

func (f *fakeServer) writePair(w http.ResponseWriter, r *http.Request, id domain.Identity) {
	pair, err := f.tokens.Mint(r.Context(), id)
	if err != nil {
		authsdk.ErrServerError.WriteError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (f *fakeServer) handleSession(w http.ResponseWriter, r *http.Request) {
	claims, _ := httpx.ClaimsFromContext(r.Context())
	httpx.WriteJSON(w, http.StatusOK, authsdk.UserFromClaims(claims))
}

// handleProtected echoes the request body so retries can be checked for a
// replayed payload.
func (f *fakeServer) handleProtected(w http.ResponseWriter, r *http.Request) {
	f.protectedHits.Add(1)
	body, _ := io.ReadAll(r.Body)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (f *fakeServer) setCookies(w http.ResponseWriter, pair domain.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name: authsdk.AccessCookieName, Value: pair.AccessToken, Path: "/",
		MaxAge: int(f.tokens.AccessTTL().Seconds()), HttpOnly: true, Secure: true, SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name: authsdk.RefreshCookieName, Value: pair.RefreshToken, Path: "/",
		MaxAge: int(f.tokens.RefreshTTL().Seconds()), HttpOnly: true, Secure: true, SameSite: http.SameSiteLaxMode,
	})
}
