package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/betomoedano/expo-oauth-example/internal/auth/domain"
	authhttp "github.com/betomoedano/expo-oauth-example/internal/auth/http"
	"github.com/betomoedano/expo-oauth-example/internal/auth/service"
	"github.com/betomoedano/expo-oauth-example/pkg/authsdk"
	"github.com/betomoedano/expo-oauth-example/pkg/authsdk/sqlitestore"
	"github.com/betomoedano/expo-oauth-example/pkg/slogx"
)

type harness struct {
	server *httptest.Server
	tokens *service.TokenService
	store  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	tokens, err := service.NewTokenService(service.TokenConfig{
		AccessSecret:  []byte("cli-access"),
		RefreshSecret: []byte("cli-refresh"),
		Issuer:        "cli-test",
		AccessTTL:     20 * time.Second,
		RefreshTTL:    time.Hour,
	})
	require.NoError(t, err)

	router := authhttp.NewRouter(authhttp.RouterConfig{
		BuildVersion: "test",
		Cookies:      authhttp.CookieConfig{AccessTTL: tokens.AccessTTL(), RefreshTTL: tokens.RefreshTTL()},
		Limits:       authhttp.DefaultLimits(),
	}, slogx.Discard())
	router.Tokens = tokens
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &harness{server: srv, tokens: tokens, store: filepath.Join(t.TempDir(), "session.db")}
}

// seed stores a pair as a previous sign-in would have.
func (h *harness) seed(t *testing.T, issuedAt time.Time) domain.TokenPair {
	t.Helper()
	ctx := context.Background()

	h.tokens.WithClock(func() time.Time { return issuedAt })
	defer h.tokens.WithClock(time.Now)

	pair, err := h.tokens.Mint(ctx, domain.Identity{Subject: "google-cli", Email: "cli@example.com", Provider: domain.ProviderGoogle})
	require.NoError(t, err)

	store, err := sqlitestore.Open(ctx, "file:"+h.store, []byte("pass"))
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Save(ctx, authsdk.SessionRecord{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}))
	return pair
}

func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--server", h.server.URL, "--store", h.store, "--passphrase", "pass"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestStatus(t *testing.T) {
	t.Run("no session", func(t *testing.T) {
		h := newHarness(t)
		out, err := h.run(t, "status")
		require.NoError(t, err)
		require.Contains(t, out, "not signed in")
	})

	t.Run("valid session", func(t *testing.T) {
		h := newHarness(t)
		h.seed(t, time.Now())

		out, err := h.run(t, "status")
		require.NoError(t, err)
		require.Contains(t, out, "signed in as google-cli <cli@example.com> via google")
	})

	t.Run("expired access token is refreshed", func(t *testing.T) {
		h := newHarness(t)
		old := h.seed(t, time.Now().Add(-time.Minute))

		out, err := h.run(t, "status")
		require.NoError(t, err)
		require.Contains(t, out, "signed in as google-cli")

		store, err := sqlitestore.Open(context.Background(), "file:"+h.store, []byte("pass"))
		require.NoError(t, err)
		defer store.Close()
		rec, err := store.Load(context.Background())
		require.NoError(t, err)
		require.NotEqual(t, old.RefreshToken, rec.RefreshToken)
	})
}

func TestFetchAndLogout(t *testing.T) {
	h := newHarness(t)
	h.seed(t, time.Now())

	out, err := h.run(t, "fetch", authsdk.PathSession)
	require.NoError(t, err)
	require.Contains(t, out, `"sub":"google-cli"`)

	out, err = h.run(t, "logout")
	require.NoError(t, err)
	require.Contains(t, out, "signed out")

	out, err = h.run(t, "status")
	require.NoError(t, err)
	require.Contains(t, out, "not signed in")
}

func TestRefreshWithoutSession(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "refresh")
	require.ErrorIs(t, err, authsdk.ErrNotAuthenticated)
}

func TestPassphraseRequired(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"status", "--store", filepath.Join(t.TempDir(), "s.db")})
	t.Setenv("AUTHCLIENT_PASSPHRASE", "")

	err := cmd.Execute()
	require.ErrorContains(t, err, "passphrase is required")
}

func TestWrongPassphrase(t *testing.T) {
	h := newHarness(t)
	h.seed(t, time.Now())

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"status", "--server", h.server.URL, "--store", h.store, "--passphrase", "nope"})

	err := cmd.Execute()
	require.ErrorIs(t, err, sqlitestore.ErrLocked)
}
