package sqlitestore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/betomoedano/expo-oauth-example/pkg/authsdk"
	"github.com/betomoedano/expo-oauth-example/pkg/authsdk/sqlitestore"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T, path, passphrase string) *sqlitestore.Store {
	t.Helper()
	s, err := sqlitestore.Open(context.Background(), path, []byte(passphrase))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")
	rec := authsdk.SessionRecord{AccessToken: "access.jwt", RefreshToken: "refresh.jwt"}

	t.Run("empty store has no session", func(t *testing.T) {
		s := openStore(t, path, "hunter2")
		_, err := s.Load(ctx)
		require.ErrorIs(t, err, authsdk.ErrNoSession)
	})

	t.Run("save and load", func(t *testing.T) {
		s := openStore(t, path, "hunter2")
		require.NoError(t, s.Save(ctx, rec))

		got, err := s.Load(ctx)
		require.NoError(t, err)
		require.Equal(t, rec, got)
	})

	t.Run("survives reopen", func(t *testing.T) {
		s := openStore(t, path, "hunter2")
		got, err := s.Load(ctx)
		require.NoError(t, err)
		require.Equal(t, rec, got)
	})

	t.Run("wrong passphrase", func(t *testing.T) {
		s := openStore(t, path, "not-it")
		_, err := s.Load(ctx)
		require.ErrorIs(t, err, sqlitestore.ErrLocked)
	})

	t.Run("save overwrites and drops empty refresh", func(t *testing.T) {
		s := openStore(t, path, "hunter2")
		require.NoError(t, s.Save(ctx, authsdk.SessionRecord{AccessToken: "next.jwt"}))

		got, err := s.Load(ctx)
		require.NoError(t, err)
		require.Equal(t, authsdk.SessionRecord{AccessToken: "next.jwt"}, got)
	})

	t.Run("clear", func(t *testing.T) {
		s := openStore(t, path, "hunter2")
		require.NoError(t, s.Save(ctx, rec))
		require.NoError(t, s.Clear(ctx))

		_, err := s.Load(ctx)
		require.ErrorIs(t, err, authsdk.ErrNoSession)
	})
}

func TestStoreBacksBearerTransport(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, filepath.Join(t.TempDir(), "session.db"), "pw")

	tr := authsdk.NewBearerTransport(authsdk.NewSDKClient("https://auth.invalid"), s)
	_, status, err := tr.Restore(ctx)
	require.NoError(t, err)
	require.Equal(t, authsdk.RestoreNone, status)
}
