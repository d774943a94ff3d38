package authsdk_test

import (
	"context"
	"testing"

	"github.com/betomoedano/expo-oauth-example/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := authsdk.NewMemoryStore()

	_, err := s.Load(ctx)
	require.ErrorIs(t, err, authsdk.ErrNoSession)

	rec := authsdk.SessionRecord{AccessToken: "a", RefreshToken: "r"}
	require.NoError(t, s.Save(ctx, rec))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, rec, got)

	require.NoError(t, s.Clear(ctx))
	_, err = s.Load(ctx)
	require.ErrorIs(t, err, authsdk.ErrNoSession)
}
