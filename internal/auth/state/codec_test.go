package state_test

import (
	"strings"
	"testing"

	"github.com/betomoedano/expo-oauth-example/internal/auth/domain"
	"github.com/betomoedano/expo-oauth-example/internal/auth/state"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	for _, p := range []domain.Platform{domain.PlatformWeb, domain.PlatformNative} {
		t.Run(string(p), func(t *testing.T) {
			t.Parallel()

			for range 100 {
				s, err := state.New(p)
				require.NoError(t, err)
				require.Len(t, s.Random, 64)

				encoded := state.Encode(s)
				require.True(t, strings.HasSuffix(encoded, "."+string(p)))

				decoded, err := state.Decode(encoded)
				require.NoError(t, err)
				require.Equal(t, s, decoded)
				require.Equal(t, p, decoded.PlatformOrNative())
			}
		})
	}
}

func TestFreshRandomEachTime(t *testing.T) {
	a, err := state.New(domain.PlatformWeb)
	require.NoError(t, err)
	b, err := state.New(domain.PlatformWeb)
	require.NoError(t, err)
	require.NotEqual(t, a.Random, b.Random)
}

func TestLegacyStateWithoutPlatform(t *testing.T) {
	raw := strings.Repeat("ab", 32)

	s, err := state.Decode(raw)
	require.NoError(t, err)
	require.Empty(t, s.Platform)
	require.Equal(t, raw, s.Random)
	require.Equal(t, domain.PlatformNative, s.PlatformOrNative())
	require.Equal(t, raw, state.Encode(s))
}

func TestDecodeRejects(t *testing.T) {
	valid := strings.Repeat("0f", 32)

	for name, raw := range map[string]string{
		"empty":             "",
		"too short":         valid[:63],
		"too long":          valid + "0",
		"uppercase hex":     strings.ToUpper(valid),
		"non hex":           strings.Repeat("zz", 32),
		"unknown platform":  valid + ".desktop",
		"empty platform":    valid + ".",
		"double suffix":     valid + ".web.native",
		"pipe separator":    "web|" + valid,
		"leading space":     " " + valid,
		"trailing newline":  valid + ".web\n",
		"platform case":     valid + ".Web",
		"only platform tag": ".native",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := state.Decode(raw)
			require.ErrorIs(t, err, state.ErrInvalidState)
		})
	}
}

func TestValidRandom(t *testing.T) {
	require.True(t, state.ValidRandom(strings.Repeat("a1", 32)))
	require.False(t, state.ValidRandom(strings.Repeat("a1", 32)+".web"))
	require.False(t, state.ValidRandom("abc"))
}
