package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePlatform(t *testing.T) {
	for _, tc := range []struct {
		in      string
		want    Platform
		wantErr bool
	}{
		{"web", PlatformWeb, false},
		{"native", PlatformNative, false},
		{"", "", true},
		{"WEB", "", true},
		{"desktop", "", true},
	} {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParsePlatform(tc.in)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrUnknownPlatform)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestParsePlatformOrNative(t *testing.T) {
	p, err := ParsePlatformOrNative("")
	require.NoError(t, err)
	require.Equal(t, PlatformNative, p)

	p, err = ParsePlatformOrNative("web")
	require.NoError(t, err)
	require.Equal(t, PlatformWeb, p)

	_, err = ParsePlatformOrNative("ios")
	require.Error(t, err)
}
