package jwtx_test

import (
	"testing"
	"time"

	"github.com/betomoedano/expo-oauth-example/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestValidateIssuer(t *testing.T) {
	c := &jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "expo-auth",
		},
	}

	t.Run("matching issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer("expo-auth"))
	})

	t.Run("empty expected issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer(""))
	})

	t.Run("mismatched issuer", func(t *testing.T) {
		require.ErrorIs(t, c.ValidateIssuer("accounts.google.com"), jwtx.ErrIssuer)
	})
}

func TestValidateExpiry(t *testing.T) {
	now := time.Now().UTC()

	t.Run("valid token", func(t *testing.T) {
		claims := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
			},
		}
		require.NoError(t, claims.ValidateExpiry())
	})

	t.Run("expired token", func(t *testing.T) {
		claims := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
			},
		}
		require.ErrorIs(t, claims.ValidateExpiry(), jwtx.ErrExpired)
	})

	t.Run("expiry equal to now is expired", func(t *testing.T) {
		exp := now.Truncate(time.Second)
		claims := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(exp),
			},
		}
		require.ErrorIs(t, claims.ValidateExpiryAt(exp), jwtx.ErrExpired)
	})

	t.Run("not yet valid", func(t *testing.T) {
		claims := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
				NotBefore: jwt.NewNumericDate(now.Add(time.Minute)),
			},
		}
		require.ErrorIs(t, claims.ValidateExpiry(), jwtx.ErrNotYetValid)
	})

	t.Run("missing exp", func(t *testing.T) {
		claims := &jwtx.Claims{}
		require.ErrorIs(t, claims.ValidateExpiry(), jwtx.ErrInvalidClaim)
	})
}

func TestNewClaims(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	p := jwtx.Profile{Email: "ada@example.com", Name: "Ada", Provider: "google"}

	t.Run("access claims carry no jti", func(t *testing.T) {
		c := jwtx.NewAccessClaims("sub-1", p, 20*time.Second, "expo-auth", now)
		require.Equal(t, jwtx.TokenTypeAccess, c.Type)
		require.Empty(t, c.ID)
		require.Equal(t, now.Add(20*time.Second), c.ExpiresAt.Time)
		require.Equal(t, p, c.Profile)
	})

	t.Run("refresh claims carry a uuid jti", func(t *testing.T) {
		c := jwtx.NewRefreshClaims("sub-1", p, time.Hour, "expo-auth", now)
		require.Equal(t, jwtx.TokenTypeRefresh, c.Type)
		_, err := uuid.Parse(c.ID)
		require.NoError(t, err)
	})

	t.Run("expires in never negative", func(t *testing.T) {
		c := jwtx.NewAccessClaims("sub-1", p, time.Second, "", now)
		require.Equal(t, time.Second, c.ExpiresIn(now))
		require.Zero(t, c.ExpiresIn(now.Add(time.Hour)))
	})
}
