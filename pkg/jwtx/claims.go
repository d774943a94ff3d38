package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Default token TTL constants. Access tokens are deliberately tiny so the
// refresh path gets exercised constantly; refresh tokens live for days.
const (
	DefaultAccessTokenTTL  = 20 * time.Second
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour
)

// TokenType tells an access token apart from a refresh token. They are
// signed with different secrets, but the claim makes a mix-up explicit.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Profile is the identity payload carried by both token kinds.
type Profile struct {
	Email         string `json:"email,omitempty"`
	Name          string `json:"name,omitempty"`
	Picture       string `json:"picture,omitempty"`
	GivenName     string `json:"given_name,omitempty"`
	FamilyName    string `json:"family_name,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	Provider      string `json:"provider,omitempty"`
}

// Claims is the schema of every token this service mints.
type Claims struct {
	jwt.RegisteredClaims
	Profile

	Type TokenType `json:"type,omitempty"`
}

// NewAccessClaims builds access-token claims for subject. There is no jti
// on access tokens; they are never looked up again.
func NewAccessClaims(subject string, p Profile, ttl time.Duration, issuer string, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Profile: p,
		Type:    TokenTypeAccess,
	}
}

// NewRefreshClaims builds refresh-token claims with a fresh UUID token id.
func NewRefreshClaims(subject string, p Profile, ttl time.Duration, issuer string, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Profile: p,
		Type:    TokenTypeRefresh,
	}
}

// NewJTI returns a random UUIDv4 for the "jti" claim.
func NewJTI() string {
	return uuid.NewString()
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateType rejects tokens minted for the other purpose.
func (c *Claims) ValidateType(expected TokenType) error {
	if c.Type != expected {
		return ErrTokenType
	}
	return nil
}

// ValidateExpiry ensures the token carries an expiry and it is still ahead
// of now.
func (c *Claims) ValidateExpiry() error {
	return c.ValidateExpiryAt(time.Now())
}

// ValidateExpiryAt is ValidateExpiry against a caller supplied clock.
func (c *Claims) ValidateExpiryAt(now time.Time) error {
	if c.ExpiresAt == nil {
		return ErrInvalidClaim
	}
	if !now.Before(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}

// ExpiresIn reports how long is left before expiry. Zero for tokens that
// are already expired or carry no expiry.
func (c *Claims) ExpiresIn(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return max(c.ExpiresAt.Sub(now), 0)
}
