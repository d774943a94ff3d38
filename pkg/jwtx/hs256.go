package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HS256Signer signs claims with a shared HMAC secret.
type HS256Signer struct {
	secret []byte
}

// NewSignerHS256 returns a signer for secret. An empty secret is refused.
func NewSignerHS256(secret []byte) (*HS256Signer, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	return &HS256Signer{secret: secret}, nil
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign takes your claims and turns them into a signed JWT string.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// HS256Verifier validates JWTs signed using HS256 with one secret and one
// expected token type.
type HS256Verifier struct {
	secret []byte
	issuer string
	typ    TokenType
	now    func() time.Time
}

// NewVerifierHS256 creates a verifier. An empty issuer disables the check.
func NewVerifierHS256(secret []byte, issuer string, typ TokenType) *HS256Verifier {
	return &HS256Verifier{secret: secret, issuer: issuer, typ: typ, now: time.Now}
}

// WithClock swaps the verifier clock. Tests only.
func (v *HS256Verifier) WithClock(now func() time.Time) *HS256Verifier {
	v.now = now
	return v
}

// Verify checks the signature before any claim; a forged token reports
// ErrInvalidSig even when it is also expired.
func (v *HS256Verifier) Verify(tokenStr string) (Claims, error) {
	if len(v.secret) == 0 {
		return Claims{}, ErrEmptySecret
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	var claims Claims
	token, err := parser.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrTokenUnverifiable) {
			return Claims{}, fmt.Errorf("%w: %v", ErrInvalidSig, err)
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !token.Valid {
		return Claims{}, ErrInvalidSig
	}

	if err := claims.ValidateType(v.typ); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiryAt(v.now()); err != nil {
		return Claims{}, err
	}
	if claims.Subject == "" {
		return Claims{}, ErrInvalidClaim
	}

	return claims, nil
}
