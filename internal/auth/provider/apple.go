package provider

import (
	"context"
	"fmt"

	"github.com/betomoedano/expo-oauth-example/internal/auth/domain"
	"github.com/betomoedano/expo-oauth-example/pkg/cryptox"
)

// AppleVerifier verifies Sign in with Apple identity tokens, including the
// nonce the client bound to the sign-in request.
type AppleVerifier struct {
	v *idTokenVerifier
}

// NewAppleVerifier returns a verifier for Apple identity tokens. ClientID is
// the app bundle identifier (or services id on the web).
func NewAppleVerifier(cfg OIDCConfig) *AppleVerifier {
	if len(cfg.Issuers) == 0 {
		cfg.Issuers = []string{AppleIssuer}
	}
	return &AppleVerifier{v: newIDTokenVerifier(cfg)}
}

func (a *AppleVerifier) Provider() string { return domain.ProviderApple }

type appleClaims struct {
	Email          string   `json:"email"`
	EmailVerified  flexBool `json:"email_verified"`
	IsPrivateEmail flexBool `json:"is_private_email"`
	Nonce          string   `json:"nonce"`
	NonceSupported flexBool `json:"nonce_supported"`
}

// Verify checks the token and then the nonce. Devices that support nonces
// echo the raw value; everything else carries base64url(sha256(raw)).
func (a *AppleVerifier) Verify(ctx context.Context, raw string, vc VerifyContext) (domain.Identity, error) {
	tok, err := a.v.verify(ctx, raw)
	if err != nil {
		return domain.Identity{}, err
	}

	var c appleClaims
	if err := tok.Claims(&c); err != nil {
		return domain.Identity{}, fmt.Errorf("%w: claims: %v", ErrInvalidIDToken, err)
	}
	if c.Nonce == "" {
		return domain.Identity{}, fmt.Errorf("%w: token carries no nonce", ErrInvalidNonce)
	}
	if !NonceMatches(c.Nonce, vc.RawNonce, bool(c.NonceSupported)) {
		return domain.Identity{}, ErrInvalidNonce
	}

	return domain.Identity{
		Subject:       tok.Subject,
		Email:         c.Email,
		EmailVerified: bool(c.EmailVerified),
		Provider:      domain.ProviderApple,
	}, nil
}

// NonceMatches applies Apple's nonce rule.
func NonceMatches(tokenNonce, rawNonce string, nonceSupported bool) bool {
	if rawNonce == "" {
		return false
	}
	expected := cryptox.FingerprintToken(rawNonce)
	if nonceSupported {
		expected = rawNonce
	}
	return cryptox.EqualStrings(tokenNonce, expected)
}
