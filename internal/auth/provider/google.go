package provider

import (
	"context"
	"fmt"

	"github.com/betomoedano/expo-oauth-example/internal/auth/domain"
)

// GoogleVerifier is the generic OIDC verifier configured for Google. Google
// signs with either spelling of its issuer.
type GoogleVerifier struct {
	v *idTokenVerifier
}

// NewGoogleVerifier returns a verifier for Google ID tokens. When
// cfg.Issuers is empty both Google issuer spellings are accepted.
func NewGoogleVerifier(cfg OIDCConfig) *GoogleVerifier {
	if len(cfg.Issuers) == 0 {
		cfg.Issuers = []string{GoogleIssuer, "accounts.google.com"}
	}
	return &GoogleVerifier{v: newIDTokenVerifier(cfg)}
}

func (g *GoogleVerifier) Provider() string { return domain.ProviderGoogle }

type googleClaims struct {
	Email         string   `json:"email"`
	EmailVerified flexBool `json:"email_verified"`
	Name          string   `json:"name"`
	Picture       string   `json:"picture"`
	GivenName     string   `json:"given_name"`
	FamilyName    string   `json:"family_name"`
}

// Verify ignores the nonce; the code flow binds the request through state.
func (g *GoogleVerifier) Verify(ctx context.Context, raw string, _ VerifyContext) (domain.Identity, error) {
	tok, err := g.v.verify(ctx, raw)
	if err != nil {
		return domain.Identity{}, err
	}

	var c googleClaims
	if err := tok.Claims(&c); err != nil {
		return domain.Identity{}, fmt.Errorf("%w: claims: %v", ErrInvalidIDToken, err)
	}

	return domain.Identity{
		Subject:       tok.Subject,
		Email:         c.Email,
		Name:          c.Name,
		Picture:       c.Picture,
		GivenName:     c.GivenName,
		FamilyName:    c.FamilyName,
		EmailVerified: bool(c.EmailVerified),
		Provider:      domain.ProviderGoogle,
	}, nil
}
