// Package provider talks to the upstream identity providers: it exchanges
// authorization codes for ID tokens and verifies those ID tokens against the
// provider's published signing keys.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/betomoedano/expo-oauth-example/internal/auth/domain"
	"github.com/coreos/go-oidc/v3/oidc"
)

// Published endpoints of the supported providers.
const (
	GoogleIssuer   = "https://accounts.google.com"
	GoogleJWKSURL  = "https://www.googleapis.com/oauth2/v3/certs"
	GoogleAuthURL  = "https://accounts.google.com/o/oauth2/v2/auth"
	GoogleTokenURL = "https://oauth2.googleapis.com/token"

	AppleIssuer  = "https://appleid.apple.com"
	AppleJWKSURL = "https://appleid.apple.com/auth/keys"
)

var (
	ErrInvalidIDToken = errors.New("invalid id token")
	ErrInvalidNonce   = errors.New("invalid nonce")
	ErrNotConfigured  = errors.New("provider not configured")
)

// VerifyContext carries per-request inputs a verifier may need.
type VerifyContext struct {
	// RawNonce is the unhashed nonce the client generated before sign-in.
	RawNonce string
}

// IdentityVerifier turns a raw provider ID token into a verified identity.
// Implementations check signature, issuer, audience and expiry; some add
// provider specific checks such as the nonce.
type IdentityVerifier interface {
	Provider() string
	Verify(ctx context.Context, rawIDToken string, vc VerifyContext) (domain.Identity, error)
}

// OIDCConfig configures a verifier.
type OIDCConfig struct {
	// Issuers lists accepted "iss" values; the first is canonical.
	Issuers  []string
	ClientID string
	KeySet   oidc.KeySet

	// Now overrides the clock used for expiry. Tests only.
	Now func() time.Time
}

// RemoteKeySet fetches and caches the provider's JWKS on demand. The context
// must outlive the key set; client is used for every fetch.
func RemoteKeySet(ctx context.Context, jwksURL string, client *http.Client) oidc.KeySet {
	if client != nil {
		ctx = oidc.ClientContext(ctx, client)
	}
	return oidc.NewRemoteKeySet(ctx, jwksURL)
}

// idTokenVerifier is the provider independent part: signature, audience,
// expiry via go-oidc and an issuer allow-list on top.
type idTokenVerifier struct {
	issuers  []string
	clientID string
	verifier *oidc.IDTokenVerifier
}

func newIDTokenVerifier(cfg OIDCConfig) *idTokenVerifier {
	if len(cfg.Issuers) == 0 {
		panic("provider: at least one issuer is required")
	}
	return &idTokenVerifier{
		issuers:  cfg.Issuers,
		clientID: cfg.ClientID,
		verifier: oidc.NewVerifier(cfg.Issuers[0], cfg.KeySet, &oidc.Config{
			ClientID:        cfg.ClientID,
			SkipIssuerCheck: len(cfg.Issuers) > 1,
			Now:             cfg.Now,
		}),
	}
}

func (v *idTokenVerifier) verify(ctx context.Context, raw string) (*oidc.IDToken, error) {
	if v.clientID == "" {
		return nil, ErrNotConfigured
	}
	tok, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
	}
	if !slices.Contains(v.issuers, tok.Issuer) {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidIDToken, tok.Issuer)
	}
	if tok.Subject == "" {
		return nil, fmt.Errorf("%w: missing sub", ErrInvalidIDToken)
	}
	return tok, nil
}

// flexBool decodes booleans that some providers send as "true"/"false" strings.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*b = flexBool(t)
	case string:
		*b = flexBool(strings.EqualFold(t, "true"))
	case nil:
		*b = false
	default:
		return fmt.Errorf("unexpected boolean value %s", data)
	}
	return nil
}
