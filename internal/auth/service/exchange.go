package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/betomoedano/expo-oauth-example/internal/auth/domain"
	"github.com/betomoedano/expo-oauth-example/internal/auth/provider"
	"github.com/betomoedano/expo-oauth-example/pkg/slogx"
)

// Fallbacks for Apple sign-ins after the first one, when Apple no longer
// sends the user's name.
const (
	AppleFallbackName = "apple-user"
)

// codeExchanger is the part of provider.CodeExchanger the exchange uses.
type codeExchanger interface {
	Configured() bool
	Exchange(ctx context.Context, code, codeVerifier string) (string, error)
}

// ExchangeService turns provider proof into our own token pair.
type ExchangeService struct {
	Exchanger codeExchanger
	Google    provider.IdentityVerifier
	Apple     provider.IdentityVerifier
	Tokens    *TokenService
}

// ExchangeCode redeems an authorization code with the provider, verifies the
// returned ID token and mints a pair for the identity in it.
func (s *ExchangeService) ExchangeCode(ctx context.Context, code, codeVerifier string) (domain.TokenPair, domain.Identity, error) {
	if strings.TrimSpace(code) == "" {
		return domain.TokenPair{}, domain.Identity{}, ErrInvalidRequest
	}
	if s.Exchanger == nil || !s.Exchanger.Configured() || s.Google == nil {
		return domain.TokenPair{}, domain.Identity{}, fmt.Errorf("%w: code exchange not configured", ErrMisconfigured)
	}

	raw, err := s.Exchanger.Exchange(ctx, code, codeVerifier)
	if err != nil {
		return domain.TokenPair{}, domain.Identity{}, mapProviderError(err)
	}

	return s.verifyAndMint(ctx, s.Google, raw, provider.VerifyContext{})
}

// SignInWithGoogleIDToken accepts an ID token the native Google SDK obtained
// on the device.
func (s *ExchangeService) SignInWithGoogleIDToken(ctx context.Context, idToken string) (domain.TokenPair, domain.Identity, error) {
	if s.Google == nil {
		return domain.TokenPair{}, domain.Identity{}, fmt.Errorf("%w: google verifier not configured", ErrMisconfigured)
	}
	if idToken == "" {
		return domain.TokenPair{}, domain.Identity{}, ErrMissingIDToken
	}
	return s.verifyAndMint(ctx, s.Google, idToken, provider.VerifyContext{})
}

// AppleSignIn is what the native Apple button hands the client. Apple sends
// name and email to the client only on the very first authorization.
type AppleSignIn struct {
	IdentityToken string
	RawNonce      string
	GivenName     string
	FamilyName    string
	Email         string
}

// SignInWithApple verifies an Apple identity token and its nonce, then mints.
// On a first sign-in the client-supplied name and email are trusted; later
// sign-ins fall back to the token's email and a placeholder name.
func (s *ExchangeService) SignInWithApple(ctx context.Context, in AppleSignIn) (domain.TokenPair, domain.Identity, error) {
	if s.Apple == nil {
		return domain.TokenPair{}, domain.Identity{}, fmt.Errorf("%w: apple verifier not configured", ErrMisconfigured)
	}
	if in.IdentityToken == "" {
		return domain.TokenPair{}, domain.Identity{}, ErrMissingIDToken
	}

	id, err := s.Apple.Verify(ctx, in.IdentityToken, provider.VerifyContext{RawNonce: in.RawNonce})
	if err != nil {
		return domain.TokenPair{}, domain.Identity{}, mapProviderError(err)
	}

	firstSignIn := in.GivenName != "" && in.Email != ""
	if firstSignIn {
		id.GivenName = in.GivenName
		id.FamilyName = in.FamilyName
		id.Name = strings.TrimSpace(in.GivenName + " " + in.FamilyName)
		id.Email = in.Email
	} else if id.Name == "" {
		id.Name = AppleFallbackName
	}

	slogx.FromContext(ctx).Info("apple sign-in verified", "sub", id.Subject, "first_sign_in", firstSignIn)
	return s.mint(ctx, id)
}

func (s *ExchangeService) verifyAndMint(ctx context.Context, v provider.IdentityVerifier, raw string, vc provider.VerifyContext) (domain.TokenPair, domain.Identity, error) {
	id, err := v.Verify(ctx, raw, vc)
	if err != nil {
		slogx.FromContext(ctx).Warn("id token rejected", "provider", v.Provider(), "err", err)
		return domain.TokenPair{}, domain.Identity{}, mapProviderError(err)
	}
	return s.mint(ctx, id)
}

func (s *ExchangeService) mint(ctx context.Context, id domain.Identity) (domain.TokenPair, domain.Identity, error) {
	pair, err := s.Tokens.Mint(ctx, id)
	if err != nil {
		return domain.TokenPair{}, domain.Identity{}, err
	}
	slogx.FromContext(ctx).Info("session issued", "sub", id.Subject, "provider", id.Provider)
	return pair, id, nil
}

// mapProviderError folds provider package errors into service errors. A
// *provider.ProviderError passes through untouched so the handler can relay
// the provider's error code.
func mapProviderError(err error) error {
	var pe *provider.ProviderError
	switch {
	case errors.As(err, &pe):
		return err
	case errors.Is(err, provider.ErrMissingIDToken):
		return ErrMissingIDToken
	case errors.Is(err, provider.ErrInvalidNonce):
		return ErrInvalidNonce
	case errors.Is(err, provider.ErrNotConfigured):
		return fmt.Errorf("%w: %v", ErrMisconfigured, err)
	case errors.Is(err, provider.ErrInvalidIDToken):
		return fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
	default:
		return fmt.Errorf("provider exchange: %w", err)
	}
}
