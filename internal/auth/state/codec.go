// Package state encodes the OAuth state parameter that rides through the
// provider redirect. It is a 64 character lowercase hex random value with an
// optional ".web" or ".native" suffix naming the originating platform.
package state

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/betomoedano/expo-oauth-example/internal/auth/domain"
	"github.com/betomoedano/expo-oauth-example/pkg/cryptox"
)

// RandomBytes is the entropy of the random part; hex doubles it to 64 chars.
const RandomBytes = 32

var (
	ErrInvalidState = errors.New("invalid state")

	pattern = regexp.MustCompile(`^[a-f0-9]{64}(\.(web|native))?$`)
	random  = regexp.MustCompile(`^[a-f0-9]{64}$`)
)

// AuthorizationState is the decoded state. Platform is empty for legacy
// states minted before the suffix existed.
type AuthorizationState struct {
	Random   string
	Platform domain.Platform
}

// New creates a fresh state for platform.
func New(p domain.Platform) (AuthorizationState, error) {
	r, err := cryptox.GenerateHex(RandomBytes)
	if err != nil {
		return AuthorizationState{}, fmt.Errorf("generate state: %w", err)
	}
	return AuthorizationState{Random: r, Platform: p}, nil
}

// Encode renders "<random>.<platform>", or just "<random>" without a platform.
func Encode(s AuthorizationState) string {
	if s.Platform == "" {
		return s.Random
	}
	return s.Random + "." + string(s.Platform)
}

func (s AuthorizationState) String() string { return Encode(s) }

// Decode parses an encoded state. Anything not matching the exact format is
// rejected with ErrInvalidState.
func Decode(raw string) (AuthorizationState, error) {
	if !pattern.MatchString(raw) {
		return AuthorizationState{}, ErrInvalidState
	}
	r, p, _ := strings.Cut(raw, ".")
	return AuthorizationState{Random: r, Platform: domain.Platform(p)}, nil
}

// ValidRandom reports whether s could be the random part of a state.
func ValidRandom(s string) bool {
	return random.MatchString(s)
}

// PlatformOrNative resolves legacy states to native, the only platform that
// existed before the suffix.
func (s AuthorizationState) PlatformOrNative() domain.Platform {
	if s.Platform == "" {
		return domain.PlatformNative
	}
	return s.Platform
}
