package authsdk

import (
	"fmt"

	"github.com/betomoedano/expo-oauth-example/pkg/cryptox"
)

// PKCEChallenge holds the PKCE verifier and challenge pair.
// The verifier is kept secret by the client, and the challenge is sent to the authorization endpoint.
type PKCEChallenge struct {
	// Verifier is the high-entropy cryptographic random string (kept secret)
	Verifier string

	// Challenge is the base64url-encoded SHA256 hash of the verifier (sent to server)
	Challenge string

	// Method is always "S256" for SHA256
	Method string
}

// GeneratePKCEChallenge creates a new PKCE code verifier and challenge pair.
// Uses cryptox.TokenSize256 (256 bits of entropy) and SHA256 hashing per RFC 7636.
func GeneratePKCEChallenge() (*PKCEChallenge, error) {
	verifier, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PKCE verifier: %w", err)
	}

	return &PKCEChallenge{
		Verifier:  verifier,
		Challenge: cryptox.FingerprintToken(verifier),
		Method:    "S256",
	}, nil
}

// GenerateState returns a fresh 64 character hex state for /authorize.
func GenerateState() (string, error) {
	s, err := cryptox.GenerateHex(cryptox.TokenSize256)
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return s, nil
}

// AppleNonce is the nonce pair for Sign in with Apple. Hashed goes into the
// Apple request; Raw is sent to /api/auth/apple afterwards.
type AppleNonce struct {
	Raw    string
	Hashed string
}

// GenerateAppleNonce creates a random nonce and its base64url SHA-256 hash.
func GenerateAppleNonce() (*AppleNonce, error) {
	raw, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return &AppleNonce{Raw: raw, Hashed: cryptox.FingerprintToken(raw)}, nil
}
