package domain

import "time"

// TokenPair is one minting: a short-lived access token and a long-lived
// refresh token for the same identity.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	IssuedAt         time.Time
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}
