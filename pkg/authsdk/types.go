package authsdk

import (
	"time"

	"github.com/betomoedano/expo-oauth-example/pkg/jwtx"
)

// Platform values accepted by /token and /refresh.
const (
	PlatformWeb    = "web"
	PlatformNative = "native"
)

// ============================================================================
// Identity
// ============================================================================

// User is the identity carried in an access token, as returned by /session
// and by a web /refresh.
type User struct {
	Subject       string `json:"sub"`
	Email         string `json:"email,omitempty"`
	Name          string `json:"name,omitempty"`
	Picture       string `json:"picture,omitempty"`
	GivenName     string `json:"given_name,omitempty"`
	FamilyName    string `json:"family_name,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	Provider      string `json:"provider,omitempty"`

	// ExpiresAt is the access token's exp in Unix seconds.
	ExpiresAt int64 `json:"exp,omitempty"`
}

// UserFromClaims projects token claims onto User.
func UserFromClaims(c jwtx.Claims) User {
	u := User{
		Subject:       c.Subject,
		Email:         c.Email,
		Name:          c.Name,
		Picture:       c.Picture,
		GivenName:     c.GivenName,
		FamilyName:    c.FamilyName,
		EmailVerified: c.EmailVerified,
		Provider:      c.Provider,
	}
	if c.ExpiresAt != nil {
		u.ExpiresAt = c.ExpiresAt.Unix()
	}
	return u
}

// Expiry returns ExpiresAt as a time, zero when unknown.
func (u User) Expiry() time.Time {
	if u.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.Unix(u.ExpiresAt, 0)
}

// ============================================================================
// Token Types
// ============================================================================

// TokenPairResponse is what native clients receive from /token, /refresh,
// /apple and /google.
type TokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// WebTokenResponse is the body of a web /token call; the tokens themselves
// travel in cookies.
type WebTokenResponse struct {
	Success   bool  `json:"success"`
	IssuedAt  int64 `json:"issuedAt"`
	ExpiresAt int64 `json:"expiresAt"`
}

// RefreshRequest is the body of POST /api/auth/refresh. Web clients leave
// RefreshToken empty and send the cookie instead.
type RefreshRequest struct {
	Platform     string `json:"platform" validate:"omitempty,oneof=web native"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// LogoutRequest is the optional body of POST /api/auth/logout.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}

// AppleRequest is the body of POST /api/auth/apple. Apple hands the client
// the name and email only on the first authorization.
type AppleRequest struct {
	IdentityToken string `json:"identityToken" validate:"required"`
	RawNonce      string `json:"rawNonce" validate:"required"`
	GivenName     string `json:"givenName,omitempty"`
	FamilyName    string `json:"familyName,omitempty"`
	Email         string `json:"email,omitempty" validate:"omitempty,email"`
}

// GoogleRequest is the body of POST /api/auth/google.
type GoogleRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// SuccessResponse is {"success": true}.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the configuration the service needs to do its job.
type HealthChecks struct {
	// Signer is "ok" when both token secrets are loaded.
	Signer string `json:"signer"`

	// Google is "ok" when the Google client is configured.
	Google string `json:"google"`

	// Apple is "ok" when the Apple client id is configured, "disabled" otherwise.
	Apple string `json:"apple"`
}
