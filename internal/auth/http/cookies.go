package http

import (
	"net/http"
	"time"

	"github.com/betomoedano/expo-oauth-example/internal/auth/domain"
	"github.com/betomoedano/expo-oauth-example/pkg/authsdk"
)

// CookieConfig shapes the web session cookies.
type CookieConfig struct {
	// Secure should only be false for plain-http local development.
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (c CookieConfig) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// setSession writes both session cookies for a freshly minted pair.
func (c CookieConfig) setSession(w http.ResponseWriter, pair domain.TokenPair) {
	http.SetCookie(w, c.cookie(authsdk.AccessCookieName, pair.AccessToken, int(c.AccessTTL.Seconds())))
	http.SetCookie(w, c.cookie(authsdk.RefreshCookieName, pair.RefreshToken, int(c.RefreshTTL.Seconds())))
}

// clearSession expires both cookies.
func (c CookieConfig) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie(authsdk.AccessCookieName, "", -1))
	http.SetCookie(w, c.cookie(authsdk.RefreshCookieName, "", -1))
}

// userFromIdentity is the identity body returned by /session and a web
// /refresh.
func userFromIdentity(id domain.Identity, expiresAt time.Time) authsdk.User {
	u := authsdk.User{
		Subject:       id.Subject,
		Email:         id.Email,
		Name:          id.Name,
		Picture:       id.Picture,
		GivenName:     id.GivenName,
		FamilyName:    id.FamilyName,
		EmailVerified: id.EmailVerified,
		Provider:      id.Provider,
	}
	if !expiresAt.IsZero() {
		u.ExpiresAt = expiresAt.Unix()
	}
	return u
}
