package httpx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/betomoedano/expo-oauth-example/pkg/jwtx"
	"github.com/betomoedano/expo-oauth-example/pkg/slogx"
)

// Rejection reasons reported by AuthGuard. They double as the "code" field
// of the error body.
const (
	ReasonMissingToken    = "missing_token"
	ReasonInvalidToken    = "invalid_token"
	ReasonExpiredToken    = "expired_token"
	ReasonMisconfigured   = "server_misconfiguration"
	msgMissingToken       = "Missing or invalid authorization header"
	msgInvalidToken       = "Invalid token"
	msgExpiredToken       = "Token expired"
	msgServerMisconfigure = "Server misconfiguration"
)

type guardOptions struct {
	cookie   string
	onReject func(r *http.Request, reason string)
}

// GuardOption tunes AuthGuard.
type GuardOption func(*guardOptions)

// WithSessionCookie makes AuthGuard fall back to the named cookie when no
// Authorization header is present. Web clients authenticate this way.
func WithSessionCookie(name string) GuardOption {
	return func(o *guardOptions) { o.cookie = name }
}

// WithRejectHook is called once per rejected request.
func WithRejectHook(fn func(r *http.Request, reason string)) GuardOption {
	return func(o *guardOptions) { o.onReject = fn }
}

// AuthGuard admits a request only with a valid, unexpired access token from
// the Authorization header (or the session cookie when configured). The
// verified claims are placed in the request context.
func AuthGuard(v jwtx.Verifier, opts ...GuardOption) Middleware {
	var o guardOptions
	for _, opt := range opts {
		opt(&o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			reject := func(status int, reason, msg string) {
				if o.onReject != nil {
					o.onReject(r, reason)
				}
				if status == http.StatusUnauthorized {
					w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+msg+`"`)
				}
				WriteError(w, status, reason, msg)
			}

			if v == nil {
				log.Error("auth guard has no verifier configured")
				reject(http.StatusInternalServerError, ReasonMisconfigured, msgServerMisconfigure)
				return
			}

			raw, ok := extractToken(r, o.cookie)
			if !ok {
				reject(http.StatusUnauthorized, ReasonMissingToken, msgMissingToken)
				return
			}

			claims, err := v.Verify(raw)
			switch {
			case err == nil:
			case errors.Is(err, jwtx.ErrExpired):
				reject(http.StatusUnauthorized, ReasonExpiredToken, msgExpiredToken)
				return
			case errors.Is(err, jwtx.ErrEmptySecret):
				log.Error("auth guard verifier has no secret")
				reject(http.StatusInternalServerError, ReasonMisconfigured, msgServerMisconfigure)
				return
			default:
				log.Warn("jwt verify failed", "err", err)
				reject(http.StatusUnauthorized, ReasonInvalidToken, msgInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithAuth(r.Context(), claims)))
		})
	}
}

// extractToken prefers the bearer header. A present but malformed header is
// not rescued by the cookie.
func extractToken(r *http.Request, cookie string) (string, bool) {
	if authz := r.Header.Get("Authorization"); authz != "" {
		scheme, token, found := strings.Cut(authz, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			return "", false
		}
		token = strings.TrimSpace(token)
		return token, token != ""
	}

	if cookie == "" {
		return "", false
	}
	c, err := r.Cookie(cookie)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
