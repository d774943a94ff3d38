package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/betomoedano/expo-oauth-example/pkg/httpx"
)

// ============================================================================
// Error Codes
// ============================================================================

const (
	ErrorCodeInvalidState          = "invalid_state"
	ErrorCodeInvalidRedirectURI    = "invalid_redirect_uri"
	ErrorCodeInvalidClient         = "invalid_client"
	ErrorCodeInvalidRequest        = "invalid_request"
	ErrorCodeMissingIDToken        = "missing_id_token"
	ErrorCodeInvalidIDToken        = "invalid_id_token"
	ErrorCodeInvalidNonce          = "invalid_nonce"
	ErrorCodeRefreshTokenExpired   = "refresh_token_expired"
	ErrorCodeInvalidRefreshToken   = "invalid_refresh_token"
	ErrorCodeMissingToken          = httpx.ReasonMissingToken
	ErrorCodeInvalidToken          = httpx.ReasonInvalidToken
	ErrorCodeExpiredToken          = httpx.ReasonExpiredToken
	ErrorCodeServerMisconfigured   = httpx.ReasonMisconfigured
	ErrorCodeServerError           = "server_error"
	ErrorCodeRateLimited           = "rate_limited"
	ErrorCodeUnsupportedMediaType  = "unsupported_media_type"
	ErrorCodeProviderExchangeError = "provider_error"
)

// ============================================================================
// Error
// ============================================================================

// Error is the error body every endpoint of the service returns:
//
//	{"error": "<message>", "code": "<code>"}
//
// The server writes it with WriteError; the SDK parses non-2xx responses back
// into it so callers can use errors.As.
type Error struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"error"`

	// Description carries a provider's error_description when one is relayed.
	Description string `json:"error_description,omitempty"`
}

func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WriteError writes e as the HTTP response.
func (e *Error) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, e)
}

// Is matches on status and code so that a parsed response compares equal to
// the predefined value it was written from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.StatusCode == t.StatusCode && e.Code == t.Code
}

// NewError builds a custom Error.
func NewError(statusCode int, code, message string) *Error {
	return &Error{StatusCode: statusCode, Code: code, Message: message}
}

// ============================================================================
// Predefined Errors
// ============================================================================

var (
	ErrInvalidState = &Error{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeInvalidState,
		Message:    "Invalid state",
	}

	ErrInvalidRedirectURI = &Error{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeInvalidRedirectURI,
		Message:    "Invalid redirect_uri",
	}

	ErrInvalidClient = &Error{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeInvalidClient,
		Message:    "Invalid client",
	}

	ErrInvalidRequest = &Error{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeInvalidRequest,
		Message:    "Missing required parameters",
	}

	ErrMissingRefreshToken = &Error{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeInvalidRequest,
		Message:    "Missing refresh token",
	}

	ErrUnsupportedMediaType = &Error{
		StatusCode: http.StatusUnsupportedMediaType,
		Code:       ErrorCodeUnsupportedMediaType,
		Message:    "Content-Type must be application/json",
	}

	ErrMissingIDToken = &Error{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeMissingIDToken,
		Message:    "Missing id_token",
	}

	ErrInvalidIDToken = &Error{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeInvalidIDToken,
		Message:    "Invalid identity token",
	}

	ErrInvalidNonce = &Error{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeInvalidNonce,
		Message:    "Invalid nonce",
	}

	ErrRefreshTokenExpired = &Error{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeRefreshTokenExpired,
		Message:    "Refresh token expired",
	}

	ErrInvalidRefreshToken = &Error{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeInvalidRefreshToken,
		Message:    "Invalid refresh token",
	}

	ErrMissingToken = &Error{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeMissingToken,
		Message:    "Missing or invalid authorization header",
	}

	ErrInvalidToken = &Error{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeInvalidToken,
		Message:    "Invalid token",
	}

	ErrExpiredToken = &Error{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeExpiredToken,
		Message:    "Token expired",
	}

	ErrRateLimited = &Error{
		StatusCode: http.StatusTooManyRequests,
		Code:       ErrorCodeRateLimited,
		Message:    "Too many requests",
	}

	ErrServerMisconfiguration = &Error{
		StatusCode: http.StatusInternalServerError,
		Code:       ErrorCodeServerMisconfigured,
		Message:    "Server misconfiguration",
	}

	ErrServerError = &Error{
		StatusCode: http.StatusInternalServerError,
		Code:       ErrorCodeServerError,
		Message:    "Internal server error",
	}
)

// ============================================================================
// Client-side errors
// ============================================================================

var (
	// ErrNoSession is returned by a SessionStore holding nothing.
	ErrNoSession = errors.New("authsdk: no stored session")

	// ErrStateMismatch is returned when a callback's state is not the one the
	// pending sign-in issued, or when the pending sign-in was already used.
	ErrStateMismatch = errors.New("authsdk: state mismatch or replayed callback")

	// ErrNotAuthenticated is returned when an operation needs a session and
	// there is none.
	ErrNotAuthenticated = errors.New("authsdk: not authenticated")

	// ErrUnsupported is returned for operations the transport's platform
	// does not offer, such as native Apple sign-in on web.
	ErrUnsupported = errors.New("authsdk: not supported on this platform")
)

// IsUnauthorized reports whether err is a 401 from the service.
func IsUnauthorized(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.StatusCode == http.StatusUnauthorized
}

// ============================================================================
// Error Parsing Helpers
// ============================================================================

// parseErrorResponse turns a non-2xx response into an *Error. Returns nil for
// 2xx responses.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var e Error
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		e.StatusCode = resp.StatusCode
		return &e
	}

	return &Error{
		StatusCode: resp.StatusCode,
		Code:       ErrorCodeServerError,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
