package authsdk

import (
	"context"
	"net/http"
)

// RestoreStatus is what a transport found when asked for an existing session.
type RestoreStatus int

const (
	// RestoreNone means there is no session to resume.
	RestoreNone RestoreStatus = iota
	// RestoreAuthenticated means the access credential is still good.
	RestoreAuthenticated
	// RestoreNeedsRefresh means only the refresh credential is left.
	RestoreNeedsRefresh
)

// SessionTransport is how a SessionController moves credentials: cookies on
// web, bearer tokens from a SessionStore on native. It is chosen once when the
// controller is built.
type SessionTransport interface {
	// Platform is PlatformWeb or PlatformNative.
	Platform() string
	// HTTPClient sends authenticated requests.
	HTTPClient() *http.Client
	// Restore inspects stored credentials without refreshing them.
	Restore(ctx context.Context) (*User, RestoreStatus, error)
	// Exchange redeems an authorization code and keeps the resulting session.
	Exchange(ctx context.Context, code, codeVerifier string) (*User, error)
	// Rotate trades the refresh credential for a new pair.
	Rotate(ctx context.Context) (*User, error)
	// Attach adds credentials to an outgoing request.
	Attach(req *http.Request) error
	// SignOut tells the server the session is over.
	SignOut(ctx context.Context) error
	// Clear drops local credentials.
	Clear(ctx context.Context) error
}

// NativeSignIn is implemented by transports that can adopt a pair minted from
// a provider token obtained on the device.
type NativeSignIn interface {
	SignInWithApple(ctx context.Context, req AppleRequest) (*User, error)
	SignInWithGoogle(ctx context.Context, idToken string) (*User, error)
}
