/*
Package authsdk is the client side of the auth service: a thin HTTP client for
its endpoints and a SessionController that keeps one user session alive.

# SDKClient vs SessionController

SDKClient maps one method to one endpoint and holds no state:

	client := authsdk.NewSDKClient("https://app.example.com")
	health, err := client.GetLiveness(ctx)

SessionController owns the session. It is built over a SessionTransport chosen
once for the platform:

	// Web: tokens live in HTTP-only cookies inside the transport's jar.
	tr, err := authsdk.NewCookieTransport(client)

	// Native: tokens live in a SessionStore, sent as bearer headers.
	tr := authsdk.NewBearerTransport(client, store)

	session := authsdk.NewSessionController(client, tr)
	defer session.Close()

Pass the controller to whatever needs it; there is no package-level session.

# Signing in

	authURL, err := session.BeginSignIn("myapp://")
	// open authURL in a browser; the service redirects back to
	// myapp://?code=...&state=...
	err = session.CompleteSignIn(ctx, callbackURL)

BeginSignIn remembers a fresh state (and a PKCE verifier on native).
CompleteSignIn consumes it; a second call with the same callback fails with
ErrStateMismatch.

Native apps that obtained a provider token on the device use
SignInWithApple or SignInWithGoogleIDToken instead.

# Refresh

Access tokens are short lived. FetchWithAuth attaches credentials and, on a
401, refreshes once and retries once:

	req, _ := http.NewRequest(http.MethodGet, apiURL, nil)
	resp, err := session.FetchWithAuth(ctx, req)

Any number of concurrent callers share a single refresh. A failed refresh
signs the session out locally.

# States

	Unauthenticated -> Restoring -> Authenticated | Refreshing | Unauthenticated
	Authenticated   -> Refreshing -> Authenticated | SigningOut -> Unauthenticated
	Authenticated   -> SigningOut -> Unauthenticated

View and Subscribe expose the current User, a loading flag and the last error.

# Errors

Non-2xx responses come back as *Error with the service's status, code and
message. IsUnauthorized reports 401s. Predefined values such as
ErrRefreshTokenExpired compare with errors.Is.
*/
package authsdk
