package authsdk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/betomoedano/expo-oauth-example/pkg/cryptox"
)

// DefaultRefreshTimeout bounds a shared refresh.
const DefaultRefreshTimeout = 15 * time.Second

// State is the lifecycle of a client session.
type State int

const (
	StateUnauthenticated State = iota
	StateRestoring
	StateAuthenticated
	StateRefreshing
	StateSigningOut
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateRestoring:
		return "restoring"
	case StateAuthenticated:
		return "authenticated"
	case StateRefreshing:
		return "refreshing"
	case StateSigningOut:
		return "signing_out"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// View is the UI-facing snapshot of the session.
type View struct {
	User      *User
	IsLoading bool
	Err       error
	State     State
}

// ControllerOption configures a SessionController.
type ControllerOption func(*SessionController)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) ControllerOption {
	return func(c *SessionController) { c.log = l }
}

// WithRefreshTimeout bounds each shared refresh.
func WithRefreshTimeout(d time.Duration) ControllerOption {
	return func(c *SessionController) { c.refreshTimeout = d }
}

type pendingSignIn struct {
	state    string
	verifier string
}

// SessionController owns one client session: restoring it at startup,
// signing in and out, refreshing once for any number of concurrent callers,
// and retrying requests that hit an expired access token.
//
// Create one per process and pass it to whatever needs it.
type SessionController struct {
	client         *SDKClient
	transport      SessionTransport
	log            *slog.Logger
	refreshTimeout time.Duration

	// lifetime outlives any single caller so that one caller giving up does
	// not cancel a refresh others are waiting on.
	lifetime context.Context
	cancel   context.CancelFunc
	refresh  singleflight.Group

	mu      sync.Mutex
	view    View
	pending *pendingSignIn
	subs    map[int]func(View)
	nextSub int
}

// NewSessionController builds a controller over transport. client supplies
// the /authorize URL; transport carries everything else.
func NewSessionController(client *SDKClient, transport SessionTransport, opts ...ControllerOption) *SessionController {
	ctx, cancel := context.WithCancel(context.Background())
	c := &SessionController{
		client:         client,
		transport:      transport,
		log:            slog.Default(),
		refreshTimeout: DefaultRefreshTimeout,
		lifetime:       ctx,
		cancel:         cancel,
		view:           View{State: StateUnauthenticated},
		subs:           make(map[int]func(View)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close cancels any refresh in flight. The controller is unusable afterwards.
func (c *SessionController) Close() {
	c.cancel()
}

// ============================================================================
// View
// ============================================================================

// View returns the current snapshot.
func (c *SessionController) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// State returns the current lifecycle state.
func (c *SessionController) State() State {
	return c.View().State
}

// Subscribe calls fn after every change. The returned func unsubscribes.
func (c *SessionController) Subscribe(fn func(View)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *SessionController) set(v View) {
	c.mu.Lock()
	c.view = v
	subs := make([]func(View), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

func (c *SessionController) setAuthenticated(u *User) {
	c.set(View{User: u, State: StateAuthenticated})
}

// ============================================================================
// Restore
// ============================================================================

// Restore resumes a stored session, refreshing it if only the refresh
// credential survived. It ends Authenticated or Unauthenticated.
func (c *SessionController) Restore(ctx context.Context) error {
	c.set(View{State: StateRestoring, IsLoading: true})

	u, status, err := c.transport.Restore(ctx)
	if err != nil {
		c.log.Warn("session restore failed", "platform", c.transport.Platform(), "err", err)
		c.set(View{State: StateUnauthenticated, Err: err})
		return err
	}

	switch status {
	case RestoreAuthenticated:
		c.setAuthenticated(u)
		return nil
	case RestoreNeedsRefresh:
		_, err := c.Refresh(ctx)
		return err
	default:
		c.set(View{State: StateUnauthenticated})
		return nil
	}
}

// ============================================================================
// Sign-in
// ============================================================================

// BeginSignIn returns the /authorize URL to open in a browser. A fresh state
// is remembered for CompleteSignIn, together with a PKCE verifier on native.
// Calling it again abandons the previous pending sign-in.
func (c *SessionController) BeginSignIn(redirectURI string, scopes ...string) (string, error) {
	state, err := GenerateState()
	if err != nil {
		return "", err
	}

	var pkce *PKCEChallenge
	if c.transport.Platform() == PlatformNative {
		if pkce, err = GeneratePKCEChallenge(); err != nil {
			return "", err
		}
	}

	p := &pendingSignIn{state: state}
	if pkce != nil {
		p.verifier = pkce.Verifier
	}

	c.mu.Lock()
	c.pending = p
	c.mu.Unlock()

	return c.client.BuildAuthorizeURL(AuthorizeParams{
		RedirectURI: redirectURI,
		State:       state,
		Scopes:      scopes,
		PKCE:        pkce,
	}), nil
}

// CompleteSignIn finishes the flow from the URL the callback relay sent the
// client to. The pending state is consumed whether or not it matches, so a
// callback can be used at most once.
func (c *SessionController) CompleteSignIn(ctx context.Context, callbackURL string) error {
	c.mu.Lock()
	p := c.pending
	c.pending = nil
	c.mu.Unlock()

	u, err := url.Parse(callbackURL)
	if err != nil {
		return fmt.Errorf("parse callback url: %w", err)
	}
	q := u.Query()

	if p == nil || !cryptox.EqualStrings(q.Get("state"), p.state) {
		c.set(View{State: StateUnauthenticated, Err: ErrStateMismatch})
		return ErrStateMismatch
	}

	if e := q.Get("error"); e != "" {
		err := &Error{StatusCode: http.StatusBadRequest, Code: ErrorCodeProviderExchangeError, Message: e, Description: q.Get("error_description")}
		c.set(View{State: StateUnauthenticated, Err: err})
		return err
	}

	code := q.Get("code")
	if code == "" {
		c.set(View{State: StateUnauthenticated, Err: ErrInvalidRequest})
		return ErrInvalidRequest
	}

	return c.signIn(func() (*User, error) {
		return c.transport.Exchange(ctx, code, p.verifier)
	})
}

// SignInWithApple completes a native Sign in with Apple.
func (c *SessionController) SignInWithApple(ctx context.Context, req AppleRequest) error {
	n, ok := c.transport.(NativeSignIn)
	if !ok {
		return ErrUnsupported
	}
	return c.signIn(func() (*User, error) { return n.SignInWithApple(ctx, req) })
}

// SignInWithGoogleIDToken completes a native Google Sign-In.
func (c *SessionController) SignInWithGoogleIDToken(ctx context.Context, idToken string) error {
	n, ok := c.transport.(NativeSignIn)
	if !ok {
		return ErrUnsupported
	}
	return c.signIn(func() (*User, error) { return n.SignInWithGoogle(ctx, idToken) })
}

func (c *SessionController) signIn(fn func() (*User, error)) error {
	c.set(View{State: StateUnauthenticated, IsLoading: true})

	u, err := fn()
	if err != nil {
		c.log.Info("sign-in failed", "platform", c.transport.Platform(), "err", err)
		c.set(View{State: StateUnauthenticated, Err: err})
		return err
	}

	c.setAuthenticated(u)
	return nil
}

// ============================================================================
// Refresh
// ============================================================================

// Refresh rotates the session. Concurrent callers share one rotation and all
// see its result. The rotation runs on the controller's lifetime, bounded by
// the refresh timeout, so ctx only limits how long this caller waits.
//
// A failed rotation signs the session out locally.
func (c *SessionController) Refresh(ctx context.Context) (*User, error) {
	ch := c.refresh.DoChan("refresh", func() (any, error) {
		return c.rotate()
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*User), nil
	}
}

func (c *SessionController) rotate() (*User, error) {
	ctx, cancel := context.WithTimeout(c.lifetime, c.refreshTimeout)
	defer cancel()

	prev := c.View()
	c.set(View{User: prev.User, State: StateRefreshing, IsLoading: true})

	u, err := c.transport.Rotate(ctx)
	if err != nil {
		c.log.Info("session refresh failed", "platform", c.transport.Platform(), "err", err)
		c.clearLocal(ctx, err)
		return nil, err
	}

	c.setAuthenticated(u)
	return u, nil
}

// ============================================================================
// Authenticated requests
// ============================================================================

// FetchWithAuth sends req with the session's credentials. A 401 triggers one
// Refresh and, if that works, one retry. A second 401 is returned as is.
// The first 401 is returned when the body cannot be replayed or the refresh
// fails.
func (c *SessionController) FetchWithAuth(ctx context.Context, req *http.Request) (*http.Response, error) {
	first := req.Clone(ctx)
	if err := c.transport.Attach(first); err != nil {
		return nil, err
	}

	resp, err := c.transport.HTTPClient().Do(first)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	retry, ok := replay(ctx, req)
	if !ok {
		return resp, nil
	}

	if _, err := c.Refresh(ctx); err != nil {
		retry.Body.Close()
		return resp, nil
	}
	resp.Body.Close()

	if err := c.transport.Attach(retry); err != nil {
		return nil, err
	}
	return c.transport.HTTPClient().Do(retry)
}

// replay clones req with a fresh body. Requests with a body but no GetBody
// cannot be sent twice.
func replay(ctx context.Context, req *http.Request) (*http.Request, bool) {
	r := req.Clone(ctx)
	if req.Body == nil || req.Body == http.NoBody {
		r.Body = http.NoBody
		return r, true
	}
	if req.GetBody == nil {
		return nil, false
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}
	r.Body = body
	return r, true
}

// ============================================================================
// Sign-out
// ============================================================================

// SignOut tells the server and clears local state. The server call is best
// effort; local state is cleared even when it fails.
func (c *SessionController) SignOut(ctx context.Context) error {
	c.set(View{User: c.View().User, State: StateSigningOut, IsLoading: true})

	if err := c.transport.SignOut(ctx); err != nil {
		c.log.Warn("sign-out request failed", "platform", c.transport.Platform(), "err", err)
	}
	c.clearLocal(ctx, nil)
	return nil
}

// clearLocal drops credentials and lands in Unauthenticated with cause as the
// view's error.
func (c *SessionController) clearLocal(ctx context.Context, cause error) {
	c.set(View{User: c.View().User, State: StateSigningOut, IsLoading: true})

	if err := c.transport.Clear(context.WithoutCancel(ctx)); err != nil {
		c.log.Warn("clearing local session failed", "platform", c.transport.Platform(), "err", err)
		cause = errors.Join(cause, err)
	}
	c.set(View{State: StateUnauthenticated, Err: cause})
}
