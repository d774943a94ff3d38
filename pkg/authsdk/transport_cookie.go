package authsdk

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	"golang.org/x/net/publicsuffix"
)

// Cookie names set by the service for web sessions.
const (
	AccessCookieName  = "auth_token"
	RefreshCookieName = "refresh_token"
)

// CookieTransport keeps the web session in HTTP-only cookies. Tokens never
// leave the cookie jar; the controller only ever sees the User.
type CookieTransport struct {
	client *SDKClient
	jar    *resettableJar
	base   *url.URL
}

// NewCookieTransport wraps client's HTTP client with a fresh cookie jar.
func NewCookieTransport(client *SDKClient) (*CookieTransport, error) {
	base, err := url.Parse(client.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	jar, err := newResettableJar()
	if err != nil {
		return nil, err
	}

	hc := &http.Client{Jar: jar}
	if client.HTTPClient != nil {
		cp := *client.HTTPClient
		cp.Jar = jar
		hc = &cp
	}

	return &CookieTransport{client: client.WithHTTPClient(hc), jar: jar, base: base}, nil
}

func (t *CookieTransport) Platform() string         { return PlatformWeb }
func (t *CookieTransport) HTTPClient() *http.Client { return t.client.HTTPClient }

// Restore asks /session with whatever cookies are in the jar. A rejected
// session with a refresh cookie left over is worth a refresh.
func (t *CookieTransport) Restore(ctx context.Context) (*User, RestoreStatus, error) {
	u, err := t.client.GetSession(ctx, "")
	switch {
	case err == nil:
		return u, RestoreAuthenticated, nil
	case IsUnauthorized(err):
		if t.hasCookie(RefreshCookieName) {
			return nil, RestoreNeedsRefresh, nil
		}
		return nil, RestoreNone, nil
	default:
		return nil, RestoreNone, err
	}
}

// Exchange posts the code with platform=web, then reads the identity back from
// /session since the token body carries none.
func (t *CookieTransport) Exchange(ctx context.Context, code, codeVerifier string) (*User, error) {
	if _, err := t.client.ExchangeCodeWeb(ctx, code, codeVerifier); err != nil {
		return nil, err
	}
	return t.client.GetSession(ctx, "")
}

func (t *CookieTransport) Rotate(ctx context.Context) (*User, error) {
	return t.client.RefreshWeb(ctx)
}

// Attach is a no-op; the jar adds the cookie.
func (t *CookieTransport) Attach(*http.Request) error { return nil }

func (t *CookieTransport) SignOut(ctx context.Context) error {
	return t.client.Logout(ctx, "")
}

func (t *CookieTransport) Clear(context.Context) error {
	return t.jar.reset()
}

func (t *CookieTransport) hasCookie(name string) bool {
	for _, c := range t.jar.Cookies(t.base) {
		if c.Name == name && c.Value != "" {
			return true
		}
	}
	return false
}

// resettableJar lets Clear drop every cookie without swapping the jar out
// from under a live http.Client.
type resettableJar struct {
	mu  sync.RWMutex
	jar *cookiejar.Jar
}

func newResettableJar() (*resettableJar, error) {
	j := &resettableJar{}
	if err := j.reset(); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *resettableJar) reset() error {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return fmt.Errorf("create cookie jar: %w", err)
	}
	j.mu.Lock()
	j.jar = jar
	j.mu.Unlock()
	return nil
}

func (j *resettableJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	j.jar.SetCookies(u, cookies)
}

func (j *resettableJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.jar.Cookies(u)
}
