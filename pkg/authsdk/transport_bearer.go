package authsdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/betomoedano/expo-oauth-example/pkg/jwtx"
)

// BearerTransport keeps a native session as a token pair in a SessionStore
// and sends the access token as a bearer header.
type BearerTransport struct {
	client *SDKClient
	store  SessionStore
	now    func() time.Time

	mu  sync.RWMutex
	rec *SessionRecord
}

// NewBearerTransport uses store for persistence.
func NewBearerTransport(client *SDKClient, store SessionStore) *BearerTransport {
	return &BearerTransport{client: client, store: store, now: time.Now}
}

// WithClock replaces the clock used to judge token expiry.
func (t *BearerTransport) WithClock(now func() time.Time) *BearerTransport {
	t.now = now
	return t
}

func (t *BearerTransport) Platform() string         { return PlatformNative }
func (t *BearerTransport) HTTPClient() *http.Client { return t.client.HTTPClient }

// Restore reads the stored pair and decodes the access token's exp without
// verifying the signature; the server checks it on every request anyway.
func (t *BearerTransport) Restore(ctx context.Context) (*User, RestoreStatus, error) {
	rec, err := t.store.Load(ctx)
	if errors.Is(err, ErrNoSession) {
		return nil, RestoreNone, nil
	}
	if err != nil {
		return nil, RestoreNone, fmt.Errorf("load session: %w", err)
	}
	t.setRecord(&rec)

	if claims, err := jwtx.ParseUnverified(rec.AccessToken); err == nil && claims.ValidateExpiryAt(t.now()) == nil {
		u := UserFromClaims(claims)
		return &u, RestoreAuthenticated, nil
	}

	if rec.RefreshToken == "" {
		return nil, RestoreNone, t.Clear(ctx)
	}
	if claims, err := jwtx.ParseUnverified(rec.RefreshToken); err == nil && errors.Is(claims.ValidateExpiryAt(t.now()), jwtx.ErrExpired) {
		return nil, RestoreNone, t.Clear(ctx)
	}
	return nil, RestoreNeedsRefresh, nil
}

func (t *BearerTransport) Exchange(ctx context.Context, code, codeVerifier string) (*User, error) {
	pair, err := t.client.ExchangeCodeNative(ctx, code, codeVerifier)
	if err != nil {
		return nil, err
	}
	return t.adopt(ctx, pair)
}

func (t *BearerTransport) Rotate(ctx context.Context) (*User, error) {
	rec := t.record()
	if rec == nil || rec.RefreshToken == "" {
		return nil, ErrNotAuthenticated
	}

	pair, err := t.client.RefreshNative(ctx, rec.RefreshToken)
	if err != nil {
		return nil, err
	}
	return t.adopt(ctx, pair)
}

func (t *BearerTransport) SignInWithApple(ctx context.Context, req AppleRequest) (*User, error) {
	pair, err := t.client.SignInWithApple(ctx, req)
	if err != nil {
		return nil, err
	}
	return t.adopt(ctx, pair)
}

func (t *BearerTransport) SignInWithGoogle(ctx context.Context, idToken string) (*User, error) {
	pair, err := t.client.SignInWithGoogle(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return t.adopt(ctx, pair)
}

// Attach sets the bearer header. Without a session the request goes out bare
// and the server answers 401.
func (t *BearerTransport) Attach(req *http.Request) error {
	if rec := t.record(); rec != nil && rec.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+rec.AccessToken)
	}
	return nil
}

func (t *BearerTransport) SignOut(ctx context.Context) error {
	var refresh string
	if rec := t.record(); rec != nil {
		refresh = rec.RefreshToken
	}
	return t.client.Logout(ctx, refresh)
}

func (t *BearerTransport) Clear(ctx context.Context) error {
	t.setRecord(nil)
	if err := t.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// adopt persists a freshly minted pair and decodes the identity from it.
func (t *BearerTransport) adopt(ctx context.Context, pair *TokenPairResponse) (*User, error) {
	claims, err := jwtx.ParseUnverified(pair.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("decode access token: %w", err)
	}

	rec := SessionRecord{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}
	if err := t.store.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	t.setRecord(&rec)

	u := UserFromClaims(claims)
	return &u, nil
}

func (t *BearerTransport) record() *SessionRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rec
}

func (t *BearerTransport) setRecord(rec *SessionRecord) {
	t.mu.Lock()
	t.rec = rec
	t.mu.Unlock()
}
