package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// API paths served by the auth service.
const (
	PathAuthorize = "/api/auth/authorize"
	PathCallback  = "/api/auth/callback"
	PathToken     = "/api/auth/token"
	PathRefresh   = "/api/auth/refresh"
	PathLogout    = "/api/auth/logout"
	PathApple     = "/api/auth/apple"
	PathGoogle    = "/api/auth/google"
	PathSession   = "/api/auth/session"
)

// DefaultClientID selects Google at /authorize.
const DefaultClientID = "google"

// SDKClient talks to the auth service. It holds no session state; see
// SessionController for that.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// ClientID is sent as client_id to /authorize.
	ClientID string
}

// NewSDKClient creates a client with a 10 second timeout.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		ClientID: DefaultClientID,
	}
}

// WithHTTPClient returns a copy of c that sends requests through hc.
func (c *SDKClient) WithHTTPClient(hc *http.Client) *SDKClient {
	cp := *c
	cp.HTTPClient = hc
	return &cp
}

// ============================================================================
// Authorization
// ============================================================================

// AuthorizeParams are the query parameters of /authorize.
type AuthorizeParams struct {
	RedirectURI string
	State       string
	Scopes      []string
	PKCE        *PKCEChallenge
}

// BuildAuthorizeURL returns the /authorize URL that starts a provider sign-in.
func (c *SDKClient) BuildAuthorizeURL(p AuthorizeParams) string {
	params := url.Values{}
	params.Set("client_id", c.ClientID)
	params.Set("redirect_uri", p.RedirectURI)

	if p.State != "" {
		params.Set("state", p.State)
	}
	if len(p.Scopes) > 0 {
		params.Set("scope", strings.Join(p.Scopes, " "))
	}
	if p.PKCE != nil {
		params.Set("code_challenge", p.PKCE.Challenge)
		params.Set("code_challenge_method", p.PKCE.Method)
	}

	return c.url(PathAuthorize) + "?" + params.Encode()
}

// ============================================================================
// Token exchange
// ============================================================================

func tokenForm(code, platform, codeVerifier string) url.Values {
	form := url.Values{
		"code":     {code},
		"platform": {platform},
	}
	if codeVerifier != "" {
		form.Set("code_verifier", codeVerifier)
	}
	return form
}

// ExchangeCodeWeb trades a code at /token for cookies. The HTTP client must
// carry a cookie jar for the cookies to be kept.
func (c *SDKClient) ExchangeCodeWeb(ctx context.Context, code, codeVerifier string) (*WebTokenResponse, error) {
	resp, err := c.postForm(ctx, PathToken, tokenForm(code, PlatformWeb, codeVerifier))
	if err != nil {
		return nil, err
	}

	var out WebTokenResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExchangeCodeNative trades a code at /token for a token pair.
func (c *SDKClient) ExchangeCodeNative(ctx context.Context, code, codeVerifier string) (*TokenPairResponse, error) {
	resp, err := c.postForm(ctx, PathToken, tokenForm(code, PlatformNative, codeVerifier))
	if err != nil {
		return nil, err
	}

	var out TokenPairResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================================
// Refresh
// ============================================================================

// RefreshWeb rotates the cookie pair and returns the refreshed identity.
func (c *SDKClient) RefreshWeb(ctx context.Context) (*User, error) {
	resp, err := c.postJSON(ctx, PathRefresh, RefreshRequest{Platform: PlatformWeb}, nil)
	if err != nil {
		return nil, err
	}

	var u User
	if err := decodeJSON(resp, &u, http.StatusOK); err != nil {
		return nil, err
	}
	return &u, nil
}

// RefreshNative trades refreshToken for a new pair.
func (c *SDKClient) RefreshNative(ctx context.Context, refreshToken string) (*TokenPairResponse, error) {
	resp, err := c.postJSON(ctx, PathRefresh, RefreshRequest{Platform: PlatformNative, RefreshToken: refreshToken}, nil)
	if err != nil {
		return nil, err
	}

	var out TokenPairResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================================
// Native sign-in
// ============================================================================

// SignInWithApple sends an Apple identity token and its raw nonce.
func (c *SDKClient) SignInWithApple(ctx context.Context, req AppleRequest) (*TokenPairResponse, error) {
	resp, err := c.postJSON(ctx, PathApple, req, nil)
	if err != nil {
		return nil, err
	}

	var out TokenPairResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// SignInWithGoogle sends an ID token from the native Google SDK.
func (c *SDKClient) SignInWithGoogle(ctx context.Context, idToken string) (*TokenPairResponse, error) {
	resp, err := c.postJSON(ctx, PathGoogle, GoogleRequest{IDToken: idToken}, nil)
	if err != nil {
		return nil, err
	}

	var out TokenPairResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================================
// Session
// ============================================================================

// GetSession returns the identity behind accessToken. With an empty token the
// request relies on the client's cookie jar.
func (c *SDKClient) GetSession(ctx context.Context, accessToken string) (*User, error) {
	var headers map[string]string
	if accessToken != "" {
		headers = map[string]string{"Authorization": "Bearer " + accessToken}
	}

	resp, err := c.doRequest(ctx, http.MethodGet, PathSession, nil, headers)
	if err != nil {
		return nil, err
	}

	var u User
	if err := decodeJSON(resp, &u, http.StatusOK); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout clears the server cookies. A native refresh token, when given, is
// sent along.
func (c *SDKClient) Logout(ctx context.Context, refreshToken string) error {
	resp, err := c.postJSON(ctx, PathLogout, LogoutRequest{RefreshToken: refreshToken}, nil)
	if err != nil {
		return err
	}

	var out SuccessResponse
	return decodeJSON(resp, &out, http.StatusOK)
}

// ============================================================================
// Health
// ============================================================================

// GetLiveness checks if the service is alive.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/livez", nil, nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}

	return &health, nil
}

// GetReadiness checks if the service is ready.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/readyz", nil, nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}

	return &health, nil
}

// ============================================================================
// HTTP helpers
// ============================================================================

// url builds a complete URL by appending the path to the base URL.
func (c *SDKClient) url(path string) string {
	return c.BaseURL + path
}

// doRequest performs an HTTP request with the SDKClient's HTTP client.
func (c *SDKClient) doRequest(
	ctx context.Context,
	method, path string,
	body io.Reader,
	headers map[string]string,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	return resp, nil
}

func (c *SDKClient) postForm(ctx context.Context, path string, form url.Values) (*http.Response, error) {
	return c.doRequest(ctx, http.MethodPost, path, strings.NewReader(form.Encode()), map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
	})
}

func (c *SDKClient) postJSON(ctx context.Context, path string, v any, headers map[string]string) (*http.Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	h := map[string]string{"Content-Type": "application/json"}
	for k, val := range headers {
		h[k] = val
	}
	return c.doRequest(ctx, http.MethodPost, path, bytes.NewReader(body), h)
}

// decodeJSON decodes a JSON response into target, or returns the *Error the
// service sent.
func decodeJSON(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		if err := parseErrorResponse(resp, bodyBytes); err != nil {
			return err
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
