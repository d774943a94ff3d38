package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/betomoedano/expo-oauth-example/internal/auth/domain"
	"github.com/betomoedano/expo-oauth-example/internal/auth/state"
	"github.com/betomoedano/expo-oauth-example/pkg/slogx"
)

// CallbackPath is where the provider sends the browser back to us.
const CallbackPath = "/api/auth/callback"

// GoogleClientAlias is the client_id value callers use to pick Google.
const GoogleClientAlias = "google"

// authURLBuilder is the part of provider.CodeExchanger the redirector uses.
type authURLBuilder interface {
	Configured() bool
	AuthCodeURL(state, scope string, extra map[string]string) string
}

// RedirectService sends users to the provider and relays the provider's
// answer back to the client that started the flow.
type RedirectService struct {
	Provider authURLBuilder
	// BaseURL is the web client origin and the public base of this service.
	BaseURL string
	// AppScheme is the native client's deep-link redirect target.
	AppScheme string
}

// CallbackURL is the redirect URI registered with the provider.
func (s *RedirectService) CallbackURL() string {
	return strings.TrimRight(s.BaseURL, "/") + CallbackPath
}

// AuthorizeRequest is the query of /authorize.
type AuthorizeRequest struct {
	ClientID            string
	RedirectURI         string
	State               string
	Scope               string
	CodeChallenge       string
	CodeChallengeMethod string
}

// Authorize validates the request and returns the provider URL to redirect to.
// A caller-supplied state becomes the random part of the encoded state so it
// comes back unchanged through Callback.
func (s *RedirectService) Authorize(ctx context.Context, req AuthorizeRequest) (string, error) {
	if s.Provider == nil || !s.Provider.Configured() {
		return "", fmt.Errorf("%w: provider client id not set", ErrMisconfigured)
	}

	platform, err := s.platformFor(req.RedirectURI)
	if err != nil {
		return "", err
	}

	if req.ClientID != GoogleClientAlias {
		return "", ErrInvalidClient
	}

	var st state.AuthorizationState
	switch {
	case req.State == "":
		if st, err = state.New(platform); err != nil {
			return "", err
		}
	case state.ValidRandom(req.State):
		st = state.AuthorizationState{Random: req.State, Platform: platform}
	default:
		return "", ErrInvalidState
	}

	challenge, method, err := normalizePKCE(req.CodeChallenge, req.CodeChallengeMethod)
	if err != nil {
		return "", err
	}

	slogx.FromContext(ctx).Debug("authorize redirect", "platform", platform)

	return s.Provider.AuthCodeURL(state.Encode(st), req.Scope, map[string]string{
		"code_challenge":        challenge,
		"code_challenge_method": method,
	}), nil
}

// CallbackRequest is the query the provider sends to /callback.
type CallbackRequest struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// Callback returns the client URL the browser should land on: the web origin
// or the app scheme, with the code and the caller's original state.
func (s *RedirectService) Callback(ctx context.Context, req CallbackRequest) (string, error) {
	st, err := state.Decode(req.State)
	if err != nil {
		return "", ErrInvalidState
	}

	platform := st.PlatformOrNative()
	target := s.AppScheme
	if platform == domain.PlatformWeb {
		target = s.BaseURL
	}

	q := url.Values{}
	q.Set("state", st.Random)
	if req.Error != "" {
		q.Set("error", req.Error)
		if req.ErrorDescription != "" {
			q.Set("error_description", req.ErrorDescription)
		}
	} else {
		q.Set("code", req.Code)
	}

	slogx.FromContext(ctx).Debug("callback relay", "platform", platform, "legacy_state", st.Platform == "", "provider_error", req.Error)

	return appendQuery(target, q), nil
}

func (s *RedirectService) platformFor(redirectURI string) (domain.Platform, error) {
	switch redirectURI {
	case "":
		return "", ErrInvalidRedirectURI
	case s.AppScheme:
		return domain.PlatformNative, nil
	case s.BaseURL:
		return domain.PlatformWeb, nil
	default:
		return "", ErrInvalidRedirectURI
	}
}

// appendQuery joins by hand; url.URL.String drops the "//" of a hostless
// custom scheme such as "myapp://".
func appendQuery(target string, q url.Values) string {
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + q.Encode()
}

// normalizePKCE passes a client's PKCE challenge through to the provider.
// Method defaults to S256 when a challenge is present.
func normalizePKCE(challenge, method string) (string, string, error) {
	challenge = strings.TrimSpace(challenge)
	method = strings.TrimSpace(method)

	if challenge == "" {
		if method != "" {
			return "", "", ErrInvalidRequest
		}
		return "", "", nil
	}

	switch {
	case method == "" || strings.EqualFold(method, "S256"):
		return challenge, "S256", nil
	case strings.EqualFold(method, "plain"):
		return challenge, "plain", nil
	default:
		return "", "", ErrInvalidRequest
	}
}
