package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// DefaultScope is requested when the caller does not name one.
const DefaultScope = "identity"

var ErrMissingIDToken = errors.New("token response carried no id_token")

// ProviderError is an OAuth error response from the provider's token
// endpoint, e.g. invalid_grant for a reused code.
type ProviderError struct {
	Code        string
	Description string
	StatusCode  int
}

func (e *ProviderError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("provider: %s: %s", e.Code, e.Description)
	}
	return "provider: " + e.Code
}

// ExchangerConfig describes one OAuth client registration.
type ExchangerConfig struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	// RedirectURL is our callback, registered with the provider.
	RedirectURL string
}

// CodeExchanger builds authorization URLs and redeems authorization codes.
type CodeExchanger struct {
	cfg    oauth2.Config
	client *http.Client
}

// NewCodeExchanger returns an exchanger. client may be nil for
// http.DefaultClient; the app passes an instrumented client with a timeout.
func NewCodeExchanger(c ExchangerConfig, client *http.Client) *CodeExchanger {
	return &CodeExchanger{
		cfg: oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.RedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:   c.AuthURL,
				TokenURL:  c.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		client: client,
	}
}

// Configured reports whether a client id is set.
func (e *CodeExchanger) Configured() bool { return e.cfg.ClientID != "" }

// ClientID is the registered client id.
func (e *CodeExchanger) ClientID() string { return e.cfg.ClientID }

// AuthCodeURL builds the provider authorization URL. The account chooser is
// always shown.
func (e *CodeExchanger) AuthCodeURL(state, scope string, extra map[string]string) string {
	cfg := e.cfg
	if scope == "" {
		scope = DefaultScope
	}
	cfg.Scopes = []string{scope}

	opts := []oauth2.AuthCodeOption{oauth2.SetAuthURLParam("prompt", "select_account")}
	for k, v := range extra {
		if v != "" {
			opts = append(opts, oauth2.SetAuthURLParam(k, v))
		}
	}
	return cfg.AuthCodeURL(state, opts...)
}

// Exchange redeems code (with the PKCE verifier when the client used one)
// and returns the raw ID token from the response.
func (e *CodeExchanger) Exchange(ctx context.Context, code, codeVerifier string) (string, error) {
	if e.client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, e.client)
	}

	var opts []oauth2.AuthCodeOption
	if codeVerifier != "" {
		opts = append(opts, oauth2.VerifierOption(codeVerifier))
	}

	tok, err := e.cfg.Exchange(ctx, code, opts...)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			pe := &ProviderError{Code: re.ErrorCode, Description: re.ErrorDescription}
			if re.Response != nil {
				pe.StatusCode = re.Response.StatusCode
			}
			if pe.Code == "" {
				pe.Code = "server_error"
			}
			return "", pe
		}
		return "", fmt.Errorf("exchange code: %w", err)
	}

	idToken, _ := tok.Extra("id_token").(string)
	if idToken == "" {
		return "", ErrMissingIDToken
	}
	return idToken, nil
}
