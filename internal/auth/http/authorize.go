package http

import (
	"net/http"

	"github.com/betomoedano/expo-oauth-example/internal/auth/service"
)

// AuthorizeHandler serves GET /api/auth/authorize. It validates the client's
// request and redirects the browser to the provider's consent screen.
type AuthorizeHandler struct {
	Redirect *service.RedirectService
}

// ServeHTTP godoc
//
//	@Summary		Start provider sign-in
//	@Description	Validates client_id and redirect_uri, then redirects to the provider with our callback and an encoded state.
//	@Description	redirect_uri must equal the app scheme (native) or the base URL (web). A caller-supplied state must be 64 lowercase hex characters and is returned unchanged.
//	@Tags			Auth
//	@Produce		json
//	@Param			client_id				query		string			true	"Provider alias"	Enums(google)
//	@Param			redirect_uri			query		string			true	"App scheme or base URL"
//	@Param			state					query		string			false	"64 lowercase hex characters"
//	@Param			scope					query		string			false	"Provider scope (default identity)"
//	@Param			code_challenge			query		string			false	"PKCE challenge forwarded to the provider"
//	@Param			code_challenge_method	query		string			false	"PKCE method"	Enums(S256, plain)
//	@Success		302						{string}	string			"Location: provider authorization URL"
//	@Failure		400						{object}	authsdk.Error	"invalid_redirect_uri, invalid_client, invalid_state"
//	@Failure		500						{object}	authsdk.Error	"server_misconfiguration"
//	@Router			/api/auth/authorize [get].
func (h *AuthorizeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	target, err := h.Redirect.Authorize(r.Context(), service.AuthorizeRequest{
		ClientID:            q.Get("client_id"),
		RedirectURI:         q.Get("redirect_uri"),
		State:               q.Get("state"),
		Scope:               q.Get("scope"),
		CodeChallenge:       q.Get("code_challenge"),
		CodeChallengeMethod: q.Get("code_challenge_method"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}

// CallbackHandler serves GET /api/auth/callback, the provider's redirect
// target. It relays the code (or the provider's error) to the client origin
// named by the state's platform.
type CallbackHandler struct {
	Redirect *service.RedirectService
}

// ServeHTTP godoc
//
//	@Summary		Provider callback relay
//	@Description	Decodes state and redirects to the web origin or the app scheme with code and the original state.
//	@Tags			Auth
//	@Param			code				query		string			false	"Authorization code"
//	@Param			state				query		string			true	"Encoded state"
//	@Param			error				query		string			false	"Provider error code"
//	@Param			error_description	query		string			false	"Provider error description"
//	@Success		302					{string}	string			"Location: client origin"
//	@Failure		400					{object}	authsdk.Error	"invalid_state"
//	@Router			/api/auth/callback [get].
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	target, err := h.Redirect.Callback(r.Context(), service.CallbackRequest{
		Code:             q.Get("code"),
		State:            q.Get("state"),
		Error:            q.Get("error"),
		ErrorDescription: q.Get("error_description"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}
