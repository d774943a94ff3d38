package http

import (
	"net/http"

	"github.com/betomoedano/expo-oauth-example/internal/auth/domain"
	"github.com/betomoedano/expo-oauth-example/internal/auth/service"
	"github.com/betomoedano/expo-oauth-example/pkg/authsdk"
	"github.com/betomoedano/expo-oauth-example/pkg/httpx"
)

// AppleHandler serves POST /api/auth/apple for the native Sign in with Apple
// button.
type AppleHandler struct {
	Exchange *service.ExchangeService
	Metrics  *Metrics
}

// ServeHTTP godoc
//
//	@Summary		Sign in with Apple
//	@Description	Verifies an Apple identity token and its nonce, then mints a pair.
//	@Description	givenName and email are only trusted together, on the first authorization.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.AppleRequest		true	"Apple credential"
//	@Success		200		{object}	authsdk.TokenPairResponse
//	@Failure		400		{object}	authsdk.Error	"invalid_request"
//	@Failure		401		{object}	authsdk.Error	"invalid_id_token, invalid_nonce"
//	@Router			/api/auth/apple [post].
func (h *AppleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.AppleRequest
	if err := httpx.BindJSON(r, &req); err != nil {
		writeBindError(w, err)
		return
	}

	pair, _, err := h.Exchange.SignInWithApple(r.Context(), service.AppleSignIn{
		IdentityToken: req.IdentityToken,
		RawNonce:      req.RawNonce,
		GivenName:     req.GivenName,
		FamilyName:    req.FamilyName,
		Email:         req.Email,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Metrics.tokenIssued(domain.ProviderApple, domain.PlatformNative.String())
	writePair(w, pair, domain.PlatformNative, CookieConfig{})
}

// GoogleHandler serves POST /api/auth/google for ID tokens obtained by the
// native Google Sign-In SDK.
type GoogleHandler struct {
	Exchange *service.ExchangeService
	Metrics  *Metrics
}

// ServeHTTP godoc
//
//	@Summary		Sign in with a Google ID token
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.GoogleRequest		true	"Google ID token"
//	@Success		200		{object}	authsdk.TokenPairResponse
//	@Failure		400		{object}	authsdk.Error	"invalid_request"
//	@Failure		401		{object}	authsdk.Error	"invalid_id_token"
//	@Router			/api/auth/google [post].
func (h *GoogleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.GoogleRequest
	if err := httpx.BindJSON(r, &req); err != nil {
		writeBindError(w, err)
		return
	}

	pair, _, err := h.Exchange.SignInWithGoogleIDToken(r.Context(), req.IDToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Metrics.tokenIssued(domain.ProviderGoogle, domain.PlatformNative.String())
	writePair(w, pair, domain.PlatformNative, CookieConfig{})
}
