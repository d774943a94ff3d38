package http

import (
	"net/http"
	"strings"

	"github.com/betomoedano/expo-oauth-example/internal/auth/domain"
	"github.com/betomoedano/expo-oauth-example/internal/auth/service"
	"github.com/betomoedano/expo-oauth-example/pkg/authsdk"
	"github.com/betomoedano/expo-oauth-example/pkg/httpx"
	"github.com/betomoedano/expo-oauth-example/pkg/slogx"
)

// TokenHandler serves POST /api/auth/token. It redeems the authorization code
// the client received from the callback relay for our own token pair.
type TokenHandler struct {
	Exchange *service.ExchangeService
	Cookies  CookieConfig
	Metrics  *Metrics
}

// ServeHTTP godoc
//
//	@Summary		Exchange an authorization code
//	@Description	Redeems the provider code, verifies the returned ID token and mints our own pair.
//	@Description	Web: sets auth_token and refresh_token HTTP-only cookies and returns issue/expiry times. Native: returns the pair in the body.
//	@Tags			Auth
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			code			formData	string						true	"Authorization code"
//	@Param			platform		formData	string						false	"Client platform (default native)"	Enums(web, native)
//	@Param			code_verifier	formData	string						false	"PKCE verifier"
//	@Success		200				{object}	authsdk.TokenPairResponse	"native"
//	@Success		200				{object}	authsdk.WebTokenResponse	"web"
//	@Failure		400				{object}	authsdk.Error				"invalid_request, provider_error"
//	@Failure		401				{object}	authsdk.Error				"missing_id_token, invalid_id_token"
//	@Failure		500				{object}	authsdk.Error				"server_misconfiguration"
//	@Header			200				{string}	Cache-Control				"no-store"
//	@Router			/api/auth/token [post].
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") &&
		!strings.HasPrefix(ct, "multipart/form-data") {
		authsdk.NewError(http.StatusUnsupportedMediaType, authsdk.ErrorCodeUnsupportedMediaType,
			"Content-Type must be application/x-www-form-urlencoded").WriteError(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, httpx.MaxBodyBytes)
	if err := r.ParseForm(); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	code := strings.TrimSpace(r.PostForm.Get("code"))
	if code == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	platform, err := domain.ParsePlatformOrNative(r.PostForm.Get("platform"))
	if err != nil {
		authsdk.NewError(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "Invalid platform").WriteError(w)
		return
	}

	pair, id, err := h.Exchange.ExchangeCode(ctx, code, strings.TrimSpace(r.PostForm.Get("code_verifier")))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Metrics.tokenIssued("code", platform.String())
	slogx.FromContext(ctx).Info("code exchanged", "sub", id.Subject, "platform", platform)

	writePair(w, pair, platform, h.Cookies)
}

// writePair answers a successful mint in the platform's shape.
func writePair(w http.ResponseWriter, pair domain.TokenPair, platform domain.Platform, cookies CookieConfig) {
	if platform == domain.PlatformWeb {
		cookies.setSession(w, pair)
		httpx.WriteJSON(w, http.StatusOK, authsdk.WebTokenResponse{
			Success:   true,
			IssuedAt:  pair.IssuedAt.Unix(),
			ExpiresAt: pair.AccessExpiresAt.Unix(),
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}
