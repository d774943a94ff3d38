package http

import (
	"errors"
	"net/http"

	"github.com/betomoedano/expo-oauth-example/internal/auth/domain"
	"github.com/betomoedano/expo-oauth-example/internal/auth/service"
	"github.com/betomoedano/expo-oauth-example/pkg/authsdk"
	"github.com/betomoedano/expo-oauth-example/pkg/httpx"
	"github.com/betomoedano/expo-oauth-example/pkg/slogx"
)

// RefreshHandler serves POST /api/auth/refresh. Every successful call mints a
// brand-new pair; the presented refresh token is not remembered.
type RefreshHandler struct {
	Tokens  *service.TokenService
	Cookies CookieConfig
	Metrics *Metrics
}

// ServeHTTP godoc
//
//	@Summary		Rotate a session
//	@Description	Verifies the refresh token and mints a new pair from the identity inside it.
//	@Description	Web reads the refresh_token cookie (falling back to the body), rewrites both cookies and returns the identity. Native returns the new pair.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RefreshRequest		true	"platform and, for native, refreshToken"
//	@Success		200		{object}	authsdk.TokenPairResponse	"native"
//	@Success		200		{object}	authsdk.User				"web"
//	@Failure		400		{object}	authsdk.Error				"Missing refresh token"
//	@Failure		401		{object}	authsdk.Error				"Refresh token expired, Invalid refresh token"
//	@Header			200		{string}	Cache-Control				"no-store"
//	@Router			/api/auth/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.RefreshRequest
	if err := httpx.BindJSON(r, &req); err != nil {
		writeBindError(w, err)
		return
	}

	platform, err := domain.ParsePlatformOrNative(req.Platform)
	if err != nil {
		authsdk.NewError(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "Invalid platform").WriteError(w)
		return
	}

	token := req.RefreshToken
	if platform == domain.PlatformWeb {
		if c, err := r.Cookie(authsdk.RefreshCookieName); err == nil && c.Value != "" {
			token = c.Value
		}
	}
	if token == "" {
		h.Metrics.refreshed("missing")
		authsdk.ErrMissingRefreshToken.WriteError(w)
		return
	}

	pair, id, err := h.Tokens.Rotate(ctx, token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRefreshExpired):
			h.Metrics.refreshed("expired")
		case errors.Is(err, service.ErrInvalidRefresh):
			h.Metrics.refreshed("invalid")
		default:
			h.Metrics.refreshed("error")
		}
		log.Info("refresh rejected", "platform", platform, "err", err)
		writeServiceError(w, r, err)
		return
	}

	h.Metrics.refreshed("ok")
	log.Debug("session rotated", "sub", id.Subject, "platform", platform)

	if platform == domain.PlatformWeb {
		h.Cookies.setSession(w, pair)
		httpx.WriteJSON(w, http.StatusOK, userFromIdentity(id, pair.AccessExpiresAt))
		return
	}
	writePair(w, pair, platform, h.Cookies)
}
