package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/betomoedano/expo-oauth-example/internal/auth/service"
	"github.com/betomoedano/expo-oauth-example/pkg/authsdk"
	"github.com/betomoedano/expo-oauth-example/pkg/httpx"
	"github.com/betomoedano/expo-oauth-example/pkg/slogx"
)

// LogoutHandler serves POST /api/auth/logout. Refresh tokens are stateless,
// so logging out only clears the web cookies; a native refresh token is
// checked and logged but stays valid until it expires.
type LogoutHandler struct {
	Tokens  *service.TokenService
	Cookies CookieConfig
}

// ServeHTTP godoc
//
//	@Summary		Sign out
//	@Description	Clears the session cookies. Always succeeds.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request			body		authsdk.LogoutRequest	false	"Native refresh token"
//	@Param			refreshToken	query		string					false	"Native refresh token"
//	@Success		200				{object}	authsdk.SuccessResponse
//	@Router			/api/auth/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	var req authsdk.LogoutRequest
	if r.Body != nil {
		// Body is optional; a malformed one is treated as absent.
		if err := json.NewDecoder(io.LimitReader(r.Body, httpx.MaxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			log.Debug("logout body ignored", "err", err)
		}
	}
	if req.RefreshToken == "" {
		req.RefreshToken = r.URL.Query().Get("refreshToken")
	}

	if req.RefreshToken != "" {
		if id, err := h.Tokens.VerifyRefresh(req.RefreshToken); err != nil {
			log.Info("logout with unusable refresh token", "err", err)
		} else {
			log.Info("native logout", "sub", id.Subject)
		}
	}

	h.Cookies.clearSession(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.SuccessResponse{Success: true})
}
