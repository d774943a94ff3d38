package http

import (
	"net/http"

	"github.com/betomoedano/expo-oauth-example/pkg/authsdk"
	"github.com/betomoedano/expo-oauth-example/pkg/httpx"
)

// SessionHandler godoc
//
//	@Summary		Current session
//	@Description	Returns the identity in the caller's access token, read from the bearer header or the auth_token cookie.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	authsdk.User
//	@Failure		401	{object}	authsdk.Error	"missing_token, invalid_token, expired_token"
//	@Security		BearerAuth
//	@Router			/api/auth/session [get].
func SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := httpx.ClaimsFromContext(r.Context())
		if !ok {
			authsdk.ErrMissingToken.WriteError(w)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, authsdk.UserFromClaims(claims))
	}
}
