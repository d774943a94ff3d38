package http

import (
	"errors"
	"net/http"

	"github.com/betomoedano/expo-oauth-example/internal/auth/provider"
	"github.com/betomoedano/expo-oauth-example/internal/auth/service"
	"github.com/betomoedano/expo-oauth-example/pkg/authsdk"
	"github.com/betomoedano/expo-oauth-example/pkg/httpx"
	"github.com/betomoedano/expo-oauth-example/pkg/slogx"
)

// writeServiceError maps a service error onto the wire taxonomy. Anything
// unrecognised is logged and reported as a plain 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())

	var pe *provider.ProviderError
	if errors.As(err, &pe) {
		log.Warn("provider rejected code exchange", "provider_error", pe.Code, "status", pe.StatusCode)
		(&authsdk.Error{
			StatusCode:  http.StatusBadRequest,
			Code:        authsdk.ErrorCodeProviderExchangeError,
			Message:     pe.Code,
			Description: pe.Description,
		}).WriteError(w)
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidState):
		authsdk.ErrInvalidState.WriteError(w)
	case errors.Is(err, service.ErrInvalidRedirectURI):
		authsdk.ErrInvalidRedirectURI.WriteError(w)
	case errors.Is(err, service.ErrInvalidClient):
		authsdk.ErrInvalidClient.WriteError(w)
	case errors.Is(err, service.ErrInvalidRequest):
		authsdk.ErrInvalidRequest.WriteError(w)
	case errors.Is(err, service.ErrMissingIDToken):
		authsdk.ErrMissingIDToken.WriteError(w)
	case errors.Is(err, service.ErrInvalidNonce):
		authsdk.ErrInvalidNonce.WriteError(w)
	case errors.Is(err, service.ErrInvalidIDToken):
		authsdk.ErrInvalidIDToken.WriteError(w)
	case errors.Is(err, service.ErrRefreshExpired):
		authsdk.ErrRefreshTokenExpired.WriteError(w)
	case errors.Is(err, service.ErrInvalidRefresh):
		authsdk.ErrInvalidRefreshToken.WriteError(w)
	case errors.Is(err, service.ErrMisconfigured):
		log.Error("server misconfiguration", "err", err)
		authsdk.ErrServerMisconfiguration.WriteError(w)
	default:
		log.Error("request failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
	}
}

// writeBindError reports a BindJSON failure.
func writeBindError(w http.ResponseWriter, err error) {
	if errors.Is(err, httpx.ErrUnsupportedMediaType) {
		authsdk.ErrUnsupportedMediaType.WriteError(w)
		return
	}
	authsdk.NewError(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, httpx.ValidationMessage(err)).WriteError(w)
}
