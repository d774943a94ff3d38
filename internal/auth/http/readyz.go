package http

import (
	"net/http"
	"time"

	"github.com/betomoedano/expo-oauth-example/internal/auth/service"
	"github.com/betomoedano/expo-oauth-example/pkg/authsdk"
	"github.com/betomoedano/expo-oauth-example/pkg/httpx"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe reporting whether the token signer and the Google client are configured.
//	@Description	Apple is optional and reported as disabled when unset.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	redirect *service.RedirectService,
	exchange *service.ExchangeService,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &authsdk.HealthChecks{
			Signer: "ok",
			Google: "ok",
			Apple:  "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if exchange == nil || exchange.Tokens == nil {
			checks.Signer = "error: no token signer"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if redirect == nil || redirect.Provider == nil || !redirect.Provider.Configured() {
			checks.Google = "error: client id not configured"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if exchange == nil || exchange.Apple == nil {
			checks.Apple = "disabled"
		}

		httpx.WriteJSON(w, statusCode, authsdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
