package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/betomoedano/expo-oauth-example/internal/auth/service"
	"github.com/betomoedano/expo-oauth-example/pkg/authsdk"
	"github.com/betomoedano/expo-oauth-example/pkg/httpx"
	"github.com/betomoedano/expo-oauth-example/pkg/jwtx"
	"github.com/betomoedano/expo-oauth-example/pkg/slogx"

	_ "github.com/betomoedano/expo-oauth-example/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Limits are the rate limit profiles applied per route.
type Limits struct {
	Strict   httpx.RateLimitConfig
	Moderate httpx.RateLimitConfig
	Public   httpx.RateLimitConfig
}

// DefaultLimits are the httpx profiles.
func DefaultLimits() Limits {
	return Limits{
		Strict:   httpx.StrictLimit,
		Moderate: httpx.ModerateLimit,
		Public:   httpx.PublicLimit,
	}
}

// RouterConfig is the static configuration of the HTTP surface.
type RouterConfig struct {
	BuildVersion string
	Cookies      CookieConfig
	Limits       Limits

	// CORSOrigins lists web origins allowed to call with credentials.
	// Empty disables CORS handling.
	CORSOrigins []string
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	cfg       RouterConfig
	startTime time.Time
	logger    *slog.Logger
	registry  *prometheus.Registry
	metrics   *Metrics

	Redirect *service.RedirectService
	Exchange *service.ExchangeService
	Tokens   *service.TokenService
}

func NewRouter(cfg RouterConfig, logger *slog.Logger) *Router {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Router{
		Mux:       http.NewServeMux(),
		cfg:       cfg,
		startTime: time.Now(),
		logger:    logger,
		registry:  reg,
		metrics:   NewMetrics(reg),
	}

	// Metrics sits innermost so it sees the request the mux annotates with
	// its matched pattern.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}
	if len(cfg.CORSOrigins) > 0 {
		r.middlewares = append(r.middlewares, cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type", slogx.RequestIDHeader},
			ExposedHeaders:   []string{slogx.RequestIDHeader, "Retry-After"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.middlewares = append(r.middlewares, r.metrics.Middleware)

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerNative()
	r.registerSystem()

	r.Mux.Handle("GET /metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Expo OAuth Session API
//	@version		0.1.0
//	@description	Converts Google and Apple sign-ins into our own short-lived access token and long-lived refresh token.
//	@description
//	@description				Web clients hold the pair in HTTP-only cookies; native clients receive it in the body and send the access token as a bearer header.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8081
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Access token. Format: "Bearer {token}". Web clients send the auth_token cookie instead.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// Guard is the AuthGuard protecting session routes. It is exported so the
// app can protect its own API with the same rules.
func (r *Router) Guard() httpx.Middleware {
	var v jwtx.Verifier
	if r.Tokens != nil {
		v = r.Tokens.AccessVerifier()
	}
	return httpx.AuthGuard(v,
		httpx.WithSessionCookie(authsdk.AccessCookieName),
		httpx.WithRejectHook(r.metrics.guardRejected),
	)
}

func (r *Router) registerAuth() {
	limits := r.cfg.Limits

	// Redirect endpoints are cheap but drive the provider, moderate limit.
	r.Mux.Handle("GET "+authsdk.PathAuthorize,
		httpx.Chain(&AuthorizeHandler{Redirect: r.Redirect},
			httpx.RateLimitByIP(limits.Moderate),
		),
	)
	r.Mux.Handle("GET "+authsdk.PathCallback,
		httpx.Chain(&CallbackHandler{Redirect: r.Redirect},
			httpx.RateLimitByIP(limits.Moderate),
		),
	)

	// Minting endpoints - strict rate limit by IP
	r.Mux.Handle("POST "+authsdk.PathToken,
		httpx.Chain(&TokenHandler{Exchange: r.Exchange, Cookies: r.cfg.Cookies, Metrics: r.metrics},
			httpx.RateLimitByIP(limits.Strict),
		),
	)
	r.Mux.Handle("POST "+authsdk.PathRefresh,
		httpx.Chain(&RefreshHandler{Tokens: r.Tokens, Cookies: r.cfg.Cookies, Metrics: r.metrics},
			httpx.RateLimitByIP(limits.Strict),
		),
	)

	r.Mux.Handle("POST "+authsdk.PathLogout,
		httpx.Chain(&LogoutHandler{Tokens: r.Tokens, Cookies: r.cfg.Cookies},
			httpx.RateLimitByIP(limits.Moderate),
		),
	)

	// Session probe - authenticated, limited per user
	r.Mux.Handle("GET "+authsdk.PathSession,
		httpx.Chain(SessionHandler(),
			r.Guard(),
			httpx.RateLimitByUser(limits.Public),
		),
	)
}

func (r *Router) registerNative() {
	limits := r.cfg.Limits

	r.Mux.Handle("POST "+authsdk.PathApple,
		httpx.Chain(&AppleHandler{Exchange: r.Exchange, Metrics: r.metrics},
			httpx.RateLimitByIP(limits.Strict),
		),
	)
	r.Mux.Handle("POST "+authsdk.PathGoogle,
		httpx.Chain(&GoogleHandler{Exchange: r.Exchange, Metrics: r.metrics},
			httpx.RateLimitByIP(limits.Strict),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - monitoring systems may poll frequently
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.cfg.BuildVersion),
			httpx.RateLimitByIP(r.cfg.Limits.Public),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.cfg.BuildVersion, r.Redirect, r.Exchange),
			httpx.RateLimitByIP(r.cfg.Limits.Public),
		),
	)
}
