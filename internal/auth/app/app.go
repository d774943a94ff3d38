package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	httpapi "github.com/betomoedano/expo-oauth-example/internal/auth/http"
	"github.com/betomoedano/expo-oauth-example/internal/auth/provider"
	"github.com/betomoedano/expo-oauth-example/internal/auth/service"
	"github.com/betomoedano/expo-oauth-example/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"

	serviceName = "auth-service"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// lifetime bounds background work that outlives a request, such as JWKS
	// fetches.
	lifetime context.Context
	cancel   context.CancelFunc

	shutdownTracing func(context.Context) error

	// Services
	tokenService    *service.TokenService
	redirectService *service.RedirectService
	exchangeService *service.ExchangeService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: serviceName,
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		lifetime: ctx,
		cancel:   cancel,
	}

	shutdown, err := setupTracing(ctx, cfg.OTLPEndpoint, serviceName, BuildVersion)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	app.shutdownTracing = shutdown

	if err := app.initServices(); err != nil {
		cancel()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("auth service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"base_url", app.cfg.BaseURL,
		"apple_enabled", app.cfg.AppleClientID != "",
		"tracing_enabled", app.cfg.OTLPEndpoint != "",
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.cancel()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Handler is the fully wrapped HTTP handler the server runs.
func (app *Application) Handler() http.Handler {
	return app.server.Handler
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.cancel()

	if err := app.shutdownTracing(ctx); err != nil {
		app.logger.Error("error flushing traces", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// providerClient is shared by the code exchange and both JWKS fetchers.
func (app *Application) providerClient() *http.Client {
	return &http.Client{
		Timeout:   app.cfg.ProviderTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	tokens, err := service.NewTokenService(app.cfg.TokenConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}
	app.tokenService = tokens

	client := app.providerClient()
	exchanger := provider.NewCodeExchanger(app.cfg.GoogleExchanger(), client)
	if !exchanger.Configured() {
		app.logger.Warn("GOOGLE_CLIENT_ID not set; web sign-in will fail until it is")
	}

	var googleIssuers []string
	if app.cfg.GoogleIssuer != "" {
		googleIssuers = []string{app.cfg.GoogleIssuer}
	}
	google := provider.NewGoogleVerifier(provider.OIDCConfig{
		Issuers:  googleIssuers,
		ClientID: app.cfg.GoogleClientID,
		KeySet:   provider.RemoteKeySet(app.lifetime, app.cfg.GoogleJWKSURL, client),
	})

	app.redirectService = &service.RedirectService{
		Provider:  exchanger,
		BaseURL:   app.cfg.BaseURL,
		AppScheme: app.cfg.AppScheme,
	}
	app.exchangeService = &service.ExchangeService{
		Exchanger: exchanger,
		Google:    google,
		Tokens:    tokens,
	}

	// Left as a nil interface when disabled so readiness reports it.
	if app.cfg.AppleClientID != "" {
		app.exchangeService.Apple = provider.NewAppleVerifier(provider.OIDCConfig{
			Issuers:  []string{app.cfg.AppleIssuer},
			ClientID: app.cfg.AppleClientID,
			KeySet:   provider.RemoteKeySet(app.lifetime, app.cfg.AppleJWKSURL, client),
		})
	}

	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(httpapi.RouterConfig{
		BuildVersion: BuildVersion,
		Cookies: httpapi.CookieConfig{
			Secure:     app.cfg.CookieSecure,
			AccessTTL:  app.tokenService.AccessTTL(),
			RefreshTTL: app.tokenService.RefreshTTL(),
		},
		Limits: httpapi.Limits{
			Strict:   app.cfg.RateLimits.Strict,
			Moderate: app.cfg.RateLimits.Moderate,
			Public:   app.cfg.RateLimits.Public,
		},
		CORSOrigins: app.cfg.CORSOrigins,
	}, app.logger)

	// Wire services to router
	router.Redirect = app.redirectService
	router.Exchange = app.exchangeService
	router.Tokens = app.tokenService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           otelhttp.NewHandler(router, serviceName),
		ReadHeaderTimeout: 3 * time.Second,
	}
}
