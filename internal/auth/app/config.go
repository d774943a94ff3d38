package app

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/betomoedano/expo-oauth-example/internal/auth/provider"
	"github.com/betomoedano/expo-oauth-example/internal/auth/service"
	"github.com/betomoedano/expo-oauth-example/pkg/httpx"
)

type Config struct {
	Issuer    string `env:"AUTH_ISSUER"`                                 // Optional: token issuer (default: BaseURL)
	BaseURL   string `env:"BASE_URL"   envDefault:"http://localhost:8081"` // Public origin of the service and of the web app
	AppScheme string `env:"APP_SCHEME" envDefault:"myapp://"`             // Deep link the native app registers

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleAuthURL      string `env:"GOOGLE_AUTH_URL"  envDefault:"https://accounts.google.com/o/oauth2/v2/auth"`
	GoogleTokenURL     string `env:"GOOGLE_TOKEN_URL" envDefault:"https://oauth2.googleapis.com/token"`
	GoogleIssuer       string `env:"GOOGLE_ISSUER"` // Optional: both Google issuer spellings when empty
	GoogleJWKSURL      string `env:"GOOGLE_JWKS_URL"  envDefault:"https://www.googleapis.com/oauth2/v3/certs"`

	AppleClientID string `env:"APPLE_CLIENT_ID"` // Optional: bundle id; Apple sign-in is disabled when empty
	AppleIssuer   string `env:"APPLE_ISSUER"    envDefault:"https://appleid.apple.com"`
	AppleJWKSURL  string `env:"APPLE_JWKS_URL"  envDefault:"https://appleid.apple.com/auth/keys"`

	JWTSecret        string        `env:"JWT_SECRET"`
	JWTRefreshSecret string        `env:"JWT_REFRESH_SECRET"`
	AccessTokenTTL   time.Duration `env:"ACCESS_TOKEN_TTL"  envDefault:"20s"`
	RefreshTokenTTL  time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"720h"`

	CookieSecure    bool          `env:"COOKIE_SECURE"    envDefault:"true"`
	CORSOrigins     []string      `env:"CORS_ORIGINS"     envSeparator:","`
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"10s"`

	Env                 string        `env:"ENV"                   envDefault:"dev"`
	LogLevel            string        `env:"LOG_LEVEL"             envDefault:"info"`
	LogFormat           string        `env:"LOG_FORMAT"            envDefault:"json"`
	Port                int           `env:"PORT"                  envDefault:"8081"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	OTLPEndpoint        string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"` // Optional: tracing is off when empty

	RateLimits RateLimits
}

// RateLimits are read as RATELIMIT_<PROFILE>_{REQUESTS,WINDOW,BURST}. A
// REQUESTS of 0 disables the profile.
type RateLimits struct {
	Strict   httpx.RateLimitConfig `envPrefix:"RATELIMIT_STRICT_"`
	Moderate httpx.RateLimitConfig `envPrefix:"RATELIMIT_MODERATE_"`
	Public   httpx.RateLimitConfig `envPrefix:"RATELIMIT_PUBLIC_"`
}

// LoadConfig reads the environment. Unset rate limit variables keep the
// httpx defaults.
func LoadConfig() (Config, error) {
	cfg := Config{
		RateLimits: RateLimits{
			Strict:   httpx.StrictLimit,
			Moderate: httpx.ModerateLimit,
			Public:   httpx.PublicLimit,
		},
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.Issuer == "" {
		cfg.Issuer = cfg.BaseURL
	}
	return cfg, nil
}

// TokenConfig is the minting half of the configuration.
func (c Config) TokenConfig() service.TokenConfig {
	return service.TokenConfig{
		AccessSecret:  []byte(c.JWTSecret),
		RefreshSecret: []byte(c.JWTRefreshSecret),
		Issuer:        c.Issuer,
		AccessTTL:     c.AccessTokenTTL,
		RefreshTTL:    c.RefreshTokenTTL,
	}
}

// GoogleExchanger is the OAuth client registration with our callback.
func (c Config) GoogleExchanger() provider.ExchangerConfig {
	return provider.ExchangerConfig{
		ClientID:     c.GoogleClientID,
		ClientSecret: c.GoogleClientSecret,
		AuthURL:      c.GoogleAuthURL,
		TokenURL:     c.GoogleTokenURL,
		RedirectURL:  c.BaseURL + service.CallbackPath,
	}
}

// Validate returns every misconfiguration at once. A missing Google client id
// is not fatal: /authorize answers 500 until it is set.
func (c Config) Validate() error {
	var errs []error

	if err := c.TokenConfig().Validate(); err != nil {
		errs = append(errs, err)
	}

	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("BASE_URL %q must be an absolute URL", c.BaseURL))
	}
	if !strings.Contains(c.AppScheme, "://") {
		errs = append(errs, fmt.Errorf("APP_SCHEME %q must look like myapp://", c.AppScheme))
	}
	if c.AppScheme == c.BaseURL {
		errs = append(errs, errors.New("APP_SCHEME and BASE_URL must differ"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if c.ProviderTimeout <= 0 {
		errs = append(errs, errors.New("PROVIDER_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}
