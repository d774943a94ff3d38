package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/betomoedano/expo-oauth-example/pkg/authsdk"
	"github.com/betomoedano/expo-oauth-example/pkg/authsdk/sqlitestore"
	"github.com/betomoedano/expo-oauth-example/pkg/slogx"
)

var version = "dev"

// config is read from flags, then AUTHCLIENT_* environment variables.
type config struct {
	Server     string `mapstructure:"server"`
	Store      string `mapstructure:"store"`
	Passphrase string `mapstructure:"passphrase"`
	Redirect   string `mapstructure:"redirect"`
	LogLevel   string `mapstructure:"log_level"`
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "authclient",
		Short:         "Native reference client for the auth service",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("server", "http://localhost:8081", "Auth service base URL")
	flags.String("store", defaultStorePath(), "Path to the encrypted session file")
	flags.String("passphrase", "", "Passphrase protecting the session file")
	flags.String("redirect", "myapp://", "Redirect URI registered for the app")
	flags.String("log-level", "warn", "Log level (debug|info|warn|error)")

	v.SetEnvPrefix("AUTHCLIENT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for _, name := range []string{"server", "store", "passphrase", "redirect"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}
	_ = v.BindPFlag("log_level", flags.Lookup("log-level"))

	load := func() (config, error) {
		var cfg config
		if err := v.Unmarshal(&cfg); err != nil {
			return config{}, fmt.Errorf("read config: %w", err)
		}
		if cfg.Passphrase == "" {
			return config{}, errors.New("a passphrase is required (--passphrase or AUTHCLIENT_PASSPHRASE)")
		}
		return cfg, nil
	}

	root.AddCommand(
		newLoginCmd(load),
		newGoogleCmd(load),
		newAppleCmd(load),
		newStatusCmd(load),
		newRefreshCmd(load),
		newFetchCmd(load),
		newLogoutCmd(load),
	)
	return root
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "authclient.db"
	}
	return filepath.Join(dir, "authclient", "session.db")
}

// session is an opened store with a controller on top of it.
type session struct {
	ctrl  *authsdk.SessionController
	store *sqlitestore.Store
	cfg   config
}

func openSession(ctx context.Context, cfg config) (*session, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Store), 0o700); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	store, err := sqlitestore.Open(ctx, "file:"+cfg.Store, []byte(cfg.Passphrase))
	if err != nil {
		return nil, err
	}

	logger := slogx.New(slogx.Config{
		Service: "authclient",
		Version: version,
		Env:     "cli",
		Level:   cfg.LogLevel,
		Format:  "text",
		Output:  os.Stderr,
	})

	client := authsdk.NewSDKClient(cfg.Server)
	ctrl := authsdk.NewSessionController(client, authsdk.NewBearerTransport(client, store), authsdk.WithLogger(logger))
	ctrl.Subscribe(func(v authsdk.View) {
		logger.Debug("session state", "state", v.State, "loading", v.IsLoading)
	})

	return &session{ctrl: ctrl, store: store, cfg: cfg}, nil
}

// restore opens the session and resumes whatever is stored.
func restore(ctx context.Context, cfg config) (*session, error) {
	s, err := openSession(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := s.ctrl.Restore(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *session) Close() {
	s.ctrl.Close()
	if err := s.store.Close(); err != nil {
		slog.Warn("closing session store", "err", err)
	}
}

func printUser(cmd *cobra.Command, u *authsdk.User) {
	if u == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "not signed in")
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "signed in as %s", u.Subject)
	if u.Email != "" {
		fmt.Fprintf(out, " <%s>", u.Email)
	}
	if u.Provider != "" {
		fmt.Fprintf(out, " via %s", u.Provider)
	}
	fmt.Fprintln(out)
	if exp := u.Expiry(); !exp.IsZero() {
		fmt.Fprintf(out, "access token expires %s\n", exp.Format("2006-01-02 15:04:05 MST"))
	}
}
