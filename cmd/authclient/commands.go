package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/betomoedano/expo-oauth-example/pkg/authsdk"
)

type loader func() (config, error)

func newLoginCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in with Google through the browser",
		Long: `Prints the authorize URL to open in a browser. After signing in the browser
is sent to the redirect URI; paste that full URL back here to finish.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			s, err := openSession(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			authURL, err := s.ctrl.BeginSignIn(cfg.Redirect, "openid", "profile", "email")
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Open this URL in a browser:\n\n  %s\n\nThen paste the URL you were redirected to: ", authURL)

			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("read callback url: %w", err)
			}
			if err := s.ctrl.CompleteSignIn(cmd.Context(), strings.TrimSpace(line)); err != nil {
				return err
			}

			printUser(cmd, s.ctrl.View().User)
			return nil
		},
	}
}

func newGoogleCmd(load loader) *cobra.Command {
	var idToken string
	cmd := &cobra.Command{
		Use:   "google",
		Short: "Sign in with an ID token from the native Google SDK",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			s, err := openSession(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.ctrl.SignInWithGoogleIDToken(cmd.Context(), idToken); err != nil {
				return err
			}
			printUser(cmd, s.ctrl.View().User)
			return nil
		},
	}
	cmd.Flags().StringVar(&idToken, "id-token", "", "Google ID token")
	_ = cmd.MarkFlagRequired("id-token")
	return cmd
}

func newAppleCmd(load loader) *cobra.Command {
	var req authsdk.AppleRequest
	cmd := &cobra.Command{
		Use:   "apple",
		Short: "Sign in with an Apple identity token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			s, err := openSession(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.ctrl.SignInWithApple(cmd.Context(), req); err != nil {
				return err
			}
			printUser(cmd, s.ctrl.View().User)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.IdentityToken, "identity-token", "", "Apple identity token")
	f.StringVar(&req.RawNonce, "nonce", "", "Raw nonce used for the request")
	f.StringVar(&req.GivenName, "given-name", "", "Given name (first sign-in only)")
	f.StringVar(&req.FamilyName, "family-name", "", "Family name (first sign-in only)")
	f.StringVar(&req.Email, "email", "", "Email (first sign-in only)")
	_ = cmd.MarkFlagRequired("identity-token")
	_ = cmd.MarkFlagRequired("nonce")
	return cmd
}

func newStatusCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored session, refreshing it if needed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			s, err := restore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			printUser(cmd, s.ctrl.View().User)
			return nil
		},
	}
}

func newRefreshCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Rotate the stored token pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			s, err := restore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			if s.ctrl.State() != authsdk.StateAuthenticated {
				return authsdk.ErrNotAuthenticated
			}
			u, err := s.ctrl.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			printUser(cmd, u)
			return nil
		},
	}
}

func newFetchCmd(load loader) *cobra.Command {
	var (
		method string
		data   string
	)
	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Send an authenticated request, refreshing once on 401",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			s, err := restore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			target := args[0]
			if strings.HasPrefix(target, "/") {
				target = strings.TrimRight(cfg.Server, "/") + target
			}

			var body io.Reader
			if data != "" {
				body = strings.NewReader(data)
			}
			req, err := http.NewRequestWithContext(cmd.Context(), strings.ToUpper(method), target, body)
			if err != nil {
				return err
			}
			if data != "" {
				req.Header.Set("Content-Type", "application/json")
			}

			resp, err := s.ctrl.FetchWithAuth(cmd.Context(), req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			fmt.Fprintln(cmd.ErrOrStderr(), resp.Status)
			if _, err := io.Copy(cmd.OutOrStdout(), resp.Body); err != nil {
				return err
			}
			if resp.StatusCode >= 400 {
				return fmt.Errorf("request failed: %s", resp.Status)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&method, "method", "X", http.MethodGet, "HTTP method")
	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body")
	return cmd
}

func newLogoutCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			s, err := openSession(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			// A session that cannot be restored is still cleared below.
			_ = s.ctrl.Restore(cmd.Context())
			if err := s.ctrl.SignOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}
}
