package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/chattools/internal/config"
	"github.com/teemow/chattools/internal/events"
	"github.com/teemow/chattools/internal/google"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the stored Google credential",
		Long: `Manage the Google credential used by list_upcoming_calendar_events.

Authorizing ahead of time avoids the interactive grant during a chat.`,
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthLogoutCmd())

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var grantMode string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authorize Google Calendar access and store the credential",
		Long: `Reuse, refresh or obtain a Google credential with the calendar scope.

With --grant-mode=local (default) a browser redirect to GOOGLE_REDIRECT_URL is
received on a local listener. With --grant-mode=prompt the authorization code
is pasted on the terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !appConfig.GoogleConfigured() {
				return config.MissingError(config.EnvGoogleClientID)
			}
			if cmd.Flags().Changed("grant-mode") {
				appConfig.Google.GrantMode = grantMode
				if err := appConfig.Validate(); err != nil {
					return err
				}
			}

			ctx, cancel := signal.NotifyContext(contextOrBackground(cmd), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			sc, err := newServerContext(ctx, nil)
			if err != nil {
				return err
			}
			defer func() { _ = sc.Shutdown() }()

			em := events.NewEmitter(events.LogSink{Logger: slog.Default().With(slog.String("component", "auth"))})
			cred, err := sc.Authenticator().Authenticate(ctx, sc.AuthRequest(), em,
				newTerminalPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Authorized. Credential stored at %s\n", sc.CredentialStore().Location())
			printCredential(cmd, cred)
			return nil
		},
	}

	cmd.Flags().StringVar(&grantMode, "grant-mode", config.GrantModeLocal, "Grant mode: local or prompt")

	return cmd
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := contextOrBackground(cmd)
			sc, err := newServerContext(ctx, nil)
			if err != nil {
				return err
			}
			defer func() { _ = sc.Shutdown() }()

			store := sc.CredentialStore()
			cred, err := store.Load(ctx)
			switch {
			case errors.Is(err, google.ErrCredentialNotFound):
				fmt.Fprintf(cmd.OutOrStdout(), "No credential stored at %s\n", store.Location())
				return nil
			case err != nil:
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Credential stored at %s\n", store.Location())
			printCredential(cmd, cred)
			return nil
		},
	}
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Delete the stored credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := contextOrBackground(cmd)
			sc, err := newServerContext(ctx, nil)
			if err != nil {
				return err
			}
			defer func() { _ = sc.Shutdown() }()

			store := sc.CredentialStore()
			if err := store.Delete(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted credential at %s\n", store.Location())
			return nil
		},
	}
}

func printCredential(cmd *cobra.Command, cred *google.Credential) {
	out := cmd.OutOrStdout()
	now := time.Now()

	state := "valid"
	if !cred.Valid(now) {
		state = "expired"
	}
	fmt.Fprintf(out, "  State:         %s\n", state)
	if !cred.Expiry.IsZero() {
		fmt.Fprintf(out, "  Expires:       %s\n", cred.Expiry.Local().Format(time.RFC1123))
	}
	fmt.Fprintf(out, "  Refresh token: %t\n", cred.RefreshToken != "")
	if len(cred.Scopes) > 0 {
		fmt.Fprintf(out, "  Scopes:        %s\n", strings.Join(cred.Scopes, " "))
	}
}
