package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teemow/chattools/internal/events"
	"github.com/teemow/chattools/internal/instrumentation"
	"github.com/teemow/chattools/internal/toolkit"
	"github.com/teemow/chattools/internal/tools/common"
)

func newCallCmd() *cobra.Command {
	var (
		jsonOutput bool
		user       toolkit.User
	)

	cmd := &cobra.Command{
		Use:   "call <tool> [name=value ...]",
		Short: "Run a single tool",
		Long: `Run one tool and print its result.

Arguments are given as name=value pairs, for example:

  chattools call current_weather zipcode=98012
  chattools call weather_forecast zipcode=98012 days=3

Tool events are logged to stderr. When a tool needs input it is asked for on
the terminal.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			toolArgs, err := parseToolArgs(args[1:])
			if err != nil {
				return err
			}
			return runCall(cmd, args[0], toolArgs, &user, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the full result as JSON")
	cmd.Flags().StringVar(&user.ID, "user-id", "", "User ID passed to the tool")
	cmd.Flags().StringVar(&user.Name, "user-name", "", "User name passed to the tool")
	cmd.Flags().StringVar(&user.Email, "user-email", "", "User email passed to the tool")

	return cmd
}

func runCall(cmd *cobra.Command, name string, args map[string]any, user *toolkit.User, jsonOutput bool) error {
	ctx, cancel := signal.NotifyContext(contextOrBackground(cmd), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sc, err := newServerContext(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = sc.Shutdown() }()

	def, ok := sc.Toolkit().Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", toolkit.ErrUnknownTool, name)
	}

	if *user == (toolkit.User{}) {
		user = nil
	}

	res := common.RunTool(ctx, sc, instrumentation.TransportCLI, def, toolkit.Call{
		Args:     args,
		Sink:     events.LogSink{Logger: slog.Default().With(slog.String("tool", name))},
		Prompter: newTerminalPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()),
		User:     user,
	})

	if err := printResult(cmd, res, jsonOutput); err != nil {
		return err
	}
	if res.Failed {
		return fmt.Errorf("tool %s failed", name)
	}
	return nil
}

func printResult(cmd *cobra.Command, res toolkit.Result, jsonOutput bool) error {
	out := cmd.OutOrStdout()
	if !jsonOutput {
		_, err := fmt.Fprintln(out, res.Text)
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// parseToolArgs turns name=value pairs into tool arguments.
func parseToolArgs(pairs []string) (map[string]any, error) {
	args := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid argument %q, expected name=value", pair)
		}
		args[name] = value
	}
	return args, nil
}

// contextOrBackground is used by commands that may run without a cobra
// context, such as in tests.
func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
