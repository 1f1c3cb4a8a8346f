package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/chattools/internal/config"
	"github.com/teemow/chattools/internal/logging"
)

var (
	logLevel  string
	logFormat string
	envFiles  []string

	// appConfig is loaded once before any subcommand runs.
	appConfig *config.Config
)

// rootCmd represents the base command for the chattools application
var rootCmd = &cobra.Command{
	Use:   "chattools",
	Short: "Time, weather, geolocation and calendar tools for chat assistants",
	Long: `chattools provides tools for chat assistants: the current time, the
weather and forecast for a ZIP code, the public IP geolocation, upcoming
Google Calendar events and the calling user.

It can run as:
  - An MCP (Model Context Protocol) server over stdio or streamable HTTP
  - An OpenAPI tool server for OpenWebUI
  - A command-line tool (chattools call <tool>)`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initConfig(cmd)
	},
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "chattools version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initConfig loads the configuration and installs the process-wide logger.
// Flags win over LOG_LEVEL and LOG_FORMAT.
func initConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.LogFormat = logFormat
	}

	// stdout belongs to the stdio transport, so logs always go to stderr.
	logger, err := logging.Setup(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("invalid logging configuration: %w", err)
	}

	if placeholders := cfg.Placeholders(); len(placeholders) > 0 {
		logger.Debug("credentials not configured, dependent tools will report an error",
			slog.String("keys", strings.Join(placeholders, ",")))
	}

	appConfig = cfg
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logging.FormatText, "Log format (text, json)")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "Load environment from these files instead of ./.env")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newCallCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
