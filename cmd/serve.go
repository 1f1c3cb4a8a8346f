package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/chattools/internal/bridge"
	"github.com/teemow/chattools/internal/config"
	"github.com/teemow/chattools/internal/instrumentation"
	"github.com/teemow/chattools/internal/server"
	"github.com/teemow/chattools/internal/tools/assistant_tools"
)

// Transports accepted by serve.
const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"
	transportBridge         = "bridge"
)

const defaultHTTPAddr = ":8080"

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

// serveOptions collects the serve flags.
type serveOptions struct {
	transport   string
	httpAddr    string
	debugMode   bool
	corsOrigins string
	metrics     MetricsConfig
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the tool server",
		Long: `Start chattools as a tool server.

Transports:
  stdio            MCP over standard input/output (default)
  streamable-http  MCP over streamable HTTP at /mcp, with /healthz and /readyz
  bridge           OpenAPI tool server for OpenWebUI (/tools, /openapi.json)

Tool events reach MCP clients as logging and progress notifications and
input requests are sent as elicitations. The bridge returns events with the
result and answers input requests from the call arguments.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("metrics") && os.Getenv("METRICS_ENABLED") == "false" {
				opts.metrics.Enabled = false
			}
			if !cmd.Flags().Changed("metrics-addr") {
				if addr := os.Getenv("METRICS_ADDR"); addr != "" {
					opts.metrics.Addr = addr
				}
			}
			return runServe(opts)
		},
	}

	cmd.Flags().StringVar(&opts.transport, "transport", transportStdio, "Transport type: stdio, streamable-http or bridge")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", defaultHTTPAddr, "HTTP listen address (streamable-http and bridge)")
	cmd.Flags().BoolVar(&opts.debugMode, "debug", false, "Enable debug mode for the HTTP bridge")
	cmd.Flags().StringVar(&opts.corsOrigins, "cors-origins", "", "Comma-separated CORS origins for the bridge (default: any)")
	cmd.Flags().BoolVar(&opts.metrics.Enabled, "metrics", true, "Serve Prometheus metrics (not with stdio)")
	cmd.Flags().StringVar(&opts.metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server listen address")

	return cmd
}

func runServe(opts serveOptions) error {
	switch opts.transport {
	case transportStdio, transportStreamableHTTP, transportBridge:
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http, bridge)", opts.transport)
	}

	if opts.transport != transportStdio && appConfig != nil {
		if err := checkGrantListener(opts.httpAddr, appConfig); err != nil {
			return err
		}
	}

	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := slog.Default().With(slog.String("transport", opts.transport))

	provider, err := newInstrumentationProvider(shutdownCtx)
	if err != nil {
		return err
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Warn("error during instrumentation shutdown", slog.String("error", err.Error()))
		}
	}()

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	if opts.transport != transportStdio && opts.metrics.Enabled && provider.PrometheusEnabled() {
		metricsServer, err = startMetricsServer(opts.metrics, provider)
		if err != nil {
			return err
		}
		logger.Info("metrics server started", slog.String("addr", metricsServer.BoundAddr()))
	}

	serverContext, err := newServerContext(shutdownCtx, provider)
	if err != nil {
		return err
	}
	defer func() {
		// Shutdown metrics server first
		if metricsServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Warn("error during metrics server shutdown", slog.String("error", err.Error()))
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			logger.Warn("error during server context shutdown", slog.String("error", err.Error()))
		}
	}()

	if opts.transport == transportBridge {
		b := bridge.New(serverContext, bridge.Options{
			Debug:        opts.debugMode,
			AllowOrigins: parseCommaSeparatedList(opts.corsOrigins),
			Version:      version,
		})
		logger.Info("starting chattools tool bridge", slog.String("addr", opts.httpAddr))
		return serveUntilDone(shutdownCtx, logger, func() error { return b.Start(opts.httpAddr) }, b.Shutdown)
	}

	mcpSrv := newMCPServer()
	if err := assistant_tools.RegisterAssistantTools(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register tools: %w", err)
	}

	if opts.transport == transportStdio {
		return runStdioServer(mcpSrv)
	}

	httpServer := server.NewHTTPServer(mcpSrv, serverContext)
	logger.Info("starting chattools MCP server",
		slog.String("addr", opts.httpAddr),
		slog.String("endpoint", server.MCPEndpointPath))
	return serveUntilDone(shutdownCtx, logger, func() error { return httpServer.Start(opts.httpAddr) }, httpServer.Shutdown)
}

// newMCPServer creates the MCP server with the capabilities the tools use.
func newMCPServer() *mcpserver.MCPServer {
	return mcpserver.NewMCPServer("chattools", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithLogging(),
		mcpserver.WithElicitation(),
	)
}

// newInstrumentationProvider builds the OpenTelemetry provider from the
// environment.
func newInstrumentationProvider(ctx context.Context) (*instrumentation.Provider, error) {
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	return provider, nil
}

// newServerContext builds the shared ServerContext from the loaded
// configuration, with metrics and audit logging when instrumentation is on.
func newServerContext(ctx context.Context, provider *instrumentation.Provider, opts ...server.Option) (*server.ServerContext, error) {
	if appConfig == nil {
		return nil, errors.New("configuration not loaded")
	}

	logger := slog.Default()
	opts = append([]server.Option{server.WithLogger(logger)}, opts...)
	if provider != nil && provider.Enabled() {
		opts = append(opts,
			server.WithMetrics(provider.Metrics()),
			server.WithAuditLogger(instrumentation.NewAuditLogger(logger, instrumentation.DefaultConfig().AuditLogging)),
		)
	}

	sc, err := server.NewServerContext(ctx, appConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create server context: %w", err)
	}
	return sc, nil
}

func startMetricsServer(cfg MetricsConfig, provider *instrumentation.Provider) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    cfg.Addr,
		Enabled:                 true,
		InstrumentationProvider: provider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	// Use ready channel to confirm metrics server started successfully
	metricsReady := make(chan struct{})
	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && !errors.Is(err, http.ErrServerClosed) {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	// Wait for metrics server to be ready or fail
	select {
	case <-metricsReady:
		return metricsServer, nil
	case err := <-metricsErr:
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("metrics server startup timed out")
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// serveUntilDone runs start until it fails or ctx is cancelled, then shuts
// the server down gracefully.
func serveUntilDone(ctx context.Context, logger *slog.Logger, start func() error, shutdown func(context.Context) error) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		logger.Info("HTTP server stopped normally")
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}

// parseCommaSeparatedList parses a comma-separated string into a slice,
// trimming whitespace from each element and filtering out empty strings.
// Returns nil if the input is empty or contains only whitespace/commas.
func parseCommaSeparatedList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

// checkGrantListener rejects a local grant redirect that points at the
// address the HTTP transport listens on. The grant listener could never bind
// it, so every calendar authorization would fail.
func checkGrantListener(httpAddr string, cfg *config.Config) error {
	if cfg.Google.GrantMode != config.GrantModeLocal || !cfg.GoogleConfigured() {
		return nil
	}

	redirect, err := url.Parse(cfg.Google.RedirectURL)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", config.EnvGoogleRedirectURL, err)
	}
	redirectPort := redirect.Port()
	if redirectPort == "" {
		redirectPort = "80"
		if redirect.Scheme == "https" {
			redirectPort = "443"
		}
	}
	if redirectPort == "0" {
		return nil
	}

	listenHost, listenPort, err := net.SplitHostPort(httpAddr)
	if err != nil {
		return fmt.Errorf("invalid --http-addr %q: %w", httpAddr, err)
	}
	if listenPort != redirectPort {
		return nil
	}

	redirectHost := redirect.Hostname()
	switch {
	case listenHost == "" || listenHost == "0.0.0.0" || listenHost == "::",
		listenHost == redirectHost,
		isLoopbackHost(listenHost) && isLoopbackHost(redirectHost):
		return fmt.Errorf("%s %s uses port %s, which --http-addr %s already listens on: choose another redirect port or set %s=%s",
			config.EnvGoogleRedirectURL, cfg.Google.RedirectURL, redirectPort, httpAddr,
			config.EnvGoogleGrantMode, config.GrantModePrompt)
	}
	return nil
}

func isLoopbackHost(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
