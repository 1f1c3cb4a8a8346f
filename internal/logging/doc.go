// Package logging provides structured logging utilities for chattools.
//
// All output goes through the standard library's slog package. Setup installs
// the process-wide default logger once, from the cobra root command; everything
// else obtains loggers with slog.Default() or receives one by injection.
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithTool(slog.Default(), "current_weather")
//	logger.Info("weather fetched",
//	    logging.Provider("openweathermap"),
//	    logging.Status(logging.StatusSuccess))
//
// Sanitize sensitive data before logging:
//
//	logger.Debug("token refreshed", slog.String("access_token", logging.SanitizeToken(tok)))
//
// # Security Considerations
//
//   - User emails forwarded by the host are hashed before they are logged
//   - Tokens are never logged directly, only their length
//   - Logs go to stderr so the stdio MCP transport keeps stdout for protocol frames
package logging
