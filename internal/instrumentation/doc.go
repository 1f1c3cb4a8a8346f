// Package instrumentation provides OpenTelemetry metrics and tracing for
// chattools.
//
// # Metrics
//
// HTTP bridge:
//   - http_requests_total, http_request_duration_seconds
//
// Upstream providers (openweathermap, ipify, google_calendar):
//   - provider_requests_total, provider_request_duration_seconds
//
// OAuth:
//   - oauth_auth_total: authentication attempts by outcome (reused, refreshed, granted, failure)
//   - oauth_token_refresh_total: refresh attempts by result
//   - oauth_active_grants: interactive grants waiting for the user
//
// Tools:
//   - tool_invocations_total, tool_duration_seconds
//   - tool_notifications_total: events delivered to the host by type
//
// # Configuration
//
// Instrumentation is configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp, stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout, none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: chattools)
//
// All Metrics methods are safe on a nil receiver, so components accept an
// optional *Metrics without guarding every call.
package instrumentation
