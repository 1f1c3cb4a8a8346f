// Package server wires the chat tools to their runtime dependencies and
// hosts the HTTP side of the MCP transport.
//
// # Key Components
//
// ServerContext builds the provider clients, the credential store, the
// Google Authenticator and the toolkit from a config.Config, and carries the
// metrics and audit logger used to instrument tool calls. Every transport
// (MCP stdio, streamable HTTP, the OpenWebUI bridge and the CLI) shares one
// ServerContext.
//
// HTTPServer serves the MCP streamable HTTP endpoint together with health
// checks. MetricsServer exposes Prometheus metrics on a dedicated address.
//
// Host-forwarded user identity (X-OpenWebUI-User-* headers) is carried in
// the request context; see UserFromHeaders and ContextWithUser.
package server
