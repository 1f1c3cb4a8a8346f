// Package cmd implements the command-line interface for chattools.
//
// This package provides the following commands:
//   - serve: Run the tools as an MCP server (stdio or streamable HTTP) or as
//     an OpenWebUI tool server
//   - call: Run a single tool from the terminal
//   - auth: Authorize, inspect or revoke the stored Google credential
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all tools
package cmd
