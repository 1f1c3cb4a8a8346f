// Package assistant_tools exposes the chat toolkit over MCP.
//
// Each toolkit definition becomes one MCP tool. Tool events are forwarded to
// the client as logging and progress notifications, and input requests go
// through elicitation. Failed results are returned as tool errors so the
// client sees IsError set.
package assistant_tools
