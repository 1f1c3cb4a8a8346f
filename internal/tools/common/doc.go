// Package common holds the pieces every transport shares when it runs a
// tool: the instrumented runner, the MCP notification sink and the MCP
// elicitation prompter.
package common
