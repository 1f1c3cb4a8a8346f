package assistant_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/chattools/internal/instrumentation"
	"github.com/teemow/chattools/internal/server"
	"github.com/teemow/chattools/internal/toolkit"
	"github.com/teemow/chattools/internal/tools/common"
)

// RegisterAssistantTools registers every toolkit tool with the MCP server
func RegisterAssistantTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	for _, def := range sc.Toolkit().Definitions() {
		tool, err := NewMCPTool(def)
		if err != nil {
			return fmt.Errorf("failed to build tool %s: %w", def.Name, err)
		}
		s.AddTool(tool, toolHandler(sc, def))
	}
	return nil
}

// NewMCPTool converts a toolkit definition into an MCP tool description.
func NewMCPTool(def toolkit.Definition) (mcp.Tool, error) {
	opts := []mcp.ToolOption{mcp.WithDescription(def.Description)}

	for _, p := range def.Params {
		propOpts := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			propOpts = append(propOpts, mcp.Required())
		}

		switch p.Type {
		case toolkit.ParamString:
			opts = append(opts, mcp.WithString(p.Name, propOpts...))
		case toolkit.ParamInteger:
			opts = append(opts, mcp.WithNumber(p.Name, propOpts...))
		default:
			return mcp.Tool{}, fmt.Errorf("unsupported parameter type %q for %s", p.Type, p.Name)
		}
	}

	return mcp.NewTool(def.Name, opts...), nil
}

func toolHandler(sc *server.ServerContext, def toolkit.Definition) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		user, _ := server.UserFromContext(ctx)

		res := common.RunTool(ctx, sc, instrumentation.TransportMCP, def, toolkit.Call{
			Args:     request.GetArguments(),
			Sink:     common.NewMCPSink(request),
			Prompter: common.ElicitationPrompter{},
			User:     user,
		})
		return ToCallToolResult(res), nil
	}
}

// ToCallToolResult converts a toolkit result. Structured data, when
// present, follows the text as a JSON text block.
func ToCallToolResult(res toolkit.Result) *mcp.CallToolResult {
	result := &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(res.Text)},
		IsError: res.Failed,
	}
	if res.Data == nil {
		return result
	}

	data, err := json.Marshal(res.Data)
	if err != nil {
		return result
	}
	result.Content = append(result.Content, mcp.NewTextContent(string(data)))
	return result
}
