package common

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/chattools/internal/events"
)

// ErrPromptDeclined is returned when the user declines or cancels an
// elicitation.
var ErrPromptDeclined = errors.New("user declined the input request")

const (
	elicitValueField   = "value"
	elicitConfirmField = "confirmed"
)

// ElicitationPrompter asks the MCP client for input through elicitation.
// Outside an MCP session it returns events.ErrNoPrompter.
type ElicitationPrompter struct{}

// Prompt implements events.PromptSink.
func (ElicitationPrompter) Prompt(ctx context.Context, req events.InputRequest) (string, error) {
	srv := mcpserver.ServerFromContext(ctx)
	if srv == nil {
		return "", events.ErrNoPrompter
	}

	confirm := req.Type == events.RequestConfirmation || req.Type == events.RequestExecute

	result, err := srv.RequestElicitation(ctx, mcp.ElicitationRequest{
		Params: mcp.ElicitationParams{
			Message:         elicitationMessage(req),
			RequestedSchema: elicitationSchema(req, confirm),
		},
	})
	if err != nil {
		return "", fmt.Errorf("elicitation failed: %w", err)
	}
	if result.Action != mcp.ElicitationResponseActionAccept {
		return "", ErrPromptDeclined
	}

	content, _ := result.Content.(map[string]any)
	if confirm {
		confirmed, _ := content[elicitConfirmField].(bool)
		return strconv.FormatBool(confirmed), nil
	}
	value, _ := content[elicitValueField].(string)
	return strings.TrimSpace(value), nil
}

func elicitationMessage(req events.InputRequest) string {
	switch {
	case req.Title == "":
		return req.Message
	case req.Message == "":
		return req.Title
	default:
		return req.Title + ": " + req.Message
	}
}

func elicitationSchema(req events.InputRequest, confirm bool) map[string]any {
	if confirm {
		return map[string]any{
			"type": "object",
			"properties": map[string]any{
				elicitConfirmField: map[string]any{
					"type":  "boolean",
					"title": req.Title,
				},
			},
			"required": []string{elicitConfirmField},
		}
	}

	field := map[string]any{
		"type":  "string",
		"title": req.Title,
	}
	if req.Placeholder != "" {
		field["description"] = "e.g. " + req.Placeholder
	}
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{elicitValueField: field},
		"required":   []string{elicitValueField},
	}
}
