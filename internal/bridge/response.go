package bridge

import (
	"github.com/teemow/chattools/internal/events"
	"github.com/teemow/chattools/internal/toolkit"
)

// ContentItem is one block of tool output.
type ContentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// CallRequest is the body of POST /tools/call.
type CallRequest struct {
	ToolName  string         `json:"tool_name" binding:"required"`
	Arguments map[string]any `json:"arguments"`
}

// CallResponse is returned by every tool call endpoint.
type CallResponse struct {
	Success   bool           `json:"success"`
	Content   []ContentItem  `json:"content"`
	Data      any            `json:"data,omitempty"`
	Events    []events.Event `json:"events"`
	Error     string         `json:"error,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// ToolInfo describes a tool in GET /tools.
type ToolInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []toolkit.Param `json:"parameters"`
}

// ErrorResponse is returned for requests that never reach a tool.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func newCallResponse(res toolkit.Result, collected []events.Event, requestID string) CallResponse {
	resp := CallResponse{
		Success:   !res.Failed,
		Content:   []ContentItem{{Type: "text", Text: res.Text}},
		Data:      res.Data,
		Events:    collected,
		RequestID: requestID,
	}
	if resp.Events == nil {
		resp.Events = []events.Event{}
	}
	if res.Failed {
		resp.Error = res.Text
	}
	return resp
}
