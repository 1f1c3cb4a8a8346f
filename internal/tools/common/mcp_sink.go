package common

import (
	"context"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/chattools/internal/events"
)

// MCP notification methods used to forward tool events.
const (
	MethodLoggingMessage = "notifications/message"
	MethodProgress       = "notifications/progress"
)

// LoggerName is the logger field of forwarded log messages.
const LoggerName = "chattools"

// MCPSink forwards tool events to the MCP client of the current session.
// Every event becomes a logging message whose data is the event's wire
// shape. In-progress status events additionally become progress
// notifications when the client sent a progress token.
type MCPSink struct {
	progressToken mcp.ProgressToken

	mu       sync.Mutex
	progress float64
}

// NewMCPSink creates a sink for one tool call. request supplies the
// progress token, if any.
func NewMCPSink(request mcp.CallToolRequest) *MCPSink {
	s := &MCPSink{}
	if request.Params.Meta != nil {
		s.progressToken = request.Params.Meta.ProgressToken
	}
	return s
}

// Emit implements events.NotificationSink. It is a no-op outside an MCP
// session.
func (s *MCPSink) Emit(ctx context.Context, event events.Event) error {
	srv := mcpserver.ServerFromContext(ctx)
	if srv == nil {
		return nil
	}

	level := mcp.LoggingLevelInfo
	if event.IsError() {
		level = mcp.LoggingLevelError
	}
	if err := srv.SendNotificationToClient(ctx, MethodLoggingMessage, map[string]any{
		"level":  level,
		"logger": LoggerName,
		"data":   event,
	}); err != nil {
		return err
	}

	if s.progressToken == nil || event.Type != events.TypeStatus || event.IsError() {
		return nil
	}
	return srv.SendNotificationToClient(ctx, MethodProgress, map[string]any{
		"progressToken": s.progressToken,
		"progress":      s.nextProgress(),
		"message":       event.Text(),
	})
}

// nextProgress returns a strictly increasing progress value; the total is
// not known up front.
func (s *MCPSink) nextProgress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress++
	return s.progress
}
