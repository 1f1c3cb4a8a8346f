package bridge

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teemow/chattools/internal/events"
	"github.com/teemow/chattools/internal/instrumentation"
	"github.com/teemow/chattools/internal/logging"
	"github.com/teemow/chattools/internal/server"
	"github.com/teemow/chattools/internal/toolkit"
	"github.com/teemow/chattools/internal/tools/common"
)

func (s *Server) handleHealth(c *gin.Context) {
	if s.sc.IsShutdown() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting down"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"version":      s.version,
		"placeholders": s.sc.Config().Placeholders(),
	})
}

func (s *Server) handleListTools(c *gin.Context) {
	defs := s.sc.Toolkit().Definitions()
	tools := make([]ToolInfo, 0, len(defs))
	for _, def := range defs {
		params := def.Params
		if params == nil {
			params = []toolkit.Param{}
		}
		tools = append(tools, ToolInfo{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  params,
		})
	}
	c.JSON(http.StatusOK, gin.H{"tools": tools})
}

func (s *Server) handleOpenAPI(c *gin.Context) {
	c.JSON(http.StatusOK, OpenAPIDocument(s.sc.Toolkit().Definitions(), s.version))
}

func (s *Server) handleCall(c *gin.Context) {
	var req CallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	s.runTool(c, req.ToolName, req.Arguments)
}

func (s *Server) handleNamedCall(c *gin.Context) {
	args := map[string]any{}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&args); err != nil {
			s.respondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}
	s.runTool(c, c.Param("name"), args)
}

func (s *Server) runTool(c *gin.Context, name string, args map[string]any) {
	def, ok := s.sc.Toolkit().Lookup(name)
	if !ok {
		s.respondError(c, http.StatusNotFound, "unknown tool: "+name)
		return
	}
	if args == nil {
		args = map[string]any{}
	}

	var collected events.Buffer
	res := common.RunTool(c.Request.Context(), s.sc, instrumentation.TransportBridge, def, toolkit.Call{
		Args:     args,
		Sink:     events.Tee(&collected, events.LogSink{Logger: s.logger.With(logging.Tool(name))}),
		Prompter: ArgsPrompter{Args: args},
		User:     server.UserFromHeaders(c.Request.Header),
	})

	c.JSON(http.StatusOK, newCallResponse(res, collected.Events(), c.GetString(requestIDKey)))
}

func (s *Server) respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, ErrorResponse{
		Success:   false,
		Error:     msg,
		RequestID: c.GetString(requestIDKey),
	})
}
