package bridge

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/teemow/chattools/internal/instrumentation"
	"github.com/teemow/chattools/internal/server"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-Id"

const requestIDKey = "request_id"

// Options configures the bridge.
type Options struct {
	// Debug switches gin to debug mode.
	Debug bool
	// AllowOrigins lists the CORS origins; empty allows any origin.
	AllowOrigins []string
	// Version is reported by /health and the OpenAPI document.
	Version string
}

// Server is the HTTP tool server.
type Server struct {
	sc      *server.ServerContext
	engine  *gin.Engine
	logger  *slog.Logger
	version string

	mu         sync.Mutex
	httpServer *http.Server
}

// New builds the gin engine and registers the routes.
func New(sc *server.ServerContext, opts Options) *Server {
	if opts.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		sc:      sc,
		engine:  gin.New(),
		logger:  sc.Logger().With(slog.String("component", "bridge")),
		version: opts.Version,
	}

	corsConfig := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			RequestIDHeader,
			server.HeaderUserID,
			server.HeaderUserName,
			server.HeaderUserEmail,
			server.HeaderUserRole,
		},
		ExposeHeaders: []string{"Content-Length", RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(opts.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = opts.AllowOrigins
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(requestIDMiddleware())
	s.engine.Use(s.loggingMiddleware())
	s.engine.Use(cors.New(corsConfig))

	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/openapi.json", s.handleOpenAPI)
	s.engine.GET("/tools", s.handleListTools)
	s.engine.POST("/tools/call", s.handleCall)
	s.engine.POST("/tools/:name", s.handleNamedCall)

	return s
}

// Engine returns the gin engine, mainly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start listens on addr and serves until Shutdown.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve serves on an existing listener until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	// No write timeout: a calendar call can wait on an interactive grant.
	s.httpServer = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	s.logger.Info("starting tool bridge", slog.String("addr", ln.Addr().String()))
	err := srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		path := c.FullPath()
		if path == "" {
			path = instrumentation.PathUnmatched
		}
		status := c.Writer.Status()

		s.sc.Metrics().RecordHTTPRequest(c.Request.Context(), c.Request.Method, path, status, duration)
		s.logger.Debug("http request",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("duration", duration),
			slog.String("request_id", c.GetString(requestIDKey)))
	}
}
