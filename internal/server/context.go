package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/teemow/chattools/internal/apiclient"
	"github.com/teemow/chattools/internal/calendar"
	"github.com/teemow/chattools/internal/config"
	"github.com/teemow/chattools/internal/geoip"
	"github.com/teemow/chattools/internal/google"
	"github.com/teemow/chattools/internal/instrumentation"
	"github.com/teemow/chattools/internal/toolkit"
	"github.com/teemow/chattools/internal/weather"
)

// ServerContext holds the dependencies shared by every transport.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc
	config *config.Config
	logger *slog.Logger

	toolkit       *toolkit.Toolkit
	store         google.CredentialStore
	authenticator *google.Authenticator
	authRequest   google.AuthorizationRequest

	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger

	mu       sync.RWMutex
	shutdown bool
}

// Option configures a ServerContext.
type Option func(*options)

type options struct {
	logger      *slog.Logger
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	granter     google.Granter
	store       google.CredentialStore
	httpClient  *http.Client
}

// WithLogger sets the logger used by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics enables metrics recording.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithAuditLogger enables audit logging of tool calls.
func WithAuditLogger(al *instrumentation.AuditLogger) Option {
	return func(o *options) { o.auditLogger = al }
}

// WithGranter overrides the granter chosen from the configured grant mode.
func WithGranter(g google.Granter) Option {
	return func(o *options) { o.granter = g }
}

// WithCredentialStore overrides the store chosen from the configuration.
func WithCredentialStore(s google.CredentialStore) Option {
	return func(o *options) { o.store = s }
}

// WithHTTPClient replaces the client used for provider and token requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// NewServerContext builds the toolkit and its dependencies from cfg.
// Tools whose credentials are still placeholders stay registered and report
// the missing configuration when called.
func NewServerContext(ctx context.Context, cfg *config.Config, opts ...Option) (*ServerContext, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	shutdownCtx, cancel := context.WithCancel(ctx)

	var apiOpts []apiclient.Option
	if o.httpClient != nil {
		apiOpts = append(apiOpts, apiclient.WithHTTPClient(o.httpClient))
	}
	api := apiclient.New(cfg.HTTPTimeout, apiOpts...)

	store := o.store
	if store == nil {
		var err error
		store, err = google.NewStore(shutdownCtx, google.StoreOptions{
			Driver:         cfg.Store.Driver,
			Path:           cfg.Google.TokenFile,
			RedisAddr:      cfg.Store.RedisAddr,
			RedisPassword:  cfg.Store.RedisPassword,
			RedisDB:        cfg.Store.RedisDB,
			RedisKeyPrefix: cfg.Store.RedisKeyPrefix,
		})
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to create credential store: %w", err)
		}
	}

	granter := o.granter
	if granter == nil {
		granter = NewGranter(cfg, o.logger, o.metrics)
	}

	authenticator := google.NewAuthenticator(store, granter,
		google.WithLogger(o.logger),
		google.WithMetrics(o.metrics),
		google.WithHTTPClient(api.HTTPClient()),
	)

	tkOpts := []toolkit.Option{
		toolkit.WithLogger(o.logger),
		toolkit.WithLocator(geoip.NewClient(api,
			geoip.WithIPURL(cfg.GeoIP.IPURL),
			geoip.WithGeoURL(cfg.GeoIP.GeoURL),
			geoip.WithGeoAPIKey(cfg.GeoIP.GeoAPIKey),
			geoip.WithMetrics(o.metrics),
		)),
	}

	if cfg.WeatherConfigured() {
		tkOpts = append(tkOpts, toolkit.WithWeather(weather.NewClient(api, cfg.Weather.APIKey,
			weather.WithBaseURL(cfg.Weather.BaseURL),
			weather.WithCountry(cfg.Weather.Country),
			weather.WithMetrics(o.metrics),
		)))
	}

	var authRequest google.AuthorizationRequest
	if cfg.GoogleConfigured() {
		var err error
		authRequest, err = AuthorizationRequest(cfg)
		if err != nil {
			cancel()
			return nil, err
		}
		tkOpts = append(tkOpts, toolkit.WithCalendar(authenticator, authRequest,
			toolkit.NewCalendarFactory(calendar.WithMetrics(o.metrics))))
	}

	return &ServerContext{
		ctx:           shutdownCtx,
		cancel:        cancel,
		config:        cfg,
		logger:        o.logger,
		toolkit:       toolkit.New(tkOpts...),
		store:         store,
		authenticator: authenticator,
		authRequest:   authRequest,
		metrics:       o.metrics,
		auditLogger:   o.auditLogger,
	}, nil
}

// NewGranter returns the granter for the configured grant mode.
func NewGranter(cfg *config.Config, logger *slog.Logger, metrics *instrumentation.Metrics) google.Granter {
	if cfg.Google.GrantMode == config.GrantModePrompt {
		return google.PromptGranter{}
	}
	return &google.LocalServerGranter{
		Timeout: cfg.Google.GrantTimeout,
		Logger:  logger,
		Metrics: metrics,
	}
}

// AuthorizationRequest builds the calendar authorization request from the
// configured client, preferring a credentials.json document over a bare
// client ID and secret.
func AuthorizationRequest(cfg *config.Config) (google.AuthorizationRequest, error) {
	clientJSON, err := cfg.GoogleClientJSON()
	if err != nil {
		return google.AuthorizationRequest{}, err
	}
	if clientJSON == nil {
		clientJSON, err = google.ClientConfigFromCredentials(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)
		if err != nil {
			return google.AuthorizationRequest{}, err
		}
	}
	return google.AuthorizationRequest{
		Scopes:       google.CalendarScopes,
		ClientConfig: clientJSON,
		RedirectURL:  cfg.Google.RedirectURL,
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Config returns the configuration the context was built from.
func (sc *ServerContext) Config() *config.Config {
	return sc.config
}

// Logger returns the shared logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Toolkit returns the tool registry.
func (sc *ServerContext) Toolkit() *toolkit.Toolkit {
	return sc.toolkit
}

// Authenticator returns the Google Authenticator.
func (sc *ServerContext) Authenticator() *google.Authenticator {
	return sc.authenticator
}

// AuthRequest returns the calendar authorization request. It is empty when
// no Google client is configured.
func (sc *ServerContext) AuthRequest() google.AuthorizationRequest {
	return sc.authRequest
}

// CredentialStore returns the credential store.
func (sc *ServerContext) CredentialStore() google.CredentialStore {
	return sc.store
}

// Metrics returns the metrics recorder, which may be nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// AuditLogger returns the audit logger, which may be nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the server context and closes the credential store.
// It is safe to call more than once.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()

	if c, ok := sc.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("failed to close credential store: %w", err)
		}
	}
	return nil
}
