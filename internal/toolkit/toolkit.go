package toolkit

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/chattools/internal/calendar"
	"github.com/teemow/chattools/internal/events"
	"github.com/teemow/chattools/internal/geoip"
	"github.com/teemow/chattools/internal/google"
	"github.com/teemow/chattools/internal/weather"
)

// WeatherService is the subset of weather.Client the weather tools use.
type WeatherService interface {
	Geocode(ctx context.Context, zipcode string) (*weather.Coordinates, error)
	Current(ctx context.Context, coords weather.Coordinates) (*weather.Conditions, error)
	Forecast(ctx context.Context, coords weather.Coordinates, days int) ([]weather.DailyForecast, error)
}

// Locator resolves the public IP address and its geolocation.
type Locator interface {
	Locate(ctx context.Context) (*geoip.Location, error)
}

// EventLister lists upcoming calendar events.
type EventLister interface {
	ListUpcoming(ctx context.Context, calendarID string, from time.Time, maxResults int64) ([]calendar.EventSummary, error)
}

// CalendarFactory creates an EventLister for an authenticated token source.
type CalendarFactory func(ctx context.Context, ts oauth2.TokenSource) (EventLister, error)

// Toolkit holds the dependencies shared by every tool. It is safe for
// concurrent use; operations keep no state between calls.
type Toolkit struct {
	weather   WeatherService
	locator   Locator
	auth      google.TokenProvider
	authReq   google.AuthorizationRequest
	calendars CalendarFactory
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Toolkit.
type Option func(*Toolkit)

// WithWeather enables the weather tools. Without it they report a missing
// API key.
func WithWeather(svc WeatherService) Option {
	return func(t *Toolkit) { t.weather = svc }
}

// WithLocator sets the public IP geolocation backend.
func WithLocator(l Locator) Option {
	return func(t *Toolkit) { t.locator = l }
}

// WithCalendar enables the calendar tool. auth obtains credentials for req
// and factory builds the Calendar client from them.
func WithCalendar(auth google.TokenProvider, req google.AuthorizationRequest, factory CalendarFactory) Option {
	return func(t *Toolkit) {
		t.auth = auth
		t.authReq = req
		t.calendars = factory
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(t *Toolkit) {
		if now != nil {
			t.now = now
		}
	}
}

// WithLogger sets the logger passed to per-call emitters.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Toolkit) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// New creates a Toolkit.
func New(opts ...Option) *Toolkit {
	t := &Toolkit{
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewCalendarFactory returns a CalendarFactory backed by calendar.NewClient.
func NewCalendarFactory(opts ...calendar.Option) CalendarFactory {
	return func(ctx context.Context, ts oauth2.TokenSource) (EventLister, error) {
		return calendar.NewClient(ctx, ts, opts...)
	}
}

func (t *Toolkit) emitter(sink events.NotificationSink) *events.Emitter {
	return events.NewEmitter(sink).WithLogger(t.logger)
}
