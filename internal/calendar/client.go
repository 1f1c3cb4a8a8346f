package calendar

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/chattools/internal/instrumentation"
)

const (
	// PrimaryCalendar is the calendar ID of the user's main calendar.
	PrimaryCalendar = "primary"
	// DefaultMaxResults is how many upcoming events are listed.
	DefaultMaxResults = 10
)

// Client wraps the Google Calendar service.
type Client struct {
	svc     *calendar.Service
	metrics *instrumentation.Metrics
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	apiOpts []option.ClientOption
	metrics *instrumentation.Metrics
}

// WithEndpoint points the client at a different API base URL.
func WithEndpoint(endpoint string) Option {
	return func(o *clientOptions) {
		o.apiOpts = append(o.apiOpts, option.WithEndpoint(endpoint))
	}
}

// WithMetrics records each API call.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(o *clientOptions) { o.metrics = m }
}

// NewClient creates a Calendar client that authenticates with ts.
func NewClient(ctx context.Context, ts oauth2.TokenSource, opts ...Option) (*Client, error) {
	if ts == nil {
		return nil, fmt.Errorf("token source cannot be nil")
	}

	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	apiOpts := append([]option.ClientOption{option.WithHTTPClient(oauth2.NewClient(ctx, ts))}, o.apiOpts...)
	svc, err := calendar.NewService(ctx, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{svc: svc, metrics: o.metrics}, nil
}

// ListUpcoming returns up to maxResults single events starting at or after
// from, ordered by start time. Recurring events are expanded into instances.
func (c *Client) ListUpcoming(ctx context.Context, calendarID string, from time.Time, maxResults int64) ([]EventSummary, error) {
	ctx, span := instrumentation.StartProviderSpan(ctx, instrumentation.ProviderGoogleCalendar, "list_events")
	defer span.End()
	start := time.Now()

	events, err := c.svc.Events.List(calendarID).
		Context(ctx).
		TimeMin(from.UTC().Format(time.RFC3339)).
		MaxResults(maxResults).
		SingleEvents(true).
		OrderBy("startTime").
		Do()
	if err != nil {
		c.metrics.RecordProviderRequest(ctx, instrumentation.ProviderGoogleCalendar, "list_events", instrumentation.StatusError, time.Since(start))
		instrumentation.SetSpanError(span, err)
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	c.metrics.RecordProviderRequest(ctx, instrumentation.ProviderGoogleCalendar, "list_events", instrumentation.StatusSuccess, time.Since(start))
	instrumentation.SetSpanSuccess(span)

	summaries := make([]EventSummary, 0, len(events.Items))
	for _, event := range events.Items {
		summaries = append(summaries, toEventSummary(event))
	}
	return summaries, nil
}
