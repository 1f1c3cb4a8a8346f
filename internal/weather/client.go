package weather

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/teemow/chattools/internal/apiclient"
	"github.com/teemow/chattools/internal/instrumentation"
)

const (
	// DefaultBaseURL is the OpenWeatherMap API root.
	DefaultBaseURL = "https://api.openweathermap.org"
	// DefaultCountry is the country code used for ZIP lookups.
	DefaultCountry = "US"
	// MaxForecastDays is the most days Forecast returns.
	MaxForecastDays = 5
)

// Client calls the OpenWeatherMap APIs.
type Client struct {
	api     *apiclient.Client
	apiKey  string
	baseURL string
	country string
	metrics *instrumentation.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithCountry sets the country code appended to ZIP lookups.
func WithCountry(country string) Option {
	return func(c *Client) {
		if country != "" {
			c.country = country
		}
	}
}

// WithMetrics records each API call.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a Client that authenticates with apiKey.
func NewClient(api *apiclient.Client, apiKey string, opts ...Option) *Client {
	c := &Client{
		api:     api,
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		country: DefaultCountry,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Geocode resolves a ZIP code to coordinates.
func (c *Client) Geocode(ctx context.Context, zipcode string) (*Coordinates, error) {
	zipcode = strings.TrimSpace(zipcode)
	if zipcode == "" {
		return nil, fmt.Errorf("zipcode cannot be empty")
	}

	q := url.Values{}
	q.Set("zip", zipcode+","+c.country)
	q.Set("appid", c.apiKey)

	var resp geocodeResponse
	if err := c.get(ctx, "geocode", "/geo/1.0/zip", q, &resp); err != nil {
		return nil, err
	}
	if resp.Lat == nil || resp.Lon == nil {
		return nil, &MissingFieldError{Field: "lat/lon"}
	}

	return &Coordinates{
		Zip:     zipcode,
		Name:    resp.Name,
		Lat:     *resp.Lat,
		Lon:     *resp.Lon,
		Country: resp.Country,
	}, nil
}

// Current returns the current conditions at coords.
func (c *Client) Current(ctx context.Context, coords Coordinates) (*Conditions, error) {
	q := c.coordQuery(coords)
	q.Set("units", "standard")

	var resp weatherResponse
	if err := c.get(ctx, "current", "/data/2.5/weather", q, &resp); err != nil {
		return nil, err
	}
	if resp.Cod != 0 && resp.Cod != 200 {
		return nil, &APIError{Code: int(resp.Cod), Message: resp.Message}
	}

	switch {
	case len(resp.Weather) == 0:
		return nil, &MissingFieldError{Field: "weather"}
	case resp.Main == nil || resp.Main.Temp == nil:
		return nil, &MissingFieldError{Field: "main.temp"}
	case resp.Main.Humidity == nil:
		return nil, &MissingFieldError{Field: "main.humidity"}
	case resp.Wind == nil || resp.Wind.Speed == nil:
		return nil, &MissingFieldError{Field: "wind.speed"}
	}

	name := resp.Name
	if name == "" {
		name = coords.Name
	}
	return &Conditions{
		Name:        name,
		Description: resp.Weather[0].Description,
		Kelvin:      *resp.Main.Temp,
		Humidity:    *resp.Main.Humidity,
		WindSpeed:   *resp.Wind.Speed,
	}, nil
}

// Forecast returns up to days daily forecasts for coords, starting today.
// days is clamped to [1, MaxForecastDays].
func (c *Client) Forecast(ctx context.Context, coords Coordinates, days int) ([]DailyForecast, error) {
	days = max(1, min(days, MaxForecastDays))

	q := c.coordQuery(coords)
	q.Set("exclude", "current,minutely,hourly,alerts")
	q.Set("units", "metric")

	var resp oneCallResponse
	if err := c.get(ctx, "forecast", "/data/3.0/onecall", q, &resp); err != nil {
		return nil, err
	}
	if resp.Cod != 0 && resp.Cod != 200 {
		return nil, &APIError{Code: int(resp.Cod), Message: resp.message()}
	}
	if len(resp.Daily) == 0 {
		return nil, &MissingFieldError{Field: "daily"}
	}

	loc := time.FixedZone("", resp.TimezoneOffset)
	forecasts := make([]DailyForecast, 0, days)
	for _, d := range resp.Daily[:min(days, len(resp.Daily))] {
		f := DailyForecast{
			Date:      time.Unix(d.Dt, 0).In(loc),
			Summary:   d.Summary,
			MinC:      d.Temp.Min,
			MaxC:      d.Temp.Max,
			Humidity:  d.Humidity,
			WindSpeed: d.WindSpeed,
			Pop:       d.Pop,
		}
		if len(d.Weather) > 0 {
			f.Description = d.Weather[0].Description
		}
		forecasts = append(forecasts, f)
	}
	return forecasts, nil
}

func (c *Client) coordQuery(coords Coordinates) url.Values {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(coords.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(coords.Lon, 'f', -1, 64))
	q.Set("appid", c.apiKey)
	return q
}

func (c *Client) get(ctx context.Context, operation, path string, q url.Values, out any) error {
	ctx, span := instrumentation.StartProviderSpan(ctx, instrumentation.ProviderOpenWeatherMap, operation)
	defer span.End()
	start := time.Now()

	err := c.api.GetJSON(ctx, c.baseURL+path+"?"+q.Encode(), out)
	if err != nil {
		c.metrics.RecordProviderRequest(ctx, instrumentation.ProviderOpenWeatherMap, operation, instrumentation.StatusError, time.Since(start))
		instrumentation.SetSpanError(span, err)
		return err
	}
	c.metrics.RecordProviderRequest(ctx, instrumentation.ProviderOpenWeatherMap, operation, instrumentation.StatusSuccess, time.Since(start))
	instrumentation.SetSpanSuccess(span)
	return nil
}
