// Package geoip looks up the host's public IP address (ipify) and its
// geolocation (geo.ipify).
package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/teemow/chattools/internal/apiclient"
	"github.com/teemow/chattools/internal/instrumentation"
)

const (
	DefaultIPURL  = "https://api.ipify.org?format=json"
	DefaultGeoURL = "https://geo.ipify.org/api/v2/country,city"
)

// Location is a geolocation record for an IP address.
type Location struct {
	IP         string  `json:"ip"`
	Country    string  `json:"country,omitempty"`
	Region     string  `json:"region,omitempty"`
	City       string  `json:"city,omitempty"`
	Lat        float64 `json:"lat,omitempty"`
	Lng        float64 `json:"lng,omitempty"`
	PostalCode string  `json:"postal_code,omitempty"`
	Timezone   string  `json:"timezone,omitempty"`
	ISP        string  `json:"isp,omitempty"`

	// Raw is the provider response as returned.
	Raw map[string]any `json:"-"`
}

// Place returns "City, Region, Country" with empty parts left out.
func (l Location) Place() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{l.City, l.Region, l.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

type geoResponse struct {
	IP       string `json:"ip"`
	ISP      string `json:"isp"`
	Location struct {
		Country    string  `json:"country"`
		Region     string  `json:"region"`
		City       string  `json:"city"`
		Lat        float64 `json:"lat"`
		Lng        float64 `json:"lng"`
		PostalCode string  `json:"postalCode"`
		Timezone   string  `json:"timezone"`
	} `json:"location"`
}

// Client performs the two lookups.
type Client struct {
	api       *apiclient.Client
	ipURL     string
	geoURL    string
	geoAPIKey string
	metrics   *instrumentation.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithIPURL overrides the public IP endpoint.
func WithIPURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.ipURL = u
		}
	}
}

// WithGeoURL overrides the geolocation endpoint.
func WithGeoURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.geoURL = u
		}
	}
}

// WithGeoAPIKey sets the geo.ipify API key.
func WithGeoAPIKey(key string) Option {
	return func(c *Client) { c.geoAPIKey = key }
}

// WithMetrics records each API call.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a Client.
func NewClient(api *apiclient.Client, opts ...Option) *Client {
	c := &Client{
		api:    api,
		ipURL:  DefaultIPURL,
		geoURL: DefaultGeoURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PublicIP returns the caller's public IP address.
func (c *Client) PublicIP(ctx context.Context) (string, error) {
	var resp struct {
		IP string `json:"ip"`
	}
	if err := c.get(ctx, "public_ip", c.ipURL, &resp); err != nil {
		return "", err
	}
	if resp.IP == "" {
		return "", fmt.Errorf("public IP response has no ip field")
	}
	return resp.IP, nil
}

// Lookup geolocates ip.
func (c *Client) Lookup(ctx context.Context, ip string) (*Location, error) {
	u, err := url.Parse(c.geoURL)
	if err != nil {
		return nil, fmt.Errorf("invalid geolocation URL: %w", err)
	}
	q := u.Query()
	q.Set("ipAddress", ip)
	if c.geoAPIKey != "" {
		q.Set("apiKey", c.geoAPIKey)
	}
	u.RawQuery = q.Encode()

	var raw json.RawMessage
	if err := c.get(ctx, "geolocate", u.String(), &raw); err != nil {
		return nil, err
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode geolocation: %w", err)
	}
	var resp geoResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode geolocation: %w", err)
	}
	loc := &Location{
		IP:         resp.IP,
		Country:    resp.Location.Country,
		Region:     resp.Location.Region,
		City:       resp.Location.City,
		Lat:        resp.Location.Lat,
		Lng:        resp.Location.Lng,
		PostalCode: resp.Location.PostalCode,
		Timezone:   resp.Location.Timezone,
		ISP:        resp.ISP,
		Raw:        fields,
	}
	if loc.IP == "" {
		loc.IP = ip
	}
	return loc, nil
}

// Locate resolves the public IP and geolocates it.
func (c *Client) Locate(ctx context.Context) (*Location, error) {
	ip, err := c.PublicIP(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get public IP: %w", err)
	}
	loc, err := c.Lookup(ctx, ip)
	if err != nil {
		return nil, fmt.Errorf("failed to geolocate %s: %w", ip, err)
	}
	return loc, nil
}

func (c *Client) get(ctx context.Context, operation, rawURL string, out any) error {
	ctx, span := instrumentation.StartProviderSpan(ctx, instrumentation.ProviderIPify, operation)
	defer span.End()
	start := time.Now()

	if err := c.api.GetJSON(ctx, rawURL, out); err != nil {
		c.metrics.RecordProviderRequest(ctx, instrumentation.ProviderIPify, operation, instrumentation.StatusError, time.Since(start))
		instrumentation.SetSpanError(span, err)
		return err
	}
	c.metrics.RecordProviderRequest(ctx, instrumentation.ProviderIPify, operation, instrumentation.StatusSuccess, time.Since(start))
	instrumentation.SetSpanSuccess(span)
	return nil
}
