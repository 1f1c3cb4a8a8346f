package toolkit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/teemow/chattools/internal/events"
	"github.com/teemow/chattools/internal/instrumentation"
	"github.com/teemow/chattools/internal/weather"
)

// Tool names.
const (
	ToolCurrentTime         = "current_time"
	ToolCurrentWeather      = "current_weather"
	ToolWeatherForecast     = "weather_forecast"
	ToolPublicIPGeolocation = "public_ip_geolocation"
	ToolUpcomingEvents      = "list_upcoming_calendar_events"
	ToolDescribeUser        = "describe_user"
)

// ErrUnknownTool is returned by Invoke for names not in the registry.
var ErrUnknownTool = errors.New("unknown tool")

// ParamType is the JSON schema type of a tool parameter.
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamInteger ParamType = "integer"
)

// Param describes one tool argument.
type Param struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type"`
	Description string    `json:"description"`
	Required    bool      `json:"required"`
}

// User is the caller identity forwarded by the host, if any.
type User struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Call carries everything a single invocation needs from its transport.
// Sink, Prompter and User may be nil.
type Call struct {
	Args     map[string]any
	Sink     events.NotificationSink
	Prompter events.PromptSink
	User     *User
}

// Definition is a registered tool.
type Definition struct {
	Name        string
	Description string
	Params      []Param
	// Provider is the upstream API the tool calls, for instrumentation.
	// Empty for tools that make no external calls.
	Provider string
	Run      func(ctx context.Context, call Call) Result
}

// Definitions returns every tool in a stable order.
func (t *Toolkit) Definitions() []Definition {
	zipParam := Param{
		Name:        "zipcode",
		Type:        ParamString,
		Description: "ZIP code to look up, e.g. 98012. The user is asked when omitted.",
	}

	return []Definition{
		{
			Name:        ToolCurrentTime,
			Description: "Get the current local date and time in a human-readable format.",
			Run: func(ctx context.Context, call Call) Result {
				return t.CurrentTime(ctx, t.emitter(call.Sink))
			},
		},
		{
			Name:        ToolCurrentWeather,
			Description: "Get the current weather for a ZIP code.",
			Params:      []Param{zipParam},
			Provider:    instrumentation.ProviderOpenWeatherMap,
			Run: func(ctx context.Context, call Call) Result {
				return t.CurrentWeather(ctx, t.emitter(call.Sink), call.Prompter, StringArg(call.Args, "zipcode"))
			},
		},
		{
			Name:        ToolWeatherForecast,
			Description: fmt.Sprintf("Get the daily weather forecast for a ZIP code, up to %d days.", weather.MaxForecastDays),
			Params: []Param{
				zipParam,
				{
					Name:        "days",
					Type:        ParamInteger,
					Description: fmt.Sprintf("Number of days to forecast, 1 to %d (default %d).", weather.MaxForecastDays, weather.MaxForecastDays),
				},
			},
			Provider: instrumentation.ProviderOpenWeatherMap,
			Run: func(ctx context.Context, call Call) Result {
				days := IntArg(call.Args, "days", weather.MaxForecastDays)
				return t.WeatherForecast(ctx, t.emitter(call.Sink), call.Prompter, StringArg(call.Args, "zipcode"), days)
			},
		},
		{
			Name:        ToolPublicIPGeolocation,
			Description: "Get the public IP address of this host and its geolocation.",
			Provider:    instrumentation.ProviderIPify,
			Run: func(ctx context.Context, call Call) Result {
				return t.PublicIPGeolocation(ctx, t.emitter(call.Sink))
			},
		},
		{
			Name:        ToolUpcomingEvents,
			Description: "List the next 10 upcoming events on the user's primary Google Calendar.",
			Provider:    instrumentation.ProviderGoogleCalendar,
			Run: func(ctx context.Context, call Call) Result {
				return t.ListUpcomingCalendarEvents(ctx, t.emitter(call.Sink), call.Prompter)
			},
		},
		{
			Name:        ToolDescribeUser,
			Description: "Get the name, email and ID of the user talking to the assistant.",
			Run: func(ctx context.Context, call Call) Result {
				return t.DescribeUser(ctx, t.emitter(call.Sink), call.User)
			},
		},
	}
}

// Lookup returns the tool named name.
func (t *Toolkit) Lookup(name string) (Definition, bool) {
	for _, def := range t.Definitions() {
		if def.Name == name {
			return def, true
		}
	}
	return Definition{}, false
}

// Invoke runs the tool named name.
func (t *Toolkit) Invoke(ctx context.Context, name string, call Call) (Result, error) {
	def, ok := t.Lookup(name)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return def.Run(ctx, call), nil
}

// StringArg returns args[key] as a trimmed string, or "" when absent.
// Numbers are formatted, so a ZIP code sent as 98012 still works.
func StringArg(args map[string]any, key string) string {
	switch v := args[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return ""
}

// IntArg returns args[key] as an int, or def when absent or malformed.
func IntArg(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		if v == math.Trunc(v) {
			return int(v)
		}
	case int:
		return v
	case int64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}
