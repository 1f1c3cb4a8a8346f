package weather

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// absoluteZero is 0 K in degrees Celsius.
const absoluteZero = 273.15

// Coordinates is the result of a ZIP geocode lookup.
type Coordinates struct {
	Zip     string  `json:"zip"`
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
}

// String formats the coordinates the way progress notifications show them.
func (c Coordinates) String() string {
	return fmt.Sprintf("LAT: %g, LONG: %g", c.Lat, c.Lon)
}

// Conditions are the current weather conditions at a location. Temperature
// is kept in Kelvin as the API returns it with units=standard.
type Conditions struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Kelvin      float64 `json:"temp_kelvin"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
}

// Celsius returns the temperature in degrees Celsius.
func (c Conditions) Celsius() float64 {
	return c.Kelvin - absoluteZero
}

// Fahrenheit returns the temperature in degrees Fahrenheit.
func (c Conditions) Fahrenheit() float64 {
	return c.Celsius()*9/5 + 32
}

// DailyForecast is one day of the One Call daily forecast, in metric units.
type DailyForecast struct {
	Date        time.Time `json:"date"`
	Summary     string    `json:"summary,omitempty"`
	Description string    `json:"description"`
	MinC        float64   `json:"min_c"`
	MaxC        float64   `json:"max_c"`
	Humidity    int       `json:"humidity"`
	WindSpeed   float64   `json:"wind_speed"`
	// Pop is the probability of precipitation, 0 to 1.
	Pop float64 `json:"pop"`
}

// Code is the API's "cod" field, which is a number on success and a string
// on some error bodies.
type Code int

// UnmarshalJSON accepts both 200 and "200".
func (c *Code) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*c = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid cod %s: %w", data, err)
	}
	*c = Code(n)
	return nil
}

// APIError is a 2xx response whose body reports a failure.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API returned cod %d", e.Code)
	}
	return fmt.Sprintf("API returned cod %d: %s", e.Code, e.Message)
}

// MissingFieldError reports a response that lacks a field the tools need.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("response is missing %s", e.Field)
}

type geocodeResponse struct {
	Zip     string   `json:"zip"`
	Name    string   `json:"name"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
	Country string   `json:"country"`
}

type weatherResponse struct {
	Cod     Code   `json:"cod"`
	Message string `json:"message"`
	Name    string `json:"name"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main *struct {
		Temp     *float64 `json:"temp"`
		Humidity *int     `json:"humidity"`
	} `json:"main"`
	Wind *struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
}

type oneCallResponse struct {
	// One Call only sets cod on error bodies.
	Cod            Code            `json:"cod"`
	Message        json.RawMessage `json:"message"`
	TimezoneOffset int             `json:"timezone_offset"`
	Daily          []struct {
		Dt      int64  `json:"dt"`
		Summary string `json:"summary"`
		Temp    struct {
			Min float64 `json:"min"`
			Max float64 `json:"max"`
		} `json:"temp"`
		Humidity  int     `json:"humidity"`
		WindSpeed float64 `json:"wind_speed"`
		Pop       float64 `json:"pop"`
		Weather   []struct {
			Description string `json:"description"`
		} `json:"weather"`
	} `json:"daily"`
}

func (r *oneCallResponse) message() string {
	if len(r.Message) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(r.Message, &s); err == nil {
		return s
	}
	return string(r.Message)
}
