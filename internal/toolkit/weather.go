package toolkit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/teemow/chattools/internal/config"
	"github.com/teemow/chattools/internal/events"
	"github.com/teemow/chattools/internal/logging"
	"github.com/teemow/chattools/internal/weather"
)

var zipcodeRequest = events.InputRequest{
	Type:        events.RequestInput,
	Title:       "Zipcode",
	Message:     "Please enter the Zipcode (e.g., 98012)",
	Placeholder: "98012",
}

// CurrentWeather reports the current conditions for zipcode. When zipcode
// is empty the user is asked for one through prompt.
func (t *Toolkit) CurrentWeather(ctx context.Context, em *events.Emitter, prompt events.PromptSink, zipcode string) Result {
	const errPrefix = "Error fetching weather data: "

	if t.weather == nil {
		return failure(ctx, em, errPrefix+config.MissingError(config.EnvWeatherAPIKey).Error(), nil)
	}

	coords, res, ok := t.locateZipcode(ctx, em, prompt, zipcode)
	if !ok {
		return res
	}

	em.Progress(ctx, "Fetching weather data for coordinates: "+coords.String())
	cond, err := t.weather.Current(ctx, *coords)
	if err != nil {
		t.logger.WarnContext(ctx, "weather lookup failed", logging.Location(coords.Zip), logging.Err(err))
		return failure(ctx, em, errPrefix+err.Error(), nil)
	}

	text := fmt.Sprintf("Weather in %s: %s, Temp: %.1f°C (%.1f°F), Humidity: %d%%, Wind Speed: %g m/s",
		placeLabel(coords), cond.Description, cond.Celsius(), cond.Fahrenheit(), cond.Humidity, cond.WindSpeed)
	em.Success(ctx, fmt.Sprintf("Found weather data for %s: %s", coords.Zip, cond.Description), cond)
	return success(text, cond)
}

// WeatherForecast reports up to days daily forecasts for zipcode.
func (t *Toolkit) WeatherForecast(ctx context.Context, em *events.Emitter, prompt events.PromptSink, zipcode string, days int) Result {
	const errPrefix = "Error fetching weather forecast: "

	if t.weather == nil {
		return failure(ctx, em, errPrefix+config.MissingError(config.EnvWeatherAPIKey).Error(), nil)
	}

	coords, res, ok := t.locateZipcode(ctx, em, prompt, zipcode)
	if !ok {
		return res
	}

	em.Progress(ctx, "Fetching weather forecast for coordinates: "+coords.String())
	forecast, err := t.weather.Forecast(ctx, *coords, days)
	if err != nil {
		t.logger.WarnContext(ctx, "forecast lookup failed", logging.Location(coords.Zip), logging.Err(err))
		return failure(ctx, em, errPrefix+err.Error(), nil)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Weather forecast for %s:", placeLabel(coords))
	for _, day := range forecast {
		fmt.Fprintf(&b, "\n- %s: %s, %.1f°C to %.1f°C, Humidity: %d%%, Wind Speed: %g m/s, Precipitation: %.0f%%",
			day.Date.Format("Mon, Jan 02"), day.Description, day.MinC, day.MaxC, day.Humidity, day.WindSpeed, day.Pop*100)
	}
	em.Success(ctx, fmt.Sprintf("Weather forecast fetched for %s", coords.Zip), forecast)
	return success(b.String(), forecast)
}

// locateZipcode resolves the zipcode (asking for it when empty) and
// geocodes it. On failure it returns the Result to hand back.
func (t *Toolkit) locateZipcode(ctx context.Context, em *events.Emitter, prompt events.PromptSink, zipcode string) (*weather.Coordinates, Result, bool) {
	const errPrefix = "Error retrieving coordinates: "

	zipcode, err := t.resolveZipcode(ctx, prompt, zipcode)
	if err != nil {
		return nil, failure(ctx, em, errPrefix+err.Error(), nil), false
	}

	em.Progress(ctx, "Fetching geocoordinates for "+zipcode)
	coords, err := t.weather.Geocode(ctx, zipcode)
	if err != nil {
		t.logger.WarnContext(ctx, "geocode failed", logging.Location(zipcode), logging.Err(err))
		return nil, failure(ctx, em, errPrefix+err.Error(), nil), false
	}
	em.Progress(ctx, "Found Geolocation coordinates "+coords.String())
	return coords, Result{}, true
}

func (t *Toolkit) resolveZipcode(ctx context.Context, prompt events.PromptSink, zipcode string) (string, error) {
	if zipcode = strings.TrimSpace(zipcode); zipcode != "" {
		return zipcode, nil
	}
	if prompt == nil {
		return "", fmt.Errorf("no zipcode given: %w", events.ErrNoPrompter)
	}

	answer, err := prompt.Prompt(ctx, zipcodeRequest)
	if err != nil {
		return "", fmt.Errorf("failed to ask for a zipcode: %w", err)
	}
	if answer = strings.TrimSpace(answer); answer == "" {
		return "", errors.New("no zipcode given")
	}
	t.logger.DebugContext(ctx, "zipcode from prompt", slog.String("zipcode", answer))
	return answer, nil
}

func placeLabel(c *weather.Coordinates) string {
	if c.Name == "" {
		return c.Zip
	}
	return fmt.Sprintf("%s (%s)", c.Zip, c.Name)
}
