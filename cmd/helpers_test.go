package cmd

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/chattools/internal/config"
)

// useTestConfig installs a placeholder configuration with a temporary token
// file for the duration of the test.
func useTestConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{
		Weather: config.WeatherConfig{
			APIKey:  config.PlaceholderWeatherAPIKey,
			BaseURL: config.DefaultWeatherBaseURL,
			Country: config.DefaultWeatherCountry,
		},
		GeoIP: config.GeoIPConfig{
			IPURL:  config.DefaultIPifyURL,
			GeoURL: config.DefaultGeoIPifyURL,
		},
		Google: config.GoogleConfig{
			ClientID:     config.PlaceholderGoogleClientID,
			ClientSecret: config.PlaceholderGoogleClientSecret,
			TokenFile:    filepath.Join(t.TempDir(), "token.json"),
			RedirectURL:  config.DefaultRedirectURL,
			GrantMode:    config.GrantModeLocal,
			GrantTimeout: time.Minute,
		},
		Store:       config.StoreConfig{Driver: config.StoreFile},
		HTTPTimeout: 5 * time.Second,
	}

	saved := appConfig
	appConfig = cfg
	t.Cleanup(func() { appConfig = saved })
	return cfg
}

func newTestCommand(stdin string) (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(bytes.NewBufferString(stdin))
	return cmd, out
}
