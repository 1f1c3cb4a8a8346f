package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	EnvWeatherAPIKey, EnvWeatherBaseURL, EnvWeatherCountry,
	EnvIPifyURL, EnvGeoIPifyURL, EnvGeoIPifyAPIKey,
	EnvGoogleClientID, EnvGoogleClientSecret, EnvGoogleCredsJSON, EnvGoogleCredsFile,
	EnvGoogleTokenFile, EnvGoogleRedirectURL, EnvGoogleGrantMode, EnvGoogleGrantTimeout,
	EnvCredentialStore, EnvRedisAddr, EnvRedisPassword, EnvRedisDB, EnvRedisKeyPrefix,
	EnvHTTPTimeout, EnvLogLevel, EnvLogFormat,
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := FromEnv()

	assert.Equal(t, PlaceholderWeatherAPIKey, cfg.Weather.APIKey)
	assert.Equal(t, DefaultWeatherBaseURL, cfg.Weather.BaseURL)
	assert.Equal(t, "US", cfg.Weather.Country)
	assert.Equal(t, PlaceholderGoogleClientID, cfg.Google.ClientID)
	assert.Equal(t, PlaceholderGoogleClientSecret, cfg.Google.ClientSecret)
	assert.Equal(t, "token.json", cfg.Google.TokenFile)
	assert.Equal(t, DefaultRedirectURL, cfg.Google.RedirectURL)
	assert.Equal(t, GrantModeLocal, cfg.Google.GrantMode)
	assert.Equal(t, 5*time.Minute, cfg.Google.GrantTimeout)
	assert.Equal(t, StoreFile, cfg.Store.Driver)
	assert.Equal(t, DefaultRedisKeyPrefix, cfg.Store.RedisKeyPrefix)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvWeatherAPIKey, "real-key")
	t.Setenv(EnvWeatherCountry, "DE")
	t.Setenv(EnvCredentialStore, StoreRedis)
	t.Setenv(EnvRedisAddr, "localhost:6379")
	t.Setenv(EnvRedisDB, "3")
	t.Setenv(EnvGoogleGrantTimeout, "30s")
	t.Setenv(EnvHTTPTimeout, "not-a-duration")

	cfg := FromEnv()

	assert.Equal(t, "real-key", cfg.Weather.APIKey)
	assert.Equal(t, "DE", cfg.Weather.Country)
	assert.Equal(t, StoreRedis, cfg.Store.Driver)
	assert.Equal(t, 3, cfg.Store.RedisDB)
	assert.Equal(t, 30*time.Second, cfg.Google.GrantTimeout)
	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout, "invalid values fall back to the default")

	err := cfg.Validate()
	require.Error(t, err, "invalid values are reported")
	assert.Contains(t, err.Error(), EnvHTTPTimeout)
}

func TestValidate_MalformedEnvValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "grant timeout with words", key: EnvGoogleGrantTimeout, value: "5 minutes"},
		{name: "http timeout without unit", key: EnvHTTPTimeout, value: "15"},
		{name: "redis db not a number", key: EnvRedisDB, value: "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			err := FromEnv().Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
			assert.Contains(t, err.Error(), tt.value)

			_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err, "Load refuses the configuration")
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"prompt mode ignores redirect", func(c *Config) {
			c.Google.GrantMode = GrantModePrompt
			c.Google.RedirectURL = ""
		}, false},
		{"unknown grant mode", func(c *Config) { c.Google.GrantMode = "device" }, true},
		{"redirect without host", func(c *Config) { c.Google.RedirectURL = "/callback" }, true},
		{"zero grant timeout", func(c *Config) { c.Google.GrantTimeout = 0 }, true},
		{"redis without address", func(c *Config) { c.Store.Driver = StoreRedis }, true},
		{"unknown store", func(c *Config) { c.Store.Driver = "s3" }, true},
		{"empty token file", func(c *Config) { c.Google.TokenFile = "" }, true},
		{"zero http timeout", func(c *Config) { c.HTTPTimeout = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cfg := FromEnv()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPlaceholders(t *testing.T) {
	clearEnv(t)
	cfg := FromEnv()
	assert.Equal(t, []string{EnvWeatherAPIKey, EnvGoogleClientID, EnvGoogleClientSecret}, cfg.Placeholders())
	assert.False(t, cfg.WeatherConfigured())
	assert.False(t, cfg.GoogleConfigured())

	cfg.Weather.APIKey = "k"
	cfg.Google.CredentialsJSON = `{"installed":{}}`
	assert.Empty(t, cfg.Placeholders())
	assert.True(t, cfg.WeatherConfigured())
	assert.True(t, cfg.GoogleConfigured())
}

func TestGoogleClientJSON(t *testing.T) {
	clearEnv(t)
	cfg := FromEnv()

	data, err := cfg.GoogleClientJSON()
	require.NoError(t, err)
	assert.Nil(t, data)

	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"web":{}}`), 0o600))
	cfg.Google.CredentialsFile = path
	data, err = cfg.GoogleClientJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"web":{}}`, string(data))

	cfg.Google.CredentialsJSON = `{"installed":{}}`
	data, err = cfg.GoogleClientJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"installed":{}}`, string(data))

	cfg.Google.CredentialsJSON = ""
	cfg.Google.CredentialsFile = filepath.Join(t.TempDir(), "missing.json")
	_, err = cfg.GoogleClientJSON()
	assert.Error(t, err)
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv(EnvWeatherCountry)
	t.Cleanup(func() { os.Unsetenv(EnvWeatherCountry) })

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("WEATHER_COUNTRY=CA\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "CA", cfg.Weather.Country)
}

func TestLoad_MissingDotEnvIsIgnored(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}

func TestMissingError(t *testing.T) {
	err := MissingError(EnvWeatherAPIKey)
	assert.True(t, errors.Is(err, ErrMissingConfig))
	assert.Contains(t, err.Error(), EnvWeatherAPIKey)
}
