package server

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/chattools/internal/config"
	"github.com/teemow/chattools/internal/google"
	"github.com/teemow/chattools/internal/toolkit"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
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
}

func TestNewServerContext_NilConfig(t *testing.T) {
	_, err := NewServerContext(context.Background(), nil)
	require.Error(t, err)
}

func TestNewServerContext_Placeholders(t *testing.T) {
	cfg := testConfig(t)

	sc, err := NewServerContext(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	assert.Len(t, sc.Toolkit().Definitions(), 6)
	assert.Empty(t, sc.AuthRequest().ClientConfig)
	assert.Equal(t, cfg.Google.TokenFile, sc.CredentialStore().Location())

	res, err := sc.Toolkit().Invoke(context.Background(), toolkit.ToolCurrentWeather, toolkit.Call{
		Args: map[string]any{"zipcode": "98012"},
	})
	require.NoError(t, err)
	assert.True(t, res.Failed)
	assert.Contains(t, res.Text, config.EnvWeatherAPIKey)

	res, err = sc.Toolkit().Invoke(context.Background(), toolkit.ToolUpcomingEvents, toolkit.Call{})
	require.NoError(t, err)
	assert.True(t, res.Failed)
	assert.Contains(t, res.Text, config.EnvGoogleClientID)
}

func TestNewServerContext_GoogleConfigured(t *testing.T) {
	cfg := testConfig(t)
	cfg.Google.ClientID = "client-id"
	cfg.Google.ClientSecret = "client-secret"

	sc, err := NewServerContext(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	req := sc.AuthRequest()
	assert.Equal(t, google.CalendarScopes, req.Scopes)
	assert.Equal(t, cfg.Google.RedirectURL, req.RedirectURL)

	conf, err := req.OAuthConfig()
	require.NoError(t, err)
	assert.Equal(t, "client-id", conf.ClientID)
}

func TestNewServerContext_RedisStore(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig(t)
	cfg.Store = config.StoreConfig{
		Driver:         config.StoreRedis,
		RedisAddr:      mr.Addr(),
		RedisKeyPrefix: config.DefaultRedisKeyPrefix,
	}

	sc, err := NewServerContext(context.Background(), cfg)
	require.NoError(t, err)

	_, isRedis := sc.CredentialStore().(*google.RedisStore)
	assert.True(t, isRedis)
	require.NoError(t, sc.Shutdown())
}

func TestNewGranter(t *testing.T) {
	cfg := testConfig(t)

	_, isLocal := NewGranter(cfg, nil, nil).(*google.LocalServerGranter)
	assert.True(t, isLocal)

	cfg.Google.GrantMode = config.GrantModePrompt
	_, isPrompt := NewGranter(cfg, nil, nil).(google.PromptGranter)
	assert.True(t, isPrompt)
}

func TestServerContext_Shutdown(t *testing.T) {
	sc, err := NewServerContext(context.Background(), testConfig(t))
	require.NoError(t, err)

	assert.False(t, sc.IsShutdown())
	require.NoError(t, sc.Shutdown())
	assert.True(t, sc.IsShutdown())
	assert.Error(t, sc.Context().Err())

	// second call is a no-op
	require.NoError(t, sc.Shutdown())
}
