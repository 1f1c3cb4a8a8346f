package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Placeholder values used when a credential is not configured.
const (
	PlaceholderWeatherAPIKey      = "NOTMYKEY"
	PlaceholderGoogleClientID     = "NOTAKEY"
	PlaceholderGoogleClientSecret = "NOTASECRET"
)

// Environment variable names.
const (
	EnvWeatherAPIKey      = "OPENWEATHERMAP_API_KEY"
	EnvWeatherBaseURL     = "OPENWEATHERMAP_BASE_URL"
	EnvWeatherCountry     = "WEATHER_COUNTRY"
	EnvIPifyURL           = "IPIFY_URL"
	EnvGeoIPifyURL        = "GEO_IPIFY_URL"
	EnvGeoIPifyAPIKey     = "GEO_IPIFY_API_KEY"
	EnvGoogleClientID     = "GOOGLE_CLIENT_ID"
	EnvGoogleClientSecret = "GOOGLE_CLIENT_SECRET"
	EnvGoogleCredsJSON    = "GOOGLE_CREDENTIALS_JSON"
	EnvGoogleCredsFile    = "GOOGLE_CREDENTIALS_FILE"
	EnvGoogleTokenFile    = "GOOGLE_TOKEN_FILE"
	EnvGoogleRedirectURL  = "GOOGLE_REDIRECT_URL"
	EnvGoogleGrantMode    = "GOOGLE_GRANT_MODE"
	EnvGoogleGrantTimeout = "GOOGLE_GRANT_TIMEOUT"
	EnvCredentialStore    = "CREDENTIAL_STORE"
	EnvRedisAddr          = "REDIS_ADDR"
	EnvRedisPassword      = "REDIS_PASSWORD"
	EnvRedisDB            = "REDIS_DB"
	EnvRedisKeyPrefix     = "REDIS_KEY_PREFIX"
	EnvHTTPTimeout        = "HTTP_TIMEOUT"
	EnvLogLevel           = "LOG_LEVEL"
	EnvLogFormat          = "LOG_FORMAT"
)

// Defaults.
const (
	DefaultWeatherBaseURL = "https://api.openweathermap.org"
	DefaultWeatherCountry = "US"
	DefaultIPifyURL       = "https://api.ipify.org?format=json"
	DefaultGeoIPifyURL    = "https://geo.ipify.org/api/v2/country,city"
	DefaultTokenFile      = "token.json"
	DefaultRedirectURL    = "http://localhost:8085/oauth/google/callback/"
	DefaultGrantTimeout   = 5 * time.Minute
	DefaultHTTPTimeout    = 15 * time.Second
	DefaultRedisKeyPrefix = "chattools:token:"
)

// Grant modes.
const (
	GrantModeLocal  = "local"
	GrantModePrompt = "prompt"
)

// Credential store drivers.
const (
	StoreFile  = "file"
	StoreRedis = "redis"
)

// ErrMissingConfig is returned when an operation needs a configuration value
// that is unset or still holds its placeholder.
var ErrMissingConfig = errors.New("missing configuration")

// MissingError returns ErrMissingConfig annotated with the key name.
func MissingError(key string) error {
	return fmt.Errorf("%w: %s is not set", ErrMissingConfig, key)
}

// Config holds all runtime settings.
type Config struct {
	Weather WeatherConfig
	GeoIP   GeoIPConfig
	Google  GoogleConfig
	Store   StoreConfig

	// HTTPTimeout bounds every outbound provider request.
	HTTPTimeout time.Duration

	LogLevel  string
	LogFormat string

	// envErrors holds environment values that did not parse.
	envErrors []error
}

// WeatherConfig configures the OpenWeatherMap client.
type WeatherConfig struct {
	APIKey  string
	BaseURL string
	// Country is appended to ZIP codes for the geocoding lookup.
	Country string
}

// GeoIPConfig configures the public IP and geolocation lookups.
type GeoIPConfig struct {
	IPURL     string
	GeoURL    string
	GeoAPIKey string
}

// GoogleConfig configures the Google OAuth client.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	// CredentialsJSON is a credentials.json document. It takes priority over
	// CredentialsFile, which in turn takes priority over ClientID/ClientSecret.
	CredentialsJSON string
	CredentialsFile string
	TokenFile       string
	RedirectURL     string
	GrantMode       string
	GrantTimeout    time.Duration
}

// StoreConfig selects the credential store backend.
type StoreConfig struct {
	Driver         string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string
}

// Load reads .env files (the working directory's .env when none are given)
// and returns the configuration from the resulting environment.
// Missing .env files are not an error.
func Load(dotenvFiles ...string) (*Config, error) {
	if err := godotenv.Load(dotenvFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds a Config from environment variables and defaults.
// Unparsable numeric or duration values fall back to their default and are
// reported by Validate.
func FromEnv() *Config {
	var envErrs []error
	cfg := &Config{
		Weather: WeatherConfig{
			APIKey:  getEnvOrDefault(EnvWeatherAPIKey, PlaceholderWeatherAPIKey),
			BaseURL: getEnvOrDefault(EnvWeatherBaseURL, DefaultWeatherBaseURL),
			Country: getEnvOrDefault(EnvWeatherCountry, DefaultWeatherCountry),
		},
		GeoIP: GeoIPConfig{
			IPURL:     getEnvOrDefault(EnvIPifyURL, DefaultIPifyURL),
			GeoURL:    getEnvOrDefault(EnvGeoIPifyURL, DefaultGeoIPifyURL),
			GeoAPIKey: os.Getenv(EnvGeoIPifyAPIKey),
		},
		Google: GoogleConfig{
			ClientID:        getEnvOrDefault(EnvGoogleClientID, PlaceholderGoogleClientID),
			ClientSecret:    getEnvOrDefault(EnvGoogleClientSecret, PlaceholderGoogleClientSecret),
			CredentialsJSON: os.Getenv(EnvGoogleCredsJSON),
			CredentialsFile: os.Getenv(EnvGoogleCredsFile),
			TokenFile:       getEnvOrDefault(EnvGoogleTokenFile, DefaultTokenFile),
			RedirectURL:     getEnvOrDefault(EnvGoogleRedirectURL, DefaultRedirectURL),
			GrantMode:       getEnvOrDefault(EnvGoogleGrantMode, GrantModeLocal),
			GrantTimeout:    getEnvDurationOrDefault(EnvGoogleGrantTimeout, DefaultGrantTimeout, &envErrs),
		},
		Store: StoreConfig{
			Driver:         getEnvOrDefault(EnvCredentialStore, StoreFile),
			RedisAddr:      os.Getenv(EnvRedisAddr),
			RedisPassword:  os.Getenv(EnvRedisPassword),
			RedisDB:        getEnvIntOrDefault(EnvRedisDB, 0, &envErrs),
			RedisKeyPrefix: getEnvOrDefault(EnvRedisKeyPrefix, DefaultRedisKeyPrefix),
		},
		HTTPTimeout: getEnvDurationOrDefault(EnvHTTPTimeout, DefaultHTTPTimeout, &envErrs),
		LogLevel:    getEnvOrDefault(EnvLogLevel, "info"),
		LogFormat:   getEnvOrDefault(EnvLogFormat, "text"),
	}
	cfg.envErrors = envErrs
	return cfg
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if len(c.envErrors) > 0 {
		return errors.Join(c.envErrors...)
	}

	switch c.Google.GrantMode {
	case GrantModeLocal, GrantModePrompt:
	default:
		return fmt.Errorf("invalid grant mode %q, must be one of: local, prompt", c.Google.GrantMode)
	}

	if c.Google.GrantMode == GrantModeLocal {
		u, err := url.Parse(c.Google.RedirectURL)
		if err != nil || u.Host == "" {
			return fmt.Errorf("invalid redirect URL %q", c.Google.RedirectURL)
		}
	}

	if c.Google.GrantTimeout <= 0 {
		return fmt.Errorf("grant timeout must be positive, got %s", c.Google.GrantTimeout)
	}

	switch c.Store.Driver {
	case StoreFile:
	case StoreRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvRedisAddr, EnvCredentialStore, StoreRedis)
		}
	default:
		return fmt.Errorf("invalid credential store %q, must be one of: file, redis", c.Store.Driver)
	}

	if c.Google.TokenFile == "" {
		return fmt.Errorf("%s must not be empty", EnvGoogleTokenFile)
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP timeout must be positive, got %s", c.HTTPTimeout)
	}

	return nil
}

// WeatherConfigured reports whether a real OpenWeatherMap key is set.
func (c *Config) WeatherConfigured() bool {
	return isSet(c.Weather.APIKey, PlaceholderWeatherAPIKey)
}

// GoogleConfigured reports whether a real Google OAuth client is set.
func (c *Config) GoogleConfigured() bool {
	if c.Google.CredentialsJSON != "" || c.Google.CredentialsFile != "" {
		return true
	}
	return isSet(c.Google.ClientID, PlaceholderGoogleClientID) &&
		isSet(c.Google.ClientSecret, PlaceholderGoogleClientSecret)
}

// Placeholders returns the names of keys still holding placeholder values.
func (c *Config) Placeholders() []string {
	var keys []string
	if !c.WeatherConfigured() {
		keys = append(keys, EnvWeatherAPIKey)
	}
	if c.Google.CredentialsJSON == "" && c.Google.CredentialsFile == "" {
		if !isSet(c.Google.ClientID, PlaceholderGoogleClientID) {
			keys = append(keys, EnvGoogleClientID)
		}
		if !isSet(c.Google.ClientSecret, PlaceholderGoogleClientSecret) {
			keys = append(keys, EnvGoogleClientSecret)
		}
	}
	return keys
}

// GoogleClientJSON returns the configured credentials.json document, reading
// CredentialsFile when CredentialsJSON is empty. It returns nil when neither
// is set.
func (c *Config) GoogleClientJSON() ([]byte, error) {
	if c.Google.CredentialsJSON != "" {
		return []byte(c.Google.CredentialsJSON), nil
	}
	if c.Google.CredentialsFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(c.Google.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read Google credentials file: %w", err)
	}
	return data, nil
}

func isSet(value, placeholder string) bool {
	v := strings.TrimSpace(value)
	return v != "" && v != placeholder
}

// getEnvOrDefault returns the value of an environment variable or a default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault returns the integer value of an environment variable or
// a default value. A malformed value is appended to errs.
func getEnvIntOrDefault(key string, defaultValue int, errs *[]error) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s %q: must be an integer", key, value))
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

// getEnvDurationOrDefault returns the duration value of an environment
// variable or a default value. A malformed value is appended to errs.
func getEnvDurationOrDefault(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s %q: must be a duration such as 30s or 5m", key, value))
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}
