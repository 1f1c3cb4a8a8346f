package google

import (
	"encoding/json"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// AuthorizationRequest describes one authentication attempt.
type AuthorizationRequest struct {
	Scopes []string
	// ClientConfig is a Google credentials.json document ("installed" or "web").
	ClientConfig []byte
	// RedirectURL overrides the redirect URI listed in ClientConfig.
	RedirectURL string
}

// OAuthConfig builds the oauth2.Config for the request.
func (r AuthorizationRequest) OAuthConfig() (*oauth2.Config, error) {
	if len(r.ClientConfig) == 0 {
		return nil, fmt.Errorf("%w: no client configuration", ErrClientConfig)
	}
	conf, err := google.ConfigFromJSON(r.ClientConfig, r.Scopes...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClientConfig, err)
	}
	if r.RedirectURL != "" {
		conf.RedirectURL = r.RedirectURL
	}
	return conf, nil
}

type installedClient struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	AuthURI      string   `json:"auth_uri"`
	TokenURI     string   `json:"token_uri"`
	RedirectURIs []string `json:"redirect_uris"`
}

// ClientConfigFromCredentials renders a credentials.json document of the
// "installed" kind for a bare client ID and secret.
func ClientConfigFromCredentials(clientID, clientSecret, redirectURL string) ([]byte, error) {
	doc := map[string]installedClient{
		"installed": {
			ClientID:     clientID,
			ClientSecret: clientSecret,
			AuthURI:      google.Endpoint.AuthURL,
			TokenURI:     google.Endpoint.TokenURL,
			RedirectURIs: []string{redirectURL},
		},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode client configuration: %w", err)
	}
	return data, nil
}
