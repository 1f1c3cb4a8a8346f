package google

import (
	"context"
	"fmt"
	"net/url"

	"github.com/teemow/chattools/internal/events"
	"golang.org/x/oauth2"
)

// Granter runs an interactive authorization-code grant.
type Granter interface {
	Grant(ctx context.Context, conf *oauth2.Config, em *events.Emitter, prompt events.PromptSink) (*oauth2.Token, error)
}

// GrantResult is the outcome of an asynchronous grant.
type GrantResult struct {
	Token *oauth2.Token
	Err   error
}

// GrantSession is an interactive grant in progress. Result receives exactly
// one value and is then closed. Cancel aborts the grant; it is safe to call
// more than once and after completion.
type GrantSession struct {
	AuthURL string
	Result  <-chan GrantResult
	Cancel  context.CancelFunc
}

// Wait blocks until the grant finishes.
func (s *GrantSession) Wait() (*oauth2.Token, error) {
	res, ok := <-s.Result
	if !ok {
		return nil, fmt.Errorf("grant session already consumed")
	}
	return res.Token, res.Err
}

// authURLMessage is the chat message carrying the authorization link.
func authURLMessage(authURL string) string {
	return fmt.Sprintf("Please authorize access to your Google account: [Authorize](%s)\n\n%s", authURL, authURL)
}

// codeFromInput accepts either a bare authorization code or the full redirect
// URL the browser landed on. When a URL carries a state it must match.
func codeFromInput(input, wantState string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("no authorization code provided")
	}
	u, err := url.Parse(input)
	if err != nil || u.Scheme == "" {
		return input, nil
	}
	q := u.Query()
	if e := q.Get("error"); e != "" {
		return "", fmt.Errorf("authorization denied: %s", e)
	}
	if s := q.Get("state"); s != "" && s != wantState {
		return "", fmt.Errorf("state mismatch in redirect URL")
	}
	code := q.Get("code")
	if code == "" {
		return "", fmt.Errorf("redirect URL carries no code")
	}
	return code, nil
}
