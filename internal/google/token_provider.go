package google

import (
	"context"

	"github.com/teemow/chattools/internal/events"
	"golang.org/x/oauth2"
)

// TokenProvider obtains a valid credential for a request. The Authenticator
// is the production implementation; tools depend on this interface.
// prompt may be nil when the host cannot ask the user for input.
type TokenProvider interface {
	Authenticate(ctx context.Context, req AuthorizationRequest, em *events.Emitter, prompt events.PromptSink) (*Credential, error)
}

// TokenSource returns a static oauth2.TokenSource for an authenticated
// credential.
func TokenSource(cred *Credential) oauth2.TokenSource {
	return oauth2.StaticTokenSource(cred.Token())
}
