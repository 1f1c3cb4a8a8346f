package google

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/teemow/chattools/internal/events"
)

// PromptGranter is the out-of-band grant: the user opens the authorization
// link, approves access and pastes the code (or the whole redirect URL) back
// through the host's input request.
type PromptGranter struct{}

// Grant implements Granter.
func (PromptGranter) Grant(ctx context.Context, conf *oauth2.Config, em *events.Emitter, prompt events.PromptSink) (*oauth2.Token, error) {
	if prompt == nil {
		return nil, events.ErrNoPrompter
	}

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	authURL := conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(verifier),
	)
	em.Message(ctx, authURLMessage(authURL))

	input, err := prompt.Prompt(ctx, events.InputRequest{
		Type:        events.RequestInput,
		Title:       "Google authorization code",
		Message:     "Open the authorization link, approve access, then paste the code or the full URL you were redirected to.",
		Placeholder: conf.RedirectURL + "?code=...",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read authorization code: %w", err)
	}

	code, err := codeFromInput(strings.TrimSpace(input), state)
	if err != nil {
		return nil, err
	}

	tok, err := conf.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return tok, nil
}
