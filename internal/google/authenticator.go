package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/chattools/internal/events"
	"github.com/teemow/chattools/internal/instrumentation"
	"github.com/teemow/chattools/internal/logging"
)

// State is a step of the authentication state machine.
type State string

const (
	StateNoCredential State = "no_credential"
	StateLoaded       State = "loaded"
	StateValid        State = "valid"
	StateExpired      State = "expired"
	StateInvalid      State = "invalid"
	StateRefreshing   State = "refreshing"
	StateNeedsGrant   State = "needs_grant"
	StateGranting     State = "granting"
	StateFailed       State = "failed"
)

// Authenticator produces a valid credential by reusing, refreshing or
// granting one. It holds no credential between calls.
type Authenticator struct {
	store      CredentialStore
	granter    Granter
	logger     *slog.Logger
	metrics    *instrumentation.Metrics
	httpClient *http.Client
	now        func() time.Time
	onState    func(State)
}

// AuthenticatorOption configures an Authenticator.
type AuthenticatorOption func(*Authenticator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) AuthenticatorOption {
	return func(a *Authenticator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMetrics records authentication outcomes.
func WithMetrics(m *instrumentation.Metrics) AuthenticatorOption {
	return func(a *Authenticator) { a.metrics = m }
}

// WithHTTPClient sets the client used to reach the token endpoint.
func WithHTTPClient(hc *http.Client) AuthenticatorOption {
	return func(a *Authenticator) { a.httpClient = hc }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) AuthenticatorOption {
	return func(a *Authenticator) { a.now = now }
}

// WithStateObserver is called on every state transition.
func WithStateObserver(fn func(State)) AuthenticatorOption {
	return func(a *Authenticator) { a.onState = fn }
}

// NewAuthenticator creates an Authenticator over store. granter runs the
// interactive grant when no usable credential exists.
func NewAuthenticator(store CredentialStore, granter Granter, opts ...AuthenticatorOption) *Authenticator {
	a := &Authenticator{
		store:   store,
		granter: granter,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = logging.WithOperation(a.logger, "oauth.authenticate")
	return a
}

// Authenticate returns a valid credential for req. Load, refresh and store
// failures are reported through em; a failed interactive grant returns an
// error wrapping ErrGrantFailed. A failure to persist a refreshed or granted
// credential is returned as is.
func (a *Authenticator) Authenticate(ctx context.Context, req AuthorizationRequest, em *events.Emitter, prompt events.PromptSink) (*Credential, error) {
	ctx, span := instrumentation.StartAuthSpan(ctx)
	defer span.End()

	if a.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	}

	cred, result, err := a.authenticate(ctx, req, em, prompt)
	a.metrics.RecordOAuthAuth(ctx, result)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, err
	}
	instrumentation.SetSpanSuccess(span)
	return cred, nil
}

func (a *Authenticator) authenticate(ctx context.Context, req AuthorizationRequest, em *events.Emitter, prompt events.PromptSink) (*Credential, string, error) {
	loc := logging.Location(a.store.Location())

	cred, err := a.store.Load(ctx)
	switch {
	case errors.Is(err, ErrCredentialNotFound):
		a.transition(StateNoCredential)
		a.logger.Info("no stored credential", loc)
		em.Progress(ctx, "No saved Google credentials found, starting authorization...")
		return a.grant(ctx, req, em, prompt)
	case err != nil:
		a.transition(StateNoCredential)
		a.logger.Warn("stored credential unusable, treating as absent", loc, logging.Err(err))
		em.Error(ctx, fmt.Sprintf("Saved Google credentials could not be read: %v", err))
		return a.grant(ctx, req, em, prompt)
	}
	a.transition(StateLoaded)

	now := a.now()
	switch {
	case cred.AccessToken == "" || !cred.CoversScopes(req.Scopes):
		a.transition(StateInvalid)
		a.logger.Info("stored credential invalid for request", loc)
		em.Progress(ctx, "Saved Google credentials do not cover the requested access, re-authorizing...")
		return a.grant(ctx, req, em, prompt)

	case !cred.Expired(now):
		a.transition(StateValid)
		a.logger.Debug("reusing stored credential", loc)
		return cred, instrumentation.AuthResultReused, nil
	}

	a.transition(StateExpired)
	if cred.RefreshToken == "" {
		a.transition(StateNeedsGrant)
		a.logger.Info("expired credential has no refresh token", loc)
		em.Progress(ctx, "Google credentials expired, re-authorizing...")
		return a.grant(ctx, req, em, prompt)
	}

	refreshed, err := a.refresh(ctx, req, cred, em)
	if err == nil {
		return refreshed, instrumentation.AuthResultRefreshed, nil
	}
	if !errors.Is(err, ErrRefreshFailed) {
		a.transition(StateFailed)
		return nil, instrumentation.AuthResultFailure, err
	}

	if delErr := a.store.Delete(ctx); delErr != nil {
		a.logger.Warn("failed to delete stale credential", loc, logging.Err(delErr))
	}
	a.transition(StateNeedsGrant)
	em.Progress(ctx, "Refreshing Google credentials failed, re-authorizing...")
	return a.grant(ctx, req, em, prompt)
}

// refresh returns an error wrapping ErrRefreshFailed when the provider
// rejects the refresh. A local client configuration error or a store error is
// returned as is, so the caller keeps the stored refresh token.
func (a *Authenticator) refresh(ctx context.Context, req AuthorizationRequest, cred *Credential, em *events.Emitter) (*Credential, error) {
	a.transition(StateRefreshing)
	em.Progress(ctx, "Refreshing Google credentials...")

	conf, err := req.OAuthConfig()
	if err != nil {
		a.logger.Error("cannot refresh without client configuration", logging.Err(err))
		em.Error(ctx, fmt.Sprintf("Google client configuration is invalid: %v", err))
		return nil, err
	}

	// The expiry decision is ours; force the token source to refresh.
	stale := cred.Token()
	stale.Expiry = time.Unix(1, 0)
	tok, err := conf.TokenSource(ctx, stale).Token()
	if err != nil {
		a.metrics.RecordOAuthTokenRefresh(ctx, instrumentation.RefreshResultFailure)
		a.logger.Warn("token refresh rejected", logging.Err(err))
		return nil, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	a.metrics.RecordOAuthTokenRefresh(ctx, instrumentation.RefreshResultSuccess)

	scopes := cred.Scopes
	if len(scopes) == 0 {
		scopes = req.Scopes
	}
	next := CredentialFromToken(tok, scopes)
	if next.RefreshToken == "" {
		next.RefreshToken = cred.RefreshToken
	}

	if err := a.store.Save(ctx, next); err != nil {
		em.Error(ctx, fmt.Sprintf("Failed to save refreshed Google credentials: %v", err))
		return nil, fmt.Errorf("failed to save refreshed credential: %w", err)
	}

	a.transition(StateValid)
	a.logger.Info("credential refreshed",
		logging.Location(a.store.Location()),
		slog.String("access_token", logging.SanitizeToken(next.AccessToken)),
		slog.Time("expiry", next.Expiry))
	em.Success(ctx, "Google credentials refreshed.")
	return next, nil
}

func (a *Authenticator) grant(ctx context.Context, req AuthorizationRequest, em *events.Emitter, prompt events.PromptSink) (*Credential, string, error) {
	a.transition(StateGranting)

	fail := func(err error) (*Credential, string, error) {
		a.transition(StateFailed)
		a.logger.Error("authorization failed", logging.Err(err))
		em.Error(ctx, fmt.Sprintf("Google authorization failed: %v", err))
		return nil, instrumentation.AuthResultFailure, fmt.Errorf("%w: %w", ErrGrantFailed, err)
	}

	if a.granter == nil {
		return fail(fmt.Errorf("interactive authorization is not available"))
	}

	conf, err := req.OAuthConfig()
	if err != nil {
		return fail(err)
	}

	em.Progress(ctx, "Waiting for Google authorization...")
	tok, err := a.granter.Grant(ctx, conf, em, prompt)
	if err != nil {
		return fail(err)
	}

	cred := CredentialFromToken(tok, req.Scopes)
	if !cred.Valid(a.now()) {
		return fail(fmt.Errorf("granted credential is not valid"))
	}

	if err := a.store.Save(ctx, cred); err != nil {
		a.transition(StateFailed)
		em.Error(ctx, fmt.Sprintf("Failed to save Google credentials: %v", err))
		return nil, instrumentation.AuthResultFailure, fmt.Errorf("failed to save granted credential: %w", err)
	}

	a.transition(StateValid)
	a.logger.Info("credential granted", logging.Location(a.store.Location()))
	em.Success(ctx, "Google authorization complete.")
	return cred, instrumentation.AuthResultGranted, nil
}

func (a *Authenticator) transition(s State) {
	a.logger.Debug("authentication state", slog.String("state", string(s)))
	if a.onState != nil {
		a.onState(s)
	}
}
