package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"github.com/teemow/chattools/internal/events"
	"github.com/teemow/chattools/internal/instrumentation"
	"github.com/teemow/chattools/internal/logging"
)

// DefaultGrantTimeout bounds how long a local grant waits for the browser.
const DefaultGrantTimeout = 5 * time.Minute

const callbackPage = "Authorization complete. You can close this window and return to the chat."

// LocalServerGranter receives the authorization code on a loopback HTTP
// listener bound to the redirect URL's host and port. A port of 0 picks a
// free port and rewrites the redirect URL accordingly.
type LocalServerGranter struct {
	Timeout time.Duration
	Logger  *slog.Logger
	Metrics *instrumentation.Metrics
}

// Grant implements Granter. prompt is not used.
func (g *LocalServerGranter) Grant(ctx context.Context, conf *oauth2.Config, em *events.Emitter, _ events.PromptSink) (*oauth2.Token, error) {
	session, err := g.Start(ctx, conf, em)
	if err != nil {
		return nil, err
	}
	defer session.Cancel()
	return session.Wait()
}

type callback struct {
	code string
	err  error
}

// Start begins the grant and returns immediately. The authorization URL is
// emitted as a chat message.
func (g *LocalServerGranter) Start(ctx context.Context, conf *oauth2.Config, em *events.Emitter) (*GrantSession, error) {
	logger := g.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logging.WithOperation(logger, "oauth.grant_local")

	redirect, err := url.Parse(conf.RedirectURL)
	if err != nil || redirect.Host == "" {
		return nil, fmt.Errorf("invalid redirect URL %q", conf.RedirectURL)
	}

	ln, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return nil, fmt.Errorf("failed to listen for OAuth callback on %s: %w", redirect.Host, err)
	}

	if redirect.Port() == "0" {
		redirect.Host = ln.Addr().String()
		c := *conf
		c.RedirectURL = redirect.String()
		conf = &c
	}

	timeout := g.Timeout
	if timeout <= 0 {
		timeout = DefaultGrantTimeout
	}

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	authURL := conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(verifier),
	)

	callbacks := make(chan callback, 1)
	path := redirect.Path
	if path == "" {
		path = "/"
	}
	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		var cb callback
		switch {
		case q.Get("error") != "":
			cb.err = fmt.Errorf("authorization denied: %s", q.Get("error"))
			http.Error(w, "Authorization was denied.", http.StatusForbidden)
		case q.Get("code") == "":
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		default:
			cb.code = q.Get("code")
			_, _ = fmt.Fprintln(w, callbackPage)
		}
		select {
		case callbacks <- cb:
		default:
		}
	})
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	grantCtx, cancel := context.WithTimeout(ctx, timeout)
	results := make(chan GrantResult, 1)
	var token *oauth2.Token

	eg, egCtx := errgroup.WithContext(grantCtx)
	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("OAuth callback server failed: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		defer func() {
			shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()
			_ = srv.Shutdown(shutdownCtx)
		}()

		select {
		case <-egCtx.Done():
			if errors.Is(egCtx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("timed out after %s waiting for authorization", timeout)
			}
			return fmt.Errorf("authorization cancelled: %w", egCtx.Err())
		case cb := <-callbacks:
			if cb.err != nil {
				return cb.err
			}
			tok, err := conf.Exchange(egCtx, cb.code, oauth2.VerifierOption(verifier))
			if err != nil {
				return fmt.Errorf("failed to exchange authorization code: %w", err)
			}
			token = tok
			return nil
		}
	})

	g.Metrics.GrantStarted(ctx)
	go func() {
		err := eg.Wait()
		cancel()
		g.Metrics.GrantFinished(context.WithoutCancel(ctx))
		if err != nil {
			logger.Warn("local grant failed", logging.Err(err))
			results <- GrantResult{Err: err}
		} else {
			logger.Info("local grant completed", logging.Status(logging.StatusSuccess))
			results <- GrantResult{Token: token}
		}
		close(results)
	}()

	logger.Info("waiting for OAuth callback", slog.String("listen", ln.Addr().String()), slog.Duration("timeout", timeout))
	em.Message(ctx, authURLMessage(authURL))

	return &GrantSession{AuthURL: authURL, Result: results, Cancel: cancel}, nil
}
