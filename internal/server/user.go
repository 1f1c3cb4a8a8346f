package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/teemow/chattools/internal/toolkit"
)

// Headers OpenWebUI sets on tool server requests when user info forwarding
// is enabled.
const (
	HeaderUserID    = "X-OpenWebUI-User-Id"
	HeaderUserName  = "X-OpenWebUI-User-Name"
	HeaderUserEmail = "X-OpenWebUI-User-Email"
	HeaderUserRole  = "X-OpenWebUI-User-Role"
)

// contextKey is the type for context keys
type contextKey string

const userContextKey contextKey = "chat_user"

// UserFromHeaders returns the forwarded user, or nil when no user header is
// present.
func UserFromHeaders(h http.Header) *toolkit.User {
	user := &toolkit.User{
		ID:    strings.TrimSpace(h.Get(HeaderUserID)),
		Name:  strings.TrimSpace(h.Get(HeaderUserName)),
		Email: strings.TrimSpace(h.Get(HeaderUserEmail)),
		Role:  strings.TrimSpace(h.Get(HeaderUserRole)),
	}
	if *user == (toolkit.User{}) {
		return nil
	}
	return user
}

// ContextWithUser attaches user to ctx. A nil user leaves ctx unchanged.
func ContextWithUser(ctx context.Context, user *toolkit.User) context.Context {
	if user == nil {
		return ctx
	}
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the user attached by ContextWithUser.
func UserFromContext(ctx context.Context) (*toolkit.User, bool) {
	user, ok := ctx.Value(userContextKey).(*toolkit.User)
	return user, ok && user != nil
}

// HTTPContextFunc copies the forwarded user from the request headers into
// the request context. It matches mcp-go's HTTPContextFunc.
func HTTPContextFunc(ctx context.Context, r *http.Request) context.Context {
	return ContextWithUser(ctx, UserFromHeaders(r.Header))
}
