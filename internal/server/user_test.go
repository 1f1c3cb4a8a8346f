package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/chattools/internal/toolkit"
)

func TestUserFromHeaders(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    *toolkit.User
	}{
		{
			name:    "no headers",
			headers: nil,
			want:    nil,
		},
		{
			name:    "blank headers",
			headers: map[string]string{HeaderUserName: "  "},
			want:    nil,
		},
		{
			name: "all fields",
			headers: map[string]string{
				HeaderUserID:    "u-1",
				HeaderUserName:  "Ada Lovelace",
				HeaderUserEmail: "ada@example.com",
				HeaderUserRole:  "admin",
			},
			want: &toolkit.User{ID: "u-1", Name: "Ada Lovelace", Email: "ada@example.com", Role: "admin"},
		},
		{
			name:    "email only",
			headers: map[string]string{HeaderUserEmail: "ada@example.com"},
			want:    &toolkit.User{Email: "ada@example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			for k, v := range tt.headers {
				h.Set(k, v)
			}
			assert.Equal(t, tt.want, UserFromHeaders(h))
		})
	}
}

func TestContextWithUser(t *testing.T) {
	ctx := context.Background()

	_, ok := UserFromContext(ctx)
	assert.False(t, ok)

	assert.Equal(t, ctx, ContextWithUser(ctx, nil))

	user := &toolkit.User{Name: "Ada"}
	got, ok := UserFromContext(ContextWithUser(ctx, user))
	require.True(t, ok)
	assert.Same(t, user, got)
}

func TestHTTPContextFunc(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	r.Header.Set(HeaderUserName, "Ada")

	got, ok := UserFromContext(HTTPContextFunc(context.Background(), r))
	require.True(t, ok)
	assert.Equal(t, "Ada", got.Name)
}
