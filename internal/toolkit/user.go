package toolkit

import (
	"context"
	"strings"

	"github.com/teemow/chattools/internal/events"
)

// DescribeUser reports the host-forwarded identity of the caller.
func (t *Toolkit) DescribeUser(ctx context.Context, em *events.Emitter, user *User) Result {
	text := describeUser(user)
	if user != nil {
		em.Progress(ctx, "Found User: "+user.Name+", Email: "+user.Email)
	}
	em.Success(ctx, "Found User: "+text)

	if user == nil {
		return success(text, nil)
	}
	return success(text, user)
}

func describeUser(user *User) string {
	if user == nil {
		return "User: Unknown"
	}
	var parts []string
	if user.Name != "" {
		parts = append(parts, "User: "+user.Name)
	}
	if user.ID != "" {
		parts = append(parts, "(ID: "+user.ID+")")
	}
	if user.Email != "" {
		parts = append(parts, "(Email: "+user.Email+")")
	}
	if len(parts) == 0 {
		return "User: Unknown"
	}
	return strings.Join(parts, " ")
}
