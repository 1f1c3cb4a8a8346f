package bridge

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/teemow/chattools/internal/events"
	"github.com/teemow/chattools/internal/toolkit"
)

// ConfirmArg is the argument that answers confirmation requests.
const ConfirmArg = "confirm"

// ArgsPrompter answers input requests from the call arguments, since the
// bridge cannot ask the user mid-call. An input request titled "Zipcode" is
// answered by the "zipcode" argument; confirmations by ConfirmArg.
type ArgsPrompter struct {
	Args map[string]any
}

// Prompt implements events.PromptSink.
func (p ArgsPrompter) Prompt(_ context.Context, req events.InputRequest) (string, error) {
	switch req.Type {
	case events.RequestConfirmation, events.RequestExecute:
		v, ok := p.Args[ConfirmArg]
		if !ok {
			return "", fmt.Errorf("argument %q required: %w", ConfirmArg, events.ErrNoPrompter)
		}
		switch b := v.(type) {
		case bool:
			return strconv.FormatBool(b), nil
		case string:
			parsed, err := strconv.ParseBool(strings.TrimSpace(b))
			if err != nil {
				return "", fmt.Errorf("argument %q must be a boolean", ConfirmArg)
			}
			return strconv.FormatBool(parsed), nil
		default:
			return "", fmt.Errorf("argument %q must be a boolean", ConfirmArg)
		}
	default:
		key := ArgName(req.Title)
		if value := toolkit.StringArg(p.Args, key); value != "" {
			return value, nil
		}
		return "", fmt.Errorf("argument %q required: %w", key, events.ErrNoPrompter)
	}
}

// ArgName derives the argument name for an input request title.
func ArgName(title string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(title)), " ", "_")
}
