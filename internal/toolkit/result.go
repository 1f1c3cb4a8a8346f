package toolkit

import (
	"context"

	"github.com/teemow/chattools/internal/events"
)

// Result is what every operation returns to its transport.
type Result struct {
	// Text is the human readable outcome, success or error.
	Text string `json:"text"`
	// Data is the structured payload, if any. Failed operations that report
	// an empty result carry an empty object.
	Data any `json:"data,omitempty"`
	// Failed is set when Text describes an error.
	Failed bool `json:"failed"`
}

func success(text string, data any) Result {
	return Result{Text: text, Data: data}
}

// failure reports text as an error notification and returns it as a failed
// Result.
func failure(ctx context.Context, em *events.Emitter, text string, data any) Result {
	em.Error(ctx, text)
	return Result{Text: text, Data: data, Failed: true}
}

// emptyObject is the "{}" result used when an operation has nothing to show.
func emptyObject() map[string]any {
	return map[string]any{}
}
