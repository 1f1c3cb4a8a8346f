package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// NotificationSink receives events emitted by a tool operation.
type NotificationSink interface {
	Emit(ctx context.Context, event Event) error
}

// SinkFunc adapts a function to a NotificationSink.
type SinkFunc func(ctx context.Context, event Event) error

// Emit calls f.
func (f SinkFunc) Emit(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// RequestType selects how the host presents an input request.
type RequestType string

const (
	RequestInput        RequestType = "input"
	RequestConfirmation RequestType = "confirmation"
	RequestExecute      RequestType = "execute"
)

// InputRequest asks the host to collect a value from the user.
type InputRequest struct {
	Type        RequestType `json:"type"`
	Title       string      `json:"title"`
	Message     string      `json:"message"`
	Placeholder string      `json:"placeholder,omitempty"`
}

// PromptSink collects user input on behalf of a tool operation. For
// confirmation requests the returned value is "true" or "false".
type PromptSink interface {
	Prompt(ctx context.Context, req InputRequest) (string, error)
}

// PromptFunc adapts a function to a PromptSink.
type PromptFunc func(ctx context.Context, req InputRequest) (string, error)

// Prompt calls f.
func (f PromptFunc) Prompt(ctx context.Context, req InputRequest) (string, error) {
	return f(ctx, req)
}

// ErrNoPrompter is returned when an operation needs input but the host did
// not supply a way to ask for it.
var ErrNoPrompter = errors.New("host does not support input requests")

// Buffer is a NotificationSink that keeps every event in memory.
// It is safe for concurrent use.
type Buffer struct {
	mu     sync.Mutex
	events []Event
}

// Emit appends the event.
func (b *Buffer) Emit(_ context.Context, event Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	return nil
}

// Events returns a copy of the collected events in emission order.
func (b *Buffer) Events() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Event, len(b.events))
	copy(out, b.events)
	return out
}

// LogSink writes every event to a slog logger. Errors are logged at error
// level, everything else at info.
type LogSink struct {
	Logger *slog.Logger
}

// Emit logs the event.
func (s LogSink) Emit(ctx context.Context, event Event) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelInfo
	if event.IsError() {
		level = slog.LevelError
	}
	logger.Log(ctx, level, event.Text(), slog.String("event_type", event.Type))
	return nil
}

// Tee forwards every event to all sinks, in order. Nil sinks are skipped.
// The first error is returned after all sinks were called.
func Tee(sinks ...NotificationSink) NotificationSink {
	return SinkFunc(func(ctx context.Context, event Event) error {
		var first error
		for _, s := range sinks {
			if s == nil {
				continue
			}
			if err := s.Emit(ctx, event); err != nil && first == nil {
				first = err
			}
		}
		return first
	})
}
