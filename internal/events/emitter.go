package events

import (
	"context"
	"log/slog"
)

// Emitter formats notifications and forwards them to a sink. A nil sink
// turns every call into a no-op. Each call results in exactly one Emit on
// the sink; there is no buffering or reordering.
type Emitter struct {
	sink   NotificationSink
	logger *slog.Logger
}

// NewEmitter returns an Emitter for sink, which may be nil.
func NewEmitter(sink NotificationSink) *Emitter {
	return &Emitter{sink: sink, logger: slog.Default()}
}

// WithLogger sets the logger used for sink failures and debug traces.
func (e *Emitter) WithLogger(logger *slog.Logger) *Emitter {
	if logger != nil {
		e.logger = logger
	}
	return e
}

// Progress emits an in-progress status.
func (e *Emitter) Progress(ctx context.Context, text string) {
	e.emit(ctx, ProgressEvent(text))
}

// Error emits a terminal error status.
func (e *Emitter) Error(ctx context.Context, text string) {
	e.emit(ctx, ErrorEvent(text))
}

// Success emits an info notification, optionally carrying details.
func (e *Emitter) Success(ctx context.Context, text string, details ...any) {
	var d any
	if len(details) > 0 {
		d = details[0]
	}
	e.emit(ctx, SuccessEvent(text, d))
}

// Message emits a chat message delta.
func (e *Emitter) Message(ctx context.Context, text string) {
	e.emit(ctx, MessageEvent(text))
}

func (e *Emitter) emit(ctx context.Context, event Event) {
	if e == nil || e.sink == nil {
		return
	}
	e.logger.Debug("emitting event", slog.String("event_type", event.Type), slog.String("text", event.Text()))
	if err := e.sink.Emit(ctx, event); err != nil {
		// The host may have gone away; the operation itself must carry on.
		e.logger.Warn("failed to deliver event", slog.String("event_type", event.Type), slog.String("error", err.Error()))
	}
}
