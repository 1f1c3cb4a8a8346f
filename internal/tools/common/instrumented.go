package common

import (
	"context"
	"errors"
	"log/slog"

	"github.com/teemow/chattools/internal/events"
	"github.com/teemow/chattools/internal/instrumentation"
	"github.com/teemow/chattools/internal/logging"
	"github.com/teemow/chattools/internal/server"
	"github.com/teemow/chattools/internal/toolkit"
)

// RunTool runs def with tracing, metrics and audit logging. Every transport
// calls tools through here so the records look the same regardless of where
// the call came from. Events emitted by the tool are counted on their way to
// call.Sink.
//
// Usage:
//
//	res := common.RunTool(ctx, sc, instrumentation.TransportMCP, def, call)
func RunTool(ctx context.Context, sc *server.ServerContext, transport string, def toolkit.Definition, call toolkit.Call) toolkit.Result {
	metrics := sc.Metrics()

	ctx, span := instrumentation.StartToolSpan(ctx, def.Name,
		instrumentation.NewSpanAttributeBuilder().WithTransport(transport).Build()...)
	defer span.End()

	invocation := instrumentation.NewToolInvocation(def.Name, transport).WithSpanContext(ctx)
	if call.User != nil {
		invocation.WithUser(call.User.ID, call.User.Email)
	}

	call.Sink = countingSink(metrics, call.Sink)

	logger := logging.WithTool(sc.Logger(), def.Name)
	logger.Debug("running tool", slog.String("transport", transport))

	res := def.Run(ctx, call)

	errText := ""
	if res.Failed {
		errText = res.Text
		instrumentation.SetSpanError(span, errors.New(res.Text))
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	invocation.Complete(!res.Failed, errText)

	metrics.RecordToolInvocation(ctx, def.Name, transport, invocation.Status(), invocation.Duration)
	sc.AuditLogger().LogToolInvocation(ctx, invocation)

	logger.Debug("tool finished",
		logging.Status(invocation.Status()),
		slog.Duration("duration", invocation.Duration))

	return res
}

func countingSink(metrics *instrumentation.Metrics, sink events.NotificationSink) events.NotificationSink {
	if metrics == nil || sink == nil {
		return sink
	}
	return events.SinkFunc(func(ctx context.Context, event events.Event) error {
		metrics.RecordNotification(ctx, event.Type)
		return sink.Emit(ctx, event)
	})
}
