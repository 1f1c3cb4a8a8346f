// Package events implements the notification and input-request contract
// between a tool operation and the chat host that invoked it.
//
// A tool never talks to the host directly. It receives a NotificationSink
// (where status, notification and chat-delta events go) and a PromptSink
// (how it asks the user for a value) and wraps the sink in an Emitter:
//
//	em := events.NewEmitter(sink)
//	em.Progress(ctx, "Fetching current weather...")
//	zip, err := prompt.Prompt(ctx, events.InputRequest{
//	    Type:  events.RequestInput,
//	    Title: "Zipcode",
//	})
//
// The event payloads follow the OpenWebUI event format so they can be handed
// to an OpenWebUI host unchanged; the MCP transport translates them into MCP
// notifications.
package events
