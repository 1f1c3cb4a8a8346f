// Package toolkit implements the chat tools: current time, current weather
// and forecast by ZIP code, public IP geolocation, upcoming Google Calendar
// events and a description of the calling user.
//
// Operations are transport independent. Each call builds its own
// events.Emitter from the caller's sink, may ask the caller for input
// through a PromptSink, and always returns a Result: provider failures are
// turned into an error notification and a Result with Failed set, never a
// Go error. Transports (MCP, the HTTP bridge, the CLI) look tools up in the
// registry returned by Definitions.
package toolkit
