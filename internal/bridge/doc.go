// Package bridge serves the chat tools as an OpenAPI tool server, the way
// OpenWebUI consumes external tools over HTTP.
//
// Every call runs to completion within the request. Events the tool emits
// are collected and returned with the result, and input requests are
// answered from the call arguments. The forwarded OpenWebUI user headers
// become the caller identity.
package bridge
