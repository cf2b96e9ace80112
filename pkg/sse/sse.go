// Package sse provides a minimal SSE (Server-Sent Events) reader used to
// consume event streams from an upstream OpenAI-compatible server and from
// the lingopod backend's own streaming endpoints.
//
// This package intentionally does NOT provide SSE writer or server
// capabilities.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

// Event represents a single parsed SSE event, delimited by a blank line
// in the upstream byte stream.
type Event struct {
	// Type is the SSE event type from the "event:" field.
	// An empty string means the default "message" type per the SSE spec.
	Type string

	// Data is the concatenated contents of all "data:" lines for this event,
	// joined with "\n" (per the SSE spec, multiple data fields are joined
	// with a single newline).
	Data string

	// ID is the last event ID from the "id:" field, if present.
	ID string
}

// Done is the sentinel data payload OpenAI-compatible servers emit to
// terminate a completion stream, and the payload lingopod's own streaming
// endpoints use for the same purpose.
const Done = "[DONE]"
