package emit

import "time"

// Event represents an observability event emitted while handling a chat
// message: provider attempts, fallbacks, enrichment outcomes, gateway
// activity.
//
// Events are emitted to an Emitter which can log to stdout/stderr, forward
// to OpenTelemetry, or discard them.
type Event struct {
	// Time is when the event occurred. The zero value means "now" and is
	// filled in by emitters that record timestamps.
	Time time.Time

	// Msg is a short machine-stable description, e.g. "provider_request",
	// "provider_failure", "fallback", "search_empty".
	Msg string

	// Provider identifies the backend involved, when any.
	Provider string

	// Model is the model identifier in play, when any.
	Model string

	// Channel is the chat channel the event belongs to, when any.
	Channel string

	// Err carries the failure description for error events.
	Err string

	// Meta contains additional structured data specific to this event.
	// Common keys: "preview" (truncated content), "role", "duration_ms",
	// "url", "results".
	Meta map[string]interface{}
}

// Error reports whether the event describes a failure.
func (e Event) Error() bool { return e.Err != "" }
