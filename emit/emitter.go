// Package emit provides pluggable structured event emission for the bot.
//
// Every component that does I/O (router, provider adapters, bridge,
// gateway) accepts an Emitter. Implementations must be thread-safe and
// resilient: Emit never panics and never blocks message handling on a slow
// backend.
package emit

// Emitter receives and processes observability events.
//
// Implementations should be:
//   - Non-blocking: avoid slowing down message handling
//   - Thread-safe: called concurrently from multiple chat events
//   - Resilient: handle backend failures internally
type Emitter interface {
	// Emit sends an event to the configured backend.
	// Emit must not panic; errors are handled internally.
	Emit(event Event)
}
