// Package provider defines the uniform interface every LLM backend adapter
// implements, together with the shared error taxonomy.
//
// Adapters are dumb, stateless translators of one call: translate the
// canonical conversation into the vendor's request shape, invoke the
// vendor SDK once, normalize the reply. They never retry; retry and
// fallback policy belongs exclusively to the router.
package provider

import (
	"context"

	"github.com/tawada/discord-AI-bot/chat"
)

// Tag identifies a backend vendor. Used for routing, logging and error
// attribution; adapters are selected by explicit tag, never by structural
// guessing on response shapes.
type Tag string

const (
	// TagOpenAI identifies the OpenAI chat-completions backend.
	TagOpenAI Tag = "openai"

	// TagAnthropic identifies the Anthropic messages backend.
	TagAnthropic Tag = "anthropic"

	// TagGoogle identifies the Google Gemini backend.
	TagGoogle Tag = "google"
)

// Generator is the uniform operation a provider adapter exposes.
//
// Implementations must be safe for concurrent use and must respect context
// cancellation: a hung vendor call is bounded by the caller's deadline and
// surfaces as a *CallError like any other transport failure.
type Generator interface {
	// Generate sends the conversation to the named model and returns the
	// normalized response.
	//
	// Any transport, authentication, timeout, or malformed-payload failure
	// is returned as a *CallError carrying the provider tag. A conversation
	// containing a role the provider cannot express returns
	// chat.ErrUnsupportedRole instead; that is a bug in the caller, not a
	// provider outage.
	Generate(ctx context.Context, model string, messages []chat.Message) (chat.Response, error)

	// Tag returns the provider identifier for routing and logging.
	Tag() Tag
}
