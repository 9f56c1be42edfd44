// Package chat defines the canonical conversation shapes shared by every
// provider adapter.
//
// The rest of the system depends only on these types. Provider-native
// request and response objects never leak past the adapter boundary:
// adapters translate a []Message into their vendor's request shape and
// copy the vendor's reply into a Response.
package chat

// Standard role constants for LLM conversations.
// These align with the conventions used by major LLM providers.
const (
	// RoleSystem indicates a system message that sets context or instructions.
	RoleSystem = "system"

	// RoleUser indicates a message from the human user.
	RoleUser = "user"

	// RoleAssistant indicates a response generated by the model.
	RoleAssistant = "assistant"
)

// Message represents a single turn in a conversation.
//
// Turns form an ordered sequence, oldest first. A turn is immutable once
// created; pipeline stages that need to modify a conversation append to a
// copy instead.
type Message struct {
	// Role identifies the message sender.
	// Standard roles: "system", "user", "assistant".
	Role string

	// Content contains the message text.
	Content string
}

// Response is the single normalized reply shape used everywhere downstream.
//
// Role is always RoleAssistant. Text may be empty or whitespace-only; only
// the knowledge evaluator inspects content, everything else treats a blank
// reply as valid.
type Response struct {
	// Text contains the generated reply.
	Text string

	// Role identifies the sender. Always RoleAssistant for provider replies.
	Role string

	// Confidence is an optional self-reported confidence score in (0, 1].
	// Zero means the provider did not supply one.
	Confidence float64
}

// Assistant wraps generated text in the normalized response shape.
func Assistant(text string) Response {
	return Response{Text: text, Role: RoleAssistant}
}
