package provider

import (
	"strings"

	"github.com/tawada/discord-AI-bot/chat"
	"github.com/tawada/discord-AI-bot/emit"
)

// PreviewLen bounds how much message content appears in logs. Full user
// content must never leak into log output.
const PreviewLen = 24

// Preview truncates s to PreviewLen runes and flattens newlines so the
// result fits on one log line.
func Preview(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= PreviewLen {
		return s
	}
	return string(runes[:PreviewLen])
}

// EmitRequest logs one role-tagged, truncated line per outbound turn.
func EmitRequest(emitter emit.Emitter, tag Tag, model string, messages []chat.Message) {
	if emitter == nil {
		return
	}
	for _, msg := range messages {
		emitter.Emit(emit.Event{
			Msg:      "provider_request",
			Provider: string(tag),
			Model:    model,
			Meta: map[string]interface{}{
				"role":    msg.Role,
				"preview": Preview(msg.Content),
			},
		})
	}
}

// EmitResponse logs a truncated preview of the inbound reply.
func EmitResponse(emitter emit.Emitter, tag Tag, model string, resp chat.Response) {
	if emitter == nil {
		return
	}
	emitter.Emit(emit.Event{
		Msg:      "provider_response",
		Provider: string(tag),
		Model:    model,
		Meta: map[string]interface{}{
			"role":    resp.Role,
			"preview": Preview(resp.Text),
		},
	})
}
