package router

import (
	"context"
	"strings"

	"github.com/tawada/discord-AI-bot/chat"
	"github.com/tawada/discord-AI-bot/emit"
)

// Sentinel is the token the model is instructed to include when its own
// knowledge does not cover the question.
const Sentinel = "KNOWLEDGE_INSUFFICIENT"

// sentinelInstruction is appended as a system turn before the probe call.
const sentinelInstruction = "ユーザーの質問に対して、あなたの知識が不足していると感じる場合は、'KNOWLEDGE_INSUFFICIENT'という単語を含めてください。知識が十分な場合は通常通り回答してください。"

// uncertaintyPhrases are hedging expressions that count as an admission of
// insufficient knowledge even without the sentinel.
var uncertaintyPhrases = []string{
	"わかりません",
	"知りません",
	"不明です",
	"情報がありません",
}

// confidenceFloor marks self-reported confidence below which a response is
// treated as insufficient. Responses without a confidence score skip this
// check.
const confidenceFloor = 0.5

// Evaluator decides whether the model's own knowledge suffices for a
// question, gating the web-search augmentation path.
type Evaluator struct {
	router  *Router
	emitter emit.Emitter
}

// NewEvaluator builds an Evaluator on top of an existing Router. A nil
// emitter discards events.
func NewEvaluator(router *Router, emitter emit.Emitter) *Evaluator {
	if emitter == nil {
		emitter = emit.NewNullEmitter()
	}
	return &Evaluator{router: router, emitter: emitter}
}

// Insufficient probes the model with the conversation plus the sentinel
// instruction and reports whether external information should be fetched.
//
// The check is deliberately pessimistic: any probe failure counts as
// insufficient, so a broken provider degrades into extra searches rather
// than confidently wrong answers.
func (e *Evaluator) Insufficient(ctx context.Context, model string, conversation []chat.Message) bool {
	probe := make([]chat.Message, 0, len(conversation)+1)
	probe = append(probe, conversation...)
	probe = append(probe, chat.Message{Role: chat.RoleSystem, Content: sentinelInstruction})

	resp, err := e.router.Create(ctx, model, probe)
	if err != nil {
		e.emitter.Emit(emit.Event{
			Msg:   "knowledge_probe_failed",
			Model: model,
			Err:   err.Error(),
		})
		return true
	}

	insufficient := containsSentinel(resp.Text) ||
		containsUncertainty(resp.Text) ||
		lowConfidence(resp)
	e.emitter.Emit(emit.Event{
		Msg:   "knowledge_probe",
		Model: model,
		Meta:  map[string]interface{}{"insufficient": insufficient},
	})
	return insufficient
}

// Models are inconsistent about echoing the sentinel's casing, so the
// match is case-insensitive.
func containsSentinel(text string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(Sentinel))
}

func containsUncertainty(text string) bool {
	for _, phrase := range uncertaintyPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

func lowConfidence(resp chat.Response) bool {
	return resp.Confidence > 0 && resp.Confidence < confidenceFloor
}
