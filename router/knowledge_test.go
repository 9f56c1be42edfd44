package router

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tawada/discord-AI-bot/chat"
	"github.com/tawada/discord-AI-bot/provider"
)

func newEvaluatorWith(t *testing.T, gen *provider.MockGenerator) *Evaluator {
	t.Helper()
	r := newTestRouter(t, Config{
		Google:        gen,
		FallbackTag:   provider.TagGoogle,
		FallbackModel: "gemini-2.0-flash",
	})
	return NewEvaluator(r, nil)
}

func TestInsufficient_Sentinel(t *testing.T) {
	gen := &provider.MockGenerator{
		Provider:  provider.TagGoogle,
		Responses: []chat.Response{chat.Assistant("その件については KNOWLEDGE_INSUFFICIENT です")},
	}
	e := newEvaluatorWith(t, gen)

	conv := []chat.Message{{Role: chat.RoleUser, Content: "最新のニュースを教えて"}}
	if !e.Insufficient(context.Background(), "gemini-2.0-flash", conv) {
		t.Error("sentinel in the response must mean insufficient")
	}

	// The probe carries the sentinel instruction as an extra system turn.
	last, ok := gen.LastCall()
	if !ok {
		t.Fatal("expected a recorded probe call")
	}
	if len(last.Messages) != len(conv)+1 {
		t.Fatalf("expected conversation plus instruction, got %d turns", len(last.Messages))
	}
	tail := last.Messages[len(last.Messages)-1]
	if tail.Role != chat.RoleSystem || !strings.Contains(tail.Content, Sentinel) {
		t.Errorf("expected trailing sentinel instruction, got %+v", tail)
	}
}

func TestInsufficient_SentinelCaseInsensitive(t *testing.T) {
	for _, text := range []string{
		"knowledge_insufficient: その情報は持っていません",
		"Knowledge_Insufficient",
		"KNOWLEDGE_INSUFFICIENTです",
	} {
		t.Run(text, func(t *testing.T) {
			e := newEvaluatorWith(t, &provider.MockGenerator{
				Provider:  provider.TagGoogle,
				Responses: []chat.Response{chat.Assistant(text)},
			})
			if !e.Insufficient(context.Background(), "gemini-2.0-flash", []chat.Message{{Role: chat.RoleUser, Content: "q"}}) {
				t.Errorf("sentinel in %q must count regardless of casing", text)
			}
		})
	}
}

func TestInsufficient_ConfidentAnswer(t *testing.T) {
	e := newEvaluatorWith(t, &provider.MockGenerator{
		Provider:  provider.TagGoogle,
		Responses: []chat.Response{chat.Assistant("東京は日本の首都です")},
	})

	if e.Insufficient(context.Background(), "gemini-2.0-flash", []chat.Message{{Role: chat.RoleUser, Content: "日本の首都は?"}}) {
		t.Error("a plain confident answer must mean sufficient")
	}
}

func TestInsufficient_UncertaintyPhrases(t *testing.T) {
	for _, phrase := range []string{"わかりません", "知りません", "不明です", "情報がありません"} {
		t.Run(phrase, func(t *testing.T) {
			e := newEvaluatorWith(t, &provider.MockGenerator{
				Provider:  provider.TagGoogle,
				Responses: []chat.Response{chat.Assistant("すみません、" + phrase)},
			})
			if !e.Insufficient(context.Background(), "gemini-2.0-flash", []chat.Message{{Role: chat.RoleUser, Content: "q"}}) {
				t.Errorf("phrase %q must mean insufficient", phrase)
			}
		})
	}
}

func TestInsufficient_LowConfidence(t *testing.T) {
	e := newEvaluatorWith(t, &provider.MockGenerator{
		Provider:  provider.TagGoogle,
		Responses: []chat.Response{{Text: "たぶんそうです", Role: chat.RoleAssistant, Confidence: 0.3}},
	})

	if !e.Insufficient(context.Background(), "gemini-2.0-flash", []chat.Message{{Role: chat.RoleUser, Content: "q"}}) {
		t.Error("confidence below the floor must mean insufficient")
	}
}

func TestInsufficient_ZeroConfidenceIsNotScored(t *testing.T) {
	// Confidence zero means the provider did not report a score.
	e := newEvaluatorWith(t, &provider.MockGenerator{
		Provider:  provider.TagGoogle,
		Responses: []chat.Response{chat.Assistant("確実な答えです")},
	})

	if e.Insufficient(context.Background(), "gemini-2.0-flash", []chat.Message{{Role: chat.RoleUser, Content: "q"}}) {
		t.Error("an unscored confident answer must mean sufficient")
	}
}

func TestInsufficient_ProbeFailureIsInsufficient(t *testing.T) {
	e := newEvaluatorWith(t, &provider.MockGenerator{
		Provider: provider.TagGoogle,
		Err:      errors.New("unreachable"),
	})

	if !e.Insufficient(context.Background(), "gemini-2.0-flash", []chat.Message{{Role: chat.RoleUser, Content: "q"}}) {
		t.Error("a failed probe must degrade into searching, not skipping it")
	}
}
