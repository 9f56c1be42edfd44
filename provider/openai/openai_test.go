package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/tawada/discord-AI-bot/chat"
	"github.com/tawada/discord-AI-bot/emit"
	"github.com/tawada/discord-AI-bot/provider"
)

type fakeClient struct {
	resp   chat.Response
	err    error
	models []string
	turns  [][]chat.Message
}

func (f *fakeClient) create(_ context.Context, model string, messages []chat.Message) (chat.Response, error) {
	f.models = append(f.models, model)
	f.turns = append(f.turns, messages)
	if f.err != nil {
		return chat.Response{}, f.err
	}
	return f.resp, nil
}

func TestGenerate_Success(t *testing.T) {
	fake := &fakeClient{resp: chat.Assistant("Paris")}
	g := &Generator{client: fake, emitter: emit.NewNullEmitter()}

	out, err := g.Generate(context.Background(), "gpt-4o", []chat.Message{
		{Role: chat.RoleUser, Content: "Capital of France?"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Text != "Paris" || out.Role != chat.RoleAssistant {
		t.Errorf("unexpected response: %+v", out)
	}
	if len(fake.models) != 1 || fake.models[0] != "gpt-4o" {
		t.Errorf("expected one call with gpt-4o, got %v", fake.models)
	}
}

func TestGenerate_WrapsFailureAsCallError(t *testing.T) {
	cause := errors.New("connection refused")
	g := &Generator{client: &fakeClient{err: cause}, emitter: emit.NewNullEmitter()}

	_, err := g.Generate(context.Background(), "gpt-4o", []chat.Message{
		{Role: chat.RoleUser, Content: "hi"},
	})

	var callErr *provider.CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("expected *provider.CallError, got %v", err)
	}
	if callErr.Provider != provider.TagOpenAI {
		t.Errorf("expected openai tag, got %q", callErr.Provider)
	}
	if !errors.Is(err, cause) {
		t.Error("expected the underlying cause to be preserved")
	}
}

func TestGenerate_RejectsUnsupportedRole(t *testing.T) {
	fake := &fakeClient{resp: chat.Assistant("x")}
	g := &Generator{client: fake, emitter: emit.NewNullEmitter()}

	_, err := g.Generate(context.Background(), "gpt-4o", []chat.Message{
		{Role: "tool", Content: "output"},
	})
	if !errors.Is(err, chat.ErrUnsupportedRole) {
		t.Fatalf("expected ErrUnsupportedRole, got %v", err)
	}
	if provider.IsCallError(err) {
		t.Error("role errors must not masquerade as provider call failures")
	}
	if len(fake.models) != 0 {
		t.Error("vendor call should not happen for invalid conversations")
	}
}

func TestGenerate_SystemTurnPassedInline(t *testing.T) {
	fake := &fakeClient{resp: chat.Assistant("ok")}
	g := &Generator{client: fake, emitter: emit.NewNullEmitter()}

	conv := []chat.Message{
		{Role: chat.RoleSystem, Content: "be terse"},
		{Role: chat.RoleUser, Content: "hello"},
	}
	if _, err := g.Generate(context.Background(), "gpt-4o", conv); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// OpenAI keeps system turns in the message list.
	if len(fake.turns[0]) != 2 || fake.turns[0][0].Role != chat.RoleSystem {
		t.Errorf("expected inline system turn, got %+v", fake.turns[0])
	}
}
