package anthropic

import (
	"context"
	"errors"
	"testing"

	"github.com/tawada/discord-AI-bot/chat"
	"github.com/tawada/discord-AI-bot/emit"
	"github.com/tawada/discord-AI-bot/provider"
)

type fakeClient struct {
	resp    chat.Response
	err     error
	systems []string
	turns   [][]chat.Message
}

func (f *fakeClient) create(_ context.Context, _, system string, messages []chat.Message) (chat.Response, error) {
	f.systems = append(f.systems, system)
	f.turns = append(f.turns, messages)
	if f.err != nil {
		return chat.Response{}, f.err
	}
	return f.resp, nil
}

func TestGenerate_ExtractsSystemPrompt(t *testing.T) {
	fake := &fakeClient{resp: chat.Assistant("done")}
	g := &Generator{client: fake, emitter: emit.NewNullEmitter()}

	conv := []chat.Message{
		{Role: chat.RoleSystem, Content: "speak Japanese"},
		{Role: chat.RoleUser, Content: "hello"},
		{Role: chat.RoleAssistant, Content: "こんにちは"},
	}
	out, err := g.Generate(context.Background(), "claude-3-sonnet-20240229", conv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Text != "done" {
		t.Errorf("unexpected response: %+v", out)
	}

	if fake.systems[0] != "speak Japanese" {
		t.Errorf("expected extracted system prompt, got %q", fake.systems[0])
	}
	for _, msg := range fake.turns[0] {
		if msg.Role == chat.RoleSystem {
			t.Error("system turn leaked into the message list")
		}
	}
	if len(fake.turns[0]) != 2 {
		t.Errorf("expected 2 conversation turns, got %d", len(fake.turns[0]))
	}
}

func TestGenerate_MultipleSystemTurnsConcatenated(t *testing.T) {
	fake := &fakeClient{resp: chat.Assistant("ok")}
	g := &Generator{client: fake, emitter: emit.NewNullEmitter()}

	conv := []chat.Message{
		{Role: chat.RoleSystem, Content: "one"},
		{Role: chat.RoleUser, Content: "hi"},
		{Role: chat.RoleSystem, Content: "two"},
	}
	if _, err := g.Generate(context.Background(), "claude-3-sonnet-20240229", conv); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.systems[0] != "one\n\ntwo" {
		t.Errorf("expected concatenated system prompt, got %q", fake.systems[0])
	}
}

func TestGenerate_WrapsFailureAsCallError(t *testing.T) {
	g := &Generator{client: &fakeClient{err: errors.New("overloaded")}, emitter: emit.NewNullEmitter()}

	_, err := g.Generate(context.Background(), "claude-3-sonnet-20240229", []chat.Message{
		{Role: chat.RoleUser, Content: "hi"},
	})

	var callErr *provider.CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("expected *provider.CallError, got %v", err)
	}
	if callErr.Provider != provider.TagAnthropic {
		t.Errorf("expected anthropic tag, got %q", callErr.Provider)
	}
}

func TestGenerate_UnsupportedRoleFailsBeforeVendorCall(t *testing.T) {
	fake := &fakeClient{resp: chat.Assistant("x")}
	g := &Generator{client: fake, emitter: emit.NewNullEmitter()}

	_, err := g.Generate(context.Background(), "claude-3-sonnet-20240229", []chat.Message{
		{Role: "developer", Content: "x"},
	})
	if !errors.Is(err, chat.ErrUnsupportedRole) {
		t.Fatalf("expected ErrUnsupportedRole, got %v", err)
	}
	if len(fake.turns) != 0 {
		t.Error("vendor call should not happen for invalid conversations")
	}
}
