package router

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/tawada/discord-AI-bot/chat"
	"github.com/tawada/discord-AI-bot/provider"
)

func newTestRouter(t *testing.T, cfg Config) *Router {
	t.Helper()
	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestCreate_RoutesByModelSet(t *testing.T) {
	openai := &provider.MockGenerator{Provider: provider.TagOpenAI, Responses: []chat.Response{chat.Assistant("from openai")}}
	anthropic := &provider.MockGenerator{Provider: provider.TagAnthropic, Responses: []chat.Response{chat.Assistant("from anthropic")}}
	google := &provider.MockGenerator{Provider: provider.TagGoogle, Responses: []chat.Response{chat.Assistant("from google")}}

	r := newTestRouter(t, Config{OpenAI: openai, Anthropic: anthropic, Google: google})

	tests := []struct {
		model string
		want  *provider.MockGenerator
		text  string
	}{
		{"gpt-4o", openai, "from openai"},
		{"claude-3-sonnet-20240229", anthropic, "from anthropic"},
		{"gemini-2.0-flash", google, "from google"},
		{"some-unknown-model", google, "from google"},
	}
	conv := []chat.Message{{Role: chat.RoleUser, Content: "hi"}}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			before := tt.want.CallCount()
			resp, err := r.Create(context.Background(), tt.model, conv)
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if resp.Text != tt.text {
				t.Errorf("expected %q, got %q", tt.text, resp.Text)
			}
			if tt.want.CallCount() != before+1 {
				t.Errorf("expected exactly one call to the owning provider")
			}
		})
	}
}

func TestCreate_FallsBackOnceWithFixedModel(t *testing.T) {
	anthropic := &provider.MockGenerator{Provider: provider.TagAnthropic, Err: errors.New("overloaded")}
	openai := &provider.MockGenerator{Provider: provider.TagOpenAI, Responses: []chat.Response{chat.Assistant("rescued")}}

	r := newTestRouter(t, Config{
		OpenAI:        openai,
		Anthropic:     anthropic,
		FallbackTag:   provider.TagOpenAI,
		FallbackModel: "gpt-4o",
	})

	conv := []chat.Message{
		{Role: chat.RoleSystem, Content: "persona"},
		{Role: chat.RoleUser, Content: "question"},
	}
	resp, err := r.Create(context.Background(), "claude-3-sonnet-20240229", conv)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if resp.Text != "rescued" {
		t.Errorf("expected fallback response, got %q", resp.Text)
	}

	if anthropic.CallCount() != 1 {
		t.Errorf("selected provider should be attempted once, got %d", anthropic.CallCount())
	}
	if openai.CallCount() != 1 {
		t.Errorf("fallback provider should be attempted once, got %d", openai.CallCount())
	}

	last, ok := openai.LastCall()
	if !ok {
		t.Fatal("expected a recorded fallback call")
	}
	if last.Model != "gpt-4o" {
		t.Errorf("fallback must target the fixed default model, got %q", last.Model)
	}
	if len(last.Messages) != len(conv) || last.Messages[1].Content != "question" {
		t.Errorf("fallback must receive the original conversation, got %+v", last.Messages)
	}
}

func TestCreate_FallbackRunsEvenWhenSelectedIsFallback(t *testing.T) {
	openai := &provider.MockGenerator{Provider: provider.TagOpenAI, Err: errors.New("rate limited")}

	r := newTestRouter(t, Config{
		OpenAI:        openai,
		FallbackTag:   provider.TagOpenAI,
		FallbackModel: "gpt-4o",
	})

	_, err := r.Create(context.Background(), "gpt-4o", []chat.Message{{Role: chat.RoleUser, Content: "hi"}})
	if !errors.Is(err, ErrAllProvidersFailed) {
		t.Fatalf("expected ErrAllProvidersFailed, got %v", err)
	}
	// Selection picked openai, fallback retried openai: exactly two attempts.
	if openai.CallCount() != 2 {
		t.Errorf("expected 2 attempts, got %d", openai.CallCount())
	}
}

func TestCreate_DoubleFailureIsTerminal(t *testing.T) {
	anthropic := &provider.MockGenerator{Provider: provider.TagAnthropic, Err: errors.New("down")}
	openai := &provider.MockGenerator{Provider: provider.TagOpenAI, Err: errors.New("also down")}
	google := &provider.MockGenerator{Provider: provider.TagGoogle, Responses: []chat.Response{chat.Assistant("never asked")}}

	r := newTestRouter(t, Config{
		OpenAI:        openai,
		Anthropic:     anthropic,
		Google:        google,
		FallbackTag:   provider.TagOpenAI,
		FallbackModel: "gpt-4o",
	})

	_, err := r.Create(context.Background(), "claude-3-sonnet-20240229", []chat.Message{{Role: chat.RoleUser, Content: "hi"}})
	if !errors.Is(err, ErrAllProvidersFailed) {
		t.Fatalf("expected ErrAllProvidersFailed, got %v", err)
	}
	if google.CallCount() != 0 {
		t.Error("no third provider may be attempted after the fallback fails")
	}
}

func TestCreate_DisabledProviderNeverSelected(t *testing.T) {
	google := &provider.MockGenerator{Provider: provider.TagGoogle, Responses: []chat.Response{chat.Assistant("catch-all")}}

	// Anthropic is disabled, so its models route to the catch-all.
	r := newTestRouter(t, Config{Google: google})

	resp, err := r.Create(context.Background(), "claude-3-sonnet-20240229", []chat.Message{{Role: chat.RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if resp.Text != "catch-all" {
		t.Errorf("expected catch-all response, got %q", resp.Text)
	}
}

func TestCreate_CatchAllWithoutGoogleIsFallbackProvider(t *testing.T) {
	openai := &provider.MockGenerator{Provider: provider.TagOpenAI, Responses: []chat.Response{chat.Assistant("ok")}}

	r := newTestRouter(t, Config{OpenAI: openai})

	if _, err := r.Create(context.Background(), "gemini-2.0-flash", []chat.Message{{Role: chat.RoleUser, Content: "hi"}}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if openai.CallCount() != 1 {
		t.Errorf("expected the fallback provider to absorb unknown models, got %d calls", openai.CallCount())
	}
	if last, _ := openai.LastCall(); last.Model != "gemini-2.0-flash" {
		t.Errorf("first attempt keeps the requested model name, got %q", last.Model)
	}
}

func TestCreate_UnsupportedRoleSkipsFallback(t *testing.T) {
	anthropic := &provider.MockGenerator{
		Provider: provider.TagAnthropic,
		Err:      fmt.Errorf("%w: %q", chat.ErrUnsupportedRole, "developer"),
	}
	openai := &provider.MockGenerator{Provider: provider.TagOpenAI, Responses: []chat.Response{chat.Assistant("never")}}

	r := newTestRouter(t, Config{
		OpenAI:        openai,
		Anthropic:     anthropic,
		FallbackTag:   provider.TagOpenAI,
		FallbackModel: "gpt-4o",
	})

	_, err := r.Create(context.Background(), "claude-3-sonnet-20240229", []chat.Message{
		{Role: "developer", Content: "x"},
	})
	if !errors.Is(err, chat.ErrUnsupportedRole) {
		t.Fatalf("a caller bug must surface as itself, got %v", err)
	}
	if errors.Is(err, ErrAllProvidersFailed) {
		t.Error("an invalid conversation is not a provider outage")
	}
	if openai.CallCount() != 0 {
		t.Error("an invalid conversation must not be retried on the fallback provider")
	}
}

type panickingGenerator struct{}

func (panickingGenerator) Generate(context.Context, string, []chat.Message) (chat.Response, error) {
	panic("adapter bug")
}

func (panickingGenerator) Tag() provider.Tag { return provider.TagAnthropic }

func TestCreate_PanicRidesTheFallbackPath(t *testing.T) {
	openai := &provider.MockGenerator{Provider: provider.TagOpenAI, Responses: []chat.Response{chat.Assistant("recovered")}}

	r := newTestRouter(t, Config{
		OpenAI:        openai,
		Anthropic:     panickingGenerator{},
		FallbackTag:   provider.TagOpenAI,
		FallbackModel: "gpt-4o",
	})

	resp, err := r.Create(context.Background(), "claude-3-sonnet-20240229", []chat.Message{{Role: chat.RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("panic should be contained and recovered via fallback: %v", err)
	}
	if resp.Text != "recovered" {
		t.Errorf("expected fallback response, got %q", resp.Text)
	}
}

func TestNew_Validation(t *testing.T) {
	t.Run("no providers", func(t *testing.T) {
		if _, err := New(Config{}); !errors.Is(err, ErrNoProviders) {
			t.Errorf("expected ErrNoProviders, got %v", err)
		}
	})

	t.Run("fallback to disabled provider", func(t *testing.T) {
		_, err := New(Config{
			Google:        &provider.MockGenerator{Provider: provider.TagGoogle},
			FallbackTag:   provider.TagOpenAI,
			FallbackModel: "gpt-4o",
		})
		if err == nil {
			t.Error("expected an error for a fallback pointing at a disabled provider")
		}
	})

	t.Run("default fallback picks first enabled", func(t *testing.T) {
		r := newTestRouter(t, Config{
			Anthropic: &provider.MockGenerator{Provider: provider.TagAnthropic},
		})
		if r.fallbackTag != provider.TagAnthropic {
			t.Errorf("expected anthropic fallback, got %q", r.fallbackTag)
		}
		if r.fallbackModel != "claude-3-sonnet-20240229" {
			t.Errorf("unexpected fallback model %q", r.fallbackModel)
		}
	})
}
