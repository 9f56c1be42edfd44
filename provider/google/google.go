// Package google provides the Generator adapter for Google's Gemini API.
package google

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/tawada/discord-AI-bot/chat"
	"github.com/tawada/discord-AI-bot/emit"
	"github.com/tawada/discord-AI-bot/provider"
)

// Generator implements provider.Generator for Gemini models.
//
// Gemini takes system turns via the model's SystemInstruction; remaining
// turns are flattened into content parts for a single generate call.
type Generator struct {
	client  contentClient
	emitter emit.Emitter
}

type contentClient interface {
	create(ctx context.Context, model, system string, messages []chat.Message) (chat.Response, error)
}

// New creates a Google Generator. The genai client is dialed once here
// and reused for every call; Close releases it.
func New(apiKey string, emitter emit.Emitter) (*Generator, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Generator{
		client:  &sdkClient{client: client},
		emitter: emitter,
	}, nil
}

// Close releases the underlying genai client. Safe to call on a
// Generator whose client was substituted in tests.
func (g *Generator) Close() error {
	if c, ok := g.client.(*sdkClient); ok {
		return c.client.Close()
	}
	return nil
}

// Tag implements provider.Generator.
func (g *Generator) Tag() provider.Tag { return provider.TagGoogle }

// Generate implements provider.Generator.
func (g *Generator) Generate(ctx context.Context, model string, messages []chat.Message) (chat.Response, error) {
	system, conversation, err := chat.SplitSystem(messages)
	if err != nil {
		return chat.Response{}, err
	}

	provider.EmitRequest(g.emitter, provider.TagGoogle, model, messages)

	resp, err := g.client.create(ctx, model, system, conversation)
	if err != nil {
		return chat.Response{}, provider.NewCallError(provider.TagGoogle, err)
	}

	provider.EmitResponse(g.emitter, provider.TagGoogle, model, resp)
	return resp, nil
}

type sdkClient struct {
	client *genai.Client
}

func (c *sdkClient) create(ctx context.Context, model, system string, messages []chat.Message) (chat.Response, error) {
	genModel := c.client.GenerativeModel(model)
	if system != "" {
		genModel.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(system)},
		}
	}

	parts := make([]genai.Part, 0, len(messages))
	for _, msg := range messages {
		if msg.Content == "" {
			continue
		}
		parts = append(parts, genai.Text(msg.Content))
	}

	resp, err := genModel.GenerateContent(ctx, parts...)
	if err != nil {
		return chat.Response{}, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return chat.Response{}, fmt.Errorf("%w: no candidates", provider.ErrEmptyResponse)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 && len(resp.Candidates[0].Content.Parts) == 0 {
		return chat.Response{}, fmt.Errorf("%w: candidate had no parts (finish reason %v)",
			provider.ErrEmptyResponse, resp.Candidates[0].FinishReason)
	}

	return chat.Assistant(sb.String()), nil
}
