// Package openai provides the Generator adapter for OpenAI's
// chat-completions API.
package openai

import (
	"context"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/tawada/discord-AI-bot/chat"
	"github.com/tawada/discord-AI-bot/emit"
	"github.com/tawada/discord-AI-bot/provider"
)

// Generator implements provider.Generator for OpenAI models (gpt-4o and
// friends). OpenAI accepts system turns inline, so translation is an
// identity mapping plus role validation.
//
// The adapter performs exactly one vendor call per Generate; fallback and
// retry policy live in the router.
type Generator struct {
	client  completionClient
	emitter emit.Emitter
}

// completionClient is the seam between the adapter and the vendor SDK,
// kept narrow so tests can substitute a fake.
type completionClient interface {
	create(ctx context.Context, model string, messages []chat.Message) (chat.Response, error)
}

// New creates an OpenAI Generator. A nil emitter disables request/response
// logging.
func New(apiKey string, emitter emit.Emitter) *Generator {
	return &Generator{
		client:  &sdkClient{client: sdk.NewClient(option.WithAPIKey(apiKey))},
		emitter: emitter,
	}
}

// Tag implements provider.Generator.
func (g *Generator) Tag() provider.Tag { return provider.TagOpenAI }

// Generate implements provider.Generator.
func (g *Generator) Generate(ctx context.Context, model string, messages []chat.Message) (chat.Response, error) {
	if err := chat.ValidateRoles(messages); err != nil {
		return chat.Response{}, err
	}

	provider.EmitRequest(g.emitter, provider.TagOpenAI, model, messages)

	resp, err := g.client.create(ctx, model, messages)
	if err != nil {
		return chat.Response{}, provider.NewCallError(provider.TagOpenAI, err)
	}

	provider.EmitResponse(g.emitter, provider.TagOpenAI, model, resp)
	return resp, nil
}

type sdkClient struct {
	client sdk.Client
}

func (c *sdkClient) create(ctx context.Context, model string, messages []chat.Message) (chat.Response, error) {
	params := make([]sdk.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case chat.RoleSystem:
			params = append(params, sdk.SystemMessage(msg.Content))
		case chat.RoleAssistant:
			params = append(params, sdk.AssistantMessage(msg.Content))
		default:
			params = append(params, sdk.UserMessage(msg.Content))
		}
	}

	completion, err := c.client.Chat.Completions.New(ctx, sdk.ChatCompletionNewParams{
		Model:    shared.ChatModel(model),
		Messages: params,
	})
	if err != nil {
		return chat.Response{}, err
	}
	if len(completion.Choices) == 0 {
		return chat.Response{}, provider.ErrEmptyResponse
	}

	return chat.Assistant(completion.Choices[0].Message.Content), nil
}
