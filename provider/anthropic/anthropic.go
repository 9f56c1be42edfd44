// Package anthropic provides the Generator adapter for Anthropic's
// messages API.
package anthropic

import (
	"context"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/tawada/discord-AI-bot/chat"
	"github.com/tawada/discord-AI-bot/emit"
	"github.com/tawada/discord-AI-bot/provider"
)

// maxTokens bounds reply length on the messages API, which requires an
// explicit limit on every call.
const maxTokens = 1024

// Generator implements provider.Generator for Claude models.
//
// Anthropic takes the system prompt as a separate request field and
// restricts the message list to user/assistant roles, so the conversation
// goes through chat.SplitSystem before the vendor call.
type Generator struct {
	client  messageClient
	emitter emit.Emitter
}

type messageClient interface {
	create(ctx context.Context, model, system string, messages []chat.Message) (chat.Response, error)
}

// New creates an Anthropic Generator.
func New(apiKey string, emitter emit.Emitter) *Generator {
	return &Generator{
		client:  &sdkClient{client: sdk.NewClient(option.WithAPIKey(apiKey))},
		emitter: emitter,
	}
}

// Tag implements provider.Generator.
func (g *Generator) Tag() provider.Tag { return provider.TagAnthropic }

// Generate implements provider.Generator.
func (g *Generator) Generate(ctx context.Context, model string, messages []chat.Message) (chat.Response, error) {
	system, conversation, err := chat.SplitSystem(messages)
	if err != nil {
		return chat.Response{}, err
	}

	provider.EmitRequest(g.emitter, provider.TagAnthropic, model, messages)

	resp, err := g.client.create(ctx, model, system, conversation)
	if err != nil {
		return chat.Response{}, provider.NewCallError(provider.TagAnthropic, err)
	}

	provider.EmitResponse(g.emitter, provider.TagAnthropic, model, resp)
	return resp, nil
}

type sdkClient struct {
	client sdk.Client
}

func (c *sdkClient) create(ctx context.Context, model, system string, messages []chat.Message) (chat.Response, error) {
	params := make([]sdk.MessageParam, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == chat.RoleAssistant {
			params = append(params, sdk.NewAssistantMessage(sdk.NewTextBlock(msg.Content)))
		} else {
			params = append(params, sdk.NewUserMessage(sdk.NewTextBlock(msg.Content)))
		}
	}

	req := sdk.MessageNewParams{
		Model:     sdk.Model(model),
		MaxTokens: maxTokens,
		Messages:  params,
	}
	if system != "" {
		req.System = []sdk.TextBlockParam{{Text: system}}
	}

	message, err := c.client.Messages.New(ctx, req)
	if err != nil {
		return chat.Response{}, err
	}

	var text string
	for _, block := range message.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" && len(message.Content) == 0 {
		return chat.Response{}, provider.ErrEmptyResponse
	}

	return chat.Assistant(text), nil
}
