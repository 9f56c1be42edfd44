// Package router selects the provider adapter that owns a requested model
// and recovers from provider failures via a single designated fallback.
//
// This is the core state machine of the bot: every LLM call in the system
// goes through Router.Create.
package router

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tawada/discord-AI-bot/chat"
	"github.com/tawada/discord-AI-bot/emit"
	"github.com/tawada/discord-AI-bot/provider"
)

// DefaultTimeout bounds a single provider attempt so a hung vendor cannot
// stall the fallback path.
const DefaultTimeout = 30 * time.Second

// ErrAllProvidersFailed is the terminal error: both the selected provider
// and the designated fallback failed. No third provider is attempted; the
// caller turns this into a fixed user-facing failure message.
var ErrAllProvidersFailed = errors.New("all AI providers failed to respond")

// ErrNoProviders indicates construction without a single enabled provider.
var ErrNoProviders = errors.New("no providers are enabled")

// Config assembles a Router. Generators left nil are disabled: no model
// routes to them and they are never used as a fallback target.
type Config struct {
	// OpenAI, Anthropic, Google are the provider adapters, nil when the
	// corresponding credential is absent.
	OpenAI    provider.Generator
	Anthropic provider.Generator
	Google    provider.Generator

	// OpenAIModels and AnthropicModels are the model identifiers each
	// provider is authoritative for. The sets must be disjoint; membership
	// is tested in openai, anthropic order. Models matching neither set
	// route to the catch-all provider (Google when enabled, otherwise the
	// fallback provider).
	OpenAIModels    []string
	AnthropicModels []string

	// FallbackTag and FallbackModel designate the provider/model pair used
	// to recover from a failed attempt. The fallback always targets this
	// fixed model, never the originally requested model name on a
	// different provider. Empty values pick the first enabled provider in
	// openai, anthropic, google order with its first known model.
	FallbackTag   provider.Tag
	FallbackModel string

	// Timeout bounds each provider attempt. Zero means DefaultTimeout.
	Timeout time.Duration

	// Emitter receives per-attempt outcome events. Nil discards them.
	Emitter emit.Emitter

	// Metrics records attempt counters and latencies. Optional.
	Metrics *Metrics
}

// Default model sets, matching the providers' flagship chat models.
var (
	defaultOpenAIModels    = []string{"gpt-4o"}
	defaultAnthropicModels = []string{"claude-3-sonnet-20240229"}
	defaultGoogleModel     = "gemini-2.0-flash"
)

// Router routes Create calls to provider adapters. The routing table is
// immutable after New, so Router is safe for concurrent use.
type Router struct {
	generators      map[provider.Tag]provider.Generator
	openaiModels    map[string]bool
	anthropicModels map[string]bool
	catchAll        provider.Tag
	fallbackTag     provider.Tag
	fallbackModel   string
	timeout         time.Duration
	emitter         emit.Emitter
	metrics         *Metrics
	tracer          trace.Tracer
}

// New validates the configuration and builds a Router.
func New(cfg Config) (*Router, error) {
	generators := make(map[provider.Tag]provider.Generator)
	if cfg.OpenAI != nil {
		generators[provider.TagOpenAI] = cfg.OpenAI
	}
	if cfg.Anthropic != nil {
		generators[provider.TagAnthropic] = cfg.Anthropic
	}
	if cfg.Google != nil {
		generators[provider.TagGoogle] = cfg.Google
	}
	if len(generators) == 0 {
		return nil, ErrNoProviders
	}

	openaiModels := cfg.OpenAIModels
	if openaiModels == nil {
		openaiModels = defaultOpenAIModels
	}
	anthropicModels := cfg.AnthropicModels
	if anthropicModels == nil {
		anthropicModels = defaultAnthropicModels
	}

	fallbackTag, fallbackModel := cfg.FallbackTag, cfg.FallbackModel
	if fallbackTag == "" {
		fallbackTag, fallbackModel = defaultFallback(generators, openaiModels, anthropicModels)
	}
	if _, ok := generators[fallbackTag]; !ok {
		return nil, fmt.Errorf("fallback provider %q is not enabled", fallbackTag)
	}
	if fallbackModel == "" {
		return nil, fmt.Errorf("fallback model for provider %q is not set", fallbackTag)
	}

	catchAll := provider.TagGoogle
	if _, ok := generators[catchAll]; !ok {
		catchAll = fallbackTag
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	emitter := cfg.Emitter
	if emitter == nil {
		emitter = emit.NewNullEmitter()
	}

	return &Router{
		generators:      generators,
		openaiModels:    toSet(openaiModels),
		anthropicModels: toSet(anthropicModels),
		catchAll:        catchAll,
		fallbackTag:     fallbackTag,
		fallbackModel:   fallbackModel,
		timeout:         timeout,
		emitter:         emitter,
		metrics:         cfg.Metrics,
		tracer:          otel.Tracer("aibot/router"),
	}, nil
}

func defaultFallback(generators map[provider.Tag]provider.Generator, openaiModels, anthropicModels []string) (provider.Tag, string) {
	if _, ok := generators[provider.TagOpenAI]; ok && len(openaiModels) > 0 {
		return provider.TagOpenAI, openaiModels[0]
	}
	if _, ok := generators[provider.TagAnthropic]; ok && len(anthropicModels) > 0 {
		return provider.TagAnthropic, anthropicModels[0]
	}
	return provider.TagGoogle, defaultGoogleModel
}

func toSet(models []string) map[string]bool {
	set := make(map[string]bool, len(models))
	for _, m := range models {
		set[m] = true
	}
	return set
}

// FallbackModel returns the fixed model identifier used for fallback
// attempts. The bridge uses it for auxiliary calls (summaries, probes)
// when no model override is configured.
func (r *Router) FallbackModel() string { return r.fallbackModel }

// Create resolves the owning provider for model, invokes it, and falls
// back once to the designated default provider/model on any failure.
//
// Create never propagates a bare adapter error: the only error it returns
// is ErrAllProvidersFailed (wrapped with both causes). Empty or
// whitespace-only text is a valid response here; content checks belong to
// the caller.
func (r *Router) Create(ctx context.Context, model string, conversation []chat.Message) (chat.Response, error) {
	ctx, span := r.tracer.Start(ctx, "router.create",
		trace.WithAttributes(attribute.String("model", model)))
	defer span.End()

	tag := r.selectProvider(model)
	span.SetAttributes(attribute.String("provider", string(tag)))

	resp, err := r.attempt(ctx, tag, model, conversation)
	if err == nil {
		return resp, nil
	}

	// A conversation the adapter cannot even express is a caller bug,
	// not a provider outage: retrying it on another provider would just
	// mask it. Fail loudly instead.
	if errors.Is(err, chat.ErrUnsupportedRole) {
		span.RecordError(err)
		return chat.Response{}, err
	}

	r.emitter.Emit(emit.Event{
		Msg:      "fallback",
		Provider: string(r.fallbackTag),
		Model:    r.fallbackModel,
		Meta:     map[string]interface{}{"failed_provider": string(tag), "failed_model": model},
	})
	if r.metrics != nil {
		r.metrics.RecordFallback()
	}

	// The fallback uses the fixed default model and the original
	// conversation, unchanged.
	fresp, ferr := r.attempt(ctx, r.fallbackTag, r.fallbackModel, conversation)
	if ferr != nil {
		span.RecordError(ferr)
		return chat.Response{}, fmt.Errorf("%w: %v (fallback: %v)", ErrAllProvidersFailed, err, ferr)
	}
	return fresp, nil
}

// selectProvider tests model membership against each provider's set in
// priority order. Unknown models are attempted on the catch-all provider
// rather than rejected.
func (r *Router) selectProvider(model string) provider.Tag {
	if r.openaiModels[model] {
		if _, ok := r.generators[provider.TagOpenAI]; ok {
			return provider.TagOpenAI
		}
	}
	if r.anthropicModels[model] {
		if _, ok := r.generators[provider.TagAnthropic]; ok {
			return provider.TagAnthropic
		}
	}
	return r.catchAll
}

// attempt runs one bounded provider invocation and records its outcome.
// A panic below this frame (a selection or adapter bug) is converted into
// an error so it rides the same recovery path as any provider failure.
func (r *Router) attempt(ctx context.Context, tag provider.Tag, model string, conversation []chat.Message) (resp chat.Response, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("unexpected failure in %s attempt: %v", tag, p)
			r.recordOutcome(tag, model, time.Duration(0), err)
		}
	}()

	gen, ok := r.generators[tag]
	if !ok {
		err = fmt.Errorf("provider %q is not enabled", tag)
		r.recordOutcome(tag, model, 0, err)
		return chat.Response{}, err
	}

	attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	resp, err = gen.Generate(attemptCtx, model, conversation)
	r.recordOutcome(tag, model, time.Since(start), err)
	return resp, err
}

func (r *Router) recordOutcome(tag provider.Tag, model string, elapsed time.Duration, err error) {
	outcome := "success"
	event := emit.Event{
		Msg:      "provider_success",
		Provider: string(tag),
		Model:    model,
		Meta:     map[string]interface{}{"duration_ms": elapsed.Milliseconds()},
	}
	if err != nil {
		outcome = "failure"
		event.Msg = "provider_failure"
		event.Err = err.Error()
	}

	r.emitter.Emit(event)
	if r.metrics != nil {
		r.metrics.RecordAttempt(tag, outcome, elapsed)
	}
}
