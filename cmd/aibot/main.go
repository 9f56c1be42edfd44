// Command aibot runs the Discord AI chat bot: a gateway listener in
// front of the multi-provider LLM router.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/tawada/discord-AI-bot/bridge"
	"github.com/tawada/discord-AI-bot/config"
	"github.com/tawada/discord-AI-bot/discord"
	"github.com/tawada/discord-AI-bot/emit"
	"github.com/tawada/discord-AI-bot/history"
	"github.com/tawada/discord-AI-bot/provider/anthropic"
	"github.com/tawada/discord-AI-bot/provider/google"
	"github.com/tawada/discord-AI-bot/provider/openai"
	"github.com/tawada/discord-AI-bot/router"
	"github.com/tawada/discord-AI-bot/search"
	"github.com/tawada/discord-AI-bot/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "aibot:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	emitter := emit.NewLogEmitter(os.Stdout, cfg.LogJSON)

	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(ctx)
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := router.NewMetrics(registry)

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				emitter.Emit(emit.Event{Msg: "metrics_server_failed", Err: err.Error()})
			}
		}()
	}

	routerCfg := router.Config{
		Emitter: emitter,
		Metrics: metrics,
	}
	if cfg.OpenAIAPIKey != "" {
		routerCfg.OpenAI = openai.New(cfg.OpenAIAPIKey, emitter)
	}
	if cfg.AnthropicAPIKey != "" {
		routerCfg.Anthropic = anthropic.New(cfg.AnthropicAPIKey, emitter)
	}
	if cfg.GeminiAPIKey != "" {
		gen, err := google.New(cfg.GeminiAPIKey, emitter)
		if err != nil {
			return err
		}
		defer gen.Close()
		routerCfg.Google = gen
	}

	r, err := router.New(routerCfg)
	if err != nil {
		return err
	}

	b := bridge.New(
		r,
		router.NewEvaluator(r, emitter),
		search.NewDuckDuckGo(),
		web.NewFetcher(),
		history.NewStore(cfg.HistorySize, cfg.HistoryShared),
		emitter,
		bridge.Options{
			TextModel:  cfg.TextModel,
			RolePrompt: cfg.RolePrompt,
			RoleName:   cfg.RoleName,
		},
	)

	gateway, err := discord.New(cfg.DiscordAPIKey, cfg.ChannelIDs, b, emitter)
	if err != nil {
		return err
	}
	if err := gateway.Start(); err != nil {
		return err
	}
	defer gateway.Stop()

	emitter.Emit(emit.Event{Msg: "bot_started", Model: cfg.TextModel})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	emitter.Emit(emit.Event{Msg: "bot_stopping"})
	return nil
}
