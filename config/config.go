// Package config loads the bot's configuration from the environment,
// with an optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the full runtime configuration.
type Config struct {
	// DiscordAPIKey is the bot token. Required.
	DiscordAPIKey string

	// Provider keys. At least one must be set; each missing key disables
	// its provider.
	OpenAIAPIKey    string
	AnthropicAPIKey string
	GeminiAPIKey    string

	// TextModel is the model requested for every reply.
	TextModel string

	// ChannelIDs is the allow-list of Discord channels. Required.
	ChannelIDs []string

	// RolePrompt and RoleName define the bot's persona. Required.
	RolePrompt string
	RoleName   string

	// HistoryShared switches history from per-channel rings to one
	// buffer shared across all channels.
	HistoryShared bool

	// HistorySize is the number of retained turns per ring. Zero means
	// the default.
	HistorySize int

	// MetricsAddr is the listen address for the Prometheus endpoint.
	// Empty disables it.
	MetricsAddr string

	// LogJSON switches log output from text lines to JSON.
	LogJSON bool
}

const defaultTextModel = "gemini-2.0-flash"

// Load reads the configuration from the environment. A .env file in the
// working directory is merged in when present; real environment
// variables win.
func Load() (Config, error) {
	// Absence of a .env file is the normal production case.
	_ = godotenv.Load()

	cfg := Config{
		DiscordAPIKey:   os.Getenv("DISCORD_API_KEY"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		TextModel:       os.Getenv("TEXT_MODEL_NAME"),
		RolePrompt:      os.Getenv("ROLE_PROMPT"),
		RoleName:        os.Getenv("ROLE_NAME"),
		MetricsAddr:     os.Getenv("METRICS_ADDR"),
		HistoryShared:   boolEnv("HISTORY_SHARED"),
		LogJSON:         boolEnv("LOG_JSON"),
	}

	if cfg.TextModel == "" {
		cfg.TextModel = defaultTextModel
	}

	for _, id := range strings.Split(os.Getenv("CHANNEL_IDS"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			cfg.ChannelIDs = append(cfg.ChannelIDs, id)
		}
	}

	if raw := os.Getenv("HISTORY_SIZE"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 0 {
			return Config{}, fmt.Errorf("HISTORY_SIZE must be a non-negative integer, got %q", raw)
		}
		cfg.HistorySize = size
	}

	if missing := cfg.missing(); len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return cfg, nil
}

// missing lists every absent required setting, so a misconfigured
// deployment fails once with the full picture.
func (c Config) missing() []string {
	var missing []string
	if c.DiscordAPIKey == "" {
		missing = append(missing, "DISCORD_API_KEY")
	}
	if len(c.ChannelIDs) == 0 {
		missing = append(missing, "CHANNEL_IDS")
	}
	if c.RolePrompt == "" {
		missing = append(missing, "ROLE_PROMPT")
	}
	if c.RoleName == "" {
		missing = append(missing, "ROLE_NAME")
	}
	if c.OpenAIAPIKey == "" && c.AnthropicAPIKey == "" && c.GeminiAPIKey == "" {
		missing = append(missing, "one of OPENAI_API_KEY, ANTHROPIC_API_KEY, GEMINI_API_KEY")
	}
	return missing
}

func boolEnv(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}
