package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Config is the root configuration for Story Builders. All values come from
// the environment; agent personas live in a separate YAML file (AgentsFile).
type Config struct {
	Slack SlackConfig
	AI    AIConfig

	// AgentsFile is the path to the agent persona YAML file.
	AgentsFile string

	// MetricsAddr, when non-empty, serves Prometheus-format metrics on that
	// address (e.g. ":9090").
	MetricsAddr string

	LogLevel string // debug | info | warn | error
}

// SlackConfig holds the chat platform credentials.
type SlackConfig struct {
	BotToken      string
	AppToken      string // required for Socket Mode
	SigningSecret string
}

// AIConfig holds the LLM provider credentials. At least one key must be set.
type AIConfig struct {
	AnthropicKey    string
	OpenAIKey       string
	DefaultProvider string // "anthropic" | "openai"
}

// FromEnv builds a Config from environment variables.
func FromEnv() *Config {
	cfg := &Config{
		Slack: SlackConfig{
			BotToken:      os.Getenv("SLACK_BOT_TOKEN"),
			AppToken:      os.Getenv("SLACK_APP_TOKEN"),
			SigningSecret: os.Getenv("SLACK_SIGNING_SECRET"),
		},
		AI: AIConfig{
			AnthropicKey:    os.Getenv("ANTHROPIC_API_KEY"),
			OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
			DefaultProvider: os.Getenv("DEFAULT_AI_PROVIDER"),
		},
		AgentsFile:  os.Getenv("AGENTS_FILE"),
		MetricsAddr: os.Getenv("METRICS_ADDR"),
		LogLevel:    os.Getenv("LOG_LEVEL"),
	}
	if cfg.AI.DefaultProvider == "" {
		cfg.AI.DefaultProvider = "anthropic"
	}
	if cfg.AgentsFile == "" {
		cfg.AgentsFile = "config/agents.yaml"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg
}

// Validate checks that all required settings are present. Every missing item
// is reported, not just the first one.
func (c *Config) Validate() error {
	var errs []string

	if c.Slack.BotToken == "" {
		errs = append(errs, "SLACK_BOT_TOKEN is required")
	}
	if c.Slack.AppToken == "" {
		errs = append(errs, "SLACK_APP_TOKEN is required")
	}
	if c.Slack.SigningSecret == "" {
		errs = append(errs, "SLACK_SIGNING_SECRET is required")
	}
	if c.AI.AnthropicKey == "" && c.AI.OpenAIKey == "" {
		errs = append(errs, "at least one AI provider API key is required (ANTHROPIC_API_KEY or OPENAI_API_KEY)")
	}
	switch c.AI.DefaultProvider {
	case "anthropic", "openai":
	default:
		errs = append(errs, fmt.Sprintf("DEFAULT_AI_PROVIDER must be anthropic or openai, got %q", c.AI.DefaultProvider))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// SlogLevel maps the configured log level to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
