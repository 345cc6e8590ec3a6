package config

import (
	"log/slog"
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Slack: SlackConfig{
			BotToken:      "xoxb-test",
			AppToken:      "xapp-test",
			SigningSecret: "secret",
		},
		AI: AIConfig{
			AnthropicKey:    "sk-ant-test",
			DefaultProvider: "anthropic",
		},
		AgentsFile: "config/agents.yaml",
		LogLevel:   "info",
	}
}

// --- Validate ---

func TestValidate_ValidConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got: %v", err)
	}
}

func TestValidate_MissingBotToken(t *testing.T) {
	cfg := validConfig()
	cfg.Slack.BotToken = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing bot token")
	}
	if !strings.Contains(err.Error(), "SLACK_BOT_TOKEN") {
		t.Fatalf("error should name the missing variable: %v", err)
	}
}

func TestValidate_MissingAppToken(t *testing.T) {
	cfg := validConfig()
	cfg.Slack.AppToken = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing app token")
	}
	if !strings.Contains(err.Error(), "SLACK_APP_TOKEN") {
		t.Fatalf("error should name the missing variable: %v", err)
	}
}

func TestValidate_NoProviderKey(t *testing.T) {
	cfg := validConfig()
	cfg.AI.AnthropicKey = ""
	cfg.AI.OpenAIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when no provider key is set")
	}
}

func TestValidate_OpenAIKeyAloneIsEnough(t *testing.T) {
	cfg := validConfig()
	cfg.AI.AnthropicKey = ""
	cfg.AI.OpenAIKey = "sk-test"
	cfg.AI.DefaultProvider = "openai"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("openai key alone should validate: %v", err)
	}
}

func TestValidate_UnknownDefaultProvider(t *testing.T) {
	cfg := validConfig()
	cfg.AI.DefaultProvider = "gemini"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown default provider")
	}
}

func TestValidate_ReportsAllErrors(t *testing.T) {
	cfg := &Config{AI: AIConfig{DefaultProvider: "anthropic"}}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"SLACK_BOT_TOKEN", "SLACK_SIGNING_SECRET", "API key"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %q: %v", want, err)
		}
	}
}

// --- FromEnv ---

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-1")
	t.Setenv("DEFAULT_AI_PROVIDER", "")
	t.Setenv("AGENTS_FILE", "")
	t.Setenv("LOG_LEVEL", "")

	cfg := FromEnv()
	if cfg.Slack.BotToken != "xoxb-1" {
		t.Fatalf("bot token: got %q", cfg.Slack.BotToken)
	}
	if cfg.AI.DefaultProvider != "anthropic" {
		t.Fatalf("default provider: got %q", cfg.AI.DefaultProvider)
	}
	if cfg.AgentsFile != "config/agents.yaml" {
		t.Fatalf("agents file: got %q", cfg.AgentsFile)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("log level: got %q", cfg.LogLevel)
	}
}

func TestSlogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"bogus": slog.LevelInfo,
	}
	for in, want := range cases {
		cfg := &Config{LogLevel: in}
		if got := cfg.SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
