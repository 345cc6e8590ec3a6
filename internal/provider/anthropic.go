package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"storybuilders/internal/domain"
	"storybuilders/internal/metrics"
)

const (
	anthropicAPIURL     = "https://api.anthropic.com/v1/messages"
	anthropicAPIVersion = "2023-06-01"
	defaultMaxTokens    = 4096
)

// Anthropic implements domain.Provider for the Anthropic Messages API.
// The API takes one combined system instruction, so system-tagged input
// messages are folded into it (see splitSystem).
type Anthropic struct {
	apiKey string
	client *http.Client
	logger *slog.Logger
}

// NewAnthropic creates the Anthropic gateway. Construction fails when the
// credential is absent so a misconfigured provider is caught at startup,
// not on the first turn.
func NewAnthropic(apiKey string, logger *slog.Logger) (*Anthropic, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic provider not configured")
	}
	return &Anthropic{
		apiKey: apiKey,
		client: newHTTPClient(),
		logger: logger,
	}, nil
}

func (a *Anthropic) Name() string { return "anthropic" }
func (a *Anthropic) Ready() bool  { return a.apiKey != "" }

type anthropicRequest struct {
	Model       string           `json:"model"`
	MaxTokens   int              `json:"max_tokens"`
	Temperature float64          `json:"temperature"`
	System      string           `json:"system,omitempty"`
	Messages    []domain.Message `json:"messages"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicResponse struct {
	Model   string             `json:"model"`
	Content []anthropicContent `json:"content"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// splitSystem separates system-tagged messages from the conversation and
// merges them, ahead of the configured system prompt, into one instruction.
func splitSystem(messages []domain.Message, systemPrompt string) (string, []domain.Message) {
	var parts []string
	conversation := make([]domain.Message, 0, len(messages))

	for _, m := range messages {
		if m.Role == domain.RoleSystem {
			if m.Content != "" {
				parts = append(parts, m.Content)
			}
			continue
		}
		conversation = append(conversation, m)
	}
	if systemPrompt != "" {
		parts = append(parts, systemPrompt)
	}

	return strings.Join(parts, "\n\n"), conversation
}

func (a *Anthropic) SendMessage(ctx context.Context, messages []domain.Message, opts domain.ChatOptions) (*domain.ChatResponse, error) {
	system, conversation := splitSystem(messages, opts.SystemPrompt)

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	temperature := opts.Temperature
	if temperature == 0 {
		temperature = 1.0
	}

	body, err := json.Marshal(anthropicRequest{
		Model:       opts.Model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		System:      system,
		Messages:    conversation,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	buildReq := func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicAPIURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", a.apiKey)
		req.Header.Set("anthropic-version", anthropicAPIVersion)
		return req, nil
	}

	metrics.ProviderRequestsTotal.Inc()
	start := time.Now()
	resp, err := doWithRetry(ctx, a.client, buildReq, a.logger)
	metrics.ProviderLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("anthropic request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("anthropic %d: %s", resp.StatusCode, string(respBody))
	}

	var out anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	var text string
	for _, block := range out.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return nil, fmt.Errorf("anthropic: no content returned")
	}

	return &domain.ChatResponse{
		Content: text,
		Model:   out.Model,
		Usage: &domain.Usage{
			InputTokens:  out.Usage.InputTokens,
			OutputTokens: out.Usage.OutputTokens,
		},
	}, nil
}
