package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"storybuilders/internal/domain"
	"storybuilders/internal/metrics"
)

const openaiAPIURL = "https://api.openai.com/v1/chat/completions"

// OpenAI implements domain.Provider for the Chat Completions API. Unlike
// Anthropic, the API takes the system instruction as an explicit message
// interleaved in the list (see coalesceSystem).
type OpenAI struct {
	apiKey string
	client *http.Client
	logger *slog.Logger
}

// NewOpenAI creates the OpenAI gateway, failing when the credential is absent.
func NewOpenAI(apiKey string, logger *slog.Logger) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai provider not configured")
	}
	return &OpenAI{
		apiKey: apiKey,
		client: newHTTPClient(),
		logger: logger,
	}, nil
}

func (o *OpenAI) Name() string { return "openai" }
func (o *OpenAI) Ready() bool  { return o.apiKey != "" }

type openaiRequest struct {
	Model       string           `json:"model"`
	Messages    []domain.Message `json:"messages"`
	MaxTokens   int              `json:"max_tokens,omitempty"`
	Temperature float64          `json:"temperature"`
}

type openaiResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// coalesceSystem folds every system-tagged input into one leading system
// message, starting from the configured system prompt, and keeps the rest
// of the conversation in order.
func coalesceSystem(messages []domain.Message, systemPrompt string) []domain.Message {
	system := systemPrompt
	conversation := make([]domain.Message, 0, len(messages)+1)

	for _, m := range messages {
		if m.Role == domain.RoleSystem {
			if m.Content == "" {
				continue
			}
			if system == "" {
				system = m.Content
			} else {
				system = system + "\n\n" + m.Content
			}
			continue
		}
		conversation = append(conversation, m)
	}

	if system == "" {
		return conversation
	}
	out := make([]domain.Message, 0, len(conversation)+1)
	out = append(out, domain.Message{Role: domain.RoleSystem, Content: system})
	return append(out, conversation...)
}

func (o *OpenAI) SendMessage(ctx context.Context, messages []domain.Message, opts domain.ChatOptions) (*domain.ChatResponse, error) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	temperature := opts.Temperature
	if temperature == 0 {
		temperature = 1.0
	}

	body, err := json.Marshal(openaiRequest{
		Model:       opts.Model,
		Messages:    coalesceSystem(messages, opts.SystemPrompt),
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	buildReq := func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, openaiAPIURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
		return req, nil
	}

	metrics.ProviderRequestsTotal.Inc()
	start := time.Now()
	resp, err := doWithRetry(ctx, o.client, buildReq, o.logger)
	metrics.ProviderLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("openai %d: %s", resp.StatusCode, string(respBody))
	}

	var out openaiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("openai: no content returned")
	}

	result := &domain.ChatResponse{
		Content: out.Choices[0].Message.Content,
		Model:   out.Model,
	}
	if out.Usage != nil {
		result.Usage = &domain.Usage{
			InputTokens:  out.Usage.PromptTokens,
			OutputTokens: out.Usage.CompletionTokens,
		}
	}
	return result, nil
}
