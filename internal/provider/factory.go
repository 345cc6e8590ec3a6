package provider

import (
	"fmt"
	"log/slog"
	"sync"

	"storybuilders/internal/config"
	"storybuilders/internal/domain"
)

// Factory constructs and caches the LLM gateways. Each gateway is built at
// most once and shared by every agent bound to it.
type Factory struct {
	ai     config.AIConfig
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string]domain.Provider
}

// NewFactory creates a provider factory.
func NewFactory(ai config.AIConfig, logger *slog.Logger) *Factory {
	return &Factory{
		ai:     ai,
		logger: logger,
		cache:  make(map[string]domain.Provider),
	}
}

// ForName returns the gateway for "anthropic" or "openai". Construction
// fails when the backend's credential is absent.
func (f *Factory) ForName(name string) (domain.Provider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if p, ok := f.cache[name]; ok {
		return p, nil
	}

	var (
		p   domain.Provider
		err error
	)
	switch name {
	case "anthropic":
		p, err = NewAnthropic(f.ai.AnthropicKey, f.logger)
	case "openai":
		p, err = NewOpenAI(f.ai.OpenAIKey, f.logger)
	default:
		return nil, fmt.Errorf("unknown AI provider: %s", name)
	}
	if err != nil {
		return nil, err
	}

	f.cache[name] = p
	return p, nil
}

// Default returns the gateway for the configured default provider.
func (f *Factory) Default() (domain.Provider, error) {
	return f.ForName(f.ai.DefaultProvider)
}
