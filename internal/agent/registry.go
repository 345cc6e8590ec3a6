package agent

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"storybuilders/internal/domain"
	"storybuilders/internal/provider"

	"gopkg.in/yaml.v3"
)

// Registry owns the singleton agent instances for the process lifetime.
// It is built once at startup and read-only afterwards.
type Registry struct {
	agents  map[Type]Agent
	configs map[Type]Config
}

var constructors = map[Type]func(Config, domain.Provider) Agent{
	TypeCritique:  func(c Config, p domain.Provider) Agent { return NewCritique(c, p) },
	TypeCraft:     func(c Config, p domain.Provider) Agent { return NewCraft(c, p) },
	TypePrompt:    func(c Config, p domain.Provider) Agent { return NewPrompt(c, p) },
	TypeCoach:     func(c Config, p domain.Provider) Agent { return NewCoach(c, p) },
	TypeRecommend: func(c Config, p domain.Provider) Agent { return NewRecommend(c, p) },
}

// NewRegistry loads the persona YAML file and instantiates one agent per
// configured variant. A missing or unparsable file is a startup error; a
// variant absent from the file is simply unavailable.
func NewRegistry(path string, factory *provider.Factory, logger *slog.Logger) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read agent config %s: %w", path, err)
	}

	var raw map[string]Config
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse agent config %s: %w", path, err)
	}

	r := &Registry{
		agents:  make(map[Type]Agent),
		configs: make(map[Type]Config),
	}

	for _, t := range variantOrder {
		cfg, ok := raw[string(t)]
		if !ok {
			logger.Debug("agent variant not configured", "agent", t)
			continue
		}

		var p domain.Provider
		if cfg.DefaultProvider == "" {
			p, err = factory.Default()
		} else {
			p, err = factory.ForName(cfg.DefaultProvider)
		}
		if err != nil {
			return nil, fmt.Errorf("agent %s: %w", t, err)
		}

		r.configs[t] = cfg
		r.agents[t] = constructors[t](cfg, p)
		logger.Info("agent registered", "agent", t, "provider", p.Name(), "model", cfg.Model)
	}

	return r, nil
}

// SelectByMention extracts a variant tag from mention text, e.g.
// "@critique my story" -> critique. The first variant whose tag appears in
// the text wins, in fixed priority order.
func (r *Registry) SelectByMention(text string) (Type, bool) {
	normalized := strings.TrimPrefix(strings.ToLower(text), "@")

	for _, t := range variantOrder {
		if strings.Contains(normalized, string(t)) {
			return t, true
		}
	}
	return "", false
}

// Get returns the singleton agent for a variant, if it was configured.
func (r *Registry) Get(t Type) (Agent, bool) {
	a, ok := r.agents[t]
	return a, ok
}

// Available lists the instantiated variants in fixed priority order.
func (r *Registry) Available() []Type {
	var out []Type
	for _, t := range variantOrder {
		if _, ok := r.agents[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Describe returns the display name and description for a variant.
func (r *Registry) Describe(t Type) (name, description string, ok bool) {
	cfg, ok := r.configs[t]
	if !ok {
		return "", "", false
	}
	return cfg.Name, cfg.Description, true
}
