package agent

import (
	"context"

	"storybuilders/internal/domain"
)

// Prompt generates creative writing prompts and discusses the results.
type Prompt struct {
	core
}

// NewPrompt creates the prompt agent.
func NewPrompt(cfg Config, p domain.Provider) *Prompt {
	return &Prompt{core{cfg: cfg, provider: p}}
}

func (a *Prompt) ProcessMessage(ctx context.Context, userMessage string, tc *Context) (string, error) {
	if len(tc.ThreadHistory) == 0 && a.emptyOrGreeting(userMessage) {
		return promptHelp, nil
	}
	return a.send(ctx, a.buildMessages(a.formatUserMessage(userMessage, tc), tc))
}

const promptHelp = `Hi! I'm the Prompt Agent. I generate creative writing prompts and discuss your writing.

You can:
1. Ask me for a writing prompt (e.g., "Give me a prompt" or "Prompt for a mystery story")
2. Share what you wrote from a prompt and discuss it with me
3. Ask for specific types of prompts (character-based, setting-based, etc.)

What would you like to do today?`
