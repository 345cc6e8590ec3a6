package agent

import (
	"context"

	"storybuilders/internal/domain"
)

// Craft prepares writing craft talks on requested topics. Craft requests are
// textual, so attachments are not inlined into the turn.
type Craft struct {
	core
}

// NewCraft creates the craft agent.
func NewCraft(cfg Config, p domain.Provider) *Craft {
	return &Craft{core{cfg: cfg, provider: p}}
}

func (a *Craft) ProcessMessage(ctx context.Context, userMessage string, tc *Context) (string, error) {
	if len(tc.ThreadHistory) == 0 && a.emptyOrGreeting(userMessage) {
		return craftHelp, nil
	}
	return a.send(ctx, a.buildMessages(userMessage, tc))
}

const craftHelp = `Hi! I'm the Craft Agent. I research and create writing craft talks on specific topics.

Ask me to prepare a craft talk on any writing topic, for example:
- "Can you prepare a craft talk on point of view?"
- "Create a presentation about dialogue tags and beats"
- "I need a talk about show vs tell"

I'll provide structured content with examples, exercises, and further reading recommendations.

What craft topic would you like to explore?`
