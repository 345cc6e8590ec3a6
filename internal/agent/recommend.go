package agent

import (
	"context"

	"storybuilders/internal/domain"
)

// Recommend suggests books, stories and authors based on what the writer
// has enjoyed.
type Recommend struct {
	core
}

// NewRecommend creates the recommendations agent.
func NewRecommend(cfg Config, p domain.Provider) *Recommend {
	return &Recommend{core{cfg: cfg, provider: p}}
}

func (a *Recommend) ProcessMessage(ctx context.Context, userMessage string, tc *Context) (string, error) {
	if len(tc.ThreadHistory) == 0 && a.emptyOrGreeting(userMessage) {
		return recommendHelp, nil
	}
	return a.send(ctx, a.buildMessages(a.formatUserMessage(userMessage, tc), tc))
}

const recommendHelp = `Hi! I'm your Reading Recommendations agent. I help writers discover books, stories, and authors based on what you've enjoyed.

Share with me:
1. Books or stories you loved - tell me what resonated with you
2. Specific elements you're looking for (themes, style, voice, etc.)
3. Authors whose work you admire
4. Literary magazines or short fiction you want to explore

I'll recommend similar works and explain what makes them worth reading, especially from a writer's perspective.

What are you in the mood to discover?`
