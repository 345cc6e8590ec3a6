package agent

import (
	"context"

	"storybuilders/internal/domain"
)

// Coach celebrates wins and supports the writer's ongoing practice.
type Coach struct {
	core
}

// NewCoach creates the coach agent.
func NewCoach(cfg Config, p domain.Provider) *Coach {
	return &Coach{core{cfg: cfg, provider: p}}
}

func (a *Coach) ProcessMessage(ctx context.Context, userMessage string, tc *Context) (string, error) {
	if len(tc.ThreadHistory) == 0 && a.emptyOrGreeting(userMessage) {
		return coachHelp, nil
	}
	return a.send(ctx, a.buildMessages(a.formatUserMessage(userMessage, tc), tc))
}

const coachHelp = `Hi! I'm your Writing Coach. I'm here to celebrate your wins and support your writing journey.

Share with me:
1. Writing goals you've hit (word counts, daily streaks, habits)
2. Submissions or publications (acceptances AND rejections - they're all progress!)
3. Creative breakthroughs (finished drafts, solved plot problems, character insights)
4. Personal growth moments (trying new techniques, overcoming fears)

What would you like to celebrate or talk about today?`
