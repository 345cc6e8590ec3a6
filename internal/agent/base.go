package agent

import (
	"context"
	"fmt"
	"strings"

	"storybuilders/internal/domain"
)

const responseMaxTokens = 4096

// greetings short-circuit to help text when they arrive without thread
// context.
var greetings = []string{"hi", "hello", "hey", "help"}

// core holds the pieces every variant shares: the persona config, the bound
// gateway, and the message-assembly helpers. Variants embed it.
type core struct {
	cfg      Config
	provider domain.Provider
}

func (c *core) Name() string        { return c.cfg.Name }
func (c *core) Description() string { return c.cfg.Description }

// buildMessages assembles the ordered conversation: thread history first,
// roles preserved, with the current turn last.
func (c *core) buildMessages(current string, tc *Context) []domain.Message {
	msgs := make([]domain.Message, 0, len(tc.ThreadHistory)+1)
	for _, h := range tc.ThreadHistory {
		msgs = append(msgs, domain.Message{Role: h.Role, Content: h.Text})
	}
	return append(msgs, domain.Message{Role: domain.RoleUser, Content: current})
}

// formatUserMessage renders attachments inline after the message text.
func (c *core) formatUserMessage(message string, tc *Context) string {
	files := tc.Files
	if len(files) == 0 && tc.FileContent != "" {
		files = []FileAttachment{{Name: tc.FileName, Content: tc.FileContent}}
	}

	switch len(files) {
	case 0:
		return message
	case 1:
		return fmt.Sprintf("%s\n\n[Attached file: %s]\n```\n%s\n```", message, files[0].Name, files[0].Content)
	default:
		var b strings.Builder
		fmt.Fprintf(&b, "%s\n\n[Attached files: %d]", message, len(files))
		for i, f := range files {
			fmt.Fprintf(&b, "\n\n%d. %s\n```\n%s\n```", i+1, f.Name, f.Content)
		}
		return b.String()
	}
}

// emptyOrGreeting reports whether the message is too short to act on or is
// a bare greeting.
func (c *core) emptyOrGreeting(message string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(message))
	if len(trimmed) < 10 {
		return true
	}
	for _, g := range greetings {
		if trimmed == g {
			return true
		}
	}
	return false
}

// send forwards the assembled conversation to the gateway. Errors propagate
// unchanged; retry policy lives in the provider layer.
func (c *core) send(ctx context.Context, messages []domain.Message) (string, error) {
	resp, err := c.provider.SendMessage(ctx, messages, domain.ChatOptions{
		Model:        c.cfg.Model,
		SystemPrompt: c.cfg.SystemPrompt,
		MaxTokens:    responseMaxTokens,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
