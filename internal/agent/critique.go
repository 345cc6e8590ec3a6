package agent

import (
	"context"
	"fmt"
	"strings"

	"storybuilders/internal/domain"
)

// Narrative markers used to spot an unsolicited writing sample pasted
// directly into the message. The curly-quote variants are deliberate; the
// list is a product heuristic, not grammar detection.
var narrativeMarkers = []string{`"`, "“", "”", "said", "thought", "walked", "looked", "felt"}

// minAttachmentChars is the smallest trimmed attachment worth critiquing.
const minAttachmentChars = 20

// Critique provides feedback on writing samples, supplied either as an
// attachment or pasted into the message.
type Critique struct {
	core
}

// NewCritique creates the critique agent.
func NewCritique(cfg Config, p domain.Provider) *Critique {
	return &Critique{core{cfg: cfg, provider: p}}
}

func (a *Critique) ProcessMessage(ctx context.Context, userMessage string, tc *Context) (string, error) {
	// A thread with prior turns already establishes intent; gate only on
	// the opening turn.
	if len(tc.ThreadHistory) == 0 {
		if att := firstAttachment(tc); att != nil {
			if len(strings.TrimSpace(att.Content)) < minAttachmentChars {
				return emptyAttachmentNotice(att.Name), nil
			}
		} else if !seemsLikeWritingSample(userMessage) {
			return critiqueHelp, nil
		}
	}

	return a.send(ctx, a.buildMessages(a.formatUserMessage(userMessage, tc), tc))
}

// firstAttachment returns the first materialized attachment, honoring the
// legacy single-file mirror.
func firstAttachment(tc *Context) *FileAttachment {
	if len(tc.Files) > 0 {
		return &tc.Files[0]
	}
	if tc.FileContent != "" {
		return &FileAttachment{Name: tc.FileName, Content: tc.FileContent}
	}
	return nil
}

// seemsLikeWritingSample guesses whether the message itself is a writing
// sample: long enough, and containing at least one narrative marker.
func seemsLikeWritingSample(message string) bool {
	if len(message) < 100 {
		return false
	}
	lower := strings.ToLower(message)
	for _, marker := range narrativeMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func emptyAttachmentNotice(name string) string {
	return fmt.Sprintf("The attached file %q appears to be empty. Please re-upload your writing and mention me again.", name)
}

const critiqueHelp = `Hi! I'm the Critique Agent. I provide thoughtful feedback on your writing.

To get a critique, you can either:
1. Upload your writing as a file attachment and @mention me
2. Paste your writing directly in your message (works best for longer samples)

What would you like me to critique today?`
