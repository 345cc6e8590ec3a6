package agent

import (
	"context"
)

// Type is the agent-variant tag used for selection and registry lookup.
type Type string

const (
	TypeCritique  Type = "critique"
	TypeCraft     Type = "craft"
	TypePrompt    Type = "prompt"
	TypeCoach     Type = "coach"
	TypeRecommend Type = "recommend"
)

// variantOrder is the fixed priority order used for mention matching and
// capability listings.
var variantOrder = []Type{TypeCritique, TypeCraft, TypePrompt, TypeCoach, TypeRecommend}

// Config is one persona entry from the agents YAML file. It is loaded once
// at startup and never mutated.
type Config struct {
	Name            string `yaml:"name"`
	Description     string `yaml:"description"`
	SystemPrompt    string `yaml:"systemPrompt"`
	DefaultProvider string `yaml:"defaultProvider"`
	Model           string `yaml:"model"`
}

// ThreadMessage is one reconstructed message from the conversation thread.
type ThreadMessage struct {
	Role      string // user | assistant
	UserName  string
	Text      string // bot mentions already stripped
	Timestamp string
}

// FileAttachment is a downloaded text attachment.
type FileAttachment struct {
	Name    string
	Content string
}

// Context is the per-turn input bundle assembled by the mention handler.
// It is built once per turn and treated as immutable by agents.
type Context struct {
	UserID    string
	UserName  string
	ChannelID string
	ThreadTS  string

	// ThreadHistory is chronological and never contains the triggering
	// message itself.
	ThreadHistory []ThreadMessage

	Files []FileAttachment

	// Legacy mirror of the first attachment, kept for callers that only
	// handle a single file.
	FileName    string
	FileContent string
}

// HasFiles reports whether any attachment was materialized for this turn.
func (c *Context) HasFiles() bool {
	return len(c.Files) > 0 || c.FileContent != ""
}

// Agent is one conversational persona. Implementations are stateless and
// safe for concurrent turns.
type Agent interface {
	// ProcessMessage turns one user message plus context into a response.
	// The response is raw model output (or static help text); markup
	// translation happens in the caller.
	ProcessMessage(ctx context.Context, userMessage string, tc *Context) (string, error)

	Name() string
	Description() string
}
