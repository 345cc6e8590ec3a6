package channel

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"storybuilders/internal/agent"
	"storybuilders/internal/metrics"

	"github.com/slack-go/slack"
)

const (
	reactionWorking = "eyes"
	reactionDone    = "white_check_mark"

	// processingSentinel is the placeholder the bot posts while working;
	// it is never part of reconstructed thread history.
	processingSentinel = "_Processing..._"

	threadHistoryLimit = 100
	maxAttachmentBytes = 1 << 20 // 1 MiB

	fallbackUserName = "Writer"
)

var (
	mentionTokenRe = regexp.MustCompile(`<@[A-Z0-9]+>`)
	textFileRe     = regexp.MustCompile(`(?i)\.(txt|md|tex|rtf|doc|docx|markdown|text)$`)
)

// MentionEvent is the normalized inbound mention, decoupled from the
// slackevents wire shape.
type MentionEvent struct {
	Text            string
	User            string
	Channel         string
	Timestamp       string
	ThreadTimestamp string // empty when the mention is not inside a thread
}

// Handler runs the mention pipeline: agent selection, context assembly,
// dispatch, markup translation, reply, and status reactions. One Handler
// serves all turns; each turn is independent.
type Handler struct {
	api      api
	registry *agent.Registry
	logger   *slog.Logger
}

// NewHandler creates a mention handler.
func NewHandler(a api, registry *agent.Registry, logger *slog.Logger) *Handler {
	return &Handler{api: a, registry: registry, logger: logger}
}

// Handle processes one mention event start to finish. Any failure past
// agent selection ends with an in-thread error reply; the thread survives
// for the user to retry.
func (h *Handler) Handle(ctx context.Context, ev MentionEvent) {
	metrics.TurnsTotal.Inc()

	if err := h.handleMention(ctx, ev); err != nil {
		metrics.TurnErrorsTotal.Inc()
		h.logger.Error("mention handling failed", "channel", ev.Channel, "ts", ev.Timestamp, "err", err)

		threadTS := ev.ThreadTimestamp
		if threadTS == "" {
			threadTS = ev.Timestamp
		}
		advisory(h.logger, "error reply", func() error {
			_, _, err := h.api.PostMessageContext(ctx, ev.Channel,
				slack.MsgOptionText(fmt.Sprintf("Sorry, I encountered an error: %s", err.Error()), false),
				slack.MsgOptionTS(threadTS))
			return err
		})
	}
}

func (h *Handler) handleMention(ctx context.Context, ev MentionEvent) error {
	text := StripMentions(ev.Text)

	agentType, ok := h.registry.SelectByMention(text)
	if !ok {
		agentType = InferAgent(text)
		h.logger.Debug("agent inferred from keywords", "agent", agentType)
	}

	ag, ok := h.registry.Get(agentType)
	if !ok {
		// Terminal, but not an error: tell the user what is available.
		threadTS := ev.ThreadTimestamp
		if threadTS == "" {
			threadTS = ev.Timestamp
		}
		_, _, err := h.api.PostMessageContext(ctx, ev.Channel,
			slack.MsgOptionText(h.availableAgentsMessage(), false),
			slack.MsgOptionTS(threadTS))
		return err
	}

	tc := h.assembleContext(ctx, ev)

	ref := slack.NewRefToMessage(ev.Channel, ev.Timestamp)
	advisory(h.logger, "add working reaction", func() error {
		return h.api.AddReactionContext(ctx, reactionWorking, ref)
	})

	response, err := ag.ProcessMessage(ctx, text, tc)
	if err != nil {
		advisory(h.logger, "remove working reaction", func() error {
			return h.api.RemoveReactionContext(ctx, reactionWorking, ref)
		})
		return err
	}

	formatted := FormatForSlack(response)

	if _, _, err := h.api.PostMessageContext(ctx, ev.Channel,
		slack.MsgOptionText(formatted, false),
		slack.MsgOptionTS(tc.ThreadTS)); err != nil {
		advisory(h.logger, "remove working reaction", func() error {
			return h.api.RemoveReactionContext(ctx, reactionWorking, ref)
		})
		return fmt.Errorf("post reply: %w", err)
	}

	advisory(h.logger, "remove working reaction", func() error {
		return h.api.RemoveReactionContext(ctx, reactionWorking, ref)
	})
	advisory(h.logger, "add done reaction", func() error {
		return h.api.AddReactionContext(ctx, reactionDone, ref)
	})

	return nil
}

// assembleContext builds the per-turn input bundle. Partial failures
// (name lookup, history fetch, file download) degrade to defaults and are
// logged; they never abort the turn.
func (h *Handler) assembleContext(ctx context.Context, ev MentionEvent) *agent.Context {
	threadTS := ev.ThreadTimestamp
	if threadTS == "" {
		threadTS = ev.Timestamp
	}

	tc := &agent.Context{
		UserID:    ev.User,
		UserName:  h.userName(ctx, ev.User),
		ChannelID: ev.Channel,
		ThreadTS:  threadTS,
	}

	if ev.ThreadTimestamp != "" {
		tc.ThreadHistory = h.threadHistory(ctx, ev.Channel, ev.ThreadTimestamp, ev.Timestamp)
	}

	files := h.downloadAttachments(ctx, ev)
	if len(files) > 0 {
		tc.Files = files
		// Legacy single-file mirror.
		tc.FileName = files[0].Name
		tc.FileContent = files[0].Content
	}

	return tc
}

// userName resolves a display name, falling back to a generic label.
func (h *Handler) userName(ctx context.Context, userID string) string {
	user, err := h.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		h.logger.Warn("user lookup failed", "user", userID, "err", err)
		return fallbackUserName
	}
	if user.Profile.DisplayName != "" {
		return user.Profile.DisplayName
	}
	if user.Name != "" {
		return user.Name
	}
	return fallbackUserName
}

// threadHistory reconstructs prior turns from the thread. The triggering
// message and the processing placeholder are excluded; bot messages become
// assistant turns. The name cache lives only for this fetch.
func (h *Handler) threadHistory(ctx context.Context, channelID, threadTS, currentTS string) []agent.ThreadMessage {
	msgs, _, _, err := h.api.GetConversationRepliesContext(ctx, &slack.GetConversationRepliesParameters{
		ChannelID: channelID,
		Timestamp: threadTS,
		Limit:     threadHistoryLimit,
	})
	if err != nil {
		h.logger.Warn("thread history fetch failed", "channel", channelID, "thread", threadTS, "err", err)
		return nil
	}

	nameCache := make(map[string]string)
	var history []agent.ThreadMessage

	for _, msg := range msgs {
		if msg.Timestamp == currentTS {
			continue
		}
		if msg.Text == processingSentinel {
			continue
		}

		role := "user"
		userName := "User"
		if msg.BotID != "" {
			role = "assistant"
			userName = msg.Username
			if userName == "" {
				userName = "Story Builders"
			}
		} else if msg.User != "" {
			cached, ok := nameCache[msg.User]
			if !ok {
				cached = h.userName(ctx, msg.User)
				nameCache[msg.User] = cached
			}
			userName = cached
		}

		history = append(history, agent.ThreadMessage{
			Role:      role,
			UserName:  userName,
			Text:      StripMentions(msg.Text),
			Timestamp: msg.Timestamp,
		})
	}

	h.logger.Debug("thread history reconstructed", "thread", threadTS, "messages", len(history))
	return history
}

// downloadAttachments materializes text attachments from the triggering
// message. Mention events do not carry file metadata, so the message is
// re-fetched first. Non-text and oversized files are silently dropped.
func (h *Handler) downloadAttachments(ctx context.Context, ev MentionEvent) []agent.FileAttachment {
	msgs, _, _, err := h.api.GetConversationRepliesContext(ctx, &slack.GetConversationRepliesParameters{
		ChannelID: ev.Channel,
		Timestamp: ev.Timestamp,
		Limit:     1,
		Inclusive: true,
	})
	if err != nil {
		h.logger.Warn("attachment lookup failed", "channel", ev.Channel, "ts", ev.Timestamp, "err", err)
		return nil
	}

	var files []agent.FileAttachment
	for _, msg := range msgs {
		if msg.Timestamp != ev.Timestamp {
			continue
		}
		for _, f := range msg.Files {
			content, ok := h.downloadFile(ctx, f)
			if ok {
				files = append(files, agent.FileAttachment{Name: f.Name, Content: content})
			}
		}
	}
	return files
}

// downloadFile fetches one attachment if it passes the text filter.
func (h *Handler) downloadFile(ctx context.Context, f slack.File) (string, bool) {
	isTextMime := strings.Contains(f.Mimetype, "text") || strings.Contains(f.Mimetype, "latex")
	if !isTextMime && !textFileRe.MatchString(f.Name) {
		h.logger.Debug("skipping non-text file", "name", f.Name, "mimetype", f.Mimetype)
		return "", false
	}
	if f.Size > maxAttachmentBytes {
		h.logger.Debug("skipping oversized file", "name", f.Name, "size", f.Size)
		return "", false
	}

	var buf bytes.Buffer
	if err := h.api.GetFileContext(ctx, f.URLPrivateDownload, &buf); err != nil {
		h.logger.Warn("file download failed", "name", f.Name, "err", err)
		return "", false
	}

	h.logger.Debug("downloaded attachment", "name", f.Name, "bytes", buf.Len())
	return buf.String(), true
}

// InferAgent picks a variant from keywords when no agent name
// appears in the mention. The check order is a fixed priority chain; the
// default is critique.
func InferAgent(text string) agent.Type {
	lower := strings.ToLower(text)

	contains := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(lower, w) {
				return true
			}
		}
		return false
	}

	switch {
	case contains("critique", "feedback", "review"):
		return agent.TypeCritique
	case contains("craft talk", "presentation", "teach"):
		return agent.TypeCraft
	case contains("prompt", "writing exercise", "idea"):
		return agent.TypePrompt
	case contains("coach", "celebrate", "milestone", "goal", "submitted", "finished", "completed"):
		return agent.TypeCoach
	default:
		return agent.TypeCritique
	}
}

// availableAgentsMessage builds the capability listing shown when the
// selected agent is not configured.
func (h *Handler) availableAgentsMessage() string {
	var lines []string
	for _, t := range h.registry.Available() {
		if _, desc, ok := h.registry.Describe(t); ok {
			lines = append(lines, fmt.Sprintf("• @%s: %s", t, desc))
		}
	}
	return fmt.Sprintf("I have several specialized agents available:\n\n%s\n\nMention an agent name or I'll try to figure out which one you need!",
		strings.Join(lines, "\n"))
}

// StripMentions removes every <@UXXX> token and trims the remainder.
func StripMentions(text string) string {
	return strings.TrimSpace(mentionTokenRe.ReplaceAllString(text, ""))
}
