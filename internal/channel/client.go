package channel

import (
	"context"
	"io"

	"github.com/slack-go/slack"
)

// api is the slice of the Slack Web API the mention pipeline uses.
// *slack.Client satisfies it; tests substitute a fake.
type api interface {
	GetUserInfoContext(ctx context.Context, user string) (*slack.User, error)
	GetConversationRepliesContext(ctx context.Context, params *slack.GetConversationRepliesParameters) ([]slack.Message, bool, string, error)
	GetFileContext(ctx context.Context, downloadURL string, writer io.Writer) error
	AddReactionContext(ctx context.Context, name string, item slack.ItemRef) error
	RemoveReactionContext(ctx context.Context, name string, item slack.ItemRef) error
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}
