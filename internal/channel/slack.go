package channel

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"storybuilders/internal/agent"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
)

// Slack connects to the platform via Socket Mode and feeds mention events
// into the Handler. Each mention runs as its own goroutine; turns share no
// mutable state.
type Slack struct {
	botToken string
	appToken string
	client   *slack.Client
	socket   *socketmode.Client
	handler  *Handler
	registry *agent.Registry
	logger   *slog.Logger
	botUID   string
}

// SlackConfig configures the Slack channel.
type SlackConfig struct {
	BotToken string
	AppToken string
	Registry *agent.Registry
	Logger   *slog.Logger
}

// NewSlack creates the Slack channel.
func NewSlack(cfg SlackConfig) *Slack {
	return &Slack{
		botToken: cfg.BotToken,
		appToken: cfg.AppToken,
		registry: cfg.Registry,
		logger:   cfg.Logger,
	}
}

// Start connects to Slack and blocks until the context is done.
func (s *Slack) Start(ctx context.Context) error {
	api := slack.New(
		s.botToken,
		slack.OptionAppLevelToken(s.appToken),
	)
	s.client = api

	authResp, err := api.AuthTestContext(ctx)
	if err != nil {
		return fmt.Errorf("slack auth: %w", err)
	}
	s.botUID = authResp.UserID
	s.logger.Info("slack bot connected", "user", authResp.User, "user_id", authResp.UserID)

	s.handler = NewHandler(api, s.registry, s.logger)
	s.socket = socketmode.New(api)

	go s.eventLoop(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.socket.RunContext(ctx)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("slack bot disconnecting")
		return nil
	case err := <-errCh:
		return fmt.Errorf("slack socket mode: %w", err)
	}
}

func (s *Slack) eventLoop(ctx context.Context) {
	for evt := range s.socket.Events {
		switch evt.Type {
		case socketmode.EventTypeEventsAPI:
			eventsAPIEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
			if !ok {
				continue
			}
			s.socket.Ack(*evt.Request)
			s.handleEventsAPI(ctx, eventsAPIEvent)

		default:
			// Acknowledge unknown events to prevent Socket Mode disconnection.
			if evt.Request != nil {
				s.socket.Ack(*evt.Request)
			}
		}
	}
}

func (s *Slack) handleEventsAPI(ctx context.Context, event slackevents.EventsAPIEvent) {
	if event.Type != slackevents.CallbackEvent {
		return
	}

	switch ev := event.InnerEvent.Data.(type) {
	case *slackevents.AppMentionEvent:
		if ev.User == s.botUID || ev.User == "" {
			return
		}
		s.logger.Info("mention received", "user", ev.User, "channel", ev.Channel, "thread", ev.ThreadTimeStamp)

		mention := MentionEvent{
			Text:            ev.Text,
			User:            ev.User,
			Channel:         ev.Channel,
			Timestamp:       ev.TimeStamp,
			ThreadTimestamp: ev.ThreadTimeStamp,
		}
		go s.handler.Handle(ctx, mention)

	case *slackevents.AppHomeOpenedEvent:
		go s.publishHomeView(ctx, ev.User)
	}
}

// publishHomeView renders a static App Home tab listing the configured
// agents.
func (s *Slack) publishHomeView(ctx context.Context, userID string) {
	var agentLines []string
	for _, t := range s.registry.Available() {
		if _, desc, ok := s.registry.Describe(t); ok {
			agentLines = append(agentLines, fmt.Sprintf("• *@%s* - %s", t, desc))
		}
	}

	blocks := []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, "*Welcome to Story Builders!* :books:", false, false),
			nil, nil),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType,
				"I provide AI-powered writing assistance with specialized agents:\n\n"+
					strings.Join(agentLines, "\n")+
					"\n\n_To use an agent, @mention me in a channel and include the agent name!_",
				false, false),
			nil, nil),
	}

	_, err := s.client.PublishViewContext(ctx, userID, slack.HomeTabViewRequest{
		Type:   slack.VTHomeTab,
		Blocks: slack.Blocks{BlockSet: blocks},
	}, "")
	if err != nil {
		s.logger.Warn("home view publish failed", "user", userID, "err", err)
	}
}
