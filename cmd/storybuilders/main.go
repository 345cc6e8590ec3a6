package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storybuilders/internal/agent"
	"storybuilders/internal/channel"
	"storybuilders/internal/config"
	"storybuilders/internal/metrics"
	"storybuilders/internal/provider"

	"github.com/spf13/cobra"
)

var (
	version = "1.0.0"
	logger  *slog.Logger
)

func main() {
	cfg := config.FromEnv()
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	root := &cobra.Command{
		Use:     "storybuilders",
		Short:   "Story Builders: Slack writing-assistant bot",
		Long:    "Story Builders routes Slack mentions to specialized writing agents:\ncritique, craft talks, writing prompts, coaching, and reading recommendations.",
		Version: version,
	}

	root.AddCommand(serveCmd(cfg))
	root.AddCommand(askCmd(cfg))
	root.AddCommand(doctorCmd(cfg))

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Connect to Slack and serve mentions until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			registry, err := buildRegistry(cfg)
			if err != nil {
				return err
			}

			if cfg.MetricsAddr != "" {
				go serveMetrics(ctx, cfg.MetricsAddr)
			}

			slackCh := channel.NewSlack(channel.SlackConfig{
				BotToken: cfg.Slack.BotToken,
				AppToken: cfg.Slack.AppToken,
				Registry: registry,
				Logger:   logger,
			})

			logger.Info("starting", "version", version, "agents_file", cfg.AgentsFile)
			return slackCh.Start(ctx)
		},
	}
}

// askCmd runs a single turn offline: same selection, gating, and provider
// call as a real mention, but with a synthetic context and stdout output.
func askCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "ask \"<message>\"",
		Short: "Send one message to an agent without connecting to Slack",
		Long: `Runs the agent pipeline for a single message and prints the reply.
Agent selection works exactly as in Slack: name the agent in the message
("critique my opening paragraph") or let keyword inference pick one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.AI.AnthropicKey == "" && cfg.AI.OpenAIKey == "" {
				return fmt.Errorf("at least one AI provider API key is required (ANTHROPIC_API_KEY or OPENAI_API_KEY)")
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			registry, err := buildRegistry(cfg)
			if err != nil {
				return err
			}

			text := channel.StripMentions(args[0])
			agentType, ok := registry.SelectByMention(text)
			if !ok {
				agentType = channel.InferAgent(text)
			}
			ag, ok := registry.Get(agentType)
			if !ok {
				return fmt.Errorf("agent %s is not configured in %s", agentType, cfg.AgentsFile)
			}
			logger.Info("dispatching", "agent", agentType)

			response, err := ag.ProcessMessage(ctx, text, &agent.Context{
				UserID:    "local",
				UserName:  "Local Tester",
				ChannelID: "cli",
				ThreadTS:  "0",
			})
			if err != nil {
				return err
			}

			fmt.Println(response)
			return nil
		},
	}
}

func buildRegistry(cfg *config.Config) (*agent.Registry, error) {
	factory := provider.NewFactory(cfg.AI, logger)
	return agent.NewRegistry(cfg.AgentsFile, factory, logger)
}

// serveMetrics exposes the in-process counters. Best effort: a failure here
// never takes the bot down.
func serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Collector.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Warn("metrics server stopped", "err", err)
	}
}
