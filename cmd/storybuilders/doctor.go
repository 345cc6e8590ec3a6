package main

import (
	"fmt"
	"os"

	"storybuilders/internal/agent"
	"storybuilders/internal/config"
	"storybuilders/internal/provider"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func doctorCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostic checks on the bot configuration",
		Long: `Verifies that credentials, the agent persona file, and the AI providers
are correctly set up. Reports pass/fail for each check.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("Story Builders Doctor v%s\n", version)
			fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

			passed := 0
			failed := 0
			warned := 0

			// 1. Environment configuration
			if err := cfg.Validate(); err != nil {
				printFail("Environment", err.Error())
				failed++
			} else {
				printPass("Environment", "all required variables set")
				passed++
			}

			// 2. Agent persona file
			data, err := os.ReadFile(cfg.AgentsFile)
			if err != nil {
				printFail("Agents file", fmt.Sprintf("cannot read %s: %v", cfg.AgentsFile, err))
				failed++
			} else {
				var personas map[string]agent.Config
				if err := yaml.Unmarshal(data, &personas); err != nil {
					printFail("Agents file", fmt.Sprintf("cannot parse %s: %v", cfg.AgentsFile, err))
					failed++
				} else if len(personas) == 0 {
					printFail("Agents file", "no agents configured")
					failed++
				} else {
					printPass("Agents file", fmt.Sprintf("%s (%d agents)", cfg.AgentsFile, len(personas)))
					passed++
					for name, p := range personas {
						if p.SystemPrompt == "" {
							printWarn("Agent: "+name, "no systemPrompt configured")
							warned++
						} else if p.Model == "" {
							printWarn("Agent: "+name, "no model configured")
							warned++
						} else {
							printPass("Agent: "+name, p.Model)
							passed++
						}
					}
				}
			}

			// 3. Providers
			if cfg.AI.AnthropicKey != "" {
				printPass("Provider: anthropic", "API key set")
				passed++
			} else {
				printWarn("Provider: anthropic", "ANTHROPIC_API_KEY not set")
				warned++
			}
			if cfg.AI.OpenAIKey != "" {
				printPass("Provider: openai", "API key set")
				passed++
			} else {
				printWarn("Provider: openai", "OPENAI_API_KEY not set")
				warned++
			}

			factory := provider.NewFactory(cfg.AI, logger)
			if _, err := factory.Default(); err != nil {
				printFail("Default provider", err.Error())
				failed++
			} else {
				printPass("Default provider", cfg.AI.DefaultProvider)
				passed++
			}

			// Summary
			fmt.Printf("\n━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
			fmt.Printf("Results: %d passed, %d warnings, %d failed\n", passed, warned, failed)
			if failed > 0 {
				fmt.Printf("\nPlease fix the failed checks before running the bot.\n")
				return fmt.Errorf("%d check(s) failed", failed)
			}
			if warned > 0 {
				fmt.Printf("\nThe bot should work but consider fixing the warnings.\n")
			} else {
				fmt.Printf("\nAll checks passed! The bot is ready to run.\n")
			}
			return nil
		},
	}
}

func printPass(check, detail string) {
	fmt.Printf("  [PASS] %-24s %s\n", check, detail)
}

func printFail(check, detail string) {
	fmt.Printf("  [FAIL] %-24s %s\n", check, detail)
}

func printWarn(check, detail string) {
	fmt.Printf("  [WARN] %-24s %s\n", check, detail)
}
