package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mikeboe/website-researcher/pkg/agent"
	"github.com/mikeboe/website-researcher/pkg/archive"
	"github.com/mikeboe/website-researcher/pkg/ask"
	"github.com/mikeboe/website-researcher/pkg/browser"
	"github.com/mikeboe/website-researcher/pkg/clients"
	"github.com/mikeboe/website-researcher/pkg/config"
	"github.com/mikeboe/website-researcher/pkg/research"
)

var (
	targetURL string
	topic     string
	maxPages  int
	downloads bool
)

func main() {
	handler := slog.NewTextHandler(os.Stdout, nil)
	slog.SetDefault(slog.New(handler))

	if err := godotenv.Load(); err != nil {
		// It's okay if .env doesn't exist, as long as env vars are set
	}

	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:   "website-researcher",
		Short: "An automated website research agent",
		Long:  `website-researcher explores a website with browser automation, synthesizes findings per page with a language model, and assembles a markdown research report.`,
		Run: func(cmd *cobra.Command, args []string) {
			urlFlagChanged := cmd.Flags().Changed("url")
			topicFlagChanged := cmd.Flags().Changed("topic")

			if !urlFlagChanged || !topicFlagChanged {
				// Interactive Mode
				reader := bufio.NewReader(os.Stdin)

				if !urlFlagChanged {
					fmt.Print("Enter website URL: ")
					input, _ := reader.ReadString('\n')
					targetURL = strings.TrimSpace(input)
				}
				if !topicFlagChanged {
					fmt.Print("Enter research topic: ")
					input, _ := reader.ReadString('\n')
					topic = strings.TrimSpace(input)
				}
			}
			if targetURL == "" {
				slog.Error("URL cannot be empty")
				os.Exit(1)
			}
			if topic == "" {
				slog.Error("Topic cannot be empty")
				os.Exit(1)
			}

			slog.Info("Starting research", "url", targetURL, "topic", topic, "max_pages", maxPages)

			ctx := context.Background()
			llm, err := clients.GoogleAI(ctx, cfg.ReasoningModel, cfg.GoogleApiKey)
			if err != nil {
				slog.Error("Failed to create model client", "error", err)
				os.Exit(1)
			}

			var opts []research.Option
			if downloads {
				opts = append(opts, research.WithDownloads())
			}
			if cfg.DatabaseURL != "" {
				store, err := archive.Open(ctx, cfg.DatabaseURL, cfg.GoogleApiKey, cfg.EmbeddingModel, slog.Default())
				if err != nil {
					slog.Warn("Archive unavailable, continuing without it", "error", err)
				} else {
					defer store.Close()
					opts = append(opts, research.WithArchive(store))
				}
			}

			researcher := research.New(cfg, llm, slog.Default(), opts...)
			reportPath, err := researcher.Research(ctx, targetURL, topic, maxPages)
			if err != nil {
				slog.Error("Research failed", "error", err)
				os.Exit(1)
			}

			fmt.Printf("\nReport generated: %s\n", reportPath)
		},
	}

	rootCmd.Flags().StringVarP(&targetURL, "url", "u", "", "The website to research")
	rootCmd.Flags().StringVarP(&topic, "topic", "t", "", "The research topic")
	rootCmd.Flags().IntVarP(&maxPages, "max-pages", "m", 0, "Maximum pages to explore (default from MAX_PAGES)")
	rootCmd.Flags().BoolVar(&downloads, "downloads", false, "Download linked documents during exploration")

	rootCmd.AddCommand(agentCmd(cfg), askCmd(cfg))

	if err := rootCmd.Execute(); err != nil {
		slog.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}

func agentCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "agent",
		Short: "Interactive browser automation agent",
		Long:  `Starts an interactive session where natural-language commands drive the browser: navigate, search, download files, take screenshots.`,
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			if err := cfg.EnsureOutputDir(); err != nil {
				slog.Error("Failed to prepare output directory", "error", err)
				os.Exit(1)
			}

			llm, err := clients.GoogleAI(ctx, cfg.ReasoningModel, cfg.GoogleApiKey)
			if err != nil {
				slog.Error("Failed to create model client", "error", err)
				os.Exit(1)
			}

			session, err := browser.Connect(ctx, cfg.BrowserCommand, cfg.BrowserArgs...)
			if err != nil {
				slog.Error("Failed to start browser session", "error", err)
				os.Exit(1)
			}
			defer session.Close()

			a := agent.New(session, llm, cfg.OutputDir, slog.Default())
			if err := a.ChatLoop(ctx, os.Stdin, os.Stdout); err != nil {
				slog.Error("Agent session failed", "error", err)
				os.Exit(1)
			}
		},
	}
}

func askCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question over archived research",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			if cfg.DatabaseURL == "" {
				slog.Error("DATABASE_URL must be set to query the archive")
				os.Exit(1)
			}

			store, err := archive.Open(ctx, cfg.DatabaseURL, cfg.GoogleApiKey, cfg.EmbeddingModel, slog.Default())
			if err != nil {
				slog.Error("Failed to open archive", "error", err)
				os.Exit(1)
			}
			defer store.Close()

			svc, err := ask.NewService(ctx, store, cfg)
			if err != nil {
				slog.Error("Failed to init ask service", "error", err)
				os.Exit(1)
			}

			answer, err := svc.Ask(ctx, strings.Join(args, " "))
			if err != nil {
				slog.Error("Question failed", "error", err)
				os.Exit(1)
			}
			fmt.Println(answer)
		},
	}
}
