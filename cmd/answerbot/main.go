package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"answerbot/internal/agent"
	"answerbot/internal/browser"
	"answerbot/internal/config"
	"answerbot/internal/memory"
	"answerbot/internal/provider"
	"answerbot/internal/tool"

	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0"
	logger     *slog.Logger
	configPath string // overridable via --config flag
)

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:   "answerbot",
		Short: "answerbot: a tool-using AI answer agent",
		Long:  "answerbot routes questions to the right tool (web search, weather, scraping, Reddit, arithmetic) and phrases the result with an LLM.",
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.json (default: ~/.answerbot/config.json)")

	root.AddCommand(initCmd())
	root.AddCommand(askCmd())
	root.AddCommand(chatCmd())
	root.AddCommand(daemonCmd())
	root.AddCommand(doctorCmd())
	root.AddCommand(historyCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize config directory with defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgDir := config.DefaultConfigDir()
			cfgPath := config.DefaultConfigPath()
			if err := os.MkdirAll(cfgDir, 0o755); err != nil {
				return err
			}
			if _, err := os.Stat(cfgPath); err == nil {
				return fmt.Errorf("config already exists at %s", cfgPath)
			}
			if err := config.Save(cfgPath, config.Defaults()); err != nil {
				return err
			}
			logger.Info("initialized", "config", cfgPath)
			fmt.Printf("Config written to %s\nSet GROQ_API_KEY (or edit the file) and run 'answerbot ask ...'.\n", cfgPath)
			return nil
		},
	}
}

// resolveConfigPath returns the config path from --config flag or default.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

func loadConfig() *config.Config {
	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Warn("config not found, using defaults", "path", cfgPath, "err", err)
		cfg = config.Defaults()
		cfg.ExpandCredentials()
	}
	configureLogLevel(cfg.General.LogLevel)
	return cfg
}

func configureLogLevel(level string) {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

// buildAgent wires the registry, model provider, and optional run store into
// an Agent ready to Execute.
func buildAgent(cfg *config.Config) (*agent.Agent, *tool.Registry, func(), error) {
	registry := buildRegistry(cfg)

	systemPrompt := agent.BuildSystemPrompt(registry.Describe())
	factory := provider.NewFactory(cfg, systemPrompt, logger)
	model, err := factory.DefaultService()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("model provider: %w", err)
	}

	formats, err := agent.NewFormatTable(cfg.General.FormatsFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("format table: %w", err)
	}

	var store agent.RunStore
	cleanup := func() {}
	if cfg.Memory.Enabled {
		sqlStore, err := memory.NewSQLiteStore(config.ExpandPath(cfg.Memory.DBPath), logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("run store: %w", err)
		}
		store = sqlStore
		cleanup = func() { sqlStore.Close() }

		if cfg.Memory.RetentionDays > 0 {
			retention := time.Duration(cfg.Memory.RetentionDays) * 24 * time.Hour
			if _, err := sqlStore.Prune(context.Background(), retention); err != nil {
				logger.Warn("failed to prune old runs", "err", err)
			}
		}
	}

	a := agent.New(agent.Options{
		Model:       model,
		Registry:    registry,
		Formats:     formats,
		Store:       store,
		ToolTimeout: time.Duration(cfg.Tools.TimeoutSeconds) * time.Second,
		Logger:      logger,
	})
	return a, registry, cleanup, nil
}

func buildRegistry(cfg *config.Config) *tool.Registry {
	registry := tool.NewRegistry(logger)

	var renderer tool.PageRenderer
	if cfg.Tools.Scrape.BrowserFallback {
		renderer = browser.NewBridge(browser.BridgeConfig{
			ProfileDir: config.ExpandPath(cfg.Tools.Scrape.ProfileDir),
			Headless:   true,
			Logger:     logger,
		})
	}

	registry.Register(tool.NewSearchTool(cfg.Tools.Search.SerperAPIKey))
	registry.Register(tool.NewWeatherTool())
	registry.Register(tool.NewScrapeTool(renderer))
	registry.Register(tool.NewRedditTool(cfg.Tools.Reddit.PostLimit))
	registry.Register(tool.NewCalculatorTool())
	return registry
}

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			a, _, cleanup, err := buildAgent(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			res := a.Execute(ctx, strings.Join(args, " "))
			if res.ToolName != "" {
				logger.Info("answered", "tool", res.ToolName)
			}
			fmt.Println(res.Output)
			return nil
		},
	}
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive question loop (type 'exit' to quit)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			a, _, cleanup, err := buildAgent(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("Ask me anything: ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				prompt := strings.TrimSpace(scanner.Text())
				if prompt == "" {
					continue
				}
				if strings.EqualFold(prompt, "exit") {
					return nil
				}
				res := a.Execute(ctx, prompt)
				fmt.Println(res.Output)
				fmt.Println()

				select {
				case <-ctx.Done():
					return nil
				default:
				}
			}
		},
	}
}

func historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent questions and answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if !cfg.Memory.Enabled {
				return fmt.Errorf("memory is disabled in config; nothing recorded")
			}
			store, err := memory.NewSQLiteStore(config.ExpandPath(cfg.Memory.DBPath), logger)
			if err != nil {
				return err
			}
			defer store.Close()

			recs, err := store.Recent(context.Background(), limit)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Println("No recorded runs yet.")
				return nil
			}
			for _, rec := range recs {
				status := "ok"
				if !rec.Succeeded {
					status = "failed"
				}
				fmt.Printf("[%s] (%s, %s) %s\n", rec.CreatedAt.Format("2006-01-02 15:04"), rec.ToolName, status, rec.Prompt)
				fmt.Printf("    %s\n", firstLine(rec.Output))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	return cmd
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 160 {
		s = s[:160] + "..."
	}
	return s
}
