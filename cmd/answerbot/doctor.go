package main

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"answerbot/internal/config"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostic checks on your answerbot installation",
		Long: `Verifies that answerbot's configuration, providers, tool credentials,
and database are correctly set up. Reports pass/fail for each check.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			fmt.Printf("answerbot doctor v%s\n", version)
			fmt.Printf("----------------------------------------\n\n")

			passed := 0
			failed := 0
			warned := 0

			// 1. Config file exists
			if _, err := os.Stat(cfgPath); err != nil {
				printFail("Config file", fmt.Sprintf("not found at %s", cfgPath))
				fmt.Printf("\nRun 'answerbot init' to create a default configuration.\n")
				return nil
			}
			printPass("Config file", cfgPath)
			passed++

			// 2. Config loads and validates
			cfg, err := config.Load(cfgPath)
			if err != nil {
				printFail("Config validation", err.Error())
				failed++
				fmt.Printf("\n%d passed, %d failed\n", passed, failed)
				return fmt.Errorf("config invalid")
			}
			printPass("Config validation", "valid")
			passed++

			// 3. Providers
			providerCount := 0
			for name, p := range cfg.Providers {
				if !p.Enabled {
					continue
				}
				providerCount++
				if p.APIKey == "" {
					printWarn("Provider: "+name, "enabled but no API key configured")
					warned++
				} else {
					printPass("Provider: "+name, "configured")
					passed++
				}
			}
			if providerCount == 0 {
				printFail("Providers", "no providers enabled")
				failed++
			}

			// 4. Default provider is enabled
			if p, ok := cfg.Providers[cfg.General.DefaultProvider]; !ok || !p.Enabled {
				printFail("Default provider", fmt.Sprintf("%q is not an enabled provider", cfg.General.DefaultProvider))
				failed++
			} else {
				printPass("Default provider", cfg.General.DefaultProvider)
				passed++
			}

			// 5. Tool credentials
			if cfg.Tools.Search.SerperAPIKey == "" {
				printWarn("Search tool", "SERPER_API_KEY not set; search_tool will return an explanatory error")
				warned++
			} else {
				printPass("Search tool", "Serper key configured")
				passed++
			}

			// 6. Format overrides file
			if cfg.General.FormatsFile != "" {
				if _, err := os.Stat(config.ExpandPath(cfg.General.FormatsFile)); err != nil {
					printFail("Formats file", fmt.Sprintf("configured but missing: %s", cfg.General.FormatsFile))
					failed++
				} else {
					printPass("Formats file", cfg.General.FormatsFile)
					passed++
				}
			}

			// 7. Database writable
			if cfg.Memory.Enabled {
				dbPath := config.ExpandPath(cfg.Memory.DBPath)
				if err := checkDatabase(dbPath); err != nil {
					printFail("Database", err.Error())
					failed++
				} else {
					printPass("Database", dbPath)
					passed++
				}
			}

			// 8. Metrics port
			if cfg.Metrics.Enabled {
				if err := checkPort(cfg.Metrics.Port); err != nil {
					printWarn("Metrics port", fmt.Sprintf("port %d may be in use: %v", cfg.Metrics.Port, err))
					warned++
				} else {
					printPass("Metrics port", fmt.Sprintf(":%d available", cfg.Metrics.Port))
					passed++
				}
			}

			// Summary
			fmt.Printf("\n----------------------------------------\n")
			fmt.Printf("Results: %d passed, %d warnings, %d failed\n", passed, warned, failed)
			if failed > 0 {
				fmt.Printf("\nPlease fix the failed checks before running answerbot.\n")
				return fmt.Errorf("%d check(s) failed", failed)
			}
			if warned > 0 {
				fmt.Printf("\nanswerbot should work but consider fixing the warnings.\n")
			} else {
				fmt.Printf("\nAll checks passed! answerbot is ready to run.\n")
			}
			return nil
		},
	}
}

func checkDatabase(dbPath string) error {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("cannot create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("cannot open: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("cannot ping: %w", err)
	}

	if _, err := db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS _doctor_test (id INTEGER PRIMARY KEY)"); err != nil {
		return fmt.Errorf("not writable: %w", err)
	}
	db.ExecContext(ctx, "DROP TABLE IF EXISTS _doctor_test")

	return nil
}

func checkPort(port int) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return err
	}
	ln.Close()
	return nil
}

func printPass(check, detail string) {
	fmt.Printf("  [PASS] %-20s %s\n", check, detail)
}

func printFail(check, detail string) {
	fmt.Printf("  [FAIL] %-20s %s\n", check, detail)
}

func printWarn(check, detail string) {
	fmt.Printf("  [WARN] %-20s %s\n", check, detail)
}
