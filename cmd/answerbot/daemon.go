package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"answerbot/internal/channel"
	"answerbot/internal/metrics"

	"github.com/spf13/cobra"
)

func daemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run as a long-lived service (Telegram + metrics)",
		Long:  "Starts the Telegram channel if enabled and serves Prometheus metrics. Press Ctrl+C to stop.",
		RunE:  runDaemon,
	}
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	a, registry, cleanup, err := buildAgent(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.HandleFunc("/metrics", metrics.Collector.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintln(w, "ok")
		})
		addr := fmt.Sprintf("%s:%d", cfg.Metrics.Host, cfg.Metrics.Port)
		metricsSrv = &http.Server{Addr: addr, Handler: mux}
		go func() {
			logger.Info("metrics listening", "addr", addr)
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server error", "err", err)
			}
		}()
	}

	tgCfg := cfg.Channels.Telegram
	if !tgCfg.Enabled || tgCfg.Token == "" {
		if metricsSrv == nil {
			return fmt.Errorf("nothing to run: telegram disabled and metrics disabled")
		}
		logger.Info("telegram channel disabled, serving metrics only")
		<-ctx.Done()
	} else {
		tg := channel.NewTelegram(channel.TelegramConfig{
			Token:     tgCfg.Token,
			AllowFrom: tgCfg.AllowFrom,
			ParseMode: tgCfg.ParseMode,
			ToolNames: registry.Names(),
			Logger:    logger,
		}, a)
		logger.Info("telegram channel enabled")
		if err := tg.Start(ctx); err != nil {
			logger.Error("telegram channel error", "err", err)
		}
	}

	logger.Info("shutting down daemon...")
	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown", "err", err)
		}
	}
	logger.Info("shutdown complete")
	return nil
}
