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

	"github.com/use-agent/sitemodel/api"
	"github.com/use-agent/sitemodel/api/handler"
	"github.com/use-agent/sitemodel/cache"
	"github.com/use-agent/sitemodel/cleaner"
	"github.com/use-agent/sitemodel/config"
	"github.com/use-agent/sitemodel/llm"
	"github.com/use-agent/sitemodel/models"
	"github.com/use-agent/sitemodel/pipeline"
	"github.com/use-agent/sitemodel/scraper"
	"github.com/use-agent/sitemodel/webhook"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("sitemodel starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"maxPages", cfg.Browser.MaxPages,
		"concurrentExtraction", cfg.Capture.ConcurrentExtraction,
	)

	// ── 3. Initialise scraper (launches browser) ────────────────────
	sc, err := scraper.NewScraper(cfg.Browser, cfg.Capture)
	if err != nil {
		slog.Error("failed to initialise scraper", "error", err)
		os.Exit(1)
	}
	defer sc.Close()

	// ── 4. Initialise capture pipeline ──────────────────────────────
	// The closure keeps pipeline/ free of any scraper/ import and turns a
	// nil *Session into a nil Page.
	opener := pipeline.OpenerFunc(func(ctx context.Context, url string, opts models.SessionOptions) (pipeline.Page, error) {
		sess, err := sc.Open(ctx, url, opts)
		if err != nil {
			return nil, err
		}
		return sess, nil
	})
	pl := pipeline.New(opener, cfg.Capture, pipeline.WithSummarizer(cleaner.NewCleaner()))

	// ── 5. Initialise cache, batch store, webhook, LLM client ───────
	cc := cache.New(cfg.Cache.MaxEntries, cfg.Cache.TTL)
	defer cc.Close()
	batches := handler.NewBatchStore(cfg.Batch.JobTTL)
	defer batches.Close()

	// ── 6. Setup router ─────────────────────────────────────────────
	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()
	router := api.NewRouter(rootCtx, api.Deps{
		Capturer:  pl,
		Generator: llm.NewClient(nil),
		Stats:     sc,
		Cache:     cc,
		Batches:   batches,
		Notifier:  webhook.NewNotifier(cfg.Batch.WebhookSecret),
		StartTime: time.Now(),
	}, cfg)

	// ── 7. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 8. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// sc.Close() runs via defer and kills Chrome.
	slog.Info("sitemodel stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
