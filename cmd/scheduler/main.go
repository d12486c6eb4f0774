package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pupbiscuit/skydash/internal/bluesky"
	"github.com/pupbiscuit/skydash/internal/publisher"
	"github.com/pupbiscuit/skydash/internal/schedule"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		handle       string
		password     string
		pds          string
		schedulePath string
		interval     time.Duration
		budget       int
		once         bool
	)

	flag.StringVar(&handle, "handle", envOrDefault("BLUESKY_HANDLE", ""), "BlueSky handle (e.g. user.bsky.social)")
	flag.StringVar(&password, "password", envOrDefault("BLUESKY_APP_PASSWORD", ""), "BlueSky app password")
	flag.StringVar(&pds, "pds", envOrDefault("BLUESKY_PDS", "https://bsky.social"), "PDS service URL")
	flag.StringVar(&schedulePath, "schedule", envOrDefault("SCHEDULE_PATH", "schedule/schedule.csv"), "Path to the schedule CSV")
	flag.DurationVar(&interval, "interval", time.Minute, "How often to check for due posts")
	flag.IntVar(&budget, "budget", 0, "Upload byte budget for prepared images (0 uses the default)")
	flag.BoolVar(&once, "once", false, "Publish due posts once and exit instead of looping")
	flag.Parse()

	if handle == "" || password == "" {
		return fmt.Errorf("--handle and --password are required (or set BLUESKY_HANDLE and BLUESKY_APP_PASSWORD)")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	client := bluesky.NewClient(pds)
	if err := client.Login(ctx, handle, password); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	logger.Info("logged in", "handle", client.Handle(), "did", client.DID())

	queue := schedule.NewStore(schedulePath)
	pub := publisher.New(client, queue, budget, logger, nil)

	if once {
		summary, err := pub.Run(ctx, time.Now().UTC())
		if err != nil {
			return err
		}
		logger.Info("publish run complete",
			"published", len(summary.Published),
			"failed", len(summary.Failed),
		)
		if len(summary.Failed) > 0 {
			return fmt.Errorf("%d post(s) failed to publish", len(summary.Failed))
		}
		return nil
	}

	pub.RunLoop(ctx, interval)
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
