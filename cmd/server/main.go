package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pupbiscuit/skydash/internal/bluesky"
	"github.com/pupbiscuit/skydash/internal/config"
	"github.com/pupbiscuit/skydash/internal/firehose"
	"github.com/pupbiscuit/skydash/internal/httpserver"
	"github.com/pupbiscuit/skydash/internal/metrics"
	"github.com/pupbiscuit/skydash/internal/publisher"
	"github.com/pupbiscuit/skydash/internal/schedule"
	"github.com/pupbiscuit/skydash/internal/snapshot"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.New(registry)

	store, err := snapshot.NewStore(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()
	logger.Info("opened database", "path", cfg.DatabasePath)

	client := bluesky.NewClient(cfg.PDS)
	if err := client.Login(ctx, cfg.Handle, cfg.AppPassword); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	logger.Info("logged in", "handle", client.Handle(), "did", client.DID())

	fetcher := snapshot.NewFetcher(client, client.DID(), client.Handle(), logger)
	cache := snapshot.NewCache(fetcher, store, cfg.CacheTTL, logger, m)

	// Live engagement on own posts marks the cached snapshot stale so the
	// next dashboard request refetches.
	subscriber := firehose.NewSubscriber(cfg.FirehoseURL, client.DID(), cache, store, logger)
	subscriber.OnMatch(func() { m.FirehoseEvents.Inc() })
	go func() {
		if err := subscriber.Start(ctx); err != nil && ctx.Err() == nil {
			logger.Error("firehose subscriber exited with error", "error", err)
		}
	}()

	queue := schedule.NewStore(cfg.SchedulePath)

	pub := publisher.New(client, queue, cfg.ImageBudget, logger, m)
	go pub.RunLoop(ctx, cfg.PublishInterval)

	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	server := httpserver.NewServer(cfg, cache, queue, logger, m, metricsHandler)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server exited with error", "error", err)
		}
	}()

	logger.Info("server started", "port", cfg.Port)

	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig)
	cancel()

	if err := server.Shutdown(context.Background()); err != nil {
		logger.Error("error shutting down http server", "error", err)
	}

	return nil
}
