package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prabalesh/aideck/internal/backend"
	"github.com/prabalesh/aideck/internal/collector"
	"github.com/prabalesh/aideck/internal/config"
	"github.com/prabalesh/aideck/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML settings file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Fatalf("backend failed: %v", err)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadServer(configPath)
	if err != nil {
		return err
	}
	logger := logging.New(os.Stdout, cfg.Logging)

	state, err := backend.NewState(cfg.LogBuffer, cfg.StoragePath)
	if err != nil {
		return err
	}
	srv := backend.NewServer(cfg, state, collector.NewStatsCollector(cfg.DiskPath), logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	go srv.Run(ctx)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		defer close(shutdownDone)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	logger.Info("backend listening", "addr", cfg.ListenAddr, "stats_interval", cfg.StatsInterval)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-shutdownDone
	return nil
}
