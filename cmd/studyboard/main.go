package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/itchan-dev/studyboard/internal/config"
	"github.com/itchan-dev/studyboard/internal/logger"
	"github.com/itchan-dev/studyboard/internal/middleware/metrics"
	"github.com/itchan-dev/studyboard/internal/router"
	"github.com/itchan-dev/studyboard/internal/setup"
)

func main() {
	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "config", "path to folder with configs")
	flag.Parse()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	if err := run(cfg); err != nil {
		logger.Log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	deps, err := setup.SetupDependencies(cfg)
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	defer deps.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.StartCollector(ctx, deps.Board.Stats, 15*time.Second)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Public.HttpPort),
		Handler:           router.New(deps),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Log.Info("server started", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Log.Info("shutting down", "timeout", cfg.Public.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Public.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
