package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/deckgen/internal/api"
	"github.com/dgallion1/deckgen/internal/app"
	"github.com/dgallion1/deckgen/internal/config"
	"github.com/dgallion1/deckgen/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.ValidateServer(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	services, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", "error", err)
		os.Exit(1)
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, services.JobRunners(log), log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, services.Stats, services.Deps.Structurer.Model(), log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting deckgen", "port", cfg.Port, "workers", cfg.WorkerCount, "data_dir", cfg.DataDir)
	err = serve(sigCtx, httpServer, func() {
		orch.Stop()
		services.Close()
	}, log)
	if err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// serve runs httpServer until ctx is done, then shuts it down and calls
// drain. It returns only after drain has finished.
func serve(ctx context.Context, httpServer *http.Server, drain func(), log *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			drain()
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
		<-errCh
	}

	drain()
	log.Info("shutdown complete")
	return nil
}
