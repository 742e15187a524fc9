// Command radishd runs the radishmq broker: an HTTP server over the
// in-memory Broker API, backed by an async write-behind persistence
// pipeline into PostgreSQL. Wiring order follows the original source's
// main.rs (migrations, then workers, then web server), adapted to Go's
// explicit error handling and a graceful-shutdown path the original never
// had (spec §9).
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/f-str/radishmq/internal/broker"
	"github.com/f-str/radishmq/internal/config"
	"github.com/f-str/radishmq/internal/store"
	transporthttp "github.com/f-str/radishmq/internal/transport/http"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(logger); err != nil {
		logger.Error("radishd exited with error", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		// Configuration errors are fatal at startup (spec §7).
		return err
	}

	// One connection pool shared by every worker goroutine: database/sql
	// already multiplexes concurrent callers across its internal pool, so
	// unlike the original source's one-pool-per-OS-thread layout (needed
	// there because each worker ran its own async executor), a single
	// *sql.DB sized for the whole worker fleet is the idiomatic Go
	// equivalent. Size it for MAX_WORKER concurrent users of the pool.
	workerCfg := broker.WorkerPoolConfig{WorkerCount: int(cfg.MaxWorker)}
	maxConns := int(cfg.DBPoolMaxConnectionsThread) * workerCfg.WorkerCount

	pgStore, err := store.Open(cfg.DatabaseURL, maxConns)
	if err != nil {
		return err
	}
	defer pgStore.Close()

	if err := store.RunMigrations(pgStore.DB(), store.MigrationsPath, cfg.EnableMigrations, logger); err != nil {
		return err
	}

	state := broker.NewSharedState(logger)
	defer state.Close()

	b := broker.NewBroker(state, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerPool := broker.NewWorkerPool(workerCfg, state.Events(), pgStore, logger)
	workerPool.Start(ctx)

	server := &http.Server{
		Addr:    cfg.HTTPAddress + ":" + strconv.Itoa(int(cfg.HTTPPort)),
		Handler: transporthttp.NewRouter(b, logger),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", "error", err)
	}
	if err := workerPool.Stop(shutdownCtx); err != nil {
		logger.Error("worker pool shutdown", "error", err)
	}

	return nil
}

