package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salesdash/internal/api"
	"salesdash/internal/config"
	"salesdash/internal/engine"
	"salesdash/internal/log"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.New(log.DefaultConfig()).Error("failed to load config", log.FieldError, err)
		os.Exit(1)
	}
	level, _ := log.ParseLevel(cfg.Log.Level)
	logger := log.New(log.Config{Level: level, Component: log.ComponentApp, Output: os.Stdout})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.WithComponent(log.ComponentConfig).Error("invalid configuration", log.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", log.FieldError, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	// 1. Initialize Echo (starts instantly)
	// The API is live but returns 503 until the table is published
	h := api.NewHandler(nil, cfg.Data.TopN, logger)
	e := api.NewServer(cfg, h, logger)

	g, ctx := errgroup.WithContext(ctx)

	// 2. Load the dataset in the background
	g.Go(func() error {
		return loadDataset(ctx, cfg.Data.Path, h, logger)
	})

	// 3. Serve HTTP
	g.Go(func() error {
		logger.Info("server listening", "addr", cfg.Addr())
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// 4. Shut down on signal or on the first failure
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// loadDataset reads path and publishes it to h. LoadFile is not cancellable;
// a shutdown during the load takes effect once it returns.
func loadDataset(ctx context.Context, path string, h *api.Handler, logger *log.Logger) error {
	loadLog := logger.WithComponent(log.ComponentLoader)
	loadLog.Info("loading dataset", log.FieldSource, path)
	t0 := time.Now()

	table, err := engine.LoadFile(path)
	if err != nil {
		// A malformed dataset is fatal: stop the server too
		return err
	}
	if ctx.Err() != nil {
		loadLog.Info("dataset load finished after shutdown, discarding")
		return nil
	}
	h.SetTable(table)

	loadLog.Info("dataset ready", log.FieldRows, table.Len(), log.FieldDuration, time.Since(t0).Milliseconds())
	return nil
}
