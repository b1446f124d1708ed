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

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hersh/blitztris/internal/config"
	"github.com/hersh/blitztris/internal/logging"
	"github.com/hersh/blitztris/internal/scores"
)

const shutdownTimeout = 10 * time.Second

func openStore(ctx context.Context, cfg config.StoreConfig) (scores.Store, error) {
	switch cfg.Backend {
	case config.StoreMongo:
		return scores.NewMongoStore(ctx, scores.MongoConfig{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
		})
	case config.StorePostgres:
		return scores.NewSQLStore(cfg.PostgresDSN)
	case config.StoreMemory:
		return scores.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults to $SCORES_CONFIG)")
	flag.Parse()

	envErr := godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		log.Warn("could not load .env", zap.Error(envErr))
	}

	ctx := context.Background()
	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		log.Fatal("open store", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}

	metrics := scores.NewMetrics()
	hub := scores.NewHub(log.Named("hub"), metrics)
	svc := scores.NewService(store, hub, metrics, log.Named("scores"))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           scores.SetupRoutes(svc),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info("score server starting",
		zap.String("addr", srv.Addr),
		zap.String("store", cfg.Store.Backend))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-done
	log.Info("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
	if err := store.Close(shutdownCtx); err != nil {
		log.Warn("close store", zap.Error(err))
	}
}
