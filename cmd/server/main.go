package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hongminglow/tenantauth/internal/config"
	"github.com/hongminglow/tenantauth/internal/observability"
	"github.com/hongminglow/tenantauth/internal/server"
	"github.com/hongminglow/tenantauth/internal/storage"
	"github.com/hongminglow/tenantauth/internal/storage/memory"
	"github.com/hongminglow/tenantauth/internal/storage/postgres"
)

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := observability.NewLogger(cfg.Env)

	ctx := context.Background()
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("init storage: %v", err)
	}
	defer store.Close()

	tracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: cfg.ServiceName,
		Insecure:    cfg.Development(),
	}, logger)
	if err != nil {
		logger.Fatalf("init tracing: %v", err)
	}

	srv := server.New(cfg, store, logger, observability.NewMetrics(), tracing.Provider)

	go func() {
		logger.Info("tenantauth listening", "addr", cfg.HTTPAddress(), "storage", cfg.StorageDriver)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error("graceful shutdown error", "error", err)
	}
	if err := tracing.Shutdown(ctxShutdown); err != nil {
		logger.Error("tracing shutdown error", "error", err)
	}
}

func openStore(ctx context.Context, cfg config.Config, logger *observability.Logger) (storage.Store, error) {
	if cfg.StorageDriver == config.DriverMemory {
		logger.Warn("using in-memory storage; data is lost on restart")
		return memory.New(), nil
	}
	pg, err := postgres.NewStore(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}
	return pg, nil
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
}
