package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mongoapi/mongoapi/handlers"
	"github.com/mongoapi/mongoapi/internal/apikey"
	"github.com/mongoapi/mongoapi/internal/collection/repository"
	"github.com/mongoapi/mongoapi/internal/collection/service"
	"github.com/mongoapi/mongoapi/internal/config"
	"github.com/mongoapi/mongoapi/internal/database"
	"github.com/mongoapi/mongoapi/pkg/logger"
	"github.com/mongoapi/mongoapi/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: backend=%s database=%s redis=%v", cfg.Store.Backend, cfg.MongoDB.Database, cfg.Redis.Host != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store repository.Store
	switch cfg.Store.Backend {
	case config.BackendMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		store = repository.NewMemoryStore()
	default:
		client, err := database.ConnectWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, cfg.MongoDB.ConnectAttempts)
		if err != nil {
			logger.Fatalf("could not connect to MongoDB: %v", err)
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		store = repository.NewMongoStore(client.Database(cfg.MongoDB.Database))
		logger.Infof("connected to MongoDB database %s", cfg.MongoDB.Database)
	}

	keys := apikey.NewKeySet(cfg.Auth.APIKeys, loadRedisKeys(ctx, cfg))
	if keys.Len() == 0 {
		logger.Warn("no API keys configured; every collection request will be rejected")
	}
	logger.Infof("loaded %d API key(s)", keys.Len())

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)

	router := handlers.NewRouter(handlers.Deps{
		Keys:    keys,
		Service: service.NewService(store),
	})

	srv := &http.Server{
		Addr:        fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:     router,
		ReadTimeout: cfg.Server.ReadTimeout,
	}

	go func() {
		logger.Infof("starting mongoapi on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
}

// loadRedisKeys reads the optional Redis key set once. Redis being down is not
// fatal; the statically configured keys still apply.
func loadRedisKeys(ctx context.Context, cfg *config.Config) []string {
	if cfg.Redis.Host == "" || cfg.Auth.RedisSet == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	defer func() { _ = client.Close() }()

	loaded, err := apikey.LoadRedisKeys(ctx, client, cfg.Auth.RedisSet)
	if err != nil {
		logger.Warnf("failed to load API keys from Redis (%s): %v", cfg.Redis.Addr(), err)
		return nil
	}
	logger.Infof("loaded %d API key(s) from Redis set %s", len(loaded), cfg.Auth.RedisSet)
	return loaded
}
