package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/ignite/newsletter/internal/api"
	"github.com/ignite/newsletter/internal/config"
	"github.com/ignite/newsletter/internal/emailclient"
	"github.com/ignite/newsletter/internal/pkg/logger"
	"github.com/ignite/newsletter/internal/pkg/ratelimit"
	"github.com/ignite/newsletter/internal/repository/postgres"
	"github.com/ignite/newsletter/internal/service/newsletter"
	"github.com/ignite/newsletter/internal/service/subscription"
)

// dispatchLockTTL must outlast the longest plausible dispatch run; an
// expired lock self-heals, so generous is fine.
const dispatchLockTTL = 10 * time.Minute

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		logger.Error("config load failed", "err", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN().ExposeSecret())
	if err != nil {
		logger.Error("database open failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		logger.Error("database unreachable", "err", err)
		os.Exit(1)
	}
	logger.Info("database connected", "name", cfg.Database.Name)

	// Redis is optional: without it the subscribe endpoint is unthrottled
	// and dispatch runs are unguarded.
	var limiter *ratelimit.Limiter
	var guard newsletter.Guard
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Error("redis url invalid", "err", err)
			os.Exit(1)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()

		perMinute := cfg.Redis.SubscribePerMinute
		if perMinute <= 0 {
			perMinute = 10
		}
		limiter = ratelimit.New(rdb, perMinute, time.Minute)
		guard = newsletter.NewRedisGuard(rdb, dispatchLockTTL)
		logger.Info("redis connected", "subscribe_per_minute", perMinute)
	}

	repo := postgres.NewSubscriberRepo(db)
	sender := emailclient.NewClient(cfg.Email)
	subs := subscription.NewService(repo, sender)
	dispatcher := newsletter.NewDispatcher(repo, sender, cfg.Newsletter.WorkerCount(), guard)

	srv := api.NewServer(api.NewHandlers(subs, dispatcher), limiter)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr())
		errCh <- srv.ListenAndServe(cfg.Server.Addr())
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error("server failed", "err", err)
		os.Exit(1)
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "err", err)
			os.Exit(1)
		}
	}
}
