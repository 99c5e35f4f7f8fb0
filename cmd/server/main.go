package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/anuraagbaishya/paladin/internal/config"
	"github.com/anuraagbaishya/paladin/internal/infra/http"
	"github.com/anuraagbaishya/paladin/internal/infra/http/routes"
	"github.com/anuraagbaishya/paladin/internal/infra/jobs"
	"github.com/anuraagbaishya/paladin/internal/infra/postgres"
	"github.com/anuraagbaishya/paladin/internal/infra/redis"
	"github.com/anuraagbaishya/paladin/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log := logger.NewDefault()
		log.Error("failed to load configuration", "error", err)
		return 1
	}

	log := initLogger(cfg)
	log.Info("starting application", "app", cfg.App.Name, "env", cfg.App.Env)

	// Infrastructure
	db, err := postgres.New(&cfg.Database)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		return 1
	}
	defer closeWithLog(db, "database", log)

	if err := db.Migrate(ctx); err != nil {
		log.Error("failed to run migrations", "error", err)
		return 1
	}
	log.Info("database connected")

	redisClient, err := redis.New(&cfg.Redis, log)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		return 1
	}
	defer closeWithLog(redisClient, "redis", log)
	log.Info("redis connected")

	// Job queue
	jobClient, err := jobs.NewClient(jobs.ClientConfig{
		RedisAddr:     cfg.Redis.Addr(),
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DB,
	}, log)
	if err != nil {
		log.Error("failed to initialize job client", "error", err)
		return 1
	}
	defer closeWithLog(jobClient, "job client", log)

	// Services
	services, err := NewServices(cfg, db, redisClient, jobClient, log)
	if err != nil {
		log.Error("failed to initialize services", "error", err)
		return 1
	}
	log.Info("services initialized")

	// Background worker
	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisAddr:       cfg.Redis.Addr(),
		RedisPassword:   cfg.Redis.Password,
		RedisDB:         cfg.Redis.DB,
		Concurrency:     cfg.Worker.Concurrency,
		ScanPriority:    cfg.Worker.ScanQueuePriority,
		RefreshPriority: cfg.Worker.RefreshQueuePriority,
	}, services.Scan, services.Refresh, log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		return 1
	}
	if err := worker.Start(); err != nil {
		log.Error("failed to start worker", "error", err)
		return 1
	}
	log.Info("worker started", "concurrency", cfg.Worker.Concurrency)

	// Scheduled advisory refresh
	scheduler, err := startScheduler(cfg, services.Refresh, log)
	if err != nil {
		log.Error("failed to start refresh scheduler", "error", err)
		return 1
	}

	// HTTP server
	server := http.NewServer(cfg, log)
	routes.Register(server.Router(), NewHandlers(services, db, redisClient, log))

	go func() {
		if err := server.Start(); err != nil {
			log.Error("server error", "error", err)
		}
	}()
	log.Info("application started", "http_addr", cfg.Server.Addr())

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if scheduler != nil {
		scheduler.Stop()
	}
	worker.Stop()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
		return 1
	}

	log.Info("application stopped")
	return 0
}

func initLogger(cfg *config.Config) *logger.Logger {
	level := cfg.Log.Level
	if cfg.App.Debug {
		level = "debug"
	}
	log := logger.New(logger.Config{
		Level:  level,
		Format: cfg.Log.Format,
	})
	log.SetDefault()
	return log
}

type closer interface {
	Close() error
}

func closeWithLog(c closer, name string, log *logger.Logger) {
	if err := c.Close(); err != nil {
		log.Error("failed to close "+name, "error", err)
	}
}
