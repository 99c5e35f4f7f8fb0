package jobs

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/anuraagbaishya/paladin/pkg/logger"
)

// WorkerConfig holds the configuration for the job worker. Concurrency
// bounds the number of scans and refreshes in flight at once.
type WorkerConfig struct {
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	Concurrency     int
	ScanPriority    int
	RefreshPriority int
}

// Worker processes background scan and refresh jobs.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *logger.Logger
}

// NewWorker creates a background job worker with both processors registered.
func NewWorker(cfg WorkerConfig, scans ScanProcessor, refreshes RefreshProcessor, log *logger.Logger) (*Worker, error) {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.ScanPriority <= 0 {
		cfg.ScanPriority = 6
	}
	if cfg.RefreshPriority <= 0 {
		cfg.RefreshPriority = 2
	}

	server := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		},
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues: map[string]int{
				QueueScans:   cfg.ScanPriority,
				QueueRefresh: cfg.RefreshPriority,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeScanRun, NewScanTaskHandler(scans, log).HandleScan)
	mux.HandleFunc(TypeAdvisoryRefresh, NewRefreshTaskHandler(refreshes, log).HandleRefresh)

	return &Worker{
		server: server,
		mux:    mux,
		logger: log.With("component", "job_worker"),
	}, nil
}

// Start starts the worker.
func (w *Worker) Start() error {
	w.logger.Info("starting job worker")
	return w.server.Start(w.mux)
}

// Stop stops the worker gracefully.
func (w *Worker) Stop() {
	w.logger.Info("stopping job worker")
	w.server.Shutdown()
}

// Run runs the worker until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Start(w.mux)
	}()

	select {
	case <-ctx.Done():
		w.Stop()
		return ctx.Err()
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("worker error: %w", err)
		}
		return nil
	}
}
