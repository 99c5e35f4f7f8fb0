package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/anuraagbaishya/paladin/pkg/logger"
)

const (
	scanTaskTimeout    = 30 * time.Minute
	refreshTaskTimeout = 30 * time.Minute
)

// Client enqueues background jobs using Asynq.
type Client struct {
	client *asynq.Client
	logger *logger.Logger
}

// ClientConfig contains Redis connection settings for the job client.
type ClientConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// NewClient creates a new job client for enqueueing tasks.
func NewClient(cfg ClientConfig, log *logger.Logger) (*Client, error) {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	return &Client{
		client: client,
		logger: log.With("component", "job_client"),
	}, nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// EnqueueScan enqueues a repository scan.
func (c *Client) EnqueueScan(ctx context.Context, payload ScanPayload) error {
	task, err := NewScanTask(payload, scanTaskTimeout)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	info, err := c.client.EnqueueContext(ctx, task)
	if err != nil {
		c.logger.Error("failed to enqueue scan",
			"job_id", payload.JobID,
			"repo", payload.RepoURL,
			"error", err,
		)
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	c.logger.Info("scan queued",
		"task_id", info.ID,
		"job_id", payload.JobID,
		"repo", payload.RepoURL,
		"queue", info.Queue,
	)
	return nil
}

// EnqueueRefresh enqueues an advisory refresh.
func (c *Client) EnqueueRefresh(ctx context.Context, payload RefreshPayload) error {
	task, err := NewRefreshTask(payload, refreshTaskTimeout)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	info, err := c.client.EnqueueContext(ctx, task)
	if err != nil {
		c.logger.Error("failed to enqueue refresh",
			"job_id", payload.JobID,
			"days", payload.Days,
			"error", err,
		)
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	c.logger.Info("refresh queued",
		"task_id", info.ID,
		"job_id", payload.JobID,
		"days", payload.Days,
		"queue", info.Queue,
	)
	return nil
}
