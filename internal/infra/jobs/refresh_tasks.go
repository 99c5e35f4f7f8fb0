package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/anuraagbaishya/paladin/pkg/domain/shared"
	"github.com/anuraagbaishya/paladin/pkg/logger"
)

const (
	// TypeAdvisoryRefresh is the task type for an advisory refresh run.
	TypeAdvisoryRefresh = "advisory:refresh"

	// QueueRefresh holds refresh tasks.
	QueueRefresh = "refresh"
)

// RefreshPayload carries the refresh job id and its lookback window.
type RefreshPayload struct {
	JobID string `json:"job_id"`
	Days  int    `json:"days"`
}

// NewRefreshTask creates a refresh task. Like scans, refreshes are never
// retried by the queue.
func NewRefreshTask(payload RefreshPayload, timeout time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal refresh payload: %w", err)
	}

	return asynq.NewTask(TypeAdvisoryRefresh, data,
		asynq.MaxRetry(0),
		asynq.Timeout(timeout),
		asynq.Queue(QueueRefresh),
	), nil
}

// RefreshProcessor runs one advisory refresh. Implemented by RefreshService.
type RefreshProcessor interface {
	ProcessRefresh(ctx context.Context, jobID shared.ID, days int) error
}

// RefreshTaskHandler handles refresh tasks.
type RefreshTaskHandler struct {
	processor RefreshProcessor
	log       *logger.Logger
}

// NewRefreshTaskHandler creates a refresh task handler.
func NewRefreshTaskHandler(processor RefreshProcessor, log *logger.Logger) *RefreshTaskHandler {
	return &RefreshTaskHandler{
		processor: processor,
		log:       log.With("component", "refresh_task_handler"),
	}
}

// HandleRefresh unmarshals the payload and hands the job to the processor.
func (h *RefreshTaskHandler) HandleRefresh(ctx context.Context, t *asynq.Task) error {
	var payload RefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.log.Error("failed to unmarshal refresh payload", "error", err)
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	jobID, err := shared.IDFromString(payload.JobID)
	if err != nil {
		h.log.Error("invalid job_id", "error", err, "job_id", payload.JobID)
		return fmt.Errorf("invalid job_id: %w", err)
	}

	h.log.Info("processing refresh task", "job_id", payload.JobID, "days", payload.Days)
	return h.processor.ProcessRefresh(ctx, jobID, payload.Days)
}
