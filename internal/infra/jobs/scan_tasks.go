// Package jobs wires background scan and refresh work onto the Asynq queue.
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
	// TypeScanRun is the task type for running one repository scan.
	TypeScanRun = "scan:run"

	// QueueScans holds scan tasks.
	QueueScans = "scans"
)

// ScanPayload carries everything a scan task needs.
type ScanPayload struct {
	JobID   string `json:"job_id"`
	RepoURL string `json:"repo_url"`
}

// NewScanTask creates a scan task. Scans are never retried automatically; a
// failed scan stays failed and re-submission creates a new job.
func NewScanTask(payload ScanPayload, timeout time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal scan payload: %w", err)
	}

	return asynq.NewTask(TypeScanRun, data,
		asynq.MaxRetry(0),
		asynq.Timeout(timeout),
		asynq.Queue(QueueScans),
	), nil
}

// ScanProcessor runs one scan job end to end. Implemented by ScanService.
type ScanProcessor interface {
	ProcessScan(ctx context.Context, jobID shared.ID, repoURL string) error
}

// ScanTaskHandler handles scan tasks.
type ScanTaskHandler struct {
	processor ScanProcessor
	log       *logger.Logger
}

// NewScanTaskHandler creates a scan task handler.
func NewScanTaskHandler(processor ScanProcessor, log *logger.Logger) *ScanTaskHandler {
	return &ScanTaskHandler{
		processor: processor,
		log:       log.With("component", "scan_task_handler"),
	}
}

// HandleScan unmarshals the payload and hands the job to the processor.
func (h *ScanTaskHandler) HandleScan(ctx context.Context, t *asynq.Task) error {
	var payload ScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.log.Error("failed to unmarshal scan payload", "error", err)
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	jobID, err := shared.IDFromString(payload.JobID)
	if err != nil {
		h.log.Error("invalid job_id", "error", err, "job_id", payload.JobID)
		return fmt.Errorf("invalid job_id: %w", err)
	}

	h.log.Info("processing scan task", "job_id", payload.JobID, "repo", payload.RepoURL)
	return h.processor.ProcessScan(ctx, jobID, payload.RepoURL)
}
