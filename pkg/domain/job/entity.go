// Package job provides the background job entity and its lifecycle.
package job

import (
	"fmt"
	"time"

	"github.com/anuraagbaishya/paladin/pkg/domain/shared"
)

// Kind identifies what a job executes.
type Kind string

const (
	KindScan    Kind = "scan"
	KindRefresh Kind = "refresh"
)

// IsValid checks if the kind is valid.
func (k Kind) IsValid() bool {
	switch k {
	case KindScan, KindRefresh:
		return true
	default:
		return false
	}
}

// Status represents the lifecycle state of a job.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// IsValid checks if the status is valid.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusDone, StatusError:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusError
}

// canTransition defines the monotonic lifecycle:
// pending -> running -> done|error. No transition skips running,
// and terminal states never change.
func (s Status) canTransition(to Status) bool {
	switch s {
	case StatusPending:
		return to == StatusRunning
	case StatusRunning:
		return to == StatusDone || to == StatusError
	default:
		return false
	}
}

// Job represents one background unit of work. A job is never retried;
// re-submission creates a new job.
type Job struct {
	ID        shared.ID
	Kind      Kind
	Target    string // repository URL for scans, lookback descriptor for refreshes
	Status    Status
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates a pending job.
func New(kind Kind, target string) (*Job, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: invalid job kind %q", shared.ErrValidation, kind)
	}
	if target == "" {
		return nil, fmt.Errorf("%w: job target is required", shared.ErrValidation)
	}

	now := time.Now().UTC()
	return &Job{
		ID:        shared.NewID(),
		Kind:      kind,
		Target:    target,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Start transitions the job to running.
func (j *Job) Start() error {
	return j.transition(StatusRunning, "")
}

// Complete transitions the job to done.
func (j *Job) Complete() error {
	return j.transition(StatusDone, "")
}

// Fail transitions the job to error, capturing the failure message verbatim.
func (j *Job) Fail(message string) error {
	return j.transition(StatusError, message)
}

func (j *Job) transition(to Status, message string) error {
	if !j.Status.canTransition(to) {
		return fmt.Errorf("%w: cannot transition job from %s to %s", ErrInvalidTransition, j.Status, to)
	}
	j.Status = to
	j.Error = message
	j.UpdatedAt = time.Now().UTC()
	return nil
}
