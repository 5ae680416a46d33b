package domain

import (
	"context"
	"time"
)

// JobRepository defines persistence for long-running job records. All
// mutations for a given job identifier must be serialized by the
// implementation so that concurrent transitions cannot interleave
// inconsistently.
type JobRepository interface {
	// CreateOrResume inserts a fresh record for jobID with QueuedAt and
	// StartedAt set to now, or, when a record already exists, refreshes
	// StartedAt and re-arms the terminal flags while preserving QueuedAt.
	// Submission is therefore idempotent per job identifier.
	CreateOrResume(ctx context.Context, jobID string, jobType JobType, requestedBy string) (*Job, error)

	// MarkSucceeded transitions the record to finished without failure.
	// Returns ErrNotFound when no record exists for jobID.
	MarkSucceeded(ctx context.Context, jobID string, at time.Time) error

	// MarkFailed transitions the record to finished with the failed flag
	// set. Returns ErrNotFound when no record exists for jobID.
	MarkFailed(ctx context.Context, jobID string, at time.Time) error

	// Get fetches a record by identifier. Returns ErrNotFound when absent.
	Get(ctx context.Context, jobID string) (*Job, error)
}
