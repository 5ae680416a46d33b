package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/EdwardBetts/librephotos/internal/domain"
)

// JobRepositoryPG implements domain.JobRepository on PostgreSQL. Per-key
// atomicity of the lifecycle transitions relies on single-statement upserts
// and row-level locking, so no additional application-side locking is needed.
type JobRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewJobRepository creates a new job repository backed by PostgreSQL.
func NewJobRepository(pool *pgxpool.Pool) *JobRepositoryPG {
	return &JobRepositoryPG{pool: pool}
}

const schema = `
CREATE TABLE IF NOT EXISTS long_running_jobs (
    job_id       TEXT PRIMARY KEY,
    job_type     TEXT NOT NULL,
    requested_by TEXT NOT NULL,
    queued_at    TIMESTAMPTZ NOT NULL,
    started_at   TIMESTAMPTZ NOT NULL,
    finished_at  TIMESTAMPTZ,
    finished     BOOLEAN NOT NULL DEFAULT FALSE,
    failed       BOOLEAN NOT NULL DEFAULT FALSE
);
`

// EnsureSchema creates the jobs table when it does not exist yet.
func (r *JobRepositoryPG) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure jobs schema: %w", err)
	}
	return nil
}

// CreateOrResume upserts the record. Resuming an existing job refreshes
// started_at and re-arms the terminal flags while keeping queued_at.
func (r *JobRepositoryPG) CreateOrResume(ctx context.Context, jobID string, jobType domain.JobType, requestedBy string) (*domain.Job, error) {
	query := `
INSERT INTO long_running_jobs (job_id, job_type, requested_by, queued_at, started_at, finished, failed)
VALUES ($1, $2, $3, NOW(), NOW(), FALSE, FALSE)
ON CONFLICT (job_id) DO UPDATE
SET started_at = NOW(),
    finished = FALSE,
    failed = FALSE,
    finished_at = NULL
RETURNING job_id, job_type, requested_by, queued_at, started_at, finished_at, finished, failed;
`
	row := r.pool.QueryRow(ctx, query, jobID, jobType, requestedBy)
	return scanJob(row)
}

// MarkSucceeded transitions the record to a successful terminal state.
func (r *JobRepositoryPG) MarkSucceeded(ctx context.Context, jobID string, at time.Time) error {
	query := `
UPDATE long_running_jobs
SET finished = TRUE,
    failed = FALSE,
    finished_at = $2
WHERE job_id = $1;
`
	tag, err := r.pool.Exec(ctx, query, jobID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkFailed transitions the record to a failed terminal state.
func (r *JobRepositoryPG) MarkFailed(ctx context.Context, jobID string, at time.Time) error {
	query := `
UPDATE long_running_jobs
SET finished = TRUE,
    failed = TRUE,
    finished_at = $2
WHERE job_id = $1;
`
	tag, err := r.pool.Exec(ctx, query, jobID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Get fetches a job record by its identifier.
func (r *JobRepositoryPG) Get(ctx context.Context, jobID string) (*domain.Job, error) {
	query := `
SELECT job_id, job_type, requested_by, queued_at, started_at, finished_at, finished, failed
FROM long_running_jobs
WHERE job_id = $1;
`
	row := r.pool.QueryRow(ctx, query, jobID)
	return scanJob(row)
}

func scanJob(row pgx.Row) (*domain.Job, error) {
	var job domain.Job
	var finishedAt *time.Time
	if err := row.Scan(
		&job.ID,
		&job.Type,
		&job.RequestedBy,
		&job.QueuedAt,
		&job.StartedAt,
		&finishedAt,
		&job.Finished,
		&job.Failed,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if finishedAt != nil {
		job.FinishedAt = *finishedAt
	}
	return &job, nil
}

var _ domain.JobRepository = (*JobRepositoryPG)(nil)
