package repo

import (
	"context"
	"sync"
	"time"

	"github.com/EdwardBetts/librephotos/internal/domain"
)

// JobRepositoryMemory is a mutex-guarded in-memory implementation of
// domain.JobRepository for development and tests. The single lock serializes
// every transition, which trivially satisfies the per-key atomicity
// requirement.
type JobRepositoryMemory struct {
	mu   sync.Mutex
	jobs map[string]*domain.Job
}

// NewJobRepositoryMemory creates an empty in-memory job repository.
func NewJobRepositoryMemory() *JobRepositoryMemory {
	return &JobRepositoryMemory{jobs: make(map[string]*domain.Job)}
}

func (r *JobRepositoryMemory) CreateOrResume(ctx context.Context, jobID string, jobType domain.JobType, requestedBy string) (*domain.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	job, ok := r.jobs[jobID]
	if !ok {
		job = &domain.Job{
			ID:          jobID,
			Type:        jobType,
			RequestedBy: requestedBy,
			QueuedAt:    now,
			StartedAt:   now,
		}
		r.jobs[jobID] = job
	} else {
		job.StartedAt = now
		job.Finished = false
		job.Failed = false
		job.FinishedAt = time.Time{}
	}
	return cloneJob(job), nil
}

func (r *JobRepositoryMemory) MarkSucceeded(ctx context.Context, jobID string, at time.Time) error {
	return r.finish(ctx, jobID, at, false)
}

func (r *JobRepositoryMemory) MarkFailed(ctx context.Context, jobID string, at time.Time) error {
	return r.finish(ctx, jobID, at, true)
}

func (r *JobRepositoryMemory) finish(ctx context.Context, jobID string, at time.Time, failed bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	job.Finished = true
	job.Failed = failed
	job.FinishedAt = at
	return nil
}

func (r *JobRepositoryMemory) Get(ctx context.Context, jobID string) (*domain.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneJob(job), nil
}

func cloneJob(job *domain.Job) *domain.Job {
	copied := *job
	return &copied
}

var _ domain.JobRepository = (*JobRepositoryMemory)(nil)
