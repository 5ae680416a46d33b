package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EdwardBetts/librephotos/internal/domain"
)

func TestCreateOrResumeCreatesFresh(t *testing.T) {
	r := NewJobRepositoryMemory()
	jobID := uuid.NewString()

	job, err := r.CreateOrResume(context.Background(), jobID, domain.JobTypeGenerate, "alice")
	require.NoError(t, err)

	assert.Equal(t, jobID, job.ID)
	assert.Equal(t, domain.JobTypeGenerate, job.Type)
	assert.Equal(t, "alice", job.RequestedBy)
	assert.False(t, job.QueuedAt.IsZero())
	assert.Equal(t, job.QueuedAt, job.StartedAt)
	assert.False(t, job.Finished)
	assert.False(t, job.Failed)
	assert.True(t, job.FinishedAt.IsZero())
	assert.Equal(t, domain.JobStatusRunning, job.Status())
}

func TestCreateOrResumeIsIdempotent(t *testing.T) {
	r := NewJobRepositoryMemory()
	jobID := uuid.NewString()

	first, err := r.CreateOrResume(context.Background(), jobID, domain.JobTypeGenerate, "alice")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	second, err := r.CreateOrResume(context.Background(), jobID, domain.JobTypeGenerate, "alice")
	require.NoError(t, err)

	assert.Equal(t, first.QueuedAt, second.QueuedAt, "queued_at never changes on resume")
	assert.True(t, second.StartedAt.After(first.StartedAt), "started_at refreshed on resume")
}

func TestResumeReArmsFailedJob(t *testing.T) {
	r := NewJobRepositoryMemory()
	jobID := uuid.NewString()

	_, err := r.CreateOrResume(context.Background(), jobID, domain.JobTypeGenerate, "alice")
	require.NoError(t, err)
	require.NoError(t, r.MarkFailed(context.Background(), jobID, time.Now().UTC()))

	job, err := r.CreateOrResume(context.Background(), jobID, domain.JobTypeGenerate, "alice")
	require.NoError(t, err)

	assert.False(t, job.Finished)
	assert.False(t, job.Failed)
	assert.True(t, job.FinishedAt.IsZero())
}

func TestMarkSucceeded(t *testing.T) {
	r := NewJobRepositoryMemory()
	jobID := uuid.NewString()

	_, err := r.CreateOrResume(context.Background(), jobID, domain.JobTypeGenerate, "alice")
	require.NoError(t, err)

	at := time.Now().UTC()
	require.NoError(t, r.MarkSucceeded(context.Background(), jobID, at))

	job, err := r.Get(context.Background(), jobID)
	require.NoError(t, err)
	assert.True(t, job.Finished)
	assert.False(t, job.Failed)
	assert.Equal(t, at, job.FinishedAt)
	assert.Equal(t, domain.JobStatusSucceeded, job.Status())
}

func TestMarkFailed(t *testing.T) {
	r := NewJobRepositoryMemory()
	jobID := uuid.NewString()

	_, err := r.CreateOrResume(context.Background(), jobID, domain.JobTypeGenerateFromReference, "alice")
	require.NoError(t, err)

	at := time.Now().UTC()
	require.NoError(t, r.MarkFailed(context.Background(), jobID, at))

	job, err := r.Get(context.Background(), jobID)
	require.NoError(t, err)
	assert.True(t, job.Finished)
	assert.True(t, job.Failed)
	assert.Equal(t, at, job.FinishedAt)
	assert.Equal(t, domain.JobStatusFailed, job.Status())
}

func TestMutationsOnUnknownJob(t *testing.T) {
	r := NewJobRepositoryMemory()

	err := r.MarkSucceeded(context.Background(), "missing", time.Now().UTC())
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	err = r.MarkFailed(context.Background(), "missing", time.Now().UTC())
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = r.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestGetReturnsCopy(t *testing.T) {
	r := NewJobRepositoryMemory()
	jobID := uuid.NewString()

	_, err := r.CreateOrResume(context.Background(), jobID, domain.JobTypeGenerate, "alice")
	require.NoError(t, err)

	job, err := r.Get(context.Background(), jobID)
	require.NoError(t, err)
	job.Failed = true

	fresh, err := r.Get(context.Background(), jobID)
	require.NoError(t, err)
	assert.False(t, fresh.Failed, "mutating a returned record must not leak into the store")
}
