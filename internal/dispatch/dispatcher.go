package dispatch

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/EdwardBetts/librephotos/internal/domain"
	"github.com/EdwardBetts/librephotos/internal/infra"
	"github.com/EdwardBetts/librephotos/internal/providers/image"
	"github.com/EdwardBetts/librephotos/internal/storage"
)

const (
	defaultWorkers    = 1
	defaultQueueDepth = 16
)

// Task is one unit of generation work handed to the pool.
type Task struct {
	JobID               string
	Type                domain.JobType
	Prompt              string
	ReferenceArtifactID string
	RequestedBy         string
}

// Options tunes the worker pool. Workers bounds the number of concurrent
// generation calls; QueueDepth bounds how many accepted-but-unstarted
// submissions may pile up before Submit starts refusing.
type Options struct {
	Workers    int
	QueueDepth int
}

// Dispatcher accepts generation requests on the caller's path and executes
// them on a bounded pool of worker goroutines. Submit never waits on the
// expensive generation call.
type Dispatcher struct {
	jobs      domain.JobRepository
	store     *storage.FileStore
	generator image.Generator
	logger    infra.Logger

	queue    chan Task
	stop     chan struct{}
	stopOnce sync.Once
	stopped  atomic.Bool
	wg       sync.WaitGroup

	workers int
}

// New wires a dispatcher from its collaborators.
func New(jobs domain.JobRepository, store *storage.FileStore, generator image.Generator, logger infra.Logger, opts Options) *Dispatcher {
	workers := opts.Workers
	if workers < 1 {
		workers = defaultWorkers
	}
	depth := opts.QueueDepth
	if depth < 1 {
		depth = defaultQueueDepth
	}
	return &Dispatcher{
		jobs:      jobs,
		store:     store,
		generator: generator,
		logger:    logger,
		queue:     make(chan Task, depth),
		stop:      make(chan struct{}),
		workers:   workers,
	}
}

// Start spawns the worker goroutines.
func (d *Dispatcher) Start(ctx context.Context) {
	d.logger.Info().Int("workers", d.workers).Int("queue_depth", cap(d.queue)).Msg("dispatch: starting worker pool")
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.workerLoop(ctx, i)
	}
}

// Stop signals the workers and waits for in-flight jobs to finish. Queued
// tasks that no worker has picked up yet are dropped; their job records were
// never created, so resubmission under the same identifier starts cleanly.
// Stop is idempotent.
func (d *Dispatcher) Stop() {
	d.stopped.Store(true)
	d.stopOnce.Do(func() { close(d.stop) })
	d.wg.Wait()
}

// Submit validates the request, assigns a job identifier and enqueues the
// work. It returns as soon as the task is accepted; all blocking work
// happens on the pool. ErrQueueFull is returned when the pending depth is
// exhausted, ErrDispatcherStopped once Stop has been called.
func (d *Dispatcher) Submit(req domain.GenerationRequest) (string, error) {
	if d.stopped.Load() {
		return "", domain.ErrDispatcherStopped
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", domain.ErrInvalidPrompt
	}
	if strings.TrimSpace(req.RequestedBy) == "" {
		return "", domain.ErrInvalidPrincipal
	}

	jobType := domain.JobTypeGenerate
	if req.ReferenceArtifactID != "" {
		jobType = domain.JobTypeGenerateFromReference
	}
	jobID := req.JobID
	if jobID == "" {
		jobID = uuid.NewString()
	}

	task := Task{
		JobID:               jobID,
		Type:                jobType,
		Prompt:              prompt,
		ReferenceArtifactID: req.ReferenceArtifactID,
		RequestedBy:         req.RequestedBy,
	}
	select {
	case d.queue <- task:
		d.logger.Info().Str("job_id", jobID).Str("job_type", string(jobType)).Msg("dispatch: job accepted")
		return jobID, nil
	default:
		d.logger.Warn().Str("job_id", jobID).Msg("dispatch: queue full, refusing submission")
		return "", domain.ErrQueueFull
	}
}

func (d *Dispatcher) workerLoop(ctx context.Context, workerNum int) {
	defer d.wg.Done()
	d.logger.Debug().Int("worker", workerNum).Msg("dispatch: worker started")
	for {
		select {
		case <-d.stop:
			return
		case <-ctx.Done():
			return
		case task := <-d.queue:
			d.run(ctx, task)
		}
	}
}
