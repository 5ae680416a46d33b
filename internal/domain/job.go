package domain

import "time"

// JobType enumerates supported generation job categories.
type JobType string

const (
	JobTypeGenerate              JobType = "generate"
	JobTypeGenerateFromReference JobType = "generate-from-reference"
)

// JobStatus enumerates job lifecycle states. Queued and running are not
// stored; they are derived from the record (a job is running from the moment
// it is created, since StartedAt is set at creation and on every resume).
type JobStatus string

const (
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// Job is the durable record of one long-running generation request.
// FinishedAt is set exactly once, when the record reaches a terminal state;
// Failed can only be true when Finished is true.
type Job struct {
	ID          string
	Type        JobType
	RequestedBy string
	QueuedAt    time.Time
	StartedAt   time.Time
	FinishedAt  time.Time
	Finished    bool
	Failed      bool
}

// Status derives the lifecycle state from the terminal flags.
func (j *Job) Status() JobStatus {
	switch {
	case j.Finished && j.Failed:
		return JobStatusFailed
	case j.Finished:
		return JobStatusSucceeded
	default:
		return JobStatusRunning
	}
}

// GenerationRequest carries one submission through the dispatcher. It is not
// persisted on its own; the dispatcher folds it into a Job plus worker-local
// parameters.
type GenerationRequest struct {
	// JobID is optional. When empty the dispatcher mints a fresh identifier;
	// when set, submission re-arms any existing record under that identifier.
	JobID string

	Prompt string

	// ReferenceArtifactID names a previously generated artifact in the
	// principal's namespace to use as the seed image. Empty for cold
	// generation.
	ReferenceArtifactID string

	RequestedBy string
}
