package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/EdwardBetts/librephotos/internal/domain"
	"github.com/EdwardBetts/librephotos/internal/middleware"
)

type generateRequest struct {
	Prompt string `json:"prompt"`
	// JobID is optional; resubmitting an identifier re-arms the existing
	// record instead of creating a new job.
	JobID string `json:"job_id"`
}

type generateFromReferenceRequest struct {
	Prompt              string `json:"prompt"`
	ReferenceArtifactID string `json:"reference_artifact_id"`
	JobID               string `json:"job_id"`
}

type jobAcceptedResponse struct {
	JobID string `json:"job_id"`
}

// GenerateImage accepts a cold generation request and returns the job
// identifier immediately; callers poll JobStatus for the outcome.
func (a *App) GenerateImage(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	if principal == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	a.submit(w, domain.GenerationRequest{
		JobID:       req.JobID,
		Prompt:      req.Prompt,
		RequestedBy: principal,
	})
}

// GenerateImageFromReference accepts a generation request seeded by a
// previously generated artifact.
func (a *App) GenerateImageFromReference(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	if principal == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req generateFromReferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.ReferenceArtifactID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "reference_artifact_id required")
		return
	}
	a.submit(w, domain.GenerationRequest{
		JobID:               req.JobID,
		Prompt:              req.Prompt,
		ReferenceArtifactID: req.ReferenceArtifactID,
		RequestedBy:         principal,
	})
}

func (a *App) submit(w http.ResponseWriter, req domain.GenerationRequest) {
	jobID, err := a.Dispatcher.Submit(req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidPrompt):
			a.error(w, http.StatusBadRequest, "bad_request", "prompt required")
		case errors.Is(err, domain.ErrInvalidPrincipal):
			a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		case errors.Is(err, domain.ErrQueueFull):
			a.error(w, http.StatusTooManyRequests, "queue_full", "generation queue is full, retry later")
		case errors.Is(err, domain.ErrDispatcherStopped):
			a.error(w, http.StatusServiceUnavailable, "unavailable", "service is shutting down")
		default:
			a.Logger.Error().Err(err).Msg("api: submit failed")
			a.error(w, http.StatusInternalServerError, "internal", "failed to queue job")
		}
		return
	}
	a.json(w, http.StatusAccepted, jobAcceptedResponse{JobID: jobID})
}

// JobStatus reports the lifecycle state of one job. A failed job is only
// distinguishable from a succeeded one by the failed flag.
func (a *App) JobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "job_id required")
		return
	}
	job, err := a.Jobs.Get(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "job not found")
			return
		}
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("api: job lookup failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load job")
		return
	}

	var finishedAt any
	if job.Finished {
		finishedAt = job.FinishedAt
	}
	a.json(w, http.StatusOK, map[string]any{
		"job_id":       job.ID,
		"job_type":     job.Type,
		"status":       job.Status(),
		"requested_by": job.RequestedBy,
		"queued_at":    job.QueuedAt,
		"started_at":   job.StartedAt,
		"finished_at":  finishedAt,
		"finished":     job.Finished,
		"failed":       job.Failed,
	})
}
