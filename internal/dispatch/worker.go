package dispatch

import (
	"context"
	"time"

	"github.com/EdwardBetts/librephotos/internal/imaging"
	"github.com/EdwardBetts/librephotos/internal/providers/image"
)

// run executes one job end to end. Every failure past the claim is recovered
// into a terminal record state; nothing escapes to the pool.
func (d *Dispatcher) run(ctx context.Context, task Task) {
	log := d.logger.With().
		Str("job_id", task.JobID).
		Str("job_type", string(task.Type)).
		Str("requested_by", task.RequestedBy).
		Logger()

	if _, err := d.jobs.CreateOrResume(ctx, task.JobID, task.Type, task.RequestedBy); err != nil {
		log.Error().Err(err).Msg("worker: claim job failed")
		return
	}
	log.Info().Msg("worker: picked job")

	path, err := d.execute(ctx, task)

	// The terminal transition must land even when the pool context was
	// cancelled by shutdown mid-job; otherwise the record is stranded
	// non-terminal while the artifact already exists.
	markCtx := context.WithoutCancel(ctx)
	now := time.Now().UTC()
	if err != nil {
		log.Error().Err(err).Msg("worker: job failed")
		if markErr := d.jobs.MarkFailed(markCtx, task.JobID, now); markErr != nil {
			log.Error().Err(markErr).Msg("worker: recording failure failed")
		}
		return
	}
	if err := d.jobs.MarkSucceeded(markCtx, task.JobID, now); err != nil {
		log.Error().Err(err).Msg("worker: recording success failed")
		return
	}
	log.Info().Str("artifact", path).Msg("worker: artifact ready")
}

// execute invokes the generator and publishes the resulting artifact,
// returning the published path.
func (d *Dispatcher) execute(ctx context.Context, task Task) (string, error) {
	asset, err := d.generate(ctx, task)
	if err != nil {
		return "", err
	}
	dir, err := d.store.Namespace(task.RequestedBy)
	if err != nil {
		return "", err
	}
	path, err := d.store.Resolve(dir, task.Prompt)
	if err != nil {
		return "", err
	}
	if err := d.store.WriteAtomic(path, asset.Data); err != nil {
		return "", err
	}
	return path, nil
}

func (d *Dispatcher) generate(ctx context.Context, task Task) (image.Asset, error) {
	req := image.GenerateRequest{Prompt: task.Prompt, RequestID: task.JobID}
	if task.ReferenceArtifactID == "" {
		return d.generator.Generate(ctx, req)
	}
	seed, err := d.store.ReadArtifact(task.RequestedBy, task.ReferenceArtifactID)
	if err != nil {
		return image.Asset{}, err
	}
	normalized, err := imaging.NormalizeReference(seed)
	if err != nil {
		return image.Asset{}, err
	}
	return d.generator.GenerateFromReference(ctx, req, normalized)
}
