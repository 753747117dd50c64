package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"mifoto-print/logger"
	"mifoto-print/models"
)

// RenderJob is one copy to compose.
type RenderJob struct {
	LineItemID string
	SizeID     string
	Copy       models.Copy
	Photo      models.SourcePhoto
	Scale      float64
}

// RenderOutcome pairs a job with its result or error.
type RenderOutcome struct {
	Job    RenderJob
	Result *models.CompositionResult
	Err    error
}

// RenderBatch renders jobs with at most workers in flight. Outcomes keep the order of
// jobs. A failed job never stops the others; jobs not started before ctx is cancelled
// report ctx.Err().
func (c *Compositor) RenderBatch(ctx context.Context, jobs []RenderJob, workers int) []RenderOutcome {
	if workers < 1 {
		workers = 1
	}
	outcomes := make([]RenderOutcome, len(jobs))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, job := range jobs {
		outcomes[i].Job = job
		if err := ctx.Err(); err != nil {
			outcomes[i].Err = err
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i].Err = err
				return nil
			}
			result, err := c.RenderCopy(ctx, job.Photo, job.SizeID, job.Copy, job.Scale)
			outcomes[i].Result = result
			outcomes[i].Err = err
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		logger.L().Warnf("⚠️  Render batch finished with %d/%d failed copies", failed, len(jobs))
	} else {
		logger.L().Infof("✅ Rendered %d copies", len(jobs))
	}
	return outcomes
}

// Results returns the successful results keyed by copy id.
func Results(outcomes []RenderOutcome) map[string]*models.CompositionResult {
	out := make(map[string]*models.CompositionResult, len(outcomes))
	for _, o := range outcomes {
		if o.Err == nil && o.Result != nil {
			out[o.Job.Copy.CopyID] = o.Result
		}
	}
	return out
}

// FirstError returns the first failed outcome's error, or nil.
func FirstError(outcomes []RenderOutcome) error {
	for _, o := range outcomes {
		if o.Err != nil {
			return o.Err
		}
	}
	return nil
}
