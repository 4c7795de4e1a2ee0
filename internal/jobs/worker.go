package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"cataloger/internal/domain"
)

// Worker polls the durable queue and executes claimed jobs. Claims use
// FOR UPDATE SKIP LOCKED underneath, so running multiple workers is safe.
type Worker struct {
	repo       domain.EnrichmentJobRepository
	processor  *Processor
	interval   time.Duration
	jobTimeout time.Duration
	logger     zerolog.Logger
}

type WorkerOptions struct {
	PollInterval time.Duration
	JobTimeout   time.Duration
	Logger       zerolog.Logger
}

func NewWorker(repo domain.EnrichmentJobRepository, processor *Processor, opts WorkerOptions) *Worker {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if opts.JobTimeout <= 0 {
		opts.JobTimeout = 2 * time.Minute
	}
	return &Worker{
		repo:       repo,
		processor:  processor,
		interval:   opts.PollInterval,
		jobTimeout: opts.JobTimeout,
		logger:     opts.Logger,
	}
}

// Run claims and processes jobs until ctx is cancelled. An empty queue
// backs off for the poll interval; any other claim error does the same
// after logging.
func (w *Worker) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		job, err := w.repo.Claim(ctx)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				w.logger.Error().Err(err).Msg("worker: claim failed")
			}
			if !w.sleep(ctx) {
				return ctx.Err()
			}
			continue
		}
		w.handle(ctx, job)
	}
}

func (w *Worker) handle(ctx context.Context, job *domain.EnrichmentJob) {
	jobCtx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	defer cancel()

	err := w.processor.Process(jobCtx, job)
	status, errMsg := domain.EnrichmentSucceeded, ""
	if err != nil {
		status, errMsg = domain.EnrichmentFailed, err.Error()
		w.logger.Error().Err(err).Str("job_id", job.ID).Str("slug", job.Slug).Msg("worker: job failed")
	} else {
		w.logger.Info().Str("job_id", job.ID).Str("slug", job.Slug).Msg("worker: job done")
	}
	if markErr := w.repo.MarkDone(ctx, job.ID, status, errMsg); markErr != nil {
		w.logger.Error().Err(markErr).Str("job_id", job.ID).Msg("worker: mark done failed")
	}
}

func (w *Worker) sleep(ctx context.Context) bool {
	timer := time.NewTimer(w.interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
