// Package jobs runs image enrichment off the request path. A Dispatcher
// executes jobs in-process on a bounded worker pool, while PGQueue hands
// them to the durable table consumed by the worker binary.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cataloger/internal/domain"
	"cataloger/internal/images"
)

// ErrQueueClosed is returned by Enqueue after Stop.
var ErrQueueClosed = errors.New("jobs: queue closed")

// Queue accepts enrichment jobs for later execution.
type Queue interface {
	Enqueue(ctx context.Context, job *domain.EnrichmentJob) error
}

// Processor executes one enrichment job: resolve image URLs for the job's
// categories and write the result back to the catalogue.
type Processor struct {
	enricher   *images.Enricher
	catalogues domain.CatalogueRepository
	logger     zerolog.Logger
}

func NewProcessor(enricher *images.Enricher, catalogues domain.CatalogueRepository, logger zerolog.Logger) *Processor {
	return &Processor{enricher: enricher, catalogues: catalogues, logger: logger}
}

func (p *Processor) Process(ctx context.Context, job *domain.EnrichmentJob) error {
	if job == nil || job.Slug == "" {
		return fmt.Errorf("%w: enrichment job missing slug", domain.ErrInvalidInput)
	}
	current, err := p.catalogues.GetBySlug(ctx, job.Slug)
	if err != nil {
		return fmt.Errorf("read catalogue %s before enrichment: %w", job.Slug, err)
	}
	enriched := p.enricher.EnrichCategories(ctx, job.Services)
	// Write back under whatever status the row holds now. The usage-limit
	// process may have deactivated the catalogue while the job sat queued;
	// enrichment fills images, it never flips status.
	if err := p.catalogues.UpdateServices(ctx, job.Slug, enriched, current.Status); err != nil {
		return fmt.Errorf("persist enriched services for %s: %w", job.Slug, err)
	}
	p.logger.Info().Str("slug", job.Slug).Int("categories", len(enriched)).Msg("jobs: enrichment applied")
	return nil
}

// DispatcherOptions tunes the in-process pool. Zero values get defaults.
type DispatcherOptions struct {
	Workers    int
	Buffer     int
	JobTimeout time.Duration
	Logger     zerolog.Logger
}

// Dispatcher runs enrichment jobs on background goroutines inside the API
// process. Stop drains every accepted job before returning, so a graceful
// shutdown never loses an enrichment that was acknowledged to a client.
type Dispatcher struct {
	processor  *Processor
	jobs       chan *domain.EnrichmentJob
	jobTimeout time.Duration
	logger     zerolog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(processor *Processor, opts DispatcherOptions) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Buffer <= 0 {
		opts.Buffer = 64
	}
	if opts.JobTimeout <= 0 {
		opts.JobTimeout = 2 * time.Minute
	}
	d := &Dispatcher{
		processor:  processor,
		jobs:       make(chan *domain.EnrichmentJob, opts.Buffer),
		jobTimeout: opts.JobTimeout,
		logger:     opts.Logger,
	}
	for i := 0; i < opts.Workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for job := range d.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), d.jobTimeout)
		if err := d.processor.Process(ctx, job); err != nil {
			d.logger.Error().Err(err).Str("slug", job.Slug).Msg("jobs: enrichment failed")
		}
		cancel()
	}
}

func (d *Dispatcher) Enqueue(ctx context.Context, job *domain.EnrichmentJob) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrQueueClosed
	}
	// Holding the lock across the send keeps Stop from closing the channel
	// under an in-flight Enqueue.
	defer d.mu.Unlock()
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	select {
	case d.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop refuses new jobs and waits for queued ones to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

var _ Queue = (*Dispatcher)(nil)

// PGQueue stores jobs in Postgres for the separate worker binary.
type PGQueue struct {
	repo domain.EnrichmentJobRepository
}

func NewPGQueue(repo domain.EnrichmentJobRepository) *PGQueue {
	return &PGQueue{repo: repo}
}

func (q *PGQueue) Enqueue(ctx context.Context, job *domain.EnrichmentJob) error {
	return q.repo.Enqueue(ctx, job)
}

var _ Queue = (*PGQueue)(nil)
