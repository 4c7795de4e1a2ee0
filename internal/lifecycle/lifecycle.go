// Package lifecycle drives a catalogue generation run end to end: slug the
// draft, persist it as preparing, generate and order categories, then flip
// the record to active or error. The status row is the source of truth a
// client polls while the run is in flight.
package lifecycle

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"cataloger/internal/domain"
	"cataloger/internal/generate"
	"cataloger/internal/images"
	"cataloger/internal/infra"
	"cataloger/internal/jobs"
	"cataloger/internal/slug"
)

// Request is one generation run. Source selects the pipeline: ai_prompt is
// a single structured completion, ocr_import segments the text first and
// fans out per chunk.
type Request struct {
	UserID     string
	Source     domain.Source
	InputText  string
	Meta       domain.Meta
	WithImages bool
}

// Revalidator invalidates any downstream cache of the published catalogue.
// Failures are logged and never fail a run.
type Revalidator interface {
	Revalidate(ctx context.Context, slug string) error
}

type Options struct {
	Catalogues  domain.CatalogueRepository
	Usage       domain.UsageRepository
	Generator   *generate.Generator
	Orderer     *generate.Orderer
	Enricher    *images.Enricher
	Queue       jobs.Queue
	EnrichMode  string
	Revalidator Revalidator
	Logger      zerolog.Logger
}

// Runner orchestrates generation runs.
type Runner struct {
	catalogues  domain.CatalogueRepository
	usage       domain.UsageRepository
	generator   *generate.Generator
	orderer     *generate.Orderer
	enricher    *images.Enricher
	queue       jobs.Queue
	enrichMode  string
	revalidator Revalidator
	logger      zerolog.Logger
}

func NewRunner(opts Options) (*Runner, error) {
	if opts.Catalogues == nil {
		return nil, fmt.Errorf("lifecycle: catalogue repository is required")
	}
	if opts.Generator == nil {
		return nil, fmt.Errorf("lifecycle: generator is required")
	}
	if opts.EnrichMode == "" {
		opts.EnrichMode = infra.EnrichModeSync
	}
	if opts.EnrichMode != infra.EnrichModeSync && opts.Queue == nil {
		return nil, fmt.Errorf("lifecycle: enrich mode %q needs a queue", opts.EnrichMode)
	}
	if opts.EnrichMode == infra.EnrichModeSync && opts.Enricher == nil {
		return nil, fmt.Errorf("lifecycle: sync enrich mode needs an enricher")
	}
	return &Runner{
		catalogues:  opts.Catalogues,
		usage:       opts.Usage,
		generator:   opts.Generator,
		orderer:     opts.Orderer,
		enricher:    opts.Enricher,
		queue:       opts.Queue,
		enrichMode:  opts.EnrichMode,
		revalidator: opts.Revalidator,
		logger:      opts.Logger,
	}, nil
}

// Run executes one generation request and returns the slug of the draft.
// The slug is deterministic for a given catalogue name, so a retried
// request lands on the same record instead of creating a second one.
func (r *Runner) Run(ctx context.Context, req Request) (string, error) {
	if err := validate(req); err != nil {
		return "", err
	}
	s := slug.Make(req.Meta.Name)
	if s == "" {
		return "", fmt.Errorf("%w: catalogue name %q yields no slug", domain.ErrInvalidInput, req.Meta.Name)
	}
	logger := r.logger.With().Str("slug", s).Str("source", string(req.Source)).Logger()

	draft := domain.NewDraft(s, req.Meta, req.Source, req.UserID)
	if err := r.catalogues.Insert(ctx, draft); err != nil {
		return "", err
	}
	if err := r.resetIfErrored(ctx, s, logger); err != nil {
		return "", err
	}
	logger.Info().Msg("lifecycle: draft persisted, generation started")

	categories, err := r.generate(ctx, req)
	if err != nil {
		r.fail(ctx, s, logger)
		r.revalidate(ctx, s, logger)
		return s, err
	}

	if r.orderer != nil {
		categories = r.orderer.Order(ctx, categories, req.Meta)
	}

	if req.WithImages && r.enrichMode == infra.EnrichModeSync {
		categories = r.enricher.EnrichCategories(ctx, categories)
	}

	if err := r.catalogues.UpdateServices(ctx, s, categories, domain.StatusActive); err != nil {
		r.fail(ctx, s, logger)
		r.revalidate(ctx, s, logger)
		return s, err
	}
	logger.Info().Int("categories", len(categories)).Msg("lifecycle: catalogue active")

	if req.WithImages && r.enrichMode != infra.EnrichModeSync {
		job := &domain.EnrichmentJob{Slug: s, UserID: req.UserID, Services: categories}
		if err := r.queue.Enqueue(ctx, job); err != nil {
			logger.Error().Err(err).Msg("lifecycle: enrichment enqueue failed")
		}
	}

	r.recordUsage(ctx, req, s, logger)
	r.revalidate(ctx, s, logger)
	return s, nil
}

func (r *Runner) generate(ctx context.Context, req Request) ([]domain.Category, error) {
	switch req.Source {
	case domain.SourceOCR:
		return r.generator.FromText(ctx, req.InputText, req.Meta, req.WithImages)
	default:
		return r.generator.FromPrompt(ctx, req.InputText, req.Meta, req.WithImages)
	}
}

// resetIfErrored moves a leftover errored row back to preparing. The slug is
// deterministic, so a retry of a failed run lands on the same record, which
// the insert no-ops on; without the reset the final activation write would
// have no legal path out of error.
func (r *Runner) resetIfErrored(ctx context.Context, s string, logger zerolog.Logger) error {
	current, err := r.catalogues.GetBySlug(ctx, s)
	if err != nil {
		return err
	}
	if current.Status != domain.StatusError {
		return nil
	}
	if err := r.catalogues.UpdateServices(ctx, s, nil, domain.StatusPreparing); err != nil {
		return err
	}
	logger.Info().Msg("lifecycle: errored draft reset for retry")
	return nil
}

// fail moves the draft to error with its services cleared. Best effort: the
// caller's original error is what the client sees either way.
func (r *Runner) fail(ctx context.Context, s string, logger zerolog.Logger) {
	if err := r.catalogues.UpdateServices(ctx, s, nil, domain.StatusError); err != nil {
		logger.Error().Err(err).Msg("lifecycle: marking draft as errored failed")
		return
	}
	logger.Info().Msg("lifecycle: draft marked errored")
}

func (r *Runner) recordUsage(ctx context.Context, req Request, s string, logger zerolog.Logger) {
	if r.usage == nil || req.UserID == "" {
		return
	}
	if err := r.usage.Insert(ctx, req.UserID, s, req.Source); err != nil {
		logger.Warn().Err(err).Msg("lifecycle: usage record failed")
	}
}

func (r *Runner) revalidate(ctx context.Context, s string, logger zerolog.Logger) {
	if r.revalidator == nil {
		return
	}
	if err := r.revalidator.Revalidate(ctx, s); err != nil {
		logger.Warn().Err(err).Msg("lifecycle: cache revalidation failed")
	}
}

func validate(req Request) error {
	if strings.TrimSpace(req.InputText) == "" {
		return fmt.Errorf("%w: input text is empty", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(req.Meta.Name) == "" {
		return fmt.Errorf("%w: catalogue name is empty", domain.ErrInvalidInput)
	}
	switch req.Source {
	case domain.SourcePrompt, domain.SourceOCR:
		return nil
	default:
		return fmt.Errorf("%w: unsupported source %q", domain.ErrInvalidInput, req.Source)
	}
}
