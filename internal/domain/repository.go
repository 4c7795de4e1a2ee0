package domain

import (
	"context"
	"time"
)

// CatalogueRepository persists catalogue drafts keyed by slug.
type CatalogueRepository interface {
	// Insert creates the draft. Inserting an already-existing slug is a
	// no-op so retried requests stay idempotent.
	Insert(ctx context.Context, c *Catalogue) error
	// UpdateServices replaces the category list and status in one write.
	// The transition from the record's current status must be legal.
	UpdateServices(ctx context.Context, slug string, services []Category, status Status) error
	GetBySlug(ctx context.Context, slug string) (*Catalogue, error)
	SelectByNames(ctx context.Context, names []string) ([]Catalogue, error)
}

// UsageRepository records one generation run per user for quota accounting.
type UsageRepository interface {
	Insert(ctx context.Context, userID, slug string, source Source) error
}

// EnrichmentJob is one unit of deferred image enrichment bound to a slug.
type EnrichmentJob struct {
	ID        string
	Slug      string
	UserID    string
	Services  []Category
	Status    string
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	EnrichmentQueued    = "queued"
	EnrichmentRunning   = "running"
	EnrichmentSucceeded = "succeeded"
	EnrichmentFailed    = "failed"
)

// EnrichmentJobRepository is the durable queue behind deferred enrichment.
type EnrichmentJobRepository interface {
	Enqueue(ctx context.Context, job *EnrichmentJob) error
	// Claim atomically marks the oldest queued job running and returns it,
	// or ErrNotFound when the queue is empty.
	Claim(ctx context.Context) (*EnrichmentJob, error)
	MarkDone(ctx context.Context, id, status, errMsg string) error
}
