package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"cataloger/internal/domain"
	"cataloger/internal/images"
)

type catalogueUpdate struct {
	slug   string
	status domain.Status
}

type fakeCatalogueRepo struct {
	mu      sync.Mutex
	status  domain.Status
	updates []catalogueUpdate
	err     error
}

func (f *fakeCatalogueRepo) Insert(ctx context.Context, c *domain.Catalogue) error { return nil }

func (f *fakeCatalogueRepo) UpdateServices(ctx context.Context, slug string, services []domain.Category, status domain.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.updates = append(f.updates, catalogueUpdate{slug: slug, status: status})
	return nil
}

func (f *fakeCatalogueRepo) GetBySlug(ctx context.Context, slug string) (*domain.Catalogue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	status := f.status
	if status == "" {
		status = domain.StatusActive
	}
	return &domain.Catalogue{Slug: slug, Status: status}, nil
}

func (f *fakeCatalogueRepo) SelectByNames(ctx context.Context, names []string) ([]domain.Catalogue, error) {
	return nil, nil
}

func (f *fakeCatalogueRepo) updated() []catalogueUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]catalogueUpdate(nil), f.updates...)
}

func newTestProcessor(repo *fakeCatalogueRepo) *Processor {
	enricher := images.NewEnricher(nil, nil, "https://example.com/placeholder.jpg", zerolog.Nop())
	return NewProcessor(enricher, repo, zerolog.Nop())
}

func TestDispatcherDrainsOnStop(t *testing.T) {
	repo := &fakeCatalogueRepo{}
	d := NewDispatcher(newTestProcessor(repo), DispatcherOptions{Workers: 2, Logger: zerolog.Nop()})

	slugs := []string{"warung-a", "warung-b", "warung-c"}
	for _, slug := range slugs {
		job := &domain.EnrichmentJob{
			Slug:     slug,
			Services: []domain.Category{{Name: "Mains", Layout: domain.LayoutNoImage}},
		}
		if err := d.Enqueue(context.Background(), job); err != nil {
			t.Fatalf("Enqueue(%s) returned error: %v", slug, err)
		}
	}
	d.Stop()

	if got := repo.updated(); len(got) != len(slugs) {
		t.Fatalf("processed %d jobs, want %d: %v", len(got), len(slugs), got)
	}
}

func TestDispatcherEnqueueAfterStop(t *testing.T) {
	d := NewDispatcher(newTestProcessor(&fakeCatalogueRepo{}), DispatcherOptions{Workers: 1, Logger: zerolog.Nop()})
	d.Stop()

	err := d.Enqueue(context.Background(), &domain.EnrichmentJob{Slug: "late"})
	if !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("Enqueue after Stop = %v, want ErrQueueClosed", err)
	}
}

func TestDispatcherAssignsJobID(t *testing.T) {
	repo := &fakeCatalogueRepo{}
	d := NewDispatcher(newTestProcessor(repo), DispatcherOptions{Workers: 1, Logger: zerolog.Nop()})

	job := &domain.EnrichmentJob{Slug: "warung-a"}
	if err := d.Enqueue(context.Background(), job); err != nil {
		t.Fatalf("Enqueue returned error: %v", err)
	}
	if job.ID == "" {
		t.Fatal("Enqueue left job ID empty")
	}
	d.Stop()
}

func TestProcessorRejectsMissingSlug(t *testing.T) {
	p := newTestProcessor(&fakeCatalogueRepo{})
	if err := p.Process(context.Background(), &domain.EnrichmentJob{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("Process = %v, want ErrInvalidInput", err)
	}
}

func TestProcessorPreservesDeactivatedStatus(t *testing.T) {
	// The usage-limit process can flip a catalogue inactive while its
	// enrichment job is still queued. The write-back must not re-activate it.
	repo := &fakeCatalogueRepo{status: domain.StatusInactive}
	p := newTestProcessor(repo)

	err := p.Process(context.Background(), &domain.EnrichmentJob{
		Slug:     "warung-a",
		Services: []domain.Category{{Name: "Mains", Layout: domain.LayoutNoImage}},
	})
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	got := repo.updated()
	if len(got) != 1 || got[0].status != domain.StatusInactive {
		t.Fatalf("catalogue updates = %+v, want one inactive write", got)
	}
}

type fakeJobRepo struct {
	mu     sync.Mutex
	queue  []*domain.EnrichmentJob
	marked []struct {
		id, status, errMsg string
	}
	done chan struct{}
}

func (f *fakeJobRepo) Enqueue(ctx context.Context, job *domain.EnrichmentJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, job)
	return nil
}

func (f *fakeJobRepo) Claim(ctx context.Context) (*domain.EnrichmentJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) == 0 {
		return nil, domain.ErrNotFound
	}
	job := f.queue[0]
	f.queue = f.queue[1:]
	return job, nil
}

func (f *fakeJobRepo) MarkDone(ctx context.Context, id, status, errMsg string) error {
	f.mu.Lock()
	f.marked = append(f.marked, struct{ id, status, errMsg string }{id, status, errMsg})
	f.mu.Unlock()
	select {
	case f.done <- struct{}{}:
	default:
	}
	return nil
}

func TestWorkerProcessesClaimedJob(t *testing.T) {
	repo := &fakeCatalogueRepo{}
	jobRepo := &fakeJobRepo{done: make(chan struct{}, 1)}
	jobRepo.queue = []*domain.EnrichmentJob{{
		ID:       "job-1",
		Slug:     "warung-a",
		Services: []domain.Category{{Name: "Mains", Layout: domain.LayoutNoImage}},
	}}

	w := NewWorker(jobRepo, newTestProcessor(repo), WorkerOptions{
		PollInterval: 10 * time.Millisecond,
		Logger:       zerolog.Nop(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	select {
	case <-jobRepo.done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not finish the job in time")
	}
	cancel()

	jobRepo.mu.Lock()
	defer jobRepo.mu.Unlock()
	if len(jobRepo.marked) != 1 {
		t.Fatalf("marked %d jobs, want 1", len(jobRepo.marked))
	}
	if jobRepo.marked[0].status != domain.EnrichmentSucceeded {
		t.Fatalf("job status = %q, want %q", jobRepo.marked[0].status, domain.EnrichmentSucceeded)
	}
	if got := repo.updated(); len(got) != 1 || got[0].slug != "warung-a" {
		t.Fatalf("catalogue updates = %v", got)
	}
}

func TestWorkerMarksFailureWithMessage(t *testing.T) {
	repo := &fakeCatalogueRepo{err: errors.New("db unavailable")}
	jobRepo := &fakeJobRepo{done: make(chan struct{}, 1)}
	jobRepo.queue = []*domain.EnrichmentJob{{ID: "job-2", Slug: "warung-b"}}

	w := NewWorker(jobRepo, newTestProcessor(repo), WorkerOptions{
		PollInterval: 10 * time.Millisecond,
		Logger:       zerolog.Nop(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	select {
	case <-jobRepo.done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not finish the job in time")
	}
	cancel()

	jobRepo.mu.Lock()
	defer jobRepo.mu.Unlock()
	if jobRepo.marked[0].status != domain.EnrichmentFailed {
		t.Fatalf("job status = %q, want %q", jobRepo.marked[0].status, domain.EnrichmentFailed)
	}
	if jobRepo.marked[0].errMsg == "" {
		t.Fatal("failed job recorded no error message")
	}
}
