package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"cataloger/internal/domain"
	"cataloger/internal/infra"
	"cataloger/internal/sqlinline"
)

// EnrichmentJobRepositoryPG is the durable queue behind deferred image
// enrichment. Claiming uses FOR UPDATE SKIP LOCKED so multiple workers can
// poll the same table.
type EnrichmentJobRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewEnrichmentJobRepository(sql infra.SQLExecutor) *EnrichmentJobRepositoryPG {
	return &EnrichmentJobRepositoryPG{sql: sql}
}

func (r *EnrichmentJobRepositoryPG) Enqueue(ctx context.Context, job *domain.EnrichmentJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	_, err := r.sql.Exec(ctx, sqlinline.QEnqueueEnrichmentJob,
		job.ID,
		job.Slug,
		job.UserID,
		domain.MustMarshal(job.Services),
	)
	if err != nil {
		return fmt.Errorf("%w: enqueue enrichment job for %q: %v", domain.ErrPersistenceFailed, job.Slug, err)
	}
	return nil
}

func (r *EnrichmentJobRepositoryPG) Claim(ctx context.Context) (*domain.EnrichmentJob, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QClaimEnrichmentJob)
	var job domain.EnrichmentJob
	var services []byte
	if err := row.Scan(&job.ID, &job.Slug, &job.UserID, &services); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: claim enrichment job: %v", domain.ErrPersistenceFailed, err)
	}
	if len(services) > 0 {
		if err := json.Unmarshal(services, &job.Services); err != nil {
			return nil, fmt.Errorf("%w: decode enrichment services: %v", domain.ErrPersistenceFailed, err)
		}
	}
	job.Status = domain.EnrichmentRunning
	return &job, nil
}

func (r *EnrichmentJobRepositoryPG) MarkDone(ctx context.Context, id, status, errMsg string) error {
	if _, err := r.sql.Exec(ctx, sqlinline.QUpdateEnrichmentJobStatus, id, status, errMsg); err != nil {
		return fmt.Errorf("%w: finish enrichment job %q: %v", domain.ErrPersistenceFailed, id, err)
	}
	return nil
}

var _ domain.EnrichmentJobRepository = (*EnrichmentJobRepositoryPG)(nil)
