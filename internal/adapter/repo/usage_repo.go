package repo

import (
	"context"
	"fmt"

	"cataloger/internal/domain"
	"cataloger/internal/infra"
	"cataloger/internal/sqlinline"
)

// UsageRepositoryPG implements domain.UsageRepository.
type UsageRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewUsageRepository(sql infra.SQLExecutor) *UsageRepositoryPG {
	return &UsageRepositoryPG{sql: sql}
}

func (r *UsageRepositoryPG) Insert(ctx context.Context, userID, slug string, source domain.Source) error {
	if _, err := r.sql.Exec(ctx, sqlinline.QInsertUsage, userID, slug, source); err != nil {
		return fmt.Errorf("%w: insert usage record: %v", domain.ErrPersistenceFailed, err)
	}
	return nil
}

var _ domain.UsageRepository = (*UsageRepositoryPG)(nil)
