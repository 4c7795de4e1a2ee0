package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"cataloger/internal/domain"
	"cataloger/internal/infra"
	"cataloger/internal/sqlinline"
)

// CatalogueRepositoryPG implements domain.CatalogueRepository over Postgres.
// Services and the opaque presentation blobs are stored as jsonb.
type CatalogueRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewCatalogueRepository(sql infra.SQLExecutor) *CatalogueRepositoryPG {
	return &CatalogueRepositoryPG{sql: sql}
}

// Insert creates the draft row. A slug collision is a no-op, which keeps
// retried generation requests idempotent.
func (r *CatalogueRepositoryPG) Insert(ctx context.Context, c *domain.Catalogue) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertCatalogue,
		c.Slug,
		c.Status,
		c.Title,
		c.Subtitle,
		c.Currency,
		c.Theme,
		c.Language,
		c.CreatedBy,
		c.Source,
		domain.MustMarshal(servicesOrEmpty(c.Services)),
		c.Logo,
		rawOrDefault(c.Legal, `{}`),
		rawOrDefault(c.Partners, `[]`),
		rawOrDefault(c.Config, `{}`),
		rawOrDefault(c.Contact, `[]`),
	)
	if err != nil {
		return fmt.Errorf("%w: insert catalogue %q: %v", domain.ErrPersistenceFailed, c.Slug, err)
	}
	return nil
}

// UpdateServices writes the category list and target status in one guarded
// statement: the row's current status is read first and the update only
// applies while that status still holds, so an interleaved writer (the
// external active->inactive process) is never overwritten blindly.
func (r *CatalogueRepositoryPG) UpdateServices(ctx context.Context, slug string, services []domain.Category, status domain.Status) error {
	current, err := r.currentStatus(ctx, slug)
	if err != nil {
		return err
	}
	if current != status {
		if err := domain.CheckTransition(current, status); err != nil {
			return err
		}
	}
	tag, err := r.sql.Exec(ctx, sqlinline.QUpdateCatalogueServices,
		slug,
		current,
		domain.MustMarshal(servicesOrEmpty(services)),
		status,
	)
	if err != nil {
		return fmt.Errorf("%w: update catalogue %q: %v", domain.ErrPersistenceFailed, slug, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: catalogue %q changed underneath the update", domain.ErrConflict, slug)
	}
	return nil
}

func (r *CatalogueRepositoryPG) GetBySlug(ctx context.Context, slug string) (*domain.Catalogue, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectCatalogueBySlug, slug)
	c, err := scanCatalogue(row.Scan)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: get catalogue %q: %v", domain.ErrPersistenceFailed, slug, err)
	}
	return c, nil
}

func (r *CatalogueRepositoryPG) SelectByNames(ctx context.Context, names []string) ([]domain.Catalogue, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QSelectCataloguesByNames, names)
	if err != nil {
		return nil, fmt.Errorf("%w: select catalogues: %v", domain.ErrPersistenceFailed, err)
	}
	defer rows.Close()
	var out []domain.Catalogue
	for rows.Next() {
		c, err := scanCatalogue(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("%w: scan catalogue: %v", domain.ErrPersistenceFailed, err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: select catalogues: %v", domain.ErrPersistenceFailed, err)
	}
	return out, nil
}

func (r *CatalogueRepositoryPG) currentStatus(ctx context.Context, slug string) (domain.Status, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectCatalogueStatus, slug)
	var status domain.Status
	if err := row.Scan(&status); err != nil {
		if infra.IsNoRows(err) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("%w: read status of %q: %v", domain.ErrPersistenceFailed, slug, err)
	}
	return status, nil
}

func scanCatalogue(scan func(dest ...any) error) (*domain.Catalogue, error) {
	var c domain.Catalogue
	var services []byte
	if err := scan(
		&c.Slug,
		&c.Status,
		&c.Title,
		&c.Subtitle,
		&c.Currency,
		&c.Theme,
		&c.Language,
		&c.CreatedBy,
		&c.Source,
		&services,
		&c.Logo,
		&c.Legal,
		&c.Partners,
		&c.Config,
		&c.Contact,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(services) > 0 {
		if err := json.Unmarshal(services, &c.Services); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

func servicesOrEmpty(services []domain.Category) []domain.Category {
	if services == nil {
		return []domain.Category{}
	}
	return services
}

func rawOrDefault(raw json.RawMessage, fallback string) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage(fallback)
	}
	return raw
}

var _ domain.CatalogueRepository = (*CatalogueRepositoryPG)(nil)
