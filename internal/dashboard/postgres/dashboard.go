package postgres

import (
	"context"

	"github.com/frahmantamala/rbac-admin/internal"
	"github.com/frahmantamala/rbac-admin/internal/dashboard"
	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

const statsQuery = `
SELECT
  (SELECT COUNT(*) FROM employees) AS employees,
  (SELECT COUNT(*) FROM employees WHERE group_id IS NULL) AS ungrouped_employees,
  (SELECT COUNT(*) FROM access_groups) AS group_count,
  (SELECT COUNT(*) FROM menus) AS menus,
  (SELECT COUNT(*) FROM modules) AS modules
`

func (r *Repository) Stats(ctx context.Context) (*dashboard.Stats, error) {
	var stats dashboard.Stats
	if err := r.db.GetContext(ctx, &stats, statsQuery); err != nil {
		return nil, internal.NewStorageError("failed to count dashboard stats", err)
	}
	return &stats, nil
}
