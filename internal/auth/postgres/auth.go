package postgres

import (
	"context"

	"github.com/frahmantamala/rbac-admin/internal"
	"github.com/frahmantamala/rbac-admin/internal/auth"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

type credentialsRow struct {
	ID           int64
	Email        string
	PasswordHash string
}

func (r *Repository) GetCredentialsByEmail(ctx context.Context, email string) (*auth.Credentials, error) {
	var row credentialsRow
	result := r.db.WithContext(ctx).
		Raw(`SELECT id, email, password_hash FROM employees WHERE LOWER(email) = LOWER(?)`, email).
		Scan(&row)
	if result.Error != nil {
		return nil, internal.NewStorageError("failed to load credentials", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, internal.ErrEmployeeNotFound
	}

	return &auth.Credentials{
		EmployeeID:   row.ID,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
	}, nil
}

type principalRow struct {
	ID          int64
	Email       string
	Name        string
	GroupID     *int64
	GroupName   *string
	IsSuperuser bool
}

func (r *Repository) GetPrincipal(ctx context.Context, employeeID int64) (*auth.Principal, error) {
	var row principalRow
	result := r.db.WithContext(ctx).Raw(`
		SELECT e.id, e.email, e.name, e.group_id, g.name AS group_name, e.is_superuser
		FROM employees e
		LEFT JOIN access_groups g ON g.id = e.group_id
		WHERE e.id = ?`, employeeID).
		Scan(&row)
	if result.Error != nil {
		return nil, internal.NewStorageError("failed to load employee", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, internal.ErrEmployeeNotFound
	}

	p := &auth.Principal{
		EmployeeID:  row.ID,
		Email:       row.Email,
		Name:        row.Name,
		GroupID:     row.GroupID,
		IsSuperuser: row.IsSuperuser,
	}
	if row.GroupName != nil {
		p.GroupName = *row.GroupName
	}
	return p, nil
}
