package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/rbac-admin/internal"
	accessDatamodel "github.com/frahmantamala/rbac-admin/internal/core/datamodel/access"
	employeeDatamodel "github.com/frahmantamala/rbac-admin/internal/core/datamodel/employee"
	"github.com/frahmantamala/rbac-admin/internal/employee"
	"gorm.io/gorm"
)

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

const employeeSelect = `SELECT e.*, g.name AS group_name
	FROM employees e
	LEFT JOIN access_groups g ON g.id = e.group_id`

func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	row := employee.ToDataModel(e)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := identityAvailable(tx, row.EmployeeCode, row.Email, 0); err != nil {
			return err
		}
		if err := groupExists(tx, row.GroupID); err != nil {
			return err
		}
		if err := tx.Create(row).Error; err != nil {
			return translate(err, "failed to create employee")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, row.ID)
}

func (r *EmployeeRepository) List(ctx context.Context) ([]*employee.Employee, error) {
	var rows []employeeDatamodel.EmployeeWithGroup
	if err := r.db.WithContext(ctx).Raw(employeeSelect + ` ORDER BY e.name ASC, e.id ASC`).Scan(&rows).Error; err != nil {
		return nil, internal.NewStorageError("failed to list employees", err)
	}

	employees := make([]*employee.Employee, 0, len(rows))
	for i := range rows {
		employees = append(employees, employee.FromDataModel(&rows[i]))
	}
	return employees, nil
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (*employee.Employee, error) {
	var row employeeDatamodel.EmployeeWithGroup
	result := r.db.WithContext(ctx).Raw(employeeSelect+` WHERE e.id = ?`, id).Scan(&row)
	if result.Error != nil {
		return nil, internal.NewStorageError("failed to load employee", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, internal.ErrEmployeeNotFound
	}
	return employee.FromDataModel(&row), nil
}

func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing employeeDatamodel.Employee
		if err := tx.First(&existing, e.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return internal.ErrEmployeeNotFound
			}
			return internal.NewStorageError("failed to load employee", err)
		}
		if err := identityAvailable(tx, e.EmployeeCode, e.Email, e.ID); err != nil {
			return err
		}
		if err := groupExists(tx, e.GroupID); err != nil {
			return err
		}

		existing.EmployeeCode = e.EmployeeCode
		existing.Name = e.Name
		existing.Email = e.Email
		existing.PhoneNumber = e.PhoneNumber
		existing.Language = e.Language
		existing.GroupID = e.GroupID
		existing.IsSuperuser = e.IsSuperuser
		if e.PasswordHash != "" {
			existing.PasswordHash = e.PasswordHash
		}
		if err := tx.Save(&existing).Error; err != nil {
			return translate(err, "failed to update employee")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, e.ID)
}

func (r *EmployeeRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&employeeDatamodel.Employee{}, id)
	if result.Error != nil {
		return internal.NewStorageError("failed to delete employee", result.Error)
	}
	if result.RowsAffected == 0 {
		return internal.ErrEmployeeNotFound
	}
	return nil
}

// identityAvailable checks employee code and email uniqueness, ignoring the employee being updated.
func identityAvailable(tx *gorm.DB, code, email string, exceptID int64) error {
	var count int64
	err := tx.Model(&employeeDatamodel.Employee{}).
		Where("(employee_code = ? OR LOWER(email) = LOWER(?)) AND id <> ?", code, email, exceptID).
		Count(&count).Error
	if err != nil {
		return internal.NewStorageError("failed to check employee identity", err)
	}
	if count > 0 {
		return internal.ErrEmployeeExists
	}
	return nil
}

func groupExists(tx *gorm.DB, groupID *int64) error {
	if groupID == nil {
		return nil
	}
	var count int64
	if err := tx.Model(&accessDatamodel.Group{}).Where("id = ?", *groupID).Count(&count).Error; err != nil {
		return internal.NewStorageError("failed to check group", err)
	}
	if count == 0 {
		return internal.ErrGroupNotFound
	}
	return nil
}

func translate(err error, message string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.ErrEmployeeExists.WithCause(err)
	}
	return internal.NewStorageError(message, err)
}
