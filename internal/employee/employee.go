package employee

import (
	"time"

	employeeDatamodel "github.com/frahmantamala/rbac-admin/internal/core/datamodel/employee"
)

type Employee struct {
	ID           int64     `json:"id"`
	EmployeeCode string    `json:"employee_code"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	PhoneNumber  *string   `json:"phone_number,omitempty"`
	Language     *string   `json:"language,omitempty"`
	GroupID      *int64    `json:"group_id"`
	GroupName    string    `json:"group_name,omitempty"`
	IsSuperuser  bool      `json:"is_superuser"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasGroup reports whether the employee is assigned to a group.
func (e *Employee) HasGroup() bool {
	return e.GroupID != nil
}

func ToDataModel(e *Employee) *employeeDatamodel.Employee {
	return &employeeDatamodel.Employee{
		ID:           e.ID,
		EmployeeCode: e.EmployeeCode,
		Name:         e.Name,
		Email:        e.Email,
		PasswordHash: e.PasswordHash,
		PhoneNumber:  e.PhoneNumber,
		Language:     e.Language,
		GroupID:      e.GroupID,
		IsSuperuser:  e.IsSuperuser,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func FromDataModel(row *employeeDatamodel.EmployeeWithGroup) *Employee {
	e := &Employee{
		ID:           row.ID,
		EmployeeCode: row.EmployeeCode,
		Name:         row.Name,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		PhoneNumber:  row.PhoneNumber,
		Language:     row.Language,
		GroupID:      row.GroupID,
		IsSuperuser:  row.IsSuperuser,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	if row.GroupName != nil {
		e.GroupName = *row.GroupName
	}
	return e
}
