package employee

import (
	"strings"

	"github.com/frahmantamala/rbac-admin/internal"
	"github.com/frahmantamala/rbac-admin/internal/core/common/validation"
)

type CreateEmployeeDTO struct {
	EmployeeCode string  `json:"employee_code"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	PhoneNumber  *string `json:"phone_number,omitempty"`
	Language     *string `json:"language,omitempty"`
	GroupID      *int64  `json:"group_id,omitempty"`
	IsSuperuser  bool    `json:"is_superuser"`
}

func (d *CreateEmployeeDTO) Validate() error {
	d.normalize()
	if err := validation.ValidateEmployeeIdentity(d.EmployeeCode, d.Name, d.Email); err != nil {
		return err
	}
	if err := validation.ValidatePassword(d.Password); err != nil {
		return err
	}
	return validateGroupID(d.GroupID)
}

func (d *CreateEmployeeDTO) normalize() {
	d.EmployeeCode = strings.TrimSpace(d.EmployeeCode)
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.PhoneNumber = trimOptional(d.PhoneNumber)
	d.Language = trimOptional(d.Language)
}

// UpdateEmployeeDTO replaces the editable fields. An empty password keeps the current one.
type UpdateEmployeeDTO struct {
	EmployeeCode string  `json:"employee_code"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Password     string  `json:"password,omitempty"`
	PhoneNumber  *string `json:"phone_number,omitempty"`
	Language     *string `json:"language,omitempty"`
	GroupID      *int64  `json:"group_id,omitempty"`
	IsSuperuser  bool    `json:"is_superuser"`
}

func (d *UpdateEmployeeDTO) Validate() error {
	d.EmployeeCode = strings.TrimSpace(d.EmployeeCode)
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.PhoneNumber = trimOptional(d.PhoneNumber)
	d.Language = trimOptional(d.Language)

	if err := validation.ValidateEmployeeIdentity(d.EmployeeCode, d.Name, d.Email); err != nil {
		return err
	}
	if d.Password != "" {
		if err := validation.ValidatePassword(d.Password); err != nil {
			return err
		}
	}
	return validateGroupID(d.GroupID)
}

type EmployeesResponse struct {
	Employees []*Employee `json:"employees"`
}

func validateGroupID(groupID *int64) error {
	if groupID != nil && *groupID <= 0 {
		return internal.NewValidationFieldError("group_id", "invalid group_id", internal.ErrCodeInvalidID)
	}
	return nil
}

// trimOptional turns blank optional strings into nil.
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
