package employee

import "time"

type Employee struct {
	ID           int64     `gorm:"primaryKey"`
	EmployeeCode string    `gorm:"column:employee_code;uniqueIndex;not null"`
	Name         string    `gorm:"column:name;not null"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	PhoneNumber  *string   `gorm:"column:phone_number"`
	Language     *string   `gorm:"column:language"`
	GroupID      *int64    `gorm:"column:group_id;index"`
	IsSuperuser  bool      `gorm:"column:is_superuser;not null;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Employee) TableName() string {
	return "employees"
}

// EmployeeWithGroup is an employee row joined with its group name.
type EmployeeWithGroup struct {
	Employee
	GroupName *string `gorm:"column:group_name"`
}
