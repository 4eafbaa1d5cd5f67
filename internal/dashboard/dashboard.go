package dashboard

// Stats are the headline counts shown on the dashboard.
type Stats struct {
	Employees          int64 `json:"employees" db:"employees"`
	UngroupedEmployees int64 `json:"ungrouped_employees" db:"ungrouped_employees"`
	Groups             int64 `json:"groups" db:"group_count"`
	Menus              int64 `json:"menus" db:"menus"`
	Modules            int64 `json:"modules" db:"modules"`
}
