package group

import (
	"time"

	"github.com/frahmantamala/rbac-admin/internal/catalog"
	accessDatamodel "github.com/frahmantamala/rbac-admin/internal/core/datamodel/access"
)

// Group is a named collection of menu associations and grants.
type Group struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	MenuCount     int64          `json:"menu_count"`
	EmployeeCount int64          `json:"employee_count"`
	Menus         []catalog.Menu `json:"menus,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func FromDataModel(g *accessDatamodel.Group) *Group {
	return &Group{
		ID:        g.ID,
		Name:      g.Name,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

// DedupeIDs keeps the first occurrence of every id.
func DedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
