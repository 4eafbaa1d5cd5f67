package permission

import (
	"fmt"

	"github.com/frahmantamala/rbac-admin/internal"
	"github.com/frahmantamala/rbac-admin/internal/catalog"
)

// GrantInput is one row of a submitted permission matrix.
type GrantInput struct {
	MenuID   int64 `json:"menu_id"`
	ModuleID int64 `json:"module_id"`
	Capabilities
}

func (g GrantInput) Key() Key {
	return Key{MenuID: g.MenuID, ModuleID: g.ModuleID}
}

// BulkOperation applies one action to a whole menu, or to every associated menu when MenuID is nil.
type BulkOperation struct {
	Action string `json:"action"`
	Value  bool   `json:"value"`
	MenuID *int64 `json:"menu_id,omitempty"`
}

// SavePermissionsDTO is the full desired grant set of a group plus optional bulk edits applied on top.
type SavePermissionsDTO struct {
	Permissions []GrantInput    `json:"permissions"`
	Bulk        []BulkOperation `json:"bulk,omitempty"`
}

func (d SavePermissionsDTO) Validate() error {
	seen := make(map[Key]struct{}, len(d.Permissions))
	for i, p := range d.Permissions {
		if p.MenuID <= 0 || p.ModuleID <= 0 {
			return internal.NewValidationFieldError(
				fmt.Sprintf("permissions[%d]", i), "menu_id and module_id must be positive", internal.ErrCodeInvalidID)
		}
		if _, dup := seen[p.Key()]; dup {
			return internal.ErrDuplicateGrant.WithDetails(map[string]int64{"menu_id": p.MenuID, "module_id": p.ModuleID})
		}
		seen[p.Key()] = struct{}{}
	}
	for i, op := range d.Bulk {
		if _, err := ParseAction(op.Action); err != nil {
			return internal.NewValidationFieldError(
				fmt.Sprintf("bulk[%d].action", i), fmt.Sprintf("unknown action %q", op.Action), internal.ErrCodeInvalidAction)
		}
		if op.MenuID != nil && *op.MenuID <= 0 {
			return internal.NewValidationFieldError(
				fmt.Sprintf("bulk[%d].menu_id", i), "menu_id must be positive", internal.ErrCodeInvalidID)
		}
	}
	return nil
}

type GrantsResponse struct {
	GroupID     int64   `json:"group_id"`
	Permissions []Grant `json:"permissions"`
}

type NavigationResponse struct {
	IsSuperuser bool             `json:"is_superuser"`
	Menus       []NavigationMenu `json:"menus"`
}

// OpenModuleResponse confirms a module may be opened and carries the caller's capabilities on it.
type OpenModuleResponse struct {
	Module       catalog.Module `json:"module"`
	Capabilities Capabilities   `json:"capabilities"`
}
