package group

import (
	"strings"

	"github.com/frahmantamala/rbac-admin/internal"
	"github.com/frahmantamala/rbac-admin/internal/catalog"
	"github.com/frahmantamala/rbac-admin/internal/core/common/validation"
	"github.com/frahmantamala/rbac-admin/internal/permission"
)

// CreateGroupDTO creates a group with its initial menus and, optionally, its first grants.
type CreateGroupDTO struct {
	Name        string                  `json:"name"`
	MenuIDs     []int64                 `json:"menu_ids"`
	Permissions []permission.GrantInput `json:"permissions,omitempty"`
}

func (d *CreateGroupDTO) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	if err := validation.ValidateGroupName(d.Name); err != nil {
		return err
	}
	if len(d.MenuIDs) == 0 {
		return internal.ErrMenuRequired
	}
	if err := validation.ValidateMenuSelection(d.MenuIDs); err != nil {
		return err
	}
	return permission.SavePermissionsDTO{Permissions: d.Permissions}.Validate()
}

type RenameGroupDTO struct {
	Name string `json:"name"`
}

func (d *RenameGroupDTO) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	if err := validation.ValidateGroupName(d.Name); err != nil {
		return err
	}
	return nil
}

type ReplaceMenusDTO struct {
	MenuIDs []int64 `json:"menu_ids"`
}

func (d ReplaceMenusDTO) Validate() error {
	if err := validation.ValidateMenuSelection(d.MenuIDs); err != nil {
		return err
	}
	return nil
}

type GroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type MenusResponse struct {
	GroupID int64          `json:"group_id"`
	Menus   []catalog.Menu `json:"menus"`
}
