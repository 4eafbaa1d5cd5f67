package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/rbac-admin/internal"
	accessDatamodel "github.com/frahmantamala/rbac-admin/internal/core/datamodel/access"
	"github.com/frahmantamala/rbac-admin/internal/permission"
	"gorm.io/gorm"
)

type GrantRepository struct {
	db *gorm.DB
}

func NewGrantRepository(db *gorm.DB) *GrantRepository {
	return &GrantRepository{db: db}
}

func (r *GrantRepository) ListGrants(ctx context.Context, groupID int64) ([]permission.Grant, error) {
	db := r.db.WithContext(ctx)
	if err := groupExists(db, groupID); err != nil {
		return nil, err
	}

	var rows []accessDatamodel.GroupPermissionView
	err := db.Table("group_permissions AS gp").
		Select("gp.id, gp.group_id, gp.menu_id, gp.module_id, gp.can_add, gp.can_view, gp.can_edit, gp.can_delete, gp.created_at, m.name AS menu_name, md.name AS module_name").
		Joins("JOIN menus m ON m.id = gp.menu_id").
		Joins("JOIN modules md ON md.id = gp.module_id").
		Where("gp.group_id = ?", groupID).
		Where("gp.can_add OR gp.can_view OR gp.can_edit OR gp.can_delete").
		Order("gp.menu_id, gp.module_id").
		Scan(&rows).Error
	if err != nil {
		return nil, internal.NewStorageError("failed to list grants", err)
	}

	grants := make([]permission.Grant, 0, len(rows))
	for i := range rows {
		grants = append(grants, toGrant(&rows[i]))
	}
	return grants, nil
}

// ReplaceGrants deletes and reinserts the group's grants in one transaction.
func (r *GrantRepository) ReplaceGrants(ctx context.Context, groupID int64, grants []permission.Grant) error {
	if _, dup := permission.DuplicateKey(grants); dup {
		return internal.ErrDuplicateGrant
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return ReplaceGrantsTx(tx, groupID, grants)
	})
}

// ReplaceGrantsTx runs the replacement on an open transaction so other stores can compose it.
func ReplaceGrantsTx(tx *gorm.DB, groupID int64, grants []permission.Grant) error {
	if err := groupExists(tx, groupID); err != nil {
		return err
	}
	if err := checkReferences(tx, grants); err != nil {
		return err
	}

	if err := tx.Where("group_id = ?", groupID).Delete(&accessDatamodel.GroupPermission{}).Error; err != nil {
		return internal.NewStorageError("failed to clear grants", err)
	}

	rows := make([]accessDatamodel.GroupPermission, 0, len(grants))
	for _, g := range permission.NonTrivial(grants) {
		rows = append(rows, accessDatamodel.GroupPermission{
			GroupID:   groupID,
			MenuID:    g.MenuID,
			ModuleID:  g.ModuleID,
			CanAdd:    g.CanAdd,
			CanView:   g.CanView,
			CanEdit:   g.CanEdit,
			CanDelete: g.CanDelete,
		})
	}
	if len(rows) == 0 {
		return nil
	}

	if err := tx.CreateInBatches(&rows, 100).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return internal.ErrDuplicateGrant.WithCause(err)
		}
		return internal.NewStorageError("failed to insert grants", err)
	}
	return nil
}

func (r *GrantRepository) ListMenuIDsForGroup(ctx context.Context, groupID int64) ([]int64, error) {
	db := r.db.WithContext(ctx)
	if err := groupExists(db, groupID); err != nil {
		return nil, err
	}

	var ids []int64
	err := db.Model(&accessDatamodel.GroupMenu{}).
		Where("group_id = ?", groupID).
		Order("menu_id").
		Pluck("menu_id", &ids).Error
	if err != nil {
		return nil, internal.NewStorageError("failed to list group menus", err)
	}
	return ids, nil
}

func groupExists(db *gorm.DB, groupID int64) error {
	var count int64
	if err := db.Model(&accessDatamodel.Group{}).Where("id = ?", groupID).Count(&count).Error; err != nil {
		return internal.NewStorageError("failed to load group", err)
	}
	if count == 0 {
		return internal.ErrGroupNotFound
	}
	return nil
}

// checkReferences verifies every grant names an existing module of an existing menu.
func checkReferences(tx *gorm.DB, grants []permission.Grant) error {
	if len(grants) == 0 {
		return nil
	}

	moduleIDs := make([]int64, 0, len(grants))
	for _, g := range grants {
		moduleIDs = append(moduleIDs, g.ModuleID)
	}

	var modules []accessDatamodel.Module
	if err := tx.Where("id IN ?", moduleIDs).Find(&modules).Error; err != nil {
		return internal.NewStorageError("failed to load modules", err)
	}
	moduleMenu := make(map[int64]int64, len(modules))
	for _, m := range modules {
		moduleMenu[m.ID] = m.MenuID
	}

	for _, g := range grants {
		menuID, ok := moduleMenu[g.ModuleID]
		if !ok {
			return internal.ErrModuleNotFound
		}
		if menuID != g.MenuID {
			return internal.ErrMenuNotFound
		}
	}
	return nil
}

func toGrant(row *accessDatamodel.GroupPermissionView) permission.Grant {
	return permission.Grant{
		GroupID:    row.GroupID,
		MenuID:     row.MenuID,
		ModuleID:   row.ModuleID,
		MenuName:   row.MenuName,
		ModuleName: row.ModuleName,
		Capabilities: permission.Capabilities{
			CanAdd:    row.CanAdd,
			CanView:   row.CanView,
			CanEdit:   row.CanEdit,
			CanDelete: row.CanDelete,
		},
	}
}
