package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/rbac-admin/internal"
	"github.com/frahmantamala/rbac-admin/internal/catalog"
	accessDatamodel "github.com/frahmantamala/rbac-admin/internal/core/datamodel/access"
	employeeDatamodel "github.com/frahmantamala/rbac-admin/internal/core/datamodel/employee"
	"github.com/frahmantamala/rbac-admin/internal/group"
	"github.com/frahmantamala/rbac-admin/internal/permission"
	permissionPostgres "github.com/frahmantamala/rbac-admin/internal/permission/postgres"
	"gorm.io/gorm"
)

type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

type groupRow struct {
	ID            int64
	Name          string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	MenuCount     int64
	EmployeeCount int64
}

const groupSummarySelect = `g.id, g.name, g.created_at, g.updated_at,
	(SELECT COUNT(*) FROM group_menus gm WHERE gm.group_id = g.id) AS menu_count,
	(SELECT COUNT(*) FROM employees e WHERE e.group_id = g.id) AS employee_count`

func (r *GroupRepository) Create(ctx context.Context, name string, menuIDs []int64, grants []permission.Grant) (*group.Group, error) {
	var created accessDatamodel.Group
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := nameAvailable(tx, name, 0); err != nil {
			return err
		}
		if err := menusExist(tx, menuIDs); err != nil {
			return err
		}

		created = accessDatamodel.Group{Name: name}
		if err := tx.Create(&created).Error; err != nil {
			return translate(err, "failed to create group")
		}
		if err := insertGroupMenus(tx, created.ID, menuIDs); err != nil {
			return err
		}
		if len(grants) == 0 {
			return nil
		}
		return permissionPostgres.ReplaceGrantsTx(tx, created.ID, grants)
	})
	if err != nil {
		return nil, err
	}

	g := group.FromDataModel(&created)
	g.MenuCount = int64(len(menuIDs))
	return g, nil
}

func (r *GroupRepository) List(ctx context.Context) ([]*group.Group, error) {
	var rows []groupRow
	err := r.db.WithContext(ctx).
		Table("access_groups AS g").
		Select(groupSummarySelect).
		Order("g.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, internal.NewStorageError("failed to list groups", err)
	}

	groups := make([]*group.Group, 0, len(rows))
	for i := range rows {
		groups = append(groups, toGroup(&rows[i]))
	}
	return groups, nil
}

func (r *GroupRepository) GetByID(ctx context.Context, id int64) (*group.Group, error) {
	db := r.db.WithContext(ctx)

	var row groupRow
	result := db.Table("access_groups AS g").
		Select(groupSummarySelect).
		Where("g.id = ?", id).
		Scan(&row)
	if result.Error != nil {
		return nil, internal.NewStorageError("failed to load group", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, internal.ErrGroupNotFound
	}

	menus, err := listMenus(db, id)
	if err != nil {
		return nil, err
	}

	g := toGroup(&row)
	g.Menus = menus
	return g, nil
}

func (r *GroupRepository) Rename(ctx context.Context, id int64, name string) (*group.Group, error) {
	var updated accessDatamodel.Group
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&updated, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return internal.ErrGroupNotFound
			}
			return internal.NewStorageError("failed to load group", err)
		}
		if updated.Name == name {
			return nil
		}
		if err := nameAvailable(tx, name, id); err != nil {
			return err
		}
		updated.Name = name
		return translate(tx.Save(&updated).Error, "failed to rename group")
	})
	if err != nil {
		return nil, err
	}
	return group.FromDataModel(&updated), nil
}

func (r *GroupRepository) Delete(ctx context.Context, id int64) (int64, error) {
	var detached int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := groupExists(tx, id); err != nil {
			return err
		}

		result := tx.Model(&employeeDatamodel.Employee{}).Where("group_id = ?", id).Update("group_id", nil)
		if result.Error != nil {
			return internal.NewStorageError("failed to detach employees", result.Error)
		}
		detached = result.RowsAffected

		if err := tx.Where("group_id = ?", id).Delete(&accessDatamodel.GroupPermission{}).Error; err != nil {
			return internal.NewStorageError("failed to delete grants", err)
		}
		if err := tx.Where("group_id = ?", id).Delete(&accessDatamodel.GroupMenu{}).Error; err != nil {
			return internal.NewStorageError("failed to delete menu associations", err)
		}
		if err := tx.Delete(&accessDatamodel.Group{}, id).Error; err != nil {
			return internal.NewStorageError("failed to delete group", err)
		}
		return nil
	})
	return detached, err
}

func (r *GroupRepository) ListMenusForGroup(ctx context.Context, id int64) ([]catalog.Menu, error) {
	db := r.db.WithContext(ctx)
	if err := groupExists(db, id); err != nil {
		return nil, err
	}
	return listMenus(db, id)
}

// ReplaceMenuAssociations deletes and reinserts the group's menus in one transaction. Duplicates are ignored.
func (r *GroupRepository) ReplaceMenuAssociations(ctx context.Context, id int64, menuIDs []int64) error {
	menuIDs = group.DedupeIDs(menuIDs)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := groupExists(tx, id); err != nil {
			return err
		}
		if err := menusExist(tx, menuIDs); err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&accessDatamodel.GroupMenu{}).Error; err != nil {
			return internal.NewStorageError("failed to clear menu associations", err)
		}
		return insertGroupMenus(tx, id, menuIDs)
	})
}

func listMenus(db *gorm.DB, groupID int64) ([]catalog.Menu, error) {
	var rows []accessDatamodel.Menu
	err := db.Table("menus AS m").
		Select("m.id, m.name, m.created_at").
		Joins("JOIN group_menus gm ON gm.menu_id = m.id").
		Where("gm.group_id = ?", groupID).
		Order("m.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, internal.NewStorageError("failed to list group menus", err)
	}

	menus := make([]catalog.Menu, 0, len(rows))
	for i := range rows {
		menus = append(menus, catalog.MenuFromDataModel(&rows[i]))
	}
	return menus, nil
}

func insertGroupMenus(tx *gorm.DB, groupID int64, menuIDs []int64) error {
	if len(menuIDs) == 0 {
		return nil
	}
	rows := make([]accessDatamodel.GroupMenu, 0, len(menuIDs))
	for _, menuID := range menuIDs {
		rows = append(rows, accessDatamodel.GroupMenu{GroupID: groupID, MenuID: menuID})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return internal.NewStorageError("failed to insert menu associations", err)
	}
	return nil
}

func groupExists(db *gorm.DB, id int64) error {
	var count int64
	if err := db.Model(&accessDatamodel.Group{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return internal.NewStorageError("failed to load group", err)
	}
	if count == 0 {
		return internal.ErrGroupNotFound
	}
	return nil
}

func nameAvailable(db *gorm.DB, name string, exceptID int64) error {
	var count int64
	err := db.Model(&accessDatamodel.Group{}).
		Where("LOWER(name) = LOWER(?) AND id <> ?", name, exceptID).
		Count(&count).Error
	if err != nil {
		return internal.NewStorageError("failed to check group name", err)
	}
	if count > 0 {
		return internal.ErrGroupNameExists
	}
	return nil
}

func menusExist(db *gorm.DB, menuIDs []int64) error {
	if len(menuIDs) == 0 {
		return nil
	}
	var count int64
	if err := db.Model(&accessDatamodel.Menu{}).Where("id IN ?", menuIDs).Count(&count).Error; err != nil {
		return internal.NewStorageError("failed to load menus", err)
	}
	if count != int64(len(menuIDs)) {
		return internal.ErrMenuNotFound
	}
	return nil
}

func translate(err error, message string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return internal.ErrGroupNameExists.WithCause(err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return internal.ErrGroupNotFound
	default:
		return internal.NewStorageError(message, err)
	}
}

func toGroup(row *groupRow) *group.Group {
	return &group.Group{
		ID:            row.ID,
		Name:          row.Name,
		MenuCount:     row.MenuCount,
		EmployeeCount: row.EmployeeCount,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}
