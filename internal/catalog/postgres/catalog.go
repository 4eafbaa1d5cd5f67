package postgres

import (
	"context"

	"github.com/frahmantamala/rbac-admin/internal"
	"github.com/frahmantamala/rbac-admin/internal/catalog"
	accessDatamodel "github.com/frahmantamala/rbac-admin/internal/core/datamodel/access"
	"gorm.io/gorm"
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) ListMenus(ctx context.Context) ([]catalog.Menu, error) {
	var rows []accessDatamodel.Menu
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, internal.NewStorageError("failed to list menus", err)
	}

	menus := make([]catalog.Menu, 0, len(rows))
	for i := range rows {
		menus = append(menus, catalog.MenuFromDataModel(&rows[i]))
	}
	return menus, nil
}

func (r *CatalogRepository) ListModules(ctx context.Context) ([]catalog.Module, error) {
	var rows []accessDatamodel.ModuleWithMenu
	err := r.db.WithContext(ctx).
		Table("modules AS md").
		Select("md.id, md.menu_id, md.name, md.created_at, m.name AS menu_name").
		Joins("JOIN menus AS m ON m.id = md.menu_id").
		Order("md.menu_id ASC, md.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, internal.NewStorageError("failed to list modules", err)
	}

	modules := make([]catalog.Module, 0, len(rows))
	for i := range rows {
		modules = append(modules, catalog.ModuleFromDataModel(&rows[i]))
	}
	return modules, nil
}
