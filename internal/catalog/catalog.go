package catalog

import (
	accessDatamodel "github.com/frahmantamala/rbac-admin/internal/core/datamodel/access"
)

// Menu is a top-level navigation category. Menus are seed data.
type Menu struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Module is a leaf capability unit that belongs to exactly one menu.
type Module struct {
	ID       int64  `json:"id"`
	MenuID   int64  `json:"menu_id"`
	MenuName string `json:"menu_name,omitempty"`
	Name     string `json:"name"`
}

func MenuFromDataModel(m *accessDatamodel.Menu) Menu {
	return Menu{ID: m.ID, Name: m.Name}
}

func ModuleFromDataModel(m *accessDatamodel.ModuleWithMenu) Module {
	return Module{
		ID:       m.ID,
		MenuID:   m.MenuID,
		MenuName: m.MenuName,
		Name:     m.Name,
	}
}

// ModulesForMenu filters modules by menu, keeping their order.
func ModulesForMenu(modules []Module, menuID int64) []Module {
	out := make([]Module, 0)
	for _, m := range modules {
		if m.MenuID == menuID {
			out = append(out, m)
		}
	}
	return out
}
