package permission

import (
	"github.com/frahmantamala/rbac-admin/internal/catalog"
)

// Input is everything the resolver needs; it performs no I/O of its own.
type Input struct {
	IsSuperuser bool
	Menus       []catalog.Menu
	Modules     []catalog.Module
	// Grants are the group's stored, non-trivial grants.
	Grants []Grant
}

type AnomalyReason string

const (
	AnomalyDuplicateGrant AnomalyReason = "duplicate grant for key"
	AnomalyMenuMismatch   AnomalyReason = "module does not belong to grant menu"
)

// Anomaly is a data-integrity problem seen while resolving. Resolution never fails on one.
type Anomaly struct {
	Key    Key
	Reason AnomalyReason
}

// Access is the resolved view of one identity's permissions.
type Access struct {
	superuser bool
	menus     []catalog.Menu
	modules   []catalog.Module
	caps      map[Key]Capabilities
	anomalies []Anomaly
}

type NavigationModule struct {
	catalog.Module
	Capabilities Capabilities `json:"capabilities"`
}

type NavigationMenu struct {
	catalog.Menu
	Modules []NavigationModule `json:"modules"`
}

// Resolve folds the grants into per-key capabilities. Duplicate rows for one key are ORed.
func Resolve(in Input) *Access {
	a := &Access{
		superuser: in.IsSuperuser,
		menus:     in.Menus,
		modules:   in.Modules,
		caps:      make(map[Key]Capabilities, len(in.Grants)),
	}

	moduleMenu := make(map[int64]int64, len(in.Modules))
	for _, m := range in.Modules {
		moduleMenu[m.ID] = m.MenuID
	}

	for _, g := range in.Grants {
		k := g.Key()
		// a row whose module lives under another menu never grants anything
		if menuID, ok := moduleMenu[g.ModuleID]; ok && menuID != g.MenuID {
			a.anomalies = append(a.anomalies, Anomaly{Key: k, Reason: AnomalyMenuMismatch})
			continue
		}
		if existing, ok := a.caps[k]; ok {
			a.anomalies = append(a.anomalies, Anomaly{Key: k, Reason: AnomalyDuplicateGrant})
			a.caps[k] = existing.Union(g.Capabilities)
			continue
		}
		a.caps[k] = g.Capabilities
	}

	return a
}

func (a *Access) IsSuperuser() bool {
	return a.superuser
}

// Menus are the menus to render: every menu for a superuser, otherwise the menus
// with at least one viewable module. A menu association alone never shows a menu.
func (a *Access) Menus() []catalog.Menu {
	out := make([]catalog.Menu, 0, len(a.menus))
	for _, menu := range a.menus {
		if a.superuser || len(a.Modules(menu.ID)) > 0 {
			out = append(out, menu)
		}
	}
	return out
}

// Modules are the visible modules of a menu. View gates visibility; other flags do not.
func (a *Access) Modules(menuID int64) []catalog.Module {
	all := catalog.ModulesForMenu(a.modules, menuID)
	if a.superuser {
		return all
	}

	out := make([]catalog.Module, 0, len(all))
	for _, m := range all {
		if a.caps[Key{MenuID: menuID, ModuleID: m.ID}].CanView {
			out = append(out, m)
		}
	}
	return out
}

// Authorize is true for a superuser or when a grant for the key carries the action's flag.
func (a *Access) Authorize(menuID, moduleID int64, action Action) bool {
	if a.superuser {
		return true
	}
	return a.caps[Key{MenuID: menuID, ModuleID: moduleID}].Has(action)
}

func (a *Access) Capabilities(menuID, moduleID int64) Capabilities {
	if a.superuser {
		return FullCapabilities
	}
	return a.caps[Key{MenuID: menuID, ModuleID: moduleID}]
}

func (a *Access) Navigation() []NavigationMenu {
	menus := a.Menus()
	nav := make([]NavigationMenu, 0, len(menus))
	for _, menu := range menus {
		modules := a.Modules(menu.ID)
		item := NavigationMenu{Menu: menu, Modules: make([]NavigationModule, 0, len(modules))}
		for _, m := range modules {
			item.Modules = append(item.Modules, NavigationModule{
				Module:       m,
				Capabilities: a.Capabilities(menu.ID, m.ID),
			})
		}
		nav = append(nav, item)
	}
	return nav
}

func (a *Access) Anomalies() []Anomaly {
	return a.anomalies
}
