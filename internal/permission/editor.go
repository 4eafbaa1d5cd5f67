package permission

import (
	"fmt"
	"sort"

	"github.com/frahmantamala/rbac-admin/internal"
	"github.com/frahmantamala/rbac-admin/internal/catalog"
)

// Editor holds an admin's in-progress edit of one group's grants.
// Bulk operations only reach menus associated with the group.
type Editor struct {
	groupID int64
	scope   map[int64]struct{}
	modules []catalog.Module
	state   map[Key]Capabilities
}

// NewEditor scopes bulk edits to menuIDs; modules is the catalog used to expand them.
func NewEditor(groupID int64, menuIDs []int64, modules []catalog.Module) *Editor {
	scope := make(map[int64]struct{}, len(menuIDs))
	for _, id := range menuIDs {
		scope[id] = struct{}{}
	}
	return &Editor{
		groupID: groupID,
		scope:   scope,
		modules: modules,
		state:   make(map[Key]Capabilities),
	}
}

// Load seeds the edit state from stored grants, replacing whatever was there for those keys.
func (e *Editor) Load(grants []Grant) {
	for _, g := range grants {
		e.state[g.Key()] = g.Capabilities
	}
}

func (e *Editor) Get(key Key) Capabilities {
	return e.state[key]
}

func (e *Editor) Set(key Key, action Action, value bool) {
	e.state[key] = e.state[key].With(action, value)
}

func (e *Editor) Toggle(key Key, action Action) {
	e.Set(key, action, !e.state[key].Has(action))
}

func (e *Editor) SetCapabilities(key Key, caps Capabilities) {
	e.state[key] = caps
}

func (e *Editor) InScope(menuID int64) bool {
	_, ok := e.scope[menuID]
	return ok
}

// ApplyToMenu sets action on every module of one associated menu.
func (e *Editor) ApplyToMenu(menuID int64, action Action, value bool) error {
	if !e.InScope(menuID) {
		return internal.NewValidationError(
			fmt.Sprintf("menu %d is not associated with group %d", menuID, e.groupID),
			internal.ErrCodeMenuOutOfScope,
		)
	}
	for _, m := range catalog.ModulesForMenu(e.modules, menuID) {
		e.Set(Key{MenuID: menuID, ModuleID: m.ID}, action, value)
	}
	return nil
}

// ApplyToAll sets action on every module of every associated menu.
func (e *Editor) ApplyToAll(action Action, value bool) {
	for _, m := range e.modules {
		if e.InScope(m.MenuID) {
			e.Set(Key{MenuID: m.MenuID, ModuleID: m.ID}, action, value)
		}
	}
}

// Grants is the set to persist: one grant per key with at least one flag, sorted by (menu, module).
func (e *Editor) Grants() []Grant {
	grants := make([]Grant, 0, len(e.state))
	for k, caps := range e.state {
		if !caps.Any() {
			continue
		}
		grants = append(grants, Grant{
			GroupID:      e.groupID,
			MenuID:       k.MenuID,
			ModuleID:     k.ModuleID,
			Capabilities: caps,
		})
	}
	sort.Slice(grants, func(i, j int) bool {
		if grants[i].MenuID != grants[j].MenuID {
			return grants[i].MenuID < grants[j].MenuID
		}
		return grants[i].ModuleID < grants[j].ModuleID
	})
	return grants
}
