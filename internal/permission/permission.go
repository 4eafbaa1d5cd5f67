package permission

import (
	"fmt"
	"strings"

	"github.com/frahmantamala/rbac-admin/internal"
)

// Action is one of the four fixed capabilities a grant can carry.
type Action string

const (
	ActionAdd    Action = "add"
	ActionView   Action = "view"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Actions lists every capability in display order.
var Actions = []Action{ActionView, ActionAdd, ActionEdit, ActionDelete}

func ParseAction(raw string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(raw))); a {
	case ActionAdd, ActionView, ActionEdit, ActionDelete:
		return a, nil
	default:
		return "", internal.NewValidationFieldError("action", fmt.Sprintf("unknown action %q", raw), internal.ErrCodeInvalidAction)
	}
}

func (a Action) String() string {
	return string(a)
}

// Capabilities are the four independent flags of a grant.
type Capabilities struct {
	CanAdd    bool `json:"can_add"`
	CanView   bool `json:"can_view"`
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

// FullCapabilities is what a superuser holds on every module.
var FullCapabilities = Capabilities{CanAdd: true, CanView: true, CanEdit: true, CanDelete: true}

// Any reports whether at least one flag is set. A grant with no flag set is equivalent to no grant.
func (c Capabilities) Any() bool {
	return c.CanAdd || c.CanView || c.CanEdit || c.CanDelete
}

func (c Capabilities) Has(action Action) bool {
	switch action {
	case ActionAdd:
		return c.CanAdd
	case ActionView:
		return c.CanView
	case ActionEdit:
		return c.CanEdit
	case ActionDelete:
		return c.CanDelete
	default:
		return false
	}
}

// With returns a copy with the flag for action set to value.
func (c Capabilities) With(action Action, value bool) Capabilities {
	switch action {
	case ActionAdd:
		c.CanAdd = value
	case ActionView:
		c.CanView = value
	case ActionEdit:
		c.CanEdit = value
	case ActionDelete:
		c.CanDelete = value
	}
	return c
}

// Union ORs two capability sets.
func (c Capabilities) Union(o Capabilities) Capabilities {
	return Capabilities{
		CanAdd:    c.CanAdd || o.CanAdd,
		CanView:   c.CanView || o.CanView,
		CanEdit:   c.CanEdit || o.CanEdit,
		CanDelete: c.CanDelete || o.CanDelete,
	}
}

// Key identifies a grant inside one group.
type Key struct {
	MenuID   int64 `json:"menu_id"`
	ModuleID int64 `json:"module_id"`
}

func (k Key) String() string {
	return fmt.Sprintf("%d/%d", k.MenuID, k.ModuleID)
}

// Grant is the (group, menu, module) capability record.
type Grant struct {
	GroupID    int64  `json:"group_id"`
	MenuID     int64  `json:"menu_id"`
	ModuleID   int64  `json:"module_id"`
	MenuName   string `json:"menu_name,omitempty"`
	ModuleName string `json:"module_name,omitempty"`
	Capabilities
}

func (g Grant) Key() Key {
	return Key{MenuID: g.MenuID, ModuleID: g.ModuleID}
}

// IsTrivial reports an all-false grant, which must never be persisted.
func (g Grant) IsTrivial() bool {
	return !g.Any()
}

// NonTrivial drops all-false grants, keeping order.
func NonTrivial(grants []Grant) []Grant {
	out := make([]Grant, 0, len(grants))
	for _, g := range grants {
		if !g.IsTrivial() {
			out = append(out, g)
		}
	}
	return out
}

// DuplicateKey returns the first key that appears twice in grants.
func DuplicateKey(grants []Grant) (Key, bool) {
	seen := make(map[Key]struct{}, len(grants))
	for _, g := range grants {
		k := g.Key()
		if _, ok := seen[k]; ok {
			return k, true
		}
		seen[k] = struct{}{}
	}
	return Key{}, false
}
