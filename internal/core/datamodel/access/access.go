package access

import "time"

type Group struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Group) TableName() string {
	return "access_groups"
}

type Menu struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Menu) TableName() string {
	return "menus"
}

type Module struct {
	ID        int64     `gorm:"primaryKey"`
	MenuID    int64     `gorm:"column:menu_id;not null;uniqueIndex:idx_modules_menu_name"`
	Name      string    `gorm:"column:name;not null;uniqueIndex:idx_modules_menu_name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Module) TableName() string {
	return "modules"
}

// ModuleWithMenu is a module row joined with its menu name.
type ModuleWithMenu struct {
	Module
	MenuName string `gorm:"column:menu_name"`
}

type GroupMenu struct {
	ID        int64     `gorm:"primaryKey"`
	GroupID   int64     `gorm:"column:group_id;not null;uniqueIndex:idx_group_menus_group_menu"`
	MenuID    int64     `gorm:"column:menu_id;not null;uniqueIndex:idx_group_menus_group_menu"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (GroupMenu) TableName() string {
	return "group_menus"
}

type GroupPermission struct {
	ID        int64     `gorm:"primaryKey"`
	GroupID   int64     `gorm:"column:group_id;not null;uniqueIndex:idx_group_permissions_key"`
	MenuID    int64     `gorm:"column:menu_id;not null;uniqueIndex:idx_group_permissions_key"`
	ModuleID  int64     `gorm:"column:module_id;not null;uniqueIndex:idx_group_permissions_key"`
	CanAdd    bool      `gorm:"column:can_add;not null;default:false"`
	CanView   bool      `gorm:"column:can_view;not null;default:false"`
	CanEdit   bool      `gorm:"column:can_edit;not null;default:false"`
	CanDelete bool      `gorm:"column:can_delete;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (GroupPermission) TableName() string {
	return "group_permissions"
}

// GroupPermissionView is a grant row joined with menu and module display names.
type GroupPermissionView struct {
	GroupPermission
	MenuName   string `gorm:"column:menu_name"`
	ModuleName string `gorm:"column:module_name"`
}
