// Package seed loads the default catalog and the bootstrap superuser.
package seed

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/rbac-admin/internal"
	"github.com/frahmantamala/rbac-admin/internal/auth"
	accessDatamodel "github.com/frahmantamala/rbac-admin/internal/core/datamodel/access"
	employeeDatamodel "github.com/frahmantamala/rbac-admin/internal/core/datamodel/employee"
	"github.com/frahmantamala/rbac-admin/internal/permission"
	"gorm.io/gorm"
)

type MenuSeed struct {
	Name    string
	Modules []string
}

// DefaultCatalog always contains the Administration menu the admin API is guarded by.
var DefaultCatalog = []MenuSeed{
	{Name: permission.MenuAdministration, Modules: []string{permission.ModuleEmployees, permission.ModuleGroups, permission.ModuleModuleAccess}},
	{Name: "Sales", Modules: []string{"Orders", "Customers", "Invoices"}},
	{Name: "Inventory", Modules: []string{"Products", "Stock Movements"}},
	{Name: "Reports", Modules: []string{"Sales Report", "Inventory Report"}},
}

type Options struct {
	// Clear wipes employees, groups and the catalog before seeding.
	Clear         bool
	AdminEmail    string
	AdminPassword string
	BCryptCost    int
}

type Result struct {
	MenusCreated   int
	ModulesCreated int
	AdminCreated   bool
}

type Seeder struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewSeeder(db *gorm.DB, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{db: db, logger: logger}
}

// Run is idempotent: existing menus, modules and the admin account are left as they are.
func (s *Seeder) Run(ctx context.Context, catalog []MenuSeed, opts Options) (Result, error) {
	if opts.AdminEmail == "" {
		opts.AdminEmail = "admin@example.com"
	}
	if opts.AdminPassword == "" {
		opts.AdminPassword = "admin123"
	}

	hash, err := auth.HashPassword(opts.AdminPassword, opts.BCryptCost)
	if err != nil {
		return Result{}, err
	}

	var res Result
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if opts.Clear {
			if err := clearAll(tx); err != nil {
				return err
			}
		}

		for _, m := range catalog {
			menu := accessDatamodel.Menu{Name: m.Name}
			created, err := firstOrCreate(tx, &menu, accessDatamodel.Menu{Name: m.Name})
			if err != nil {
				return internal.NewStorageError("failed to seed menu "+m.Name, err)
			}
			if created {
				res.MenusCreated++
			}

			for _, name := range m.Modules {
				module := accessDatamodel.Module{MenuID: menu.ID, Name: name}
				created, err := firstOrCreate(tx, &module, accessDatamodel.Module{MenuID: menu.ID, Name: name})
				if err != nil {
					return internal.NewStorageError("failed to seed module "+name, err)
				}
				if created {
					res.ModulesCreated++
				}
			}
		}

		admin := employeeDatamodel.Employee{
			EmployeeCode: "ADMIN001",
			Name:         "Admin User",
			Email:        opts.AdminEmail,
			PasswordHash: hash,
			IsSuperuser:  true,
		}
		created, err := firstOrCreate(tx, &admin, employeeDatamodel.Employee{Email: opts.AdminEmail})
		if err != nil {
			return internal.NewStorageError("failed to seed admin", err)
		}
		res.AdminCreated = created
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	s.logger.Info("seed completed",
		"menus_created", res.MenusCreated,
		"modules_created", res.ModulesCreated,
		"admin_created", res.AdminCreated,
		"cleared", opts.Clear)
	return res, nil
}

// firstOrCreate loads the row matching where into dst, inserting dst when none exists.
func firstOrCreate(tx *gorm.DB, dst interface{}, where interface{}) (bool, error) {
	err := tx.Where(where).First(dst).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if err := tx.Create(dst).Error; err != nil {
		return false, err
	}
	return true, nil
}

func clearAll(tx *gorm.DB) error {
	models := []interface{}{
		&accessDatamodel.GroupPermission{},
		&accessDatamodel.GroupMenu{},
		&employeeDatamodel.Employee{},
		&accessDatamodel.Group{},
		&accessDatamodel.Module{},
		&accessDatamodel.Menu{},
	}
	for _, m := range models {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
			return internal.NewStorageError("failed to clear seed data", err)
		}
	}
	return nil
}
