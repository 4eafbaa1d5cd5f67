package seed_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	accessDatamodel "github.com/frahmantamala/rbac-admin/internal/core/datamodel/access"
	employeeDatamodel "github.com/frahmantamala/rbac-admin/internal/core/datamodel/employee"
	"github.com/frahmantamala/rbac-admin/internal/seed"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestSeed(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Seed Suite")
}

var _ = Describe("Seeder", func() {
	var (
		db     *gorm.DB
		seeder *seed.Seeder
		opts   seed.Options
		ctx    context.Context
	)

	count := func(model interface{}) int64 {
		var n int64
		Expect(db.Model(model).Count(&n).Error).To(Succeed())
		return n
	}

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(
			&accessDatamodel.Group{},
			&accessDatamodel.Menu{},
			&accessDatamodel.Module{},
			&accessDatamodel.GroupMenu{},
			&accessDatamodel.GroupPermission{},
			&employeeDatamodel.Employee{},
		)).To(Succeed())

		seeder = seed.NewSeeder(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
		opts = seed.Options{BCryptCost: bcrypt.MinCost}
	})

	It("should seed the catalog and a superuser admin", func() {
		res, err := seeder.Run(ctx, seed.DefaultCatalog, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.MenusCreated).To(Equal(len(seed.DefaultCatalog)))
		Expect(res.AdminCreated).To(BeTrue())

		var admin employeeDatamodel.Employee
		Expect(db.Where("email = ?", "admin@example.com").First(&admin).Error).To(Succeed())
		Expect(admin.IsSuperuser).To(BeTrue())
		Expect(bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("admin123"))).To(Succeed())

		var administration accessDatamodel.Menu
		Expect(db.Where("name = ?", "Administration").First(&administration).Error).To(Succeed())
		var modules []accessDatamodel.Module
		Expect(db.Where("menu_id = ?", administration.ID).Order("name").Find(&modules).Error).To(Succeed())
		Expect(modules).To(HaveLen(3))
		Expect(modules[0].Name).To(Equal("Employees"))
	})

	It("should be idempotent", func() {
		_, err := seeder.Run(ctx, seed.DefaultCatalog, opts)
		Expect(err).NotTo(HaveOccurred())
		menus, modules := count(&accessDatamodel.Menu{}), count(&accessDatamodel.Module{})

		res, err := seeder.Run(ctx, seed.DefaultCatalog, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(res).To(Equal(seed.Result{}))
		Expect(count(&accessDatamodel.Menu{})).To(Equal(menus))
		Expect(count(&accessDatamodel.Module{})).To(Equal(modules))
		Expect(count(&employeeDatamodel.Employee{})).To(Equal(int64(1)))
	})

	It("should wipe existing data with Clear", func() {
		Expect(db.Create(&accessDatamodel.Group{Name: "Old"}).Error).To(Succeed())
		Expect(db.Create(&employeeDatamodel.Employee{EmployeeCode: "X", Name: "X", Email: "x@example.com", PasswordHash: "h"}).Error).To(Succeed())

		opts.Clear = true
		_, err := seeder.Run(ctx, seed.DefaultCatalog, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(count(&accessDatamodel.Group{})).To(BeZero())
		Expect(count(&employeeDatamodel.Employee{})).To(Equal(int64(1)))
	})
})
