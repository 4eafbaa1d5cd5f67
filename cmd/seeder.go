package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/rbac-admin/internal/seed"
	"github.com/frahmantamala/rbac-admin/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	adminEmail    string
	adminPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the menu catalog and the admin account",
	Long:  `Seed the default menus and modules plus a superuser admin. Safe to run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to init db: %w", err)
		}
		defer db.Close()

		gdb, err := initGorm(db)
		if err != nil {
			return fmt.Errorf("failed to init gorm: %w", err)
		}

		res, err := seed.NewSeeder(gdb, logger.L()).Run(context.Background(), seed.DefaultCatalog, seed.Options{
			Clear:         clearData,
			AdminEmail:    adminEmail,
			AdminPassword: adminPassword,
			BCryptCost:    cfg.Security.BCryptCost,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Seeded %d menus, %d modules\n", res.MenusCreated, res.ModulesCreated)
		if res.AdminCreated {
			fmt.Println("Seeded admin user:", adminEmail)
		} else {
			fmt.Println("admin user already exists:", adminEmail)
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&adminEmail, "admin-email", "admin@example.com", "email of the seeded superuser")
	seedCmd.Flags().StringVar(&adminPassword, "admin-password", "admin123", "password of the seeded superuser")
}
