package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/rbac-admin/api"
	"github.com/frahmantamala/rbac-admin/internal"
	"github.com/frahmantamala/rbac-admin/internal/auth"
	authPostgres "github.com/frahmantamala/rbac-admin/internal/auth/postgres"
	"github.com/frahmantamala/rbac-admin/internal/catalog"
	catalogPostgres "github.com/frahmantamala/rbac-admin/internal/catalog/postgres"
	"github.com/frahmantamala/rbac-admin/internal/core/events"
	"github.com/frahmantamala/rbac-admin/internal/dashboard"
	dashboardPostgres "github.com/frahmantamala/rbac-admin/internal/dashboard/postgres"
	"github.com/frahmantamala/rbac-admin/internal/employee"
	employeePostgres "github.com/frahmantamala/rbac-admin/internal/employee/postgres"
	"github.com/frahmantamala/rbac-admin/internal/group"
	groupPostgres "github.com/frahmantamala/rbac-admin/internal/group/postgres"
	"github.com/frahmantamala/rbac-admin/internal/observability"
	"github.com/frahmantamala/rbac-admin/internal/permission"
	permissionPostgres "github.com/frahmantamala/rbac-admin/internal/permission/postgres"
	"github.com/frahmantamala/rbac-admin/internal/transport"
	"github.com/frahmantamala/rbac-admin/internal/transport/middleware"
	"github.com/frahmantamala/rbac-admin/internal/transport/rest"
	"github.com/frahmantamala/rbac-admin/pkg/logger"
	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Gorm     *gorm.DB
	EventBus *events.EventBus
	Router   *chi.Mux
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		deps.EventBus.Wait()
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.L()

	db, err := initDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	gdb, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	var metrics *observability.Metrics
	if cfg.Observability.Metrics.Enabled {
		metrics = observability.NewMetrics()
	}

	bus := events.NewEventBus(lg)
	events.RegisterAuditLog(bus, lg)

	base := transport.NewBaseHandler(lg)

	catalogRepo := catalog.NewCachedRepository(catalogPostgres.NewCatalogRepository(gdb), cfg.Cache.CatalogSize, cfg.Cache.CatalogTTL, metrics)
	catalogService := catalog.NewService(catalogRepo, lg)

	tokens := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.RefreshSecret, cfg.Security.AccessTokenDuration, cfg.Security.RefreshTokenDuration)
	authService := auth.NewService(authPostgres.NewRepository(gdb), tokens, lg)

	permissionService := permission.NewService(permissionPostgres.NewGrantRepository(gdb), catalogRepo, bus, metrics, cfg.Database.QueryTimeout, lg)
	groupService := group.NewService(groupPostgres.NewGroupRepository(gdb), catalogRepo, bus, cfg.Database.QueryTimeout, lg)
	employeeService := employee.NewService(employeePostgres.NewEmployeeRepository(gdb), bus, cfg.Security.BCryptCost, lg)
	dashboardService := dashboard.NewService(dashboardPostgres.NewRepository(db), cfg.Database.QueryTimeout, lg)

	opts := rest.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		OpenAPISpec:    api.Spec,
		Metrics:        metrics,
		MetricsPath:    cfg.Observability.Metrics.Path,
	}
	if cfg.Server.ValidateRequests {
		validator, err := middleware.NewRequestValidator(context.Background(), api.Spec, base)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to load request validator: %w", err)
		}
		opts.Validator = validator
	}

	router := rest.NewRouter(rest.Handlers{
		Base:       base,
		Health:     rest.NewHealthHandler(base, map[string]rest.Pinger{"postgres": db.DB}),
		Auth:       auth.NewHandler(base, authService),
		Catalog:    catalog.NewHandler(base, catalogService),
		Permission: permission.NewHandler(base, permissionService),
		Group:      group.NewHandler(base, groupService),
		Employee:   employee.NewHandler(base, employeeService),
		Dashboard:  dashboard.NewHandler(base, dashboardService),
		Guard:      permission.NewGuard(base, permissionService),
	}, opts)

	return &Dependencies{
		Config:   cfg,
		DB:       db,
		Gorm:     gdb,
		EventBus: bus,
		Router:   router,
		Logger:   lg,
	}, nil
}

// initDB opens the shared pgx pool through sqlx
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	db, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

// initGorm reuses the sqlx pool so both layers share one set of connections.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
	})
}
