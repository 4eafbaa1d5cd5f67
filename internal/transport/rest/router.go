package rest

import (
	"net/http"

	"github.com/frahmantamala/rbac-admin/internal/auth"
	"github.com/frahmantamala/rbac-admin/internal/catalog"
	"github.com/frahmantamala/rbac-admin/internal/dashboard"
	"github.com/frahmantamala/rbac-admin/internal/employee"
	"github.com/frahmantamala/rbac-admin/internal/group"
	"github.com/frahmantamala/rbac-admin/internal/observability"
	"github.com/frahmantamala/rbac-admin/internal/permission"
	"github.com/frahmantamala/rbac-admin/internal/transport"
	"github.com/frahmantamala/rbac-admin/internal/transport/middleware"
	"github.com/frahmantamala/rbac-admin/internal/transport/swagger"
	"github.com/go-chi/chi"
)

// Handlers groups everything the router mounts. Nil handlers leave their routes out.
type Handlers struct {
	Base       *transport.BaseHandler
	Health     *HealthHandler
	Auth       *auth.Handler
	Catalog    *catalog.Handler
	Permission *permission.Handler
	Group      *group.Handler
	Employee   *employee.Handler
	Dashboard  *dashboard.Handler
	Guard      *permission.Guard
}

type RouterOptions struct {
	AllowedOrigins string
	OpenAPISpec    []byte
	Validator      *middleware.RequestValidator
	Metrics        *observability.Metrics
	MetricsPath    string
}

func NewRouter(h Handlers, opts RouterOptions) *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery(h.Base))
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.RequestLogger)
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware)
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.Handle(path, opts.Metrics.Handler())
	}

	if len(opts.OpenAPISpec) > 0 {
		router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/yaml")
			_, _ = w.Write(opts.OpenAPISpec)
		})
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		if opts.Validator != nil {
			r.Use(opts.Validator.Middleware)
		}

		if h.Health != nil {
			r.Get("/health", h.Health.Health)
			r.Get("/ping", h.Health.Ping)
		}

		if h.Auth == nil {
			return
		}
		r.Route("/auth", func(ar chi.Router) {
			ar.Post("/login", h.Auth.Login)
			ar.Post("/refresh", h.Auth.RefreshToken)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)
			pr.Get("/me", h.Auth.Me)

			if h.Permission != nil {
				pr.Get("/me/navigation", h.Permission.GetNavigation)
				pr.Get("/modules/{moduleId}/open", h.Permission.OpenModule)
			}
			if h.Catalog != nil {
				pr.Get("/menus", h.Catalog.GetMenus)
				pr.Get("/menus/{menuId}/modules", h.Catalog.GetMenuModules)
				pr.Get("/modules", h.Catalog.GetModules)
			}
			if h.Dashboard != nil {
				pr.Get("/dashboard/stats", h.Dashboard.GetStats)
			}
			if h.Guard != nil {
				registerAdminRoutes(pr, h)
			}
		})
	})

	return router
}

// registerAdminRoutes mounts the Administration menu surface behind per-module guards.
func registerAdminRoutes(r chi.Router, h Handlers) {
	require := func(module string, action permission.Action) func(http.Handler) http.Handler {
		return h.Guard.Require(permission.MenuAdministration, module, action)
	}

	if h.Group != nil {
		groups := permission.ModuleGroups
		r.With(require(groups, permission.ActionView)).Get("/groups", h.Group.GetGroups)
		r.With(require(groups, permission.ActionAdd)).Post("/groups", h.Group.CreateGroup)
		r.With(require(groups, permission.ActionView)).Get("/groups/{id}", h.Group.GetGroup)
		r.With(require(groups, permission.ActionEdit)).Put("/groups/{id}", h.Group.RenameGroup)
		r.With(require(groups, permission.ActionDelete)).Delete("/groups/{id}", h.Group.DeleteGroup)
		r.With(require(groups, permission.ActionView)).Get("/groups/{id}/menus", h.Group.GetGroupMenus)
		r.With(require(groups, permission.ActionEdit)).Put("/groups/{id}/menus", h.Group.ReplaceGroupMenus)
	}

	if h.Permission != nil {
		access := permission.ModuleModuleAccess
		r.With(require(access, permission.ActionView)).Get("/groups/{id}/permissions", h.Permission.GetGroupPermissions)
		r.With(require(access, permission.ActionEdit)).Put("/groups/{id}/permissions", h.Permission.UpdateGroupPermissions)
	}

	if h.Employee != nil {
		employees := permission.ModuleEmployees
		r.With(require(employees, permission.ActionView)).Get("/employees", h.Employee.GetEmployees)
		r.With(require(employees, permission.ActionAdd)).Post("/employees", h.Employee.CreateEmployee)
		r.With(require(employees, permission.ActionView)).Get("/employees/{id}", h.Employee.GetEmployee)
		r.With(require(employees, permission.ActionEdit)).Put("/employees/{id}", h.Employee.UpdateEmployee)
		r.With(require(employees, permission.ActionDelete)).Delete("/employees/{id}", h.Employee.DeleteEmployee)
	}
}
