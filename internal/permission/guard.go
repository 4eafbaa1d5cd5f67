package permission

import (
	"context"
	"net/http"

	"github.com/frahmantamala/rbac-admin/internal"
	"github.com/frahmantamala/rbac-admin/internal/auth"
	"github.com/frahmantamala/rbac-admin/internal/transport"
)

// Names of the seeded catalog entries that guard the admin API itself.
const (
	MenuAdministration = "Administration"
	ModuleEmployees    = "Employees"
	ModuleGroups       = "Groups"
	ModuleModuleAccess = "Module Access"
)

type Authorizer interface {
	AuthorizeByName(ctx context.Context, p *auth.Principal, menuName, moduleName string, action Action) (bool, error)
}

// Guard turns authorization decisions into chi middleware.
type Guard struct {
	*transport.BaseHandler
	authorizer Authorizer
}

func NewGuard(base *transport.BaseHandler, authorizer Authorizer) *Guard {
	return &Guard{BaseHandler: base, authorizer: authorizer}
}

// Require admits the request only when the principal holds action on menuName/moduleName.
func (g *Guard) Require(menuName, moduleName string, action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := auth.PrincipalFromContext(r.Context())
			if !ok {
				g.HandleServiceError(w, internal.ErrMissingToken)
				return
			}

			allowed, err := g.authorizer.AuthorizeByName(r.Context(), p, menuName, moduleName, action)
			if err != nil {
				g.HandleServiceError(w, err)
				return
			}
			if !allowed {
				g.Logger.WarnContext(r.Context(), "access denied",
					"employee_id", p.EmployeeID,
					"menu", menuName,
					"module", moduleName,
					"action", action.String())
				g.HandleServiceError(w, internal.ErrAccessDenied)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
