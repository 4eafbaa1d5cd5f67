package permission_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/frahmantamala/rbac-admin/internal/auth"
	"github.com/frahmantamala/rbac-admin/internal/permission"
	"github.com/frahmantamala/rbac-admin/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// withPrincipal stands in for the auth middleware.
func withPrincipal(p *auth.Principal) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p != nil {
				r = r.WithContext(auth.ContextWithPrincipal(r.Context(), p))
			}
			next.ServeHTTP(w, r)
		})
	}
}

var _ = Describe("Handler", func() {
	var (
		repo      *MockRepository
		service   *permission.Service
		principal *auth.Principal
		router    chi.Router
	)

	BeforeEach(func() {
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		repo = NewMockRepository()
		repo.grants[1] = nil
		service = permission.NewService(repo, MockCatalog{}, nil, nil, time.Second, lg)
		base := transport.NewBaseHandler(lg)
		handler := permission.NewHandler(base, service)
		guard := permission.NewGuard(base, service)
		principal = &auth.Principal{EmployeeID: 1, IsSuperuser: true}

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				withPrincipal(principal)(next).ServeHTTP(w, r)
			})
		})
		router.With(guard.Require(permission.MenuAdministration, permission.ModuleGroups, permission.ActionView)).
			Get("/groups/{id}/permissions", handler.GetGroupPermissions)
		router.With(guard.Require(permission.MenuAdministration, permission.ModuleGroups, permission.ActionEdit)).
			Put("/groups/{id}/permissions", handler.UpdateGroupPermissions)
		router.Get("/me/navigation", handler.GetNavigation)
		router.Get("/modules/{moduleId}/open", handler.OpenModule)
	})

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf).WithContext(context.Background())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("should save and return a group's permissions", func() {
		w := do(http.MethodPut, "/groups/7/permissions", map[string]interface{}{
			"permissions": []map[string]interface{}{
				{"menu_id": ordersMenu, "module_id": invoicesModule, "can_view": true},
				{"menu_id": ordersMenu, "module_id": shipmentsModule},
			},
		})
		Expect(w.Code).To(Equal(http.StatusOK))

		w = do(http.MethodGet, "/groups/7/permissions", nil)
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp permission.GrantsResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.GroupID).To(Equal(int64(7)))
		Expect(resp.Permissions).To(HaveLen(1))
		Expect(resp.Permissions[0].ModuleID).To(Equal(invoicesModule))
		Expect(resp.Permissions[0].CanView).To(BeTrue())
	})

	It("should map an unknown group to 404", func() {
		w := do(http.MethodGet, "/groups/99/permissions", nil)
		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(w.Body.String()).To(ContainSubstring("GROUP_NOT_FOUND"))
	})

	It("should reject a malformed id", func() {
		w := do(http.MethodGet, "/groups/abc/permissions", nil)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should map duplicate keys to 409", func() {
		row := map[string]interface{}{"menu_id": ordersMenu, "module_id": invoicesModule, "can_view": true}
		w := do(http.MethodPut, "/groups/7/permissions", map[string]interface{}{
			"permissions": []interface{}{row, row},
		})
		Expect(w.Code).To(Equal(http.StatusConflict))
	})

	Context("when the caller is not a superuser", func() {
		BeforeEach(func() {
			groupID := int64(1)
			principal = &auth.Principal{EmployeeID: 5, GroupID: &groupID}
		})

		It("should forbid editing without the guard grant", func() {
			w := do(http.MethodPut, "/groups/7/permissions", map[string]interface{}{"permissions": []interface{}{}})
			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(repo.replaced).To(Equal(0))
		})

		It("should admit viewing once the group holds view on Groups", func() {
			repo.grants[1] = []permission.Grant{{GroupID: 1, MenuID: 4, ModuleID: 30, Capabilities: permission.Capabilities{CanView: true}}}

			Expect(do(http.MethodGet, "/groups/7/permissions", nil).Code).To(Equal(http.StatusOK))
			Expect(do(http.MethodPut, "/groups/7/permissions", map[string]interface{}{}).Code).To(Equal(http.StatusForbidden))
		})

		It("should render navigation from the group's grants", func() {
			repo.grants[1] = []permission.Grant{{GroupID: 1, MenuID: ordersMenu, ModuleID: shipmentsModule, Capabilities: permission.Capabilities{CanView: true}}}

			w := do(http.MethodGet, "/me/navigation", nil)
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp permission.NavigationResponse
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.IsSuperuser).To(BeFalse())
			Expect(resp.Menus).To(HaveLen(1))
			Expect(resp.Menus[0].Modules).To(HaveLen(1))
			Expect(resp.Menus[0].Modules[0].Name).To(Equal("Shipments"))
		})

		It("should forbid opening a module without view", func() {
			Expect(do(http.MethodGet, "/modules/10/open", nil).Code).To(Equal(http.StatusForbidden))
		})
	})

	Context("when no principal is on the request", func() {
		BeforeEach(func() {
			principal = nil
		})

		It("should answer 401", func() {
			Expect(do(http.MethodGet, "/groups/7/permissions", nil).Code).To(Equal(http.StatusUnauthorized))
			Expect(do(http.MethodGet, "/me/navigation", nil).Code).To(Equal(http.StatusUnauthorized))
		})
	})
})
