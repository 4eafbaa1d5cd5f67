package catalog_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/frahmantamala/rbac-admin/internal/catalog"
	"github.com/frahmantamala/rbac-admin/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Catalog Handler", func() {
	var router chi.Router

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service := catalog.NewService(NewMockRepository(), slogger)
		handler := catalog.NewHandler(&transport.BaseHandler{Logger: slogger}, service)

		router = chi.NewRouter()
		router.Get("/menus", handler.GetMenus)
		router.Get("/modules", handler.GetModules)
		router.Get("/menus/{menuId}/modules", handler.GetMenuModules)
	})

	It("should handle GET /menus request successfully", func() {
		req := httptest.NewRequest(http.MethodGet, "/menus", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

		var response catalog.MenusResponse
		Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
		Expect(response.Menus).To(HaveLen(2))
	})

	It("should list modules of a menu", func() {
		req := httptest.NewRequest(http.MethodGet, "/menus/2/modules", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var response catalog.ModulesResponse
		Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
		Expect(response.Modules).To(HaveLen(1))
		Expect(response.Modules[0].Name).To(Equal("Sales Report"))
	})

	It("should answer 404 for an unknown menu", func() {
		req := httptest.NewRequest(http.MethodGet, "/menus/77/modules", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(w.Body.String()).To(ContainSubstring("MENU_NOT_FOUND"))
	})
})
