package group_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/frahmantamala/rbac-admin/internal/group"
	"github.com/frahmantamala/rbac-admin/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Group Handler", func() {
	var (
		repo   *MockRepository
		router chi.Router
	)

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	errorCode := func(rec *httptest.ResponseRecorder) string {
		var body struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		return body.Error.Code
	}

	BeforeEach(func() {
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		repo = NewMockRepository()
		svc := group.NewService(repo, MockCatalog{}, nil, time.Second, lg)
		h := group.NewHandler(transport.NewBaseHandler(lg), svc)

		router = chi.NewRouter()
		router.Get("/groups", h.GetGroups)
		router.Post("/groups", h.CreateGroup)
		router.Get("/groups/{id}", h.GetGroup)
		router.Put("/groups/{id}", h.RenameGroup)
		router.Delete("/groups/{id}", h.DeleteGroup)
		router.Get("/groups/{id}/menus", h.GetGroupMenus)
		router.Put("/groups/{id}/menus", h.ReplaceGroupMenus)
	})

	It("should create a group and return 201", func() {
		rec := do(http.MethodPost, "/groups", map[string]interface{}{"name": "Sales", "menu_ids": []int64{1}})
		Expect(rec.Code).To(Equal(http.StatusCreated))

		var g group.Group
		Expect(json.Unmarshal(rec.Body.Bytes(), &g)).To(Succeed())
		Expect(g.Name).To(Equal("Sales"))
	})

	It("should reject a group without menus", func() {
		rec := do(http.MethodPost, "/groups", map[string]interface{}{"name": "Sales"})
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(errorCode(rec)).To(Equal("MENU_REQUIRED"))
	})

	It("should return 409 for a duplicate name", func() {
		do(http.MethodPost, "/groups", map[string]interface{}{"name": "Sales", "menu_ids": []int64{1}})
		rec := do(http.MethodPost, "/groups", map[string]interface{}{"name": "sales", "menu_ids": []int64{2}})
		Expect(rec.Code).To(Equal(http.StatusConflict))
		Expect(errorCode(rec)).To(Equal("GROUP_NAME_EXISTS"))
	})

	It("should reject a malformed body", func() {
		req := httptest.NewRequest(http.MethodPost, "/groups", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should list groups", func() {
		do(http.MethodPost, "/groups", map[string]interface{}{"name": "Sales", "menu_ids": []int64{1}})

		rec := do(http.MethodGet, "/groups", nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		var resp group.GroupsResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Groups).To(HaveLen(1))
	})

	It("should return 400 for a bad id and 404 for an unknown one", func() {
		Expect(do(http.MethodGet, "/groups/abc", nil).Code).To(Equal(http.StatusBadRequest))

		rec := do(http.MethodGet, "/groups/42", nil)
		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(errorCode(rec)).To(Equal("GROUP_NOT_FOUND"))
	})

	It("should rename, replace menus and delete", func() {
		do(http.MethodPost, "/groups", map[string]interface{}{"name": "Sales", "menu_ids": []int64{1}})

		Expect(do(http.MethodPut, "/groups/1", map[string]string{"name": "Field Sales"}).Code).To(Equal(http.StatusOK))

		rec := do(http.MethodPut, "/groups/1/menus", map[string]interface{}{"menu_ids": []int64{1, 2}})
		Expect(rec.Code).To(Equal(http.StatusOK))
		var menus group.MenusResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &menus)).To(Succeed())
		Expect(menus.Menus).To(HaveLen(2))

		Expect(do(http.MethodGet, "/groups/1/menus", nil).Code).To(Equal(http.StatusOK))
		Expect(do(http.MethodDelete, "/groups/1", nil).Code).To(Equal(http.StatusNoContent))
		Expect(do(http.MethodGet, "/groups/1", nil).Code).To(Equal(http.StatusNotFound))
	})
})
