package employee_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/rbac-admin/internal/employee"
	"github.com/frahmantamala/rbac-admin/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

var _ = Describe("Employee Handler", func() {
	var router chi.Router

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
		return rec
	}

	BeforeEach(func() {
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		svc := employee.NewService(NewMockRepository(), nil, bcrypt.MinCost, lg)
		h := employee.NewHandler(transport.NewBaseHandler(lg), svc)

		router = chi.NewRouter()
		router.Get("/employees", h.GetEmployees)
		router.Post("/employees", h.CreateEmployee)
		router.Get("/employees/{id}", h.GetEmployee)
		router.Put("/employees/{id}", h.UpdateEmployee)
		router.Delete("/employees/{id}", h.DeleteEmployee)
	})

	create := map[string]interface{}{
		"employee_code": "EMP-001",
		"name":          "Ann Smith",
		"email":         "ann@example.com",
		"password":      "s3cret-pass",
	}

	It("should create an employee without exposing the hash", func() {
		rec := do(http.MethodPost, "/employees", create)
		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(rec.Body.String()).NotTo(ContainSubstring("password"))

		var e employee.Employee
		Expect(json.Unmarshal(rec.Body.Bytes(), &e)).To(Succeed())
		Expect(e.ID).To(Equal(int64(1)))
		Expect(e.GroupID).To(BeNil())
	})

	It("should return 409 on a duplicate email", func() {
		do(http.MethodPost, "/employees", create)
		dup := map[string]interface{}{
			"employee_code": "EMP-002",
			"name":          "Ann Other",
			"email":         "ANN@example.com",
			"password":      "s3cret-pass",
		}
		Expect(do(http.MethodPost, "/employees", dup).Code).To(Equal(http.StatusConflict))
	})

	It("should list, update and delete", func() {
		do(http.MethodPost, "/employees", create)

		rec := do(http.MethodGet, "/employees", nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		var list employee.EmployeesResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &list)).To(Succeed())
		Expect(list.Employees).To(HaveLen(1))

		update := map[string]interface{}{
			"employee_code": "EMP-001",
			"name":          "Ann Jones",
			"email":         "ann@example.com",
		}
		Expect(do(http.MethodPut, "/employees/1", update).Code).To(Equal(http.StatusOK))
		Expect(do(http.MethodDelete, "/employees/1", nil).Code).To(Equal(http.StatusNoContent))
		Expect(do(http.MethodGet, "/employees/1", nil).Code).To(Equal(http.StatusNotFound))
	})

	It("should reject a bad id", func() {
		Expect(do(http.MethodGet, "/employees/0", nil).Code).To(Equal(http.StatusBadRequest))
	})
})
