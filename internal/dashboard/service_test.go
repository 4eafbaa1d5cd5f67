package dashboard_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/frahmantamala/rbac-admin/internal"
	"github.com/frahmantamala/rbac-admin/internal/dashboard"
	"github.com/frahmantamala/rbac-admin/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestDashboard(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Dashboard Suite")
}

type stubRepository struct {
	stats       *dashboard.Stats
	err         error
	hadDeadline bool
}

func (s *stubRepository) Stats(ctx context.Context) (*dashboard.Stats, error) {
	_, s.hadDeadline = ctx.Deadline()
	return s.stats, s.err
}

var _ = Describe("Dashboard", func() {
	var (
		repo *stubRepository
		svc  *dashboard.Service
		lg   *slog.Logger
	)

	BeforeEach(func() {
		lg = slog.New(slog.NewTextHandler(io.Discard, nil))
		repo = &stubRepository{stats: &dashboard.Stats{Employees: 2, Groups: 1, Menus: 3, Modules: 7}}
		svc = dashboard.NewService(repo, time.Second, lg)
	})

	It("should bound the query with a deadline", func() {
		stats, err := svc.Stats(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Modules).To(Equal(int64(7)))
		Expect(repo.hadDeadline).To(BeTrue())
	})

	It("should serve the stats as JSON", func() {
		h := dashboard.NewHandler(transport.NewBaseHandler(lg), svc)
		rec := httptest.NewRecorder()
		h.GetStats(rec, httptest.NewRequest(http.MethodGet, "/dashboard/stats", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		var body map[string]int64
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body).To(HaveKeyWithValue("employees", int64(2)))
		Expect(body).To(HaveKeyWithValue("menus", int64(3)))
	})

	It("should map storage failures to 503", func() {
		repo.err = internal.NewStorageError("down", errors.New("boom"))
		h := dashboard.NewHandler(transport.NewBaseHandler(lg), svc)
		rec := httptest.NewRecorder()
		h.GetStats(rec, httptest.NewRequest(http.MethodGet, "/dashboard/stats", nil))

		Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
	})
})
