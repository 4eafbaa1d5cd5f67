package catalog_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/frahmantamala/rbac-admin/internal"
	"github.com/frahmantamala/rbac-admin/internal/catalog"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestCatalogService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Catalog Service Suite")
}

// MockRepository implements catalog.RepositoryAPI for testing
type MockRepository struct {
	menus       []catalog.Menu
	modules     []catalog.Module
	shouldFail  bool
	failError   error
	menuCalls   int
	moduleCalls int
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		menus: []catalog.Menu{{ID: 1, Name: "Orders"}, {ID: 2, Name: "Reports"}},
		modules: []catalog.Module{
			{ID: 10, MenuID: 1, MenuName: "Orders", Name: "Invoices"},
			{ID: 11, MenuID: 1, MenuName: "Orders", Name: "Shipments"},
			{ID: 20, MenuID: 2, MenuName: "Reports", Name: "Sales Report"},
		},
	}
}

func (m *MockRepository) ListMenus(ctx context.Context) ([]catalog.Menu, error) {
	m.menuCalls++
	if m.shouldFail {
		return nil, m.failError
	}
	return m.menus, nil
}

func (m *MockRepository) ListModules(ctx context.Context) ([]catalog.Module, error) {
	m.moduleCalls++
	if m.shouldFail {
		return nil, m.failError
	}
	return m.modules, nil
}

type countingMetrics struct {
	hits, misses map[string]int
}

func (c *countingMetrics) CacheHit(cache string)  { c.hits[cache]++ }
func (c *countingMetrics) CacheMiss(cache string) { c.misses[cache]++ }

var _ = Describe("Catalog Service", func() {
	var (
		mockRepo *MockRepository
		service  *catalog.Service
		ctx      context.Context
	)

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = catalog.NewService(mockRepo, logger)
		ctx = context.Background()
	})

	It("should list modules of one menu", func() {
		modules, err := service.ListModulesForMenu(ctx, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(modules).To(HaveLen(2))
		Expect(modules[0].Name).To(Equal("Invoices"))
	})

	It("should fail with not found for an unknown menu", func() {
		_, err := service.ListModulesForMenu(ctx, 9)
		Expect(errors.Is(err, internal.ErrMenuNotFound)).To(BeTrue())
	})

	It("should find modules by menu and module name", func() {
		module, err := service.FindModule(ctx, "Reports", "Sales Report")
		Expect(err).NotTo(HaveOccurred())
		Expect(module.ID).To(Equal(int64(20)))

		_, err = service.FindModule(ctx, "Orders", "Sales Report")
		Expect(errors.Is(err, internal.ErrModuleNotFound)).To(BeTrue())
	})

	It("should get a module by id", func() {
		module, err := service.GetModule(ctx, 11)
		Expect(err).NotTo(HaveOccurred())
		Expect(module.MenuID).To(Equal(int64(1)))

		_, err = service.GetModule(ctx, 12)
		Expect(errors.Is(err, internal.ErrModuleNotFound)).To(BeTrue())
	})

	It("should propagate repository errors", func() {
		mockRepo.shouldFail = true
		mockRepo.failError = internal.NewStorageError("db down", errors.New("timeout"))

		_, err := service.ListMenus(ctx)
		Expect(internal.IsType(err, internal.ErrorTypeStorage)).To(BeTrue())
	})
})

var _ = Describe("CachedRepository", func() {
	var (
		mockRepo *MockRepository
		metrics  *countingMetrics
		cached   *catalog.CachedRepository
		ctx      context.Context
	)

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		metrics = &countingMetrics{hits: map[string]int{}, misses: map[string]int{}}
		cached = catalog.NewCachedRepository(mockRepo, 8, time.Minute, metrics)
		ctx = context.Background()
	})

	It("should read through once and then serve from cache", func() {
		for i := 0; i < 3; i++ {
			menus, err := cached.ListMenus(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(menus).To(HaveLen(2))
		}

		Expect(mockRepo.menuCalls).To(Equal(1))
		Expect(metrics.misses["catalog_menus"]).To(Equal(1))
		Expect(metrics.hits["catalog_menus"]).To(Equal(2))
	})

	It("should not cache failures", func() {
		mockRepo.shouldFail = true
		mockRepo.failError = errors.New("boom")
		_, err := cached.ListModules(ctx)
		Expect(err).To(HaveOccurred())

		mockRepo.shouldFail = false
		modules, err := cached.ListModules(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(modules).To(HaveLen(3))
		Expect(mockRepo.moduleCalls).To(Equal(2))
	})

	It("should reload after purge", func() {
		_, _ = cached.ListModules(ctx)
		cached.Purge()
		_, _ = cached.ListModules(ctx)

		Expect(mockRepo.moduleCalls).To(Equal(2))
	})

	It("should expire entries after the ttl", func() {
		short := catalog.NewCachedRepository(mockRepo, 8, 20*time.Millisecond, nil)
		_, _ = short.ListMenus(ctx)

		Eventually(func() int {
			_, _ = short.ListMenus(ctx)
			return mockRepo.menuCalls
		}, time.Second, 10*time.Millisecond).Should(BeNumerically(">=", 2))
	})
})
