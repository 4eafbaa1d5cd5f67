package permission_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/frahmantamala/rbac-admin/internal"
	"github.com/frahmantamala/rbac-admin/internal/auth"
	"github.com/frahmantamala/rbac-admin/internal/catalog"
	"github.com/frahmantamala/rbac-admin/internal/core/events"
	"github.com/frahmantamala/rbac-admin/internal/permission"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// MockRepository keeps grants and menu associations per group in memory
type MockRepository struct {
	grants     map[int64][]permission.Grant
	groupMenus map[int64][]int64
	replaceErr error
	replaced   int
	// deadlines records whether each store call ran under a deadline
	deadlines []bool
}

func (m *MockRepository) track(ctx context.Context) {
	_, ok := ctx.Deadline()
	m.deadlines = append(m.deadlines, ok)
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		grants:     map[int64][]permission.Grant{7: nil},
		groupMenus: map[int64][]int64{7: {ordersMenu}},
	}
}

func (m *MockRepository) ListGrants(ctx context.Context, groupID int64) ([]permission.Grant, error) {
	m.track(ctx)
	grants, ok := m.grants[groupID]
	if !ok {
		return nil, internal.ErrGroupNotFound
	}
	out := append([]permission.Grant(nil), grants...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].MenuID != out[j].MenuID {
			return out[i].MenuID < out[j].MenuID
		}
		return out[i].ModuleID < out[j].ModuleID
	})
	return out, nil
}

func (m *MockRepository) ReplaceGrants(ctx context.Context, groupID int64, grants []permission.Grant) error {
	m.track(ctx)
	if m.replaceErr != nil {
		return m.replaceErr
	}
	if _, ok := m.grants[groupID]; !ok {
		return internal.ErrGroupNotFound
	}
	m.replaced++
	m.grants[groupID] = permission.NonTrivial(grants)
	return nil
}

func (m *MockRepository) ListMenuIDsForGroup(ctx context.Context, groupID int64) ([]int64, error) {
	m.track(ctx)
	ids, ok := m.groupMenus[groupID]
	if !ok {
		return nil, internal.ErrGroupNotFound
	}
	return ids, nil
}

type MockCatalog struct{}

func (MockCatalog) ListMenus(ctx context.Context) ([]catalog.Menu, error) { return testMenus(), nil }

func (MockCatalog) ListModules(ctx context.Context) ([]catalog.Module, error) {
	return append(testModules(), catalog.Module{ID: 30, MenuID: 4, MenuName: "Administration", Name: "Groups"}), nil
}

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.events = append(p.events, e)
	return nil
}

type recordingMetrics struct {
	decisions    map[string]int
	replacements []error
}

func (r *recordingMetrics) RecordAuthorization(action string, allowed bool) {
	if allowed {
		r.decisions[action+":allowed"]++
		return
	}
	r.decisions[action+":denied"]++
}

func (r *recordingMetrics) RecordGrantReplacement(err error) {
	r.replacements = append(r.replacements, err)
}

func groupPrincipal(groupID int64) *auth.Principal {
	return &auth.Principal{EmployeeID: 3, Email: "sales@example.com", GroupID: &groupID}
}

var _ = Describe("Service", func() {
	var (
		ctx       context.Context
		repo      *MockRepository
		publisher *recordingPublisher
		metrics   *recordingMetrics
		service   *permission.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = NewMockRepository()
		publisher = &recordingPublisher{}
		metrics = &recordingMetrics{decisions: map[string]int{}}
		service = permission.NewService(repo, MockCatalog{}, publisher, metrics, time.Second,
			slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	Describe("SavePermissions", func() {
		It("should drop all-false rows before persisting", func() {
			grants, err := service.SavePermissions(ctx, 7, permission.SavePermissionsDTO{
				Permissions: []permission.GrantInput{{MenuID: ordersMenu, ModuleID: invoicesModule}},
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(grants).To(BeEmpty())
			Expect(repo.grants[7]).To(BeEmpty())
		})

		It("should replace rather than merge across saves", func() {
			_, err := service.SavePermissions(ctx, 7, permission.SavePermissionsDTO{
				Permissions: []permission.GrantInput{
					{MenuID: ordersMenu, ModuleID: invoicesModule, Capabilities: permission.Capabilities{CanView: true}},
				},
			})
			Expect(err).NotTo(HaveOccurred())

			grants, err := service.SavePermissions(ctx, 7, permission.SavePermissionsDTO{
				Permissions: []permission.GrantInput{
					{MenuID: ordersMenu, ModuleID: shipmentsModule, Capabilities: permission.Capabilities{CanAdd: true}},
				},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(grants).To(HaveLen(1))
			Expect(grants[0].ModuleID).To(Equal(shipmentsModule))
			Expect(grants[0].Capabilities).To(Equal(permission.Capabilities{CanAdd: true}))
		})

		It("should apply bulk edits scoped to the group's menus", func() {
			grants, err := service.SavePermissions(ctx, 7, permission.SavePermissionsDTO{
				Bulk: []permission.BulkOperation{{Action: "view", Value: true}},
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(grants).To(HaveLen(2))
			for _, g := range grants {
				Expect(g.MenuID).To(Equal(ordersMenu))
				Expect(g.CanView).To(BeTrue())
			}
		})

		It("should reject bulk edits on menus the group is not associated with", func() {
			reports := reportsMenu
			_, err := service.SavePermissions(ctx, 7, permission.SavePermissionsDTO{
				Bulk: []permission.BulkOperation{{Action: "view", Value: true, MenuID: &reports}},
			})

			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
			Expect(repo.replaced).To(Equal(0))
		})

		It("should reject duplicate keys as a conflict before writing", func() {
			_, err := service.SavePermissions(ctx, 7, permission.SavePermissionsDTO{
				Permissions: []permission.GrantInput{
					{MenuID: ordersMenu, ModuleID: invoicesModule, Capabilities: permission.Capabilities{CanView: true}},
					{MenuID: ordersMenu, ModuleID: invoicesModule, Capabilities: permission.Capabilities{CanEdit: true}},
				},
			})

			Expect(errors.Is(err, internal.ErrDuplicateGrant)).To(BeTrue())
			Expect(repo.replaced).To(Equal(0))
		})

		It("should reject unknown modules and modules of another menu", func() {
			_, err := service.SavePermissions(ctx, 7, permission.SavePermissionsDTO{
				Permissions: []permission.GrantInput{{MenuID: ordersMenu, ModuleID: 999, Capabilities: permission.Capabilities{CanView: true}}},
			})
			Expect(errors.Is(err, internal.ErrModuleNotFound)).To(BeTrue())

			_, err = service.SavePermissions(ctx, 7, permission.SavePermissionsDTO{
				Permissions: []permission.GrantInput{{MenuID: reportsMenu, ModuleID: invoicesModule, Capabilities: permission.Capabilities{CanView: true}}},
			})
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
			Expect(repo.replaced).To(Equal(0))
		})

		It("should fail with not found for an unknown group", func() {
			_, err := service.SavePermissions(ctx, 99, permission.SavePermissionsDTO{})
			Expect(errors.Is(err, internal.ErrGroupNotFound)).To(BeTrue())
		})

		It("should record metrics and publish an event", func() {
			_, err := service.SavePermissions(ctx, 7, permission.SavePermissionsDTO{
				Permissions: []permission.GrantInput{
					{MenuID: ordersMenu, ModuleID: invoicesModule, Capabilities: permission.Capabilities{CanView: true}},
				},
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(metrics.replacements).To(Equal([]error{nil}))
			Expect(publisher.events).To(HaveLen(1))
			Expect(publisher.events[0].EventType()).To(Equal(events.EventTypeGroupPermissionsReplaced))
		})

		It("should surface storage failures", func() {
			repo.replaceErr = internal.NewStorageError("tx failed", errors.New("conn reset"))

			_, err := service.SavePermissions(ctx, 7, permission.SavePermissionsDTO{
				Permissions: []permission.GrantInput{
					{MenuID: ordersMenu, ModuleID: invoicesModule, Capabilities: permission.Capabilities{CanView: true}},
				},
			})

			Expect(internal.IsType(err, internal.ErrorTypeStorage)).To(BeTrue())
			Expect(metrics.replacements).To(HaveLen(1))
			Expect(publisher.events).To(BeEmpty())
		})
	})

	Describe("Authorize", func() {
		BeforeEach(func() {
			repo.grants[7] = []permission.Grant{grant(ordersMenu, invoicesModule, permission.Capabilities{CanView: true})}
		})

		It("should follow the stored grants", func() {
			allowed, err := service.Authorize(ctx, groupPrincipal(7), ordersMenu, invoicesModule, permission.ActionView)
			Expect(err).NotTo(HaveOccurred())
			Expect(allowed).To(BeTrue())

			allowed, err = service.Authorize(ctx, groupPrincipal(7), ordersMenu, invoicesModule, permission.ActionAdd)
			Expect(err).NotTo(HaveOccurred())
			Expect(allowed).To(BeFalse())

			Expect(metrics.decisions).To(Equal(map[string]int{"view:allowed": 1, "add:denied": 1}))
		})

		It("should deny employees without a group", func() {
			allowed, err := service.Authorize(ctx, &auth.Principal{EmployeeID: 9}, ordersMenu, invoicesModule, permission.ActionView)
			Expect(err).NotTo(HaveOccurred())
			Expect(allowed).To(BeFalse())
		})

		It("should allow a superuser without grants", func() {
			allowed, err := service.Authorize(ctx, &auth.Principal{EmployeeID: 1, IsSuperuser: true}, reportsMenu, salesReport, permission.ActionDelete)
			Expect(err).NotTo(HaveOccurred())
			Expect(allowed).To(BeTrue())
		})

		It("should ignore a stored grant whose module belongs to another menu", func() {
			repo.grants[7] = []permission.Grant{grant(reportsMenu, invoicesModule, permission.Capabilities{CanView: true, CanDelete: true})}

			allowed, err := service.Authorize(ctx, groupPrincipal(7), reportsMenu, invoicesModule, permission.ActionDelete)
			Expect(err).NotTo(HaveOccurred())
			Expect(allowed).To(BeFalse())
		})

		It("should resolve guarded modules by name", func() {
			allowed, err := service.AuthorizeByName(ctx, groupPrincipal(7), "Orders", "Invoices", permission.ActionView)
			Expect(err).NotTo(HaveOccurred())
			Expect(allowed).To(BeTrue())

			allowed, err = service.AuthorizeByName(ctx, groupPrincipal(7), "Orders", "Nope", permission.ActionView)
			Expect(err).NotTo(HaveOccurred())
			Expect(allowed).To(BeFalse())
		})
	})

	Describe("query timeout", func() {
		It("should run every store call under a deadline", func() {
			_, err := service.SavePermissions(ctx, 7, permission.SavePermissionsDTO{
				Permissions: []permission.GrantInput{
					{MenuID: ordersMenu, ModuleID: invoicesModule, Capabilities: permission.Capabilities{CanView: true}},
				},
			})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Navigation(ctx, groupPrincipal(7))
			Expect(err).NotTo(HaveOccurred())
			_, err = service.OpenModule(ctx, groupPrincipal(7), invoicesModule)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Authorize(ctx, groupPrincipal(7), ordersMenu, invoicesModule, permission.ActionView)
			Expect(err).NotTo(HaveOccurred())

			Expect(repo.deadlines).NotTo(BeEmpty())
			Expect(repo.deadlines).NotTo(ContainElement(false))
		})
	})

	Describe("Navigation", func() {
		It("should resolve only viewable menus for a group", func() {
			repo.grants[7] = []permission.Grant{grant(reportsMenu, salesReport, permission.Capabilities{CanView: true})}

			access, err := service.Navigation(ctx, groupPrincipal(7))
			Expect(err).NotTo(HaveOccurred())

			nav := access.Navigation()
			Expect(nav).To(HaveLen(1))
			Expect(nav[0].ID).To(Equal(reportsMenu))
		})

		It("should tolerate a dangling group reference", func() {
			access, err := service.Navigation(ctx, groupPrincipal(42))
			Expect(err).NotTo(HaveOccurred())
			Expect(access.Menus()).To(BeEmpty())
		})
	})

	Describe("OpenModule", func() {
		It("should deny modules without view", func() {
			repo.grants[7] = []permission.Grant{grant(ordersMenu, invoicesModule, permission.Capabilities{CanEdit: true})}

			_, err := service.OpenModule(ctx, groupPrincipal(7), invoicesModule)
			Expect(errors.Is(err, internal.ErrAccessDenied)).To(BeTrue())
		})

		It("should return the capabilities for a viewable module", func() {
			repo.grants[7] = []permission.Grant{grant(ordersMenu, invoicesModule, permission.Capabilities{CanView: true, CanAdd: true})}

			resp, err := service.OpenModule(ctx, groupPrincipal(7), invoicesModule)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Module.Name).To(Equal("Invoices"))
			Expect(resp.Capabilities).To(Equal(permission.Capabilities{CanView: true, CanAdd: true}))
		})

		It("should read the group's grants once", func() {
			repo.grants[7] = []permission.Grant{grant(ordersMenu, invoicesModule, permission.Capabilities{CanView: true})}

			_, err := service.OpenModule(ctx, groupPrincipal(7), invoicesModule)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.deadlines).To(HaveLen(1))
			Expect(metrics.decisions).To(Equal(map[string]int{"view:allowed": 1}))
		})

		It("should fail for unknown modules", func() {
			_, err := service.OpenModule(ctx, groupPrincipal(7), 404)
			Expect(errors.Is(err, internal.ErrModuleNotFound)).To(BeTrue())
		})
	})
})
