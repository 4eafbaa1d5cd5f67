package permission_test

import (
	"github.com/frahmantamala/rbac-admin/internal"
	"github.com/frahmantamala/rbac-admin/internal/permission"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Editor", func() {
	var editor *permission.Editor

	invoices := permission.Key{MenuID: ordersMenu, ModuleID: invoicesModule}
	shipments := permission.Key{MenuID: ordersMenu, ModuleID: shipmentsModule}
	report := permission.Key{MenuID: reportsMenu, ModuleID: salesReport}

	BeforeEach(func() {
		// Group 7 is associated with Orders only
		editor = permission.NewEditor(7, []int64{ordersMenu}, testModules())
	})

	It("should emit one grant per key with at least one flag, sorted", func() {
		editor.Set(shipments, permission.ActionEdit, true)
		editor.Set(invoices, permission.ActionView, true)

		grants := editor.Grants()
		Expect(grants).To(HaveLen(2))
		Expect(grants[0].Key()).To(Equal(invoices))
		Expect(grants[1].Key()).To(Equal(shipments))
		Expect(grants[0].GroupID).To(Equal(int64(7)))
	})

	It("should drop keys where every flag is false", func() {
		editor.Load([]permission.Grant{grant(ordersMenu, invoicesModule, permission.Capabilities{CanView: true})})
		editor.Toggle(invoices, permission.ActionView)
		editor.SetCapabilities(shipments, permission.Capabilities{})

		Expect(editor.Grants()).To(BeEmpty())
	})

	It("should toggle flags independently", func() {
		editor.Toggle(invoices, permission.ActionAdd)
		editor.Toggle(invoices, permission.ActionDelete)
		editor.Toggle(invoices, permission.ActionAdd)

		Expect(editor.Get(invoices)).To(Equal(permission.Capabilities{CanDelete: true}))
	})

	It("should apply to all only within associated menus", func() {
		editor.ApplyToAll(permission.ActionView, true)

		keys := []permission.Key{}
		for _, g := range editor.Grants() {
			keys = append(keys, g.Key())
		}
		Expect(keys).To(Equal([]permission.Key{invoices, shipments}))
		Expect(editor.Get(report).Any()).To(BeFalse())
	})

	It("should revoke with apply to all and keep other flags", func() {
		editor.SetCapabilities(invoices, permission.Capabilities{CanView: true, CanEdit: true})
		editor.SetCapabilities(shipments, permission.Capabilities{CanView: true})

		editor.ApplyToAll(permission.ActionView, false)

		grants := editor.Grants()
		Expect(grants).To(HaveLen(1))
		Expect(grants[0].Capabilities).To(Equal(permission.Capabilities{CanEdit: true}))
	})

	It("should apply to one associated menu", func() {
		Expect(editor.ApplyToMenu(ordersMenu, permission.ActionAdd, true)).To(Succeed())

		Expect(editor.Get(invoices).CanAdd).To(BeTrue())
		Expect(editor.Get(shipments).CanAdd).To(BeTrue())
	})

	It("should refuse bulk edits on a menu outside the group", func() {
		err := editor.ApplyToMenu(reportsMenu, permission.ActionView, true)

		Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
		Expect(editor.Grants()).To(BeEmpty())
	})
})
