package jnibind_test

import (
	"context"

	jnibind "github.com/jerbob92/jnibind/internal"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Object references", func() {
	var w *world

	BeforeEach(func() {
		w = newWorld(nil)
	})

	It("wraps scoped references without runtime calls", func() {
		inst, _ := w.instance("test/Widget", widgetClass)
		scoped := jnibind.Wrap(inst.Ref())
		Expect(scoped.Lifetime()).To(Equal(jnibind.Scoped))
		Expect(scoped.Ref()).To(Equal(inst.Ref()))

		Expect(scoped.Release(w.ctx)).To(Succeed())
		Expect(scoped.IsNil()).To(BeTrue())
		Expect(w.vm.Stats().Invocations).To(Equal(0))
	})

	It("treats a nil Object as a scoped null reference", func() {
		var obj *jnibind.Object
		Expect(obj.IsNil()).To(BeTrue())
		Expect(obj.Ref()).To(BeZero())
		Expect(obj.Lifetime()).To(Equal(jnibind.Scoped))
		Expect(obj.Release(w.ctx)).To(Succeed())
	})

	It("refuses to assign to a nil Object", func() {
		var obj *jnibind.Object
		inst, _ := w.instance("test/Widget", widgetClass)

		Expect(obj.Assign(w.ctx, inst)).To(MatchError(jnibind.ErrNullReceiver))
		Expect(obj.Assign(w.ctx, nil)).To(MatchError(jnibind.ErrNullReceiver))
		Expect(w.vm.LiveGlobalRefs()).To(BeZero())
	})

	It("views any referent as an object", func() {
		inst, _ := w.instance("test/Widget", widgetClass)
		Expect(jnibind.ObjectOf(inst.Object)).To(BeIdenticalTo(inst.Object))

		obj := jnibind.ObjectOf(inst)
		Expect(obj.Ref()).To(Equal(inst.Ref()))
		Expect(obj.Lifetime()).To(Equal(jnibind.Scoped))

		Expect(jnibind.ObjectOf(nil).IsNil()).To(BeTrue())
	})

	It("promotes a null reference to an empty promoted object", func() {
		obj, err := jnibind.Promote(w.ctx, nil)
		Expect(err).To(BeNil())
		Expect(obj.IsNil()).To(BeTrue())
		Expect(obj.Lifetime()).To(Equal(jnibind.Promoted))
		Expect(w.vm.Stats().Invocations).To(Equal(0))
	})

	It("does not double release", func() {
		inst, _ := w.instance("test/Widget", widgetClass)

		promoted, err := jnibind.Promote(w.ctx, inst)
		Expect(err).To(BeNil())
		Expect(promoted.IsNil()).To(BeFalse())
		Expect(w.vm.LiveGlobalRefs()).To(Equal(1))

		Expect(promoted.Release(w.ctx)).To(Succeed())
		Expect(promoted.Release(w.ctx)).To(Succeed())

		stats := w.vm.Stats()
		Expect(stats.GlobalRefsCreated).To(Equal(1))
		Expect(stats.GlobalRefsDeleted).To(Equal(1))
		Expect(stats.InvalidReleases).To(Equal(0))
		Expect(w.vm.LiveGlobalRefs()).To(Equal(0))
	})

	It("keeps a promoted reference when released unattached", func() {
		inst, _ := w.instance("test/Widget", widgetClass)
		promoted, err := jnibind.Promote(w.ctx, inst)
		Expect(err).To(BeNil())

		Expect(promoted.Release(context.Background())).To(MatchError(jnibind.ErrNotAttached))
		Expect(promoted.IsNil()).To(BeFalse())
		Expect(promoted.Release(w.ctx)).To(Succeed())
		Expect(w.vm.LiveGlobalRefs()).To(Equal(0))
	})

	It("reports a refused promotion as an empty object", func() {
		inst, _ := w.instance("test/Widget", widgetClass)
		w.vm.RefuseGlobalRefs(1)

		promoted, err := jnibind.Promote(w.ctx, inst)
		Expect(err).To(MatchError(jnibind.ErrPromotion))
		Expect(promoted.IsNil()).To(BeTrue())
	})

	It("can not promote without an attached thread", func() {
		inst, _ := w.instance("test/Widget", widgetClass)
		promoted, err := jnibind.Promote(context.Background(), inst)
		Expect(err).To(MatchError(jnibind.ErrNotAttached))
		Expect(promoted.IsNil()).To(BeTrue())
	})

	Context("assignment", func() {
		It("promotes a scoped reference assigned to a promoted object", func() {
			a, _ := w.instance("test/Widget", widgetClass)
			b, _ := w.instance("test/Widget", widgetClass)

			dst, err := jnibind.Promote(w.ctx, a)
			Expect(err).To(BeNil())

			Expect(dst.Assign(w.ctx, jnibind.Wrap(b.Ref()))).To(Succeed())
			Expect(dst.Lifetime()).To(Equal(jnibind.Promoted))
			Expect(dst.Ref()).ToNot(Equal(b.Ref()))
			Expect(dst.IsSameObject(w.ctx, b)).To(BeTrue())

			Expect(w.vm.LiveGlobalRefs()).To(Equal(1))
			Expect(w.vm.Stats().GlobalRefsDeleted).To(Equal(1))
		})

		It("keeps a scoped destination scoped", func() {
			a, _ := w.instance("test/Widget", widgetClass)
			promoted, err := jnibind.Promote(w.ctx, a)
			Expect(err).To(BeNil())

			scoped := jnibind.Wrap(0)
			Expect(scoped.Assign(w.ctx, promoted)).To(Succeed())
			Expect(scoped.Lifetime()).To(Equal(jnibind.Scoped))
			Expect(scoped.Ref()).To(Equal(promoted.Ref()))
			Expect(w.vm.Stats().GlobalRefsCreated).To(Equal(1))
		})

		It("survives self assignment", func() {
			a, _ := w.instance("test/Widget", widgetClass)
			dst, err := jnibind.Promote(w.ctx, a)
			Expect(err).To(BeNil())

			Expect(dst.Assign(w.ctx, dst)).To(Succeed())
			Expect(dst.IsSameObject(w.ctx, a)).To(BeTrue())
			Expect(w.vm.LiveGlobalRefs()).To(Equal(1))
			Expect(w.vm.Stats().InvalidReleases).To(Equal(0))
			Expect(w.vm.Stats().InvalidRefs).To(Equal(0))
		})

		It("releases the old reference when assigned null", func() {
			a, _ := w.instance("test/Widget", widgetClass)
			dst, err := jnibind.Promote(w.ctx, a)
			Expect(err).To(BeNil())

			Expect(dst.Assign(w.ctx, nil)).To(Succeed())
			Expect(dst.IsNil()).To(BeTrue())
			Expect(w.vm.LiveGlobalRefs()).To(Equal(0))
		})
	})

	Context("cloning", func() {
		It("preserves the lifetime class of the source", func() {
			a, _ := w.instance("test/Widget", widgetClass)

			scopedClone, err := a.Clone(w.ctx)
			Expect(err).To(BeNil())
			Expect(scopedClone.Lifetime()).To(Equal(jnibind.Scoped))
			Expect(scopedClone.Class()).To(BeIdenticalTo(widgetClass))

			promoted, err := jnibind.Promote(w.ctx, a)
			Expect(err).To(BeNil())
			promotedClone, err := promoted.Clone(w.ctx)
			Expect(err).To(BeNil())
			Expect(promotedClone.Lifetime()).To(Equal(jnibind.Promoted))
			Expect(promotedClone.Ref()).ToNot(Equal(promoted.Ref()))
			Expect(w.vm.LiveGlobalRefs()).To(Equal(2))
		})
	})

	Context("identity", func() {
		It("compares objects through the runtime", func() {
			a, _ := w.instance("test/Widget", widgetClass)
			b, _ := w.instance("test/Widget", widgetClass)

			Expect(a.IsSameObject(w.ctx, b)).To(BeFalse())
			Expect(a.IsSameObject(w.ctx, jnibind.Wrap(a.Ref()))).To(BeTrue())
			Expect(jnibind.Wrap(0).IsSameObject(w.ctx, nil)).To(BeTrue())
		})

		It("checks instances of a class", func() {
			inst, _ := w.instance("test/Derived", derivedClass)
			Expect(inst.IsInstanceOf(w.ctx, baseClass)).To(BeTrue())
			Expect(inst.IsInstanceOf(w.ctx, widgetClass)).To(BeFalse())
		})

		It("answers false without an attached thread", func() {
			a, _ := w.instance("test/Widget", widgetClass)
			same, err := a.IsSameObject(context.Background(), a)
			Expect(same).To(BeFalse())
			Expect(err).To(MatchError(jnibind.ErrNotAttached))
		})
	})
})
