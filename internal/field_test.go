package jnibind_test

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	jnibind "github.com/jerbob92/jnibind/internal"
	"github.com/jerbob92/jnibind/jnitest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Fields", func() {
	var w *world

	BeforeEach(func() {
		w = newWorld(nil)
	})

	It("keeps field values per instance", func() {
		first, err := widgetNew.NewInstance(w.ctx)
		Expect(err).To(BeNil())

		Expect(widgetCount.Set(w.ctx, first, 100)).To(Succeed())
		Expect(widgetCount.Get(w.ctx, first)).To(Equal(int32(100)))

		second, err := widgetNew.NewInstance(w.ctx)
		Expect(err).To(BeNil())
		Expect(widgetCount.Get(w.ctx, second)).To(Equal(int32(0)))
		Expect(widgetCount.Get(w.ctx, first)).To(Equal(int32(100)))
	})

	It("reads and writes every primitive category", func() {
		inst, obj := w.instance("test/Widget", widgetClass)

		Expect(widgetFlag.Set(w.ctx, inst, true)).To(Succeed())
		Expect(widgetByte.Set(w.ctx, inst, -7)).To(Succeed())
		Expect(widgetChar.Set(w.ctx, inst, 'é')).To(Succeed())
		Expect(widgetShort.Set(w.ctx, inst, -1234)).To(Succeed())
		Expect(widgetCount.Set(w.ctx, inst, 1<<30)).To(Succeed())
		Expect(widgetFloat.Set(w.ctx, inst, 0.25)).To(Succeed())
		Expect(widgetLong.Set(w.ctx, inst, 1<<50)).To(Succeed())
		Expect(widgetDouble.Set(w.ctx, inst, -1e100)).To(Succeed())

		Expect(widgetFlag.Get(w.ctx, inst)).To(BeTrue())
		Expect(widgetByte.Get(w.ctx, inst)).To(Equal(int8(-7)))
		Expect(widgetChar.Get(w.ctx, inst)).To(Equal(uint16('é')))
		Expect(widgetShort.Get(w.ctx, inst)).To(Equal(int16(-1234)))
		Expect(widgetCount.Get(w.ctx, inst)).To(Equal(int32(1 << 30)))
		Expect(widgetFloat.Get(w.ctx, inst)).To(Equal(float32(0.25)))
		Expect(widgetLong.Get(w.ctx, inst)).To(Equal(int64(1 << 50)))
		Expect(widgetDouble.Get(w.ctx, inst)).To(Equal(-1e100))

		Expect(api.DecodeI32(obj.Get("count", "I"))).To(Equal(int32(1 << 30)))
		Expect(api.DecodeF64(obj.Get("d", "D"))).To(Equal(-1e100))
	})

	It("reads and writes reference fields", func() {
		inst, obj := w.instance("test/Widget", widgetClass)

		label, err := jnibind.NewString(w.ctx, "hello")
		Expect(err).To(BeNil())
		Expect(widgetLabel.Set(w.ctx, inst, label)).To(Succeed())
		Expect(obj.GetObject("label", "Ljava/lang/String;").StringValue()).To(Equal("hello"))

		read, err := widgetLabel.Get(w.ctx, inst)
		Expect(err).To(BeNil())
		Expect(read.Lifetime()).To(Equal(jnibind.Scoped))
		Expect(read.IsSameObject(w.ctx, label)).To(BeTrue())
		Expect(jnibind.GoString(w.ctx, read)).To(Equal("hello"))

		Expect(widgetLabel.Set(w.ctx, inst, nil)).To(Succeed())
		read, err = widgetLabel.Get(w.ctx, inst)
		Expect(err).To(BeNil())
		Expect(read.IsNil()).To(BeTrue())
	})

	It("returns zero values without an attached thread", func() {
		ctx := context.Background()
		inst, _ := w.instance("test/Widget", widgetClass)
		before := w.vm.Stats().Invocations

		flag, err := widgetFlag.Get(ctx, inst)
		Expect(flag).To(BeFalse())
		Expect(err).To(MatchError(jnibind.ErrNotAttached))

		b, err := widgetByte.Get(ctx, inst)
		Expect(b).To(BeZero())
		Expect(err).To(MatchError(jnibind.ErrNotAttached))

		c, err := widgetChar.Get(ctx, inst)
		Expect(c).To(BeZero())
		Expect(err).To(MatchError(jnibind.ErrNotAttached))

		s, err := widgetShort.Get(ctx, inst)
		Expect(s).To(BeZero())
		Expect(err).To(MatchError(jnibind.ErrNotAttached))

		i, err := widgetCount.Get(ctx, inst)
		Expect(i).To(BeZero())
		Expect(err).To(MatchError(jnibind.ErrNotAttached))

		f, err := widgetFloat.Get(ctx, inst)
		Expect(f).To(BeZero())
		Expect(err).To(MatchError(jnibind.ErrNotAttached))

		l, err := widgetLong.Get(ctx, inst)
		Expect(l).To(BeZero())
		Expect(err).To(MatchError(jnibind.ErrNotAttached))

		d, err := widgetDouble.Get(ctx, inst)
		Expect(d).To(BeZero())
		Expect(err).To(MatchError(jnibind.ErrNotAttached))

		o, err := widgetLabel.Get(ctx, inst)
		Expect(o).To(BeNil())
		Expect(err).To(MatchError(jnibind.ErrNotAttached))

		Expect(widgetCount.Set(ctx, inst, 1)).To(MatchError(jnibind.ErrNotAttached))
		Expect(widgetTotal.SetStatic(ctx, 1)).To(MatchError(jnibind.ErrNotAttached))

		Expect(w.vm.Stats().Invocations).To(Equal(before))
	})

	Context("statics", func() {
		It("shares static fields across instances", func() {
			Expect(widgetTotal.SetStatic(w.ctx, 9000)).To(Succeed())
			Expect(widgetTotal.GetStatic(w.ctx)).To(Equal(int64(9000)))

			a, _ := w.instance("test/Widget", widgetClass)
			b, _ := w.instance("test/Widget", widgetClass)
			Expect(widgetTotal.On(a).Get(w.ctx)).To(Equal(int64(9000)))
			Expect(widgetTotal.On(b).Set(w.ctx, 1)).To(Succeed())
			Expect(widgetTotal.GetStatic(w.ctx)).To(Equal(int64(1)))
		})

		It("stores a constructed instance in a static reference field", func() {
			obj, err := widgetNewWithCount.New(w.ctx, int32(5))
			Expect(err).To(BeNil())
			Expect(widgetInstance.SetStatic(w.ctx, obj)).To(Succeed())

			stored, err := widgetInstance.GetStatic(w.ctx)
			Expect(err).To(BeNil())
			Expect(stored.IsSameObject(w.ctx, obj)).To(BeTrue())
			Expect(widgetCount.Get(w.ctx, widgetClass.Wrap(stored))).To(Equal(int32(5)))
		})

		It("rejects access with the wrong modifier", func() {
			inst, _ := w.instance("test/Widget", widgetClass)

			_, err := widgetTotal.Get(w.ctx, inst)
			Expect(err).To(MatchError(jnibind.ErrStaticMismatch))
			Expect(widgetTotal.Set(w.ctx, inst, 1)).To(MatchError(jnibind.ErrStaticMismatch))

			_, err = widgetCount.GetStatic(w.ctx)
			Expect(err).To(MatchError(jnibind.ErrStaticMismatch))
			Expect(widgetCount.SetStatic(w.ctx, 1)).To(MatchError(jnibind.ErrStaticMismatch))
		})
	})

	Context("receivers", func() {
		It("rejects a null receiver without touching the runtime", func() {
			before := w.vm.Stats().Invocations

			value, err := widgetCount.Get(w.ctx, widgetClass.Wrap(jnibind.Wrap(0)))
			Expect(value).To(BeZero())
			Expect(err).To(MatchError(jnibind.ErrNullReceiver))

			Expect(widgetCount.Set(w.ctx, jnibind.Instance{}, 3)).To(MatchError(jnibind.ErrNullReceiver))
			Expect(w.vm.Stats().Invocations).To(Equal(before))
		})

		It("rejects an instance of an unrelated class", func() {
			inst, _ := w.instance("test/Base", baseClass)

			_, err := widgetCount.Get(w.ctx, inst)
			Expect(err).To(MatchError(jnibind.ErrIncompatibleReceiver))
			Expect(err.Error()).To(ContainSubstring("test/Base is not a test/Widget"))

			_, err = derivedY.Get(w.ctx, inst)
			Expect(err).To(MatchError(jnibind.ErrIncompatibleReceiver))
		})

		It("accepts an untyped view of an object", func() {
			_, obj := w.instance("test/Widget", widgetClass)
			untyped := jnibind.Instance{Object: jnibind.Wrap(w.env.NewLocalRef(obj))}

			Expect(widgetCount.Set(w.ctx, untyped, 12)).To(Succeed())
			Expect(count(obj)).To(Equal(int32(12)))
		})

		It("binds a field to a receiver", func() {
			inst, obj := w.instance("test/Widget", widgetClass)
			bound := widgetCount.On(inst)

			Expect(bound.Set(w.ctx, 77)).To(Succeed())
			Expect(bound.Get(w.ctx)).To(Equal(int32(77)))
			Expect(count(obj)).To(Equal(int32(77)))
		})
	})

	Context("inheritance", func() {
		It("reaches base fields through a derived instance", func() {
			inst, obj := w.instance("test/Derived", derivedClass)

			Expect(baseX.Set(w.ctx, inst, 1)).To(Succeed())
			Expect(derivedY.Set(w.ctx, inst, 2)).To(Succeed())

			Expect(baseX.Get(w.ctx, inst)).To(Equal(int32(1)))
			Expect(derivedY.Get(w.ctx, inst)).To(Equal(int32(2)))
			Expect(obj.Get("x", "I")).To(Equal(jnitest.Int(1)))
			Expect(obj.Get("y", "I")).To(Equal(jnitest.Int(2)))
		})

		It("lists own members before inherited ones", func() {
			members := derivedClass.Members()
			Expect(members).ToNot(BeEmpty())
			Expect(members[0].Name()).To(Equal("y"))

			names := func(members []jnibind.Member) []string {
				var names []string
				for _, m := range members {
					names = append(names, m.Name())
				}
				return names
			}
			Expect(names(members)).To(ContainElements("y", "x", "name"))
			Expect(names(baseClass.Members())).ToNot(ContainElement("y"))
		})

		It("treats a derived declaration as its base", func() {
			Expect(derivedClass.IsA(baseClass)).To(BeTrue())
			Expect(baseClass.IsA(derivedClass)).To(BeFalse())
			Expect(jnibind.StringClass.IsA(jnibind.ObjectClass)).To(BeTrue())
			Expect(jnibind.DeclareClass("test/Widget").IsA(widgetClass)).To(BeTrue())
		})
	})
})
