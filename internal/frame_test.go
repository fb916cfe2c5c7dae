package jnibind_test

import (
	"context"

	jnibind "github.com/jerbob92/jnibind/internal"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Local frames", func() {
	var w *world

	BeforeEach(func() {
		w = newWorld(nil)
	})

	It("releases the scoped references created inside the frame", func() {
		before := w.env.LocalRefs()

		frame, err := jnibind.PushFrame(w.ctx, 4)
		Expect(err).To(BeNil())
		for i := 0; i < 3; i++ {
			_, err := jnibind.NewString(w.ctx, "temporary")
			Expect(err).To(BeNil())
		}
		Expect(w.env.LocalRefs()).To(Equal(before + 3))

		frame.Pop()
		Expect(w.env.LocalRefs()).To(Equal(before))

		frame.Pop()
		Expect(w.env.LocalRefs()).To(Equal(before))
		Expect(w.vm.Stats().InvalidRefs).To(BeZero())
	})

	It("keeps the result of the frame alive", func() {
		frame, err := jnibind.PushFrame(w.ctx, 0)
		Expect(err).To(BeNil())

		str, err := jnibind.NewString(w.ctx, "survivor")
		Expect(err).To(BeNil())
		_, err = jnibind.NewString(w.ctx, "garbage")
		Expect(err).To(BeNil())

		result := frame.PopWith(str)
		Expect(result.IsNil()).To(BeFalse())
		Expect(result.Ref()).ToNot(Equal(str.Ref()))
		Expect(jnibind.GoString(w.ctx, result)).To(Equal("survivor"))

		Expect(frame.PopWith(str).IsNil()).To(BeTrue())
	})

	It("keeps promoted references across frames", func() {
		frame, err := jnibind.PushFrame(w.ctx, 0)
		Expect(err).To(BeNil())

		str, err := jnibind.NewString(w.ctx, "kept")
		Expect(err).To(BeNil())
		kept, err := jnibind.Promote(w.ctx, str)
		Expect(err).To(BeNil())
		frame.Pop()

		Expect(w.env.Deref(str.Ref())).To(BeNil())
		Expect(jnibind.GoString(w.ctx, kept)).To(Equal("kept"))
		Expect(kept.Release(w.ctx)).To(Succeed())
	})

	It("uses the configured capacity by default", func() {
		w = newWorld(jnibind.NewConfig().SetResolvePolicy(jnibind.ResolveInert).SetFrameCapacity(64))

		var capacity string
		w.vm.OnCall(func(name string, detail string) {
			if name == "PushLocalFrame" {
				capacity = detail
			}
		})

		frame, err := jnibind.PushFrame(w.ctx, 0)
		Expect(err).To(BeNil())
		frame.Pop()
		Expect(capacity).To(Equal("64"))
	})

	It("needs an attached thread", func() {
		frame, err := jnibind.PushFrame(context.Background(), 1)
		Expect(err).To(MatchError(jnibind.ErrNotAttached))
		Expect(frame).To(BeNil())

		frame.Pop()
	})
})
