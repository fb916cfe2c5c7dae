package jnibind_test

import (
	"context"

	jnibind "github.com/jerbob92/jnibind/internal"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Strings", func() {
	var w *world

	BeforeEach(func() {
		w = newWorld(nil)
	})

	It("round trips text outside the basic multilingual plane", func() {
		for _, text := range []string{"", "plain", "grüße", "日本語", "emoji 😀 and 𝄞"} {
			str, err := jnibind.NewString(w.ctx, text)
			Expect(err).To(BeNil())
			Expect(str.IsNil()).To(BeFalse())
			Expect(w.env.Deref(str.Ref()).StringValue()).To(Equal(text))
			Expect(jnibind.GoString(w.ctx, str)).To(Equal(text))
		}
	})

	It("counts UTF-16 code units", func() {
		str, err := jnibind.NewString(w.ctx, "a😀")
		Expect(err).To(BeNil())
		Expect(w.env.GetStringLength(str.Ref())).To(Equal(int32(3)))
	})

	It("reads strings created by the runtime", func() {
		ref := w.env.NewLocalRef(w.vm.NewStringObject("from the runtime ☕"))
		Expect(jnibind.GoString(w.ctx, jnibind.Wrap(ref))).To(Equal("from the runtime ☕"))
	})

	It("reads a null reference as the empty string", func() {
		Expect(jnibind.GoString(w.ctx, nil)).To(Equal(""))
		Expect(jnibind.GoString(w.ctx, jnibind.Wrap(0))).To(Equal(""))
	})

	It("needs an attached thread", func() {
		str, err := jnibind.NewString(context.Background(), "x")
		Expect(err).To(MatchError(jnibind.ErrNotAttached))
		Expect(str.IsNil()).To(BeTrue())

		_, err = jnibind.GoString(context.Background(), nil)
		Expect(err).To(MatchError(jnibind.ErrNotAttached))
	})
})
