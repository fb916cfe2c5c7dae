package jnibind_test

import (
	jnibind "github.com/jerbob92/jnibind/internal"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Signatures", func() {
	It("uses the fixed code of every primitive kind", func() {
		codes := map[jnibind.Type]string{
			jnibind.Boolean:  "Z",
			jnibind.Byte:     "B",
			jnibind.Char:     "C",
			jnibind.Short:    "S",
			jnibind.Int:      "I",
			jnibind.Float:    "F",
			jnibind.Long:     "J",
			jnibind.Double:   "D",
			jnibind.VoidType: "V",
		}

		for typ, code := range codes {
			Expect(typ.Signature()).To(Equal(code))
			if typ != jnibind.VoidType {
				Expect(jnibind.ArrayOf(typ).Signature()).To(Equal("[" + code))
				Expect(jnibind.KindOfSignature(code)).To(Equal(typ.Kind()))
			}
		}
	})

	It("derives class signatures from the path", func() {
		Expect(widgetClass.Signature()).To(Equal("Ltest/Widget;"))
		Expect(jnibind.StringClass.Signature()).To(Equal("Ljava/lang/String;"))
		Expect(jnibind.DeclareClass("a/b/C$Inner").Signature()).To(Equal("La/b/C$Inner;"))
	})

	It("prepends one marker per array dimension", func() {
		Expect(jnibind.ArrayOf(jnibind.ArrayOf(jnibind.Int)).Signature()).To(Equal("[[I"))
		Expect(jnibind.ArrayOf(widgetClass).Signature()).To(Equal("[Ltest/Widget;"))
	})

	It("names array classes after their signature", func() {
		array := jnibind.ArrayOf(jnibind.StringClass)
		Expect(array.Name()).To(Equal(array.Signature()))
		Expect(array.IsArray()).To(BeTrue())
		Expect(array.Element()).To(Equal(jnibind.StringClass))
	})

	It("shares array declarations", func() {
		Expect(jnibind.ArrayOf(jnibind.Long)).To(BeIdenticalTo(jnibind.ArrayOf(jnibind.Long)))
	})

	It("builds method signatures", func() {
		Expect(jnibind.MethodSignature(jnibind.VoidType)).To(Equal("()V"))
		Expect(jnibind.MethodSignature(jnibind.StringClass, jnibind.Int, jnibind.ArrayOf(jnibind.Byte), widgetClass)).
			To(Equal("(I[BLtest/Widget;)Ljava/lang/String;"))
		Expect(widgetAdd.Signature()).To(Equal("(I)I"))
		Expect(widgetNewWithCount.Signature()).To(Equal("(I)V"))
		Expect(widgetLabel.Signature()).To(Equal("Ljava/lang/String;"))
		Expect(jnibind.ReturnSignature("(I[B)[Ljava/lang/String;")).To(Equal("[Ljava/lang/String;"))
	})

	It("splits parameter lists", func() {
		Expect(jnibind.ParamSignatures("(I[BLjava/lang/String;[[J)V")).To(Equal([]string{"I", "[B", "Ljava/lang/String;", "[[J"}))
		Expect(jnibind.ParamSignatures(widgetSetLabel.Signature())).To(Equal([]string{"Ljava/lang/String;"}))
		Expect(jnibind.ParamSignatures("()V")).To(BeEmpty())
		Expect(jnibind.ParamSignatures("I")).To(BeNil())
	})

	It("panics on arrays of void", func() {
		Expect(func() { jnibind.ArrayOf(jnibind.VoidType) }).To(Panic())
	})

	Context("wire slots", func() {
		It("round trips primitive values", func() {
			values := map[jnibind.Type]any{
				jnibind.Boolean: true,
				jnibind.Byte:    int8(-12),
				jnibind.Char:    uint16(0xffee),
				jnibind.Short:   int16(-30000),
				jnibind.Int:     int32(-123456),
				jnibind.Float:   float32(1.5),
				jnibind.Long:    int64(-1 << 40),
				jnibind.Double:  float64(-2.25),
			}

			for typ, value := range values {
				wire, err := typ.ToWireType(value)
				Expect(err).To(BeNil())
				Expect(typ.FromWireType(wire)).To(Equal(value))
			}
		})

		It("rejects values of another Go type", func() {
			_, err := jnibind.Int.ToWireType(int64(1))
			Expect(err).To(MatchError(jnibind.ErrArgument))
			Expect(err.Error()).To(ContainSubstring("value must be of type int32, is int64"))

			_, err = widgetClass.ToWireType("not a reference")
			Expect(err).To(MatchError(jnibind.ErrArgument))
		})

		It("maps every primitive Go type to its declared type", func() {
			Expect(jnibind.PrimitiveTypeOf[bool]()).To(Equal(jnibind.Boolean))
			Expect(jnibind.PrimitiveTypeOf[uint16]()).To(Equal(jnibind.Char))
			Expect(jnibind.PrimitiveTypeOf[float64]()).To(Equal(jnibind.Double))
		})
	})
})
