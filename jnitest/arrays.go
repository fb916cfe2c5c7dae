package jnitest

import (
	"fmt"

	"github.com/jerbob92/jnibind"
)

func newPrimitives(kind jnibind.Kind, length int) any {
	switch kind {
	case jnibind.KindBoolean:
		return make([]bool, length)
	case jnibind.KindByte:
		return make([]int8, length)
	case jnibind.KindChar:
		return make([]uint16, length)
	case jnibind.KindShort:
		return make([]int16, length)
	case jnibind.KindInt:
		return make([]int32, length)
	case jnibind.KindFloat:
		return make([]float32, length)
	case jnibind.KindLong:
		return make([]int64, length)
	case jnibind.KindDouble:
		return make([]float64, length)
	}
	return nil
}

func primitiveCode(kind jnibind.Kind) string {
	switch kind {
	case jnibind.KindBoolean:
		return "Z"
	case jnibind.KindByte:
		return "B"
	case jnibind.KindChar:
		return "C"
	case jnibind.KindShort:
		return "S"
	case jnibind.KindInt:
		return "I"
	case jnibind.KindFloat:
		return "F"
	case jnibind.KindLong:
		return "J"
	case jnibind.KindDouble:
		return "D"
	}
	return ""
}

func primitivesLen(prims any) int {
	switch p := prims.(type) {
	case []bool:
		return len(p)
	case []int8:
		return len(p)
	case []uint16:
		return len(p)
	case []int16:
		return len(p)
	case []int32:
		return len(p)
	case []float32:
		return len(p)
	case []int64:
		return len(p)
	case []float64:
		return len(p)
	}
	return 0
}

func clonePrimitives(prims any) any {
	switch p := prims.(type) {
	case []bool:
		return append([]bool{}, p...)
	case []int8:
		return append([]int8{}, p...)
	case []uint16:
		return append([]uint16{}, p...)
	case []int16:
		return append([]int16{}, p...)
	case []int32:
		return append([]int32{}, p...)
	case []float32:
		return append([]float32{}, p...)
	case []int64:
		return append([]int64{}, p...)
	case []float64:
		return append([]float64{}, p...)
	}
	return nil
}

// copyRegion copies between the array storage and buf. toBuf selects the
// direction. Both must be slices of the same element type.
func copyRegion(prims any, start int, buf any, toBuf bool) error {
	switch p := prims.(type) {
	case []bool:
		return copyTyped(p, start, buf, toBuf)
	case []int8:
		return copyTyped(p, start, buf, toBuf)
	case []uint16:
		return copyTyped(p, start, buf, toBuf)
	case []int16:
		return copyTyped(p, start, buf, toBuf)
	case []int32:
		return copyTyped(p, start, buf, toBuf)
	case []float32:
		return copyTyped(p, start, buf, toBuf)
	case []int64:
		return copyTyped(p, start, buf, toBuf)
	case []float64:
		return copyTyped(p, start, buf, toBuf)
	}
	return fmt.Errorf("not a primitive array")
}

func copyTyped[T any](storage []T, start int, buf any, toBuf bool) error {
	b, ok := buf.([]T)
	if !ok {
		return fmt.Errorf("buffer of type %T does not match array of type %T", buf, storage)
	}
	if start < 0 || start+len(b) > len(storage) {
		return fmt.Errorf("region %d+%d out of bounds for length %d", start, len(b), len(storage))
	}
	if toBuf {
		copy(b, storage[start:])
	} else {
		copy(storage[start:], b)
	}
	return nil
}
