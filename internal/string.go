package jnibind

import (
	"context"
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

// Runtime strings are sequences of UTF-16 code units.
var utf16 = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

func encodeUTF16(value string) ([]uint16, error) {
	encoded, err := utf16.NewEncoder().Bytes([]byte(value))
	if err != nil {
		return nil, err
	}

	chars := make([]uint16, len(encoded)/2)
	for i := range chars {
		chars[i] = binary.LittleEndian.Uint16(encoded[i*2:])
	}
	return chars, nil
}

func decodeUTF16(chars []uint16) (string, error) {
	encoded := make([]byte, len(chars)*2)
	for i := range chars {
		binary.LittleEndian.PutUint16(encoded[i*2:], chars[i])
	}

	decoded, err := utf16.NewDecoder().Bytes(encoded)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// NewString creates a runtime string holding value and returns a scoped
// reference to it.
func NewString(ctx context.Context, value string) (*Object, error) {
	t := currentThread(ctx)
	if t == nil {
		return Wrap(0), ErrNotAttached
	}

	chars, err := encodeUTF16(value)
	if err != nil {
		return Wrap(0), fmt.Errorf("could not encode string: %w", err)
	}

	ref := t.env.NewString(chars)
	if ref == 0 {
		return Wrap(0), fmt.Errorf("could not create string of length %d: %w", len(chars), ErrAllocation)
	}
	return Wrap(ref), nil
}

// GoString copies a runtime string into a Go string. A null reference yields
// an empty string.
func GoString(ctx context.Context, str Referent) (string, error) {
	t := currentThread(ctx)
	if t == nil {
		return "", ErrNotAttached
	}

	ref := refOf(str)
	if ref == 0 {
		return "", nil
	}

	length := t.env.GetStringLength(ref)
	if length <= 0 {
		return "", nil
	}

	chars := make([]uint16, length)
	t.env.GetStringRegion(ref, 0, chars)

	value, err := decodeUTF16(chars)
	if err != nil {
		return "", fmt.Errorf("could not decode string: %w", err)
	}
	return value, nil
}
