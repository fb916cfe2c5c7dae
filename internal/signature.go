package jnibind

import (
	"strings"
)

// MethodSignature builds the protocol signature "(params)ret" of a method.
func MethodSignature(ret Type, params ...Type) string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i := range params {
		sb.WriteString(params[i].Signature())
	}
	sb.WriteByte(')')
	sb.WriteString(ret.Signature())
	return sb.String()
}

// KindOfSignature returns the value category denoted by the first element of
// a field signature or method return signature.
func KindOfSignature(sig string) Kind {
	if sig == "" {
		return KindVoid
	}

	switch sig[0] {
	case 'Z':
		return KindBoolean
	case 'B':
		return KindByte
	case 'C':
		return KindChar
	case 'S':
		return KindShort
	case 'I':
		return KindInt
	case 'F':
		return KindFloat
	case 'J':
		return KindLong
	case 'D':
		return KindDouble
	case 'L', '[':
		return KindObject
	}
	return KindVoid
}

// ReturnSignature returns the part of a method signature after the parameter
// list.
func ReturnSignature(methodSig string) string {
	i := strings.LastIndexByte(methodSig, ')')
	if i < 0 {
		return ""
	}
	return methodSig[i+1:]
}

// ParamSignatures splits the parameter list of a method signature into the
// signatures of its parameters.
func ParamSignatures(methodSig string) []string {
	start := strings.IndexByte(methodSig, '(')
	end := strings.LastIndexByte(methodSig, ')')
	if start < 0 || end < start {
		return nil
	}

	var params []string
	list := methodSig[start+1 : end]
	for len(list) > 0 {
		n := strings.IndexFunc(list, func(r rune) bool { return r != '[' })
		if n < 0 {
			break
		}
		if list[n] == 'L' {
			semi := strings.IndexByte(list[n:], ';')
			if semi < 0 {
				break
			}
			n += semi
		}
		params = append(params, list[:n+1])
		list = list[n+1:]
	}
	return params
}
