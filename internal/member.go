package jnibind

import (
	"context"
	"fmt"
	"strings"
)

type MemberKind uint8

const (
	MemberField MemberKind = iota
	MemberMethod
)

func (k MemberKind) String() string {
	if k == MemberMethod {
		return "method"
	}
	return "field"
}

// Modifier selects between instance and static members.
type Modifier bool

const (
	NonStatic Modifier = false
	Static    Modifier = true
)

// Member is a field, method or constructor declaration.
type Member interface {
	Name() string
	Signature() string
	MemberKind() MemberKind
	IsStatic() bool
	Owner() *Class
}

type member struct {
	id     uint64
	owner  *Class
	name   string
	sig    string
	kind   MemberKind
	static bool

	// constructor members are instance methods that are invoked without a
	// receiver.
	constructor bool

	// typ is the field type, or the return type of a method.
	typ    Type
	params []Type
}

func newMember(owner *Class, name string, kind MemberKind, modifier Modifier, typ Type, params []Type) member {
	if owner == nil {
		panic(fmt.Errorf("member %s must have an owning class", name))
	}
	if name == "" {
		panic(fmt.Errorf("member of %s must have a name", owner.path))
	}
	if typ == nil {
		panic(fmt.Errorf("member %s.%s must have a type", owner.path, name))
	}
	if kind == MemberField && typ.Kind() == KindVoid {
		panic(fmt.Errorf("field %s.%s can not be void", owner.path, name))
	}
	for i := range params {
		if params[i] == nil || params[i].Kind() == KindVoid {
			panic(fmt.Errorf("parameter %d of %s.%s must be a value type", i, owner.path, name))
		}
	}

	m := member{
		id:     nextDeclarationID(),
		owner:  owner,
		name:   name,
		kind:   kind,
		static: bool(modifier),
		typ:    typ,
		params: params,
	}

	if kind == MemberField {
		m.sig = typ.Signature()
	} else {
		m.sig = MethodSignature(typ, params...)
	}
	return m
}

func (m *member) Name() string {
	return m.name
}

func (m *member) Signature() string {
	return m.sig
}

func (m *member) MemberKind() MemberKind {
	return m.kind
}

func (m *member) IsStatic() bool {
	return m.static
}

func (m *member) Owner() *Class {
	return m.owner
}

// Type is the field type, or the return type of a method.
func (m *member) Type() Type {
	return m.typ
}

func (m *member) Params() []Type {
	return m.params
}

// ID returns the resolved identifier, resolving the member on first use.
func (m *member) ID(ctx context.Context) (uintptr, error) {
	t := currentThread(ctx)
	if t == nil {
		return 0, ErrNotAttached
	}
	_, id, err := t.engine.resolveMember(ctx, t, m)
	return id, err
}

func (m *member) humanName() string {
	var sb strings.Builder
	if m.static {
		sb.WriteString("static ")
	}
	sb.WriteString(m.kind.String())
	sb.WriteString(" ")
	sb.WriteString(m.owner.path)
	sb.WriteString(".")
	sb.WriteString(m.name)
	sb.WriteString(m.sig)
	return sb.String()
}

func (m *member) resolutionError() *ResolutionError {
	what := "fieldID"
	if m.kind == MemberMethod {
		what = "methodID"
	}
	return &ResolutionError{What: what, Class: m.owner.path, Name: m.name, Signature: m.sig}
}

// access is a member ready to be used: the thread is attached, the member is
// resolved and, for instance members, the receiver is a non-null instance of
// the owning class.
type access struct {
	thread   *Thread
	class    Ref
	id       uintptr
	receiver Ref
}

func (a access) env() Env {
	return a.thread.env
}

func (m *member) prepare(ctx context.Context, this Instance) (access, error) {
	t := currentThread(ctx)
	if t == nil {
		return access{}, ErrNotAttached
	}

	var receiver Ref
	if !m.static && !m.constructor {
		receiver = this.Ref()
		if receiver == 0 {
			return access{}, ErrNullReceiver
		}
		if this.class != nil && !this.class.IsA(m.owner) {
			return access{}, fmt.Errorf("%s is not a %s: %w", this.class.path, m.owner.path, ErrIncompatibleReceiver)
		}
	}

	class, id, err := t.engine.resolveMember(ctx, t, m)
	if err != nil {
		return access{}, err
	}

	return access{thread: t, class: class, id: id, receiver: receiver}, nil
}

// marshal converts call arguments to wire slots, narrowing each to the
// declared parameter type.
func (m *member) marshal(arguments []any) ([]uint64, error) {
	if len(arguments) != len(m.params) {
		return nil, fmt.Errorf("%s called with %d argument(s), expected %d arg(s): %w", m.name, len(arguments), len(m.params), ErrArgument)
	}

	argsWired := make([]uint64, len(arguments))
	for i := range arguments {
		var err error
		argsWired[i], err = m.params[i].ToWireType(arguments[i])
		if err != nil {
			return nil, fmt.Errorf("could not get wire type of argument %d (%s): %w", i, m.params[i].Name(), err)
		}
	}

	return argsWired, nil
}
