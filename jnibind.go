package jnibind

import (
	"context"

	internal "github.com/jerbob92/jnibind/internal"
)

type Engine interface {
	internal.IEngine
}

type EngineConfig interface {
	internal.IEngineConfig
}

type (
	Env       = internal.Env
	Ref       = internal.Ref
	FieldID   = internal.FieldID
	MethodID  = internal.MethodID
	Referent  = internal.Referent
	Kind      = internal.Kind
	Type      = internal.Type
	Void      = internal.Void
	Primitive = internal.Primitive
	Value     = internal.Value
	Result    = internal.Result

	Class       = internal.Class
	ClassOption = internal.ClassOption
	Instance    = internal.Instance
	Object      = internal.Object
	Lifetime    = internal.Lifetime
	Member      = internal.Member
	MemberKind  = internal.MemberKind
	Modifier    = internal.Modifier
	Constructor = internal.Constructor
	Frame       = internal.Frame
	Thread      = internal.Thread
	ThreadKey   = internal.ThreadKey

	ResolvePolicy   = internal.ResolvePolicy
	ClassResolver   = internal.ClassResolver
	ResolutionError = internal.ResolutionError
)

type (
	Field[T Value]        = internal.Field[T]
	BoundField[T Value]   = internal.BoundField[T]
	Method[R Result]      = internal.Method[R]
	BoundMethod[R Result] = internal.BoundMethod[R]
	Array[T Value]        = internal.Array[T]
)

const (
	KindVoid    = internal.KindVoid
	KindBoolean = internal.KindBoolean
	KindByte    = internal.KindByte
	KindChar    = internal.KindChar
	KindShort   = internal.KindShort
	KindInt     = internal.KindInt
	KindFloat   = internal.KindFloat
	KindLong    = internal.KindLong
	KindDouble  = internal.KindDouble
	KindObject  = internal.KindObject

	Scoped   = internal.Scoped
	Promoted = internal.Promoted

	MemberField  = internal.MemberField
	MemberMethod = internal.MemberMethod

	NonStatic = internal.NonStatic
	Static    = internal.Static

	ResolveInert = internal.ResolveInert
	ResolvePanic = internal.ResolvePanic

	DefaultFrameCapacity = internal.DefaultFrameCapacity
)

var (
	VoidType = internal.VoidType
	Boolean  = internal.Boolean
	Byte     = internal.Byte
	Char     = internal.Char
	Short    = internal.Short
	Int      = internal.Int
	Float    = internal.Float
	Long     = internal.Long
	Double   = internal.Double

	PrimitiveTypes = internal.PrimitiveTypes

	ObjectClass = internal.ObjectClass
	StringClass = internal.StringClass

	ErrNotAttached          = internal.ErrNotAttached
	ErrUnresolved           = internal.ErrUnresolved
	ErrNullReceiver         = internal.ErrNullReceiver
	ErrIncompatibleReceiver = internal.ErrIncompatibleReceiver
	ErrStaticMismatch       = internal.ErrStaticMismatch
	ErrArgument             = internal.ErrArgument
	ErrPromotion            = internal.ErrPromotion
	ErrAllocation           = internal.ErrAllocation
)

// CreateEngine returns a new engine. Call Init on it before attaching
// threads. A nil config uses NewConfig.
func CreateEngine(config EngineConfig) Engine {
	return internal.CreateEngine(config)
}

func NewConfig() EngineConfig {
	return internal.NewConfig()
}

func DeclareClass(path string, options ...ClassOption) *Class {
	return internal.DeclareClass(path, options...)
}

func Extends(parent *Class) ClassOption {
	return internal.Extends(parent)
}

func ArrayOf(elem Type) *Class {
	return internal.ArrayOf(elem)
}

func PrimitiveTypeOf[T Primitive]() Type {
	return internal.PrimitiveTypeOf[T]()
}

func MethodSignature(ret Type, params ...Type) string {
	return internal.MethodSignature(ret, params...)
}

func NewField[T Primitive](owner *Class, name string, modifier Modifier) *Field[T] {
	return internal.NewField[T](owner, name, modifier)
}

func NewObjectField(owner *Class, name string, typ *Class, modifier Modifier) *Field[*Object] {
	return internal.NewObjectField(owner, name, typ, modifier)
}

func NewMethod[R Primitive](owner *Class, name string, modifier Modifier, params ...Type) *Method[R] {
	return internal.NewMethod[R](owner, name, modifier, params...)
}

func NewObjectMethod(owner *Class, name string, ret *Class, modifier Modifier, params ...Type) *Method[*Object] {
	return internal.NewObjectMethod(owner, name, ret, modifier, params...)
}

func NewVoidMethod(owner *Class, name string, modifier Modifier, params ...Type) *Method[Void] {
	return internal.NewVoidMethod(owner, name, modifier, params...)
}

func NewConstructor(owner *Class, params ...Type) *Constructor {
	return internal.NewConstructor(owner, params...)
}

func Wrap(ref Ref) *Object {
	return internal.Wrap(ref)
}

func ObjectOf(src Referent) *Object {
	return internal.ObjectOf(src)
}

func Promote(ctx context.Context, src Referent) (*Object, error) {
	return internal.Promote(ctx, src)
}

func NewReference(ctx context.Context, src Referent, lifetime Lifetime) (*Object, error) {
	return internal.NewReference(ctx, src, lifetime)
}

func PrimitiveArray[T Primitive](obj *Object) Array[T] {
	return internal.PrimitiveArray[T](obj)
}

func ObjectArray(elem *Class, obj *Object) Array[*Object] {
	return internal.ObjectArray(elem, obj)
}

func CreateArray[T Primitive](ctx context.Context, values []T) (Array[T], error) {
	return internal.CreateArray[T](ctx, values)
}

func CreateObjectArray[E Referent](ctx context.Context, elem *Class, values []E) (Array[*Object], error) {
	return internal.CreateObjectArray[E](ctx, elem, values)
}

func NewString(ctx context.Context, value string) (*Object, error) {
	return internal.NewString(ctx, value)
}

func GoString(ctx context.Context, str Referent) (string, error) {
	return internal.GoString(ctx, str)
}

func PushFrame(ctx context.Context, capacity int32) (*Frame, error) {
	return internal.PushFrame(ctx, capacity)
}

func CurrentEnv(ctx context.Context) Env {
	return internal.CurrentEnv(ctx)
}

func GetThreadFromContext(ctx context.Context) (*Thread, error) {
	return internal.GetThreadFromContext(ctx)
}

func MustGetThreadFromContext(ctx context.Context) *Thread {
	return internal.MustGetThreadFromContext(ctx)
}

func PendingException(ctx context.Context) bool {
	return internal.PendingException(ctx)
}

func ClearException(ctx context.Context) {
	internal.ClearException(ctx)
}

func KindOfSignature(sig string) Kind {
	return internal.KindOfSignature(sig)
}

func ReturnSignature(methodSig string) string {
	return internal.ReturnSignature(methodSig)
}

func ParamSignatures(methodSig string) []string {
	return internal.ParamSignatures(methodSig)
}
