package generator

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/jerbob92/jnibind"
)

// goType is how a table type shows up in generated code.
type goType struct {
	// Expr evaluates to the jnibind type of the value.
	Expr string
	// Value is the Go type parameter of primitive descriptors, empty for
	// references.
	Value string
	// Param is the Go type of accessor parameters.
	Param string
	// Result is the Go type returned by accessors.
	Result string
	// Wrap converts a descriptor result, a format with one verb.
	Wrap       string
	ErrorValue string
	Void       bool
}

func (t goType) isReference() bool {
	return t.Value == "" && !t.Void
}

func (t goType) wraps() bool {
	return t.Wrap != "%s"
}

// primitiveTypes is keyed by the Java keyword of each primitive type.
var primitiveTypes = func() map[string]goType {
	types := map[string]goType{}
	for _, t := range jnibind.PrimitiveTypes {
		errorValue := "0"
		if t.Kind() == jnibind.KindBoolean {
			errorValue = "false"
		}
		types[t.Name()] = goType{
			Expr:       "jnibind." + generateGoName(t.Name()),
			Value:      t.GoType(),
			ErrorValue: errorValue,
		}
	}
	return types
}()

// objectResult is the accessor result of references without a binding.
var objectResult = qualifiedGoType(jnibind.ObjectClass.GoType())

// qualifiedGoType qualifies a jnibind Go type such as *Object with the
// package name.
func qualifiedGoType(name string) string {
	if elem, ok := strings.CutPrefix(name, "*"); ok {
		return "*jnibind." + elem
	}
	return "jnibind." + name
}

var predeclaredClasses = map[string]string{
	"java/lang/Object": "jnibind.ObjectClass",
	"java/lang/String": "jnibind.StringClass",
}

// typeResolver maps table types to Go types. Class paths without a binding
// are collected so they can be declared once.
type typeResolver struct {
	bindings map[string]*TableClass
	paths    map[string]*TableClass
	external map[string]string
}

func newTypeResolver(table *Table) *typeResolver {
	r := &typeResolver{
		bindings: map[string]*TableClass{},
		paths:    map[string]*TableClass{},
		external: map[string]string{},
	}
	for i := range table.Classes {
		r.bindings[table.Classes[i].Name] = &table.Classes[i]
		r.paths[table.Classes[i].Path] = &table.Classes[i]
	}
	return r
}

func (r *typeResolver) resolve(name string) (goType, error) {
	name = strings.TrimSpace(name)
	if name == "void" {
		return goType{Expr: "jnibind.VoidType", Void: true}, nil
	}

	if elem, ok := strings.CutSuffix(name, "[]"); ok {
		elemType, err := r.resolve(elem)
		if err != nil {
			return goType{}, err
		}
		if elemType.Void {
			return goType{}, fmt.Errorf("%w: array of void", ErrInvalidTable)
		}
		return arrayType(elemType), nil
	}

	if primitive, ok := primitiveTypes[name]; ok {
		primitive.Param = primitive.Value
		primitive.Result = primitive.Value
		primitive.Wrap = "%s"
		return primitive, nil
	}

	class, ok := r.bindings[name]
	if !ok {
		class = r.paths[name]
	}
	if class != nil {
		return goType{
			Expr:       "Class" + class.Name,
			Param:      "jnibind.Referent",
			Result:     "*" + class.Name,
			Wrap:       "Wrap" + class.Name + "(%s)",
			ErrorValue: "nil",
		}, nil
	}

	if !strings.Contains(name, "/") {
		return goType{}, fmt.Errorf("%w: unknown type %s", ErrInvalidTable, name)
	}

	expr, ok := predeclaredClasses[name]
	if !ok {
		expr = externalClassName(name)
		r.external[name] = expr
	}
	return goType{
		Expr:       expr,
		Param:      "jnibind.Referent",
		Result:     objectResult,
		Wrap:       "%s",
		ErrorValue: "nil",
	}, nil
}

func arrayType(elem goType) goType {
	array := goType{
		Expr:  "jnibind.ArrayOf(" + elem.Expr + ")",
		Param: "jnibind.Referent",
	}
	if elem.Value != "" {
		array.Result = "jnibind.Array[" + elem.Value + "]"
		array.Wrap = "jnibind.PrimitiveArray[" + elem.Value + "](%s)"
	} else {
		array.Result = "jnibind.Array[" + objectResult + "]"
		array.Wrap = "jnibind.ObjectArray(" + elem.Expr + ", %s)"
	}
	array.ErrorValue = array.Result + "{}"
	return array
}

// externalClassName turns java/net/URI into classJavaNetURI.
func externalClassName(path string) string {
	name := "class"
	for _, part := range strings.FieldsFunc(path, func(r rune) bool {
		return r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		name += generateGoName(part)
	}
	return name
}

func generateGoName(name string) string {
	if len(name) == 0 {
		return name
	}
	upperFirst := string(unicode.ToUpper(rune(name[0]))) + name[1:]
	return upperFirst
}

// unexportedName lowers the leading capitals of name: URLConnection becomes
// urlConnection.
func unexportedName(name string) string {
	runes := []rune(name)
	for i := range runes {
		if !unicode.IsUpper(runes[i]) {
			break
		}
		if i > 0 && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
			break
		}
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}
