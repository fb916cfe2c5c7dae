package generator

import (
	"bytes"
	"embed"
	"fmt"
	"go/format"
	"go/token"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/tliron/commonlog"
	"golang.org/x/tools/go/packages"
)

var log = commonlog.GetLogger("jnibind.generator")

var (
	//go:embed templates/*
	templates embed.FS
)

// reservedNames are the method and field names a binding already has
// through its embedded Instance.
var reservedNames = map[string]bool{
	"Assign":       true,
	"Class":        true,
	"Clone":        true,
	"Instance":     true,
	"IsInstanceOf": true,
	"IsNil":        true,
	"IsSameObject": true,
	"Lifetime":     true,
	"Object":       true,
	"Ref":          true,
	"Release":      true,
	"String":       true,
}

// Generate renders the bindings of the table at tablePath into output, in
// the package of the Go file fileName in dir. The package clause of the
// table is used when fileName is empty.
func Generate(dir string, fileName string, tablePath string, output string) error {
	table, err := LoadTable(tablePath)
	if err != nil {
		return err
	}

	packageName := table.Package
	if fileName != "" {
		fset := token.NewFileSet()
		pkgs, err := packages.Load(&packages.Config{
			Dir:  dir,
			Fset: fset,
			Mode: packages.NeedName,
		}, fmt.Sprintf("file=%s", fileName))
		if err != nil {
			return err
		}

		if len(pkgs) > 0 && pkgs[0].Name != "" {
			if packageName != "" && packageName != pkgs[0].Name {
				log.Warningf("table package %s does not match package %s of %s", packageName, pkgs[0].Name, fileName)
			}
			packageName = pkgs[0].Name
		}
	}

	source, err := Render(table, packageName, filepath.Base(tablePath))
	if err != nil {
		return err
	}

	if !filepath.IsAbs(output) {
		output = path.Join(dir, output)
	}

	err = os.WriteFile(output, source, 0o644)
	if err != nil {
		return err
	}

	log.Infof("generated %d binding(s) in %s", len(table.Classes), output)
	return nil
}

// Render returns the formatted Go source of the bindings of table.
func Render(table *Table, packageName string, sourceName string) ([]byte, error) {
	if packageName == "" {
		return nil, fmt.Errorf("%w: no package name", ErrInvalidTable)
	}

	data, err := buildTemplateData(table)
	if err != nil {
		return nil, err
	}
	data.Pkg = packageName
	data.Source = sourceName

	tmpl, err := template.New("").
		Funcs(TemplateFunctions). // Custom functions
		ParseFS(templates, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}

	return ExecuteTemplate(tmpl, "bindings.tmpl", data)
}

var TemplateFunctions = template.FuncMap{
	"lower": strings.ToLower,
	"wrap": func(format string, value string) string {
		return fmt.Sprintf(format, value)
	},
	"params": func(params []TemplateParam) string {
		out := ""
		for i := range params {
			out += ", " + params[i].Name + " " + params[i].Type
		}
		return out
	},
	"args": func(params []TemplateParam) string {
		out := ""
		for i := range params {
			out += ", " + params[i].Name
		}
		return out
	},
}

func ExecuteTemplate(tmpl *template.Template, name string, data TemplateData) ([]byte, error) {
	writer := bytes.NewBuffer(nil)
	err := tmpl.ExecuteTemplate(writer, name, data)
	if err != nil {
		return nil, err
	}

	fileBytes := writer.Bytes()
	formattedSource, err := format.Source(fileBytes)
	if err != nil {
		return nil, fmt.Errorf("could not format %s: %w\nsource:\n%s", name, err, fileBytes)
	}

	return formattedSource, nil
}

func buildTemplateData(table *Table) (TemplateData, error) {
	if err := table.Validate(); err != nil {
		return TemplateData{}, err
	}
	if len(table.Classes) == 0 {
		return TemplateData{}, fmt.Errorf("%w: no classes", ErrInvalidTable)
	}

	resolver := newTypeResolver(table)
	data := TemplateData{}
	packageNames := newNameSet("package")

	for _, tableClass := range table.ordered() {
		class, err := buildClass(resolver, tableClass)
		if err != nil {
			return TemplateData{}, fmt.Errorf("class %s: %w", tableClass.Name, err)
		}

		names := []string{class.GoName, class.ClassVar, "Wrap" + class.GoName}
		for i := range class.Constructors {
			names = append(names, class.Constructors[i].GoName, class.Constructors[i].Var)
		}
		for i := range class.StaticFields {
			names = append(names, class.StaticFields[i].GoName, class.StaticFields[i].SetterName, class.StaticFields[i].Var)
		}
		for i := range class.StaticMethods {
			names = append(names, class.StaticMethods[i].GoName, class.StaticMethods[i].Var)
		}
		for i := range class.Fields {
			names = append(names, class.Fields[i].Var)
		}
		for i := range class.Methods {
			names = append(names, class.Methods[i].Var)
		}
		for _, name := range names {
			if err := packageNames.add(name); err != nil {
				return TemplateData{}, fmt.Errorf("class %s: %w", tableClass.Name, err)
			}
		}

		if len(class.Fields)+len(class.StaticFields)+len(class.Methods)+len(class.StaticMethods)+len(class.Constructors) > 0 {
			data.NeedsContext = true
		}

		data.Classes = append(data.Classes, class)
	}

	for classPath, goName := range resolver.external {
		if err := packageNames.add(goName); err != nil {
			return TemplateData{}, err
		}
		data.External = append(data.External, TemplateExternal{
			Path:   classPath,
			GoName: goName,
		})
	}

	sort.Slice(data.External, func(i, j int) bool {
		return data.External[i].GoName < data.External[j].GoName
	})

	return data, nil
}

func buildClass(resolver *typeResolver, tableClass *TableClass) (TemplateClass, error) {
	class := TemplateClass{
		Name:     tableClass.Path,
		GoName:   tableClass.Name,
		ClassVar: "Class" + tableClass.Name,
		Prefix:   unexportedName(tableClass.Name),
	}
	if tableClass.Extends != "" {
		class.Parent = tableClass.Extends
		class.ParentVar = "Class" + tableClass.Extends
	}

	memberNames := newNameSet("member")
	if class.Parent != "" {
		memberNames.reserve(class.Parent)
	}

	for _, tableField := range tableClass.Fields {
		field, err := buildField(resolver, class, tableField)
		if err != nil {
			return class, err
		}

		if field.Static {
			class.StaticFields = append(class.StaticFields, field)
			continue
		}

		if err := memberNames.add(field.GoName); err != nil {
			return class, err
		}
		if err := memberNames.add(field.SetterName); err != nil {
			return class, err
		}
		class.Fields = append(class.Fields, field)
	}

	methods, err := buildMethods(resolver, class, tableClass.Methods)
	if err != nil {
		return class, err
	}
	for _, method := range methods {
		if method.Static {
			class.StaticMethods = append(class.StaticMethods, method)
			continue
		}
		if err := memberNames.add(method.GoName); err != nil {
			return class, err
		}
		class.Methods = append(class.Methods, method)
	}

	for i, tableConstructor := range tableClass.Constructors {
		constructor := TemplateConstructor{
			GoName: tableConstructor.Go,
			Var:    class.Prefix + "Constructor",
		}
		if len(tableClass.Constructors) > 1 {
			constructor.Var += strconv.Itoa(i)
		}
		if constructor.GoName == "" {
			constructor.GoName = "New" + class.GoName
			if len(tableClass.Constructors) > 1 {
				constructor.GoName += strconv.Itoa(len(tableConstructor.Params))
			}
		}

		params, exprs, err := buildParams(resolver, tableConstructor.Params)
		if err != nil {
			return class, fmt.Errorf("constructor %s: %w", constructor.GoName, err)
		}
		constructor.Params = params
		constructor.Decl = fmt.Sprintf("jnibind.NewConstructor(%s%s)", class.ClassVar, joinExprs(exprs))
		class.Constructors = append(class.Constructors, constructor)
	}

	sortFields(class.Fields)
	sortFields(class.StaticFields)
	sortMethods(class.Methods)
	sortMethods(class.StaticMethods)

	return class, nil
}

func buildField(resolver *typeResolver, class TemplateClass, tableField TableField) (TemplateField, error) {
	if tableField.Name == "" {
		return TemplateField{}, fmt.Errorf("%w: field without a name", ErrInvalidTable)
	}

	typ, err := resolver.resolve(tableField.Type)
	if err != nil {
		return TemplateField{}, fmt.Errorf("field %s: %w", tableField.Name, err)
	}
	if typ.Void {
		return TemplateField{}, fmt.Errorf("%w: field %s is void", ErrInvalidTable, tableField.Name)
	}

	goName := tableField.Go
	if goName == "" {
		goName = generateGoName(tableField.Name)
	}
	if !isIdentifier(goName) {
		return TemplateField{}, fmt.Errorf("%w: field name %q is not a Go identifier", ErrInvalidTable, goName)
	}

	field := TemplateField{
		Name:        tableField.Name,
		GoName:      goName,
		SetterName:  "Set" + goName,
		Var:         class.Prefix + goName + "Field",
		Static:      tableField.Static,
		GetterType:  typ.Result,
		SetterType:  typ.Param,
		SetterValue: "value",
		Wrap:        typ.Wrap,
		Wrapped:     typ.wraps(),
		ErrorValue:  typ.ErrorValue,
	}
	if field.Static {
		field.GoName = class.GoName + goName
		field.SetterName = "Set" + class.GoName + goName
	}

	modifier := modifierOf(tableField.Static)
	if typ.isReference() {
		field.SetterValue = "jnibind.ObjectOf(value)"
		field.Decl = fmt.Sprintf("jnibind.NewObjectField(%s, %q, %s, %s)", class.ClassVar, tableField.Name, typ.Expr, modifier)
	} else {
		field.Decl = fmt.Sprintf("jnibind.NewField[%s](%s, %q, %s)", typ.Value, class.ClassVar, tableField.Name, modifier)
	}

	return field, nil
}

func buildMethods(resolver *typeResolver, class TemplateClass, tableMethods []TableMethod) ([]TemplateMethod, error) {
	// Overloads without an explicit Go name get their parameter count
	// appended.
	overloads := map[string]int{}
	for _, tableMethod := range tableMethods {
		if tableMethod.Go == "" {
			overloads[overloadKey(tableMethod)]++
		}
	}

	methods := make([]TemplateMethod, 0, len(tableMethods))
	for _, tableMethod := range tableMethods {
		if tableMethod.Name == "" {
			return nil, fmt.Errorf("%w: method without a name", ErrInvalidTable)
		}

		goName := tableMethod.Go
		if goName == "" {
			goName = generateGoName(tableMethod.Name)
			if overloads[overloadKey(tableMethod)] > 1 {
				goName += strconv.Itoa(len(tableMethod.Params))
			}
		}
		if !isIdentifier(goName) {
			return nil, fmt.Errorf("%w: method name %q is not a Go identifier", ErrInvalidTable, goName)
		}

		returnName := tableMethod.Return
		if returnName == "" {
			returnName = "void"
		}
		ret, err := resolver.resolve(returnName)
		if err != nil {
			return nil, fmt.Errorf("method %s: %w", tableMethod.Name, err)
		}

		params, exprs, err := buildParams(resolver, tableMethod.Params)
		if err != nil {
			return nil, fmt.Errorf("method %s: %w", tableMethod.Name, err)
		}

		method := TemplateMethod{
			Name:       tableMethod.Name,
			GoName:     goName,
			Var:        class.Prefix + goName + "Method",
			Static:     tableMethod.Static,
			Params:     params,
			ReturnType: ret.Result,
			Wrap:       ret.Wrap,
			Wrapped:    !ret.Void && ret.wraps(),
			ErrorValue: ret.ErrorValue,
		}
		if method.Static {
			method.GoName = class.GoName + goName
		}

		modifier := modifierOf(tableMethod.Static)
		switch {
		case ret.Void:
			method.Decl = fmt.Sprintf("jnibind.NewVoidMethod(%s, %q, %s%s)", class.ClassVar, tableMethod.Name, modifier, joinExprs(exprs))
		case ret.isReference():
			method.Decl = fmt.Sprintf("jnibind.NewObjectMethod(%s, %q, %s, %s%s)", class.ClassVar, tableMethod.Name, ret.Expr, modifier, joinExprs(exprs))
		default:
			method.Decl = fmt.Sprintf("jnibind.NewMethod[%s](%s, %q, %s%s)", ret.Value, class.ClassVar, tableMethod.Name, modifier, joinExprs(exprs))
		}

		methods = append(methods, method)
	}

	return methods, nil
}

func overloadKey(tableMethod TableMethod) string {
	if tableMethod.Static {
		return "static " + tableMethod.Name
	}
	return tableMethod.Name
}

func buildParams(resolver *typeResolver, names []string) ([]TemplateParam, []string, error) {
	params := make([]TemplateParam, len(names))
	exprs := make([]string, len(names))
	for i, name := range names {
		typ, err := resolver.resolve(name)
		if err != nil {
			return nil, nil, fmt.Errorf("parameter %d: %w", i, err)
		}
		if typ.Void {
			return nil, nil, fmt.Errorf("%w: parameter %d is void", ErrInvalidTable, i)
		}
		params[i] = TemplateParam{
			Name: "arg" + strconv.Itoa(i),
			Type: typ.Param,
		}
		exprs[i] = typ.Expr
	}
	return params, exprs, nil
}

func joinExprs(exprs []string) string {
	out := ""
	for i := range exprs {
		out += ", " + exprs[i]
	}
	return out
}

func modifierOf(static bool) string {
	if static {
		return "jnibind.Static"
	}
	return "jnibind.NonStatic"
}

func sortFields(fields []TemplateField) {
	sort.Slice(fields, func(i, j int) bool {
		return fields[i].GoName < fields[j].GoName
	})
}

func sortMethods(methods []TemplateMethod) {
	sort.Slice(methods, func(i, j int) bool {
		return methods[i].GoName < methods[j].GoName
	})
}

type nameSet struct {
	scope string
	names map[string]bool
}

func newNameSet(scope string) *nameSet {
	return &nameSet{scope: scope, names: map[string]bool{}}
}

func (s *nameSet) reserve(name string) {
	s.names[name] = true
}

func (s *nameSet) add(name string) error {
	if s.scope == "member" && reservedNames[name] {
		return fmt.Errorf("%w: %s is a reserved name", ErrInvalidTable, name)
	}
	if s.names[name] {
		return fmt.Errorf("%w: duplicate %s name %s", ErrInvalidTable, s.scope, name)
	}
	s.names[name] = true
	return nil
}

type TemplateData struct {
	Pkg          string
	Source       string
	NeedsContext bool
	External     []TemplateExternal
	Classes      []TemplateClass
}

type TemplateExternal struct {
	Path   string
	GoName string
}

type TemplateClass struct {
	Name          string
	GoName        string
	ClassVar      string
	Prefix        string
	Parent        string
	ParentVar     string
	Constructors  []TemplateConstructor
	Fields        []TemplateField
	StaticFields  []TemplateField
	Methods       []TemplateMethod
	StaticMethods []TemplateMethod
}

type TemplateConstructor struct {
	GoName string
	Var    string
	Decl   string
	Params []TemplateParam
}

type TemplateField struct {
	Name        string
	GoName      string
	SetterName  string
	Var         string
	Decl        string
	Static      bool
	GetterType  string
	SetterType  string
	SetterValue string
	Wrap        string
	Wrapped     bool
	ErrorValue  string
}

type TemplateMethod struct {
	Name       string
	GoName     string
	Var        string
	Decl       string
	Static     bool
	Params     []TemplateParam
	ReturnType string
	Wrap       string
	Wrapped    bool
	ErrorValue string
}

type TemplateParam struct {
	Name string
	Type string
}
