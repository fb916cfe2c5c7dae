package generator

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Table is a declarative binding table.
type Table struct {
	Package string       `toml:"package"`
	Classes []TableClass `toml:"class"`
}

type TableClass struct {
	// Name is the Go name of the binding.
	Name string `toml:"name"`
	// Path is the protocol path of the class, like java/util/ArrayList.
	Path string `toml:"path"`
	// Extends names the binding of the parent class.
	Extends      string             `toml:"extends"`
	Constructors []TableConstructor `toml:"constructor"`
	Fields       []TableField       `toml:"field"`
	Methods      []TableMethod      `toml:"method"`
}

type TableConstructor struct {
	Go     string   `toml:"go"`
	Params []string `toml:"params"`
}

type TableField struct {
	Name   string `toml:"name"`
	Go     string `toml:"go"`
	Type   string `toml:"type"`
	Static bool   `toml:"static"`
}

type TableMethod struct {
	Name   string   `toml:"name"`
	Go     string   `toml:"go"`
	Return string   `toml:"return"`
	Params []string `toml:"params"`
	Static bool     `toml:"static"`
}

var ErrInvalidTable = errors.New("invalid binding table")

// ParseTable decodes a binding table. Unknown keys are rejected.
func ParseTable(data []byte) (*Table, error) {
	table := &Table{}
	meta, err := toml.Decode(string(data), table)
	if err != nil {
		return nil, err
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i := range undecoded {
			keys[i] = undecoded[i].String()
		}
		return nil, fmt.Errorf("%w: unknown keys %s", ErrInvalidTable, strings.Join(keys, ", "))
	}

	return table, nil
}

func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	table, err := ParseTable(data)
	if err != nil {
		return nil, fmt.Errorf("could not load %s: %w", path, err)
	}

	return table, nil
}

// Validate checks the class graph of the table. Types and member names are
// checked when the table is rendered.
func (t *Table) Validate() error {
	byName := map[string]*TableClass{}
	byPath := map[string]bool{}
	for i := range t.Classes {
		class := &t.Classes[i]
		if class.Name == "" {
			return fmt.Errorf("%w: class %d has no name", ErrInvalidTable, i)
		}
		if !isIdentifier(class.Name) {
			return fmt.Errorf("%w: class name %q is not a Go identifier", ErrInvalidTable, class.Name)
		}
		if class.Path == "" {
			return fmt.Errorf("%w: class %s has no path", ErrInvalidTable, class.Name)
		}
		if _, ok := byName[class.Name]; ok {
			return fmt.Errorf("%w: duplicate class %s", ErrInvalidTable, class.Name)
		}
		if byPath[class.Path] {
			return fmt.Errorf("%w: duplicate class path %s", ErrInvalidTable, class.Path)
		}
		byName[class.Name] = class
		byPath[class.Path] = true
	}

	for i := range t.Classes {
		class := &t.Classes[i]
		if class.Extends == "" {
			continue
		}
		if _, ok := byName[class.Extends]; !ok {
			return fmt.Errorf("%w: class %s extends unknown class %s", ErrInvalidTable, class.Name, class.Extends)
		}

		seen := map[string]bool{class.Name: true}
		for parent := byName[class.Extends]; parent != nil; parent = byName[parent.Extends] {
			if seen[parent.Name] {
				return fmt.Errorf("%w: class %s is part of an extends cycle", ErrInvalidTable, class.Name)
			}
			seen[parent.Name] = true
		}
	}

	return nil
}

// ordered returns the classes with every parent before its children,
// keeping the table order otherwise.
func (t *Table) ordered() []*TableClass {
	byName := map[string]*TableClass{}
	for i := range t.Classes {
		byName[t.Classes[i].Name] = &t.Classes[i]
	}

	done := map[string]bool{}
	ordered := make([]*TableClass, 0, len(t.Classes))
	var visit func(class *TableClass)
	visit = func(class *TableClass) {
		if done[class.Name] {
			return
		}
		done[class.Name] = true
		if parent, ok := byName[class.Extends]; ok {
			visit(parent)
		}
		ordered = append(ordered, class)
	}

	for i := range t.Classes {
		visit(&t.Classes[i])
	}
	return ordered
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
