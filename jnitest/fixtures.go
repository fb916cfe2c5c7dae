package jnitest

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Fixtures describes classes and their fields in TOML:
//
//	[[class]]
//	name = "test/Base"
//	field = [{ name = "x", sig = "I" }]
//
//	[[class]]
//	name = "test/Derived"
//	super = "test/Base"
//	hidden = true
//	field = [{ name = "total", sig = "J", static = true }]
type Fixtures struct {
	Classes []FixtureClass `toml:"class"`
}

type FixtureClass struct {
	Name   string         `toml:"name"`
	Super  string         `toml:"super"`
	Hidden bool           `toml:"hidden"`
	Fields []FixtureField `toml:"field"`
}

type FixtureField struct {
	Name   string `toml:"name"`
	Sig    string `toml:"sig"`
	Static bool   `toml:"static"`
}

// LoadClasses defines the classes described by TOML fixtures. Superclasses
// must be known or be defined earlier in the same document.
func (vm *VM) LoadClasses(data []byte) error {
	var fixtures Fixtures
	if err := toml.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("could not parse class fixtures: %w", err)
	}

	for _, fc := range fixtures.Classes {
		if fc.Name == "" {
			return fmt.Errorf("class fixture without name")
		}

		var super *Class
		if fc.Super != "" {
			super = vm.Class(fc.Super)
			if super == nil {
				return fmt.Errorf("class %s extends unknown class %s", fc.Name, fc.Super)
			}
		}

		c := vm.DefineClass(fc.Name, super)
		for _, ff := range fc.Fields {
			if ff.Static {
				c.StaticField(ff.Name, ff.Sig)
			} else {
				c.Field(ff.Name, ff.Sig)
			}
		}
		if fc.Hidden {
			c.Hide()
		}
	}

	return nil
}

// LoadClassesFile reads TOML fixtures from path.
func (vm *VM) LoadClassesFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read class fixtures: %w", err)
	}

	if err := vm.LoadClasses(data); err != nil {
		return fmt.Errorf("parse error in %s: %w", path, err)
	}
	return nil
}
