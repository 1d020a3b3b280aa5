package ir

import (
	"errors"

	"github.com/broady/argenum"
)

// Schema is the set of enums generated into one Go package.
type Schema struct {
	// Package is the package the generated file belongs to.
	Package PackageInfo

	// Output overrides the generated file name for this package.
	// Empty means the generator's configured default.
	Output string

	// Enums in the order they were declared.
	Enums []*EnumDescription

	// Warnings contains non-fatal issues encountered during extraction.
	Warnings []Warning
}

// AddEnum adds an enum description to the schema.
func (s *Schema) AddEnum(e *EnumDescription) {
	s.Enums = append(s.Enums, e)
}

// AddWarning adds a warning to the schema.
func (s *Schema) AddWarning(w Warning) {
	s.Warnings = append(s.Warnings, w)
}

// FindEnum looks up an enum by type name. Returns nil if not found.
func (s *Schema) FindEnum(name string) *EnumDescription {
	for _, e := range s.Enums {
		if e.Name.Name == name {
			return e
		}
	}
	return nil
}

// NeedsFoldHelper reports whether any enum matches case-insensitively.
func (s *Schema) NeedsFoldHelper() bool {
	for _, e := range s.Enums {
		if !e.CaseSensitive {
			return true
		}
	}
	return false
}

// Validate checks every enum and that type names are unique in the package.
// All failures are returned joined, not just the first.
func (s *Schema) Validate() error {
	var errs []error
	seen := make(map[string]*EnumDescription, len(s.Enums))
	for _, e := range s.Enums {
		if prev, ok := seen[e.Name.Name]; ok {
			err := argenum.Errorf(argenum.CodeMalformedInput,
				"enum declared twice in package %s", s.Package.Path).
				ForType(e.Name.Name)
			if !prev.Source.IsZero() {
				err = err.WithDetail("previous", prev.Source.String())
			}
			errs = append(errs, err)
			continue
		}
		seen[e.Name.Name] = e

		if err := e.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
