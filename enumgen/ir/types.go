// Package ir defines the intermediate representation argenum generates from.
// Providers turn Go packages or schema files into these descriptions; the
// emitter turns them into Go source. Descriptions are immutable once validated.
package ir

import (
	"fmt"
	"go/token"
)

// GoIdentifier represents a named Go entity with package context.
type GoIdentifier struct {
	// Name is the type identifier, e.g. "Color".
	Name string `validate:"required,goident"`

	// Package is the fully qualified package path.
	// Empty for schema-file enums until a package is assigned.
	Package string
}

func (id GoIdentifier) String() string {
	if id.Package == "" {
		return id.Name
	}
	return id.Package + "." + id.Name
}

// Documentation holds documentation comments extracted from Go source.
type Documentation struct {
	// Summary is the first line of the doc comment.
	Summary string

	// Body is the complete documentation text, including the summary.
	Body string
}

// IsZero returns true if the documentation is empty.
func (d Documentation) IsZero() bool {
	return d.Summary == "" && d.Body == ""
}

// Source represents source code location information.
type Source struct {
	File   string
	Line   int
	Column int
}

// IsZero returns true if the source location is empty.
func (s Source) IsZero() bool {
	return s.File == "" && s.Line == 0 && s.Column == 0
}

// Position converts s to a token.Position for diagnostics.
func (s Source) Position() token.Position {
	return token.Position{Filename: s.File, Line: s.Line, Column: s.Column}
}

func (s Source) String() string {
	if s.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// SourceOf converts a token.Position.
func SourceOf(p token.Position) Source {
	return Source{File: p.Filename, Line: p.Line, Column: p.Column}
}

// Warning represents a non-fatal issue encountered during extraction.
type Warning struct {
	// Code is a machine-readable warning identifier.
	Code string

	// Message is a human-readable description.
	Message string

	// Source is the location that triggered the warning, if applicable.
	Source *Source

	// TypeName is the type that triggered the warning, if applicable.
	TypeName string
}

func (w Warning) String() string {
	prefix := ""
	if w.Source != nil && !w.Source.IsZero() {
		prefix = w.Source.String() + ": "
	}
	return prefix + w.Code + ": " + w.Message
}

// PackageInfo describes the Go package generated code belongs to.
type PackageInfo struct {
	// Path is the import path (e.g., "github.com/foo/bar").
	Path string

	// Name is the package name (e.g., "bar").
	Name string

	// Dir is the filesystem directory generated files are written to.
	Dir string
}
