package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/broady/argenum"
	"github.com/broady/argenum/enumgen/ir"
)

// SchemaFile is the YAML form of a package's enums, for enums that do not
// exist in Go source yet. The generated file declares the types as well.
//
//	package: paint
//	enums:
//	  - name: Color
//	    variants: [Red, Green, Blue]
//	  - name: Mode
//	    type: uint8
//	    prefix: Mode
//	    case_sensitive: true
//	    variants: [On, Off]
type SchemaFile struct {
	// Package is the Go package name of the generated file.
	Package string `yaml:"package"`

	// Output overrides the generated file name.
	Output string `yaml:"output,omitempty"`

	Enums []SchemaEnum `yaml:"enums"`
}

// SchemaEnum describes one enum in a schema file.
type SchemaEnum struct {
	Name string `yaml:"name"`

	// Type is the underlying Go type. Default: int.
	Type string `yaml:"type,omitempty"`

	// Doc becomes the type's doc comment.
	Doc string `yaml:"doc,omitempty"`

	// Prefix is prepended to variant names to form constant identifiers.
	Prefix string `yaml:"prefix,omitempty"`

	CaseSensitive bool `yaml:"case_sensitive,omitempty"`

	// Text adds an UnmarshalText method.
	Text bool `yaml:"text,omitempty"`

	// Variants are the labels, in order.
	Variants []string `yaml:"variants"`
}

// SchemaProvider reads enums from YAML schema files.
type SchemaProvider struct{}

// SchemaInputOptions configures schema-file extraction.
type SchemaInputOptions struct {
	// Files are paths to YAML schema files. Generated code is written to
	// the directory containing each file.
	Files []string

	// Text forces UnmarshalText generation for every enum.
	Text bool
}

// BuildSchemas parses every file and returns one schema per file.
func (p *SchemaProvider) BuildSchemas(ctx context.Context, opts SchemaInputOptions) ([]*ir.Schema, error) {
	if len(opts.Files) == 0 {
		return nil, argenum.NewError(argenum.CodeInvalidConfig, "no schema files specified")
	}

	var (
		schemas []*ir.Schema
		errs    []error
	)
	for _, path := range opts.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, argenum.Errorf(argenum.CodeNotFound, "read schema file: %v", err))
			continue
		}
		schema, err := ParseSchemaFile(path, data)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if opts.Text {
			for _, e := range schema.Enums {
				e.Text = true
			}
		}
		schemas = append(schemas, schema)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return schemas, nil
}

// ParseSchemaFile converts YAML content into a schema. path is used for
// positions and the output directory.
func ParseSchemaFile(path string, data []byte) (*ir.Schema, error) {
	var file SchemaFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, argenum.Errorf(argenum.CodeMalformedInput, "%s: %v", path, err)
	}

	// Second pass for line numbers; the typed decode above already
	// rejected anything structurally wrong.
	var root yaml.Node
	_ = yaml.Unmarshal(data, &root)
	lines := enumLines(&root)

	if !ir.IsIdentifier(file.Package) {
		return nil, argenum.Errorf(argenum.CodeMalformedInput, "%q is not a valid package name", file.Package).
			At(ir.Source{File: path, Line: 1, Column: 1}.Position())
	}

	schema := &ir.Schema{
		Package: ir.PackageInfo{
			Name: file.Package,
			Dir:  filepath.Dir(path),
		},
		Output: file.Output,
	}

	for i, se := range file.Enums {
		underlying := se.Type
		if underlying == "" {
			underlying = "int"
		}

		enum := &ir.EnumDescription{
			Name:          ir.GoIdentifier{Name: se.Name},
			Underlying:    underlying,
			CaseSensitive: se.CaseSensitive,
			Declare:       true,
			Text:          se.Text,
		}
		if se.Doc != "" {
			enum.Documentation = ir.Documentation{Summary: firstLine(se.Doc), Body: se.Doc}
		}
		if i < len(lines) {
			enum.Source = ir.Source{File: path, Line: lines[i].line, Column: lines[i].column}
		}

		for j, label := range se.Variants {
			v := ir.Variant{
				Ident: se.Prefix + label,
				Label: label,
			}
			if i < len(lines) && j < len(lines[i].variants) {
				v.Source = ir.Source{File: path, Line: lines[i].variants[j].line, Column: lines[i].variants[j].column}
			}
			enum.Variants = append(enum.Variants, v)
		}
		schema.AddEnum(enum)
	}

	if len(schema.Enums) == 0 {
		schema.AddWarning(ir.Warning{
			Code:    "EMPTY_SCHEMA",
			Message: fmt.Sprintf("%s declares no enums", path),
		})
	}
	return schema, nil
}

type nodePos struct {
	line, column int
	variants     []nodePos
}

// enumLines finds the position of each item under "enums" and of each of
// its variants.
func enumLines(root *yaml.Node) []nodePos {
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil
	}
	enums := mappingValue(root.Content[0], "enums")
	if enums == nil || enums.Kind != yaml.SequenceNode {
		return nil
	}

	out := make([]nodePos, 0, len(enums.Content))
	for _, item := range enums.Content {
		pos := nodePos{line: item.Line, column: item.Column}
		if vs := mappingValue(item, "variants"); vs != nil && vs.Kind == yaml.SequenceNode {
			for _, v := range vs.Content {
				pos.variants = append(pos.variants, nodePos{line: v.Line, column: v.Column})
			}
		}
		out = append(out, pos)
	}
	return out
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
