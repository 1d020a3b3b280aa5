package golang

import (
	"bytes"
	"context"

	"golang.org/x/tools/imports"

	"github.com/broady/argenum"
	"github.com/broady/argenum/enumgen/ir"
	"github.com/broady/argenum/enumgen/sink"
)

// DefaultOutput is the generated file name when neither the schema nor the
// configuration names one.
const DefaultOutput = "enums_argenum.go"

// GenerateOptions configures generation behavior.
type GenerateOptions struct {
	// Sink receives generated output files.
	Sink sink.OutputSink

	// Config contains generator-specific configuration.
	Config GeneratorConfig
}

// GeneratorConfig controls the shape of the generated file.
type GeneratorConfig struct {
	// Output is the file name written to the sink. Default: DefaultOutput.
	// A schema's own Output takes precedence.
	Output string

	// Separator joins labels in parse failure messages.
	// Default: ir.DefaultSeparator.
	Separator string
}

// GenerateResult contains generation output metadata.
type GenerateResult struct {
	// Files lists all files that were written.
	Files []OutputFile

	// EnumsGenerated is the count of enums emitted.
	EnumsGenerated int

	// Warnings contains non-fatal issues encountered.
	Warnings []ir.Warning
}

// OutputFile describes a generated file.
type OutputFile struct {
	// Path is the relative path of the generated file.
	Path string

	// Size is the number of bytes written.
	Size int64
}

// Generator writes one Go file per schema.
type Generator struct{}

// Name returns "go".
func (g *Generator) Name() string { return "go" }

// Generate validates the schema, emits its file and writes it to the sink.
// Nothing is written when validation fails.
func (g *Generator) Generate(ctx context.Context, schema *ir.Schema, opts GenerateOptions) (*GenerateResult, error) {
	if schema == nil {
		return nil, argenum.NewError(argenum.CodeInvalidConfig, "schema is nil")
	}
	if opts.Sink == nil {
		return nil, argenum.NewError(argenum.CodeInvalidConfig, "no output sink")
	}
	if !ir.IsIdentifier(schema.Package.Name) {
		return nil, argenum.Errorf(argenum.CodeInvalidConfig, "invalid package name %q", schema.Package.Name)
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	if len(schema.Enums) == 0 {
		return nil, argenum.Errorf(argenum.CodeInvalidConfig, "package %s has no enums to generate", schema.Package.Name)
	}

	path := schema.Output
	if path == "" {
		path = opts.Config.Output
	}
	if path == "" {
		path = DefaultOutput
	}
	if err := sink.ValidatePath(path); err != nil {
		return nil, argenum.Errorf(argenum.CodeInvalidConfig, "output %q: %v", path, err)
	}

	src, err := Format(path, schema, opts.Config.Separator)
	if err != nil {
		return nil, err
	}
	if err := opts.Sink.WriteFile(ctx, path, src); err != nil {
		return nil, argenum.Errorf(argenum.CodeInternal, "write %s: %v", path, err)
	}

	return &GenerateResult{
		Files:          []OutputFile{{Path: path, Size: int64(len(src))}},
		EnumsGenerated: len(schema.Enums),
		Warnings:       append([]ir.Warning(nil), schema.Warnings...),
	}, nil
}

// Format emits the schema and gofmt-formats the result. filename is only
// used in error messages.
func Format(filename string, schema *ir.Schema, separator string) ([]byte, error) {
	var buf bytes.Buffer
	e := &Emitter{Separator: separator}
	e.EmitFile(&buf, schema)

	out, err := imports.Process(filename, buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, argenum.Errorf(argenum.CodeInternal, "format generated code: %v", err).
			WithDetail("source", buf.String())
	}
	return out, nil
}
