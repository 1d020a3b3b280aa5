// Package enumgen generates string parsing functions for Go enums.
//
// An enum is a defined integer or string type plus its constants. For each
// one the generator writes a parse function that maps a name back to the
// constant and a function listing every name:
//
//	//argenum:enum
//	type Color int
//
//	const (
//		Red Color = iota
//		Green
//		Blue
//	)
//
// becomes ParseColor(string) (Color, error), which accepts "red", "RED"
// and so on and otherwise fails with "valid values: Red, Green, Blue", and
// ColorVariants() [3]string. A //argenum:case_sensitive line turns off case
// folding.
//
// Typical use from go:generate:
//
//	enumgen.FromPackages(".").Generate(ctx)
package enumgen

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/broady/argenum"
	"github.com/broady/argenum/enumgen/golang"
	"github.com/broady/argenum/enumgen/ir"
	"github.com/broady/argenum/enumgen/provider"
	"github.com/broady/argenum/enumgen/sink"
	"github.com/broady/argenum/internal/overlay"
)

// Generator provides a fluent API for enum generation.
// Create with FromPackages() or FromSchemaFiles() and configure with method
// chaining.
//
// Example:
//
//	result, err := enumgen.FromPackages("./...").
//	    Types("Color", "Mode").
//	    Separator(" | ").
//	    Generate(ctx)
type Generator struct {
	cfg Config
}

// FromPackages creates a Generator that extracts enums from Go packages.
func FromPackages(patterns ...string) *Generator {
	return &Generator{cfg: Config{Packages: patterns}}
}

// FromSchemaFiles creates a Generator that reads enums from YAML schema
// files. Each file's package is written next to it.
func FromSchemaFiles(files ...string) *Generator {
	return &Generator{cfg: Config{SchemaFiles: files}}
}

// FromConfig creates a Generator from a prepared Config.
func FromConfig(cfg Config) *Generator {
	return &Generator{cfg: cfg}
}

// SchemaFiles adds YAML schema files to a Generator.
func (g *Generator) SchemaFiles(files ...string) *Generator {
	g.cfg.SchemaFiles = append(g.cfg.SchemaFiles, files...)
	return g
}

// Types restricts generation to the named types.
func (g *Generator) Types(names ...string) *Generator {
	g.cfg.Types = append(g.cfg.Types, names...)
	return g
}

// Output sets the generated file name.
func (g *Generator) Output(name string) *Generator {
	g.cfg.Output = name
	return g
}

// Separator sets the label separator used in parse failure messages.
func (g *Generator) Separator(sep string) *Generator {
	g.cfg.Separator = sep
	return g
}

// Text adds UnmarshalText methods to every generated enum.
func (g *Generator) Text() *Generator {
	g.cfg.Text = true
	return g
}

// TrimPrefix sets the default constant name prefix removed from labels.
func (g *Generator) TrimPrefix(prefix string) *Generator {
	g.cfg.TrimPrefix = prefix
	return g
}

// LineComment uses trailing const comments as labels.
func (g *Generator) LineComment() *Generator {
	g.cfg.LineComment = true
	return g
}

// Dir sets the working directory.
func (g *Generator) Dir(dir string) *Generator {
	g.cfg.Dir = dir
	return g
}

// BuildTags sets build tags for package loading.
func (g *Generator) BuildTags(tags ...string) *Generator {
	g.cfg.BuildTags = append(g.cfg.BuildTags, tags...)
	return g
}

// Force allows replacing files argenum did not generate.
func (g *Generator) Force() *Generator {
	g.cfg.Force = true
	return g
}

// Logger sets the logger for progress output.
func (g *Generator) Logger(l *slog.Logger) *Generator {
	g.cfg.Logger = l
	return g
}

// Result describes a generation or check run.
type Result struct {
	// Files are the generated file paths, one per package, sorted.
	Files []string

	// Enums is the number of enums generated.
	Enums int

	// Warnings are non-fatal issues from every package.
	Warnings []ir.Warning

	// Stale lists files whose content on disk differs from what would be
	// generated. Only set by Check.
	Stale []string
}

// Schemas extracts and validates every enum. All failures are reported
// together; on error no schemas are returned.
func (g *Generator) Schemas(ctx context.Context) ([]*ir.Schema, error) {
	cfg := applyConfigDefaults(&g.cfg)
	return buildSchemas(ctx, cfg)
}

// Generate writes one file per package. Every package is validated and
// emitted, and every destination checked, before anything is written, so
// a failing enum or a hand-written file in the way leaves the tree
// untouched.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	cfg := applyConfigDefaults(&g.cfg)
	all, err := buildSchemas(ctx, cfg)
	if err != nil {
		return nil, err
	}
	schemas := nonEmpty(all)

	type pending struct {
		fs      *sink.FilesystemSink
		path    string
		content []byte
	}
	writes := make([]pending, len(schemas))

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, schema := range schemas {
		eg.Go(func() error {
			mem := sink.NewMemorySink()
			path, err := emit(egctx, schema, cfg, mem)
			if err != nil {
				return err
			}
			fs := sink.NewFilesystemSink(schema.Package.Dir)
			fs.Force = cfg.Force
			if err := fs.CanWrite(path); err != nil {
				return argenum.Errorf(argenum.CodeInternal, "write %s: %v", path, err).
					WithDetail("package", describe(schema))
			}
			writes[i] = pending{fs: fs, path: path, content: mem.Get(path)}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := newCollector(all)
	eg, egctx = errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for _, w := range writes {
		eg.Go(func() error {
			if err := sink.Logging(w.fs, cfg.Logger).WriteFile(egctx, w.path, w.content); err != nil {
				return argenum.Errorf(argenum.CodeInternal, "write %s: %v", w.path, err)
			}
			out.addFile(filepath.Join(w.fs.Root, w.path))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	result := out.result()
	logWarnings(ctx, cfg.Logger, result.Warnings)
	return result, nil
}

// Check emits every package in memory and type-checks it with the
// generated file overlaid. Nothing is written. Files on disk that differ
// from the fresh output are reported in Result.Stale.
func (g *Generator) Check(ctx context.Context) (*Result, error) {
	cfg := applyConfigDefaults(&g.cfg)
	all, err := buildSchemas(ctx, cfg)
	if err != nil {
		return nil, err
	}
	schemas := nonEmpty(all)

	out := newCollector(all)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for _, schema := range schemas {
		eg.Go(func() error {
			mem := sink.NewMemorySink()
			path, err := emit(ctx, schema, cfg, mem)
			if err != nil {
				return err
			}
			content := mem.Get(path)

			if err := overlay.Check(ctx, overlay.Options{
				Dir:       schema.Package.Dir,
				Files:     map[string][]byte{path: content},
				BuildTags: cfg.BuildTags,
			}); err != nil {
				return argenum.FromError(err).WithDetail("package", schema.Package.Name)
			}

			full := filepath.Join(schema.Package.Dir, path)
			out.addFile(full)
			if existing, err := os.ReadFile(full); err != nil || !bytes.Equal(existing, content) {
				out.addStale(full)
			}
			cfg.Logger.DebugContext(ctx, "checked package",
				slog.String("dir", schema.Package.Dir),
				slog.Int("enums", len(schema.Enums)),
			)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	result := out.result()
	logWarnings(ctx, cfg.Logger, result.Warnings)
	return result, nil
}

func buildSchemas(ctx context.Context, cfg *Config) ([]*ir.Schema, error) {
	if len(cfg.Packages) == 0 && len(cfg.SchemaFiles) == 0 {
		return nil, argenum.NewError(argenum.CodeInvalidConfig, "no packages or schema files specified")
	}
	if err := sink.ValidatePath(cfg.Output); err != nil {
		return nil, argenum.Errorf(argenum.CodeInvalidConfig, "output %q: %v", cfg.Output, err)
	}

	var schemas []*ir.Schema
	if len(cfg.Packages) > 0 {
		p := &provider.SourceProvider{Logger: cfg.Logger}
		s, err := p.BuildSchemas(ctx, provider.SourceInputOptions{
			Packages:    cfg.Packages,
			Dir:         cfg.Dir,
			Types:       cfg.Types,
			BuildTags:   cfg.BuildTags,
			TrimPrefix:  cfg.TrimPrefix,
			LineComment: cfg.LineComment,
			Text:        cfg.Text,
		})
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, s...)
	}
	if len(cfg.SchemaFiles) > 0 {
		files := make([]string, len(cfg.SchemaFiles))
		for i, f := range cfg.SchemaFiles {
			if cfg.Dir != "" && !filepath.IsAbs(f) {
				f = filepath.Join(cfg.Dir, f)
			}
			files[i] = f
		}
		p := &provider.SchemaProvider{}
		s, err := p.BuildSchemas(ctx, provider.SchemaInputOptions{Files: files, Text: cfg.Text})
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, s...)
	}

	// Each directory gets at most one generated file: two would each
	// declare the fold helper.
	var errs []error
	dirs := make(map[string]*ir.Schema, len(schemas))
	for _, s := range schemas {
		if err := s.Validate(); err != nil {
			errs = append(errs, err)
		}
		if len(s.Enums) == 0 {
			continue
		}
		dir := absDir(s.Package.Dir)
		if prev, ok := dirs[dir]; ok {
			errs = append(errs, argenum.Errorf(argenum.CodeInvalidConfig,
				"%s and %s would both generate into %s", describe(prev), describe(s), dir))
			continue
		}
		dirs[dir] = s
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return schemas, nil
}

func emit(ctx context.Context, schema *ir.Schema, cfg *Config, out sink.OutputSink) (string, error) {
	gen := &golang.Generator{}
	res, err := gen.Generate(ctx, schema, golang.GenerateOptions{
		Sink: out,
		Config: golang.GeneratorConfig{
			Output:    cfg.Output,
			Separator: cfg.Separator,
		},
	})
	if err != nil {
		return "", err
	}
	return res.Files[0].Path, nil
}

func outputName(s *ir.Schema, cfg *Config) string {
	if s.Output != "" {
		return s.Output
	}
	return cfg.Output
}

func describe(s *ir.Schema) string {
	switch {
	case s.Package.Path != "":
		return s.Package.Path
	case len(s.Enums) > 0 && s.Enums[0].Source.File != "":
		return s.Enums[0].Source.File
	}
	return s.Package.Name
}

func absDir(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return filepath.Clean(dir)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real
	}
	return abs
}

// nonEmpty drops schemas without enums. A file for one would import
// errors and never use it.
func nonEmpty(schemas []*ir.Schema) []*ir.Schema {
	kept := schemas[:0:0]
	for _, s := range schemas {
		if len(s.Enums) > 0 {
			kept = append(kept, s)
		}
	}
	return kept
}

func logWarnings(ctx context.Context, logger *slog.Logger, warnings []ir.Warning) {
	for _, w := range warnings {
		logger.WarnContext(ctx, w.Message,
			slog.String("code", w.Code),
			slog.String("type", w.TypeName),
			slog.String("source", sourceString(w.Source)),
		)
	}
}

func sourceString(s *ir.Source) string {
	if s == nil {
		return ""
	}
	return s.String()
}

// collector gathers per-package results from concurrent workers.
type collector struct {
	mu       sync.Mutex
	files    []string
	stale    []string
	enums    int
	warnings []ir.Warning
}

func newCollector(schemas []*ir.Schema) *collector {
	c := &collector{}
	for _, s := range schemas {
		c.enums += len(s.Enums)
		c.warnings = append(c.warnings, s.Warnings...)
	}
	return c
}

func (c *collector) addFile(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files = append(c.files, path)
}

func (c *collector) addStale(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stale = append(c.stale, path)
}

func (c *collector) result() *Result {
	sort.Strings(c.files)
	sort.Strings(c.stale)
	return &Result{
		Files:    c.files,
		Enums:    c.enums,
		Warnings: c.warnings,
		Stale:    c.stale,
	}
}
