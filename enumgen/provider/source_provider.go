// Package provider builds enum descriptions from Go packages or schema files.
package provider

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/broady/argenum"
	"github.com/broady/argenum/enumgen/ir"
	"github.com/broady/argenum/enumgen/sink"
	"github.com/broady/argenum/internal/directive"
)

// LoadMode is what the source provider needs from go/packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo

// SourceProvider extracts enums by analyzing Go source code.
//
// An enum is a defined type over an integer or string type together with
// the constants of exactly that type declared at package level. Constants
// are taken in declaration order: files in the order go/packages lists
// them, then source position.
type SourceProvider struct {
	// Logger receives debug output. Nil means slog.Default().
	Logger *slog.Logger
}

// SourceInputOptions configures source-based extraction.
type SourceInputOptions struct {
	// Packages are go/packages patterns, e.g. "." or "./...".
	Packages []string

	// Dir is the working directory for loading. Empty means the current one.
	Dir string

	// Types restricts generation to these type names. When empty, every
	// type carrying //argenum:enum is generated.
	Types []string

	// BuildTags are passed to the build system as -tags.
	BuildTags []string

	// TrimPrefix, LineComment and Text apply to types that do not set the
	// corresponding //argenum:enum option themselves.
	TrimPrefix  string
	LineComment bool
	Text        bool
}

// BuildSchemas loads the packages and returns one schema per package that
// declares at least one selected enum, sorted by import path.
// Schemas are not validated; the generator does that before emitting.
func (p *SourceProvider) BuildSchemas(ctx context.Context, opts SourceInputOptions) ([]*ir.Schema, error) {
	if len(opts.Packages) == 0 {
		return nil, argenum.NewError(argenum.CodeInvalidConfig, "no packages specified")
	}

	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cfg := &packages.Config{
		Context: ctx,
		Mode:    LoadMode,
		Dir:     opts.Dir,
	}
	if len(opts.BuildTags) > 0 {
		cfg.BuildFlags = []string{"-tags=" + strings.Join(opts.BuildTags, ",")}
	}

	pkgs, err := packages.Load(cfg, opts.Packages...)
	if err != nil {
		return nil, argenum.Errorf(argenum.CodeInternal, "failed to load packages: %v", err)
	}
	if len(pkgs) == 0 {
		return nil, argenum.Errorf(argenum.CodeNotFound, "no packages found matching %q", opts.Packages)
	}
	for _, pkg := range pkgs {
		if err := packageError(pkg); err != nil {
			return nil, err
		}
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].PkgPath < pkgs[j].PkgPath })

	var (
		schemas []*ir.Schema
		errs    []error
		found   = make(map[string]bool)
	)
	for _, pkg := range pkgs {
		b := &packageBuilder{pkg: pkg, opts: opts, logger: logger, found: found}
		schema, err := b.build()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if len(schema.Enums) == 0 {
			logger.DebugContext(ctx, "no enums in package", slog.String("package", pkg.PkgPath))
			continue
		}
		schemas = append(schemas, schema)
	}

	// A requested type only has to exist in one of the loaded packages.
	for _, name := range opts.Types {
		if !found[name] {
			errs = append(errs, argenum.Errorf(argenum.CodeNotFound,
				"type not found in %s", strings.Join(opts.Packages, " ")).ForType(name))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return schemas, nil
}

// packageError reports the first load or type error of pkg. Errors inside
// previously generated files are ignored: a stale file referring to a
// renamed constant must not prevent regenerating it.
func packageError(pkg *packages.Package) error {
	generated := make(map[string]bool)
	for _, f := range pkg.Syntax {
		if isGenerated(f) {
			generated[pkg.Fset.Position(f.Pos()).Filename] = true
		}
	}
	for _, e := range pkg.Errors {
		file := errorFile(e.Pos)
		if generated[file] {
			continue
		}
		// Positionless type errors accompany broken generated files.
		if e.Kind == packages.TypeError && len(generated) > 0 && (file == "" || file == "-") {
			continue
		}
		return argenum.Errorf(argenum.CodeInternal, "package %s has errors: %v", pkg.PkgPath, e)
	}
	return nil
}

// errorFile strips ":line:col" from a packages.Error position.
func errorFile(pos string) string {
	for range 2 {
		if i := strings.LastIndexByte(pos, ':'); i >= 0 {
			pos = pos[:i]
		}
	}
	return pos
}

// isGenerated reports whether f starts with the argenum generated-code marker.
func isGenerated(f *ast.File) bool {
	if len(f.Comments) == 0 || f.Comments[0].Pos() > f.Package {
		return false
	}
	return f.Comments[0].List[0].Text == string(sink.GeneratedMarker)
}

// packageBuilder extracts the enums of a single package.
type packageBuilder struct {
	pkg    *packages.Package
	opts   SourceInputOptions
	logger *slog.Logger

	// found records requested type names that exist, across packages.
	found map[string]bool
}

type typeDecl struct {
	spec *ast.TypeSpec
	doc  *ast.CommentGroup
}

func (b *packageBuilder) build() (*ir.Schema, error) {
	pkg := b.pkg
	schema := &ir.Schema{
		Package: ir.PackageInfo{
			Path: pkg.PkgPath,
			Name: pkg.Name,
		},
	}
	if len(pkg.GoFiles) > 0 {
		schema.Package.Dir = filepath.Dir(pkg.GoFiles[0])
	}

	directives, err := directive.ParseFiles(pkg.Fset, pkg.Syntax)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]directive.TypeDirective, len(directives))
	for _, d := range directives {
		byName[d.TypeName] = d
	}

	var names []string
	if len(b.opts.Types) > 0 {
		names = b.opts.Types
	} else {
		for _, d := range directives {
			if d.Selected() {
				names = append(names, d.TypeName)
			}
		}
	}

	for _, d := range directives {
		if !contains(names, d.TypeName) {
			src := ir.SourceOf(d.Pos)
			schema.AddWarning(ir.Warning{
				Code:     "UNUSED_ATTRIBUTE",
				Message:  fmt.Sprintf("%s has argenum attributes but is not selected for generation", d.TypeName),
				Source:   &src,
				TypeName: d.TypeName,
			})
		}
	}

	decls := b.typeDecls()

	var errs []error
	for _, name := range names {
		if b.pkg.Types.Scope().Lookup(name) == nil {
			// Reported once by BuildSchemas if no package has it.
			continue
		}
		b.found[name] = true
		enum, err := b.extractEnum(name, byName[name], decls[name], schema)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		b.logger.Debug("extracted enum",
			slog.String("package", pkg.PkgPath),
			slog.String("type", name),
			slog.Int("variants", len(enum.Variants)),
			slog.Bool("case_sensitive", enum.CaseSensitive),
		)
		schema.AddEnum(enum)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return schema, nil
}

// typeDecls indexes the syntax of every package-level type declaration.
func (b *packageBuilder) typeDecls() map[string]typeDecl {
	decls := make(map[string]typeDecl)
	for _, f := range b.pkg.Syntax {
		for _, decl := range f.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, spec := range gd.Specs {
				ts := spec.(*ast.TypeSpec)
				doc := ts.Doc
				if doc == nil && len(gd.Specs) == 1 {
					doc = gd.Doc
				}
				decls[ts.Name.Name] = typeDecl{spec: ts, doc: doc}
			}
		}
	}
	return decls
}

// extractEnum builds the description of one selected type.
func (b *packageBuilder) extractEnum(name string, d directive.TypeDirective, decl typeDecl, schema *ir.Schema) (*ir.EnumDescription, error) {
	obj := b.pkg.Types.Scope().Lookup(name)
	pos := b.pkg.Fset.Position(obj.Pos())

	tn, ok := obj.(*types.TypeName)
	if !ok {
		return nil, argenum.Errorf(argenum.CodeMalformedInput, "%s is not a type", name).ForType(name).At(pos)
	}
	if tn.IsAlias() {
		return nil, argenum.NewError(argenum.CodeMalformedInput, "type aliases cannot be enums; use a defined type").ForType(name).At(pos)
	}
	named, ok := tn.Type().(*types.Named)
	if !ok {
		return nil, argenum.NewError(argenum.CodeMalformedInput, "not a defined type").ForType(name).At(pos)
	}
	if named.TypeParams().Len() > 0 {
		return nil, argenum.NewError(argenum.CodeMalformedInput, "generic types cannot be enums").ForType(name).At(pos)
	}
	basic, ok := named.Underlying().(*types.Basic)
	if !ok || (basic.Info()&types.IsInteger == 0 && basic.Kind() != types.String) {
		return nil, argenum.Errorf(argenum.CodeMalformedInput,
			"underlying type %s is not an integer or string type; only unit variants can be parsed", named.Underlying()).
			ForType(name).At(pos)
	}

	opts := d.Options
	if opts.TrimPrefix == "" {
		opts.TrimPrefix = b.opts.TrimPrefix
	}
	opts.LineComment = opts.LineComment || b.opts.LineComment
	opts.Text = opts.Text || b.opts.Text

	enum := &ir.EnumDescription{
		Name:          ir.GoIdentifier{Name: name, Package: b.pkg.PkgPath},
		Underlying:    types.Typ[basic.Kind()].Name(),
		CaseSensitive: d.CaseSensitive(),
		Text:          opts.Text,
		Documentation: parseDocumentation(decl.doc),
		Source:        ir.SourceOf(pos),
	}

	variants, err := b.collectVariants(named, opts, schema)
	if err != nil {
		return nil, argenum.FromError(err).ForType(name)
	}
	enum.Variants = variants
	return enum, nil
}

// collectVariants walks const declarations in source order.
func (b *packageBuilder) collectVariants(named *types.Named, opts directive.Options, schema *ir.Schema) ([]ir.Variant, error) {
	var variants []ir.Variant
	for _, f := range b.pkg.Syntax {
		for _, decl := range f.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.CONST {
				continue
			}
			for _, spec := range gd.Specs {
				vs := spec.(*ast.ValueSpec)
				for _, ident := range vs.Names {
					c, ok := b.pkg.TypesInfo.Defs[ident].(*types.Const)
					if !ok || !types.Identical(c.Type(), named) {
						continue
					}
					pos := b.pkg.Fset.Position(ident.Pos())
					src := ir.SourceOf(pos)

					if ident.Name == "_" {
						schema.AddWarning(ir.Warning{
							Code:     "BLANK_CONSTANT",
							Message:  "blank constant skipped",
							Source:   &src,
							TypeName: named.Obj().Name(),
						})
						continue
					}

					label := ident.Name
					if opts.TrimPrefix != "" {
						label = strings.TrimPrefix(label, opts.TrimPrefix)
					}
					if opts.LineComment && vs.Comment != nil {
						if text := strings.TrimSpace(vs.Comment.Text()); text != "" {
							label = text
						}
					}
					if label == "" {
						return nil, argenum.Errorf(argenum.CodeMalformedInput,
							"constant %s has no display name after trimming prefix %q", ident.Name, opts.TrimPrefix).At(pos)
					}

					variants = append(variants, ir.Variant{
						Ident:  ident.Name,
						Label:  label,
						Source: src,
					})
				}
			}
		}
	}
	return variants, nil
}

// parseDocumentation parses a comment group into Documentation.
// CommentGroup.Text drops //argenum: lines along with other directives.
func parseDocumentation(cg *ast.CommentGroup) ir.Documentation {
	if cg == nil {
		return ir.Documentation{}
	}
	body := strings.TrimSpace(cg.Text())
	if body == "" {
		return ir.Documentation{}
	}
	summary, _, _ := strings.Cut(body, "\n")
	return ir.Documentation{
		Summary: strings.TrimSpace(summary),
		Body:    body,
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
