// Package directive parses argenum attributes from Go type declarations.
//
// Attributes are line comments in the doc comment of a type:
//
//	//argenum:enum [trimprefix=Prefix] [linecomment] [text]
//	//argenum:case_sensitive
//
// The enum attribute selects the type for generation; its arguments are
// key=value options (a bare key means key=true). The case_sensitive attribute
// switches parsing to exact matching; any text after it is ignored.
package directive

import (
	"fmt"
	"go/ast"
	"go/token"
	"net/url"
	"strings"

	"github.com/gorilla/schema"

	"github.com/broady/argenum"
)

// Prefix starts every argenum attribute comment.
const Prefix = "//argenum:"

// Kind identifies an attribute.
type Kind string

const (
	KindEnum          Kind = "enum"
	KindCaseSensitive Kind = "case_sensitive"
)

// Attribute is a single //argenum: line.
type Attribute struct {
	Kind Kind
	Args []string
	Pos  token.Position
}

// Options are the key=value arguments of the enum attribute.
type Options struct {
	// TrimPrefix is removed from constant names to form labels.
	TrimPrefix string `schema:"trimprefix"`

	// LineComment uses a constant's trailing comment as its label.
	LineComment bool `schema:"linecomment"`

	// Text adds an UnmarshalText method.
	Text bool `schema:"text"`
}

// TypeDirective collects the attributes attached to one type declaration.
type TypeDirective struct {
	TypeName string
	Attrs    []Attribute
	Options  Options
	Pos      token.Position
}

// Has reports whether an attribute of kind k is present.
func (d TypeDirective) Has(k Kind) bool {
	for _, a := range d.Attrs {
		if a.Kind == k {
			return true
		}
	}
	return false
}

// Selected reports whether the type asked for generation.
func (d TypeDirective) Selected() bool { return d.Has(KindEnum) }

// CaseSensitive reports whether the case_sensitive marker is present.
// Its value, if any, is irrelevant.
func (d TypeDirective) CaseSensitive() bool { return d.Has(KindCaseSensitive) }

var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(false)
	return d
}()

// ParseFiles extracts type directives from the files of one package,
// in source order.
//
// Returns an error if:
//   - an attribute name is unknown
//   - an enum option is unknown, repeated, or has a bad value
//   - an attribute is not part of a type declaration's doc comment
func ParseFiles(fset *token.FileSet, files []*ast.File) ([]TypeDirective, error) {
	var all []TypeDirective
	for _, f := range files {
		ds, err := ParseFile(fset, f)
		if err != nil {
			return nil, err
		}
		all = append(all, ds...)
	}
	return all, nil
}

// ParseFile extracts type directives from a single file.
func ParseFile(fset *token.FileSet, f *ast.File) ([]TypeDirective, error) {
	// Every attribute comment must end up claimed by a type declaration.
	unclaimed := make(map[token.Pos]Attribute)
	for _, cg := range f.Comments {
		for _, c := range cg.List {
			attr, ok, err := parseComment(fset, c)
			if err != nil {
				return nil, err
			}
			if ok {
				unclaimed[c.Pos()] = attr
			}
		}
	}

	var directives []TypeDirective
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
			if doc == nil {
				continue
			}

			d := TypeDirective{
				TypeName: ts.Name.Name,
				Pos:      fset.Position(ts.Name.Pos()),
			}
			for _, c := range doc.List {
				attr, ok := unclaimed[c.Pos()]
				if !ok {
					continue
				}
				delete(unclaimed, c.Pos())
				d.Attrs = append(d.Attrs, attr)
			}
			if len(d.Attrs) == 0 {
				continue
			}

			for _, a := range d.Attrs {
				if a.Kind != KindEnum {
					continue
				}
				opts, err := DecodeOptions(a.Args)
				if err != nil {
					return nil, argenum.NewError(argenum.CodeMalformedInput, err.Error()).
						ForType(d.TypeName).At(a.Pos)
				}
				d.Options = opts
			}
			directives = append(directives, d)
		}
	}

	for _, a := range unclaimed {
		return nil, argenum.Errorf(argenum.CodeMalformedInput,
			"%s%s must be in the doc comment of a type declaration", Prefix, a.Kind).At(a.Pos)
	}

	return directives, nil
}

func parseComment(fset *token.FileSet, c *ast.Comment) (Attribute, bool, error) {
	if !strings.HasPrefix(c.Text, Prefix) {
		return Attribute{}, false, nil
	}

	pos := fset.Position(c.Pos())
	parts := strings.Fields(strings.TrimPrefix(c.Text, Prefix))
	if len(parts) == 0 {
		return Attribute{}, false, argenum.NewError(argenum.CodeMalformedInput,
			"empty "+Prefix+" attribute").At(pos)
	}

	kind := Kind(parts[0])
	switch kind {
	case KindEnum, KindCaseSensitive:
	default:
		return Attribute{}, false, argenum.Errorf(argenum.CodeMalformedInput,
			"unknown attribute %s%s", Prefix, parts[0]).At(pos)
	}

	return Attribute{Kind: kind, Args: parts[1:], Pos: pos}, true, nil
}

// DecodeOptions turns enum attribute arguments into Options.
func DecodeOptions(args []string) (Options, error) {
	values := url.Values{}
	for _, arg := range args {
		key, value, found := strings.Cut(arg, "=")
		if !found {
			value = "true"
		}
		if key == "" {
			return Options{}, fmt.Errorf("malformed option %q", arg)
		}
		if values.Has(key) {
			return Options{}, fmt.Errorf("option %q given more than once", key)
		}
		values.Set(key, value)
	}

	var opts Options
	if err := decoder.Decode(&opts, values); err != nil {
		return Options{}, fmt.Errorf("bad enum options: %w", err)
	}
	return opts, nil
}
