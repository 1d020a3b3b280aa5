package ir

import (
	"go/token"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/broady/argenum"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Registration only fails for empty tags or nil funcs.
		_ = validate.RegisterValidation("goident", func(fl validator.FieldLevel) bool {
			return IsIdentifier(fl.Field().String())
		})
	})
	return validate
}

// FoldHelperName is the unexported helper generated files declare for
// ASCII case-insensitive comparison.
const FoldHelperName = "argenumEqualFold"

// reserved holds names generated code refers to unqualified. A package
// constant or type with one of these names shadows the import, helper, or
// predeclared identifier and the generated file stops compiling.
var reserved = map[string]bool{
	"errors":       true,
	FoldHelperName: true,
	"bool":         true,
	"byte":         true,
	"error":        true,
	"false":        true,
	"len":          true,
	"nil":          true,
	"string":       true,
	"true":         true,
}

// IsReserved reports whether name collides with a name generated code uses.
func IsReserved(name string) bool {
	return reserved[name]
}

// IsIdentifier reports whether s can name a Go constant or type:
// a non-keyword, non-blank identifier.
func IsIdentifier(s string) bool {
	return s != "_" && token.IsIdentifier(s)
}

// Validate checks the description before anything is emitted for it.
// Structural problems are malformed_input, an empty variant list is
// no_variants, and labels that collide under the active comparison are
// duplicate_label.
func (d *EnumDescription) Validate() error {
	if err := structValidator().Struct(d); err != nil {
		return d.attribute(argenum.FromError(err))
	}

	if IsReserved(d.Name.Name) {
		return d.attribute(argenum.Errorf(argenum.CodeMalformedInput,
			"type name %s is reserved by generated code", d.Name.Name))
	}
	for _, v := range d.Variants {
		if !IsReserved(v.Ident) {
			continue
		}
		err := argenum.Errorf(argenum.CodeMalformedInput,
			"constant name %s is reserved by generated code", v.Ident).
			WithDetail("variant", v.Ident)
		if !v.Source.IsZero() {
			return d.attribute(err).At(v.Source.Position())
		}
		return d.attribute(err)
	}

	for i := range d.Variants {
		for j := 0; j < i; j++ {
			a, b := d.Variants[j], d.Variants[i]
			if !Match(d.CaseSensitive, a.Label, b.Label) {
				continue
			}
			comparison := "case-insensitively"
			if d.CaseSensitive {
				comparison = "exactly"
			}
			err := argenum.Errorf(argenum.CodeDuplicateLabel,
				"variants %s and %s both match %q %s", a.Ident, b.Ident, b.Label, comparison).
				WithDetail("first", a.Ident).
				WithDetail("second", b.Ident)
			if !b.Source.IsZero() {
				return d.attribute(err).At(b.Source.Position())
			}
			return d.attribute(err)
		}
	}

	return nil
}

func (d *EnumDescription) attribute(err *argenum.Error) *argenum.Error {
	err = err.ForType(d.Name.Name)
	if !d.Source.IsZero() && !err.Pos.IsValid() {
		err = err.At(d.Source.Position())
	}
	return err
}
