package ir

import (
	"errors"
	"strings"
)

// ErrorPrefix starts every parse failure message.
const ErrorPrefix = "valid values: "

// DefaultSeparator joins labels in parse failure messages.
const DefaultSeparator = ", "

// EnumDescription is the generation-time view of an enum declaration.
type EnumDescription struct {
	// Name is the type identifier.
	Name GoIdentifier

	// Underlying is the Go basic type the enum is defined over, e.g. "int".
	Underlying string `validate:"required,oneof=int int8 int16 int32 int64 uint uint8 uint16 uint32 uint64 uintptr string"`

	// Variants in declaration order.
	Variants []Variant `validate:"min=1,unique=Ident,dive"`

	// CaseSensitive selects exact matching instead of ASCII case folding.
	CaseSensitive bool

	// Declare asks the emitter to write the type and its const block.
	// Set for enums that only exist in a schema file.
	Declare bool

	// Text asks the emitter to add an UnmarshalText method.
	Text bool

	// Documentation for this type.
	Documentation Documentation

	// Source location of the type declaration.
	Source Source
}

// Variant is a single unit variant of an enum.
type Variant struct {
	// Ident is the Go constant identifier.
	Ident string `validate:"required,goident"`

	// Label is the display string used for matching and listing.
	Label string `validate:"required"`

	// Source location of the constant.
	Source Source
}

// VariantNameTable lists variant labels positionally aligned with
// EnumDescription.Variants.
type VariantNameTable []string

// Join renders the table the way parse failures list it.
func (t VariantNameTable) Join(sep string) string {
	return strings.Join(t, sep)
}

// NameTable returns the labels in declaration order.
func (d *EnumDescription) NameTable() VariantNameTable {
	names := make(VariantNameTable, len(d.Variants))
	for i, v := range d.Variants {
		names[i] = v.Label
	}
	return names
}

// FailureMessage is the text of the error returned for unmatched input.
func (d *EnumDescription) FailureMessage(sep string) string {
	if sep == "" {
		sep = DefaultSeparator
	}
	return ErrorPrefix + d.NameTable().Join(sep)
}

// Resolve applies the parse contract the generated code implements:
// variants are tried in declaration order and the first match wins.
// It returns the matched variant and its index.
func (d *EnumDescription) Resolve(input string) (Variant, int, error) {
	for i, v := range d.Variants {
		if Match(d.CaseSensitive, input, v.Label) {
			return v, i, nil
		}
	}
	return Variant{}, -1, errors.New(d.FailureMessage(DefaultSeparator))
}

// Match compares input against a label with the selected comparison.
func Match(caseSensitive bool, input, label string) bool {
	if caseSensitive {
		return input == label
	}
	return EqualFoldASCII(input, label)
}

// EqualFoldASCII reports whether a and b are equal when ASCII letters are
// folded to lower case. Other bytes must match exactly.
func EqualFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if lowerASCII(a[i]) != lowerASCII(b[i]) {
			return false
		}
	}
	return true
}

func lowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
