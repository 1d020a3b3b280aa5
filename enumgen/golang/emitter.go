// Package golang emits Go source for enum descriptions.
package golang

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/broady/argenum/enumgen/ir"
	"github.com/broady/argenum/enumgen/sink"
)

// FoldHelperName is the unexported function generated files use for
// ASCII case-insensitive comparison. One generated file per package
// carries it.
const FoldHelperName = ir.FoldHelperName

// inputParam names the parse function's parameter. Case arms refer to
// package-level constants by name, so it must not be a plausible
// constant name.
const inputParam = "argenumInput"

// Emitter writes the Go declarations for a schema.
type Emitter struct {
	// Separator joins labels in parse failure messages.
	Separator string
}

// ParseFuncName is the name of the generated parse function for an enum.
func ParseFuncName(typeName string) string {
	r, size := utf8.DecodeRuneInString(typeName)
	if unicode.IsUpper(r) {
		return "Parse" + typeName
	}
	return "parse" + string(unicode.ToUpper(r)) + typeName[size:]
}

// VariantsFuncName is the name of the generated variant listing for an enum.
func VariantsFuncName(typeName string) string {
	return typeName + "Variants"
}

// EmitFile writes a complete, unformatted Go file for the schema.
func (e *Emitter) EmitFile(buf *bytes.Buffer, schema *ir.Schema) {
	buf.Write(sink.GeneratedMarker)
	buf.WriteString("\n\n")
	fmt.Fprintf(buf, "package %s\n\n", schema.Package.Name)
	buf.WriteString("import \"errors\"\n")

	for _, enum := range schema.Enums {
		if enum.Declare {
			e.emitDeclaration(buf, enum)
		}
		e.emitParse(buf, enum)
		e.emitVariants(buf, enum)
		if enum.Text {
			e.emitUnmarshalText(buf, enum)
		}
	}

	if schema.NeedsFoldHelper() {
		e.emitFoldHelper(buf)
	}
}

// emitDeclaration writes the type and its constants.
func (e *Emitter) emitDeclaration(buf *bytes.Buffer, enum *ir.EnumDescription) {
	name := enum.Name.Name
	buf.WriteString("\n")
	if !enum.Documentation.IsZero() {
		emitDoc(buf, "", enum.Documentation.Body)
	}
	fmt.Fprintf(buf, "type %s %s\n\n", name, enum.Underlying)

	buf.WriteString("const (\n")
	for i, v := range enum.Variants {
		switch {
		case enum.Underlying == "string":
			fmt.Fprintf(buf, "\t%s %s = %s\n", v.Ident, name, strconv.Quote(v.Label))
		case i == 0:
			fmt.Fprintf(buf, "\t%s %s = iota\n", v.Ident, name)
		default:
			fmt.Fprintf(buf, "\t%s\n", v.Ident)
		}
	}
	buf.WriteString(")\n")
}

// emitParse writes the string-to-value conversion. Arms follow declaration
// order so the first matching variant wins.
func (e *Emitter) emitParse(buf *bytes.Buffer, enum *ir.EnumDescription) {
	name := enum.Name.Name
	fn := ParseFuncName(name)

	buf.WriteString("\n")
	if enum.CaseSensitive {
		fmt.Fprintf(buf, "// %s returns the %s with the given name. Names must match exactly.\n", fn, name)
	} else {
		fmt.Fprintf(buf, "// %s returns the %s with the given name, ignoring ASCII case.\n", fn, name)
	}
	fmt.Fprintf(buf, "func %s(%s string) (%s, error) {\n", fn, inputParam, name)

	if enum.CaseSensitive {
		fmt.Fprintf(buf, "\tswitch %s {\n", inputParam)
		for _, v := range enum.Variants {
			fmt.Fprintf(buf, "\tcase %s:\n\t\treturn %s, nil\n", strconv.Quote(v.Label), v.Ident)
		}
	} else {
		buf.WriteString("\tswitch {\n")
		for _, v := range enum.Variants {
			fmt.Fprintf(buf, "\tcase %s(%s, %s):\n\t\treturn %s, nil\n", FoldHelperName, inputParam, strconv.Quote(v.Label), v.Ident)
		}
	}
	buf.WriteString("\t}\n")

	fmt.Fprintf(buf, "\tvar zero %s\n", name)
	fmt.Fprintf(buf, "\treturn zero, errors.New(%s)\n", strconv.Quote(enum.FailureMessage(e.Separator)))
	buf.WriteString("}\n")
}

// emitVariants writes the fixed-size listing of labels.
func (e *Emitter) emitVariants(buf *bytes.Buffer, enum *ir.EnumDescription) {
	name := enum.Name.Name
	fn := VariantsFuncName(name)
	n := len(enum.Variants)

	quoted := make([]string, n)
	for i, label := range enum.NameTable() {
		quoted[i] = strconv.Quote(label)
	}

	buf.WriteString("\n")
	fmt.Fprintf(buf, "// %s returns the names accepted by %s, in declaration order.\n", fn, ParseFuncName(name))
	fmt.Fprintf(buf, "func %s() [%d]string {\n", fn, n)
	fmt.Fprintf(buf, "\treturn [%d]string{%s}\n", n, strings.Join(quoted, ", "))
	buf.WriteString("}\n")
}

func (e *Emitter) emitUnmarshalText(buf *bytes.Buffer, enum *ir.EnumDescription) {
	name := enum.Name.Name
	fn := ParseFuncName(name)

	buf.WriteString("\n")
	fmt.Fprintf(buf, "// UnmarshalText implements encoding.TextUnmarshaler using %s.\n", fn)
	fmt.Fprintf(buf, "func (x *%s) UnmarshalText(text []byte) error {\n", name)
	fmt.Fprintf(buf, "\tv, err := %s(string(text))\n", fn)
	buf.WriteString("\tif err != nil {\n\t\treturn err\n\t}\n")
	buf.WriteString("\t*x = v\n\treturn nil\n}\n")
}

func (e *Emitter) emitFoldHelper(buf *bytes.Buffer) {
	buf.WriteString("\n")
	fmt.Fprintf(buf, "// %s reports whether s and t are equal under ASCII case folding.\n", FoldHelperName)
	fmt.Fprintf(buf, "func %s(s, t string) bool {\n", FoldHelperName)
	buf.WriteString(`	if len(s) != len(t) {
		return false
	}
	for i := 0; i < len(s); i++ {
		a, b := s[i], t[i]
		if 'A' <= a && a <= 'Z' {
			a += 'a' - 'A'
		}
		if 'A' <= b && b <= 'Z' {
			b += 'a' - 'A'
		}
		if a != b {
			return false
		}
	}
	return true
}
`)
}

func emitDoc(buf *bytes.Buffer, indent, text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		buf.WriteString(indent)
		if line == "" {
			buf.WriteString("//\n")
			continue
		}
		buf.WriteString("// ")
		buf.WriteString(line)
		buf.WriteString("\n")
	}
}
