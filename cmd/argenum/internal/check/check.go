// Package check implements "argenum check".
package check

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/davecgh/go-spew/spew"

	"github.com/broady/argenum/cmd/argenum/internal/gen"
	"github.com/broady/argenum/enumgen/ir"
)

// ErrStale is returned when generated files on disk are out of date.
var ErrStale = errors.New("generated files are out of date; run argenum gen")

// Cmd is "argenum check".
type Cmd struct {
	gen.Selection `embed:""`

	Dump bool     `help:"Print the extracted enum descriptions."`
	Try  []string `help:"Resolve these inputs against every selected enum and print the outcome."`
}

func (c *Cmd) Run(ctx context.Context, logger *slog.Logger, out io.Writer) error {
	g := c.Generator(logger)

	if c.Dump || len(c.Try) > 0 {
		schemas, err := g.Schemas(ctx)
		if err != nil {
			return err
		}
		if c.Dump {
			dump(out, schemas)
		}
		for _, s := range schemas {
			for _, e := range s.Enums {
				try(out, e, c.Try, c.Separator)
			}
		}
	}

	result, err := g.Check(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ %d enums in %d files\n", result.Enums, len(result.Files))
	for _, w := range result.Warnings {
		fmt.Fprintf(out, "! %s\n", w)
	}
	for _, f := range result.Stale {
		fmt.Fprintf(out, "✗ stale: %s\n", f)
	}
	if len(result.Stale) > 0 {
		return ErrStale
	}
	fmt.Fprintln(out, "✓ generated code compiles")
	return nil
}

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func dump(w io.Writer, schemas []*ir.Schema) {
	for _, s := range schemas {
		dumper.Fdump(w, s)
	}
}

// try reports what the generated parse function would return for each
// input.
func try(w io.Writer, e *ir.EnumDescription, inputs []string, sep string) {
	for _, in := range inputs {
		v, i, err := e.Resolve(in)
		if err != nil {
			msg := err.Error()
			if sep != "" {
				msg = e.FailureMessage(sep)
			}
			fmt.Fprintf(w, "%s(%q): error: %s\n", e.Name.Name, in, msg)
			continue
		}
		fmt.Fprintf(w, "%s(%q) = %s [%d]\n", e.Name.Name, in, v.Ident, i)
	}
}
