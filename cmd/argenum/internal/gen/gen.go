// Package gen implements "argenum gen" and the selection flags shared with
// "argenum check".
package gen

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/broady/argenum/enumgen"
)

// Selection chooses which enums to generate and how.
type Selection struct {
	Packages    []string `help:"Packages to scan (default: current directory unless --schema is given)." short:"p" name:"package"`
	Types       []string `help:"Type names to generate, comma-separated. Default: types with //argenum:enum." short:"t" name:"type"`
	Schema      []string `help:"YAML schema files declaring enums to generate."`
	Dir         string   `help:"Run as if started in this directory." short:"C" type:"existingdir"`
	Output      string   `help:"Generated file name in each package directory (default: enums_argenum.go)." short:"o"`
	Separator   string   `help:"Separator between names in parse errors (default: \", \")."`
	Text        bool     `help:"Also generate UnmarshalText methods."`
	TrimPrefix  string   `help:"Prefix removed from constant names to form labels." name:"trimprefix"`
	LineComment bool     `help:"Use trailing const comments as labels." name:"linecomment"`
	Tags        []string `help:"Build tags, comma-separated."`
}

// Generator builds an enumgen.Generator from the flags.
func (s *Selection) Generator(logger *slog.Logger) *enumgen.Generator {
	cfg := enumgen.Config{
		Packages:    s.Packages,
		SchemaFiles: s.Schema,
		Dir:         s.Dir,
		Types:       s.Types,
		BuildTags:   s.Tags,
		Output:      s.Output,
		Separator:   s.Separator,
		TrimPrefix:  s.TrimPrefix,
		LineComment: s.LineComment,
		Text:        s.Text,
		Logger:      logger,
	}
	if len(cfg.Packages) == 0 && len(cfg.SchemaFiles) == 0 {
		cfg.Packages = []string{"."}
	}
	return enumgen.FromConfig(cfg)
}

// Cmd is "argenum gen".
type Cmd struct {
	Selection `embed:""`

	Force bool `help:"Overwrite existing files that argenum did not generate."`
}

func (c *Cmd) Run(ctx context.Context, logger *slog.Logger, out io.Writer) error {
	g := c.Generator(logger)
	if c.Force {
		g = g.Force()
	}

	result, err := g.Generate(ctx)
	if err != nil {
		return err
	}

	for _, f := range result.Files {
		fmt.Fprintln(out, f)
	}
	logger.Info("generated",
		slog.Int("files", len(result.Files)),
		slog.Int("enums", result.Enums),
		slog.Int("warnings", len(result.Warnings)),
	)
	return nil
}
