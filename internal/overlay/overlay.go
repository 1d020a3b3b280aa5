// Package overlay type-checks generated files against the package they
// belong to without writing them to disk.
//
// The generated content is handed to go/packages as an overlay, so the
// build system sees it in place of (or in addition to) the file on disk.
package overlay

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/broady/argenum"
)

// Options configures a check.
type Options struct {
	// Dir is the package directory.
	Dir string

	// Files maps file names relative to Dir to their generated content.
	Files map[string][]byte

	// BuildTags are passed to the build system as -tags.
	BuildTags []string
}

// Check loads the package in opts.Dir with opts.Files overlaid and returns
// every load or type error as one malformed_input error.
func Check(ctx context.Context, opts Options) error {
	if len(opts.Files) == 0 {
		return nil
	}

	dir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return argenum.Errorf(argenum.CodeInternal, "resolve %s: %v", opts.Dir, err)
	}

	files := make(map[string][]byte, len(opts.Files))
	for name, content := range opts.Files {
		files[filepath.Join(dir, filepath.FromSlash(name))] = content
	}

	cfg := &packages.Config{
		Context: ctx,
		Mode:    packages.NeedName | packages.NeedFiles | packages.NeedTypes | packages.NeedSyntax,
		Dir:     dir,
		Overlay: files,
	}
	if len(opts.BuildTags) > 0 {
		cfg.BuildFlags = []string{"-tags=" + strings.Join(opts.BuildTags, ",")}
	}

	pkgs, err := packages.Load(cfg, ".")
	if err != nil {
		return argenum.Errorf(argenum.CodeInternal, "load %s: %v", dir, err)
	}

	var msgs []string
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, e := range pkg.Errors {
			msgs = append(msgs, e.Error())
		}
	})
	if len(msgs) > 0 {
		return argenum.NewError(argenum.CodeMalformedInput,
			fmt.Sprintf("generated code does not compile:\n\t%s", strings.Join(msgs, "\n\t"))).
			WithDetail("dir", dir)
	}
	return nil
}
