// Command argenum generates string parsing functions for Go enums.
//
// Mark a type in its doc comment and run argenum from go:generate:
//
//	//go:generate go run github.com/broady/argenum/cmd/argenum gen
//
//	//argenum:enum
//	type Color int
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"github.com/broady/argenum/cmd/argenum/internal/check"
	"github.com/broady/argenum/cmd/argenum/internal/gen"
)

type CLI struct {
	Verbose bool `help:"Log debug output." short:"v"`

	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     gen.Cmd    `cmd:"" help:"Generate parse functions for enums."`
	Check   check.Cmd  `cmd:"" help:"Validate enums and type-check generated code without writing files."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run(out io.Writer) error {
	fmt.Fprintln(out, Version())
	return nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

type exitCode int

// run parses args and executes the selected command. It returns the
// process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) (code int) {
	// kong exits after printing help; turn that into a return.
	defer func() {
		if r := recover(); r != nil {
			c, ok := r.(exitCode)
			if !ok {
				panic(r)
			}
			code = int(c)
		}
	}()

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("argenum"),
		kong.Description("Generate string parsing functions for Go enums."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Exit(func(c int) { panic(exitCode(c)) }),
	)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		parser.Errorf("%s", err)
		return 2
	}
	logger := newLogger(stderr, cli.Verbose)
	kctx.BindTo(ctx, (*context.Context)(nil))
	kctx.BindTo(stdout, (*io.Writer)(nil))
	if err := kctx.Run(logger); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
