package enumgen

import (
	"log/slog"

	"github.com/broady/argenum/enumgen/golang"
	"github.com/broady/argenum/enumgen/ir"
)

// Config holds the configuration for enum generation.
type Config struct {
	// Packages are go/packages patterns to analyze, e.g. "." or "./...".
	Packages []string

	// SchemaFiles are YAML schema files describing enums that have no Go
	// declaration yet.
	SchemaFiles []string

	// Dir is the working directory for package loading. Relative schema
	// file paths are resolved against it too. Empty means the current one.
	Dir string

	// Types restricts generation to these type names. Named types are
	// generated even without an //argenum:enum attribute.
	Types []string

	// BuildTags are passed to the build system as -tags.
	BuildTags []string

	// Output is the generated file name within each package directory.
	// Default: "enums_argenum.go".
	Output string

	// Separator joins labels in parse failure messages. Default: ", ".
	Separator string

	// TrimPrefix is removed from constant names to form labels, for types
	// that do not set trimprefix themselves.
	TrimPrefix string

	// LineComment uses trailing const comments as labels for every type.
	LineComment bool

	// Text adds UnmarshalText methods to every generated enum.
	Text bool

	// Force allows replacing existing files that argenum did not generate.
	Force bool

	// Logger receives progress output. Default: slog.Default().
	Logger *slog.Logger
}

// applyConfigDefaults applies default values to Config.
func applyConfigDefaults(cfg *Config) *Config {
	// Make a copy to avoid mutating the input
	result := *cfg

	if result.Output == "" {
		result.Output = golang.DefaultOutput
	}
	if result.Separator == "" {
		result.Separator = ir.DefaultSeparator
	}
	if result.Logger == nil {
		result.Logger = slog.Default()
	}
	return &result
}
