// Package testdata declares enums for provider tests.
package testdata

// Color is a paint color.
//
// More colors are declared in more.go.
//
//argenum:enum
type Color int

const (
	Red Color = iota
	Green
	Blue
)

//argenum:enum
//argenum:case_sensitive
type Mode int

const (
	On Mode = iota
	Off
)

//argenum:enum trimprefix=Level text
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
)

//argenum:enum linecomment
type Weekday uint8

const (
	Monday  Weekday = iota + 1 // mon
	Tuesday                    // tue
	Wednesday
)

//argenum:enum
type Planet uint16

const (
	_ Planet = iota
	Mercury
	Venus
)

// Flag is selected by name only.
//
//argenum:case_sensitive
type Flag int

const (
	FlagA Flag = 1 << iota
	FlagB
)

// Untyped and differently typed constants are not variants.
const (
	Answer       = 42
	Big    int64 = 1 << 40
)

type Ratio float64

type Shape struct{ Sides int }

type Alias = int

type Pair[T any] int

type Empty int
