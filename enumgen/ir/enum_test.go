package ir

import (
	"strings"
	"testing"
)

func color() *EnumDescription {
	return &EnumDescription{
		Name:       GoIdentifier{Name: "Color", Package: "example.com/paint"},
		Underlying: "int",
		Variants: []Variant{
			{Ident: "Red", Label: "Red"},
			{Ident: "Green", Label: "Green"},
			{Ident: "Blue", Label: "Blue"},
		},
	}
}

func mode() *EnumDescription {
	return &EnumDescription{
		Name:          GoIdentifier{Name: "Mode", Package: "example.com/power"},
		Underlying:    "int",
		CaseSensitive: true,
		Variants: []Variant{
			{Ident: "On", Label: "On"},
			{Ident: "Off", Label: "Off"},
		},
	}
}

func TestEnumDescription_ResolveCaseInsensitive(t *testing.T) {
	e := color()
	tests := []struct {
		input string
		want  string
	}{
		{"Red", "Red"},
		{"red", "Red"},
		{"RED", "Red"},
		{"gReEn", "Green"},
		{"blue", "Blue"},
	}
	for _, tt := range tests {
		v, _, err := e.Resolve(tt.input)
		if err != nil {
			t.Errorf("Resolve(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if v.Ident != tt.want {
			t.Errorf("Resolve(%q) = %s, want %s", tt.input, v.Ident, tt.want)
		}
	}
}

func TestEnumDescription_ResolveUnknown(t *testing.T) {
	e := color()
	_, idx, err := e.Resolve("purple")
	if err == nil {
		t.Fatal("Resolve(purple) expected error")
	}
	if idx != -1 {
		t.Errorf("index = %d, want -1", idx)
	}
	if got, want := err.Error(), "valid values: Red, Green, Blue"; got != want {
		t.Errorf("error = %q, want %q", got, want)
	}
	for _, label := range e.NameTable() {
		if !strings.Contains(err.Error(), label) {
			t.Errorf("error %q does not mention %s", err, label)
		}
	}
}

func TestEnumDescription_ResolveCaseSensitive(t *testing.T) {
	e := mode()
	v, idx, err := e.Resolve("On")
	if err != nil {
		t.Fatalf("Resolve(On) unexpected error: %v", err)
	}
	if v.Ident != "On" || idx != 0 {
		t.Errorf("Resolve(On) = %s@%d, want On@0", v.Ident, idx)
	}

	for _, input := range []string{"on", "ON", "oFF", "off"} {
		if _, _, err := e.Resolve(input); err == nil {
			t.Errorf("Resolve(%q) expected error for altered case", input)
		}
	}
}

func TestEnumDescription_ResolveFirstMatchWins(t *testing.T) {
	// Not valid (labels collide) but Resolve must still be deterministic.
	e := &EnumDescription{
		Name:       GoIdentifier{Name: "Dup"},
		Underlying: "int",
		Variants: []Variant{
			{Ident: "A", Label: "x"},
			{Ident: "B", Label: "X"},
		},
	}
	v, idx, err := e.Resolve("X")
	if err != nil {
		t.Fatal(err)
	}
	if v.Ident != "A" || idx != 0 {
		t.Errorf("Resolve(X) = %s@%d, want A@0", v.Ident, idx)
	}
}

func TestEnumDescription_RoundTrip(t *testing.T) {
	for _, e := range []*EnumDescription{color(), mode()} {
		names := e.NameTable()
		if len(names) != len(e.Variants) {
			t.Fatalf("%s: %d names for %d variants", e.Name.Name, len(names), len(e.Variants))
		}
		for i, label := range names {
			_, idx, err := e.Resolve(label)
			if err != nil {
				t.Errorf("%s: Resolve(%q): %v", e.Name.Name, label, err)
				continue
			}
			if idx != i {
				t.Errorf("%s: Resolve(listing[%d]) = %d", e.Name.Name, i, idx)
			}
		}
	}
}

func TestEnumDescription_NameTableStable(t *testing.T) {
	e := color()
	first := e.NameTable()
	second := e.NameTable()
	want := []string{"Red", "Green", "Blue"}
	for i := range want {
		if first[i] != want[i] || second[i] != want[i] {
			t.Errorf("NameTable()[%d] = %q/%q, want %q", i, first[i], second[i], want[i])
		}
	}

	// Callers may not mutate the description through the table.
	first[0] = "Crimson"
	if e.Variants[0].Label != "Red" {
		t.Error("NameTable aliases variant storage")
	}
}

func TestEnumDescription_FailureMessageSeparator(t *testing.T) {
	e := color()
	if got, want := e.FailureMessage(" ,"), "valid values: Red ,Green ,Blue"; got != want {
		t.Errorf("FailureMessage = %q, want %q", got, want)
	}
	if got, want := e.FailureMessage(""), "valid values: Red, Green, Blue"; got != want {
		t.Errorf("FailureMessage(\"\") = %q, want %q", got, want)
	}
}

func TestEqualFoldASCII(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"", "", true},
		{"abc", "ABC", true},
		{"Hello-World_1", "hELLO-wORLD_1", true},
		{"abc", "abd", false},
		{"abc", "abcd", false},
		{"[", "{", false},      // 0x5B vs 0x7B differ by the case bit but are not letters
		{"é", "É", false},      // non-ASCII is compared exactly
		{"\u212a", "k", false}, // Kelvin sign does not fold to k
	}
	for _, tt := range tests {
		if got := EqualFoldASCII(tt.a, tt.b); got != tt.want {
			t.Errorf("EqualFoldASCII(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
