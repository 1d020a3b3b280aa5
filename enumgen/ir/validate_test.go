package ir

import (
	"strings"
	"testing"

	"github.com/broady/argenum"
)

func TestEnumDescription_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(e *EnumDescription)
		wantCode argenum.ErrorCode
		wantMsg  string
	}{
		{
			name:   "valid",
			mutate: func(e *EnumDescription) {},
		},
		{
			name:     "no variants",
			mutate:   func(e *EnumDescription) { e.Variants = nil },
			wantCode: argenum.CodeNoVariants,
			wantMsg:  "no variants",
		},
		{
			name:     "empty variant slice",
			mutate:   func(e *EnumDescription) { e.Variants = []Variant{} },
			wantCode: argenum.CodeNoVariants,
		},
		{
			name:     "empty label",
			mutate:   func(e *EnumDescription) { e.Variants[1].Label = "" },
			wantCode: argenum.CodeMalformedInput,
			wantMsg:  "Label",
		},
		{
			name:     "keyword identifier",
			mutate:   func(e *EnumDescription) { e.Variants[0].Ident = "func" },
			wantCode: argenum.CodeMalformedInput,
			wantMsg:  "not a valid Go identifier",
		},
		{
			name:     "blank identifier",
			mutate:   func(e *EnumDescription) { e.Variants[0].Ident = "_" },
			wantCode: argenum.CodeMalformedInput,
		},
		{
			name:     "bad type name",
			mutate:   func(e *EnumDescription) { e.Name.Name = "2Color" },
			wantCode: argenum.CodeMalformedInput,
		},
		{
			name:     "unsupported underlying",
			mutate:   func(e *EnumDescription) { e.Underlying = "float64" },
			wantCode: argenum.CodeMalformedInput,
			wantMsg:  "must be one of",
		},
		{
			name:     "constant shadows errors import",
			mutate:   func(e *EnumDescription) { e.Variants[1].Ident = "errors" },
			wantCode: argenum.CodeMalformedInput,
			wantMsg:  "constant name errors is reserved",
		},
		{
			name:     "constant shadows fold helper",
			mutate:   func(e *EnumDescription) { e.Variants[0].Ident = FoldHelperName },
			wantCode: argenum.CodeMalformedInput,
			wantMsg:  FoldHelperName,
		},
		{
			name:     "constant shadows predeclared len",
			mutate:   func(e *EnumDescription) { e.Variants[2].Ident = "len" },
			wantCode: argenum.CodeMalformedInput,
			wantMsg:  "reserved",
		},
		{
			name:   "single letter constant",
			mutate: func(e *EnumDescription) { e.Variants[2].Ident = "s" },
		},
		{
			name: "duplicate identifier",
			mutate: func(e *EnumDescription) {
				e.Variants[2].Ident = "Red"
			},
			wantCode: argenum.CodeMalformedInput,
			wantMsg:  "unique",
		},
		{
			name: "labels collide when folded",
			mutate: func(e *EnumDescription) {
				e.Variants[2].Label = "RED"
			},
			wantCode: argenum.CodeDuplicateLabel,
			wantMsg:  "Red and Blue",
		},
		{
			name: "labels differ only in case when case sensitive",
			mutate: func(e *EnumDescription) {
				e.CaseSensitive = true
				e.Variants[2].Label = "RED"
			},
		},
		{
			name: "exact duplicate when case sensitive",
			mutate: func(e *EnumDescription) {
				e.CaseSensitive = true
				e.Variants[2].Label = "Green"
			},
			wantCode: argenum.CodeDuplicateLabel,
			wantMsg:  "exactly",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := color()
			tt.mutate(e)
			err := e.Validate()
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected %s error, got nil", tt.wantCode)
			}
			if !argenum.HasCode(err, tt.wantCode) {
				t.Errorf("error %q does not carry code %s", err, tt.wantCode)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not contain %q", err, tt.wantMsg)
			}
			if !strings.Contains(err.Error(), "Color") {
				t.Errorf("error %q does not name the type", err)
			}
		})
	}
}

func TestEnumDescription_ValidateReservedType(t *testing.T) {
	for _, name := range []string{"errors", "string", "error"} {
		e := color()
		e.Name.Name = name
		err := e.Validate()
		if !argenum.HasCode(err, argenum.CodeMalformedInput) {
			t.Errorf("%s: got %v, want malformed_input", name, err)
		}
	}
}

func TestEnumDescription_ValidateReservedPosition(t *testing.T) {
	e := color()
	e.Variants[1].Ident = "errors"
	e.Variants[1].Source = Source{File: "paint.go", Line: 9, Column: 2}
	err := e.Validate()
	if err == nil || !strings.HasPrefix(err.Error(), "paint.go:9:2: malformed_input") {
		t.Errorf("error = %v, want constant position", err)
	}
}

func TestEnumDescription_ValidatePosition(t *testing.T) {
	e := color()
	e.Source = Source{File: "paint.go", Line: 3, Column: 6}
	e.Variants = nil
	err := e.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.HasPrefix(err.Error(), "paint.go:3:6: no_variants") {
		t.Errorf("error = %q, want position prefix", err)
	}
}

func TestSchema_Validate(t *testing.T) {
	s := &Schema{Package: PackageInfo{Path: "example.com/paint", Name: "paint"}}
	s.AddEnum(color())
	s.AddEnum(mode())
	if err := s.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.AddEnum(color())
	bad := mode()
	bad.Name.Name = "Empty"
	bad.Variants = nil
	s.AddEnum(bad)

	err := s.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !argenum.HasCode(err, argenum.CodeNoVariants) {
		t.Errorf("missing no_variants in %q", err)
	}
	if !strings.Contains(err.Error(), "declared twice") {
		t.Errorf("missing duplicate type in %q", err)
	}
}

func TestSchema_NeedsFoldHelper(t *testing.T) {
	s := &Schema{}
	s.AddEnum(mode())
	if s.NeedsFoldHelper() {
		t.Error("case-sensitive only schema should not need the fold helper")
	}
	s.AddEnum(color())
	if !s.NeedsFoldHelper() {
		t.Error("case-insensitive enum needs the fold helper")
	}
	if s.FindEnum("Color") == nil || s.FindEnum("Nope") != nil {
		t.Error("FindEnum lookup mismatch")
	}
}
