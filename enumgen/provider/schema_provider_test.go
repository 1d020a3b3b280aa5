package provider

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/argenum"
)

const paintYAML = `package: paint
enums:
  - name: Color
    doc: |
      Color is a paint color.

      It has three variants.
    variants: [Red, Green, Blue]
  - name: Mode
    type: uint8
    prefix: Mode
    case_sensitive: true
    text: true
    variants:
      - "On"
      - "Off"
`

func TestParseSchemaFile(t *testing.T) {
	schema, err := ParseSchemaFile("gen/paint.yaml", []byte(paintYAML))
	require.NoError(t, err)
	require.NoError(t, schema.Validate())

	assert.Equal(t, "paint", schema.Package.Name)
	assert.Equal(t, "gen", schema.Package.Dir)
	assert.Empty(t, schema.Output)
	require.Len(t, schema.Enums, 2)

	color := schema.Enums[0]
	assert.Equal(t, "Color", color.Name.Name)
	assert.Equal(t, "int", color.Underlying)
	assert.True(t, color.Declare)
	assert.False(t, color.CaseSensitive)
	assert.Equal(t, []string{"Red", "Green", "Blue"}, labels(color))
	assert.Equal(t, []string{"Red", "Green", "Blue"}, idents(color))
	assert.Equal(t, "Color is a paint color.", color.Documentation.Summary)
	assert.Contains(t, color.Documentation.Body, "three variants")

	assert.Equal(t, "gen/paint.yaml", color.Source.File)
	assert.Equal(t, 3, color.Source.Line)
	assert.Equal(t, 8, color.Variants[0].Source.Line)

	mode := schema.Enums[1]
	assert.Equal(t, "uint8", mode.Underlying)
	assert.True(t, mode.CaseSensitive)
	assert.True(t, mode.Text)
	assert.Equal(t, []string{"On", "Off"}, labels(mode))
	assert.Equal(t, []string{"ModeOn", "ModeOff"}, idents(mode))
	assert.Equal(t, 15, mode.Variants[0].Source.Line)
	assert.Equal(t, 16, mode.Variants[1].Source.Line)
}

func TestParseSchemaFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown field",
			yaml:    "package: paint\nenums:\n  - name: Color\n    values: [Red]\n",
			wantErr: "field values not found",
		},
		{
			name:    "bad package name",
			yaml:    "package: my-paint\nenums: []\n",
			wantErr: "not a valid package name",
		},
		{
			name:    "missing package",
			yaml:    "enums: []\n",
			wantErr: "not a valid package name",
		},
		{
			name:    "not yaml",
			yaml:    "package: [\n",
			wantErr: "paint.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSchemaFile("paint.yaml", []byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, argenum.HasCode(err, argenum.CodeMalformedInput))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseSchemaFile_ValidationDeferred(t *testing.T) {
	// Parsing accepts what validation later rejects.
	schema, err := ParseSchemaFile("paint.yaml", []byte(`package: paint
enums:
  - name: Never
    variants: []
  - name: Twice
    variants: [a, A]
  - name: Float
    type: float64
    variants: [X]
`))
	require.NoError(t, err)
	require.Len(t, schema.Enums, 3)

	err = schema.Validate()
	require.Error(t, err)
	assert.True(t, argenum.HasCode(err, argenum.CodeNoVariants))
	assert.True(t, argenum.HasCode(err, argenum.CodeDuplicateLabel))
	assert.True(t, argenum.HasCode(err, argenum.CodeMalformedInput))
	assert.Contains(t, err.Error(), "paint.yaml:3:")
}

func TestParseSchemaFile_Empty(t *testing.T) {
	schema, err := ParseSchemaFile("paint.yaml", []byte("package: paint\n"))
	require.NoError(t, err)
	assert.Empty(t, schema.Enums)
	require.Len(t, schema.Warnings, 1)
	assert.Equal(t, "EMPTY_SCHEMA", schema.Warnings[0].Code)
}

func TestSchemaProvider_BuildSchemas(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a", "enums.yaml")
	b := filepath.Join(dir, "b", "enums.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(a), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Dir(b), 0o755))
	require.NoError(t, os.WriteFile(a, []byte(paintYAML), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("package: b\noutput: b_enums.go\nenums:\n  - name: Kind\n    variants: [X]\n"), 0o644))

	p := &SchemaProvider{}
	schemas, err := p.BuildSchemas(context.Background(), SchemaInputOptions{Files: []string{a, b}, Text: true})
	require.NoError(t, err)
	require.Len(t, schemas, 2)

	assert.Equal(t, filepath.Dir(a), schemas[0].Package.Dir)
	assert.Equal(t, "b_enums.go", schemas[1].Output)
	for _, s := range schemas {
		for _, e := range s.Enums {
			assert.True(t, e.Text, "%s.Text", e.Name.Name)
		}
	}
}

func TestSchemaProvider_Errors(t *testing.T) {
	p := &SchemaProvider{}

	_, err := p.BuildSchemas(context.Background(), SchemaInputOptions{})
	assert.True(t, argenum.HasCode(err, argenum.CodeInvalidConfig))

	_, err = p.BuildSchemas(context.Background(), SchemaInputOptions{
		Files: []string{filepath.Join(t.TempDir(), "missing.yaml")},
	})
	assert.True(t, argenum.HasCode(err, argenum.CodeNotFound))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.BuildSchemas(ctx, SchemaInputOptions{Files: []string{"x.yaml"}})
	assert.ErrorIs(t, err, context.Canceled)
}
