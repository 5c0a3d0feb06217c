package schemagen_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sterbis/sqldatabase/schema"
	"github.com/Sterbis/sqldatabase/schemagen"
)

const dictionarySpec = `
tables:
  - name: words
    columns:
      - name: id
        type: INTEGER
        primary_key: true
        autoincrement: true
      - name: word
        type: VARCHAR(30)
        not_null: true
        unique: true
      - name: language
        type: TEXT
        not_null: true
        default: en
        values: [en, cs, de]
      - name: favorite
        type: BOOLEAN
        default: false
  - name: meanings
    columns:
      - name: id
        type: INTEGER
        primary_key: true
        autoincrement: true
      - name: meaning
        type: TEXT
        not_null: true
      - name: word_id
        type: INTEGER
        not_null: true
        references: words.id
        on_delete: CASCADE
`

func parseSpec(t *testing.T, text string) *schema.Spec {
	t.Helper()
	spec, err := schema.ParseSpec([]byte(text))
	require.NoError(t, err)
	return spec
}

func TestGenerate(t *testing.T) {
	t.Parallel()
	src, err := schemagen.Generate(parseSpec(t, dictionarySpec), schemagen.Config{Package: "dictionary"})
	require.NoError(t, err)
	code := string(src)

	assert.True(t, strings.HasPrefix(code, "// Code generated by sqldbctl gen. DO NOT EDIT."))
	assert.Contains(t, code, "package dictionary")

	assert.Contains(t, code, "type Words struct")
	assert.Contains(t, code, "type Meanings struct")
	assert.Contains(t, code, "type Schema struct")
	assert.Regexp(t, `Table\s+\*schema\.Table\b`, code)
	assert.Regexp(t, `Word\s+\*schema\.Column`, code)
	assert.Regexp(t, `Tables\s+\*schema\.Tables`, code)

	assert.Contains(t, code, `WordsLanguageEn = "en"`)
	assert.Contains(t, code, `WordsLanguageCs = "cs"`)
	assert.Contains(t, code, `WordsLanguageDe = "de"`)

	assert.Contains(t, code, "func NewSchema() (*Schema, error)")
	assert.Contains(t, code, "wordsID := schema.IDColumn()")
	assert.Contains(t, code, `schema.NewColumn("word", schema.Varchar(30)).NotNull().Unique()`)
	assert.Contains(t, code, `schema.NewColumn("language", schema.Text).NotNull().Default("en").Values(WordsLanguageEn, WordsLanguageCs, WordsLanguageDe)`)
	assert.Contains(t, code, `schema.NewColumn("favorite", schema.Boolean).Default(false)`)
	assert.Contains(t, code, "meaningsWordID.References(wordsID).OnDelete(schema.Cascade)")
	assert.Contains(t, code, `schema.NewTable("words", wordsID, wordsWord, wordsLanguage, wordsFavorite)`)
	assert.Contains(t, code, `schema.NewTable("meanings", meaningsID, meaningsMeaning, meaningsWordID)`)
	assert.Contains(t, code, "tables, err := schema.NewTables(words, meanings)")
	assert.Regexp(t, `Tables:\s+tables`, code)
	assert.Regexp(t, `ID:\s+wordsID`, code)
}

func TestGenerateSchemaQualifier(t *testing.T) {
	t.Parallel()
	src, err := schemagen.Generate(parseSpec(t, `
tables:
  - name: audit
    schema: dbo
    columns:
      - name: id
        type: INTEGER
        primary_key: true
        autoincrement: true
      - name: happened
        type: DATETIME
        not_null: true
`), schemagen.Config{Package: "audit"})
	require.NoError(t, err)
	assert.Contains(t, string(src), `schema.NewTable("audit", auditID, auditHappened).Schema("dbo")`)
}

func TestGenerateValidation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		spec    string
		cfg     schemagen.Config
		wantErr string
	}{
		{
			name:    "empty package",
			spec:    dictionarySpec,
			cfg:     schemagen.Config{},
			wantErr: "package name must not be empty",
		},
		{
			name: "dangling reference",
			spec: `
tables:
  - name: words
    columns:
      - name: id
        type: INTEGER
        primary_key: true
        autoincrement: true
      - name: word_id
        type: INTEGER
        references: nowhere.id
`,
			cfg:     schemagen.Config{Package: "x"},
			wantErr: "does not resolve",
		},
		{
			name: "column collides with Table field",
			spec: `
tables:
  - name: words
    columns:
      - name: table
        type: TEXT
`,
			cfg:     schemagen.Config{Package: "x"},
			wantErr: "collides with the generated Table field",
		},
		{
			name: "columns with one Go name",
			spec: `
tables:
  - name: words
    columns:
      - name: word_id
        type: INTEGER
      - name: word_ID
        type: INTEGER
`,
			cfg:     schemagen.Config{Package: "x"},
			wantErr: "both map to Go name WordID",
		},
		{
			name: "unsupported default",
			spec: `
tables:
  - name: words
    columns:
      - name: codes
        type: TEXT
        default: [1, 2]
`,
			cfg:     schemagen.Config{Package: "x"},
			wantErr: "unsupported default",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := schemagen.Generate(parseSpec(t, tt.spec), tt.cfg)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestGenerateNilSpec(t *testing.T) {
	t.Parallel()
	_, err := schemagen.Generate(nil, schemagen.Config{Package: "x"})
	assert.ErrorContains(t, err, "declares no tables")
}

func TestGenerateFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	specPath := filepath.Join(dir, "schema.yaml")
	require.NoError(t, os.WriteFile(specPath, []byte(dictionarySpec), 0o644))

	outPath := filepath.Join(dir, "gen", "schema_gen.go")
	require.NoError(t, schemagen.GenerateFile(specPath, outPath, schemagen.Config{Package: "gen"}))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "func NewSchema() (*Schema, error)")

	err = schemagen.GenerateFile(filepath.Join(dir, "missing.yaml"), outPath, schemagen.Config{Package: "gen"})
	assert.ErrorContains(t, err, "read spec")
}
