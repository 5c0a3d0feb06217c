package schema

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAlias(t *testing.T) {
	t.Parallel()
	tests := []struct {
		alias string
		want  ParsedAlias
	}{
		{
			alias: "COLUMN.words.word",
			want:  ParsedAlias{TablePath: "words", ColumnName: "word"},
		},
		{
			alias: "COLUMN.main.words.word",
			want:  ParsedAlias{TablePath: "main.words", ColumnName: "word"},
		},
		{
			alias: "COLUMN.dictionary.dbo.words.word",
			want:  ParsedAlias{TablePath: "dictionary.dbo.words", ColumnName: "word"},
		},
		{
			alias: "FUNCTION.count",
			want:  ParsedAlias{FunctionName: "count"},
		},
		{
			alias: "FUNCTION.max.COLUMN.words.word",
			want:  ParsedAlias{FunctionName: "max", TablePath: "words", ColumnName: "word"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.alias, func(t *testing.T) {
			t.Parallel()
			parsed, err := ParseAlias(tt.alias)
			require.NoError(t, err)
			assert.Equal(t, tt.want, parsed)
		})
	}
}

func TestParseAliasMalformed(t *testing.T) {
	t.Parallel()
	aliases := []string{
		"",
		"words.word",
		"FUNCTION",
		"FUNCTION.",
		"COLUMN.words",
		"FUNCTION.count.COLUMN.words",
		"FUNCTION.count.words.word",
	}
	for _, alias := range aliases {
		t.Run(alias, func(t *testing.T) {
			t.Parallel()
			_, err := ParseAlias(alias)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "malformed alias")
		})
	}
}

func TestConversionRoundTrip(t *testing.T) {
	t.Parallel()
	table := newBoundWordsTable(t)
	partOfSpeech, err := table.Column("part_of_speech")
	require.NoError(t, err)

	raw, err := ToRawValue(partOfSpeech, "noun")
	require.NoError(t, err)
	assert.Equal(t, "noun", raw)

	native, err := FromRawValue(partOfSpeech, []byte("verb"))
	require.NoError(t, err)
	assert.Equal(t, "verb", native)
}

// TestConversionOrder pins the pipeline direction: to-raw runs the item
// converter before the type converter, from-raw runs them in reverse.
func TestConversionOrder(t *testing.T) {
	t.Parallel()
	active := NewColumn("active", Boolean).Converters(
		func(value any) (any, error) {
			switch value {
			case "yes":
				return true, nil
			case "no":
				return false, nil
			}
			return nil, fmt.Errorf("unknown flag %v", value)
		},
		func(value any) (any, error) {
			if value.(bool) {
				return "yes", nil
			}
			return "no", nil
		},
	)
	require.NoError(t, active.Err())

	raw, err := ToRawValue(active, "yes")
	require.NoError(t, err)
	assert.Equal(t, int64(1), raw)

	native, err := FromRawValue(active, int64(0))
	require.NoError(t, err)
	assert.Equal(t, "no", native)

	_, err = ToRawValue(active, "maybe")
	require.Error(t, err)
}

func TestConversionNilPassthrough(t *testing.T) {
	t.Parallel()
	word := NewColumn("word", Text)

	raw, err := ToRawValue(word, nil)
	require.NoError(t, err)
	assert.Nil(t, raw)

	native, err := FromRawValue(word, nil)
	require.NoError(t, err)
	assert.Nil(t, native)

	// An item converter may normalize a value to NULL; the type converter
	// must not see it.
	blank := NewColumn("note", Text).Converters(
		func(value any) (any, error) {
			if value == "" {
				return nil, nil
			}
			return value, nil
		},
		nil,
	)
	require.NoError(t, blank.Err())
	raw, err = ToRawValue(blank, "")
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestConversionWithoutItemConverter(t *testing.T) {
	t.Parallel()
	deleted := NewColumn("deleted", Boolean)

	raw, err := ToRawValue(deleted, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), raw)

	native, err := FromRawValue(deleted, int64(1))
	require.NoError(t, err)
	assert.Equal(t, true, native)
}
