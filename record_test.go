package sqldatabase_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sterbis/sqldatabase"
	"github.com/Sterbis/sqldatabase/dialect"
	"github.com/Sterbis/sqldatabase/schema"
)

func TestRecordSetAndOrder(t *testing.T) {
	t.Parallel()

	db, _ := newTestDatabase(t, dialect.SQLite)
	words := table(t, db, "words")
	word := column(t, words, "word")
	language := column(t, words, "language")
	favorite := column(t, words, "favorite")

	record := sqldatabase.NewRecord().
		Set(word, "gopher").
		Set(language, "en").
		Set(word, "badger") // overwrite keeps the original position
	require.NoError(t, record.Err())

	assert.Equal(t, 2, record.Len())
	items := record.Items()
	require.Len(t, items, 2)
	assert.Same(t, word, items[0].(*schema.Column))
	assert.Same(t, language, items[1].(*schema.Column))
	assert.Equal(t, []any{"badger", "en"}, record.Values())

	item, value, ok := record.At(0)
	require.True(t, ok)
	assert.Same(t, word, item.(*schema.Column))
	assert.Equal(t, "badger", value)
	_, _, ok = record.At(2)
	assert.False(t, ok)

	value, ok = record.Value(language)
	require.True(t, ok)
	assert.Equal(t, "en", value)
	_, ok = record.Value(favorite)
	assert.False(t, ok)
}

func TestRecordDeferredErrors(t *testing.T) {
	t.Parallel()

	db, _ := newTestDatabase(t, dialect.SQLite)
	words := table(t, db, "words")
	word := column(t, words, "word")

	t.Run("nil item", func(t *testing.T) {
		t.Parallel()
		record := sqldatabase.NewRecord().Set(nil, 1).Set(word, "gopher")
		assert.ErrorContains(t, record.Err(), "must not be nil")
		// Later Sets do not apply once the record carries an error.
		assert.Zero(t, record.Len())
	})

	t.Run("unattached column", func(t *testing.T) {
		t.Parallel()
		loose := schema.NewColumn("loose", schema.Text)
		record := sqldatabase.NewRecord().Set(loose, "x")
		assert.ErrorContains(t, record.Err(), "not attached")
	})
}

func TestRecordEqual(t *testing.T) {
	t.Parallel()

	db, _ := newTestDatabase(t, dialect.SQLite)
	words := table(t, db, "words")
	word := column(t, words, "word")
	favorite := column(t, words, "favorite")
	audio := column(t, words, "audio")
	added := column(t, words, "added")

	noon := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	sameInstant := noon.In(time.FixedZone("CET", 3600))

	base := sqldatabase.NewRecord().
		Set(word, "gopher").
		Set(favorite, true).
		Set(audio, []byte{1, 2}).
		Set(added, noon)

	t.Run("order insensitive", func(t *testing.T) {
		t.Parallel()
		other := sqldatabase.NewRecord().
			Set(added, sameInstant).
			Set(audio, []byte{1, 2}).
			Set(word, "gopher").
			Set(favorite, true)
		assert.True(t, base.Equal(other))
		assert.True(t, other.Equal(base))
	})

	t.Run("different value", func(t *testing.T) {
		t.Parallel()
		other := sqldatabase.NewRecord().
			Set(word, "badger").
			Set(favorite, true).
			Set(audio, []byte{1, 2}).
			Set(added, noon)
		assert.False(t, base.Equal(other))
	})

	t.Run("different items", func(t *testing.T) {
		t.Parallel()
		other := sqldatabase.NewRecord().Set(word, "gopher")
		assert.False(t, base.Equal(other))
		assert.False(t, base.Equal(nil))
	})
}

func TestFromRow(t *testing.T) {
	t.Parallel()

	db, _ := newTestDatabase(t, dialect.SQLite)
	words := table(t, db, "words")
	items := []schema.Item{
		column(t, words, "id"),
		column(t, words, "word"),
		column(t, words, "favorite"),
		column(t, words, "added"),
		column(t, words, "audio"),
	}

	t.Run("normalizes driver values", func(t *testing.T) {
		t.Parallel()
		record, err := sqldatabase.FromRow(items, []any{
			int32(7),
			[]byte("gopher"),
			int8(1),
			"2024-01-02T03:04:05",
			[]byte{1, 2},
		})
		require.NoError(t, err)
		values := record.Values()
		assert.Equal(t, int64(7), values[0])
		assert.Equal(t, "gopher", values[1])
		assert.Equal(t, true, values[2])
		assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), values[3])
		assert.Equal(t, []byte{1, 2}, values[4])
	})

	t.Run("null passes through", func(t *testing.T) {
		t.Parallel()
		record, err := sqldatabase.FromRow(items, []any{int64(1), "gopher", nil, nil, nil})
		require.NoError(t, err)
		values := record.Values()
		assert.Nil(t, values[2])
		assert.Nil(t, values[3])
	})

	t.Run("length mismatch", func(t *testing.T) {
		t.Parallel()
		_, err := sqldatabase.FromRow(items, []any{int64(1)})
		assert.ErrorContains(t, err, "values for")
	})
}

func TestRecordJSON(t *testing.T) {
	t.Parallel()

	db, _ := newTestDatabase(t, dialect.SQLite)
	words := table(t, db, "words")
	word := column(t, words, "word")
	language := column(t, words, "language")
	favorite := column(t, words, "favorite")
	audio := column(t, words, "audio")
	added := column(t, words, "added")

	record := sqldatabase.NewRecord().
		Set(word, "gopher").
		Set(language, "en").
		Set(favorite, true).
		Set(audio, []byte{1, 2}).
		Set(added, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))

	t.Run("marshal preserves order and encodings", func(t *testing.T) {
		t.Parallel()
		data, err := json.Marshal(record)
		require.NoError(t, err)
		want := `{"COLUMN.words.word":"gopher",` +
			`"COLUMN.words.language":"en",` +
			`"COLUMN.words.favorite":true,` +
			`"COLUMN.words.audio":"AQI=",` +
			`"COLUMN.words.added":"2024-01-02T03:04:05"}`
		assert.Equal(t, want, string(data))
	})

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		data, err := json.Marshal(record)
		require.NoError(t, err)
		decoded, err := db.RecordFromJSON(data)
		require.NoError(t, err)
		assert.True(t, record.Equal(decoded))

		value, ok := decoded.Value(favorite)
		require.True(t, ok)
		assert.Equal(t, true, value)
		value, _ = decoded.Value(added)
		assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), value)
		value, _ = decoded.Value(audio)
		assert.Equal(t, []byte{1, 2}, value)
	})

	t.Run("null value", func(t *testing.T) {
		t.Parallel()
		decoded, err := db.RecordFromJSON([]byte(`{"COLUMN.words.audio":null}`))
		require.NoError(t, err)
		value, ok := decoded.Value(audio)
		require.True(t, ok)
		assert.Nil(t, value)
	})

	t.Run("unknown alias", func(t *testing.T) {
		t.Parallel()
		_, err := db.RecordFromJSON([]byte(`{"COLUMN.words.nope":1}`))
		assert.ErrorContains(t, err, "not found")
	})

	t.Run("invalid enum value", func(t *testing.T) {
		t.Parallel()
		_, err := db.RecordFromJSON([]byte(`{"COLUMN.words.language":"xx"}`))
		assert.ErrorContains(t, err, "not a valid value")
	})

	t.Run("kind mismatch", func(t *testing.T) {
		t.Parallel()
		_, err := db.RecordFromJSON([]byte(`{"COLUMN.words.favorite":"yes"}`))
		assert.ErrorContains(t, err, "cannot decode")
	})

	t.Run("not an object", func(t *testing.T) {
		t.Parallel()
		_, err := db.RecordFromJSON([]byte(`[1, 2]`))
		assert.ErrorContains(t, err, "must be an object")
	})
}

func TestTableRecordFromJSON(t *testing.T) {
	t.Parallel()

	db, _ := newTestDatabase(t, dialect.SQLite)
	words := table(t, db, "words")

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		record, err := db.TableRecordFromJSON(words, []byte(`{"COLUMN.words.word":"gopher"}`))
		require.NoError(t, err)
		assert.Equal(t, 1, record.Len())
	})

	t.Run("missing mandatory column", func(t *testing.T) {
		t.Parallel()
		_, err := db.TableRecordFromJSON(words, []byte(`{"COLUMN.words.language":"en"}`))
		assert.ErrorContains(t, err, `missing mandatory column "word"`)
	})

	t.Run("column of another table", func(t *testing.T) {
		t.Parallel()
		_, err := db.TableRecordFromJSON(words, []byte(`{"COLUMN.words.word":"gopher","COLUMN.meanings.meaning":"m"}`))
		assert.ErrorContains(t, err, "does not belong to table words")
	})

	t.Run("function item", func(t *testing.T) {
		t.Parallel()
		_, err := db.TableRecordFromJSON(words, []byte(`{"FUNCTION.count":1}`))
		assert.ErrorContains(t, err, "not a column")
	})
}
