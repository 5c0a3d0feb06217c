package statement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sterbis/sqldatabase/dialect"
	"github.com/Sterbis/sqldatabase/schema"
	"github.com/Sterbis/sqldatabase/transpile"
)

// testTables builds the dictionary graph (words, meanings, tags,
// meaning_tags) bound to the given dialect with bare-name table
// qualification.
func testTables(t testing.TB, dialectName string) map[string]*schema.Table {
	t.Helper()
	wordsID := schema.IDColumn()
	words := schema.NewTable("words",
		wordsID,
		schema.NewColumn("word", schema.Varchar(30)).NotNull().Unique(),
	)
	meaningsID := schema.IDColumn()
	meanings := schema.NewTable("meanings",
		meaningsID,
		schema.NewColumn("word_id", schema.Integer).NotNull().References(wordsID).OnDelete(schema.Cascade),
		schema.NewColumn("meaning", schema.Text).NotNull(),
	)
	tagsID := schema.IDColumn()
	tags := schema.NewTable("tags",
		tagsID,
		schema.NewColumn("name", schema.Text).NotNull().Unique(),
	)
	meaningTags := schema.NewTable("meaning_tags",
		schema.IDColumn(),
		schema.NewColumn("meaning_id", schema.Integer).NotNull().References(meaningsID).OnDelete(schema.Cascade),
		schema.NewColumn("tag_id", schema.Integer).NotNull().References(tagsID).OnDelete(schema.Cascade),
	)
	ts, err := schema.NewTables(words, meanings, tags, meaningTags)
	require.NoError(t, err)
	namer := schema.NamerFunc(func(tb *schema.Table) string { return tb.Name() })
	require.NoError(t, ts.Bind(namer, dialectName))
	return map[string]*schema.Table{
		"words":        words,
		"meanings":     meanings,
		"tags":         tags,
		"meaning_tags": meaningTags,
	}
}

// bindTables wraps the given tables in a set bound to the dialect.
func bindTables(t testing.TB, dialectName string, tables ...*schema.Table) {
	t.Helper()
	ts, err := schema.NewTables(tables...)
	require.NoError(t, err)
	namer := schema.NamerFunc(func(tb *schema.Table) string { return tb.Name() })
	require.NoError(t, ts.Bind(namer, dialectName))
}

func column(t testing.TB, table *schema.Table, name string) *schema.Column {
	t.Helper()
	c, err := table.Column(name)
	require.NoError(t, err)
	return c
}

func TestCreateTable(t *testing.T) {
	t.Parallel()

	t.Run("sqlite", func(t *testing.T) {
		t.Parallel()
		tables := testTables(t, dialect.SQLite)
		st, err := NewCreateTable(tables["words"]).Build()
		require.NoError(t, err)
		assert.Equal(t, transpile.KindCreateTable, st.Kind)
		assert.Equal(t, dialect.Default, st.Source)
		assert.Zero(t, st.Parameters.Len())
		want := `CREATE TABLE words (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    word VARCHAR(30) NOT NULL UNIQUE
);`
		assert.Equal(t, want, st.TemplateSQL)
	})

	t.Run("foreign key clause", func(t *testing.T) {
		t.Parallel()
		tables := testTables(t, dialect.SQLite)
		st, err := NewCreateTable(tables["meanings"]).Build()
		require.NoError(t, err)
		want := `CREATE TABLE meanings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    word_id INTEGER NOT NULL,
    meaning TEXT NOT NULL,
    FOREIGN KEY (word_id) REFERENCES words (id) ON DELETE CASCADE
);`
		assert.Equal(t, want, st.TemplateSQL)
	})

	t.Run("if not exists", func(t *testing.T) {
		t.Parallel()
		tables := testTables(t, dialect.SQLite)
		st, err := NewCreateTable(tables["words"]).IfNotExists().Build()
		require.NoError(t, err)
		assert.Contains(t, st.TemplateSQL, "CREATE TABLE IF NOT EXISTS words (")
	})

	t.Run("identity per dialect", func(t *testing.T) {
		t.Parallel()
		tests := []struct {
			name        string
			dialectName string
			idLine      string
		}{
			{"postgres", dialect.Postgres, "id INTEGER GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,"},
			{"mysql", dialect.MySQL, "id INTEGER PRIMARY KEY AUTO_INCREMENT,"},
			{"sqlserver", dialect.SQLServer, "id INTEGER IDENTITY(1,1) PRIMARY KEY,"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()
				tables := testTables(t, tt.dialectName)
				st, err := NewCreateTable(tables["words"]).Build()
				require.NoError(t, err)
				assert.Contains(t, st.TemplateSQL, "    "+tt.idLine+"\n")
			})
		}
	})

	t.Run("defaults sqlite", func(t *testing.T) {
		t.Parallel()
		prefs := schema.NewTable("prefs",
			schema.IDColumn(),
			schema.NewColumn("active", schema.Boolean).NotNull().Default(true),
			schema.NewColumn("note", schema.Text).Default("it's"),
			schema.NewColumn("rank", schema.Integer).Default(3),
			schema.NewColumn("created_at", schema.DateTime).Default(schema.CurrentTimestamp),
		)
		bindTables(t, dialect.SQLite, prefs)
		st, err := NewCreateTable(prefs).Build()
		require.NoError(t, err)
		assert.Contains(t, st.TemplateSQL, "active INTEGER NOT NULL DEFAULT 1,")
		assert.Contains(t, st.TemplateSQL, "note TEXT DEFAULT 'it''s',")
		assert.Contains(t, st.TemplateSQL, "rank INTEGER DEFAULT 3,")
		assert.Contains(t, st.TemplateSQL, "created_at TEXT DEFAULT CURRENT_TIMESTAMP\n")
	})

	t.Run("defaults postgres", func(t *testing.T) {
		t.Parallel()
		prefs := schema.NewTable("prefs",
			schema.IDColumn(),
			schema.NewColumn("active", schema.Boolean).NotNull().Default(true),
			schema.NewColumn("created_at", schema.DateTime).Default(schema.CurrentTimestamp),
		)
		bindTables(t, dialect.Postgres, prefs)
		st, err := NewCreateTable(prefs).Build()
		require.NoError(t, err)
		assert.Contains(t, st.TemplateSQL, "active BOOLEAN NOT NULL DEFAULT TRUE,")
		assert.Contains(t, st.TemplateSQL, "created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP\n")
	})

	t.Run("no columns", func(t *testing.T) {
		t.Parallel()
		empty := schema.NewTable("empty")
		bindTables(t, dialect.SQLite, empty)
		_, err := NewCreateTable(empty).Build()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "has no columns")
	})

	t.Run("unbound table", func(t *testing.T) {
		t.Parallel()
		loose := schema.NewTable("loose", schema.IDColumn())
		_, err := NewCreateTable(loose).Build()
		require.Error(t, err)
		assert.True(t, schema.IsNotAttached(err))
	})

	t.Run("nil table", func(t *testing.T) {
		t.Parallel()
		_, err := NewCreateTable(nil).Build()
		require.Error(t, err)
	})
}

func TestDropTable(t *testing.T) {
	t.Parallel()
	tables := testTables(t, dialect.SQLite)

	st, err := NewDropTable(tables["words"]).Build()
	require.NoError(t, err)
	assert.Equal(t, transpile.KindDropTable, st.Kind)
	assert.Equal(t, "DROP TABLE words;", st.TemplateSQL)

	st, err = NewDropTable(tables["words"]).IfExists().Build()
	require.NoError(t, err)
	assert.Equal(t, "DROP TABLE IF EXISTS words;", st.TemplateSQL)
}

func TestInsert(t *testing.T) {
	t.Parallel()

	t.Run("single column", func(t *testing.T) {
		t.Parallel()
		tables := testTables(t, dialect.SQLite)
		st, err := NewInsert(tables["words"], column(t, tables["words"], "word")).Build()
		require.NoError(t, err)
		assert.Equal(t, transpile.KindInsert, st.Kind)
		assert.True(t, st.ReturnsIDs)
		assert.Zero(t, st.Parameters.Len())
		assert.Equal(t,
			"INSERT INTO words (word)\nVALUES (:words_word)\nRETURNING id;",
			normalizeParams(st.TemplateSQL))
		require.Len(t, st.Bindings, 1)
		assert.Regexp(t, `^words_word_[0-9a-f]{8}$`, st.Bindings[0].Name)
	})

	t.Run("multiple columns", func(t *testing.T) {
		t.Parallel()
		tables := testTables(t, dialect.SQLite)
		st, err := NewInsert(tables["meanings"],
			column(t, tables["meanings"], "word_id"),
			column(t, tables["meanings"], "meaning"),
		).Build()
		require.NoError(t, err)
		assert.Equal(t,
			"INSERT INTO meanings (word_id, meaning)\nVALUES (:meanings_word_id, :meanings_meaning)\nRETURNING id;",
			normalizeParams(st.TemplateSQL))
	})

	t.Run("values", func(t *testing.T) {
		t.Parallel()
		tables := testTables(t, dialect.SQLite)
		st, err := NewInsert(tables["words"], column(t, tables["words"], "word")).
			Values("jump").
			Build()
		require.NoError(t, err)
		require.Equal(t, 1, st.Parameters.Len())
		value, ok := st.Parameters.Value(st.Bindings[0].Name)
		require.True(t, ok)
		assert.Equal(t, "jump", value)
	})

	t.Run("row parameters", func(t *testing.T) {
		t.Parallel()
		tables := testTables(t, dialect.SQLite)
		st, err := NewInsert(tables["words"], column(t, tables["words"], "word")).Build()
		require.NoError(t, err)

		first, err := st.RowParameters("jump")
		require.NoError(t, err)
		second, err := st.RowParameters("run")
		require.NoError(t, err)

		// Derivations are independent of each other and of the statement.
		assert.Equal(t, []any{"jump"}, first.Values())
		assert.Equal(t, []any{"run"}, second.Values())
		assert.Zero(t, st.Parameters.Len())
	})

	t.Run("row parameters convert values", func(t *testing.T) {
		t.Parallel()
		active := schema.NewColumn("active", schema.Boolean).NotNull()
		flags := schema.NewTable("flags", schema.IDColumn(), active)
		bindTables(t, dialect.SQLite, flags)
		st, err := NewInsert(flags, active).Build()
		require.NoError(t, err)

		params, err := st.RowParameters(true)
		require.NoError(t, err)
		assert.Equal(t, []any{int64(1)}, params.Values())
	})

	t.Run("row parameters wrong count", func(t *testing.T) {
		t.Parallel()
		tables := testTables(t, dialect.SQLite)
		st, err := NewInsert(tables["words"], column(t, tables["words"], "word")).Build()
		require.NoError(t, err)
		_, err = st.RowParameters("jump", "run")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "binds 1 values, got 2")
	})

	t.Run("no primary key", func(t *testing.T) {
		t.Parallel()
		message := schema.NewColumn("message", schema.Text).NotNull()
		logs := schema.NewTable("logs", message)
		bindTables(t, dialect.SQLite, logs)
		st, err := NewInsert(logs, message).Build()
		require.NoError(t, err)
		assert.False(t, st.ReturnsIDs)
		assert.Equal(t,
			"INSERT INTO logs (message)\nVALUES (:logs_message);",
			normalizeParams(st.TemplateSQL))
	})

	t.Run("errors", func(t *testing.T) {
		t.Parallel()
		tables := testTables(t, dialect.SQLite)
		words := tables["words"]
		word := column(t, words, "word")

		_, err := NewInsert(words).Build()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no columns")

		_, err = NewInsert(words, column(t, tables["tags"], "name")).Build()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not belong")

		_, err = NewInsert(words, schema.Count()).Build()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be columns")

		_, err = NewInsert(words, word).Values("a", "b").Build()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "binds 1 values, got 2")
	})
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	t.Run("full statement", func(t *testing.T) {
		t.Parallel()
		tables := testTables(t, dialect.SQLite)
		words := tables["words"]
		st, err := NewUpdate(words, column(t, words, "word")).
			Values("jumped").
			Where(Equal(words.PrimaryKeyColumn(), 1)).
			Build()
		require.NoError(t, err)
		assert.Equal(t, transpile.KindUpdate, st.Kind)
		assert.True(t, st.ReturnsIDs)
		assert.Equal(t,
			"UPDATE words\nSET word = :words_word\nWHERE words.id = :words_id\nRETURNING id;",
			normalizeParams(st.TemplateSQL))
		assert.Equal(t, 2, st.Parameters.Len())
	})

	t.Run("row parameters carry condition values", func(t *testing.T) {
		t.Parallel()
		tables := testTables(t, dialect.SQLite)
		words := tables["words"]
		st, err := NewUpdate(words, column(t, words, "word")).
			Values("jumped").
			Where(Equal(words.PrimaryKeyColumn(), 1)).
			Build()
		require.NoError(t, err)

		rebound, err := st.RowParameters("ran")
		require.NoError(t, err)
		assert.Equal(t, st.Parameters.Len(), rebound.Len())
		value, ok := rebound.Value(st.Bindings[0].Name)
		require.True(t, ok)
		assert.Equal(t, "ran", value)
	})

	t.Run("where chains and", func(t *testing.T) {
		t.Parallel()
		tables := testTables(t, dialect.SQLite)
		words := tables["words"]
		word := column(t, words, "word")
		st, err := NewUpdate(words, word).
			Values("x").
			Where(GreaterThan(words.PrimaryKeyColumn(), 1)).
			Where(NotEqual(word, "jump")).
			Build()
		require.NoError(t, err)
		assert.Contains(t,
			normalizeParams(st.TemplateSQL),
			"WHERE (words.id > :words_id AND words.word != :words_word)")
	})

	t.Run("missing where", func(t *testing.T) {
		t.Parallel()
		tables := testTables(t, dialect.SQLite)
		words := tables["words"]
		_, err := NewUpdate(words, column(t, words, "word")).Values("x").Build()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "without a where condition")
	})

	t.Run("condition error propagates", func(t *testing.T) {
		t.Parallel()
		tables := testTables(t, dialect.SQLite)
		words := tables["words"]
		word := column(t, words, "word")
		_, err := NewUpdate(words, word).
			Values("x").
			Where(NewCondition(word, OpEqual)).
			Build()
		require.Error(t, err)
		assert.True(t, IsOperatorArity(err))
	})
}

func TestDelete(t *testing.T) {
	t.Parallel()

	t.Run("full statement", func(t *testing.T) {
		t.Parallel()
		tables := testTables(t, dialect.SQLite)
		words := tables["words"]
		st, err := NewDelete(words).
			Where(Equal(column(t, words, "word"), "jump")).
			Build()
		require.NoError(t, err)
		assert.Equal(t, transpile.KindDelete, st.Kind)
		assert.True(t, st.ReturnsIDs)
		assert.Equal(t,
			"DELETE FROM words\nWHERE words.word = :words_word\nRETURNING id;",
			normalizeParams(st.TemplateSQL))
		assert.Equal(t, []any{"jump"}, st.Parameters.Values())
	})

	t.Run("missing where", func(t *testing.T) {
		t.Parallel()
		tables := testTables(t, dialect.SQLite)
		_, err := NewDelete(tables["words"]).Build()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "without a where condition")
	})

	t.Run("no primary key", func(t *testing.T) {
		t.Parallel()
		message := schema.NewColumn("message", schema.Text)
		logs := schema.NewTable("logs", message)
		bindTables(t, dialect.SQLite, logs)
		st, err := NewDelete(logs).Where(IsNotNull(message)).Build()
		require.NoError(t, err)
		assert.False(t, st.ReturnsIDs)
		assert.Equal(t,
			"DELETE FROM logs\nWHERE logs.message IS NOT NULL;",
			st.TemplateSQL)
	})
}
