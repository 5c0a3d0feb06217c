// Package transpile converts statement templates between SQL dialects.
//
// A template is statement text written in one dialect's placeholder
// convention, usually the named :parameter form the statement builder
// emits. A Transpiler rewrites that text into the target dialect's
// convention (named, $n ordinal or anonymous ?), reshapes the clauses the
// dialects disagree on (RETURNING versus OUTPUT), and reconciles the
// caller's parameter collection so every rewritten placeholder lines up
// with exactly one value:
//
//	t, err := transpile.New(dialect.SQLite, dialect.Postgres)
//	if err != nil {
//		return err
//	}
//	params := transpile.Named()
//	params.Add("words_word_0a1b2c3d", "jump")
//	text, args, err := t.Transpile(
//		"INSERT INTO words (word) VALUES (:words_word_0a1b2c3d) RETURNING id;",
//		params,
//	)
//	// text: INSERT INTO words (word) VALUES ($1) RETURNING id;
//	// args: positional, ("jump")
//
// Rewriting never drops, duplicates or reorders a value relative to its
// placeholder. Templates parse once per Transpiler and are cached by text.
package transpile
