// Package schema models the typed building blocks statements are composed
// from: data types, columns, aggregate functions and tables.
//
// Schema objects are declared with chainable builders and assembled into a
// Tables set, which owns the foreign key graph:
//
//	wordsID := schema.IDColumn()
//	words := schema.NewTable("words",
//	    wordsID,
//	    schema.NewColumn("word", schema.Text).NotNull().Unique(),
//	)
//	meanings := schema.NewTable("meanings",
//	    schema.IDColumn(),
//	    schema.NewColumn("word_id", schema.Integer).
//	        NotNull().
//	        References(wordsID).
//	        OnDelete(schema.Cascade),
//	    schema.NewColumn("meaning", schema.Text).NotNull(),
//	)
//	tables, err := schema.NewTables(words, meanings)
//
// A Tables set is a one-shot value: construction freezes the columns and
// resolves every reference, and binding attaches the set to exactly one
// database. Declare schemas inside constructor functions and build a fresh
// set per database. Schemas can equally be described in YAML and built
// through Spec.
//
// Columns and functions share the Item interface: both render into SQL text,
// carry a canonical alias identifying them in result sets, and generate the
// globally unique parameter names that make statement templates safe to
// merge and transpile.
package schema
