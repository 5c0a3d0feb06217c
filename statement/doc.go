// Package statement builds typed SQL statements over schema tables.
//
// Each builder renders a template: statement text in the source dialect's
// grammar (named :parameters, RETURNING for generated keys) with every
// keyword the target dialects disagree on already branched. Templates carry
// their parameter values in a transpile.Parameters collection; the transpile
// package turns both into the form a concrete driver accepts:
//
//	st, err := statement.NewSelect(words).
//		Items(word).
//		Where(statement.Like(word, "%jump%")).
//		OrderBy(word, statement.Ascending).
//		Limit(10).
//		Build()
//
// Conditions compose with And and Or, compare columns against scalars, other
// columns, aggregates or scalar subqueries, and gather their parameters as
// they render. All parameter names are generated from the schema items, so
// merging two conditions never collides.
//
// Builders defer validation to Build and statements are immutable once
// built. Executing the same INSERT or UPDATE for another row derives a fresh
// collection with RowParameters instead of mutating the built one.
package statement
