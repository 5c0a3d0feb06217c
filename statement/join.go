package statement

import (
	"fmt"

	"github.com/Sterbis/sqldatabase/schema"
)

// JoinType selects the JOIN clause variant.
type JoinType string

// Join types.
const (
	JoinCross JoinType = "CROSS"
	JoinFull  JoinType = "FULL"
	JoinInner JoinType = "INNER"
	JoinLeft  JoinType = "LEFT"
	JoinRight JoinType = "RIGHT"
)

// join is one JOIN clause of a select. The ON condition resolves through the
// schema foreign key graph at build time.
type join struct {
	typ   JoinType
	table *schema.Table
}

// resolveJoin renders the JOIN clause. The joined table is matched against
// the candidates (the FROM table first, then the tables joined before it) in
// order; the first candidate with exactly one foreign key relation wins.
// CROSS joins carry no ON condition and skip resolution.
func resolveJoin(j join, candidates []*schema.Table) (string, error) {
	if j.table == nil {
		return "", fmt.Errorf("statement: join with a nil table")
	}
	fqn, err := j.table.FullyQualifiedName()
	if err != nil {
		return "", err
	}
	if j.typ == JoinCross {
		return fmt.Sprintf("%s JOIN %s", j.typ, fqn), nil
	}
	var firstErr error
	for _, candidate := range candidates {
		fk, ref, err := candidate.JoinColumns(j.table)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		left, err := fk.FullyQualifiedName()
		if err != nil {
			return "", err
		}
		right, err := ref.FullyQualifiedName()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s JOIN %s ON %s = %s", j.typ, fqn, left, right), nil
	}
	return "", firstErr
}
