package transpile

import (
	"fmt"
	"strings"

	"github.com/Sterbis/sqldatabase/dialect"
)

// StatementKind classifies the outermost statement of a template.
type StatementKind int

const (
	KindOther StatementKind = iota
	KindSelect
	KindInsert
	KindUpdate
	KindDelete
	KindCreateTable
	KindDropTable
)

// String returns the kind name.
func (k StatementKind) String() string {
	switch k {
	case KindSelect:
		return "SELECT"
	case KindInsert:
		return "INSERT"
	case KindUpdate:
		return "UPDATE"
	case KindDelete:
		return "DELETE"
	case KindCreateTable:
		return "CREATE TABLE"
	case KindDropTable:
		return "DROP TABLE"
	default:
		return "OTHER"
	}
}

// RowImage selects which image of the affected row a returned column reads.
type RowImage int

const (
	// ImageInserted reads the row as it exists after the write.
	ImageInserted RowImage = iota
	// ImageDeleted reads the row as it existed before the write.
	ImageDeleted
)

// ReturningItem is one column a write statement hands back to the caller.
type ReturningItem struct {
	Image  RowImage
	Column string
}

// Statement is the parsed shape of a template: the statement body with any
// returning clause split off, ready to be rendered in a target dialect's
// clause shape.
type Statement struct {
	Kind       StatementKind
	Body       string
	Returning  []ReturningItem
	Terminated bool // the template ended with a semicolon
}

// Rewriter parses template text and renders it with a target dialect's
// clause shape. Implementations must be safe for concurrent use.
type Rewriter interface {
	// Parse splits a template written in the given dialect into its
	// statement shape.
	Parse(sql, dialect string) (*Statement, error)
	// Render produces statement text in the given dialect. With pretty
	// unset, whitespace outside literals collapses to single spaces.
	Render(stmt *Statement, dialect string, pretty bool) (string, error)
}

// NewRewriter returns the built-in rewriter. It understands exactly the
// clause shapes generated statements use: a trailing RETURNING clause on
// SQLite and Postgres sources, an OUTPUT clause on SQL Server sources, and
// their equivalents on the render side.
func NewRewriter() Rewriter {
	return builtinRewriter{}
}

type builtinRewriter struct{}

func (builtinRewriter) Parse(sql, dialectName string) (*Statement, error) {
	if err := dialect.Validate(dialectName); err != nil {
		return nil, err
	}
	stmt := &Statement{Kind: detectKind(sql)}
	body := strings.TrimSpace(sql)
	if strings.HasSuffix(body, ";") {
		stmt.Terminated = true
		body = strings.TrimSpace(strings.TrimSuffix(body, ";"))
	}
	switch stmt.Kind {
	case KindInsert, KindUpdate, KindDelete:
		if dialect.Returning(dialectName) == dialect.OutputClause {
			body, stmt.Returning = cutOutputClause(body, stmt.Kind)
		} else {
			body, stmt.Returning = cutReturningClause(body, stmt.Kind)
		}
	}
	stmt.Body = body
	return stmt, nil
}

func (builtinRewriter) Render(stmt *Statement, dialectName string, pretty bool) (string, error) {
	if err := dialect.Validate(dialectName); err != nil {
		return "", err
	}
	body := stmt.Body
	if !pretty {
		body = normalizeSpace(body)
	}
	out := body
	if len(stmt.Returning) > 0 {
		switch dialect.Returning(dialectName) {
		case dialect.ReturningClause:
			out = body + " RETURNING " + joinReturning(stmt.Returning, false)
		case dialect.OutputClause:
			placed, err := placeOutputClause(body, stmt.Kind, "OUTPUT "+joinReturning(stmt.Returning, true))
			if err != nil {
				return "", err
			}
			out = placed
		case dialect.ReturningUnsupported:
			// MySQL cannot hand rows back from a write. The clause is
			// dropped and the caller gets no generated values.
		}
	}
	if stmt.Terminated {
		out += ";"
	}
	return out, nil
}

// detectKind reads the leading keywords of the statement.
func detectKind(sql string) StatementKind {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return KindOther
	}
	switch strings.ToUpper(fields[0]) {
	case "SELECT":
		return KindSelect
	case "INSERT":
		return KindInsert
	case "UPDATE":
		return KindUpdate
	case "DELETE":
		return KindDelete
	case "CREATE":
		if len(fields) > 1 && strings.EqualFold(fields[1], "TABLE") {
			return KindCreateTable
		}
	case "DROP":
		if len(fields) > 1 && strings.EqualFold(fields[1], "TABLE") {
			return KindDropTable
		}
	}
	return KindOther
}

// defaultImage is the row image a bare column name reads from: DELETE hands
// back the removed row, INSERT and UPDATE the written one.
func defaultImage(kind StatementKind) RowImage {
	if kind == KindDelete {
		return ImageDeleted
	}
	return ImageInserted
}

// cutReturningClause splits a trailing RETURNING clause off the body. The
// keyword only counts as a clause when the text after it parses as a column
// list, so an unquoted column named "returning" elsewhere in the statement
// is left alone.
func cutReturningClause(body string, kind StatementKind) (string, []ReturningItem) {
	at := findLastKeyword(body, "RETURNING")
	if at == -1 {
		return body, nil
	}
	items, ok := parseReturningItems(body[at+len("RETURNING"):], defaultImage(kind))
	if !ok {
		return body, nil
	}
	return strings.TrimSpace(body[:at]), items
}

// cutOutputClause splits a SQL Server OUTPUT clause out of the body. The
// clause sits mid-statement, so its end is the next top-level clause
// keyword.
func cutOutputClause(body string, kind StatementKind) (string, []ReturningItem) {
	at := findKeyword(body, 0, "OUTPUT")
	if at == -1 {
		return body, nil
	}
	rest := body[at+len("OUTPUT"):]
	end := len(rest)
	for _, kw := range []string{"VALUES", "SELECT", "WHERE", "FROM"} {
		if i := findKeyword(rest, 0, kw); i != -1 && i < end {
			end = i
		}
	}
	items, ok := parseReturningItems(rest[:end], defaultImage(kind))
	if !ok {
		return body, nil
	}
	cut := strings.TrimSpace(body[:at])
	if tail := strings.TrimSpace(rest[end:]); tail != "" {
		cut += " " + tail
	}
	return cut, items
}

// parseReturningItems parses a comma-separated column list, honoring
// INSERTED. and DELETED. image prefixes. Reports false when the text is not
// a plain column list.
func parseReturningItems(text string, def RowImage) ([]ReturningItem, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}
	parts := strings.Split(text, ",")
	items := make([]ReturningItem, 0, len(parts))
	for _, part := range parts {
		item := ReturningItem{Image: def}
		ref := strings.TrimSpace(part)
		switch {
		case len(ref) > 9 && strings.EqualFold(ref[:9], "INSERTED."):
			item.Image = ImageInserted
			ref = ref[9:]
		case len(ref) > 8 && strings.EqualFold(ref[:8], "DELETED."):
			item.Image = ImageDeleted
			ref = ref[8:]
		}
		if !isColumnRef(ref) {
			return nil, false
		}
		item.Column = ref
		items = append(items, item)
	}
	return items, true
}

// isColumnRef reports whether s is a star, an identifier or a dotted chain
// of identifiers, each segment optionally double-quoted.
func isColumnRef(s string) bool {
	if s == "*" {
		return true
	}
	for _, segment := range strings.Split(s, ".") {
		if len(segment) >= 2 && segment[0] == '"' && segment[len(segment)-1] == '"' {
			continue
		}
		if segment == "" || !isIdentStart(segment[0]) {
			return false
		}
		for i := 1; i < len(segment); i++ {
			if !isIdentPart(segment[i]) {
				return false
			}
		}
	}
	return true
}

// joinReturning renders the column list, with INSERTED./DELETED. prefixes
// for the OUTPUT clause form and bare columns for the RETURNING form.
func joinReturning(items []ReturningItem, withImage bool) string {
	parts := make([]string, len(items))
	for i, item := range items {
		if !withImage {
			parts[i] = item.Column
			continue
		}
		prefix := "INSERTED."
		if item.Image == ImageDeleted {
			prefix = "DELETED."
		}
		parts[i] = prefix + item.Column
	}
	return strings.Join(parts, ", ")
}

// placeOutputClause inserts the OUTPUT clause at the position SQL Server
// requires: before VALUES or the source SELECT on INSERT, and before WHERE
// on UPDATE and DELETE. Without such a boundary the clause goes at the end.
func placeOutputClause(body string, kind StatementKind, clause string) (string, error) {
	at := -1
	switch kind {
	case KindInsert:
		if at = findKeyword(body, 0, "VALUES"); at == -1 {
			at = findKeyword(body, 0, "SELECT")
		}
	case KindUpdate, KindDelete:
		at = findKeyword(body, 0, "WHERE")
	default:
		return "", fmt.Errorf("transpile: cannot place an OUTPUT clause on a %s statement", kind)
	}
	if at == -1 {
		return body + " " + clause, nil
	}
	return body[:at] + clause + " " + body[at:], nil
}
