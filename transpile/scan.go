package transpile

import "strings"

type tokenKind int

const (
	tokenNamed     tokenKind = iota // :name, @name, $name
	tokenOrdinal                    // $1, @1
	tokenAnonymous                  // ?
)

// token is one placeholder occurrence located in statement text.
type token struct {
	kind  tokenKind
	name  string // named tokens: identifier without the prefix character
	index int    // ordinal tokens: the 1-based ordinal
	start int    // byte offset of the token
	end   int    // byte offset past the token
}

// scanTokens locates the placeholder tokens of sql in left-to-right order.
// Tokens inside single- or double-quoted literals are never matched, and a
// Postgres :: cast never starts a named token.
func scanTokens(sql string) []token {
	var tokens []token
	for i := 0; i < len(sql); {
		switch c := sql[i]; c {
		case '\'', '"':
			i = skipLiteral(sql, i)
		case ':':
			if i+1 < len(sql) && sql[i+1] == ':' {
				i += 2
				continue
			}
			if i+1 < len(sql) && isIdentStart(sql[i+1]) {
				name, end := scanIdent(sql, i+1)
				tokens = append(tokens, token{kind: tokenNamed, name: name, start: i, end: end})
				i = end
				continue
			}
			i++
		case '@', '$':
			if c == '@' && i+1 < len(sql) && sql[i+1] == '@' {
				i += 2
				continue
			}
			if i+1 < len(sql) && isDigit(sql[i+1]) {
				index, end := scanNumber(sql, i+1)
				tokens = append(tokens, token{kind: tokenOrdinal, index: index, start: i, end: end})
				i = end
				continue
			}
			if i+1 < len(sql) && isIdentStart(sql[i+1]) {
				name, end := scanIdent(sql, i+1)
				tokens = append(tokens, token{kind: tokenNamed, name: name, start: i, end: end})
				i = end
				continue
			}
			i++
		case '?':
			tokens = append(tokens, token{kind: tokenAnonymous, start: i, end: i + 1})
			i++
		default:
			i++
		}
	}
	return tokens
}

// skipLiteral advances past the quoted literal starting at sql[i]. A doubled
// quote character escapes itself. An unterminated literal runs to the end.
func skipLiteral(sql string, i int) int {
	quote := sql[i]
	for i++; i < len(sql); i++ {
		if sql[i] != quote {
			continue
		}
		if i+1 < len(sql) && sql[i+1] == quote {
			i++
			continue
		}
		return i + 1
	}
	return len(sql)
}

func scanIdent(sql string, i int) (string, int) {
	j := i
	for j < len(sql) && isIdentPart(sql[j]) {
		j++
	}
	return sql[i:j], j
}

func scanNumber(sql string, i int) (int, int) {
	n := 0
	j := i
	for j < len(sql) && isDigit(sql[j]) {
		n = n*10 + int(sql[j]-'0')
		j++
	}
	return n, j
}

func isIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// normalizeSpace collapses whitespace runs outside quoted literals into
// single spaces and trims both ends.
func normalizeSpace(sql string) string {
	var b strings.Builder
	b.Grow(len(sql))
	for i := 0; i < len(sql); {
		switch c := sql[i]; {
		case c == '\'' || c == '"':
			end := skipLiteral(sql, i)
			b.WriteString(sql[i:end])
			i = end
		case isSpace(c):
			for i < len(sql) && isSpace(sql[i]) {
				i++
			}
			b.WriteByte(' ')
		default:
			b.WriteByte(c)
			i++
		}
	}
	return strings.TrimSpace(b.String())
}

// findKeyword returns the byte offset of the first whole-word, top-level
// occurrence of keyword at or after from, skipping quoted literals and
// parenthesized groups. Matching is case-insensitive. Returns -1 when the
// keyword does not occur.
func findKeyword(sql string, from int, keyword string) int {
	depth := 0
	for i := from; i < len(sql); {
		switch c := sql[i]; {
		case c == '\'' || c == '"':
			i = skipLiteral(sql, i)
		case c == '(':
			depth++
			i++
		case c == ')':
			if depth > 0 {
				depth--
			}
			i++
		case isIdentStart(c) && (i == 0 || !isIdentPart(sql[i-1])):
			word, end := scanIdent(sql, i)
			if depth == 0 && strings.EqualFold(word, keyword) {
				return i
			}
			i = end
		default:
			i++
		}
	}
	return -1
}

// findLastKeyword returns the byte offset of the last top-level occurrence
// of keyword, or -1.
func findLastKeyword(sql, keyword string) int {
	last := -1
	for i := findKeyword(sql, 0, keyword); i != -1; i = findKeyword(sql, i+len(keyword), keyword) {
		last = i
	}
	return last
}
