package statement

import (
	"bytes"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/Sterbis/sqldatabase/dialect"
	"github.com/Sterbis/sqldatabase/schema"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("statement").
	Funcs(template.FuncMap{"join": strings.Join}).
	ParseFS(templateFS, "templates/*.tmpl"))

// render executes the named template and strips blank lines from its output.
func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("statement: render %s: %w", name, err)
	}
	var lines []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// literal renders a column default as SQL literal text. Expr values render
// unquoted, strings quote with '' escaping, temporal values quote their ISO
// text form. Booleans render as TRUE/FALSE only on dialects with a boolean
// literal; elsewhere they store as integers.
func literal(value any, kind schema.Kind, dialectName string) (string, error) {
	switch v := value.(type) {
	case nil:
		return "NULL", nil
	case schema.Expr:
		return string(v), nil
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'", nil
	case bool:
		if dialectName == dialect.Postgres || dialectName == dialect.MySQL {
			if v {
				return "TRUE", nil
			}
			return "FALSE", nil
		}
		if v {
			return "1", nil
		}
		return "0", nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case time.Time:
		return "'" + kind.FormatTime(v) + "'", nil
	default:
		return "", fmt.Errorf("statement: unsupported default literal %T", value)
	}
}
