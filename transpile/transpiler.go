package transpile

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/Sterbis/sqldatabase/dialect"
)

// Transpiler rewrites statement templates written in a source dialect into a
// target dialect's text and placeholder convention, and reconciles parameter
// collections against the rewritten placeholders. Parsed templates are
// cached by template text; a Transpiler is safe for concurrent use.
type Transpiler struct {
	source   string
	target   string
	rewriter Rewriter
	pretty   bool
	cache    sync.Map // template text -> *parsedTemplate
	group    singleflight.Group
}

// Option configures a Transpiler.
type Option func(*Transpiler)

// WithRewriter replaces the built-in clause rewriter, for callers that parse
// and render statement shapes through an external SQL engine.
func WithRewriter(r Rewriter) Option {
	return func(t *Transpiler) { t.rewriter = r }
}

// WithPretty keeps the template's original whitespace instead of collapsing
// it to single spaces.
func WithPretty() Option {
	return func(t *Transpiler) { t.pretty = true }
}

// New returns a Transpiler from the source to the target dialect.
func New(source, target string, opts ...Option) (*Transpiler, error) {
	if err := dialect.Validate(source); err != nil {
		return nil, err
	}
	if err := dialect.Validate(target); err != nil {
		return nil, err
	}
	t := &Transpiler{source: source, target: target, rewriter: NewRewriter()}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Transpile rewrites one template between dialects. Callers translating
// many statements should hold a Transpiler instead, to reuse its template
// cache.
func Transpile(sql string, params *Parameters, source, target string) (string, *Parameters, error) {
	t, err := New(source, target)
	if err != nil {
		return "", nil, err
	}
	return t.Transpile(sql, params)
}

// Source returns the source dialect.
func (t *Transpiler) Source() string { return t.source }

// Target returns the target dialect.
func (t *Transpiler) Target() string { return t.target }

// Transpile rewrites the template into target dialect text and reconciles
// params with the rewritten placeholders.
func (t *Transpiler) Transpile(sql string, params *Parameters) (string, *Parameters, error) {
	tmpl, err := t.parse(sql)
	if err != nil {
		return "", nil, err
	}
	reconciled, err := reconcile(tmpl.tokens, params, t.target)
	if err != nil {
		return "", nil, err
	}
	return tmpl.sql, reconciled, nil
}

// SQL rewrites the template text alone.
func (t *Transpiler) SQL(sql string) (string, error) {
	tmpl, err := t.parse(sql)
	if err != nil {
		return "", err
	}
	return tmpl.sql, nil
}

// Reconcile aligns a parameter collection with the template's placeholders
// without re-rendering the text. Re-executing a cached template with fresh
// row values goes through this path.
func (t *Transpiler) Reconcile(sql string, params *Parameters) (*Parameters, error) {
	tmpl, err := t.parse(sql)
	if err != nil {
		return nil, err
	}
	return reconcile(tmpl.tokens, params, t.target)
}

// parsedTemplate is the cached form of one template text.
type parsedTemplate struct {
	sql    string  // target dialect text with rewritten placeholders
	tokens []token // placeholder tokens of the clause-rewritten text
}

func (t *Transpiler) parse(sql string) (*parsedTemplate, error) {
	if cached, ok := t.cache.Load(sql); ok {
		return cached.(*parsedTemplate), nil
	}
	v, err, _ := t.group.Do(sql, func() (any, error) {
		if cached, ok := t.cache.Load(sql); ok {
			return cached, nil
		}
		tmpl, err := t.build(sql)
		if err != nil {
			return nil, err
		}
		t.cache.Store(sql, tmpl)
		return tmpl, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*parsedTemplate), nil
}

func (t *Transpiler) build(sql string) (*parsedTemplate, error) {
	stmt, err := t.rewriter.Parse(sql, t.source)
	if err != nil {
		return nil, err
	}
	text, err := t.rewriter.Render(stmt, t.target, t.pretty)
	if err != nil {
		return nil, err
	}
	tokens := scanTokens(text)
	var hasNamed, hasPositional bool
	for _, tok := range tokens {
		if tok.kind == tokenNamed {
			hasNamed = true
		} else {
			hasPositional = true
		}
	}
	if hasNamed && hasPositional {
		return nil, fmt.Errorf("transpile: template mixes named and positional placeholders")
	}
	rewritten := rewriteTokens(text, tokens, t.target)
	return &parsedTemplate{sql: rewritten, tokens: tokens}, nil
}

// positionalName is the key a positional slot gets when the target dialect
// binds parameters by name.
func positionalName(index int) string {
	return "parameter_" + strconv.Itoa(index)
}

// rewriteTokens replaces every placeholder token with the target dialect's
// convention, byte-for-byte preserving all surrounding text. The scan
// position advances past each replacement, so rewritten text is never
// rescanned.
func rewriteTokens(sql string, tokens []token, target string) string {
	if len(tokens) == 0 {
		return sql
	}
	var b strings.Builder
	b.Grow(len(sql))
	style := dialect.Params(target)
	last, anonymous := 0, 0
	for i, tok := range tokens {
		b.WriteString(sql[last:tok.start])
		if tok.kind == tokenAnonymous {
			anonymous++
		}
		switch style {
		case dialect.ParamNamed:
			switch tok.kind {
			case tokenNamed:
				b.WriteString(":" + tok.name)
			case tokenOrdinal:
				b.WriteString(":" + positionalName(tok.index))
			case tokenAnonymous:
				b.WriteString(":" + positionalName(anonymous))
			}
		case dialect.ParamOrdinal:
			b.WriteString("$" + strconv.Itoa(i+1))
		case dialect.ParamAnonymous:
			b.WriteByte('?')
		}
		last = tok.end
	}
	b.WriteString(sql[last:])
	return b.String()
}

// reconcile aligns params with the template's placeholder tokens and lowers
// the result to the target dialect's collection style: named for SQLite,
// positional with one value slot per token occurrence for the rest.
func reconcile(tokens []token, params *Parameters, target string) (*Parameters, error) {
	if params == nil {
		params = Named()
	}
	toNamed := dialect.Params(target) == dialect.ParamNamed
	if len(tokens) == 0 {
		if params.Style() == StylePositional && params.Len() > 0 {
			return nil, NewParameterCountError(0, params.Len())
		}
		if toNamed {
			return Named(), nil
		}
		return Positional(), nil
	}

	// One slot per token occurrence, in order of appearance.
	names := make([]string, 0, len(tokens))
	values := make([]any, 0, len(tokens))
	if tokens[0].kind == tokenNamed {
		lookup, err := namedLookup(tokens, params)
		if err != nil {
			return nil, err
		}
		for _, tok := range tokens {
			value, ok := lookup[tok.name]
			if !ok {
				return nil, NewMissingParameterError(tok.name)
			}
			names = append(names, tok.name)
			values = append(values, value)
		}
	} else {
		if params.Style() != StylePositional {
			return nil, fmt.Errorf("transpile: cannot bind named parameters to positional placeholders")
		}
		seq := params.Values()
		indexes, err := slotIndexes(tokens, len(seq))
		if err != nil {
			return nil, err
		}
		for _, index := range indexes {
			names = append(names, positionalName(index))
			values = append(values, seq[index-1])
		}
	}

	if !toNamed {
		return Positional(values...), nil
	}
	out := Named()
	for i, name := range names {
		if _, ok := out.Value(name); ok {
			// A repeated placeholder binds once; the slots share the value.
			continue
		}
		if err := out.Add(name, values[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// namedLookup resolves the name to value mapping used to fill named tokens.
// A named collection is used as is, reduced to the referenced names. A
// positional sequence is zipped onto the distinct names in order of first
// appearance, which requires the counts to match.
func namedLookup(tokens []token, params *Parameters) (map[string]any, error) {
	if params.Style() == StyleNamed {
		lookup := make(map[string]any, params.Len())
		for _, name := range params.Names() {
			value, _ := params.Value(name)
			lookup[name] = value
		}
		return lookup, nil
	}
	var distinct []string
	seen := make(map[string]bool)
	for _, tok := range tokens {
		if !seen[tok.name] {
			seen[tok.name] = true
			distinct = append(distinct, tok.name)
		}
	}
	seq := params.Values()
	if len(seq) != len(distinct) {
		return nil, NewParameterCountError(len(distinct), len(seq))
	}
	lookup := make(map[string]any, len(distinct))
	for i, name := range distinct {
		lookup[name] = seq[i]
	}
	return lookup, nil
}

// slotIndexes maps each positional token to a 1-based index into the value
// sequence: the explicit ordinal for $n and @n tokens, the appearance count
// for anonymous ones. Every value must be referenced at least once.
func slotIndexes(tokens []token, count int) ([]int, error) {
	indexes := make([]int, len(tokens))
	used := make([]bool, count)
	highest, anonymous := 0, 0
	for i, tok := range tokens {
		index := tok.index
		if tok.kind == tokenAnonymous {
			anonymous++
			index = anonymous
		}
		if index > highest {
			highest = index
		}
		if index < 1 || index > count {
			return nil, NewParameterCountError(index, count)
		}
		used[index-1] = true
		indexes[i] = index
	}
	if highest != count {
		return nil, NewParameterCountError(highest, count)
	}
	for i, u := range used {
		if !u {
			return nil, fmt.Errorf("transpile: positional value %d is never referenced by a placeholder", i+1)
		}
	}
	return indexes, nil
}
