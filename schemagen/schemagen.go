// Package schemagen renders Go source for a YAML schema spec. The generated
// file declares one struct per table with typed handles for the table and its
// columns, constants for enum column values and a NewSchema constructor that
// rebuilds the whole graph, so application code gets compile-time checked
// access to everything the spec names.
package schemagen

import (
	"bytes"
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"
	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/tools/imports"

	"github.com/Sterbis/sqldatabase/schema"
)

// schemaPkg is the import path of the package the generated code builds
// against.
const schemaPkg = "github.com/Sterbis/sqldatabase/schema"

// Config controls code generation.
type Config struct {
	// Package is the package name of the generated file.
	Package string
}

// Generate renders the Go declarations for spec as gofmt-formatted source.
// The spec is built once up front, so invalid types, dangling references and
// duplicate names are reported before any code is emitted.
func Generate(spec *schema.Spec, cfg Config) ([]byte, error) {
	raw, err := render(spec, cfg)
	if err != nil {
		return nil, err
	}
	src, err := imports.Process(cfg.Package+".go", raw, nil)
	if err != nil {
		return nil, fmt.Errorf("schemagen: format generated source: %w", err)
	}
	return src, nil
}

// GenerateFile generates the declarations for the spec file at specPath and
// writes them to outPath, creating parent directories as needed. When
// formatting fails the unformatted source is kept next to the target with an
// .error suffix so the fault can be inspected.
func GenerateFile(specPath, outPath string, cfg Config) error {
	spec, err := schema.LoadSpec(specPath)
	if err != nil {
		return err
	}
	raw, err := render(spec, cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("schemagen: create output directory: %w", err)
	}
	src, err := imports.Process(outPath, raw, nil)
	if err != nil {
		if werr := os.WriteFile(outPath+".error", raw, 0o644); werr == nil {
			return fmt.Errorf("schemagen: format generated source (unformatted copy kept at %s.error): %w", outPath, err)
		}
		return fmt.Errorf("schemagen: format generated source: %w", err)
	}
	if err := os.WriteFile(outPath, src, 0o644); err != nil {
		return fmt.Errorf("schemagen: write %s: %w", outPath, err)
	}
	return nil
}

func render(spec *schema.Spec, cfg Config) ([]byte, error) {
	if cfg.Package == "" {
		return nil, fmt.Errorf("schemagen: package name must not be empty")
	}
	if spec == nil || len(spec.Tables) == 0 {
		return nil, fmt.Errorf("schemagen: spec declares no tables")
	}
	if _, err := spec.Build(); err != nil {
		return nil, err
	}
	g, err := newGenerator(spec)
	if err != nil {
		return nil, err
	}
	f := jen.NewFile(cfg.Package)
	f.HeaderComment("Code generated by sqldbctl gen. DO NOT EDIT.")
	for _, ts := range spec.Tables {
		g.tableStruct(f, ts)
		g.enumConsts(f, ts)
	}
	g.schemaType(f)
	if err := g.newSchemaFunc(f); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("schemagen: render: %w", err)
	}
	return buf.Bytes(), nil
}

// generator carries the precomputed Go names of every table and column, all
// vetted for identifier validity and collisions before any code is emitted.
type generator struct {
	spec *schema.Spec
	// typeNames maps a table name to its exported struct type name.
	typeNames map[string]string
	// fieldNames maps "table.column" to the exported struct field name.
	fieldNames map[string]string
	// localNames maps a table name or "table.column" to the local variable
	// holding it inside NewSchema.
	localNames map[string]string
	// enumNames maps "table.column" to the constant names of its enum
	// values, index-aligned with the spec values.
	enumNames map[string][]string
}

func newGenerator(spec *schema.Spec) (*generator, error) {
	g := &generator{
		spec:       spec,
		typeNames:  make(map[string]string),
		fieldNames: make(map[string]string),
		localNames: make(map[string]string),
		enumNames:  make(map[string][]string),
	}
	caser := cases.Title(language.English)
	seenTypes := make(map[string]string)
	// NewSchema declares these itself.
	seenLocals := map[string]bool{"tables": true, "err": true}
	for _, ts := range spec.Tables {
		typeName := exported(ts.Name)
		if !token.IsIdentifier(typeName) {
			return nil, fmt.Errorf("schemagen: table name %q does not map to a Go identifier", ts.Name)
		}
		if typeName == "Schema" {
			return nil, fmt.Errorf("schemagen: table %q collides with the generated Schema type", ts.Name)
		}
		if prev, ok := seenTypes[typeName]; ok {
			return nil, fmt.Errorf("schemagen: tables %q and %q both map to Go name %s", prev, ts.Name, typeName)
		}
		seenTypes[typeName] = ts.Name
		g.typeNames[ts.Name] = typeName

		tableLocal := local(unexported(typeName))
		if seenLocals[tableLocal] {
			return nil, fmt.Errorf("schemagen: table %q yields duplicate local variable %s", ts.Name, tableLocal)
		}
		seenLocals[tableLocal] = true
		g.localNames[ts.Name] = tableLocal

		seenFields := make(map[string]string, len(ts.Columns))
		for _, cs := range ts.Columns {
			fieldName := exported(cs.Name)
			if !token.IsIdentifier(fieldName) {
				return nil, fmt.Errorf("schemagen: table %q column name %q does not map to a Go identifier", ts.Name, cs.Name)
			}
			if fieldName == "Table" {
				return nil, fmt.Errorf("schemagen: table %q column %q collides with the generated Table field", ts.Name, cs.Name)
			}
			if prev, ok := seenFields[fieldName]; ok {
				return nil, fmt.Errorf("schemagen: table %q columns %q and %q both map to Go name %s", ts.Name, prev, cs.Name, fieldName)
			}
			seenFields[fieldName] = cs.Name

			columnLocal := unexported(typeName) + fieldName
			if seenLocals[columnLocal] {
				return nil, fmt.Errorf("schemagen: table %q column %q yields duplicate local variable %s", ts.Name, cs.Name, columnLocal)
			}
			seenLocals[columnLocal] = true

			key := ts.Name + "." + cs.Name
			g.fieldNames[key] = fieldName
			g.localNames[key] = columnLocal

			switch cs.Default.(type) {
			case nil, bool, int, int64, uint64, float64, string:
			default:
				return nil, fmt.Errorf("schemagen: table %q column %q has unsupported default of type %T", ts.Name, cs.Name, cs.Default)
			}

			if len(cs.Values) == 0 {
				continue
			}
			names := make([]string, len(cs.Values))
			seenConsts := make(map[string]string, len(cs.Values))
			for i, v := range cs.Values {
				name := constName(caser, typeName+fieldName, v)
				if name == typeName+fieldName {
					return nil, fmt.Errorf("schemagen: table %q column %q value %q yields no identifier characters", ts.Name, cs.Name, v)
				}
				if prev, ok := seenConsts[name]; ok {
					return nil, fmt.Errorf("schemagen: table %q column %q values %q and %q both map to constant %s", ts.Name, cs.Name, prev, v, name)
				}
				seenConsts[name] = v
				names[i] = name
			}
			g.enumNames[key] = names
		}
	}
	return g, nil
}

func (g *generator) tableStruct(f *jen.File, ts schema.TableSpec) {
	typeName := g.typeNames[ts.Name]
	f.Commentf("%s exposes the typed handles of the %s table.", typeName, ts.Name)
	f.Type().Id(typeName).StructFunc(func(grp *jen.Group) {
		grp.Id("Table").Op("*").Qual(schemaPkg, "Table")
		for _, cs := range ts.Columns {
			grp.Id(g.fieldNames[ts.Name+"."+cs.Name]).Op("*").Qual(schemaPkg, "Column")
		}
	})
}

func (g *generator) enumConsts(f *jen.File, ts schema.TableSpec) {
	for _, cs := range ts.Columns {
		names := g.enumNames[ts.Name+"."+cs.Name]
		if len(names) == 0 {
			continue
		}
		f.Commentf("Allowed values of the %s.%s column.", ts.Name, cs.Name)
		f.Const().DefsFunc(func(grp *jen.Group) {
			for i, name := range names {
				grp.Id(name).Op("=").Lit(cs.Values[i])
			}
		})
	}
}

func (g *generator) schemaType(f *jen.File) {
	f.Comment("Schema bundles one freshly built graph of every spec table.")
	f.Type().Id("Schema").StructFunc(func(grp *jen.Group) {
		grp.Id("Tables").Op("*").Qual(schemaPkg, "Tables")
		for _, ts := range g.spec.Tables {
			name := g.typeNames[ts.Name]
			grp.Id(name).Op("*").Id(name)
		}
	})
}

func (g *generator) newSchemaFunc(f *jen.File) error {
	// Column constructors are prepared ahead of the closure so their errors
	// can surface.
	columnExprs := make(map[string]jen.Code)
	for _, ts := range g.spec.Tables {
		for _, cs := range ts.Columns {
			expr, err := g.columnExpr(ts, cs)
			if err != nil {
				return err
			}
			columnExprs[ts.Name+"."+cs.Name] = expr
		}
	}
	hasRefs := false
	for _, ts := range g.spec.Tables {
		for _, cs := range ts.Columns {
			if cs.References != "" {
				hasRefs = true
			}
		}
	}
	f.Comment("NewSchema builds the table graph the schema spec declares; every call returns an independent graph.")
	f.Func().Id("NewSchema").Params().Params(jen.Op("*").Id("Schema"), jen.Error()).BlockFunc(func(grp *jen.Group) {
		for _, ts := range g.spec.Tables {
			for _, cs := range ts.Columns {
				key := ts.Name + "." + cs.Name
				grp.Id(g.localNames[key]).Op(":=").Add(columnExprs[key])
			}
		}
		if hasRefs {
			grp.Line()
			for _, ts := range g.spec.Tables {
				for _, cs := range ts.Columns {
					if cs.References == "" {
						continue
					}
					stmt := jen.Id(g.localNames[ts.Name+"."+cs.Name]).Dot("References").Call(jen.Id(g.localNames[cs.References]))
					if cs.OnDelete != "" {
						stmt.Dot("OnDelete").Call(jen.Qual(schemaPkg, actionIdent(cs.OnDelete)))
					}
					grp.Add(stmt)
				}
			}
		}
		grp.Line()
		for _, ts := range g.spec.Tables {
			args := make([]jen.Code, 0, len(ts.Columns)+1)
			args = append(args, jen.Lit(ts.Name))
			for _, cs := range ts.Columns {
				args = append(args, jen.Id(g.localNames[ts.Name+"."+cs.Name]))
			}
			expr := jen.Qual(schemaPkg, "NewTable").Call(args...)
			if ts.Schema != "" {
				expr.Dot("Schema").Call(jen.Lit(ts.Schema))
			}
			grp.Id(g.localNames[ts.Name]).Op(":=").Add(expr)
		}
		grp.Line()
		tableArgs := make([]jen.Code, 0, len(g.spec.Tables))
		for _, ts := range g.spec.Tables {
			tableArgs = append(tableArgs, jen.Id(g.localNames[ts.Name]))
		}
		grp.List(jen.Id("tables"), jen.Err()).Op(":=").Qual(schemaPkg, "NewTables").Call(tableArgs...)
		grp.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err()))
		grp.Return(jen.Op("&").Id("Schema").Values(jen.DictFunc(func(d jen.Dict) {
			d[jen.Id("Tables")] = jen.Id("tables")
			for _, ts := range g.spec.Tables {
				typeName := g.typeNames[ts.Name]
				d[jen.Id(typeName)] = jen.Op("&").Id(typeName).Values(jen.DictFunc(func(inner jen.Dict) {
					inner[jen.Id("Table")] = jen.Id(g.localNames[ts.Name])
					for _, cs := range ts.Columns {
						key := ts.Name + "." + cs.Name
						inner[jen.Id(g.fieldNames[key])] = jen.Id(g.localNames[key])
					}
				}))
			}
		})), jen.Nil())
	})
	return nil
}

// columnExpr renders the constructor chain of one column. The canonical
// integer primary key collapses to schema.IDColumn().
func (g *generator) columnExpr(ts schema.TableSpec, cs schema.ColumnSpec) (jen.Code, error) {
	if isIDColumn(cs) {
		return jen.Qual(schemaPkg, "IDColumn").Call(), nil
	}
	typeExpr, err := typeExpr(cs.Type)
	if err != nil {
		return nil, fmt.Errorf("schemagen: table %q column %q: %w", ts.Name, cs.Name, err)
	}
	expr := jen.Qual(schemaPkg, "NewColumn").Call(jen.Lit(cs.Name), typeExpr)
	if cs.PrimaryKey {
		expr.Dot("PrimaryKey").Call()
	}
	if cs.Autoincrement {
		expr.Dot("Autoincrement").Call()
	}
	if cs.NotNull {
		expr.Dot("NotNull").Call()
	}
	if cs.Unique {
		expr.Dot("Unique").Call()
	}
	if cs.Default != nil {
		expr.Dot("Default").Call(jen.Lit(cs.Default))
	}
	if names := g.enumNames[ts.Name+"."+cs.Name]; len(names) > 0 {
		args := make([]jen.Code, len(names))
		for i, name := range names {
			args[i] = jen.Id(name)
		}
		expr.Dot("Values").Call(args...)
	}
	return expr, nil
}

// isIDColumn reports whether the column spec matches schema.IDColumn exactly.
func isIDColumn(cs schema.ColumnSpec) bool {
	return cs.Name == "id" &&
		strings.EqualFold(strings.TrimSpace(cs.Type), "INTEGER") &&
		cs.PrimaryKey && cs.Autoincrement &&
		!cs.NotNull && !cs.Unique &&
		cs.Default == nil && cs.References == "" && len(cs.Values) == 0
}

// sizedTypeRe matches parameterized type names such as VARCHAR(30).
var sizedTypeRe = regexp.MustCompile(`^([A-Za-z]+)\((\d+)\)$`)

// typeIdents maps unsized spec type names to schema package identifiers.
var typeIdents = map[string]string{
	"BLOB":     "Blob",
	"BOOLEAN":  "Boolean",
	"DATE":     "Date",
	"DATETIME": "DateTime",
	"FLOAT":    "Float",
	"INTEGER":  "Integer",
	"TEXT":     "Text",
	"TIME":     "Time",
}

// typeExpr maps a spec type name to the schema package expression building it.
func typeExpr(name string) (jen.Code, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if m := sizedTypeRe.FindStringSubmatch(upper); m != nil {
		size, err := strconv.Atoi(m[2])
		if err != nil || size <= 0 {
			return nil, fmt.Errorf("invalid type size in %q", name)
		}
		switch m[1] {
		case "VARCHAR":
			return jen.Qual(schemaPkg, "Varchar").Call(jen.Lit(size)), nil
		case "NVARCHAR":
			return jen.Qual(schemaPkg, "NVarchar").Call(jen.Lit(size)), nil
		}
		return nil, fmt.Errorf("unknown data type %q", name)
	}
	ident, ok := typeIdents[upper]
	if !ok {
		return nil, fmt.Errorf("unknown data type %q", name)
	}
	return jen.Qual(schemaPkg, ident), nil
}

// actionIdent maps a spec on_delete value to the schema package identifier
// of the matching reference action. Build vets the value, so unknown names
// cannot reach this point.
func actionIdent(name string) string {
	action, err := schema.ReferenceActionByName(name)
	if err != nil {
		return ""
	}
	switch action {
	case schema.Restrict:
		return "Restrict"
	case schema.SetNull:
		return "SetNull"
	case schema.SetDefault:
		return "SetDefault"
	case schema.Cascade:
		return "Cascade"
	default:
		return "NoAction"
	}
}

// exported derives the exported Go name of an SQL identifier. Names are
// camelized and a trailing Id becomes ID, so "word_id" turns into WordID.
func exported(name string) string {
	n := inflect.Camelize(strings.ToLower(name))
	if n == "Id" {
		return "ID"
	}
	if strings.HasSuffix(n, "Id") {
		return strings.TrimSuffix(n, "Id") + "ID"
	}
	return n
}

func unexported(name string) string {
	if name == "" {
		return name
	}
	r := []rune(name)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// local guards NewSchema variable names against Go keywords, so a table
// named "select" becomes the local select_.
func local(name string) string {
	if token.IsKeyword(name) {
		return name + "_"
	}
	return name
}

// constName builds the constant identifier for one enum value, title-casing
// the value and dropping every rune that cannot appear in an identifier.
func constName(caser cases.Caser, prefix, value string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, r := range caser.String(strings.ToLower(value)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
