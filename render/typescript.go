// Package render turns generator declarations into TypeScript source lines.
package render

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/lucasefe/pgts/generator"
	"github.com/lucasefe/pgts/typemap"
)

// TypeScript renders the declarations of the file at fileKey. Imports come
// first, one group per module sorted by specifier, followed by the
// declarations in the order given. An import whose name is already taken
// in the file, by a local declaration or by an import from another module,
// is bound under an alias prefixed with its source, e.g. AuthUsersId for
// UsersId from auth/Users. The result depends only on its inputs.
func TypeScript(decls []*generator.Declaration, fileKey string) []string {
	s := newScope(decls, fileKey)

	var lines []string
	lines = append(lines, s.importLines()...)

	for _, d := range decls {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, s.declaration(d)...)
	}
	return lines
}

type importKey struct {
	spec      string
	name      string
	isDefault bool
}

// scope holds the local binding of every import of one file.
type scope struct {
	fileKey string
	imports []importKey
	local   map[importKey]string
}

func newScope(decls []*generator.Declaration, fileKey string) *scope {
	s := &scope{fileKey: fileKey, local: make(map[importKey]string)}
	sources := make(map[importKey]typemap.Import)
	for _, d := range decls {
		for _, ref := range d.Dependencies() {
			k, ok := s.key(ref.Import)
			if !ok {
				continue
			}
			if _, seen := sources[k]; !seen {
				sources[k] = ref.Import
				s.imports = append(s.imports, k)
			}
		}
	}
	slices.SortFunc(s.imports, func(a, b importKey) int {
		if c := strings.Compare(a.spec, b.spec); c != 0 {
			return c
		}
		if a.isDefault != b.isDefault {
			if a.isDefault {
				return -1
			}
			return 1
		}
		return strings.Compare(a.name, b.name)
	})

	taken := make(map[string]bool, len(decls)+len(s.imports))
	for _, d := range decls {
		taken[d.Name] = true
	}
	for _, k := range s.imports {
		name := k.name
		if taken[name] {
			name = aliasFor(sources[k], name, taken)
		}
		taken[name] = true
		s.local[k] = name
	}
	return s
}

// key reports the import key of imp, or false when imp needs no import
// statement in this file.
func (s *scope) key(imp typemap.Import) (importKey, bool) {
	if imp.IsZero() || (!imp.External && imp.From == s.fileKey) {
		return importKey{}, false
	}
	return importKey{spec: specifier(imp, s.fileKey), name: imp.Name, isDefault: imp.Default}, true
}

var nonWord = regexp.MustCompile(`[^A-Za-z0-9]+`)

// aliasFor prefixes name with the PascalCase folder of an internal import
// or the package name of an external one, adding a counter if that is
// taken too.
func aliasFor(imp typemap.Import, name string, taken map[string]bool) string {
	source := imp.From
	if !imp.External {
		source = path.Dir(source)
	}
	prefix := generator.PascalCase(strings.Trim(nonWord.ReplaceAllString(source, "_"), "_"))
	alias := prefix + name
	for i := 2; taken[alias]; i++ {
		alias = fmt.Sprintf("%s%s%d", prefix, name, i)
	}
	return alias
}

// expr returns the type expression of ref as written in this file.
func (s *scope) expr(ref typemap.Reference) string {
	k, ok := s.key(ref.Import)
	if !ok {
		return ref.Expr
	}
	local := s.local[k]
	if local == "" || local == k.name {
		return ref.Expr
	}
	return replaceIdentifier(ref.Expr, k.name, local)
}

// replaceIdentifier replaces whole-word occurrences of old in expr.
func replaceIdentifier(expr, old, repl string) string {
	var b strings.Builder
	for {
		i := strings.Index(expr, old)
		if i < 0 {
			b.WriteString(expr)
			return b.String()
		}
		end := i + len(old)
		whole := (i == 0 || !isIdentByte(expr[i-1])) && (end == len(expr) || !isIdentByte(expr[end]))
		b.WriteString(expr[:i])
		if whole {
			b.WriteString(repl)
		} else {
			b.WriteString(old)
		}
		expr = expr[end:]
	}
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

type importGroup struct {
	defaults []string
	named    []string
}

func (s *scope) importLines() []string {
	groups := make(map[string]*importGroup)
	var specs []string
	for _, k := range s.imports {
		g, ok := groups[k.spec]
		if !ok {
			g = &importGroup{}
			groups[k.spec] = g
			specs = append(specs, k.spec)
		}
		local := s.local[k]
		switch {
		case k.isDefault:
			g.defaults = append(g.defaults, local)
		case local != k.name:
			g.named = append(g.named, k.name+" as "+local)
		default:
			g.named = append(g.named, k.name)
		}
	}

	var lines []string
	for _, spec := range specs {
		g := groups[spec]
		for _, name := range g.defaults {
			lines = append(lines, fmt.Sprintf("import type %s from '%s';", name, spec))
		}
		if len(g.named) > 0 {
			lines = append(lines, fmt.Sprintf("import type { %s } from '%s';", strings.Join(g.named, ", "), spec))
		}
	}
	return lines
}

// specifier returns the module specifier used to import imp from the file
// at fileKey: package imports verbatim, generated files as a relative path.
func specifier(imp typemap.Import, fileKey string) string {
	if imp.External {
		return imp.From
	}
	rel, err := filepath.Rel(filepath.FromSlash(path.Dir(fileKey)), filepath.FromSlash(imp.From))
	if err != nil {
		return imp.From
	}
	rel = filepath.ToSlash(rel)
	if !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}
	return rel
}

func (s *scope) declaration(d *generator.Declaration) []string {
	lines := docComment(d.Comment, "")

	switch p := d.Payload.(type) {
	case generator.Interface:
		lines = append(lines, s.interfaceBody(d, p.Properties)...)
	case generator.Range:
		props := []generator.Property{
			{Name: "lower", Type: p.Subtype, Nullable: true},
			{Name: "upper", Type: p.Subtype, Nullable: true},
			{Name: "lowerInclusive", Type: typemap.Literal("boolean")},
			{Name: "upperInclusive", Type: typemap.Literal("boolean")},
		}
		lines = append(lines, s.interfaceBody(d, props)...)
	case generator.Alias:
		expr := typeExpr(s.expr(p.Type), p.Dimensions)
		if p.Brand != "" {
			expr = fmt.Sprintf("%s & { __brand: %s }", expr, quote(p.Brand))
		}
		lines = append(lines, typeAlias(d, expr)...)
	case generator.Union:
		values := make([]string, 0, len(p.Values))
		for _, v := range p.Values {
			values = append(values, quote(v))
		}
		expr := strings.Join(values, " | ")
		if expr == "" {
			expr = "never"
		}
		lines = append(lines, typeAlias(d, expr)...)
	case generator.Raw:
		lines = append(lines, p.Lines...)
	}
	return lines
}

func (s *scope) interfaceBody(d *generator.Declaration, props []generator.Property) []string {
	head := "export interface " + d.Name
	if d.ExportAs == generator.ExportDefault {
		head = "export default interface " + d.Name
	}
	if len(props) == 0 {
		return []string{head + " {}"}
	}

	lines := []string{head + " {"}
	for i, p := range props {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, docComment(p.Comment, "  ")...)

		expr := typeExpr(s.expr(p.Type), p.Dimensions)
		if p.Nullable {
			expr += " | null"
		}
		opt := ""
		if p.Optional {
			opt = "?"
		}
		lines = append(lines, fmt.Sprintf("  %s%s: %s;", propertyName(p.Name), opt, expr))
	}
	return append(lines, "}")
}

func typeAlias(d *generator.Declaration, expr string) []string {
	if d.ExportAs == generator.ExportDefault {
		return []string{
			fmt.Sprintf("type %s = %s;", d.Name, expr),
			"",
			fmt.Sprintf("export default %s;", d.Name),
		}
	}
	return []string{fmt.Sprintf("export type %s = %s;", d.Name, expr)}
}

func docComment(comment []string, indent string) []string {
	switch {
	case len(comment) == 0:
		return nil
	case len(comment) == 1 && !strings.Contains(comment[0], "\n"):
		return []string{indent + "/** " + escapeComment(comment[0]) + " */"}
	}
	lines := []string{indent + "/**"}
	for _, c := range comment {
		for _, l := range strings.Split(c, "\n") {
			lines = append(lines, strings.TrimRight(indent+" * "+escapeComment(l), " "))
		}
	}
	return append(lines, indent+" */")
}

func escapeComment(s string) string {
	return strings.ReplaceAll(s, "*/", "*\\/")
}

var compound = regexp.MustCompile(`[ |&]`)

// typeExpr appends one [] per array dimension, parenthesizing compound
// element types.
func typeExpr(expr string, dims int) string {
	if dims == 0 {
		return expr
	}
	if compound.MatchString(expr) && !strings.HasPrefix(expr, "{") {
		expr = "(" + expr + ")"
	}
	return expr + strings.Repeat("[]", dims)
}

var identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

func propertyName(name string) string {
	if identifier.MatchString(name) {
		return name
	}
	return quote(name)
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}
