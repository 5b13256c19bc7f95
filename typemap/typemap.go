// Package typemap maps PostgreSQL native types to TypeScript type
// expressions.
//
// A TypeMap is keyed by the qualified native type name as reported by the
// catalog (e.g., "pg_catalog.int4"). Values are References: either an inline
// literal such as "number", or a symbol imported from an npm module or from
// another generated file.
//
//	tm := typemap.Merge(typemap.Default(), typemap.TypeMap{
//	    "public.citext": typemap.Literal("string"),
//	})
package typemap

import (
	"maps"
	"sort"
)

// Import describes where a referenced symbol comes from.
type Import struct {
	// Name is the exported symbol.
	Name string
	// From is an output-file key (e.g., "public/Film") for generated
	// declarations, or a module specifier when External is set.
	From string
	// External marks imports from a package rather than a generated file.
	External bool
	// Default marks a default import.
	Default bool
}

// IsZero reports whether no import is needed.
func (i Import) IsZero() bool {
	return i == Import{}
}

// Reference is a resolved type expression.
type Reference struct {
	// Expr is the type expression written at the use site.
	Expr string
	// Import is the zero value for inline literals.
	Import Import
}

// Unknown is the placeholder for native types that could not be resolved.
var Unknown = Literal("unknown")

// Literal returns an inline reference that needs no import.
func Literal(expr string) Reference {
	return Reference{Expr: expr}
}

// Named returns a reference to a declaration generated into fileKey.
func Named(name, fileKey string, isDefault bool) Reference {
	return Reference{
		Expr:   name,
		Import: Import{Name: name, From: fileKey, Default: isDefault},
	}
}

// External returns a reference to a symbol exported by an npm module.
func External(name, module string, isDefault bool) Reference {
	return Reference{
		Expr:   name,
		Import: Import{Name: name, From: module, External: true, Default: isDefault},
	}
}

// IsLiteral reports whether the reference needs no import.
func (r Reference) IsLiteral() bool {
	return r.Import.IsZero()
}

// TypeMap maps qualified native type names to references.
type TypeMap map[string]Reference

// Lookup returns the reference for a native type.
func (m TypeMap) Lookup(nativeType string) (Reference, bool) {
	ref, ok := m[nativeType]
	return ref, ok
}

// Keys returns the native type names in lexical order.
func (m TypeMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge returns a new TypeMap with overrides applied over base. Neither input
// is modified; on conflict the override wins.
func Merge(base, overrides TypeMap) TypeMap {
	merged := make(TypeMap, len(base)+len(overrides))
	maps.Copy(merged, base)
	maps.Copy(merged, overrides)
	return merged
}

// Default returns a fresh copy of the default PostgreSQL to TypeScript map.
func Default() TypeMap {
	return maps.Clone(defaultTypeMap)
}

var interval = External("IPostgresInterval", "postgres-interval", true)

var defaultTypeMap = TypeMap{
	"pg_catalog.int2":        Literal("number"),
	"pg_catalog.int4":        Literal("number"),
	"pg_catalog.int8":        Literal("string"),
	"pg_catalog.float4":      Literal("number"),
	"pg_catalog.float8":      Literal("number"),
	"pg_catalog.numeric":     Literal("string"),
	"pg_catalog.money":       Literal("string"),
	"pg_catalog.oid":         Literal("number"),
	"pg_catalog.bool":        Literal("boolean"),
	"pg_catalog.json":        Literal("unknown"),
	"pg_catalog.jsonb":       Literal("unknown"),
	"pg_catalog.char":        Literal("string"),
	"pg_catalog.bpchar":      Literal("string"),
	"pg_catalog.varchar":     Literal("string"),
	"pg_catalog.text":        Literal("string"),
	"pg_catalog.name":        Literal("string"),
	"pg_catalog.uuid":        Literal("string"),
	"pg_catalog.xml":         Literal("string"),
	"pg_catalog.inet":        Literal("string"),
	"pg_catalog.cidr":        Literal("string"),
	"pg_catalog.macaddr":     Literal("string"),
	"pg_catalog.bit":         Literal("string"),
	"pg_catalog.varbit":      Literal("string"),
	"pg_catalog.tsquery":     Literal("string"),
	"pg_catalog.tsvector":    Literal("Set<string>"),
	"pg_catalog.date":        Literal("Date"),
	"pg_catalog.time":        Literal("string"),
	"pg_catalog.timetz":      Literal("string"),
	"pg_catalog.timestamp":   Literal("Date"),
	"pg_catalog.timestamptz": Literal("Date"),
	"pg_catalog.interval":    interval,
	"pg_catalog.bytea":       Literal("Buffer"),
	"pg_catalog.point":       Literal("{ x: number; y: number }"),
	"pg_catalog.void":        Literal("void"),
	"public.citext":          Literal("string"),
}
