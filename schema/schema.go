// Package schema defines the normalized, read-only model of a PostgreSQL
// catalog that the generator consumes. Values are produced by the introspect
// package (or built by hand in tests) and are never mutated afterwards.
package schema

import (
	"sort"
	"strings"
)

// Kind identifies the kind of a schema object.
type Kind string

// Object kinds, in the order the generator processes them.
const (
	KindTable            Kind = "table"
	KindView             Kind = "view"
	KindMaterializedView Kind = "materializedView"
	KindEnum             Kind = "enum"
	KindRange            Kind = "range"
	KindDomain           Kind = "domain"
	KindCompositeType    Kind = "compositeType"
)

// Kinds lists every object kind in generation order.
var Kinds = []Kind{
	KindTable,
	KindView,
	KindMaterializedView,
	KindEnum,
	KindRange,
	KindDomain,
	KindCompositeType,
}

// Relational reports whether objects of this kind carry columns.
func (k Kind) Relational() bool {
	switch k {
	case KindTable, KindView, KindMaterializedView, KindCompositeType:
		return true
	}
	return false
}

// Description returns the human readable name used in generated comments.
func (k Kind) Description() string {
	switch k {
	case KindMaterializedView:
		return "materialized view"
	case KindCompositeType:
		return "composite type"
	}
	return string(k)
}

// Object is one table, view, materialized view, composite type, enum, range
// or domain.
type Object struct {
	// Schema is the database schema containing this object (e.g., "public").
	Schema string
	// Name is the object name without schema qualification.
	Name string
	// Kind is the object kind.
	Kind Kind
	// Comment is the object comment, or empty.
	Comment string
	// Columns holds the attributes of relational kinds, ordered by ordinal position.
	Columns []Column
	// Values holds enum variants in declared order.
	Values []string
	// Subtype is the qualified native type of a range's elements.
	Subtype string
	// BaseType is the qualified native type a domain is based on. For a
	// domain over an array it is the element type.
	BaseType string
	// BaseDimensions is the array depth of a domain's base type, or 0.
	BaseDimensions int
	// Definition is the view query, for views and materialized views.
	Definition string
}

// QualifiedName returns schema.name.
func (o *Object) QualifiedName() string {
	return o.Schema + "." + o.Name
}

// Column returns the column with the given name, or nil.
func (o *Object) Column(name string) *Column {
	for i := range o.Columns {
		if o.Columns[i].Name == name {
			return &o.Columns[i]
		}
	}
	return nil
}

// ColumnRef points at a column of another object.
type ColumnRef struct {
	Schema string
	Table  string
	Column string
}

// Column represents one attribute of a relational object.
type Column struct {
	// Name is the column name.
	Name string
	// Type is the qualified native type (e.g., "pg_catalog.int4"). For arrays
	// it is the element type and Dimensions is non-zero.
	Type string
	// Dimensions is the array depth, 0 for scalars.
	Dimensions int
	// Nullable indicates whether the column allows NULL values.
	Nullable bool
	// Default is the column's default value expression, or nil if none.
	Default *string
	// Identity is "", "ALWAYS" or "BY DEFAULT".
	Identity string
	// Generated is "" or "ALWAYS" for generated columns.
	Generated string
	// PrimaryKey indicates whether this column is part of the primary key.
	PrimaryKey bool
	// References lists the columns this column points at through foreign keys.
	References []ColumnRef
	// Source is the base table column a view column exposes, when known.
	Source *ColumnRef
	// Comment is the column comment, or empty.
	Comment string
	// Ordinal is the 1-based column position.
	Ordinal int
}

// IsForeignKey reports whether the column references another column.
func (c *Column) IsForeignKey() bool {
	return len(c.References) > 0
}

// IsGenerated reports whether the column is computed by the database and
// can never be written.
func (c *Column) IsGenerated() bool {
	return c.Generated == "ALWAYS"
}

// HasDefault reports whether inserts may omit the column.
func (c *Column) HasDefault() bool {
	return c.Default != nil || c.Identity != ""
}

// Schema is one database schema and all the objects generated from it.
type Schema struct {
	Name              string
	Tables            []Object
	Views             []Object
	MaterializedViews []Object
	Enums             []Object
	Ranges            []Object
	Domains           []Object
	CompositeTypes    []Object
}

// Objects returns the objects of the given kind.
func (s *Schema) Objects(kind Kind) []Object {
	switch kind {
	case KindTable:
		return s.Tables
	case KindView:
		return s.Views
	case KindMaterializedView:
		return s.MaterializedViews
	case KindEnum:
		return s.Enums
	case KindRange:
		return s.Ranges
	case KindDomain:
		return s.Domains
	case KindCompositeType:
		return s.CompositeTypes
	}
	return nil
}

// Add appends o to the slice matching its kind.
func (s *Schema) Add(o Object) {
	switch o.Kind {
	case KindTable:
		s.Tables = append(s.Tables, o)
	case KindView:
		s.Views = append(s.Views, o)
	case KindMaterializedView:
		s.MaterializedViews = append(s.MaterializedViews, o)
	case KindEnum:
		s.Enums = append(s.Enums, o)
	case KindRange:
		s.Ranges = append(s.Ranges, o)
	case KindDomain:
		s.Domains = append(s.Domains, o)
	case KindCompositeType:
		s.CompositeTypes = append(s.CompositeTypes, o)
	}
}

// Len returns the number of objects in the schema.
func (s *Schema) Len() int {
	n := 0
	for _, k := range Kinds {
		n += len(s.Objects(k))
	}
	return n
}

// Catalog is the whole introspected model keyed by schema name.
type Catalog map[string]*Schema

// SortedNames returns the schema names in lexical order.
func (c Catalog) SortedNames() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of objects across all schemas.
func (c Catalog) Len() int {
	n := 0
	for _, s := range c {
		n += s.Len()
	}
	return n
}

// Lookup finds a relational object (table, view, materialized view or
// composite type) by schema and name.
func (c Catalog) Lookup(schemaName, name string) *Object {
	s, ok := c[schemaName]
	if !ok {
		return nil
	}
	for _, k := range Kinds {
		if !k.Relational() {
			continue
		}
		objs := s.Objects(k)
		for i := range objs {
			if objs[i].Name == name {
				return &objs[i]
			}
		}
	}
	return nil
}

// LookupType finds the object that defines the qualified native type
// "schema.name": an enum, range, domain or composite type.
func (c Catalog) LookupType(qualified string) *Object {
	schemaName, name, ok := strings.Cut(qualified, ".")
	if !ok {
		return nil
	}
	s, ok := c[schemaName]
	if !ok {
		return nil
	}
	for _, k := range []Kind{KindEnum, KindRange, KindDomain, KindCompositeType} {
		objs := s.Objects(k)
		for i := range objs {
			if objs[i].Name == name {
				return &objs[i]
			}
		}
	}
	return nil
}
