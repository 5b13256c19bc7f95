package generator

import (
	"fmt"
	"slices"
	"strings"

	"github.com/lucasefe/pgts/schema"
)

// CompositeGenerator returns the generator for a relational kind: tables,
// views, materialized views and composite types.
func CompositeGenerator(kind schema.Kind, ctx *Context) Generator {
	return func(out *Output, s *schema.Schema) (*Output, error) {
		for _, obj := range sortedObjects(s.Objects(kind)) {
			if err := ctx.generateComposite(out, obj); err != nil {
				return nil, fmt.Errorf("generate %s %s: %w", kind.Description(), obj.QualifiedName(), err)
			}
			ctx.objectDone(obj)
		}
		return out, nil
	}
}

func (c *Context) generateComposite(out *Output, obj *schema.Object) error {
	cols := c.sortedColumns(obj)

	if obj.Kind == schema.KindTable {
		if err := c.emitIdentifiers(out, obj, cols); err != nil {
			return err
		}
	}

	rowKind := KindRow
	if obj.Kind == schema.KindCompositeType {
		rowKind = KindComposite
	}
	if err := c.emitInterface(out, obj, RoleSelector, rowKind, c.properties(obj, cols, RoleSelector)); err != nil {
		return err
	}
	if obj.Kind != schema.KindTable {
		return nil
	}

	if err := c.emitInterface(out, obj, RoleInitializer, KindInsertable, c.properties(obj, cols, RoleInitializer)); err != nil {
		return err
	}
	return c.emitInterface(out, obj, RoleMutator, KindUpdateable, c.properties(obj, cols, RoleMutator))
}

// emitIdentifiers merges the identifier types of the table's own primary
// key. Keys that are also foreign keys borrow the referenced identifier.
func (c *Context) emitIdentifiers(out *Output, obj *schema.Object, cols []*schema.Column) error {
	for _, col := range cols {
		if !col.PrimaryKey || col.IsForeignKey() {
			continue
		}
		decl, fileKey := c.registry.Get(obj, col)
		if decl == nil {
			continue
		}
		if err := out.Merge(fileKey, decl); err != nil {
			return err
		}
	}
	return nil
}

func (c *Context) emitInterface(out *Output, obj *schema.Object, role Role, kind Kind, props []Property) error {
	md := c.resolver.Metadata(obj, role)
	decl := &Declaration{
		Name:     md.Name,
		Kind:     kind,
		ExportAs: md.ExportAs,
		Comment:  md.Comment,
		Payload:  Interface{Properties: props},
	}
	return out.Merge(md.FileKey, decl)
}

func (c *Context) sortedColumns(obj *schema.Object) []*schema.Column {
	cols := make([]*schema.Column, len(obj.Columns))
	for i := range obj.Columns {
		cols[i] = &obj.Columns[i]
	}
	slices.SortStableFunc(cols, c.sort)
	return cols
}

func (c *Context) properties(obj *schema.Object, cols []*schema.Column, role Role) []Property {
	props := make([]Property, 0, len(cols))
	for _, col := range cols {
		if role != RoleSelector && col.IsGenerated() {
			continue
		}
		md := c.resolver.PropertyMetadata(col, obj, role)

		p := Property{
			Name:       md.Name,
			Comment:    md.Comment,
			Dimensions: col.Dimensions,
			Nullable:   col.Nullable,
		}
		if md.TypeOverride != nil {
			p.Type = *md.TypeOverride
		} else {
			p.Type = c.ResolveColumn(col, obj)
		}

		switch role {
		case RoleInitializer:
			p.Optional = col.Nullable || col.HasDefault()
		case RoleMutator:
			p.Optional = true
		}
		if obj.Kind == schema.KindTable && role == RoleSelector {
			p.Insert, p.Update = presence(col)
		}

		if md.NullableOverride != nil {
			p.Nullable = *md.NullableOverride
		}
		if md.OptionalOverride != nil {
			p.Optional = *md.OptionalOverride
		}
		props = append(props, p)
	}
	return props
}

func presence(col *schema.Column) (insert, update Presence) {
	switch {
	case col.IsGenerated():
		return PresenceOmitted, PresenceOmitted
	case col.Nullable || col.HasDefault():
		return PresenceOptional, PresenceOptional
	}
	return PresenceRequired, PresenceOptional
}

// sortedObjects orders objects by name so output does not depend on the
// order the catalog was read in.
func sortedObjects(objs []schema.Object) []*schema.Object {
	sorted := make([]*schema.Object, len(objs))
	for i := range objs {
		sorted[i] = &objs[i]
	}
	slices.SortStableFunc(sorted, func(a, b *schema.Object) int {
		return strings.Compare(a.Name, b.Name)
	})
	return sorted
}
