package generator

import (
	"cmp"
	"fmt"

	"github.com/lucasefe/pgts/schema"
	"github.com/lucasefe/pgts/typemap"
)

// SortFunc orders the columns of an object in its declarations.
type SortFunc func(a, b *schema.Column) int

// SortByOrdinal keeps the order the columns were declared in.
func SortByOrdinal(a, b *schema.Column) int {
	return cmp.Compare(a.Ordinal, b.Ordinal)
}

// Options configures a Context.
type Options struct {
	// TypeMap maps native types to references. Callers pass the default map
	// merged with their overrides.
	TypeMap typemap.TypeMap
	// Resolver defaults to DefaultResolver.
	Resolver Resolver
	// Sort defaults to SortByOrdinal.
	Sort SortFunc
	// ResolveViews lets view columns share the types of the table columns
	// they expose.
	ResolveViews bool
	// Warn receives non-fatal resolution warnings.
	Warn func(msg string)
	// OnObject is called once per generated schema object.
	OnObject func(obj *schema.Object)
}

// Context holds the state of one generation run: the catalog being
// generated, the resolvers and the identifier registry. It is not safe for
// concurrent use; generators run sequentially.
type Context struct {
	catalog      schema.Catalog
	typeMap      typemap.TypeMap
	resolver     Resolver
	sort         SortFunc
	resolveViews bool
	warn         func(string)
	onObject     func(*schema.Object)

	registry *Registry
	warned   map[string]bool
	warnings []string
}

// NewContext starts a run over catalog.
func NewContext(catalog schema.Catalog, opts Options) *Context {
	c := &Context{
		catalog:      catalog,
		typeMap:      opts.TypeMap,
		resolver:     opts.Resolver,
		sort:         opts.Sort,
		resolveViews: opts.ResolveViews,
		warn:         opts.Warn,
		onObject:     opts.OnObject,
		warned:       make(map[string]bool),
	}
	if c.typeMap == nil {
		c.typeMap = typemap.Default()
	}
	if c.resolver == nil {
		c.resolver = DefaultResolver{}
	}
	if c.sort == nil {
		c.sort = SortByOrdinal
	}
	c.registry = newRegistry(c)
	return c
}

// Catalog returns the catalog being generated.
func (c *Context) Catalog() schema.Catalog { return c.catalog }

// Resolver returns the active resolver.
func (c *Context) Resolver() Resolver { return c.resolver }

// Registry returns the run's identifier registry.
func (c *Context) Registry() *Registry { return c.registry }

// Warnings returns the warnings reported so far, in order.
func (c *Context) Warnings() []string {
	return append([]string(nil), c.warnings...)
}

func (c *Context) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if c.warned[msg] {
		return
	}
	c.warned[msg] = true
	c.warnings = append(c.warnings, msg)
	if c.warn != nil {
		c.warn(msg)
	}
}

func (c *Context) objectDone(obj *schema.Object) {
	if c.onObject != nil {
		c.onObject(obj)
	}
}

// ResolveNative resolves a native type: the type map first, then enums,
// ranges, domains and composite types of the catalog, and finally the
// unknown placeholder with a warning. It never fails.
func (c *Context) ResolveNative(nativeType string) typemap.Reference {
	if ref, ok := c.typeMap.Lookup(nativeType); ok {
		return ref
	}
	if obj := c.catalog.LookupType(nativeType); obj != nil {
		md := c.resolver.Metadata(obj, RoleSelector)
		return typemap.Named(md.Name, md.FileKey, md.ExportAs == ExportDefault)
	}
	c.warnf("no type mapping for %s, using %s", nativeType, typemap.Unknown.Expr)
	return typemap.Unknown
}

type columnKey struct {
	schema, table, column string
}

// ResolveColumn resolves the type of a column of obj. Primary keys resolve
// to their identifier type and foreign keys to the type of the column they
// reference, so every site of one identifier shares a single declaration.
func (c *Context) ResolveColumn(col *schema.Column, obj *schema.Object) typemap.Reference {
	return c.resolveColumn(col, obj, make(map[columnKey]bool))
}

func (c *Context) resolveColumn(col *schema.Column, obj *schema.Object, seen map[columnKey]bool) typemap.Reference {
	key := columnKey{obj.Schema, obj.Name, col.Name}
	if seen[key] {
		return c.ResolveNative(col.Type)
	}
	seen[key] = true

	switch {
	case col.IsForeignKey():
		ref := col.References[0]
		if target, tc := c.lookupColumn(ref); tc != nil {
			return c.resolveColumn(tc, target, seen)
		}
	case col.PrimaryKey && obj.Kind == schema.KindTable:
		if decl, fileKey := c.registry.Get(obj, col); decl != nil {
			return decl.Reference(fileKey)
		}
	case col.Source != nil && c.resolveViews && isView(obj.Kind):
		if target, tc := c.lookupColumn(*col.Source); tc != nil {
			return c.resolveColumn(tc, target, seen)
		}
	}

	return c.ResolveNative(col.Type)
}

func (c *Context) lookupColumn(ref schema.ColumnRef) (*schema.Object, *schema.Column) {
	obj := c.catalog.Lookup(ref.Schema, ref.Table)
	if obj == nil {
		return nil, nil
	}
	return obj, obj.Column(ref.Column)
}

func isView(k schema.Kind) bool {
	return k == schema.KindView || k == schema.KindMaterializedView
}
