package generator

import "github.com/lucasefe/pgts/schema"

type identifierKey struct {
	schema string
	table  string
	column string
}

type identifierEntry struct {
	decl    *Declaration
	fileKey string
}

// Registry memoizes identifier types for the duration of one run, so that a
// primary key and every foreign key pointing at it share one declaration.
type Registry struct {
	ctx     *Context
	entries map[identifierKey]identifierEntry
}

func newRegistry(ctx *Context) *Registry {
	return &Registry{
		ctx:     ctx,
		entries: make(map[identifierKey]identifierEntry),
	}
}

// Get returns the identifier declaration of col in obj together with the
// file key it is declared in. The resolver is consulted only on the first
// call for a given column; a nil declaration means the resolver opted out.
func (r *Registry) Get(obj *schema.Object, col *schema.Column) (*Declaration, string) {
	key := identifierKey{schema: obj.Schema, table: obj.Name, column: col.Name}
	if e, ok := r.entries[key]; ok {
		return e.decl, e.fileKey
	}

	e := identifierEntry{
		decl:    r.ctx.resolver.IdentifierType(col, obj, r.ctx),
		fileKey: r.ctx.resolver.Metadata(obj, RoleSelector).FileKey,
	}
	r.entries[key] = e
	return e.decl, e.fileKey
}

// Len returns the number of columns resolved so far.
func (r *Registry) Len() int {
	return len(r.entries)
}
