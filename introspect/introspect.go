// Package introspect reads a PostgreSQL catalog into the schema model:
// tables, views, materialized views, composite types, enums, ranges and
// domains, with their columns, keys and comments.
//
// Basic usage:
//
//	catalog, err := introspect.New(db,
//	    introspect.WithSchemas("public", "auth"),
//	    introspect.WithExclude("migrations"),
//	).Introspect(ctx)
//
// Or, managing the connection:
//
//	catalog, err := introspect.FromConnectionString(ctx, connStr)
package introspect

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lucasefe/pgts/schema"

	_ "github.com/lib/pq"
)

// Introspector reads schema objects from one database.
type Introspector struct {
	db   *sql.DB
	opts *options
}

// New returns an Introspector over db. The caller keeps ownership of db.
func New(db *sql.DB, opts ...Option) *Introspector {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Introspector{db: db, opts: o}
}

// FromConnectionString connects to a PostgreSQL database and introspects it.
// This is a convenience function that handles connection management.
func FromConnectionString(ctx context.Context, connStr string, opts ...Option) (schema.Catalog, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return New(db, opts...).Introspect(ctx)
}

// Introspect reads every configured schema. Schemas that exist but hold no
// objects are still present in the result.
func (i *Introspector) Introspect(ctx context.Context) (schema.Catalog, error) {
	keep, err := i.filter()
	if err != nil {
		return nil, err
	}

	schemaNames := i.opts.schemas
	if i.opts.includeAllSchemas {
		schemaNames, err = i.allSchemas(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get schemas: %w", err)
		}
	}

	b := newBuilder(schemaNames)
	steps := []step{
		{"relations", i.relations},
		{"columns", i.columns},
		{"constraints", i.constraints},
		{"enums", i.enums},
		{"ranges", i.ranges},
		{"domains", i.domains},
	}
	if i.opts.viewSources {
		steps = append(steps, step{"view sources", i.viewSources})
	}

	for _, s := range steps {
		if err := s.run(ctx, b); err != nil {
			return nil, fmt.Errorf("failed to get %s: %w", s.what, err)
		}
	}

	return schema.Filter(b.catalog(), keep), nil
}

func (i *Introspector) filter() (schema.FilterFunc, error) {
	var filters []schema.FilterFunc
	if len(i.opts.exclude) > 0 {
		exclude, err := schema.ExcludeFilter(i.opts.exclude...)
		if err != nil {
			return nil, err
		}
		filters = append(filters, exclude)
	}
	if i.opts.typeFilter != nil {
		filters = append(filters, i.opts.typeFilter)
	}
	if len(filters) == 0 {
		return nil, nil
	}
	return func(o *schema.Object) bool {
		for _, f := range filters {
			if !f(o) {
				return false
			}
		}
		return true
	}, nil
}

type step struct {
	what string
	run  func(context.Context, *builder) error
}

type objectKey struct {
	schema string
	name   string
}

// builder collects objects while the queries run and assembles the
// catalog once all of them have been read.
type builder struct {
	schemas []string
	objects map[objectKey]*schema.Object
	order   []objectKey
}

func newBuilder(schemas []string) *builder {
	return &builder{
		schemas: schemas,
		objects: make(map[objectKey]*schema.Object),
	}
}

func (b *builder) add(obj *schema.Object) {
	key := objectKey{obj.Schema, obj.Name}
	if _, ok := b.objects[key]; !ok {
		b.order = append(b.order, key)
	}
	b.objects[key] = obj
}

// relation returns a previously read table, view, materialized view or
// composite type.
func (b *builder) relation(schemaName, name string) *schema.Object {
	obj := b.objects[objectKey{schemaName, name}]
	if obj == nil || !obj.Kind.Relational() {
		return nil
	}
	return obj
}

func (b *builder) catalog() schema.Catalog {
	c := make(schema.Catalog, len(b.schemas))
	for _, name := range b.schemas {
		c[name] = &schema.Schema{Name: name}
	}
	for _, key := range b.order {
		s, ok := c[key.schema]
		if !ok {
			s = &schema.Schema{Name: key.schema}
			c[key.schema] = s
		}
		s.Add(*b.objects[key])
	}
	return c
}
