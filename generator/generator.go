// Package generator turns a schema catalog into TypeScript declarations,
// accumulated per output file.
//
// Basic usage:
//
//	ctx := generator.NewContext(catalog, generator.Options{ResolveViews: true})
//	out, err := generator.Generate(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, key := range out.Keys() {
//	    fmt.Println(key, len(out.Declarations(key)))
//	}
package generator

import (
	"github.com/lucasefe/pgts/schema"
)

// Generator folds the objects of one kind in a schema into out. Generators
// only add to out; they never remove what earlier generators produced.
type Generator func(out *Output, s *schema.Schema) (*Output, error)

// Generators returns the stock generators in processing order: tables,
// views, materialized views, enums, ranges, domains and composite types.
func Generators(ctx *Context) []Generator {
	gens := make([]Generator, 0, len(schema.Kinds))
	for _, kind := range schema.Kinds {
		switch kind {
		case schema.KindEnum:
			gens = append(gens, EnumGenerator(ctx))
		case schema.KindRange:
			gens = append(gens, RangeGenerator(ctx))
		case schema.KindDomain:
			gens = append(gens, DomainGenerator(ctx))
		default:
			gens = append(gens, CompositeGenerator(kind, ctx))
		}
	}
	return gens
}

// Generate runs every stock generator over every schema of the context's
// catalog, schemas in lexical order, and returns the accumulated output.
func Generate(ctx *Context) (*Output, error) {
	out := NewOutput()
	gens := Generators(ctx)
	for _, name := range ctx.catalog.SortedNames() {
		s := ctx.catalog[name]
		for _, gen := range gens {
			var err error
			if out, err = gen(out, s); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
