// Package pgts generates TypeScript type declarations from a PostgreSQL
// database schema.
//
// Every table, view, materialized view, composite type, enum, range and
// domain becomes one file of declarations. Primary keys get nominal
// identifier types that foreign keys referencing them share, so a FilmId is
// declared once in public/Film.ts and imported wherever it is used.
//
// # Basic Usage
//
// Generate into ./models from a connection string:
//
//	import "github.com/lucasefe/pgts"
//
//	res, err := pgts.Run(ctx, pgts.Config{
//	    Connection: connStr,
//	    OutputPath: "models",
//	}, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("wrote %d files\n", len(res.Files))
//
// # Configuration
//
// Config selects schemas, excludes objects and overrides type mappings:
//
//	cfg := pgts.Config{
//	    Connection: connStr,
//	    Schemas:    []string{"public", "auth"},
//	    Exclude:    []string{"migrations", "auth.sessions"},
//	    CustomTypeMap: typemap.TypeMap{
//	        "pg_catalog.int8": typemap.Literal("bigint"),
//	    },
//	    PreDeleteOutputFolder: true,
//	}
//
// # Hooks
//
// Pre-render hooks see the complete output before rendering and may add,
// replace or remove files. Post-render hooks see the rendered lines of one
// file. The built-in MarkAsGenerated banner runs before any post-render
// hook, and CheckReferences validates imports after the user pre-render
// hooks:
//
//	cfg.PreRenderHooks = []pgts.PreRenderHook{pgts.IndexFile}
//	cfg.PostRenderHooks = []pgts.PostRenderHook{
//	    func(path string, lines []string, _ *pgts.InstantiatedConfig) ([]string, error) {
//	        return append([]string{"/* eslint-disable */"}, lines...), nil
//	    },
//	}
//
// # Subpackages
//
//   - github.com/lucasefe/pgts/schema - The normalized schema model
//   - github.com/lucasefe/pgts/introspect - PostgreSQL introspection with functional options
//   - github.com/lucasefe/pgts/typemap - Native type to TypeScript mapping
//   - github.com/lucasefe/pgts/generator - Declarations, resolvers and entity generators
//   - github.com/lucasefe/pgts/render - TypeScript rendering
//   - github.com/lucasefe/pgts/config - Config file and environment loading
package pgts
