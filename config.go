package pgts

import (
	"context"
	"log"
	"os"
	"runtime"

	"github.com/lucasefe/pgts/generator"
	"github.com/lucasefe/pgts/introspect"
	"github.com/lucasefe/pgts/schema"
	"github.com/lucasefe/pgts/typemap"
)

// Introspector produces the catalog a run generates from.
type Introspector interface {
	Introspect(ctx context.Context) (schema.Catalog, error)
}

// IntrospectorFunc adapts a function to Introspector.
type IntrospectorFunc func(ctx context.Context) (schema.Catalog, error)

// Introspect implements Introspector.
func (f IntrospectorFunc) Introspect(ctx context.Context) (schema.Catalog, error) {
	return f(ctx)
}

// PreRenderHook edits the whole output after generation and before
// rendering. Hooks run in order, each receiving the previous one's result.
type PreRenderHook func(out *generator.Output, cfg *InstantiatedConfig) (*generator.Output, error)

// PostRenderHook edits the rendered lines of one file. path is the file's
// destination on disk. Files are processed in parallel, so a hook may be
// called concurrently for different files.
type PostRenderHook func(path string, lines []string, cfg *InstantiatedConfig) ([]string, error)

// Config configures a run.
type Config struct {
	// Connection is the PostgreSQL connection string. Required unless
	// Introspector is set.
	Connection string
	// Schemas to introspect. Defaults to ["public"].
	Schemas []string
	// AllSchemas introspects every non-system schema instead of Schemas.
	AllSchemas bool
	// TypeFilter keeps only the objects it returns true for.
	TypeFilter func(obj *schema.Object) bool
	// Exclude drops objects matching any of these glob patterns.
	Exclude []string

	// CustomTypeMap is merged over the default type map; entries here win.
	CustomTypeMap typemap.TypeMap
	// Resolver names declarations. Defaults to generator.DefaultResolver.
	Resolver generator.Resolver
	// PropertySort orders properties. Defaults to declaration order.
	PropertySort generator.SortFunc
	// ResolveViews lets view columns reuse the types of the table columns
	// they expose. Defaults to true.
	ResolveViews *bool

	// OutputPath is where files are written. Defaults to the current
	// directory.
	OutputPath string
	// PreDeleteOutputFolder removes the contents of OutputPath before writing.
	PreDeleteOutputFolder bool

	PreRenderHooks  []PreRenderHook
	PostRenderHooks []PostRenderHook

	// Introspector replaces the PostgreSQL introspector.
	Introspector Introspector
	// Writer replaces the filesystem writer.
	Writer Writer
	// Workers bounds parallel rendering and writing. Defaults to GOMAXPROCS.
	Workers int
	// Logger receives warnings. Defaults to stderr.
	Logger *log.Logger
}

// InstantiatedConfig is a Config with every default applied, the type map
// merged and the catalog fetched. Hooks receive it.
type InstantiatedConfig struct {
	Connection            string
	Schemas               []string
	OutputPath            string
	PreDeleteOutputFolder bool
	ResolveViews          bool

	TypeMap      typemap.TypeMap
	Resolver     generator.Resolver
	PropertySort generator.SortFunc
	Catalog      schema.Catalog

	PreRenderHooks  []PreRenderHook
	PostRenderHooks []PostRenderHook

	Writer  Writer
	Workers int
	Logger  *log.Logger
}

// Bool returns a pointer to b, for optional Config fields.
func Bool(b bool) *bool {
	return &b
}

func (c *Config) validate() error {
	if c.Connection == "" && c.Introspector == nil {
		return &ConfigError{Field: "connection", Reason: "is required"}
	}
	return c.validateOptions()
}

func (c *Config) validateOptions() error {
	if c.Workers < 0 {
		return &ConfigError{Field: "workers", Reason: "must not be negative"}
	}
	if _, err := schema.ExcludeFilter(c.Exclude...); err != nil {
		return &ConfigError{Field: "exclude", Reason: err.Error()}
	}
	return nil
}

func (c *Config) introspector() Introspector {
	if c.Introspector != nil {
		return c.Introspector
	}
	opts := []introspect.Option{
		introspect.WithSchemas(c.Schemas...),
		introspect.WithExclude(c.Exclude...),
		introspect.WithViewSources(c.resolveViews()),
	}
	if c.AllSchemas {
		opts = append(opts, introspect.WithAllSchemas())
	}
	if c.TypeFilter != nil {
		opts = append(opts, introspect.WithTypeFilter(c.TypeFilter))
	}
	return IntrospectorFunc(func(ctx context.Context) (schema.Catalog, error) {
		return introspect.FromConnectionString(ctx, c.Connection, opts...)
	})
}

func (c *Config) resolveViews() bool {
	return c.ResolveViews == nil || *c.ResolveViews
}

// instantiate applies defaults. Exclude and TypeFilter are applied to the
// catalog here too, so custom introspectors honor them.
func (c *Config) instantiate(catalog schema.Catalog) *InstantiatedConfig {
	ic := &InstantiatedConfig{
		Connection:            c.Connection,
		Schemas:               c.Schemas,
		OutputPath:            c.OutputPath,
		PreDeleteOutputFolder: c.PreDeleteOutputFolder,
		ResolveViews:          c.resolveViews(),
		TypeMap:               typemap.Merge(typemap.Default(), c.CustomTypeMap),
		Resolver:              c.Resolver,
		PropertySort:          c.PropertySort,
		PreRenderHooks:        c.PreRenderHooks,
		PostRenderHooks:       c.PostRenderHooks,
		Writer:                c.Writer,
		Workers:               c.Workers,
		Logger:                c.Logger,
	}
	if len(ic.Schemas) == 0 {
		ic.Schemas = []string{"public"}
	}
	if ic.OutputPath == "" {
		ic.OutputPath = "."
	}
	if ic.Resolver == nil {
		ic.Resolver = generator.DefaultResolver{}
	}
	if ic.PropertySort == nil {
		ic.PropertySort = generator.SortByOrdinal
	}
	if ic.Writer == nil {
		ic.Writer = FSWriter{}
	}
	if ic.Workers == 0 {
		ic.Workers = runtime.GOMAXPROCS(0)
	}
	if ic.Logger == nil {
		ic.Logger = log.New(os.Stderr, "pgts: ", 0)
	}

	exclude, _ := schema.ExcludeFilter(c.Exclude...)
	catalog = schema.Filter(catalog, exclude)
	if c.TypeFilter != nil {
		catalog = schema.Filter(catalog, c.TypeFilter)
	}
	ic.Catalog = catalog
	return ic
}
