package introspect

import "github.com/lucasefe/pgts/schema"

// Option configures introspection behavior.
type Option func(*options)

type options struct {
	schemas           []string
	includeAllSchemas bool
	exclude           []string
	typeFilter        schema.FilterFunc
	viewSources       bool
}

func defaultOptions() *options {
	return &options{
		schemas:     []string{"public"},
		viewSources: true,
	}
}

// WithSchemas specifies which database schemas to introspect.
// If not specified, defaults to ["public"].
func WithSchemas(schemas ...string) Option {
	return func(o *options) {
		if len(schemas) > 0 {
			o.schemas = schemas
		}
	}
}

// WithAllSchemas includes all non-system schemas in the introspection.
// This overrides WithSchemas.
func WithAllSchemas() Option {
	return func(o *options) {
		o.includeAllSchemas = true
	}
}

// WithExclude drops objects whose name or schema-qualified name matches one
// of the glob patterns (e.g., "migrations", "audit.*").
func WithExclude(patterns ...string) Option {
	return func(o *options) {
		o.exclude = append(o.exclude, patterns...)
	}
}

// WithTypeFilter keeps only the objects for which keep returns true.
func WithTypeFilter(keep schema.FilterFunc) Option {
	return func(o *options) {
		o.typeFilter = keep
	}
}

// WithViewSources controls whether view columns are linked to the table
// columns they expose. Enabled by default.
func WithViewSources(enabled bool) Option {
	return func(o *options) {
		o.viewSources = enabled
	}
}
