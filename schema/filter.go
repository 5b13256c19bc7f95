package schema

import (
	"fmt"

	"github.com/gobwas/glob"
)

// FilterFunc reports whether an object should be kept.
type FilterFunc func(o *Object) bool

// ExcludeFilter compiles glob patterns into a FilterFunc that rejects every
// object whose name or qualified name matches one of them. Patterns use "."
// as separator, so "audit.*" drops a whole schema while "*_log" drops
// matching objects in any schema.
func ExcludeFilter(patterns ...string) (FilterFunc, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '.')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}

	return func(o *Object) bool {
		for _, g := range globs {
			if g.Match(o.Name) || g.Match(o.QualifiedName()) {
				return false
			}
		}
		return true
	}, nil
}

// Filter returns a new Catalog containing only the objects accepted by keep.
// The original is not modified. Schemas left empty are kept so that schema
// level iteration stays stable.
func Filter(c Catalog, keep FilterFunc) Catalog {
	if keep == nil {
		return c
	}

	filtered := make(Catalog, len(c))
	for name, s := range c {
		out := &Schema{Name: s.Name}
		for _, k := range Kinds {
			objs := s.Objects(k)
			for i := range objs {
				if keep(&objs[i]) {
					out.Add(objs[i])
				}
			}
		}
		filtered[name] = out
	}

	return filtered
}
