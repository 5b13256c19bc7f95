package generator

import (
	"fmt"

	"github.com/lucasefe/pgts/schema"
)

// DomainGenerator emits an alias of the resolved base type per domain.
func DomainGenerator(ctx *Context) Generator {
	return func(out *Output, s *schema.Schema) (*Output, error) {
		for _, obj := range sortedObjects(s.Domains) {
			md := ctx.resolver.Metadata(obj, RoleSelector)
			decl := &Declaration{
				Name:     md.Name,
				Kind:     KindDomain,
				ExportAs: md.ExportAs,
				Comment:  md.Comment,
				Payload:  Alias{Type: ctx.ResolveNative(obj.BaseType), Dimensions: obj.BaseDimensions},
			}
			if err := out.Merge(md.FileKey, decl); err != nil {
				return nil, fmt.Errorf("generate domain %s: %w", obj.QualifiedName(), err)
			}
			ctx.objectDone(obj)
		}
		return out, nil
	}
}
