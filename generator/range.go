package generator

import (
	"fmt"

	"github.com/lucasefe/pgts/schema"
)

// RangeGenerator emits one declaration per range type, bounded by the
// resolved subtype.
func RangeGenerator(ctx *Context) Generator {
	return func(out *Output, s *schema.Schema) (*Output, error) {
		for _, obj := range sortedObjects(s.Ranges) {
			md := ctx.resolver.Metadata(obj, RoleSelector)
			decl := &Declaration{
				Name:     md.Name,
				Kind:     KindRange,
				ExportAs: md.ExportAs,
				Comment:  md.Comment,
				Payload:  Range{Subtype: ctx.ResolveNative(obj.Subtype)},
			}
			if err := out.Merge(md.FileKey, decl); err != nil {
				return nil, fmt.Errorf("generate range %s: %w", obj.QualifiedName(), err)
			}
			ctx.objectDone(obj)
		}
		return out, nil
	}
}
