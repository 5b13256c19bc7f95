package generator

import (
	"fmt"
	"slices"

	"github.com/lucasefe/pgts/schema"
)

// EnumGenerator emits a string union per enum, variants in declared order.
func EnumGenerator(ctx *Context) Generator {
	return func(out *Output, s *schema.Schema) (*Output, error) {
		for _, obj := range sortedObjects(s.Enums) {
			md := ctx.resolver.Metadata(obj, RoleSelector)
			decl := &Declaration{
				Name:     md.Name,
				Kind:     KindEnum,
				ExportAs: md.ExportAs,
				Comment:  md.Comment,
				Payload:  Union{Values: slices.Clone(obj.Values)},
			}
			if err := out.Merge(md.FileKey, decl); err != nil {
				return nil, fmt.Errorf("generate enum %s: %w", obj.QualifiedName(), err)
			}
			ctx.objectDone(obj)
		}
		return out, nil
	}
}
