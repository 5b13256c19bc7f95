package generator

import (
	"fmt"
	"path"
	"strings"

	"github.com/go-openapi/inflect"

	"github.com/lucasefe/pgts/schema"
	"github.com/lucasefe/pgts/typemap"
)

// Role is the purpose a declaration is generated for.
type Role string

const (
	// RoleSelector describes rows as they are read.
	RoleSelector Role = "selector"
	// RoleInitializer describes rows as they are inserted.
	RoleInitializer Role = "initializer"
	// RoleMutator describes rows as they are updated.
	RoleMutator Role = "mutator"
)

// EntityMetadata controls naming and placement of an object's declaration.
type EntityMetadata struct {
	Name     string
	Comment  []string
	FileKey  string
	ExportAs ExportAs
}

// PropertyMetadata controls how one column is rendered. The overrides are
// applied only when non-nil.
type PropertyMetadata struct {
	Name             string
	Comment          []string
	TypeOverride     *typemap.Reference
	NullableOverride *bool
	OptionalOverride *bool
}

// Resolver supplies naming and identifier types. Embed DefaultResolver and
// override a subset of the methods to customize output.
type Resolver interface {
	// Metadata names the declaration generated for obj in the given role.
	Metadata(obj *schema.Object, role Role) EntityMetadata
	// PropertyMetadata names the property generated for col.
	PropertyMetadata(col *schema.Column, obj *schema.Object, role Role) PropertyMetadata
	// IdentifierType synthesizes the nominal type of a primary-key column.
	// Returning nil disables the identifier type for that column.
	IdentifierType(col *schema.Column, obj *schema.Object, ctx *Context) *Declaration
}

// DefaultResolver is the stock Resolver.
type DefaultResolver struct{}

var _ Resolver = DefaultResolver{}

// Metadata implements Resolver.
func (DefaultResolver) Metadata(obj *schema.Object, role Role) EntityMetadata {
	var comment []string
	if role == RoleSelector {
		comment = append(comment, fmt.Sprintf("Represents the %s %s", obj.Kind.Description(), obj.QualifiedName()))
	} else {
		comment = append(comment, fmt.Sprintf("Represents the %s for the %s %s", role, obj.Kind.Description(), obj.QualifiedName()))
	}
	if obj.Comment != "" {
		comment = append(comment, obj.Comment)
	}

	md := EntityMetadata{
		Name:     PascalCase(obj.Name),
		Comment:  comment,
		FileKey:  FileKey(obj),
		ExportAs: ExportDefault,
	}
	switch role {
	case RoleInitializer:
		md.Name += "Initializer"
		md.ExportAs = ExportNamed
	case RoleMutator:
		md.Name += "Mutator"
		md.ExportAs = ExportNamed
	}
	return md
}

// PropertyMetadata implements Resolver.
func (DefaultResolver) PropertyMetadata(col *schema.Column, _ *schema.Object, role Role) PropertyMetadata {
	var comment []string
	if col.Comment != "" {
		comment = append(comment, col.Comment)
	}
	if role == RoleInitializer && col.Default != nil {
		comment = append(comment, "Default value: "+*col.Default)
	}
	return PropertyMetadata{Name: col.Name, Comment: comment}
}

// IdentifierType implements Resolver. The identifier wraps the column's
// native type in a brand so that ids of different tables do not mix.
func (DefaultResolver) IdentifierType(col *schema.Column, obj *schema.Object, ctx *Context) *Declaration {
	name := IdentifierName(obj, col)
	return &Declaration{
		Name:     name,
		Kind:     KindIdentifier,
		ExportAs: ExportNamed,
		Comment:  []string{"Identifier type for " + obj.QualifiedName()},
		Payload: Alias{
			Type:  ctx.ResolveNative(col.Type),
			Brand: name,
		},
	}
}

// FileKey returns the default output-file key of an object. Materialized
// views live in their own directory so tooling can treat them separately.
func FileKey(obj *schema.Object) string {
	if obj.Kind == schema.KindMaterializedView {
		return path.Join(obj.Schema, "materialized", PascalCase(obj.Name))
	}
	return path.Join(obj.Schema, PascalCase(obj.Name))
}

// PascalCase converts database identifiers such as "mpaa_rating" to
// "MpaaRating".
func PascalCase(s string) string {
	return inflect.Camelize(s)
}

// IdentifierName returns the default identifier type name for a
// primary-key column: film.film_id and film.id both yield FilmId, while
// country.code yields CountryCodeId.
func IdentifierName(obj *schema.Object, col *schema.Column) string {
	rest := strings.ToLower(col.Name)
	switch {
	case rest == "id":
		rest = ""
	case strings.HasSuffix(rest, "_id"):
		rest = strings.TrimSuffix(rest, "_id")
	}

	name := PascalCase(obj.Name)
	table := strings.ToLower(obj.Name)
	if rest != "" && rest != table && rest != inflect.Singularize(table) {
		name += PascalCase(rest)
	}
	return name + "Id"
}
