package generator

import "github.com/lucasefe/pgts/typemap"

// Kind tags what a declaration describes.
type Kind string

const (
	KindRow        Kind = "row"
	KindInsertable Kind = "insertable"
	KindUpdateable Kind = "updateable"
	KindIdentifier Kind = "identifier"
	KindEnum       Kind = "enum"
	KindRange      Kind = "range"
	KindDomain     Kind = "domain"
	KindComposite  Kind = "composite"
	KindRaw        Kind = "raw"
)

// ExportAs selects how a declaration is exported from its file.
type ExportAs string

const (
	ExportNamed   ExportAs = "named"
	ExportDefault ExportAs = "default"
)

// Declaration is one named type emitted into an output file. Generators
// produce declarations and never modify them afterwards; hooks that need a
// different shape replace the declaration instead.
type Declaration struct {
	Name     string
	Kind     Kind
	ExportAs ExportAs
	Comment  []string
	Payload  Payload
}

// Dependencies returns the type references the declaration uses.
func (d *Declaration) Dependencies() []typemap.Reference {
	if d.Payload == nil {
		return nil
	}
	return d.Payload.Dependencies()
}

// Reference returns a reference that other files can use to import d from
// the file at fileKey.
func (d *Declaration) Reference(fileKey string) typemap.Reference {
	return typemap.Named(d.Name, fileKey, d.ExportAs == ExportDefault)
}

// Payload is the kind specific body of a declaration, consumed by renderers.
type Payload interface {
	Dependencies() []typemap.Reference
}

// Presence describes whether a column appears in an insert or update shape.
type Presence string

const (
	PresenceRequired Presence = "required"
	PresenceOptional Presence = "optional"
	PresenceOmitted  Presence = "omitted"
)

// Property is one member of an interface declaration.
type Property struct {
	Name       string
	Comment    []string
	Type       typemap.Reference
	Dimensions int
	Nullable   bool
	Optional   bool

	// Insert and Update record how the column behaves when written. They are
	// set on row declarations of tables and drive the derived variants.
	Insert Presence
	Update Presence
}

// Interface is the payload of row, insertable, updateable and composite
// declarations.
type Interface struct {
	Properties []Property
}

func (i Interface) Dependencies() []typemap.Reference {
	refs := make([]typemap.Reference, 0, len(i.Properties))
	for _, p := range i.Properties {
		refs = append(refs, p.Type)
	}
	return refs
}

// Alias is the payload of identifier and domain declarations. A non-empty
// Brand makes the alias nominal.
type Alias struct {
	Type       typemap.Reference
	Dimensions int
	Brand      string
}

func (a Alias) Dependencies() []typemap.Reference {
	return []typemap.Reference{a.Type}
}

// Union is the payload of enum declarations. Values keep declared order.
type Union struct {
	Values []string
}

func (Union) Dependencies() []typemap.Reference {
	return nil
}

// Range is the payload of range declarations.
type Range struct {
	Subtype typemap.Reference
}

func (r Range) Dependencies() []typemap.Reference {
	return []typemap.Reference{r.Subtype}
}

// Raw carries literal lines, for hooks that add hand-written code. Lines
// are emitted verbatim, so Imports must not clash with other names in the
// file.
type Raw struct {
	Lines   []string
	Imports []typemap.Import
}

func (r Raw) Dependencies() []typemap.Reference {
	refs := make([]typemap.Reference, 0, len(r.Imports))
	for _, imp := range r.Imports {
		refs = append(refs, typemap.Reference{Expr: imp.Name, Import: imp})
	}
	return refs
}
