package typemap

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// entry is the YAML form of a Reference. A scalar is a literal expression;
// a mapping names a symbol and where to import it from:
//
//	pg_catalog.int8: bigint
//	pg_catalog.interval:
//	  name: IPostgresInterval
//	  module: postgres-interval
//	  default: true
//	public.geometry:
//	  name: Geometry
//	  from: shared/Geometry
type entry struct {
	Reference
}

type importSpec struct {
	Name    string `yaml:"name"`
	Expr    string `yaml:"expr,omitempty"`
	Module  string `yaml:"module,omitempty"`
	From    string `yaml:"from,omitempty"`
	Default bool   `yaml:"default,omitempty"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *entry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value == "" {
			return fmt.Errorf("line %d: empty type expression", node.Line)
		}
		e.Reference = Literal(node.Value)
		return nil
	case yaml.MappingNode:
		var spec importSpec
		if err := node.Decode(&spec); err != nil {
			return err
		}
		if spec.Name == "" {
			return fmt.Errorf("line %d: type import requires a name", node.Line)
		}
		if spec.Module != "" && spec.From != "" {
			return fmt.Errorf("line %d: type import %q sets both module and from", node.Line, spec.Name)
		}
		switch {
		case spec.Module != "":
			e.Reference = External(spec.Name, spec.Module, spec.Default)
		case spec.From != "":
			e.Reference = Named(spec.Name, spec.From, spec.Default)
		default:
			e.Reference = Literal(spec.Name)
		}
		if spec.Expr != "" {
			e.Expr = spec.Expr
		}
		return nil
	default:
		return fmt.Errorf("line %d: expected a type expression or an import mapping", node.Line)
	}
}

// MarshalYAML implements yaml.Marshaler.
func (e entry) MarshalYAML() (any, error) {
	if e.IsLiteral() {
		return e.Expr, nil
	}
	spec := importSpec{Name: e.Import.Name, Default: e.Import.Default}
	if e.Expr != e.Import.Name {
		spec.Expr = e.Expr
	}
	if e.Import.External {
		spec.Module = e.Import.From
	} else {
		spec.From = e.Import.From
	}
	return spec, nil
}

// Parse decodes a YAML type map.
func Parse(data []byte) (TypeMap, error) {
	var raw map[string]entry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse type map: %w", err)
	}

	tm := make(TypeMap, len(raw))
	for k, v := range raw {
		tm[k] = v.Reference
	}
	return tm, nil
}

// Load reads a YAML type map from path.
func Load(path string) (TypeMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read type map: %w", err)
	}
	tm, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tm, nil
}

// Marshal encodes a TypeMap as YAML. Keys are written in lexical order.
func Marshal(tm TypeMap) ([]byte, error) {
	raw := make(map[string]entry, len(tm))
	for k, v := range tm {
		raw[k] = entry{v}
	}
	return yaml.Marshal(raw)
}
