package pgts

import (
	"fmt"
	"path"
	"strings"

	"github.com/lucasefe/pgts/generator"
)

// Banner is the header MarkAsGenerated puts on every file.
var Banner = []string{
	"// @generated",
	"// This file is automatically generated by pgts. Do not modify manually.",
}

// MarkAsGenerated prefixes lines with Banner. It always runs before any
// user post-render hook.
func MarkAsGenerated(_ string, lines []string, _ *InstantiatedConfig) ([]string, error) {
	out := make([]string, 0, len(Banner)+len(lines)+2)
	out = append(out, Banner...)
	out = append(out, "")
	out = append(out, lines...)
	return append(out, ""), nil
}

// CheckReferences fails when a declaration imports a symbol that no output
// file declares. It runs after the user pre-render hooks, so a hook that
// removes a file still referenced elsewhere is caught before anything is
// written.
func CheckReferences(out *generator.Output, _ *InstantiatedConfig) (*generator.Output, error) {
	for _, key := range out.Keys() {
		for _, d := range out.Declarations(key) {
			for _, ref := range d.Dependencies() {
				imp := ref.Import
				if imp.IsZero() || imp.External {
					continue
				}
				f, ok := out.File(imp.From)
				if ok && f.Lookup(imp.Name) != nil {
					continue
				}
				return nil, &generator.ReferenceError{Key: key, Name: d.Name, Target: imp.From, Symbol: imp.Name}
			}
		}
	}
	return out, nil
}

// IndexFileKey is the output key of the file IndexFile adds.
const IndexFileKey = "index"

// IndexFile is a pre-render hook that adds an index file re-exporting every
// selector declaration: table, view and composite rows, enums, ranges and
// domains. Identifier, initializer and mutator types stay importable from
// their own files. Names exported by more than one file are re-exported from
// the first file in lexical order only.
func IndexFile(out *generator.Output, cfg *InstantiatedConfig) (*generator.Output, error) {
	seen := make(map[string]string)
	var lines []string

	for _, key := range out.SortedKeys() {
		if key == IndexFileKey {
			continue
		}
		from := "./" + path.Clean(key)

		var named []string
		for _, d := range out.Declarations(key) {
			if d.Name == "" || !isSelector(d.Kind) {
				continue
			}
			if prev, dup := seen[d.Name]; dup {
				cfg.Logger.Printf("index: %s from %s shadowed by %s", d.Name, key, prev)
				continue
			}
			seen[d.Name] = key

			if d.ExportAs == generator.ExportDefault {
				lines = append(lines, fmt.Sprintf("export type { default as %s } from '%s';", d.Name, from))
			} else {
				named = append(named, d.Name)
			}
		}
		if len(named) > 0 {
			lines = append(lines, fmt.Sprintf("export type { %s } from '%s';", strings.Join(named, ", "), from))
		}
	}

	index := &generator.Declaration{Kind: generator.KindRaw, Payload: generator.Raw{Lines: lines}}
	if err := out.Merge(IndexFileKey, index); err != nil {
		return nil, err
	}
	return out, nil
}

func isSelector(k generator.Kind) bool {
	switch k {
	case generator.KindRow, generator.KindEnum, generator.KindRange, generator.KindDomain, generator.KindComposite:
		return true
	}
	return false
}
