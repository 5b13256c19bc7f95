package generator

import (
	"slices"
	"sort"
)

// File is the ordered list of declarations destined for one output file.
type File struct {
	Declarations []*Declaration
}

// Lookup returns the declaration exported under name, or nil.
func (f *File) Lookup(name string) *Declaration {
	for _, d := range f.Declarations {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// Output accumulates declarations per output-file key. Within a run it only
// grows: Merge appends and never drops what an earlier generator added.
// Insertion order of keys and declarations is preserved.
type Output struct {
	keys  []string
	files map[string]*File
}

// NewOutput returns an empty accumulator.
func NewOutput() *Output {
	return &Output{files: make(map[string]*File)}
}

// Merge appends decls to the file at key. Declarations with an empty name
// (raw snippets) never conflict. A name that is already exported from key
// is a *ConflictError, except when it is the very same identifier
// declaration handed out by the registry, which is skipped. Nothing is
// appended when an error is returned.
func (o *Output) Merge(key string, decls ...*Declaration) error {
	f, ok := o.files[key]
	if !ok {
		f = &File{}
	}

	taken := make(map[string]*Declaration, len(f.Declarations)+len(decls))
	for _, d := range f.Declarations {
		if d.Name != "" {
			taken[d.Name] = d
		}
	}

	add := make([]*Declaration, 0, len(decls))
	for _, d := range decls {
		if d.Name == "" {
			add = append(add, d)
			continue
		}
		if existing, dup := taken[d.Name]; dup {
			if existing == d && d.Kind == KindIdentifier {
				continue
			}
			return &ConflictError{Key: key, Name: d.Name}
		}
		taken[d.Name] = d
		add = append(add, d)
	}

	if !ok {
		o.keys = append(o.keys, key)
		o.files[key] = f
	}
	f.Declarations = append(f.Declarations, add...)
	return nil
}

// Replace swaps the declarations of key wholesale, creating the file if
// needed. It is meant for pre-render hooks; generators use Merge.
func (o *Output) Replace(key string, decls []*Declaration) error {
	fresh := NewOutput()
	if err := fresh.Merge(key, decls...); err != nil {
		return err
	}
	if _, ok := o.files[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.files[key] = fresh.files[key]
	return nil
}

// Remove drops a whole file. It is meant for pre-render hooks.
func (o *Output) Remove(key string) {
	if _, ok := o.files[key]; !ok {
		return
	}
	delete(o.files, key)
	o.keys = slices.DeleteFunc(o.keys, func(k string) bool { return k == key })
}

// File returns the file stored at key.
func (o *Output) File(key string) (*File, bool) {
	f, ok := o.files[key]
	return f, ok
}

// Declarations returns a copy of the declarations at key.
func (o *Output) Declarations(key string) []*Declaration {
	f, ok := o.files[key]
	if !ok {
		return nil
	}
	return slices.Clone(f.Declarations)
}

// Keys returns the file keys in insertion order.
func (o *Output) Keys() []string {
	return slices.Clone(o.keys)
}

// SortedKeys returns the file keys in lexical order.
func (o *Output) SortedKeys() []string {
	keys := slices.Clone(o.keys)
	sort.Strings(keys)
	return keys
}

// Len returns the number of files.
func (o *Output) Len() int {
	return len(o.keys)
}

// Clone returns a copy whose file lists can be changed without affecting o.
// Declarations themselves are shared.
func (o *Output) Clone() *Output {
	c := &Output{
		keys:  slices.Clone(o.keys),
		files: make(map[string]*File, len(o.files)),
	}
	for k, f := range o.files {
		c.files[k] = &File{Declarations: slices.Clone(f.Declarations)}
	}
	return c
}
