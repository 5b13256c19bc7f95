package generator

import (
	"errors"
	"fmt"
)

var (
	// ErrConflict indicates two different declarations with the same
	// exported name in one output file.
	ErrConflict = errors.New("pgts: declaration conflict")
	// ErrUnresolvedReference indicates a declaration that imports a symbol
	// no output file provides.
	ErrUnresolvedReference = errors.New("pgts: unresolved reference")
)

// ConflictError is returned by Output.Merge when a name is already taken.
type ConflictError struct {
	Key  string
	Name string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("pgts: declaration %q already exists in %s", e.Name, e.Key)
}

// Is reports whether the target matches ErrConflict.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// ReferenceError reports an import that points at a missing declaration.
type ReferenceError struct {
	// Key and Name identify the declaration holding the reference.
	Key  string
	Name string
	// Target is the file key the import points at and Symbol the imported name.
	Target string
	Symbol string
}

// Error implements the error interface.
func (e *ReferenceError) Error() string {
	return fmt.Sprintf("pgts: %s in %s references %s from %s, which is not generated", e.Name, e.Key, e.Symbol, e.Target)
}

// Is reports whether the target matches ErrUnresolvedReference.
func (e *ReferenceError) Is(target error) bool {
	return target == ErrUnresolvedReference
}
