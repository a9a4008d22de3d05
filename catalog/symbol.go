package catalog

import (
	"github.com/wippyai/hostbridge/host"
)

// Symbol is the outcome of resolving one host element: either a resolved
// handle or an absent marker carrying only the logical name. Symbols are
// values and never change after creation.
type Symbol[T any] struct {
	handle   T
	name     string
	resolved bool
}

type (
	ClassSymbol       = Symbol[host.Class]
	FieldSymbol       = Symbol[host.Field]
	MethodSymbol      = Symbol[host.Method]
	ConstructorSymbol = Symbol[host.Constructor]
)

// Resolved returns a symbol holding h.
func Resolved[T any](name string, h T) Symbol[T] {
	return Symbol[T]{name: name, handle: h, resolved: true}
}

// Absent returns a symbol recording that name could not be found.
func Absent[T any](name string) Symbol[T] {
	return Symbol[T]{name: name}
}

// Name returns the logical name the symbol was resolved for.
func (s Symbol[T]) Name() string { return s.name }

// Resolved reports whether the symbol carries a handle.
func (s Symbol[T]) Resolved() bool { return s.resolved }

// Handle returns the handle and whether the symbol is resolved.
func (s Symbol[T]) Handle() (T, bool) {
	return s.handle, s.resolved
}

func (s Symbol[T]) String() string {
	if !s.resolved {
		return s.name + " (absent)"
	}
	return s.name
}
