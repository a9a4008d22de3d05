package reflecthost

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/host"
	"github.com/wippyai/hostbridge/protocol"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Registry is a host.Runtime backed by a table of Go types registered under
// host class names. Registration is expected to finish before the registry is
// handed to a catalog; lookups are safe for concurrent use.
type Registry struct {
	byName  map[string]*class
	byType  map[reflect.Type]*class
	server  any
	version protocol.Version
	mu      sync.RWMutex
}

// New creates an empty registry for a host running version v.
func New(v protocol.Version) *Registry {
	return &Registry{
		byName:  make(map[string]*class),
		byType:  make(map[reflect.Type]*class),
		version: v,
	}
}

// Register maps a class name to a Go type. Pointer-to-struct types are
// registered by their struct type; instances are expected as pointers.
// Interface types must be passed as reflect.TypeOf((*I)(nil)).Elem().
func (r *Registry) Register(name string, t reflect.Type) error {
	if name == "" {
		return errors.InvalidInput(errors.PhaseResolve, "class name cannot be empty")
	}
	if t == nil {
		return errors.InvalidInput(errors.PhaseResolve, "class type cannot be nil")
	}
	t = canonical(t)

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byName[name]; ok && prev.typ != t {
		return errors.New(errors.PhaseResolve, errors.KindTypeMismatch).
			Symbol(name).
			Detail("already registered as %s", prev.typ).
			Build()
	}
	c := &class{reg: r, name: name, typ: t}
	r.byName[name] = c
	r.byType[t] = c
	return nil
}

// RegisterKind maps a class name to every Go type of kind k, for host
// collection interfaces that Go expresses structurally (slices as lists).
func (r *Registry) RegisterKind(name string, k reflect.Kind) error {
	if name == "" {
		return errors.InvalidInput(errors.PhaseResolve, "class name cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[name] = &class{reg: r, name: name, kind: k}
	return nil
}

// Constructor adds a constructor to a registered class. fn must be a
// function returning the class type, optionally followed by an error.
func (r *Registry) Constructor(name string, fn any) error {
	c, ft, err := r.funcFor(name, fn)
	if err != nil {
		return err
	}
	if ft.NumOut() == 0 || canonical(ft.Out(0)) != c.typ {
		return errors.New(errors.PhaseResolve, errors.KindTypeMismatch).
			Symbol(name).
			Detail("constructor must return %s", c.typ).
			Build()
	}
	r.mu.Lock()
	c.ctors = append(c.ctors, &constructor{reg: r, owner: c, fn: reflect.ValueOf(fn)})
	r.mu.Unlock()
	return nil
}

// Static adds a receiver-less method to a registered class.
func (r *Registry) Static(name, method string, fn any) error {
	if method == "" {
		return errors.InvalidInput(errors.PhaseResolve, "method name cannot be empty")
	}
	c, _, err := r.funcFor(name, fn)
	if err != nil {
		return err
	}
	r.mu.Lock()
	c.statics = append(c.statics, &staticMethod{reg: r, owner: c, name: method, fn: reflect.ValueOf(fn)})
	r.mu.Unlock()
	return nil
}

func (r *Registry) funcFor(name string, fn any) (*class, reflect.Type, error) {
	r.mu.RLock()
	c, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok || c.typ == nil {
		return nil, nil, errors.NotFound(errors.PhaseResolve, "class", name)
	}
	ft := reflect.TypeOf(fn)
	if ft == nil || ft.Kind() != reflect.Func {
		return nil, nil, errors.New(errors.PhaseResolve, errors.KindTypeMismatch).
			Symbol(name).
			Detail("handler must be a function, got %T", fn).
			Build()
	}
	return c, ft, nil
}

// SetServer installs the root server instance returned by Server.
func (r *Registry) SetServer(v any) {
	r.mu.Lock()
	r.server = v
	r.mu.Unlock()
}

// ClassByName implements host.Runtime.
func (r *Registry) ClassByName(name string) (host.Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return c, true
}

// Version implements host.Runtime.
func (r *Registry) Version() protocol.Version {
	return r.version
}

// Server implements host.Runtime.
func (r *Registry) Server() any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.server
}

// Elements implements host.Runtime for slices and arrays.
func (r *Registry) Elements(collection any) ([]any, error) {
	rv := reflect.ValueOf(collection)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
	case reflect.Invalid:
		return nil, errors.InvalidInput(errors.PhaseLocate, "collection is nil")
	default:
		return nil, errors.TypeMismatch(errors.PhaseLocate, "collection", "slice or array", collection)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = unwrap(rv.Index(i))
	}
	return out, nil
}

// Classes returns the registered class names.
func (r *Registry) Classes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	return names
}

// classOf returns the registered class for t, or an unnamed class wrapping it.
func (r *Registry) classOf(t reflect.Type) *class {
	t = canonical(t)
	r.mu.RLock()
	c, ok := r.byType[t]
	r.mu.RUnlock()
	if ok {
		return c
	}
	return &class{reg: r, name: t.String(), typ: t}
}

func (r *Registry) registered(t reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byType[canonical(t)]
	return ok
}

// canonical strips one pointer level from pointer-to-struct types.
func canonical(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct {
		return t.Elem()
	}
	return t
}

// unwrap converts nil references to an untyped nil so callers can compare with nil.
func unwrap(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if v.IsNil() {
			return nil
		}
	case reflect.Invalid:
		return nil
	}
	return v.Interface()
}

func describe(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return fmt.Sprint(t)
}
