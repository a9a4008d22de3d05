package wasmhost

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/host"
	"github.com/wippyai/hostbridge/protocol"
)

type settings struct {
	className  string
	moduleName string
	version    protocol.Version
	memLimit   uint32
}

// Option configures a Runtime.
type Option func(*settings)

// WithClassName sets the class name the module is exposed under.
func WithClassName(name string) Option {
	return func(s *settings) { s.className = name }
}

// WithVersion sets the version the runtime reports.
func WithVersion(v protocol.Version) Option {
	return func(s *settings) { s.version = v }
}

// WithMemoryLimitPages caps guest memory in 64KiB pages.
func WithMemoryLimitPages(pages uint32) Option {
	return func(s *settings) { s.memLimit = pages }
}

// Runtime exposes one instantiated WASM module as a host runtime with a
// single class whose methods are the module's exported functions. The
// module instance is the runtime's server object.
type Runtime struct {
	runtime wazero.Runtime
	module  api.Module
	class   *moduleClass
	values  map[string]*valueClass
	version protocol.Version
	mu      sync.Mutex
}

var _ host.Runtime = (*Runtime)(nil)

// New compiles and instantiates wasm. The caller must Close the runtime.
func New(ctx context.Context, wasm []byte, opts ...Option) (*Runtime, error) {
	s := settings{moduleName: "host"}
	for _, opt := range opts {
		opt(&s)
	}
	if s.className == "" {
		s.className = "wasm:" + s.moduleName
	}

	cfg := wazero.NewRuntimeConfig()
	if s.memLimit > 0 {
		cfg = cfg.WithMemoryLimitPages(s.memLimit)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, cfg)

	compiled, err := rt.CompileModule(ctx, wasm)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, errors.Wrap(errors.PhaseResolve, errors.KindInvalidData, err, "compile module")
	}
	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(s.moduleName))
	if err != nil {
		_ = rt.Close(ctx)
		return nil, errors.Wrap(errors.PhaseResolve, errors.KindInvalidData, err, "instantiate module")
	}

	r := &Runtime{
		runtime: rt,
		module:  mod,
		version: s.version,
		values:  make(map[string]*valueClass),
	}
	for _, t := range []api.ValueType{api.ValueTypeI32, api.ValueTypeI64, api.ValueTypeF32, api.ValueTypeF64} {
		r.values[api.ValueTypeName(t)] = &valueClass{typ: t}
	}
	r.class = &moduleClass{name: s.className, runtime: r}

	defs := compiled.ExportedFunctions()
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		r.class.methods = append(r.class.methods, &export{
			owner: r.class,
			name:  name,
			def:   defs[name],
			fn:    mod.ExportedFunction(name),
		})
	}
	return r, nil
}

// Close releases the module and the wazero runtime.
func (r *Runtime) Close(ctx context.Context) error {
	return r.runtime.Close(ctx)
}

// ClassByName implements host.Runtime. It knows the module class and the
// four numeric value types.
func (r *Runtime) ClassByName(name string) (host.Class, bool) {
	if name == r.class.name {
		return r.class, true
	}
	if v, ok := r.values[name]; ok {
		return v, true
	}
	return nil, false
}

// Version implements host.Runtime.
func (r *Runtime) Version() protocol.Version {
	return r.version
}

// Server implements host.Runtime.
func (r *Runtime) Server() any {
	return r.module
}

// Elements implements host.Runtime. Modules have no collections of
// their own, so only []any is accepted.
func (r *Runtime) Elements(collection any) ([]any, error) {
	if elems, ok := collection.([]any); ok {
		return elems, nil
	}
	return nil, errors.TypeMismatch(errors.PhaseLocate, "collection", "[]any", collection)
}

func (r *Runtime) classOf(t api.ValueType) host.Class {
	name := api.ValueTypeName(t)
	if v, ok := r.values[name]; ok {
		return v
	}
	return &valueClass{typ: t}
}

// moduleClass is the module seen as a class: no fields, no constructors,
// exported functions as static methods.
type moduleClass struct {
	runtime *Runtime
	name    string
	methods []host.Method
}

func (c *moduleClass) Name() string                     { return c.name }
func (c *moduleClass) Super() (host.Class, bool)        { return nil, false }
func (c *moduleClass) Fields() []host.Field             { return nil }
func (c *moduleClass) Methods() []host.Method           { return c.methods }
func (c *moduleClass) Constructors() []host.Constructor { return nil }
func (c *moduleClass) AssignableTo(o host.Class) bool   { return host.SameClass(c, o) }
func (c *moduleClass) IsInstance(v any) bool            { return v == c.runtime.module }

// valueClass is a WASM numeric value type.
type valueClass struct {
	typ api.ValueType
}

func (v *valueClass) Name() string                     { return api.ValueTypeName(v.typ) }
func (v *valueClass) Super() (host.Class, bool)        { return nil, false }
func (v *valueClass) Fields() []host.Field             { return nil }
func (v *valueClass) Methods() []host.Method           { return nil }
func (v *valueClass) Constructors() []host.Constructor { return nil }
func (v *valueClass) AssignableTo(o host.Class) bool   { return host.SameClass(v, o) }

func (v *valueClass) IsInstance(x any) bool {
	switch x.(type) {
	case int32:
		return v.typ == api.ValueTypeI32
	case int64:
		return v.typ == api.ValueTypeI64
	case float32:
		return v.typ == api.ValueTypeF32
	case float64:
		return v.typ == api.ValueTypeF64
	}
	return false
}

// export is an exported function.
type export struct {
	owner *moduleClass
	def   api.FunctionDefinition
	fn    api.Function
	name  string
}

func (e *export) Name() string { return e.name }
func (e *export) Static() bool { return true }

func (e *export) Params() []host.Class {
	types := e.def.ParamTypes()
	out := make([]host.Class, len(types))
	for i, t := range types {
		out[i] = e.owner.runtime.classOf(t)
	}
	return out
}

// Return is the first result type; multi-value results beyond it are dropped.
func (e *export) Return() host.Class {
	types := e.def.ResultTypes()
	if len(types) == 0 {
		return nil
	}
	return e.owner.runtime.classOf(types[0])
}

func (e *export) Invoke(_ any, args ...any) (any, error) {
	target := e.owner.name + "#" + e.name
	types := e.def.ParamTypes()
	if len(args) != len(types) {
		return nil, &host.InvocationError{Target: target,
			Cause: fmt.Errorf("want %d arguments, got %d", len(types), len(args))}
	}
	params := make([]uint64, len(args))
	for i, a := range args {
		p, err := encode(types[i], a)
		if err != nil {
			return nil, &host.InvocationError{Target: target, Cause: fmt.Errorf("argument %d: %w", i, err)}
		}
		params[i] = p
	}

	r := e.owner.runtime
	r.mu.Lock()
	results, err := e.fn.Call(context.Background(), params...)
	r.mu.Unlock()
	if err != nil {
		return nil, &host.InvocationError{Target: target, Cause: err}
	}
	if len(results) == 0 {
		return nil, nil
	}
	return decode(e.def.ResultTypes()[0], results[0]), nil
}

func encode(t api.ValueType, v any) (uint64, error) {
	switch t {
	case api.ValueTypeI32:
		switch x := v.(type) {
		case int32:
			return api.EncodeI32(x), nil
		case int:
			return api.EncodeI32(int32(x)), nil
		case bool:
			if x {
				return 1, nil
			}
			return 0, nil
		}
	case api.ValueTypeI64:
		switch x := v.(type) {
		case int64:
			return api.EncodeI64(x), nil
		case int:
			return api.EncodeI64(int64(x)), nil
		}
	case api.ValueTypeF32:
		if x, ok := v.(float32); ok {
			return api.EncodeF32(x), nil
		}
	case api.ValueTypeF64:
		if x, ok := v.(float64); ok {
			return api.EncodeF64(x), nil
		}
	}
	return 0, fmt.Errorf("cannot pass %T as %s", v, api.ValueTypeName(t))
}

func decode(t api.ValueType, v uint64) any {
	switch t {
	case api.ValueTypeI32:
		return api.DecodeI32(v)
	case api.ValueTypeI64:
		return int64(v)
	case api.ValueTypeF32:
		return api.DecodeF32(v)
	case api.ValueTypeF64:
		return api.DecodeF64(v)
	}
	return v
}
