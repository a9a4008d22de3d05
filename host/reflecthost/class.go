package reflecthost

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/wippyai/hostbridge/host"
)

// class is a host class backed by a Go type, or by a Go kind when typ is nil.
type class struct {
	reg     *Registry
	typ     reflect.Type
	name    string
	statics []*staticMethod
	ctors   []*constructor
	kind    reflect.Kind
}

func (c *class) Name() string { return c.name }

// instType is the Go type instances carry: *T for struct classes.
func (c *class) instType() reflect.Type {
	if c.typ != nil && c.typ.Kind() == reflect.Struct {
		return reflect.PointerTo(c.typ)
	}
	return c.typ
}

// Super treats a leading embedded struct of a registered type as the parent class.
func (c *class) Super() (host.Class, bool) {
	sup := c.super()
	if sup == nil {
		return nil, false
	}
	return sup, true
}

func (c *class) super() *class {
	if c.typ == nil || c.typ.Kind() != reflect.Struct || c.typ.NumField() == 0 {
		return nil
	}
	f := c.typ.Field(0)
	if !f.Anonymous || canonical(f.Type).Kind() != reflect.Struct || !c.reg.registered(f.Type) {
		return nil
	}
	return c.reg.classOf(f.Type)
}

func (c *class) Fields() []host.Field {
	if c.typ == nil || c.typ.Kind() != reflect.Struct {
		return nil
	}
	start := 0
	if c.super() != nil {
		start = 1
	}
	out := make([]host.Field, 0, c.typ.NumField()-start)
	for i := start; i < c.typ.NumField(); i++ {
		out = append(out, &field{owner: c, index: i, sf: c.typ.Field(i)})
	}
	return out
}

// Methods lists exported methods declared on the type itself, sorted by name,
// followed by registered statics in registration order.
func (c *class) Methods() []host.Method {
	var out []host.Method
	if it := c.instType(); it != nil && (c.typ.Kind() == reflect.Struct || c.typ.Kind() == reflect.Interface) {
		var inherited reflect.Type
		if sup := c.super(); sup != nil {
			inherited = sup.instType()
		}
		for i := 0; i < it.NumMethod(); i++ {
			m := it.Method(i)
			if inherited != nil {
				if _, ok := inherited.MethodByName(m.Name); ok {
					continue
				}
			}
			out = append(out, &method{owner: c, m: m, iface: it.Kind() == reflect.Interface})
		}
	}
	c.reg.mu.RLock()
	for _, s := range c.statics {
		out = append(out, s)
	}
	c.reg.mu.RUnlock()
	return out
}

func (c *class) Constructors() []host.Constructor {
	c.reg.mu.RLock()
	defer c.reg.mu.RUnlock()
	out := make([]host.Constructor, 0, len(c.ctors))
	for _, k := range c.ctors {
		out = append(out, k)
	}
	return out
}

func (c *class) AssignableTo(other host.Class) bool {
	if host.SameClass(c, other) {
		return true
	}
	o, ok := other.(*class)
	if !ok {
		return false
	}
	if o.typ == nil {
		return c.typ != nil && c.typ.Kind() == o.kind
	}
	if c.typ == nil {
		return false
	}
	if o.typ.Kind() == reflect.Interface {
		return c.instType().Implements(o.typ)
	}
	for sup := c.super(); sup != nil; sup = sup.super() {
		if sup.typ == o.typ {
			return true
		}
	}
	return c.instType() == o.instType()
}

func (c *class) IsInstance(v any) bool {
	if v == nil {
		return false
	}
	return c.reg.classOf(reflect.TypeOf(v)).AssignableTo(c)
}

func (c *class) String() string { return c.name }

// field is a struct field of a class.
type field struct {
	owner *class
	sf    reflect.StructField
	index int
}

func (f *field) Name() string     { return f.sf.Name }
func (f *field) Type() host.Class { return f.owner.reg.classOf(f.sf.Type) }
func (f *field) Private() bool    { return !f.sf.IsExported() }

func (f *field) target() string {
	return f.owner.name + "." + f.sf.Name
}

// Get walks down the embedded parent chain of obj until it reaches the
// owner's struct, then reads the field, unexported ones included.
func (f *field) Get(obj any) (any, error) {
	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, f.fail(fmt.Errorf("nil receiver"))
		}
		rv = rv.Elem()
	}
	for rv.IsValid() && rv.Type() != f.owner.typ {
		if rv.Kind() != reflect.Struct || rv.NumField() == 0 || !rv.Type().Field(0).Anonymous {
			return nil, f.fail(fmt.Errorf("%s is not a %s", describe(rv.Type()), f.owner.name))
		}
		rv = rv.Field(0)
		if rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				return nil, f.fail(fmt.Errorf("nil parent"))
			}
			rv = rv.Elem()
		}
	}
	if !rv.IsValid() {
		return nil, f.fail(fmt.Errorf("invalid receiver %T", obj))
	}
	if !rv.CanAddr() {
		if !rv.CanInterface() {
			return nil, f.fail(fmt.Errorf("unaddressable %s", describe(rv.Type())))
		}
		tmp := reflect.New(rv.Type()).Elem()
		tmp.Set(rv)
		rv = tmp
	}
	fv := rv.Field(f.index)
	if !fv.CanInterface() {
		fv = reflect.NewAt(fv.Type(), unsafe.Pointer(fv.UnsafeAddr())).Elem()
	}
	return unwrap(fv), nil
}

func (f *field) fail(err error) error {
	return &host.InvocationError{Target: f.target(), Cause: err}
}

// method is an instance method looked up by name on the receiver at call time.
type method struct {
	owner *class
	m     reflect.Method
	iface bool
}

func (m *method) Name() string { return m.m.Name }
func (m *method) Static() bool { return false }

func (m *method) signature() reflect.Type {
	return m.m.Type
}

// paramOffset skips the receiver that concrete method types carry.
func (m *method) paramOffset() int {
	if m.iface {
		return 0
	}
	return 1
}

func (m *method) Params() []host.Class {
	return params(m.owner.reg, m.signature(), m.paramOffset())
}

func (m *method) Return() host.Class {
	return result(m.owner.reg, m.signature())
}

func (m *method) Invoke(recv any, args ...any) (any, error) {
	target := m.owner.name + "#" + m.m.Name
	rv := reflect.ValueOf(recv)
	if !rv.IsValid() {
		return nil, &host.InvocationError{Target: target, Cause: fmt.Errorf("nil receiver")}
	}
	fn := rv.MethodByName(m.m.Name)
	if !fn.IsValid() {
		return nil, &host.InvocationError{Target: target, Cause: fmt.Errorf("%T has no method %s", recv, m.m.Name)}
	}
	return call(target, fn, args)
}

// staticMethod is a registered receiver-less function.
type staticMethod struct {
	reg   *Registry
	owner *class
	fn    reflect.Value
	name  string
}

func (s *staticMethod) Name() string         { return s.name }
func (s *staticMethod) Static() bool         { return true }
func (s *staticMethod) Params() []host.Class { return params(s.reg, s.fn.Type(), 0) }
func (s *staticMethod) Return() host.Class   { return result(s.reg, s.fn.Type()) }

func (s *staticMethod) Invoke(_ any, args ...any) (any, error) {
	return call(s.owner.name+"#"+s.name, s.fn, args)
}

// constructor is a registered factory function.
type constructor struct {
	reg   *Registry
	owner *class
	fn    reflect.Value
}

func (k *constructor) Params() []host.Class { return params(k.reg, k.fn.Type(), 0) }

func (k *constructor) New(args ...any) (any, error) {
	return call(k.owner.name+"#<init>", k.fn, args)
}

func params(reg *Registry, ft reflect.Type, offset int) []host.Class {
	out := make([]host.Class, 0, ft.NumIn()-offset)
	for i := offset; i < ft.NumIn(); i++ {
		out = append(out, reg.classOf(ft.In(i)))
	}
	return out
}

// result is the first non-error return type, or nil.
func result(reg *Registry, ft reflect.Type) host.Class {
	if ft.NumOut() == 0 || ft.Out(0) == errorType {
		return nil
	}
	return reg.classOf(ft.Out(0))
}

// call invokes fn with args converted to its parameter types. A trailing
// non-nil error result or a panic becomes an InvocationError.
func call(target string, fn reflect.Value, args []any) (out any, err error) {
	ft := fn.Type()
	if ft.IsVariadic() || ft.NumIn() != len(args) {
		return nil, &host.InvocationError{Target: target,
			Cause: fmt.Errorf("want %d arguments, got %d", ft.NumIn(), len(args))}
	}
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		pt := ft.In(i)
		if a == nil {
			in[i] = reflect.Zero(pt)
			continue
		}
		av := reflect.ValueOf(a)
		if !av.Type().AssignableTo(pt) {
			return nil, &host.InvocationError{Target: target,
				Cause: fmt.Errorf("argument %d: %s is not assignable to %s", i, av.Type(), pt)}
		}
		in[i] = av
	}

	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok {
				cause = fmt.Errorf("%v", r)
			}
			out, err = nil, &host.InvocationError{Target: target, Cause: cause, Panic: true}
		}
	}()

	results := fn.Call(in)
	if n := len(results); n > 0 && ft.Out(n-1) == errorType {
		if e := results[n-1]; !e.IsNil() {
			return nil, &host.InvocationError{Target: target, Cause: e.Interface().(error)}
		}
		results = results[:n-1]
	}
	if len(results) == 0 {
		return nil, nil
	}
	return unwrap(results[0]), nil
}
