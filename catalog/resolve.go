package catalog

import (
	"fmt"
	"strings"

	"github.com/wippyai/hostbridge/host"
)

// ResolveClass returns the first candidate name the runtime knows.
// An empty candidate list yields an absent symbol.
func ResolveClass(rt host.Runtime, candidates ...string) ClassSymbol {
	name := ""
	if len(candidates) > 0 {
		name = candidates[0]
	}
	if rt == nil {
		return Absent[host.Class](name)
	}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if cls, ok := rt.ClassByName(c); ok {
			return Resolved(cls.Name(), cls)
		}
	}
	return Absent[host.Class](name)
}

// ResolveField returns the ordinal-th field of owner whose type is
// assignable to expected. Fields declared on owner are searched first in
// declaration order; if owner has fewer matches the superclass is searched
// with the same ordinal, and so on up the chain. Private fields count only
// when allowPrivate is set.
func ResolveField(owner, expected ClassSymbol, ordinal int, allowPrivate bool) FieldSymbol {
	name := fmt.Sprintf("%s.<%s#%d>", owner.Name(), expected.Name(), ordinal)
	oc, ok := owner.Handle()
	if !ok || ordinal < 0 {
		return Absent[host.Field](name)
	}
	ec, ok := expected.Handle()
	if !ok {
		return Absent[host.Field](name)
	}
	for cls := oc; cls != nil; cls = superOf(cls) {
		n := 0
		for _, f := range cls.Fields() {
			if f.Private() && !allowPrivate {
				continue
			}
			ft := f.Type()
			if ft == nil || !ft.AssignableTo(ec) {
				continue
			}
			if n == ordinal {
				return Resolved(cls.Name()+"."+f.Name(), f)
			}
			n++
		}
	}
	return Absent[host.Field](name)
}

// ResolveFieldByName returns the first field of owner or its superclasses
// named one of names.
func ResolveFieldByName(owner ClassSymbol, names ...string) FieldSymbol {
	name := owner.Name() + "." + strings.Join(names, "|")
	oc, ok := owner.Handle()
	if !ok {
		return Absent[host.Field](name)
	}
	for _, want := range names {
		for cls := oc; cls != nil; cls = superOf(cls) {
			for _, f := range cls.Fields() {
				if f.Name() == want {
					return Resolved(cls.Name()+"."+f.Name(), f)
				}
			}
		}
	}
	return Absent[host.Field](name)
}

// ResolveMethod returns the ordinal-th method of owner whose parameter
// classes are exactly params and, when ret is non-nil, whose return class
// is ret. A nil ret matches any return, including none. Superclasses are
// searched as in ResolveField, with the ordinal counted per class.
func ResolveMethod(owner ClassSymbol, ret *ClassSymbol, ordinal int, params ...ClassSymbol) MethodSymbol {
	name := owner.Name() + "#" + signature(ret, ordinal, params)
	oc, ok := owner.Handle()
	if !ok || ordinal < 0 {
		return Absent[host.Method](name)
	}
	var want host.Class
	if ret != nil {
		if want, ok = ret.Handle(); !ok {
			return Absent[host.Method](name)
		}
	}
	pcs, ok := handles(params)
	if !ok {
		return Absent[host.Method](name)
	}

	for cls := oc; cls != nil; cls = superOf(cls) {
		n := 0
		for _, m := range cls.Methods() {
			if !sameParams(m.Params(), pcs) {
				continue
			}
			if want != nil && !host.SameClass(m.Return(), want) {
				continue
			}
			if n == ordinal {
				return Resolved(cls.Name()+"#"+m.Name(), m)
			}
			n++
		}
	}
	return Absent[host.Method](name)
}

// ResolveMethodByName returns the first method of owner or its
// superclasses called name with paramCount parameters. Names compare
// case-insensitively so that Go exported names match host camelCase names.
func ResolveMethodByName(owner ClassSymbol, name string, paramCount int) MethodSymbol {
	label := fmt.Sprintf("%s#%s/%d", owner.Name(), name, paramCount)
	oc, ok := owner.Handle()
	if !ok {
		return Absent[host.Method](label)
	}
	for cls := oc; cls != nil; cls = superOf(cls) {
		for _, m := range cls.Methods() {
			if strings.EqualFold(m.Name(), name) && len(m.Params()) == paramCount {
				return Resolved(cls.Name()+"#"+m.Name(), m)
			}
		}
	}
	return Absent[host.Method](label)
}

// ResolveConstructor returns the constructor of owner taking exactly params.
func ResolveConstructor(owner ClassSymbol, params ...ClassSymbol) ConstructorSymbol {
	name := owner.Name() + "#<init>" + paramList(params)
	oc, ok := owner.Handle()
	if !ok {
		return Absent[host.Constructor](name)
	}
	pcs, ok := handles(params)
	if !ok {
		return Absent[host.Constructor](name)
	}
	for _, k := range oc.Constructors() {
		if sameParams(k.Params(), pcs) {
			return Resolved(name, k)
		}
	}
	return Absent[host.Constructor](name)
}

func superOf(c host.Class) host.Class {
	sup, ok := c.Super()
	if !ok {
		return nil
	}
	return sup
}

func handles(syms []ClassSymbol) ([]host.Class, bool) {
	out := make([]host.Class, len(syms))
	for i, s := range syms {
		c, ok := s.Handle()
		if !ok {
			return nil, false
		}
		out[i] = c
	}
	return out, true
}

func sameParams(got, want []host.Class) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if !host.SameClass(got[i], want[i]) {
			return false
		}
	}
	return true
}

func signature(ret *ClassSymbol, ordinal int, params []ClassSymbol) string {
	r := "*"
	if ret != nil {
		r = ret.Name()
	}
	return fmt.Sprintf("<%s%s#%d>", r, paramList(params), ordinal)
}

func paramList(params []ClassSymbol) string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name()
	}
	return "(" + strings.Join(names, ", ") + ")"
}
