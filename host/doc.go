// Package host defines the boundary between the bridge and a host runtime.
//
// A host runtime exposes its internal types only through introspection:
// classes looked up by name, their declared fields, methods and
// constructors, and opaque instances reached from the root server object.
// The bridge never depends on concrete host types; it holds handles to
// these interfaces and invokes them.
//
// Implementations:
//
//	reflecthost/   Go types registered under class names
//	wasmhost/      a WebAssembly module instantiated with wazero
package host
