// Package reflecthost implements host.Runtime over ordinary Go types.
//
// A host registers its internal types under class names and the bridge
// discovers them structurally:
//
//	Go construct                     host model
//	──────────────────────────────────────────────────────────
//	struct T (instances as *T)       class
//	leading embedded registered T    superclass
//	struct fields                    declared fields (unexported = private)
//	exported methods on *T           instance methods
//	Registry.Static functions        static methods
//	Registry.Constructor functions   constructors
//	interface types                  interface classes
//	RegisterKind(reflect.Slice)      collection interface (e.g. java.util.List)
//
// Invocations convert a trailing error result or a panic into a
// *host.InvocationError.
package reflecthost
