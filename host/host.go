package host

import (
	"fmt"
	"io"

	"github.com/wippyai/hostbridge/protocol"
)

// Runtime is the introspection surface of a host process.
// Implementations must be safe for concurrent use once built.
type Runtime interface {
	// ClassByName looks up a class by fully qualified name.
	ClassByName(name string) (Class, bool)
	// Version reports the host release detected at startup.
	Version() protocol.Version
	// Server returns the host's root server instance.
	Server() any
	// Elements returns the members of a collection-valued handle.
	Elements(collection any) ([]any, error)
}

// Class describes a host type.
type Class interface {
	Name() string
	// Super returns the parent class, if the host type has one.
	Super() (Class, bool)
	// Fields returns fields declared on this class, in declaration order.
	Fields() []Field
	// Methods returns methods declared on this class in a stable order.
	Methods() []Method
	Constructors() []Constructor
	// AssignableTo reports whether a value of this class can be used where
	// other is expected.
	AssignableTo(other Class) bool
	// IsInstance reports whether v is an instance of this class.
	IsInstance(v any) bool
}

// Field is a declared field of a class.
type Field interface {
	Name() string
	Type() Class
	Private() bool
	// Get reads the field from an instance of the owning class or a subclass.
	Get(obj any) (any, error)
}

// Method is a declared method. A nil Return means the method yields nothing.
type Method interface {
	Name() string
	Static() bool
	Params() []Class
	Return() Class
	// Invoke calls the method. recv is ignored for static methods.
	Invoke(recv any, args ...any) (any, error)
}

// Constructor creates class instances.
type Constructor interface {
	Params() []Class
	New(args ...any) (any, error)
}

// ByteBuf is the byte buffer abstraction shared between the host and the
// bridge: a readable, writable in-memory byte sequence.
type ByteBuf interface {
	io.Reader
	io.Writer
	io.ByteReader
	io.ByteWriter
	// Readable returns the number of bytes left to read.
	Readable() int
}

// SameClass reports whether two classes are the same host type.
func SameClass(a, b Class) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Name() == b.Name()
}

// InvocationError reports that the host side of a call failed: an error
// returned by the target, a panic inside it, or an argument it rejected.
type InvocationError struct {
	Cause  error
	Target string
	Panic  bool
}

func (e *InvocationError) Error() string {
	if e.Panic {
		return fmt.Sprintf("%s panicked: %v", e.Target, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Target, e.Cause)
}

func (e *InvocationError) Unwrap() error {
	return e.Cause
}
