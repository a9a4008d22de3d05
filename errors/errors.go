package errors

import (
	"fmt"
	"sort"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseResolve Phase = "resolve" // symbol lookup
	PhaseConvert Phase = "convert" // host <-> portable conversion
	PhaseLocate  Phase = "locate"  // connection graph walks
	PhaseInvoke  Phase = "invoke"  // host handle invocation
	PhaseConfig  Phase = "config"  // configuration loading
	PhaseCodec   Phase = "codec"   // portable wire codec
)

// Kind categorizes the error
type Kind string

const (
	KindSymbolAbsent          Kind = "symbol_absent"
	KindCapabilityUnavailable Kind = "capability_unavailable"
	KindInvocationFailed      Kind = "invocation_failed"
	KindConversionIO          Kind = "conversion_io"
	KindNotInitialized        Kind = "not_initialized"
	KindInvalidInput          Kind = "invalid_input"
	KindInvalidData           Kind = "invalid_data"
	KindTypeMismatch          Kind = "type_mismatch"
	KindOutOfBounds           Kind = "out_of_bounds"
	KindUnsupported           Kind = "unsupported"
	KindNotFound              Kind = "not_found"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Symbol string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Symbol != "" {
		b.WriteString(": symbol ")
		b.WriteString(e.Symbol)
	}

	if e.Detail != "" {
		if e.Symbol != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target with an empty Phase matches on Kind alone.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		if t.Phase == "" {
			return e.Kind == t.Kind
		}
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Kind-only sentinels for errors.Is checks.
var (
	ErrSymbolAbsent          = &Error{Kind: KindSymbolAbsent}
	ErrCapabilityUnavailable = &Error{Kind: KindCapabilityUnavailable}
	ErrInvocationFailed      = &Error{Kind: KindInvocationFailed}
	ErrConversionIO          = &Error{Kind: KindConversionIO}
	ErrNotInitialized        = &Error{Kind: KindNotInitialized}
	ErrNotFound              = &Error{Kind: KindNotFound}
)

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the object path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Symbol sets the logical symbol name
func (b *Builder) Symbol(name string) *Builder {
	b.err.Symbol = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// SymbolAbsent creates an error for a symbol that could not be located
func SymbolAbsent(phase Phase, symbol string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindSymbolAbsent,
		Symbol: symbol,
	}
}

// CapabilityUnavailable creates an error for an operation whose required symbols are absent
func CapabilityUnavailable(phase Phase, operation string, missing ...string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindCapabilityUnavailable,
		Symbol: strings.Join(missing, ", "),
		Detail: fmt.Sprintf("%s unavailable", operation),
	}
}

// InvocationFailed creates an error for a failed handle invocation
func InvocationFailed(phase Phase, symbol string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvocationFailed,
		Symbol: symbol,
		Cause:  cause,
	}
}

// ConversionIO creates an error for a failed byte round trip
func ConversionIO(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseConvert,
		Kind:   KindConversionIO,
		Detail: detail,
		Cause:  cause,
	}
}

// NotInitialized creates a not-initialized error for a component used too early
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, symbol, want string, got any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Symbol: symbol,
		Detail: fmt.Sprintf("want %s, got %T", want, got),
		Value:  got,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// AbsentSymbol identifies a single symbol that could not be resolved
type AbsentSymbol struct {
	Owner string // e.g., "NbtIo"
	Name  string // e.g., "method:read"
}

// AbsentSymbolsError reports every symbol left absent after catalog initialization
type AbsentSymbolsError struct {
	Symbols []AbsentSymbol
}

// NewAbsentSymbolsError creates an error from a list of "owner#name" keys
func NewAbsentSymbolsError(keys []string) *AbsentSymbolsError {
	result := &AbsentSymbolsError{
		Symbols: make([]AbsentSymbol, 0, len(keys)),
	}
	for _, key := range keys {
		owner, name := parseSymbolKey(key)
		result.Symbols = append(result.Symbols, AbsentSymbol{
			Owner: owner,
			Name:  name,
		})
	}
	return result
}

func parseSymbolKey(key string) (owner, name string) {
	o, n, found := strings.Cut(key, "#")
	if found {
		return o, n
	}
	return key, ""
}

func (e *AbsentSymbolsError) Error() string {
	if len(e.Symbols) == 0 {
		return "[resolve] symbol_absent: no symbols specified"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d host symbol(s) absent:\n", len(e.Symbols))

	byOwner := make(map[string][]string)
	var owners []string
	for _, s := range e.Symbols {
		if _, exists := byOwner[s.Owner]; !exists {
			owners = append(owners, s.Owner)
		}
		if s.Name != "" {
			byOwner[s.Owner] = append(byOwner[s.Owner], s.Name)
		}
	}
	sort.Strings(owners)

	for _, owner := range owners {
		b.WriteString("\n  ")
		b.WriteString(owner)
		if len(byOwner[owner]) == 0 {
			b.WriteString(" (class)\n")
			continue
		}
		b.WriteString(":\n")
		for _, name := range byOwner[owner] {
			b.WriteString("    - ")
			b.WriteString(name)
			b.WriteByte('\n')
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// Is reports whether target matches this error type
func (e *AbsentSymbolsError) Is(target error) bool {
	if _, ok := target.(*AbsentSymbolsError); ok {
		return true
	}
	return target == ErrSymbolAbsent
}
