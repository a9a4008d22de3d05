// Package errors provides structured error types for the host bridge.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the logical symbol name, an object path and the cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseConvert, errors.KindInvocationFailed).
//		Symbol("FriendlyByteBuf#writeItem").
//		Cause(cause).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.CapabilityUnavailable(errors.PhaseConvert, "item stack to portable", "FriendlyByteBuf")
//	err := errors.InvocationFailed(errors.PhaseInvoke, "MinecraftServer#isDebugging", cause)
//
// Kind-only sentinels match any phase:
//
//	if errors.Is(err, hberrors.ErrCapabilityUnavailable) { ... }
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
