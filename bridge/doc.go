// Package bridge converts host-internal item stacks and compound tags to and
// from their portable forms.
//
// The bridge never inspects host objects directly. To convert a host item
// stack it constructs the host's own packet buffer over a scratch buffer,
// asks the host to write the stack, and decodes the bytes with the portable
// codec. The reverse direction encodes first and lets the host read.
// Compound tags go through the host's stream routines the same way, always
// in the named root form.
//
// Every conversion that reaches the host takes one buffer from the pool and
// returns it on every path, including host panics. Failures are reported
// with the kinds from the errors package: capability_unavailable when a
// needed symbol was not resolved, invocation_failed when the host call
// failed, conversion_io when the portable codec rejected the bytes.
package bridge
