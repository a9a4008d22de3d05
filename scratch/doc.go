// Package scratch provides short-lived byte buffers used as the transport
// between two encoders during a single conversion.
//
// A buffer is acquired from a Pool, written by one party, read by the other
// and released exactly once:
//
//	buf := pool.Acquire()
//	defer buf.Release()
//
// Buffers are never shared between concurrent calls. Pool.Stats counts
// acquisitions and releases so callers can assert that nothing leaks.
package scratch
