// Package wire is the portable packet-buffer codec.
//
// Item stacks before 1.20.5 are laid out as:
//
//	bool      present
//	VarInt    item id        (if present)
//	byte      count          (if present)
//	NBT       tag or TAG_End (if present; nameless root from 1.20.2)
//
// Releases from 1.20.5 on carry component-based stacks, which this codec
// rejects with an unsupported error.
package wire
