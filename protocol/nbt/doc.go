// Package nbt is the portable compound-tag model and its binary codec.
//
// Two root framings exist on the wire:
//
//	named     TAG_Compound, u16 name length, name, payload   (disk, NbtIo)
//	nameless  TAG_Compound, payload                          (network, 1.20.2+)
//
// A lone TAG_End in root position encodes "no compound" in both framings and
// decodes to a nil *Compound. All multi-byte values are big-endian.
package nbt
