// Package protocol identifies host releases.
//
// A Version pairs the network protocol number with the release name. The
// subpackages hold the portable values that cross the host boundary: nbt
// for compound tags, item for item stacks and wire for the byte layout both
// sides agree on for a given Version.
package protocol
