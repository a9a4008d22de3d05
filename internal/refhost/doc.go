// Package refhost is a reference game server built on reflecthost.
//
// It registers a plausible subset of a game server's internals under their
// host class names: the server, its connection listener, per-player packet
// listeners, the packet buffer with its item reader and writer, and the tag
// stream routines. Its own tag and item encoders are independent of the
// portable codec so that round trips through it test the bridge rather than
// a single implementation against itself.
//
// Options reproduce the drift the bridge has to survive: the legacy
// connection layout, Spigot class names, missing classes, the older tag
// reader signature and injected faults.
package refhost
