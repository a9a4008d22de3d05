// Package connection locates network objects inside the host: the server's
// connection listener, the list of live connections, a player's packet
// listener, its connection and the channel under it.
//
// Where the host keeps a player's connection has moved between releases.
// ConnectionHandle tries each known layout in turn and treats an unset
// reference the same as a missing field, so a layout that resolves but
// does not apply falls through to the next one.
package connection
