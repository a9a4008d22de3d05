// Package hostbridge adapts a version-varying game server host to a stable,
// portable API.
//
// The host is only reachable through runtime introspection: classes looked
// up by name, fields read by type and position, methods invoked reflectively.
// Names and layouts shift between host releases, so every symbol is resolved
// once at startup against an ordered list of candidates and then cached.
// Operations whose symbols are missing report that they are unavailable
// instead of failing the whole adapter.
//
// # Architecture Overview
//
//	hostbridge/          Adapter wiring catalog, bridge and locator together
//	├── catalog/         One-time symbol resolution with ordered candidates
//	├── bridge/          Item stack and compound tag conversion, debug flag
//	├── connection/      Player to network connection lookup and listing
//	├── scratch/         Pooled scratch buffers for conversions
//	├── protocol/        Portable values: versions, NBT, item stacks, wire codec
//	├── host/            Introspection interfaces the host must provide
//	│   ├── reflecthost/ Host runtime backed by registered Go types
//	│   └── wasmhost/    Host runtime backed by a WebAssembly module
//	├── config/          TOML and environment configuration, logger setup
//	├── errors/          Structured error types with phase and kind
//	└── cmd/inspect/     Resolution report and interactive symbol browser
//
// # Quick Start
//
//	a, err := hostbridge.New(rt, nil, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	stack, err := a.Bridge.ItemStackToPortable(handle)
//	if errors.Is(err, errors.ErrCapabilityUnavailable) {
//	    // this host release lacks the item serializer
//	}
//
//	conn, err := a.Locator.ConnectionHandle(player)
//
// # Conversions
//
// Item stacks and compound tags cross the boundary as bytes. The host
// writes its value into a pooled scratch buffer through its own serializer
// and the portable codec reads it back, or the reverse. Every buffer is
// released on every path, including host failures.
//
// # Connection Lookup
//
// Finding a player's connection tries each known listener layout in turn,
// newest first, and reports the first failure only when all of them fail.
package hostbridge
