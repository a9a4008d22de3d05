// Package wasmhost exposes an instantiated WebAssembly module as a
// host.Runtime, so a sandboxed guest can stand in for the server process.
//
// The module is presented as one class. Each exported function becomes a
// static method of that class, with the numeric value types i32, i64, f32
// and f64 as its parameter and return classes. Naming the class after the
// host's server type lets the catalog resolve capabilities such as
// isDebugging straight from module exports:
//
//	rt, err := wasmhost.New(ctx, wasm, wasmhost.WithClassName("net.minecraft.server.MinecraftServer"))
//	cat := catalog.New(rt)
//	cat.Initialize(protocol.Version{})
//
// Calls into the module are serialized.
package wasmhost
