// Package config loads bridge settings from a TOML file and HOSTBRIDGE_*
// environment variables, and turns them into options for the catalog, the
// connection locator, the scratch pool and the logger.
//
// A file might look like:
//
//	version = "1.20.4"
//
//	[namespaces]
//	server = "net.minecraft."
//
//	[candidates]
//	FriendlyByteBuf = ["com.example.PatchedFriendlyByteBuf"]
//
//	[locator]
//	scan_limit = 16
//
// Environment variables take precedence over the file, for example
// HOSTBRIDGE_LOCATOR_SCAN_LIMIT=8 or HOSTBRIDGE_LOG_LEVEL=debug.
package config
