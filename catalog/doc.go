// Package catalog resolves the host symbols the bridge depends on.
//
// The host's internal names and layouts change between releases, so nothing
// is looked up by a single hard-coded name. Classes are found by trying an
// ordered list of candidate names; fields by the n-th field of a given type;
// methods by parameter and return shape; constructors by parameter shape.
//
// A lookup that finds nothing yields an absent Symbol rather than an error.
// Initialization therefore always completes, and every capability that
// depends on an absent symbol reports itself unavailable when used:
//
//	cat := catalog.New(rt)
//	cat.Initialize(protocol.Version{}) // ask the runtime
//	if err := cat.Require(catalog.MethodReadItem, catalog.MethodWriteItem); err != nil {
//		log.Printf("item conversion disabled: %v", err)
//	}
//
// Initialize runs once; concurrent callers wait for the first to finish.
package catalog
