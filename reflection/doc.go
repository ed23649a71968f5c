// Package reflection describes the external interface of a shader module.
//
// Reflect walks a validated ir.Module and reports, per entry point, the
// resource bindings its body references, its vertex inputs and its fragment
// outputs, followed by the member layout of every struct in the type table.
// The result is a tree of plain records with lowerCamelCase JSON field names:
//
//	data := reflection.Reflect(module)
//	for _, ep := range data.EntryPoints {
//		for _, b := range ep.Bindings {
//			fmt.Printf("%s @group(%d) @binding(%d) %s\n", b.Name, b.Group, b.Binding, b.ResourceType)
//		}
//	}
//	out, err := data.ToJSON()
//
// TypeName and Classify are the two building blocks and are exported for
// callers that only need a display name or a resource category.
//
// # Binding usage
//
// An entry point uses a global variable when its own expression arena
// contains a direct reference to that variable. Helper functions called by
// the entry point are not followed, so a resource touched only inside a
// helper is not reported for the entry point.
//
// Every function here is pure: it reads the module and allocates a fresh
// result, so concurrent calls need no locking.
package reflection
