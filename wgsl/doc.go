// Package wgsl connects ir modules to WGSL (WebGPU Shading Language) text.
//
// Parsing is done by the naga WGSL frontend; this package only moves its
// result into the ir representation and writes ir modules back out.
//
// # Components
//
//   - Importer: converts a module lowered by naga into an ir.Module, moving
//     entry point bodies inline and inferring storage access from use.
//   - Writer: renders any valid ir.Module, including one decoded from
//     SPIR-V, as WGSL source.
//
// # Usage
//
//	ast, err := naga.Parse(source)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	lowered, err := naga.LowerWithSource(ast, source)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	module, err := wgsl.Import(lowered)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	text, err := wgsl.Write(module, wgsl.DefaultWriterOptions())
//
// Names that are missing in the module (common for SPIR-V without debug
// info) are synthesized by the writer. They are unique within the output
// and never collide with WGSL keywords.
package wgsl
