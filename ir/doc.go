// Package ir defines the shader module representation that shaderkit walks.
//
// A Module is a set of arenas addressed by integer handles:
//   - Types: every type shape used by the shader (a DAG, never a cycle)
//   - Constants: module-scope constant values
//   - GlobalVariables: uniforms, storage buffers, textures, samplers, ...
//   - Functions: helper functions callable from entry points
//   - EntryPoints: stage-tagged functions, each owning its function body
//
// Modules are produced by the WGSL importer (package wgsl, from the naga
// compiler's IR) and by the SPIR-V frontend (package spirv). They are read by
// the reflection engine and by the WGSL writer.
//
// TypeInner, Binding, ExpressionKind and StatementKind are closed sums: each
// is an interface with an unexported marker method, so only this package can
// add variants and every type switch over them can be checked for coverage.
package ir
