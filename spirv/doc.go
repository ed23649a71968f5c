// Package spirv reads SPIR-V modules.
//
// Words and Decode split a binary into its header and instruction stream,
// Dump prints a disassembly listing, and Parse lifts a module into IR so it
// can be reflected or written back out as WGSL:
//
//	module, err := spirv.Parse(binary)
//	if err != nil {
//		return err
//	}
//	source, err := wgsl.Write(module, wgsl.WriterOptions{})
//
// # Supported subset
//
// The frontend accepts shader modules in the logical addressing model:
//   - scalar, vector, matrix, array, runtime array and struct types
//   - uniform, storage, push constant, workgroup and private variables
//   - separate images and samplers, including arrays of them
//   - structured control flow (selection and loop merges), including phis
//   - the GLSL.std.450 extended instruction set
//
// Input and Output variables become private globals. Each entry point takes
// its inputs as arguments, stores them into those globals, and returns the
// values of the output globals, so helper functions can keep reading and
// writing them. Scalars that atomic instructions operate on are declared
// with atomic types.
//
// Combined image samplers, specialization constant operations, physical
// addressing and control flow that is not structured are rejected with a
// *ParseError.
//
// ModuleBuilder assembles modules section by section; the tests use it to
// build inputs for the frontend.
//
// See the SPIR-V specification at
// https://registry.khronos.org/SPIR-V/specs/unified1/SPIRV.html.
package spirv
