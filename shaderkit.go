// Package shaderkit is a WGSL toolchain: validation, compilation to SPIR-V
// and shading-language source, SPIR-V disassembly back to WGSL, and
// reflection of the resources a shader's entry points use.
//
// Parsing, validation and code generation are done by the naga compiler.
// Disassembly and reflection run on shaderkit's own IR (package ir), which
// naga modules are imported into and SPIR-V binaries are lifted into.
//
// Compiling a single entry point:
//
//	words, err := shaderkit.CompileSPIRV(source, "vs_main")
//	if err != nil {
//	    var e *shaderkit.Error
//	    if errors.As(err, &e) && e.Kind == shaderkit.EntryPointNotFound {
//	        ...
//	    }
//	}
//
// Reflecting a shader:
//
//	data, err := shaderkit.Reflect(source)
//	js, _ := data.ToJSON()
//
// Every function is synchronous and keeps no state between calls, so all of
// them are safe for concurrent use.
package shaderkit

import (
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/glsl"
	"github.com/gogpu/naga/hlsl"
	nir "github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/msl"
	nspirv "github.com/gogpu/naga/spirv"

	"github.com/gogpu/shaderkit/ir"
	"github.com/gogpu/shaderkit/reflection"
	"github.com/gogpu/shaderkit/spirv"
	"github.com/gogpu/shaderkit/wgsl"
)

// IsValid reports whether source parses and validates.
func IsValid(source string) bool {
	return Validate(source) == nil
}

// Validate parses and validates source.
func Validate(source string) error {
	_, err := load(source, true)
	return err
}

// CompileSPIRV compiles source to a little-endian SPIR-V binary using
// DefaultOptions. A non-empty entryPoint restricts the output to that entry
// point; an empty one compiles all of them.
func CompileSPIRV(source, entryPoint string) ([]byte, error) {
	return CompileSPIRVWithOptions(source, entryPoint, DefaultOptions())
}

// CompileSPIRVWithOptions is CompileSPIRV with explicit options.
func CompileSPIRVWithOptions(source, entryPoint string, opts CompileOptions) ([]byte, error) {
	module, err := load(source, opts.Validate)
	if err != nil {
		return nil, err
	}
	if entryPoint != "" {
		ep, err := findEntryPoint(module, entryPoint)
		if err != nil {
			return nil, err
		}
		pruned := *module
		pruned.EntryPoints = []nir.EntryPoint{*ep}
		module = &pruned
	}

	out, err := naga.GenerateSPIRV(module, nspirv.Options{
		Version:    nspirv.Version{Major: opts.SPIRVVersion.Major, Minor: opts.SPIRVVersion.Minor},
		Debug:      opts.Debug,
		Validation: opts.Validate,
	})
	if err != nil {
		return nil, newError(CodegenError, "SPIR-V error", err)
	}
	// Fix the byte order regardless of how the generator wrote the words.
	words, err := spirv.Words(out)
	if err != nil {
		return nil, newError(CodegenError, "SPIR-V error", err)
	}
	Logger().Debug("shaderkit: emitted SPIR-V",
		"entryPoint", entryPoint, "version", opts.SPIRVVersion.String(), "words", len(words))
	return spirv.Bytes(words), nil
}

// CompileMSL compiles source to Metal Shading Language.
func CompileMSL(source, entryPoint string) (string, error) {
	return CompileSource(source, TargetMSL, entryPoint)
}

// CompileSource compiles source to the shading language selected by target.
// A non-empty entryPoint restricts the output to that entry point.
func CompileSource(source string, target Target, entryPoint string) (string, error) {
	module, err := load(source, true)
	if err != nil {
		return "", err
	}
	var ep *nir.EntryPoint
	if entryPoint != "" {
		if ep, err = findEntryPoint(module, entryPoint); err != nil {
			return "", err
		}
	}

	var code string
	switch target {
	case TargetMSL:
		pipeline := msl.PipelineOptions{}
		if ep != nil {
			pipeline.EntryPoint = &msl.EntryPointSelector{Stage: ep.Stage, Name: ep.Name}
		}
		code, _, err = msl.CompileWithPipeline(module, msl.DefaultOptions(), pipeline)
	case TargetGLSL:
		opts := glsl.DefaultOptions()
		opts.EntryPoint = entryPoint
		code, _, err = glsl.Compile(module, opts)
	case TargetHLSL:
		opts := hlsl.DefaultOptions()
		opts.EntryPoint = entryPoint
		code, _, err = hlsl.Compile(module, opts)
	default:
		return "", newError(CodegenError, fmt.Sprintf("unknown target %s", target), nil)
	}
	if err != nil {
		return "", newError(CodegenError, targetErrorPrefix(target), err)
	}
	Logger().Debug("shaderkit: emitted source",
		"target", target.String(), "entryPoint", entryPoint, "bytes", len(code))
	return code, nil
}

func targetErrorPrefix(t Target) string {
	switch t {
	case TargetGLSL:
		return "GLSL error"
	case TargetHLSL:
		return "HLSL error"
	default:
		return "MSL error"
	}
}

// Disassemble renders a SPIR-V binary as WGSL source.
func Disassemble(binary []byte) (string, error) {
	module, err := liftSPIRV(binary)
	if err != nil {
		return "", err
	}
	text, err := wgsl.Write(module, wgsl.DefaultWriterOptions())
	if err != nil {
		return "", newError(CodegenError, "WGSL write error", err)
	}
	Logger().Debug("shaderkit: disassembled", "words", len(binary)/4, "bytes", len(text))
	return text, nil
}

// Import parses and validates source and returns it as shaderkit IR, the
// form consumed by packages reflection and layout.
func Import(source string) (*ir.Module, error) {
	module, err := load(source, true)
	if err != nil {
		return nil, err
	}
	imported, err := wgsl.Import(module)
	if err != nil {
		return nil, newError(ParseError, "parse error", err)
	}
	return imported, nil
}

// Reflect reports the entry points, bindings, stage interfaces and struct
// layouts of source.
func Reflect(source string) (*reflection.Data, error) {
	module, err := Import(source)
	if err != nil {
		return nil, err
	}
	data := reflection.Reflect(module)
	Logger().Debug("shaderkit: reflected",
		"entryPoints", len(data.EntryPoints), "types", len(data.Types))
	return data, nil
}

// ReflectSPIRV is Reflect for a SPIR-V binary.
func ReflectSPIRV(binary []byte) (*reflection.Data, error) {
	module, err := liftSPIRV(binary)
	if err != nil {
		return nil, err
	}
	data := reflection.Reflect(module)
	Logger().Debug("shaderkit: reflected SPIR-V",
		"entryPoints", len(data.EntryPoints), "types", len(data.Types))
	return data, nil
}

// load parses source and, when validate is set, validates the result.
// Lowering failures count as parse errors.
func load(source string, validate bool) (*nir.Module, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, newError(ParseError, "parse error", err)
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, newError(ParseError, "parse error", err)
	}
	Logger().Debug("shaderkit: parsed",
		"bytes", len(source), "entryPoints", len(module.EntryPoints), "types", len(module.Types))

	if !validate {
		return module, nil
	}
	errs, err := naga.Validate(module)
	if err != nil {
		return nil, newError(ValidationError, "validation error", err)
	}
	if len(errs) > 0 {
		Logger().Debug("shaderkit: validation failed", "errors", len(errs))
		return nil, newError(ValidationError, "validation error", errs[0])
	}
	return module, nil
}

func findEntryPoint(module *nir.Module, name string) (*nir.EntryPoint, error) {
	for i := range module.EntryPoints {
		if module.EntryPoints[i].Name == name {
			return &module.EntryPoints[i], nil
		}
	}
	return nil, newError(EntryPointNotFound, fmt.Sprintf("Entry point '%s' not found", name), nil)
}

// liftSPIRV parses and validates a SPIR-V binary into shaderkit IR.
func liftSPIRV(binary []byte) (*ir.Module, error) {
	if len(binary)%4 != 0 {
		return nil, newError(LengthError, ErrLength.Message, nil)
	}
	module, err := spirv.Parse(binary)
	if err != nil {
		return nil, newError(ParseError, "SPIR-V parse error", err)
	}
	errs, err := ir.Validate(module)
	if err != nil {
		return nil, newError(ValidationError, "SPIR-V validation error", err)
	}
	if len(errs) > 0 {
		return nil, newError(ValidationError, "SPIR-V validation error", errs[0])
	}
	Logger().Debug("shaderkit: parsed SPIR-V",
		"words", len(binary)/4, "entryPoints", len(module.EntryPoints), "functions", len(module.Functions))
	return module, nil
}
