package shaderkit

import (
	"fmt"
	"strings"

	"github.com/gogpu/shaderkit/spirv"
)

// CompileOptions configures SPIR-V compilation.
type CompileOptions struct {
	// SPIRVVersion is the target SPIR-V version (default: 1.3).
	SPIRVVersion spirv.Version

	// Debug emits debug names (OpName, OpMemberName).
	Debug bool

	// Validate runs IR validation before code generation.
	Validate bool
}

// DefaultOptions returns the options used by CompileSPIRV.
func DefaultOptions() CompileOptions {
	return CompileOptions{
		SPIRVVersion: spirv.Version1_3,
		Validate:     true,
	}
}

// Target selects the shading language produced by CompileSource.
type Target uint8

const (
	// TargetMSL is Metal Shading Language.
	TargetMSL Target = iota
	// TargetGLSL is GLSL 3.30.
	TargetGLSL
	// TargetHLSL is HLSL shader model 5.1.
	TargetHLSL
)

func (t Target) String() string {
	switch t {
	case TargetMSL:
		return "msl"
	case TargetGLSL:
		return "glsl"
	case TargetHLSL:
		return "hlsl"
	default:
		return fmt.Sprintf("Target(%d)", uint8(t))
	}
}

// ParseTarget parses a target name as printed by Target.String.
func ParseTarget(name string) (Target, error) {
	switch strings.ToLower(name) {
	case "msl", "metal":
		return TargetMSL, nil
	case "glsl":
		return TargetGLSL, nil
	case "hlsl":
		return TargetHLSL, nil
	}
	return 0, fmt.Errorf("unknown target %q", name)
}
