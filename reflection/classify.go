package reflection

import "github.com/gogpu/shaderkit/ir"

// ResourceType is the category of a bound global variable.
type ResourceType string

const (
	ResourceUniform               ResourceType = "uniform"
	ResourceStorage               ResourceType = "storage"
	ResourceTexture               ResourceType = "texture"
	ResourceSampler               ResourceType = "sampler"
	ResourceAtomic                ResourceType = "atomic"
	ResourceBindingArray          ResourceType = "binding_array"
	ResourceAccelerationStructure ResourceType = "acceleration_structure"
	ResourceRayQuery              ResourceType = "ray_query"
	ResourcePointer               ResourceType = "pointer"
	ResourceUnknown               ResourceType = "unknown"
)

// String returns the category token.
func (r ResourceType) String() string { return string(r) }

// Classify returns the resource category of a global variable together with
// the display name of its type.
//
// The rules are checked in order and the first match wins:
//
//	struct in uniform space                      uniform
//	struct in storage space                      storage
//	image                                        texture
//	sampler                                      sampler
//	atomic                                       atomic
//	scalar, vector, matrix or array in uniform   uniform
//	scalar, vector, matrix or array in storage   storage
//	binding array                                binding_array
//	acceleration structure                       acceleration_structure
//	ray query                                    ray_query
//	pointer                                      pointer
//	anything else                                unknown
//
// The name comes from TypeName; ok is false when it cannot be derived.
func Classify(module *ir.Module, global *ir.GlobalVariable) (category ResourceType, typeName string, ok bool) {
	if module == nil || global == nil {
		return ResourceUnknown, "", false
	}
	typeName, ok = TypeName(module, global.Type)
	if int(global.Type) >= len(module.Types) {
		return ResourceUnknown, typeName, ok
	}
	return classifyInner(module.Types[global.Type].Inner, global.Space), typeName, ok
}

func classifyInner(inner ir.TypeInner, space ir.AddressSpace) ResourceType {
	switch inner.(type) {
	case ir.StructType:
		if r, ok := bufferCategory(space); ok {
			return r
		}
		return ResourceUnknown
	case ir.ImageType:
		return ResourceTexture
	case ir.SamplerType:
		return ResourceSampler
	case ir.AtomicType:
		return ResourceAtomic
	case ir.ScalarType, ir.VectorType, ir.MatrixType, ir.ArrayType:
		if r, ok := bufferCategory(space); ok {
			return r
		}
		return ResourceUnknown
	case ir.BindingArrayType:
		return ResourceBindingArray
	case ir.AccelerationStructureType:
		return ResourceAccelerationStructure
	case ir.RayQueryType:
		return ResourceRayQuery
	case ir.PointerType:
		return ResourcePointer
	default:
		return ResourceUnknown
	}
}

// bufferCategory maps the two buffer address spaces. Storage buffers are
// reported as storage whatever their access mode.
func bufferCategory(space ir.AddressSpace) (ResourceType, bool) {
	switch space {
	case ir.SpaceUniform:
		return ResourceUniform, true
	case ir.SpaceStorage:
		return ResourceStorage, true
	default:
		return "", false
	}
}
