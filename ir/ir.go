package ir

import "fmt"

// Module is a shader module.
type Module struct {
	Types           []Type
	Constants       []Constant
	GlobalVariables []GlobalVariable

	// Functions holds helper functions only. Entry point bodies live in
	// EntryPoint.Function.
	Functions []Function

	EntryPoints []EntryPoint
}

// EntryPoint is a function the pipeline can invoke directly.
type EntryPoint struct {
	Name      string
	Stage     ShaderStage
	Workgroup [3]uint32 // compute, task and mesh
	Function  Function
}

// ShaderStage is the pipeline stage of an entry point.
type ShaderStage uint8

const (
	StageVertex ShaderStage = iota
	StageFragment
	StageCompute
	StageTask
	StageMesh
)

// String returns the lowercase stage token.
func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	case StageTask:
		return "task"
	case StageMesh:
		return "mesh"
	default:
		return fmt.Sprintf("stage(%d)", uint8(s))
	}
}

// Handle types index into the Module arenas.
type (
	TypeHandle           uint32
	FunctionHandle       uint32
	GlobalVariableHandle uint32
	ConstantHandle       uint32
	ExpressionHandle     uint32
)

// Type is an entry of the type arena. Name is empty for anonymous types.
type Type struct {
	Name  string
	Inner TypeInner
}

// TypeInner is the shape of a type.
type TypeInner interface {
	typeInner()
}

// ScalarType is a scalar of a given kind and byte width.
type ScalarType struct {
	Kind  ScalarKind
	Width uint8
}

func (ScalarType) typeInner() {}

// ScalarKind is the kind of a scalar.
type ScalarKind uint8

const (
	ScalarSint ScalarKind = iota
	ScalarUint
	ScalarFloat
	ScalarBool
	ScalarAbstractInt
	ScalarAbstractFloat
)

// String returns the kind name used in diagnostics.
func (k ScalarKind) String() string {
	switch k {
	case ScalarSint:
		return "Sint"
	case ScalarUint:
		return "Uint"
	case ScalarFloat:
		return "Float"
	case ScalarBool:
		return "Bool"
	case ScalarAbstractInt:
		return "AbstractInt"
	case ScalarAbstractFloat:
		return "AbstractFloat"
	default:
		return fmt.Sprintf("ScalarKind(%d)", uint8(k))
	}
}

// Common scalars.
var (
	F32  = ScalarType{Kind: ScalarFloat, Width: 4}
	I32  = ScalarType{Kind: ScalarSint, Width: 4}
	U32  = ScalarType{Kind: ScalarUint, Width: 4}
	Bool = ScalarType{Kind: ScalarBool, Width: 1}
)

// VectorType is a vector of 2, 3 or 4 scalars.
type VectorType struct {
	Size   VectorSize
	Scalar ScalarType
}

func (VectorType) typeInner() {}

// VectorSize is a vector component count.
type VectorSize uint8

const (
	Vec2 VectorSize = 2
	Vec3 VectorSize = 3
	Vec4 VectorSize = 4
)

// MatrixType is a column-major matrix.
type MatrixType struct {
	Columns VectorSize
	Rows    VectorSize
	Scalar  ScalarType
}

func (MatrixType) typeInner() {}

// PointerType points at a value of type Base in an address space.
type PointerType struct {
	Base  TypeHandle
	Space AddressSpace
}

func (PointerType) typeInner() {}

// ValuePointerType points at a scalar or vector that has no arena entry.
// Size is nil for scalar targets.
type ValuePointerType struct {
	Size   *VectorSize
	Scalar ScalarType
	Space  AddressSpace
}

func (ValuePointerType) typeInner() {}

// ArrayType is a fixed, runtime or override sized array.
type ArrayType struct {
	Base   TypeHandle
	Size   ArraySize
	Stride uint32
}

func (ArrayType) typeInner() {}

// ArraySizeKind tells how an array length is known.
type ArraySizeKind uint8

const (
	ArraySizeConstant ArraySizeKind = iota
	ArraySizeDynamic
	// ArraySizePending is sized by a pipeline override not resolved yet.
	ArraySizePending
)

// ArraySize is the length of an array or binding array.
type ArraySize struct {
	Kind     ArraySizeKind
	Constant uint32 // valid when Kind == ArraySizeConstant
}

// FixedSize returns a constant array size.
func FixedSize(n uint32) ArraySize {
	return ArraySize{Kind: ArraySizeConstant, Constant: n}
}

// DynamicSize returns a runtime array size.
func DynamicSize() ArraySize {
	return ArraySize{Kind: ArraySizeDynamic}
}

// StructType is a struct with laid-out members.
type StructType struct {
	Members []StructMember
	Span    uint32
}

func (StructType) typeInner() {}

// StructMember is one field of a struct. Name may be empty.
type StructMember struct {
	Name    string
	Type    TypeHandle
	Binding Binding // nil when the member has no interface binding
	Offset  uint32
}

// ImageType is a texture.
type ImageType struct {
	Dim          ImageDimension
	Arrayed      bool
	Class        ImageClass
	Multisampled bool

	// SampledKind is the texel scalar kind of sampled images.
	SampledKind ScalarKind

	// StorageFormat and StorageAccess describe storage images.
	StorageFormat StorageFormat
	StorageAccess StorageAccess
}

func (ImageType) typeInner() {}

// ImageDimension is the dimensionality of an image.
type ImageDimension uint8

const (
	Dim1D ImageDimension = iota
	Dim2D
	Dim3D
	DimCube
)

// ImageClass separates sampled, depth and storage images.
type ImageClass uint8

const (
	ImageClassSampled ImageClass = iota
	ImageClassDepth
	ImageClassStorage
)

// StorageFormat is the texel format of a storage image.
type StorageFormat uint8

const (
	FormatUnknown StorageFormat = iota
	FormatR32Uint
	FormatR32Sint
	FormatR32Float
	FormatRg32Uint
	FormatRg32Sint
	FormatRg32Float
	FormatRgba8Unorm
	FormatRgba8Snorm
	FormatRgba8Uint
	FormatRgba8Sint
	FormatBgra8Unorm
	FormatRgba16Uint
	FormatRgba16Sint
	FormatRgba16Float
	FormatRgba32Uint
	FormatRgba32Sint
	FormatRgba32Float
)

var storageFormatNames = [...]string{
	FormatUnknown:     "unknown",
	FormatR32Uint:     "r32uint",
	FormatR32Sint:     "r32sint",
	FormatR32Float:    "r32float",
	FormatRg32Uint:    "rg32uint",
	FormatRg32Sint:    "rg32sint",
	FormatRg32Float:   "rg32float",
	FormatRgba8Unorm:  "rgba8unorm",
	FormatRgba8Snorm:  "rgba8snorm",
	FormatRgba8Uint:   "rgba8uint",
	FormatRgba8Sint:   "rgba8sint",
	FormatBgra8Unorm:  "bgra8unorm",
	FormatRgba16Uint:  "rgba16uint",
	FormatRgba16Sint:  "rgba16sint",
	FormatRgba16Float: "rgba16float",
	FormatRgba32Uint:  "rgba32uint",
	FormatRgba32Sint:  "rgba32sint",
	FormatRgba32Float: "rgba32float",
}

// String returns the WGSL texel format name.
func (f StorageFormat) String() string {
	if int(f) < len(storageFormatNames) {
		return storageFormatNames[f]
	}
	return fmt.Sprintf("format(%d)", uint8(f))
}

// ParseStorageFormat maps a WGSL texel format name to a StorageFormat.
func ParseStorageFormat(name string) (StorageFormat, bool) {
	for i, n := range storageFormatNames {
		if n == name && i != int(FormatUnknown) {
			return StorageFormat(i), true
		}
	}
	return FormatUnknown, false
}

// SamplerType is a sampler, optionally a comparison sampler.
type SamplerType struct {
	Comparison bool
}

func (SamplerType) typeInner() {}

// AtomicType is an atomic scalar.
type AtomicType struct {
	Scalar ScalarType
}

func (AtomicType) typeInner() {}

// AccelerationStructureType is a ray tracing acceleration structure.
type AccelerationStructureType struct{}

func (AccelerationStructureType) typeInner() {}

// RayQueryType is a ray query object.
type RayQueryType struct{}

func (RayQueryType) typeInner() {}

// BindingArrayType is an array of resources bound as one binding.
type BindingArrayType struct {
	Base TypeHandle
	Size ArraySize
}

func (BindingArrayType) typeInner() {}

// AddressSpace is the storage class of a variable or pointer.
type AddressSpace uint8

const (
	SpaceFunction AddressSpace = iota
	SpacePrivate
	SpaceWorkGroup
	SpaceUniform
	SpaceStorage
	SpaceHandle
	SpacePushConstant
	SpaceTaskPayload
)

// String returns the WGSL spelling of the address space.
func (s AddressSpace) String() string {
	switch s {
	case SpaceFunction:
		return "function"
	case SpacePrivate:
		return "private"
	case SpaceWorkGroup:
		return "workgroup"
	case SpaceUniform:
		return "uniform"
	case SpaceStorage:
		return "storage"
	case SpaceHandle:
		return "handle"
	case SpacePushConstant:
		return "push_constant"
	case SpaceTaskPayload:
		return "task_payload"
	default:
		return fmt.Sprintf("space(%d)", uint8(s))
	}
}

// StorageAccess is the access mode of storage buffers and storage images.
type StorageAccess uint8

const (
	StorageLoad  StorageAccess = 1 << 0
	StorageStore StorageAccess = 1 << 1

	StorageReadWrite = StorageLoad | StorageStore
)

// Constant is a module-scope constant.
type Constant struct {
	Name  string
	Type  TypeHandle
	Value ConstantValue
}

// ConstantValue is the value of a Constant.
type ConstantValue interface {
	constantValue()
}

// ScalarValue is a scalar constant stored as raw bits.
type ScalarValue struct {
	Bits uint64
	Kind ScalarKind
}

func (ScalarValue) constantValue() {}

// CompositeValue is a vector, matrix, array or struct constant.
type CompositeValue struct {
	Components []ConstantHandle
}

func (CompositeValue) constantValue() {}

// ZeroValue is the zero value of the constant's type.
type ZeroValue struct{}

func (ZeroValue) constantValue() {}

// GlobalVariable is a module-scope variable.
type GlobalVariable struct {
	Name    string
	Space   AddressSpace
	Access  StorageAccess // storage space only
	Binding *ResourceBinding
	Type    TypeHandle
	Init    *ConstantHandle
}

// ResourceBinding is a @group/@binding pair.
type ResourceBinding struct {
	Group   uint32
	Binding uint32
}

// Function is a function body with its arenas.
type Function struct {
	Name        string
	Arguments   []FunctionArgument
	Result      *FunctionResult
	LocalVars   []LocalVariable
	Expressions []Expression

	// ExpressionTypes is parallel to Expressions when filled by a frontend.
	// It may be nil; ResolveExpressionType recomputes missing entries.
	ExpressionTypes []TypeResolution

	Body Block
}

// FunctionArgument is a function parameter.
type FunctionArgument struct {
	Name    string
	Type    TypeHandle
	Binding Binding
}

// FunctionResult is a function return type.
type FunctionResult struct {
	Type    TypeHandle
	Binding Binding
}

// LocalVariable is a function-scope variable.
type LocalVariable struct {
	Name string
	Type TypeHandle
	Init *ExpressionHandle
}

// Binding attaches an argument, result or struct member to the pipeline.
type Binding interface {
	binding()
}

// BuiltinBinding binds to a built-in value.
type BuiltinBinding struct {
	Builtin BuiltinValue
}

func (BuiltinBinding) binding() {}

// BuiltinValue is a pipeline built-in.
type BuiltinValue uint8

const (
	BuiltinPosition BuiltinValue = iota
	BuiltinVertexIndex
	BuiltinInstanceIndex
	BuiltinFrontFacing
	BuiltinFragDepth
	BuiltinSampleIndex
	BuiltinSampleMask
	BuiltinLocalInvocationID
	BuiltinLocalInvocationIndex
	BuiltinGlobalInvocationID
	BuiltinWorkGroupID
	BuiltinNumWorkGroups
	BuiltinNumSubgroups
	BuiltinSubgroupID
	BuiltinSubgroupSize
	BuiltinSubgroupInvocationID
	BuiltinBarycentric
	BuiltinViewIndex
	BuiltinPrimitiveIndex
	BuiltinPointSize
	BuiltinMeshTaskSize
	BuiltinCullPrimitive
	BuiltinPointIndex
	BuiltinLineIndices
	BuiltinTriangleIndices
	BuiltinVertexCount
	BuiltinVertices
	BuiltinPrimitiveCount
	BuiltinPrimitives
	BuiltinClipDistance
)

var builtinNames = [...]string{
	BuiltinPosition:             "position",
	BuiltinVertexIndex:          "vertex_index",
	BuiltinInstanceIndex:        "instance_index",
	BuiltinFrontFacing:          "front_facing",
	BuiltinFragDepth:            "frag_depth",
	BuiltinSampleIndex:          "sample_index",
	BuiltinSampleMask:           "sample_mask",
	BuiltinLocalInvocationID:    "local_invocation_id",
	BuiltinLocalInvocationIndex: "local_invocation_index",
	BuiltinGlobalInvocationID:   "global_invocation_id",
	BuiltinWorkGroupID:          "workgroup_id",
	BuiltinNumWorkGroups:        "num_workgroups",
	BuiltinNumSubgroups:         "num_subgroups",
	BuiltinSubgroupID:           "subgroup_id",
	BuiltinSubgroupSize:         "subgroup_size",
	BuiltinSubgroupInvocationID: "subgroup_invocation_id",
	BuiltinBarycentric:          "barycentric",
	BuiltinViewIndex:            "view_index",
	BuiltinPrimitiveIndex:       "primitive_index",
	BuiltinPointSize:            "point_size",
	BuiltinMeshTaskSize:         "mesh_task_size",
	BuiltinCullPrimitive:        "cull_primitive",
	BuiltinPointIndex:           "point_index",
	BuiltinLineIndices:          "line_indices",
	BuiltinTriangleIndices:      "triangle_indices",
	BuiltinVertexCount:          "vertex_count",
	BuiltinVertices:             "vertices",
	BuiltinPrimitiveCount:       "primitive_count",
	BuiltinPrimitives:           "primitives",
	BuiltinClipDistance:         "clip_distance",
}

// String returns the WGSL built-in name.
func (b BuiltinValue) String() string {
	if int(b) < len(builtinNames) {
		return builtinNames[b]
	}
	return fmt.Sprintf("builtin(%d)", uint8(b))
}

// LocationBinding binds to a numbered interface slot.
type LocationBinding struct {
	Location      uint32
	Interpolation *Interpolation
}

func (LocationBinding) binding() {}

// Interpolation qualifies a location-bound fragment input.
type Interpolation struct {
	Kind     InterpolationKind
	Sampling InterpolationSampling
}

// InterpolationKind is the interpolation type.
type InterpolationKind uint8

const (
	InterpolationPerspective InterpolationKind = iota
	InterpolationLinear
	InterpolationFlat
)

// InterpolationSampling is the interpolation sampling point.
type InterpolationSampling uint8

const (
	SamplingCenter InterpolationSampling = iota
	SamplingCentroid
	SamplingSample
)

// TypeResolution is the type of an expression: either an arena handle or
// an inline shape with no arena entry.
type TypeResolution struct {
	Handle *TypeHandle
	Value  TypeInner
}

// Inner returns the shape of the resolution.
func (r TypeResolution) Inner(module *Module) TypeInner {
	if r.Handle != nil {
		if int(*r.Handle) < len(module.Types) {
			return module.Types[*r.Handle].Inner
		}
		return nil
	}
	return r.Value
}

// HandleResolution wraps a handle.
func HandleResolution(h TypeHandle) TypeResolution {
	return TypeResolution{Handle: &h}
}

// ValueResolution wraps an inline shape.
func ValueResolution(inner TypeInner) TypeResolution {
	return TypeResolution{Value: inner}
}

// EntryPointByName returns the entry point with the given name.
func (m *Module) EntryPointByName(name string) (*EntryPoint, bool) {
	for i := range m.EntryPoints {
		if m.EntryPoints[i].Name == name {
			return &m.EntryPoints[i], true
		}
	}
	return nil, false
}
