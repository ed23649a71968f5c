package reflection

import (
	"testing"

	"github.com/gogpu/shaderkit/ir"
)

func vecSize(s ir.VectorSize) *ir.VectorSize { return &s }

// namerModule holds one type of every shape. Handles are referenced by
// index in TestTypeName.
func namerModule() *ir.Module {
	f16 := ir.ScalarType{Kind: ir.ScalarFloat, Width: 2}
	f64 := ir.ScalarType{Kind: ir.ScalarFloat, Width: 8}
	i64 := ir.ScalarType{Kind: ir.ScalarSint, Width: 8}
	return &ir.Module{Types: []ir.Type{
		{Inner: ir.F32},
		{Inner: ir.I32},
		{Inner: ir.U32},
		{Inner: ir.Bool},
		{Inner: f16},
		{Inner: f64},
		{Inner: ir.ScalarType{Kind: ir.ScalarAbstractInt, Width: 8}},
		{Inner: ir.ScalarType{Kind: ir.ScalarAbstractFloat, Width: 8}},
		{Inner: i64},
		{Inner: ir.VectorType{Size: ir.Vec4, Scalar: ir.F32}},
		{Inner: ir.VectorType{Size: ir.Vec3, Scalar: ir.U32}},
		{Inner: ir.VectorType{Size: ir.Vec2, Scalar: ir.Bool}},
		{Inner: ir.VectorType{Size: ir.Vec3, Scalar: f16}},
		{Inner: ir.VectorType{Size: ir.Vec2, Scalar: f64}},
		{Inner: ir.MatrixType{Columns: ir.Vec4, Rows: ir.Vec4, Scalar: ir.F32}},
		{Inner: ir.MatrixType{Columns: ir.Vec2, Rows: ir.Vec3, Scalar: f16}},
		{Inner: ir.AtomicType{Scalar: ir.U32}},
		{Inner: ir.ArrayType{Base: 0, Size: ir.FixedSize(8), Stride: 4}},
		{Inner: ir.ArrayType{Base: 9, Size: ir.DynamicSize(), Stride: 16}},
		{Inner: ir.ArrayType{Base: 2, Size: ir.ArraySize{Kind: ir.ArraySizePending}, Stride: 4}},
		{Name: "Light", Inner: ir.StructType{Members: []ir.StructMember{{Name: "color", Type: 9}}, Span: 16}},
		{Inner: ir.StructType{Members: []ir.StructMember{{Type: 0}}, Span: 4}},
		{Inner: ir.PointerType{Base: 20, Space: ir.SpaceStorage}},
		{Inner: ir.PointerType{Base: 0, Space: ir.SpacePushConstant}},
		{Inner: ir.ValuePointerType{Size: vecSize(ir.Vec3), Scalar: ir.F32, Space: ir.SpaceFunction}},
		{Inner: ir.ValuePointerType{Scalar: ir.I32, Space: ir.SpaceWorkGroup}},
		{Inner: ir.ImageType{Dim: ir.Dim2D, Class: ir.ImageClassSampled, SampledKind: ir.ScalarFloat}},
		{Inner: ir.ImageType{Dim: ir.Dim2D, Arrayed: true, Class: ir.ImageClassDepth}},
		{Inner: ir.ImageType{Dim: ir.Dim2D, Class: ir.ImageClassSampled, Multisampled: true}},
		{Inner: ir.ImageType{Dim: ir.DimCube, Arrayed: true, Class: ir.ImageClassSampled}},
		{Inner: ir.ImageType{Dim: ir.Dim3D, Class: ir.ImageClassStorage, StorageFormat: ir.FormatRgba8Unorm}},
		{Inner: ir.ImageType{Dim: ir.Dim1D, Class: ir.ImageClassSampled}},
		{Inner: ir.ImageType{Dim: ir.Dim2D, Class: ir.ImageClassDepth, Multisampled: true}},
		{Inner: ir.SamplerType{}},
		{Inner: ir.SamplerType{Comparison: true}},
		{Inner: ir.AccelerationStructureType{}},
		{Inner: ir.RayQueryType{}},
		{Inner: ir.BindingArrayType{Base: 26, Size: ir.FixedSize(4)}},
		{Inner: ir.BindingArrayType{Base: 33, Size: ir.DynamicSize()}},
		{Name: "Alias", Inner: ir.VectorType{Size: ir.Vec4, Scalar: ir.F32}},
		{Inner: ir.ArrayType{Base: 17, Size: ir.FixedSize(2), Stride: 32}},
		{Inner: ir.ArrayType{Base: 99, Size: ir.FixedSize(2), Stride: 4}},
		{Inner: ir.PointerType{Base: 41, Space: ir.SpacePrivate}},
	}}
}

func TestTypeName(t *testing.T) {
	module := namerModule()

	tests := []struct {
		h    ir.TypeHandle
		want string
	}{
		{0, "f32"},
		{1, "i32"},
		{2, "u32"},
		{3, "bool"},
		{4, "f16"},
		{5, "f64"},
		{6, "abstract_int"},
		{7, "abstract_float"},
		{8, "Scalar { kind: Sint, width: 8 }"},
		{9, "vec4f"},
		{10, "vec3u"},
		{11, "vec2b"},
		{12, "vec3"},
		{13, "vec2d"},
		{14, "mat4x4f"},
		{15, "mat2x3"},
		{16, "atomic<u32>"},
		{17, "array<f32, 8>"},
		{18, "array<vec4f>"},
		{19, "array<u32>"},
		{20, "Light"},
		{21, "struct"},
		{22, "ptr<storage, Light>"},
		{23, "ptr<push_constant, f32>"},
		{24, "ptr<function, vec3f>"},
		{25, "ptr<workgroup, i32>"},
		{26, "texture_2d"},
		{27, "texture_2d_array_depth"},
		{28, "texture_2d_multisampled"},
		{29, "texture_cube_array"},
		{30, "texture_3d_storage"},
		{31, "texture_1d"},
		{32, "texture_2d_depth"},
		{33, "sampler"},
		{34, "sampler_comparison"},
		{35, "acceleration_structure"},
		{36, "ray_query"},
		{37, "binding_array<texture_2d, 4>"},
		{38, "binding_array<sampler>"},
		{39, "Alias"},
		{40, "array<array<f32, 8>, 2>"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, ok := TypeName(module, tt.h)
			if !ok {
				t.Fatalf("TypeName(%d) failed", tt.h)
			}
			if got != tt.want {
				t.Errorf("TypeName(%d) = %q, want %q", tt.h, got, tt.want)
			}
		})
	}
}

func TestTypeName_Unresolvable(t *testing.T) {
	module := namerModule()
	for _, h := range []ir.TypeHandle{41, 42, 1000} {
		if got, ok := TypeName(module, h); ok {
			t.Errorf("TypeName(%d) = %q, want failure", h, got)
		}
	}
	if _, ok := TypeName(nil, 0); ok {
		t.Error("TypeName(nil module) succeeded")
	}
}

func TestTypeName_DepthBound(t *testing.T) {
	// A pointer to itself cannot come out of a validator, but must not
	// recurse forever.
	module := &ir.Module{Types: []ir.Type{
		{Inner: ir.PointerType{Base: 0, Space: ir.SpaceFunction}},
	}}
	if got, ok := TypeName(module, 0); ok {
		t.Errorf("TypeName(cycle) = %q, want failure", got)
	}

	// Deep but finite chains below the bound still resolve.
	deep := &ir.Module{Types: []ir.Type{{Inner: ir.F32}}}
	for i := 0; i < maxTypeDepth; i++ {
		deep.Types = append(deep.Types, ir.Type{Inner: ir.ArrayType{
			Base: ir.TypeHandle(i),
			Size: ir.FixedSize(1),
		}})
	}
	if _, ok := TypeName(deep, ir.TypeHandle(maxTypeDepth)); !ok {
		t.Errorf("TypeName failed on a chain of %d arrays", maxTypeDepth)
	}
}

func TestTypeName_Stable(t *testing.T) {
	module := namerModule()
	for h := range module.Types {
		first, ok1 := TypeName(module, ir.TypeHandle(h))
		second, ok2 := TypeName(module, ir.TypeHandle(h))
		if first != second || ok1 != ok2 {
			t.Errorf("TypeName(%d) changed between calls: %q/%v then %q/%v", h, first, ok1, second, ok2)
		}
	}
}
