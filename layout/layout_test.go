package layout

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/kr/pretty"

	"github.com/gogpu/shaderkit/ir"
	"github.com/gogpu/shaderkit/reflection"
)

func globalRef(h ir.GlobalVariableHandle) ir.Expression {
	return ir.Expression{Kind: ir.ExprGlobalVariable{Variable: h}}
}

// renderModule declares a camera uniform shared by both stages, a texture and
// sampler used by the fragment stage, and a read-only storage buffer in group
// 2 used by the vertex stage.
func renderModule() *ir.Module {
	return &ir.Module{
		Types: []ir.Type{
			{Inner: ir.F32},
			{Inner: ir.VectorType{Size: ir.Vec4, Scalar: ir.F32}},
			{Inner: ir.VectorType{Size: ir.Vec3, Scalar: ir.F32}},
			{Inner: ir.VectorType{Size: ir.Vec2, Scalar: ir.F32}},
			{Name: "Camera", Inner: ir.StructType{Members: []ir.StructMember{{Name: "pos", Type: 1}}, Span: 16}},
			{Inner: ir.ImageType{Dim: ir.Dim2D, Arrayed: true, Class: ir.ImageClassSampled, SampledKind: ir.ScalarFloat}},
			{Inner: ir.SamplerType{Comparison: true}},
			{Inner: ir.ArrayType{Base: 1, Size: ir.DynamicSize(), Stride: 16}},
			{Inner: ir.U32},
		},
		GlobalVariables: []ir.GlobalVariable{
			{Name: "camera", Space: ir.SpaceUniform, Type: 4, Binding: &ir.ResourceBinding{Group: 0, Binding: 0}},
			{Name: "atlas", Space: ir.SpaceHandle, Type: 5, Binding: &ir.ResourceBinding{Group: 1, Binding: 0}},
			{Name: "shadow", Space: ir.SpaceHandle, Type: 6, Binding: &ir.ResourceBinding{Group: 1, Binding: 1}},
			{Name: "instances", Space: ir.SpaceStorage, Access: ir.StorageLoad, Type: 7, Binding: &ir.ResourceBinding{Group: 2, Binding: 3}},
		},
		EntryPoints: []ir.EntryPoint{
			{
				Name:  "vs_main",
				Stage: ir.StageVertex,
				Function: ir.Function{
					Arguments: []ir.FunctionArgument{
						{Name: "uv", Type: 3, Binding: ir.LocationBinding{Location: 2}},
						{Name: "position", Type: 2, Binding: ir.LocationBinding{Location: 0}},
						{Name: "layer", Type: 8, Binding: ir.LocationBinding{Location: 1}},
						{Name: "index", Type: 8, Binding: ir.BuiltinBinding{Builtin: ir.BuiltinVertexIndex}},
					},
					Result:      &ir.FunctionResult{Type: 1, Binding: ir.BuiltinBinding{Builtin: ir.BuiltinPosition}},
					Expressions: []ir.Expression{globalRef(3), globalRef(0)},
				},
			},
			{
				Name:  "fs_main",
				Stage: ir.StageFragment,
				Function: ir.Function{
					Result:      &ir.FunctionResult{Type: 1, Binding: ir.LocationBinding{Location: 0}},
					Expressions: []ir.Expression{globalRef(1), globalRef(2), globalRef(0)},
				},
			},
		},
	}
}

func TestBindGroupLayouts(t *testing.T) {
	module := renderModule()
	groups, err := BindGroupLayouts(module, reflection.Reflect(module))
	if err != nil {
		t.Fatalf("BindGroupLayouts: %v", err)
	}

	want := []BindGroup{
		{Group: 0, Entries: []gputypes.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		}}},
		{Group: 1, Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2DArray,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeComparison},
			},
		}},
		{Group: 2, Entries: []gputypes.BindGroupLayoutEntry{{
			Binding:    3,
			Visibility: gputypes.ShaderStageVertex,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
		}}},
	}
	if diff := pretty.Diff(want, groups); len(diff) > 0 {
		t.Errorf("layouts mismatch:\n%s", strings.Join(diff, "\n"))
	}
}

func TestBindGroupLayouts_ComputeStorage(t *testing.T) {
	module := &ir.Module{
		Types: []ir.Type{
			{Inner: ir.U32},
			{Inner: ir.ArrayType{Base: 0, Size: ir.DynamicSize(), Stride: 4}},
			{Inner: ir.AtomicType{Scalar: ir.U32}},
		},
		GlobalVariables: []ir.GlobalVariable{
			{Name: "out", Space: ir.SpaceStorage, Access: ir.StorageReadWrite, Type: 1, Binding: &ir.ResourceBinding{Binding: 0}},
			{Name: "count", Space: ir.SpaceStorage, Access: ir.StorageReadWrite, Type: 2, Binding: &ir.ResourceBinding{Binding: 1}},
		},
		EntryPoints: []ir.EntryPoint{{
			Name:      "main",
			Stage:     ir.StageCompute,
			Workgroup: [3]uint32{64, 1, 1},
			Function:  ir.Function{Expressions: []ir.Expression{globalRef(1), globalRef(0)}},
		}},
	}
	groups, err := BindGroupLayouts(module, reflection.Reflect(module))
	if err != nil {
		t.Fatalf("BindGroupLayouts: %v", err)
	}
	if len(groups) != 1 || len(groups[0].Entries) != 2 {
		t.Fatalf("groups = %# v", pretty.Formatter(groups))
	}
	for i, e := range groups[0].Entries {
		if e.Binding != uint32(i) {
			t.Errorf("entry %d has binding %d", i, e.Binding)
		}
		if e.Visibility != gputypes.ShaderStageCompute {
			t.Errorf("entry %d visibility = %v", i, e.Visibility)
		}
		if e.Buffer == nil || e.Buffer.Type != gputypes.BufferBindingTypeStorage {
			t.Errorf("entry %d buffer = %# v", i, pretty.Formatter(e.Buffer))
		}
	}
}

func TestBindGroupLayouts_Unsupported(t *testing.T) {
	tests := []struct {
		name  string
		inner ir.TypeInner
		space ir.AddressSpace
	}{
		{"storage texture", ir.ImageType{Dim: ir.Dim2D, Class: ir.ImageClassStorage, StorageFormat: ir.FormatRgba8Unorm, StorageAccess: ir.StorageStore}, ir.SpaceHandle},
		{"multisampled texture", ir.ImageType{Dim: ir.Dim2D, Class: ir.ImageClassSampled, Multisampled: true}, ir.SpaceHandle},
		{"acceleration structure", ir.AccelerationStructureType{}, ir.SpaceHandle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			module := &ir.Module{
				Types: []ir.Type{{Inner: tt.inner}},
				GlobalVariables: []ir.GlobalVariable{
					{Name: "res", Space: tt.space, Type: 0, Binding: &ir.ResourceBinding{}},
				},
				EntryPoints: []ir.EntryPoint{{
					Name:     "fs",
					Stage:    ir.StageFragment,
					Function: ir.Function{Expressions: []ir.Expression{globalRef(0)}},
				}},
			}
			_, err := BindGroupLayouts(module, reflection.Reflect(module))
			if !errors.Is(err, ErrUnsupported) {
				t.Errorf("err = %v, want ErrUnsupported", err)
			}
		})
	}
}

func TestBindGroupLayouts_ForeignData(t *testing.T) {
	data := reflection.Reflect(renderModule())
	_, err := BindGroupLayouts(&ir.Module{}, data)
	if err == nil || !strings.Contains(err.Error(), "not declared") {
		t.Errorf("err = %v, want a missing declaration error", err)
	}
}

func TestVertexBufferLayout(t *testing.T) {
	data := reflection.Reflect(renderModule())
	vs, ok := data.EntryPoint("vs_main")
	if !ok {
		t.Fatal("vs_main not reflected")
	}
	got, err := VertexBufferLayout(vs)
	if err != nil {
		t.Fatalf("VertexBufferLayout: %v", err)
	}
	want := gputypes.VertexBufferLayout{
		ArrayStride: 24,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatUint32, Offset: 12, ShaderLocation: 1},
			{Format: gputypes.VertexFormatFloat32x2, Offset: 16, ShaderLocation: 2},
		},
	}
	if diff := pretty.Diff(want, got); len(diff) > 0 {
		t.Errorf("layout mismatch:\n%s", strings.Join(diff, "\n"))
	}
}

func TestVertexAttributes_UnsupportedType(t *testing.T) {
	ep := &reflection.EntryPointInfo{
		VertexInputs: []reflection.VertexInputInfo{{Name: "m", Location: 0, TypeName: "mat4x4f"}},
	}
	if _, _, err := VertexAttributes(ep); !errors.Is(err, ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported", err)
	}
}

func TestVertexAttributes_Empty(t *testing.T) {
	attrs, stride, err := VertexAttributes(&reflection.EntryPointInfo{})
	if err != nil || len(attrs) != 0 || stride != 0 {
		t.Errorf("VertexAttributes(empty) = %v, %d, %v", attrs, stride, err)
	}
}
