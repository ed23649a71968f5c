package wgsl

import (
	"math"
	"strings"
	"testing"

	"github.com/kr/pretty"

	"github.com/gogpu/shaderkit/ir"
)

func exprPtr(h ir.ExpressionHandle) *ir.ExpressionHandle { return &h }

func TestWrite_VertexPassthrough(t *testing.T) {
	module := &ir.Module{
		Types: []ir.Type{
			{Inner: ir.F32},
			{Inner: ir.VectorType{Size: ir.Vec4, Scalar: ir.F32}},
		},
		EntryPoints: []ir.EntryPoint{{
			Name:  "main",
			Stage: ir.StageVertex,
			Function: ir.Function{
				Arguments: []ir.FunctionArgument{
					{Name: "pos", Type: 1, Binding: ir.LocationBinding{Location: 0}},
				},
				Result:      &ir.FunctionResult{Type: 1, Binding: ir.BuiltinBinding{Builtin: ir.BuiltinPosition}},
				Expressions: []ir.Expression{{Kind: ir.ExprFunctionArgument{Index: 0}}},
				Body:        ir.Block{{Kind: ir.StmtReturn{Value: exprPtr(0)}}},
			},
		}},
	}

	got, err := Write(module, DefaultWriterOptions())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := `@vertex
fn main(@location(0) pos: vec4<f32>) -> @builtin(position) vec4<f32> {
    return pos;
}

`
	if got != want {
		t.Errorf("output mismatch:\n%s", strings.Join(pretty.Diff(want, got), "\n"))
	}
}

func TestWrite_ComputeAtomics(t *testing.T) {
	module := &ir.Module{
		Types: []ir.Type{
			{Inner: ir.U32},
			{Inner: ir.AtomicType{Scalar: ir.U32}},
			{Inner: ir.ArrayType{Base: 0, Size: ir.DynamicSize(), Stride: 4}},
			{Name: "Data", Inner: ir.StructType{
				Members: []ir.StructMember{
					{Name: "count", Type: 1, Offset: 0},
					{Name: "values", Type: 2, Offset: 4},
				},
				Span: 8,
			}},
			{Inner: ir.VectorType{Size: ir.Vec3, Scalar: ir.U32}},
		},
		GlobalVariables: []ir.GlobalVariable{{
			Name:    "data",
			Space:   ir.SpaceStorage,
			Access:  ir.StorageReadWrite,
			Binding: &ir.ResourceBinding{Group: 0, Binding: 0},
			Type:    3,
		}},
		EntryPoints: []ir.EntryPoint{{
			Name:      "main",
			Stage:     ir.StageCompute,
			Workgroup: [3]uint32{64, 1, 1},
			Function: ir.Function{
				Arguments: []ir.FunctionArgument{
					{Name: "gid", Type: 4, Binding: ir.BuiltinBinding{Builtin: ir.BuiltinGlobalInvocationID}},
				},
				Expressions: []ir.Expression{
					{Kind: ir.ExprGlobalVariable{Variable: 0}},
					{Kind: ir.ExprAccessIndex{Base: 0, Index: 0}},
					{Kind: ir.Literal{Value: ir.LiteralU32(1)}},
					{Kind: ir.ExprAtomicResult{Type: 0}},
					{Kind: ir.ExprAccessIndex{Base: 0, Index: 1}},
					{Kind: ir.ExprFunctionArgument{Index: 0}},
					{Kind: ir.ExprAccessIndex{Base: 5, Index: 0}},
					{Kind: ir.ExprAccess{Base: 4, Index: 6}},
				},
				Body: ir.Block{
					{Kind: ir.StmtEmit{Range: ir.Range{Start: 6, End: 7}}},
					{Kind: ir.StmtAtomic{Pointer: 1, Fun: ir.AtomicAdd{}, Value: 2, Result: exprPtr(3)}},
					{Kind: ir.StmtStore{Pointer: 7, Value: 3}},
					{Kind: ir.StmtReturn{}},
				},
			},
		}},
	}

	got, err := Write(module, DefaultWriterOptions())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := `struct Data {
    count: atomic<u32>,
    values: array<u32>,
}

@group(0) @binding(0) var<storage, read_write> data: Data;

@compute @workgroup_size(64, 1, 1)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let _e3 = atomicAdd(&data.count, 1u);
    data.values[gid[0]] = _e3;
    return;
}

`
	if got != want {
		t.Errorf("output mismatch:\n%s", strings.Join(pretty.Diff(want, got), "\n"))
	}
}

// computeModule wraps a body in a compute entry point named main.
func computeModule(types []ir.Type, globals []ir.GlobalVariable, locals []ir.LocalVariable, exprs []ir.ExpressionKind, body ir.Block) *ir.Module {
	expressions := make([]ir.Expression, len(exprs))
	for i, k := range exprs {
		expressions[i] = ir.Expression{Kind: k}
	}
	return &ir.Module{
		Types:           types,
		GlobalVariables: globals,
		EntryPoints: []ir.EntryPoint{{
			Name:      "main",
			Stage:     ir.StageCompute,
			Workgroup: [3]uint32{1, 1, 1},
			Function: ir.Function{
				LocalVars:   locals,
				Expressions: expressions,
				Body:        body,
			},
		}},
	}
}

func TestWrite_Statements(t *testing.T) {
	scalars := []ir.Type{{Inner: ir.Bool}, {Inner: ir.I32}, {Inner: ir.F32}}

	tests := []struct {
		name    string
		globals []ir.GlobalVariable
		locals  []ir.LocalVariable
		exprs   []ir.ExpressionKind
		body    ir.Block
		want    []string
	}{
		{
			name:  "if else",
			exprs: []ir.ExpressionKind{ir.Literal{Value: ir.LiteralBool(true)}},
			body: ir.Block{{Kind: ir.StmtIf{
				Condition: 0,
				Accept:    ir.Block{{Kind: ir.StmtKill{}}},
				Reject:    ir.Block{{Kind: ir.StmtReturn{}}},
			}}},
			want: []string{"    if true {\n        discard;\n    } else {\n        return;\n    }\n"},
		},
		{
			name:  "if without else",
			exprs: []ir.ExpressionKind{ir.Literal{Value: ir.LiteralBool(false)}},
			body:  ir.Block{{Kind: ir.StmtIf{Condition: 0, Accept: ir.Block{{Kind: ir.StmtReturn{}}}}}},
			want:  []string{"    if false {\n        return;\n    }\n"},
		},
		{
			name:  "loop with break if",
			exprs: []ir.ExpressionKind{ir.Literal{Value: ir.LiteralBool(false)}},
			body:  ir.Block{{Kind: ir.StmtLoop{BreakIf: exprPtr(0)}}},
			want:  []string{"    loop {\n        continuing {\n            break if false;\n        }\n    }\n"},
		},
		{
			name:  "loop without continuing",
			exprs: nil,
			body:  ir.Block{{Kind: ir.StmtLoop{Body: ir.Block{{Kind: ir.StmtBreak{}}}}}},
			want:  []string{"    loop {\n        break;\n    }\n"},
		},
		{
			name:  "switch merges empty fallthrough cases",
			exprs: []ir.ExpressionKind{ir.Literal{Value: ir.LiteralI32(3)}},
			body: ir.Block{{Kind: ir.StmtSwitch{
				Selector: 0,
				Cases: []ir.SwitchCase{
					{Value: ir.SwitchValueI32(1), FallThrough: true},
					{Value: ir.SwitchValueI32(2), Body: ir.Block{{Kind: ir.StmtBreak{}}}},
					{Value: ir.SwitchValueDefault{}},
				},
			}}},
			want: []string{
				"    switch 3i {\n",
				"        case 1i, 2i: {\n            break;\n        }\n",
				"        default: {\n        }\n",
			},
		},
		{
			name:  "barriers",
			exprs: nil,
			body:  ir.Block{{Kind: ir.StmtBarrier{Flags: ir.BarrierStorage | ir.BarrierWorkGroup}}},
			want:  []string{"    storageBarrier();\n    workgroupBarrier();\n"},
		},
		{
			name: "constant initializer stays on the declaration",
			locals: []ir.LocalVariable{
				{Name: "y", Type: 2, Init: exprPtr(0)},
			},
			exprs: []ir.ExpressionKind{ir.Literal{Value: ir.LiteralF32(1.5)}},
			want:  []string{"    var y: f32 = 1.5f;\n"},
		},
		{
			name: "runtime initializer is assigned where emitted",
			globals: []ir.GlobalVariable{
				{Name: "g", Space: ir.SpacePrivate, Type: 2},
			},
			locals: []ir.LocalVariable{
				{Name: "y", Type: 2, Init: exprPtr(1)},
			},
			exprs: []ir.ExpressionKind{
				ir.ExprGlobalVariable{Variable: 0},
				ir.ExprLoad{Pointer: 0},
			},
			body: ir.Block{{Kind: ir.StmtEmit{Range: ir.Range{Start: 1, End: 2}}}},
			want: []string{
				"var<private> g: f32;\n",
				"    var y: f32;\n    let _e1 = g;\n    y = _e1;\n",
			},
		},
		{
			name: "shared subexpression is baked once",
			exprs: []ir.ExpressionKind{
				ir.Literal{Value: ir.LiteralI32(2)},
				ir.ExprBinary{Op: ir.BinaryMultiply, Left: 0, Right: 0},
				ir.ExprBinary{Op: ir.BinaryAdd, Left: 1, Right: 1},
				ir.ExprLocalVariable{Variable: 0},
			},
			locals: []ir.LocalVariable{{Name: "acc", Type: 1}},
			body: ir.Block{
				{Kind: ir.StmtEmit{Range: ir.Range{Start: 1, End: 3}}},
				{Kind: ir.StmtStore{Pointer: 3, Value: 2}},
			},
			want: []string{
				"    let _e1 = (2i * 2i);\n",
				"    acc = (_e1 + _e1);\n",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			module := computeModule(scalars, tt.globals, tt.locals, tt.exprs, tt.body)
			got, err := Write(module, DefaultWriterOptions())
			if err != nil {
				t.Fatalf("Write: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("output does not contain %q:\n%s", want, got)
				}
			}
		})
	}
}

func TestWrite_Errors(t *testing.T) {
	storage := ir.ImageType{Dim: ir.Dim2D, Class: ir.ImageClassStorage}

	tests := []struct {
		name   string
		module *ir.Module
		want   string
	}{
		{
			name:   "nil module",
			module: nil,
			want:   "module is nil",
		},
		{
			name: "storage texture without format",
			module: &ir.Module{
				Types: []ir.Type{{Inner: storage}},
				GlobalVariables: []ir.GlobalVariable{
					{Name: "img", Space: ir.SpaceHandle, Binding: &ir.ResourceBinding{}, Type: 0},
				},
			},
			want: "storage texture without a texel format",
		},
		{
			name: "fallthrough after a body",
			module: computeModule(
				[]ir.Type{{Inner: ir.I32}}, nil, nil,
				[]ir.ExpressionKind{ir.Literal{Value: ir.LiteralI32(0)}},
				ir.Block{{Kind: ir.StmtSwitch{Selector: 0, Cases: []ir.SwitchCase{
					{Value: ir.SwitchValueI32(0), FallThrough: true, Body: ir.Block{{Kind: ir.StmtKill{}}}},
					{Value: ir.SwitchValueDefault{}},
				}}}},
			),
			want: "falls through after a body",
		},
		{
			name: "function address space at module scope",
			module: &ir.Module{
				Types:           []ir.Type{{Inner: ir.F32}},
				GlobalVariables: []ir.GlobalVariable{{Name: "x", Space: ir.SpaceFunction, Type: 0}},
			},
			want: "function address space at module scope",
		},
		{
			name: "task stage",
			module: &ir.Module{
				EntryPoints: []ir.EntryPoint{{Name: "t", Stage: ir.StageTask, Workgroup: [3]uint32{1, 1, 1}}},
			},
			want: "stage task has no WGSL form",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Write(tt.module, DefaultWriterOptions())
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestWrite_Naming(t *testing.T) {
	module := &ir.Module{
		Types: []ir.Type{
			{Inner: ir.F32},
			{Inner: ir.StructType{
				Members: []ir.StructMember{{Type: 0}, {Name: "loop", Type: 0, Offset: 4}},
				Span:    8,
			}},
		},
		Constants: []ir.Constant{
			{Type: 0, Value: ir.ScalarValue{Kind: ir.ScalarFloat, Bits: uint64(math.Float32bits(2))}},
		},
		GlobalVariables: []ir.GlobalVariable{
			{Name: "var", Space: ir.SpaceUniform, Binding: &ir.ResourceBinding{Group: 1, Binding: 2}, Type: 1},
			{Space: ir.SpaceStorage, Binding: &ir.ResourceBinding{Group: 0, Binding: 3}, Type: 1},
			{Name: "out.var.SV_Target", Space: ir.SpacePrivate, Type: 0},
		},
	}

	got, err := Write(module, DefaultWriterOptions())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	for _, want := range []string{
		"struct type_1 {\n    member_0: f32,\n    loop_: f32,\n}\n",
		"const const_0: f32 = 2.0f;\n",
		"@group(1) @binding(2) var<uniform> var_: type_1;\n",
		"@group(0) @binding(3) var<storage, read> binding_0_3: type_1;\n",
		"var<private> out_var_SV_Target: f32;\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output does not contain %q:\n%s", want, got)
		}
	}
}

func TestWrite_StructPadding(t *testing.T) {
	module := &ir.Module{
		Types: []ir.Type{
			{Inner: ir.F32},
			{Name: "Padded", Inner: ir.StructType{
				Members: []ir.StructMember{
					{Name: "a", Type: 0, Offset: 0},
					{Name: "b", Type: 0, Offset: 16},
				},
				Span: 32,
			}},
		},
	}
	got, err := Write(module, DefaultWriterOptions())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "struct Padded {\n    @size(16) a: f32,\n    @size(16) b: f32,\n}\n"
	if !strings.Contains(got, want) {
		t.Errorf("output does not contain %q:\n%s", want, got)
	}
}

func TestWrite_Types(t *testing.T) {
	three := ir.Vec3
	tests := []struct {
		inner ir.TypeInner
		want  string
	}{
		{ir.VectorType{Size: ir.Vec2, Scalar: ir.I32}, "vec2<i32>"},
		{ir.MatrixType{Columns: ir.Vec4, Rows: ir.Vec3, Scalar: ir.F32}, "mat4x3<f32>"},
		{ir.ScalarType{Kind: ir.ScalarFloat, Width: 2}, "f16"},
		{ir.ArrayType{Base: 0, Size: ir.FixedSize(4), Stride: 4}, "array<f32, 4>"},
		{ir.BindingArrayType{Base: 0, Size: ir.DynamicSize()}, "binding_array<f32>"},
		{ir.PointerType{Base: 0, Space: ir.SpaceFunction}, "ptr<function, f32>"},
		{ir.PointerType{Base: 0, Space: ir.SpaceStorage}, "ptr<storage, f32, read_write>"},
		{ir.ValuePointerType{Size: &three, Scalar: ir.U32, Space: ir.SpacePrivate}, "ptr<private, vec3<u32>>"},
		{ir.SamplerType{Comparison: true}, "sampler_comparison"},
		{ir.ImageType{Dim: ir.Dim2D, Class: ir.ImageClassSampled, SampledKind: ir.ScalarFloat}, "texture_2d<f32>"},
		{ir.ImageType{Dim: ir.DimCube, Arrayed: true, Class: ir.ImageClassSampled, SampledKind: ir.ScalarUint}, "texture_cube_array<u32>"},
		{ir.ImageType{Dim: ir.Dim2D, Class: ir.ImageClassSampled, Multisampled: true, SampledKind: ir.ScalarSint}, "texture_multisampled_2d<i32>"},
		{ir.ImageType{Dim: ir.Dim2D, Arrayed: true, Class: ir.ImageClassDepth}, "texture_depth_2d_array"},
		{ir.ImageType{Dim: ir.Dim2D, Class: ir.ImageClassDepth, Multisampled: true}, "texture_depth_multisampled_2d"},
		{ir.ImageType{Dim: ir.Dim3D, Class: ir.ImageClassStorage, StorageFormat: ir.FormatR32Float, StorageAccess: ir.StorageReadWrite}, "texture_storage_3d<r32float, read_write>"},
		{ir.ImageType{Dim: ir.Dim1D, Class: ir.ImageClassStorage, StorageFormat: ir.FormatRgba8Unorm, StorageAccess: ir.StorageStore}, "texture_storage_1d<rgba8unorm, write>"},
		{ir.AtomicType{Scalar: ir.I32}, "atomic<i32>"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			w := newWriter(&ir.Module{Types: []ir.Type{{Inner: ir.F32}, {Inner: tt.inner}}}, DefaultWriterOptions())
			got, err := w.typeName(1)
			if err != nil {
				t.Fatalf("typeName: %v", err)
			}
			if got != tt.want {
				t.Errorf("typeName = %q, want %q", got, tt.want)
			}
		})
	}
}
