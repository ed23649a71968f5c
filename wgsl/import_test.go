package wgsl

import (
	"math"
	"strings"
	"testing"

	"github.com/gogpu/naga"
	nir "github.com/gogpu/naga/ir"
	"github.com/kr/pretty"
	"golang.org/x/tools/txtar"

	"github.com/gogpu/shaderkit/ir"
)

func loadShaders(t *testing.T) map[string]string {
	t.Helper()
	return loadArchive(t, "testdata/roundtrip.txtar")
}

func loadArchive(t *testing.T, path string) map[string]string {
	t.Helper()
	archive, err := txtar.ParseFile(path)
	if err != nil {
		t.Fatalf("reading fixtures: %v", err)
	}
	shaders := make(map[string]string, len(archive.Files))
	for _, f := range archive.Files {
		shaders[f.Name] = string(f.Data)
	}
	return shaders
}

func importSource(t *testing.T, source string) *ir.Module {
	t.Helper()
	ast, err := naga.Parse(source)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	lowered, err := naga.LowerWithSource(ast, source)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	module, err := Import(lowered)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	return module
}

func TestImport_RoundTrip(t *testing.T) {
	for name, source := range loadShaders(t) {
		t.Run(name, func(t *testing.T) {
			module := importSource(t, source)
			out, err := Write(module, DefaultWriterOptions())
			if err != nil {
				t.Fatalf("Write: %v", err)
			}
			ast, err := naga.Parse(out)
			if err != nil {
				t.Fatalf("written WGSL does not parse: %v\n%s", err, out)
			}
			if _, err := naga.LowerWithSource(ast, out); err != nil {
				t.Fatalf("written WGSL does not lower: %v\n%s", err, out)
			}
		})
	}
}

func TestImport_EntryPoints(t *testing.T) {
	module := importSource(t, loadShaders(t)["triangle.wgsl"])

	tests := []struct {
		name  string
		stage ir.ShaderStage
	}{
		{"vs_main", ir.StageVertex},
		{"fs_main", ir.StageFragment},
	}
	for _, tt := range tests {
		ep, ok := module.EntryPointByName(tt.name)
		if !ok {
			t.Errorf("entry point %q not imported", tt.name)
			continue
		}
		if ep.Stage != tt.stage {
			t.Errorf("%s: stage = %s, want %s", tt.name, ep.Stage, tt.stage)
		}
	}
	if len(module.Functions) != 0 {
		t.Errorf("entry point bodies left in Functions: %d", len(module.Functions))
	}
}

func TestImport_HelperFunctions(t *testing.T) {
	module := importSource(t, loadShaders(t)["loop.wgsl"])
	if len(module.Functions) != 1 || module.Functions[0].Name != "triangle" {
		t.Fatalf("helpers = %d, want the triangle function", len(module.Functions))
	}
	ep, ok := module.EntryPointByName("main")
	if !ok {
		t.Fatal("entry point main not imported")
	}
	if ep.Workgroup != [3]uint32{64, 1, 1} {
		t.Errorf("workgroup = %v, want [64 1 1]", ep.Workgroup)
	}
}

func TestImport_StorageAccess(t *testing.T) {
	module := importSource(t, loadShaders(t)["storage.wgsl"])

	want := map[string]ir.StorageAccess{
		"input":  ir.StorageLoad,
		"output": ir.StorageReadWrite,
	}
	for _, gv := range module.GlobalVariables {
		access, ok := want[gv.Name]
		if !ok {
			continue
		}
		if gv.Access != access {
			t.Errorf("%s: access = %d, want %d", gv.Name, gv.Access, access)
		}
		delete(want, gv.Name)
	}
	for name := range want {
		t.Errorf("global %q not imported", name)
	}
}

func globalByName(t *testing.T, m *ir.Module, name string) ir.GlobalVariable {
	t.Helper()
	for _, gv := range m.GlobalVariables {
		if gv.Name == name {
			return gv
		}
	}
	t.Fatalf("global %q not imported", name)
	return ir.GlobalVariable{}
}

func TestImport_ResourceTypes(t *testing.T) {
	module := importSource(t, loadArchive(t, "testdata/import.txtar")["resources.wgsl"])

	textures := module.Types[globalByName(t, module, "textures").Type].Inner
	arr, ok := textures.(ir.BindingArrayType)
	if !ok {
		t.Fatalf("textures: %T, want ir.BindingArrayType", textures)
	}
	if arr.Size != ir.FixedSize(4) {
		t.Errorf("textures: size = %+v, want 4", arr.Size)
	}
	if img, ok := module.Types[arr.Base].Inner.(ir.ImageType); !ok || img.Dim != ir.Dim2D || img.SampledKind != ir.ScalarFloat {
		t.Errorf("textures: base = %+v", module.Types[arr.Base].Inner)
	}

	samplers, ok := module.Types[globalByName(t, module, "samplers").Type].Inner.(ir.BindingArrayType)
	if !ok || samplers.Size != ir.DynamicSize() {
		t.Errorf("samplers = %+v, want an unbounded binding array", samplers)
	}

	counts, ok := module.Types[globalByName(t, module, "counts").Type].Inner.(ir.ImageType)
	if !ok || counts.SampledKind != ir.ScalarUint {
		t.Errorf("counts = %+v, want a u32 texture", counts)
	}

	heights, ok := module.Types[globalByName(t, module, "heights").Type].Inner.(ir.ImageType)
	if !ok || heights.Class != ir.ImageClassStorage {
		t.Fatalf("heights = %+v, want a storage texture", heights)
	}
	if heights.StorageFormat != ir.FormatR32Float || heights.StorageAccess != ir.StorageReadWrite {
		t.Errorf("heights: format %s access %d, want r32float read_write", heights.StorageFormat, heights.StorageAccess)
	}

	if got := globalByName(t, module, "weights").Access; got != ir.StorageLoad {
		t.Errorf("weights: access = %d, want read", got)
	}
}

func TestImport_RayTracingTypes(t *testing.T) {
	module := importSource(t, loadArchive(t, "testdata/import.txtar")["ray.wgsl"])

	if inner := module.Types[globalByName(t, module, "scene").Type].Inner; inner != ir.TypeInner(ir.AccelerationStructureType{}) {
		t.Errorf("scene: %T, want ir.AccelerationStructureType", inner)
	}
	ep, ok := module.EntryPointByName("main")
	if !ok {
		t.Fatal("entry point main not imported")
	}
	if len(ep.Function.LocalVars) != 1 {
		t.Fatalf("locals = %d, want 1", len(ep.Function.LocalVars))
	}
	if inner := module.Types[ep.Function.LocalVars[0].Type].Inner; inner != ir.TypeInner(ir.RayQueryType{}) {
		t.Errorf("rq: %T, want ir.RayQueryType", inner)
	}
}

func TestImport_TaskAndMeshStages(t *testing.T) {
	module := importSource(t, loadArchive(t, "testdata/import.txtar")["mesh.wgsl"])

	tests := []struct {
		name      string
		stage     ir.ShaderStage
		workgroup [3]uint32
	}{
		{"ts_main", ir.StageTask, [3]uint32{4, 2, 1}},
		{"ms_main", ir.StageMesh, [3]uint32{32, 1, 1}},
	}
	for _, tt := range tests {
		ep, ok := module.EntryPointByName(tt.name)
		if !ok {
			t.Errorf("entry point %q not imported", tt.name)
			continue
		}
		if ep.Stage != tt.stage || ep.Workgroup != tt.workgroup {
			t.Errorf("%s: %s %v, want %s %v", tt.name, ep.Stage, ep.Workgroup, tt.stage, tt.workgroup)
		}
	}

	ts, _ := module.EntryPointByName("ts_main")
	if ts.Function.Result == nil || ts.Function.Result.Binding != ir.Binding(ir.BuiltinBinding{Builtin: ir.BuiltinMeshTaskSize}) {
		t.Errorf("ts_main result = %+v, want @builtin(mesh_task_size)", ts.Function.Result)
	}
	if got := globalByName(t, module, "taskPayload").Space; got != ir.SpaceTaskPayload {
		t.Errorf("taskPayload: space = %s, want task_payload", got)
	}
	if errs, err := ir.Validate(module); err != nil || len(errs) > 0 {
		t.Errorf("imported module does not validate: %v %v", err, errs)
	}
}

func TestImport_FoldedConstants(t *testing.T) {
	module := importSource(t, loadArchive(t, "testdata/import.txtar")["constants.wgsl"])
	for i, c := range module.Constants {
		if c.Value == nil {
			t.Errorf("constant %d (%s) has no value", i, c.Name)
		}
	}
	if errs, err := ir.Validate(module); err != nil || len(errs) > 0 {
		t.Errorf("imported module does not validate: %v %v", err, errs)
	}
}

func TestImport_ConstantInitExpressions(t *testing.T) {
	f32 := nir.TypeHandle(0)
	src := &nir.Module{
		Types: []nir.Type{
			{Name: "f32", Inner: nir.ScalarType{Kind: nir.ScalarFloat, Width: 4}},
			{Inner: nir.VectorType{Size: nir.Vec2, Scalar: nir.ScalarType{Kind: nir.ScalarFloat, Width: 4}}},
		},
		Constants: []nir.Constant{
			{Name: "ONE", Type: f32, Value: nir.ScalarValue{Kind: nir.ScalarFloat, Bits: uint64(math.Float32bits(1))}},
			{Name: "PAIR", Type: 1, Init: 2},
			{Name: "ALIAS", Type: f32, Init: 0},
			{Name: "NONE", Type: 1, Value: nir.ZeroConstantValue{}},
		},
		GlobalExpressions: []nir.Expression{
			{Kind: nir.ExprConstant{Constant: 0}},
			{Kind: nir.Literal{Value: nir.LiteralF32(3)}},
			{Kind: nir.ExprCompose{Type: 1, Components: []nir.ExpressionHandle{0, 1}}},
		},
	}
	module, err := Import(src)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	want := []ir.Constant{
		{Name: "ONE", Type: 0, Value: ir.ScalarValue{Kind: ir.ScalarFloat, Bits: uint64(math.Float32bits(1))}},
		{Name: "PAIR", Type: 1, Value: ir.CompositeValue{Components: []ir.ConstantHandle{0, 4}}},
		{Name: "ALIAS", Type: 0, Value: ir.ScalarValue{Kind: ir.ScalarFloat, Bits: uint64(math.Float32bits(1))}},
		{Name: "NONE", Type: 1, Value: ir.ZeroValue{}},
		{Type: 0, Value: ir.ScalarValue{Kind: ir.ScalarFloat, Bits: uint64(math.Float32bits(3))}},
	}
	if diff := pretty.Diff(want, module.Constants); len(diff) > 0 {
		t.Errorf("constants:\n%s", strings.Join(diff, "\n"))
	}
	if len(module.Types) != 2 {
		t.Errorf("types = %d, want the existing f32 reused", len(module.Types))
	}
}

func TestImport_ConstantForwardReference(t *testing.T) {
	src := &nir.Module{
		Types: []nir.Type{{Name: "f32", Inner: nir.ScalarType{Kind: nir.ScalarFloat, Width: 4}}},
		Constants: []nir.Constant{
			{Name: "A", Type: 0, Init: 0},
			{Name: "B", Type: 0, Value: nir.ScalarValue{Kind: nir.ScalarFloat}},
		},
		GlobalExpressions: []nir.Expression{{Kind: nir.ExprConstant{Constant: 1}}},
	}
	if _, err := Import(src); err == nil || !strings.Contains(err.Error(), "not declared before it") {
		t.Fatalf("Import error = %v, want a forward reference error", err)
	}
}

// TestImport_InlineEntryPoints checks that entry point bodies come from the
// entry points themselves and that calls keep their function handles.
func TestImport_InlineEntryPoints(t *testing.T) {
	call := nir.ExpressionHandle(0)
	src := &nir.Module{
		Types: []nir.Type{{Name: "u32", Inner: nir.ScalarType{Kind: nir.ScalarUint, Width: 4}}},
		Functions: []nir.Function{
			{Name: "first", Result: &nir.FunctionResult{Type: 0}},
			{Name: "second"},
		},
		EntryPoints: []nir.EntryPoint{{
			Name:      "main",
			Stage:     nir.StageCompute,
			Workgroup: [3]uint32{4, 1, 1},
			Function: nir.Function{
				Name:        "main",
				Expressions: []nir.Expression{{Kind: nir.ExprCallResult{Function: 0}}},
				Body: []nir.Statement{
					{Kind: nir.StmtCall{Function: 0, Result: &call}},
					{Kind: nir.StmtCall{Function: 1}},
				},
			},
		}},
	}
	module, err := Import(src)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(module.Functions) != 2 || module.Functions[0].Name != "first" || module.Functions[1].Name != "second" {
		t.Fatalf("helpers = %+v", module.Functions)
	}
	ep, ok := module.EntryPointByName("main")
	if !ok {
		t.Fatal("entry point main not imported")
	}
	wantBody := ir.Block{
		{Kind: ir.StmtCall{Function: 0, Arguments: []ir.ExpressionHandle{}, Result: exprPtr(0)}},
		{Kind: ir.StmtCall{Function: 1, Arguments: []ir.ExpressionHandle{}}},
	}
	if diff := pretty.Diff(wantBody, ep.Function.Body); len(diff) > 0 {
		t.Errorf("body:\n%s", strings.Join(diff, "\n"))
	}
	if ep.Workgroup != [3]uint32{4, 1, 1} {
		t.Errorf("workgroup = %v", ep.Workgroup)
	}
}

func TestImport_CallOutOfRange(t *testing.T) {
	src := &nir.Module{
		EntryPoints: []nir.EntryPoint{{
			Name:      "main",
			Stage:     nir.StageCompute,
			Workgroup: [3]uint32{1, 1, 1},
			Function: nir.Function{
				Name: "main",
				Body: []nir.Statement{{Kind: nir.StmtCall{Function: 2}}},
			},
		}},
	}
	_, err := Import(src)
	if err == nil || !strings.Contains(err.Error(), "call to function 2, which does not exist") {
		t.Fatalf("Import error = %v", err)
	}
}

func TestImport_NilModule(t *testing.T) {
	if _, err := Import(nil); err == nil {
		t.Fatal("expected an error for a nil module")
	}
}
