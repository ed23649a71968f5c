package shaderkit

import (
	"encoding/binary"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/gogpu/shaderkit/spirv"
)

const computeShader = `
@group(0) @binding(0) var<storage, read_write> data: array<f32>;

@compute @workgroup_size(64)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
    data[id.x] = data[id.x] * 2.0;
}
`

const renderShader = `
struct VertexOutput {
    @builtin(position) clip: vec4<f32>,
    @location(0) color: vec4<f32>,
}

@vertex
fn vs_main(@location(0) position: vec3<f32>, @location(1) color: vec4<f32>) -> VertexOutput {
    var out: VertexOutput;
    out.clip = vec4<f32>(position, 1.0);
    out.color = color;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return in.color;
}
`

const emptyCompute = `
@compute @workgroup_size(1)
fn main() {
}
`

func wantKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("got nil error, want %s", kind)
	}
	got, ok := KindOf(err)
	if !ok {
		t.Fatalf("error %T (%v) is not a shaderkit error", err, err)
	}
	if got != kind {
		t.Fatalf("kind = %s, want %s (%v)", got, kind, err)
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   bool
	}{
		{"compute", computeShader, true},
		{"render", renderShader, true},
		{"empty entry point", emptyCompute, true},
		{"syntax error", "fn main( {", false},
		{"unknown identifier", "@fragment fn main() -> @location(0) vec4<f32> { return missing; }", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValid(tt.source); got != tt.want {
				t.Errorf("IsValid = %v, want %v (Validate: %v)", got, tt.want, Validate(tt.source))
			}
		})
	}
}

func TestValidate_ParseError(t *testing.T) {
	wantKind(t, Validate("fn main( {"), ParseError)
}

func TestCompileSPIRV(t *testing.T) {
	out, err := CompileSPIRV(computeShader, "")
	if err != nil {
		t.Fatalf("CompileSPIRV: %v", err)
	}
	if len(out) < 20 || len(out)%4 != 0 {
		t.Fatalf("binary is %d bytes", len(out))
	}
	if magic := binary.LittleEndian.Uint32(out); magic != spirv.MagicNumber {
		t.Errorf("magic = 0x%08x, want 0x%08x", magic, spirv.MagicNumber)
	}
}

func TestCompileSPIRV_EntryPointNotFound(t *testing.T) {
	_, err := CompileSPIRV(computeShader, "main_unused")
	wantKind(t, err, EntryPointNotFound)
	if !errors.Is(err, ErrEntryPointNotFound) {
		t.Error("errors.Is(err, ErrEntryPointNotFound) = false")
	}
	if got, want := err.Error(), "Entry point 'main_unused' not found"; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
}

func TestCompileSPIRV_ParseErrorBeforeEntryPoint(t *testing.T) {
	_, err := CompileSPIRV("fn main( {", "main")
	wantKind(t, err, ParseError)
}

func countEntryPoints(t *testing.T, module []byte) int {
	t.Helper()
	words, err := spirv.Words(module)
	if err != nil {
		t.Fatalf("Words: %v", err)
	}
	_, insts, err := spirv.Decode(words)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	n := 0
	for _, inst := range insts {
		if inst.Opcode == spirv.OpEntryPoint {
			n++
		}
	}
	return n
}

func TestCompileSPIRV_RestrictsEntryPoints(t *testing.T) {
	all, err := CompileSPIRV(renderShader, "")
	if err != nil {
		t.Fatalf("CompileSPIRV(all): %v", err)
	}
	if n := countEntryPoints(t, all); n != 2 {
		t.Errorf("all entry points: %d OpEntryPoint, want 2", n)
	}

	for _, name := range []string{"vs_main", "fs_main"} {
		one, err := CompileSPIRV(renderShader, name)
		if err != nil {
			t.Fatalf("CompileSPIRV(%s): %v", name, err)
		}
		if n := countEntryPoints(t, one); n != 1 {
			t.Errorf("%s: %d OpEntryPoint, want 1", name, n)
		}
		if len(one) >= len(all) {
			t.Errorf("%s: %d bytes, not smaller than %d", name, len(one), len(all))
		}
	}
}

func TestCompileSPIRVWithOptions_Version(t *testing.T) {
	opts := DefaultOptions()
	opts.SPIRVVersion = spirv.Version1_0
	out, err := CompileSPIRVWithOptions(computeShader, "main", opts)
	if err != nil {
		t.Fatalf("CompileSPIRVWithOptions: %v", err)
	}
	words, err := spirv.Words(out)
	if err != nil {
		t.Fatal(err)
	}
	header, _, err := spirv.Decode(words)
	if err != nil {
		t.Fatal(err)
	}
	if header.Version != spirv.Version1_0 {
		t.Errorf("version = %s, want 1.0", header.Version)
	}
}

func TestCompileSource(t *testing.T) {
	for _, target := range []Target{TargetMSL, TargetGLSL, TargetHLSL} {
		t.Run(target.String(), func(t *testing.T) {
			code, err := CompileSource(renderShader, target, "fs_main")
			if err != nil {
				t.Fatalf("CompileSource: %v", err)
			}
			if strings.TrimSpace(code) == "" {
				t.Error("empty output")
			}

			_, err = CompileSource(renderShader, target, "missing")
			wantKind(t, err, EntryPointNotFound)
		})
	}
}

func TestCompileMSL(t *testing.T) {
	code, err := CompileMSL(computeShader, "")
	if err != nil {
		t.Fatalf("CompileMSL: %v", err)
	}
	if !strings.Contains(code, "metal") {
		t.Errorf("output does not look like MSL:\n%s", code)
	}
}

func TestDisassemble_Length(t *testing.T) {
	_, err := Disassemble(make([]byte, 6))
	wantKind(t, err, LengthError)
	if !errors.Is(err, ErrLength) {
		t.Error("errors.Is(err, ErrLength) = false")
	}
	if got := err.Error(); got != "SPIR-V binary length must be multiple of 4" {
		t.Errorf("message = %q", got)
	}
}

func TestDisassemble_BadMagic(t *testing.T) {
	_, err := Disassemble(make([]byte, 20))
	wantKind(t, err, ParseError)
}

func TestDisassemble_RoundTrip(t *testing.T) {
	compiled, err := CompileSPIRV(emptyCompute, "")
	if err != nil {
		t.Fatalf("CompileSPIRV: %v", err)
	}
	text, err := Disassemble(compiled)
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	if !strings.Contains(text, "@compute") || !strings.Contains(text, "fn main(") {
		t.Errorf("disassembly lacks the entry point:\n%s", text)
	}
	if err := Validate(text); err != nil {
		t.Errorf("disassembly does not validate: %v\n%s", err, text)
	}
}

func TestReflect(t *testing.T) {
	data, err := Reflect(computeShader)
	if err != nil {
		t.Fatalf("Reflect: %v", err)
	}
	ep, ok := data.EntryPoint("main")
	if !ok {
		t.Fatal("entry point main not reflected")
	}
	if ep.Stage != "compute" {
		t.Errorf("stage = %q", ep.Stage)
	}
	if ep.WorkgroupSize == nil || *ep.WorkgroupSize != [3]uint32{64, 1, 1} {
		t.Errorf("workgroup size = %v", ep.WorkgroupSize)
	}
	if len(ep.Bindings) != 1 {
		t.Fatalf("bindings = %+v", ep.Bindings)
	}
	b := ep.Bindings[0]
	if b.Name != "data" || b.Group != 0 || b.Binding != 0 || b.ResourceType != "storage" {
		t.Errorf("binding = %+v", b)
	}
	if b.TypeName == nil || *b.TypeName != "array<f32>" {
		t.Errorf("binding type name = %v", b.TypeName)
	}
}

func TestReflect_BindingArray(t *testing.T) {
	data, err := Reflect(`
@group(0) @binding(0) var textures: binding_array<texture_2d<f32>, 4>;
@group(0) @binding(1) var samp: sampler;

@fragment
fn main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> {
    return textureSample(textures[2], samp, uv);
}
`)
	if err != nil {
		t.Fatalf("Reflect: %v", err)
	}
	ep, ok := data.EntryPoint("main")
	if !ok || len(ep.Bindings) != 2 {
		t.Fatalf("entry point = %+v", ep)
	}
	b := ep.Bindings[0]
	if b.ResourceType != "binding_array" || b.TypeName == nil || *b.TypeName != "binding_array<texture_2d, 4>" {
		t.Errorf("binding = %+v", b)
	}
}

func TestReflect_TaskAndMeshStages(t *testing.T) {
	data, err := Reflect(`
enable wgpu_mesh_shader;

struct TaskPayload {
    dummy: u32,
}
struct VertexOutput {
    @builtin(position) position: vec4<f32>,
}
struct PrimitiveOutput {
    @builtin(triangle_indices) indices: vec3<u32>,
}

var<task_payload> taskPayload: TaskPayload;

@task
@payload(taskPayload)
@workgroup_size(1)
fn ts_main() -> @builtin(mesh_task_size) vec3<u32> {
    return vec3(1, 1, 1);
}

struct MeshOutput {
    @builtin(vertices) vertices: array<VertexOutput, 3>,
    @builtin(primitives) primitives: array<PrimitiveOutput, 1>,
    @builtin(vertex_count) vertex_count: u32,
    @builtin(primitive_count) primitive_count: u32,
}

var<workgroup> mesh_output: MeshOutput;

@mesh(mesh_output)
@payload(taskPayload)
@workgroup_size(1)
fn ms_main() {}
`)
	if err != nil {
		t.Fatalf("Reflect: %v", err)
	}
	for name, stage := range map[string]string{"ts_main": "task", "ms_main": "mesh"} {
		ep, ok := data.EntryPoint(name)
		if !ok {
			t.Errorf("entry point %s not reflected", name)
			continue
		}
		if ep.Stage != stage || ep.WorkgroupSize != nil {
			t.Errorf("%s: stage = %q, workgroup size = %v", name, ep.Stage, ep.WorkgroupSize)
		}
	}
}

func TestReflect_ParseError(t *testing.T) {
	_, err := Reflect("struct {")
	wantKind(t, err, ParseError)
}

func TestReflectSPIRV_Length(t *testing.T) {
	_, err := ReflectSPIRV([]byte{1, 2, 3})
	wantKind(t, err, LengthError)
}

func TestReflect_Concurrent(t *testing.T) {
	want, err := Reflect(renderShader)
	if err != nil {
		t.Fatal(err)
	}
	wantJSON, err := want.ToJSON()
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, err := Reflect(renderShader)
			if err != nil {
				errs <- err
				return
			}
			js, err := data.ToJSON()
			if err != nil {
				errs <- err
				return
			}
			if string(js) != string(wantJSON) {
				errs <- errors.New("concurrent reflection differs")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestError(t *testing.T) {
	inner := errors.New("boom")
	err := newError(CodegenError, "MSL error", inner)
	if got := err.Error(); got != "MSL error: boom" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, inner) {
		t.Error("errors.Is does not reach the stage error")
	}
	if errors.Is(err, ErrLength) {
		t.Error("CodegenError matches ErrLength")
	}
	if _, ok := KindOf(inner); ok {
		t.Error("KindOf accepted a foreign error")
	}
}

func TestErrorKind_String(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{ParseError, "ParseError"},
		{ValidationError, "ValidationError"},
		{EntryPointNotFound, "EntryPointNotFound"},
		{CodegenError, "CodegenError"},
		{LengthError, "LengthError"},
		{ErrorKind(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestParseTarget(t *testing.T) {
	for _, target := range []Target{TargetMSL, TargetGLSL, TargetHLSL} {
		got, err := ParseTarget(target.String())
		if err != nil || got != target {
			t.Errorf("ParseTarget(%q) = %v, %v", target.String(), got, err)
		}
	}
	if _, err := ParseTarget("wgsl"); err == nil {
		t.Error("ParseTarget(wgsl) succeeded")
	}
}
