package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/shaderkit"
	"github.com/gogpu/shaderkit/spirv"
)

func writeProject(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), projectFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadProject(t *testing.T) {
	path := writeProject(t, `
target = "msl"
spirv-version = "1.5"
debug = true
output = "build"

[[shader]]
path = "shaders/sprite.wgsl"
entry-point = "vs_main"
targets = ["spirv", "GLSL"]

[[shader]]
path = "shaders/blur.wgsl"
`)
	p, err := loadProject(path)
	if err != nil {
		t.Fatalf("loadProject: %v", err)
	}
	root := filepath.Dir(path)
	if p.output != filepath.Join(root, "build") {
		t.Errorf("output = %s", p.output)
	}
	if p.options.SPIRVVersion != spirv.Version1_5 || !p.options.Debug || !p.options.Validate {
		t.Errorf("options = %+v", p.options)
	}
	if len(p.shaders) != 2 {
		t.Fatalf("shaders = %+v", p.shaders)
	}

	sprite := p.shaders[0]
	if sprite.path != filepath.Join(root, "shaders", "sprite.wgsl") || sprite.entryPoint != "vs_main" {
		t.Errorf("sprite = %+v", sprite)
	}
	if strings.Join(sprite.targets, ",") != "spirv,glsl" {
		t.Errorf("sprite targets = %v", sprite.targets)
	}
	if got := p.outputPath(sprite, "spirv"); got != filepath.Join(root, "build", "sprite.vs_main.spv") {
		t.Errorf("sprite output = %s", got)
	}

	blur := p.shaders[1]
	if strings.Join(blur.targets, ",") != "msl" {
		t.Errorf("blur targets = %v, want the project default", blur.targets)
	}
	if got := p.outputPath(blur, "msl"); got != filepath.Join(root, "build", "blur.metal") {
		t.Errorf("blur output = %s", got)
	}
}

func TestLoadProject_Defaults(t *testing.T) {
	path := writeProject(t, "[[shader]]\npath = \"a.wgsl\"\n")
	p, err := loadProject(path)
	if err != nil {
		t.Fatalf("loadProject: %v", err)
	}
	if p.output != filepath.Dir(path) {
		t.Errorf("output = %s, want the project directory", p.output)
	}
	if p.options.SPIRVVersion != spirv.Version1_3 {
		t.Errorf("version = %s", p.options.SPIRVVersion)
	}
	if strings.Join(p.shaders[0].targets, ",") != "spirv" {
		t.Errorf("targets = %v", p.shaders[0].targets)
	}
}

func TestLoadProject_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"no shaders", `target = "msl"`, "no [[shader]]"},
		{"missing path", "[[shader]]\nentry-point = \"main\"\n", "has no path"},
		{"unknown default target", "target = \"wgsl\"\n[[shader]]\npath = \"a.wgsl\"\n", "unknown target"},
		{"unknown shader target", "[[shader]]\npath = \"a.wgsl\"\ntargets = [\"dxil\"]\n", "unknown target"},
		{"bad version", "spirv-version = \"2.0\"\n[[shader]]\npath = \"a.wgsl\"\n", "unsupported version"},
		{"bad toml", "[[shader]\n", projectFileName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadProject(writeProject(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestCompileTarget(t *testing.T) {
	const source = `
@fragment
fn main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.5, 0.0, 1.0);
}
`
	opts := shaderkit.DefaultOptions()
	for target := range outputExtensions {
		t.Run(target, func(t *testing.T) {
			out, err := compileTarget(source, target, "main", opts)
			if err != nil {
				t.Fatalf("compileTarget: %v", err)
			}
			if len(out) == 0 {
				t.Error("empty output")
			}
		})
	}
}
