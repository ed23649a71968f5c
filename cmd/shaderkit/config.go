package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"

	"github.com/gogpu/shaderkit"
	"github.com/gogpu/shaderkit/spirv"
)

// projectFileName is the project file looked up by the build subcommand.
const projectFileName = "shaderkit.toml"

// tomlProject is the project file as it is encoded in TOML.
type tomlProject struct {
	Target       string        `toml:"target"`
	SPIRVVersion string        `toml:"spirv-version"`
	Debug        bool          `toml:"debug"`
	Output       string        `toml:"output"`
	Shaders      []*tomlShader `toml:"shader"`
}

type tomlShader struct {
	Path       string   `toml:"path"`
	EntryPoint string   `toml:"entry-point"`
	Targets    []string `toml:"targets"`
}

// project is a loaded and checked project file. Paths are absolute.
type project struct {
	root    string
	output  string
	options shaderkit.CompileOptions
	shaders []shaderJob
}

type shaderJob struct {
	path       string
	entryPoint string
	targets    []string
}

// Outputs a shader can be built to, with their file extensions.
var outputExtensions = map[string]string{
	"spirv":   ".spv",
	"msl":     ".metal",
	"glsl":    ".glsl",
	"hlsl":    ".hlsl",
	"reflect": ".json",
}

// loadProject reads and checks the project file at path.
func loadProject(path string) (*project, error) {
	buff, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tp := &tomlProject{}
	if err := toml.Unmarshal(buff, tp); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	root, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	p := &project{
		root:    root,
		output:  root,
		options: shaderkit.DefaultOptions(),
	}
	p.options.Debug = tp.Debug
	if tp.Output != "" {
		p.output = p.resolve(tp.Output)
	}
	if tp.SPIRVVersion != "" {
		if p.options.SPIRVVersion, err = spirv.ParseVersion(tp.SPIRVVersion); err != nil {
			return nil, err
		}
	}

	defaultTarget := "spirv"
	if tp.Target != "" {
		defaultTarget = strings.ToLower(tp.Target)
	}
	if _, ok := outputExtensions[defaultTarget]; !ok {
		return nil, fmt.Errorf("unknown target %q", tp.Target)
	}

	if len(tp.Shaders) == 0 {
		return nil, errors.New("project declares no [[shader]] entries")
	}
	for i, ts := range tp.Shaders {
		if ts.Path == "" {
			return nil, fmt.Errorf("shader %d has no path", i+1)
		}
		job := shaderJob{
			path:       p.resolve(ts.Path),
			entryPoint: ts.EntryPoint,
			targets:    []string{defaultTarget},
		}
		if len(ts.Targets) > 0 {
			job.targets = job.targets[:0]
			for _, t := range ts.Targets {
				t = strings.ToLower(t)
				if _, ok := outputExtensions[t]; !ok {
					return nil, fmt.Errorf("shader %s: unknown target %q", ts.Path, t)
				}
				job.targets = append(job.targets, t)
			}
		}
		p.shaders = append(p.shaders, job)
	}
	return p, nil
}

func (p *project) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.root, path)
}

// outputPath returns the file a job writes for target.
func (p *project) outputPath(job shaderJob, target string) string {
	base := strings.TrimSuffix(filepath.Base(job.path), filepath.Ext(job.path))
	if job.entryPoint != "" {
		base += "." + job.entryPoint
	}
	return filepath.Join(p.output, base+outputExtensions[target])
}
