// Command shaderkit validates, compiles, disassembles and reflects WGSL
// shaders.
//
// Usage:
//
//	shaderkit validate shader.wgsl
//	shaderkit spirv shader.wgsl -e vs_main -o shader.spv
//	shaderkit msl shader.wgsl
//	shaderkit disasm shader.spv
//	shaderkit reflect shader.wgsl --json
//	shaderkit layout shader.wgsl
//	shaderkit build                # every shader listed in shaderkit.toml
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ComedicChimera/olive"

	"github.com/gogpu/shaderkit"
	"github.com/gogpu/shaderkit/layout"
	"github.com/gogpu/shaderkit/reflection"
	"github.com/gogpu/shaderkit/spirv"
)

const version = "0.1.0"

func main() {
	cli := olive.NewCLI("shaderkit", "shaderkit is a WGSL shader toolchain", true)
	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "the log level", false, []string{"silent", "error", "warn", "info", "debug"})
	logLvlArg.SetDefaultValue("silent")

	validateCmd := cli.AddSubcommand("validate", "parse and validate a WGSL file", true)
	validateCmd.AddPrimaryArg("file", "the WGSL file", true)

	spirvCmd := cli.AddSubcommand("spirv", "compile a WGSL file to SPIR-V", true)
	spirvCmd.AddPrimaryArg("file", "the WGSL file", true)
	spirvCmd.AddStringArg("entry", "e", "the entry point to compile", false)
	spirvCmd.AddStringArg("output", "o", "the output file (default: <file>.spv)", false)
	spirvCmd.AddStringArg("spirv-version", "sv", "the SPIR-V version, such as 1.3", false)
	spirvCmd.AddFlag("debug", "g", "emit debug names")

	for _, target := range []string{"msl", "glsl", "hlsl"} {
		cmd := cli.AddSubcommand(target, "compile a WGSL file to "+strings.ToUpper(target), true)
		cmd.AddPrimaryArg("file", "the WGSL file", true)
		cmd.AddStringArg("entry", "e", "the entry point to compile", false)
		cmd.AddStringArg("output", "o", "the output file (default: stdout)", false)
	}

	disasmCmd := cli.AddSubcommand("disasm", "disassemble a SPIR-V binary to WGSL", true)
	disasmCmd.AddPrimaryArg("file", "the SPIR-V file", true)
	disasmCmd.AddFlag("listing", "l", "print the instruction listing instead of WGSL")

	reflectCmd := cli.AddSubcommand("reflect", "report entry points, bindings and struct layouts", true)
	reflectCmd.AddPrimaryArg("file", "the WGSL or SPIR-V file", true)
	reflectCmd.AddFlag("json", "j", "print the report as JSON")

	layoutCmd := cli.AddSubcommand("layout", "print the bind group and vertex buffer layouts", true)
	layoutCmd.AddPrimaryArg("file", "the WGSL file", true)

	buildCmd := cli.AddSubcommand("build", "compile every shader of a project", true)
	buildCmd.AddStringArg("config", "c", "the project file (default: ./"+projectFileName+")", false)

	cli.AddSubcommand("version", "print the shaderkit version", false)

	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		fail("CLI Usage Error", err)
	}
	initLogger(result.Arguments["loglevel"].(string))

	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "validate":
		execValidateCommand(subResult)
	case "spirv":
		execSPIRVCommand(subResult)
	case "msl", "glsl", "hlsl":
		execSourceCommand(subcmdName, subResult)
	case "disasm":
		execDisasmCommand(subResult)
	case "reflect":
		execReflectCommand(subResult)
	case "layout":
		execLayoutCommand(subResult)
	case "build":
		execBuildCommand(subResult)
	case "version":
		printInfoMessage("shaderkit version", version)
	}
}

func initLogger(level string) {
	var lvl slog.Level
	switch level {
	case "error":
		lvl = slog.LevelError
	case "warn":
		lvl = slog.LevelWarn
	case "info":
		lvl = slog.LevelInfo
	case "debug":
		lvl = slog.LevelDebug
	default:
		return
	}
	shaderkit.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

// stringArg returns the value of an optional string argument.
func stringArg(result *olive.ArgParseResult, name string) string {
	if v, ok := result.Arguments[name]; ok {
		return v.(string)
	}
	return ""
}

func readPrimary(result *olive.ArgParseResult) (string, []byte) {
	path, _ := result.PrimaryArg()
	data, err := os.ReadFile(path)
	if err != nil {
		fail("File Error", err)
	}
	return path, data
}

// errorTag names the failing stage for display.
func errorTag(err error) string {
	kind, ok := shaderkit.KindOf(err)
	if !ok {
		return "Error"
	}
	switch kind {
	case shaderkit.ParseError:
		return "Parse Error"
	case shaderkit.ValidationError:
		return "Validation Error"
	case shaderkit.EntryPointNotFound:
		return "Entry Point Error"
	case shaderkit.LengthError:
		return "Binary Error"
	default:
		return "Codegen Error"
	}
}

func execValidateCommand(result *olive.ArgParseResult) {
	path, source := readPrimary(result)
	if err := shaderkit.Validate(string(source)); err != nil {
		fail(errorTag(err), err)
	}
	printInfoMessage("Valid", path)
}

func execSPIRVCommand(result *olive.ArgParseResult) {
	path, source := readPrimary(result)

	opts := shaderkit.DefaultOptions()
	opts.Debug = result.HasFlag("debug")
	if v := stringArg(result, "spirv-version"); v != "" {
		var err error
		if opts.SPIRVVersion, err = spirv.ParseVersion(v); err != nil {
			fail("CLI Usage Error", err)
		}
	}
	out, err := shaderkit.CompileSPIRVWithOptions(string(source), stringArg(result, "entry"), opts)
	if err != nil {
		fail(errorTag(err), err)
	}

	outPath := stringArg(result, "output")
	if outPath == "" {
		outPath = strings.TrimSuffix(path, filepath.Ext(path)) + ".spv"
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		fail("File Error", err)
	}
	printInfoMessage("Compiled", fmt.Sprintf("%s to %s (%d bytes)", path, outPath, len(out)))
}

func execSourceCommand(name string, result *olive.ArgParseResult) {
	_, source := readPrimary(result)
	target, err := shaderkit.ParseTarget(name)
	if err != nil {
		fail("CLI Usage Error", err)
	}
	code, err := shaderkit.CompileSource(string(source), target, stringArg(result, "entry"))
	if err != nil {
		fail(errorTag(err), err)
	}
	writeText(stringArg(result, "output"), code)
}

func execDisasmCommand(result *olive.ArgParseResult) {
	_, binary := readPrimary(result)
	if result.HasFlag("listing") {
		if err := dumpListing(os.Stdout, binary); err != nil {
			fail("SPIR-V Error", err)
		}
		return
	}
	text, err := shaderkit.Disassemble(binary)
	if err != nil {
		fail(errorTag(err), err)
	}
	fmt.Print(text)
}

func dumpListing(w io.Writer, binary []byte) error {
	words, err := spirv.Words(binary)
	if err != nil {
		return err
	}
	return spirv.Dump(w, words)
}

func execReflectCommand(result *olive.ArgParseResult) {
	path, content := readPrimary(result)

	var data *reflection.Data
	var err error
	if filepath.Ext(path) == ".spv" {
		data, err = shaderkit.ReflectSPIRV(content)
	} else {
		data, err = shaderkit.Reflect(string(content))
	}
	if err != nil {
		fail(errorTag(err), err)
	}

	if result.HasFlag("json") {
		js, err := data.ToJSON()
		if err != nil {
			fail("JSON Error", err)
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, js, "", "  "); err != nil {
			fail("JSON Error", err)
		}
		fmt.Println(buf.String())
		return
	}
	printReflection(data)
}

func printReflection(data *reflection.Data) {
	for _, ep := range data.EntryPoints {
		printHeading(ep.Stage + " " + ep.Name)
		if ep.WorkgroupSize != nil {
			fmt.Printf("  workgroup size %d x %d x %d\n", ep.WorkgroupSize[0], ep.WorkgroupSize[1], ep.WorkgroupSize[2])
		}
		for _, b := range ep.Bindings {
			typeName := "?"
			if b.TypeName != nil {
				typeName = *b.TypeName
			}
			fmt.Printf("  @group(%d) @binding(%d) %-20s %-10s %s\n", b.Group, b.Binding, b.Name, b.ResourceType, typeName)
		}
		for _, in := range ep.VertexInputs {
			fmt.Printf("  in  @location(%d) %s: %s\n", in.Location, in.Name, in.TypeName)
		}
		for _, out := range ep.FragmentOutputs {
			fmt.Printf("  out @location(%d) %s: %s\n", out.Location, out.Name, out.TypeName)
		}
	}
	for _, t := range data.Types {
		printHeading(t.Kind + " " + t.Name)
		for _, m := range t.Members {
			fmt.Printf("  %4d  %s: %s\n", m.Offset, m.Name, m.TypeName)
		}
	}
}

func execLayoutCommand(result *olive.ArgParseResult) {
	_, source := readPrimary(result)
	module, err := shaderkit.Import(string(source))
	if err != nil {
		fail(errorTag(err), err)
	}
	data := reflection.Reflect(module)

	groups, err := layout.BindGroupLayouts(module, data)
	if err != nil {
		fail("Layout Error", err)
	}
	for _, g := range groups {
		printHeading(fmt.Sprintf("bind group %d", g.Group))
		for _, e := range g.Entries {
			kind := "buffer"
			var detail any
			switch {
			case e.Buffer != nil:
				detail = e.Buffer.Type
			case e.Texture != nil:
				kind, detail = "texture", fmt.Sprintf("%v %v", e.Texture.SampleType, e.Texture.ViewDimension)
			case e.Sampler != nil:
				kind, detail = "sampler", e.Sampler.Type
			}
			fmt.Printf("  binding %d  visibility %v  %s %v\n", e.Binding, e.Visibility, kind, detail)
		}
	}

	for i := range data.EntryPoints {
		ep := &data.EntryPoints[i]
		if ep.Stage != "vertex" || len(ep.VertexInputs) == 0 {
			continue
		}
		buffer, err := layout.VertexBufferLayout(ep)
		if err != nil {
			printWarningMessage("Layout Warning", fmt.Sprintf("%s: %v", ep.Name, err))
			continue
		}
		printHeading(fmt.Sprintf("vertex buffer %s (stride %d)", ep.Name, buffer.ArrayStride))
		for _, a := range buffer.Attributes {
			fmt.Printf("  @location(%d) offset %d  %v\n", a.ShaderLocation, a.Offset, a.Format)
		}
	}
}

func execBuildCommand(result *olive.ArgParseResult) {
	path := stringArg(result, "config")
	if path == "" {
		path = projectFileName
	}
	p, err := loadProject(path)
	if err != nil {
		fail("Project Error", err)
	}
	if err := os.MkdirAll(p.output, 0o755); err != nil {
		fail("File Error", err)
	}

	failed := 0
	for _, job := range p.shaders {
		source, err := os.ReadFile(job.path)
		if err != nil {
			printErrorMessage("File Error", err)
			failed++
			continue
		}
		for _, target := range job.targets {
			out, err := compileTarget(string(source), target, job.entryPoint, p.options)
			if err != nil {
				printErrorMessage(errorTag(err), fmt.Errorf("%s (%s): %w", filepath.Base(job.path), target, err))
				failed++
				continue
			}
			outPath := p.outputPath(job, target)
			if err := os.WriteFile(outPath, out, 0o644); err != nil {
				printErrorMessage("File Error", err)
				failed++
				continue
			}
			printInfoMessage("Built", outPath)
		}
	}
	if failed > 0 {
		fail("Build Failed", fmt.Errorf("%d output(s) failed", failed))
	}
}

// compileTarget produces the file contents for one build output.
func compileTarget(source, target, entryPoint string, opts shaderkit.CompileOptions) ([]byte, error) {
	switch target {
	case "spirv":
		return shaderkit.CompileSPIRVWithOptions(source, entryPoint, opts)
	case "reflect":
		data, err := shaderkit.Reflect(source)
		if err != nil {
			return nil, err
		}
		return data.ToJSON()
	}
	t, err := shaderkit.ParseTarget(target)
	if err != nil {
		return nil, err
	}
	code, err := shaderkit.CompileSource(source, t, entryPoint)
	return []byte(code), err
}

func writeText(path, text string) {
	if path == "" {
		fmt.Print(text)
		return
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		fail("File Error", err)
	}
}
