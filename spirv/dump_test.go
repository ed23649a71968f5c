package spirv

import (
	"bytes"
	"strings"
	"testing"
)

func computeListing(t *testing.T) string {
	t.Helper()
	b := NewModuleBuilder(Version1_3)
	b.AddCapability(CapabilityShader)

	void := b.AddType(OpTypeVoid)
	fnType := b.AddType(OpTypeFunction, void)
	u32 := b.AddType(OpTypeInt, 32, 0)
	ptr := b.AddTypePointer(StorageClassStorageBuffer, u32)
	buf := b.AddVariable(ptr, StorageClassStorageBuffer)
	b.AddDecorate(buf, DecorationDescriptorSet, 0)
	b.AddDecorate(buf, DecorationBinding, 2)

	fn := b.AddFunction(void, fnType)
	b.AddName(fn, "main")
	b.AddEntryPoint(ExecutionModelGLCompute, fn, "main")
	b.AddExecutionMode(fn, ExecutionModeLocalSize, 8, 8, 1)
	b.AddLabel()
	b.AddCode(OpReturn)
	b.AddCode(OpFunctionEnd)

	var out bytes.Buffer
	if err := Dump(&out, b.Words()); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	return out.String()
}

func TestDump_Listing(t *testing.T) {
	listing := computeListing(t)

	want := []string{
		"; SPIR-V",
		"; Version: 1.3",
		"; Bound: 8",
		"OpCapability Shader",
		"OpMemoryModel Logical GLSL450",
		`OpEntryPoint GLCompute %6 "main"`,
		"OpExecutionMode %6 LocalSize 8 8 1",
		`OpName %6 "main"`,
		"OpDecorate %5 DescriptorSet 0",
		"OpDecorate %5 Binding 2",
		"%1 = OpTypeVoid",
		"%3 = OpTypeInt 32 0",
		"%4 = OpTypePointer StorageBuffer %3",
		"%5 = OpVariable %4 StorageBuffer",
		"%6 = OpFunction %1 0 %2",
		"%7 = OpLabel",
		"OpReturn",
		"OpFunctionEnd",
	}
	for _, w := range want {
		if !strings.Contains(listing, w) {
			t.Errorf("listing is missing %q\n%s", w, listing)
		}
	}
}

func TestDump_ResultColumn(t *testing.T) {
	for _, line := range strings.Split(computeListing(t), "\n") {
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		if len(line) < resultColumn+3 {
			t.Errorf("line %q is shorter than the result column", line)
			continue
		}
		if !strings.HasPrefix(line[resultColumn:], " = ") && strings.TrimSpace(line[:resultColumn+3]) != "" {
			t.Errorf("line %q does not align on the result column", line)
		}
	}
}

func TestDump_MalformedKeepsPrefix(t *testing.T) {
	b := NewModuleBuilder(Version1_0)
	b.AddCapability(CapabilityShader)
	words := append(b.Words(), 4<<16|uint32(OpName))

	var out bytes.Buffer
	err := Dump(&out, words)
	if err == nil {
		t.Fatal("Dump accepted a truncated instruction")
	}
	if !strings.Contains(out.String(), "OpCapability Shader") {
		t.Errorf("listing lost the instructions before the error:\n%s", out.String())
	}
}

func TestFormatInstruction(t *testing.T) {
	tests := []struct {
		name string
		inst Instruction
		want string
	}{
		{
			name: "decorate builtin",
			inst: Instruction{Opcode: OpDecorate, Operands: []uint32{3, uint32(DecorationBuiltIn), uint32(BuiltInPosition)}},
			want: "OpDecorate %3 BuiltIn Position",
		},
		{
			name: "member decorate offset",
			inst: Instruction{Opcode: OpMemberDecorate, Operands: []uint32{4, 1, uint32(DecorationOffset), 16}},
			want: "OpMemberDecorate %4 1 Offset 16",
		},
		{
			name: "composite extract",
			inst: Instruction{Opcode: OpCompositeExtract, Operands: []uint32{2, 9, 8, 1}},
			want: "%9 = OpCompositeExtract %2 %8 1",
		},
		{
			name: "image sample operands",
			inst: Instruction{Opcode: OpImageSampleExplicitLod, Operands: []uint32{1, 2, 3, 4, 2, 5}},
			want: "%2 = OpImageSampleExplicitLod %1 %3 %4 0x2 %5",
		},
		{
			name: "image write operands",
			inst: Instruction{Opcode: OpImageWrite, Operands: []uint32{4, 5, 6, 8, 7}},
			want: "OpImageWrite %4 %5 %6 0x8 %7",
		},
		{
			name: "store",
			inst: Instruction{Opcode: OpStore, Operands: []uint32{5, 6}},
			want: "OpStore %5 %6",
		},
		{
			name: "unknown opcode",
			inst: Instruction{Opcode: 60000, Operands: []uint32{1}},
			want: "Op60000 %1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.TrimSpace(FormatInstruction(tt.inst))
			if got != tt.want {
				t.Errorf("FormatInstruction = %q, want %q", got, tt.want)
			}
		})
	}
}
