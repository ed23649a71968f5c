package main

import (
	"testing"

	"github.com/gogpu/shaderkit/spirv"
)

func TestCountOpcodes(t *testing.T) {
	insts := []spirv.Instruction{
		{Opcode: spirv.OpCapability},
		{Opcode: spirv.OpDecorate},
		{Opcode: spirv.OpName},
		{Opcode: spirv.OpDecorate},
		{Opcode: spirv.OpName},
		{Opcode: spirv.OpDecorate},
	}
	got := countOpcodes(insts)
	want := []opcodeCount{
		{spirv.OpDecorate, 3},
		{spirv.OpName, 2},
		{spirv.OpCapability, 1},
	}
	if len(got) != len(want) {
		t.Fatalf("countOpcodes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %v, want %v", i, got[i], want[i])
		}
	}
}
