package spirv

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// resultColumn right-aligns result ids so opcodes line up.
const resultColumn = 14

// Dump writes the header and a listing of every instruction of a module.
// Instructions decoded before a malformed one are still written.
func Dump(w io.Writer, words []uint32) error {
	header, insts, err := Decode(words)
	if len(words) >= HeaderWords && words[0] == MagicNumber {
		fmt.Fprintf(w, "; SPIR-V\n; Version: %s\n; Generator: 0x%08X\n; Bound: %d\n; Schema: %d\n",
			header.Version, header.Generator, header.Bound, header.Schema)
	}
	for _, inst := range insts {
		if _, werr := fmt.Fprintln(w, FormatInstruction(inst)); werr != nil {
			return werr
		}
	}
	return err
}

// FormatInstruction renders one instruction in assembly syntax.
func FormatInstruction(inst Instruction) string {
	info := opcodeInfo[inst.Opcode]
	ops := inst.Operands
	var b strings.Builder

	if id, ok := inst.ResultID(); ok {
		fmt.Fprintf(&b, "%*s = ", resultColumn, ref(id))
	} else {
		b.WriteString(strings.Repeat(" ", resultColumn+3))
	}
	b.WriteString(inst.Opcode.String())

	start := 0
	if info.typed && len(ops) > 0 {
		b.WriteString(" " + ref(ops[0]))
		start = 1
	}
	if info.result {
		start++
	}
	if start > len(ops) {
		start = len(ops)
	}
	for _, operand := range formatOperands(inst.Opcode, ops[start:]) {
		b.WriteString(" " + operand)
	}
	return b.String()
}

func ref(id uint32) string {
	return "%" + strconv.FormatUint(uint64(id), 10)
}

//nolint:gocyclo,cyclop,funlen // one case per operand layout
func formatOperands(op OpCode, ops []uint32) []string {
	out := make([]string, 0, len(ops))
	ids := func(words []uint32) {
		for _, w := range words {
			out = append(out, ref(w))
		}
	}
	literals := func(words []uint32) {
		for _, w := range words {
			out = append(out, strconv.FormatUint(uint64(w), 10))
		}
	}
	str := func(words []uint32) int {
		s, n := decodeString(words)
		out = append(out, strconv.Quote(s))
		return n
	}
	// split returns the first n operands and the rest, clamped to len(ops).
	split := func(n int) ([]uint32, []uint32) {
		if n > len(ops) {
			n = len(ops)
		}
		return ops[:n], ops[n:]
	}

	switch op {
	case OpCapability:
		for _, w := range ops {
			out = append(out, Capability(w).String())
		}
	case OpExtension, OpSourceExtension, OpModuleProcessed, OpExtInstImport, OpString:
		str(ops)
	case OpName:
		head, tail := split(1)
		ids(head)
		str(tail)
	case OpMemberName:
		head, tail := split(2)
		if len(head) > 0 {
			ids(head[:1])
			literals(head[1:])
		}
		str(tail)
	case OpMemoryModel:
		if len(ops) >= 2 {
			out = append(out, AddressingModel(ops[0]).String(), MemoryModel(ops[1]).String())
		}
	case OpEntryPoint:
		if len(ops) < 2 {
			ids(ops)
			break
		}
		out = append(out, ExecutionModel(ops[0]).String(), ref(ops[1]))
		n := str(ops[2:])
		ids(ops[2+n:])
	case OpExecutionMode:
		if len(ops) < 2 {
			ids(ops)
			break
		}
		out = append(out, ref(ops[0]), ExecutionMode(ops[1]).String())
		literals(ops[2:])
	case OpDecorate, OpMemberDecorate, OpDecorateString, OpMemberDecorateString:
		n := 1
		if op == OpMemberDecorate || op == OpMemberDecorateString {
			n = 2
		}
		if len(ops) <= n {
			ids(ops)
			break
		}
		out = append(out, ref(ops[0]))
		literals(ops[1:n])
		dec := Decoration(ops[n])
		out = append(out, dec.String())
		switch {
		case op == OpDecorateString || op == OpMemberDecorateString:
			str(ops[n+1:])
		case dec == DecorationBuiltIn && len(ops) > n+1:
			out = append(out, BuiltIn(ops[n+1]).String())
		default:
			literals(ops[n+1:])
		}
	case OpTypeInt, OpTypeFloat, OpConstant, OpSpecConstant, OpSource, OpLine, OpTypeOpaque:
		literals(ops)
	case OpTypeVector, OpTypeMatrix:
		head, tail := split(1)
		ids(head)
		literals(tail)
	case OpTypeImage:
		if len(ops) < 7 {
			ids(ops)
			break
		}
		out = append(out, ref(ops[0]), Dim(ops[1]).String())
		literals(ops[2:6])
		out = append(out, ImageFormat(ops[6]).String())
		literals(ops[7:])
	case OpTypePointer:
		if len(ops) == 2 {
			out = append(out, StorageClass(ops[0]).String(), ref(ops[1]))
			break
		}
		ids(ops)
	case OpVariable:
		if len(ops) > 0 {
			out = append(out, StorageClass(ops[0]).String())
			ids(ops[1:])
		}
	case OpFunction:
		head, tail := split(1)
		literals(head)
		ids(tail)
	case OpCompositeExtract:
		head, tail := split(1)
		ids(head)
		literals(tail)
	case OpCompositeInsert, OpVectorShuffle:
		head, tail := split(2)
		ids(head)
		literals(tail)
	case OpExtInst:
		head, tail := split(2)
		if len(head) > 0 {
			ids(head[:1])
			literals(head[1:])
		}
		ids(tail)
	case OpSelectionMerge:
		head, tail := split(1)
		ids(head)
		literals(tail)
	case OpLoopMerge:
		head, tail := split(2)
		ids(head)
		literals(tail)
	case OpSwitch:
		head, tail := split(2)
		ids(head)
		for i := 0; i+1 < len(tail); i += 2 {
			out = append(out, strconv.FormatUint(uint64(tail[i]), 10), ref(tail[i+1]))
		}
	case OpLoad:
		dumpImageOperands(&out, ops, 1)
	case OpImageRead, OpImageFetch, OpImageSampleImplicitLod, OpImageSampleExplicitLod:
		dumpImageOperands(&out, ops, 2)
	case OpStore:
		head, tail := split(2)
		ids(head)
		literals(tail)
	case OpImageSampleDrefImplicitLod, OpImageSampleDrefExplicitLod, OpImageGather, OpImageDrefGather, OpImageWrite:
		dumpImageOperands(&out, ops, 3)
	default:
		ids(ops)
	}
	return out
}

// dumpImageOperands formats n leading ids, an operand mask and trailing ids.
// OpLoad shares the layout with its memory access mask.
func dumpImageOperands(out *[]string, ops []uint32, n int) {
	for i, w := range ops {
		if i == n {
			*out = append(*out, fmt.Sprintf("0x%x", w))
			continue
		}
		*out = append(*out, ref(w))
	}
}
