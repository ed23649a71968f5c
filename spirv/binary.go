package spirv

import (
	"encoding/binary"
	"fmt"
	"math/bits"
	"strings"
)

// Header is the five-word SPIR-V module header.
type Header struct {
	Version   Version
	Generator uint32
	Bound     uint32
	Schema    uint32
}

// Instruction is one decoded instruction. Offset is the word index of the
// instruction's first word within the module.
type Instruction struct {
	Opcode   OpCode
	Operands []uint32
	Offset   int
}

// ParseError reports a malformed or unsupported SPIR-V construct.
type ParseError struct {
	Offset  int // word offset, or -1 when unknown
	Opcode  OpCode
	Message string
}

func (e *ParseError) Error() string {
	switch {
	case e.Offset < 0:
		return "spirv: " + e.Message
	case e.Opcode == OpNop:
		return fmt.Sprintf("spirv: word %d: %s", e.Offset, e.Message)
	default:
		return fmt.Sprintf("spirv: word %d (%s): %s", e.Offset, e.Opcode, e.Message)
	}
}

// Words splits a SPIR-V binary into 32-bit words. Both byte orders are
// accepted; the magic number decides which one applies.
func Words(data []byte) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, &ParseError{Offset: -1, Message: fmt.Sprintf("byte length %d is not a multiple of 4", len(data))}
	}
	var order binary.ByteOrder = binary.LittleEndian
	if len(data) >= 4 && binary.BigEndian.Uint32(data) == MagicNumber {
		order = binary.BigEndian
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = order.Uint32(data[i*4:])
	}
	return words, nil
}

// Bytes serializes words little-endian.
func Bytes(words []uint32) []byte {
	out := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}

// Decode splits a module into its header and instruction stream.
func Decode(words []uint32) (Header, []Instruction, error) {
	if len(words) < HeaderWords {
		return Header{}, nil, &ParseError{Offset: 0, Message: fmt.Sprintf("module has %d words, header needs %d", len(words), HeaderWords)}
	}
	if words[0] != MagicNumber {
		if bits.ReverseBytes32(words[0]) == MagicNumber {
			return Header{}, nil, &ParseError{Offset: 0, Message: "words are byte-swapped"}
		}
		return Header{}, nil, &ParseError{Offset: 0, Message: fmt.Sprintf("invalid magic number 0x%08x", words[0])}
	}
	header := Header{
		Version:   versionFromWord(words[1]),
		Generator: words[2],
		Bound:     words[3],
		Schema:    words[4],
	}

	var insts []Instruction
	for offset := HeaderWords; offset < len(words); {
		opcode := OpCode(words[offset] & 0xFFFF)
		count := int(words[offset] >> 16)
		if count == 0 {
			return header, insts, &ParseError{Offset: offset, Opcode: opcode, Message: "zero word count"}
		}
		if offset+count > len(words) {
			return header, insts, &ParseError{Offset: offset, Opcode: opcode,
				Message: fmt.Sprintf("word count %d runs past the end of the module", count)}
		}
		insts = append(insts, Instruction{
			Opcode:   opcode,
			Operands: words[offset+1 : offset+count],
			Offset:   offset,
		})
		offset += count
	}
	return header, insts, nil
}

// operand returns operand i or a ParseError naming what was missing.
func (inst Instruction) operand(i int, what string) (uint32, error) {
	if i >= len(inst.Operands) {
		return 0, inst.errorf("missing %s operand", what)
	}
	return inst.Operands[i], nil
}

func (inst Instruction) errorf(format string, args ...any) *ParseError {
	return &ParseError{Offset: inst.Offset, Opcode: inst.Opcode, Message: fmt.Sprintf(format, args...)}
}

// ResultID returns the result id of instructions that define one.
func (inst Instruction) ResultID() (uint32, bool) {
	info, ok := opcodeInfo[inst.Opcode]
	if !ok || !info.result {
		return 0, false
	}
	i := 0
	if info.typed {
		i = 1
	}
	if i >= len(inst.Operands) {
		return 0, false
	}
	return inst.Operands[i], true
}

// ResultType returns the result type id of typed instructions.
func (inst Instruction) ResultType() (uint32, bool) {
	info, ok := opcodeInfo[inst.Opcode]
	if !ok || !info.typed || len(inst.Operands) == 0 {
		return 0, false
	}
	return inst.Operands[0], true
}

// decodeString reads a nul-terminated literal string and reports how many
// words it occupied.
func decodeString(words []uint32) (string, int) {
	var b strings.Builder
	for i, w := range words {
		for shift := 0; shift < 32; shift += 8 {
			c := byte(w >> shift)
			if c == 0 {
				return b.String(), i + 1
			}
			b.WriteByte(c)
		}
	}
	return b.String(), len(words)
}

// encodeString packs s as a nul-terminated literal string.
func encodeString(s string) []uint32 {
	buf := make([]byte, len(s)/4*4+4)
	copy(buf, s)
	words := make([]uint32, len(buf)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(buf[i*4:])
	}
	return words
}
