package spirv

import (
	"encoding/binary"
	"errors"
	"math/bits"
	"strings"
	"testing"
)

func TestWords_LengthNotMultipleOfFour(t *testing.T) {
	_, err := Words(make([]byte, 6))
	if err == nil {
		t.Fatal("Words accepted a 6 byte binary")
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error %T is not a *ParseError", err)
	}
	if !strings.Contains(err.Error(), "not a multiple of 4") {
		t.Errorf("error = %q", err)
	}
}

func TestWords_ByteOrder(t *testing.T) {
	words := []uint32{MagicNumber, Version1_3.Word(), 0, 8, 0}

	little := Bytes(words)
	got, err := Words(little)
	if err != nil {
		t.Fatalf("Words(little endian): %v", err)
	}
	for i := range words {
		if got[i] != words[i] {
			t.Errorf("little endian word %d = 0x%08x, want 0x%08x", i, got[i], words[i])
		}
	}

	big := make([]byte, len(words)*4)
	for i, w := range words {
		binary.BigEndian.PutUint32(big[i*4:], w)
	}
	got, err = Words(big)
	if err != nil {
		t.Fatalf("Words(big endian): %v", err)
	}
	for i := range words {
		if got[i] != words[i] {
			t.Errorf("big endian word %d = 0x%08x, want 0x%08x", i, got[i], words[i])
		}
	}
}

func TestBytes_LittleEndian(t *testing.T) {
	got := Bytes([]uint32{MagicNumber})
	want := []byte{0x03, 0x02, 0x23, 0x07}
	if string(got) != string(want) {
		t.Errorf("Bytes(magic) = % x, want % x", got, want)
	}
}

func TestDecode_Header(t *testing.T) {
	b := NewModuleBuilder(Version1_4)
	b.AddCapability(CapabilityShader)
	header, insts, err := Decode(b.Words())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if header.Version != Version1_4 {
		t.Errorf("Version = %s, want 1.4", header.Version)
	}
	if header.Generator != GeneratorID {
		t.Errorf("Generator = 0x%x", header.Generator)
	}
	if header.Bound != 1 {
		t.Errorf("Bound = %d, want 1", header.Bound)
	}
	if len(insts) != 2 {
		t.Fatalf("got %d instructions, want 2", len(insts))
	}
	if insts[0].Opcode != OpCapability || insts[0].Offset != HeaderWords {
		t.Errorf("first instruction = %s at %d", insts[0].Opcode, insts[0].Offset)
	}
	if insts[1].Opcode != OpMemoryModel {
		t.Errorf("second instruction = %s, want OpMemoryModel", insts[1].Opcode)
	}
}

func TestDecode_Errors(t *testing.T) {
	header := []uint32{MagicNumber, Version1_0.Word(), 0, 1, 0}
	withBody := func(body ...uint32) []uint32 {
		return append(append([]uint32(nil), header...), body...)
	}

	tests := []struct {
		name   string
		words  []uint32
		offset int
		want   string
	}{
		{"short header", []uint32{MagicNumber, 0}, 0, "header needs 5"},
		{"bad magic", []uint32{0xdeadbeef, 0, 0, 0, 0}, 0, "invalid magic number 0xdeadbeef"},
		{"byte swapped", []uint32{bits.ReverseBytes32(MagicNumber), 0, 0, 0, 0}, 0, "byte-swapped"},
		{"zero word count", withBody(uint32(OpNop)), 5, "zero word count"},
		{"overrun", withBody(3<<16|uint32(OpCapability), 1), 5, "runs past the end"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode(tt.words)
			if err == nil {
				t.Fatal("expected error")
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("error %T is not a *ParseError", err)
			}
			if perr.Offset != tt.offset {
				t.Errorf("Offset = %d, want %d", perr.Offset, tt.offset)
			}
			if !strings.Contains(perr.Message, tt.want) {
				t.Errorf("Message = %q, want it to contain %q", perr.Message, tt.want)
			}
		})
	}
}

func TestDecode_KeepsInstructionsBeforeError(t *testing.T) {
	words := []uint32{MagicNumber, Version1_0.Word(), 0, 1, 0,
		2<<16 | uint32(OpCapability), uint32(CapabilityShader),
		0}
	_, insts, err := Decode(words)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(insts) != 1 || insts[0].Opcode != OpCapability {
		t.Errorf("instructions = %v, want the capability", insts)
	}
}

func TestParseError_Error(t *testing.T) {
	tests := []struct {
		err  *ParseError
		want string
	}{
		{&ParseError{Offset: -1, Message: "bad"}, "spirv: bad"},
		{&ParseError{Offset: 5, Message: "bad"}, "spirv: word 5: bad"},
		{&ParseError{Offset: 9, Opcode: OpLoad, Message: "bad"}, "spirv: word 9 (OpLoad): bad"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in      string
		want    Version
		wantErr bool
	}{
		{"1.0", Version1_0, false},
		{"1.3", Version1_3, false},
		{"1.6", Version1_6, false},
		{"1.7", Version{}, true},
		{"2.0", Version{}, true},
		{"latest", Version{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseVersion(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseVersion(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseVersion(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestVersion_WordRoundTrip(t *testing.T) {
	for _, v := range []Version{Version1_0, Version1_3, Version1_4, Version1_5, Version1_6} {
		if got := versionFromWord(v.Word()); got != v {
			t.Errorf("versionFromWord(%s.Word()) = %s", v, got)
		}
	}
}

func TestStringEncoding(t *testing.T) {
	for _, s := range []string{"", "abc", "main", "GLSL.std.450"} {
		words := encodeString(s)
		if len(words) != len(s)/4+1 {
			t.Errorf("encodeString(%q) used %d words", s, len(words))
		}
		got, n := decodeString(words)
		if got != s || n != len(words) {
			t.Errorf("decodeString(encodeString(%q)) = %q, %d", s, got, n)
		}
	}
}

func TestInstruction_ResultIDAndType(t *testing.T) {
	load := Instruction{Opcode: OpLoad, Operands: []uint32{4, 7, 3}}
	if id, ok := load.ResultID(); !ok || id != 7 {
		t.Errorf("OpLoad ResultID = %d, %v", id, ok)
	}
	if ty, ok := load.ResultType(); !ok || ty != 4 {
		t.Errorf("OpLoad ResultType = %d, %v", ty, ok)
	}

	typeInt := Instruction{Opcode: OpTypeInt, Operands: []uint32{2, 32, 1}}
	if id, ok := typeInt.ResultID(); !ok || id != 2 {
		t.Errorf("OpTypeInt ResultID = %d, %v", id, ok)
	}
	if _, ok := typeInt.ResultType(); ok {
		t.Error("OpTypeInt has no result type")
	}

	store := Instruction{Opcode: OpStore, Operands: []uint32{3, 7}}
	if _, ok := store.ResultID(); ok {
		t.Error("OpStore has no result id")
	}
}
