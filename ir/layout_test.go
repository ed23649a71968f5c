package ir

import "testing"

func TestLayout(t *testing.T) {
	types := []Type{
		{Inner: F32},
		{Inner: VectorType{Size: Vec2, Scalar: F32}},
		{Inner: VectorType{Size: Vec3, Scalar: F32}},
		{Inner: VectorType{Size: Vec4, Scalar: F32}},
		{Inner: MatrixType{Columns: Vec4, Rows: Vec4, Scalar: F32}},
		{Inner: MatrixType{Columns: Vec3, Rows: Vec3, Scalar: F32}},
		{Inner: ArrayType{Base: 0, Size: FixedSize(8), Stride: 4}},
		{Inner: ArrayType{Base: 2, Size: DynamicSize()}},
		{Inner: AtomicType{Scalar: U32}},
		{Inner: StructType{
			Members: []StructMember{
				{Name: "a", Type: 2, Offset: 0},
				{Name: "b", Type: 0, Offset: 12},
			},
			Span: 16,
		}},
		{Inner: SamplerType{}},
		{Inner: ScalarType{Kind: ScalarFloat, Width: 2}},
		{Inner: VectorType{Size: Vec3, Scalar: ScalarType{Kind: ScalarFloat, Width: 2}}},
	}

	tests := []struct {
		name string
		h    TypeHandle
		want TypeLayout
	}{
		{"f32", 0, TypeLayout{Size: 4, Align: 4}},
		{"vec2", 1, TypeLayout{Size: 8, Align: 8}},
		{"vec3", 2, TypeLayout{Size: 12, Align: 16}},
		{"vec4", 3, TypeLayout{Size: 16, Align: 16}},
		{"mat4x4", 4, TypeLayout{Size: 64, Align: 16}},
		{"mat3x3", 5, TypeLayout{Size: 48, Align: 16}},
		{"array with stride", 6, TypeLayout{Size: 32, Align: 4}},
		{"runtime array of vec3", 7, TypeLayout{Size: 16, Align: 16}},
		{"atomic", 8, TypeLayout{Size: 4, Align: 4}},
		{"struct", 9, TypeLayout{Size: 16, Align: 16}},
		{"sampler", 10, TypeLayout{Align: 1}},
		{"f16", 11, TypeLayout{Size: 2, Align: 2}},
		{"vec3<f16>", 12, TypeLayout{Size: 6, Align: 8}},
		{"out of range", 99, TypeLayout{Align: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Layout(types, tt.h); got != tt.want {
				t.Errorf("Layout = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStructLayout_SpanWins(t *testing.T) {
	types := []Type{{Inner: F32}}
	st := StructType{Members: []StructMember{{Type: 0, Offset: 0}}, Span: 32}
	if got := StructLayout(types, st); got != (TypeLayout{Size: 32, Align: 4}) {
		t.Errorf("StructLayout = %+v, want size 32 align 4", got)
	}
	st.Span = 0
	if got := StructLayout(types, st); got != (TypeLayout{Size: 4, Align: 4}) {
		t.Errorf("StructLayout = %+v, want size 4 align 4", got)
	}
}

func TestAlignUp(t *testing.T) {
	tests := []struct{ v, align, want uint32 }{
		{0, 16, 0},
		{1, 16, 16},
		{16, 16, 16},
		{17, 4, 20},
		{7, 1, 7},
		{7, 0, 7},
	}
	for _, tt := range tests {
		if got := AlignUp(tt.v, tt.align); got != tt.want {
			t.Errorf("AlignUp(%d, %d) = %d, want %d", tt.v, tt.align, got, tt.want)
		}
	}
}
