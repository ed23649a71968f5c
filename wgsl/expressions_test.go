package wgsl

import (
	"math"
	"strings"
	"testing"

	"github.com/gogpu/shaderkit/ir"
)

// expressionFixture is a fragment function with textures, samplers and
// scalar arguments, plus the expression arena under test.
func expressionFixture() (*ir.Module, *ir.Function) {
	four := uint8(4)
	gatherY := ir.SwizzleY
	module := &ir.Module{
		Types: []ir.Type{
			{Inner: ir.F32},
			{Inner: ir.VectorType{Size: ir.Vec4, Scalar: ir.F32}},
			{Inner: ir.I32},
			{Inner: ir.Bool},
			{Inner: ir.ImageType{Dim: ir.Dim2D, Class: ir.ImageClassSampled, SampledKind: ir.ScalarFloat}},
			{Inner: ir.SamplerType{}},
			{Inner: ir.ImageType{Dim: ir.Dim2D, Class: ir.ImageClassDepth}},
			{Inner: ir.SamplerType{Comparison: true}},
			{Inner: ir.VectorType{Size: ir.Vec2, Scalar: ir.F32}},
		},
		GlobalVariables: []ir.GlobalVariable{
			{Name: "t", Space: ir.SpaceHandle, Binding: &ir.ResourceBinding{Binding: 0}, Type: 4},
			{Name: "s", Space: ir.SpaceHandle, Binding: &ir.ResourceBinding{Binding: 1}, Type: 5},
			{Name: "d", Space: ir.SpaceHandle, Binding: &ir.ResourceBinding{Binding: 2}, Type: 6},
			{Name: "sc", Space: ir.SpaceHandle, Binding: &ir.ResourceBinding{Binding: 3}, Type: 7},
		},
	}
	kinds := []ir.ExpressionKind{
		0:  ir.ExprFunctionArgument{Index: 0},
		1:  ir.ExprFunctionArgument{Index: 1},
		2:  ir.ExprFunctionArgument{Index: 2},
		3:  ir.ExprGlobalVariable{Variable: 0},
		4:  ir.ExprGlobalVariable{Variable: 1},
		5:  ir.ExprGlobalVariable{Variable: 2},
		6:  ir.ExprGlobalVariable{Variable: 3},
		7:  ir.Literal{Value: ir.LiteralF32(0.5)},
		8:  ir.Literal{Value: ir.LiteralI32(math.MinInt32)},
		9:  ir.ExprBinary{Op: ir.BinaryAdd, Left: 1, Right: 7},
		10: ir.ExprUnary{Op: ir.UnaryNegate, Expr: 2},
		11: ir.ExprBinary{Op: ir.BinaryLess, Left: 1, Right: 7},
		12: ir.ExprSelect{Condition: 11, Accept: 1, Reject: 7},
		13: ir.ExprSplat{Size: ir.Vec4, Value: 1},
		14: ir.ExprSwizzle{Size: ir.Vec2, Vector: 13, Pattern: [4]ir.SwizzleComponent{ir.SwizzleW, ir.SwizzleX}},
		15: ir.ExprImageSample{Image: 3, Sampler: 4, Coordinate: 0, Level: ir.SampleLevelAuto{}},
		16: ir.ExprImageSample{Image: 3, Sampler: 4, Coordinate: 0, Level: ir.SampleLevelExact{Level: 7}},
		17: ir.ExprImageSample{Image: 5, Sampler: 6, Coordinate: 0, Level: ir.SampleLevelZero{}, DepthRef: exprPtr(1)},
		18: ir.ExprImageSample{Image: 3, Sampler: 4, Coordinate: 0, Gather: &gatherY, Level: ir.SampleLevelZero{}},
		19: ir.ExprImageLoad{Image: 3, Coordinate: 0, Level: exprPtr(2)},
		20: ir.ExprImageQuery{Image: 3, Query: ir.ImageQuerySize{}},
		21: ir.ExprDerivative{Axis: ir.DerivativeX, Control: ir.DerivativeFine, Expr: 1},
		22: ir.ExprRelational{Fun: ir.RelationalIsNan, Argument: 1},
		23: ir.ExprMath{Fun: ir.MathClamp, Arg: 1, Arg1: exprPtr(7), Arg2: exprPtr(7)},
		24: ir.ExprAs{Expr: 1, Kind: ir.ScalarSint, Convert: &four},
		25: ir.ExprAs{Expr: 0, Kind: ir.ScalarUint},
		26: ir.ExprMath{Fun: ir.MathOuter, Arg: 0, Arg1: exprPtr(0)},
		27: ir.ExprZeroValue{Type: 1},
		28: ir.ExprCompose{Type: 8, Components: []ir.ExpressionHandle{1, 7}},
		29: ir.ExprCallResult{Function: 0},
		30: ir.Literal{Value: ir.LiteralF32(float32(math.Inf(1)))},
		31: ir.Literal{Value: ir.LiteralAbstractFloat(2)},
		32: ir.ExprRelational{Fun: ir.RelationalIsInf, Argument: 1},
		33: ir.ExprImageSample{Image: 3, Sampler: 4, Coordinate: 0, Level: ir.SampleLevelAuto{}, ClampToEdge: true},
		34: ir.ExprImageSample{Image: 3, Sampler: 4, Coordinate: 0, Level: ir.SampleLevelBias{Bias: 7}, Offset: exprPtr(0)},
		35: ir.ExprDerivative{Axis: ir.DerivativeWidth, Expr: 1},
		36: ir.ExprImageQuery{Image: 3, Query: ir.ImageQueryNumLevels{}},
		37: ir.Literal{Value: ir.LiteralU64(7)},
		38: ir.ExprMath{Fun: ir.MathInverse, Arg: 0},
	}
	fn := &ir.Function{
		Arguments: []ir.FunctionArgument{
			{Name: "uv", Type: 8},
			{Name: "x", Type: 0},
			{Name: "n", Type: 2},
		},
	}
	for _, k := range kinds {
		fn.Expressions = append(fn.Expressions, ir.Expression{Kind: k})
	}
	return module, fn
}

func newExpressionWriter(module *ir.Module, fn *ir.Function) *Writer {
	w := newWriter(module, DefaultWriterOptions())
	w.registerNames()
	w.currentFunction = fn
	w.namedExpressions = make(map[ir.ExpressionHandle]string)
	w.argNames = []string{"uv", "x", "n"}
	return w
}

func TestWriteExpression(t *testing.T) {
	module, fn := expressionFixture()
	w := newExpressionWriter(module, fn)

	tests := []struct {
		handle ir.ExpressionHandle
		want   string
	}{
		{8, "i32(-2147483647 - 1)"},
		{9, "(x + 0.5f)"},
		{10, "(-n)"},
		{12, "select(0.5f, x, (x < 0.5f))"},
		{13, "vec4(x)"},
		{14, "vec4(x).wx"},
		{15, "textureSample(t, s, uv)"},
		{16, "textureSampleLevel(t, s, uv, 0.5f)"},
		{17, "textureSampleCompareLevel(d, sc, uv, x)"},
		{18, "textureGather(1, t, s, uv)"},
		{19, "textureLoad(t, uv, n)"},
		{20, "textureDimensions(t)"},
		{21, "dpdxFine(x)"},
		{22, "(x != x)"},
		{23, "clamp(x, 0.5f, 0.5f)"},
		{24, "i32(x)"},
		{25, "bitcast<vec2<u32>>(uv)"},
		{27, "vec4<f32>()"},
		{28, "vec2<f32>(x, 0.5f)"},
		{30, "bitcast<f32>(2139095040u)"},
		{31, "2.0"},
		{32, "(((x - x) != (x - x)) & (x == x))"},
		{33, "textureSampleBaseClampToEdge(t, s, uv)"},
		{34, "textureSampleBias(t, s, uv, 0.5f, uv)"},
		{35, "fwidth(x)"},
		{36, "textureNumLevels(t)"},
		{37, "7lu"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := w.writeExpression(tt.handle)
			if err != nil {
				t.Fatalf("writeExpression(%d): %v", tt.handle, err)
			}
			if got != tt.want {
				t.Errorf("writeExpression(%d) = %q, want %q", tt.handle, got, tt.want)
			}
		})
	}
}

func TestWriteExpression_Errors(t *testing.T) {
	module, fn := expressionFixture()
	w := newExpressionWriter(module, fn)

	tests := []struct {
		handle ir.ExpressionHandle
		want   string
	}{
		{26, "no WGSL equivalent"},
		{29, "used before the call"},
		{38, "no WGSL equivalent"},
		{99, "invalid expression handle"},
	}
	for _, tt := range tests {
		_, err := w.writeExpression(tt.handle)
		if err == nil {
			t.Errorf("writeExpression(%d): expected an error", tt.handle)
			continue
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("writeExpression(%d) error = %q, want it to contain %q", tt.handle, err, tt.want)
		}
	}
}

func TestWriteExpression_NamedWins(t *testing.T) {
	module, fn := expressionFixture()
	w := newExpressionWriter(module, fn)
	w.namedExpressions[9] = "_e9"

	got, err := w.writeExpression(9)
	if err != nil {
		t.Fatal(err)
	}
	if got != "_e9" {
		t.Errorf("got %q, want the bound name", got)
	}
}

func TestLiterals(t *testing.T) {
	tests := []struct {
		value ir.ScalarValue
		width uint8
		want  string
	}{
		{ir.ScalarValue{Kind: ir.ScalarBool, Bits: 1}, 1, "true"},
		{ir.ScalarValue{Kind: ir.ScalarSint, Bits: uint64(uint32(0xFFFFFFFF))}, 4, "-1i"},
		{ir.ScalarValue{Kind: ir.ScalarUint, Bits: 42}, 4, "42u"},
		{ir.ScalarValue{Kind: ir.ScalarFloat, Bits: uint64(math.Float32bits(0.25))}, 4, "0.25f"},
		{ir.ScalarValue{Kind: ir.ScalarFloat, Bits: math.Float64bits(3)}, 8, "3.0lf"},
		{ir.ScalarValue{Kind: ir.ScalarFloat, Bits: 0x7FC00000}, 4, "bitcast<f32>(2143289344u)"},
	}
	for _, tt := range tests {
		if got := scalarValueString(tt.value, tt.width); got != tt.want {
			t.Errorf("scalarValueString(%+v, %d) = %q, want %q", tt.value, tt.width, got, tt.want)
		}
	}
}

func TestEscapeKeyword(t *testing.T) {
	tests := map[string]string{
		"":        "_",
		"loop":    "loop_",
		"texture": "texture",
		"vec4":    "vec4_",
		"__x":     "v__x",
		"color":   "color",
	}
	for in, want := range tests {
		if got := escapeKeyword(in); got != want {
			t.Errorf("escapeKeyword(%q) = %q, want %q", in, got, want)
		}
	}
}
