package ir

// Expression is an entry of a function's expression arena.
type Expression struct {
	Kind ExpressionKind
}

// ExpressionKind is one expression variant.
type ExpressionKind interface {
	expressionKind()
}

// Literal is a literal scalar.
type Literal struct {
	Value LiteralValue
}

// LiteralValue is the payload of a Literal.
type LiteralValue interface {
	literalValue()
}

type (
	LiteralF64           float64
	LiteralF32           float32
	LiteralU32           uint32
	LiteralI32           int32
	LiteralU64           uint64
	LiteralI64           int64
	LiteralBool          bool
	LiteralAbstractInt   int64
	LiteralAbstractFloat float64
)

func (LiteralF64) literalValue()           {}
func (LiteralF32) literalValue()           {}
func (LiteralU32) literalValue()           {}
func (LiteralI32) literalValue()           {}
func (LiteralU64) literalValue()           {}
func (LiteralI64) literalValue()           {}
func (LiteralBool) literalValue()          {}
func (LiteralAbstractInt) literalValue()   {}
func (LiteralAbstractFloat) literalValue() {}

// ExprConstant reads a module constant.
type ExprConstant struct {
	Constant ConstantHandle
}

// ExprZeroValue is the zero value of a type.
type ExprZeroValue struct {
	Type TypeHandle
}

// ExprCompose builds a vector, matrix, array or struct.
type ExprCompose struct {
	Type       TypeHandle
	Components []ExpressionHandle
}

// ExprAccess indexes with a runtime index.
type ExprAccess struct {
	Base  ExpressionHandle
	Index ExpressionHandle
}

// ExprAccessIndex indexes with a constant index, including struct members.
type ExprAccessIndex struct {
	Base  ExpressionHandle
	Index uint32
}

// ExprSplat broadcasts a scalar to a vector.
type ExprSplat struct {
	Size  VectorSize
	Value ExpressionHandle
}

// ExprSwizzle selects vector components. Only the first Size entries of
// Pattern are meaningful.
type ExprSwizzle struct {
	Size    VectorSize
	Vector  ExpressionHandle
	Pattern [4]SwizzleComponent
}

// SwizzleComponent is one of x, y, z, w.
type SwizzleComponent uint8

const (
	SwizzleX SwizzleComponent = iota
	SwizzleY
	SwizzleZ
	SwizzleW
)

// ExprFunctionArgument reads a parameter.
type ExprFunctionArgument struct {
	Index uint32
}

// ExprGlobalVariable references a global variable.
type ExprGlobalVariable struct {
	Variable GlobalVariableHandle
}

// ExprLocalVariable references a local variable.
type ExprLocalVariable struct {
	Variable uint32
}

// ExprLoad reads through a reference.
type ExprLoad struct {
	Pointer ExpressionHandle
}

// ExprImageSample samples a texture.
type ExprImageSample struct {
	Image       ExpressionHandle
	Sampler     ExpressionHandle
	Gather      *SwizzleComponent
	Coordinate  ExpressionHandle
	ArrayIndex  *ExpressionHandle
	Offset      *ExpressionHandle
	Level       SampleLevel
	DepthRef    *ExpressionHandle
	ClampToEdge bool
}

// SampleLevel selects the mip level of a sample.
type SampleLevel interface {
	sampleLevel()
}

type (
	SampleLevelAuto     struct{}
	SampleLevelZero     struct{}
	SampleLevelExact    struct{ Level ExpressionHandle }
	SampleLevelBias     struct{ Bias ExpressionHandle }
	SampleLevelGradient struct{ X, Y ExpressionHandle }
)

func (SampleLevelAuto) sampleLevel()     {}
func (SampleLevelZero) sampleLevel()     {}
func (SampleLevelExact) sampleLevel()    {}
func (SampleLevelBias) sampleLevel()     {}
func (SampleLevelGradient) sampleLevel() {}

// ExprImageLoad fetches a texel.
type ExprImageLoad struct {
	Image      ExpressionHandle
	Coordinate ExpressionHandle
	ArrayIndex *ExpressionHandle
	Sample     *ExpressionHandle
	Level      *ExpressionHandle
}

// ExprImageQuery queries texture dimensions or counts.
type ExprImageQuery struct {
	Image ExpressionHandle
	Query ImageQuery
}

// ImageQuery is the question asked by ExprImageQuery.
type ImageQuery interface {
	imageQuery()
}

type (
	ImageQuerySize       struct{ Level *ExpressionHandle }
	ImageQueryNumLevels  struct{}
	ImageQueryNumLayers  struct{}
	ImageQueryNumSamples struct{}
)

func (ImageQuerySize) imageQuery()       {}
func (ImageQueryNumLevels) imageQuery()  {}
func (ImageQueryNumLayers) imageQuery()  {}
func (ImageQueryNumSamples) imageQuery() {}

// ExprUnary applies a unary operator.
type ExprUnary struct {
	Op   UnaryOperator
	Expr ExpressionHandle
}

// UnaryOperator is -, ! or ~.
type UnaryOperator uint8

const (
	UnaryNegate UnaryOperator = iota
	UnaryLogicalNot
	UnaryBitwiseNot
)

// ExprBinary applies a binary operator.
type ExprBinary struct {
	Op    BinaryOperator
	Left  ExpressionHandle
	Right ExpressionHandle
}

// BinaryOperator is an infix operator.
type BinaryOperator uint8

const (
	BinaryAdd BinaryOperator = iota
	BinarySubtract
	BinaryMultiply
	BinaryDivide
	BinaryModulo
	BinaryEqual
	BinaryNotEqual
	BinaryLess
	BinaryLessEqual
	BinaryGreater
	BinaryGreaterEqual
	BinaryAnd
	BinaryExclusiveOr
	BinaryInclusiveOr
	BinaryLogicalAnd
	BinaryLogicalOr
	BinaryShiftLeft
	BinaryShiftRight
)

// IsComparison reports whether op yields booleans.
func (op BinaryOperator) IsComparison() bool {
	return op >= BinaryEqual && op <= BinaryGreaterEqual
}

// ExprSelect picks Accept when Condition holds, else Reject.
type ExprSelect struct {
	Condition ExpressionHandle
	Accept    ExpressionHandle
	Reject    ExpressionHandle
}

// ExprDerivative is dpdx, dpdy or fwidth.
type ExprDerivative struct {
	Axis    DerivativeAxis
	Control DerivativeControl
	Expr    ExpressionHandle
}

// DerivativeAxis selects the derivative function.
type DerivativeAxis uint8

const (
	DerivativeX DerivativeAxis = iota
	DerivativeY
	DerivativeWidth
)

// DerivativeControl selects coarse or fine evaluation.
type DerivativeControl uint8

const (
	DerivativeNone DerivativeControl = iota
	DerivativeCoarse
	DerivativeFine
)

// ExprRelational is all, any, isnan or isinf.
type ExprRelational struct {
	Fun      RelationalFunction
	Argument ExpressionHandle
}

// RelationalFunction is a boolean reduction or test.
type RelationalFunction uint8

const (
	RelationalAll RelationalFunction = iota
	RelationalAny
	RelationalIsNan
	RelationalIsInf
)

// ExprMath calls a built-in math function.
type ExprMath struct {
	Fun  MathFunction
	Arg  ExpressionHandle
	Arg1 *ExpressionHandle
	Arg2 *ExpressionHandle
	Arg3 *ExpressionHandle
}

// MathFunction is a built-in math function.
type MathFunction uint8

const (
	MathAbs MathFunction = iota
	MathMin
	MathMax
	MathClamp
	MathSaturate
	MathCos
	MathCosh
	MathSin
	MathSinh
	MathTan
	MathTanh
	MathAcos
	MathAsin
	MathAtan
	MathAtan2
	MathAsinh
	MathAcosh
	MathAtanh
	MathRadians
	MathDegrees
	MathCeil
	MathFloor
	MathRound
	MathFract
	MathTrunc
	MathModf
	MathFrexp
	MathLdexp
	MathExp
	MathExp2
	MathLog
	MathLog2
	MathPow
	MathDot
	MathOuter
	MathCross
	MathDistance
	MathLength
	MathNormalize
	MathFaceForward
	MathReflect
	MathRefract
	MathSign
	MathFma
	MathMix
	MathStep
	MathSmoothStep
	MathSqrt
	MathInverseSqrt
	MathInverse
	MathTranspose
	MathDeterminant
	MathQuantizeF16
	MathCountTrailingZeros
	MathCountLeadingZeros
	MathCountOneBits
	MathReverseBits
	MathExtractBits
	MathInsertBits
	MathFirstTrailingBit
	MathFirstLeadingBit
	MathPack4x8snorm
	MathPack4x8unorm
	MathPack2x16snorm
	MathPack2x16unorm
	MathPack2x16float
	MathUnpack4x8snorm
	MathUnpack4x8unorm
	MathUnpack2x16snorm
	MathUnpack2x16unorm
	MathUnpack2x16float
)

// ExprAs converts (Convert set) or bitcasts (Convert nil) to Kind.
type ExprAs struct {
	Expr    ExpressionHandle
	Kind    ScalarKind
	Convert *uint8
}

// ExprCallResult is the value returned by a StmtCall.
type ExprCallResult struct {
	Function FunctionHandle
}

// ExprAtomicResult is the value returned by a StmtAtomic.
type ExprAtomicResult struct {
	Type TypeHandle
}

// ExprArrayLength is the length of a runtime-sized array.
type ExprArrayLength struct {
	Array ExpressionHandle
}

func (Literal) expressionKind()              {}
func (ExprConstant) expressionKind()         {}
func (ExprZeroValue) expressionKind()        {}
func (ExprCompose) expressionKind()          {}
func (ExprAccess) expressionKind()           {}
func (ExprAccessIndex) expressionKind()      {}
func (ExprSplat) expressionKind()            {}
func (ExprSwizzle) expressionKind()          {}
func (ExprFunctionArgument) expressionKind() {}
func (ExprGlobalVariable) expressionKind()   {}
func (ExprLocalVariable) expressionKind()    {}
func (ExprLoad) expressionKind()             {}
func (ExprImageSample) expressionKind()      {}
func (ExprImageLoad) expressionKind()        {}
func (ExprImageQuery) expressionKind()       {}
func (ExprUnary) expressionKind()            {}
func (ExprBinary) expressionKind()           {}
func (ExprSelect) expressionKind()           {}
func (ExprDerivative) expressionKind()       {}
func (ExprRelational) expressionKind()       {}
func (ExprMath) expressionKind()             {}
func (ExprAs) expressionKind()               {}
func (ExprCallResult) expressionKind()       {}
func (ExprAtomicResult) expressionKind()     {}
func (ExprArrayLength) expressionKind()      {}
