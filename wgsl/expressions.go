package wgsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/shaderkit/ir"
)

// writeExpression returns the WGSL text of an expression. Baked and named
// expressions are referred to by name.
func (w *Writer) writeExpression(handle ir.ExpressionHandle) (string, error) {
	if name, ok := w.namedExpressions[handle]; ok {
		return name, nil
	}
	if w.currentFunction == nil {
		return "", fmt.Errorf("no current function context")
	}
	if int(handle) >= len(w.currentFunction.Expressions) {
		return "", fmt.Errorf("invalid expression handle: %d", handle)
	}
	s, err := w.writeExpressionKind(w.currentFunction.Expressions[handle].Kind, handle)
	if err != nil {
		return "", fmt.Errorf("expression %d: %w", handle, err)
	}
	return s, nil
}

//nolint:gocyclo,cyclop,funlen // one case per expression variant
func (w *Writer) writeExpressionKind(kind ir.ExpressionKind, handle ir.ExpressionHandle) (string, error) {
	switch k := kind.(type) {
	case ir.Literal:
		return writeLiteral(k)
	case ir.ExprConstant:
		if int(k.Constant) >= len(w.module.Constants) {
			return "", fmt.Errorf("constant %d does not exist", k.Constant)
		}
		return w.names[nameKey{kind: nameKeyConstant, handle1: uint32(k.Constant)}], nil
	case ir.ExprZeroValue:
		typeName, err := w.typeName(k.Type)
		if err != nil {
			return "", err
		}
		return typeName + "()", nil
	case ir.ExprCompose:
		typeName, err := w.typeName(k.Type)
		if err != nil {
			return "", err
		}
		args, err := w.writeExpressions(k.Components)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s(%s)", typeName, args), nil
	case ir.ExprAccess:
		base, err := w.writeExpression(k.Base)
		if err != nil {
			return "", err
		}
		index, err := w.writeExpression(k.Index)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s[%s]", base, index), nil
	case ir.ExprAccessIndex:
		return w.writeAccessIndex(k)
	case ir.ExprSplat:
		value, err := w.writeExpression(k.Value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("vec%d(%s)", k.Size, value), nil
	case ir.ExprSwizzle:
		vector, err := w.writeExpression(k.Vector)
		if err != nil {
			return "", err
		}
		var b strings.Builder
		for i := 0; i < int(k.Size) && i < len(k.Pattern); i++ {
			b.WriteByte("xyzw"[k.Pattern[i]&3])
		}
		return vector + "." + b.String(), nil
	case ir.ExprFunctionArgument:
		if int(k.Index) >= len(w.argNames) {
			return "", fmt.Errorf("argument %d does not exist", k.Index)
		}
		if w.isReference(handle) {
			return "(*" + w.argNames[k.Index] + ")", nil
		}
		return w.argNames[k.Index], nil
	case ir.ExprGlobalVariable:
		if int(k.Variable) >= len(w.module.GlobalVariables) {
			return "", fmt.Errorf("global variable %d does not exist", k.Variable)
		}
		return w.names[nameKey{kind: nameKeyGlobalVariable, handle1: uint32(k.Variable)}], nil
	case ir.ExprLocalVariable:
		if int(k.Variable) >= len(w.localNames) {
			return "", fmt.Errorf("local variable %d does not exist", k.Variable)
		}
		return w.localNames[k.Variable], nil
	case ir.ExprLoad:
		// References load implicitly.
		return w.writeExpression(k.Pointer)
	case ir.ExprImageSample:
		return w.writeImageSample(k)
	case ir.ExprImageLoad:
		return w.writeImageLoad(k)
	case ir.ExprImageQuery:
		return w.writeImageQuery(k)
	case ir.ExprUnary:
		operand, err := w.writeExpression(k.Expr)
		if err != nil {
			return "", err
		}
		op, ok := unaryOperators[k.Op]
		if !ok {
			return "", fmt.Errorf("unsupported unary operator %d", k.Op)
		}
		return fmt.Sprintf("(%s%s)", op, operand), nil
	case ir.ExprBinary:
		left, err := w.writeExpression(k.Left)
		if err != nil {
			return "", err
		}
		right, err := w.writeExpression(k.Right)
		if err != nil {
			return "", err
		}
		op, ok := binaryOperators[k.Op]
		if !ok {
			return "", fmt.Errorf("unsupported binary operator %d", k.Op)
		}
		return fmt.Sprintf("(%s %s %s)", left, op, right), nil
	case ir.ExprSelect:
		args, err := w.writeExpressions([]ir.ExpressionHandle{k.Reject, k.Accept, k.Condition})
		if err != nil {
			return "", err
		}
		return "select(" + args + ")", nil
	case ir.ExprDerivative:
		return w.writeDerivative(k)
	case ir.ExprRelational:
		return w.writeRelational(k)
	case ir.ExprMath:
		return w.writeMath(k)
	case ir.ExprAs:
		return w.writeAs(k)
	case ir.ExprCallResult:
		return "", fmt.Errorf("result of call to function %d used before the call", k.Function)
	case ir.ExprAtomicResult:
		return "", fmt.Errorf("atomic result used before the atomic operation")
	case ir.ExprArrayLength:
		array, err := w.writeExpression(k.Array)
		if err != nil {
			return "", err
		}
		return "arrayLength(&" + array + ")", nil
	case nil:
		return "", fmt.Errorf("expression %d has no kind", handle)
	default:
		return "", fmt.Errorf("unsupported expression %T", kind)
	}
}

func (w *Writer) writeExpressions(handles []ir.ExpressionHandle) (string, error) {
	parts := make([]string, len(handles))
	for i, h := range handles {
		s, err := w.writeExpression(h)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return strings.Join(parts, ", "), nil
}

func writeLiteral(lit ir.Literal) (string, error) {
	switch v := lit.Value.(type) {
	case ir.LiteralF64:
		return f64Literal(float64(v)), nil
	case ir.LiteralF32:
		return f32Literal(float32(v)), nil
	case ir.LiteralU32:
		return strconv.FormatUint(uint64(v), 10) + "u", nil
	case ir.LiteralI32:
		return i32Literal(int32(v)), nil
	case ir.LiteralU64:
		return strconv.FormatUint(uint64(v), 10) + "lu", nil
	case ir.LiteralI64:
		return strconv.FormatInt(int64(v), 10) + "li", nil
	case ir.LiteralBool:
		return strconv.FormatBool(bool(v)), nil
	case ir.LiteralAbstractInt:
		return strconv.FormatInt(int64(v), 10), nil
	case ir.LiteralAbstractFloat:
		return abstractFloatLiteral(float64(v)), nil
	default:
		return "", fmt.Errorf("unsupported literal %T", lit.Value)
	}
}

var unaryOperators = map[ir.UnaryOperator]string{
	ir.UnaryNegate:     "-",
	ir.UnaryLogicalNot: "!",
	ir.UnaryBitwiseNot: "~",
}

var binaryOperators = map[ir.BinaryOperator]string{
	ir.BinaryAdd:          "+",
	ir.BinarySubtract:     "-",
	ir.BinaryMultiply:     "*",
	ir.BinaryDivide:       "/",
	ir.BinaryModulo:       "%",
	ir.BinaryEqual:        "==",
	ir.BinaryNotEqual:     "!=",
	ir.BinaryLess:         "<",
	ir.BinaryLessEqual:    "<=",
	ir.BinaryGreater:      ">",
	ir.BinaryGreaterEqual: ">=",
	ir.BinaryAnd:          "&",
	ir.BinaryExclusiveOr:  "^",
	ir.BinaryInclusiveOr:  "|",
	ir.BinaryLogicalAnd:   "&&",
	ir.BinaryLogicalOr:    "||",
	ir.BinaryShiftLeft:    "<<",
	ir.BinaryShiftRight:   ">>",
}

func (w *Writer) writeAccessIndex(a ir.ExprAccessIndex) (string, error) {
	base, err := w.writeExpression(a.Base)
	if err != nil {
		return "", err
	}
	res, err := ir.ResolveExpressionType(w.module, w.currentFunction, a.Base)
	if err != nil {
		return "", err
	}
	handle := res.Handle
	if ptr, ok := res.Inner(w.module).(ir.PointerType); ok {
		handle = &ptr.Base
	}
	if handle != nil && int(*handle) < len(w.module.Types) {
		if st, ok := w.module.Types[*handle].Inner.(ir.StructType); ok {
			if int(a.Index) >= len(st.Members) {
				return "", fmt.Errorf("struct member %d does not exist", a.Index)
			}
			member := w.names[nameKey{kind: nameKeyStructMember, handle1: uint32(*handle), handle2: a.Index}]
			return base + "." + member, nil
		}
	}
	return fmt.Sprintf("%s[%d]", base, a.Index), nil
}

// valueInner resolves an expression to the shape of the value it denotes,
// looking through pointers.
func (w *Writer) valueInner(h ir.ExpressionHandle) (ir.TypeInner, error) {
	res, err := ir.ResolveExpressionType(w.module, w.currentFunction, h)
	if err != nil {
		return nil, err
	}
	inner := res.Inner(w.module)
	switch p := inner.(type) {
	case ir.PointerType:
		if int(p.Base) < len(w.module.Types) {
			return w.module.Types[p.Base].Inner, nil
		}
		return nil, fmt.Errorf("pointer base %d does not exist", p.Base)
	case ir.ValuePointerType:
		if p.Size != nil {
			return ir.VectorType{Size: *p.Size, Scalar: p.Scalar}, nil
		}
		return p.Scalar, nil
	}
	return inner, nil
}

func (w *Writer) imageOf(h ir.ExpressionHandle) (ir.ImageType, error) {
	inner, err := w.valueInner(h)
	if err != nil {
		return ir.ImageType{}, err
	}
	img, ok := inner.(ir.ImageType)
	if !ok {
		return ir.ImageType{}, fmt.Errorf("expected an image, got %T", inner)
	}
	return img, nil
}

//nolint:gocyclo,cyclop,funlen // one case per sampling form
func (w *Writer) writeImageSample(s ir.ExprImageSample) (string, error) {
	img, err := w.imageOf(s.Image)
	if err != nil {
		return "", err
	}
	depth := img.Class == ir.ImageClassDepth

	var args []string
	add := func(h ir.ExpressionHandle) error {
		text, err := w.writeExpression(h)
		if err != nil {
			return err
		}
		args = append(args, text)
		return nil
	}

	var fun string
	if s.Gather != nil {
		fun = "textureGather"
		if s.DepthRef != nil {
			fun = "textureGatherCompare"
		} else if !depth {
			args = append(args, strconv.Itoa(int(*s.Gather)))
		}
	}
	for _, h := range []ir.ExpressionHandle{s.Image, s.Sampler, s.Coordinate} {
		if err := add(h); err != nil {
			return "", err
		}
	}
	if s.ClampToEdge {
		return "textureSampleBaseClampToEdge(" + strings.Join(args, ", ") + ")", nil
	}
	if s.ArrayIndex != nil {
		if err := add(*s.ArrayIndex); err != nil {
			return "", err
		}
	}

	switch {
	case s.Gather != nil:
		if s.DepthRef != nil {
			if err := add(*s.DepthRef); err != nil {
				return "", err
			}
		}
	case s.DepthRef != nil:
		switch s.Level.(type) {
		case ir.SampleLevelZero:
			fun = "textureSampleCompareLevel"
		case ir.SampleLevelAuto, nil:
			fun = "textureSampleCompare"
		default:
			return "", fmt.Errorf("depth comparison with %T level", s.Level)
		}
		if err := add(*s.DepthRef); err != nil {
			return "", err
		}
	default:
		switch level := s.Level.(type) {
		case ir.SampleLevelAuto, nil:
			fun = "textureSample"
		case ir.SampleLevelZero:
			fun = "textureSampleLevel"
			if depth {
				args = append(args, "0i")
			} else {
				args = append(args, "0.0")
			}
		case ir.SampleLevelExact:
			fun = "textureSampleLevel"
			if err := add(level.Level); err != nil {
				return "", err
			}
		case ir.SampleLevelBias:
			fun = "textureSampleBias"
			if err := add(level.Bias); err != nil {
				return "", err
			}
		case ir.SampleLevelGradient:
			fun = "textureSampleGrad"
			if err := add(level.X); err != nil {
				return "", err
			}
			if err := add(level.Y); err != nil {
				return "", err
			}
		default:
			return "", fmt.Errorf("unsupported sample level %T", s.Level)
		}
	}

	if s.Offset != nil {
		if err := add(*s.Offset); err != nil {
			return "", err
		}
	}
	return fun + "(" + strings.Join(args, ", ") + ")", nil
}

func (w *Writer) writeImageLoad(l ir.ExprImageLoad) (string, error) {
	img, err := w.imageOf(l.Image)
	if err != nil {
		return "", err
	}
	handles := []ir.ExpressionHandle{l.Image, l.Coordinate}
	if l.ArrayIndex != nil {
		handles = append(handles, *l.ArrayIndex)
	}
	switch {
	case l.Sample != nil:
		handles = append(handles, *l.Sample)
	case l.Level != nil:
		handles = append(handles, *l.Level)
	}
	args, err := w.writeExpressions(handles)
	if err != nil {
		return "", err
	}
	if l.Sample == nil && l.Level == nil && img.Class != ir.ImageClassStorage && !img.Multisampled {
		args += ", 0i"
	}
	return "textureLoad(" + args + ")", nil
}

func (w *Writer) writeImageQuery(q ir.ExprImageQuery) (string, error) {
	image, err := w.writeExpression(q.Image)
	if err != nil {
		return "", err
	}
	switch query := q.Query.(type) {
	case ir.ImageQuerySize:
		if query.Level != nil {
			level, err := w.writeExpression(*query.Level)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("textureDimensions(%s, %s)", image, level), nil
		}
		return fmt.Sprintf("textureDimensions(%s)", image), nil
	case ir.ImageQueryNumLevels:
		return fmt.Sprintf("textureNumLevels(%s)", image), nil
	case ir.ImageQueryNumLayers:
		return fmt.Sprintf("textureNumLayers(%s)", image), nil
	case ir.ImageQueryNumSamples:
		return fmt.Sprintf("textureNumSamples(%s)", image), nil
	default:
		return "", fmt.Errorf("unsupported image query %T", q.Query)
	}
}

func (w *Writer) writeDerivative(d ir.ExprDerivative) (string, error) {
	arg, err := w.writeExpression(d.Expr)
	if err != nil {
		return "", err
	}
	var fun string
	switch d.Axis {
	case ir.DerivativeX:
		fun = "dpdx"
	case ir.DerivativeY:
		fun = "dpdy"
	case ir.DerivativeWidth:
		fun = "fwidth"
	default:
		return "", fmt.Errorf("unsupported derivative axis %d", d.Axis)
	}
	switch d.Control {
	case ir.DerivativeCoarse:
		fun += "Coarse"
	case ir.DerivativeFine:
		fun += "Fine"
	}
	return fmt.Sprintf("%s(%s)", fun, arg), nil
}

func (w *Writer) writeRelational(r ir.ExprRelational) (string, error) {
	arg, err := w.writeExpression(r.Argument)
	if err != nil {
		return "", err
	}
	switch r.Fun {
	case ir.RelationalAll:
		return fmt.Sprintf("all(%s)", arg), nil
	case ir.RelationalAny:
		return fmt.Sprintf("any(%s)", arg), nil
	case ir.RelationalIsNan:
		return fmt.Sprintf("(%s != %s)", arg, arg), nil
	case ir.RelationalIsInf:
		// Infinity minus itself is NaN; NaN fails the self-comparison.
		return fmt.Sprintf("(((%s - %s) != (%s - %s)) & (%s == %s))", arg, arg, arg, arg, arg, arg), nil
	default:
		return "", fmt.Errorf("unsupported relational function %d", r.Fun)
	}
}

var mathNames = map[ir.MathFunction]string{
	ir.MathAbs:                "abs",
	ir.MathMin:                "min",
	ir.MathMax:                "max",
	ir.MathClamp:              "clamp",
	ir.MathSaturate:           "saturate",
	ir.MathCos:                "cos",
	ir.MathCosh:               "cosh",
	ir.MathSin:                "sin",
	ir.MathSinh:               "sinh",
	ir.MathTan:                "tan",
	ir.MathTanh:               "tanh",
	ir.MathAcos:               "acos",
	ir.MathAsin:               "asin",
	ir.MathAtan:               "atan",
	ir.MathAtan2:              "atan2",
	ir.MathAsinh:              "asinh",
	ir.MathAcosh:              "acosh",
	ir.MathAtanh:              "atanh",
	ir.MathRadians:            "radians",
	ir.MathDegrees:            "degrees",
	ir.MathCeil:               "ceil",
	ir.MathFloor:              "floor",
	ir.MathRound:              "round",
	ir.MathFract:              "fract",
	ir.MathTrunc:              "trunc",
	ir.MathModf:               "modf",
	ir.MathFrexp:              "frexp",
	ir.MathLdexp:              "ldexp",
	ir.MathExp:                "exp",
	ir.MathExp2:               "exp2",
	ir.MathLog:                "log",
	ir.MathLog2:               "log2",
	ir.MathPow:                "pow",
	ir.MathDot:                "dot",
	ir.MathCross:              "cross",
	ir.MathDistance:           "distance",
	ir.MathLength:             "length",
	ir.MathNormalize:          "normalize",
	ir.MathFaceForward:        "faceForward",
	ir.MathReflect:            "reflect",
	ir.MathRefract:            "refract",
	ir.MathSign:               "sign",
	ir.MathFma:                "fma",
	ir.MathMix:                "mix",
	ir.MathStep:               "step",
	ir.MathSmoothStep:         "smoothstep",
	ir.MathSqrt:               "sqrt",
	ir.MathInverseSqrt:        "inverseSqrt",
	ir.MathTranspose:          "transpose",
	ir.MathDeterminant:        "determinant",
	ir.MathQuantizeF16:        "quantizeToF16",
	ir.MathCountTrailingZeros: "countTrailingZeros",
	ir.MathCountLeadingZeros:  "countLeadingZeros",
	ir.MathCountOneBits:       "countOneBits",
	ir.MathReverseBits:        "reverseBits",
	ir.MathExtractBits:        "extractBits",
	ir.MathInsertBits:         "insertBits",
	ir.MathFirstTrailingBit:   "firstTrailingBit",
	ir.MathFirstLeadingBit:    "firstLeadingBit",
	ir.MathPack4x8snorm:       "pack4x8snorm",
	ir.MathPack4x8unorm:       "pack4x8unorm",
	ir.MathPack2x16snorm:      "pack2x16snorm",
	ir.MathPack2x16unorm:      "pack2x16unorm",
	ir.MathPack2x16float:      "pack2x16float",
	ir.MathUnpack4x8snorm:     "unpack4x8snorm",
	ir.MathUnpack4x8unorm:     "unpack4x8unorm",
	ir.MathUnpack2x16snorm:    "unpack2x16snorm",
	ir.MathUnpack2x16unorm:    "unpack2x16unorm",
	ir.MathUnpack2x16float:    "unpack2x16float",
}

func (w *Writer) writeMath(m ir.ExprMath) (string, error) {
	name, ok := mathNames[m.Fun]
	if !ok {
		// Outer and Inverse have no WGSL built-in.
		return "", fmt.Errorf("math function %d has no WGSL equivalent", m.Fun)
	}
	handles := []ir.ExpressionHandle{m.Arg}
	for _, h := range []*ir.ExpressionHandle{m.Arg1, m.Arg2, m.Arg3} {
		if h != nil {
			handles = append(handles, *h)
		}
	}
	args, err := w.writeExpressions(handles)
	if err != nil {
		return "", err
	}
	return name + "(" + args + ")", nil
}

func (w *Writer) writeAs(a ir.ExprAs) (string, error) {
	operand, err := w.writeExpression(a.Expr)
	if err != nil {
		return "", err
	}
	inner, err := w.valueInner(a.Expr)
	if err != nil {
		return "", err
	}
	width := uint8(4)
	if a.Convert != nil {
		width = *a.Convert
	}
	if a.Kind == ir.ScalarBool {
		width = 1
	}
	target := scalarName(ir.ScalarType{Kind: a.Kind, Width: width})

	var typeName string
	switch t := inner.(type) {
	case ir.ScalarType:
		typeName = target
	case ir.VectorType:
		typeName = fmt.Sprintf("vec%d<%s>", t.Size, target)
	case ir.MatrixType:
		typeName = fmt.Sprintf("mat%dx%d<%s>", t.Columns, t.Rows, target)
	default:
		return "", fmt.Errorf("cannot convert a value of type %T", inner)
	}
	if a.Convert == nil {
		return fmt.Sprintf("bitcast<%s>(%s)", typeName, operand), nil
	}
	return fmt.Sprintf("%s(%s)", typeName, operand), nil
}

// countReferences returns, per expression, how many expressions and
// statements read it, and which expressions some Emit statement covers.
func countReferences(fn *ir.Function) ([]int, []bool) {
	refs := make([]int, len(fn.Expressions))
	emitted := make([]bool, len(fn.Expressions))
	use := func(h ir.ExpressionHandle) {
		if int(h) < len(refs) {
			refs[h]++
		}
	}
	useOpt := func(h *ir.ExpressionHandle) {
		if h != nil {
			use(*h)
		}
	}
	for _, expr := range fn.Expressions {
		for _, op := range ir.Operands(expr.Kind) {
			use(op)
		}
	}
	for _, local := range fn.LocalVars {
		useOpt(local.Init)
	}

	var walk func(block ir.Block)
	walk = func(block ir.Block) {
		for _, stmt := range block {
			switch s := stmt.Kind.(type) {
			case ir.StmtEmit:
				for h := s.Range.Start; h < s.Range.End && int(h) < len(emitted); h++ {
					emitted[h] = true
				}
			case ir.StmtBlock:
				walk(s.Block)
			case ir.StmtIf:
				use(s.Condition)
				walk(s.Accept)
				walk(s.Reject)
			case ir.StmtSwitch:
				use(s.Selector)
				for _, c := range s.Cases {
					walk(c.Body)
				}
			case ir.StmtLoop:
				walk(s.Body)
				walk(s.Continuing)
				useOpt(s.BreakIf)
			case ir.StmtReturn:
				useOpt(s.Value)
			case ir.StmtStore:
				use(s.Pointer)
				use(s.Value)
			case ir.StmtImageStore:
				use(s.Image)
				use(s.Coordinate)
				useOpt(s.ArrayIndex)
				use(s.Value)
			case ir.StmtAtomic:
				use(s.Pointer)
				use(s.Value)
				if x, ok := s.Fun.(ir.AtomicExchange); ok {
					useOpt(x.Compare)
				}
			case ir.StmtCall:
				for _, a := range s.Arguments {
					use(a)
				}
			}
		}
	}
	walk(fn.Body)
	return refs, emitted
}

// isReference reports whether an expression denotes a memory location
// rather than a value.
func (w *Writer) isReference(h ir.ExpressionHandle) bool {
	fn := w.currentFunction
	for depth := 0; depth < maxTypeDepth && int(h) < len(fn.Expressions); depth++ {
		switch k := fn.Expressions[h].Kind.(type) {
		case ir.ExprGlobalVariable, ir.ExprLocalVariable:
			return true
		case ir.ExprFunctionArgument:
			if int(k.Index) >= len(fn.Arguments) || int(fn.Arguments[k.Index].Type) >= len(w.module.Types) {
				return false
			}
			_, ok := w.module.Types[fn.Arguments[k.Index].Type].Inner.(ir.PointerType)
			return ok
		case ir.ExprAccess:
			h = k.Base
		case ir.ExprAccessIndex:
			h = k.Base
		default:
			return false
		}
	}
	return false
}

// shouldBake reports whether an emitted expression gets a let binding.
// Loads, texture reads and derivatives are bound where they are emitted so
// later stores and control flow cannot move them.
func (w *Writer) shouldBake(h ir.ExpressionHandle) bool {
	if int(h) >= len(w.refCounts) || w.refCounts[h] == 0 || w.isReference(h) {
		return false
	}
	switch w.currentFunction.Expressions[h].Kind.(type) {
	case ir.Literal, ir.ExprConstant, ir.ExprZeroValue, ir.ExprFunctionArgument,
		ir.ExprCallResult, ir.ExprAtomicResult:
		return false
	case ir.ExprLoad, ir.ExprImageSample, ir.ExprImageLoad, ir.ExprDerivative:
		return w.constructible(h)
	}
	return w.refCounts[h] > 1 && w.constructible(h)
}

// constructible reports whether a let binding can hold the expression.
func (w *Writer) constructible(h ir.ExpressionHandle) bool {
	inner, err := w.valueInner(h)
	if err != nil {
		return false
	}
	switch t := inner.(type) {
	case ir.ImageType, ir.SamplerType, ir.BindingArrayType, ir.AtomicType,
		ir.AccelerationStructureType, ir.RayQueryType:
		return false
	case ir.ArrayType:
		return t.Size.Kind == ir.ArraySizeConstant
	}
	return true
}

// isConstLike reports whether an expression reads no mutable state, so it
// may be evaluated at the top of the function.
func (w *Writer) isConstLike(h ir.ExpressionHandle, depth int) bool {
	fn := w.currentFunction
	if int(h) >= len(fn.Expressions) || depth > maxTypeDepth {
		return false
	}
	switch fn.Expressions[h].Kind.(type) {
	case ir.Literal, ir.ExprConstant, ir.ExprZeroValue:
		return true
	case ir.ExprFunctionArgument:
		return !w.isReference(h)
	case ir.ExprCompose, ir.ExprSplat, ir.ExprSwizzle, ir.ExprUnary, ir.ExprBinary,
		ir.ExprSelect, ir.ExprMath, ir.ExprAs, ir.ExprRelational:
		for _, op := range ir.Operands(fn.Expressions[h].Kind) {
			if !w.isConstLike(op, depth+1) {
				return false
			}
		}
		return true
	}
	return false
}
