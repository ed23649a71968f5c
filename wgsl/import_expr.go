package wgsl

import (
	"fmt"

	nir "github.com/gogpu/naga/ir"

	"github.com/gogpu/shaderkit/ir"
)

func eh(h nir.ExpressionHandle) ir.ExpressionHandle { return ir.ExpressionHandle(h) }

func ehs(hs []nir.ExpressionHandle) []ir.ExpressionHandle {
	out := make([]ir.ExpressionHandle, len(hs))
	for i, h := range hs {
		out[i] = eh(h)
	}
	return out
}

//nolint:gocyclo,cyclop,funlen // one case per expression variant
func (imp *importer) convertExpression(kind nir.ExpressionKind) (ir.ExpressionKind, error) {
	switch k := kind.(type) {
	case nir.Literal:
		return convertLiteral(k)
	case nir.ExprConstant:
		return ir.ExprConstant{Constant: ir.ConstantHandle(k.Constant)}, nil
	case nir.ExprZeroValue:
		return ir.ExprZeroValue{Type: ir.TypeHandle(k.Type)}, nil
	case nir.ExprCompose:
		return ir.ExprCompose{Type: ir.TypeHandle(k.Type), Components: ehs(k.Components)}, nil
	case nir.ExprAccess:
		return ir.ExprAccess{Base: eh(k.Base), Index: eh(k.Index)}, nil
	case nir.ExprAccessIndex:
		return ir.ExprAccessIndex{Base: eh(k.Base), Index: k.Index}, nil
	case nir.ExprSplat:
		return ir.ExprSplat{Size: ir.VectorSize(k.Size), Value: eh(k.Value)}, nil
	case nir.ExprSwizzle:
		out := ir.ExprSwizzle{Size: ir.VectorSize(k.Size), Vector: eh(k.Vector)}
		for i, c := range k.Pattern {
			out.Pattern[i] = ir.SwizzleComponent(c)
		}
		return out, nil
	case nir.ExprFunctionArgument:
		return ir.ExprFunctionArgument{Index: k.Index}, nil
	case nir.ExprGlobalVariable:
		return ir.ExprGlobalVariable{Variable: ir.GlobalVariableHandle(k.Variable)}, nil
	case nir.ExprLocalVariable:
		return ir.ExprLocalVariable{Variable: k.Variable}, nil
	case nir.ExprLoad:
		return ir.ExprLoad{Pointer: eh(k.Pointer)}, nil
	case nir.ExprImageSample:
		out := ir.ExprImageSample{
			Image:       eh(k.Image),
			Sampler:     eh(k.Sampler),
			Coordinate:  eh(k.Coordinate),
			ArrayIndex:  exprOpt(k.ArrayIndex),
			Offset:      exprOpt(k.Offset),
			DepthRef:    exprOpt(k.DepthRef),
			ClampToEdge: k.ClampToEdge,
		}
		if k.Gather != nil {
			g := ir.SwizzleComponent(*k.Gather)
			out.Gather = &g
		}
		switch l := k.Level.(type) {
		case nir.SampleLevelZero:
			out.Level = ir.SampleLevelZero{}
		case nir.SampleLevelExact:
			out.Level = ir.SampleLevelExact{Level: eh(l.Level)}
		case nir.SampleLevelBias:
			out.Level = ir.SampleLevelBias{Bias: eh(l.Bias)}
		case nir.SampleLevelGradient:
			out.Level = ir.SampleLevelGradient{X: eh(l.X), Y: eh(l.Y)}
		default:
			out.Level = ir.SampleLevelAuto{}
		}
		return out, nil
	case nir.ExprImageLoad:
		return ir.ExprImageLoad{
			Image:      eh(k.Image),
			Coordinate: eh(k.Coordinate),
			ArrayIndex: exprOpt(k.ArrayIndex),
			Sample:     exprOpt(k.Sample),
			Level:      exprOpt(k.Level),
		}, nil
	case nir.ExprImageQuery:
		out := ir.ExprImageQuery{Image: eh(k.Image)}
		switch q := k.Query.(type) {
		case nir.ImageQuerySize:
			out.Query = ir.ImageQuerySize{Level: exprOpt(q.Level)}
		case nir.ImageQueryNumLevels:
			out.Query = ir.ImageQueryNumLevels{}
		case nir.ImageQueryNumLayers:
			out.Query = ir.ImageQueryNumLayers{}
		case nir.ImageQueryNumSamples:
			out.Query = ir.ImageQueryNumSamples{}
		default:
			return nil, fmt.Errorf("unsupported image query %T", k.Query)
		}
		return out, nil
	case nir.ExprUnary:
		return ir.ExprUnary{Op: ir.UnaryOperator(k.Op), Expr: eh(k.Expr)}, nil
	case nir.ExprBinary:
		// Operators share one ordering.
		return ir.ExprBinary{Op: ir.BinaryOperator(k.Op), Left: eh(k.Left), Right: eh(k.Right)}, nil
	case nir.ExprSelect:
		return ir.ExprSelect{Condition: eh(k.Condition), Accept: eh(k.Accept), Reject: eh(k.Reject)}, nil
	case nir.ExprDerivative:
		out := ir.ExprDerivative{Axis: ir.DerivativeAxis(k.Axis), Expr: eh(k.Expr)}
		switch k.Control {
		case nir.DerivativeCoarse:
			out.Control = ir.DerivativeCoarse
		case nir.DerivativeFine:
			out.Control = ir.DerivativeFine
		default:
			out.Control = ir.DerivativeNone
		}
		return out, nil
	case nir.ExprRelational:
		return ir.ExprRelational{Fun: ir.RelationalFunction(k.Fun), Argument: eh(k.Argument)}, nil
	case nir.ExprMath:
		fun, ok := mathFunctions[k.Fun]
		if !ok {
			return nil, fmt.Errorf("unsupported math function %d", k.Fun)
		}
		return ir.ExprMath{Fun: fun, Arg: eh(k.Arg), Arg1: exprOpt(k.Arg1), Arg2: exprOpt(k.Arg2), Arg3: exprOpt(k.Arg3)}, nil
	case nir.ExprAs:
		s, err := convertScalar(nir.ScalarType{Kind: k.Kind, Width: 4})
		if err != nil {
			return nil, err
		}
		out := ir.ExprAs{Expr: eh(k.Expr), Kind: s.Kind}
		if k.Convert != nil {
			w := *k.Convert
			out.Convert = &w
		}
		return out, nil
	case nir.ExprCallResult:
		h, err := imp.callee(k.Function)
		if err != nil {
			return nil, err
		}
		return ir.ExprCallResult{Function: h}, nil
	case nir.ExprArrayLength:
		return ir.ExprArrayLength{Array: eh(k.Array)}, nil
	case nir.ExprAtomicResult:
		return ir.ExprAtomicResult{Type: ir.TypeHandle(k.Ty)}, nil
	default:
		return nil, fmt.Errorf("unsupported expression %T", kind)
	}
}

func convertLiteral(lit nir.Literal) (ir.ExpressionKind, error) {
	var v ir.LiteralValue
	switch l := lit.Value.(type) {
	case nir.LiteralF64:
		v = ir.LiteralF64(l)
	case nir.LiteralF32:
		v = ir.LiteralF32(l)
	case nir.LiteralU32:
		v = ir.LiteralU32(l)
	case nir.LiteralI32:
		v = ir.LiteralI32(l)
	case nir.LiteralU64:
		v = ir.LiteralU64(l)
	case nir.LiteralI64:
		v = ir.LiteralI64(l)
	case nir.LiteralBool:
		v = ir.LiteralBool(l)
	case nir.LiteralAbstractInt:
		v = ir.LiteralAbstractInt(l)
	case nir.LiteralAbstractFloat:
		v = ir.LiteralAbstractFloat(l)
	default:
		return nil, fmt.Errorf("unsupported literal %T", lit.Value)
	}
	return ir.Literal{Value: v}, nil
}

var mathFunctions = map[nir.MathFunction]ir.MathFunction{
	nir.MathAbs:                ir.MathAbs,
	nir.MathMin:                ir.MathMin,
	nir.MathMax:                ir.MathMax,
	nir.MathClamp:              ir.MathClamp,
	nir.MathSaturate:           ir.MathSaturate,
	nir.MathCos:                ir.MathCos,
	nir.MathCosh:               ir.MathCosh,
	nir.MathSin:                ir.MathSin,
	nir.MathSinh:               ir.MathSinh,
	nir.MathTan:                ir.MathTan,
	nir.MathTanh:               ir.MathTanh,
	nir.MathAcos:               ir.MathAcos,
	nir.MathAsin:               ir.MathAsin,
	nir.MathAtan:               ir.MathAtan,
	nir.MathAtan2:              ir.MathAtan2,
	nir.MathAsinh:              ir.MathAsinh,
	nir.MathAcosh:              ir.MathAcosh,
	nir.MathAtanh:              ir.MathAtanh,
	nir.MathRadians:            ir.MathRadians,
	nir.MathDegrees:            ir.MathDegrees,
	nir.MathCeil:               ir.MathCeil,
	nir.MathFloor:              ir.MathFloor,
	nir.MathRound:              ir.MathRound,
	nir.MathFract:              ir.MathFract,
	nir.MathTrunc:              ir.MathTrunc,
	nir.MathModf:               ir.MathModf,
	nir.MathFrexp:              ir.MathFrexp,
	nir.MathLdexp:              ir.MathLdexp,
	nir.MathExp:                ir.MathExp,
	nir.MathExp2:               ir.MathExp2,
	nir.MathLog:                ir.MathLog,
	nir.MathLog2:               ir.MathLog2,
	nir.MathPow:                ir.MathPow,
	nir.MathDot:                ir.MathDot,
	nir.MathOuter:              ir.MathOuter,
	nir.MathCross:              ir.MathCross,
	nir.MathDistance:           ir.MathDistance,
	nir.MathLength:             ir.MathLength,
	nir.MathNormalize:          ir.MathNormalize,
	nir.MathFaceForward:        ir.MathFaceForward,
	nir.MathReflect:            ir.MathReflect,
	nir.MathRefract:            ir.MathRefract,
	nir.MathSign:               ir.MathSign,
	nir.MathFma:                ir.MathFma,
	nir.MathMix:                ir.MathMix,
	nir.MathStep:               ir.MathStep,
	nir.MathSmoothStep:         ir.MathSmoothStep,
	nir.MathSqrt:               ir.MathSqrt,
	nir.MathInverseSqrt:        ir.MathInverseSqrt,
	nir.MathInverse:            ir.MathInverse,
	nir.MathTranspose:          ir.MathTranspose,
	nir.MathDeterminant:        ir.MathDeterminant,
	nir.MathQuantizeF16:        ir.MathQuantizeF16,
	nir.MathCountTrailingZeros: ir.MathCountTrailingZeros,
	nir.MathCountLeadingZeros:  ir.MathCountLeadingZeros,
	nir.MathCountOneBits:       ir.MathCountOneBits,
	nir.MathReverseBits:        ir.MathReverseBits,
	nir.MathExtractBits:        ir.MathExtractBits,
	nir.MathInsertBits:         ir.MathInsertBits,
	nir.MathFirstTrailingBit:   ir.MathFirstTrailingBit,
	nir.MathFirstLeadingBit:    ir.MathFirstLeadingBit,
	nir.MathPack4x8snorm:       ir.MathPack4x8snorm,
	nir.MathPack4x8unorm:       ir.MathPack4x8unorm,
	nir.MathPack2x16snorm:      ir.MathPack2x16snorm,
	nir.MathPack2x16unorm:      ir.MathPack2x16unorm,
	nir.MathPack2x16float:      ir.MathPack2x16float,
	nir.MathUnpack4x8snorm:     ir.MathUnpack4x8snorm,
	nir.MathUnpack4x8unorm:     ir.MathUnpack4x8unorm,
	nir.MathUnpack2x16snorm:    ir.MathUnpack2x16snorm,
	nir.MathUnpack2x16unorm:    ir.MathUnpack2x16unorm,
	nir.MathUnpack2x16float:    ir.MathUnpack2x16float,
}

func (imp *importer) convertBlock(block nir.Block) (ir.Block, error) {
	out := make(ir.Block, 0, len(block))
	for i, st := range block {
		kind, err := imp.convertStatement(st.Kind)
		if err != nil {
			return nil, imp.errorf("statement %d: %v", i, err)
		}
		out = append(out, ir.Statement{Kind: kind})
	}
	return out, nil
}

//nolint:gocyclo,cyclop,funlen // one case per statement variant
func (imp *importer) convertStatement(kind nir.StatementKind) (ir.StatementKind, error) {
	switch k := kind.(type) {
	case nir.StmtEmit:
		return ir.StmtEmit{Range: ir.Range{Start: eh(k.Range.Start), End: eh(k.Range.End)}}, nil
	case nir.StmtBlock:
		b, err := imp.convertBlock(k.Block)
		if err != nil {
			return nil, err
		}
		return ir.StmtBlock{Block: b}, nil
	case nir.StmtIf:
		accept, err := imp.convertBlock(k.Accept)
		if err != nil {
			return nil, err
		}
		reject, err := imp.convertBlock(k.Reject)
		if err != nil {
			return nil, err
		}
		return ir.StmtIf{Condition: eh(k.Condition), Accept: accept, Reject: reject}, nil
	case nir.StmtSwitch:
		out := ir.StmtSwitch{Selector: eh(k.Selector), Cases: make([]ir.SwitchCase, len(k.Cases))}
		for i, c := range k.Cases {
			body, err := imp.convertBlock(c.Body)
			if err != nil {
				return nil, err
			}
			var value ir.SwitchValue
			switch v := c.Value.(type) {
			case nir.SwitchValueI32:
				value = ir.SwitchValueI32(v)
			case nir.SwitchValueU32:
				value = ir.SwitchValueU32(v)
			default:
				value = ir.SwitchValueDefault{}
			}
			out.Cases[i] = ir.SwitchCase{Value: value, Body: body, FallThrough: c.FallThrough}
		}
		return out, nil
	case nir.StmtLoop:
		body, err := imp.convertBlock(k.Body)
		if err != nil {
			return nil, err
		}
		continuing, err := imp.convertBlock(k.Continuing)
		if err != nil {
			return nil, err
		}
		return ir.StmtLoop{Body: body, Continuing: continuing, BreakIf: exprOpt(k.BreakIf)}, nil
	case nir.StmtBreak:
		return ir.StmtBreak{}, nil
	case nir.StmtContinue:
		return ir.StmtContinue{}, nil
	case nir.StmtReturn:
		return ir.StmtReturn{Value: exprOpt(k.Value)}, nil
	case nir.StmtKill:
		return ir.StmtKill{}, nil
	case nir.StmtBarrier:
		return ir.StmtBarrier{Flags: ir.BarrierFlags(k.Flags)}, nil
	case nir.StmtStore:
		return ir.StmtStore{Pointer: eh(k.Pointer), Value: eh(k.Value)}, nil
	case nir.StmtImageStore:
		return ir.StmtImageStore{
			Image:      eh(k.Image),
			Coordinate: eh(k.Coordinate),
			ArrayIndex: exprOpt(k.ArrayIndex),
			Value:      eh(k.Value),
		}, nil
	case nir.StmtAtomic:
		fun, err := convertAtomic(k.Fun)
		if err != nil {
			return nil, err
		}
		return ir.StmtAtomic{Pointer: eh(k.Pointer), Fun: fun, Value: eh(k.Value), Result: exprOpt(k.Result)}, nil
	case nir.StmtCall:
		h, err := imp.callee(k.Function)
		if err != nil {
			return nil, err
		}
		return ir.StmtCall{Function: h, Arguments: ehs(k.Arguments), Result: exprOpt(k.Result)}, nil
	default:
		return nil, fmt.Errorf("unsupported statement %T", kind)
	}
}

func convertAtomic(fun nir.AtomicFunction) (ir.AtomicFunction, error) {
	switch f := fun.(type) {
	case nir.AtomicAdd:
		return ir.AtomicAdd{}, nil
	case nir.AtomicSubtract:
		return ir.AtomicSubtract{}, nil
	case nir.AtomicAnd:
		return ir.AtomicAnd{}, nil
	case nir.AtomicExclusiveOr:
		return ir.AtomicExclusiveOr{}, nil
	case nir.AtomicInclusiveOr:
		return ir.AtomicInclusiveOr{}, nil
	case nir.AtomicMin:
		return ir.AtomicMin{}, nil
	case nir.AtomicMax:
		return ir.AtomicMax{}, nil
	case nir.AtomicExchange:
		return ir.AtomicExchange{Compare: exprOpt(f.Compare)}, nil
	case nir.AtomicLoad:
		return ir.AtomicLoad{}, nil
	case nir.AtomicStore:
		return ir.AtomicStore{}, nil
	default:
		return nil, fmt.Errorf("unsupported atomic function %T", fun)
	}
}

// callee checks a call target. Entry points are not in Functions, so every
// valid handle names a helper.
func (imp *importer) callee(h nir.FunctionHandle) (ir.FunctionHandle, error) {
	if int(h) >= len(imp.src.Functions) {
		return 0, fmt.Errorf("call to function %d, which does not exist", h)
	}
	return ir.FunctionHandle(h), nil
}
