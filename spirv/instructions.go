package spirv

import (
	"fmt"
	"math"

	"github.com/gogpu/shaderkit/ir"
)

type sampledImage struct {
	image     ir.ExpressionHandle
	sampler   ir.ExpressionHandle
	imageType uint32
}

// value returns the expression for an id, creating references to globals
// and constants on first use. Phi values are reloaded at every use.
func (p *functionParser) value(id uint32) (ir.ExpressionHandle, error) {
	if local, ok := p.phiLocals[id]; ok {
		return p.add(ir.ExprLoad{Pointer: local}), nil
	}
	if h, ok := p.values[id]; ok {
		return h, nil
	}
	var h ir.ExpressionHandle
	if g, ok := p.f.globals[id]; ok {
		h = p.add(ir.ExprGlobalVariable{Variable: g.handle})
	} else if c, ok := p.f.constants[id]; ok {
		h = p.add(ir.ExprConstant{Constant: c.handle})
	} else if p.f.undefs[id] {
		ty, err := p.f.irType(p.f.typeOf[id])
		if err != nil {
			return 0, err
		}
		h = p.add(ir.ExprZeroValue{Type: ty})
	} else {
		return 0, fmt.Errorf("%s is used before its definition", ref(id))
	}
	p.values[id] = h
	return h, nil
}

func (p *functionParser) values2(a, b uint32) (ir.ExpressionHandle, ir.ExpressionHandle, error) {
	x, err := p.value(a)
	if err != nil {
		return 0, 0, err
	}
	y, err := p.value(b)
	return x, y, err
}

func (p *functionParser) typeHandle(typeID uint32) (ir.TypeHandle, error) {
	return p.f.irType(typeID)
}

// asUint bitcasts a signed operand to unsigned where WGSL demands u32.
func (p *functionParser) asUint(id uint32) (ir.ExpressionHandle, error) {
	h, err := p.value(id)
	if err != nil {
		return 0, err
	}
	if s, _, ok := p.f.scalarOf(p.f.typeOf[id]); ok && s.Kind == ir.ScalarSint {
		return p.add(ir.ExprAs{Expr: h, Kind: ir.ScalarUint}), nil
	}
	return h, nil
}

var binaryOps = map[OpCode]ir.BinaryOperator{
	OpIAdd:                   ir.BinaryAdd,
	OpFAdd:                   ir.BinaryAdd,
	OpISub:                   ir.BinarySubtract,
	OpFSub:                   ir.BinarySubtract,
	OpIMul:                   ir.BinaryMultiply,
	OpFMul:                   ir.BinaryMultiply,
	OpVectorTimesScalar:      ir.BinaryMultiply,
	OpMatrixTimesScalar:      ir.BinaryMultiply,
	OpVectorTimesMatrix:      ir.BinaryMultiply,
	OpMatrixTimesVector:      ir.BinaryMultiply,
	OpMatrixTimesMatrix:      ir.BinaryMultiply,
	OpUDiv:                   ir.BinaryDivide,
	OpSDiv:                   ir.BinaryDivide,
	OpFDiv:                   ir.BinaryDivide,
	OpUMod:                   ir.BinaryModulo,
	OpSRem:                   ir.BinaryModulo,
	OpFRem:                   ir.BinaryModulo,
	OpIEqual:                 ir.BinaryEqual,
	OpFOrdEqual:              ir.BinaryEqual,
	OpFUnordEqual:            ir.BinaryEqual,
	OpLogicalEqual:           ir.BinaryEqual,
	OpINotEqual:              ir.BinaryNotEqual,
	OpFOrdNotEqual:           ir.BinaryNotEqual,
	OpFUnordNotEqual:         ir.BinaryNotEqual,
	OpLogicalNotEqual:        ir.BinaryNotEqual,
	OpULessThan:              ir.BinaryLess,
	OpSLessThan:              ir.BinaryLess,
	OpFOrdLessThan:           ir.BinaryLess,
	OpFUnordLessThan:         ir.BinaryLess,
	OpULessThanEqual:         ir.BinaryLessEqual,
	OpSLessThanEqual:         ir.BinaryLessEqual,
	OpFOrdLessThanEqual:      ir.BinaryLessEqual,
	OpFUnordLessThanEqual:    ir.BinaryLessEqual,
	OpUGreaterThan:           ir.BinaryGreater,
	OpSGreaterThan:           ir.BinaryGreater,
	OpFOrdGreaterThan:        ir.BinaryGreater,
	OpFUnordGreaterThan:      ir.BinaryGreater,
	OpUGreaterThanEqual:      ir.BinaryGreaterEqual,
	OpSGreaterThanEqual:      ir.BinaryGreaterEqual,
	OpFOrdGreaterThanEqual:   ir.BinaryGreaterEqual,
	OpFUnordGreaterThanEqual: ir.BinaryGreaterEqual,
	OpBitwiseAnd:             ir.BinaryAnd,
	OpBitwiseOr:              ir.BinaryInclusiveOr,
	OpBitwiseXor:             ir.BinaryExclusiveOr,
}

var derivatives = map[OpCode]ir.ExprDerivative{
	OpDPdx:         {Axis: ir.DerivativeX},
	OpDPdy:         {Axis: ir.DerivativeY},
	OpFwidth:       {Axis: ir.DerivativeWidth},
	OpDPdxFine:     {Axis: ir.DerivativeX, Control: ir.DerivativeFine},
	OpDPdyFine:     {Axis: ir.DerivativeY, Control: ir.DerivativeFine},
	OpFwidthFine:   {Axis: ir.DerivativeWidth, Control: ir.DerivativeFine},
	OpDPdxCoarse:   {Axis: ir.DerivativeX, Control: ir.DerivativeCoarse},
	OpDPdyCoarse:   {Axis: ir.DerivativeY, Control: ir.DerivativeCoarse},
	OpFwidthCoarse: {Axis: ir.DerivativeWidth, Control: ir.DerivativeCoarse},
}

var atomicFunctions = map[OpCode]ir.AtomicFunction{
	OpAtomicIAdd: ir.AtomicAdd{},
	OpAtomicISub: ir.AtomicSubtract{},
	OpAtomicSMin: ir.AtomicMin{},
	OpAtomicUMin: ir.AtomicMin{},
	OpAtomicSMax: ir.AtomicMax{},
	OpAtomicUMax: ir.AtomicMax{},
	OpAtomicAnd:  ir.AtomicAnd{},
	OpAtomicOr:   ir.AtomicInclusiveOr{},
	OpAtomicXor:  ir.AtomicExclusiveOr{},
}

// translate lowers the non-terminator instructions of a block.
//
//nolint:gocyclo,cyclop,funlen,maintidx // one case per opcode
func (p *functionParser) translate(insts []Instruction, out *ir.Block) error {
	for _, inst := range insts {
		ops := inst.Operands
		var resultType, result uint32
		if rt, ok := inst.ResultType(); ok {
			resultType = rt
		}
		if id, ok := inst.ResultID(); ok {
			result = id
		}
		need := func(n int) error {
			if len(ops) < n {
				return inst.errorf("expected at least %d operands, got %d", n, len(ops))
			}
			return nil
		}
		set := func(kind ir.ExpressionKind) {
			p.values[result] = p.add(kind)
		}

		if op, ok := binaryOps[inst.Opcode]; ok {
			if err := need(4); err != nil {
				return err
			}
			l, r, err := p.values2(ops[2], ops[3])
			if err != nil {
				return err
			}
			set(ir.ExprBinary{Op: op, Left: l, Right: r})
			continue
		}
		if d, ok := derivatives[inst.Opcode]; ok {
			if err := need(3); err != nil {
				return err
			}
			v, err := p.value(ops[2])
			if err != nil {
				return err
			}
			d.Expr = v
			set(d)
			continue
		}
		if fun, ok := atomicFunctions[inst.Opcode]; ok {
			if err := need(6); err != nil {
				return err
			}
			if err := p.atomic(inst, fun, ops[5], nil, out); err != nil {
				return err
			}
			continue
		}

		switch inst.Opcode {
		case OpNop, OpLine, OpNoLine, OpPhi:
			// phis are read through their locals

		case OpVariable:
			if err := need(3); err != nil {
				return err
			}
			pointee, _, ok := p.f.pointee(ops[0])
			if !ok {
				return inst.errorf("variable type is not a pointer")
			}
			ty, err := p.typeHandle(pointee)
			if err != nil {
				return err
			}
			local := ir.LocalVariable{Name: p.f.names[result], Type: ty}
			if len(ops) > 3 {
				init, err := p.value(ops[3])
				if err != nil {
					return err
				}
				local.Init = &init
			}
			idx := uint32(len(p.fn.LocalVars))
			p.fn.LocalVars = append(p.fn.LocalVars, local)
			set(ir.ExprLocalVariable{Variable: idx})

		case OpLoad:
			if err := need(3); err != nil {
				return err
			}
			ptr, err := p.value(ops[2])
			if err != nil {
				return err
			}
			if p.isHandle(resultType) {
				p.values[result] = ptr
				continue
			}
			set(ir.ExprLoad{Pointer: ptr})

		case OpStore:
			if err := need(2); err != nil {
				return err
			}
			ptr, v, err := p.values2(ops[0], ops[1])
			if err != nil {
				return err
			}
			p.push(out, ir.StmtStore{Pointer: ptr, Value: v})

		case OpCopyMemory:
			if err := need(2); err != nil {
				return err
			}
			dst, src, err := p.values2(ops[0], ops[1])
			if err != nil {
				return err
			}
			v := p.add(ir.ExprLoad{Pointer: src})
			p.push(out, ir.StmtStore{Pointer: dst, Value: v})

		case OpAccessChain, OpInBoundsAccessChain:
			if err := need(3); err != nil {
				return err
			}
			h, err := p.accessChain(ops[2], ops[3:])
			if err != nil {
				return err
			}
			p.values[result] = h

		case OpArrayLength:
			if err := need(4); err != nil {
				return err
			}
			base, err := p.value(ops[2])
			if err != nil {
				return err
			}
			member := p.add(ir.ExprAccessIndex{Base: base, Index: ops[3]})
			set(ir.ExprArrayLength{Array: member})

		case OpCompositeExtract:
			if err := need(3); err != nil {
				return err
			}
			h, err := p.value(ops[2])
			if err != nil {
				return err
			}
			for _, idx := range ops[3:] {
				h = p.add(ir.ExprAccessIndex{Base: h, Index: idx})
			}
			p.values[result] = h

		case OpCompositeInsert:
			if err := need(5); err != nil {
				return err
			}
			obj, composite, err := p.values2(ops[2], ops[3])
			if err != nil {
				return err
			}
			h, err := p.insert(resultType, composite, obj, ops[4:])
			if err != nil {
				return inst.errorf("%v", err)
			}
			p.values[result] = h

		case OpCompositeConstruct:
			if err := need(2); err != nil {
				return err
			}
			ty, err := p.typeHandle(resultType)
			if err != nil {
				return err
			}
			components := make([]ir.ExpressionHandle, 0, len(ops)-2)
			for _, c := range ops[2:] {
				h, err := p.value(c)
				if err != nil {
					return err
				}
				components = append(components, h)
			}
			set(ir.ExprCompose{Type: ty, Components: components})

		case OpVectorExtractDynamic:
			if err := need(4); err != nil {
				return err
			}
			v, idx, err := p.values2(ops[2], ops[3])
			if err != nil {
				return err
			}
			set(ir.ExprAccess{Base: v, Index: idx})

		case OpVectorShuffle:
			if err := need(4); err != nil {
				return err
			}
			if err := p.shuffle(inst, resultType, result); err != nil {
				return err
			}

		case OpCopyObject:
			if err := need(3); err != nil {
				return err
			}
			if si, ok := p.sampled[ops[2]]; ok {
				p.sampled[result] = si
				continue
			}
			h, err := p.value(ops[2])
			if err != nil {
				return err
			}
			p.values[result] = h

		case OpUndef:
			ty, err := p.typeHandle(resultType)
			if err != nil {
				return err
			}
			set(ir.ExprZeroValue{Type: ty})

		case OpTranspose:
			if err := need(3); err != nil {
				return err
			}
			if err := p.mathCall(result, ir.MathTranspose, ops[2]); err != nil {
				return err
			}

		case OpSNegate, OpFNegate, OpNot, OpLogicalNot:
			if err := need(3); err != nil {
				return err
			}
			v, err := p.value(ops[2])
			if err != nil {
				return err
			}
			op := ir.UnaryNegate
			switch inst.Opcode {
			case OpNot:
				op = ir.UnaryBitwiseNot
			case OpLogicalNot:
				op = ir.UnaryLogicalNot
			}
			set(ir.ExprUnary{Op: op, Expr: v})

		case OpLogicalAnd, OpLogicalOr:
			if err := need(4); err != nil {
				return err
			}
			l, r, err := p.values2(ops[2], ops[3])
			if err != nil {
				return err
			}
			_, size, _ := p.f.scalarOf(resultType)
			op := ir.BinaryLogicalAnd
			switch {
			case inst.Opcode == OpLogicalOr && size > 0:
				op = ir.BinaryInclusiveOr
			case inst.Opcode == OpLogicalOr:
				op = ir.BinaryLogicalOr
			case size > 0:
				op = ir.BinaryAnd
			}
			set(ir.ExprBinary{Op: op, Left: l, Right: r})

		case OpShiftLeftLogical, OpShiftRightLogical, OpShiftRightArithmetic:
			if err := need(4); err != nil {
				return err
			}
			base, err := p.value(ops[2])
			if err != nil {
				return err
			}
			shift, err := p.asUint(ops[3])
			if err != nil {
				return err
			}
			op := ir.BinaryShiftRight
			if inst.Opcode == OpShiftLeftLogical {
				op = ir.BinaryShiftLeft
			}
			set(ir.ExprBinary{Op: op, Left: base, Right: shift})

		case OpFMod:
			// x - y * floor(x / y)
			if err := need(4); err != nil {
				return err
			}
			x, y, err := p.values2(ops[2], ops[3])
			if err != nil {
				return err
			}
			div := p.add(ir.ExprBinary{Op: ir.BinaryDivide, Left: x, Right: y})
			floor := p.add(ir.ExprMath{Fun: ir.MathFloor, Arg: div})
			mul := p.add(ir.ExprBinary{Op: ir.BinaryMultiply, Left: y, Right: floor})
			set(ir.ExprBinary{Op: ir.BinarySubtract, Left: x, Right: mul})

		case OpSelect:
			if err := need(5); err != nil {
				return err
			}
			cond, err := p.value(ops[2])
			if err != nil {
				return err
			}
			accept, reject, err := p.values2(ops[3], ops[4])
			if err != nil {
				return err
			}
			set(ir.ExprSelect{Condition: cond, Accept: accept, Reject: reject})

		case OpDot:
			if err := need(4); err != nil {
				return err
			}
			if err := p.mathCall(result, ir.MathDot, ops[2], ops[3]); err != nil {
				return err
			}

		case OpOuterProduct:
			if err := need(4); err != nil {
				return err
			}
			if err := p.mathCall(result, ir.MathOuter, ops[2], ops[3]); err != nil {
				return err
			}

		case OpAny, OpAll, OpIsNan, OpIsInf:
			if err := need(3); err != nil {
				return err
			}
			v, err := p.value(ops[2])
			if err != nil {
				return err
			}
			fun := map[OpCode]ir.RelationalFunction{
				OpAny:   ir.RelationalAny,
				OpAll:   ir.RelationalAll,
				OpIsNan: ir.RelationalIsNan,
				OpIsInf: ir.RelationalIsInf,
			}[inst.Opcode]
			set(ir.ExprRelational{Fun: fun, Argument: v})

		case OpConvertFToU, OpConvertFToS, OpConvertSToF, OpConvertUToF, OpUConvert, OpSConvert, OpFConvert:
			if err := need(3); err != nil {
				return err
			}
			v, err := p.value(ops[2])
			if err != nil {
				return err
			}
			scalar, _, ok := p.f.scalarOf(resultType)
			if !ok {
				return inst.errorf("conversion to non-numeric type")
			}
			width := scalar.Width
			set(ir.ExprAs{Expr: v, Kind: scalar.Kind, Convert: &width})

		case OpBitcast:
			if err := need(3); err != nil {
				return err
			}
			v, err := p.value(ops[2])
			if err != nil {
				return err
			}
			scalar, _, ok := p.f.scalarOf(resultType)
			if !ok {
				return inst.errorf("bitcast to non-numeric type")
			}
			set(ir.ExprAs{Expr: v, Kind: scalar.Kind})

		case OpQuantizeToF16:
			if err := need(3); err != nil {
				return err
			}
			if err := p.mathCall(result, ir.MathQuantizeF16, ops[2]); err != nil {
				return err
			}

		case OpBitCount, OpBitReverse:
			if err := need(3); err != nil {
				return err
			}
			fun := ir.MathCountOneBits
			if inst.Opcode == OpBitReverse {
				fun = ir.MathReverseBits
			}
			if err := p.mathCall(result, fun, ops[2]); err != nil {
				return err
			}

		case OpBitFieldInsert:
			if err := need(6); err != nil {
				return err
			}
			base, insert, err := p.values2(ops[2], ops[3])
			if err != nil {
				return err
			}
			offset, err := p.asUint(ops[4])
			if err != nil {
				return err
			}
			count, err := p.asUint(ops[5])
			if err != nil {
				return err
			}
			set(ir.ExprMath{Fun: ir.MathInsertBits, Arg: base, Arg1: &insert, Arg2: &offset, Arg3: &count})

		case OpBitFieldSExtract, OpBitFieldUExtract:
			if err := need(5); err != nil {
				return err
			}
			base, err := p.value(ops[2])
			if err != nil {
				return err
			}
			offset, err := p.asUint(ops[3])
			if err != nil {
				return err
			}
			count, err := p.asUint(ops[4])
			if err != nil {
				return err
			}
			set(ir.ExprMath{Fun: ir.MathExtractBits, Arg: base, Arg1: &offset, Arg2: &count})

		case OpExtInst:
			if err := need(4); err != nil {
				return err
			}
			if name := p.f.extSets[ops[2]]; name != ExtInstSetGLSL {
				return inst.errorf("unsupported extended instruction set %q", name)
			}
			if err := p.glsl(inst, result); err != nil {
				return err
			}

		case OpSampledImage:
			if err := need(4); err != nil {
				return err
			}
			image, sampler, err := p.values2(ops[2], ops[3])
			if err != nil {
				return err
			}
			p.sampled[result] = sampledImage{image: image, sampler: sampler, imageType: p.f.typeOf[ops[2]]}

		case OpImage:
			if err := need(3); err != nil {
				return err
			}
			si, ok := p.sampled[ops[2]]
			if !ok {
				return inst.errorf("%s is not a sampled image", ref(ops[2]))
			}
			p.values[result] = si.image

		case OpImageSampleImplicitLod, OpImageSampleExplicitLod, OpImageSampleDrefImplicitLod,
			OpImageSampleDrefExplicitLod, OpImageGather, OpImageDrefGather:
			if err := p.sample(inst, result); err != nil {
				return err
			}

		case OpImageFetch, OpImageRead:
			if err := p.imageLoad(inst, result); err != nil {
				return err
			}

		case OpImageWrite:
			if err := p.imageStore(inst, out); err != nil {
				return err
			}

		case OpImageQuerySize, OpImageQuerySizeLod, OpImageQueryLevels, OpImageQuerySamples:
			if err := p.imageQuery(inst, resultType, result); err != nil {
				return err
			}

		case OpControlBarrier, OpMemoryBarrier:
			flags, err := p.barrier(inst)
			if err != nil {
				return err
			}
			p.push(out, ir.StmtBarrier{Flags: flags})

		case OpAtomicLoad:
			if err := need(5); err != nil {
				return err
			}
			if err := p.atomic(inst, ir.AtomicLoad{}, ops[2], nil, out); err != nil {
				return err
			}
		case OpAtomicStore:
			if err := need(4); err != nil {
				return err
			}
			if err := p.atomic(inst, ir.AtomicStore{}, ops[3], nil, out); err != nil {
				return err
			}
		case OpAtomicExchange:
			if err := need(6); err != nil {
				return err
			}
			if err := p.atomic(inst, ir.AtomicExchange{}, ops[5], nil, out); err != nil {
				return err
			}
		case OpAtomicCompareExchange, OpAtomicCompareExchangeWeak:
			if err := need(8); err != nil {
				return err
			}
			cmp := ops[7]
			if err := p.atomic(inst, ir.AtomicExchange{}, ops[6], &cmp, out); err != nil {
				return err
			}
		case OpAtomicIIncrement, OpAtomicIDecrement:
			if err := need(5); err != nil {
				return err
			}
			var fun ir.AtomicFunction = ir.AtomicAdd{}
			if inst.Opcode == OpAtomicIDecrement {
				fun = ir.AtomicSubtract{}
			}
			if err := p.atomic(inst, fun, 0, nil, out); err != nil {
				return err
			}

		case OpFunctionCall:
			if err := need(3); err != nil {
				return err
			}
			if err := p.call(inst, resultType, result, out); err != nil {
				return err
			}

		default:
			return inst.errorf("unsupported instruction")
		}
	}
	return nil
}

// isHandle reports whether values of the type are resources that loads
// pass through unchanged.
func (p *functionParser) isHandle(typeID uint32) bool {
	entry := p.f.types[typeID]
	if entry == nil {
		return false
	}
	switch entry.inst.Opcode {
	case OpTypeImage, OpTypeSampler, OpTypeSampledImage:
		return true
	}
	return false
}

func (p *functionParser) accessChain(baseID uint32, indices []uint32) (ir.ExpressionHandle, error) {
	h, err := p.value(baseID)
	if err != nil {
		return 0, err
	}
	typeID, _, _ := p.f.pointee(p.f.typeOf[baseID])
	for _, idx := range indices {
		if c, ok := p.f.constantUint(idx); ok {
			h = p.add(ir.ExprAccessIndex{Base: h, Index: uint32(c)})
			typeID, _ = p.f.memberType(typeID, int64(c))
			continue
		}
		if entry := p.f.types[typeID]; entry != nil && entry.inst.Opcode == OpTypeStruct {
			return 0, fmt.Errorf("struct index %s is not a constant", ref(idx))
		}
		i, err := p.value(idx)
		if err != nil {
			return 0, err
		}
		h = p.add(ir.ExprAccess{Base: h, Index: i})
		typeID, _ = p.f.memberType(typeID, -1)
	}
	return h, nil
}

// insert rebuilds a composite with one element replaced.
func (p *functionParser) insert(typeID uint32, composite, obj ir.ExpressionHandle, path []uint32) (ir.ExpressionHandle, error) {
	if len(path) == 0 {
		return obj, nil
	}
	n, ok := p.f.componentCount(typeID)
	if !ok {
		return 0, fmt.Errorf("cannot insert into %s", ref(typeID))
	}
	if int(path[0]) >= n {
		return 0, fmt.Errorf("index %d out of range for %s", path[0], ref(typeID))
	}
	ty, err := p.typeHandle(typeID)
	if err != nil {
		return 0, err
	}
	components := make([]ir.ExpressionHandle, n)
	for i := range components {
		components[i] = p.add(ir.ExprAccessIndex{Base: composite, Index: uint32(i)})
	}
	memberID, _ := p.f.memberType(typeID, int64(path[0]))
	inner, err := p.insert(memberID, components[path[0]], obj, path[1:])
	if err != nil {
		return 0, err
	}
	components[path[0]] = inner
	return p.add(ir.ExprCompose{Type: ty, Components: components}), nil
}

func (p *functionParser) shuffle(inst Instruction, resultType, result uint32) error {
	ops := inst.Operands
	v1, v2, err := p.values2(ops[2], ops[3])
	if err != nil {
		return err
	}
	_, n1, _ := p.f.scalarOf(p.f.typeOf[ops[2]])
	comps := append([]uint32(nil), ops[4:]...)
	if len(comps) < 2 || len(comps) > 4 {
		return inst.errorf("shuffle of %d components", len(comps))
	}
	allFirst, allSecond := true, true
	for i, c := range comps {
		if c == math.MaxUint32 {
			comps[i] = 0
			c = 0
		}
		if int(c) >= n1 {
			allFirst = false
		} else {
			allSecond = false
		}
	}
	if allFirst || allSecond {
		src, offset := v1, uint32(0)
		if !allFirst {
			src, offset = v2, uint32(n1)
		}
		sw := ir.ExprSwizzle{Size: ir.VectorSize(len(comps)), Vector: src}
		for i, c := range comps {
			sw.Pattern[i] = ir.SwizzleComponent(c - offset)
		}
		p.values[result] = p.add(sw)
		return nil
	}
	ty, err := p.typeHandle(resultType)
	if err != nil {
		return err
	}
	components := make([]ir.ExpressionHandle, len(comps))
	for i, c := range comps {
		if int(c) < n1 {
			components[i] = p.add(ir.ExprAccessIndex{Base: v1, Index: c})
		} else {
			components[i] = p.add(ir.ExprAccessIndex{Base: v2, Index: c - uint32(n1)})
		}
	}
	p.values[result] = p.add(ir.ExprCompose{Type: ty, Components: components})
	return nil
}

func (p *functionParser) mathCall(result uint32, fun ir.MathFunction, args ...uint32) error {
	handles := make([]ir.ExpressionHandle, len(args))
	for i, a := range args {
		h, err := p.value(a)
		if err != nil {
			return err
		}
		handles[i] = h
	}
	m := ir.ExprMath{Fun: fun, Arg: handles[0]}
	slots := []**ir.ExpressionHandle{&m.Arg1, &m.Arg2, &m.Arg3}
	for i := 1; i < len(handles) && i <= len(slots); i++ {
		*slots[i-1] = &handles[i]
	}
	p.values[result] = p.add(m)
	return nil
}

func (p *functionParser) barrier(inst Instruction) (ir.BarrierFlags, error) {
	ops := inst.Operands
	execScope, semantics := uint32(ScopeWorkgroup), uint32(0)
	switch inst.Opcode {
	case OpControlBarrier:
		if len(ops) < 3 {
			return 0, inst.errorf("truncated barrier")
		}
		execScope, _ = p.f.constantUintOr(ops[0], ScopeWorkgroup)
		semantics, _ = p.f.constantUintOr(ops[2], 0)
	case OpMemoryBarrier:
		if len(ops) < 2 {
			return 0, inst.errorf("truncated barrier")
		}
		semantics, _ = p.f.constantUintOr(ops[1], 0)
	}
	var flags ir.BarrierFlags
	if semantics&MemorySemanticsUniformMemory != 0 {
		flags |= ir.BarrierStorage
	}
	if semantics&MemorySemanticsWorkgroupMemory != 0 {
		flags |= ir.BarrierWorkGroup
	}
	if semantics&MemorySemanticsImageMemory != 0 {
		flags |= ir.BarrierTexture
	}
	if execScope == ScopeSubgroup {
		flags |= ir.BarrierSubGroup
	}
	return flags, nil
}

// constantUintOr returns the value of an integer constant, or def.
func (f *frontend) constantUintOr(id, def uint32) (uint32, bool) {
	v, ok := f.constantUint(id)
	if !ok {
		return def, false
	}
	return uint32(v), true
}

// atomic lowers an atomic instruction. valueID zero means an implicit one.
func (p *functionParser) atomic(inst Instruction, fun ir.AtomicFunction, valueID uint32, compareID *uint32, out *ir.Block) error {
	ops := inst.Operands
	ptrIndex := 2
	if inst.Opcode == OpAtomicStore {
		ptrIndex = 0
	}
	ptr, err := p.value(ops[ptrIndex])
	if err != nil {
		return err
	}

	var value ir.ExpressionHandle
	switch {
	case inst.Opcode == OpAtomicLoad:
		value = ptr
	case valueID == 0:
		scalar, _, _ := p.f.scalarOf(ops[0])
		if scalar.Kind == ir.ScalarSint {
			value = p.add(ir.Literal{Value: ir.LiteralI32(1)})
		} else {
			value = p.add(ir.Literal{Value: ir.LiteralU32(1)})
		}
	default:
		if value, err = p.value(valueID); err != nil {
			return err
		}
	}
	if compareID != nil {
		cmp, err := p.value(*compareID)
		if err != nil {
			return err
		}
		fun = ir.AtomicExchange{Compare: &cmp}
	}

	st := ir.StmtAtomic{Pointer: ptr, Fun: fun, Value: value}
	if inst.Opcode != OpAtomicStore {
		ty, err := p.typeHandle(ops[0])
		if err != nil {
			return err
		}
		r := p.addResult(out, ir.ExprAtomicResult{Type: ty})
		st.Result = &r
		p.values[ops[1]] = r
	}
	p.push(out, st)
	return nil
}

func (p *functionParser) call(inst Instruction, resultType, result uint32, out *ir.Block) error {
	ops := inst.Operands
	h, ok := p.f.helpers[ops[2]]
	if !ok {
		return inst.errorf("call to unknown function %s", ref(ops[2]))
	}
	args := make([]ir.ExpressionHandle, 0, len(ops)-3)
	for _, a := range ops[3:] {
		v, err := p.value(a)
		if err != nil {
			return err
		}
		args = append(args, v)
	}
	st := ir.StmtCall{Function: h, Arguments: args}
	if ret := p.f.types[resultType]; ret != nil && ret.inst.Opcode != OpTypeVoid {
		r := p.addResult(out, ir.ExprCallResult{Function: h})
		st.Result = &r
		p.values[result] = r
	}
	p.push(out, st)
	return nil
}
