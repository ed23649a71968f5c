package spirv

import (
	"fmt"

	"github.com/gogpu/shaderkit/ir"
)

// imageOperands holds the optional operands that follow an image operand
// mask.
type imageOperands struct {
	bias, lod    *ir.ExpressionHandle
	gradX, gradY *ir.ExpressionHandle
	offset       *ir.ExpressionHandle
	sample       *ir.ExpressionHandle
}

func (p *functionParser) parseImageOperands(ops []uint32) (imageOperands, error) {
	var io imageOperands
	if len(ops) == 0 {
		return io, nil
	}
	mask, rest := ops[0], ops[1:]
	next := func() (*ir.ExpressionHandle, error) {
		if len(rest) == 0 {
			return nil, fmt.Errorf("image operand mask 0x%x needs more operands", mask)
		}
		h, err := p.value(rest[0])
		rest = rest[1:]
		return &h, err
	}
	var err error
	if mask&ImageOperandsBias != 0 {
		if io.bias, err = next(); err != nil {
			return io, err
		}
	}
	if mask&ImageOperandsLod != 0 {
		if io.lod, err = next(); err != nil {
			return io, err
		}
	}
	if mask&ImageOperandsGrad != 0 {
		if io.gradX, err = next(); err != nil {
			return io, err
		}
		if io.gradY, err = next(); err != nil {
			return io, err
		}
	}
	if mask&(ImageOperandsConstOffset|ImageOperandsOffset) != 0 {
		if io.offset, err = next(); err != nil {
			return io, err
		}
	}
	if mask&ImageOperandsConstOffsets != 0 {
		return io, fmt.Errorf("ConstOffsets image operand is not supported")
	}
	if mask&ImageOperandsSample != 0 {
		if io.sample, err = next(); err != nil {
			return io, err
		}
	}
	return io, nil
}

// imageInfo returns the dimension, depth and arrayed operands of an image
// type.
func (f *frontend) imageInfo(typeID uint32) (dim Dim, depth, arrayed bool) {
	entry := f.types[typeID]
	if entry == nil || entry.inst.Opcode != OpTypeImage || len(entry.inst.Operands) < 8 {
		return Dim2D, false, false
	}
	ops := entry.inst.Operands
	return Dim(ops[2]), ops[3] == 1, ops[4] != 0
}

// splitCoordinate separates the layer of arrayed images from the
// coordinate.
func (p *functionParser) splitCoordinate(imageType, coordID uint32) (ir.ExpressionHandle, *ir.ExpressionHandle, error) {
	coord, err := p.value(coordID)
	if err != nil {
		return 0, nil, err
	}
	if _, _, arrayed := p.f.imageInfo(imageType); !arrayed {
		return coord, nil, nil
	}
	scalar, n, _ := p.f.scalarOf(p.f.typeOf[coordID])
	if n < 2 {
		return 0, nil, fmt.Errorf("arrayed image coordinate %s has no layer component", ref(coordID))
	}
	layer := p.add(ir.ExprAccessIndex{Base: coord, Index: uint32(n - 1)})
	if scalar.Kind == ir.ScalarFloat {
		rounded := p.add(ir.ExprMath{Fun: ir.MathRound, Arg: layer})
		width := uint8(4)
		layer = p.add(ir.ExprAs{Expr: rounded, Kind: ir.ScalarSint, Convert: &width})
	}
	var rest ir.ExpressionHandle
	if n == 2 {
		rest = p.add(ir.ExprAccessIndex{Base: coord, Index: 0})
	} else {
		rest = p.add(ir.ExprSwizzle{
			Size:    ir.VectorSize(n - 1),
			Vector:  coord,
			Pattern: [4]ir.SwizzleComponent{ir.SwizzleX, ir.SwizzleY, ir.SwizzleZ},
		})
	}
	return rest, &layer, nil
}

// rootGlobal follows access expressions back to the global they index.
func (p *functionParser) rootGlobal(h ir.ExpressionHandle) (ir.GlobalVariableHandle, bool) {
	for int(h) < len(p.fn.Expressions) {
		switch e := p.fn.Expressions[h].Kind.(type) {
		case ir.ExprGlobalVariable:
			return e.Variable, true
		case ir.ExprAccess:
			h = e.Base
		case ir.ExprAccessIndex:
			h = e.Base
		default:
			return 0, false
		}
	}
	return 0, false
}

// widenDepth splats the scalar WGSL returns for depth textures to the
// vector SPIR-V expects.
func (p *functionParser) widenDepth(h ir.ExpressionHandle, imageType, resultType uint32) ir.ExpressionHandle {
	if _, depth, _ := p.f.imageInfo(imageType); !depth {
		return h
	}
	_, n, _ := p.f.scalarOf(resultType)
	if n == 0 {
		return h
	}
	return p.add(ir.ExprSplat{Size: ir.VectorSize(n), Value: h})
}

func (p *functionParser) sample(inst Instruction, result uint32) error {
	ops := inst.Operands
	if len(ops) < 4 {
		return inst.errorf("truncated sample instruction")
	}
	si, ok := p.sampled[ops[2]]
	if !ok {
		return inst.errorf("%s is not a sampled image", ref(ops[2]))
	}
	es := ir.ExprImageSample{Image: si.image, Sampler: si.sampler}

	idx := 4
	switch inst.Opcode {
	case OpImageSampleDrefImplicitLod, OpImageSampleDrefExplicitLod, OpImageDrefGather:
		if len(ops) < 5 {
			return inst.errorf("missing depth reference")
		}
		dref, err := p.value(ops[4])
		if err != nil {
			return err
		}
		es.DepthRef = &dref
		if g, ok := p.rootGlobal(si.sampler); ok {
			p.f.comparison[g] = true
		}
		idx = 5
		if inst.Opcode == OpImageDrefGather {
			x := ir.SwizzleX
			es.Gather = &x
		}
	case OpImageGather:
		if len(ops) < 5 {
			return inst.errorf("missing gather component")
		}
		c, ok := p.f.constantUint(ops[4])
		if !ok || c > 3 {
			return inst.errorf("gather component must be a constant between 0 and 3")
		}
		comp := ir.SwizzleComponent(c)
		es.Gather = &comp
		idx = 5
	}

	coord, layer, err := p.splitCoordinate(si.imageType, ops[3])
	if err != nil {
		return err
	}
	es.Coordinate, es.ArrayIndex = coord, layer

	var io imageOperands
	if len(ops) > idx {
		if io, err = p.parseImageOperands(ops[idx:]); err != nil {
			return inst.errorf("%v", err)
		}
	}
	es.Offset = io.offset

	switch inst.Opcode {
	case OpImageSampleImplicitLod:
		es.Level = ir.SampleLevelAuto{}
		if io.bias != nil {
			es.Level = ir.SampleLevelBias{Bias: *io.bias}
		}
	case OpImageSampleExplicitLod:
		switch {
		case io.gradX != nil:
			es.Level = ir.SampleLevelGradient{X: *io.gradX, Y: *io.gradY}
		case io.lod != nil:
			es.Level = ir.SampleLevelExact{Level: *io.lod}
		default:
			es.Level = ir.SampleLevelZero{}
		}
	case OpImageSampleDrefImplicitLod:
		es.Level = ir.SampleLevelAuto{}
	default:
		es.Level = ir.SampleLevelZero{}
	}

	h := p.add(es)
	if es.DepthRef == nil && es.Gather == nil {
		h = p.widenDepth(h, si.imageType, inst.Operands[0])
	}
	p.values[result] = h
	return nil
}

func (p *functionParser) imageLoad(inst Instruction, result uint32) error {
	ops := inst.Operands
	if len(ops) < 4 {
		return inst.errorf("truncated image read")
	}
	image, err := p.value(ops[2])
	if err != nil {
		return err
	}
	imageType := p.f.typeOf[ops[2]]
	coord, layer, err := p.splitCoordinate(imageType, ops[3])
	if err != nil {
		return err
	}
	var io imageOperands
	if len(ops) > 4 {
		if io, err = p.parseImageOperands(ops[4:]); err != nil {
			return inst.errorf("%v", err)
		}
	}
	h := p.add(ir.ExprImageLoad{Image: image, Coordinate: coord, ArrayIndex: layer, Level: io.lod, Sample: io.sample})
	p.values[result] = p.widenDepth(h, imageType, ops[0])
	return nil
}

func (p *functionParser) imageStore(inst Instruction, out *ir.Block) error {
	ops := inst.Operands
	if len(ops) < 3 {
		return inst.errorf("truncated image write")
	}
	image, err := p.value(ops[0])
	if err != nil {
		return err
	}
	coord, layer, err := p.splitCoordinate(p.f.typeOf[ops[0]], ops[1])
	if err != nil {
		return err
	}
	texel, err := p.value(ops[2])
	if err != nil {
		return err
	}
	p.push(out, ir.StmtImageStore{Image: image, Coordinate: coord, ArrayIndex: layer, Value: texel})
	return nil
}

func (p *functionParser) imageQuery(inst Instruction, resultType, result uint32) error {
	ops := inst.Operands
	if len(ops) < 3 {
		return inst.errorf("truncated image query")
	}
	image, err := p.value(ops[2])
	if err != nil {
		return err
	}
	imageType := p.f.typeOf[ops[2]]
	if p.sampled[ops[2]].imageType != 0 {
		si := p.sampled[ops[2]]
		image, imageType = si.image, si.imageType
	}
	scalar, n, ok := p.f.scalarOf(resultType)
	if !ok {
		return inst.errorf("image query result is not numeric")
	}

	var h ir.ExpressionHandle
	switch inst.Opcode {
	case OpImageQueryLevels:
		h = p.add(ir.ExprImageQuery{Image: image, Query: ir.ImageQueryNumLevels{}})
	case OpImageQuerySamples:
		h = p.add(ir.ExprImageQuery{Image: image, Query: ir.ImageQueryNumSamples{}})
	default:
		var level *ir.ExpressionHandle
		if inst.Opcode == OpImageQuerySizeLod {
			if len(ops) < 4 {
				return inst.errorf("missing level of detail")
			}
			l, err := p.value(ops[3])
			if err != nil {
				return err
			}
			level = &l
		}
		h = p.add(ir.ExprImageQuery{Image: image, Query: ir.ImageQuerySize{Level: level}})
		if _, _, arrayed := p.f.imageInfo(imageType); arrayed && n >= 2 {
			layers := p.add(ir.ExprImageQuery{Image: image, Query: ir.ImageQueryNumLayers{}})
			ty := p.f.registry.GetOrCreate("", ir.VectorType{Size: ir.VectorSize(n), Scalar: ir.U32})
			h = p.add(ir.ExprCompose{Type: ty, Components: []ir.ExpressionHandle{h, layers}})
		}
	}
	if scalar.Kind == ir.ScalarSint {
		h = p.add(ir.ExprAs{Expr: h, Kind: ir.ScalarSint})
	}
	p.values[result] = h
	return nil
}
