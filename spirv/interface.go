package spirv

import (
	"fmt"

	"github.com/gogpu/shaderkit/ir"
)

// interfaceSlot is one pipeline input or output backed by (part of) an
// Input or Output variable.
type interfaceSlot struct {
	variable  uint32
	path      []uint32
	valueType ir.TypeHandle // type stored in the variable
	pipeType  ir.TypeHandle // type the pipeline exchanges
	binding   ir.Binding
	name      string
}

type entryContext struct {
	stage   ir.ShaderStage
	inputs  []interfaceSlot
	outputs []interfaceSlot
	args    []ir.FunctionArgument
	result  *ir.FunctionResult
}

func (f *frontend) entryInterface(decl entryDecl, stage ir.ShaderStage) (*entryContext, error) {
	ctx := &entryContext{stage: stage}
	seen := make(map[uint32]bool)
	for _, id := range decl.interfaces {
		if !f.interfaces[id] || seen[id] {
			continue
		}
		seen[id] = true
		input := f.globals[id].class == StorageClassInput
		slots, err := f.interfaceSlots(id, stage, input)
		if err != nil {
			return nil, err
		}
		if input {
			ctx.inputs = append(ctx.inputs, slots...)
		} else {
			ctx.outputs = append(ctx.outputs, slots...)
		}
	}

	for _, s := range ctx.inputs {
		ctx.args = append(ctx.args, ir.FunctionArgument{Name: s.name, Type: s.pipeType, Binding: s.binding})
	}
	switch len(ctx.outputs) {
	case 0:
	case 1:
		ctx.result = &ir.FunctionResult{Type: ctx.outputs[0].pipeType, Binding: ctx.outputs[0].binding}
	default:
		var st ir.StructType
		var offset, align uint32 = 0, 1
		for _, s := range ctx.outputs {
			layout := ir.Layout(f.registry.Types(), s.pipeType)
			offset = ir.AlignUp(offset, layout.Align)
			st.Members = append(st.Members, ir.StructMember{Name: s.name, Type: s.pipeType, Binding: s.binding, Offset: offset})
			offset += layout.Size
			align = max(align, layout.Align)
		}
		st.Span = ir.AlignUp(offset, align)
		name := "FragmentOutput"
		if stage == ir.StageVertex {
			name = "VertexOutput"
		}
		ctx.result = &ir.FunctionResult{Type: f.registry.GetOrCreate(name, st)}
	}
	return ctx, nil
}

// interfaceSlots splits a variable into slots. Blocks without their own
// location or built-in contribute one slot per member.
func (f *frontend) interfaceSlots(id uint32, stage ir.ShaderStage, input bool) ([]interfaceSlot, error) {
	pointee, _, ok := f.pointee(f.typeOf[id])
	if !ok {
		return nil, fmt.Errorf("interface variable %s is not a pointer", f.displayName(id))
	}
	deco := f.lookupDecorations(id)
	entry := f.types[pointee]
	if entry != nil && entry.inst.Opcode == OpTypeStruct && deco.builtIn == nil && deco.location == nil {
		var slots []interfaceSlot
		for i, memberID := range entry.inst.Operands[1:] {
			md := f.lookupMemberDecorations(pointee, uint32(i))
			slot, ok, err := f.interfaceSlot(stage, input, md, memberID, f.memberNames[pointee][uint32(i)])
			if err != nil {
				return nil, fmt.Errorf("%s member %d: %w", f.displayName(id), i, err)
			}
			if !ok {
				continue
			}
			slot.variable = id
			slot.path = append([]uint32{uint32(i)}, slot.path...)
			slots = append(slots, slot)
		}
		return slots, nil
	}

	slot, ok, err := f.interfaceSlot(stage, input, deco, pointee, f.names[id])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.displayName(id), err)
	}
	if !ok {
		return nil, nil
	}
	slot.variable = id
	return []interfaceSlot{slot}, nil
}

func (f *frontend) interfaceSlot(stage ir.ShaderStage, input bool, deco *decorations, typeID uint32, name string) (interfaceSlot, bool, error) {
	valueType, err := f.irType(typeID)
	if err != nil {
		return interfaceSlot{}, false, err
	}
	slot := interfaceSlot{valueType: valueType, pipeType: valueType, name: name}

	switch {
	case deco.builtIn != nil:
		b, pipe, ok := builtinValue(*deco.builtIn)
		if !ok {
			if input {
				return slot, false, fmt.Errorf("built-in %s is not supported", *deco.builtIn)
			}
			return slot, false, nil
		}
		if b == ir.BuiltinSampleMask {
			if arr, ok := f.registryInner(valueType).(ir.ArrayType); ok {
				slot.path = []uint32{0}
				slot.valueType = arr.Base
			}
		}
		slot.pipeType = f.registry.GetOrCreate("", pipe)
		slot.binding = ir.BuiltinBinding{Builtin: b}
	case deco.location != nil:
		lb := ir.LocationBinding{Location: *deco.location}
		if (stage == ir.StageVertex && !input) || (stage == ir.StageFragment && input) {
			lb.Interpolation = f.interpolation(valueType, deco)
		}
		slot.binding = lb
	default:
		return slot, false, fmt.Errorf("no location or built-in decoration")
	}
	return slot, true, nil
}

// interpolation is flat for integers and otherwise follows the decorations,
// leaving the default unset.
func (f *frontend) interpolation(ty ir.TypeHandle, deco *decorations) *ir.Interpolation {
	var scalar ir.ScalarType
	switch t := f.registryInner(ty).(type) {
	case ir.ScalarType:
		scalar = t
	case ir.VectorType:
		scalar = t.Scalar
	}
	if scalar.Kind == ir.ScalarSint || scalar.Kind == ir.ScalarUint || deco.flat {
		return &ir.Interpolation{Kind: ir.InterpolationFlat}
	}
	if !deco.noPerspective && !deco.centroid && !deco.sample {
		return nil
	}
	in := &ir.Interpolation{Kind: ir.InterpolationPerspective}
	if deco.noPerspective {
		in.Kind = ir.InterpolationLinear
	}
	switch {
	case deco.centroid:
		in.Sampling = ir.SamplingCentroid
	case deco.sample:
		in.Sampling = ir.SamplingSample
	}
	return in
}

func builtinValue(b BuiltIn) (ir.BuiltinValue, ir.TypeInner, bool) {
	vec3u := ir.VectorType{Size: ir.Vec3, Scalar: ir.U32}
	switch b {
	case BuiltInPosition, BuiltInFragCoord:
		return ir.BuiltinPosition, ir.VectorType{Size: ir.Vec4, Scalar: ir.F32}, true
	case BuiltInVertexIndex:
		return ir.BuiltinVertexIndex, ir.U32, true
	case BuiltInInstanceIndex:
		return ir.BuiltinInstanceIndex, ir.U32, true
	case BuiltInFrontFacing:
		return ir.BuiltinFrontFacing, ir.Bool, true
	case BuiltInFragDepth:
		return ir.BuiltinFragDepth, ir.F32, true
	case BuiltInSampleID:
		return ir.BuiltinSampleIndex, ir.U32, true
	case BuiltInSampleMask:
		return ir.BuiltinSampleMask, ir.U32, true
	case BuiltInLocalInvocationID:
		return ir.BuiltinLocalInvocationID, vec3u, true
	case BuiltInLocalInvocationIndex:
		return ir.BuiltinLocalInvocationIndex, ir.U32, true
	case BuiltInGlobalInvocationID:
		return ir.BuiltinGlobalInvocationID, vec3u, true
	case BuiltInWorkgroupID:
		return ir.BuiltinWorkGroupID, vec3u, true
	case BuiltInNumWorkgroups:
		return ir.BuiltinNumWorkGroups, vec3u, true
	}
	return 0, nil, false
}

// slotPointer builds the reference to the part of the variable a slot uses.
func (p *functionParser) slotPointer(s interfaceSlot) (ir.ExpressionHandle, error) {
	h, err := p.value(s.variable)
	if err != nil {
		return 0, err
	}
	for _, idx := range s.path {
		h = p.add(ir.ExprAccessIndex{Base: h, Index: idx})
	}
	return h, nil
}

// convert bitcasts between the pipeline and variable views of a slot when
// their scalar kinds differ.
func (p *functionParser) convert(h ir.ExpressionHandle, from, to ir.TypeHandle) ir.ExpressionHandle {
	if from == to {
		return h
	}
	fk, fok := scalarKind(p.f.registryInner(from))
	tk, tok := scalarKind(p.f.registryInner(to))
	if !fok || !tok || fk == tk {
		return h
	}
	return p.add(ir.ExprAs{Expr: h, Kind: tk})
}

func scalarKind(inner ir.TypeInner) (ir.ScalarKind, bool) {
	switch t := inner.(type) {
	case ir.ScalarType:
		return t.Kind, true
	case ir.VectorType:
		return t.Scalar.Kind, true
	}
	return 0, false
}

// prologue copies the entry arguments into the input variables.
func (p *functionParser) prologue(out *ir.Block) error {
	for i, s := range p.entry.inputs {
		ptr, err := p.slotPointer(s)
		if err != nil {
			return err
		}
		arg := p.add(ir.ExprFunctionArgument{Index: uint32(i)})
		p.push(out, ir.StmtStore{Pointer: ptr, Value: p.convert(arg, s.pipeType, s.valueType)})
	}
	return nil
}

// epilogue returns the values of the output variables.
func (p *functionParser) epilogue(out *ir.Block) error {
	values := make([]ir.ExpressionHandle, len(p.entry.outputs))
	for i, s := range p.entry.outputs {
		ptr, err := p.slotPointer(s)
		if err != nil {
			return err
		}
		values[i] = p.convert(p.add(ir.ExprLoad{Pointer: ptr}), s.valueType, s.pipeType)
	}
	switch len(values) {
	case 0:
		p.push(out, ir.StmtReturn{})
	case 1:
		p.push(out, ir.StmtReturn{Value: &values[0]})
	default:
		v := p.add(ir.ExprCompose{Type: p.entry.result.Type, Components: values})
		p.push(out, ir.StmtReturn{Value: &v})
	}
	return nil
}
