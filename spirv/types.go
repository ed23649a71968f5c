package spirv

import (
	"fmt"

	"github.com/gogpu/shaderkit/ir"
)

// typeEntry is a declared SPIR-V type. Handle is valid only for value types;
// images get their handle once the variable using them is known.
type typeEntry struct {
	inst   Instruction
	handle ir.TypeHandle
	value  bool
}

func (f *frontend) declareType(inst Instruction) error {
	if len(inst.Operands) == 0 {
		return inst.errorf("missing result id")
	}
	id := inst.Operands[0]
	ops := inst.Operands[1:]
	entry := &typeEntry{inst: inst}
	f.types[id] = entry

	need := func(n int) error {
		if len(ops) < n {
			return inst.errorf("expected %d operands, got %d", n, len(ops))
		}
		return nil
	}
	scalarOf := func(typeID uint32) (ir.ScalarType, error) {
		e := f.types[typeID]
		if e == nil || !e.value {
			return ir.ScalarType{}, inst.errorf("component type %s is not a scalar", ref(typeID))
		}
		s, ok := f.registryInner(e.handle).(ir.ScalarType)
		if !ok {
			return ir.ScalarType{}, inst.errorf("component type %s is not a scalar", ref(typeID))
		}
		return s, nil
	}

	var inner ir.TypeInner
	switch inst.Opcode {
	case OpTypeVoid, OpTypePointer, OpTypeFunction, OpTypeSampledImage, OpTypeImage:
		return nil
	case OpTypeBool:
		inner = ir.Bool
	case OpTypeInt:
		if err := need(2); err != nil {
			return err
		}
		kind := ir.ScalarUint
		if ops[1] != 0 {
			kind = ir.ScalarSint
		}
		inner = ir.ScalarType{Kind: kind, Width: uint8(ops[0] / 8)}
	case OpTypeFloat:
		if err := need(1); err != nil {
			return err
		}
		inner = ir.ScalarType{Kind: ir.ScalarFloat, Width: uint8(ops[0] / 8)}
	case OpTypeVector:
		if err := need(2); err != nil {
			return err
		}
		s, err := scalarOf(ops[0])
		if err != nil {
			return err
		}
		if ops[1] < 2 || ops[1] > 4 {
			return inst.errorf("vector of %d components", ops[1])
		}
		inner = ir.VectorType{Size: ir.VectorSize(ops[1]), Scalar: s}
	case OpTypeMatrix:
		if err := need(2); err != nil {
			return err
		}
		col := f.types[ops[0]]
		if col == nil || !col.value {
			return inst.errorf("column type %s is not a vector", ref(ops[0]))
		}
		v, ok := f.registryInner(col.handle).(ir.VectorType)
		if !ok {
			return inst.errorf("column type %s is not a vector", ref(ops[0]))
		}
		if ops[1] < 2 || ops[1] > 4 {
			return inst.errorf("matrix of %d columns", ops[1])
		}
		inner = ir.MatrixType{Columns: ir.VectorSize(ops[1]), Rows: v.Size, Scalar: v.Scalar}
	case OpTypeSampler:
		inner = ir.SamplerType{}
	case OpTypeArray, OpTypeRuntimeArray:
		t, err := f.arrayType(id, inst, nil)
		if err != nil {
			return err
		}
		inner = t
	case OpTypeStruct:
		t, err := f.structType(id, nil)
		if err != nil {
			return err
		}
		entry.handle = f.registry.GetOrCreate(f.names[id], t)
		entry.value = true
		return nil
	default:
		return inst.errorf("unsupported type")
	}
	entry.handle = f.registry.GetOrCreate("", inner)
	entry.value = true
	return nil
}

// arrayType lowers an array type. Arrays of images or samplers become
// binding arrays. element overrides the element handle.
func (f *frontend) arrayType(id uint32, inst Instruction, element *ir.TypeHandle) (ir.TypeInner, error) {
	ops := inst.Operands[1:]
	if len(ops) == 0 {
		return nil, inst.errorf("missing element type")
	}
	size := ir.DynamicSize()
	if inst.Opcode == OpTypeArray {
		if len(ops) < 2 {
			return nil, inst.errorf("missing array length")
		}
		n, ok := f.constantUint(ops[1])
		if !ok {
			return nil, inst.errorf("array length %s is not an integer constant", ref(ops[1]))
		}
		size = ir.FixedSize(uint32(n))
	}

	elem := f.types[ops[0]]
	if elem == nil {
		return nil, inst.errorf("unknown element type %s", ref(ops[0]))
	}
	switch elem.inst.Opcode {
	case OpTypeImage, OpTypeSampler:
		base, err := f.opaqueType(ops[0], &decorations{})
		if err != nil {
			return nil, err
		}
		return ir.BindingArrayType{Base: base, Size: size}, nil
	}
	if !elem.value {
		return nil, inst.errorf("element type %s is not a value type", ref(ops[0]))
	}
	base := elem.handle
	if element != nil {
		base = *element
	}
	stride := f.lookupDecorations(id).arrayStride
	if stride == 0 {
		layout := ir.Layout(f.registry.Types(), base)
		stride = ir.AlignUp(layout.Size, layout.Align)
	}
	return ir.ArrayType{Base: base, Size: size, Stride: stride}, nil
}

// structType lowers a struct. Members without an Offset decoration are laid
// out naturally. members overrides member handles by index.
func (f *frontend) structType(id uint32, members map[int]ir.TypeHandle) (ir.StructType, error) {
	entry := f.types[id]
	inst := entry.inst
	var st ir.StructType
	var offset, align uint32 = 0, 1
	for i, memberID := range inst.Operands[1:] {
		m := f.types[memberID]
		if m == nil || !m.value {
			return st, inst.errorf("member %d type %s is not a value type", i, ref(memberID))
		}
		handle := m.handle
		if h, ok := members[i]; ok {
			handle = h
		}
		layout := ir.Layout(f.registry.Types(), handle)
		deco := f.lookupMemberDecorations(id, uint32(i))
		if deco.offset != nil {
			offset = *deco.offset
		} else {
			offset = ir.AlignUp(offset, layout.Align)
		}
		st.Members = append(st.Members, ir.StructMember{
			Name:   f.memberNames[id][uint32(i)],
			Type:   handle,
			Offset: offset,
		})
		offset += layout.Size
		align = max(align, layout.Align)
	}
	st.Span = ir.AlignUp(offset, align)
	return st, nil
}

// opaqueType lowers image and sampler types. Storage image access comes from
// the decorations of the variable.
func (f *frontend) opaqueType(id uint32, deco *decorations) (ir.TypeHandle, error) {
	entry := f.types[id]
	if entry == nil {
		return 0, fmt.Errorf("unknown type %s", ref(id))
	}
	inst := entry.inst
	switch inst.Opcode {
	case OpTypeSampler:
		return entry.handle, nil
	case OpTypeImage:
	case OpTypeSampledImage:
		return 0, inst.errorf("combined image samplers are not supported")
	default:
		if entry.value {
			return entry.handle, nil
		}
		return 0, inst.errorf("unsupported resource type")
	}

	ops := inst.Operands[1:]
	if len(ops) < 7 {
		return 0, inst.errorf("truncated image type")
	}
	sampled, dim, depth, arrayed, ms, usage, format := ops[0], Dim(ops[1]), ops[2], ops[3], ops[4], ops[5], ImageFormat(ops[6])
	img := ir.ImageType{Arrayed: arrayed != 0, Multisampled: ms != 0}
	switch dim {
	case Dim1D:
		img.Dim = ir.Dim1D
	case Dim2D:
		img.Dim = ir.Dim2D
	case Dim3D:
		img.Dim = ir.Dim3D
	case DimCube:
		img.Dim = ir.DimCube
	default:
		return 0, inst.errorf("unsupported image dimension %s", dim)
	}

	kind := ir.ScalarFloat
	if e := f.types[sampled]; e != nil && e.value {
		if s, ok := f.registryInner(e.handle).(ir.ScalarType); ok {
			kind = s.Kind
		}
	}
	switch {
	case usage == 2:
		img.Class = ir.ImageClassStorage
		img.StorageFormat = storageFormat(format, kind)
		img.StorageAccess = ir.StorageReadWrite
		if deco.nonWritable {
			img.StorageAccess = ir.StorageLoad
		}
		if deco.nonReadable {
			img.StorageAccess = ir.StorageStore
		}
	case depth == 1:
		img.Class = ir.ImageClassDepth
	default:
		img.Class = ir.ImageClassSampled
		img.SampledKind = kind
	}
	return f.registry.GetOrCreate("", img), nil
}

// storageFormat maps a SPIR-V texel format. Unknown formats fall back to the
// 32-bit four-channel format of the sampled kind.
func storageFormat(format ImageFormat, kind ir.ScalarKind) ir.StorageFormat {
	switch format {
	case ImageFormatRgba32f:
		return ir.FormatRgba32Float
	case ImageFormatRgba16f:
		return ir.FormatRgba16Float
	case ImageFormatR32f:
		return ir.FormatR32Float
	case ImageFormatRgba8:
		return ir.FormatRgba8Unorm
	case ImageFormatRgba8Snorm:
		return ir.FormatRgba8Snorm
	case ImageFormatRg32f:
		return ir.FormatRg32Float
	case ImageFormatRgba32i:
		return ir.FormatRgba32Sint
	case ImageFormatRgba16i:
		return ir.FormatRgba16Sint
	case ImageFormatRgba8i:
		return ir.FormatRgba8Sint
	case ImageFormatR32i:
		return ir.FormatR32Sint
	case ImageFormatRg32i:
		return ir.FormatRg32Sint
	case ImageFormatRgba32ui:
		return ir.FormatRgba32Uint
	case ImageFormatRgba16ui:
		return ir.FormatRgba16Uint
	case ImageFormatRgba8ui:
		return ir.FormatRgba8Uint
	case ImageFormatR32ui:
		return ir.FormatR32Uint
	case ImageFormatRg32ui:
		return ir.FormatRg32Uint
	}
	switch kind {
	case ir.ScalarSint:
		return ir.FormatRgba32Sint
	case ir.ScalarUint:
		return ir.FormatRgba32Uint
	default:
		return ir.FormatRgba32Float
	}
}

// handleType lowers the pointee of a UniformConstant variable.
func (f *frontend) handleType(id uint32, deco *decorations) (ir.TypeHandle, error) {
	entry := f.types[id]
	if entry == nil {
		return 0, fmt.Errorf("unknown type %s", ref(id))
	}
	if entry.inst.Opcode == OpTypeArray || entry.inst.Opcode == OpTypeRuntimeArray {
		elem := entry.inst.Operands[1]
		base, err := f.opaqueType(elem, deco)
		if err != nil {
			return 0, err
		}
		size := ir.DynamicSize()
		if entry.inst.Opcode == OpTypeArray {
			n, _ := f.constantUint(entry.inst.Operands[2])
			size = ir.FixedSize(uint32(n))
		}
		return f.registry.GetOrCreate("", ir.BindingArrayType{Base: base, Size: size}), nil
	}
	return f.opaqueType(id, deco)
}

// irType returns the handle of a value type.
func (f *frontend) irType(id uint32) (ir.TypeHandle, error) {
	entry := f.types[id]
	if entry == nil {
		return 0, fmt.Errorf("unknown type %s", ref(id))
	}
	if entry.value {
		return entry.handle, nil
	}
	switch entry.inst.Opcode {
	case OpTypeImage, OpTypeSampler:
		return f.opaqueType(id, &decorations{})
	case OpTypePointer:
		base, space, _ := f.pointee(id)
		h, err := f.irType(base)
		if err != nil {
			return 0, err
		}
		return f.registry.GetOrCreate("", ir.PointerType{Base: h, Space: addressSpace(space)}), nil
	}
	return 0, entry.inst.errorf("%s has no value representation", ref(id))
}

func (f *frontend) registryInner(h ir.TypeHandle) ir.TypeInner {
	t, ok := f.registry.Lookup(h)
	if !ok {
		return nil
	}
	return t.Inner
}

// pointee returns the base type and storage class of a pointer type.
func (f *frontend) pointee(ptrType uint32) (uint32, StorageClass, bool) {
	entry := f.types[ptrType]
	if entry == nil || entry.inst.Opcode != OpTypePointer || len(entry.inst.Operands) < 3 {
		return 0, 0, false
	}
	return entry.inst.Operands[2], StorageClass(entry.inst.Operands[1]), true
}

func addressSpace(class StorageClass) ir.AddressSpace {
	switch class {
	case StorageClassPrivate, StorageClassInput, StorageClassOutput:
		return ir.SpacePrivate
	case StorageClassWorkgroup:
		return ir.SpaceWorkGroup
	case StorageClassUniform:
		return ir.SpaceUniform
	case StorageClassStorageBuffer:
		return ir.SpaceStorage
	case StorageClassUniformConstant:
		return ir.SpaceHandle
	case StorageClassPushConstant:
		return ir.SpacePushConstant
	default:
		return ir.SpaceFunction
	}
}

// scalarOf returns the scalar of a scalar or vector type and its component
// count, zero for scalars.
func (f *frontend) scalarOf(typeID uint32) (ir.ScalarType, int, bool) {
	entry := f.types[typeID]
	if entry == nil || !entry.value {
		return ir.ScalarType{}, 0, false
	}
	switch t := f.registryInner(entry.handle).(type) {
	case ir.ScalarType:
		return t, 0, true
	case ir.VectorType:
		return t.Scalar, int(t.Size), true
	}
	return ir.ScalarType{}, 0, false
}

// memberType returns the type reached by indexing a composite type once.
// Struct members need the constant index; other composites ignore it.
func (f *frontend) memberType(typeID uint32, index int64) (uint32, bool) {
	entry := f.types[typeID]
	if entry == nil {
		return 0, false
	}
	ops := entry.inst.Operands
	switch entry.inst.Opcode {
	case OpTypeVector:
		return ops[1], true
	case OpTypeMatrix, OpTypeArray, OpTypeRuntimeArray:
		return ops[1], true
	case OpTypeStruct:
		if index < 0 || int(index)+1 >= len(ops) {
			return 0, false
		}
		return ops[index+1], true
	}
	return 0, false
}

// componentCount returns the number of components a composite insert or
// construct addresses.
func (f *frontend) componentCount(typeID uint32) (int, bool) {
	entry := f.types[typeID]
	if entry == nil {
		return 0, false
	}
	ops := entry.inst.Operands
	switch entry.inst.Opcode {
	case OpTypeVector, OpTypeMatrix:
		return int(ops[2]), true
	case OpTypeArray:
		n, ok := f.constantUint(ops[2])
		return int(n), ok
	case OpTypeStruct:
		return len(ops) - 1, true
	}
	return 0, false
}

// scanAtomics finds the storage that atomic instructions operate on so the
// variables can be declared with atomic types.
func (f *frontend) scanAtomics() {
	defs := make(map[uint32]Instruction)
	for _, decl := range f.functions {
		for _, inst := range decl.body {
			if id, ok := inst.ResultID(); ok {
				defs[id] = inst
			}
		}
	}
	seen := make(map[string]bool)
	for _, id := range f.order {
		for _, inst := range f.functions[id].body {
			ptr, ok := atomicPointer(inst)
			if !ok {
				continue
			}
			var path []int64
			for {
				def, ok := defs[ptr]
				if !ok {
					break
				}
				switch def.Opcode {
				case OpAccessChain, OpInBoundsAccessChain:
					var indices []int64
					for _, idx := range def.Operands[3:] {
						v, ok := f.constantUint(idx)
						if !ok {
							indices = append(indices, -1)
							continue
						}
						indices = append(indices, int64(v))
					}
					path = append(indices, path...)
					ptr = def.Operands[2]
					continue
				case OpCopyObject:
					ptr = def.Operands[2]
					continue
				}
				break
			}
			key := fmt.Sprint(ptr, path)
			if seen[key] {
				continue
			}
			seen[key] = true
			f.atomicPaths[ptr] = append(f.atomicPaths[ptr], path)
		}
	}
}

func atomicPointer(inst Instruction) (uint32, bool) {
	switch inst.Opcode {
	case OpAtomicStore:
		if len(inst.Operands) > 0 {
			return inst.Operands[0], true
		}
	case OpAtomicLoad, OpAtomicExchange, OpAtomicCompareExchange, OpAtomicIIncrement,
		OpAtomicIDecrement, OpAtomicIAdd, OpAtomicISub, OpAtomicSMin, OpAtomicUMin,
		OpAtomicSMax, OpAtomicUMax, OpAtomicAnd, OpAtomicOr, OpAtomicXor:
		if len(inst.Operands) > 2 {
			return inst.Operands[2], true
		}
	}
	return 0, false
}

// atomicType lowers typeID with the scalars reached by paths replaced by
// atomics. A negative path element is a runtime array index.
func (f *frontend) atomicType(typeID uint32, paths [][]int64) (ir.TypeHandle, error) {
	entry := f.types[typeID]
	if entry == nil {
		return 0, fmt.Errorf("unknown type %s", ref(typeID))
	}
	for _, p := range paths {
		if len(p) == 0 {
			s, ok := f.registryInner(entry.handle).(ir.ScalarType)
			if !ok || !entry.value {
				return 0, entry.inst.errorf("atomic operation on non-scalar type")
			}
			return f.registry.GetOrCreate("", ir.AtomicType{Scalar: s}), nil
		}
	}

	switch entry.inst.Opcode {
	case OpTypeStruct:
		byMember := make(map[int64][][]int64)
		for _, p := range paths {
			byMember[p[0]] = append(byMember[p[0]], p[1:])
		}
		members := make(map[int]ir.TypeHandle, len(byMember))
		for idx, sub := range byMember {
			memberID, ok := f.memberType(typeID, idx)
			if !ok {
				return 0, entry.inst.errorf("atomic access through non-constant struct index")
			}
			h, err := f.atomicType(memberID, sub)
			if err != nil {
				return 0, err
			}
			members[int(idx)] = h
		}
		st, err := f.structType(typeID, members)
		if err != nil {
			return 0, err
		}
		return f.registry.GetOrCreate(f.names[typeID], st), nil
	case OpTypeArray, OpTypeRuntimeArray:
		sub := make([][]int64, len(paths))
		for i, p := range paths {
			sub[i] = p[1:]
		}
		elem, err := f.atomicType(entry.inst.Operands[1], sub)
		if err != nil {
			return 0, err
		}
		t, err := f.arrayType(typeID, entry.inst, &elem)
		if err != nil {
			return 0, err
		}
		return f.registry.GetOrCreate("", t), nil
	}
	return f.irType(typeID)
}
