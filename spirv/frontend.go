package spirv

import (
	"fmt"

	"github.com/gogpu/shaderkit/ir"
)

// Parse lifts a SPIR-V binary into IR. Input and output variables become
// private globals; each entry point copies its arguments into them on entry
// and returns their values.
func Parse(data []byte) (*ir.Module, error) {
	words, err := Words(data)
	if err != nil {
		return nil, err
	}
	return ParseWords(words)
}

// ParseWords lifts an already split module into IR.
func ParseWords(words []uint32) (*ir.Module, error) {
	_, insts, err := Decode(words)
	if err != nil {
		return nil, err
	}
	f := newFrontend(insts)
	if err := f.parse(); err != nil {
		return nil, err
	}
	return f.module, nil
}

// decorations collects the decorations of one id or struct member.
type decorations struct {
	builtIn     *BuiltIn
	location    *uint32
	binding     *uint32
	set         *uint32
	offset      *uint32
	arrayStride uint32

	block, bufferBlock       bool
	nonWritable, nonReadable bool

	flat, noPerspective, centroid, sample bool
}

type constantEntry struct {
	handle ir.ConstantHandle
	typeID uint32
}

type globalEntry struct {
	handle ir.GlobalVariableHandle
	class  StorageClass
}

type entryDecl struct {
	inst       Instruction
	model      ExecutionModel
	function   uint32
	name       string
	interfaces []uint32
}

type functionDecl struct {
	inst   Instruction
	id     uint32
	result uint32 // return type id
	params []Instruction
	body   []Instruction
}

type frontend struct {
	insts    []Instruction
	module   *ir.Module
	registry *ir.TypeRegistry

	names             map[uint32]string
	memberNames       map[uint32]map[uint32]string
	decorations       map[uint32]*decorations
	memberDecorations map[uint32]map[uint32]*decorations

	extSets    map[uint32]string
	types      map[uint32]*typeEntry
	typeOf     map[uint32]uint32 // result id -> type id
	constants  map[uint32]constantEntry
	undefs     map[uint32]bool
	globals    map[uint32]globalEntry
	interfaces map[uint32]bool // Input and Output variables
	variables  []Instruction   // module-scope OpVariable, declared after the scan

	entries    []entryDecl
	workgroups map[uint32][3]uint32
	functions  map[uint32]*functionDecl
	order      []uint32
	helpers    map[uint32]ir.FunctionHandle

	// atomicPaths lists, per global id, the index paths that atomics reach.
	atomicPaths map[uint32][][]int64
	comparison  map[ir.GlobalVariableHandle]bool
}

func newFrontend(insts []Instruction) *frontend {
	return &frontend{
		insts:             insts,
		module:            &ir.Module{},
		registry:          ir.NewTypeRegistry(),
		names:             make(map[uint32]string),
		memberNames:       make(map[uint32]map[uint32]string),
		decorations:       make(map[uint32]*decorations),
		memberDecorations: make(map[uint32]map[uint32]*decorations),
		extSets:           make(map[uint32]string),
		types:             make(map[uint32]*typeEntry),
		typeOf:            make(map[uint32]uint32),
		constants:         make(map[uint32]constantEntry),
		undefs:            make(map[uint32]bool),
		globals:           make(map[uint32]globalEntry),
		interfaces:        make(map[uint32]bool),
		workgroups:        make(map[uint32][3]uint32),
		functions:         make(map[uint32]*functionDecl),
		helpers:           make(map[uint32]ir.FunctionHandle),
		atomicPaths:       make(map[uint32][][]int64),
		comparison:        make(map[ir.GlobalVariableHandle]bool),
	}
}

func (f *frontend) parse() error {
	if err := f.scan(); err != nil {
		return err
	}
	f.scanAtomics()
	for _, inst := range f.variables {
		if err := f.declareGlobal(inst); err != nil {
			return err
		}
	}
	f.uniqueGlobalNames()
	if err := f.declareHelpers(); err != nil {
		return err
	}
	for _, id := range f.order {
		h, ok := f.helpers[id]
		if !ok {
			continue
		}
		fn, err := newFunctionParser(f, f.functions[id], nil).parse()
		if err != nil {
			return fmt.Errorf("function %s: %w", f.displayName(id), err)
		}
		f.module.Functions[h] = *fn
	}
	for _, decl := range f.entries {
		ep, err := f.entryPoint(decl)
		if err != nil {
			return fmt.Errorf("entry point %s: %w", decl.name, err)
		}
		f.module.EntryPoints = append(f.module.EntryPoints, *ep)
	}
	f.applyComparisonSamplers()
	f.module.Types = f.registry.Types()
	return nil
}

// scan walks the module-level instructions and collects function bodies.
//
//nolint:gocyclo,cyclop,funlen // one case per module-level opcode
func (f *frontend) scan() error {
	var current *functionDecl
	for _, inst := range f.insts {
		if current != nil {
			switch inst.Opcode {
			case OpFunctionParameter:
				current.params = append(current.params, inst)
				if err := f.recordType(inst); err != nil {
					return err
				}
			case OpFunctionEnd:
				current = nil
			default:
				current.body = append(current.body, inst)
				if _, ok := inst.ResultType(); ok {
					if err := f.recordType(inst); err != nil {
						return err
					}
				}
			}
			continue
		}

		switch inst.Opcode {
		case OpNop, OpCapability, OpExtension, OpMemoryModel, OpSource, OpSourceContinued,
			OpSourceExtension, OpString, OpLine, OpNoLine, OpModuleProcessed, OpDecorationGroup:
		case OpName:
			if len(inst.Operands) < 1 {
				return inst.errorf("missing target")
			}
			f.names[inst.Operands[0]], _ = decodeString(inst.Operands[1:])
		case OpMemberName:
			if len(inst.Operands) < 2 {
				return inst.errorf("missing target")
			}
			m := f.memberNames[inst.Operands[0]]
			if m == nil {
				m = make(map[uint32]string)
				f.memberNames[inst.Operands[0]] = m
			}
			m[inst.Operands[1]], _ = decodeString(inst.Operands[2:])
		case OpDecorate:
			if len(inst.Operands) < 2 {
				return inst.errorf("missing decoration")
			}
			applyDecoration(f.decorationsOf(inst.Operands[0]), Decoration(inst.Operands[1]), inst.Operands[2:])
		case OpMemberDecorate:
			if len(inst.Operands) < 3 {
				return inst.errorf("missing decoration")
			}
			applyDecoration(f.memberDecorationsOf(inst.Operands[0], inst.Operands[1]), Decoration(inst.Operands[2]), inst.Operands[3:])
		case OpDecorateString, OpMemberDecorateString:
		case OpExtInstImport:
			if len(inst.Operands) < 1 {
				return inst.errorf("missing result id")
			}
			f.extSets[inst.Operands[0]], _ = decodeString(inst.Operands[1:])
		case OpEntryPoint:
			if len(inst.Operands) < 3 {
				return inst.errorf("truncated entry point")
			}
			name, n := decodeString(inst.Operands[2:])
			f.entries = append(f.entries, entryDecl{
				inst:       inst,
				model:      ExecutionModel(inst.Operands[0]),
				function:   inst.Operands[1],
				name:       name,
				interfaces: inst.Operands[2+n:],
			})
		case OpExecutionMode, OpExecutionModeID:
			if len(inst.Operands) >= 5 && ExecutionMode(inst.Operands[1]) == ExecutionModeLocalSize && inst.Opcode == OpExecutionMode {
				f.workgroups[inst.Operands[0]] = [3]uint32{inst.Operands[2], inst.Operands[3], inst.Operands[4]}
			}
		case OpTypeVoid, OpTypeBool, OpTypeInt, OpTypeFloat, OpTypeVector, OpTypeMatrix,
			OpTypeImage, OpTypeSampler, OpTypeSampledImage, OpTypeArray, OpTypeRuntimeArray,
			OpTypeStruct, OpTypePointer, OpTypeFunction:
			if err := f.declareType(inst); err != nil {
				return err
			}
		case OpConstantTrue, OpConstantFalse, OpConstant, OpConstantComposite, OpConstantNull,
			OpSpecConstantTrue, OpSpecConstantFalse, OpSpecConstant, OpSpecConstantComposite:
			if err := f.declareConstant(inst); err != nil {
				return err
			}
		case OpUndef:
			if err := f.recordType(inst); err != nil {
				return err
			}
			id, _ := inst.ResultID()
			f.undefs[id] = true
		case OpVariable:
			if err := f.recordType(inst); err != nil {
				return err
			}
			f.variables = append(f.variables, inst)
		case OpFunction:
			if len(inst.Operands) < 4 {
				return inst.errorf("truncated function")
			}
			current = &functionDecl{inst: inst, id: inst.Operands[1], result: inst.Operands[0]}
			f.functions[current.id] = current
			f.order = append(f.order, current.id)
		default:
			return inst.errorf("unsupported instruction at module scope")
		}
	}
	if current != nil {
		return &ParseError{Offset: -1, Message: fmt.Sprintf("function %d has no OpFunctionEnd", current.id)}
	}
	return nil
}

func (f *frontend) recordType(inst Instruction) error {
	typeID, ok := inst.ResultType()
	if !ok {
		return inst.errorf("missing result type")
	}
	id, ok := inst.ResultID()
	if !ok {
		return inst.errorf("missing result id")
	}
	f.typeOf[id] = typeID
	return nil
}

func (f *frontend) decorationsOf(id uint32) *decorations {
	d := f.decorations[id]
	if d == nil {
		d = &decorations{}
		f.decorations[id] = d
	}
	return d
}

func (f *frontend) memberDecorationsOf(id, member uint32) *decorations {
	m := f.memberDecorations[id]
	if m == nil {
		m = make(map[uint32]*decorations)
		f.memberDecorations[id] = m
	}
	d := m[member]
	if d == nil {
		d = &decorations{}
		m[member] = d
	}
	return d
}

// lookupDecorations never returns nil.
func (f *frontend) lookupDecorations(id uint32) *decorations {
	if d := f.decorations[id]; d != nil {
		return d
	}
	return &decorations{}
}

func (f *frontend) lookupMemberDecorations(id, member uint32) *decorations {
	if d := f.memberDecorations[id][member]; d != nil {
		return d
	}
	return &decorations{}
}

//nolint:gocyclo,cyclop // one case per decoration
func applyDecoration(d *decorations, dec Decoration, args []uint32) {
	arg := func() *uint32 {
		if len(args) == 0 {
			return nil
		}
		v := args[0]
		return &v
	}
	switch dec {
	case DecorationBuiltIn:
		if len(args) > 0 {
			b := BuiltIn(args[0])
			d.builtIn = &b
		}
	case DecorationLocation:
		d.location = arg()
	case DecorationBinding:
		d.binding = arg()
	case DecorationDescriptorSet:
		d.set = arg()
	case DecorationOffset:
		d.offset = arg()
	case DecorationArrayStride:
		if len(args) > 0 {
			d.arrayStride = args[0]
		}
	case DecorationBlock:
		d.block = true
	case DecorationBufferBlock:
		d.bufferBlock = true
	case DecorationNonWritable:
		d.nonWritable = true
	case DecorationNonReadable:
		d.nonReadable = true
	case DecorationFlat:
		d.flat = true
	case DecorationNoPerspective:
		d.noPerspective = true
	case DecorationCentroid:
		d.centroid = true
	case DecorationSample:
		d.sample = true
	}
}

func (f *frontend) displayName(id uint32) string {
	if name := f.names[id]; name != "" {
		return name
	}
	return ref(id)
}

// declareConstant lowers a constant instruction into the constant arena.
func (f *frontend) declareConstant(inst Instruction) error {
	if err := f.recordType(inst); err != nil {
		return err
	}
	typeID, _ := inst.ResultType()
	id, _ := inst.ResultID()
	handle, err := f.irType(typeID)
	if err != nil {
		return err
	}
	operands := inst.Operands[2:]

	var value ir.ConstantValue
	switch inst.Opcode {
	case OpConstantTrue, OpSpecConstantTrue:
		value = ir.ScalarValue{Kind: ir.ScalarBool, Bits: 1}
	case OpConstantFalse, OpSpecConstantFalse:
		value = ir.ScalarValue{Kind: ir.ScalarBool}
	case OpConstant, OpSpecConstant:
		scalar, ok := f.registryInner(handle).(ir.ScalarType)
		if !ok || len(operands) == 0 {
			return inst.errorf("constant of non-scalar type")
		}
		bits := uint64(operands[0])
		if len(operands) > 1 {
			bits |= uint64(operands[1]) << 32
		}
		value = ir.ScalarValue{Kind: scalar.Kind, Bits: bits}
	case OpConstantComposite, OpSpecConstantComposite:
		components := make([]ir.ConstantHandle, len(operands))
		for i, c := range operands {
			entry, ok := f.constants[c]
			if !ok {
				return inst.errorf("constituent %s is not a constant", ref(c))
			}
			components[i] = entry.handle
		}
		value = ir.CompositeValue{Components: components}
	case OpConstantNull:
		h, err := f.zeroConstant(typeID)
		if err != nil {
			return inst.errorf("%v", err)
		}
		f.constants[id] = constantEntry{handle: h, typeID: typeID}
		return nil
	}
	f.constants[id] = constantEntry{handle: f.addConstant(f.names[id], handle, value), typeID: typeID}
	return nil
}

func (f *frontend) addConstant(name string, ty ir.TypeHandle, value ir.ConstantValue) ir.ConstantHandle {
	h := ir.ConstantHandle(len(f.module.Constants))
	f.module.Constants = append(f.module.Constants, ir.Constant{Name: name, Type: ty, Value: value})
	return h
}

// zeroConstant builds the zero value of a type out of scalar constants.
func (f *frontend) zeroConstant(typeID uint32) (ir.ConstantHandle, error) {
	handle, err := f.irType(typeID)
	if err != nil {
		return 0, err
	}
	entry := f.types[typeID]
	var parts []uint32
	switch inner := f.registryInner(handle).(type) {
	case ir.ScalarType:
		return f.addConstant("", handle, ir.ScalarValue{Kind: inner.Kind}), nil
	case ir.VectorType, ir.MatrixType:
		for i := uint32(0); i < entry.inst.Operands[2]; i++ {
			parts = append(parts, entry.inst.Operands[1])
		}
	case ir.ArrayType:
		if inner.Size.Kind != ir.ArraySizeConstant {
			return 0, fmt.Errorf("null constant of a runtime array")
		}
		for i := uint32(0); i < inner.Size.Constant; i++ {
			parts = append(parts, entry.inst.Operands[1])
		}
	case ir.StructType:
		parts = entry.inst.Operands[1:]
	default:
		return 0, fmt.Errorf("null constant of opaque type %s", ref(typeID))
	}
	components := make([]ir.ConstantHandle, len(parts))
	for i, p := range parts {
		if components[i], err = f.zeroConstant(p); err != nil {
			return 0, err
		}
	}
	return f.addConstant("", handle, ir.CompositeValue{Components: components}), nil
}

// constantUint returns the value of an integer scalar constant.
func (f *frontend) constantUint(id uint32) (uint64, bool) {
	entry, ok := f.constants[id]
	if !ok {
		return 0, false
	}
	sv, ok := f.module.Constants[entry.handle].Value.(ir.ScalarValue)
	if !ok || (sv.Kind != ir.ScalarSint && sv.Kind != ir.ScalarUint) {
		return 0, false
	}
	return sv.Bits, true
}

// declareGlobal lowers a module-scope OpVariable.
//
//nolint:gocyclo,cyclop,funlen // one branch per storage class
func (f *frontend) declareGlobal(inst Instruction) error {
	if len(inst.Operands) < 3 {
		return inst.errorf("truncated variable")
	}
	ptrType, id, class := inst.Operands[0], inst.Operands[1], StorageClass(inst.Operands[2])
	pointee, _, ok := f.pointee(ptrType)
	if !ok {
		return inst.errorf("variable type %s is not a pointer", ref(ptrType))
	}
	deco := f.lookupDecorations(id)
	gv := ir.GlobalVariable{Name: f.names[id]}

	var err error
	switch class {
	case StorageClassInput, StorageClassOutput:
		f.interfaces[id] = true
		gv.Space = ir.SpacePrivate
		gv.Type, err = f.irType(pointee)
	case StorageClassPrivate:
		gv.Space = ir.SpacePrivate
		gv.Type, err = f.globalType(id, pointee)
	case StorageClassWorkgroup:
		gv.Space = ir.SpaceWorkGroup
		gv.Type, err = f.globalType(id, pointee)
	case StorageClassPushConstant:
		gv.Space = ir.SpacePushConstant
		gv.Type, err = f.irType(pointee)
	case StorageClassUniform:
		gv.Space = ir.SpaceUniform
		if f.lookupDecorations(pointee).bufferBlock {
			gv.Space = ir.SpaceStorage
			gv.Access = f.bufferAccess(id, pointee)
		}
		gv.Type, err = f.globalType(id, pointee)
	case StorageClassStorageBuffer:
		gv.Space = ir.SpaceStorage
		gv.Access = f.bufferAccess(id, pointee)
		gv.Type, err = f.globalType(id, pointee)
	case StorageClassUniformConstant:
		gv.Space = ir.SpaceHandle
		gv.Type, err = f.handleType(pointee, deco)
	default:
		return inst.errorf("unsupported storage class %s", class)
	}
	if err != nil {
		return err
	}

	switch gv.Space {
	case ir.SpaceUniform, ir.SpaceStorage, ir.SpaceHandle:
		if deco.binding != nil || deco.set != nil {
			rb := &ir.ResourceBinding{}
			if deco.set != nil {
				rb.Group = *deco.set
			}
			if deco.binding != nil {
				rb.Binding = *deco.binding
			}
			gv.Binding = rb
		}
	}
	if len(inst.Operands) > 3 {
		c, ok := f.constants[inst.Operands[3]]
		if !ok {
			return inst.errorf("initializer %s is not a constant", ref(inst.Operands[3]))
		}
		gv.Init = &c.handle
	}

	f.globals[id] = globalEntry{handle: ir.GlobalVariableHandle(len(f.module.GlobalVariables)), class: class}
	f.module.GlobalVariables = append(f.module.GlobalVariables, gv)
	return nil
}

// uniqueGlobalNames suffixes repeated names; debug names in SPIR-V need not
// be unique.
func (f *frontend) uniqueGlobalNames() {
	used := make(map[string]bool)
	for i := range f.module.GlobalVariables {
		gv := &f.module.GlobalVariables[i]
		if gv.Name == "" {
			continue
		}
		name := gv.Name
		for n := 1; used[name]; n++ {
			name = fmt.Sprintf("%s_%d", gv.Name, n)
		}
		used[name] = true
		gv.Name = name
	}
}

// bufferAccess is read-only when the variable or every member of its block
// is NonWritable.
func (f *frontend) bufferAccess(id, blockType uint32) ir.StorageAccess {
	if f.lookupDecorations(id).nonWritable {
		return ir.StorageLoad
	}
	entry := f.types[blockType]
	if entry == nil || entry.inst.Opcode != OpTypeStruct {
		return ir.StorageReadWrite
	}
	members := entry.inst.Operands[1:]
	if len(members) == 0 {
		return ir.StorageReadWrite
	}
	for i := range members {
		if !f.lookupMemberDecorations(blockType, uint32(i)).nonWritable {
			return ir.StorageReadWrite
		}
	}
	return ir.StorageLoad
}

// globalType lowers the type of a variable, upgrading the scalars atomics
// operate on to atomic types.
func (f *frontend) globalType(id, pointee uint32) (ir.TypeHandle, error) {
	if paths := f.atomicPaths[id]; len(paths) > 0 {
		return f.atomicType(pointee, paths)
	}
	return f.irType(pointee)
}

// declareHelpers reserves function handles for every function that is not
// only an entry point.
func (f *frontend) declareHelpers() error {
	entries := make(map[uint32]bool, len(f.entries))
	for _, e := range f.entries {
		if f.functions[e.function] == nil {
			return e.inst.errorf("entry point %q names unknown function %s", e.name, ref(e.function))
		}
		entries[e.function] = true
	}
	called := make(map[uint32]bool)
	for _, decl := range f.functions {
		for _, inst := range decl.body {
			if inst.Opcode == OpFunctionCall && len(inst.Operands) > 2 {
				called[inst.Operands[2]] = true
			}
		}
	}
	for _, id := range f.order {
		if entries[id] && !called[id] {
			continue
		}
		f.helpers[id] = ir.FunctionHandle(len(f.module.Functions))
		f.module.Functions = append(f.module.Functions, ir.Function{})
	}
	return nil
}

func (f *frontend) entryPoint(decl entryDecl) (*ir.EntryPoint, error) {
	ep := &ir.EntryPoint{Name: decl.name}
	switch decl.model {
	case ExecutionModelVertex:
		ep.Stage = ir.StageVertex
	case ExecutionModelFragment:
		ep.Stage = ir.StageFragment
	case ExecutionModelGLCompute:
		ep.Stage = ir.StageCompute
	case ExecutionModelTaskEXT:
		ep.Stage = ir.StageTask
	case ExecutionModelMeshEXT:
		ep.Stage = ir.StageMesh
	default:
		return nil, decl.inst.errorf("execution model %s is not supported", decl.model)
	}
	if ep.Stage == ir.StageCompute || ep.Stage == ir.StageTask || ep.Stage == ir.StageMesh {
		ep.Workgroup = f.workgroups[decl.function]
	}

	ctx, err := f.entryInterface(decl, ep.Stage)
	if err != nil {
		return nil, err
	}
	fn, err := newFunctionParser(f, f.functions[decl.function], ctx).parse()
	if err != nil {
		return nil, err
	}
	fn.Name = decl.name
	ep.Function = *fn
	return ep, nil
}

// applyComparisonSamplers retypes samplers used for depth comparison.
func (f *frontend) applyComparisonSamplers() {
	if len(f.comparison) == 0 {
		return
	}
	cmp := f.registry.GetOrCreate("", ir.SamplerType{Comparison: true})
	for h := range f.comparison {
		gv := &f.module.GlobalVariables[h]
		switch t := f.registryInner(gv.Type).(type) {
		case ir.SamplerType:
			gv.Type = cmp
		case ir.BindingArrayType:
			gv.Type = f.registry.GetOrCreate("", ir.BindingArrayType{Base: cmp, Size: t.Size})
		}
	}
}
