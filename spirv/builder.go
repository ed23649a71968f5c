package spirv

import "math"

type section int

const (
	sectionCapabilities section = iota
	sectionExtensions
	sectionExtInstImports
	sectionMemoryModel
	sectionEntryPoints
	sectionExecutionModes
	sectionDebug
	sectionAnnotations
	sectionTypes
	sectionFunctions
	sectionCount
)

// ModuleBuilder assembles a SPIR-V module section by section. Instructions
// may be added in any order; Build lays the sections out in module order.
type ModuleBuilder struct {
	version  Version
	nextID   uint32
	sections [sectionCount][]uint32
}

// NewModuleBuilder creates a new SPIR-V module builder.
func NewModuleBuilder(version Version) *ModuleBuilder {
	return &ModuleBuilder{version: version, nextID: 1}
}

// AllocID allocates a new SPIR-V ID.
func (b *ModuleBuilder) AllocID() uint32 {
	id := b.nextID
	b.nextID++
	return id
}

func (b *ModuleBuilder) emit(s section, op OpCode, operands ...uint32) {
	b.sections[s] = append(b.sections[s], uint32(len(operands)+1)<<16|uint32(op))
	b.sections[s] = append(b.sections[s], operands...)
}

// AddCapability adds a capability.
func (b *ModuleBuilder) AddCapability(c Capability) {
	b.emit(sectionCapabilities, OpCapability, uint32(c))
}

// AddExtInstImport imports an extended instruction set.
func (b *ModuleBuilder) AddExtInstImport(name string) uint32 {
	id := b.AllocID()
	b.emit(sectionExtInstImports, OpExtInstImport, append([]uint32{id}, encodeString(name)...)...)
	return id
}

// SetMemoryModel sets the addressing and memory model.
func (b *ModuleBuilder) SetMemoryModel(addressing AddressingModel, memory MemoryModel) {
	b.sections[sectionMemoryModel] = nil
	b.emit(sectionMemoryModel, OpMemoryModel, uint32(addressing), uint32(memory))
}

// AddEntryPoint declares fn as an entry point.
func (b *ModuleBuilder) AddEntryPoint(model ExecutionModel, fn uint32, name string, interfaces ...uint32) {
	operands := append([]uint32{uint32(model), fn}, encodeString(name)...)
	b.emit(sectionEntryPoints, OpEntryPoint, append(operands, interfaces...)...)
}

// AddExecutionMode adds an execution mode to an entry point.
func (b *ModuleBuilder) AddExecutionMode(fn uint32, mode ExecutionMode, params ...uint32) {
	b.emit(sectionExecutionModes, OpExecutionMode, append([]uint32{fn, uint32(mode)}, params...)...)
}

// AddName adds a debug name.
func (b *ModuleBuilder) AddName(id uint32, name string) {
	b.emit(sectionDebug, OpName, append([]uint32{id}, encodeString(name)...)...)
}

// AddMemberName adds a debug name to a struct member.
func (b *ModuleBuilder) AddMemberName(structID, member uint32, name string) {
	b.emit(sectionDebug, OpMemberName, append([]uint32{structID, member}, encodeString(name)...)...)
}

// AddDecorate decorates an id.
func (b *ModuleBuilder) AddDecorate(id uint32, decoration Decoration, params ...uint32) {
	b.emit(sectionAnnotations, OpDecorate, append([]uint32{id, uint32(decoration)}, params...)...)
}

// AddMemberDecorate decorates a struct member.
func (b *ModuleBuilder) AddMemberDecorate(structID, member uint32, decoration Decoration, params ...uint32) {
	b.emit(sectionAnnotations, OpMemberDecorate, append([]uint32{structID, member, uint32(decoration)}, params...)...)
}

// AddType declares a type. Operands follow the result id.
func (b *ModuleBuilder) AddType(op OpCode, operands ...uint32) uint32 {
	id := b.AllocID()
	b.emit(sectionTypes, op, append([]uint32{id}, operands...)...)
	return id
}

// AddTypePointer declares a pointer type.
func (b *ModuleBuilder) AddTypePointer(class StorageClass, base uint32) uint32 {
	return b.AddType(OpTypePointer, uint32(class), base)
}

// AddConstant declares a constant of a typed opcode (OpConstant,
// OpConstantComposite, OpConstantNull and friends).
func (b *ModuleBuilder) AddConstant(op OpCode, typeID uint32, operands ...uint32) uint32 {
	id := b.AllocID()
	b.emit(sectionTypes, op, append([]uint32{typeID, id}, operands...)...)
	return id
}

// AddConstantFloat32 declares a 32-bit float constant.
func (b *ModuleBuilder) AddConstantFloat32(typeID uint32, value float32) uint32 {
	return b.AddConstant(OpConstant, typeID, math.Float32bits(value))
}

// AddVariable declares a module-scope variable of a pointer type.
func (b *ModuleBuilder) AddVariable(pointerType uint32, class StorageClass) uint32 {
	id := b.AllocID()
	b.emit(sectionTypes, OpVariable, pointerType, id, uint32(class))
	return id
}

// AddValue appends a typed instruction to the function section and
// returns its result id.
func (b *ModuleBuilder) AddValue(op OpCode, resultType uint32, operands ...uint32) uint32 {
	id := b.AllocID()
	b.emit(sectionFunctions, op, append([]uint32{resultType, id}, operands...)...)
	return id
}

// AddCode appends an instruction without a result to the function section.
func (b *ModuleBuilder) AddCode(op OpCode, operands ...uint32) {
	b.emit(sectionFunctions, op, operands...)
}

// AddFunction opens a function.
func (b *ModuleBuilder) AddFunction(returnType, funcType uint32) uint32 {
	return b.AddValue(OpFunction, returnType, 0, funcType)
}

// AddLabel opens a block with a fresh label.
func (b *ModuleBuilder) AddLabel() uint32 {
	id := b.AllocID()
	b.AddBlock(id)
	return id
}

// AddBlock opens a block with a label allocated earlier, for forward
// branch targets.
func (b *ModuleBuilder) AddBlock(label uint32) {
	b.emit(sectionFunctions, OpLabel, label)
}

// Words lays out the module.
func (b *ModuleBuilder) Words() []uint32 {
	words := []uint32{MagicNumber, b.version.Word(), GeneratorID, b.nextID, 0}
	if b.sections[sectionMemoryModel] == nil {
		b.SetMemoryModel(AddressingModelLogical, MemoryModelGLSL450)
	}
	for _, s := range b.sections {
		words = append(words, s...)
	}
	return words
}

// Build lays out the module as little-endian bytes.
func (b *ModuleBuilder) Build() []byte {
	return Bytes(b.Words())
}
