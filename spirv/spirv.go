package spirv

import "fmt"

// SPIR-V header constants.
const (
	MagicNumber = 0x07230203
	HeaderWords = 5
	GeneratorID = 0x00000000 // unregistered generator
)

// Version represents a SPIR-V version.
type Version struct {
	Major uint8
	Minor uint8
}

// Common SPIR-V versions
var (
	Version1_0 = Version{1, 0}
	Version1_3 = Version{1, 3}
	Version1_4 = Version{1, 4}
	Version1_5 = Version{1, 5}
	Version1_6 = Version{1, 6}
)

// Word returns the header encoding of the version.
func (v Version) Word() uint32 {
	return uint32(v.Major)<<16 | uint32(v.Minor)<<8
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

func versionFromWord(w uint32) Version {
	return Version{Major: uint8(w >> 16), Minor: uint8(w >> 8)}
}

// ParseVersion parses "1.3" style version strings.
func ParseVersion(s string) (Version, error) {
	var v Version
	if _, err := fmt.Sscanf(s, "%d.%d", &v.Major, &v.Minor); err != nil {
		return Version{}, fmt.Errorf("spirv: bad version %q", s)
	}
	if v.Major != 1 || v.Minor > 6 {
		return Version{}, fmt.Errorf("spirv: unsupported version %s", v)
	}
	return v, nil
}

// OpCode represents a SPIR-V opcode.
type OpCode uint16

// Opcodes understood by the decoder and the frontend.
const (
	OpNop                        OpCode = 0
	OpUndef                      OpCode = 1
	OpSourceContinued            OpCode = 2
	OpSource                     OpCode = 3
	OpSourceExtension            OpCode = 4
	OpName                       OpCode = 5
	OpMemberName                 OpCode = 6
	OpString                     OpCode = 7
	OpLine                       OpCode = 8
	OpExtension                  OpCode = 10
	OpExtInstImport              OpCode = 11
	OpExtInst                    OpCode = 12
	OpMemoryModel                OpCode = 14
	OpEntryPoint                 OpCode = 15
	OpExecutionMode              OpCode = 16
	OpCapability                 OpCode = 17
	OpTypeVoid                   OpCode = 19
	OpTypeBool                   OpCode = 20
	OpTypeInt                    OpCode = 21
	OpTypeFloat                  OpCode = 22
	OpTypeVector                 OpCode = 23
	OpTypeMatrix                 OpCode = 24
	OpTypeImage                  OpCode = 25
	OpTypeSampler                OpCode = 26
	OpTypeSampledImage           OpCode = 27
	OpTypeArray                  OpCode = 28
	OpTypeRuntimeArray           OpCode = 29
	OpTypeStruct                 OpCode = 30
	OpTypeOpaque                 OpCode = 31
	OpTypePointer                OpCode = 32
	OpTypeFunction               OpCode = 33
	OpConstantTrue               OpCode = 41
	OpConstantFalse              OpCode = 42
	OpConstant                   OpCode = 43
	OpConstantComposite          OpCode = 44
	OpConstantSampler            OpCode = 45
	OpConstantNull               OpCode = 46
	OpSpecConstantTrue           OpCode = 48
	OpSpecConstantFalse          OpCode = 49
	OpSpecConstant               OpCode = 50
	OpSpecConstantComposite      OpCode = 51
	OpSpecConstantOp             OpCode = 52
	OpFunction                   OpCode = 54
	OpFunctionParameter          OpCode = 55
	OpFunctionEnd                OpCode = 56
	OpFunctionCall               OpCode = 57
	OpVariable                   OpCode = 59
	OpImageTexelPointer          OpCode = 60
	OpLoad                       OpCode = 61
	OpStore                      OpCode = 62
	OpCopyMemory                 OpCode = 63
	OpAccessChain                OpCode = 65
	OpInBoundsAccessChain        OpCode = 66
	OpPtrAccessChain             OpCode = 67
	OpArrayLength                OpCode = 68
	OpDecorate                   OpCode = 71
	OpMemberDecorate             OpCode = 72
	OpDecorationGroup            OpCode = 73
	OpVectorExtractDynamic       OpCode = 77
	OpVectorInsertDynamic        OpCode = 78
	OpVectorShuffle              OpCode = 79
	OpCompositeConstruct         OpCode = 80
	OpCompositeExtract           OpCode = 81
	OpCompositeInsert            OpCode = 82
	OpCopyObject                 OpCode = 83
	OpTranspose                  OpCode = 84
	OpSampledImage               OpCode = 86
	OpImageSampleImplicitLod     OpCode = 87
	OpImageSampleExplicitLod     OpCode = 88
	OpImageSampleDrefImplicitLod OpCode = 89
	OpImageSampleDrefExplicitLod OpCode = 90
	OpImageFetch                 OpCode = 95
	OpImageGather                OpCode = 96
	OpImageDrefGather            OpCode = 97
	OpImageRead                  OpCode = 98
	OpImageWrite                 OpCode = 99
	OpImage                      OpCode = 100
	OpImageQuerySizeLod          OpCode = 103
	OpImageQuerySize             OpCode = 104
	OpImageQueryLevels           OpCode = 106
	OpImageQuerySamples          OpCode = 107
	OpConvertFToU                OpCode = 109
	OpConvertFToS                OpCode = 110
	OpConvertSToF                OpCode = 111
	OpConvertUToF                OpCode = 112
	OpUConvert                   OpCode = 113
	OpSConvert                   OpCode = 114
	OpFConvert                   OpCode = 115
	OpQuantizeToF16              OpCode = 116
	OpBitcast                    OpCode = 124
	OpSNegate                    OpCode = 126
	OpFNegate                    OpCode = 127
	OpIAdd                       OpCode = 128
	OpFAdd                       OpCode = 129
	OpISub                       OpCode = 130
	OpFSub                       OpCode = 131
	OpIMul                       OpCode = 132
	OpFMul                       OpCode = 133
	OpUDiv                       OpCode = 134
	OpSDiv                       OpCode = 135
	OpFDiv                       OpCode = 136
	OpUMod                       OpCode = 137
	OpSRem                       OpCode = 138
	OpSMod                       OpCode = 139
	OpFRem                       OpCode = 140
	OpFMod                       OpCode = 141
	OpVectorTimesScalar          OpCode = 142
	OpMatrixTimesScalar          OpCode = 143
	OpVectorTimesMatrix          OpCode = 144
	OpMatrixTimesVector          OpCode = 145
	OpMatrixTimesMatrix          OpCode = 146
	OpOuterProduct               OpCode = 147
	OpDot                        OpCode = 148
	OpAny                        OpCode = 154
	OpAll                        OpCode = 155
	OpIsNan                      OpCode = 156
	OpIsInf                      OpCode = 157
	OpLogicalEqual               OpCode = 164
	OpLogicalNotEqual            OpCode = 165
	OpLogicalOr                  OpCode = 166
	OpLogicalAnd                 OpCode = 167
	OpLogicalNot                 OpCode = 168
	OpSelect                     OpCode = 169
	OpIEqual                     OpCode = 170
	OpINotEqual                  OpCode = 171
	OpUGreaterThan               OpCode = 172
	OpSGreaterThan               OpCode = 173
	OpUGreaterThanEqual          OpCode = 174
	OpSGreaterThanEqual          OpCode = 175
	OpULessThan                  OpCode = 176
	OpSLessThan                  OpCode = 177
	OpULessThanEqual             OpCode = 178
	OpSLessThanEqual             OpCode = 179
	OpFOrdEqual                  OpCode = 180
	OpFUnordEqual                OpCode = 181
	OpFOrdNotEqual               OpCode = 182
	OpFUnordNotEqual             OpCode = 183
	OpFOrdLessThan               OpCode = 184
	OpFUnordLessThan             OpCode = 185
	OpFOrdGreaterThan            OpCode = 186
	OpFUnordGreaterThan          OpCode = 187
	OpFOrdLessThanEqual          OpCode = 188
	OpFUnordLessThanEqual        OpCode = 189
	OpFOrdGreaterThanEqual       OpCode = 190
	OpFUnordGreaterThanEqual     OpCode = 191
	OpShiftRightLogical          OpCode = 194
	OpShiftRightArithmetic       OpCode = 195
	OpShiftLeftLogical           OpCode = 196
	OpBitwiseOr                  OpCode = 197
	OpBitwiseXor                 OpCode = 198
	OpBitwiseAnd                 OpCode = 199
	OpNot                        OpCode = 200
	OpBitFieldInsert             OpCode = 201
	OpBitFieldSExtract           OpCode = 202
	OpBitFieldUExtract           OpCode = 203
	OpBitReverse                 OpCode = 204
	OpBitCount                   OpCode = 205
	OpDPdx                       OpCode = 207
	OpDPdy                       OpCode = 208
	OpFwidth                     OpCode = 209
	OpDPdxFine                   OpCode = 210
	OpDPdyFine                   OpCode = 211
	OpFwidthFine                 OpCode = 212
	OpDPdxCoarse                 OpCode = 213
	OpDPdyCoarse                 OpCode = 214
	OpFwidthCoarse               OpCode = 215
	OpControlBarrier             OpCode = 224
	OpMemoryBarrier              OpCode = 225
	OpAtomicLoad                 OpCode = 227
	OpAtomicStore                OpCode = 228
	OpAtomicExchange             OpCode = 229
	OpAtomicCompareExchange      OpCode = 230
	OpAtomicCompareExchangeWeak  OpCode = 231
	OpAtomicIIncrement           OpCode = 232
	OpAtomicIDecrement           OpCode = 233
	OpAtomicIAdd                 OpCode = 234
	OpAtomicISub                 OpCode = 235
	OpAtomicSMin                 OpCode = 236
	OpAtomicUMin                 OpCode = 237
	OpAtomicSMax                 OpCode = 238
	OpAtomicUMax                 OpCode = 239
	OpAtomicAnd                  OpCode = 240
	OpAtomicOr                   OpCode = 241
	OpAtomicXor                  OpCode = 242
	OpPhi                        OpCode = 245
	OpLoopMerge                  OpCode = 246
	OpSelectionMerge             OpCode = 247
	OpLabel                      OpCode = 248
	OpBranch                     OpCode = 249
	OpBranchConditional          OpCode = 250
	OpSwitch                     OpCode = 251
	OpKill                       OpCode = 252
	OpReturn                     OpCode = 253
	OpReturnValue                OpCode = 254
	OpUnreachable                OpCode = 255
	OpNoLine                     OpCode = 317
	OpModuleProcessed            OpCode = 330
	OpExecutionModeID            OpCode = 331
	OpTerminateInvocation        OpCode = 4416
	OpDecorateString             OpCode = 5632
	OpMemberDecorateString       OpCode = 5633
)

// opInfo describes the leading operands of an instruction.
type opInfo struct {
	name   string
	typed  bool // first operand is a result type
	result bool // next operand is a result id
}

var opcodeInfo = map[OpCode]opInfo{
	OpNop:                        {"OpNop", false, false},
	OpUndef:                      {"OpUndef", true, true},
	OpSourceContinued:            {"OpSourceContinued", false, false},
	OpSource:                     {"OpSource", false, false},
	OpSourceExtension:            {"OpSourceExtension", false, false},
	OpName:                       {"OpName", false, false},
	OpMemberName:                 {"OpMemberName", false, false},
	OpString:                     {"OpString", false, true},
	OpLine:                       {"OpLine", false, false},
	OpExtension:                  {"OpExtension", false, false},
	OpExtInstImport:              {"OpExtInstImport", false, true},
	OpExtInst:                    {"OpExtInst", true, true},
	OpMemoryModel:                {"OpMemoryModel", false, false},
	OpEntryPoint:                 {"OpEntryPoint", false, false},
	OpExecutionMode:              {"OpExecutionMode", false, false},
	OpCapability:                 {"OpCapability", false, false},
	OpTypeVoid:                   {"OpTypeVoid", false, true},
	OpTypeBool:                   {"OpTypeBool", false, true},
	OpTypeInt:                    {"OpTypeInt", false, true},
	OpTypeFloat:                  {"OpTypeFloat", false, true},
	OpTypeVector:                 {"OpTypeVector", false, true},
	OpTypeMatrix:                 {"OpTypeMatrix", false, true},
	OpTypeImage:                  {"OpTypeImage", false, true},
	OpTypeSampler:                {"OpTypeSampler", false, true},
	OpTypeSampledImage:           {"OpTypeSampledImage", false, true},
	OpTypeArray:                  {"OpTypeArray", false, true},
	OpTypeRuntimeArray:           {"OpTypeRuntimeArray", false, true},
	OpTypeStruct:                 {"OpTypeStruct", false, true},
	OpTypeOpaque:                 {"OpTypeOpaque", false, true},
	OpTypePointer:                {"OpTypePointer", false, true},
	OpTypeFunction:               {"OpTypeFunction", false, true},
	OpConstantTrue:               {"OpConstantTrue", true, true},
	OpConstantFalse:              {"OpConstantFalse", true, true},
	OpConstant:                   {"OpConstant", true, true},
	OpConstantComposite:          {"OpConstantComposite", true, true},
	OpConstantSampler:            {"OpConstantSampler", true, true},
	OpConstantNull:               {"OpConstantNull", true, true},
	OpSpecConstantTrue:           {"OpSpecConstantTrue", true, true},
	OpSpecConstantFalse:          {"OpSpecConstantFalse", true, true},
	OpSpecConstant:               {"OpSpecConstant", true, true},
	OpSpecConstantComposite:      {"OpSpecConstantComposite", true, true},
	OpSpecConstantOp:             {"OpSpecConstantOp", true, true},
	OpFunction:                   {"OpFunction", true, true},
	OpFunctionParameter:          {"OpFunctionParameter", true, true},
	OpFunctionEnd:                {"OpFunctionEnd", false, false},
	OpFunctionCall:               {"OpFunctionCall", true, true},
	OpVariable:                   {"OpVariable", true, true},
	OpImageTexelPointer:          {"OpImageTexelPointer", true, true},
	OpLoad:                       {"OpLoad", true, true},
	OpStore:                      {"OpStore", false, false},
	OpCopyMemory:                 {"OpCopyMemory", false, false},
	OpAccessChain:                {"OpAccessChain", true, true},
	OpInBoundsAccessChain:        {"OpInBoundsAccessChain", true, true},
	OpPtrAccessChain:             {"OpPtrAccessChain", true, true},
	OpArrayLength:                {"OpArrayLength", true, true},
	OpDecorate:                   {"OpDecorate", false, false},
	OpMemberDecorate:             {"OpMemberDecorate", false, false},
	OpDecorationGroup:            {"OpDecorationGroup", false, true},
	OpVectorExtractDynamic:       {"OpVectorExtractDynamic", true, true},
	OpVectorInsertDynamic:        {"OpVectorInsertDynamic", true, true},
	OpVectorShuffle:              {"OpVectorShuffle", true, true},
	OpCompositeConstruct:         {"OpCompositeConstruct", true, true},
	OpCompositeExtract:           {"OpCompositeExtract", true, true},
	OpCompositeInsert:            {"OpCompositeInsert", true, true},
	OpCopyObject:                 {"OpCopyObject", true, true},
	OpTranspose:                  {"OpTranspose", true, true},
	OpSampledImage:               {"OpSampledImage", true, true},
	OpImageSampleImplicitLod:     {"OpImageSampleImplicitLod", true, true},
	OpImageSampleExplicitLod:     {"OpImageSampleExplicitLod", true, true},
	OpImageSampleDrefImplicitLod: {"OpImageSampleDrefImplicitLod", true, true},
	OpImageSampleDrefExplicitLod: {"OpImageSampleDrefExplicitLod", true, true},
	OpImageFetch:                 {"OpImageFetch", true, true},
	OpImageGather:                {"OpImageGather", true, true},
	OpImageDrefGather:            {"OpImageDrefGather", true, true},
	OpImageRead:                  {"OpImageRead", true, true},
	OpImageWrite:                 {"OpImageWrite", false, false},
	OpImage:                      {"OpImage", true, true},
	OpImageQuerySizeLod:          {"OpImageQuerySizeLod", true, true},
	OpImageQuerySize:             {"OpImageQuerySize", true, true},
	OpImageQueryLevels:           {"OpImageQueryLevels", true, true},
	OpImageQuerySamples:          {"OpImageQuerySamples", true, true},
	OpConvertFToU:                {"OpConvertFToU", true, true},
	OpConvertFToS:                {"OpConvertFToS", true, true},
	OpConvertSToF:                {"OpConvertSToF", true, true},
	OpConvertUToF:                {"OpConvertUToF", true, true},
	OpUConvert:                   {"OpUConvert", true, true},
	OpSConvert:                   {"OpSConvert", true, true},
	OpFConvert:                   {"OpFConvert", true, true},
	OpQuantizeToF16:              {"OpQuantizeToF16", true, true},
	OpBitcast:                    {"OpBitcast", true, true},
	OpSNegate:                    {"OpSNegate", true, true},
	OpFNegate:                    {"OpFNegate", true, true},
	OpIAdd:                       {"OpIAdd", true, true},
	OpFAdd:                       {"OpFAdd", true, true},
	OpISub:                       {"OpISub", true, true},
	OpFSub:                       {"OpFSub", true, true},
	OpIMul:                       {"OpIMul", true, true},
	OpFMul:                       {"OpFMul", true, true},
	OpUDiv:                       {"OpUDiv", true, true},
	OpSDiv:                       {"OpSDiv", true, true},
	OpFDiv:                       {"OpFDiv", true, true},
	OpUMod:                       {"OpUMod", true, true},
	OpSRem:                       {"OpSRem", true, true},
	OpSMod:                       {"OpSMod", true, true},
	OpFRem:                       {"OpFRem", true, true},
	OpFMod:                       {"OpFMod", true, true},
	OpVectorTimesScalar:          {"OpVectorTimesScalar", true, true},
	OpMatrixTimesScalar:          {"OpMatrixTimesScalar", true, true},
	OpVectorTimesMatrix:          {"OpVectorTimesMatrix", true, true},
	OpMatrixTimesVector:          {"OpMatrixTimesVector", true, true},
	OpMatrixTimesMatrix:          {"OpMatrixTimesMatrix", true, true},
	OpOuterProduct:               {"OpOuterProduct", true, true},
	OpDot:                        {"OpDot", true, true},
	OpAny:                        {"OpAny", true, true},
	OpAll:                        {"OpAll", true, true},
	OpIsNan:                      {"OpIsNan", true, true},
	OpIsInf:                      {"OpIsInf", true, true},
	OpLogicalEqual:               {"OpLogicalEqual", true, true},
	OpLogicalNotEqual:            {"OpLogicalNotEqual", true, true},
	OpLogicalOr:                  {"OpLogicalOr", true, true},
	OpLogicalAnd:                 {"OpLogicalAnd", true, true},
	OpLogicalNot:                 {"OpLogicalNot", true, true},
	OpSelect:                     {"OpSelect", true, true},
	OpIEqual:                     {"OpIEqual", true, true},
	OpINotEqual:                  {"OpINotEqual", true, true},
	OpUGreaterThan:               {"OpUGreaterThan", true, true},
	OpSGreaterThan:               {"OpSGreaterThan", true, true},
	OpUGreaterThanEqual:          {"OpUGreaterThanEqual", true, true},
	OpSGreaterThanEqual:          {"OpSGreaterThanEqual", true, true},
	OpULessThan:                  {"OpULessThan", true, true},
	OpSLessThan:                  {"OpSLessThan", true, true},
	OpULessThanEqual:             {"OpULessThanEqual", true, true},
	OpSLessThanEqual:             {"OpSLessThanEqual", true, true},
	OpFOrdEqual:                  {"OpFOrdEqual", true, true},
	OpFUnordEqual:                {"OpFUnordEqual", true, true},
	OpFOrdNotEqual:               {"OpFOrdNotEqual", true, true},
	OpFUnordNotEqual:             {"OpFUnordNotEqual", true, true},
	OpFOrdLessThan:               {"OpFOrdLessThan", true, true},
	OpFUnordLessThan:             {"OpFUnordLessThan", true, true},
	OpFOrdGreaterThan:            {"OpFOrdGreaterThan", true, true},
	OpFUnordGreaterThan:          {"OpFUnordGreaterThan", true, true},
	OpFOrdLessThanEqual:          {"OpFOrdLessThanEqual", true, true},
	OpFUnordLessThanEqual:        {"OpFUnordLessThanEqual", true, true},
	OpFOrdGreaterThanEqual:       {"OpFOrdGreaterThanEqual", true, true},
	OpFUnordGreaterThanEqual:     {"OpFUnordGreaterThanEqual", true, true},
	OpShiftRightLogical:          {"OpShiftRightLogical", true, true},
	OpShiftRightArithmetic:       {"OpShiftRightArithmetic", true, true},
	OpShiftLeftLogical:           {"OpShiftLeftLogical", true, true},
	OpBitwiseOr:                  {"OpBitwiseOr", true, true},
	OpBitwiseXor:                 {"OpBitwiseXor", true, true},
	OpBitwiseAnd:                 {"OpBitwiseAnd", true, true},
	OpNot:                        {"OpNot", true, true},
	OpBitFieldInsert:             {"OpBitFieldInsert", true, true},
	OpBitFieldSExtract:           {"OpBitFieldSExtract", true, true},
	OpBitFieldUExtract:           {"OpBitFieldUExtract", true, true},
	OpBitReverse:                 {"OpBitReverse", true, true},
	OpBitCount:                   {"OpBitCount", true, true},
	OpDPdx:                       {"OpDPdx", true, true},
	OpDPdy:                       {"OpDPdy", true, true},
	OpFwidth:                     {"OpFwidth", true, true},
	OpDPdxFine:                   {"OpDPdxFine", true, true},
	OpDPdyFine:                   {"OpDPdyFine", true, true},
	OpFwidthFine:                 {"OpFwidthFine", true, true},
	OpDPdxCoarse:                 {"OpDPdxCoarse", true, true},
	OpDPdyCoarse:                 {"OpDPdyCoarse", true, true},
	OpFwidthCoarse:               {"OpFwidthCoarse", true, true},
	OpControlBarrier:             {"OpControlBarrier", false, false},
	OpMemoryBarrier:              {"OpMemoryBarrier", false, false},
	OpAtomicLoad:                 {"OpAtomicLoad", true, true},
	OpAtomicStore:                {"OpAtomicStore", false, false},
	OpAtomicExchange:             {"OpAtomicExchange", true, true},
	OpAtomicCompareExchange:      {"OpAtomicCompareExchange", true, true},
	OpAtomicCompareExchangeWeak:  {"OpAtomicCompareExchangeWeak", true, true},
	OpAtomicIIncrement:           {"OpAtomicIIncrement", true, true},
	OpAtomicIDecrement:           {"OpAtomicIDecrement", true, true},
	OpAtomicIAdd:                 {"OpAtomicIAdd", true, true},
	OpAtomicISub:                 {"OpAtomicISub", true, true},
	OpAtomicSMin:                 {"OpAtomicSMin", true, true},
	OpAtomicUMin:                 {"OpAtomicUMin", true, true},
	OpAtomicSMax:                 {"OpAtomicSMax", true, true},
	OpAtomicUMax:                 {"OpAtomicUMax", true, true},
	OpAtomicAnd:                  {"OpAtomicAnd", true, true},
	OpAtomicOr:                   {"OpAtomicOr", true, true},
	OpAtomicXor:                  {"OpAtomicXor", true, true},
	OpPhi:                        {"OpPhi", true, true},
	OpLoopMerge:                  {"OpLoopMerge", false, false},
	OpSelectionMerge:             {"OpSelectionMerge", false, false},
	OpLabel:                      {"OpLabel", false, true},
	OpBranch:                     {"OpBranch", false, false},
	OpBranchConditional:          {"OpBranchConditional", false, false},
	OpSwitch:                     {"OpSwitch", false, false},
	OpKill:                       {"OpKill", false, false},
	OpReturn:                     {"OpReturn", false, false},
	OpReturnValue:                {"OpReturnValue", false, false},
	OpUnreachable:                {"OpUnreachable", false, false},
	OpNoLine:                     {"OpNoLine", false, false},
	OpModuleProcessed:            {"OpModuleProcessed", false, false},
	OpExecutionModeID:            {"OpExecutionModeId", false, false},
	OpTerminateInvocation:        {"OpTerminateInvocation", false, false},
	OpDecorateString:             {"OpDecorateString", false, false},
	OpMemberDecorateString:       {"OpMemberDecorateString", false, false},
}

func (op OpCode) String() string {
	if info, ok := opcodeInfo[op]; ok {
		return info.name
	}
	return fmt.Sprintf("Op%d", uint16(op))
}

// Capability represents a SPIR-V capability.
type Capability uint32

// Common capabilities
const (
	CapabilityMatrix            Capability = 0
	CapabilityShader            Capability = 1
	CapabilityFloat16           Capability = 9
	CapabilityFloat64           Capability = 10
	CapabilityInt64             Capability = 11
	CapabilityInt64Atomics      Capability = 12
	CapabilityInt16             Capability = 22
	CapabilityImageQuery        Capability = 50
	CapabilityDerivativeControl Capability = 51
	CapabilityStorageImageExt   Capability = 49
)

var capabilityNames = map[Capability]string{
	0:    "Matrix",
	1:    "Shader",
	2:    "Geometry",
	3:    "Tessellation",
	4:    "Addresses",
	5:    "Linkage",
	6:    "Kernel",
	7:    "Vector16",
	8:    "Float16Buffer",
	9:    "Float16",
	10:   "Float64",
	11:   "Int64",
	12:   "Int64Atomics",
	13:   "ImageBasic",
	14:   "ImageReadWrite",
	15:   "ImageMipmap",
	17:   "Pipes",
	18:   "Groups",
	19:   "DeviceEnqueue",
	20:   "LiteralSampler",
	21:   "AtomicStorage",
	22:   "Int16",
	23:   "TessellationPointSize",
	24:   "GeometryPointSize",
	25:   "ImageGatherExtended",
	27:   "StorageImageMultisample",
	28:   "UniformBufferArrayDynamicIndexing",
	29:   "SampledImageArrayDynamicIndexing",
	30:   "StorageBufferArrayDynamicIndexing",
	31:   "StorageImageArrayDynamicIndexing",
	32:   "ClipDistance",
	33:   "CullDistance",
	34:   "ImageCubeArray",
	35:   "SampleRateShading",
	36:   "ImageRect",
	37:   "SampledRect",
	38:   "GenericPointer",
	39:   "Int8",
	40:   "InputAttachment",
	41:   "SparseResidency",
	42:   "MinLod",
	43:   "Sampled1D",
	44:   "Image1D",
	45:   "SampledCubeArray",
	46:   "SampledBuffer",
	47:   "ImageBuffer",
	48:   "ImageMSArray",
	49:   "StorageImageExtendedFormats",
	50:   "ImageQuery",
	51:   "DerivativeControl",
	52:   "InterpolationFunction",
	53:   "TransformFeedback",
	54:   "GeometryStreams",
	55:   "StorageImageReadWithoutFormat",
	56:   "StorageImageWriteWithoutFormat",
	57:   "MultiViewport",
	61:   "GroupNonUniform",
	62:   "GroupNonUniformVote",
	63:   "GroupNonUniformArithmetic",
	64:   "GroupNonUniformBallot",
	65:   "GroupNonUniformShuffle",
	66:   "GroupNonUniformShuffleRelative",
	67:   "GroupNonUniformClustered",
	68:   "GroupNonUniformQuad",
	4423: "SubgroupBallotKHR",
	4427: "DrawParameters",
	4433: "StorageBuffer16BitAccess",
	4434: "UniformAndStorageBuffer16BitAccess",
	4437: "DeviceGroup",
	4439: "MultiView",
	4441: "VariablePointersStorageBuffer",
	4442: "VariablePointers",
	5013: "StencilExportEXT",
	5301: "ShaderNonUniform",
	5302: "RuntimeDescriptorArray",
	5345: "VulkanMemoryModel",
}

func (c Capability) String() string { return lookupName(capabilityNames, c) }

// AddressingModel is the addressing model of OpMemoryModel.
type AddressingModel uint32

// MemoryModel is the memory model of OpMemoryModel.
type MemoryModel uint32

const (
	AddressingModelLogical AddressingModel = 0
	MemoryModelGLSL450     MemoryModel     = 1
	MemoryModelVulkan      MemoryModel     = 3
)

var addressingModelNames = map[AddressingModel]string{
	0: "Logical", 1: "Physical32", 2: "Physical64", 5348: "PhysicalStorageBuffer64",
}

var memoryModelNames = map[MemoryModel]string{
	0: "Simple", 1: "GLSL450", 2: "OpenCL", 3: "Vulkan",
}

func (m AddressingModel) String() string { return lookupName(addressingModelNames, m) }
func (m MemoryModel) String() string     { return lookupName(memoryModelNames, m) }

// StorageClass is the storage class of a pointer or variable.
type StorageClass uint32

const (
	StorageClassUniformConstant StorageClass = 0
	StorageClassInput           StorageClass = 1
	StorageClassUniform         StorageClass = 2
	StorageClassOutput          StorageClass = 3
	StorageClassWorkgroup       StorageClass = 4
	StorageClassCrossWorkgroup  StorageClass = 5
	StorageClassPrivate         StorageClass = 6
	StorageClassFunction        StorageClass = 7
	StorageClassGeneric         StorageClass = 8
	StorageClassPushConstant    StorageClass = 9
	StorageClassAtomicCounter   StorageClass = 10
	StorageClassImage           StorageClass = 11
	StorageClassStorageBuffer   StorageClass = 12
)

var storageClassNames = map[StorageClass]string{
	0:  "UniformConstant",
	1:  "Input",
	2:  "Uniform",
	3:  "Output",
	4:  "Workgroup",
	5:  "CrossWorkgroup",
	6:  "Private",
	7:  "Function",
	8:  "Generic",
	9:  "PushConstant",
	10: "AtomicCounter",
	11: "Image",
	12: "StorageBuffer",
}

func (s StorageClass) String() string { return lookupName(storageClassNames, s) }

// Decoration represents a SPIR-V decoration.
type Decoration uint32

const (
	DecorationRelaxedPrecision Decoration = 0
	DecorationSpecID           Decoration = 1
	DecorationBlock            Decoration = 2
	DecorationBufferBlock      Decoration = 3
	DecorationRowMajor         Decoration = 4
	DecorationColMajor         Decoration = 5
	DecorationArrayStride      Decoration = 6
	DecorationMatrixStride     Decoration = 7
	DecorationBuiltIn          Decoration = 11
	DecorationNoPerspective    Decoration = 13
	DecorationFlat             Decoration = 14
	DecorationCentroid         Decoration = 16
	DecorationSample           Decoration = 17
	DecorationInvariant        Decoration = 18
	DecorationNonWritable      Decoration = 24
	DecorationNonReadable      Decoration = 25
	DecorationLocation         Decoration = 30
	DecorationComponent        Decoration = 31
	DecorationIndex            Decoration = 32
	DecorationBinding          Decoration = 33
	DecorationDescriptorSet    Decoration = 34
	DecorationOffset           Decoration = 35
)

var decorationNames = map[Decoration]string{
	0:  "RelaxedPrecision",
	1:  "SpecId",
	2:  "Block",
	3:  "BufferBlock",
	4:  "RowMajor",
	5:  "ColMajor",
	6:  "ArrayStride",
	7:  "MatrixStride",
	8:  "GLSLShared",
	9:  "GLSLPacked",
	10: "CPacked",
	11: "BuiltIn",
	13: "NoPerspective",
	14: "Flat",
	15: "Patch",
	16: "Centroid",
	17: "Sample",
	18: "Invariant",
	19: "Restrict",
	20: "Aliased",
	21: "Volatile",
	22: "Constant",
	23: "Coherent",
	24: "NonWritable",
	25: "NonReadable",
	26: "Uniform",
	28: "SaturatedConversion",
	29: "Stream",
	30: "Location",
	31: "Component",
	32: "Index",
	33: "Binding",
	34: "DescriptorSet",
	35: "Offset",
	36: "XfbBuffer",
	37: "XfbStride",
	38: "FuncParamAttr",
	39: "FPRoundingMode",
	40: "FPFastMathMode",
	41: "LinkageAttributes",
	42: "NoContraction",
	43: "InputAttachmentIndex",
	44: "Alignment",
}

func (d Decoration) String() string { return lookupName(decorationNames, d) }

// BuiltIn is the operand of a BuiltIn decoration.
type BuiltIn uint32

const (
	BuiltInPosition             BuiltIn = 0
	BuiltInPointSize            BuiltIn = 1
	BuiltInFragCoord            BuiltIn = 15
	BuiltInFrontFacing          BuiltIn = 17
	BuiltInSampleID             BuiltIn = 18
	BuiltInSampleMask           BuiltIn = 20
	BuiltInFragDepth            BuiltIn = 22
	BuiltInNumWorkgroups        BuiltIn = 24
	BuiltInWorkgroupID          BuiltIn = 26
	BuiltInLocalInvocationID    BuiltIn = 27
	BuiltInGlobalInvocationID   BuiltIn = 28
	BuiltInLocalInvocationIndex BuiltIn = 29
	BuiltInVertexIndex          BuiltIn = 42
	BuiltInInstanceIndex        BuiltIn = 43
)

var builtInNames = map[BuiltIn]string{
	0:  "Position",
	1:  "PointSize",
	3:  "ClipDistance",
	4:  "CullDistance",
	5:  "VertexId",
	6:  "InstanceId",
	7:  "PrimitiveId",
	8:  "InvocationId",
	9:  "Layer",
	10: "ViewportIndex",
	11: "TessLevelOuter",
	12: "TessLevelInner",
	13: "TessCoord",
	14: "PatchVertices",
	15: "FragCoord",
	16: "PointCoord",
	17: "FrontFacing",
	18: "SampleId",
	19: "SamplePosition",
	20: "SampleMask",
	22: "FragDepth",
	23: "HelperInvocation",
	24: "NumWorkgroups",
	25: "WorkgroupSize",
	26: "WorkgroupId",
	27: "LocalInvocationId",
	28: "GlobalInvocationId",
	29: "LocalInvocationIndex",
	36: "SubgroupSize",
	38: "NumSubgroups",
	40: "SubgroupId",
	41: "SubgroupLocalInvocationId",
	42: "VertexIndex",
	43: "InstanceIndex",
}

func (b BuiltIn) String() string { return lookupName(builtInNames, b) }

// ExecutionModel is the pipeline stage of an OpEntryPoint.
type ExecutionModel uint32

const (
	ExecutionModelVertex    ExecutionModel = 0
	ExecutionModelFragment  ExecutionModel = 4
	ExecutionModelGLCompute ExecutionModel = 5
	ExecutionModelTaskEXT   ExecutionModel = 5364
	ExecutionModelMeshEXT   ExecutionModel = 5365
)

var executionModelNames = map[ExecutionModel]string{
	0:    "Vertex",
	1:    "TessellationControl",
	2:    "TessellationEvaluation",
	3:    "Geometry",
	4:    "Fragment",
	5:    "GLCompute",
	6:    "Kernel",
	5364: "TaskEXT",
	5365: "MeshEXT",
}

func (m ExecutionModel) String() string { return lookupName(executionModelNames, m) }

// ExecutionMode is the operand of OpExecutionMode.
type ExecutionMode uint32

const (
	ExecutionModeOriginUpperLeft    ExecutionMode = 7
	ExecutionModeEarlyFragmentTests ExecutionMode = 9
	ExecutionModeDepthReplacing     ExecutionMode = 12
	ExecutionModeLocalSize          ExecutionMode = 17
)

var executionModeNames = map[ExecutionMode]string{
	0:  "Invocations",
	1:  "SpacingEqual",
	2:  "SpacingFractionalEven",
	3:  "SpacingFractionalOdd",
	4:  "VertexOrderCw",
	5:  "VertexOrderCcw",
	6:  "PixelCenterInteger",
	7:  "OriginUpperLeft",
	8:  "OriginLowerLeft",
	9:  "EarlyFragmentTests",
	10: "PointMode",
	11: "Xfb",
	12: "DepthReplacing",
	14: "DepthGreater",
	15: "DepthLess",
	16: "DepthUnchanged",
	17: "LocalSize",
	18: "LocalSizeHint",
	19: "InputPoints",
	20: "InputLines",
	21: "InputLinesAdjacency",
	22: "Triangles",
	23: "InputTrianglesAdjacency",
	24: "Quads",
	25: "Isolines",
	26: "OutputVertices",
	27: "OutputPoints",
	28: "OutputLineStrip",
	29: "OutputTriangleStrip",
	30: "VecTypeHint",
	31: "ContractionOff",
	33: "Initializer",
	34: "Finalizer",
	35: "SubgroupSize",
	36: "SubgroupsPerWorkgroup",
}

func (m ExecutionMode) String() string { return lookupName(executionModeNames, m) }

// Dim is the dimensionality of an OpTypeImage.
type Dim uint32

const (
	Dim1D          Dim = 0
	Dim2D          Dim = 1
	Dim3D          Dim = 2
	DimCube        Dim = 3
	DimRect        Dim = 4
	DimBuffer      Dim = 5
	DimSubpassData Dim = 6
)

var dimNames = map[Dim]string{
	0: "1D", 1: "2D", 2: "3D", 3: "Cube", 4: "Rect", 5: "Buffer", 6: "SubpassData",
}

func (d Dim) String() string { return lookupName(dimNames, d) }

// ImageFormat is the texel format operand of OpTypeImage.
type ImageFormat uint32

const (
	ImageFormatUnknown    ImageFormat = 0
	ImageFormatRgba32f    ImageFormat = 1
	ImageFormatRgba16f    ImageFormat = 2
	ImageFormatR32f       ImageFormat = 3
	ImageFormatRgba8      ImageFormat = 4
	ImageFormatRgba8Snorm ImageFormat = 5
	ImageFormatRg32f      ImageFormat = 6
	ImageFormatRgba32i    ImageFormat = 21
	ImageFormatRgba16i    ImageFormat = 22
	ImageFormatRgba8i     ImageFormat = 23
	ImageFormatR32i       ImageFormat = 24
	ImageFormatRg32i      ImageFormat = 25
	ImageFormatRgba32ui   ImageFormat = 30
	ImageFormatRgba16ui   ImageFormat = 31
	ImageFormatRgba8ui    ImageFormat = 32
	ImageFormatR32ui      ImageFormat = 33
	ImageFormatRg32ui     ImageFormat = 35
)

var imageFormatNames = map[ImageFormat]string{
	0:  "Unknown",
	1:  "Rgba32f",
	2:  "Rgba16f",
	3:  "R32f",
	4:  "Rgba8",
	5:  "Rgba8Snorm",
	6:  "Rg32f",
	7:  "Rg16f",
	8:  "R11fG11fB10f",
	9:  "R16f",
	10: "Rgba16",
	11: "Rgb10A2",
	12: "Rg16",
	13: "Rg8",
	14: "R16",
	15: "R8",
	16: "Rgba16Snorm",
	17: "Rg16Snorm",
	18: "Rg8Snorm",
	19: "R16Snorm",
	20: "R8Snorm",
	21: "Rgba32i",
	22: "Rgba16i",
	23: "Rgba8i",
	24: "R32i",
	25: "Rg32i",
	26: "Rg16i",
	27: "Rg8i",
	28: "R16i",
	29: "R8i",
	30: "Rgba32ui",
	31: "Rgba16ui",
	32: "Rgba8ui",
	33: "R32ui",
	34: "Rgb10a2ui",
	35: "Rg32ui",
	36: "Rg16ui",
	37: "Rg8ui",
	38: "R16ui",
	39: "R8ui",
}

func (f ImageFormat) String() string { return lookupName(imageFormatNames, f) }

// Image operand mask bits.
const (
	ImageOperandsBias         = 0x1
	ImageOperandsLod          = 0x2
	ImageOperandsGrad         = 0x4
	ImageOperandsConstOffset  = 0x8
	ImageOperandsOffset       = 0x10
	ImageOperandsConstOffsets = 0x20
	ImageOperandsSample       = 0x40
	ImageOperandsMinLod       = 0x80
)

// Memory semantics bits of barriers and atomics.
const (
	MemorySemanticsUniformMemory   = 0x40
	MemorySemanticsWorkgroupMemory = 0x100
	MemorySemanticsImageMemory     = 0x800
)

// Scope operands.
const (
	ScopeDevice    = 1
	ScopeWorkgroup = 2
	ScopeSubgroup  = 3
)

// GLSL.std.450 extended instruction numbers used by the frontend.
const (
	GLSLRound           = 1
	GLSLRoundEven       = 2
	GLSLTrunc           = 3
	GLSLFAbs            = 4
	GLSLSAbs            = 5
	GLSLFSign           = 6
	GLSLSSign           = 7
	GLSLFloor           = 8
	GLSLCeil            = 9
	GLSLFract           = 10
	GLSLRadians         = 11
	GLSLDegrees         = 12
	GLSLSin             = 13
	GLSLCos             = 14
	GLSLTan             = 15
	GLSLAsin            = 16
	GLSLAcos            = 17
	GLSLAtan            = 18
	GLSLSinh            = 19
	GLSLCosh            = 20
	GLSLTanh            = 21
	GLSLAsinh           = 22
	GLSLAcosh           = 23
	GLSLAtanh           = 24
	GLSLAtan2           = 25
	GLSLPow             = 26
	GLSLExp             = 27
	GLSLLog             = 28
	GLSLExp2            = 29
	GLSLLog2            = 30
	GLSLSqrt            = 31
	GLSLInverseSqrt     = 32
	GLSLDeterminant     = 33
	GLSLMatrixInv       = 34
	GLSLModfStruct      = 36
	GLSLFMin            = 37
	GLSLUMin            = 38
	GLSLSMin            = 39
	GLSLFMax            = 40
	GLSLUMax            = 41
	GLSLSMax            = 42
	GLSLFClamp          = 43
	GLSLUClamp          = 44
	GLSLSClamp          = 45
	GLSLFMix            = 46
	GLSLStep            = 48
	GLSLSmoothStep      = 49
	GLSLFma             = 50
	GLSLFrexpStruct     = 52
	GLSLLdexp           = 53
	GLSLPackSnorm4x8    = 54
	GLSLPackUnorm4x8    = 55
	GLSLPackSnorm2x16   = 56
	GLSLPackUnorm2x16   = 57
	GLSLPackHalf2x16    = 58
	GLSLUnpackSnorm2x16 = 60
	GLSLUnpackUnorm2x16 = 61
	GLSLUnpackHalf2x16  = 62
	GLSLUnpackSnorm4x8  = 63
	GLSLUnpackUnorm4x8  = 64
	GLSLLength          = 66
	GLSLDistance        = 67
	GLSLCross           = 68
	GLSLNormalize       = 69
	GLSLFaceForward     = 70
	GLSLReflect         = 71
	GLSLRefract         = 72
	GLSLFindILsb        = 73
	GLSLFindSMsb        = 74
	GLSLFindUMsb        = 75
	GLSLNMin            = 79
	GLSLNMax            = 80
	GLSLNClamp          = 81
)

// ExtInstSetGLSL is the import name of the GLSL extended instruction set.
const ExtInstSetGLSL = "GLSL.std.450"

func lookupName[K ~uint32](names map[K]string, v K) string {
	if s, ok := names[v]; ok {
		return s
	}
	return fmt.Sprintf("%d", uint32(v))
}
