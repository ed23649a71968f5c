package spirv

import "github.com/gogpu/shaderkit/ir"

type glslInstruction struct {
	fun  ir.MathFunction
	args int
}

var glslInstructions = map[uint32]glslInstruction{
	GLSLRound:           {ir.MathRound, 1},
	GLSLRoundEven:       {ir.MathRound, 1},
	GLSLTrunc:           {ir.MathTrunc, 1},
	GLSLFAbs:            {ir.MathAbs, 1},
	GLSLSAbs:            {ir.MathAbs, 1},
	GLSLFSign:           {ir.MathSign, 1},
	GLSLSSign:           {ir.MathSign, 1},
	GLSLFloor:           {ir.MathFloor, 1},
	GLSLCeil:            {ir.MathCeil, 1},
	GLSLFract:           {ir.MathFract, 1},
	GLSLRadians:         {ir.MathRadians, 1},
	GLSLDegrees:         {ir.MathDegrees, 1},
	GLSLSin:             {ir.MathSin, 1},
	GLSLCos:             {ir.MathCos, 1},
	GLSLTan:             {ir.MathTan, 1},
	GLSLAsin:            {ir.MathAsin, 1},
	GLSLAcos:            {ir.MathAcos, 1},
	GLSLAtan:            {ir.MathAtan, 1},
	GLSLSinh:            {ir.MathSinh, 1},
	GLSLCosh:            {ir.MathCosh, 1},
	GLSLTanh:            {ir.MathTanh, 1},
	GLSLAsinh:           {ir.MathAsinh, 1},
	GLSLAcosh:           {ir.MathAcosh, 1},
	GLSLAtanh:           {ir.MathAtanh, 1},
	GLSLAtan2:           {ir.MathAtan2, 2},
	GLSLPow:             {ir.MathPow, 2},
	GLSLExp:             {ir.MathExp, 1},
	GLSLLog:             {ir.MathLog, 1},
	GLSLExp2:            {ir.MathExp2, 1},
	GLSLLog2:            {ir.MathLog2, 1},
	GLSLSqrt:            {ir.MathSqrt, 1},
	GLSLInverseSqrt:     {ir.MathInverseSqrt, 1},
	GLSLDeterminant:     {ir.MathDeterminant, 1},
	GLSLMatrixInv:       {ir.MathInverse, 1},
	GLSLModfStruct:      {ir.MathModf, 1},
	GLSLFMin:            {ir.MathMin, 2},
	GLSLUMin:            {ir.MathMin, 2},
	GLSLSMin:            {ir.MathMin, 2},
	GLSLNMin:            {ir.MathMin, 2},
	GLSLFMax:            {ir.MathMax, 2},
	GLSLUMax:            {ir.MathMax, 2},
	GLSLSMax:            {ir.MathMax, 2},
	GLSLNMax:            {ir.MathMax, 2},
	GLSLFClamp:          {ir.MathClamp, 3},
	GLSLUClamp:          {ir.MathClamp, 3},
	GLSLSClamp:          {ir.MathClamp, 3},
	GLSLNClamp:          {ir.MathClamp, 3},
	GLSLFMix:            {ir.MathMix, 3},
	GLSLStep:            {ir.MathStep, 2},
	GLSLSmoothStep:      {ir.MathSmoothStep, 3},
	GLSLFma:             {ir.MathFma, 3},
	GLSLFrexpStruct:     {ir.MathFrexp, 1},
	GLSLLdexp:           {ir.MathLdexp, 2},
	GLSLPackSnorm4x8:    {ir.MathPack4x8snorm, 1},
	GLSLPackUnorm4x8:    {ir.MathPack4x8unorm, 1},
	GLSLPackSnorm2x16:   {ir.MathPack2x16snorm, 1},
	GLSLPackUnorm2x16:   {ir.MathPack2x16unorm, 1},
	GLSLPackHalf2x16:    {ir.MathPack2x16float, 1},
	GLSLUnpackSnorm2x16: {ir.MathUnpack2x16snorm, 1},
	GLSLUnpackUnorm2x16: {ir.MathUnpack2x16unorm, 1},
	GLSLUnpackHalf2x16:  {ir.MathUnpack2x16float, 1},
	GLSLUnpackSnorm4x8:  {ir.MathUnpack4x8snorm, 1},
	GLSLUnpackUnorm4x8:  {ir.MathUnpack4x8unorm, 1},
	GLSLLength:          {ir.MathLength, 1},
	GLSLDistance:        {ir.MathDistance, 2},
	GLSLCross:           {ir.MathCross, 2},
	GLSLNormalize:       {ir.MathNormalize, 1},
	GLSLFaceForward:     {ir.MathFaceForward, 3},
	GLSLReflect:         {ir.MathReflect, 2},
	GLSLRefract:         {ir.MathRefract, 3},
	GLSLFindILsb:        {ir.MathFirstTrailingBit, 1},
	GLSLFindSMsb:        {ir.MathFirstLeadingBit, 1},
	GLSLFindUMsb:        {ir.MathFirstLeadingBit, 1},
}

// glsl lowers an OpExtInst of the GLSL.std.450 set.
func (p *functionParser) glsl(inst Instruction, result uint32) error {
	number := inst.Operands[3]
	gi, ok := glslInstructions[number]
	if !ok {
		return inst.errorf("unsupported GLSL.std.450 instruction %d", number)
	}
	args := inst.Operands[4:]
	if len(args) != gi.args {
		return inst.errorf("GLSL.std.450 instruction %d takes %d operands, got %d", number, gi.args, len(args))
	}
	return p.mathCall(result, gi.fun, args...)
}
