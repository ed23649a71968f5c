package ir

import (
	"errors"
	"fmt"
)

// ValidationError is one problem found by Validate.
type ValidationError struct {
	Message string

	Function   string
	Expression *ExpressionHandle
	Statement  int // -1 when not tied to a statement
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	switch {
	case e.Function != "" && e.Expression != nil:
		return fmt.Sprintf("in function %s, expression %d: %s", e.Function, *e.Expression, e.Message)
	case e.Function != "" && e.Statement >= 0:
		return fmt.Sprintf("in function %s, statement %d: %s", e.Function, e.Statement, e.Message)
	case e.Function != "":
		return fmt.Sprintf("in function %s: %s", e.Function, e.Message)
	default:
		return e.Message
	}
}

// ErrNilModule is returned by Validate for a nil module.
var ErrNilModule = errors.New("module is nil")

type validator struct {
	module *Module
	errors []ValidationError

	fn           *Function
	fnName       string
	loopDepth    int
	switchDepth  int
	inContinuing bool
}

// Validate checks handle ranges, type references, name and binding
// uniqueness, structured control flow placement and entry point stage
// requirements. It returns every problem found; a nil slice means the
// module is valid.
func Validate(module *Module) ([]ValidationError, error) {
	if module == nil {
		return nil, ErrNilModule
	}
	v := &validator{module: module}
	v.validateTypes()
	v.validateConstants()
	v.validateGlobals()
	v.validateFunctions()
	v.validateEntryPoints()
	if len(v.errors) == 0 {
		return nil, nil
	}
	return v.errors, nil
}

func (v *validator) validateTypes() {
	for i := range v.module.Types {
		h := TypeHandle(i)
		switch t := v.module.Types[i].Inner.(type) {
		case nil:
			v.addError(fmt.Sprintf("type %d has no inner shape", h))
		case ScalarType:
			v.checkScalar(h, t)
		case VectorType:
			if t.Size < Vec2 || t.Size > Vec4 {
				v.addError(fmt.Sprintf("type %d: vector size must be 2, 3, or 4, got %d", h, t.Size))
			}
			v.checkScalar(h, t.Scalar)
		case MatrixType:
			if t.Columns < Vec2 || t.Columns > Vec4 || t.Rows < Vec2 || t.Rows > Vec4 {
				v.addError(fmt.Sprintf("type %d: matrix must be between 2x2 and 4x4, got %dx%d", h, t.Columns, t.Rows))
			}
			if t.Scalar.Kind != ScalarFloat && t.Scalar.Kind != ScalarAbstractFloat {
				v.addError(fmt.Sprintf("type %d: matrix scalar must be float, got %v", h, t.Scalar.Kind))
			}
		case PointerType:
			v.checkBase(h, t.Base, "pointer")
		case ArrayType:
			v.checkBase(h, t.Base, "array")
			if t.Size.Kind == ArraySizeConstant && t.Size.Constant == 0 {
				v.addError(fmt.Sprintf("type %d: array length must be positive", h))
			}
		case BindingArrayType:
			v.checkBase(h, t.Base, "binding array")
		case StructType:
			names := make(map[string]bool, len(t.Members))
			for j, m := range t.Members {
				if m.Name != "" {
					if names[m.Name] {
						v.addError(fmt.Sprintf("type %d: duplicate struct member name %q", h, m.Name))
					}
					names[m.Name] = true
				}
				v.checkBase(h, m.Type, fmt.Sprintf("struct member %d", j))
			}
		case ValuePointerType, ImageType, SamplerType, AtomicType, AccelerationStructureType, RayQueryType:
		}
	}
}

func (v *validator) checkScalar(h TypeHandle, s ScalarType) {
	switch s.Kind {
	case ScalarAbstractInt, ScalarAbstractFloat:
		return
	case ScalarBool:
		if s.Width != 1 {
			v.addError(fmt.Sprintf("type %d: bool width must be 1, got %d", h, s.Width))
		}
		return
	}
	if s.Width != 2 && s.Width != 4 && s.Width != 8 {
		v.addError(fmt.Sprintf("type %d: scalar width must be 2, 4, or 8 bytes, got %d", h, s.Width))
	}
}

// checkBase requires base to exist and to precede owner, which keeps the
// arena acyclic.
func (v *validator) checkBase(owner, base TypeHandle, what string) {
	if int(base) >= len(v.module.Types) {
		v.addError(fmt.Sprintf("type %d: %s type %d does not exist", owner, what, base))
		return
	}
	if base >= owner {
		v.addError(fmt.Sprintf("type %d: %s type %d is not declared before its use", owner, what, base))
	}
}

func (v *validator) validateConstants() {
	for i, c := range v.module.Constants {
		if !v.validType(c.Type) {
			v.addError(fmt.Sprintf("constant %d (%s): type %d does not exist", i, c.Name, c.Type))
		}
		if comp, ok := c.Value.(CompositeValue); ok {
			for _, h := range comp.Components {
				if int(h) >= len(v.module.Constants) {
					v.addError(fmt.Sprintf("constant %d (%s): component %d does not exist", i, c.Name, h))
				}
			}
		}
	}
	if h, ok := constantCycle(v.module.Constants); ok {
		v.addError(fmt.Sprintf("constant %d (%s): composite contains itself", h, v.module.Constants[h].Name))
	}
}

// constantCycle reports a constant whose composite components lead back
// to it.
func constantCycle(constants []Constant) (ConstantHandle, bool) {
	const (
		unvisited = iota
		active
		done
	)
	state := make([]uint8, len(constants))
	var visit func(h ConstantHandle) bool
	visit = func(h ConstantHandle) bool {
		switch state[h] {
		case active:
			return true
		case done:
			return false
		}
		state[h] = active
		if comp, ok := constants[h].Value.(CompositeValue); ok {
			for _, c := range comp.Components {
				if int(c) < len(constants) && visit(c) {
					return true
				}
			}
		}
		state[h] = done
		return false
	}
	for i := range constants {
		if state[i] == unvisited && visit(ConstantHandle(i)) {
			return ConstantHandle(i), true
		}
	}
	return 0, false
}

func (v *validator) validateGlobals() {
	bindings := make(map[ResourceBinding]string)
	names := make(map[string]bool)
	for i, gv := range v.module.GlobalVariables {
		if gv.Name != "" {
			if names[gv.Name] {
				v.addError(fmt.Sprintf("duplicate global variable name %q", gv.Name))
			}
			names[gv.Name] = true
		}
		if !v.validType(gv.Type) {
			v.addError(fmt.Sprintf("global variable %d (%s): type %d does not exist", i, gv.Name, gv.Type))
		}
		if gv.Binding != nil {
			if prev, dup := bindings[*gv.Binding]; dup {
				v.addError(fmt.Sprintf("global variable %q: @group(%d) @binding(%d) already used by %q",
					gv.Name, gv.Binding.Group, gv.Binding.Binding, prev))
			}
			bindings[*gv.Binding] = gv.Name
		}
		if gv.Init != nil && int(*gv.Init) >= len(v.module.Constants) {
			v.addError(fmt.Sprintf("global variable %q: init constant %d does not exist", gv.Name, *gv.Init))
		}
	}
}

func (v *validator) validateFunctions() {
	names := make(map[string]bool)
	for i := range v.module.Functions {
		fn := &v.module.Functions[i]
		if fn.Name != "" {
			if names[fn.Name] {
				v.addError(fmt.Sprintf("duplicate function name %q", fn.Name))
			}
			names[fn.Name] = true
		}
		v.validateFunction(fn, fn.Name)
	}
}

func (v *validator) validateFunction(fn *Function, name string) {
	v.fn = fn
	v.fnName = name
	v.loopDepth, v.switchDepth, v.inContinuing = 0, 0, false
	defer func() { v.fn, v.fnName = nil, "" }()

	for i, arg := range fn.Arguments {
		if !v.validType(arg.Type) {
			v.addErrorInFunction(fmt.Sprintf("argument %d (%s): type %d does not exist", i, arg.Name, arg.Type))
		}
	}
	if fn.Result != nil && !v.validType(fn.Result.Type) {
		v.addErrorInFunction(fmt.Sprintf("result type %d does not exist", fn.Result.Type))
	}
	for i, lv := range fn.LocalVars {
		if !v.validType(lv.Type) {
			v.addErrorInFunction(fmt.Sprintf("local variable %d (%s): type %d does not exist", i, lv.Name, lv.Type))
		}
		if lv.Init != nil && !v.validExpr(*lv.Init) {
			v.addErrorInFunction(fmt.Sprintf("local variable %d (%s): init expression %d does not exist", i, lv.Name, *lv.Init))
		}
	}
	if fn.ExpressionTypes != nil && len(fn.ExpressionTypes) != len(fn.Expressions) {
		v.addErrorInFunction(fmt.Sprintf("%d expression types for %d expressions", len(fn.ExpressionTypes), len(fn.Expressions)))
	}
	for i := range fn.Expressions {
		v.validateExpression(ExpressionHandle(i), fn.Expressions[i].Kind)
	}
	v.validateBlock(fn.Body)
}

// Operands returns every expression handle an expression reads.
//
//nolint:gocyclo,cyclop,funlen // one case per expression variant
func Operands(kind ExpressionKind) []ExpressionHandle {
	opt := func(hs []ExpressionHandle, p *ExpressionHandle) []ExpressionHandle {
		if p != nil {
			return append(hs, *p)
		}
		return hs
	}
	switch k := kind.(type) {
	case ExprCompose:
		return k.Components
	case ExprAccess:
		return []ExpressionHandle{k.Base, k.Index}
	case ExprAccessIndex:
		return []ExpressionHandle{k.Base}
	case ExprSplat:
		return []ExpressionHandle{k.Value}
	case ExprSwizzle:
		return []ExpressionHandle{k.Vector}
	case ExprLoad:
		return []ExpressionHandle{k.Pointer}
	case ExprImageSample:
		hs := []ExpressionHandle{k.Image, k.Sampler, k.Coordinate}
		hs = opt(hs, k.ArrayIndex)
		hs = opt(hs, k.Offset)
		hs = opt(hs, k.DepthRef)
		switch l := k.Level.(type) {
		case SampleLevelExact:
			hs = append(hs, l.Level)
		case SampleLevelBias:
			hs = append(hs, l.Bias)
		case SampleLevelGradient:
			hs = append(hs, l.X, l.Y)
		}
		return hs
	case ExprImageLoad:
		hs := []ExpressionHandle{k.Image, k.Coordinate}
		hs = opt(hs, k.ArrayIndex)
		hs = opt(hs, k.Sample)
		return opt(hs, k.Level)
	case ExprImageQuery:
		hs := []ExpressionHandle{k.Image}
		if q, ok := k.Query.(ImageQuerySize); ok {
			hs = opt(hs, q.Level)
		}
		return hs
	case ExprUnary:
		return []ExpressionHandle{k.Expr}
	case ExprBinary:
		return []ExpressionHandle{k.Left, k.Right}
	case ExprSelect:
		return []ExpressionHandle{k.Condition, k.Accept, k.Reject}
	case ExprDerivative:
		return []ExpressionHandle{k.Expr}
	case ExprRelational:
		return []ExpressionHandle{k.Argument}
	case ExprMath:
		hs := []ExpressionHandle{k.Arg}
		hs = opt(hs, k.Arg1)
		hs = opt(hs, k.Arg2)
		return opt(hs, k.Arg3)
	case ExprAs:
		return []ExpressionHandle{k.Expr}
	case ExprArrayLength:
		return []ExpressionHandle{k.Array}
	default:
		return nil
	}
}

func (v *validator) validateExpression(h ExpressionHandle, kind ExpressionKind) {
	if kind == nil {
		v.addErrorInExpression(h, "expression has no kind")
		return
	}
	for _, op := range Operands(kind) {
		if !v.validExpr(op) {
			v.addErrorInExpression(h, fmt.Sprintf("operand expression %d does not exist", op))
		}
	}
	switch k := kind.(type) {
	case ExprConstant:
		if int(k.Constant) >= len(v.module.Constants) {
			v.addErrorInExpression(h, fmt.Sprintf("constant %d does not exist", k.Constant))
		}
	case ExprZeroValue:
		if !v.validType(k.Type) {
			v.addErrorInExpression(h, fmt.Sprintf("type %d does not exist", k.Type))
		}
	case ExprCompose:
		if !v.validType(k.Type) {
			v.addErrorInExpression(h, fmt.Sprintf("type %d does not exist", k.Type))
		}
	case ExprSplat:
		if k.Size < Vec2 || k.Size > Vec4 {
			v.addErrorInExpression(h, fmt.Sprintf("splat size must be 2, 3, or 4, got %d", k.Size))
		}
	case ExprSwizzle:
		if k.Size < Vec2 || k.Size > Vec4 {
			v.addErrorInExpression(h, fmt.Sprintf("swizzle size must be 2, 3, or 4, got %d", k.Size))
		}
		for i := 0; i < int(k.Size) && i < len(k.Pattern); i++ {
			if k.Pattern[i] > SwizzleW {
				v.addErrorInExpression(h, fmt.Sprintf("swizzle component %d is invalid", k.Pattern[i]))
			}
		}
	case ExprFunctionArgument:
		if int(k.Index) >= len(v.fn.Arguments) {
			v.addErrorInExpression(h, fmt.Sprintf("argument index %d out of range (function has %d args)", k.Index, len(v.fn.Arguments)))
		}
	case ExprGlobalVariable:
		if int(k.Variable) >= len(v.module.GlobalVariables) {
			v.addErrorInExpression(h, fmt.Sprintf("global variable %d does not exist", k.Variable))
		}
	case ExprLocalVariable:
		if int(k.Variable) >= len(v.fn.LocalVars) {
			v.addErrorInExpression(h, fmt.Sprintf("local variable index %d out of range (function has %d vars)", k.Variable, len(v.fn.LocalVars)))
		}
	case ExprCallResult:
		if int(k.Function) >= len(v.module.Functions) {
			v.addErrorInExpression(h, fmt.Sprintf("function %d does not exist", k.Function))
		}
	case ExprAtomicResult:
		if !v.validType(k.Type) {
			v.addErrorInExpression(h, fmt.Sprintf("type %d does not exist", k.Type))
		}
	}
}

func (v *validator) validateBlock(block Block) {
	for i := range block {
		v.validateStatement(i, block[i].Kind)
	}
}

//nolint:gocyclo,cyclop,funlen // one case per statement variant
func (v *validator) validateStatement(index int, kind StatementKind) {
	check := func(h ExpressionHandle, what string) {
		if !v.validExpr(h) {
			v.addErrorInStatement(index, fmt.Sprintf("%s expression %d does not exist", what, h))
		}
	}
	switch k := kind.(type) {
	case nil:
		v.addErrorInStatement(index, "statement has no kind")
	case StmtEmit:
		n := ExpressionHandle(len(v.fn.Expressions))
		if k.Range.Start > k.Range.End || k.Range.End > n {
			v.addErrorInStatement(index, fmt.Sprintf("emit range %d..%d out of range", k.Range.Start, k.Range.End))
		}
	case StmtBlock:
		v.validateBlock(k.Block)
	case StmtIf:
		check(k.Condition, "condition")
		v.validateBlock(k.Accept)
		v.validateBlock(k.Reject)
	case StmtSwitch:
		check(k.Selector, "selector")
		defaults := 0
		v.switchDepth++
		for _, c := range k.Cases {
			if _, ok := c.Value.(SwitchValueDefault); ok {
				defaults++
			}
			v.validateBlock(c.Body)
		}
		v.switchDepth--
		if defaults != 1 {
			v.addErrorInStatement(index, fmt.Sprintf("switch must have exactly one default case, got %d", defaults))
		}
	case StmtLoop:
		outerSwitch := v.switchDepth
		v.loopDepth++
		v.switchDepth = 0
		v.validateBlock(k.Body)
		wasContinuing := v.inContinuing
		v.inContinuing = true
		v.validateBlock(k.Continuing)
		v.inContinuing = wasContinuing
		v.loopDepth--
		v.switchDepth = outerSwitch
		if k.BreakIf != nil {
			check(*k.BreakIf, "break-if")
		}
	case StmtBreak:
		if v.loopDepth == 0 && v.switchDepth == 0 {
			v.addErrorInStatement(index, "break outside of loop or switch")
		}
		if v.inContinuing {
			v.addErrorInStatement(index, "break in continuing block")
		}
	case StmtContinue:
		if v.loopDepth == 0 {
			v.addErrorInStatement(index, "continue outside of loop")
		}
		if v.inContinuing {
			v.addErrorInStatement(index, "continue in continuing block")
		}
	case StmtReturn:
		if v.inContinuing {
			v.addErrorInStatement(index, "return in continuing block")
		}
		if k.Value != nil {
			check(*k.Value, "return value")
			if v.fn.Result == nil {
				v.addErrorInStatement(index, "return with a value from a function without a result")
			}
		}
	case StmtKill:
		if v.inContinuing {
			v.addErrorInStatement(index, "discard in continuing block")
		}
	case StmtBarrier:
	case StmtStore:
		check(k.Pointer, "pointer")
		check(k.Value, "value")
	case StmtImageStore:
		check(k.Image, "image")
		check(k.Coordinate, "coordinate")
		check(k.Value, "value")
		if k.ArrayIndex != nil {
			check(*k.ArrayIndex, "array index")
		}
	case StmtAtomic:
		check(k.Pointer, "pointer")
		check(k.Value, "value")
		if k.Result != nil {
			check(*k.Result, "result")
		}
		if x, ok := k.Fun.(AtomicExchange); ok && x.Compare != nil {
			check(*x.Compare, "compare")
		}
	case StmtCall:
		if int(k.Function) >= len(v.module.Functions) {
			v.addErrorInStatement(index, fmt.Sprintf("function %d does not exist", k.Function))
		} else if want := len(v.module.Functions[k.Function].Arguments); want != len(k.Arguments) {
			v.addErrorInStatement(index, fmt.Sprintf("call passes %d arguments, function takes %d", len(k.Arguments), want))
		}
		for _, a := range k.Arguments {
			check(a, "argument")
		}
		if k.Result != nil {
			check(*k.Result, "result")
		}
	}
}

func (v *validator) validateEntryPoints() {
	names := make(map[string]bool)
	for i := range v.module.EntryPoints {
		ep := &v.module.EntryPoints[i]
		if ep.Name == "" {
			v.addError(fmt.Sprintf("entry point %d has empty name", i))
		}
		if names[ep.Name] {
			v.addError(fmt.Sprintf("duplicate entry point name %q", ep.Name))
		}
		names[ep.Name] = true

		v.validateFunction(&ep.Function, ep.Name)

		switch ep.Stage {
		case StageVertex:
			if ep.Function.Result == nil {
				v.addError(fmt.Sprintf("entry point %q (@vertex): must have a return value", ep.Name))
			} else if !v.returnsPosition(ep.Function.Result) {
				v.addError(fmt.Sprintf("entry point %q (@vertex): must return @builtin(position)", ep.Name))
			}
		case StageCompute, StageTask, StageMesh:
			if ep.Workgroup[0] == 0 || ep.Workgroup[1] == 0 || ep.Workgroup[2] == 0 {
				v.addError(fmt.Sprintf("entry point %q (@%s): workgroup size must be non-zero", ep.Name, ep.Stage))
			}
		}
	}
}

func (v *validator) returnsPosition(result *FunctionResult) bool {
	if isPosition(result.Binding) {
		return true
	}
	if !v.validType(result.Type) {
		return false
	}
	st, ok := v.module.Types[result.Type].Inner.(StructType)
	if !ok {
		return false
	}
	for _, m := range st.Members {
		if isPosition(m.Binding) {
			return true
		}
	}
	return false
}

func isPosition(b Binding) bool {
	bb, ok := b.(BuiltinBinding)
	return ok && bb.Builtin == BuiltinPosition
}

func (v *validator) validType(h TypeHandle) bool {
	return int(h) < len(v.module.Types)
}

func (v *validator) validExpr(h ExpressionHandle) bool {
	return v.fn != nil && int(h) < len(v.fn.Expressions)
}

func (v *validator) addError(msg string) {
	v.errors = append(v.errors, ValidationError{Message: msg, Statement: -1})
}

func (v *validator) addErrorInFunction(msg string) {
	v.errors = append(v.errors, ValidationError{Message: msg, Function: v.fnName, Statement: -1})
}

func (v *validator) addErrorInExpression(h ExpressionHandle, msg string) {
	v.errors = append(v.errors, ValidationError{Message: msg, Function: v.fnName, Expression: &h, Statement: -1})
}

func (v *validator) addErrorInStatement(index int, msg string) {
	v.errors = append(v.errors, ValidationError{Message: msg, Function: v.fnName, Statement: index})
}
