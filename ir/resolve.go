package ir

import "fmt"

var boolScalar = ScalarType{Kind: ScalarBool, Width: 1}

// ResolveExpressionType returns the type of an expression. Entries already
// present in fn.ExpressionTypes are returned as is.
//
// Variable references resolve to the variable's value type, not to a
// pointer: a reference and a loaded value share one type.
//
//nolint:gocyclo,cyclop,funlen // one case per expression variant
func ResolveExpressionType(module *Module, fn *Function, handle ExpressionHandle) (TypeResolution, error) {
	if int(handle) >= len(fn.Expressions) {
		return TypeResolution{}, fmt.Errorf("expression handle %d out of range (max %d)", handle, len(fn.Expressions))
	}
	if int(handle) < len(fn.ExpressionTypes) {
		if res := fn.ExpressionTypes[handle]; res.Handle != nil || res.Value != nil {
			return res, nil
		}
	}

	switch kind := fn.Expressions[handle].Kind.(type) {
	case Literal:
		return resolveLiteralType(kind)
	case ExprConstant:
		if int(kind.Constant) >= len(module.Constants) {
			return TypeResolution{}, fmt.Errorf("constant %d out of range", kind.Constant)
		}
		return HandleResolution(module.Constants[kind.Constant].Type), nil
	case ExprZeroValue:
		return HandleResolution(kind.Type), nil
	case ExprCompose:
		return HandleResolution(kind.Type), nil
	case ExprAccess:
		return resolveIndexed(module, fn, kind.Base, nil)
	case ExprAccessIndex:
		index := kind.Index
		return resolveIndexed(module, fn, kind.Base, &index)
	case ExprSplat:
		inner, err := resolveInner(module, fn, kind.Value, "splat value")
		if err != nil {
			return TypeResolution{}, err
		}
		s, ok := inner.(ScalarType)
		if !ok {
			return TypeResolution{}, fmt.Errorf("splat value must be scalar, got %T", inner)
		}
		return ValueResolution(VectorType{Size: kind.Size, Scalar: s}), nil
	case ExprSwizzle:
		inner, err := resolveInner(module, fn, kind.Vector, "swizzle vector")
		if err != nil {
			return TypeResolution{}, err
		}
		vec, ok := inner.(VectorType)
		if !ok {
			return TypeResolution{}, fmt.Errorf("swizzle base must be vector, got %T", inner)
		}
		return ValueResolution(VectorType{Size: kind.Size, Scalar: vec.Scalar}), nil
	case ExprFunctionArgument:
		if int(kind.Index) >= len(fn.Arguments) {
			return TypeResolution{}, fmt.Errorf("function argument index %d out of range", kind.Index)
		}
		return HandleResolution(fn.Arguments[kind.Index].Type), nil
	case ExprGlobalVariable:
		if int(kind.Variable) >= len(module.GlobalVariables) {
			return TypeResolution{}, fmt.Errorf("global variable %d out of range", kind.Variable)
		}
		return HandleResolution(module.GlobalVariables[kind.Variable].Type), nil
	case ExprLocalVariable:
		if int(kind.Variable) >= len(fn.LocalVars) {
			return TypeResolution{}, fmt.Errorf("local variable %d out of range", kind.Variable)
		}
		return HandleResolution(fn.LocalVars[kind.Variable].Type), nil
	case ExprLoad:
		res, err := ResolveExpressionType(module, fn, kind.Pointer)
		if err != nil {
			return TypeResolution{}, fmt.Errorf("load pointer: %w", err)
		}
		if ptr, ok := res.Inner(module).(PointerType); ok {
			return HandleResolution(ptr.Base), nil
		}
		return res, nil
	case ExprImageSample:
		img, err := resolveImage(module, fn, kind.Image)
		if err != nil {
			return TypeResolution{}, err
		}
		if img.Class == ImageClassDepth && kind.Gather == nil {
			return ValueResolution(F32), nil
		}
		return ValueResolution(VectorType{Size: Vec4, Scalar: texelScalar(img)}), nil
	case ExprImageLoad:
		img, err := resolveImage(module, fn, kind.Image)
		if err != nil {
			return TypeResolution{}, err
		}
		if img.Class == ImageClassDepth {
			return ValueResolution(F32), nil
		}
		return ValueResolution(VectorType{Size: Vec4, Scalar: texelScalar(img)}), nil
	case ExprImageQuery:
		if _, ok := kind.Query.(ImageQuerySize); !ok {
			return ValueResolution(U32), nil
		}
		img, err := resolveImage(module, fn, kind.Image)
		if err != nil {
			return TypeResolution{}, err
		}
		switch img.Dim {
		case Dim1D:
			return ValueResolution(U32), nil
		case Dim3D:
			return ValueResolution(VectorType{Size: Vec3, Scalar: U32}), nil
		default:
			return ValueResolution(VectorType{Size: Vec2, Scalar: U32}), nil
		}
	case ExprUnary:
		return ResolveExpressionType(module, fn, kind.Expr)
	case ExprBinary:
		return resolveBinaryType(module, fn, kind)
	case ExprSelect:
		return ResolveExpressionType(module, fn, kind.Accept)
	case ExprDerivative:
		return ResolveExpressionType(module, fn, kind.Expr)
	case ExprRelational:
		inner, err := resolveInner(module, fn, kind.Argument, "relational argument")
		if err != nil {
			return TypeResolution{}, err
		}
		if vec, ok := inner.(VectorType); ok && (kind.Fun == RelationalIsNan || kind.Fun == RelationalIsInf) {
			return ValueResolution(VectorType{Size: vec.Size, Scalar: boolScalar}), nil
		}
		return ValueResolution(boolScalar), nil
	case ExprMath:
		return resolveMathType(module, fn, kind)
	case ExprAs:
		inner, err := resolveInner(module, fn, kind.Expr, "as operand")
		if err != nil {
			return TypeResolution{}, err
		}
		return resolveAsType(inner, kind)
	case ExprCallResult:
		if int(kind.Function) >= len(module.Functions) {
			return TypeResolution{}, fmt.Errorf("function %d out of range", kind.Function)
		}
		result := module.Functions[kind.Function].Result
		if result == nil {
			return TypeResolution{}, fmt.Errorf("function %d has no return type", kind.Function)
		}
		return HandleResolution(result.Type), nil
	case ExprAtomicResult:
		return HandleResolution(kind.Type), nil
	case ExprArrayLength:
		return ValueResolution(U32), nil
	default:
		return TypeResolution{}, fmt.Errorf("unsupported expression kind: %T", kind)
	}
}

func resolveInner(module *Module, fn *Function, h ExpressionHandle, what string) (TypeInner, error) {
	res, err := ResolveExpressionType(module, fn, h)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	inner := res.Inner(module)
	if inner == nil {
		return nil, fmt.Errorf("%s: type handle %d out of range", what, *res.Handle)
	}
	return inner, nil
}

func resolveLiteralType(lit Literal) (TypeResolution, error) {
	switch v := lit.Value.(type) {
	case LiteralF64:
		return ValueResolution(ScalarType{Kind: ScalarFloat, Width: 8}), nil
	case LiteralF32:
		return ValueResolution(F32), nil
	case LiteralU32:
		return ValueResolution(U32), nil
	case LiteralI32:
		return ValueResolution(I32), nil
	case LiteralU64:
		return ValueResolution(ScalarType{Kind: ScalarUint, Width: 8}), nil
	case LiteralI64:
		return ValueResolution(ScalarType{Kind: ScalarSint, Width: 8}), nil
	case LiteralBool:
		return ValueResolution(boolScalar), nil
	case LiteralAbstractInt:
		// Concretized the way WGSL does when nothing else constrains it.
		return ValueResolution(I32), nil
	case LiteralAbstractFloat:
		return ValueResolution(F32), nil
	default:
		return TypeResolution{}, fmt.Errorf("unknown literal type: %T", v)
	}
}

// resolveIndexed resolves an element access; index is nil for runtime
// indices, which cannot select a struct member.
func resolveIndexed(module *Module, fn *Function, base ExpressionHandle, index *uint32) (TypeResolution, error) {
	inner, err := resolveInner(module, fn, base, "access base")
	if err != nil {
		return TypeResolution{}, err
	}
	if ptr, ok := inner.(PointerType); ok {
		if int(ptr.Base) >= len(module.Types) {
			return TypeResolution{}, fmt.Errorf("pointer base type %d out of range", ptr.Base)
		}
		inner = module.Types[ptr.Base].Inner
	}
	switch t := inner.(type) {
	case ArrayType:
		return HandleResolution(t.Base), nil
	case BindingArrayType:
		return HandleResolution(t.Base), nil
	case VectorType:
		return ValueResolution(t.Scalar), nil
	case MatrixType:
		return ValueResolution(VectorType{Size: t.Rows, Scalar: t.Scalar}), nil
	case StructType:
		if index == nil {
			return TypeResolution{}, fmt.Errorf("struct member access needs a constant index")
		}
		if int(*index) >= len(t.Members) {
			return TypeResolution{}, fmt.Errorf("struct member index %d out of range", *index)
		}
		return HandleResolution(t.Members[*index].Type), nil
	default:
		return TypeResolution{}, fmt.Errorf("cannot index into type %T", t)
	}
}

func resolveImage(module *Module, fn *Function, h ExpressionHandle) (ImageType, error) {
	inner, err := resolveInner(module, fn, h, "image")
	if err != nil {
		return ImageType{}, err
	}
	img, ok := inner.(ImageType)
	if !ok {
		return ImageType{}, fmt.Errorf("expected image type, got %T", inner)
	}
	return img, nil
}

func texelScalar(img ImageType) ScalarType {
	if img.Class == ImageClassStorage {
		switch img.StorageFormat {
		case FormatR32Uint, FormatRg32Uint, FormatRgba8Uint, FormatRgba16Uint, FormatRgba32Uint:
			return U32
		case FormatR32Sint, FormatRg32Sint, FormatRgba8Sint, FormatRgba16Sint, FormatRgba32Sint:
			return I32
		}
		return F32
	}
	return ScalarType{Kind: img.SampledKind, Width: 4}
}

func resolveBinaryType(module *Module, fn *Function, expr ExprBinary) (TypeResolution, error) {
	left, err := ResolveExpressionType(module, fn, expr.Left)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("binary left: %w", err)
	}
	if expr.Op.IsComparison() {
		if vec, ok := left.Inner(module).(VectorType); ok {
			return ValueResolution(VectorType{Size: vec.Size, Scalar: boolScalar}), nil
		}
		return ValueResolution(boolScalar), nil
	}
	if expr.Op == BinaryLogicalAnd || expr.Op == BinaryLogicalOr {
		return ValueResolution(boolScalar), nil
	}
	if expr.Op == BinaryShiftLeft || expr.Op == BinaryShiftRight {
		return left, nil
	}
	right, err := ResolveExpressionType(module, fn, expr.Right)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("binary right: %w", err)
	}
	return resolveArithmeticType(module, expr.Op, left, right), nil
}

// resolveArithmeticType follows WGSL broadcasting: scalar op vec is a vec,
// scalar * mat is a mat, mat * vec is vec(rows), vec * mat is vec(columns).
func resolveArithmeticType(module *Module, op BinaryOperator, left, right TypeResolution) TypeResolution {
	leftInner := left.Inner(module)
	rightInner := right.Inner(module)

	_, leftIsScalar := leftInner.(ScalarType)
	_, rightIsScalar := rightInner.(ScalarType)
	_, leftIsVec := leftInner.(VectorType)
	_, rightIsVec := rightInner.(VectorType)
	leftMat, leftIsMat := leftInner.(MatrixType)
	rightMat, rightIsMat := rightInner.(MatrixType)

	switch {
	case leftIsScalar && (rightIsVec || rightIsMat):
		return right
	case (leftIsVec || leftIsMat) && rightIsScalar:
		return left
	case op != BinaryMultiply:
		return left
	case leftIsMat && rightIsVec:
		return ValueResolution(VectorType{Size: leftMat.Rows, Scalar: leftMat.Scalar})
	case leftIsVec && rightIsMat:
		return ValueResolution(VectorType{Size: rightMat.Columns, Scalar: rightMat.Scalar})
	case leftIsMat && rightIsMat:
		return ValueResolution(MatrixType{Columns: rightMat.Columns, Rows: leftMat.Rows, Scalar: leftMat.Scalar})
	default:
		return left
	}
}

func resolveMathType(module *Module, fn *Function, expr ExprMath) (TypeResolution, error) {
	arg, err := ResolveExpressionType(module, fn, expr.Arg)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("math argument: %w", err)
	}
	inner := arg.Inner(module)

	switch expr.Fun {
	case MathDot, MathLength, MathDistance:
		if vec, ok := inner.(VectorType); ok {
			return ValueResolution(vec.Scalar), nil
		}
		return arg, nil
	case MathDeterminant:
		if mat, ok := inner.(MatrixType); ok {
			return ValueResolution(mat.Scalar), nil
		}
		return arg, nil
	case MathTranspose:
		if mat, ok := inner.(MatrixType); ok {
			return ValueResolution(MatrixType{Columns: mat.Rows, Rows: mat.Columns, Scalar: mat.Scalar}), nil
		}
		return arg, nil
	case MathOuter:
		if expr.Arg1 == nil {
			return TypeResolution{}, fmt.Errorf("outer product needs two arguments")
		}
		right, err := resolveInner(module, fn, *expr.Arg1, "outer argument")
		if err != nil {
			return TypeResolution{}, err
		}
		lv, lok := inner.(VectorType)
		rv, rok := right.(VectorType)
		if !lok || !rok {
			return TypeResolution{}, fmt.Errorf("outer product needs vectors")
		}
		return ValueResolution(MatrixType{Columns: rv.Size, Rows: lv.Size, Scalar: lv.Scalar}), nil
	case MathPack4x8snorm, MathPack4x8unorm, MathPack2x16snorm, MathPack2x16unorm, MathPack2x16float:
		return ValueResolution(U32), nil
	case MathUnpack4x8snorm, MathUnpack4x8unorm:
		return ValueResolution(VectorType{Size: Vec4, Scalar: F32}), nil
	case MathUnpack2x16snorm, MathUnpack2x16unorm, MathUnpack2x16float:
		return ValueResolution(VectorType{Size: Vec2, Scalar: F32}), nil
	default:
		return arg, nil
	}
}

func resolveAsType(inner TypeInner, expr ExprAs) (TypeResolution, error) {
	var width uint8
	switch t := inner.(type) {
	case ScalarType:
		width = t.Width
	case VectorType:
		width = t.Scalar.Width
	case MatrixType:
		width = t.Scalar.Width
	default:
		return TypeResolution{}, fmt.Errorf("cannot convert type %T", inner)
	}
	if expr.Convert != nil {
		width = *expr.Convert
	}
	target := ScalarType{Kind: expr.Kind, Width: width}
	switch t := inner.(type) {
	case VectorType:
		return ValueResolution(VectorType{Size: t.Size, Scalar: target}), nil
	case MatrixType:
		return ValueResolution(MatrixType{Columns: t.Columns, Rows: t.Rows, Scalar: target}), nil
	default:
		return ValueResolution(target), nil
	}
}
