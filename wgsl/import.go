package wgsl

import (
	"fmt"
	"math"

	nir "github.com/gogpu/naga/ir"

	"github.com/gogpu/shaderkit/ir"
)

// ImportError reports a construct the importer cannot represent.
type ImportError struct {
	Function string
	Message  string
}

// Error implements the error interface.
func (e *ImportError) Error() string {
	if e.Function != "" {
		return fmt.Sprintf("wgsl import: function %s: %s", e.Function, e.Message)
	}
	return "wgsl import: " + e.Message
}

type importer struct {
	src    *nir.Module
	dst    *ir.Module
	fnName string
}

// Import converts a module lowered by the naga WGSL frontend.
//
// Type, constant, global variable and function handles are preserved.
// naga keeps entry point bodies inline, outside Module.Functions, and so
// does ir.
func Import(src *nir.Module) (*ir.Module, error) {
	if src == nil {
		return nil, &ImportError{Message: "module is nil"}
	}
	imp := &importer{src: src, dst: &ir.Module{}}
	if err := imp.importTypes(); err != nil {
		return nil, err
	}
	if err := imp.importConstants(); err != nil {
		return nil, err
	}
	if err := imp.importGlobals(); err != nil {
		return nil, err
	}
	if err := imp.importFunctions(); err != nil {
		return nil, err
	}
	return imp.dst, nil
}

func (imp *importer) importTypes() error {
	imp.dst.Types = make([]ir.Type, 0, len(imp.src.Types))
	for i, t := range imp.src.Types {
		inner, err := convertInner(t.Inner)
		if err != nil {
			return &ImportError{Message: fmt.Sprintf("type %d (%s): %v", i, t.Name, err)}
		}
		imp.dst.Types = append(imp.dst.Types, ir.Type{Name: t.Name, Inner: inner})
	}
	return nil
}

//nolint:gocyclo,cyclop // one case per type variant
func convertInner(inner nir.TypeInner) (ir.TypeInner, error) {
	switch t := inner.(type) {
	case nir.ScalarType:
		return convertScalar(t)
	case nir.VectorType:
		s, err := convertScalar(t.Scalar)
		if err != nil {
			return nil, err
		}
		return ir.VectorType{Size: ir.VectorSize(t.Size), Scalar: s}, nil
	case nir.MatrixType:
		s, err := convertScalar(t.Scalar)
		if err != nil {
			return nil, err
		}
		return ir.MatrixType{Columns: ir.VectorSize(t.Columns), Rows: ir.VectorSize(t.Rows), Scalar: s}, nil
	case nir.ArrayType:
		size := ir.DynamicSize()
		if t.Size.Constant != nil {
			size = ir.FixedSize(*t.Size.Constant)
		}
		return ir.ArrayType{Base: ir.TypeHandle(t.Base), Size: size, Stride: t.Stride}, nil
	case nir.StructType:
		members := make([]ir.StructMember, len(t.Members))
		for i, m := range t.Members {
			members[i] = ir.StructMember{
				Name:    m.Name,
				Type:    ir.TypeHandle(m.Type),
				Binding: convertBinding(m.Binding),
				Offset:  m.Offset,
			}
		}
		return ir.StructType{Members: members, Span: t.Span}, nil
	case nir.PointerType:
		space, err := convertSpace(t.Space)
		if err != nil {
			return nil, err
		}
		return ir.PointerType{Base: ir.TypeHandle(t.Base), Space: space}, nil
	case nir.ValuePointerType:
		space, err := convertSpace(t.Space)
		if err != nil {
			return nil, err
		}
		s, err := convertScalar(t.Scalar)
		if err != nil {
			return nil, err
		}
		out := ir.ValuePointerType{Scalar: s, Space: space}
		if t.Size != nil {
			size := ir.VectorSize(*t.Size)
			out.Size = &size
		}
		return out, nil
	case nir.AtomicType:
		s, err := convertScalar(t.Scalar)
		if err != nil {
			return nil, err
		}
		return ir.AtomicType{Scalar: s}, nil
	case nir.SamplerType:
		return ir.SamplerType{Comparison: t.Comparison}, nil
	case nir.ImageType:
		return convertImage(t)
	case nir.BindingArrayType:
		size := ir.DynamicSize()
		if t.Size != nil {
			size = ir.FixedSize(*t.Size)
		}
		return ir.BindingArrayType{Base: ir.TypeHandle(t.Base), Size: size}, nil
	case nir.AccelerationStructureType:
		return ir.AccelerationStructureType{}, nil
	case nir.RayQueryType:
		return ir.RayQueryType{}, nil
	default:
		return nil, fmt.Errorf("unsupported type %T", inner)
	}
}

func convertScalar(s nir.ScalarType) (ir.ScalarType, error) {
	var kind ir.ScalarKind
	switch s.Kind {
	case nir.ScalarSint:
		kind = ir.ScalarSint
	case nir.ScalarUint:
		kind = ir.ScalarUint
	case nir.ScalarFloat:
		kind = ir.ScalarFloat
	case nir.ScalarBool:
		kind = ir.ScalarBool
	case nir.ScalarAbstractInt:
		kind = ir.ScalarAbstractInt
	case nir.ScalarAbstractFloat:
		kind = ir.ScalarAbstractFloat
	default:
		return ir.ScalarType{}, fmt.Errorf("unsupported scalar kind %d", s.Kind)
	}
	return ir.ScalarType{Kind: kind, Width: s.Width}, nil
}

func convertImage(t nir.ImageType) (ir.ImageType, error) {
	img := ir.ImageType{
		Arrayed:      t.Arrayed,
		Multisampled: t.Multisampled,
		SampledKind:  ir.ScalarFloat,
	}
	switch t.Dim {
	case nir.Dim1D:
		img.Dim = ir.Dim1D
	case nir.Dim2D:
		img.Dim = ir.Dim2D
	case nir.Dim3D:
		img.Dim = ir.Dim3D
	case nir.DimCube:
		img.Dim = ir.DimCube
	default:
		return ir.ImageType{}, fmt.Errorf("unsupported image dimension %d", t.Dim)
	}
	switch t.Class {
	case nir.ImageClassSampled:
		img.Class = ir.ImageClassSampled
		s, err := convertScalar(nir.ScalarType{Kind: t.SampledKind, Width: 4})
		if err != nil {
			return ir.ImageType{}, err
		}
		img.SampledKind = s.Kind
	case nir.ImageClassExternal:
		// texture_external samples like a float texture_2d.
		img.Class = ir.ImageClassSampled
	case nir.ImageClassDepth:
		img.Class = ir.ImageClassDepth
	case nir.ImageClassStorage:
		img.Class = ir.ImageClassStorage
		format, ok := storageFormats[t.StorageFormat]
		if !ok {
			return ir.ImageType{}, fmt.Errorf("unsupported storage format %d", t.StorageFormat)
		}
		img.StorageFormat = format
		switch t.StorageAccess {
		case nir.StorageAccessRead:
			img.StorageAccess = ir.StorageLoad
		case nir.StorageAccessWrite:
			img.StorageAccess = ir.StorageStore
		default:
			img.StorageAccess = ir.StorageReadWrite
		}
	default:
		return ir.ImageType{}, fmt.Errorf("unsupported image class %d", t.Class)
	}
	return img, nil
}

var storageFormats = map[nir.StorageFormat]ir.StorageFormat{
	nir.StorageFormatR32Uint:     ir.FormatR32Uint,
	nir.StorageFormatR32Sint:     ir.FormatR32Sint,
	nir.StorageFormatR32Float:    ir.FormatR32Float,
	nir.StorageFormatRg32Uint:    ir.FormatRg32Uint,
	nir.StorageFormatRg32Sint:    ir.FormatRg32Sint,
	nir.StorageFormatRg32Float:   ir.FormatRg32Float,
	nir.StorageFormatRgba8Unorm:  ir.FormatRgba8Unorm,
	nir.StorageFormatRgba8Snorm:  ir.FormatRgba8Snorm,
	nir.StorageFormatRgba8Uint:   ir.FormatRgba8Uint,
	nir.StorageFormatRgba8Sint:   ir.FormatRgba8Sint,
	nir.StorageFormatBgra8Unorm:  ir.FormatBgra8Unorm,
	nir.StorageFormatRgba16Uint:  ir.FormatRgba16Uint,
	nir.StorageFormatRgba16Sint:  ir.FormatRgba16Sint,
	nir.StorageFormatRgba16Float: ir.FormatRgba16Float,
	nir.StorageFormatRgba32Uint:  ir.FormatRgba32Uint,
	nir.StorageFormatRgba32Sint:  ir.FormatRgba32Sint,
	nir.StorageFormatRgba32Float: ir.FormatRgba32Float,
}

func convertSpace(s nir.AddressSpace) (ir.AddressSpace, error) {
	switch s {
	case nir.SpaceFunction:
		return ir.SpaceFunction, nil
	case nir.SpacePrivate:
		return ir.SpacePrivate, nil
	case nir.SpaceWorkGroup:
		return ir.SpaceWorkGroup, nil
	case nir.SpaceUniform:
		return ir.SpaceUniform, nil
	case nir.SpaceStorage:
		return ir.SpaceStorage, nil
	case nir.SpacePushConstant, nir.SpaceImmediate:
		return ir.SpacePushConstant, nil
	case nir.SpaceHandle:
		return ir.SpaceHandle, nil
	case nir.SpaceTaskPayload:
		return ir.SpaceTaskPayload, nil
	default:
		return 0, fmt.Errorf("unsupported address space %d", s)
	}
}

func convertBinding(b *nir.Binding) ir.Binding {
	if b == nil || *b == nil {
		return nil
	}
	switch v := (*b).(type) {
	case nir.BuiltinBinding:
		// Builtin values share one ordering.
		if v.Builtin > nir.BuiltinClipDistance {
			return nil
		}
		return ir.BuiltinBinding{Builtin: ir.BuiltinValue(v.Builtin)}
	case nir.LocationBinding:
		loc := ir.LocationBinding{Location: v.Location}
		if v.Interpolation != nil {
			interp := &ir.Interpolation{}
			switch v.Interpolation.Kind {
			case nir.InterpolationFlat:
				interp.Kind = ir.InterpolationFlat
			case nir.InterpolationLinear:
				interp.Kind = ir.InterpolationLinear
			default:
				interp.Kind = ir.InterpolationPerspective
			}
			switch v.Interpolation.Sampling {
			case nir.SamplingCentroid:
				interp.Sampling = ir.SamplingCentroid
			case nir.SamplingSample:
				interp.Sampling = ir.SamplingSample
			default:
				interp.Sampling = ir.SamplingCenter
			}
			loc.Interpolation = interp
		}
		return loc
	default:
		return nil
	}
}

func (imp *importer) importConstants() error {
	// Preallocated so that constants appended for composite components land
	// after every source handle.
	imp.dst.Constants = make([]ir.Constant, len(imp.src.Constants))
	for i, c := range imp.src.Constants {
		value, err := imp.constantValue(ir.ConstantHandle(i), c)
		if err != nil {
			return &ImportError{Message: fmt.Sprintf("constant %d (%s): %v", i, c.Name, err)}
		}
		imp.dst.Constants[i] = ir.Constant{Name: c.Name, Type: ir.TypeHandle(c.Type), Value: value}
	}
	return nil
}

func (imp *importer) constantValue(h ir.ConstantHandle, c nir.Constant) (ir.ConstantValue, error) {
	switch v := c.Value.(type) {
	case nir.ScalarValue:
		s, err := convertScalar(nir.ScalarType{Kind: v.Kind, Width: 4})
		if err != nil {
			return nil, err
		}
		return ir.ScalarValue{Bits: v.Bits, Kind: s.Kind}, nil
	case nir.CompositeValue:
		comps := make([]ir.ConstantHandle, len(v.Components))
		for j, comp := range v.Components {
			comps[j] = ir.ConstantHandle(comp)
		}
		return ir.CompositeValue{Components: comps}, nil
	case nir.ZeroConstantValue:
		return ir.ZeroValue{}, nil
	case nil:
		// Constants folded from other constants carry only an init
		// expression.
		return imp.initValue(h, c.Init, 0)
	default:
		return nil, fmt.Errorf("unsupported value %T", c.Value)
	}
}

// initValue evaluates a module-scope init expression of constant self.
// Composite components that are not constants already become unnamed
// constants of their own.
func (imp *importer) initValue(self ir.ConstantHandle, h nir.ExpressionHandle, depth int) (ir.ConstantValue, error) {
	if depth > maxConstantDepth {
		return nil, fmt.Errorf("init expression nests too deeply")
	}
	if int(h) >= len(imp.src.GlobalExpressions) {
		return nil, fmt.Errorf("init expression %d does not exist", h)
	}
	switch e := imp.src.GlobalExpressions[h].Kind.(type) {
	case nir.Literal:
		v, _, err := literalConstant(e)
		return v, err
	case nir.ExprConstant:
		if ir.ConstantHandle(e.Constant) >= self {
			return nil, fmt.Errorf("refers to constant %d, which is not declared before it", e.Constant)
		}
		return imp.dst.Constants[e.Constant].Value, nil
	case nir.ExprZeroValue:
		return ir.ZeroValue{}, nil
	case nir.ExprCompose:
		comps := make([]ir.ConstantHandle, len(e.Components))
		for i, comp := range e.Components {
			ch, err := imp.componentConstant(self, comp, depth+1)
			if err != nil {
				return nil, err
			}
			comps[i] = ch
		}
		return ir.CompositeValue{Components: comps}, nil
	default:
		return nil, fmt.Errorf("unsupported init expression %T", e)
	}
}

func (imp *importer) componentConstant(self ir.ConstantHandle, h nir.ExpressionHandle, depth int) (ir.ConstantHandle, error) {
	if int(h) >= len(imp.src.GlobalExpressions) {
		return 0, fmt.Errorf("init expression %d does not exist", h)
	}
	var ty ir.TypeHandle
	switch e := imp.src.GlobalExpressions[h].Kind.(type) {
	case nir.ExprConstant:
		if ir.ConstantHandle(e.Constant) >= self {
			return 0, fmt.Errorf("refers to constant %d, which is not declared before it", e.Constant)
		}
		return ir.ConstantHandle(e.Constant), nil
	case nir.Literal:
		_, scalar, err := literalConstant(e)
		if err != nil {
			return 0, err
		}
		ty = ensureScalar(imp.dst, scalar)
	case nir.ExprZeroValue:
		ty = ir.TypeHandle(e.Type)
	case nir.ExprCompose:
		ty = ir.TypeHandle(e.Type)
	default:
		return 0, fmt.Errorf("unsupported init expression %T", e)
	}
	value, err := imp.initValue(self, h, depth)
	if err != nil {
		return 0, err
	}
	imp.dst.Constants = append(imp.dst.Constants, ir.Constant{Type: ty, Value: value})
	return ir.ConstantHandle(len(imp.dst.Constants) - 1), nil
}

// literalConstant returns the raw bits of a literal and its scalar type.
func literalConstant(lit nir.Literal) (ir.ScalarValue, ir.ScalarType, error) {
	switch l := lit.Value.(type) {
	case nir.LiteralF32:
		return ir.ScalarValue{Kind: ir.ScalarFloat, Bits: uint64(math.Float32bits(float32(l)))}, ir.F32, nil
	case nir.LiteralF64:
		return ir.ScalarValue{Kind: ir.ScalarFloat, Bits: math.Float64bits(float64(l))},
			ir.ScalarType{Kind: ir.ScalarFloat, Width: 8}, nil
	case nir.LiteralI32:
		return ir.ScalarValue{Kind: ir.ScalarSint, Bits: uint64(uint32(l))}, ir.I32, nil //nolint:gosec // G115: two's complement bits
	case nir.LiteralU32:
		return ir.ScalarValue{Kind: ir.ScalarUint, Bits: uint64(l)}, ir.U32, nil
	case nir.LiteralI64:
		return ir.ScalarValue{Kind: ir.ScalarSint, Bits: uint64(l)}, //nolint:gosec // G115: two's complement bits
			ir.ScalarType{Kind: ir.ScalarSint, Width: 8}, nil
	case nir.LiteralU64:
		return ir.ScalarValue{Kind: ir.ScalarUint, Bits: uint64(l)},
			ir.ScalarType{Kind: ir.ScalarUint, Width: 8}, nil
	case nir.LiteralBool:
		var bits uint64
		if l {
			bits = 1
		}
		return ir.ScalarValue{Kind: ir.ScalarBool, Bits: bits}, ir.Bool, nil
	case nir.LiteralAbstractInt:
		return ir.ScalarValue{Kind: ir.ScalarAbstractInt, Bits: uint64(l)}, //nolint:gosec // G115: two's complement bits
			ir.ScalarType{Kind: ir.ScalarAbstractInt, Width: 8}, nil
	case nir.LiteralAbstractFloat:
		return ir.ScalarValue{Kind: ir.ScalarAbstractFloat, Bits: math.Float64bits(float64(l))},
			ir.ScalarType{Kind: ir.ScalarAbstractFloat, Width: 8}, nil
	default:
		return ir.ScalarValue{}, ir.ScalarType{}, fmt.Errorf("unsupported literal %T", lit.Value)
	}
}

func (imp *importer) importGlobals() error {
	imp.dst.GlobalVariables = make([]ir.GlobalVariable, 0, len(imp.src.GlobalVariables))
	for i, gv := range imp.src.GlobalVariables {
		space, err := convertSpace(gv.Space)
		if err != nil {
			return &ImportError{Message: fmt.Sprintf("global %d (%s): %v", i, gv.Name, err)}
		}
		out := ir.GlobalVariable{
			Name:  gv.Name,
			Space: space,
			Type:  ir.TypeHandle(gv.Type),
		}
		if space == ir.SpaceStorage {
			out.Access = ir.StorageReadWrite
			if gv.Access == nir.StorageRead {
				out.Access = ir.StorageLoad
			}
		}
		if gv.Binding != nil {
			out.Binding = &ir.ResourceBinding{Group: gv.Binding.Group, Binding: gv.Binding.Binding}
		}
		if gv.Init != nil {
			h := ir.ConstantHandle(*gv.Init)
			out.Init = &h
		}
		imp.dst.GlobalVariables = append(imp.dst.GlobalVariables, out)
	}
	return nil
}

func (imp *importer) importFunctions() error {
	imp.dst.Functions = make([]ir.Function, 0, len(imp.src.Functions))
	for i := range imp.src.Functions {
		fn, err := imp.importFunction(&imp.src.Functions[i])
		if err != nil {
			return err
		}
		imp.dst.Functions = append(imp.dst.Functions, fn)
	}

	imp.dst.EntryPoints = make([]ir.EntryPoint, 0, len(imp.src.EntryPoints))
	for i := range imp.src.EntryPoints {
		ep := &imp.src.EntryPoints[i]
		fn, err := imp.importFunction(&ep.Function)
		if err != nil {
			return err
		}
		if fn.Name == "" {
			fn.Name = ep.Name
		}
		out := ir.EntryPoint{Name: ep.Name, Function: fn}
		switch ep.Stage {
		case nir.StageVertex:
			out.Stage = ir.StageVertex
		case nir.StageFragment:
			out.Stage = ir.StageFragment
		case nir.StageCompute:
			out.Stage = ir.StageCompute
			out.Workgroup = ep.Workgroup
		case nir.StageTask:
			out.Stage = ir.StageTask
			out.Workgroup = ep.Workgroup
		case nir.StageMesh:
			out.Stage = ir.StageMesh
			out.Workgroup = ep.Workgroup
		default:
			return &ImportError{Message: fmt.Sprintf("entry point %s: unsupported stage %d", ep.Name, ep.Stage)}
		}
		imp.dst.EntryPoints = append(imp.dst.EntryPoints, out)
	}
	return nil
}

func (imp *importer) importFunction(src *nir.Function) (ir.Function, error) {
	imp.fnName = src.Name
	fn := ir.Function{
		Name:        src.Name,
		Arguments:   make([]ir.FunctionArgument, len(src.Arguments)),
		LocalVars:   make([]ir.LocalVariable, len(src.LocalVars)),
		Expressions: make([]ir.Expression, len(src.Expressions)),
	}
	for i, a := range src.Arguments {
		fn.Arguments[i] = ir.FunctionArgument{Name: a.Name, Type: ir.TypeHandle(a.Type), Binding: convertBinding(a.Binding)}
	}
	if src.Result != nil {
		fn.Result = &ir.FunctionResult{Type: ir.TypeHandle(src.Result.Type), Binding: convertBinding(src.Result.Binding)}
	}
	for i, lv := range src.LocalVars {
		fn.LocalVars[i] = ir.LocalVariable{Name: lv.Name, Type: ir.TypeHandle(lv.Type), Init: exprOpt(lv.Init)}
	}
	for i, e := range src.Expressions {
		kind, err := imp.convertExpression(e.Kind)
		if err != nil {
			return ir.Function{}, imp.errorf("expression %d: %v", i, err)
		}
		fn.Expressions[i] = ir.Expression{Kind: kind}
	}
	if len(src.ExpressionTypes) == len(src.Expressions) {
		fn.ExpressionTypes = make([]ir.TypeResolution, len(src.ExpressionTypes))
		for i, res := range src.ExpressionTypes {
			fn.ExpressionTypes[i] = convertResolution(res)
		}
	}
	body, err := imp.convertBlock(src.Body)
	if err != nil {
		return ir.Function{}, err
	}
	fn.Body = body
	return fn, nil
}

// convertResolution drops inline shapes the ir cannot hold; the resolver
// recomputes those entries on demand.
func convertResolution(res nir.TypeResolution) ir.TypeResolution {
	if res.Handle != nil {
		return ir.HandleResolution(ir.TypeHandle(*res.Handle))
	}
	if res.Value == nil {
		return ir.TypeResolution{}
	}
	inner, err := convertInner(res.Value)
	if err != nil {
		return ir.TypeResolution{}
	}
	return ir.ValueResolution(inner)
}

func ensureScalar(m *ir.Module, s ir.ScalarType) ir.TypeHandle {
	for i, t := range m.Types {
		if t.Inner == ir.TypeInner(s) {
			return ir.TypeHandle(i)
		}
	}
	m.Types = append(m.Types, ir.Type{Name: scalarName(s), Inner: s})
	return ir.TypeHandle(len(m.Types) - 1)
}

func (imp *importer) errorf(format string, args ...any) error {
	return &ImportError{Function: imp.fnName, Message: fmt.Sprintf(format, args...)}
}

func exprOpt(h *nir.ExpressionHandle) *ir.ExpressionHandle {
	if h == nil {
		return nil
	}
	out := ir.ExpressionHandle(*h)
	return &out
}
