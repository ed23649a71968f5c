package wgsl

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/shaderkit/ir"
)

// maxTypeDepth bounds type nesting when spelling a type.
const maxTypeDepth = 64

func (w *Writer) typeName(h ir.TypeHandle) (string, error) {
	return w.typeNameDepth(h, 0)
}

func (w *Writer) typeNameDepth(h ir.TypeHandle, depth int) (string, error) {
	if int(h) >= len(w.module.Types) {
		return "", fmt.Errorf("type %d does not exist", h)
	}
	if depth > maxTypeDepth {
		return "", fmt.Errorf("type %d nests too deeply", h)
	}
	if _, ok := w.module.Types[h].Inner.(ir.StructType); ok {
		return w.names[nameKey{kind: nameKeyType, handle1: uint32(h)}], nil
	}
	return w.innerName(w.module.Types[h].Inner, depth)
}

//nolint:gocyclo,cyclop // one case per type variant
func (w *Writer) innerName(inner ir.TypeInner, depth int) (string, error) {
	switch t := inner.(type) {
	case ir.ScalarType:
		return scalarName(t), nil
	case ir.VectorType:
		return fmt.Sprintf("vec%d<%s>", t.Size, scalarName(t.Scalar)), nil
	case ir.MatrixType:
		return fmt.Sprintf("mat%dx%d<%s>", t.Columns, t.Rows, scalarName(t.Scalar)), nil
	case ir.AtomicType:
		return fmt.Sprintf("atomic<%s>", scalarName(t.Scalar)), nil
	case ir.ArrayType:
		base, err := w.typeNameDepth(t.Base, depth+1)
		if err != nil {
			return "", err
		}
		if t.Size.Kind == ir.ArraySizeConstant {
			return fmt.Sprintf("array<%s, %d>", base, t.Size.Constant), nil
		}
		return fmt.Sprintf("array<%s>", base), nil
	case ir.BindingArrayType:
		base, err := w.typeNameDepth(t.Base, depth+1)
		if err != nil {
			return "", err
		}
		if t.Size.Kind == ir.ArraySizeConstant {
			return fmt.Sprintf("binding_array<%s, %d>", base, t.Size.Constant), nil
		}
		return fmt.Sprintf("binding_array<%s>", base), nil
	case ir.PointerType:
		base, err := w.typeNameDepth(t.Base, depth+1)
		if err != nil {
			return "", err
		}
		return pointerName(t.Space, base), nil
	case ir.ValuePointerType:
		base := scalarName(t.Scalar)
		if t.Size != nil {
			base = fmt.Sprintf("vec%d<%s>", *t.Size, base)
		}
		return pointerName(t.Space, base), nil
	case ir.SamplerType:
		if t.Comparison {
			return "sampler_comparison", nil
		}
		return "sampler", nil
	case ir.ImageType:
		return imageName(t)
	case ir.AccelerationStructureType:
		return "acceleration_structure", nil
	case ir.RayQueryType:
		return "ray_query", nil
	case ir.StructType:
		return "", fmt.Errorf("anonymous struct has no WGSL spelling")
	default:
		return "", fmt.Errorf("unsupported type %T", inner)
	}
}

func pointerName(space ir.AddressSpace, base string) string {
	if space == ir.SpaceStorage {
		return fmt.Sprintf("ptr<storage, %s, read_write>", base)
	}
	return fmt.Sprintf("ptr<%s, %s>", space, base)
}

func scalarName(s ir.ScalarType) string {
	switch s.Kind {
	case ir.ScalarBool:
		return "bool"
	case ir.ScalarSint, ir.ScalarAbstractInt:
		if s.Width == 8 {
			return "i64"
		}
		return "i32"
	case ir.ScalarUint:
		if s.Width == 8 {
			return "u64"
		}
		return "u32"
	default:
		switch s.Width {
		case 2:
			return "f16"
		case 8:
			return "f64"
		default:
			return "f32"
		}
	}
}

var dimNames = map[ir.ImageDimension]string{
	ir.Dim1D:   "1d",
	ir.Dim2D:   "2d",
	ir.Dim3D:   "3d",
	ir.DimCube: "cube",
}

func imageName(t ir.ImageType) (string, error) {
	dim := dimNames[t.Dim]
	if dim == "" {
		return "", fmt.Errorf("unsupported image dimension %d", t.Dim)
	}
	if t.Arrayed {
		dim += "_array"
	}
	switch t.Class {
	case ir.ImageClassDepth:
		if t.Multisampled {
			return "texture_depth_multisampled_" + dim, nil
		}
		return "texture_depth_" + dim, nil
	case ir.ImageClassStorage:
		if t.StorageFormat == ir.FormatUnknown {
			return "", fmt.Errorf("storage texture without a texel format")
		}
		var access string
		switch t.StorageAccess {
		case ir.StorageLoad:
			access = "read"
		case ir.StorageReadWrite:
			access = "read_write"
		default:
			access = "write"
		}
		return fmt.Sprintf("texture_storage_%s<%s, %s>", dim, t.StorageFormat, access), nil
	default:
		texel := scalarName(ir.ScalarType{Kind: t.SampledKind, Width: 4})
		if t.Multisampled {
			return fmt.Sprintf("texture_multisampled_%s<%s>", dim, texel), nil
		}
		return fmt.Sprintf("texture_%s<%s>", dim, texel), nil
	}
}

// scalarValueString formats raw constant bits as a WGSL literal.
func scalarValueString(v ir.ScalarValue, width uint8) string {
	switch v.Kind {
	case ir.ScalarBool:
		return strconv.FormatBool(v.Bits != 0)
	case ir.ScalarSint, ir.ScalarAbstractInt:
		if width == 8 {
			return strconv.FormatInt(int64(v.Bits), 10) + "li"
		}
		return i32Literal(int32(uint32(v.Bits))) //nolint:gosec // G115: truncation to the declared width
	case ir.ScalarUint:
		if width == 8 {
			return strconv.FormatUint(v.Bits, 10) + "lu"
		}
		return strconv.FormatUint(uint64(uint32(v.Bits)), 10) + "u"
	default:
		if width == 8 {
			return f64Literal(math.Float64frombits(v.Bits))
		}
		return f32Literal(math.Float32frombits(uint32(v.Bits))) //nolint:gosec // G115: truncation to the declared width
	}
}

func i32Literal(v int32) string {
	if v == math.MinInt32 {
		return "i32(-2147483647 - 1)"
	}
	return strconv.FormatInt(int64(v), 10) + "i"
}

func f32Literal(f float32) string {
	switch {
	case math.IsNaN(float64(f)), math.IsInf(float64(f), 0):
		return fmt.Sprintf("bitcast<f32>(%du)", math.Float32bits(f))
	}
	return floatDigits(strconv.FormatFloat(float64(f), 'g', -1, 32)) + "f"
}

func f64Literal(f float64) string {
	return floatDigits(strconv.FormatFloat(f, 'g', -1, 64)) + "lf"
}

// abstractFloatLiteral formats a float that must read as a float literal
// without a suffix.
func abstractFloatLiteral(f float64) string {
	return floatDigits(strconv.FormatFloat(f, 'g', -1, 64))
}

func floatDigits(s string) string {
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// memberSizeAttributes returns, per member, an explicit @size value needed
// to reproduce the member offsets, or 0 when natural WGSL layout matches.
func (w *Writer) memberSizeAttributes(st ir.StructType) []uint32 {
	sizes := make([]uint32, len(st.Members))
	for _, m := range st.Members {
		if m.Binding != nil {
			return sizes
		}
	}
	types := w.module.Types
	for i, m := range st.Members {
		size := ir.Layout(types, m.Type).Size
		if i+1 < len(st.Members) {
			next := ir.AlignUp(m.Offset+size, ir.Layout(types, st.Members[i+1].Type).Align)
			if st.Members[i+1].Offset > next {
				sizes[i] = st.Members[i+1].Offset - m.Offset
			}
			continue
		}
		end := ir.AlignUp(m.Offset+size, ir.StructLayout(types, st).Align)
		if st.Span > end {
			sizes[i] = st.Span - m.Offset
		}
	}
	return sizes
}
