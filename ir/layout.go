package ir

const maxLayoutDepth = 64

// TypeLayout is the host-shareable size and alignment of a type.
type TypeLayout struct {
	Size  uint32
	Align uint32
}

// Layout returns the WGSL host-shareable layout of types[h]. Opaque and
// unresolvable types lay out as zero bytes with alignment 1.
func Layout(types []Type, h TypeHandle) TypeLayout {
	return layoutDepth(types, h, 0)
}

// StructLayout returns the layout of a struct that may not be in the arena.
// Span wins over the member extent when it is larger.
func StructLayout(types []Type, st StructType) TypeLayout {
	return structLayoutDepth(types, st, 0)
}

//nolint:gocyclo,cyclop // one case per type variant
func layoutDepth(types []Type, h TypeHandle, depth int) TypeLayout {
	if int(h) >= len(types) || depth > maxLayoutDepth {
		return TypeLayout{Align: 1}
	}
	switch t := types[h].Inner.(type) {
	case ScalarType:
		return TypeLayout{Size: uint32(t.Width), Align: uint32(t.Width)}
	case AtomicType:
		return TypeLayout{Size: uint32(t.Scalar.Width), Align: uint32(t.Scalar.Width)}
	case VectorType:
		return vectorLayout(t.Size, t.Scalar.Width)
	case MatrixType:
		col := vectorLayout(t.Rows, t.Scalar.Width)
		return TypeLayout{Size: uint32(t.Columns) * AlignUp(col.Size, col.Align), Align: col.Align}
	case ArrayType:
		elem := layoutDepth(types, t.Base, depth+1)
		stride := t.Stride
		if stride == 0 {
			stride = AlignUp(elem.Size, elem.Align)
		}
		if t.Size.Kind == ArraySizeConstant {
			return TypeLayout{Size: stride * t.Size.Constant, Align: elem.Align}
		}
		return TypeLayout{Size: stride, Align: elem.Align}
	case StructType:
		return structLayoutDepth(types, t, depth)
	default:
		return TypeLayout{Align: 1}
	}
}

func structLayoutDepth(types []Type, st StructType, depth int) TypeLayout {
	align := uint32(1)
	var end uint32
	for _, m := range st.Members {
		l := layoutDepth(types, m.Type, depth+1)
		if l.Align > align {
			align = l.Align
		}
		if m.Offset+l.Size > end {
			end = m.Offset + l.Size
		}
	}
	size := AlignUp(end, align)
	if st.Span > size {
		size = st.Span
	}
	return TypeLayout{Size: size, Align: align}
}

func vectorLayout(n VectorSize, width uint8) TypeLayout {
	size := uint32(n) * uint32(width)
	if n == Vec2 {
		return TypeLayout{Size: size, Align: 2 * uint32(width)}
	}
	return TypeLayout{Size: size, Align: 4 * uint32(width)}
}

// AlignUp rounds v up to a multiple of align.
func AlignUp(v, align uint32) uint32 {
	if align <= 1 {
		return v
	}
	return (v + align - 1) / align * align
}
