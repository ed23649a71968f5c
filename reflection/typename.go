package reflection

import (
	"fmt"
	"strconv"

	"github.com/gogpu/shaderkit/ir"
)

// maxTypeDepth bounds the recursion through base types. Validated modules
// never come close; a corrupt arena with a cycle stops here.
const maxTypeDepth = 64

// TypeName returns the display name of a type.
//
// A declared name wins over the structural one, even when it is misleading.
// Anonymous types get a WGSL-like name built from their shape: f32, vec3f,
// mat4x4f, array<u32, 8>, ptr<storage, Particle>, texture_2d_array and so on.
// Struct types are named "struct"; their members are listed by Reflect.
//
// The second result is false when h, or a base type it refers to, is not in
// the module.
func TypeName(module *ir.Module, h ir.TypeHandle) (string, bool) {
	return typeName(module, h, 0)
}

func typeName(module *ir.Module, h ir.TypeHandle, depth int) (string, bool) {
	if module == nil || int(h) >= len(module.Types) || depth > maxTypeDepth {
		return "", false
	}
	ty := &module.Types[h]
	if ty.Name != "" {
		return ty.Name, true
	}

	switch t := ty.Inner.(type) {
	case ir.ScalarType:
		return scalarName(t), true
	case ir.VectorType:
		return vectorName(t.Size, t.Scalar), true
	case ir.MatrixType:
		return fmt.Sprintf("mat%dx%d%s", t.Columns, t.Rows, scalarSuffix(t.Scalar)), true
	case ir.AtomicType:
		return "atomic<" + scalarName(t.Scalar) + ">", true
	case ir.PointerType:
		base, ok := typeName(module, t.Base, depth+1)
		if !ok {
			return "", false
		}
		return "ptr<" + t.Space.String() + ", " + base + ">", true
	case ir.ValuePointerType:
		target := scalarName(t.Scalar)
		if t.Size != nil {
			target = vectorName(*t.Size, t.Scalar)
		}
		return "ptr<" + t.Space.String() + ", " + target + ">", true
	case ir.ArrayType:
		return sizedName(module, "array", t.Base, t.Size, depth)
	case ir.BindingArrayType:
		return sizedName(module, "binding_array", t.Base, t.Size, depth)
	case ir.StructType:
		return "struct", true
	case ir.ImageType:
		return imageName(t), true
	case ir.SamplerType:
		if t.Comparison {
			return "sampler_comparison", true
		}
		return "sampler", true
	case ir.AccelerationStructureType:
		return "acceleration_structure", true
	case ir.RayQueryType:
		return "ray_query", true
	default:
		return "", false
	}
}

// sizedName names arrays and binding arrays. Override-sized arrays print
// without a length, like runtime-sized ones.
func sizedName(module *ir.Module, prefix string, base ir.TypeHandle, size ir.ArraySize, depth int) (string, bool) {
	baseName, ok := typeName(module, base, depth+1)
	if !ok {
		return "", false
	}
	if size.Kind == ir.ArraySizeConstant {
		return prefix + "<" + baseName + ", " + strconv.FormatUint(uint64(size.Constant), 10) + ">", true
	}
	return prefix + "<" + baseName + ">", true
}

func scalarName(s ir.ScalarType) string {
	switch {
	case s.Kind == ir.ScalarFloat && s.Width == 4:
		return "f32"
	case s.Kind == ir.ScalarFloat && s.Width == 8:
		return "f64"
	case s.Kind == ir.ScalarFloat && s.Width == 2:
		return "f16"
	case s.Kind == ir.ScalarSint && s.Width == 4:
		return "i32"
	case s.Kind == ir.ScalarUint && s.Width == 4:
		return "u32"
	case s.Kind == ir.ScalarBool:
		return "bool"
	case s.Kind == ir.ScalarAbstractInt:
		return "abstract_int"
	case s.Kind == ir.ScalarAbstractFloat:
		return "abstract_float"
	default:
		return fmt.Sprintf("Scalar { kind: %s, width: %d }", s.Kind, s.Width)
	}
}

// scalarSuffix is the one letter used by vecNx and matCxRx names. f16 and
// the 64-bit integers have none.
func scalarSuffix(s ir.ScalarType) string {
	switch {
	case s.Kind == ir.ScalarFloat && s.Width == 4:
		return "f"
	case s.Kind == ir.ScalarSint && s.Width == 4:
		return "i"
	case s.Kind == ir.ScalarUint && s.Width == 4:
		return "u"
	case s.Kind == ir.ScalarBool:
		return "b"
	case s.Kind == ir.ScalarFloat && s.Width == 8:
		return "d"
	default:
		return ""
	}
}

func vectorName(size ir.VectorSize, s ir.ScalarType) string {
	return "vec" + strconv.Itoa(int(size)) + scalarSuffix(s)
}

func imageName(t ir.ImageType) string {
	name := "texture_"
	switch t.Dim {
	case ir.Dim1D:
		name += "1d"
	case ir.Dim2D:
		name += "2d"
	case ir.Dim3D:
		name += "3d"
	case ir.DimCube:
		name += "cube"
	}
	if t.Arrayed {
		name += "_array"
	}
	switch {
	case t.Class == ir.ImageClassSampled && t.Multisampled:
		name += "_multisampled"
	case t.Class == ir.ImageClassDepth:
		name += "_depth"
	case t.Class == ir.ImageClassStorage:
		name += "_storage"
	}
	return name
}
