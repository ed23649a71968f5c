package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// TypeRegistry builds a type arena without structural duplicates.
// Frontends use it so that equal shapes share one handle.
type TypeRegistry struct {
	types   []Type
	typeMap map[string]TypeHandle
}

// NewTypeRegistry returns an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		types:   make([]Type, 0, 16),
		typeMap: make(map[string]TypeHandle, 16),
	}
}

// GetOrCreate returns the handle of an equal type, registering it when new.
// Named structs never merge with differently named structs; other named
// shapes keep the first name they were registered with.
func (r *TypeRegistry) GetOrCreate(name string, inner TypeInner) TypeHandle {
	key := typeKey(inner)
	if _, ok := inner.(StructType); ok {
		key = name + "|" + key
	}
	if handle, ok := r.typeMap[key]; ok {
		return handle
	}
	handle := TypeHandle(len(r.types))
	r.types = append(r.types, Type{Name: name, Inner: inner})
	r.typeMap[key] = handle
	return handle
}

// Append registers a type unconditionally and returns its handle.
func (r *TypeRegistry) Append(name string, inner TypeInner) TypeHandle {
	handle := TypeHandle(len(r.types))
	r.types = append(r.types, Type{Name: name, Inner: inner})
	key := typeKey(inner)
	if _, ok := inner.(StructType); ok {
		key = name + "|" + key
	}
	if _, exists := r.typeMap[key]; !exists {
		r.typeMap[key] = handle
	}
	return handle
}

// Types returns the arena built so far.
func (r *TypeRegistry) Types() []Type {
	return r.types
}

// Lookup returns the type at handle.
func (r *TypeRegistry) Lookup(handle TypeHandle) (Type, bool) {
	if int(handle) >= len(r.types) {
		return Type{}, false
	}
	return r.types[handle], true
}

// Count returns the number of registered types.
func (r *TypeRegistry) Count() int {
	return len(r.types)
}

func scalarKey(s ScalarType) string {
	return strconv.Itoa(int(s.Kind)) + ":" + strconv.Itoa(int(s.Width))
}

func arraySizeKey(s ArraySize) string {
	switch s.Kind {
	case ArraySizeConstant:
		return strconv.FormatUint(uint64(s.Constant), 10)
	case ArraySizeDynamic:
		return "dyn"
	default:
		return "pending"
	}
}

func bindingKey(b Binding) string {
	switch b := b.(type) {
	case BuiltinBinding:
		return "b" + strconv.Itoa(int(b.Builtin))
	case LocationBinding:
		key := "l" + strconv.FormatUint(uint64(b.Location), 10)
		if b.Interpolation != nil {
			key += "/" + strconv.Itoa(int(b.Interpolation.Kind)) + "/" + strconv.Itoa(int(b.Interpolation.Sampling))
		}
		return key
	default:
		return "-"
	}
}

// typeKey is a structural key: equal shapes produce equal keys.
func typeKey(inner TypeInner) string {
	switch t := inner.(type) {
	case ScalarType:
		return "scalar:" + scalarKey(t)
	case VectorType:
		return "vec:" + strconv.Itoa(int(t.Size)) + ":" + scalarKey(t.Scalar)
	case MatrixType:
		return "mat:" + strconv.Itoa(int(t.Columns)) + "x" + strconv.Itoa(int(t.Rows)) + ":" + scalarKey(t.Scalar)
	case PointerType:
		return "ptr:" + strconv.Itoa(int(t.Base)) + ":" + strconv.Itoa(int(t.Space))
	case ValuePointerType:
		size := "s"
		if t.Size != nil {
			size = strconv.Itoa(int(*t.Size))
		}
		return "vptr:" + size + ":" + scalarKey(t.Scalar) + ":" + strconv.Itoa(int(t.Space))
	case ArrayType:
		return "array:" + strconv.Itoa(int(t.Base)) + ":" + arraySizeKey(t.Size) + ":" + strconv.FormatUint(uint64(t.Stride), 10)
	case BindingArrayType:
		return "barray:" + strconv.Itoa(int(t.Base)) + ":" + arraySizeKey(t.Size)
	case StructType:
		var b strings.Builder
		fmt.Fprintf(&b, "struct:%d:%d", len(t.Members), t.Span)
		for _, m := range t.Members {
			fmt.Fprintf(&b, ":m(%s,%d,%d,%s)", m.Name, m.Type, m.Offset, bindingKey(m.Binding))
		}
		return b.String()
	case ImageType:
		return fmt.Sprintf("image:%d:%v:%d:%v:%d:%d:%d", t.Dim, t.Arrayed, t.Class, t.Multisampled,
			t.SampledKind, t.StorageFormat, t.StorageAccess)
	case SamplerType:
		return "sampler:" + strconv.FormatBool(t.Comparison)
	case AtomicType:
		return "atomic:" + scalarKey(t.Scalar)
	case AccelerationStructureType:
		return "accel"
	case RayQueryType:
		return "rayquery"
	default:
		return fmt.Sprintf("unknown:%T", inner)
	}
}
