// Package layout turns reflection data into WebGPU pipeline layout
// descriptors.
//
// BindGroupLayouts builds one gputypes bind group layout per @group used by
// any entry point, with each entry visible to exactly the stages whose entry
// points reference it. VertexBufferLayout packs the location-bound inputs of
// a vertex entry point into a single interleaved vertex buffer.
//
// Both mirror what a renderer would otherwise write by hand:
//
//	data := reflection.Reflect(module)
//	groups, err := layout.BindGroupLayouts(module, data)
//	...
//	vs, _ := data.EntryPoint("vs_main")
//	buffer, err := layout.VertexBufferLayout(vs)
package layout

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/shaderkit/ir"
	"github.com/gogpu/shaderkit/reflection"
)

// ErrUnsupported is wrapped by errors for resources and vertex input types
// that have no layout descriptor.
var ErrUnsupported = errors.New("unsupported by layout")

// BindGroup is the layout of one @group.
type BindGroup struct {
	Group   uint32
	Entries []gputypes.BindGroupLayoutEntry
}

// BindGroupLayouts returns the bind group layouts used by the entry points
// in data, sorted by group and binding. data must come from reflecting
// module.
func BindGroupLayouts(module *ir.Module, data *reflection.Data) ([]BindGroup, error) {
	type key struct{ group, binding uint32 }
	entries := make(map[key]*gputypes.BindGroupLayoutEntry)

	for i := range data.EntryPoints {
		ep := &data.EntryPoints[i]
		for _, b := range ep.Bindings {
			k := key{b.Group, b.Binding}
			entry, ok := entries[k]
			if !ok {
				gv, found := globalAt(module, b.Group, b.Binding)
				if !found {
					return nil, fmt.Errorf("binding %s (@group(%d) @binding(%d)) is not declared in the module", b.Name, b.Group, b.Binding)
				}
				e, err := layoutEntry(module, gv, b)
				if err != nil {
					return nil, err
				}
				entry = &e
				entries[k] = entry
			}
			switch ep.Stage {
			case "vertex":
				entry.Visibility |= gputypes.ShaderStageVertex
			case "fragment":
				entry.Visibility |= gputypes.ShaderStageFragment
			case "compute":
				entry.Visibility |= gputypes.ShaderStageCompute
			}
		}
	}

	keys := make([]key, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].group != keys[j].group {
			return keys[i].group < keys[j].group
		}
		return keys[i].binding < keys[j].binding
	})

	var groups []BindGroup
	for _, k := range keys {
		if len(groups) == 0 || groups[len(groups)-1].Group != k.group {
			groups = append(groups, BindGroup{Group: k.group})
		}
		last := &groups[len(groups)-1]
		last.Entries = append(last.Entries, *entries[k])
	}
	return groups, nil
}

func globalAt(module *ir.Module, group, binding uint32) (*ir.GlobalVariable, bool) {
	for i := range module.GlobalVariables {
		gv := &module.GlobalVariables[i]
		if gv.Binding != nil && gv.Binding.Group == group && gv.Binding.Binding == binding {
			return gv, true
		}
	}
	return nil, false
}

func layoutEntry(module *ir.Module, gv *ir.GlobalVariable, b reflection.BindingInfo) (gputypes.BindGroupLayoutEntry, error) {
	entry := gputypes.BindGroupLayoutEntry{Binding: b.Binding}

	switch b.ResourceType {
	case reflection.ResourceUniform:
		entry.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}
		return entry, nil
	case reflection.ResourceStorage, reflection.ResourceAtomic:
		if gv.Space != ir.SpaceStorage {
			break
		}
		if gv.Access&ir.StorageStore != 0 {
			entry.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}
		} else {
			entry.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}
		}
		return entry, nil
	case reflection.ResourceSampler:
		sampler, ok := innerOf[ir.SamplerType](module, gv.Type)
		if !ok {
			break
		}
		if sampler.Comparison {
			entry.Sampler = &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeComparison}
		} else {
			entry.Sampler = &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering}
		}
		return entry, nil
	case reflection.ResourceTexture:
		img, ok := innerOf[ir.ImageType](module, gv.Type)
		if !ok {
			break
		}
		texture, err := textureLayout(img)
		if err != nil {
			return entry, fmt.Errorf("binding %s: %w", b.Name, err)
		}
		entry.Texture = texture
		return entry, nil
	}
	return entry, fmt.Errorf("binding %s: %s resource: %w", b.Name, b.ResourceType, ErrUnsupported)
}

func innerOf[T ir.TypeInner](module *ir.Module, h ir.TypeHandle) (T, bool) {
	var zero T
	if int(h) >= len(module.Types) {
		return zero, false
	}
	t, ok := module.Types[h].Inner.(T)
	return t, ok
}

func textureLayout(img ir.ImageType) (*gputypes.TextureBindingLayout, error) {
	if img.Class == ir.ImageClassStorage {
		return nil, fmt.Errorf("storage texture: %w", ErrUnsupported)
	}
	if img.Multisampled {
		return nil, fmt.Errorf("multisampled texture: %w", ErrUnsupported)
	}
	layout := &gputypes.TextureBindingLayout{}

	switch {
	case img.Class == ir.ImageClassDepth:
		layout.SampleType = gputypes.TextureSampleTypeDepth
	case img.SampledKind == ir.ScalarSint:
		layout.SampleType = gputypes.TextureSampleTypeSint
	case img.SampledKind == ir.ScalarUint:
		layout.SampleType = gputypes.TextureSampleTypeUint
	default:
		layout.SampleType = gputypes.TextureSampleTypeFloat
	}

	switch {
	case img.Dim == ir.Dim1D:
		layout.ViewDimension = gputypes.TextureViewDimension1D
	case img.Dim == ir.Dim2D && img.Arrayed:
		layout.ViewDimension = gputypes.TextureViewDimension2DArray
	case img.Dim == ir.Dim2D:
		layout.ViewDimension = gputypes.TextureViewDimension2D
	case img.Dim == ir.Dim3D:
		layout.ViewDimension = gputypes.TextureViewDimension3D
	case img.Dim == ir.DimCube && img.Arrayed:
		layout.ViewDimension = gputypes.TextureViewDimensionCubeArray
	default:
		layout.ViewDimension = gputypes.TextureViewDimensionCube
	}
	return layout, nil
}

// vertexFormats maps the reflected type names of vertex inputs to formats
// and their byte sizes.
var vertexFormats = map[string]struct {
	format gputypes.VertexFormat
	size   uint64
}{
	"f32":   {gputypes.VertexFormatFloat32, 4},
	"vec2f": {gputypes.VertexFormatFloat32x2, 8},
	"vec3f": {gputypes.VertexFormatFloat32x3, 12},
	"vec4f": {gputypes.VertexFormatFloat32x4, 16},
	"u32":   {gputypes.VertexFormatUint32, 4},
	"vec2u": {gputypes.VertexFormatUint32x2, 8},
	"vec3u": {gputypes.VertexFormatUint32x3, 12},
	"vec4u": {gputypes.VertexFormatUint32x4, 16},
	"i32":   {gputypes.VertexFormatSint32, 4},
	"vec2i": {gputypes.VertexFormatSint32x2, 8},
	"vec3i": {gputypes.VertexFormatSint32x3, 12},
	"vec4i": {gputypes.VertexFormatSint32x4, 16},
}

// VertexAttributes returns one attribute per vertex input, ordered by
// location and packed without padding. The second result is the total
// stride.
func VertexAttributes(ep *reflection.EntryPointInfo) ([]gputypes.VertexAttribute, uint64, error) {
	inputs := append([]reflection.VertexInputInfo(nil), ep.VertexInputs...)
	sort.SliceStable(inputs, func(i, j int) bool { return inputs[i].Location < inputs[j].Location })

	attrs := make([]gputypes.VertexAttribute, 0, len(inputs))
	var offset uint64
	for _, in := range inputs {
		f, ok := vertexFormats[in.TypeName]
		if !ok {
			return nil, 0, fmt.Errorf("vertex input %s: type %s: %w", in.Name, in.TypeName, ErrUnsupported)
		}
		attrs = append(attrs, gputypes.VertexAttribute{
			Format:         f.format,
			Offset:         offset,
			ShaderLocation: in.Location,
		})
		offset += f.size
	}
	return attrs, offset, nil
}

// VertexBufferLayout returns a per-vertex buffer layout holding every
// vertex input of ep.
func VertexBufferLayout(ep *reflection.EntryPointInfo) (gputypes.VertexBufferLayout, error) {
	attrs, stride, err := VertexAttributes(ep)
	if err != nil {
		return gputypes.VertexBufferLayout{}, err
	}
	return gputypes.VertexBufferLayout{
		ArrayStride: stride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes:  attrs,
	}, nil
}
