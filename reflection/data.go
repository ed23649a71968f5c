package reflection

import "encoding/json"

// Data is the reflected interface of a module.
type Data struct {
	EntryPoints []EntryPointInfo `json:"entryPoints"`
	Types       []TypeInfo       `json:"types"`
}

// EntryPoint returns the entry point with the given name.
func (d *Data) EntryPoint(name string) (*EntryPointInfo, bool) {
	for i := range d.EntryPoints {
		if d.EntryPoints[i].Name == name {
			return &d.EntryPoints[i], true
		}
	}
	return nil, false
}

// ToJSON encodes the data as JSON.
func (d *Data) ToJSON() ([]byte, error) { return json.Marshal(d) }

// EntryPointInfo describes one entry point.
type EntryPointInfo struct {
	Name  string `json:"name"`
	Stage string `json:"stage"`

	// WorkgroupSize is set for compute entry points only.
	WorkgroupSize *[3]uint32 `json:"workgroupSize"`

	Bindings        []BindingInfo        `json:"bindings"`
	VertexInputs    []VertexInputInfo    `json:"vertexInputs"`
	FragmentOutputs []FragmentOutputInfo `json:"fragmentOutputs"`
}

// ToJSON encodes the entry point as JSON.
func (e *EntryPointInfo) ToJSON() ([]byte, error) { return json.Marshal(e) }

// BindingInfo describes a resource the entry point references.
type BindingInfo struct {
	Name         string       `json:"name"`
	Group        uint32       `json:"group"`
	Binding      uint32       `json:"binding"`
	ResourceType ResourceType `json:"resourceType"`
	TypeName     *string      `json:"typeName"`
}

// ToJSON encodes the binding as JSON.
func (b *BindingInfo) ToJSON() ([]byte, error) { return json.Marshal(b) }

// VertexInputInfo describes a location-bound vertex shader argument.
type VertexInputInfo struct {
	Name     string `json:"name"`
	Location uint32 `json:"location"`
	TypeName string `json:"typeName"`
}

// ToJSON encodes the input as JSON.
func (v *VertexInputInfo) ToJSON() ([]byte, error) { return json.Marshal(v) }

// FragmentOutputInfo describes a location-bound fragment shader output.
type FragmentOutputInfo struct {
	Name     string `json:"name"`
	Location uint32 `json:"location"`
	TypeName string `json:"typeName"`
}

// ToJSON encodes the output as JSON.
func (f *FragmentOutputInfo) ToJSON() ([]byte, error) { return json.Marshal(f) }

// TypeInfo describes a struct type. Kind is always "struct".
type TypeInfo struct {
	Name    string             `json:"name"`
	Kind    string             `json:"kind"`
	Members []StructMemberInfo `json:"members"`
}

// ToJSON encodes the type as JSON.
func (t *TypeInfo) ToJSON() ([]byte, error) { return json.Marshal(t) }

// StructMemberInfo is one member of a struct with its byte offset.
type StructMemberInfo struct {
	Name     string `json:"name"`
	TypeName string `json:"typeName"`
	Offset   uint32 `json:"offset"`
}

// ToJSON encodes the member as JSON.
func (m *StructMemberInfo) ToJSON() ([]byte, error) { return json.Marshal(m) }
