package reflection

import (
	"fmt"

	"github.com/gogpu/shaderkit/ir"
)

const (
	unknownName = "unknown"
	unnamed     = "unnamed"
)

// Reflect describes the interface of a module. Entry points are reported in
// module order and struct types in type table order.
//
// Reflect expects a module that passed ir.Validate. It never fails: names
// that cannot be derived are reported as "unknown".
func Reflect(module *ir.Module) *Data {
	if module == nil {
		return &Data{EntryPoints: []EntryPointInfo{}, Types: []TypeInfo{}}
	}
	data := &Data{
		EntryPoints: make([]EntryPointInfo, 0, len(module.EntryPoints)),
		Types:       make([]TypeInfo, 0),
	}
	for i := range module.EntryPoints {
		data.EntryPoints = append(data.EntryPoints, reflectEntryPoint(module, &module.EntryPoints[i]))
	}
	for h := range module.Types {
		st, ok := module.Types[h].Inner.(ir.StructType)
		if !ok {
			continue
		}
		name := module.Types[h].Name
		if name == "" {
			name = fmt.Sprintf("type_%d", h)
		}
		data.Types = append(data.Types, TypeInfo{
			Name:    name,
			Kind:    "struct",
			Members: structMembers(module, st),
		})
	}
	return data
}

func reflectEntryPoint(module *ir.Module, ep *ir.EntryPoint) EntryPointInfo {
	info := EntryPointInfo{
		Name:            ep.Name,
		Stage:           ep.Stage.String(),
		Bindings:        make([]BindingInfo, 0),
		VertexInputs:    make([]VertexInputInfo, 0),
		FragmentOutputs: make([]FragmentOutputInfo, 0),
	}
	if ep.Stage == ir.StageCompute {
		size := ep.Workgroup
		info.WorkgroupSize = &size
	}

	used := usedGlobals(&ep.Function, len(module.GlobalVariables))
	for h := range module.GlobalVariables {
		gv := &module.GlobalVariables[h]
		if gv.Binding == nil || !used[h] {
			continue
		}
		info.Bindings = append(info.Bindings, bindingInfo(module, gv))
	}

	switch ep.Stage {
	case ir.StageVertex:
		info.VertexInputs = vertexInputs(module, &ep.Function)
	case ir.StageFragment:
		info.FragmentOutputs = fragmentOutputs(module, &ep.Function)
	}
	return info
}

// usedGlobals marks every global variable referenced directly by an
// expression of fn.
func usedGlobals(fn *ir.Function, count int) []bool {
	used := make([]bool, count)
	for _, expr := range fn.Expressions {
		if g, ok := expr.Kind.(ir.ExprGlobalVariable); ok && int(g.Variable) < count {
			used[g.Variable] = true
		}
	}
	return used
}

func bindingInfo(module *ir.Module, gv *ir.GlobalVariable) BindingInfo {
	category, typeName, ok := Classify(module, gv)
	name := gv.Name
	if name == "" {
		name = fmt.Sprintf("binding_%d_%d", gv.Binding.Group, gv.Binding.Binding)
	}
	info := BindingInfo{
		Name:         name,
		Group:        gv.Binding.Group,
		Binding:      gv.Binding.Binding,
		ResourceType: category,
	}
	if ok {
		info.TypeName = &typeName
	}
	return info
}

func vertexInputs(module *ir.Module, fn *ir.Function) []VertexInputInfo {
	inputs := make([]VertexInputInfo, 0, len(fn.Arguments))
	for _, arg := range fn.Arguments {
		loc, ok := arg.Binding.(ir.LocationBinding)
		if !ok {
			continue
		}
		name := arg.Name
		if name == "" {
			name = fmt.Sprintf("input_%d", loc.Location)
		}
		inputs = append(inputs, VertexInputInfo{
			Name:     name,
			Location: loc.Location,
			TypeName: nameOrUnknown(module, arg.Type),
		})
	}
	return inputs
}

// fragmentOutputs reports a location-bound result as "output", or the
// location-bound members of a struct result. Built-in outputs such as
// frag_depth are not reported.
func fragmentOutputs(module *ir.Module, fn *ir.Function) []FragmentOutputInfo {
	outputs := make([]FragmentOutputInfo, 0)
	result := fn.Result
	if result == nil {
		return outputs
	}
	if loc, ok := result.Binding.(ir.LocationBinding); ok {
		return append(outputs, FragmentOutputInfo{
			Name:     "output",
			Location: loc.Location,
			TypeName: nameOrUnknown(module, result.Type),
		})
	}
	if int(result.Type) >= len(module.Types) {
		return outputs
	}
	st, ok := module.Types[result.Type].Inner.(ir.StructType)
	if !ok {
		return outputs
	}
	for _, member := range st.Members {
		loc, ok := member.Binding.(ir.LocationBinding)
		if !ok {
			continue
		}
		name := member.Name
		if name == "" {
			name = fmt.Sprintf("output_%d", loc.Location)
		}
		outputs = append(outputs, FragmentOutputInfo{
			Name:     name,
			Location: loc.Location,
			TypeName: nameOrUnknown(module, member.Type),
		})
	}
	return outputs
}

func structMembers(module *ir.Module, st ir.StructType) []StructMemberInfo {
	members := make([]StructMemberInfo, 0, len(st.Members))
	for _, m := range st.Members {
		name := m.Name
		if name == "" {
			name = unnamed
		}
		members = append(members, StructMemberInfo{
			Name:     name,
			TypeName: nameOrUnknown(module, m.Type),
			Offset:   m.Offset,
		})
	}
	return members
}

func nameOrUnknown(module *ir.Module, h ir.TypeHandle) string {
	if name, ok := TypeName(module, h); ok {
		return name
	}
	return unknownName
}
