package wgsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/shaderkit/ir"
)

// WriterOptions configures WGSL generation.
type WriterOptions struct {
	// Indent is the indentation unit. Empty means four spaces.
	Indent string
}

// DefaultWriterOptions returns the options used by Write when none are given.
func DefaultWriterOptions() WriterOptions {
	return WriterOptions{Indent: "    "}
}

// Write renders module as WGSL source.
func Write(module *ir.Module, options WriterOptions) (string, error) {
	if module == nil {
		return "", fmt.Errorf("wgsl: module is nil")
	}
	if options.Indent == "" {
		options.Indent = DefaultWriterOptions().Indent
	}
	w := newWriter(module, options)
	if err := w.writeModule(); err != nil {
		return "", err
	}
	return w.String(), nil
}

// nameKey identifies an IR entity for name lookup.
type nameKey struct {
	kind    nameKeyKind
	handle1 uint32
	handle2 uint32
}

type nameKeyKind uint8

const (
	nameKeyType nameKeyKind = iota
	nameKeyStructMember
	nameKeyConstant
	nameKeyGlobalVariable
	nameKeyFunction
	nameKeyEntryPoint
)

// Writer generates WGSL source code from IR.
type Writer struct {
	module  *ir.Module
	options WriterOptions

	out    strings.Builder
	indent int

	names map[nameKey]string
	namer *namer

	// Function context.
	currentFunction  *ir.Function
	argNames         []string
	localNames       []string
	namedExpressions map[ir.ExpressionHandle]string
	refCounts        []int
	emitted          []bool

	// pendingInits maps an emitted expression to the locals it initializes.
	pendingInits map[ir.ExpressionHandle][]int
}

// namer generates unique identifiers.
type namer struct {
	usedNames map[string]struct{}
}

func newNamer() *namer {
	return &namer{usedNames: make(map[string]struct{})}
}

// call returns a unique identifier derived from base.
func (n *namer) call(base string) string {
	escaped := escapeKeyword(sanitize(base))
	if _, used := n.usedNames[escaped]; !used {
		n.usedNames[escaped] = struct{}{}
		return escaped
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d", escaped, i)
		if _, used := n.usedNames[candidate]; !used {
			n.usedNames[candidate] = struct{}{}
			return candidate
		}
	}
}

// sanitize replaces characters WGSL identifiers cannot hold, as found in
// names produced by other compilers ("type.2d.image", "out.var.SV_Target").
func sanitize(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func (n *namer) clone() *namer {
	c := newNamer()
	for name := range n.usedNames {
		c.usedNames[name] = struct{}{}
	}
	return c
}

func newWriter(module *ir.Module, options WriterOptions) *Writer {
	return &Writer{
		module:  module,
		options: options,
		names:   make(map[nameKey]string),
		namer:   newNamer(),
	}
}

// String returns the generated source.
func (w *Writer) String() string {
	return w.out.String()
}

func (w *Writer) writeModule() error {
	w.registerNames()

	if err := w.writeStructs(); err != nil {
		return err
	}
	if err := w.writeConstants(); err != nil {
		return err
	}
	if err := w.writeGlobalVariables(); err != nil {
		return err
	}
	for i := range w.module.Functions {
		if err := w.writeFunction(&w.module.Functions[i], w.names[nameKey{kind: nameKeyFunction, handle1: uint32(i)}], nil); err != nil { //nolint:gosec // G115: index of an arena
			return err
		}
	}
	for i := range w.module.EntryPoints {
		ep := &w.module.EntryPoints[i]
		if err := w.writeFunction(&ep.Function, w.names[nameKey{kind: nameKeyEntryPoint, handle1: uint32(i)}], ep); err != nil { //nolint:gosec // G115: index of an arena
			return err
		}
	}
	return nil
}

// registerNames assigns unique names to every module-scope entity. Entry
// points go first so they keep their declared names.
func (w *Writer) registerNames() {
	for i, ep := range w.module.EntryPoints {
		w.names[nameKey{kind: nameKeyEntryPoint, handle1: uint32(i)}] = w.namer.call(ep.Name) //nolint:gosec // G115: index of an arena
	}
	for handle, typ := range w.module.Types {
		st, ok := typ.Inner.(ir.StructType)
		if !ok {
			continue
		}
		base := typ.Name
		if base == "" {
			base = fmt.Sprintf("type_%d", handle)
		}
		w.names[nameKey{kind: nameKeyType, handle1: uint32(handle)}] = w.namer.call(base) //nolint:gosec // G115: index of an arena

		// Members live in their own scope.
		members := newNamer()
		for idx, m := range st.Members {
			name := m.Name
			if name == "" {
				name = fmt.Sprintf("member_%d", idx)
			}
			w.names[nameKey{kind: nameKeyStructMember, handle1: uint32(handle), handle2: uint32(idx)}] = members.call(name) //nolint:gosec // G115: index of an arena
		}
	}
	for handle, c := range w.module.Constants {
		base := c.Name
		if base == "" {
			base = fmt.Sprintf("const_%d", handle)
		}
		w.names[nameKey{kind: nameKeyConstant, handle1: uint32(handle)}] = w.namer.call(base) //nolint:gosec // G115: index of an arena
	}
	for handle, gv := range w.module.GlobalVariables {
		base := gv.Name
		switch {
		case base != "":
		case gv.Binding != nil:
			base = fmt.Sprintf("binding_%d_%d", gv.Binding.Group, gv.Binding.Binding)
		default:
			base = fmt.Sprintf("global_%d", handle)
		}
		w.names[nameKey{kind: nameKeyGlobalVariable, handle1: uint32(handle)}] = w.namer.call(base) //nolint:gosec // G115: index of an arena
	}
	for handle, fn := range w.module.Functions {
		base := fn.Name
		if base == "" {
			base = fmt.Sprintf("function_%d", handle)
		}
		w.names[nameKey{kind: nameKeyFunction, handle1: uint32(handle)}] = w.namer.call(base) //nolint:gosec // G115: index of an arena
	}
}

func (w *Writer) writeStructs() error {
	for handle, typ := range w.module.Types {
		st, ok := typ.Inner.(ir.StructType)
		if !ok {
			continue
		}
		name := w.names[nameKey{kind: nameKeyType, handle1: uint32(handle)}] //nolint:gosec // G115: index of an arena
		w.writeLine("struct %s {", name)
		w.pushIndent()
		sizes := w.memberSizeAttributes(st)
		for idx, m := range st.Members {
			typeName, err := w.typeName(m.Type)
			if err != nil {
				return fmt.Errorf("struct %s: %w", name, err)
			}
			memberName := w.names[nameKey{kind: nameKeyStructMember, handle1: uint32(handle), handle2: uint32(idx)}] //nolint:gosec // G115: index of an arena
			attrs := bindingAttributes(m.Binding)
			if sizes[idx] != 0 {
				attrs += fmt.Sprintf("@size(%d) ", sizes[idx])
			}
			w.writeLine("%s%s: %s,", attrs, memberName, typeName)
		}
		w.popIndent()
		w.writeLine("}")
		w.writeLine("")
	}
	return nil
}

func (w *Writer) writeConstants() error {
	for handle, c := range w.module.Constants {
		name := w.names[nameKey{kind: nameKeyConstant, handle1: uint32(handle)}] //nolint:gosec // G115: index of an arena
		typeName, err := w.typeName(c.Type)
		if err != nil {
			return fmt.Errorf("constant %s: %w", name, err)
		}
		value, err := w.constantValue(ir.ConstantHandle(handle), 0) //nolint:gosec // G115: index of an arena
		if err != nil {
			return fmt.Errorf("constant %s: %w", name, err)
		}
		w.writeLine("const %s: %s = %s;", name, typeName, value)
	}
	if len(w.module.Constants) > 0 {
		w.writeLine("")
	}
	return nil
}

// maxConstantDepth bounds composite constant nesting.
const maxConstantDepth = 32

func (w *Writer) constantValue(handle ir.ConstantHandle, depth int) (string, error) {
	if int(handle) >= len(w.module.Constants) {
		return "", fmt.Errorf("constant %d does not exist", handle)
	}
	if depth > maxConstantDepth {
		return "", fmt.Errorf("constant %d nests too deeply", handle)
	}
	c := w.module.Constants[handle]
	switch v := c.Value.(type) {
	case ir.ScalarValue:
		width := uint8(4)
		if int(c.Type) < len(w.module.Types) {
			if s, ok := w.module.Types[c.Type].Inner.(ir.ScalarType); ok {
				width = s.Width
			}
		}
		return scalarValueString(v, width), nil
	case ir.CompositeValue:
		typeName, err := w.typeName(c.Type)
		if err != nil {
			return "", err
		}
		parts := make([]string, len(v.Components))
		for i, comp := range v.Components {
			s, err := w.constantValue(comp, depth+1)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return fmt.Sprintf("%s(%s)", typeName, strings.Join(parts, ", ")), nil
	case ir.ZeroValue:
		typeName, err := w.typeName(c.Type)
		if err != nil {
			return "", err
		}
		return typeName + "()", nil
	default:
		return "", fmt.Errorf("unsupported constant value %T", c.Value)
	}
}

func (w *Writer) writeGlobalVariables() error {
	for handle, gv := range w.module.GlobalVariables {
		name := w.names[nameKey{kind: nameKeyGlobalVariable, handle1: uint32(handle)}] //nolint:gosec // G115: index of an arena
		typeName, err := w.typeName(gv.Type)
		if err != nil {
			return fmt.Errorf("global %s: %w", name, err)
		}
		var b strings.Builder
		if gv.Binding != nil {
			fmt.Fprintf(&b, "@group(%d) @binding(%d) ", gv.Binding.Group, gv.Binding.Binding)
		}
		switch gv.Space {
		case ir.SpaceHandle:
			b.WriteString("var")
		case ir.SpaceStorage:
			if gv.Access&ir.StorageStore != 0 {
				b.WriteString("var<storage, read_write>")
			} else {
				b.WriteString("var<storage, read>")
			}
		case ir.SpaceFunction:
			return fmt.Errorf("global %s: function address space at module scope", name)
		default:
			fmt.Fprintf(&b, "var<%s>", gv.Space)
		}
		fmt.Fprintf(&b, " %s: %s", name, typeName)
		if gv.Init != nil {
			value, err := w.constantValue(*gv.Init, 0)
			if err != nil {
				return fmt.Errorf("global %s: %w", name, err)
			}
			fmt.Fprintf(&b, " = %s", value)
		}
		b.WriteByte(';')
		w.writeLine("%s", b.String())
	}
	if len(w.module.GlobalVariables) > 0 {
		w.writeLine("")
	}
	return nil
}

// writeFunction writes a helper function, or an entry point when ep is set.
func (w *Writer) writeFunction(fn *ir.Function, name string, ep *ir.EntryPoint) error {
	w.currentFunction = fn
	w.namedExpressions = make(map[ir.ExpressionHandle]string)
	w.refCounts, w.emitted = countReferences(fn)

	// Function-scope names may repeat across functions but must not shadow
	// module-scope ones.
	moduleNamer := w.namer
	w.namer = moduleNamer.clone()
	defer func() {
		w.currentFunction = nil
		w.namer = moduleNamer
	}()

	if ep != nil {
		switch ep.Stage {
		case ir.StageVertex:
			w.writeLine("@vertex")
		case ir.StageFragment:
			w.writeLine("@fragment")
		case ir.StageCompute:
			w.writeLine("@compute @workgroup_size(%d, %d, %d)", ep.Workgroup[0], ep.Workgroup[1], ep.Workgroup[2])
		default:
			return fmt.Errorf("entry point %s: stage %s has no WGSL form", ep.Name, ep.Stage)
		}
	}

	w.argNames = make([]string, len(fn.Arguments))
	args := make([]string, len(fn.Arguments))
	for i, arg := range fn.Arguments {
		base := arg.Name
		if base == "" {
			base = fmt.Sprintf("arg_%d", i)
		}
		w.argNames[i] = w.namer.call(base)
		typeName, err := w.typeName(arg.Type)
		if err != nil {
			return fmt.Errorf("function %s: %w", name, err)
		}
		args[i] = fmt.Sprintf("%s%s: %s", bindingAttributes(arg.Binding), w.argNames[i], typeName)
	}

	header := fmt.Sprintf("fn %s(%s)", name, strings.Join(args, ", "))
	if fn.Result != nil {
		typeName, err := w.typeName(fn.Result.Type)
		if err != nil {
			return fmt.Errorf("function %s: %w", name, err)
		}
		header += fmt.Sprintf(" -> %s%s", bindingAttributes(fn.Result.Binding), typeName)
	}
	w.writeLine("%s {", header)
	w.pushIndent()

	if err := w.writeLocalVars(fn); err != nil {
		return fmt.Errorf("function %s: %w", name, err)
	}
	if err := w.writeBlock(fn.Body); err != nil {
		return fmt.Errorf("function %s: %w", name, err)
	}

	w.popIndent()
	w.writeLine("}")
	w.writeLine("")
	return nil
}

// writeLocalVars declares locals. An initializer that reads mutable state
// is assigned where its expression is emitted instead.
func (w *Writer) writeLocalVars(fn *ir.Function) error {
	w.localNames = make([]string, len(fn.LocalVars))
	w.pendingInits = make(map[ir.ExpressionHandle][]int)
	for i, local := range fn.LocalVars {
		base := local.Name
		if base == "" {
			base = fmt.Sprintf("local_%d", i)
		}
		w.localNames[i] = w.namer.call(base)
	}
	var early []int
	for i, local := range fn.LocalVars {
		typeName, err := w.typeName(local.Type)
		if err != nil {
			return err
		}
		if local.Init == nil {
			w.writeLine("var %s: %s;", w.localNames[i], typeName)
			continue
		}
		if !w.isConstLike(*local.Init, 0) {
			w.writeLine("var %s: %s;", w.localNames[i], typeName)
			if w.assignedLater(*local.Init) {
				w.pendingInits[*local.Init] = append(w.pendingInits[*local.Init], i)
			} else {
				early = append(early, i)
			}
			continue
		}
		init, err := w.writeExpression(*local.Init)
		if err != nil {
			return err
		}
		w.writeLine("var %s: %s = %s;", w.localNames[i], typeName, init)
	}
	for _, i := range early {
		init, err := w.writeExpression(*fn.LocalVars[i].Init)
		if err != nil {
			return err
		}
		w.writeLine("%s = %s;", w.localNames[i], init)
	}
	return nil
}

// assignedLater reports whether an expression gets its value at a point in
// the body: an Emit covers it or a statement produces it.
func (w *Writer) assignedLater(h ir.ExpressionHandle) bool {
	if int(h) >= len(w.emitted) {
		return false
	}
	switch w.currentFunction.Expressions[h].Kind.(type) {
	case ir.ExprCallResult, ir.ExprAtomicResult:
		return true
	}
	return w.emitted[h]
}

func bindingAttributes(b ir.Binding) string {
	switch b := b.(type) {
	case ir.BuiltinBinding:
		return fmt.Sprintf("@builtin(%s) ", b.Builtin)
	case ir.LocationBinding:
		s := fmt.Sprintf("@location(%d) ", b.Location)
		if b.Interpolation != nil {
			s += "@interpolate(" + interpolationKindName(b.Interpolation.Kind)
			if b.Interpolation.Sampling != ir.SamplingCenter {
				s += ", " + samplingName(b.Interpolation.Sampling)
			}
			s += ") "
		}
		return s
	default:
		return ""
	}
}

func interpolationKindName(k ir.InterpolationKind) string {
	switch k {
	case ir.InterpolationFlat:
		return "flat"
	case ir.InterpolationLinear:
		return "linear"
	default:
		return "perspective"
	}
}

func samplingName(s ir.InterpolationSampling) string {
	switch s {
	case ir.SamplingCentroid:
		return "centroid"
	case ir.SamplingSample:
		return "sample"
	default:
		return "center"
	}
}

//nolint:goprintffuncname
func (w *Writer) writeLine(format string, args ...any) {
	if format == "" {
		w.out.WriteByte('\n')
		return
	}
	for i := 0; i < w.indent; i++ {
		w.out.WriteString(w.options.Indent)
	}
	if len(args) == 0 {
		w.out.WriteString(format)
	} else {
		fmt.Fprintf(&w.out, format, args...)
	}
	w.out.WriteByte('\n')
}

func (w *Writer) pushIndent() { w.indent++ }

func (w *Writer) popIndent() {
	if w.indent > 0 {
		w.indent--
	}
}
