package wgsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/shaderkit/ir"
)

func (w *Writer) writeBlock(block ir.Block) error {
	for i, stmt := range block {
		if err := w.writeStatement(stmt.Kind); err != nil {
			return fmt.Errorf("statement %d: %w", i, err)
		}
	}
	return nil
}

//nolint:gocyclo,cyclop,funlen // one case per statement variant
func (w *Writer) writeStatement(kind ir.StatementKind) error {
	switch s := kind.(type) {
	case ir.StmtEmit:
		return w.writeEmit(s.Range)
	case ir.StmtBlock:
		w.writeLine("{")
		w.pushIndent()
		if err := w.writeBlock(s.Block); err != nil {
			return err
		}
		w.popIndent()
		w.writeLine("}")
	case ir.StmtIf:
		cond, err := w.writeExpression(s.Condition)
		if err != nil {
			return err
		}
		w.writeLine("if %s {", cond)
		w.pushIndent()
		if err := w.writeBlock(s.Accept); err != nil {
			return err
		}
		w.popIndent()
		if len(s.Reject) > 0 {
			w.writeLine("} else {")
			w.pushIndent()
			if err := w.writeBlock(s.Reject); err != nil {
				return err
			}
			w.popIndent()
		}
		w.writeLine("}")
	case ir.StmtSwitch:
		return w.writeSwitch(s)
	case ir.StmtLoop:
		w.writeLine("loop {")
		w.pushIndent()
		if err := w.writeBlock(s.Body); err != nil {
			return err
		}
		if len(s.Continuing) > 0 || s.BreakIf != nil {
			w.writeLine("continuing {")
			w.pushIndent()
			if err := w.writeBlock(s.Continuing); err != nil {
				return err
			}
			if s.BreakIf != nil {
				cond, err := w.writeExpression(*s.BreakIf)
				if err != nil {
					return err
				}
				w.writeLine("break if %s;", cond)
			}
			w.popIndent()
			w.writeLine("}")
		}
		w.popIndent()
		w.writeLine("}")
	case ir.StmtBreak:
		w.writeLine("break;")
	case ir.StmtContinue:
		w.writeLine("continue;")
	case ir.StmtReturn:
		if s.Value == nil {
			w.writeLine("return;")
			return nil
		}
		value, err := w.writeExpression(*s.Value)
		if err != nil {
			return err
		}
		w.writeLine("return %s;", value)
	case ir.StmtKill:
		w.writeLine("discard;")
	case ir.StmtBarrier:
		return w.writeBarrier(s.Flags)
	case ir.StmtStore:
		pointer, err := w.writeExpression(s.Pointer)
		if err != nil {
			return err
		}
		value, err := w.writeExpression(s.Value)
		if err != nil {
			return err
		}
		w.writeLine("%s = %s;", pointer, value)
	case ir.StmtImageStore:
		handles := []ir.ExpressionHandle{s.Image, s.Coordinate}
		if s.ArrayIndex != nil {
			handles = append(handles, *s.ArrayIndex)
		}
		handles = append(handles, s.Value)
		args, err := w.writeExpressions(handles)
		if err != nil {
			return err
		}
		w.writeLine("textureStore(%s);", args)
	case ir.StmtAtomic:
		return w.writeAtomic(s)
	case ir.StmtCall:
		return w.writeCall(s)
	case nil:
		return fmt.Errorf("statement has no kind")
	default:
		return fmt.Errorf("unsupported statement %T", kind)
	}
	return nil
}

func (w *Writer) writeEmit(r ir.Range) error {
	for h := r.Start; h < r.End; h++ {
		if w.shouldBake(h) {
			value, err := w.writeExpression(h)
			if err != nil {
				return err
			}
			name := w.namer.call(fmt.Sprintf("_e%d", h))
			w.writeLine("let %s = %s;", name, value)
			w.namedExpressions[h] = name
		}
		if err := w.flushInits(h); err != nil {
			return err
		}
	}
	return nil
}

// flushInits assigns locals whose initializer is h.
func (w *Writer) flushInits(h ir.ExpressionHandle) error {
	locals := w.pendingInits[h]
	if len(locals) == 0 {
		return nil
	}
	delete(w.pendingInits, h)
	value, err := w.writeExpression(h)
	if err != nil {
		return err
	}
	for _, i := range locals {
		w.writeLine("%s = %s;", w.localNames[i], value)
	}
	return nil
}

// nameResult binds a call or atomic result so later expressions can use it.
func (w *Writer) nameResult(h ir.ExpressionHandle, value string) error {
	name := w.namer.call(fmt.Sprintf("_e%d", h))
	w.writeLine("let %s = %s;", name, value)
	w.namedExpressions[h] = name
	return w.flushInits(h)
}

func (w *Writer) writeSwitch(s ir.StmtSwitch) error {
	selector, err := w.writeExpression(s.Selector)
	if err != nil {
		return err
	}
	w.writeLine("switch %s {", selector)
	w.pushIndent()

	var labels []string
	for i, c := range s.Cases {
		switch v := c.Value.(type) {
		case ir.SwitchValueI32:
			labels = append(labels, i32Literal(int32(v)))
		case ir.SwitchValueU32:
			labels = append(labels, fmt.Sprintf("%du", uint32(v)))
		case ir.SwitchValueDefault:
			labels = append(labels, "default")
		default:
			return fmt.Errorf("unsupported switch value %T", c.Value)
		}
		if c.FallThrough {
			if len(c.Body) > 0 {
				return fmt.Errorf("switch case %d falls through after a body", i)
			}
			if i+1 < len(s.Cases) {
				continue
			}
		}

		if len(labels) == 1 && labels[0] == "default" {
			w.writeLine("default: {")
		} else {
			w.writeLine("case %s: {", strings.Join(labels, ", "))
		}
		labels = labels[:0]
		w.pushIndent()
		if err := w.writeBlock(c.Body); err != nil {
			return err
		}
		w.popIndent()
		w.writeLine("}")
	}

	w.popIndent()
	w.writeLine("}")
	return nil
}

func (w *Writer) writeBarrier(flags ir.BarrierFlags) error {
	if flags&ir.BarrierSubGroup != 0 {
		return fmt.Errorf("subgroup barriers have no WGSL form")
	}
	if flags == 0 {
		w.writeLine("workgroupBarrier();")
		return nil
	}
	if flags&ir.BarrierStorage != 0 {
		w.writeLine("storageBarrier();")
	}
	if flags&ir.BarrierWorkGroup != 0 {
		w.writeLine("workgroupBarrier();")
	}
	if flags&ir.BarrierTexture != 0 {
		w.writeLine("textureBarrier();")
	}
	return nil
}

func (w *Writer) writeAtomic(s ir.StmtAtomic) error {
	pointer, err := w.writeExpression(s.Pointer)
	if err != nil {
		return err
	}
	value := func() (string, error) { return w.writeExpression(s.Value) }

	var call string
	switch fun := s.Fun.(type) {
	case ir.AtomicLoad:
		call = fmt.Sprintf("atomicLoad(&%s)", pointer)
	case ir.AtomicStore:
		v, err := value()
		if err != nil {
			return err
		}
		w.writeLine("atomicStore(&%s, %s);", pointer, v)
		return nil
	case ir.AtomicExchange:
		v, err := value()
		if err != nil {
			return err
		}
		if fun.Compare == nil {
			call = fmt.Sprintf("atomicExchange(&%s, %s)", pointer, v)
			break
		}
		cmp, err := w.writeExpression(*fun.Compare)
		if err != nil {
			return err
		}
		call = fmt.Sprintf("atomicCompareExchangeWeak(&%s, %s, %s)", pointer, cmp, v)
		if s.Result != nil {
			call += ".old_value"
		}
	default:
		name, ok := atomicNames(s.Fun)
		if !ok {
			return fmt.Errorf("unsupported atomic function %T", s.Fun)
		}
		v, err := value()
		if err != nil {
			return err
		}
		call = fmt.Sprintf("%s(&%s, %s)", name, pointer, v)
	}

	if s.Result != nil {
		return w.nameResult(*s.Result, call)
	}
	w.writeLine("%s;", call)
	return nil
}

func atomicNames(fun ir.AtomicFunction) (string, bool) {
	switch fun.(type) {
	case ir.AtomicAdd:
		return "atomicAdd", true
	case ir.AtomicSubtract:
		return "atomicSub", true
	case ir.AtomicAnd:
		return "atomicAnd", true
	case ir.AtomicExclusiveOr:
		return "atomicXor", true
	case ir.AtomicInclusiveOr:
		return "atomicOr", true
	case ir.AtomicMin:
		return "atomicMin", true
	case ir.AtomicMax:
		return "atomicMax", true
	default:
		return "", false
	}
}

func (w *Writer) writeCall(s ir.StmtCall) error {
	if int(s.Function) >= len(w.module.Functions) {
		return fmt.Errorf("call to missing function %d", s.Function)
	}
	callee := &w.module.Functions[s.Function]
	if len(s.Arguments) != len(callee.Arguments) {
		return fmt.Errorf("call passes %d arguments, function takes %d", len(s.Arguments), len(callee.Arguments))
	}
	args := make([]string, len(s.Arguments))
	for i, h := range s.Arguments {
		text, err := w.writeExpression(h)
		if err != nil {
			return err
		}
		param := callee.Arguments[i].Type
		if int(param) < len(w.module.Types) {
			if _, ok := w.module.Types[param].Inner.(ir.PointerType); ok {
				text = "&" + text
			}
		}
		args[i] = text
	}
	call := fmt.Sprintf("%s(%s)", w.names[nameKey{kind: nameKeyFunction, handle1: uint32(s.Function)}], strings.Join(args, ", "))
	if s.Result != nil {
		return w.nameResult(*s.Result, call)
	}
	w.writeLine("%s;", call)
	return nil
}
