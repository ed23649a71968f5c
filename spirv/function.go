package spirv

import (
	"fmt"

	"github.com/gogpu/shaderkit/ir"
)

type block struct {
	label uint32
	insts []Instruction
	merge *Instruction
	term  Instruction
}

type phiStore struct {
	local ir.ExpressionHandle
	value uint32
}

// loopState collects the break-if condition found in a continuing block.
type loopState struct {
	breakIf *ir.ExpressionHandle
}

// flow describes the constructs enclosing the block being translated.
type flow struct {
	loopHeader   uint32
	loopMerge    uint32
	loopContinue uint32
	switchMerge  uint32
	continuing   bool
	loop         *loopState
}

type functionParser struct {
	f     *frontend
	decl  *functionDecl
	entry *entryContext
	fn    *ir.Function

	blocks  map[uint32]*block
	first   uint32
	visited map[uint32]bool

	values    map[uint32]ir.ExpressionHandle
	sampled   map[uint32]sampledImage
	phiLocals map[uint32]ir.ExpressionHandle
	phis      map[uint32][]phiStore // keyed by predecessor label

	emitStart ir.ExpressionHandle
}

func newFunctionParser(f *frontend, decl *functionDecl, entry *entryContext) *functionParser {
	return &functionParser{
		f:         f,
		decl:      decl,
		entry:     entry,
		fn:        &ir.Function{Name: f.names[decl.id]},
		blocks:    make(map[uint32]*block),
		visited:   make(map[uint32]bool),
		values:    make(map[uint32]ir.ExpressionHandle),
		sampled:   make(map[uint32]sampledImage),
		phiLocals: make(map[uint32]ir.ExpressionHandle),
		phis:      make(map[uint32][]phiStore),
	}
}

func (p *functionParser) parse() (*ir.Function, error) {
	if err := p.signature(); err != nil {
		return nil, err
	}
	if err := p.collectBlocks(); err != nil {
		return nil, err
	}
	if err := p.declarePhis(); err != nil {
		return nil, err
	}
	if p.entry != nil {
		if err := p.prologue(&p.fn.Body); err != nil {
			return nil, err
		}
	}
	if err := p.region(p.first, 0, flow{}, &p.fn.Body); err != nil {
		return nil, err
	}
	return p.fn, nil
}

func (p *functionParser) signature() error {
	if p.entry != nil {
		if len(p.decl.params) > 0 {
			return p.decl.inst.errorf("entry point function takes parameters")
		}
		p.fn.Arguments = p.entry.args
		p.fn.Result = p.entry.result
		return nil
	}
	if ret := p.f.types[p.decl.result]; ret == nil || ret.inst.Opcode != OpTypeVoid {
		h, err := p.f.irType(p.decl.result)
		if err != nil {
			return err
		}
		p.fn.Result = &ir.FunctionResult{Type: h}
	}
	for i, param := range p.decl.params {
		if len(param.Operands) < 2 {
			return param.errorf("truncated parameter")
		}
		h, err := p.f.irType(param.Operands[0])
		if err != nil {
			return err
		}
		p.fn.Arguments = append(p.fn.Arguments, ir.FunctionArgument{Name: p.f.names[param.Operands[1]], Type: h})
		p.values[param.Operands[1]] = p.add(ir.ExprFunctionArgument{Index: uint32(i)})
	}
	return nil
}

// collectBlocks splits the body at labels and terminators.
func (p *functionParser) collectBlocks() error {
	var cur *block
	for i := range p.decl.body {
		inst := p.decl.body[i]
		if inst.Opcode == OpLabel {
			if cur != nil {
				return inst.errorf("block %s has no terminator", ref(cur.label))
			}
			if len(inst.Operands) == 0 {
				return inst.errorf("missing label id")
			}
			cur = &block{label: inst.Operands[0]}
			p.blocks[cur.label] = cur
			if p.first == 0 {
				p.first = cur.label
			}
			continue
		}
		if cur == nil {
			return inst.errorf("instruction outside a block")
		}
		switch inst.Opcode {
		case OpSelectionMerge, OpLoopMerge:
			if len(inst.Operands) < 1 || (inst.Opcode == OpLoopMerge && len(inst.Operands) < 2) {
				return inst.errorf("truncated merge instruction")
			}
			cur.merge = &p.decl.body[i]
		case OpBranch, OpBranchConditional, OpSwitch, OpReturn, OpReturnValue,
			OpKill, OpTerminateInvocation, OpUnreachable:
			cur.term = inst
			cur = nil
		default:
			cur.insts = append(cur.insts, inst)
		}
	}
	if cur != nil {
		return &ParseError{Offset: -1, Message: fmt.Sprintf("block %s has no terminator", ref(cur.label))}
	}
	if p.first == 0 {
		return p.decl.inst.errorf("function has no body")
	}
	return nil
}

// declarePhis turns every OpPhi into a local variable written at the end of
// each predecessor.
func (p *functionParser) declarePhis() error {
	for _, inst := range p.decl.body {
		if inst.Opcode != OpPhi {
			continue
		}
		if len(inst.Operands) < 2 || len(inst.Operands)%2 != 0 {
			return inst.errorf("malformed phi")
		}
		ty, err := p.f.irType(inst.Operands[0])
		if err != nil {
			return err
		}
		idx := uint32(len(p.fn.LocalVars))
		p.fn.LocalVars = append(p.fn.LocalVars, ir.LocalVariable{Name: p.f.names[inst.Operands[1]], Type: ty})
		local := p.add(ir.ExprLocalVariable{Variable: idx})
		p.phiLocals[inst.Operands[1]] = local
		for i := 2; i < len(inst.Operands); i += 2 {
			parent := inst.Operands[i+1]
			p.phis[parent] = append(p.phis[parent], phiStore{local: local, value: inst.Operands[i]})
		}
	}
	return nil
}

func (p *functionParser) storePhis(label uint32, out *ir.Block) error {
	stores := p.phis[label]
	if len(stores) == 0 {
		return nil
	}
	values := make([]ir.ExpressionHandle, len(stores))
	for i, s := range stores {
		v, err := p.value(s.value)
		if err != nil {
			return err
		}
		values[i] = v
	}
	// all values are evaluated before the first store
	p.flush(out)
	for i, s := range stores {
		p.push(out, ir.StmtStore{Pointer: s.local, Value: values[i]})
	}
	return nil
}

func (p *functionParser) add(kind ir.ExpressionKind) ir.ExpressionHandle {
	h := ir.ExpressionHandle(len(p.fn.Expressions))
	p.fn.Expressions = append(p.fn.Expressions, ir.Expression{Kind: kind})
	return h
}

// flush emits the expressions added since the last flush into out.
func (p *functionParser) flush(out *ir.Block) {
	end := ir.ExpressionHandle(len(p.fn.Expressions))
	if p.emitStart < end {
		*out = append(*out, ir.Statement{Kind: ir.StmtEmit{Range: ir.Range{Start: p.emitStart, End: end}}})
	}
	p.emitStart = end
}

func (p *functionParser) push(out *ir.Block, kind ir.StatementKind) {
	p.flush(out)
	*out = append(*out, ir.Statement{Kind: kind})
}

// addResult adds a call or atomic result. It stays out of emit ranges since
// the statement producing it assigns it.
func (p *functionParser) addResult(out *ir.Block, kind ir.ExpressionKind) ir.ExpressionHandle {
	p.flush(out)
	h := p.add(kind)
	p.emitStart = h + 1
	return h
}

// region translates blocks from label until stop is reached or control
// leaves the region.
func (p *functionParser) region(label, stop uint32, fl flow, out *ir.Block) error {
	err := p.walk(label, stop, fl, out)
	p.flush(out)
	return err
}

func (p *functionParser) walk(label, stop uint32, fl flow, out *ir.Block) error {
	for label != stop {
		if st, ok, err := p.jump(label, fl); err != nil {
			return err
		} else if ok {
			p.push(out, st)
			return nil
		}
		b := p.blocks[label]
		if b == nil {
			return fmt.Errorf("branch to unknown block %s", ref(label))
		}
		if p.visited[label] {
			return fmt.Errorf("block %s is reached twice; control flow is not structured", ref(label))
		}
		p.visited[label] = true

		if b.merge != nil && b.merge.Opcode == OpLoopMerge {
			next, err := p.loop(b, fl, out)
			if err != nil {
				return err
			}
			label = next
			continue
		}
		if err := p.translate(b.insts, out); err != nil {
			return err
		}
		if err := p.storePhis(b.label, out); err != nil {
			return err
		}
		next, done, err := p.terminator(b, stop, fl, out)
		if err != nil || done {
			return err
		}
		label = next
	}
	return nil
}

// jump maps a branch to an enclosing merge or continue target onto break or
// continue.
func (p *functionParser) jump(target uint32, fl flow) (ir.StatementKind, bool, error) {
	switch {
	case fl.switchMerge != 0 && target == fl.switchMerge:
		return ir.StmtBreak{}, true, nil
	case fl.loopMerge != 0 && target == fl.loopMerge:
		if fl.continuing {
			return nil, false, fmt.Errorf("unconditional break from the continue block of %s", ref(fl.loopHeader))
		}
		if fl.switchMerge != 0 {
			return nil, false, fmt.Errorf("break out of loop %s from inside a switch", ref(fl.loopHeader))
		}
		return ir.StmtBreak{}, true, nil
	case fl.loopContinue != 0 && target == fl.loopContinue && !fl.continuing:
		return ir.StmtContinue{}, true, nil
	}
	return nil, false, nil
}

// branch translates one arm of a selection.
func (p *functionParser) branch(target, merge uint32, fl flow) (ir.Block, error) {
	if target == merge {
		return nil, nil
	}
	if st, ok, err := p.jump(target, fl); err != nil || ok {
		if err != nil {
			return nil, err
		}
		return ir.Block{{Kind: st}}, nil
	}
	var body ir.Block
	err := p.region(target, merge, fl, &body)
	return body, err
}

//nolint:gocyclo,cyclop,funlen // one case per terminator shape
func (p *functionParser) terminator(b *block, stop uint32, fl flow, out *ir.Block) (uint32, bool, error) {
	t := b.term
	ops := t.Operands
	switch t.Opcode {
	case OpBranch:
		if len(ops) < 1 {
			return 0, false, t.errorf("missing target")
		}
		return ops[0], false, nil

	case OpBranchConditional:
		if len(ops) < 3 {
			return 0, false, t.errorf("truncated conditional branch")
		}
		cond, err := p.value(ops[0])
		if err != nil {
			return 0, false, err
		}
		tl, el := ops[1], ops[2]
		p.flush(out)

		if b.merge != nil && b.merge.Opcode == OpSelectionMerge {
			m := b.merge.Operands[0]
			accept, err := p.branch(tl, m, fl)
			if err != nil {
				return 0, false, err
			}
			reject, err := p.branch(el, m, fl)
			if err != nil {
				return 0, false, err
			}
			p.push(out, ir.StmtIf{Condition: cond, Accept: accept, Reject: reject})
			return m, false, nil
		}
		if tl == el {
			return tl, false, nil
		}
		if fl.continuing && fl.loop != nil {
			switch {
			case tl == fl.loopMerge && el == fl.loopHeader:
				fl.loop.breakIf = &cond
				return 0, true, nil
			case tl == fl.loopHeader && el == fl.loopMerge:
				not := p.add(ir.ExprUnary{Op: ir.UnaryLogicalNot, Expr: cond})
				p.flush(out)
				fl.loop.breakIf = &not
				return 0, true, nil
			}
		}

		tStmt, tOK, err := p.jump(tl, fl)
		if err != nil {
			return 0, false, err
		}
		eStmt, eOK, err := p.jump(el, fl)
		if err != nil {
			return 0, false, err
		}
		switch {
		case tOK && eOK:
			p.push(out, ir.StmtIf{Condition: cond, Accept: ir.Block{{Kind: tStmt}}, Reject: ir.Block{{Kind: eStmt}}})
			return 0, true, nil
		case tOK:
			p.push(out, ir.StmtIf{Condition: cond, Accept: ir.Block{{Kind: tStmt}}})
			return el, false, nil
		case eOK:
			p.push(out, ir.StmtIf{Condition: cond, Reject: ir.Block{{Kind: eStmt}}})
			return tl, false, nil
		case tl == stop:
			reject, err := p.branch(el, stop, fl)
			if err != nil {
				return 0, false, err
			}
			p.push(out, ir.StmtIf{Condition: cond, Reject: reject})
			return stop, false, nil
		case el == stop:
			accept, err := p.branch(tl, stop, fl)
			if err != nil {
				return 0, false, err
			}
			p.push(out, ir.StmtIf{Condition: cond, Accept: accept})
			return stop, false, nil
		}
		return 0, false, t.errorf("conditional branch without a merge instruction")

	case OpSwitch:
		if b.merge == nil || b.merge.Opcode != OpSelectionMerge {
			return 0, false, t.errorf("switch without a selection merge")
		}
		m := b.merge.Operands[0]
		if err := p.switchStatement(t, m, fl, out); err != nil {
			return 0, false, err
		}
		return m, false, nil

	case OpReturn:
		if p.entry != nil {
			return 0, true, p.epilogue(out)
		}
		p.push(out, ir.StmtReturn{})
		return 0, true, nil

	case OpReturnValue:
		if len(ops) < 1 {
			return 0, false, t.errorf("missing return value")
		}
		v, err := p.value(ops[0])
		if err != nil {
			return 0, false, err
		}
		p.push(out, ir.StmtReturn{Value: &v})
		return 0, true, nil

	case OpKill, OpTerminateInvocation:
		p.push(out, ir.StmtKill{})
		return 0, true, nil

	case OpUnreachable:
		return 0, true, nil
	}
	return 0, false, t.errorf("unsupported terminator")
}

func (p *functionParser) switchStatement(t Instruction, merge uint32, fl flow, out *ir.Block) error {
	ops := t.Operands
	if len(ops) < 2 {
		return t.errorf("truncated switch")
	}
	selector, err := p.value(ops[0])
	if err != nil {
		return err
	}
	scalar, _, ok := p.f.scalarOf(p.f.typeOf[ops[0]])
	if !ok || scalar.Width > 4 {
		return t.errorf("switch selector must be a 32-bit integer")
	}
	p.flush(out)

	var order []uint32
	literals := make(map[uint32][]uint32)
	for i := 2; i+1 < len(ops); i += 2 {
		target := ops[i+1]
		if _, seen := literals[target]; !seen {
			order = append(order, target)
		}
		literals[target] = append(literals[target], ops[i])
	}
	defaultTarget := ops[1]
	if _, shared := literals[defaultTarget]; !shared {
		order = append(order, defaultTarget)
	}

	inner := fl
	inner.switchMerge = merge
	var cases []ir.SwitchCase
	for _, target := range order {
		body, err := p.branch(target, merge, inner)
		if err != nil {
			return err
		}
		values := make([]ir.SwitchValue, 0, len(literals[target])+1)
		for _, lit := range literals[target] {
			if scalar.Kind == ir.ScalarSint {
				values = append(values, ir.SwitchValueI32(int32(lit)))
			} else {
				values = append(values, ir.SwitchValueU32(lit))
			}
		}
		if target == defaultTarget {
			values = append(values, ir.SwitchValueDefault{})
		}
		for i, v := range values {
			c := ir.SwitchCase{Value: v, FallThrough: true}
			if i == len(values)-1 {
				c.Body = body
				c.FallThrough = false
			}
			cases = append(cases, c)
		}
	}
	p.push(out, ir.StmtSwitch{Selector: selector, Cases: cases})
	return nil
}

// loop translates the loop headed by b and returns its merge block.
func (p *functionParser) loop(b *block, fl flow, out *ir.Block) (uint32, error) {
	merge, cont := b.merge.Operands[0], b.merge.Operands[1]
	p.flush(out)
	state := &loopState{}
	inner := flow{loopHeader: b.label, loopMerge: merge, loopContinue: cont, loop: state}

	var body ir.Block
	if err := p.translate(b.insts, &body); err != nil {
		return 0, err
	}
	if err := p.storePhis(b.label, &body); err != nil {
		return 0, err
	}

	if cont == b.label {
		if err := p.selfLoop(b, merge, state, &body); err != nil {
			return 0, err
		}
		p.push(out, ir.StmtLoop{Body: body, BreakIf: state.breakIf})
		return merge, nil
	}

	next, done, err := p.terminator(b, cont, inner, &body)
	if err != nil {
		return 0, err
	}
	if !done {
		if err := p.region(next, cont, inner, &body); err != nil {
			return 0, err
		}
	}
	p.flush(&body)

	var continuing ir.Block
	if !p.visited[cont] {
		cf := flow{loopHeader: b.label, loopMerge: merge, continuing: true, loop: state}
		if err := p.region(cont, b.label, cf, &continuing); err != nil {
			return 0, err
		}
	}
	p.push(out, ir.StmtLoop{Body: body, Continuing: continuing, BreakIf: state.breakIf})
	return merge, nil
}

// selfLoop handles a header that is its own continue target.
func (p *functionParser) selfLoop(b *block, merge uint32, state *loopState, body *ir.Block) error {
	t := b.term
	switch t.Opcode {
	case OpBranch:
		if t.Operands[0] != b.label {
			return t.errorf("loop header %s does not branch back to itself", ref(b.label))
		}
	case OpBranchConditional:
		cond, err := p.value(t.Operands[0])
		if err != nil {
			return err
		}
		switch {
		case t.Operands[1] == merge && t.Operands[2] == b.label:
			state.breakIf = &cond
		case t.Operands[1] == b.label && t.Operands[2] == merge:
			not := p.add(ir.ExprUnary{Op: ir.UnaryLogicalNot, Expr: cond})
			state.breakIf = &not
		default:
			return t.errorf("loop header %s must branch to itself or its merge", ref(b.label))
		}
	default:
		return t.errorf("unsupported loop header terminator")
	}
	p.flush(body)
	return nil
}
