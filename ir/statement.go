package ir

// Statement is one node of a structured function body.
type Statement struct {
	Kind StatementKind
}

// StatementKind is one statement variant.
type StatementKind interface {
	statementKind()
}

// Block is a sequence of statements.
type Block []Statement

// Range is a half-open range of expression handles.
type Range struct {
	Start ExpressionHandle
	End   ExpressionHandle
}

// StmtEmit evaluates the expressions in Range at this point.
type StmtEmit struct {
	Range Range
}

// StmtBlock is a nested block.
type StmtBlock struct {
	Block Block
}

// StmtIf branches on a boolean.
type StmtIf struct {
	Condition ExpressionHandle
	Accept    Block
	Reject    Block
}

// StmtSwitch branches on an integer selector. Exactly one case is Default.
type StmtSwitch struct {
	Selector ExpressionHandle
	Cases    []SwitchCase
}

// SwitchCase is one arm of a switch.
type SwitchCase struct {
	Value       SwitchValue
	Body        Block
	FallThrough bool
}

// SwitchValue is a case selector value.
type SwitchValue interface {
	switchValue()
}

type (
	SwitchValueI32     int32
	SwitchValueU32     uint32
	SwitchValueDefault struct{}
)

func (SwitchValueI32) switchValue()     {}
func (SwitchValueU32) switchValue()     {}
func (SwitchValueDefault) switchValue() {}

// StmtLoop repeats Body then Continuing until a break.
type StmtLoop struct {
	Body       Block
	Continuing Block
	BreakIf    *ExpressionHandle
}

// StmtBreak leaves the innermost loop or switch.
type StmtBreak struct{}

// StmtContinue jumps to the continuing block.
type StmtContinue struct{}

// StmtReturn returns from the function.
type StmtReturn struct {
	Value *ExpressionHandle
}

// StmtKill discards the fragment.
type StmtKill struct{}

// StmtBarrier is a control barrier with optional memory semantics.
type StmtBarrier struct {
	Flags BarrierFlags
}

// BarrierFlags selects the memory synchronized by a barrier.
type BarrierFlags uint32

const (
	BarrierStorage BarrierFlags = 1 << iota
	BarrierWorkGroup
	BarrierSubGroup
	BarrierTexture
)

// StmtStore writes through a reference.
type StmtStore struct {
	Pointer ExpressionHandle
	Value   ExpressionHandle
}

// StmtImageStore writes a texel to a storage image.
type StmtImageStore struct {
	Image      ExpressionHandle
	Coordinate ExpressionHandle
	ArrayIndex *ExpressionHandle
	Value      ExpressionHandle
}

// StmtAtomic performs an atomic read-modify-write.
type StmtAtomic struct {
	Pointer ExpressionHandle
	Fun     AtomicFunction
	Value   ExpressionHandle
	Result  *ExpressionHandle
}

// AtomicFunction is the operation of a StmtAtomic.
type AtomicFunction interface {
	atomicFunction()
}

type (
	AtomicAdd         struct{}
	AtomicSubtract    struct{}
	AtomicAnd         struct{}
	AtomicExclusiveOr struct{}
	AtomicInclusiveOr struct{}
	AtomicMin         struct{}
	AtomicMax         struct{}
	// AtomicExchange is a compare-exchange when Compare is set.
	AtomicExchange struct{ Compare *ExpressionHandle }
	// AtomicLoad ignores Value.
	AtomicLoad  struct{}
	AtomicStore struct{}
)

func (AtomicAdd) atomicFunction()         {}
func (AtomicSubtract) atomicFunction()    {}
func (AtomicAnd) atomicFunction()         {}
func (AtomicExclusiveOr) atomicFunction() {}
func (AtomicInclusiveOr) atomicFunction() {}
func (AtomicMin) atomicFunction()         {}
func (AtomicMax) atomicFunction()         {}
func (AtomicExchange) atomicFunction()    {}
func (AtomicLoad) atomicFunction()        {}
func (AtomicStore) atomicFunction()       {}

// StmtCall calls a helper function.
type StmtCall struct {
	Function  FunctionHandle
	Arguments []ExpressionHandle
	Result    *ExpressionHandle
}

func (StmtEmit) statementKind()       {}
func (StmtBlock) statementKind()      {}
func (StmtIf) statementKind()         {}
func (StmtSwitch) statementKind()     {}
func (StmtLoop) statementKind()       {}
func (StmtBreak) statementKind()      {}
func (StmtContinue) statementKind()   {}
func (StmtReturn) statementKind()     {}
func (StmtKill) statementKind()       {}
func (StmtBarrier) statementKind()    {}
func (StmtStore) statementKind()      {}
func (StmtImageStore) statementKind() {}
func (StmtAtomic) statementKind()     {}
func (StmtCall) statementKind()       {}
