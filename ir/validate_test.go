package ir

import (
	"strings"
	"testing"
)

// vertexModule returns a valid module with a vertex entry point that
// returns a constant position.
func vertexModule() *Module {
	return &Module{
		Types: []Type{
			{Name: "f32", Inner: F32},
			{Inner: VectorType{Size: Vec4, Scalar: F32}},
		},
		EntryPoints: []EntryPoint{{
			Name:  "main",
			Stage: StageVertex,
			Function: Function{
				Result: &FunctionResult{Type: 1, Binding: BuiltinBinding{Builtin: BuiltinPosition}},
				Expressions: []Expression{
					{Kind: ExprZeroValue{Type: 1}},
				},
				Body: Block{
					{Kind: StmtEmit{Range: Range{Start: 0, End: 1}}},
					{Kind: StmtReturn{Value: exprPtr(0)}},
				},
			},
		}},
	}
}

func exprPtr(h ExpressionHandle) *ExpressionHandle { return &h }

func TestValidate_ValidModule(t *testing.T) {
	errs, err := Validate(vertexModule())
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	for _, e := range errs {
		t.Errorf("unexpected validation error: %s", e.Error())
	}
}

func TestValidate_NilModule(t *testing.T) {
	if _, err := Validate(nil); err != ErrNilModule {
		t.Errorf("Validate(nil) error = %v, want ErrNilModule", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *Module)
		want   string
	}{
		{
			name: "vertex without position",
			mutate: func(m *Module) {
				m.EntryPoints[0].Function.Result.Binding = LocationBinding{Location: 0}
			},
			want: "must return @builtin(position)",
		},
		{
			name: "vertex without result",
			mutate: func(m *Module) {
				m.EntryPoints[0].Function.Result = nil
				m.EntryPoints[0].Function.Body = Block{{Kind: StmtReturn{}}}
			},
			want: "must have a return value",
		},
		{
			name: "compute zero workgroup",
			mutate: func(m *Module) {
				m.EntryPoints = append(m.EntryPoints, EntryPoint{
					Name: "cs", Stage: StageCompute, Workgroup: [3]uint32{8, 0, 1},
				})
			},
			want: "workgroup size must be non-zero",
		},
		{
			name: "mesh zero workgroup",
			mutate: func(m *Module) {
				m.EntryPoints = append(m.EntryPoints, EntryPoint{Name: "ms", Stage: StageMesh})
			},
			want: `entry point "ms" (@mesh): workgroup size must be non-zero`,
		},
		{
			name: "constant cycle",
			mutate: func(m *Module) {
				m.Constants = []Constant{
					{Name: "a", Type: 1, Value: CompositeValue{Components: []ConstantHandle{1}}},
					{Name: "b", Type: 1, Value: CompositeValue{Components: []ConstantHandle{0}}},
				}
			},
			want: "constant 0 (a): composite contains itself",
		},
		{
			name: "dangling constant component",
			mutate: func(m *Module) {
				m.Constants = []Constant{{Name: "a", Type: 1, Value: CompositeValue{Components: []ConstantHandle{4}}}}
			},
			want: "component 4 does not exist",
		},
		{
			name: "duplicate entry point",
			mutate: func(m *Module) {
				m.EntryPoints = append(m.EntryPoints, m.EntryPoints[0])
			},
			want: `duplicate entry point name "main"`,
		},
		{
			name: "duplicate binding",
			mutate: func(m *Module) {
				rb := &ResourceBinding{Group: 0, Binding: 1}
				m.GlobalVariables = []GlobalVariable{
					{Name: "a", Space: SpaceUniform, Type: 1, Binding: rb},
					{Name: "b", Space: SpaceUniform, Type: 1, Binding: rb},
				}
			},
			want: `already used by "a"`,
		},
		{
			name: "dangling type",
			mutate: func(m *Module) {
				m.Types = append(m.Types, Type{Inner: ArrayType{Base: 9, Size: FixedSize(2)}})
			},
			want: "array type 9 does not exist",
		},
		{
			name: "forward type reference",
			mutate: func(m *Module) {
				m.Types[0] = Type{Inner: ArrayType{Base: 1, Size: FixedSize(2)}}
			},
			want: "not declared before its use",
		},
		{
			name: "bad vector size",
			mutate: func(m *Module) {
				m.Types = append(m.Types, Type{Inner: VectorType{Size: 5, Scalar: F32}})
			},
			want: "vector size must be 2, 3, or 4",
		},
		{
			name: "emit out of range",
			mutate: func(m *Module) {
				m.EntryPoints[0].Function.Body[0] = Statement{Kind: StmtEmit{Range: Range{Start: 0, End: 4}}}
			},
			want: "emit range 0..4 out of range",
		},
		{
			name: "break outside loop",
			mutate: func(m *Module) {
				fn := &m.EntryPoints[0].Function
				fn.Body = append(Block{{Kind: StmtBreak{}}}, fn.Body...)
			},
			want: "break outside of loop or switch",
		},
		{
			name: "continue in continuing",
			mutate: func(m *Module) {
				fn := &m.EntryPoints[0].Function
				fn.Body = append(Block{{Kind: StmtLoop{Continuing: Block{{Kind: StmtContinue{}}}}}}, fn.Body...)
			},
			want: "continue in continuing block",
		},
		{
			name: "switch without default",
			mutate: func(m *Module) {
				fn := &m.EntryPoints[0].Function
				fn.Expressions = append(fn.Expressions, Expression{Kind: Literal{Value: LiteralI32(1)}})
				fn.Body = append(Block{{Kind: StmtSwitch{
					Selector: 1,
					Cases:    []SwitchCase{{Value: SwitchValueI32(1)}},
				}}}, fn.Body...)
			},
			want: "exactly one default case",
		},
		{
			name: "missing operand",
			mutate: func(m *Module) {
				fn := &m.EntryPoints[0].Function
				fn.Expressions = append(fn.Expressions, Expression{Kind: ExprLoad{Pointer: 7}})
			},
			want: "operand expression 7 does not exist",
		},
		{
			name: "argument index out of range",
			mutate: func(m *Module) {
				fn := &m.EntryPoints[0].Function
				fn.Expressions = append(fn.Expressions, Expression{Kind: ExprFunctionArgument{Index: 0}})
			},
			want: "argument index 0 out of range",
		},
		{
			name: "call arity",
			mutate: func(m *Module) {
				m.Functions = []Function{{Name: "helper", Arguments: []FunctionArgument{{Name: "x", Type: 0}}}}
				fn := &m.EntryPoints[0].Function
				fn.Body = append(Block{{Kind: StmtCall{Function: 0}}}, fn.Body...)
			},
			want: "call passes 0 arguments, function takes 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := vertexModule()
			tt.mutate(m)
			errs, err := Validate(m)
			if err != nil {
				t.Fatalf("Validate returned error: %v", err)
			}
			for _, e := range errs {
				if strings.Contains(e.Error(), tt.want) {
					return
				}
			}
			t.Errorf("no error containing %q in %v", tt.want, errs)
		})
	}
}

func TestValidate_UnnamedMembersAllowed(t *testing.T) {
	m := vertexModule()
	m.Types = append(m.Types, Type{Inner: StructType{
		Members: []StructMember{{Type: 0}, {Type: 1, Offset: 16}},
		Span:    32,
	}})
	errs, err := Validate(m)
	if err != nil {
		t.Fatal(err)
	}
	if len(errs) != 0 {
		t.Errorf("unnamed members rejected: %v", errs)
	}
}

func TestValidationError_Error(t *testing.T) {
	h := ExpressionHandle(3)
	tests := []struct {
		err  ValidationError
		want string
	}{
		{ValidationError{Message: "bad", Statement: -1}, "bad"},
		{ValidationError{Message: "bad", Function: "f", Statement: -1}, "in function f: bad"},
		{ValidationError{Message: "bad", Function: "f", Expression: &h, Statement: -1}, "in function f, expression 3: bad"},
		{ValidationError{Message: "bad", Function: "f", Statement: 2}, "in function f, statement 2: bad"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
