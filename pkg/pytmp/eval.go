package pytmp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kr/pretty"

	"github.com/pytmp/pytmp/pkg/hm"
)

// Value represents a compile-time value.
type Value interface {
	Type() hm.Type
	String() string
}

type BoolValue struct {
	Val bool
}

func (v BoolValue) Type() hm.Type { return BoolType }
func (v BoolValue) String() string {
	if v.Val {
		return "True"
	}
	return "False"
}

type IntValue struct {
	Val int64
}

func (v IntValue) Type() hm.Type  { return IntType }
func (v IntValue) String() string { return fmt.Sprintf("%d", v.Val) }

type StringValue struct {
	Val string
}

func (v StringValue) Type() hm.Type  { return StringType }
func (v StringValue) String() string { return fmt.Sprintf("'%s'", v.Val) }

// TypeValue is a C++ type used as a compile-time value.
type TypeValue struct {
	CppName string
}

func (v TypeValue) Type() hm.Type  { return MetaType }
func (v TypeValue) String() string { return fmt.Sprintf("Type('%s')", v.CppName) }

type ListValue struct {
	Elem     hm.Type
	Elements []Value
}

func (v ListValue) Type() hm.Type { return NewListType(v.Elem) }
func (v ListValue) String() string {
	parts := make([]string, len(v.Elements))
	for i, el := range v.Elements {
		parts[i] = el.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// CustomValue is an instance of a user-defined type.
type CustomValue struct {
	Class  *ClassDef
	Fields []Value
}

func (v CustomValue) Type() hm.Type { return v.Class.Type }
func (v CustomValue) String() string {
	parts := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("%s(%s)", v.Class.Name, strings.Join(parts, ", "))
}

// ConstructorValue builds a CustomValue from positional arguments.
type ConstructorValue struct {
	Class *ClassDef
}

func (v ConstructorValue) Type() hm.Type {
	args := make([]hm.Type, len(v.Class.Type.Fields))
	for i, f := range v.Class.Type.Fields {
		args[i] = f.Type
	}
	return hm.NewFnType(v.Class.Type, args...)
}

func (v ConstructorValue) String() string { return fmt.Sprintf("class %s", v.Class.Name) }

// FunctionValue is a top-level function. Functions close over the
// module scope only; there are no nested function definitions.
type FunctionValue struct {
	Def  *FunctionDef
	root *EvalEnv
}

func (v FunctionValue) Type() hm.Type  { return v.Def.FnType }
func (v FunctionValue) String() string { return fmt.Sprintf("def %s", v.Def.Name) }

// Invoke expands the function body by substitution with all arguments
// bound to concrete values, under the recursion guard.
func (v FunctionValue) Invoke(ctx context.Context, args []Value, callLoc *SourceLocation) (Value, error) {
	guard := v.root.Guard()
	if err := guard.Enter(callLoc, v.Def.Name); err != nil {
		return nil, err
	}
	defer guard.Exit()

	scope := v.root.Fork()
	for i, param := range v.Def.Params {
		scope.Set(param.Name, args[i])
	}

	slog.Debug("expanding function", "function", v.Def.Name, "depth", guard.depth)

	result, returned, err := evalStmts(ctx, v.Def.Body, scope)
	if err != nil {
		return nil, err
	}
	if !returned {
		// Unreachable: the elaborator checks return coverage
		return nil, NewError(TypeError, v.Def.Loc, "function %s did not return a value", v.Def.Name)
	}
	return result, nil
}

// SymbolicValue is a deferred expression: its value depends on a generic
// parameter not yet bound, and it is carried unmodified into codegen.
type SymbolicValue struct {
	Node Expr
}

func (v SymbolicValue) Type() hm.Type  { return v.Node.GetInferredType() }
func (v SymbolicValue) String() string { return fmt.Sprintf("<deferred %s>", exprString(v.Node)) }

func isSymbolic(v Value) bool {
	_, ok := v.(SymbolicValue)
	return ok
}

// deferredValue marks a statement sequence whose control flow depends on
// a symbolic condition; the enclosing call defers as a whole.
type deferredValue struct{}

func (deferredValue) Type() hm.Type  { return nil }
func (deferredValue) String() string { return "<deferred>" }

func isDeferred(v Value) bool {
	_, ok := v.(deferredValue)
	return ok
}

// RecursionGuard bounds compile-time expansion. It is the deterministic
// substitute for a wall-clock timeout: once generated code reaches the
// downstream compiler there is no way to bound an unbounded expansion.
type RecursionGuard struct {
	depth int
	limit int
}

func NewRecursionGuard(limit int) *RecursionGuard {
	return &RecursionGuard{limit: limit}
}

func (g *RecursionGuard) Enter(loc *SourceLocation, fnName string) error {
	g.depth++
	if g.depth > g.limit {
		return NewError(RecursionLimitError, loc,
			"call to %s exceeded the recursion depth limit (%d)", fnName, g.limit)
	}
	return nil
}

func (g *RecursionGuard) Exit() {
	g.depth--
}

// EvalEnv is the scoped evaluation environment. The guard is shared by
// every scope in a compilation unit and nothing else is, so independent
// units evaluate in parallel safely.
type EvalEnv struct {
	parent *EvalEnv
	vars   map[string]Value
	guard  *RecursionGuard
}

func NewEvalEnv(guard *RecursionGuard) *EvalEnv {
	return &EvalEnv{
		vars:  make(map[string]Value),
		guard: guard,
	}
}

func (e *EvalEnv) Get(name string) (Value, bool) {
	if v, ok := e.vars[name]; ok {
		return v, true
	}
	if e.parent != nil {
		return e.parent.Get(name)
	}
	return nil, false
}

func (e *EvalEnv) Set(name string, v Value) {
	e.vars[name] = v
}

func (e *EvalEnv) Fork() *EvalEnv {
	return &EvalEnv{
		parent: e,
		vars:   make(map[string]Value),
		guard:  e.guard,
	}
}

func (e *EvalEnv) Guard() *RecursionGuard { return e.guard }

// evalStmts executes a statement sequence. It returns the produced value
// and whether a return statement fired.
func evalStmts(ctx context.Context, stmts []Stmt, env *EvalEnv) (Value, bool, error) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *AssignStmt:
			v, err := s.Value.Eval(ctx, env)
			if err != nil {
				return nil, false, err
			}
			env.Set(s.Name, v)

		case *ReturnStmt:
			v, err := s.Value.Eval(ctx, env)
			if err != nil {
				return nil, false, err
			}
			return v, true, nil

		case *AssertStmt:
			cond, err := s.Cond.Eval(ctx, env)
			if err != nil {
				return nil, false, err
			}
			if isSymbolic(cond) {
				// Deferred to the generated static_assert
				continue
			}
			if !cond.(BoolValue).Val {
				msg := s.Message
				if msg == "" {
					msg = exprString(s.Cond)
				}
				return nil, false, NewError(AssertionError, s.Loc, "assertion failed: %s", msg)
			}

		case *IfStmt:
			cond, err := s.Cond.Eval(ctx, env)
			if err != nil {
				return nil, false, err
			}
			if isSymbolic(cond) {
				// Control flow depends on an unbound parameter; the
				// whole remaining computation is deferred
				return deferredValue{}, true, nil
			}
			if cond.(BoolValue).Val {
				return evalStmts(ctx, s.Then, env.Fork())
			}
			if len(s.Else) > 0 {
				v, returned, err := evalStmts(ctx, s.Else, env.Fork())
				if err != nil || returned {
					return v, returned, err
				}
			}

		default:
			return nil, false, NewError(UnsupportedConstructError, stmt.GetSourceLocation(),
				"statement %T cannot be evaluated", stmt)
		}
	}
	return nil, false, nil
}

// RootEvalEnv builds the module-level evaluation environment: every
// top-level function and class constructor, nothing else.
func (m *Module) RootEvalEnv(maxDepth int) *EvalEnv {
	root := NewEvalEnv(NewRecursionGuard(maxDepth))
	for _, decl := range m.Decls {
		switch d := decl.(type) {
		case *FunctionDef:
			root.Set(d.Name, FunctionValue{Def: d, root: root})
		case *ClassDef:
			root.Set(d.Name, ConstructorValue{Class: d})
		}
	}
	return root
}

// EvalFunction evaluates a top-level function with the given argument
// binding. A nil argument stands for an unbound generic parameter; the
// result is then a symbolic value for codegen to defer.
func (m *Module) EvalFunction(ctx context.Context, name string, args []Value, maxDepth int) (Value, error) {
	if !m.elaborated {
		return nil, fmt.Errorf("module %s has not been elaborated", m.Filename)
	}

	fn, ok := m.FunctionNamed(name)
	if !ok {
		return nil, NewError(NameError, nil, "no function named %q in %s", name, m.Filename)
	}
	if len(args) != len(fn.Params) {
		return nil, NewError(TypeError, fn.Loc, "function %s takes %d arguments, got %d",
			name, len(fn.Params), len(args))
	}

	root := m.RootEvalEnv(maxDepth)
	scope := root.Fork()
	partial := false
	for i, param := range fn.Params {
		if args[i] == nil {
			sym := &Symbol{Name: param.Name, Loc: param.Loc}
			sym.SetInferredType(param.Type)
			scope.Set(param.Name, SymbolicValue{Node: sym})
			partial = true
			continue
		}
		scope.Set(param.Name, args[i])
	}

	slog.Debug("evaluating entry", "function", name, "partial", partial)

	result, returned, err := evalStmts(ctx, fn.Body, scope)
	if err != nil {
		if perr, ok := err.(*Error); ok {
			return nil, perr.WithSource(m.Source)
		}
		return nil, err
	}
	if !returned || result == nil {
		return nil, NewError(TypeError, fn.Loc, "function %s did not return a value", name)
	}

	slog.Debug("evaluation result", "value", pretty.Sprint(result))

	return result, nil
}

// applyBinaryOp folds a binary operator over two concrete values.
// Integer division and modulo use C++ truncating semantics so that
// interpret mode and generated code agree.
func applyBinaryOp(e *BinaryOp, left, right Value) (Value, error) {
	switch e.Op {
	case "and":
		return BoolValue{Val: left.(BoolValue).Val && right.(BoolValue).Val}, nil
	case "or":
		return BoolValue{Val: left.(BoolValue).Val || right.(BoolValue).Val}, nil
	case "==":
		return BoolValue{Val: valuesEqual(left, right)}, nil
	case "!=":
		return BoolValue{Val: !valuesEqual(left, right)}, nil
	}

	if l, ok := left.(ListValue); ok && e.Op == "+" {
		r := right.(ListValue)
		elems := make([]Value, 0, len(l.Elements)+len(r.Elements))
		elems = append(elems, l.Elements...)
		elems = append(elems, r.Elements...)
		return ListValue{Elem: l.Elem, Elements: elems}, nil
	}

	l := left.(IntValue).Val
	r := right.(IntValue).Val
	switch e.Op {
	case "+":
		return IntValue{Val: l + r}, nil
	case "-":
		return IntValue{Val: l - r}, nil
	case "*":
		return IntValue{Val: l * r}, nil
	case "//":
		if r == 0 {
			return nil, NewError(AssertionError, e.Loc, "integer division by zero")
		}
		return IntValue{Val: l / r}, nil
	case "%":
		if r == 0 {
			return nil, NewError(AssertionError, e.Loc, "integer modulo by zero")
		}
		return IntValue{Val: l % r}, nil
	case "<":
		return BoolValue{Val: l < r}, nil
	case "<=":
		return BoolValue{Val: l <= r}, nil
	case ">":
		return BoolValue{Val: l > r}, nil
	case ">=":
		return BoolValue{Val: l >= r}, nil
	default:
		return nil, NewError(UnsupportedConstructError, e.Loc, "unsupported operator %q", e.Op)
	}
}

// valuesEqual compares two concrete values structurally.
func valuesEqual(left, right Value) bool {
	switch l := left.(type) {
	case BoolValue:
		r, ok := right.(BoolValue)
		return ok && l.Val == r.Val
	case IntValue:
		r, ok := right.(IntValue)
		return ok && l.Val == r.Val
	case StringValue:
		r, ok := right.(StringValue)
		return ok && l.Val == r.Val
	case TypeValue:
		r, ok := right.(TypeValue)
		return ok && l.CppName == r.CppName
	case ListValue:
		r, ok := right.(ListValue)
		if !ok || len(l.Elements) != len(r.Elements) {
			return false
		}
		for i := range l.Elements {
			if !valuesEqual(l.Elements[i], r.Elements[i]) {
				return false
			}
		}
		return true
	case CustomValue:
		r, ok := right.(CustomValue)
		if !ok || l.Class.Name != r.Class.Name || len(l.Fields) != len(r.Fields) {
			return false
		}
		for i := range l.Fields {
			if !valuesEqual(l.Fields[i], r.Fields[i]) {
				return false
			}
		}
		return true
	}
	return false
}
