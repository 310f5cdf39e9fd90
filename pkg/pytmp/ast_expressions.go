package pytmp

import (
	"context"
	"fmt"
	"strings"

	"github.com/pytmp/pytmp/pkg/hm"
)

// annotate stores the inferred type on the node and returns it.
func annotate(e Expr, t hm.Type) hm.Type {
	e.SetInferredType(t)
	return t
}

// IntLit is a 64-bit signed integer literal.
type IntLit struct {
	InferredTypeHolder
	Value int64
	Loc   *SourceLocation
}

func (e *IntLit) GetSourceLocation() *SourceLocation { return e.Loc }
func (e *IntLit) Body() hm.Expression                { return nil }

func (e *IntLit) Infer(ctx context.Context, env *Env, fresh hm.Fresher) (hm.Type, error) {
	return annotate(e, IntType), nil
}

func (e *IntLit) Eval(ctx context.Context, env *EvalEnv) (Value, error) {
	return IntValue{Val: e.Value}, nil
}

// BoolLit is True or False.
type BoolLit struct {
	InferredTypeHolder
	Value bool
	Loc   *SourceLocation
}

func (e *BoolLit) GetSourceLocation() *SourceLocation { return e.Loc }
func (e *BoolLit) Body() hm.Expression                { return nil }

func (e *BoolLit) Infer(ctx context.Context, env *Env, fresh hm.Fresher) (hm.Type, error) {
	return annotate(e, BoolType), nil
}

func (e *BoolLit) Eval(ctx context.Context, env *EvalEnv) (Value, error) {
	return BoolValue{Val: e.Value}, nil
}

// StringLit is a single-quoted string literal, restricted to printable
// ASCII so it stays representable as a character pack downstream.
type StringLit struct {
	InferredTypeHolder
	Value string
	Loc   *SourceLocation
}

func (e *StringLit) GetSourceLocation() *SourceLocation { return e.Loc }
func (e *StringLit) Body() hm.Expression                { return nil }

func (e *StringLit) Infer(ctx context.Context, env *Env, fresh hm.Fresher) (hm.Type, error) {
	return annotate(e, StringType), nil
}

func (e *StringLit) Eval(ctx context.Context, env *EvalEnv) (Value, error) {
	return StringValue{Val: e.Value}, nil
}

// TypeLit is the Type('name') intrinsic: a C++ type used as a value.
type TypeLit struct {
	InferredTypeHolder
	CppName string
	Loc     *SourceLocation
}

func (e *TypeLit) GetSourceLocation() *SourceLocation { return e.Loc }
func (e *TypeLit) Body() hm.Expression                { return nil }

func (e *TypeLit) Infer(ctx context.Context, env *Env, fresh hm.Fresher) (hm.Type, error) {
	return annotate(e, MetaType), nil
}

func (e *TypeLit) Eval(ctx context.Context, env *EvalEnv) (Value, error) {
	return TypeValue{CppName: e.CppName}, nil
}

// EmptyListLit is the empty_list('elem') intrinsic. A bare [] carries no
// element type, so the empty list names its element type explicitly.
type EmptyListLit struct {
	InferredTypeHolder
	ElemAnn TypeAnn
	Loc     *SourceLocation
}

func (e *EmptyListLit) GetSourceLocation() *SourceLocation { return e.Loc }
func (e *EmptyListLit) Body() hm.Expression                { return nil }

func (e *EmptyListLit) Infer(ctx context.Context, env *Env, fresh hm.Fresher) (hm.Type, error) {
	elem, err := e.ElemAnn.Resolve(env)
	if err != nil {
		return nil, err
	}
	return annotate(e, NewListType(elem)), nil
}

func (e *EmptyListLit) Eval(ctx context.Context, env *EvalEnv) (Value, error) {
	return ListValue{Elem: e.GetInferredType().(*ListType).Elem}, nil
}

// Symbol is a variable reference.
type Symbol struct {
	InferredTypeHolder
	Name string
	Loc  *SourceLocation
}

func (e *Symbol) GetSourceLocation() *SourceLocation { return e.Loc }
func (e *Symbol) Body() hm.Expression                { return nil }

func (e *Symbol) Infer(ctx context.Context, env *Env, fresh hm.Fresher) (hm.Type, error) {
	scheme, ok := env.SchemeOf(e.Name)
	if !ok {
		return nil, NewError(NameError, e.Loc, "undefined name %q", e.Name)
	}
	return annotate(e, hm.Instantiate(fresh, scheme)), nil
}

func (e *Symbol) Eval(ctx context.Context, env *EvalEnv) (Value, error) {
	val, ok := env.Get(e.Name)
	if !ok {
		// Unreachable after elaboration
		return nil, NewError(NameError, e.Loc, "undefined name %q", e.Name)
	}
	return val, nil
}

// Call is a function application or a custom type construction.
type Call struct {
	InferredTypeHolder
	Fun  Expr
	Args []Expr
	Loc  *SourceLocation
}

func (e *Call) GetSourceLocation() *SourceLocation { return e.Loc }
func (e *Call) Body() hm.Expression                { return nil }

func (e *Call) Infer(ctx context.Context, env *Env, fresh hm.Fresher) (hm.Type, error) {
	funType, err := e.Fun.Infer(ctx, env, fresh)
	if err != nil {
		return nil, err
	}

	ft, ok := funType.(*hm.FunctionType)
	if !ok {
		return nil, NewError(TypeError, e.Loc, "cannot call a value of type %s", typeName(funType))
	}

	if len(e.Args) != len(ft.Args()) {
		return nil, NewError(TypeError, e.Loc, "wrong number of arguments: expected %d, got %d",
			len(ft.Args()), len(e.Args))
	}

	for i, arg := range e.Args {
		argType, err := arg.Infer(ctx, env, fresh)
		if err != nil {
			return nil, err
		}
		if _, err := hm.Unify(ft.Args()[i], argType); err != nil {
			return nil, NewError(TypeError, arg.GetSourceLocation(),
				"argument %d: expected %s, got %s", i+1, typeName(ft.Args()[i]), typeName(argType))
		}
	}

	return annotate(e, ft.Ret()), nil
}

func (e *Call) Eval(ctx context.Context, env *EvalEnv) (Value, error) {
	fun, err := e.Fun.Eval(ctx, env)
	if err != nil {
		return nil, err
	}
	if isSymbolic(fun) {
		return SymbolicValue{Node: e}, nil
	}

	args := make([]Value, len(e.Args))
	symbolic := false
	for i, argExpr := range e.Args {
		arg, err := argExpr.Eval(ctx, env)
		if err != nil {
			return nil, err
		}
		if isSymbolic(arg) {
			symbolic = true
		}
		args[i] = arg
	}
	if symbolic {
		return SymbolicValue{Node: e}, nil
	}

	switch fn := fun.(type) {
	case ConstructorValue:
		return CustomValue{Class: fn.Class, Fields: args}, nil
	case FunctionValue:
		result, err := fn.Invoke(ctx, args, e.Loc)
		if err != nil {
			return nil, err
		}
		if isDeferred(result) {
			return SymbolicValue{Node: e}, nil
		}
		return result, nil
	default:
		return nil, NewError(TypeError, e.Loc, "cannot call a value of type %s", typeName(fun.Type()))
	}
}

// BinaryOp applies one of the fixed binary operators.
type BinaryOp struct {
	InferredTypeHolder
	Op    string
	Left  Expr
	Right Expr
	Loc   *SourceLocation
}

func (e *BinaryOp) GetSourceLocation() *SourceLocation { return e.Loc }
func (e *BinaryOp) Body() hm.Expression                { return nil }

func (e *BinaryOp) Infer(ctx context.Context, env *Env, fresh hm.Fresher) (hm.Type, error) {
	left, err := e.Left.Infer(ctx, env, fresh)
	if err != nil {
		return nil, err
	}
	right, err := e.Right.Infer(ctx, env, fresh)
	if err != nil {
		return nil, err
	}

	expect := func(operand Expr, got, want hm.Type) error {
		if _, err := hm.Unify(want, got); err != nil {
			return NewError(TypeError, operand.GetSourceLocation(),
				"operator %s: expected %s, got %s", e.Op, typeName(want), typeName(got))
		}
		return nil
	}

	switch e.Op {
	case "+":
		// Addition on ints, concatenation on lists
		if _, isList := left.(*ListType); isList {
			if err := expect(e.Right, right, left); err != nil {
				return nil, err
			}
			return annotate(e, left), nil
		}
		if err := expect(e.Left, left, IntType); err != nil {
			return nil, err
		}
		if err := expect(e.Right, right, IntType); err != nil {
			return nil, err
		}
		return annotate(e, IntType), nil
	case "-", "*", "//", "%":
		if err := expect(e.Left, left, IntType); err != nil {
			return nil, err
		}
		if err := expect(e.Right, right, IntType); err != nil {
			return nil, err
		}
		return annotate(e, IntType), nil
	case "<", "<=", ">", ">=":
		if err := expect(e.Left, left, IntType); err != nil {
			return nil, err
		}
		if err := expect(e.Right, right, IntType); err != nil {
			return nil, err
		}
		return annotate(e, BoolType), nil
	case "==", "!=":
		if _, err := hm.Unify(left, right); err != nil {
			return nil, NewError(TypeError, e.Loc,
				"cannot compare %s with %s", typeName(left), typeName(right))
		}
		if !comparableType(left) {
			return nil, NewError(TypeError, e.Loc,
				"values of type %s cannot be compared", typeName(left))
		}
		return annotate(e, BoolType), nil
	case "and", "or":
		if err := expect(e.Left, left, BoolType); err != nil {
			return nil, err
		}
		if err := expect(e.Right, right, BoolType); err != nil {
			return nil, err
		}
		return annotate(e, BoolType), nil
	default:
		return nil, NewError(UnsupportedConstructError, e.Loc, "unsupported operator %q", e.Op)
	}
}

func (e *BinaryOp) Eval(ctx context.Context, env *EvalEnv) (Value, error) {
	left, err := e.Left.Eval(ctx, env)
	if err != nil {
		return nil, err
	}

	// Short-circuit evaluation keeps bounded recursion bounded
	if lb, ok := left.(BoolValue); ok {
		if e.Op == "and" && !lb.Val {
			return BoolValue{Val: false}, nil
		}
		if e.Op == "or" && lb.Val {
			return BoolValue{Val: true}, nil
		}
	}

	right, err := e.Right.Eval(ctx, env)
	if err != nil {
		return nil, err
	}

	if isSymbolic(left) || isSymbolic(right) {
		return SymbolicValue{Node: e}, nil
	}

	return applyBinaryOp(e, left, right)
}

// UnaryOp is `not x` or `-x`.
type UnaryOp struct {
	InferredTypeHolder
	Op  string
	X   Expr
	Loc *SourceLocation
}

func (e *UnaryOp) GetSourceLocation() *SourceLocation { return e.Loc }
func (e *UnaryOp) Body() hm.Expression                { return nil }

func (e *UnaryOp) Infer(ctx context.Context, env *Env, fresh hm.Fresher) (hm.Type, error) {
	xt, err := e.X.Infer(ctx, env, fresh)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case "not":
		if _, err := hm.Unify(BoolType, xt); err != nil {
			return nil, NewError(TypeError, e.X.GetSourceLocation(),
				"operator not: expected bool, got %s", typeName(xt))
		}
		return annotate(e, BoolType), nil
	case "-":
		if _, err := hm.Unify(IntType, xt); err != nil {
			return nil, NewError(TypeError, e.X.GetSourceLocation(),
				"unary minus: expected int, got %s", typeName(xt))
		}
		return annotate(e, IntType), nil
	default:
		return nil, NewError(UnsupportedConstructError, e.Loc, "unsupported unary operator %q", e.Op)
	}
}

func (e *UnaryOp) Eval(ctx context.Context, env *EvalEnv) (Value, error) {
	x, err := e.X.Eval(ctx, env)
	if err != nil {
		return nil, err
	}
	if isSymbolic(x) {
		return SymbolicValue{Node: e}, nil
	}
	switch e.Op {
	case "not":
		return BoolValue{Val: !x.(BoolValue).Val}, nil
	default:
		return IntValue{Val: -x.(IntValue).Val}, nil
	}
}

// Conditional is `then if cond else els`. Both branches must share one
// type; only the selected branch is evaluated.
type Conditional struct {
	InferredTypeHolder
	Cond Expr
	Then Expr
	Else Expr
	Loc  *SourceLocation
}

func (e *Conditional) GetSourceLocation() *SourceLocation { return e.Loc }
func (e *Conditional) Body() hm.Expression                { return nil }

func (e *Conditional) Infer(ctx context.Context, env *Env, fresh hm.Fresher) (hm.Type, error) {
	condType, err := e.Cond.Infer(ctx, env, fresh)
	if err != nil {
		return nil, err
	}
	if _, err := hm.Unify(BoolType, condType); err != nil {
		return nil, NewError(TypeError, e.Cond.GetSourceLocation(),
			"condition must be bool, got %s", typeName(condType))
	}

	thenType, err := e.Then.Infer(ctx, env, fresh)
	if err != nil {
		return nil, err
	}
	elseType, err := e.Else.Infer(ctx, env, fresh)
	if err != nil {
		return nil, err
	}
	if _, err := hm.Unify(thenType, elseType); err != nil {
		return nil, NewError(TypeError, e.Loc,
			"conditional branches must share a type: %s vs %s", typeName(thenType), typeName(elseType))
	}

	return annotate(e, thenType), nil
}

func (e *Conditional) Eval(ctx context.Context, env *EvalEnv) (Value, error) {
	cond, err := e.Cond.Eval(ctx, env)
	if err != nil {
		return nil, err
	}
	if isSymbolic(cond) {
		return SymbolicValue{Node: e}, nil
	}
	if cond.(BoolValue).Val {
		return e.Then.Eval(ctx, env)
	}
	return e.Else.Eval(ctx, env)
}

// ListLit is a non-empty list display.
type ListLit struct {
	InferredTypeHolder
	Elems []Expr
	Loc   *SourceLocation
}

func (e *ListLit) GetSourceLocation() *SourceLocation { return e.Loc }
func (e *ListLit) Body() hm.Expression                { return nil }

func (e *ListLit) Infer(ctx context.Context, env *Env, fresh hm.Fresher) (hm.Type, error) {
	if len(e.Elems) == 0 {
		return nil, NewError(TypeError, e.Loc,
			"cannot infer the element type of an empty list; use empty_list(type)")
	}

	elemType, err := e.Elems[0].Infer(ctx, env, fresh)
	if err != nil {
		return nil, err
	}
	for _, elem := range e.Elems[1:] {
		t, err := elem.Infer(ctx, env, fresh)
		if err != nil {
			return nil, err
		}
		if _, err := hm.Unify(elemType, t); err != nil {
			return nil, NewError(TypeError, elem.GetSourceLocation(),
				"list elements must share a type: expected %s, got %s", typeName(elemType), typeName(t))
		}
	}

	return annotate(e, NewListType(elemType)), nil
}

func (e *ListLit) Eval(ctx context.Context, env *EvalEnv) (Value, error) {
	elems := make([]Value, len(e.Elems))
	for i, elemExpr := range e.Elems {
		v, err := elemExpr.Eval(ctx, env)
		if err != nil {
			return nil, err
		}
		if isSymbolic(v) {
			return SymbolicValue{Node: e}, nil
		}
		elems[i] = v
	}
	return ListValue{Elem: e.GetInferredType().(*ListType).Elem, Elements: elems}, nil
}

// Comprehension is `[elem for var in source]`, the only loop construct:
// it lowers to structural recursion over a type sequence.
type Comprehension struct {
	InferredTypeHolder
	Elem   Expr
	Var    string
	VarLoc *SourceLocation
	Source Expr
	Loc    *SourceLocation
}

func (e *Comprehension) GetSourceLocation() *SourceLocation { return e.Loc }
func (e *Comprehension) Body() hm.Expression                { return nil }

func (e *Comprehension) Infer(ctx context.Context, env *Env, fresh hm.Fresher) (hm.Type, error) {
	sourceType, err := e.Source.Infer(ctx, env, fresh)
	if err != nil {
		return nil, err
	}
	listType, ok := sourceType.(*ListType)
	if !ok {
		return nil, NewError(TypeError, e.Source.GetSourceLocation(),
			"comprehension source must be a list, got %s", typeName(sourceType))
	}

	inner := env.Fork()
	inner.Add(e.Var, hm.NewScheme(nil, listType.Elem))

	elemType, err := e.Elem.Infer(ctx, inner, fresh)
	if err != nil {
		return nil, err
	}

	return annotate(e, NewListType(elemType)), nil
}

func (e *Comprehension) Eval(ctx context.Context, env *EvalEnv) (Value, error) {
	source, err := e.Source.Eval(ctx, env)
	if err != nil {
		return nil, err
	}
	if isSymbolic(source) {
		return SymbolicValue{Node: e}, nil
	}

	list := source.(ListValue)
	elems := make([]Value, 0, len(list.Elements))
	for _, item := range list.Elements {
		inner := env.Fork()
		inner.Set(e.Var, item)
		v, err := e.Elem.Eval(ctx, inner)
		if err != nil {
			return nil, err
		}
		if isSymbolic(v) {
			return SymbolicValue{Node: e}, nil
		}
		elems = append(elems, v)
	}
	return ListValue{Elem: e.GetInferredType().(*ListType).Elem, Elements: elems}, nil
}

// Attribute is field access on a custom type instance.
type Attribute struct {
	InferredTypeHolder
	Receiver Expr
	Field    string
	Loc      *SourceLocation
}

func (e *Attribute) GetSourceLocation() *SourceLocation { return e.Loc }
func (e *Attribute) Body() hm.Expression                { return nil }

func (e *Attribute) Infer(ctx context.Context, env *Env, fresh hm.Fresher) (hm.Type, error) {
	recvType, err := e.Receiver.Infer(ctx, env, fresh)
	if err != nil {
		return nil, err
	}
	custom, ok := recvType.(*CustomType)
	if !ok {
		return nil, NewError(TypeError, e.Loc,
			"cannot access field %q on a value of type %s", e.Field, typeName(recvType))
	}
	field, ok := custom.FieldNamed(e.Field)
	if !ok {
		return nil, NewError(NameError, e.Loc,
			"type %s has no field %q", custom.TypeName, e.Field)
	}
	return annotate(e, field.Type), nil
}

func (e *Attribute) Eval(ctx context.Context, env *EvalEnv) (Value, error) {
	recv, err := e.Receiver.Eval(ctx, env)
	if err != nil {
		return nil, err
	}
	if isSymbolic(recv) {
		return SymbolicValue{Node: e}, nil
	}
	custom := recv.(CustomValue)
	for i, f := range custom.Class.Type.Fields {
		if f.Name == e.Field {
			return custom.Fields[i], nil
		}
	}
	return nil, NewError(NameError, e.Loc, "type %s has no field %q", custom.Class.Name, e.Field)
}

// exprString renders an expression for diagnostics.
func exprString(e Expr) string {
	switch n := e.(type) {
	case *Symbol:
		return n.Name
	case *IntLit:
		return fmt.Sprintf("%d", n.Value)
	case *BoolLit:
		if n.Value {
			return "True"
		}
		return "False"
	case *StringLit:
		return fmt.Sprintf("'%s'", n.Value)
	case *TypeLit:
		return fmt.Sprintf("Type('%s')", n.CppName)
	case *Call:
		return fmt.Sprintf("%s(...)", exprString(n.Fun))
	case *BinaryOp:
		return fmt.Sprintf("%s %s %s", exprString(n.Left), n.Op, exprString(n.Right))
	case *UnaryOp:
		return fmt.Sprintf("%s %s", n.Op, exprString(n.X))
	case *Attribute:
		return fmt.Sprintf("%s.%s", exprString(n.Receiver), n.Field)
	case *Conditional:
		return fmt.Sprintf("%s if %s else %s", exprString(n.Then), exprString(n.Cond), exprString(n.Else))
	case *ListLit:
		parts := make([]string, len(n.Elems))
		for i, el := range n.Elems {
			parts[i] = exprString(el)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *Comprehension:
		return fmt.Sprintf("[%s for %s in %s]", exprString(n.Elem), n.Var, exprString(n.Source))
	default:
		return fmt.Sprintf("%T", e)
	}
}
