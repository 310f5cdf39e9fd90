package hm

import (
	"fmt"
	"strings"
)

// Type represents all possible type constructors
type Type interface {
	Substitutable
	Name() string
	Types() Types
	Eq(Type) bool
	fmt.Stringer
}

// Substitutable is any type that can have substitutions applied and knows its free type variables
type Substitutable interface {
	Apply(Subs) Substitutable
	FreeTypeVar() TypeVarSet
}

// TypeVariable represents a type variable
type TypeVariable rune

func (tv TypeVariable) Name() string {
	return string(tv)
}

func (tv TypeVariable) Apply(subs Subs) Substitutable {
	if t, exists := subs[tv]; exists {
		return t
	}
	return tv
}

func (tv TypeVariable) FreeTypeVar() TypeVarSet {
	return NewTypeVarSet(tv)
}

func (tv TypeVariable) Types() Types {
	return nil
}

func (tv TypeVariable) Eq(other Type) bool {
	if ot, ok := other.(TypeVariable); ok {
		return tv == ot
	}
	return false
}

func (tv TypeVariable) String() string {
	return string(tv)
}

// TypeConst represents a nullary type constant, e.g. Int or Bool
type TypeConst string

func (tc TypeConst) Name() string             { return string(tc) }
func (tc TypeConst) Apply(Subs) Substitutable { return tc }
func (tc TypeConst) FreeTypeVar() TypeVarSet  { return nil }
func (tc TypeConst) Types() Types             { return nil }
func (tc TypeConst) String() string           { return string(tc) }

func (tc TypeConst) Eq(other Type) bool {
	if ot, ok := other.(TypeConst); ok {
		return tc == ot
	}
	return false
}

// FunctionType represents a function type with positional arguments
type FunctionType struct {
	args []Type
	ret  Type
}

func NewFnType(ret Type, args ...Type) *FunctionType {
	return &FunctionType{args: args, ret: ret}
}

func (ft *FunctionType) Name() string {
	return ft.String()
}

func (ft *FunctionType) Apply(subs Subs) Substitutable {
	args := make([]Type, len(ft.args))
	for i, arg := range ft.args {
		args[i] = arg.Apply(subs).(Type)
	}
	return &FunctionType{
		args: args,
		ret:  ft.ret.Apply(subs).(Type),
	}
}

func (ft *FunctionType) FreeTypeVar() TypeVarSet {
	result := ft.ret.FreeTypeVar()
	for _, arg := range ft.args {
		result = result.Union(arg.FreeTypeVar())
	}
	return result
}

func (ft *FunctionType) Types() Types {
	ts := make(Types, 0, len(ft.args)+1)
	ts = append(ts, ft.args...)
	return append(ts, ft.ret)
}

func (ft *FunctionType) Eq(other Type) bool {
	ot, ok := other.(*FunctionType)
	if !ok || len(ft.args) != len(ot.args) {
		return false
	}
	for i, arg := range ft.args {
		if !arg.Eq(ot.args[i]) {
			return false
		}
	}
	return ft.ret.Eq(ot.ret)
}

func (ft *FunctionType) String() string {
	names := make([]string, len(ft.args))
	for i, arg := range ft.args {
		names[i] = arg.Name()
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(names, ", "), ft.ret.Name())
}

// Args returns the argument types
func (ft *FunctionType) Args() []Type {
	return ft.args
}

// Ret returns the return type
func (ft *FunctionType) Ret() Type {
	return ft.ret
}

// Types represents a slice of types
type Types []Type
