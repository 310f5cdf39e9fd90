package pytmp

import (
	"fmt"
	"strings"

	"github.com/pytmp/pytmp/pkg/hm"
)

// The closed type set of the source language. MetaType is the type of a
// C++ type used as a value, e.g. Type('int').
const (
	BoolType   = hm.TypeConst("Bool")
	IntType    = hm.TypeConst("Int")
	StringType = hm.TypeConst("String")
	MetaType   = hm.TypeConst("Type")
)

// ListType represents List[T]
type ListType struct {
	Elem hm.Type
}

func NewListType(elem hm.Type) *ListType {
	return &ListType{Elem: elem}
}

func (t *ListType) Name() string        { return t.String() }
func (t *ListType) Constructor() string { return "List" }
func (t *ListType) Types() hm.Types     { return hm.Types{t.Elem} }

func (t *ListType) Apply(subs hm.Subs) hm.Substitutable {
	return &ListType{Elem: t.Elem.Apply(subs).(hm.Type)}
}

func (t *ListType) FreeTypeVar() hm.TypeVarSet {
	return t.Elem.FreeTypeVar()
}

func (t *ListType) Eq(other hm.Type) bool {
	if ot, ok := other.(*ListType); ok {
		return t.Elem.Eq(ot.Elem)
	}
	return false
}

func (t *ListType) String() string {
	return fmt.Sprintf("List[%s]", t.Elem.Name())
}

var _ hm.Composite = (*ListType)(nil)

// CustomType is a user-defined type introduced by a class definition.
// Custom types are nominal: two custom types unify only when they are
// the same class.
type CustomType struct {
	TypeName string
	Fields   []FieldType
}

type FieldType struct {
	Name string
	Type hm.Type
}

func (t *CustomType) Name() string        { return t.TypeName }
func (t *CustomType) Constructor() string { return "class " + t.TypeName }
func (t *CustomType) Types() hm.Types     { return nil }

func (t *CustomType) Apply(hm.Subs) hm.Substitutable { return t }
func (t *CustomType) FreeTypeVar() hm.TypeVarSet     { return nil }

func (t *CustomType) Eq(other hm.Type) bool {
	if ot, ok := other.(*CustomType); ok {
		return t.TypeName == ot.TypeName
	}
	return false
}

func (t *CustomType) String() string { return t.TypeName }

func (t *CustomType) FieldNamed(name string) (FieldType, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldType{}, false
}

var _ hm.Composite = (*CustomType)(nil)

// TypeAnn is a syntactic type annotation, resolved to an hm.Type during
// elaboration.
type TypeAnn interface {
	Node
	Resolve(env *Env) (hm.Type, error)
}

// NamedAnn is a bare annotation: bool, int, str, Type, or a class name.
type NamedAnn struct {
	Ident string
	Loc   *SourceLocation
}

func (a *NamedAnn) GetSourceLocation() *SourceLocation { return a.Loc }

func (a *NamedAnn) Resolve(env *Env) (hm.Type, error) {
	switch a.Ident {
	case "bool":
		return BoolType, nil
	case "int":
		return IntType, nil
	case "str":
		return StringType, nil
	case "Type":
		return MetaType, nil
	}
	if class, ok := env.Class(a.Ident); ok {
		return class, nil
	}
	return nil, NewError(NameError, a.Loc, "undefined type %q", a.Ident)
}

// ListAnn is List[T]
type ListAnn struct {
	Elem TypeAnn
	Loc  *SourceLocation
}

func (a *ListAnn) GetSourceLocation() *SourceLocation { return a.Loc }

func (a *ListAnn) Resolve(env *Env) (hm.Type, error) {
	elem, err := a.Elem.Resolve(env)
	if err != nil {
		return nil, err
	}
	return NewListType(elem), nil
}

// CallableAnn is Callable[[T...], R]
type CallableAnn struct {
	Args []TypeAnn
	Ret  TypeAnn
	Loc  *SourceLocation
}

func (a *CallableAnn) GetSourceLocation() *SourceLocation { return a.Loc }

func (a *CallableAnn) Resolve(env *Env) (hm.Type, error) {
	args := make([]hm.Type, len(a.Args))
	for i, ann := range a.Args {
		t, err := ann.Resolve(env)
		if err != nil {
			return nil, err
		}
		args[i] = t
	}
	ret, err := a.Ret.Resolve(env)
	if err != nil {
		return nil, err
	}
	return hm.NewFnType(ret, args...), nil
}

// comparableType reports whether values of t support structural
// equality. Callables have no meaningful equality in the interpreter or
// in generated code, so comparing them (directly or through a field) is
// rejected at elaboration.
func comparableType(t hm.Type) bool {
	switch tt := t.(type) {
	case *hm.FunctionType:
		return false
	case *ListType:
		return comparableType(tt.Elem)
	case *CustomType:
		for _, f := range tt.Fields {
			if !comparableType(f.Type) {
				return false
			}
		}
	}
	return true
}

// typeName renders a type for diagnostics, favoring source-level names.
func typeName(t hm.Type) string {
	switch tt := t.(type) {
	case hm.TypeConst:
		switch tt {
		case BoolType:
			return "bool"
		case IntType:
			return "int"
		case StringType:
			return "str"
		case MetaType:
			return "Type"
		}
	case *ListType:
		return fmt.Sprintf("List[%s]", typeName(tt.Elem))
	case *hm.FunctionType:
		args := make([]string, len(tt.Args()))
		for i, a := range tt.Args() {
			args[i] = typeName(a)
		}
		return fmt.Sprintf("Callable[[%s], %s]", strings.Join(args, ", "), typeName(tt.Ret()))
	}
	return t.Name()
}
