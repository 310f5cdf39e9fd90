package pytmp

import (
	"github.com/pytmp/pytmp/pkg/hm"
)

// Module is an ordered sequence of function and class definitions; the
// unit of compilation. The AST is built once per module, then the
// elaborator annotates it in place, after which it is immutable.
type Module struct {
	Filename string
	Source   string
	Decls    []Decl

	elaborated bool
}

// DeclNamed finds a top-level definition by name.
func (m *Module) DeclNamed(name string) (Decl, bool) {
	for _, d := range m.Decls {
		if d.DeclName() == name {
			return d, true
		}
	}
	return nil, false
}

// FunctionNamed finds a top-level function definition by name.
func (m *Module) FunctionNamed(name string) (*FunctionDef, bool) {
	d, ok := m.DeclNamed(name)
	if !ok {
		return nil, false
	}
	fn, ok := d.(*FunctionDef)
	return fn, ok
}

// FunctionDef is a top-level function definition. Immutable once
// elaborated; FnType is filled in by the elaborator.
type FunctionDef struct {
	Name   string
	Params []Param
	RetAnn TypeAnn
	Body   []Stmt
	Loc    *SourceLocation

	FnType *hm.FunctionType
}

func (d *FunctionDef) GetSourceLocation() *SourceLocation { return d.Loc }
func (d *FunctionDef) DeclName() string                   { return d.Name }

// Param is a typed function parameter.
type Param struct {
	Name string
	Ann  TypeAnn
	Loc  *SourceLocation

	Type hm.Type // resolved by the elaborator
}

// ClassDef is a user-defined custom type: an ordered set of typed
// fields, no inheritance, constructed positionally.
type ClassDef struct {
	Name   string
	Fields []FieldDef
	Loc    *SourceLocation

	Type *CustomType // resolved by the elaborator
}

func (d *ClassDef) GetSourceLocation() *SourceLocation { return d.Loc }
func (d *ClassDef) DeclName() string                   { return d.Name }

// FieldDef is a single `name: type` field declaration in a class body.
type FieldDef struct {
	Name string
	Ann  TypeAnn
	Loc  *SourceLocation
}
