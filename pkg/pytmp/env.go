package pytmp

import (
	"github.com/pytmp/pytmp/pkg/hm"
)

// Env is the scoped symbol table used during elaboration: a mapping
// from names to type schemes plus the registry of class types. Scopes
// nest per function; bindings are immutable after creation.
type Env struct {
	parent  *Env
	schemes map[string]*hm.Scheme
	classes map[string]*CustomType
}

func NewEnv(parent *Env) *Env {
	return &Env{
		parent:  parent,
		schemes: make(map[string]*hm.Scheme),
		classes: make(map[string]*CustomType),
	}
}

// SchemeOf resolves a name through the scope chain.
func (e *Env) SchemeOf(name string) (*hm.Scheme, bool) {
	if s, ok := e.schemes[name]; ok {
		return s, true
	}
	if e.parent != nil {
		return e.parent.SchemeOf(name)
	}
	return nil, false
}

// LocalSchemeOf resolves a name in this scope only, for the single
// static assignment check.
func (e *Env) LocalSchemeOf(name string) (*hm.Scheme, bool) {
	s, ok := e.schemes[name]
	return s, ok
}

// Add binds a name in this scope.
func (e *Env) Add(name string, scheme *hm.Scheme) {
	e.schemes[name] = scheme
}

// AddClass registers a class type.
func (e *Env) AddClass(t *CustomType) {
	e.classes[t.TypeName] = t
}

// Class resolves a class name through the scope chain.
func (e *Env) Class(name string) (*CustomType, bool) {
	if t, ok := e.classes[name]; ok {
		return t, true
	}
	if e.parent != nil {
		return e.parent.Class(name)
	}
	return nil, false
}

// Fork creates a child scope.
func (e *Env) Fork() *Env {
	return NewEnv(e)
}
