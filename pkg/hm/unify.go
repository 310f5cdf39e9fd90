package hm

import (
	"fmt"
)

// Composite is a parameterized type constructor whose component types
// unify pairwise when the constructor names match, e.g. List[a] with
// List[Int].
type Composite interface {
	Type
	Constructor() string
}

// UnificationError represents errors during unification
type UnificationError struct {
	msg string
}

func (e UnificationError) Error() string {
	return e.msg
}

// Unify attempts to unify two types, returning a substitution or error
func Unify(t1, t2 Type) (Subs, error) {
	return unify(t1, t2)
}

func unify(t1, t2 Type) (Subs, error) {
	// Handle type variables
	if tv1, ok := t1.(TypeVariable); ok {
		return bindVar(tv1, t2)
	}

	if tv2, ok := t2.(TypeVariable); ok {
		return bindVar(tv2, t1)
	}

	// Handle function types
	if ft1, ok := t1.(*FunctionType); ok {
		ft2, ok := t2.(*FunctionType)
		if !ok {
			return nil, UnificationError{fmt.Sprintf("cannot unify function type %s with non-function type %s", t1, t2)}
		}
		if len(ft1.args) != len(ft2.args) {
			return nil, UnificationError{fmt.Sprintf("cannot unify %s with %s: expected %d arguments, got %d", t1, t2, len(ft1.args), len(ft2.args))}
		}
		return unifyMany(ft1.Types(), ft2.Types())
	}

	// Handle type constants
	if tc1, ok := t1.(TypeConst); ok {
		if tc2, ok := t2.(TypeConst); ok && tc1 == tc2 {
			return NewSubs(), nil
		}
		return nil, UnificationError{fmt.Sprintf("cannot unify %s with %s", t1, t2)}
	}

	// Handle parameterized constructors structurally
	if ct1, ok := t1.(Composite); ok {
		if ct2, ok := t2.(Composite); ok && ct1.Constructor() == ct2.Constructor() && len(ct1.Types()) == len(ct2.Types()) {
			return unifyMany(ct1.Types(), ct2.Types())
		}
	}

	return nil, UnificationError{fmt.Sprintf("cannot unify %s with %s", t1, t2)}
}

// unifyMany unifies two equal-length type lists pairwise, threading the
// accumulated substitution through each pair.
func unifyMany(ts1, ts2 Types) (Subs, error) {
	subs := NewSubs()
	for i := range ts1 {
		a := ts1[i].Apply(subs).(Type)
		b := ts2[i].Apply(subs).(Type)
		s, err := unify(a, b)
		if err != nil {
			return nil, err
		}
		subs = subs.Compose(s)
	}
	return subs, nil
}

// bindVar binds a type variable to a type
func bindVar(tv TypeVariable, t Type) (Subs, error) {
	// Check if tv and t are the same
	if tv2, ok := t.(TypeVariable); ok && tv == tv2 {
		return NewSubs(), nil
	}

	// Occurs check
	if t.FreeTypeVar().Contains(tv) {
		return nil, UnificationError{fmt.Sprintf("occurs check failed: %s occurs in %s", tv, t)}
	}

	subs := NewSubs()
	subs.Add(tv, t)
	return subs, nil
}
