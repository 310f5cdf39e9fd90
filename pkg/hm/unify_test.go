package hm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	intConst  = TypeConst("int")
	boolConst = TypeConst("bool")
)

// listOf is a minimal Composite for exercising structural unification.
type listOf struct {
	elem Type
}

func (l listOf) Name() string   { return "List[" + l.elem.Name() + "]" }
func (l listOf) String() string { return l.Name() }
func (l listOf) Types() Types   { return Types{l.elem} }

func (l listOf) Apply(subs Subs) Substitutable {
	return listOf{elem: l.elem.Apply(subs).(Type)}
}

func (l listOf) FreeTypeVar() TypeVarSet {
	return l.elem.FreeTypeVar()
}

func (l listOf) Eq(other Type) bool {
	ol, ok := other.(listOf)
	return ok && l.elem.Eq(ol.elem)
}

func (l listOf) Constructor() string { return "List" }

func TestUnifyVariableBinds(t *testing.T) {
	a := TypeVariable('a')
	subs, err := Unify(a, intConst)
	require.NoError(t, err)

	bound, ok := subs.Get(a)
	require.True(t, ok)
	assert.True(t, bound.Eq(intConst))

	// Symmetric
	subs, err = Unify(intConst, a)
	require.NoError(t, err)
	bound, _ = subs.Get(a)
	assert.True(t, bound.Eq(intConst))
}

func TestUnifyVariableWithItself(t *testing.T) {
	a := TypeVariable('a')
	subs, err := Unify(a, a)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestUnifyConstants(t *testing.T) {
	subs, err := Unify(intConst, intConst)
	require.NoError(t, err)
	assert.Empty(t, subs)

	_, err = Unify(intConst, boolConst)
	require.Error(t, err)
	assert.IsType(t, UnificationError{}, err)
}

func TestUnifyFunctionTypes(t *testing.T) {
	a := TypeVariable('a')
	b := TypeVariable('b')

	subs, err := Unify(
		NewFnType(b, a, intConst),
		NewFnType(boolConst, intConst, intConst),
	)
	require.NoError(t, err)

	bound, _ := subs.Get(a)
	assert.True(t, bound.Eq(intConst))
	bound, _ = subs.Get(b)
	assert.True(t, bound.Eq(boolConst))
}

func TestUnifyFunctionArity(t *testing.T) {
	_, err := Unify(
		NewFnType(intConst, intConst),
		NewFnType(intConst, intConst, intConst),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "arguments")
}

func TestUnifyFunctionWithNonFunction(t *testing.T) {
	_, err := Unify(NewFnType(intConst), intConst)
	require.Error(t, err)
}

func TestUnifyThreadsSubstitutions(t *testing.T) {
	// The same variable appears in two positions; the binding from the
	// first must carry into the second.
	a := TypeVariable('a')
	_, err := Unify(
		NewFnType(intConst, a, a),
		NewFnType(intConst, intConst, boolConst),
	)
	require.Error(t, err)
}

func TestUnifyComposite(t *testing.T) {
	a := TypeVariable('a')
	subs, err := Unify(listOf{elem: a}, listOf{elem: intConst})
	require.NoError(t, err)

	bound, _ := subs.Get(a)
	assert.True(t, bound.Eq(intConst))

	_, err = Unify(listOf{elem: intConst}, listOf{elem: boolConst})
	require.Error(t, err)
}

func TestUnifyOccursCheck(t *testing.T) {
	a := TypeVariable('a')
	_, err := Unify(a, listOf{elem: a})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "occurs")
}
