package pytmp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iancoleman/strcase"
	"github.com/pkg/errors"

	"github.com/pytmp/pytmp/pkg/hm"
	"github.com/pytmp/pytmp/pkg/tmpir"
)

// CompileOptions controls code generation for one module.
type CompileOptions struct {
	// Entry names a function to pin at toplevel. With all EntryArgs
	// bound, the generated unit gets a constant or alias for the result
	// plus a static_assert tying it to the interpreted value.
	Entry     string
	EntryArgs []Value

	// MaxDepth bounds compile-time expansion of the entry point.
	MaxDepth int
}

// GenContext accumulates the output unit for one module. Fresh helper
// names come from a per-unit counter, so generation is deterministic.
type GenContext struct {
	module   *Module
	unit     *tmpir.Unit
	used     map[string]bool
	counter  int
	wrappers map[string]string
}

// Compile lowers an elaborated module to a C++ template IR unit.
func (m *Module) Compile(ctx context.Context, opts CompileOptions) (*tmpir.Unit, error) {
	if !m.elaborated {
		return nil, errors.Errorf("module %s has not been elaborated", m.Filename)
	}

	g := &GenContext{
		module:   m,
		unit:     &tmpir.Unit{},
		used:     map[string]bool{},
		wrappers: map[string]string{},
	}
	g.unit.AddInclude("<cstdint>")
	g.unit.AddInclude(SupportHeader)
	for _, decl := range m.Decls {
		g.used[decl.DeclName()] = true
	}

	// Forward-declare every template so definitions may reference each
	// other in any order.
	for _, decl := range m.Decls {
		switch d := decl.(type) {
		case *ClassDef:
			g.unit.Add(&tmpir.TemplateDecl{Name: d.Name, Params: classParams(d), Forward: true})
		case *FunctionDef:
			if len(d.Params) > 0 {
				g.unit.Add(&tmpir.TemplateDecl{Name: d.Name, Params: funcParams(d), Forward: true})
			}
		}
	}

	for _, decl := range m.Decls {
		switch d := decl.(type) {
		case *ClassDef:
			g.genClass(d)
		case *FunctionDef:
			if err := g.genFunction(d); err != nil {
				return nil, attachSource(err, m.Source)
			}
		}
	}

	if opts.Entry != "" {
		if err := g.genEntry(ctx, opts); err != nil {
			return nil, attachSource(err, m.Source)
		}
	}

	slog.Debug("compiled module", "file", m.Filename, "decls", len(g.unit.Decls))
	return g.unit, nil
}

func (g *GenContext) fresh(base string) string {
	for {
		g.counter++
		name := fmt.Sprintf("%s%d", base, g.counter)
		if !g.used[name] {
			g.used[name] = true
			return name
		}
	}
}

// kindOf maps a source type to its C++ template parameter kind. Lists,
// strings, custom types, and callables all travel as types.
func kindOf(t hm.Type) tmpir.Kind {
	if tc, ok := t.(hm.TypeConst); ok {
		switch tc {
		case BoolType:
			return tmpir.KindBool
		case IntType:
			return tmpir.KindInt64
		}
	}
	return tmpir.KindType
}

// memberNameOf is the result member a lowered function exposes.
func memberNameOf(t hm.Type) string {
	if kindOf(t) == tmpir.KindType {
		return "type"
	}
	return "value"
}

func listTemplateFor(elem hm.Type) string {
	switch kindOf(elem) {
	case tmpir.KindInt64:
		return Int64ListName
	case tmpir.KindBool:
		return BoolListName
	default:
		return TypeListName
	}
}

func concatTemplateFor(elem hm.Type) string {
	switch kindOf(elem) {
	case tmpir.KindInt64:
		return Int64ListConcatName
	case tmpir.KindBool:
		return BoolListConcatName
	default:
		return TypeListConcatName
	}
}

func stringHolderExpr(s string) tmpir.Expr {
	chars := make([]tmpir.Expr, len(s))
	for i := 0; i < len(s); i++ {
		chars[i] = tmpir.CharLiteral{Value: s[i]}
	}
	return tmpir.TemplateInstance{Name: StringHolderName, Args: chars}
}

// instance references a lowered function or class. Zero-argument
// functions are plain structs and take no argument list.
func instance(name string, args []tmpir.Expr) tmpir.Expr {
	if len(args) == 0 {
		return tmpir.TypeName{Name: name}
	}
	return tmpir.TemplateInstance{Name: name, Args: args}
}

func member(kind tmpir.Kind, base tmpir.Expr, name string) tmpir.Expr {
	if kind == tmpir.KindType {
		return tmpir.MemberType{Base: base, Member: name}
	}
	return tmpir.MemberValue{Base: base, Member: name}
}

func resultAccess(t hm.Type, base tmpir.Expr) tmpir.Expr {
	return member(kindOf(t), base, memberNameOf(t))
}

// pickParamName returns base, possibly suffixed with underscores, so the
// result collides with no taken name.
func pickParamName(base string, taken map[string]bool) string {
	name := base
	for taken[name] {
		name += "_"
	}
	return name
}

func classParams(d *ClassDef) []tmpir.TemplateParam {
	params := make([]tmpir.TemplateParam, len(d.Type.Fields))
	for i, f := range d.Type.Fields {
		params[i] = tmpir.TemplateParam{Name: f.Name + "_", Kind: kindOf(f.Type)}
	}
	return params
}

func funcParams(d *FunctionDef) []tmpir.TemplateParam {
	params := make([]tmpir.TemplateParam, len(d.Params))
	for i, p := range d.Params {
		params[i] = tmpir.TemplateParam{Name: p.Name, Kind: kindOf(p.Type)}
	}
	return params
}

// genClass lowers a class to a template struct whose members re-expose
// the constructor arguments under the field names.
func (g *GenContext) genClass(d *ClassDef) {
	members := make([]tmpir.Member, len(d.Type.Fields))
	for i, f := range d.Type.Fields {
		ref := tmpir.ParamRef{Name: f.Name + "_"}
		if kindOf(f.Type) == tmpir.KindType {
			members[i] = tmpir.TypeAliasMember{Name: f.Name, Target: ref}
		} else {
			members[i] = tmpir.ValueMember{Name: f.Name, Kind: kindOf(f.Type), Value: ref}
		}
	}
	g.unit.Add(&tmpir.TemplateDecl{Name: d.Name, Params: classParams(d), Members: members})
}

// funcGen lowers one function body. Every helper it spawns re-carries
// the function's own template parameters, so locals lowered in the outer
// scope stay valid inside specializations.
type funcGen struct {
	g          *GenContext
	name       string
	params     []tmpir.TemplateParam
	paramNames map[string]bool
	retType    hm.Type
}

func (g *GenContext) genFunction(fn *FunctionDef) error {
	params := funcParams(fn)
	names := map[string]bool{}
	scope := map[string]tmpir.Expr{}
	for _, p := range params {
		names[p.Name] = true
		scope[p.Name] = tmpir.ParamRef{Name: p.Name}
	}

	fg := &funcGen{g: g, name: fn.Name, params: params, paramNames: names, retType: fn.FnType.Ret()}
	members, err := fg.genStmts(fn.Body, scope)
	if err != nil {
		return err
	}

	g.unit.Add(&tmpir.TemplateDecl{Name: fn.Name, Params: params, Members: members})
	return nil
}

func (fg *funcGen) paramRefs() []tmpir.Expr {
	refs := make([]tmpir.Expr, len(fg.params))
	for i, p := range fg.params {
		refs[i] = tmpir.ParamRef{Name: p.Name}
	}
	return refs
}

func (fg *funcGen) resultMember(value tmpir.Expr) tmpir.Member {
	if kindOf(fg.retType) == tmpir.KindType {
		return tmpir.TypeAliasMember{Name: "type", Target: value}
	}
	return tmpir.ValueMember{Name: "value", Kind: kindOf(fg.retType), Value: value}
}

func cloneScope(scope map[string]tmpir.Expr) map[string]tmpir.Expr {
	out := make(map[string]tmpir.Expr, len(scope))
	for k, v := range scope {
		out[k] = v
	}
	return out
}

// genStmts lowers a statement sequence into the members of the template
// being built. Local bindings substitute into later expressions; an if
// statement splits the remainder into a specialization pair.
func (fg *funcGen) genStmts(stmts []Stmt, scope map[string]tmpir.Expr) ([]tmpir.Member, error) {
	var members []tmpir.Member
	for i, stmt := range stmts {
		switch s := stmt.(type) {
		case *AssignStmt:
			v, err := fg.lowerExpr(s.Value, scope)
			if err != nil {
				return nil, err
			}
			scope[s.Name] = v

		case *AssertStmt:
			cond, err := fg.lowerExpr(s.Cond, scope)
			if err != nil {
				return nil, err
			}
			msg := s.Message
			if msg == "" {
				msg = exprString(s.Cond)
			}
			members = append(members, tmpir.AssertMember{Cond: cond, Message: msg})

		case *ReturnStmt:
			v, err := fg.lowerExpr(s.Value, scope)
			if err != nil {
				return nil, err
			}
			return append(members, fg.resultMember(v)), nil

		case *IfStmt:
			cond, err := fg.lowerExpr(s.Cond, scope)
			if err != nil {
				return nil, err
			}
			// The else branch absorbs the statements after the if; the
			// then branch is known to return.
			elseStmts := make([]Stmt, 0, len(s.Else)+len(stmts)-i-1)
			elseStmts = append(elseStmts, s.Else...)
			elseStmts = append(elseStmts, stmts[i+1:]...)

			access, err := fg.dispatch(cond,
				func() ([]tmpir.Member, error) { return fg.genStmts(s.Then, cloneScope(scope)) },
				func() ([]tmpir.Member, error) { return fg.genStmts(elseStmts, cloneScope(scope)) },
			)
			if err != nil {
				return nil, err
			}
			return append(members, fg.resultMember(access)), nil

		default:
			return nil, NewError(UnsupportedConstructError, stmt.GetSourceLocation(),
				"statement %T cannot be lowered", stmt)
		}
	}
	return nil, errors.Errorf("function %s: statement sequence ended without a return", fg.name)
}

// dispatch lowers branching into a helper template specialized on a
// leading bool. Branch bodies instantiate lazily, so only the selected
// branch ever expands downstream.
func (fg *funcGen) dispatch(cond tmpir.Expr, genThen, genElse func() ([]tmpir.Member, error)) (tmpir.Expr, error) {
	name := fg.g.fresh(fg.name + "_impl")
	condParam := pickParamName("B", fg.paramNames)

	primary := append([]tmpir.TemplateParam{{Name: condParam, Kind: tmpir.KindBool}}, fg.params...)
	fg.g.unit.Add(&tmpir.TemplateDecl{Name: name, Params: primary, Forward: true})

	thenMembers, err := genThen()
	if err != nil {
		return nil, err
	}
	elseMembers, err := genElse()
	if err != nil {
		return nil, err
	}

	for _, branch := range []struct {
		key     bool
		members []tmpir.Member
	}{
		{true, thenMembers},
		{false, elseMembers},
	} {
		fg.g.unit.Add(&tmpir.TemplateDecl{
			Name:     name,
			Params:   fg.params,
			SpecArgs: append([]tmpir.Expr{tmpir.BoolLiteral{Value: branch.key}}, fg.paramRefs()...),
			Members:  branch.members,
		})
	}

	inst := tmpir.TemplateInstance{Name: name, Args: append([]tmpir.Expr{cond}, fg.paramRefs()...)}
	return resultAccess(fg.retType, inst), nil
}

func (fg *funcGen) lowerExpr(e Expr, scope map[string]tmpir.Expr) (tmpir.Expr, error) {
	switch x := e.(type) {
	case *IntLit:
		return tmpir.IntLiteral{Value: x.Value}, nil
	case *BoolLit:
		return tmpir.BoolLiteral{Value: x.Value}, nil
	case *StringLit:
		return stringHolderExpr(x.Value), nil
	case *TypeLit:
		return tmpir.TypeName{Name: x.CppName}, nil

	case *EmptyListLit:
		elem := x.GetInferredType().(*ListType).Elem
		return tmpir.TemplateInstance{Name: listTemplateFor(elem)}, nil

	case *ListLit:
		elem := x.GetInferredType().(*ListType).Elem
		args := make([]tmpir.Expr, len(x.Elems))
		for i, el := range x.Elems {
			v, err := fg.lowerExpr(el, scope)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return tmpir.TemplateInstance{Name: listTemplateFor(elem), Args: args}, nil

	case *Symbol:
		if v, ok := scope[x.Name]; ok {
			return v, nil
		}
		// A toplevel function or constructor used as a value: wrap it
		// in a metafunction class.
		wrapper, err := fg.g.metafunctionFor(x.Name, x.Loc)
		if err != nil {
			return nil, err
		}
		return tmpir.TypeName{Name: wrapper}, nil

	case *Call:
		return fg.lowerCall(x, scope)

	case *BinaryOp:
		return fg.lowerBinaryOp(x, scope)

	case *UnaryOp:
		v, err := fg.lowerExpr(x.X, scope)
		if err != nil {
			return nil, err
		}
		op := "-"
		if x.Op == "not" {
			op = "!"
		}
		return tmpir.UnaryExpr{Op: op, X: v}, nil

	case *Conditional:
		cond, err := fg.lowerExpr(x.Cond, scope)
		if err != nil {
			return nil, err
		}
		// Same helper shape as an if statement, so the unselected
		// branch never instantiates.
		saved := fg.retType
		fg.retType = x.GetInferredType()
		access, err := fg.dispatch(cond,
			func() ([]tmpir.Member, error) {
				v, err := fg.lowerExpr(x.Then, scope)
				if err != nil {
					return nil, err
				}
				return []tmpir.Member{fg.resultMember(v)}, nil
			},
			func() ([]tmpir.Member, error) {
				v, err := fg.lowerExpr(x.Else, scope)
				if err != nil {
					return nil, err
				}
				return []tmpir.Member{fg.resultMember(v)}, nil
			},
		)
		fg.retType = saved
		return access, err

	case *Comprehension:
		return fg.lowerComprehension(x, scope)

	case *Attribute:
		recv, err := fg.lowerExpr(x.Receiver, scope)
		if err != nil {
			return nil, err
		}
		return member(kindOf(x.GetInferredType()), recv, x.Field), nil

	default:
		return nil, NewError(UnsupportedConstructError, e.GetSourceLocation(),
			"expression %T cannot be lowered", e)
	}
}

func (fg *funcGen) lowerCall(e *Call, scope map[string]tmpir.Expr) (tmpir.Expr, error) {
	args := make([]tmpir.Expr, len(e.Args))
	for i, arg := range e.Args {
		v, err := fg.lowerExpr(arg, scope)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	// Direct reference to a toplevel definition instantiates it in
	// place; no wrapper needed.
	if sym, ok := e.Fun.(*Symbol); ok {
		if _, shadowed := scope[sym.Name]; !shadowed {
			if decl, ok := fg.g.module.DeclNamed(sym.Name); ok {
				switch d := decl.(type) {
				case *ClassDef:
					// Construction yields the instance type itself
					return tmpir.TemplateInstance{Name: d.Name, Args: args}, nil
				case *FunctionDef:
					return resultAccess(d.FnType.Ret(), instance(d.Name, args)), nil
				}
			}
		}
	}

	// A callable held in a parameter, local, or field follows the
	// metafunction class convention.
	fun, err := fg.lowerExpr(e.Fun, scope)
	if err != nil {
		return nil, err
	}
	if mt, ok := fun.(tmpir.MemberType); ok {
		// Drop the typename keyword; the dependent access re-adds it
		fun = tmpir.MemberValue{Base: mt.Base, Member: mt.Member}
	}
	ft, ok := e.Fun.GetInferredType().(*hm.FunctionType)
	if !ok {
		return nil, NewError(TypeError, e.Loc, "cannot lower a call to a non-function")
	}
	apply := tmpir.DependentTemplate{Base: fun, Member: "apply", Args: args}
	return resultAccess(ft.Ret(), apply), nil
}

func (fg *funcGen) lowerBinaryOp(e *BinaryOp, scope map[string]tmpir.Expr) (tmpir.Expr, error) {
	left, err := fg.lowerExpr(e.Left, scope)
	if err != nil {
		return nil, err
	}
	right, err := fg.lowerExpr(e.Right, scope)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case "and":
		return tmpir.BinaryExpr{Op: "&&", Left: left, Right: right}, nil
	case "or":
		return tmpir.BinaryExpr{Op: "||", Left: left, Right: right}, nil

	case "==", "!=":
		if kindOf(e.Left.GetInferredType()) == tmpir.KindType {
			fg.g.unit.AddInclude("<type_traits>")
			same := tmpir.MemberValue{
				Base:   tmpir.TemplateInstance{Name: "std::is_same", Args: []tmpir.Expr{left, right}},
				Member: "value",
			}
			if e.Op == "!=" {
				return tmpir.UnaryExpr{Op: "!", X: same}, nil
			}
			return same, nil
		}
		return tmpir.BinaryExpr{Op: e.Op, Left: left, Right: right}, nil

	case "+":
		if lt, isList := e.Left.GetInferredType().(*ListType); isList {
			concat := tmpir.TemplateInstance{Name: concatTemplateFor(lt.Elem), Args: []tmpir.Expr{left, right}}
			return tmpir.MemberType{Base: concat, Member: "type"}, nil
		}
		return tmpir.BinaryExpr{Op: "+", Left: left, Right: right}, nil

	default:
		return tmpir.BinaryExpr{Op: e.Op, Left: left, Right: right}, nil
	}
}

// lowerComprehension builds a head/tail recursion helper over the source
// list and concatenates one-element lists of the transformed head.
func (fg *funcGen) lowerComprehension(e *Comprehension, scope map[string]tmpir.Expr) (tmpir.Expr, error) {
	srcElem := e.Source.GetInferredType().(*ListType).Elem
	resElem := e.GetInferredType().(*ListType).Elem
	srcList := listTemplateFor(srcElem)
	resList := listTemplateFor(resElem)
	srcKind := kindOf(srcElem)

	name := fg.g.fresh(fg.name + "_transform")
	listParam := pickParamName("L", fg.paramNames)
	headParam := pickParamName("H", fg.paramNames)
	tailParam := pickParamName("T", fg.paramNames)

	primary := append(append([]tmpir.TemplateParam{}, fg.params...),
		tmpir.TemplateParam{Name: listParam, Kind: tmpir.KindType})
	fg.g.unit.Add(&tmpir.TemplateDecl{Name: name, Params: primary, Forward: true})

	// Base case: the empty source yields the empty result.
	fg.g.unit.Add(&tmpir.TemplateDecl{
		Name:     name,
		Params:   fg.params,
		SpecArgs: append(fg.paramRefs(), tmpir.TemplateInstance{Name: srcList}),
		Members: []tmpir.Member{
			tmpir.TypeAliasMember{Name: "type", Target: tmpir.TemplateInstance{Name: resList}},
		},
	})

	elemScope := cloneScope(scope)
	elemScope[e.Var] = tmpir.ParamRef{Name: headParam}
	head, err := fg.lowerExpr(e.Elem, elemScope)
	if err != nil {
		return nil, err
	}

	tailPack := tmpir.PackExpansion{X: tmpir.ParamRef{Name: tailParam}}
	recurse := tmpir.MemberType{
		Base: tmpir.TemplateInstance{
			Name: name,
			Args: append(fg.paramRefs(), tmpir.TemplateInstance{Name: srcList, Args: []tmpir.Expr{tailPack}}),
		},
		Member: "type",
	}
	concat := tmpir.TemplateInstance{
		Name: concatTemplateFor(resElem),
		Args: []tmpir.Expr{
			tmpir.TemplateInstance{Name: resList, Args: []tmpir.Expr{head}},
			recurse,
		},
	}
	fg.g.unit.Add(&tmpir.TemplateDecl{
		Name: name,
		Params: append(append([]tmpir.TemplateParam{}, fg.params...),
			tmpir.TemplateParam{Name: headParam, Kind: srcKind},
			tmpir.TemplateParam{Name: tailParam, Kind: srcKind, Variadic: true}),
		SpecArgs: append(fg.paramRefs(), tmpir.TemplateInstance{
			Name: srcList,
			Args: []tmpir.Expr{tmpir.ParamRef{Name: headParam}, tailPack},
		}),
		Members: []tmpir.Member{
			tmpir.TypeAliasMember{Name: "type", Target: tmpir.MemberType{Base: concat, Member: "type"}},
		},
	})

	source, err := fg.lowerExpr(e.Source, scope)
	if err != nil {
		return nil, err
	}
	return tmpir.MemberType{
		Base:   tmpir.TemplateInstance{Name: name, Args: append(fg.paramRefs(), source)},
		Member: "type",
	}, nil
}

// metafunctionFor wraps a toplevel function or constructor in a struct
// with a nested apply template, the form a callable takes when passed as
// a value. Wrappers are generated once and shared.
func (g *GenContext) metafunctionFor(name string, loc *SourceLocation) (string, error) {
	if wrapper, ok := g.wrappers[name]; ok {
		return wrapper, nil
	}
	decl, ok := g.module.DeclNamed(name)
	if !ok {
		return "", NewError(NameError, loc, "undefined name %q", name)
	}

	var argTypes []hm.Type
	var result func(refs []tmpir.Expr) tmpir.Member
	switch d := decl.(type) {
	case *FunctionDef:
		if len(d.Params) == 0 {
			return "", NewError(UnsupportedConstructError, loc,
				"a zero-argument function cannot be passed as a value")
		}
		argTypes = d.FnType.Args()
		result = func(refs []tmpir.Expr) tmpir.Member {
			ret := d.FnType.Ret()
			access := resultAccess(ret, tmpir.TemplateInstance{Name: d.Name, Args: refs})
			if kindOf(ret) == tmpir.KindType {
				return tmpir.TypeAliasMember{Name: "type", Target: access}
			}
			return tmpir.ValueMember{Name: "value", Kind: kindOf(ret), Value: access}
		}
	case *ClassDef:
		for _, f := range d.Type.Fields {
			argTypes = append(argTypes, f.Type)
		}
		result = func(refs []tmpir.Expr) tmpir.Member {
			return tmpir.TypeAliasMember{Name: "type", Target: tmpir.TemplateInstance{Name: d.Name, Args: refs}}
		}
	default:
		return "", NewError(TypeError, loc, "%s is not callable", name)
	}

	wrapper := g.fresh(name + "_mfn")
	params := make([]tmpir.TemplateParam, len(argTypes))
	refs := make([]tmpir.Expr, len(argTypes))
	for i, t := range argTypes {
		pname := fmt.Sprintf("A%d", i+1)
		params[i] = tmpir.TemplateParam{Name: pname, Kind: kindOf(t)}
		refs[i] = tmpir.ParamRef{Name: pname}
	}

	g.unit.Add(&tmpir.TemplateDecl{
		Name: wrapper,
		Members: []tmpir.Member{
			tmpir.TemplateMember{Name: "apply", Params: params, Members: []tmpir.Member{result(refs)}},
		},
	})
	g.wrappers[name] = wrapper
	return wrapper, nil
}

// genEntry pins the entry function at toplevel. With every argument
// bound, the interpreter computes the result up front and a
// static_assert makes the downstream compiler agree with it.
func (g *GenContext) genEntry(ctx context.Context, opts CompileOptions) error {
	fn, ok := g.module.FunctionNamed(opts.Entry)
	if !ok {
		return NewError(NameError, nil, "no function named %q in %s", opts.Entry, g.module.Filename)
	}

	partial := false
	for _, arg := range opts.EntryArgs {
		if arg == nil {
			partial = true
		}
	}

	result, err := g.module.EvalFunction(ctx, opts.Entry, opts.EntryArgs, opts.MaxDepth)
	if err != nil {
		return err
	}
	if partial || isSymbolic(result) {
		// Unbound parameters cannot be named at toplevel; the function
		// template itself is the output.
		slog.Debug("entry left generic", "function", opts.Entry)
		return nil
	}

	args := make([]tmpir.Expr, len(opts.EntryArgs))
	for i, arg := range opts.EntryArgs {
		v, err := lowerValue(arg)
		if err != nil {
			return err
		}
		args[i] = v
	}
	expected, err := lowerValue(result)
	if err != nil {
		return err
	}

	alias := strcase.ToCamel(fn.Name)
	ret := fn.FnType.Ret()
	inst := instance(fn.Name, args)
	msg := fmt.Sprintf("%s does not match the interpreted result %s", fn.Name, result)

	if kindOf(ret) == tmpir.KindType {
		g.unit.AddInclude("<type_traits>")
		g.unit.Add(&tmpir.UsingDecl{Name: alias, Target: resultAccess(ret, inst)})
		g.unit.Add(&tmpir.StaticAssertDecl{
			Cond: tmpir.MemberValue{
				Base:   tmpir.TemplateInstance{Name: "std::is_same", Args: []tmpir.Expr{tmpir.TypeName{Name: alias}, expected}},
				Member: "value",
			},
			Message: msg,
		})
		return nil
	}

	g.unit.Add(&tmpir.ConstexprDecl{Name: alias, Kind: kindOf(ret), Value: resultAccess(ret, inst)})
	g.unit.Add(&tmpir.StaticAssertDecl{
		Cond:    tmpir.BinaryExpr{Op: "==", Left: tmpir.ParamRef{Name: alias}, Right: expected},
		Message: msg,
	})
	return nil
}

// lowerValue lowers a concrete interpreter value to IR.
func lowerValue(v Value) (tmpir.Expr, error) {
	switch val := v.(type) {
	case BoolValue:
		return tmpir.BoolLiteral{Value: val.Val}, nil
	case IntValue:
		return tmpir.IntLiteral{Value: val.Val}, nil
	case StringValue:
		return stringHolderExpr(val.Val), nil
	case TypeValue:
		return tmpir.TypeName{Name: val.CppName}, nil
	case ListValue:
		args := make([]tmpir.Expr, len(val.Elements))
		for i, el := range val.Elements {
			lowered, err := lowerValue(el)
			if err != nil {
				return nil, err
			}
			args[i] = lowered
		}
		return tmpir.TemplateInstance{Name: listTemplateFor(val.Elem), Args: args}, nil
	case CustomValue:
		args := make([]tmpir.Expr, len(val.Fields))
		for i, f := range val.Fields {
			lowered, err := lowerValue(f)
			if err != nil {
				return nil, err
			}
			args[i] = lowered
		}
		return tmpir.TemplateInstance{Name: val.Class.Name, Args: args}, nil
	default:
		return nil, errors.Errorf("value %s cannot be lowered", v)
	}
}
