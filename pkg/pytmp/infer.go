package pytmp

import (
	"context"
	"log/slog"

	"github.com/pytmp/pytmp/pkg/hm"
)

const letters = `abcdefghijklmnopqrstuvwxyz`

// cppReservedNames are identifiers that pass through to generated code
// verbatim and would emit invalid or clashing C++: keywords plus the
// support header's exports.
var cppReservedNames = func() map[string]bool {
	names := []string{
		"alignas", "alignof", "auto", "bool", "break", "case", "catch",
		"char", "char16_t", "char32_t", "class", "const", "const_cast",
		"constexpr", "continue", "decltype", "default", "delete", "do",
		"double", "dynamic_cast", "else", "enum", "explicit", "export",
		"extern", "false", "float", "for", "friend", "goto", "if",
		"inline", "int", "long", "mutable", "namespace", "new",
		"noexcept", "nullptr", "operator", "private", "protected",
		"public", "register", "reinterpret_cast", "return", "short",
		"signed", "sizeof", "static", "static_assert", "static_cast",
		"struct", "switch", "template", "this", "thread_local", "throw",
		"true", "try", "typedef", "typeid", "typename", "union",
		"unsigned", "using", "virtual", "void", "volatile", "wchar_t",
		"while",

		TypeListName, Int64ListName, BoolListName,
		TypeListConcatName, Int64ListConcatName, BoolListConcatName,
		StringHolderName,
		AlwaysTrueFromTypeName, AlwaysTrueFromInt64Name, AlwaysTrueFromBoolName,
		Select1stTypeName, Select1stInt64Name, Select1stBoolName,
	}
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}()

func checkNameAllowed(name string, loc *SourceLocation) error {
	if cppReservedNames[name] {
		return NewError(NameError, loc, "name %q is reserved in generated code", name)
	}
	return nil
}

// inferencer supplies fresh type variables during elaboration.
type inferencer struct {
	varCount int
}

func (inf *inferencer) Fresh() hm.TypeVariable {
	tv := hm.TypeVariable(letters[inf.varCount%len(letters)])
	inf.varCount++
	return tv
}

// Elaborate resolves names, infers and checks types, and annotates the
// AST in place. Independent top-level definitions elaborate
// independently so one run can surface multiple diagnostics; the first
// error inside a definition aborts that definition.
func (m *Module) Elaborate(ctx context.Context) error {
	env := NewEnv(nil)
	fresh := &inferencer{}
	errs := &ErrorList{}

	seen := map[string]*SourceLocation{}
	declare := func(name string, loc *SourceLocation) bool {
		if err := checkNameAllowed(name, loc); err != nil {
			errs.Add(attachSource(err, m.Source))
			return false
		}
		if prev, dup := seen[name]; dup {
			errs.Add(NewError(TypeError, loc,
				"%s is already defined at line %d", name, prev.Line).WithSource(m.Source))
			return false
		}
		seen[name] = loc
		return true
	}

	// First pass: collect every top-level signature so functions may
	// reference each other regardless of order (mutual recursion).
	for _, decl := range m.Decls {
		switch d := decl.(type) {
		case *ClassDef:
			if !declare(d.Name, d.Loc) {
				continue
			}
			custom := &CustomType{TypeName: d.Name}
			for _, field := range d.Fields {
				if err := checkNameAllowed(field.Name, field.Loc); err != nil {
					errs.Add(attachSource(err, m.Source))
					continue
				}
				ft, err := field.Ann.Resolve(env)
				if err != nil {
					errs.Add(attachSource(err, m.Source))
					continue
				}
				custom.Fields = append(custom.Fields, FieldType{Name: field.Name, Type: ft})
			}
			d.Type = custom
			env.AddClass(custom)
			env.Add(d.Name, hm.NewScheme(nil, ConstructorValue{Class: d}.Type()))

		case *FunctionDef:
			if !declare(d.Name, d.Loc) {
				continue
			}
			args := make([]hm.Type, len(d.Params))
			ok := true
			for i := range d.Params {
				t, err := d.Params[i].Ann.Resolve(env)
				if err != nil {
					errs.Add(attachSource(err, m.Source))
					ok = false
					break
				}
				d.Params[i].Type = t
				args[i] = t
			}
			if !ok {
				continue
			}
			ret, err := d.RetAnn.Resolve(env)
			if err != nil {
				errs.Add(attachSource(err, m.Source))
				continue
			}
			d.FnType = hm.NewFnType(ret, args...)
			env.Add(d.Name, hm.NewScheme(nil, d.FnType))
		}
	}

	// Second pass: elaborate each function body.
	for _, decl := range m.Decls {
		fn, ok := decl.(*FunctionDef)
		if !ok || fn.FnType == nil {
			continue
		}
		if err := m.elaborateFunction(ctx, fn, env, fresh); err != nil {
			errs.Add(attachSource(err, m.Source))
		}
	}

	if errs.HasErrors() {
		return errs
	}

	m.elaborated = true
	slog.Debug("elaborated module", "file", m.Filename, "decls", len(m.Decls))
	return nil
}

func (m *Module) elaborateFunction(ctx context.Context, fn *FunctionDef, env *Env, fresh hm.Fresher) error {
	scope := env.Fork()
	for _, param := range fn.Params {
		if err := checkNameAllowed(param.Name, param.Loc); err != nil {
			return err
		}
		if _, dup := scope.LocalSchemeOf(param.Name); dup {
			return NewError(TypeError, param.Loc, "duplicate parameter %q", param.Name)
		}
		scope.Add(param.Name, hm.NewScheme(nil, param.Type))
	}

	returns, err := m.inferStmts(ctx, fn.Body, scope, fn.FnType.Ret(), fresh)
	if err != nil {
		return err
	}
	if !returns {
		return NewError(TypeError, fn.Loc, "function %s does not return on every path", fn.Name)
	}
	return nil
}

// inferStmts elaborates a statement sequence and reports whether it
// returns on every path.
func (m *Module) inferStmts(ctx context.Context, stmts []Stmt, env *Env, retType hm.Type, fresh hm.Fresher) (bool, error) {
	returned := false
	for _, stmt := range stmts {
		if returned {
			return false, NewError(TypeError, stmt.GetSourceLocation(), "unreachable code")
		}

		switch s := stmt.(type) {
		case *AssignStmt:
			if _, dup := env.LocalSchemeOf(s.Name); dup {
				return false, NewError(TypeError, s.NameLoc,
					"%s is assigned twice; a name is bound once per scope", s.Name)
			}
			t, err := s.Value.Infer(ctx, env, fresh)
			if err != nil {
				return false, err
			}
			env.Add(s.Name, hm.NewScheme(nil, t))

		case *ReturnStmt:
			t, err := s.Value.Infer(ctx, env, fresh)
			if err != nil {
				return false, err
			}
			if _, err := hm.Unify(retType, t); err != nil {
				return false, NewError(TypeError, s.Loc,
					"return type mismatch: expected %s, got %s", typeName(retType), typeName(t))
			}
			returned = true

		case *AssertStmt:
			t, err := s.Cond.Infer(ctx, env, fresh)
			if err != nil {
				return false, err
			}
			if _, err := hm.Unify(BoolType, t); err != nil {
				return false, NewError(TypeError, s.Cond.GetSourceLocation(),
					"assert condition must be bool, got %s", typeName(t))
			}

		case *IfStmt:
			t, err := s.Cond.Infer(ctx, env, fresh)
			if err != nil {
				return false, err
			}
			if _, err := hm.Unify(BoolType, t); err != nil {
				return false, NewError(TypeError, s.Cond.GetSourceLocation(),
					"if condition must be bool, got %s", typeName(t))
			}

			thenReturns, err := m.inferStmts(ctx, s.Then, env.Fork(), retType, fresh)
			if err != nil {
				return false, err
			}
			if !thenReturns {
				// Required for the mechanical lowering to
				// specialization dispatch
				return false, NewError(UnsupportedConstructError, s.Loc,
					"the body of an if statement must end with a return")
			}

			elseReturns := false
			if len(s.Else) > 0 {
				elseReturns, err = m.inferStmts(ctx, s.Else, env.Fork(), retType, fresh)
				if err != nil {
					return false, err
				}
			}
			returned = thenReturns && elseReturns

		default:
			return false, NewError(UnsupportedConstructError, stmt.GetSourceLocation(),
				"unsupported statement %T", stmt)
		}
	}
	return returned, nil
}

// attachSource fills in the source text on structured errors so
// excerpts render without re-reading the file.
func attachSource(err error, source string) error {
	if perr, ok := err.(*Error); ok && perr.Source == "" {
		return perr.WithSource(source)
	}
	return err
}
