package tmpir

import (
	"fmt"
	"strings"
)

// Emit renders a unit as C++ source. Output is a pure function of the
// unit: the same IR always produces byte-identical text.
func Emit(unit *Unit) string {
	var b strings.Builder
	b.WriteString("#pragma once\n")
	for _, inc := range unit.Includes {
		fmt.Fprintf(&b, "#include %s\n", inc)
	}
	for _, decl := range unit.Decls {
		b.WriteByte('\n')
		emitDecl(&b, decl)
	}
	return b.String()
}

func emitDecl(b *strings.Builder, decl Decl) {
	switch d := decl.(type) {
	case *TemplateDecl:
		emitTemplateDecl(b, d)
	case *UsingDecl:
		fmt.Fprintf(b, "using %s = %s;\n", d.Name, EmitExpr(d.Target))
	case *ConstexprDecl:
		fmt.Fprintf(b, "constexpr %s %s = %s;\n", d.Kind.CppParamKeyword(), d.Name, EmitExpr(d.Value))
	case *StaticAssertDecl:
		fmt.Fprintf(b, "static_assert(%s, %q);\n", EmitExpr(d.Cond), d.Message)
	}
}

func emitTemplateDecl(b *strings.Builder, d *TemplateDecl) {
	// No parameters and no specialization pattern is a plain struct, as
	// generated for zero-argument functions and metafunction classes.
	if len(d.Params) > 0 || d.SpecArgs != nil {
		fmt.Fprintf(b, "template <%s>\n", paramList(d.Params))
	}

	head := d.Name
	if d.SpecArgs != nil {
		args := make([]string, len(d.SpecArgs))
		for i, a := range d.SpecArgs {
			args[i] = EmitExpr(a)
		}
		head = fmt.Sprintf("%s<%s>", d.Name, strings.Join(args, ", "))
	}

	if d.Forward {
		fmt.Fprintf(b, "struct %s;\n", head)
		return
	}

	fmt.Fprintf(b, "struct %s {\n", head)
	for _, m := range d.Members {
		emitMember(b, m)
	}
	b.WriteString("};\n")
}

func paramList(params []TemplateParam) string {
	parts := make([]string, len(params))
	for i, p := range params {
		kw := p.Kind.CppParamKeyword()
		if p.Variadic {
			kw += "..."
		}
		parts[i] = kw + " " + p.Name
	}
	return strings.Join(parts, ", ")
}

func emitMember(b *strings.Builder, m Member) {
	switch mem := m.(type) {
	case TypeAliasMember:
		fmt.Fprintf(b, "  using %s = %s;\n", mem.Name, EmitExpr(mem.Target))
	case ValueMember:
		fmt.Fprintf(b, "  static constexpr %s %s = %s;\n",
			mem.Kind.CppParamKeyword(), mem.Name, EmitExpr(mem.Value))
	case AssertMember:
		fmt.Fprintf(b, "  static_assert(%s, %q);\n", EmitExpr(mem.Cond), mem.Message)
	case TemplateMember:
		fmt.Fprintf(b, "  template <%s>\n  struct %s {\n", paramList(mem.Params), mem.Name)
		var innerBuf strings.Builder
		for _, inner := range mem.Members {
			emitMember(&innerBuf, inner)
		}
		for _, line := range strings.SplitAfter(strings.TrimSuffix(innerBuf.String(), "\n"), "\n") {
			b.WriteString("  " + line)
		}
		b.WriteString("\n  };\n")
	}
}

// EmitExpr renders an expression. Nested type member access always
// carries the typename keyword; outside dependent contexts C++11 permits
// it, so no context tracking is needed.
func EmitExpr(e Expr) string {
	switch x := e.(type) {
	case IntLiteral:
		return fmt.Sprintf("%dLL", x.Value)
	case BoolLiteral:
		if x.Value {
			return "true"
		}
		return "false"
	case CharLiteral:
		switch x.Value {
		case '\'', '\\':
			return fmt.Sprintf("'\\%c'", x.Value)
		default:
			return fmt.Sprintf("'%c'", x.Value)
		}
	case TypeName:
		return x.Name
	case ParamRef:
		return x.Name
	case TemplateInstance:
		args := make([]string, len(x.Args))
		for i, a := range x.Args {
			args[i] = EmitExpr(a)
		}
		return fmt.Sprintf("%s<%s>", x.Name, strings.Join(args, ", "))
	case MemberType:
		return fmt.Sprintf("typename %s::%s", EmitExpr(x.Base), x.Member)
	case MemberValue:
		return fmt.Sprintf("%s::%s", EmitExpr(x.Base), x.Member)
	case BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", EmitExpr(x.Left), x.Op, EmitExpr(x.Right))
	case UnaryExpr:
		return fmt.Sprintf("(%s%s)", x.Op, EmitExpr(x.X))
	case PackExpansion:
		return EmitExpr(x.X) + "..."
	case DependentTemplate:
		args := make([]string, len(x.Args))
		for i, a := range x.Args {
			args[i] = EmitExpr(a)
		}
		return fmt.Sprintf("%s::template %s<%s>", EmitExpr(x.Base), x.Member, strings.Join(args, ", "))
	default:
		return fmt.Sprintf("/* unhandled %T */", e)
	}
}
