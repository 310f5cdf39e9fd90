// Package tmpir models the subset of C++ template metaprogramming that
// compiled output is expressed in: template structs with type and value
// members, their specializations, and toplevel aliases, constants, and
// static assertions.
package tmpir

// Kind classifies a template parameter, argument, or member.
type Kind int

const (
	KindType Kind = iota
	KindInt64
	KindBool
)

// CppParamKeyword is the parameter-list spelling for a kind.
func (k Kind) CppParamKeyword() string {
	switch k {
	case KindInt64:
		return "int64_t"
	case KindBool:
		return "bool"
	default:
		return "typename"
	}
}

// Expr is a C++ expression in either value or type position.
type Expr interface {
	exprNode()
}

// IntLiteral is a signed 64-bit literal. It always carries the LL
// suffix so narrowing never changes the value.
type IntLiteral struct {
	Value int64
}

// BoolLiteral is true or false.
type BoolLiteral struct {
	Value bool
}

// CharLiteral is a single character, as in a character pack argument.
type CharLiteral struct {
	Value byte
}

// TypeName is a verbatim C++ type, e.g. "int" or "std::tuple<int>".
type TypeName struct {
	Name string
}

// ParamRef references a template parameter of the enclosing template.
type ParamRef struct {
	Name string
}

// TemplateInstance instantiates a named template: Name<Args...>.
type TemplateInstance struct {
	Name string
	Args []Expr
}

// MemberType accesses a nested type: typename Base::Member.
type MemberType struct {
	Base   Expr
	Member string
}

// MemberValue accesses a nested constant: Base::Member.
type MemberValue struct {
	Base   Expr
	Member string
}

// BinaryExpr is a value-level binary operation.
type BinaryExpr struct {
	Op    string
	Left  Expr
	Right Expr
}

// UnaryExpr is a value-level unary operation.
type UnaryExpr struct {
	Op string
	X  Expr
}

// PackExpansion expands a parameter pack: X... .
type PackExpansion struct {
	X Expr
}

// DependentTemplate instantiates a template member of a dependent base:
// Base::template Member<Args...>.
type DependentTemplate struct {
	Base   Expr
	Member string
	Args   []Expr
}

func (IntLiteral) exprNode()        {}
func (BoolLiteral) exprNode()       {}
func (CharLiteral) exprNode()       {}
func (TypeName) exprNode()          {}
func (ParamRef) exprNode()          {}
func (TemplateInstance) exprNode()  {}
func (MemberType) exprNode()        {}
func (MemberValue) exprNode()       {}
func (BinaryExpr) exprNode()        {}
func (UnaryExpr) exprNode()         {}
func (PackExpansion) exprNode()     {}
func (DependentTemplate) exprNode() {}

// TemplateParam is one parameter of a template declaration.
type TemplateParam struct {
	Name     string
	Kind     Kind
	Variadic bool
}

// Member is a declaration inside a template struct body.
type Member interface {
	memberNode()
}

// TypeAliasMember is `using Name = Target;`.
type TypeAliasMember struct {
	Name   string
	Target Expr
}

// ValueMember is `static constexpr <kind> Name = Value;`.
type ValueMember struct {
	Name  string
	Kind  Kind
	Value Expr
}

// AssertMember is a static_assert inside a template body, checked at
// instantiation time.
type AssertMember struct {
	Cond    Expr
	Message string
}

// TemplateMember is a nested template struct, as in the metafunction
// class pattern's apply member.
type TemplateMember struct {
	Name    string
	Params  []TemplateParam
	Members []Member
}

func (TypeAliasMember) memberNode() {}
func (ValueMember) memberNode()     {}
func (AssertMember) memberNode()    {}
func (TemplateMember) memberNode()  {}

// Decl is a toplevel declaration in a compilation unit.
type Decl interface {
	declNode()
}

// TemplateDecl declares or specializes a template struct. A nil
// SpecArgs means the primary template; Forward means a bare forward
// declaration with no body.
type TemplateDecl struct {
	Name     string
	Params   []TemplateParam
	SpecArgs []Expr
	Members  []Member
	Forward  bool
}

// UsingDecl is a toplevel `using Name = Target;`.
type UsingDecl struct {
	Name   string
	Target Expr
}

// ConstexprDecl is a toplevel `constexpr <kind> Name = Value;`.
type ConstexprDecl struct {
	Name  string
	Kind  Kind
	Value Expr
}

// StaticAssertDecl is a toplevel static_assert.
type StaticAssertDecl struct {
	Cond    Expr
	Message string
}

func (*TemplateDecl) declNode()     {}
func (*UsingDecl) declNode()        {}
func (*ConstexprDecl) declNode()    {}
func (*StaticAssertDecl) declNode() {}

// Unit is one emitted C++ header.
type Unit struct {
	Includes []string
	Decls    []Decl
}

// AddInclude records an include once, preserving first-seen order.
func (u *Unit) AddInclude(path string) {
	for _, inc := range u.Includes {
		if inc == path {
			return
		}
	}
	u.Includes = append(u.Includes, path)
}

// Add appends a toplevel declaration.
func (u *Unit) Add(d Decl) {
	u.Decls = append(u.Decls, d)
}
