package pytmp

// AssignStmt binds a name to a value. Single static assignment: a name
// is bound once per scope and never reassigned.
type AssignStmt struct {
	Name    string
	NameLoc *SourceLocation
	Value   Expr
}

func (s *AssignStmt) GetSourceLocation() *SourceLocation { return s.NameLoc }
func (s *AssignStmt) stmtNode()                          {}

// ReturnStmt returns a value from the enclosing function.
type ReturnStmt struct {
	Value Expr
	Loc   *SourceLocation
}

func (s *ReturnStmt) GetSourceLocation() *SourceLocation { return s.Loc }
func (s *ReturnStmt) stmtNode()                          {}

// IfStmt is a two-way branch. The then-block must terminate with a
// return so that the statement lowers mechanically to specialization
// dispatch; the else-block is optional.
type IfStmt struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
	Loc  *SourceLocation
}

func (s *IfStmt) GetSourceLocation() *SourceLocation { return s.Loc }
func (s *IfStmt) stmtNode()                          {}

// AssertStmt checks a boolean condition during compile-time evaluation
// and lowers to a static_assert in generated code.
type AssertStmt struct {
	Cond    Expr
	Message string
	Loc     *SourceLocation
}

func (s *AssertStmt) GetSourceLocation() *SourceLocation { return s.Loc }
func (s *AssertStmt) stmtNode()                          {}
