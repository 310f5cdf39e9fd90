package pytmp

import (
	"context"

	"github.com/pytmp/pytmp/pkg/hm"
)

// Node is any element of the syntax tree.
type Node interface {
	GetSourceLocation() *SourceLocation
}

// Expr is an expression node. After elaboration every expression carries
// exactly one static type, stored via the InferredTypeHolder.
type Expr interface {
	Node
	hm.Expression

	// Infer resolves names and computes the node's static type
	Infer(ctx context.Context, env *Env, fresh hm.Fresher) (hm.Type, error)

	// Eval reduces the node to a value, or to a symbolic value when it
	// depends on an unbound generic parameter
	Eval(ctx context.Context, env *EvalEnv) (Value, error)

	// SetInferredType stores the inferred type for this node
	SetInferredType(hm.Type)

	// GetInferredType retrieves the inferred type for this node
	GetInferredType() hm.Type
}

// Stmt is a statement node. Statements are elaborated and evaluated by
// the driver passes in infer.go and eval.go.
type Stmt interface {
	Node
	stmtNode()
}

// Decl is a top-level definition.
type Decl interface {
	Node
	DeclName() string
}

// InferredTypeHolder is embedded in expression nodes to store inferred types
type InferredTypeHolder struct {
	inferredType hm.Type
}

func (h *InferredTypeHolder) SetInferredType(t hm.Type) {
	h.inferredType = t
}

func (h *InferredTypeHolder) GetInferredType() hm.Type {
	return h.inferredType
}
