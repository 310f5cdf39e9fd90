package hm

import "context"

// Expression is basically an AST node
type Expression interface {
	Body() Expression
}

// Namer is anything that knows its own name
type Namer interface {
	Name() string
}

// Typer is an Expression node that knows its own Type
type Typer interface {
	Type() Type
}

// Inferer is an Expression that can infer its own Type given an Env
type Inferer interface {
	Infer(context.Context, Env, Fresher) (Type, error)
}
