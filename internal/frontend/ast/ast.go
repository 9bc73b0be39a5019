package ast

import (
	"github.com/sgammon/closure-templates-sub000/internal/source"
	"github.com/sgammon/closure-templates-sub000/internal/types"
)

// Node is the base interface for all AST nodes
type Node interface {
	INode()
	Loc() *source.Location
}

// Expr represents any node that produces a value. Resolved types are not
// stored on the nodes; the typechecker owns a side table keyed by node so
// the tree stays immutable once parsed.
type Expr interface {
	Node
	ExprNode()
}

// Stmt represents any template command node
type Stmt interface {
	Node
	StmtNode()
}

// VarKind identifies where a variable was declared.
type VarKind int

const (
	ParamVar VarKind = iota // template {@param}
	StateVar                // template {@state}
	LetVar                  // {let $x: ...}
	LoopVar                 // {for $x in ...}
	InjectedVar             // {@inject}
)

func (k VarKind) String() string {
	switch k {
	case ParamVar:
		return "param"
	case StateVar:
		return "state"
	case LetVar:
		return "let"
	case LoopVar:
		return "loop variable"
	case InjectedVar:
		return "injected param"
	default:
		return "var"
	}
}

// VarDefn is the declaration site a VarRef points back to. DeclaredType is
// attached by the (external) header type resolver before this engine runs;
// it is nil for declarations whose type must be inferred from a default
// value expression.
type VarDefn struct {
	Name         string
	Kind         VarKind
	DeclaredType types.SoyType
	Optional     bool // param declared with a '?' or a default value
	Default      Expr // default value expression, params/state only
	source.Location
}

func (v *VarDefn) INode()                {}
func (v *VarDefn) Loc() *source.Location { return &v.Location }
