package ast

import (
	"github.com/sgammon/closure-templates-sub000/internal/source"
	"github.com/sgammon/closure-templates-sub000/internal/types"
)

// BinaryOp identifies a binary operator.
type BinaryOp int

const (
	OpPlus BinaryOp = iota
	OpMinus
	OpTimes
	OpDiv
	OpMod
	OpLess
	OpLessEq
	OpGreater
	OpGreaterEq
	OpEqual
	OpNotEqual
	OpAnd
	OpOr
)

func (op BinaryOp) String() string {
	switch op {
	case OpPlus:
		return "+"
	case OpMinus:
		return "-"
	case OpTimes:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpLess:
		return "<"
	case OpLessEq:
		return "<="
	case OpGreater:
		return ">"
	case OpGreaterEq:
		return ">="
	case OpEqual:
		return "=="
	case OpNotEqual:
		return "!="
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	default:
		return "?"
	}
}

// UnaryOp identifies a unary operator.
type UnaryOp int

const (
	OpNot UnaryOp = iota
	OpNeg
)

func (op UnaryOp) String() string {
	if op == OpNot {
		return "not"
	}
	return "-"
}

// NullLiteral represents the `null` literal
type NullLiteral struct {
	source.Location
}

func (n *NullLiteral) INode()                {}
func (n *NullLiteral) ExprNode()             {}
func (n *NullLiteral) Loc() *source.Location { return &n.Location }

// BoolLiteral represents `true` / `false`
type BoolLiteral struct {
	Value bool
	source.Location
}

func (b *BoolLiteral) INode()                {}
func (b *BoolLiteral) ExprNode()             {}
func (b *BoolLiteral) Loc() *source.Location { return &b.Location }

// IntLiteral represents an integer literal
type IntLiteral struct {
	Value int64
	source.Location
}

func (i *IntLiteral) INode()                {}
func (i *IntLiteral) ExprNode()             {}
func (i *IntLiteral) Loc() *source.Location { return &i.Location }

// FloatLiteral represents a floating-point literal
type FloatLiteral struct {
	Value float64
	source.Location
}

func (f *FloatLiteral) INode()                {}
func (f *FloatLiteral) ExprNode()             {}
func (f *FloatLiteral) Loc() *source.Location { return &f.Location }

// StringLiteral represents a string literal
type StringLiteral struct {
	Value string
	source.Location
}

func (s *StringLiteral) INode()                {}
func (s *StringLiteral) ExprNode()             {}
func (s *StringLiteral) Loc() *source.Location { return &s.Location }

// GlobalRef represents a reference to a compile-time global. Globals arrive
// already typed from the registry (enum values, plugin constants).
type GlobalRef struct {
	Name string
	Type types.SoyType
	source.Location
}

func (g *GlobalRef) INode()                {}
func (g *GlobalRef) ExprNode()             {}
func (g *GlobalRef) Loc() *source.Location { return &g.Location }

// VarRef represents a `$var` reference, linked to its declaration
type VarRef struct {
	Name string
	Defn *VarDefn
	source.Location
}

func (v *VarRef) INode()                {}
func (v *VarRef) ExprNode()             {}
func (v *VarRef) Loc() *source.Location { return &v.Location }

// ListLiteral represents `[a, b, c]`
type ListLiteral struct {
	Items []Expr
	source.Location
}

func (l *ListLiteral) INode()                {}
func (l *ListLiteral) ExprNode()             {}
func (l *ListLiteral) Loc() *source.Location { return &l.Location }

// RecordField is one `key: value` entry of a record literal.
type RecordField struct {
	Key   string
	Value Expr
}

// RecordLiteral represents `record(a: 1, b: 'x')`. Fields keep source order;
// a later duplicate key overwrites an earlier one when the record type is
// built.
type RecordLiteral struct {
	Fields []RecordField
	source.Location
}

func (r *RecordLiteral) INode()                {}
func (r *RecordLiteral) ExprNode()             {}
func (r *RecordLiteral) Loc() *source.Location { return &r.Location }

// MapEntry is one `key: value` entry of a map literal.
type MapEntry struct {
	Key   Expr
	Value Expr
}

// MapLiteral represents `map(k: v, ...)`
type MapLiteral struct {
	Entries []MapEntry
	source.Location
}

func (m *MapLiteral) INode()                {}
func (m *MapLiteral) ExprNode()             {}
func (m *MapLiteral) Loc() *source.Location { return &m.Location }

// FieldAccess represents `base.field` or null-safe `base?.field`
type FieldAccess struct {
	Base     Expr
	Field    string
	NullSafe bool
	source.Location
}

func (f *FieldAccess) INode()                {}
func (f *FieldAccess) ExprNode()             {}
func (f *FieldAccess) Loc() *source.Location { return &f.Location }

// ItemAccess represents `base[key]` or null-safe `base?[key]`
type ItemAccess struct {
	Base     Expr
	Key      Expr
	NullSafe bool
	source.Location
}

func (i *ItemAccess) INode()                {}
func (i *ItemAccess) ExprNode()             {}
func (i *ItemAccess) Loc() *source.Location { return &i.Location }

// UnaryExpr represents `not x` and unary `-x`
type UnaryExpr struct {
	Op UnaryOp
	X  Expr
	source.Location
}

func (u *UnaryExpr) INode()                {}
func (u *UnaryExpr) ExprNode()             {}
func (u *UnaryExpr) Loc() *source.Location { return &u.Location }

// BinaryExpr represents all binary operator expressions
type BinaryExpr struct {
	Op BinaryOp
	X  Expr // left operand
	Y  Expr // right operand
	source.Location
}

func (b *BinaryExpr) INode()                {}
func (b *BinaryExpr) ExprNode()             {}
func (b *BinaryExpr) Loc() *source.Location { return &b.Location }

// ConditionalExpr represents the ternary `cond ? then : else`
type ConditionalExpr struct {
	Cond Expr
	Then Expr
	Else Expr
	source.Location
}

func (c *ConditionalExpr) INode()                {}
func (c *ConditionalExpr) ExprNode()             {}
func (c *ConditionalExpr) Loc() *source.Location { return &c.Location }

// NullCoalescingExpr represents `x ?: fallback`
type NullCoalescingExpr struct {
	X        Expr
	Fallback Expr
	source.Location
}

func (n *NullCoalescingExpr) INode()                {}
func (n *NullCoalescingExpr) ExprNode()             {}
func (n *NullCoalescingExpr) Loc() *source.Location { return &n.Location }

// FunctionCall represents `fn(args...)` for both built-ins and declared
// plugin functions. Decl is nil for compiler built-ins.
type FunctionCall struct {
	Name string
	Args []Expr
	Decl *FunctionDecl
	source.Location
}

func (f *FunctionCall) INode()                {}
func (f *FunctionCall) ExprNode()             {}
func (f *FunctionCall) Loc() *source.Location { return &f.Location }

// FunctionDecl describes a user-declared (plugin) function with one or more
// textual signature annotations of the form "(paramTy, ...) -> retTy".
// Signatures are parsed into lattice types lazily by the resolver and cached
// by *Signature identity.
type FunctionDecl struct {
	Name       string
	Signatures []*Signature
}

// Signature is one textual overload of a declared function.
type Signature struct {
	ParamTypes []string
	ReturnType string
}

// ProtoInitArg is one named argument of a proto construction expression.
type ProtoInitArg struct {
	Name  string
	Value Expr
	source.Location
}

// ProtoInit represents proto construction: `my.pkg.Message(field: value, ...)`
type ProtoInit struct {
	TypeName string
	Args     []ProtoInitArg
	source.Location
}

func (p *ProtoInit) INode()                {}
func (p *ProtoInit) ExprNode()             {}
func (p *ProtoInit) Loc() *source.Location { return &p.Location }

// VeLiteral represents `ve(ElementName)`, resolved against the logging config
type VeLiteral struct {
	Name string
	source.Location
}

func (v *VeLiteral) INode()                {}
func (v *VeLiteral) ExprNode()             {}
func (v *VeLiteral) Loc() *source.Location { return &v.Location }
