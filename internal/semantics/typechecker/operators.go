package typechecker

import (
	"fmt"

	"github.com/sgammon/closure-templates-sub000/internal/diagnostics"
	"github.com/sgammon/closure-templates-sub000/internal/frontend/ast"
	"github.com/sgammon/closure-templates-sub000/internal/types"
)

func (c *Checker) visitUnaryExpr(n *ast.UnaryExpr) types.SoyType {
	operand := c.visitExpr(n.X)
	switch n.Op {
	case ast.OpNot:
		return c.setType(n, types.BoolType)
	case ast.OpNeg:
		if types.IsNumeric(operand) || operand.Kind() == types.UnknownKind || operand.Kind() == types.AnyKind {
			return c.setType(n, operand)
		}
		c.bag.Add(diagnostics.NewError(fmt.Sprintf("cannot negate a value of type '%s'", operand)).
			WithCode(diagnostics.ErrIncompatibleOperands).
			WithPrimaryLabel(n.Loc(), "expected int or float"))
		return c.setType(n, types.UnknownType)
	default:
		panic(fmt.Sprintf("typechecker: unhandled unary operator %v", n.Op))
	}
}

func (c *Checker) visitBinaryExpr(n *ast.BinaryExpr) types.SoyType {
	switch n.Op {
	case ast.OpAnd, ast.OpOr:
		return c.visitLogicalExpr(n)
	}

	left := c.visitExpr(n.X)
	right := c.visitExpr(n.Y)

	switch n.Op {
	case ast.OpPlus:
		return c.setType(n, c.plusType(n, left, right))
	case ast.OpMinus, ast.OpTimes, ast.OpMod:
		return c.setType(n, c.arithmeticType(n, left, right))
	case ast.OpDiv:
		// Division always yields float, even when the operands mismatch.
		if arithmeticResult(left, right) == nil {
			c.reportIncompatibleOperands(n, left, right)
		}
		return c.setType(n, types.FloatType)
	case ast.OpLess, ast.OpLessEq, ast.OpGreater, ast.OpGreaterEq:
		if !orderable(left, right) {
			c.reportIncompatibleOperands(n, left, right)
		}
		return c.setType(n, types.BoolType)
	case ast.OpEqual, ast.OpNotEqual:
		if !equalityComparable(left, right) {
			c.reportIncompatibleOperands(n, left, right)
		}
		return c.setType(n, types.BoolType)
	default:
		panic(fmt.Sprintf("typechecker: unhandled binary operator %v", n.Op))
	}
}

// visitLogicalExpr types `and`/`or`. The left operand's narrowing
// constraints are applied before the right operand is visited, so the right
// side sees the types proven by short-circuit evaluation.
func (c *Checker) visitLogicalExpr(n *ast.BinaryExpr) types.SoyType {
	c.visitExpr(n.X)
	positive, negative := c.analyzer.Analyze(n.X)

	saved := c.substitutions
	if n.Op == ast.OpAnd {
		// The right side only evaluates when the left was true.
		c.applyConstraints(positive)
	} else {
		// The right side only evaluates when the left was false.
		c.applyConstraints(negative)
	}
	c.visitExpr(n.Y)
	c.substitutions = saved

	if n.Op == ast.OpOr {
		if isConstantExpr(n.X) || isConstantExpr(n.Y) {
			c.bag.Warn(diagnostics.NewWarning("constant operand in 'or' expression").
				WithCode(diagnostics.WarnConstantOrOperand).
				WithPrimaryLabel(n.Loc(), "one side of this 'or' is a compile-time constant").
				WithHelp("use the '?:' operator for defaulting, or simplify the condition"))
		}
	}
	return c.setType(n, types.BoolType)
}

// plusType implements the `+` operator rule, which unlike the other
// arithmetic operators supports string concatenation.
func (c *Checker) plusType(n *ast.BinaryExpr, left, right types.SoyType) types.SoyType {
	if isStringish(left) || isStringish(right) {
		return types.StringType
	}
	if t := arithmeticResult(left, right); t != nil {
		return t
	}
	c.reportIncompatibleOperands(n, left, right)
	return types.UnknownType
}

func (c *Checker) arithmeticType(n *ast.BinaryExpr, left, right types.SoyType) types.SoyType {
	if t := arithmeticResult(left, right); t != nil {
		return t
	}
	c.reportIncompatibleOperands(n, left, right)
	return types.UnknownType
}

// arithmeticResult returns the numeric result type of an arithmetic
// combination, or nil when the operands do not combine.
func arithmeticResult(left, right types.SoyType) types.SoyType {
	if left.Kind() == types.UnknownKind || left.Kind() == types.AnyKind || left.Kind() == types.ErrorKind ||
		right.Kind() == types.UnknownKind || right.Kind() == types.AnyKind || right.Kind() == types.ErrorKind {
		return types.UnknownType
	}
	if !types.IsNumeric(left) || !types.IsNumeric(right) {
		return nil
	}
	if left.Kind() == types.FloatKind || right.Kind() == types.FloatKind {
		return types.FloatType
	}
	return types.IntType
}

// orderable implements the compatibility rule for `< <= > >=`: numeric pairs
// and string pairs order; unknown passes.
func orderable(left, right types.SoyType) bool {
	if anyUnknown(left, right) {
		return true
	}
	if types.IsNumeric(left) && types.IsNumeric(right) {
		return true
	}
	return isStringish(left) && isStringish(right)
}

// equalityComparable implements the looser compatibility rule for `==`/`!=`:
// comparing against null is always legal, as is any pair sharing a possible
// runtime type.
func equalityComparable(left, right types.SoyType) bool {
	if left.Kind() == types.NullKind || right.Kind() == types.NullKind {
		return true
	}
	if anyUnknown(left, right) {
		return true
	}
	if types.IsNumeric(left) && types.IsNumeric(right) {
		return true
	}
	if isStringish(left) && isStringish(right) {
		return true
	}
	return types.IsAssignableFrom(left, right) || types.IsAssignableFrom(right, left)
}

func anyUnknown(ts ...types.SoyType) bool {
	for _, t := range ts {
		switch t.Kind() {
		case types.UnknownKind, types.AnyKind, types.ErrorKind:
			return true
		}
	}
	return false
}

func isStringish(t types.SoyType) bool {
	return t.Kind() == types.StringKind || types.IsSanitized(t)
}

func (c *Checker) reportIncompatibleOperands(n *ast.BinaryExpr, left, right types.SoyType) {
	c.bag.Add(diagnostics.NewError(fmt.Sprintf("incompatible operand types '%s' and '%s' for operator '%s'", left, right, n.Op)).
		WithCode(diagnostics.ErrIncompatibleOperands).
		WithPrimaryLabel(n.Loc(), "operands do not combine"))
}

// isConstantExpr reports whether an expression is a compile-time constant:
// a literal, or a collection literal / arithmetic expression built purely
// from constants.
func isConstantExpr(e ast.Expr) bool {
	switch n := e.(type) {
	case *ast.NullLiteral, *ast.BoolLiteral, *ast.IntLiteral, *ast.FloatLiteral, *ast.StringLiteral:
		return true
	case *ast.ListLiteral:
		for _, item := range n.Items {
			if !isConstantExpr(item) {
				return false
			}
		}
		return true
	case *ast.RecordLiteral:
		for _, f := range n.Fields {
			if !isConstantExpr(f.Value) {
				return false
			}
		}
		return true
	case *ast.MapLiteral:
		for _, entry := range n.Entries {
			if !isConstantExpr(entry.Key) || !isConstantExpr(entry.Value) {
				return false
			}
		}
		return true
	case *ast.UnaryExpr:
		return isConstantExpr(n.X)
	case *ast.BinaryExpr:
		return isConstantExpr(n.X) && isConstantExpr(n.Y)
	default:
		return false
	}
}
