package narrowing

import (
	"github.com/sgammon/closure-templates-sub000/internal/frontend/ast"
	"github.com/sgammon/closure-templates-sub000/internal/semantics/exprid"
	"github.com/sgammon/closure-templates-sub000/internal/types"
)

// Constraints maps expression identities to the narrower type known to hold
// when the analyzed condition evaluates one way.
type Constraints = exprid.Map[types.SoyType]

// Analyzer derives narrowing constraints from boolean-context expressions.
// typeOf must return the resolved type of an already-visited expression
// (declared type adjusted by any active substitutions).
type Analyzer struct {
	typeOf func(ast.Expr) types.SoyType
}

// NewAnalyzer creates an analyzer reading resolved types through typeOf.
func NewAnalyzer(typeOf func(ast.Expr) types.SoyType) *Analyzer {
	return &Analyzer{typeOf: typeOf}
}

// Analyze computes the positive ("condition is true") and negative
// ("condition is false") constraint maps for a condition.
func (a *Analyzer) Analyze(cond ast.Expr) (positive, negative *Constraints) {
	switch n := cond.(type) {
	case *ast.UnaryExpr:
		if n.Op == ast.OpNot {
			// Negation swaps the branches.
			pos, neg := a.Analyze(n.X)
			return neg, pos
		}
	case *ast.BinaryExpr:
		switch n.Op {
		case ast.OpAnd:
			leftPos, leftNeg := a.Analyze(n.X)
			rightPos, rightNeg := a.Analyze(n.Y)
			// Both operands are known true; a key constrained by both sides
			// keeps the first side's constraint. Only nullability is tracked,
			// so no further narrowing is attempted for overlapping keys.
			// not(A and B) only guarantees the weaker of the two exclusions.
			return unionConstraints(leftPos, rightPos), intersectConstraints(leftNeg, rightNeg)
		case ast.OpOr:
			leftPos, leftNeg := a.Analyze(n.X)
			rightPos, rightNeg := a.Analyze(n.Y)
			return intersectConstraints(leftPos, rightPos), unionConstraints(leftNeg, rightNeg)
		case ast.OpEqual:
			if operand, ok := nullComparisonOperand(n); ok {
				return a.nullCheck(operand)
			}
		case ast.OpNotEqual:
			if operand, ok := nullComparisonOperand(n); ok {
				pos, neg := a.nullCheck(operand)
				return neg, pos
			}
		}
		return exprid.NewMap[types.SoyType](), exprid.NewMap[types.SoyType]()
	case *ast.FunctionCall:
		if len(n.Args) == 1 {
			switch n.Name {
			case "isNull":
				return a.nullCheck(n.Args[0])
			case "isNonnull":
				pos, neg := a.nullCheck(n.Args[0])
				return neg, pos
			}
		}
	case *ast.ConditionalExpr, *ast.NullCoalescingExpr:
		// Conditions that are themselves conditional expressions are not
		// analyzed recursively.
		return exprid.NewMap[types.SoyType](), exprid.NewMap[types.SoyType]()
	}
	return a.truthyCheck(cond)
}

// nullCheck builds the maps for `operand == null`: the operand is exactly
// Null when true and provably non-null when false.
func (a *Analyzer) nullCheck(operand ast.Expr) (positive, negative *Constraints) {
	positive = exprid.NewMap[types.SoyType]()
	negative = exprid.NewMap[types.SoyType]()
	positive.Put(operand, types.NullType)
	negative.Put(operand, types.RemoveNull(a.typeOf(operand)))
	return positive, negative
}

// truthyCheck handles a bare expression in boolean context. For a nullable
// expression, truthiness implies non-null; falsiness proves nothing (the
// value could be '' or 0 rather than null), so the negative map stays empty.
func (a *Analyzer) truthyCheck(cond ast.Expr) (positive, negative *Constraints) {
	positive = exprid.NewMap[types.SoyType]()
	negative = exprid.NewMap[types.SoyType]()
	if t := a.typeOf(cond); t != nil && types.IsNullable(t) {
		positive.Put(cond, types.RemoveNull(t))
	}
	return positive, negative
}

// nullComparisonOperand returns the non-null operand of an equality whose
// other side is the null literal.
func nullComparisonOperand(n *ast.BinaryExpr) (ast.Expr, bool) {
	if _, ok := n.Y.(*ast.NullLiteral); ok {
		return n.X, true
	}
	if _, ok := n.X.(*ast.NullLiteral); ok {
		return n.Y, true
	}
	return nil, false
}

// unionConstraints merges two maps keeping every key; for a key present on
// both sides the first side's constraint wins.
func unionConstraints(first, second *Constraints) *Constraints {
	merged := exprid.NewMap[types.SoyType]()
	first.ForEach(func(key ast.Expr, typ types.SoyType) {
		merged.Put(key, typ)
	})
	second.ForEach(func(key ast.Expr, typ types.SoyType) {
		if _, ok := merged.Get(key); !ok {
			merged.Put(key, typ)
		}
	})
	return merged
}

// intersectConstraints keeps only keys present on both sides, mapped to the
// lowest common type of the two constraints.
func intersectConstraints(first, second *Constraints) *Constraints {
	merged := exprid.NewMap[types.SoyType]()
	first.ForEach(func(key ast.Expr, typ types.SoyType) {
		if other, ok := second.Get(key); ok {
			merged.Put(key, types.LowestCommonType(typ, other))
		}
	})
	return merged
}
