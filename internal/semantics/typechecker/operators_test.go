package typechecker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgammon/closure-templates-sub000/internal/diagnostics"
	"github.com/sgammon/closure-templates-sub000/internal/frontend/ast"
	"github.com/sgammon/closure-templates-sub000/internal/types"
)

func binary(op ast.BinaryOp, x, y ast.Expr) *ast.BinaryExpr {
	return &ast.BinaryExpr{Op: op, X: x, Y: y}
}

func TestPlusOperator(t *testing.T) {
	tests := []struct {
		name    string
		left    types.SoyType
		right   types.SoyType
		want    types.SoyType
		wantErr bool
	}{
		{"int plus int", types.IntType, types.IntType, types.IntType, false},
		{"int plus float", types.IntType, types.FloatType, types.FloatType, false},
		{"string concat", types.StringType, types.IntType, types.StringType, false},
		{"html concat", types.HtmlType, types.IntType, types.StringType, false},
		{"unknown passes", types.UnknownType, types.IntType, types.UnknownType, false},
		{"bool plus int", types.BoolType, types.IntType, types.UnknownType, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, bag, _ := newTestChecker()
			l := param("l", tt.left)
			r := param("r", tt.right)
			expr := binary(ast.OpPlus, ref(l), ref(r))
			checkTemplate(c, []*ast.VarDefn{l, r}, printStmt(expr))

			assert.Same(t, tt.want, typeOf(t, c, expr))
			if tt.wantErr {
				assert.Contains(t, diagnosticCodes(bag), diagnostics.ErrIncompatibleOperands)
			} else {
				assert.False(t, bag.HasErrors())
			}
		})
	}
}

func TestArithmeticOperators(t *testing.T) {
	c, bag, _ := newTestChecker()
	i := param("i", types.IntType)
	f := param("f", types.FloatType)

	intExpr := binary(ast.OpMinus, ref(i), ref(i))
	floatExpr := binary(ast.OpTimes, ref(i), ref(f))
	modExpr := binary(ast.OpMod, ref(i), ref(i))
	checkTemplate(c, []*ast.VarDefn{i, f}, printStmt(intExpr), printStmt(floatExpr), printStmt(modExpr))

	assert.False(t, bag.HasErrors())
	assert.Same(t, types.IntType, typeOf(t, c, intExpr))
	assert.Same(t, types.FloatType, typeOf(t, c, floatExpr))
	assert.Same(t, types.IntType, typeOf(t, c, modExpr))
}

func TestMinusOnStringsReports(t *testing.T) {
	c, bag, _ := newTestChecker()
	s := param("s", types.StringType)

	expr := binary(ast.OpMinus, ref(s), ref(s))
	checkTemplate(c, []*ast.VarDefn{s}, printStmt(expr))

	assert.Contains(t, diagnosticCodes(bag), diagnostics.ErrIncompatibleOperands)
	assert.Same(t, types.UnknownType, typeOf(t, c, expr))
}

func TestDivisionAlwaysFloat(t *testing.T) {
	t.Run("int operands", func(t *testing.T) {
		c, bag, _ := newTestChecker()
		i := param("i", types.IntType)
		expr := binary(ast.OpDiv, ref(i), ref(i))
		checkTemplate(c, []*ast.VarDefn{i}, printStmt(expr))

		assert.False(t, bag.HasErrors())
		assert.Same(t, types.FloatType, typeOf(t, c, expr))
	})

	t.Run("bad operands still float", func(t *testing.T) {
		c, bag, _ := newTestChecker()
		s := param("s", types.StringType)
		expr := binary(ast.OpDiv, ref(s), ref(s))
		checkTemplate(c, []*ast.VarDefn{s}, printStmt(expr))

		assert.Contains(t, diagnosticCodes(bag), diagnostics.ErrIncompatibleOperands)
		assert.Same(t, types.FloatType, typeOf(t, c, expr))
	})
}

func TestOrderingOperators(t *testing.T) {
	tests := []struct {
		name    string
		left    types.SoyType
		right   types.SoyType
		wantErr bool
	}{
		{"numeric pair", types.IntType, types.FloatType, false},
		{"string pair", types.StringType, types.StringType, false},
		{"string and int", types.StringType, types.IntType, true},
		{"unknown passes", types.UnknownType, types.BoolType, false},
		{"bools do not order", types.BoolType, types.BoolType, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, bag, _ := newTestChecker()
			l := param("l", tt.left)
			r := param("r", tt.right)
			expr := binary(ast.OpLess, ref(l), ref(r))
			checkTemplate(c, []*ast.VarDefn{l, r}, printStmt(expr))

			assert.Same(t, types.BoolType, typeOf(t, c, expr))
			assert.Equal(t, tt.wantErr, bag.HasErrors(), "codes: %v", diagnosticCodes(bag))
		})
	}
}

func TestEqualityOperators(t *testing.T) {
	tests := []struct {
		name    string
		left    types.SoyType
		right   types.SoyType
		wantErr bool
	}{
		{"same type", types.IntType, types.IntType, false},
		{"numeric pair", types.IntType, types.FloatType, false},
		// Null comparison is always legal, even against non-nullable types.
		{"null against list", types.NullType, types.NewList(types.IntType), false},
		{"nullable against its base", types.UnionOf(types.StringType, types.NullType), types.StringType, false},
		{"list against int", types.NewList(types.IntType), types.IntType, true},
	}
	// A declaration cannot carry the exact type null, so null operands are
	// driven by a literal rather than a param.
	operand := func(name string, typ types.SoyType) (ast.Expr, []*ast.VarDefn) {
		if typ.Kind() == types.NullKind {
			return &ast.NullLiteral{}, nil
		}
		p := param(name, typ)
		return ref(p), []*ast.VarDefn{p}
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, bag, _ := newTestChecker()
			l, lp := operand("l", tt.left)
			r, rp := operand("r", tt.right)
			expr := binary(ast.OpEqual, l, r)
			checkTemplate(c, append(lp, rp...), printStmt(expr))

			assert.Same(t, types.BoolType, typeOf(t, c, expr))
			assert.Equal(t, tt.wantErr, bag.HasErrors(), "codes: %v", diagnosticCodes(bag))
		})
	}
}

func TestUnaryOperators(t *testing.T) {
	t.Run("not yields bool", func(t *testing.T) {
		c, bag, _ := newTestChecker()
		s := param("s", types.StringType)
		expr := &ast.UnaryExpr{Op: ast.OpNot, X: ref(s)}
		checkTemplate(c, []*ast.VarDefn{s}, printStmt(expr))

		assert.False(t, bag.HasErrors())
		assert.Same(t, types.BoolType, typeOf(t, c, expr))
	})

	t.Run("negation preserves the numeric type", func(t *testing.T) {
		c, bag, _ := newTestChecker()
		f := param("f", types.FloatType)
		expr := &ast.UnaryExpr{Op: ast.OpNeg, X: ref(f)}
		checkTemplate(c, []*ast.VarDefn{f}, printStmt(expr))

		assert.False(t, bag.HasErrors())
		assert.Same(t, types.FloatType, typeOf(t, c, expr))
	})

	t.Run("negating a string reports", func(t *testing.T) {
		c, bag, _ := newTestChecker()
		s := param("s", types.StringType)
		expr := &ast.UnaryExpr{Op: ast.OpNeg, X: ref(s)}
		checkTemplate(c, []*ast.VarDefn{s}, printStmt(expr))

		assert.Contains(t, diagnosticCodes(bag), diagnostics.ErrIncompatibleOperands)
		assert.Same(t, types.UnknownType, typeOf(t, c, expr))
	})
}

func TestLogicalOperatorsYieldBool(t *testing.T) {
	c, bag, _ := newTestChecker()
	a := param("a", types.BoolType)
	b := param("b", types.BoolType)

	andExpr := binary(ast.OpAnd, ref(a), ref(b))
	checkTemplate(c, []*ast.VarDefn{a, b}, printStmt(andExpr))

	assert.False(t, bag.HasErrors())
	assert.Same(t, types.BoolType, typeOf(t, c, andExpr))
}

func TestConstantOrOperandLint(t *testing.T) {
	t.Run("constant right operand warns", func(t *testing.T) {
		c, bag, _ := newTestChecker()
		a := param("a", types.BoolType)
		expr := binary(ast.OpOr, ref(a), &ast.BoolLiteral{Value: true})
		checkTemplate(c, []*ast.VarDefn{a}, printStmt(expr))

		require.False(t, bag.HasErrors())
		assert.Equal(t, 1, bag.WarningCount())
		assert.Contains(t, diagnosticCodes(bag), diagnostics.WarnConstantOrOperand)
	})

	t.Run("constant left operand warns", func(t *testing.T) {
		c, bag, _ := newTestChecker()
		a := param("a", types.BoolType)
		expr := binary(ast.OpOr, intLit(0), ref(a))
		checkTemplate(c, []*ast.VarDefn{a}, printStmt(expr))

		assert.Equal(t, 1, bag.WarningCount())
	})

	t.Run("variable operands stay silent", func(t *testing.T) {
		c, bag, _ := newTestChecker()
		a := param("a", types.BoolType)
		b := param("b", types.BoolType)
		expr := binary(ast.OpOr, ref(a), ref(b))
		checkTemplate(c, []*ast.VarDefn{a, b}, printStmt(expr))

		assert.Equal(t, 0, bag.WarningCount())
	})

	t.Run("and does not warn on constants", func(t *testing.T) {
		c, bag, _ := newTestChecker()
		a := param("a", types.BoolType)
		expr := binary(ast.OpAnd, ref(a), &ast.BoolLiteral{Value: true})
		checkTemplate(c, []*ast.VarDefn{a}, printStmt(expr))

		assert.Equal(t, 0, bag.WarningCount())
	})
}
