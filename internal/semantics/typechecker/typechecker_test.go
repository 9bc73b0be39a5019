package typechecker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgammon/closure-templates-sub000/internal/diagnostics"
	"github.com/sgammon/closure-templates-sub000/internal/frontend/ast"
	"github.com/sgammon/closure-templates-sub000/internal/types"
)

func TestIfNarrowsNullableParam(t *testing.T) {
	c, bag, _ := newTestChecker()
	x := param("x", nullableString())
	condRef := ref(x)
	thenRef := ref(x)
	elseRef := ref(x)

	checkTemplate(c, []*ast.VarDefn{x},
		&ast.IfStmt{
			Branches: []ast.IfBranch{{
				Cond: notNull(condRef),
				Body: []ast.Stmt{printStmt(thenRef)},
			}},
			Else: []ast.Stmt{printStmt(elseRef)},
		},
	)

	require.False(t, bag.HasErrors(), "unexpected diagnostics: %v", diagnosticCodes(bag))
	// The condition itself sees the unnarrowed declared type.
	assert.True(t, nullableString().Equals(typeOf(t, c, condRef)))
	assert.Same(t, types.StringType, typeOf(t, c, thenRef))
	assert.Same(t, types.NullType, typeOf(t, c, elseRef))
}

func TestIfNarrowingEndsAfterStatement(t *testing.T) {
	c, _, _ := newTestChecker()
	x := param("x", nullableString())
	thenRef := ref(x)
	afterRef := ref(x)

	checkTemplate(c, []*ast.VarDefn{x},
		&ast.IfStmt{Branches: []ast.IfBranch{{
			Cond: notNull(ref(x)),
			Body: []ast.Stmt{printStmt(thenRef)},
		}}},
		printStmt(afterRef),
	)

	assert.Same(t, types.StringType, typeOf(t, c, thenRef))
	assert.True(t, nullableString().Equals(typeOf(t, c, afterRef)))
}

func TestElseifSeesPriorNegatives(t *testing.T) {
	c, _, _ := newTestChecker()
	x := param("x", nullableString())
	secondCondRef := ref(x)
	secondBodyRef := ref(x)

	// {if isNull($x)} ... {elseif $x == 'a'} ... {/if}: the second condition
	// and body already know $x survived the null check.
	checkTemplate(c, []*ast.VarDefn{x},
		&ast.IfStmt{Branches: []ast.IfBranch{
			{Cond: isNullCheck(ref(x)), Body: []ast.Stmt{printStmt(ref(x))}},
			{
				Cond: &ast.BinaryExpr{Op: ast.OpEqual, X: secondCondRef, Y: str("a")},
				Body: []ast.Stmt{printStmt(secondBodyRef)},
			},
		}},
	)

	assert.Same(t, types.StringType, typeOf(t, c, secondCondRef))
	assert.Same(t, types.StringType, typeOf(t, c, secondBodyRef))
}

func TestAndChainNarrowsRightOperand(t *testing.T) {
	c, bag, _ := newTestChecker()
	x := param("x", nullableString())
	rightRef := ref(x)

	// $x != null and $x == 'a': the right comparison sees string.
	checkTemplate(c, []*ast.VarDefn{x},
		printStmt(&ast.BinaryExpr{
			Op: ast.OpAnd,
			X:  notNull(ref(x)),
			Y:  &ast.BinaryExpr{Op: ast.OpEqual, X: rightRef, Y: str("a")},
		}),
	)

	assert.False(t, bag.HasErrors())
	assert.Same(t, types.StringType, typeOf(t, c, rightRef))
}

func TestOrChainNarrowsRightOperand(t *testing.T) {
	c, _, _ := newTestChecker()
	x := param("x", nullableString())
	rightRef := ref(x)

	// isNull($x) or $x == 'a': the right side only runs when the null test
	// failed.
	checkTemplate(c, []*ast.VarDefn{x},
		printStmt(&ast.BinaryExpr{
			Op: ast.OpOr,
			X:  &ast.FunctionCall{Name: "isNull", Args: []ast.Expr{ref(x)}},
			Y:  &ast.BinaryExpr{Op: ast.OpEqual, X: rightRef, Y: str("a")},
		}),
	)

	assert.Same(t, types.StringType, typeOf(t, c, rightRef))
}

func TestNarrowingKeysAreStructural(t *testing.T) {
	c, bag, reg := newTestChecker()
	// $p.name != null and $p.name: both mentions of $p.name are distinct
	// nodes, narrowed through structural identity.
	rec := param("p", reg.RecordOf(map[string]types.SoyType{"name": nullableString()}))
	field := func() *ast.FieldAccess {
		return &ast.FieldAccess{Base: ref(rec), Field: "name"}
	}
	rightRef := field()

	checkTemplate(c, []*ast.VarDefn{rec},
		printStmt(&ast.BinaryExpr{Op: ast.OpAnd, X: notNull(field()), Y: rightRef}),
	)

	assert.False(t, bag.HasErrors())
	assert.Same(t, types.StringType, typeOf(t, c, rightRef))
}

func TestNarrowingAppliesToItemAccess(t *testing.T) {
	c, bag, _ := newTestChecker()
	m := param("m", types.NewMap(types.StringType, nullableString()))
	access := func() *ast.ItemAccess {
		return &ast.ItemAccess{Base: ref(m), Key: str("k")}
	}
	rightRef := access()

	// $m['k'] != null and $m['k']: the second access resolves to the
	// narrowed type, not the map's value type.
	checkTemplate(c, []*ast.VarDefn{m},
		printStmt(&ast.BinaryExpr{Op: ast.OpAnd, X: notNull(access()), Y: rightRef}),
	)

	assert.False(t, bag.HasErrors())
	assert.Same(t, types.StringType, typeOf(t, c, rightRef))
}

func TestIfNarrowsFieldAccess(t *testing.T) {
	c, bag, reg := newTestChecker()
	rec := param("p", reg.RecordOf(map[string]types.SoyType{"name": nullableString()}))
	access := func() *ast.FieldAccess {
		return &ast.FieldAccess{Base: ref(rec), Field: "name"}
	}
	thenRef := access()
	afterRef := access()

	checkTemplate(c, []*ast.VarDefn{rec},
		&ast.IfStmt{Branches: []ast.IfBranch{{
			Cond: notNull(access()),
			Body: []ast.Stmt{printStmt(thenRef)},
		}}},
		printStmt(afterRef),
	)

	assert.False(t, bag.HasErrors())
	assert.Same(t, types.StringType, typeOf(t, c, thenRef))
	assert.True(t, nullableString().Equals(typeOf(t, c, afterRef)))
}

func TestSwitchNarrowsSubject(t *testing.T) {
	c, _, _ := newTestChecker()
	x := param("x", nullableString())
	nullCaseRef := ref(x)
	strCaseRef := ref(x)
	defaultRef := ref(x)

	checkTemplate(c, []*ast.VarDefn{x},
		&ast.SwitchStmt{
			Subject: ref(x),
			Cases: []ast.SwitchCase{
				{Exprs: []ast.Expr{&ast.NullLiteral{}}, Body: []ast.Stmt{printStmt(nullCaseRef)}},
				{Exprs: []ast.Expr{str("a"), str("b")}, Body: []ast.Stmt{printStmt(strCaseRef)}},
			},
			Default: []ast.Stmt{printStmt(defaultRef)},
		},
	)

	assert.Same(t, types.NullType, typeOf(t, c, nullCaseRef))
	assert.Same(t, types.StringType, typeOf(t, c, strCaseRef))
	// After a matched null case, later arms see the subject null-free.
	assert.Same(t, types.StringType, typeOf(t, c, defaultRef))
}

func TestForLoopVariableType(t *testing.T) {
	c, bag, reg := newTestChecker()
	xs := param("xs", reg.ListOf(types.IntType))
	loopVar := &ast.VarDefn{Name: "i", Kind: ast.LoopVar}
	bodyRef := &ast.VarRef{Name: "i", Defn: loopVar}

	checkTemplate(c, []*ast.VarDefn{xs},
		&ast.ForStmt{Var: loopVar, Collection: ref(xs), Body: []ast.Stmt{printStmt(bodyRef)}},
	)

	assert.False(t, bag.HasErrors())
	assert.Same(t, types.IntType, loopVar.DeclaredType)
	assert.Same(t, types.IntType, typeOf(t, c, bodyRef))
}

func TestForOverUnionOfLists(t *testing.T) {
	c, bag, reg := newTestChecker()
	xs := param("xs", types.UnionOf(reg.ListOf(types.IntType), reg.ListOf(types.FloatType)))
	loopVar := &ast.VarDefn{Name: "i", Kind: ast.LoopVar}

	checkTemplate(c, []*ast.VarDefn{xs},
		&ast.ForStmt{Var: loopVar, Collection: ref(xs), Body: nil},
	)

	assert.False(t, bag.HasErrors())
	assert.True(t, types.UnionOf(types.IntType, types.FloatType).Equals(loopVar.DeclaredType))
}

func TestForOverEmptyListLiteral(t *testing.T) {
	c, bag, _ := newTestChecker()
	loopVar := &ast.VarDefn{Name: "i", Kind: ast.LoopVar}
	bodyRef := &ast.VarRef{Name: "i", Defn: loopVar}

	checkTemplate(c, nil,
		&ast.ForStmt{
			Var:        loopVar,
			Collection: &ast.ListLiteral{},
			Body:       []ast.Stmt{printStmt(bodyRef)},
		},
	)

	assert.Contains(t, diagnosticCodes(bag), diagnostics.ErrEmptyCollectionAccess)
	assert.Same(t, types.ErrorType, loopVar.DeclaredType)
	// The body still resolves, degraded to Error.
	assert.Same(t, types.ErrorType, typeOf(t, c, bodyRef))
}

func TestForOverNonList(t *testing.T) {
	c, bag, _ := newTestChecker()
	x := param("x", types.StringType)
	loopVar := &ast.VarDefn{Name: "i", Kind: ast.LoopVar}

	checkTemplate(c, []*ast.VarDefn{x},
		&ast.ForStmt{Var: loopVar, Collection: ref(x), Body: nil},
	)

	assert.Contains(t, diagnosticCodes(bag), diagnostics.ErrBadForeachType)
	assert.Same(t, types.ErrorType, loopVar.DeclaredType)
}

func TestLetInfersType(t *testing.T) {
	c, _, _ := newTestChecker()
	letVar := &ast.VarDefn{Name: "greeting", Kind: ast.LetVar}
	useRef := &ast.VarRef{Name: "greeting", Defn: letVar}

	checkTemplate(c, nil,
		&ast.LetStmt{Var: letVar, Value: str("hi")},
		printStmt(useRef),
	)

	assert.Same(t, types.StringType, letVar.DeclaredType)
	assert.Same(t, types.StringType, typeOf(t, c, useRef))
}

func TestCheckFileIsDeterministic(t *testing.T) {
	build := func() (*ast.TemplateFile, *ast.VarRef) {
		x := param("x", nullableString())
		thenRef := ref(x)
		file := &ast.TemplateFile{
			Path: "test.soy",
			Templates: []*ast.Template{{
				Name:   ".t",
				Params: []*ast.VarDefn{x},
				Body: []ast.Stmt{&ast.IfStmt{Branches: []ast.IfBranch{{
					Cond: notNull(ref(x)),
					Body: []ast.Stmt{printStmt(thenRef)},
				}}}},
			}},
		}
		return file, thenRef
	}

	c1, _, _ := newTestChecker()
	file1, ref1 := build()
	c1.CheckFile(file1)

	c2, _, _ := newTestChecker()
	file2, ref2 := build()
	c2.CheckFile(file2)

	assert.Equal(t, typeOf(t, c1, ref1).String(), typeOf(t, c2, ref2).String())
}

func TestRecheckingSameTreeIsStable(t *testing.T) {
	// Checking leaves inferred declaration types behind on the tree; a
	// second pass over the already-annotated tree resolves the same types
	// and reports nothing new.
	x := param("x", nullableString())
	inferred := &ast.VarDefn{Name: "d", Kind: ast.ParamVar, Optional: true, Default: str("hi")}
	thenRef := ref(x)
	file := &ast.TemplateFile{
		Path: "test.soy",
		Templates: []*ast.Template{{
			Name:   ".t",
			Params: []*ast.VarDefn{x, inferred},
			Body: []ast.Stmt{&ast.IfStmt{Branches: []ast.IfBranch{{
				Cond: notNull(ref(x)),
				Body: []ast.Stmt{printStmt(thenRef)},
			}}}},
		}},
	}

	c1, bag1, _ := newTestChecker()
	c1.CheckFile(file)
	require.False(t, bag1.HasErrors(), "unexpected diagnostics: %v", diagnosticCodes(bag1))
	first := typeOf(t, c1, thenRef)
	assert.Same(t, types.StringType, inferred.DeclaredType)

	c2, bag2, _ := newTestChecker()
	c2.CheckFile(file)
	assert.False(t, bag2.HasErrors(), "unexpected diagnostics: %v", diagnosticCodes(bag2))
	assert.Equal(t, 0, bag2.WarningCount())
	assert.Same(t, first, typeOf(t, c2, thenRef))
	assert.Same(t, types.StringType, inferred.DeclaredType)
}

func TestVerifyAllTypedPanicsOnMissingType(t *testing.T) {
	c, _, _ := newTestChecker()
	c.exprTypes = make(map[ast.Expr]types.SoyType)

	file := &ast.TemplateFile{
		Path: "test.soy",
		Templates: []*ast.Template{{
			Name: ".t",
			Body: []ast.Stmt{printStmt(str("untyped"))},
		}},
	}

	assert.Panics(t, func() { c.verifyAllTyped(file) })
}
