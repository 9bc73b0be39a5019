// Package typechecker resolves the static type of every expression in a
// parsed template file, enforces the language's type rules and narrows
// variable types along control-flow branches based on null checks and
// boolean conditions. Downstream passes (escaping, code generation) trust
// the types this pass assigns.
package typechecker

import (
	"fmt"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/sgammon/closure-templates-sub000/internal/diagnostics"
	"github.com/sgammon/closure-templates-sub000/internal/frontend/ast"
	"github.com/sgammon/closure-templates-sub000/internal/logging"
	"github.com/sgammon/closure-templates-sub000/internal/semantics/narrowing"
	"github.com/sgammon/closure-templates-sub000/internal/source"
	"github.com/sgammon/closure-templates-sub000/internal/types"
	"github.com/sgammon/closure-templates-sub000/internal/types/registry"
)

// Checker resolves expression types for one file at a time. The substitution
// pointer is file-scoped, so concurrent checking of independent files needs
// one Checker per file; the registry, logging config and signature resolver
// are read-mostly and may be shared.
type Checker struct {
	bag        *diagnostics.Bag
	reg        *registry.TypeRegistry
	logcfg     *logging.Config
	logger     log.Logger
	signatures *SignatureResolver

	// Per-file state, reset by CheckFile.
	exprTypes     map[ast.Expr]types.SoyType
	substitutions *narrowing.TypeSubstitution
	analyzer      *narrowing.Analyzer
	activeLoops   []*ast.VarDefn
}

// Option configures a Checker.
type Option func(*Checker)

// WithLogger installs a debug logger.
func WithLogger(logger log.Logger) Option {
	return func(c *Checker) { c.logger = logger }
}

// WithSignatureResolver shares a signature resolver (and its cache) across
// checkers. The resolver synchronizes its lazy population internally.
func WithSignatureResolver(r *SignatureResolver) Option {
	return func(c *Checker) { c.signatures = r }
}

// NewChecker creates a checker reporting into bag and resolving named types
// through reg. logcfg may be logging.Empty() when no velog config exists.
func NewChecker(reg *registry.TypeRegistry, logcfg *logging.Config, bag *diagnostics.Bag, opts ...Option) *Checker {
	c := &Checker{
		bag:    bag,
		reg:    reg,
		logcfg: logcfg,
		logger: log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.signatures == nil {
		c.signatures = NewSignatureResolver(reg, bag)
	}
	c.analyzer = narrowing.NewAnalyzer(c.resolvedTypeOf)
	return c
}

// CheckFile resolves every expression in the file. Individual type errors
// are reported to the bag and recovered locally; an expression left without
// a type at the end of the pass is an engine bug and panics.
func (c *Checker) CheckFile(file *ast.TemplateFile) {
	c.exprTypes = make(map[ast.Expr]types.SoyType)
	c.substitutions = nil
	c.activeLoops = nil

	level.Debug(c.logger).Log("msg", "type checking file", "path", file.Path, "templates", len(file.Templates))

	for _, tmpl := range file.Templates {
		c.checkTemplateHeaders(tmpl)
		c.checkStmts(tmpl.Body)
	}

	c.verifyAllTyped(file)
}

// verifyAllTyped asserts the pass invariant that every expression node
// received exactly one resolved type. Violations indicate an engine bug,
// not a user error, and abort the compilation.
func (c *Checker) verifyAllTyped(file *ast.TemplateFile) {
	check := func(e ast.Expr) {
		if _, ok := c.exprTypes[e]; !ok {
			panic(fmt.Sprintf("[%s] expression %s has no resolved type after type resolution",
				diagnostics.ErrInternalMissingType, e.Loc()))
		}
	}
	for _, tmpl := range file.Templates {
		for _, param := range tmpl.Params {
			ast.WalkExprs(param.Default, check)
		}
		ast.WalkStmtExprs(tmpl.Body, check)
	}
}

// setType records the resolved type of a node and returns it.
func (c *Checker) setType(e ast.Expr, t types.SoyType) types.SoyType {
	c.exprTypes[e] = t
	return t
}

// TypeOf returns the resolved type of a visited expression. It is the
// output surface consumed by downstream passes.
func (c *Checker) TypeOf(e ast.Expr) (types.SoyType, bool) {
	t, ok := c.exprTypes[e]
	return t, ok
}

// resolvedTypeOf serves the narrowing analyzer: active substitutions first,
// then the side table, then the declared type of a variable reference.
func (c *Checker) resolvedTypeOf(e ast.Expr) types.SoyType {
	if t, ok := c.substitutions.Lookup(e); ok {
		return t
	}
	if t, ok := c.exprTypes[e]; ok {
		return t
	}
	if ref, ok := e.(*ast.VarRef); ok && ref.Defn != nil && ref.Defn.DeclaredType != nil {
		return ref.Defn.DeclaredType
	}
	return nil
}

// applyConstraints pushes every constraint onto the substitution stack and
// returns the new current pointer. Callers save and restore the pointer
// around branch traversal.
func (c *Checker) applyConstraints(constraints *narrowing.Constraints) {
	constraints.ForEach(func(key ast.Expr, typ types.SoyType) {
		c.substitutions = narrowing.Push(c.substitutions, key, typ)
	})
}

func (c *Checker) checkStmts(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		c.checkStmt(stmt)
	}
}

func (c *Checker) checkStmt(stmt ast.Stmt) {
	switch n := stmt.(type) {
	case *ast.PrintStmt:
		c.visitExpr(n.Value)
	case *ast.LetStmt:
		t := c.visitExpr(n.Value)
		if n.Var.DeclaredType == nil {
			n.Var.DeclaredType = t
		}
	case *ast.IfStmt:
		c.checkIfStmt(n)
	case *ast.SwitchStmt:
		c.checkSwitchStmt(n)
	case *ast.ForStmt:
		c.checkForStmt(n)
	default:
		panic(fmt.Sprintf("typechecker: unhandled statement kind %T", stmt))
	}
}

// checkIfStmt applies sequential narrowing along an if/elseif/else chain:
// each condition is visited under the accumulated negative constraints of
// all prior conditions, its body under its own positive constraints layered
// on top, and the whole chain restores the entry state afterwards.
func (c *Checker) checkIfStmt(n *ast.IfStmt) {
	entry := c.substitutions
	for _, branch := range n.Branches {
		c.visitExpr(branch.Cond)
		positive, negative := c.analyzer.Analyze(branch.Cond)

		beforeBody := c.substitutions
		c.applyConstraints(positive)
		c.checkStmts(branch.Body)
		c.substitutions = beforeBody

		// Later branches know this condition was false.
		c.applyConstraints(negative)
	}
	if n.Else != nil {
		c.checkStmts(n.Else)
	}
	c.substitutions = entry
}

// checkSwitchStmt narrows the switch subject inside each case to the union
// of that case's literal types. Once some case has matched a null literal,
// following cases and the default see the subject with null removed.
func (c *Checker) checkSwitchStmt(n *ast.SwitchStmt) {
	subjectType := c.visitExpr(n.Subject)
	entry := c.substitutions
	nullMatched := false
	for _, sc := range n.Cases {
		caseTypes := make([]types.SoyType, 0, len(sc.Exprs))
		hasNull := false
		for _, e := range sc.Exprs {
			caseTypes = append(caseTypes, c.visitExpr(e))
			if _, ok := e.(*ast.NullLiteral); ok {
				hasNull = true
			}
		}

		before := c.substitutions
		if nullMatched {
			c.substitutions = narrowing.Push(c.substitutions, n.Subject, types.RemoveNull(subjectType))
		}
		if len(caseTypes) > 0 {
			c.substitutions = narrowing.Push(c.substitutions, n.Subject, types.UnionOf(caseTypes...))
		}
		c.checkStmts(sc.Body)
		c.substitutions = before

		if hasNull {
			nullMatched = true
		}
	}
	if n.Default != nil {
		before := c.substitutions
		if nullMatched {
			c.substitutions = narrowing.Push(c.substitutions, n.Subject, types.RemoveNull(subjectType))
		}
		c.checkStmts(n.Default)
		c.substitutions = before
	}
	c.substitutions = entry
}

func (c *Checker) checkForStmt(n *ast.ForStmt) {
	collType := c.visitExpr(n.Collection)
	n.Var.DeclaredType = c.elementType(collType, n.Collection.Loc())

	c.activeLoops = append(c.activeLoops, n.Var)
	c.checkStmts(n.Body)
	c.activeLoops = c.activeLoops[:len(c.activeLoops)-1]
}

// elementType derives the loop-variable type from a collection type, using
// the same per-kind rules as item access element derivation. Unions are
// resolved member-wise and folded.
func (c *Checker) elementType(collType types.SoyType, loc *source.Location) types.SoyType {
	switch t := collType.(type) {
	case *types.ListType:
		if t.Element == nil {
			c.bag.Add(diagnostics.NewError("cannot iterate over the empty list").
				WithCode(diagnostics.ErrEmptyCollectionAccess).
				WithPrimaryLabel(loc, "this list has no elements").
				WithHelp("give the list literal at least one element, or type it explicitly"))
			return types.ErrorType
		}
		return t.Element
	case *types.UnionType:
		var folded types.SoyType
		for _, m := range t.Members() {
			if m.Kind() == types.NullKind {
				continue
			}
			elem := c.elementType(m, loc)
			if elem.Kind() == types.ErrorKind {
				return types.ErrorType
			}
			folded = types.LowestCommonType(folded, elem)
		}
		if folded == nil {
			return types.ErrorType
		}
		return folded
	}
	switch collType.Kind() {
	case types.UnknownKind, types.AnyKind:
		return types.UnknownType
	case types.ErrorKind:
		return types.ErrorType
	}
	c.bag.Add(diagnostics.NewError(fmt.Sprintf("cannot iterate over a value of type '%s'", collType)).
		WithCode(diagnostics.ErrBadForeachType).
		WithPrimaryLabel(loc, "expected a list here"))
	return types.ErrorType
}

// isActiveLoopVar reports whether the definition is the loop variable of an
// enclosing {for} statement.
func (c *Checker) isActiveLoopVar(defn *ast.VarDefn) bool {
	for _, v := range c.activeLoops {
		if v == defn {
			return true
		}
	}
	return false
}
