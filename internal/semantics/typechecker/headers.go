package typechecker

import (
	"fmt"

	"github.com/sgammon/closure-templates-sub000/internal/diagnostics"
	"github.com/sgammon/closure-templates-sub000/internal/frontend/ast"
	"github.com/sgammon/closure-templates-sub000/internal/types"
)

// checkTemplateHeaders resolves default-value expressions for template
// parameters and state variables: defaults must be constant, must match the
// declared type when one exists, and supply the inferred type when none
// does. A parameter whose final type is exactly null is rejected either way.
func (c *Checker) checkTemplateHeaders(tmpl *ast.Template) {
	for _, param := range tmpl.Params {
		if param.DeclaredType != nil && param.DeclaredType.Kind() == types.NullKind {
			c.bag.Add(diagnostics.NewError(fmt.Sprintf("%s '%s' declares type 'null'", param.Kind, param.Name)).
				WithCode(diagnostics.ErrExplicitNullType).
				WithPrimaryLabel(param.Loc(), "a declaration cannot have the exact type null").
				WithHelp("declare a nullable type like 'string|null' instead"))
		}
		if param.Default == nil {
			if param.DeclaredType == nil {
				param.DeclaredType = types.UnknownType
			}
			continue
		}

		defaultType := c.visitExpr(param.Default)
		if c.enforceConstantDefault(param, param.Default) {
			defaultType = types.ErrorType
		}

		if param.DeclaredType == nil {
			if defaultType.Kind() == types.NullKind {
				c.bag.Add(diagnostics.NewError(fmt.Sprintf("cannot infer a type for %s '%s' from a null default", param.Kind, param.Name)).
					WithCode(diagnostics.ErrInferredNullType).
					WithPrimaryLabel(param.Default.Loc(), "the inferred type would be exactly null").
					WithHelp("declare the type explicitly"))
				param.DeclaredType = types.UnknownType
				continue
			}
			param.DeclaredType = defaultType
			continue
		}

		if defaultType.Kind() != types.ErrorKind &&
			!types.IsAssignableFrom(param.DeclaredType, defaultType) {
			c.bag.Add(diagnostics.NewError(fmt.Sprintf("default value for %s '%s' has the wrong type", param.Kind, param.Name)).
				WithCode(diagnostics.ErrTypeMismatch).
				WithPrimaryLabel(param.Default.Loc(), fmt.Sprintf("expected '%s', found '%s'", param.DeclaredType, defaultType)))
		}
	}
}

// enforceConstantDefault reports every non-constant sub-expression of a
// default value, naming its kind, and force-sets the offending node's type
// to Error to suppress downstream cascades. Returns true when anything was
// reported.
func (c *Checker) enforceConstantDefault(param *ast.VarDefn, defaultExpr ast.Expr) bool {
	offended := false
	ast.WalkExprs(defaultExpr, func(e ast.Expr) {
		kind, ok := nonConstantKind(e)
		if !ok {
			return
		}
		offended = true
		c.bag.Add(diagnostics.NewError(fmt.Sprintf("default value for %s '%s' must be constant", param.Kind, param.Name)).
			WithCode(diagnostics.ErrNonConstantDefault).
			WithPrimaryLabel(e.Loc(), fmt.Sprintf("%s is not allowed in a default value", kind)))
		c.setType(e, types.ErrorType)
	})
	return offended
}

// nonConstantKind names the expression kinds that disqualify a default
// value from being constant.
func nonConstantKind(e ast.Expr) (string, bool) {
	switch e.(type) {
	case *ast.VarRef:
		return "a variable reference", true
	case *ast.FunctionCall:
		return "a function call", true
	case *ast.FieldAccess:
		return "a field access", true
	case *ast.ItemAccess:
		return "an item access", true
	default:
		return "", false
	}
}
