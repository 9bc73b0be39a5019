package typechecker

import (
	"fmt"

	"github.com/hashicorp/go-set/v3"

	"github.com/sgammon/closure-templates-sub000/internal/diagnostics"
	"github.com/sgammon/closure-templates-sub000/internal/frontend/ast"
	"github.com/sgammon/closure-templates-sub000/internal/types"
)

// visitExpr computes and records the resolved type of an expression,
// bottom-up. Errors degrade to Unknown/Error locally so a single pass can
// surface many diagnostics.
func (c *Checker) visitExpr(e ast.Expr) types.SoyType {
	switch n := e.(type) {
	case *ast.NullLiteral:
		return c.setType(e, types.NullType)
	case *ast.BoolLiteral:
		return c.setType(e, types.BoolType)
	case *ast.IntLiteral:
		return c.setType(e, types.IntType)
	case *ast.FloatLiteral:
		return c.setType(e, types.FloatType)
	case *ast.StringLiteral:
		return c.setType(e, types.StringType)
	case *ast.GlobalRef:
		if n.Type == nil {
			return c.setType(e, types.UnknownType)
		}
		return c.setType(e, n.Type)
	case *ast.VarRef:
		return c.visitVarRef(n)
	case *ast.ListLiteral:
		return c.visitListLiteral(n)
	case *ast.RecordLiteral:
		return c.visitRecordLiteral(n)
	case *ast.MapLiteral:
		return c.visitMapLiteral(n)
	case *ast.FieldAccess:
		return c.visitFieldAccess(n)
	case *ast.ItemAccess:
		return c.visitItemAccess(n)
	case *ast.UnaryExpr:
		return c.visitUnaryExpr(n)
	case *ast.BinaryExpr:
		return c.visitBinaryExpr(n)
	case *ast.ConditionalExpr:
		return c.visitConditionalExpr(n)
	case *ast.NullCoalescingExpr:
		return c.visitNullCoalescingExpr(n)
	case *ast.FunctionCall:
		return c.visitFunctionCall(n)
	case *ast.ProtoInit:
		return c.visitProtoInit(n)
	case *ast.VeLiteral:
		return c.visitVeLiteral(n)
	default:
		panic(fmt.Sprintf("typechecker: unhandled expression kind %T", e))
	}
}

// visitVarRef resolves a variable reference: an active substitution
// overrides the declared type.
func (c *Checker) visitVarRef(n *ast.VarRef) types.SoyType {
	if t, ok := c.substitutions.Lookup(n); ok {
		return c.setType(n, t)
	}
	if n.Defn == nil || n.Defn.DeclaredType == nil {
		return c.setType(n, types.UnknownType)
	}
	return c.setType(n, n.Defn.DeclaredType)
}

func (c *Checker) visitListLiteral(n *ast.ListLiteral) types.SoyType {
	if len(n.Items) == 0 {
		return c.setType(n, types.EmptyListType)
	}
	var elem types.SoyType
	for _, item := range n.Items {
		elem = types.LowestCommonType(elem, c.visitExpr(item))
	}
	return c.setType(n, c.reg.ListOf(elem))
}

// visitRecordLiteral collects fields in source order into a map, so the
// last value for a duplicated key name wins.
func (c *Checker) visitRecordLiteral(n *ast.RecordLiteral) types.SoyType {
	if len(n.Fields) == 0 {
		return c.setType(n, types.EmptyRecordType)
	}
	fields := make(map[string]types.SoyType, len(n.Fields))
	for _, f := range n.Fields {
		fields[f.Key] = c.visitExpr(f.Value)
	}
	return c.setType(n, c.reg.RecordOf(fields))
}

func (c *Checker) visitMapLiteral(n *ast.MapLiteral) types.SoyType {
	if len(n.Entries) == 0 {
		return c.setType(n, types.EmptyMapType)
	}

	perKeyCheckpoint := c.bag.Mark()
	seenKeys := set.New[string](len(n.Entries))
	reportedKeys := set.New[string](0)
	var keyType types.SoyType
	for _, entry := range n.Entries {
		kt := c.visitExpr(entry.Key)
		if !types.IsAllowedMapKeyType(kt) {
			c.bag.Add(diagnostics.NewError(fmt.Sprintf("'%s' is not a valid map key type", kt)).
				WithCode(diagnostics.ErrIllegalMapKeyType).
				WithPrimaryLabel(entry.Key.Loc(), "map keys must be primitive values"))
		}
		// Report each distinct duplicated string key once, at its second
		// occurrence; further repeats of the same key stay silent.
		if lit, ok := entry.Key.(*ast.StringLiteral); ok {
			if !seenKeys.Insert(lit.Value) && reportedKeys.Insert(lit.Value) {
				c.bag.Add(diagnostics.NewError(fmt.Sprintf("duplicate map key '%s'", lit.Value)).
					WithCode(diagnostics.ErrDuplicateMapKey).
					WithPrimaryLabel(entry.Key.Loc(), "this key already appears in the literal"))
			}
		}
		keyType = types.LowestCommonType(keyType, kt)
	}

	// The combined key type can be illegal even when every individual key
	// passed (compatible keys with no single allowed common type). Skip the
	// re-validation when the per-key checks already reported, to avoid
	// piling on.
	if !types.IsAllowedMapKeyType(keyType) && !c.bag.ErrorsSince(perKeyCheckpoint) {
		c.bag.Add(diagnostics.NewError(fmt.Sprintf("map keys resolve to the invalid common type '%s'", keyType)).
			WithCode(diagnostics.ErrIllegalCommonKeyType).
			WithPrimaryLabel(n.Loc(), "these keys have no single valid key type"))
	}

	var valueType types.SoyType
	for _, entry := range n.Entries {
		valueType = types.LowestCommonType(valueType, c.visitExpr(entry.Value))
	}
	return c.setType(n, c.reg.MapOf(keyType, valueType))
}

// visitConditionalExpr types `cond ? then : else`: each branch is visited
// under the condition's constraints for that branch, and the result is the
// lowest common type of the two branches.
func (c *Checker) visitConditionalExpr(n *ast.ConditionalExpr) types.SoyType {
	c.visitExpr(n.Cond)
	positive, negative := c.analyzer.Analyze(n.Cond)

	saved := c.substitutions
	c.applyConstraints(positive)
	thenType := c.visitExpr(n.Then)
	c.substitutions = saved

	c.applyConstraints(negative)
	elseType := c.visitExpr(n.Else)
	c.substitutions = saved

	return c.setType(n, types.LowestCommonType(thenType, elseType))
}

// visitNullCoalescingExpr types `x ?: fallback`. The left operand is
// re-visited under its own positive narrowing, because the left value is
// what the expression yields when it is truthy.
func (c *Checker) visitNullCoalescingExpr(n *ast.NullCoalescingExpr) types.SoyType {
	c.visitExpr(n.X)
	positive, negative := c.analyzer.Analyze(n.X)

	saved := c.substitutions
	c.applyConstraints(positive)
	leftType := c.visitExpr(n.X)
	c.substitutions = saved

	c.applyConstraints(negative)
	rightType := c.visitExpr(n.Fallback)
	c.substitutions = saved

	return c.setType(n, types.LowestCommonType(leftType, rightType))
}

func (c *Checker) visitVeLiteral(n *ast.VeLiteral) types.SoyType {
	el, ok := c.logcfg.Element(n.Name)
	if !ok {
		diag := diagnostics.NewError(fmt.Sprintf("unknown visual element '%s'", n.Name)).
			WithCode(diagnostics.ErrUnknownVisualElement).
			WithPrimaryLabel(n.Loc(), "not present in the logging configuration")
		if suggestion := c.logcfg.Suggest(n.Name); suggestion != "" {
			diag = diag.WithHelp(fmt.Sprintf("did you mean '%s'?", suggestion))
		}
		c.bag.Add(diag)
		return c.setType(n, types.ErrorType)
	}
	if el.ProtoType == "" {
		return c.setType(n, types.NewVe(nil))
	}
	payload, ok := c.reg.Type(el.ProtoType)
	if !ok || payload.Kind() != types.ProtoKind {
		c.bag.Add(diagnostics.NewError(fmt.Sprintf("visual element '%s' declares unknown proto type '%s'", n.Name, el.ProtoType)).
			WithCode(diagnostics.ErrUnknownProtoType).
			WithPrimaryLabel(n.Loc(), "check the logging configuration"))
		return c.setType(n, types.ErrorType)
	}
	return c.setType(n, types.NewVe(payload))
}
