package typechecker

import (
	"fmt"

	"github.com/sgammon/closure-templates-sub000/internal/diagnostics"
	"github.com/sgammon/closure-templates-sub000/internal/frontend/ast"
	"github.com/sgammon/closure-templates-sub000/internal/logging"
	"github.com/sgammon/closure-templates-sub000/internal/source"
	"github.com/sgammon/closure-templates-sub000/internal/types"
)

func (c *Checker) visitFieldAccess(n *ast.FieldAccess) types.SoyType {
	baseType := c.visitExpr(n.Base)
	// Accesses are narrowing targets like variable references: a constraint
	// keyed by a structurally identical access overrides resolution.
	if t, ok := c.substitutions.Lookup(n); ok {
		return c.setType(n, t)
	}
	if n.NullSafe {
		baseType = types.RemoveNull(baseType)
	}
	return c.setType(n, c.fieldType(baseType, n.Field, n.Loc()))
}

// fieldType dispatches `.field` resolution on the base type kind.
func (c *Checker) fieldType(baseType types.SoyType, field string, loc *source.Location) types.SoyType {
	switch t := baseType.(type) {
	case *types.RecordType:
		if ft, ok := t.Field(field); ok {
			return ft
		}
		c.reportUndefinedMember(loc, field, baseType.String(), t.FieldNames())
		return types.ErrorType
	case *types.ProtoType:
		if ft, ok := t.Schema.FieldType(field); ok {
			return ft
		}
		c.reportUndefinedMember(loc, field, baseType.String(), t.Schema.FieldNames())
		return types.ErrorType
	case *types.LegacyObjectMapType:
		c.bag.Add(diagnostics.NewError(fmt.Sprintf("cannot access fields of '%s' with dot syntax", baseType)).
			WithCode(diagnostics.ErrUnsupportedAccess).
			WithPrimaryLabel(loc, "legacy object maps use bracket access").
			WithHelp(fmt.Sprintf("write ['%s'] instead of .%s", field, field)))
		return types.ErrorType
	case *types.UnionType:
		// Resolve per member, excluding null; one erroring member poisons
		// the whole access.
		var merged types.SoyType
		for _, m := range t.Members() {
			if m.Kind() == types.NullKind {
				continue
			}
			ft := c.fieldType(m, field, loc)
			if ft.Kind() == types.ErrorKind {
				return types.ErrorType
			}
			merged = types.LowestCommonType(merged, ft)
		}
		if merged == nil {
			return types.ErrorType
		}
		return merged
	}

	switch baseType.Kind() {
	case types.UnknownKind, types.AnyKind:
		return types.UnknownType
	case types.ErrorKind:
		return types.ErrorType
	case types.StringKind, types.ListKind, types.MapKind:
		if field == "length" {
			c.bag.Add(diagnostics.NewError(fmt.Sprintf("type '%s' has no field 'length'", baseType)).
				WithCode(diagnostics.ErrDottedLength).
				WithPrimaryLabel(loc, "length is a function, not a field").
				WithHelp("call length(...) on lists, or strLen(...) on strings"))
			return types.ErrorType
		}
	}
	c.bag.Add(diagnostics.NewError(fmt.Sprintf("cannot access field '%s' on a value of type '%s'", field, baseType)).
		WithCode(diagnostics.ErrUnsupportedAccess).
		WithPrimaryLabel(loc, "dot access is not supported on this type"))
	return types.ErrorType
}

func (c *Checker) reportUndefinedMember(loc *source.Location, field, typeName string, candidates []string) {
	diag := diagnostics.NewError(fmt.Sprintf("'%s' has no field '%s'", typeName, field)).
		WithCode(diagnostics.ErrUndefinedMember).
		WithPrimaryLabel(loc, "unknown field")
	if suggestion := logging.ClosestName(field, candidates); suggestion != "" {
		diag = diag.WithHelp(fmt.Sprintf("did you mean '%s'?", suggestion))
	}
	c.bag.Add(diag)
}

func (c *Checker) visitItemAccess(n *ast.ItemAccess) types.SoyType {
	baseType := c.visitExpr(n.Base)
	keyType := c.visitExpr(n.Key)

	if t, ok := c.substitutions.Lookup(n); ok {
		return c.setType(n, t)
	}

	// Bracket access on a nullable union needs the null-safe form or a
	// prior null check, independently of whether the per-member resolution
	// would succeed.
	if u, ok := baseType.(*types.UnionType); ok && types.IsNullable(u) && !n.NullSafe {
		c.bag.Add(diagnostics.NewError(fmt.Sprintf("bracket access on nullable type '%s'", baseType)).
			WithCode(diagnostics.ErrNullableBracketAccess).
			WithPrimaryLabel(n.Loc(), "the base may be null here").
			WithHelp("use ?[...] or check the value against null first"))
	}

	return c.setType(n, c.itemType(baseType, keyType, n))
}

// itemType dispatches `[...]` resolution on the base type kind.
func (c *Checker) itemType(baseType, keyType types.SoyType, n *ast.ItemAccess) types.SoyType {
	switch t := baseType.(type) {
	case *types.ListType:
		if t.Element == nil {
			c.reportEmptyCollectionAccess(n.Loc(), "list")
			return types.ErrorType
		}
		if !types.IsAssignableFrom(types.IntType, keyType) {
			// Diagnose but still return the element type to avoid cascades.
			c.reportBadKeyType(n.Key.Loc(), keyType, types.IntType)
		}
		return t.Element
	case *types.MapType:
		if t.Key == nil {
			c.reportEmptyCollectionAccess(n.Loc(), "map")
			return types.ErrorType
		}
		if !types.IsAssignableFrom(t.Key, keyType) {
			c.reportBadKeyType(n.Key.Loc(), keyType, t.Key)
		}
		return t.Value
	case *types.LegacyObjectMapType:
		if t.Key == nil {
			c.reportEmptyCollectionAccess(n.Loc(), "legacy object map")
			return types.ErrorType
		}
		if !types.IsAssignableFrom(t.Key, keyType) {
			c.reportBadKeyType(n.Key.Loc(), keyType, t.Key)
		}
		return t.Value
	case *types.UnionType:
		var merged types.SoyType
		for _, m := range t.Members() {
			if m.Kind() == types.NullKind {
				continue
			}
			it := c.itemType(m, keyType, n)
			if it.Kind() == types.ErrorKind {
				return types.ErrorType
			}
			merged = types.LowestCommonType(merged, it)
		}
		if merged == nil {
			return types.ErrorType
		}
		return merged
	}

	switch baseType.Kind() {
	case types.UnknownKind, types.AnyKind:
		return types.UnknownType
	case types.ErrorKind:
		return types.ErrorType
	}
	c.bag.Add(diagnostics.NewError(fmt.Sprintf("cannot index a value of type '%s'", baseType)).
		WithCode(diagnostics.ErrUnsupportedAccess).
		WithPrimaryLabel(n.Loc(), "bracket access is not supported on this type"))
	return types.ErrorType
}

func (c *Checker) reportEmptyCollectionAccess(loc *source.Location, what string) {
	c.bag.Add(diagnostics.NewError(fmt.Sprintf("access into the empty %s", what)).
		WithCode(diagnostics.ErrEmptyCollectionAccess).
		WithPrimaryLabel(loc, fmt.Sprintf("this %s has no entries", what)))
}

func (c *Checker) reportBadKeyType(loc *source.Location, actual, expected types.SoyType) {
	c.bag.Add(diagnostics.NewError(fmt.Sprintf("invalid key type '%s'", actual)).
		WithCode(diagnostics.ErrTypeMismatch).
		WithPrimaryLabel(loc, fmt.Sprintf("expected '%s', found '%s'", expected, actual)))
}
