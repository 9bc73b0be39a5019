package typechecker

import (
	"fmt"

	"github.com/sgammon/closure-templates-sub000/internal/diagnostics"
	"github.com/sgammon/closure-templates-sub000/internal/frontend/ast"
	"github.com/sgammon/closure-templates-sub000/internal/types"
)

// builtinHandler computes the result type of one compiler-recognized
// built-in, with its bespoke argument validation. Argument expressions are
// already visited; argTypes holds their resolved types.
type builtinHandler func(c *Checker, n *ast.FunctionCall, argTypes []types.SoyType) types.SoyType

// builtinFunctions is the fixed set of compiler built-ins layered on top of
// (or instead of) generic signature matching.
var builtinFunctions = map[string]builtinHandler{
	"isNull":               checkNullTest,
	"isNonnull":            checkNullTest,
	"checkNotNull":         checkCheckNotNull,
	"length":               checkLength,
	"keys":                 checkKeys,
	"mapKeys":              checkMapKeys,
	"legacyObjectMapToMap": checkLegacyObjectMapToMap,
	"mapToLegacyObjectMap": checkMapToLegacyObjectMap,
	"concatLists":          checkConcatLists,
	"veData":               checkVeData,
	"index":                checkLoopBuiltin,
	"isFirst":              checkLoopBuiltin,
	"isLast":               checkLoopBuiltin,
}

func (c *Checker) requireArgCount(n *ast.FunctionCall, want int) bool {
	if len(n.Args) == want {
		return true
	}
	c.bag.Add(diagnostics.NewError(fmt.Sprintf("function '%s' takes %d argument(s), found %d", n.Name, want, len(n.Args))).
		WithCode(diagnostics.ErrIncorrectArgType).
		WithPrimaryLabel(n.Loc(), "wrong number of arguments"))
	return false
}

func checkNullTest(c *Checker, n *ast.FunctionCall, _ []types.SoyType) types.SoyType {
	c.requireArgCount(n, 1)
	return types.BoolType
}

func checkCheckNotNull(c *Checker, n *ast.FunctionCall, argTypes []types.SoyType) types.SoyType {
	if !c.requireArgCount(n, 1) {
		return types.UnknownType
	}
	return types.RemoveNull(argTypes[0])
}

func checkLength(c *Checker, n *ast.FunctionCall, argTypes []types.SoyType) types.SoyType {
	if !c.requireArgCount(n, 1) {
		return types.IntType
	}
	arg := argTypes[0]
	if arg.Kind() != types.ListKind && !anyUnknown(arg) {
		c.bag.Add(diagnostics.NewError(fmt.Sprintf("incorrect argument type for '%s'", n.Name)).
			WithCode(diagnostics.ErrIncorrectArgType).
			WithPrimaryLabel(n.Args[0].Loc(), fmt.Sprintf("expected a list, found '%s'", arg)))
	}
	return types.IntType
}

// checkKeys extracts the key list of a legacy object map.
func checkKeys(c *Checker, n *ast.FunctionCall, argTypes []types.SoyType) types.SoyType {
	if !c.requireArgCount(n, 1) {
		return types.UnknownType
	}
	switch t := argTypes[0].(type) {
	case *types.LegacyObjectMapType:
		if t.Key == nil {
			return types.EmptyListType
		}
		return c.reg.ListOf(t.Key)
	}
	if anyUnknown(argTypes[0]) {
		return c.reg.ListOf(types.UnknownType)
	}
	c.bag.Add(diagnostics.NewError(fmt.Sprintf("incorrect argument type for '%s'", n.Name)).
		WithCode(diagnostics.ErrIncorrectArgType).
		WithPrimaryLabel(n.Args[0].Loc(), fmt.Sprintf("expected a legacy object map, found '%s'", argTypes[0])))
	return types.UnknownType
}

// checkMapKeys requires a strongly-typed map: unlike most built-ins it opts
// out of the permissive unknown-argument default, because the key type feeds
// straight into the result.
func checkMapKeys(c *Checker, n *ast.FunctionCall, argTypes []types.SoyType) types.SoyType {
	if !c.requireArgCount(n, 1) {
		return types.UnknownType
	}
	switch t := argTypes[0].(type) {
	case *types.MapType:
		if t.Key == nil {
			return types.EmptyListType
		}
		return c.reg.ListOf(t.Key)
	}
	c.bag.Add(diagnostics.NewError(fmt.Sprintf("'%s' requires a strongly typed map", n.Name)).
		WithCode(diagnostics.ErrUntypedCollection).
		WithPrimaryLabel(n.Args[0].Loc(), fmt.Sprintf("found '%s'", argTypes[0])).
		WithHelp("declare the argument as map<K, V>"))
	return types.UnknownType
}

func checkLegacyObjectMapToMap(c *Checker, n *ast.FunctionCall, argTypes []types.SoyType) types.SoyType {
	if !c.requireArgCount(n, 1) {
		return types.UnknownType
	}
	switch t := argTypes[0].(type) {
	case *types.LegacyObjectMapType:
		if t.Key == nil {
			return types.EmptyMapType
		}
		return c.reg.MapOf(t.Key, t.Value)
	}
	if anyUnknown(argTypes[0]) {
		return types.UnknownType
	}
	c.bag.Add(diagnostics.NewError(fmt.Sprintf("incorrect argument type for '%s'", n.Name)).
		WithCode(diagnostics.ErrIncorrectArgType).
		WithPrimaryLabel(n.Args[0].Loc(), fmt.Sprintf("expected a legacy object map, found '%s'", argTypes[0])))
	return types.UnknownType
}

func checkMapToLegacyObjectMap(c *Checker, n *ast.FunctionCall, argTypes []types.SoyType) types.SoyType {
	if !c.requireArgCount(n, 1) {
		return types.UnknownType
	}
	switch t := argTypes[0].(type) {
	case *types.MapType:
		if t.Key == nil {
			return types.EmptyLegacyObjectMapType
		}
		return c.reg.LegacyObjectMapOf(t.Key, t.Value)
	}
	if anyUnknown(argTypes[0]) {
		return types.UnknownType
	}
	c.bag.Add(diagnostics.NewError(fmt.Sprintf("incorrect argument type for '%s'", n.Name)).
		WithCode(diagnostics.ErrIncorrectArgType).
		WithPrimaryLabel(n.Args[0].Loc(), fmt.Sprintf("expected a map, found '%s'", argTypes[0])))
	return types.UnknownType
}

// checkConcatLists concatenates any number of lists; the result element type
// is the lowest common type of the input element types. Empty-list sentinels
// contribute nothing.
func checkConcatLists(c *Checker, n *ast.FunctionCall, argTypes []types.SoyType) types.SoyType {
	var elem types.SoyType
	sawUnknown := false
	for i, arg := range argTypes {
		switch t := arg.(type) {
		case *types.ListType:
			if t.Element != nil {
				elem = types.LowestCommonType(elem, t.Element)
			}
			continue
		}
		if anyUnknown(arg) {
			sawUnknown = true
			continue
		}
		c.bag.Add(diagnostics.NewError(fmt.Sprintf("incorrect argument type for '%s'", n.Name)).
			WithCode(diagnostics.ErrIncorrectArgType).
			WithPrimaryLabel(n.Args[i].Loc(), fmt.Sprintf("expected a list, found '%s'", arg)))
	}
	if elem == nil {
		if sawUnknown {
			return c.reg.ListOf(types.UnknownType)
		}
		return types.EmptyListType
	}
	return c.reg.ListOf(elem)
}

// checkVeData pairs a visual element with its logged payload proto.
func checkVeData(c *Checker, n *ast.FunctionCall, argTypes []types.SoyType) types.SoyType {
	if !c.requireArgCount(n, 2) {
		return types.VeDataType
	}
	ve, ok := argTypes[0].(*types.VeType)
	if !ok {
		if !anyUnknown(argTypes[0]) {
			c.bag.Add(diagnostics.NewError(fmt.Sprintf("incorrect argument type for '%s'", n.Name)).
				WithCode(diagnostics.ErrIncorrectArgType).
				WithPrimaryLabel(n.Args[0].Loc(), fmt.Sprintf("expected a visual element, found '%s'", argTypes[0])))
		}
		return types.VeDataType
	}
	data := argTypes[1]
	if ve.DataProto != nil && !types.IsAssignableFrom(types.MakeNullable(ve.DataProto), data) {
		c.bag.Add(diagnostics.NewError(fmt.Sprintf("incorrect argument type for '%s'", n.Name)).
			WithCode(diagnostics.ErrIncorrectArgType).
			WithPrimaryLabel(n.Args[1].Loc(), fmt.Sprintf("element expects payload '%s', found '%s'", ve.DataProto, data)))
	}
	return types.VeDataType
}

// checkLoopBuiltin validates that the sole argument is syntactically the
// loop variable of an enclosing {for}, not merely a loop-variable-typed
// expression.
func checkLoopBuiltin(c *Checker, n *ast.FunctionCall, _ []types.SoyType) types.SoyType {
	result := types.IntType
	if n.Name == "isFirst" || n.Name == "isLast" {
		result = types.BoolType
	}
	if !c.requireArgCount(n, 1) {
		return result
	}
	ref, ok := n.Args[0].(*ast.VarRef)
	if !ok || ref.Defn == nil || ref.Defn.Kind != ast.LoopVar || !c.isActiveLoopVar(ref.Defn) {
		c.bag.Add(diagnostics.NewError(fmt.Sprintf("'%s' must be called on the loop variable of an enclosing 'for'", n.Name)).
			WithCode(diagnostics.ErrLoopBuiltinMisuse).
			WithPrimaryLabel(n.Args[0].Loc(), "not a loop variable reference"))
	}
	return result
}
