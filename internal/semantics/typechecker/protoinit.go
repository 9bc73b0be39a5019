package typechecker

import (
	"fmt"

	"github.com/sgammon/closure-templates-sub000/internal/diagnostics"
	"github.com/sgammon/closure-templates-sub000/internal/frontend/ast"
	"github.com/sgammon/closure-templates-sub000/internal/logging"
	"github.com/sgammon/closure-templates-sub000/internal/types"
)

// visitProtoInit validates a proto construction expression against the
// message descriptor: required fields must be present, every named argument
// must exist, and argument types must be assignable to the (nullable) field
// types.
func (c *Checker) visitProtoInit(n *ast.ProtoInit) types.SoyType {
	argTypes := make([]types.SoyType, len(n.Args))
	for i, arg := range n.Args {
		argTypes[i] = c.visitExpr(arg.Value)
	}

	named, ok := c.reg.Type(n.TypeName)
	if !ok {
		c.bag.Add(diagnostics.NewError(fmt.Sprintf("unknown proto type '%s'", n.TypeName)).
			WithCode(diagnostics.ErrUnknownProtoType).
			WithPrimaryLabel(n.Loc(), "no such message is registered"))
		return c.setType(n, types.ErrorType)
	}
	protoType, ok := named.(*types.ProtoType)
	if !ok {
		c.bag.Add(diagnostics.NewError(fmt.Sprintf("'%s' is not a proto message type", n.TypeName)).
			WithCode(diagnostics.ErrNotAProtoType).
			WithPrimaryLabel(n.Loc(), fmt.Sprintf("resolves to '%s'", named)))
		return c.setType(n, types.ErrorType)
	}
	schema := protoType.Schema

	given := make(map[string]bool, len(n.Args))
	for _, arg := range n.Args {
		given[arg.Name] = true
	}
	for _, required := range schema.RequiredFieldNames() {
		if !given[required] {
			c.bag.Add(diagnostics.NewError(fmt.Sprintf("missing required field '%s' of proto '%s'", required, n.TypeName)).
				WithCode(diagnostics.ErrMissingRequiredField).
				WithPrimaryLabel(n.Loc(), "required by the message definition"))
		}
	}

	for i, arg := range n.Args {
		fieldType, ok := schema.FieldType(arg.Name)
		if !ok {
			diag := diagnostics.NewError(fmt.Sprintf("proto '%s' has no field '%s'", n.TypeName, arg.Name)).
				WithCode(diagnostics.ErrProtoFieldNotFound).
				WithPrimaryLabel(arg.Value.Loc(), "unknown field")
			if suggestion := logging.ClosestName(arg.Name, schema.FieldNames()); suggestion != "" {
				diag = diag.WithHelp(fmt.Sprintf("did you mean '%s'?", suggestion))
			}
			c.bag.Add(diag)
			continue
		}
		c.checkProtoFieldArg(n, arg, fieldType, argTypes[i], schema)
	}

	return c.setType(n, protoType)
}

func (c *Checker) checkProtoFieldArg(n *ast.ProtoInit, arg ast.ProtoInitArg, fieldType, argType types.SoyType, schema types.ProtoSchema) {
	if argType.Kind() == types.NullKind {
		c.bag.Add(diagnostics.NewError(fmt.Sprintf("cannot assign null to field '%s' of proto '%s'", arg.Name, n.TypeName)).
			WithCode(diagnostics.ErrProtoNullArgument).
			WithPrimaryLabel(arg.Value.Loc(), "omit the field instead of passing null"))
		return
	}
	// Early-outs to avoid cascading diagnostics from upstream failures:
	// unknown/error arguments pass, and a list<?> argument matches any
	// repeated field.
	switch argType.Kind() {
	case types.UnknownKind, types.ErrorKind:
		return
	}
	if lt, ok := argType.(*types.ListType); ok && schema.IsRepeatedField(arg.Name) {
		if lt.Element == nil || lt.Element.Kind() == types.UnknownKind {
			return
		}
	}
	if !types.IsAssignableFrom(types.MakeNullable(fieldType), argType) {
		c.bag.Add(diagnostics.NewError(fmt.Sprintf("incorrect type for field '%s' of proto '%s'", arg.Name, n.TypeName)).
			WithCode(diagnostics.ErrProtoFieldTypeMismatch).
			WithPrimaryLabel(arg.Value.Loc(), fmt.Sprintf("expected '%s', found '%s'", fieldType, argType)))
	}
}
