package typechecker

import (
	"fmt"
	"sync"

	"github.com/sgammon/closure-templates-sub000/internal/diagnostics"
	"github.com/sgammon/closure-templates-sub000/internal/frontend/ast"
	"github.com/sgammon/closure-templates-sub000/internal/types"
	"github.com/sgammon/closure-templates-sub000/internal/types/registry"
)

// ResolvedSignature is a declared function signature with its textual
// annotations parsed into lattice types.
type ResolvedSignature struct {
	ParamTypes []types.SoyType
	ReturnType types.SoyType
}

// SignatureResolver parses textual signature annotations on first use and
// caches the result by signature object identity for the lifetime of the
// pass. It is safe to share across concurrently-checked files.
type SignatureResolver struct {
	reg *registry.TypeRegistry
	bag *diagnostics.Bag

	mu    sync.Mutex
	cache map[*ast.Signature]*ResolvedSignature
}

// NewSignatureResolver creates a resolver parsing through reg and reporting
// malformed annotations to bag.
func NewSignatureResolver(reg *registry.TypeRegistry, bag *diagnostics.Bag) *SignatureResolver {
	return &SignatureResolver{
		reg:   reg,
		bag:   bag,
		cache: make(map[*ast.Signature]*ResolvedSignature),
	}
}

// Resolve selects the signature of decl whose parameter count matches argc
// and returns it with its types resolved. The second result is false when no
// signature matches; signature parse failures surface as diagnostics and
// yield a nil ResolvedSignature for that overload.
func (r *SignatureResolver) Resolve(decl *ast.FunctionDecl, argc int) (*ResolvedSignature, bool) {
	for _, sig := range decl.Signatures {
		if len(sig.ParamTypes) != argc {
			continue
		}
		return r.resolved(decl.Name, sig), true
	}
	return nil, false
}

func (r *SignatureResolver) resolved(funcName string, sig *ast.Signature) *ResolvedSignature {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.cache[sig]; ok {
		return cached
	}

	resolved := &ResolvedSignature{ParamTypes: make([]types.SoyType, len(sig.ParamTypes))}
	ok := true
	for i, text := range sig.ParamTypes {
		t, err := r.reg.ParseType(text)
		if err != nil {
			r.bag.Add(diagnostics.NewError(fmt.Sprintf("invalid parameter type %q in signature of function '%s'", text, funcName)).
				WithCode(diagnostics.ErrBadSignature).
				WithNote(err.Error()))
			ok = false
			t = types.UnknownType
		}
		resolved.ParamTypes[i] = t
	}
	ret, err := r.reg.ParseType(sig.ReturnType)
	if err != nil {
		r.bag.Add(diagnostics.NewError(fmt.Sprintf("invalid return type %q in signature of function '%s'", sig.ReturnType, funcName)).
			WithCode(diagnostics.ErrBadSignature).
			WithNote(err.Error()))
		ok = false
		ret = types.UnknownType
	}
	resolved.ReturnType = ret
	if !ok {
		resolved = nil
	}
	r.cache[sig] = resolved
	return resolved
}

// visitFunctionCall types a call: compiler built-ins get bespoke rules,
// declared plugin functions go through signature matching, and calls to
// unresolved functions degrade silently to Unknown (name resolution is a
// different pass's concern).
func (c *Checker) visitFunctionCall(n *ast.FunctionCall) types.SoyType {
	argTypes := make([]types.SoyType, len(n.Args))
	for i, arg := range n.Args {
		argTypes[i] = c.visitExpr(arg)
	}

	if handler, ok := builtinFunctions[n.Name]; ok {
		return c.setType(n, handler(c, n, argTypes))
	}

	if n.Decl != nil {
		sig, ok := c.signatures.Resolve(n.Decl, len(n.Args))
		if !ok || sig == nil {
			// No overload with this arity, or the annotation failed to
			// parse: no diagnostic beyond what parsing produced.
			return c.setType(n, types.UnknownType)
		}
		for i, arg := range n.Args {
			// Unknown actual types pass silently.
			if !types.IsAssignableFrom(sig.ParamTypes[i], argTypes[i]) {
				c.bag.Add(diagnostics.NewError(fmt.Sprintf("incorrect argument type for '%s'", n.Name)).
					WithCode(diagnostics.ErrIncorrectArgType).
					WithPrimaryLabel(arg.Loc(), fmt.Sprintf("expected '%s', found '%s'", sig.ParamTypes[i], argTypes[i])))
			}
		}
		return c.setType(n, sig.ReturnType)
	}

	return c.setType(n, types.UnknownType)
}
