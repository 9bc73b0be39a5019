// Package narrowing refines the statically-known types of expressions inside
// control-flow branches based on runtime-checkable conditions (null checks
// and boolean tests).
package narrowing

import (
	"github.com/sgammon/closure-templates-sub000/internal/frontend/ast"
	"github.com/sgammon/closure-templates-sub000/internal/semantics/exprid"
	"github.com/sgammon/closure-templates-sub000/internal/types"
)

// TypeSubstitution is one active narrowing override, keyed by structural
// expression identity. Substitutions form an immutable persistent stack: the
// typechecker holds a single mutable "current" pointer, saves it before a
// branch, pushes branch-local nodes, and restores the saved pointer on exit.
// Push and restore are O(1); lookup is O(depth).
type TypeSubstitution struct {
	parent *TypeSubstitution
	ref    ast.Expr
	hash   uint64
	typ    types.SoyType
}

// Push creates a substitution stacked on parent. parent may be nil.
func Push(parent *TypeSubstitution, ref ast.Expr, typ types.SoyType) *TypeSubstitution {
	return &TypeSubstitution{
		parent: parent,
		ref:    ref,
		hash:   exprid.Hash(ref),
		typ:    typ,
	}
}

// Lookup returns the innermost substituted type for an expression
// structurally equivalent to e. A nil receiver is the empty stack.
func (s *TypeSubstitution) Lookup(e ast.Expr) (types.SoyType, bool) {
	if s == nil {
		return nil, false
	}
	h := exprid.Hash(e)
	for cur := s; cur != nil; cur = cur.parent {
		if cur.hash == h && exprid.Equivalent(cur.ref, e) {
			return cur.typ, true
		}
	}
	return nil, false
}
