// Package exprid provides structural identity for expression trees: a hash
// and an equivalence relation that ignore source locations, so two
// separately-allocated but structurally identical references (e.g. `$x.foo`
// on both sides of an `and`) are recognized as the same narrowing target.
package exprid

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/sgammon/closure-templates-sub000/internal/frontend/ast"
)

// separatorByte is a byte that cannot occur in valid UTF-8 sequences. It is
// written between fields so adjacent payloads cannot collide by
// concatenation.
var separatorByte = []byte{255}

// Node kind tags for hashing. These only need to be stable within one
// process; they are never serialized.
const (
	tagNull = iota + 1
	tagBool
	tagInt
	tagFloat
	tagString
	tagGlobal
	tagVar
	tagList
	tagRecord
	tagMap
	tagField
	tagItem
	tagUnary
	tagBinary
	tagConditional
	tagNullCoalescing
	tagCall
	tagProtoInit
	tagVe
)

// Hash computes the structural hash of an expression.
func Hash(e ast.Expr) uint64 {
	h := xxhash.New()
	writeExpr(h, e)
	return h.Sum64()
}

func writeTag(h *xxhash.Digest, tag byte) {
	_, _ = h.Write([]byte{tag})
	_, _ = h.Write(separatorByte)
}

func writeString(h *xxhash.Digest, s string) {
	_, _ = h.WriteString(s)
	_, _ = h.Write(separatorByte)
}

func writeUint64(h *xxhash.Digest, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = h.Write(buf[:])
	_, _ = h.Write(separatorByte)
}

func writeBool(h *xxhash.Digest, b bool) {
	if b {
		_, _ = h.Write([]byte{1})
	} else {
		_, _ = h.Write([]byte{0})
	}
	_, _ = h.Write(separatorByte)
}

func writeExpr(h *xxhash.Digest, e ast.Expr) {
	switch n := e.(type) {
	case nil:
		writeTag(h, 0)
	case *ast.NullLiteral:
		writeTag(h, tagNull)
	case *ast.BoolLiteral:
		writeTag(h, tagBool)
		writeBool(h, n.Value)
	case *ast.IntLiteral:
		writeTag(h, tagInt)
		writeUint64(h, uint64(n.Value))
	case *ast.FloatLiteral:
		writeTag(h, tagFloat)
		writeUint64(h, math.Float64bits(n.Value))
	case *ast.StringLiteral:
		writeTag(h, tagString)
		writeString(h, n.Value)
	case *ast.GlobalRef:
		writeTag(h, tagGlobal)
		writeString(h, n.Name)
	case *ast.VarRef:
		writeTag(h, tagVar)
		writeString(h, n.Name)
	case *ast.ListLiteral:
		writeTag(h, tagList)
		for _, item := range n.Items {
			writeExpr(h, item)
		}
	case *ast.RecordLiteral:
		writeTag(h, tagRecord)
		for _, f := range n.Fields {
			writeString(h, f.Key)
			writeExpr(h, f.Value)
		}
	case *ast.MapLiteral:
		writeTag(h, tagMap)
		for _, entry := range n.Entries {
			writeExpr(h, entry.Key)
			writeExpr(h, entry.Value)
		}
	case *ast.FieldAccess:
		writeTag(h, tagField)
		writeBool(h, n.NullSafe)
		writeString(h, n.Field)
		writeExpr(h, n.Base)
	case *ast.ItemAccess:
		writeTag(h, tagItem)
		writeBool(h, n.NullSafe)
		writeExpr(h, n.Base)
		writeExpr(h, n.Key)
	case *ast.UnaryExpr:
		writeTag(h, tagUnary)
		writeUint64(h, uint64(n.Op))
		writeExpr(h, n.X)
	case *ast.BinaryExpr:
		writeTag(h, tagBinary)
		writeUint64(h, uint64(n.Op))
		writeExpr(h, n.X)
		writeExpr(h, n.Y)
	case *ast.ConditionalExpr:
		writeTag(h, tagConditional)
		writeExpr(h, n.Cond)
		writeExpr(h, n.Then)
		writeExpr(h, n.Else)
	case *ast.NullCoalescingExpr:
		writeTag(h, tagNullCoalescing)
		writeExpr(h, n.X)
		writeExpr(h, n.Fallback)
	case *ast.FunctionCall:
		writeTag(h, tagCall)
		writeString(h, n.Name)
		for _, arg := range n.Args {
			writeExpr(h, arg)
		}
	case *ast.ProtoInit:
		writeTag(h, tagProtoInit)
		writeString(h, n.TypeName)
		for _, arg := range n.Args {
			writeString(h, arg.Name)
			writeExpr(h, arg.Value)
		}
	case *ast.VeLiteral:
		writeTag(h, tagVe)
		writeString(h, n.Name)
	default:
		panic("exprid: unhandled expression kind")
	}
}

// Equivalent reports whether two expressions are structurally identical,
// ignoring source locations.
func Equivalent(a, b ast.Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case *ast.NullLiteral:
		_, ok := b.(*ast.NullLiteral)
		return ok
	case *ast.BoolLiteral:
		y, ok := b.(*ast.BoolLiteral)
		return ok && x.Value == y.Value
	case *ast.IntLiteral:
		y, ok := b.(*ast.IntLiteral)
		return ok && x.Value == y.Value
	case *ast.FloatLiteral:
		y, ok := b.(*ast.FloatLiteral)
		return ok && x.Value == y.Value
	case *ast.StringLiteral:
		y, ok := b.(*ast.StringLiteral)
		return ok && x.Value == y.Value
	case *ast.GlobalRef:
		y, ok := b.(*ast.GlobalRef)
		return ok && x.Name == y.Name
	case *ast.VarRef:
		y, ok := b.(*ast.VarRef)
		return ok && x.Name == y.Name
	case *ast.ListLiteral:
		y, ok := b.(*ast.ListLiteral)
		if !ok || len(x.Items) != len(y.Items) {
			return false
		}
		for i := range x.Items {
			if !Equivalent(x.Items[i], y.Items[i]) {
				return false
			}
		}
		return true
	case *ast.RecordLiteral:
		y, ok := b.(*ast.RecordLiteral)
		if !ok || len(x.Fields) != len(y.Fields) {
			return false
		}
		for i := range x.Fields {
			if x.Fields[i].Key != y.Fields[i].Key || !Equivalent(x.Fields[i].Value, y.Fields[i].Value) {
				return false
			}
		}
		return true
	case *ast.MapLiteral:
		y, ok := b.(*ast.MapLiteral)
		if !ok || len(x.Entries) != len(y.Entries) {
			return false
		}
		for i := range x.Entries {
			if !Equivalent(x.Entries[i].Key, y.Entries[i].Key) || !Equivalent(x.Entries[i].Value, y.Entries[i].Value) {
				return false
			}
		}
		return true
	case *ast.FieldAccess:
		y, ok := b.(*ast.FieldAccess)
		return ok && x.Field == y.Field && x.NullSafe == y.NullSafe && Equivalent(x.Base, y.Base)
	case *ast.ItemAccess:
		y, ok := b.(*ast.ItemAccess)
		return ok && x.NullSafe == y.NullSafe && Equivalent(x.Base, y.Base) && Equivalent(x.Key, y.Key)
	case *ast.UnaryExpr:
		y, ok := b.(*ast.UnaryExpr)
		return ok && x.Op == y.Op && Equivalent(x.X, y.X)
	case *ast.BinaryExpr:
		y, ok := b.(*ast.BinaryExpr)
		return ok && x.Op == y.Op && Equivalent(x.X, y.X) && Equivalent(x.Y, y.Y)
	case *ast.ConditionalExpr:
		y, ok := b.(*ast.ConditionalExpr)
		return ok && Equivalent(x.Cond, y.Cond) && Equivalent(x.Then, y.Then) && Equivalent(x.Else, y.Else)
	case *ast.NullCoalescingExpr:
		y, ok := b.(*ast.NullCoalescingExpr)
		return ok && Equivalent(x.X, y.X) && Equivalent(x.Fallback, y.Fallback)
	case *ast.FunctionCall:
		y, ok := b.(*ast.FunctionCall)
		if !ok || x.Name != y.Name || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !Equivalent(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	case *ast.ProtoInit:
		y, ok := b.(*ast.ProtoInit)
		if !ok || x.TypeName != y.TypeName || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if x.Args[i].Name != y.Args[i].Name || !Equivalent(x.Args[i].Value, y.Args[i].Value) {
				return false
			}
		}
		return true
	case *ast.VeLiteral:
		y, ok := b.(*ast.VeLiteral)
		return ok && x.Name == y.Name
	default:
		panic("exprid: unhandled expression kind")
	}
}
