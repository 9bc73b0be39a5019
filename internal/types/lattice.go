package types

import (
	"github.com/hashicorp/go-set/v3"
)

// IsAssignableFrom reports whether a value of type src can be assigned to a
// location of type dst. The relation is reflexive; Unknown and Any absorb
// everything, and Error passes in both directions so one upstream failure
// does not cascade into unrelated diagnostics. Assignability between two
// unions holds iff every member of src is assignable into some member of dst.
func IsAssignableFrom(dst, src SoyType) bool {
	if su, ok := src.(*UnionType); ok {
		for _, m := range su.members {
			if !IsAssignableFrom(dst, m) {
				return false
			}
		}
		return true
	}
	switch src.Kind() {
	case UnknownKind, ErrorKind:
		return true
	}
	switch dst.Kind() {
	case AnyKind, UnknownKind, ErrorKind:
		return true
	}
	return dst.assignableFromNonUnion(src)
}

// UnionOf computes the union of the given member types. Nested unions are
// flattened, duplicates dropped, and a single surviving member is returned
// bare. Calling with no members is a caller error.
func UnionOf(members ...SoyType) SoyType {
	if len(members) == 0 {
		panic("UnionOf requires at least one member")
	}
	flat := make([]SoyType, 0, len(members))
	seen := set.New[string](len(members))
	var add func(t SoyType)
	add = func(t SoyType) {
		if u, ok := t.(*UnionType); ok {
			for _, m := range u.members {
				add(m)
			}
			return
		}
		if seen.Insert(t.String()) {
			flat = append(flat, t)
		}
	}
	for _, m := range members {
		add(m)
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return &UnionType{members: flat}
}

// IsNullable reports whether t admits the null value.
func IsNullable(t SoyType) bool {
	if t.Kind() == NullKind {
		return true
	}
	if u, ok := t.(*UnionType); ok {
		for _, m := range u.members {
			if m.Kind() == NullKind {
				return true
			}
		}
	}
	return false
}

// RemoveNull strips the Null member from a union type. Non-union types and
// the Null type itself are returned unchanged.
func RemoveNull(t SoyType) SoyType {
	u, ok := t.(*UnionType)
	if !ok {
		return t
	}
	survivors := make([]SoyType, 0, len(u.members))
	for _, m := range u.members {
		if m.Kind() != NullKind {
			survivors = append(survivors, m)
		}
	}
	if len(survivors) == len(u.members) {
		return t
	}
	return UnionOf(survivors...)
}

// MakeNullable returns a type admitting null in addition to t's values.
func MakeNullable(t SoyType) SoyType {
	if IsNullable(t) || t.Kind() == UnknownKind || t.Kind() == AnyKind || t.Kind() == ErrorKind {
		return t
	}
	return UnionOf(t, NullType)
}

// LowestCommonType computes the smallest type assignable from both a and b:
// one operand when it absorbs the other, their union otherwise. Error
// propagates so a single upstream failure does not compound diagnostics.
// Either argument may be nil, standing for "no candidate yet" during a fold.
func LowestCommonType(a, b SoyType) SoyType {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.Kind() == ErrorKind || b.Kind() == ErrorKind {
		return ErrorType
	}
	if a.Equals(b) {
		return a
	}
	if IsAssignableFrom(a, b) {
		return a
	}
	if IsAssignableFrom(b, a) {
		return b
	}
	return UnionOf(a, b)
}

// LowestCommonTypeOf folds LowestCommonType over a non-empty candidate list.
func LowestCommonTypeOf(candidates ...SoyType) SoyType {
	if len(candidates) == 0 {
		panic("LowestCommonTypeOf requires at least one candidate")
	}
	var result SoyType
	for _, c := range candidates {
		result = LowestCommonType(result, c)
	}
	return result
}

// IsAllowedMapKeyType reports whether t may be used as a map key. The
// allow-list is fixed: primitive-ish comparable kinds only. Unknown, Any and
// Error pass so upstream failures do not cascade.
func IsAllowedMapKeyType(t SoyType) bool {
	switch t.Kind() {
	case BoolKind, IntKind, FloatKind, StringKind, ProtoEnumKind:
		return true
	case AnyKind, UnknownKind, ErrorKind:
		return true
	default:
		return false
	}
}
