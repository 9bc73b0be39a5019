package types

import (
	"fmt"
	"sort"
	"strings"
)

// List Types

// ListType represents list types: list<T>
type ListType struct {
	Element SoyType // nil marks the empty-list sentinel
}

// NewList creates a list type with the given element type.
func NewList(element SoyType) *ListType {
	if element == nil {
		panic("list element type must not be nil; use EmptyListType for the sentinel")
	}
	return &ListType{Element: element}
}

// EmptyListType is the distinguished type of the empty list literal `[]`.
// It is structurally distinct from list<?> and must be special-cased before
// generic element-type logic.
var EmptyListType = &ListType{}

func (l *ListType) Kind() Kind { return ListKind }

func (l *ListType) String() string {
	if l.Element == nil {
		return "list<>"
	}
	return fmt.Sprintf("list<%s>", l.Element.String())
}

func (l *ListType) Equals(other SoyType) bool {
	if o, ok := other.(*ListType); ok {
		if l.Element == nil || o.Element == nil {
			return l.Element == nil && o.Element == nil
		}
		return l.Element.Equals(o.Element)
	}
	return false
}

func (l *ListType) assignableFromNonUnion(src SoyType) bool {
	o, ok := src.(*ListType)
	if !ok {
		return false
	}
	if o.Element == nil {
		// The empty list is assignable to every list type.
		return true
	}
	if l.Element == nil {
		return false
	}
	return IsAssignableFrom(l.Element, o.Element)
}

// Map Types

// MapType represents map types: map<K, V>
type MapType struct {
	Key   SoyType // nil marks the empty-map sentinel
	Value SoyType
}

// NewMap creates a map type with the given key and value types.
func NewMap(key, value SoyType) *MapType {
	if key == nil || value == nil {
		panic("map key/value types must not be nil; use EmptyMapType for the sentinel")
	}
	return &MapType{Key: key, Value: value}
}

// EmptyMapType is the distinguished type of the empty map literal `map()`.
var EmptyMapType = &MapType{}

func (m *MapType) Kind() Kind { return MapKind }

func (m *MapType) String() string {
	if m.Key == nil {
		return "map<>"
	}
	return fmt.Sprintf("map<%s,%s>", m.Key.String(), m.Value.String())
}

func (m *MapType) Equals(other SoyType) bool {
	if o, ok := other.(*MapType); ok {
		if m.Key == nil || o.Key == nil {
			return m.Key == nil && o.Key == nil
		}
		return m.Key.Equals(o.Key) && m.Value.Equals(o.Value)
	}
	return false
}

func (m *MapType) assignableFromNonUnion(src SoyType) bool {
	o, ok := src.(*MapType)
	if !ok {
		return false
	}
	if o.Key == nil {
		return true
	}
	if m.Key == nil {
		return false
	}
	return IsAssignableFrom(m.Key, o.Key) && IsAssignableFrom(m.Value, o.Value)
}

// LegacyObjectMapType represents the deprecated map representation:
// legacy_object_map<K, V>. Intentionally incompatible with MapType in the
// type system to force explicit conversions during the migration.
type LegacyObjectMapType struct {
	Key   SoyType // nil marks the empty-map sentinel
	Value SoyType
}

// NewLegacyObjectMap creates a legacy object map type.
func NewLegacyObjectMap(key, value SoyType) *LegacyObjectMapType {
	if key == nil || value == nil {
		panic("legacy_object_map key/value types must not be nil")
	}
	return &LegacyObjectMapType{Key: key, Value: value}
}

// EmptyLegacyObjectMapType is the distinguished type of the empty legacy map
// literal `[:]`.
var EmptyLegacyObjectMapType = &LegacyObjectMapType{}

func (m *LegacyObjectMapType) Kind() Kind { return LegacyObjectMapKind }

func (m *LegacyObjectMapType) String() string {
	if m.Key == nil {
		return "legacy_object_map<>"
	}
	return fmt.Sprintf("legacy_object_map<%s,%s>", m.Key.String(), m.Value.String())
}

func (m *LegacyObjectMapType) Equals(other SoyType) bool {
	if o, ok := other.(*LegacyObjectMapType); ok {
		if m.Key == nil || o.Key == nil {
			return m.Key == nil && o.Key == nil
		}
		return m.Key.Equals(o.Key) && m.Value.Equals(o.Value)
	}
	return false
}

func (m *LegacyObjectMapType) assignableFromNonUnion(src SoyType) bool {
	o, ok := src.(*LegacyObjectMapType)
	if !ok {
		return false
	}
	if o.Key == nil {
		return true
	}
	if m.Key == nil {
		return false
	}
	return IsAssignableFrom(m.Key, o.Key) && IsAssignableFrom(m.Value, o.Value)
}

// Record Types

// RecordType represents record types: [field: T, ...]. Field order is
// insensitive; String() renders fields sorted by name.
type RecordType struct {
	fields map[string]SoyType
	names  []string // sorted
}

// NewRecord creates a record type with the given field map.
func NewRecord(fields map[string]SoyType) *RecordType {
	copied := make(map[string]SoyType, len(fields))
	names := make([]string, 0, len(fields))
	for name, typ := range fields {
		copied[name] = typ
		names = append(names, name)
	}
	sort.Strings(names)
	return &RecordType{fields: copied, names: names}
}

// EmptyRecordType is the type of the empty record literal `record()`.
var EmptyRecordType = NewRecord(nil)

func (r *RecordType) Kind() Kind { return RecordKind }

func (r *RecordType) String() string {
	parts := make([]string, len(r.names))
	for i, name := range r.names {
		parts[i] = fmt.Sprintf("%s: %s", name, r.fields[name].String())
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, ", "))
}

// Field returns the type of the named field.
func (r *RecordType) Field(name string) (SoyType, bool) {
	t, ok := r.fields[name]
	return t, ok
}

// FieldNames returns the field names in sorted order.
func (r *RecordType) FieldNames() []string {
	return r.names
}

func (r *RecordType) Equals(other SoyType) bool {
	o, ok := other.(*RecordType)
	if !ok || len(r.fields) != len(o.fields) {
		return false
	}
	for name, typ := range r.fields {
		ot, ok := o.fields[name]
		if !ok || !typ.Equals(ot) {
			return false
		}
	}
	return true
}

func (r *RecordType) assignableFromNonUnion(src SoyType) bool {
	o, ok := src.(*RecordType)
	if !ok {
		return false
	}
	// Width subtyping: src must have every field of r, each assignable.
	for name, typ := range r.fields {
		ot, ok := o.fields[name]
		if !ok || !IsAssignableFrom(typ, ot) {
			return false
		}
	}
	return true
}

// Union Types

// UnionType represents union types: A|B|.... Invariants: members are unique,
// there are at least two, and no member is itself a union. Construct only
// through UnionOf.
type UnionType struct {
	members []SoyType
}

func (u *UnionType) Kind() Kind { return UnionKind }

// Members returns the union's member types.
func (u *UnionType) Members() []SoyType { return u.members }

func (u *UnionType) String() string {
	parts := make([]string, len(u.members))
	for i, m := range u.members {
		parts[i] = m.String()
	}
	return strings.Join(parts, "|")
}

func (u *UnionType) Equals(other SoyType) bool {
	o, ok := other.(*UnionType)
	if !ok || len(u.members) != len(o.members) {
		return false
	}
	// Order-insensitive member comparison.
	for _, m := range u.members {
		found := false
		for _, om := range o.members {
			if m.Equals(om) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (u *UnionType) assignableFromNonUnion(src SoyType) bool {
	for _, m := range u.members {
		if IsAssignableFrom(m, src) {
			return true
		}
	}
	return false
}

// Proto Types

// ProtoSchema resolves the fields of a proto message type. Implemented by
// the descriptor-backed registry adapter.
type ProtoSchema interface {
	// Name returns the fully qualified message name
	Name() string
	// FieldType returns the lattice type of the named field
	FieldType(name string) (SoyType, bool)
	// FieldNames returns all declared field names
	FieldNames() []string
	// RequiredFieldNames returns the names of required fields
	RequiredFieldNames() []string
	// IsRepeatedField reports whether the named field is repeated
	IsRepeatedField(name string) bool
}

// ProtoType represents a proto message type backed by a descriptor schema.
type ProtoType struct {
	Schema ProtoSchema
}

// NewProto creates a proto message type.
func NewProto(schema ProtoSchema) *ProtoType {
	return &ProtoType{Schema: schema}
}

func (p *ProtoType) Kind() Kind     { return ProtoKind }
func (p *ProtoType) String() string { return p.Schema.Name() }

func (p *ProtoType) Equals(other SoyType) bool {
	if o, ok := other.(*ProtoType); ok {
		return p.Schema.Name() == o.Schema.Name()
	}
	return false
}

func (p *ProtoType) assignableFromNonUnion(src SoyType) bool {
	return p.Equals(src)
}

// ProtoEnumType represents a proto enum type.
type ProtoEnumType struct {
	name string
}

// NewProtoEnum creates a proto enum type with the given qualified name.
func NewProtoEnum(name string) *ProtoEnumType {
	return &ProtoEnumType{name: name}
}

func (e *ProtoEnumType) Kind() Kind     { return ProtoEnumKind }
func (e *ProtoEnumType) String() string { return e.name }

func (e *ProtoEnumType) Equals(other SoyType) bool {
	if o, ok := other.(*ProtoEnumType); ok {
		return e.name == o.name
	}
	return false
}

func (e *ProtoEnumType) assignableFromNonUnion(src SoyType) bool {
	// Enums freely convert to and from ints.
	return e.Equals(src) || src.Kind() == IntKind
}

// Visual element Types

// VeType represents a visual element token, optionally carrying the proto
// type of its logged payload. A nil DataProto matches any payload.
type VeType struct {
	DataProto SoyType
}

// NewVe creates a visual element type. dataProto may be nil.
func NewVe(dataProto SoyType) *VeType {
	return &VeType{DataProto: dataProto}
}

func (v *VeType) Kind() Kind { return VeKind }

func (v *VeType) String() string {
	if v.DataProto == nil {
		return "ve"
	}
	return fmt.Sprintf("ve<%s>", v.DataProto.String())
}

func (v *VeType) Equals(other SoyType) bool {
	if o, ok := other.(*VeType); ok {
		if v.DataProto == nil || o.DataProto == nil {
			return v.DataProto == nil && o.DataProto == nil
		}
		return v.DataProto.Equals(o.DataProto)
	}
	return false
}

func (v *VeType) assignableFromNonUnion(src SoyType) bool {
	o, ok := src.(*VeType)
	if !ok {
		return false
	}
	if v.DataProto == nil {
		return true
	}
	if o.DataProto == nil {
		return false
	}
	return IsAssignableFrom(v.DataProto, o.DataProto)
}
