// Package registry provides the interned type lookup service consumed by the
// type-resolution pass: named types (protos, enums) registered from
// descriptors, structural types interned by value so identical types compare
// equal by pointer fast-path, and the textual type grammar used in
// declarations and function signature annotations.
package registry

import (
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/sgammon/closure-templates-sub000/internal/types"
)

// TypeRegistry interns structural types and resolves named types. It is
// read-mostly: population happens before checking starts, and the interning
// maps are guarded so files can be checked concurrently.
type TypeRegistry struct {
	mu       sync.RWMutex
	named    map[string]types.SoyType
	interned map[string]types.SoyType
}

// New creates an empty registry.
func New() *TypeRegistry {
	return &TypeRegistry{
		named:    make(map[string]types.SoyType),
		interned: make(map[string]types.SoyType),
	}
}

// Register binds a name to a type. Later registrations overwrite earlier ones.
func (r *TypeRegistry) Register(name string, t types.SoyType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.named[name] = t
}

// Type resolves a type name: built-in names first, then registered names.
func (r *TypeRegistry) Type(name string) (types.SoyType, bool) {
	if t, ok := builtinType(name); ok {
		return t, true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.named[name]
	return t, ok
}

func builtinType(name string) (types.SoyType, bool) {
	switch name {
	case "any":
		return types.AnyType, true
	case "?":
		return types.UnknownType, true
	case "null":
		return types.NullType, true
	case "bool":
		return types.BoolType, true
	case "int":
		return types.IntType, true
	case "float":
		return types.FloatType, true
	case "string":
		return types.StringType, true
	case "html":
		return types.HtmlType, true
	case "js":
		return types.JsType, true
	case "css":
		return types.CssType, true
	case "uri":
		return types.UriType, true
	case "trusted_resource_uri":
		return types.TrustedResourceUriType, true
	case "attributes":
		return types.AttributesType, true
	case "ve_data":
		return types.VeDataType, true
	default:
		return nil, false
	}
}

// intern returns the canonical instance for a structural type, so that
// repeated construction of the same type yields pointer-equal results.
func (r *TypeRegistry) intern(t types.SoyType) types.SoyType {
	key := t.String()
	r.mu.RLock()
	existing, ok := r.interned[key]
	r.mu.RUnlock()
	if ok {
		return existing
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.interned[key]; ok {
		return existing
	}
	r.interned[key] = t
	return t
}

// ListOf returns the interned list type with the given element type.
func (r *TypeRegistry) ListOf(element types.SoyType) types.SoyType {
	return r.intern(types.NewList(element))
}

// MapOf returns the interned map type with the given key and value types.
func (r *TypeRegistry) MapOf(key, value types.SoyType) types.SoyType {
	return r.intern(types.NewMap(key, value))
}

// LegacyObjectMapOf returns the interned legacy object map type.
func (r *TypeRegistry) LegacyObjectMapOf(key, value types.SoyType) types.SoyType {
	return r.intern(types.NewLegacyObjectMap(key, value))
}

// RecordOf returns the interned record type with the given fields.
func (r *TypeRegistry) RecordOf(fields map[string]types.SoyType) types.SoyType {
	return r.intern(types.NewRecord(fields))
}

// UnionOf returns the interned union of the given members.
func (r *TypeRegistry) UnionOf(members ...types.SoyType) types.SoyType {
	return r.intern(types.UnionOf(members...))
}

// ParseType parses the textual type grammar:
//
//	type    := unary ('|' unary)*
//	unary   := name | name '<' type (',' type)* '>' | '[' field (',' field)* ']'
//	field   := name ':' type
//
// Unknown names, wrong arities and malformed syntax are errors.
func (r *TypeRegistry) ParseType(s string) (types.SoyType, error) {
	p := &typeParser{reg: r, input: s}
	t, err := p.parseUnion()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return nil, errors.Errorf("trailing input in type %q at offset %d", s, p.pos)
	}
	return t, nil
}

type typeParser struct {
	reg   *TypeRegistry
	input string
	pos   int
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *typeParser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *typeParser) expect(c byte) error {
	p.skipSpace()
	if p.peek() != c {
		return errors.Errorf("expected %q at offset %d in type %q", string(c), p.pos, p.input)
	}
	p.pos++
	return nil
}

func (p *typeParser) ident() (string, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == '_' || c == '.' || c == '?' ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			p.pos++
			continue
		}
		break
	}
	if start == p.pos {
		return "", errors.Errorf("expected type name at offset %d in type %q", p.pos, p.input)
	}
	return p.input[start:p.pos], nil
}

func (p *typeParser) parseUnion() (types.SoyType, error) {
	first, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	members := []types.SoyType{first}
	for {
		p.skipSpace()
		if p.peek() != '|' {
			break
		}
		p.pos++
		next, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		members = append(members, next)
	}
	if len(members) == 1 {
		return members[0], nil
	}
	return p.reg.UnionOf(members...), nil
}

func (p *typeParser) parseUnary() (types.SoyType, error) {
	p.skipSpace()
	if p.peek() == '[' {
		return p.parseRecord()
	}
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.peek() == '<' {
		return p.parseParameterized(name)
	}
	t, ok := p.reg.Type(name)
	if !ok {
		return nil, errors.Errorf("unknown type %q", name)
	}
	return t, nil
}

func (p *typeParser) parseParameterized(name string) (types.SoyType, error) {
	p.pos++ // consume '<'
	args := make([]types.SoyType, 0, 2)
	for {
		arg, err := p.parseUnion()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		p.skipSpace()
		if p.peek() == ',' {
			p.pos++
			continue
		}
		break
	}
	if err := p.expect('>'); err != nil {
		return nil, err
	}
	switch name {
	case "list":
		if len(args) != 1 {
			return nil, errors.Errorf("list takes 1 type parameter, got %d", len(args))
		}
		return p.reg.ListOf(args[0]), nil
	case "map":
		if len(args) != 2 {
			return nil, errors.Errorf("map takes 2 type parameters, got %d", len(args))
		}
		return p.reg.MapOf(args[0], args[1]), nil
	case "legacy_object_map":
		if len(args) != 2 {
			return nil, errors.Errorf("legacy_object_map takes 2 type parameters, got %d", len(args))
		}
		return p.reg.LegacyObjectMapOf(args[0], args[1]), nil
	case "ve":
		if len(args) != 1 {
			return nil, errors.Errorf("ve takes 1 type parameter, got %d", len(args))
		}
		return p.reg.intern(types.NewVe(args[0])), nil
	default:
		return nil, errors.Errorf("type %q does not take parameters", name)
	}
}

func (p *typeParser) parseRecord() (types.SoyType, error) {
	p.pos++ // consume '['
	fields := make(map[string]types.SoyType)
	p.skipSpace()
	if p.peek() == ']' {
		p.pos++
		return p.reg.RecordOf(fields), nil
	}
	for {
		name, err := p.ident()
		if err != nil {
			return nil, err
		}
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		fieldType, err := p.parseUnion()
		if err != nil {
			return nil, err
		}
		fields[strings.TrimSpace(name)] = fieldType
		p.skipSpace()
		if p.peek() == ',' {
			p.pos++
			continue
		}
		break
	}
	if err := p.expect(']'); err != nil {
		return nil, err
	}
	return p.reg.RecordOf(fields), nil
}
