package types

// SoyType is the semantic representation of types in the template language.
//
// Design principles:
// - Types are immutable after creation
// - SoyType equality is structural (deep comparison)
// - All types can be displayed as strings
type SoyType interface {
	// Kind returns the type kind tag
	Kind() Kind

	// String returns the canonical source representation of the type
	String() string

	// Equals checks structural equality with another type
	Equals(other SoyType) bool

	// assignableFromNonUnion reports whether a value of the (non-union) src
	// type can be assigned to this type. The generic union/unknown/any
	// handling lives in the package-level IsAssignableFrom; this hook only
	// sees the per-kind residue. Unexported to seal the interface.
	assignableFromNonUnion(src SoyType) bool
}

// Kind identifies the variant of a SoyType.
type Kind int

const (
	AnyKind Kind = iota
	UnknownKind
	ErrorKind
	NullKind
	BoolKind
	IntKind
	FloatKind
	StringKind
	HtmlKind
	JsKind
	CssKind
	UriKind
	TrustedResourceUriKind
	AttributesKind
	ListKind
	MapKind
	LegacyObjectMapKind
	RecordKind
	ProtoKind
	ProtoEnumKind
	UnionKind
	VeKind
	VeDataKind
)

func (k Kind) String() string {
	switch k {
	case AnyKind:
		return "any"
	case UnknownKind:
		return "?"
	case ErrorKind:
		return "$error$"
	case NullKind:
		return "null"
	case BoolKind:
		return "bool"
	case IntKind:
		return "int"
	case FloatKind:
		return "float"
	case StringKind:
		return "string"
	case HtmlKind:
		return "html"
	case JsKind:
		return "js"
	case CssKind:
		return "css"
	case UriKind:
		return "uri"
	case TrustedResourceUriKind:
		return "trusted_resource_uri"
	case AttributesKind:
		return "attributes"
	case ListKind:
		return "list"
	case MapKind:
		return "map"
	case LegacyObjectMapKind:
		return "legacy_object_map"
	case RecordKind:
		return "record"
	case ProtoKind:
		return "proto"
	case ProtoEnumKind:
		return "proto_enum"
	case UnionKind:
		return "union"
	case VeKind:
		return "ve"
	case VeDataKind:
		return "ve_data"
	default:
		return "unknown_kind"
	}
}

// primitiveType represents the scalar and sanitized-content types. Each kind
// has exactly one instance, exported as a package singleton.
type primitiveType struct {
	kind Kind
}

func (p *primitiveType) Kind() Kind     { return p.kind }
func (p *primitiveType) String() string { return p.kind.String() }

func (p *primitiveType) Equals(other SoyType) bool {
	if o, ok := other.(*primitiveType); ok {
		return p.kind == o.kind
	}
	return false
}

func (p *primitiveType) assignableFromNonUnion(src SoyType) bool {
	if p.kind == src.Kind() {
		return true
	}
	// Sanitized content coerces to string.
	if p.kind == StringKind {
		return IsSanitized(src)
	}
	return false
}

// Singletons for all non-parameterized types.
var (
	AnyType                SoyType = &primitiveType{kind: AnyKind}
	UnknownType            SoyType = &primitiveType{kind: UnknownKind}
	ErrorType              SoyType = &primitiveType{kind: ErrorKind}
	NullType               SoyType = &primitiveType{kind: NullKind}
	BoolType               SoyType = &primitiveType{kind: BoolKind}
	IntType                SoyType = &primitiveType{kind: IntKind}
	FloatType              SoyType = &primitiveType{kind: FloatKind}
	StringType             SoyType = &primitiveType{kind: StringKind}
	HtmlType               SoyType = &primitiveType{kind: HtmlKind}
	JsType                 SoyType = &primitiveType{kind: JsKind}
	CssType                SoyType = &primitiveType{kind: CssKind}
	UriType                SoyType = &primitiveType{kind: UriKind}
	TrustedResourceUriType SoyType = &primitiveType{kind: TrustedResourceUriKind}
	AttributesType         SoyType = &primitiveType{kind: AttributesKind}
	VeDataType             SoyType = &primitiveType{kind: VeDataKind}
)

// IsSanitized checks if a type is one of the sanitized-content kinds.
func IsSanitized(t SoyType) bool {
	switch t.Kind() {
	case HtmlKind, JsKind, CssKind, UriKind, TrustedResourceUriKind, AttributesKind:
		return true
	default:
		return false
	}
}

// IsNumeric checks if a type is a numeric type
func IsNumeric(t SoyType) bool {
	switch t.Kind() {
	case IntKind, FloatKind:
		return true
	default:
		return false
	}
}

// IsPrimitive checks if a type is a scalar or sanitized-content type
func IsPrimitive(t SoyType) bool {
	_, ok := t.(*primitiveType)
	return ok
}
