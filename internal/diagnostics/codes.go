package diagnostics

// Stable diagnostic codes for the template type-resolution pass.
const (
	// Type checker errors (T prefix)
	ErrTypeMismatch          = "T0001"
	ErrUnsupportedAccess     = "T0002"
	ErrUndefinedMember       = "T0003"
	ErrDuplicateMapKey       = "T0004"
	ErrIllegalMapKeyType     = "T0005"
	ErrIllegalCommonKeyType  = "T0006"
	ErrEmptyCollectionAccess = "T0007"
	ErrBadForeachType        = "T0008"
	ErrIncompatibleOperands  = "T0009"
	ErrNullableBracketAccess = "T0010"
	ErrDottedLength          = "T0011"

	// Proto construction errors (P prefix)
	ErrUnknownProtoType       = "P0001"
	ErrMissingRequiredField   = "P0002"
	ErrProtoFieldNotFound     = "P0003"
	ErrProtoNullArgument      = "P0004"
	ErrProtoFieldTypeMismatch = "P0005"
	ErrNotAProtoType          = "P0006"

	// Function call errors (F prefix)
	ErrIncorrectArgType  = "F0001"
	ErrLoopBuiltinMisuse = "F0002"
	ErrBadSignature      = "F0003"
	ErrUntypedCollection = "F0004"

	// Header/declaration errors (H prefix)
	ErrExplicitNullType   = "H0001"
	ErrInferredNullType   = "H0002"
	ErrNonConstantDefault = "H0003"

	// Visual element errors (V prefix)
	ErrUnknownVisualElement = "V0001"

	// Warnings (W prefix)
	WarnConstantOrOperand = "W0001"

	// Internal invariant violations (X prefix). These indicate engine bugs,
	// not user errors, and are raised as panics rather than bag entries.
	ErrInternalMissingType = "X0001"
)
