package registry

import (
	"github.com/pkg/errors"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/sgammon/closure-templates-sub000/internal/types"
)

// LoadDescriptorSet registers every message and enum in the descriptor set
// under its fully qualified name. Message field types are resolved lazily
// through the registry so recursive messages do not loop during loading.
func (r *TypeRegistry) LoadDescriptorSet(fds *descriptorpb.FileDescriptorSet) error {
	files, err := protodesc.NewFiles(fds)
	if err != nil {
		return errors.Wrap(err, "building proto file registry")
	}
	files.RangeFiles(func(fd protoreflect.FileDescriptor) bool {
		r.registerMessages(fd.Messages())
		r.registerEnums(fd.Enums())
		return true
	})
	return nil
}

func (r *TypeRegistry) registerMessages(msgs protoreflect.MessageDescriptors) {
	for i := 0; i < msgs.Len(); i++ {
		md := msgs.Get(i)
		if md.IsMapEntry() {
			continue
		}
		r.Register(string(md.FullName()), types.NewProto(&messageSchema{desc: md, reg: r}))
		r.registerMessages(md.Messages())
		r.registerEnums(md.Enums())
	}
}

func (r *TypeRegistry) registerEnums(enums protoreflect.EnumDescriptors) {
	for i := 0; i < enums.Len(); i++ {
		ed := enums.Get(i)
		r.Register(string(ed.FullName()), types.NewProtoEnum(string(ed.FullName())))
	}
}

// messageSchema adapts a protoreflect message descriptor to the lattice's
// ProtoSchema interface.
type messageSchema struct {
	desc protoreflect.MessageDescriptor
	reg  *TypeRegistry
}

func (s *messageSchema) Name() string {
	return string(s.desc.FullName())
}

func (s *messageSchema) FieldType(name string) (types.SoyType, bool) {
	fd := s.desc.Fields().ByName(protoreflect.Name(name))
	if fd == nil {
		return nil, false
	}
	return s.fieldType(fd), true
}

func (s *messageSchema) FieldNames() []string {
	fields := s.desc.Fields()
	names := make([]string, fields.Len())
	for i := 0; i < fields.Len(); i++ {
		names[i] = string(fields.Get(i).Name())
	}
	return names
}

func (s *messageSchema) RequiredFieldNames() []string {
	fields := s.desc.Fields()
	var required []string
	for i := 0; i < fields.Len(); i++ {
		if fields.Get(i).Cardinality() == protoreflect.Required {
			required = append(required, string(fields.Get(i).Name()))
		}
	}
	return required
}

func (s *messageSchema) IsRepeatedField(name string) bool {
	fd := s.desc.Fields().ByName(protoreflect.Name(name))
	return fd != nil && fd.IsList()
}

func (s *messageSchema) fieldType(fd protoreflect.FieldDescriptor) types.SoyType {
	if fd.IsMap() {
		return s.reg.MapOf(s.scalarType(fd.MapKey()), s.scalarType(fd.MapValue()))
	}
	if fd.IsList() {
		return s.reg.ListOf(s.scalarType(fd))
	}
	return s.scalarType(fd)
}

func (s *messageSchema) scalarType(fd protoreflect.FieldDescriptor) types.SoyType {
	switch fd.Kind() {
	case protoreflect.BoolKind:
		return types.BoolType
	case protoreflect.Int32Kind, protoreflect.Int64Kind,
		protoreflect.Sint32Kind, protoreflect.Sint64Kind,
		protoreflect.Uint32Kind, protoreflect.Uint64Kind,
		protoreflect.Fixed32Kind, protoreflect.Fixed64Kind,
		protoreflect.Sfixed32Kind, protoreflect.Sfixed64Kind:
		return types.IntType
	case protoreflect.FloatKind, protoreflect.DoubleKind:
		return types.FloatType
	case protoreflect.StringKind, protoreflect.BytesKind:
		// Bytes surface as base64 strings; the lattice has no bytes kind.
		return types.StringType
	case protoreflect.EnumKind:
		if t, ok := s.reg.Type(string(fd.Enum().FullName())); ok {
			return t
		}
		return types.NewProtoEnum(string(fd.Enum().FullName()))
	case protoreflect.MessageKind, protoreflect.GroupKind:
		if t, ok := s.reg.Type(string(fd.Message().FullName())); ok {
			return t
		}
		return types.NewProto(&messageSchema{desc: fd.Message(), reg: s.reg})
	default:
		return types.UnknownType
	}
}
