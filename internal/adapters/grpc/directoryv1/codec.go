// Package directoryv1 は directory.v1 の gRPC サービス定義とメッセージ型です。
//
// メッセージは protobuf のバイナリ形式で送受信します。記述子は Go の構造体から実行時に組み立て、
// フィールド番号は構造体のフィールド順 (1 始まり)、フィールド名は json タグです。
// null を取り得る項目は google.protobuf.StringValue / Int64Value / Timestamp で表します。
// クライアントは content-subtype に CodecName を指定して呼び出します (application/grpc+directorypb)。
package directoryv1

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// CodecName は登録するコーデック名です。
const CodecName = "directorypb"

const protoPackage = "directory.v1"

const (
	stringValueName protoreflect.FullName = "google.protobuf.StringValue"
	int64ValueName  protoreflect.FullName = "google.protobuf.Int64Value"
	timestampName   protoreflect.FullName = "google.protobuf.Timestamp"
)

var timeType = reflect.TypeOf(time.Time{})

type messageCodec struct {
	// reflect.Type -> protoreflect.MessageDescriptor
	descriptors sync.Map
}

func (c *messageCodec) Marshal(v any) ([]byte, error) {
	sv, err := structValue(v)
	if err != nil {
		return nil, err
	}
	md, err := c.descriptor(sv.Type())
	if err != nil {
		return nil, err
	}

	msg := dynamicpb.NewMessage(md)
	if err := encodeStruct(msg, sv); err != nil {
		return nil, fmt.Errorf("directoryv1: marshal %T: %w", v, err)
	}
	b, err := proto.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("directoryv1: marshal %T: %w", v, err)
	}
	return b, nil
}

func (c *messageCodec) Unmarshal(data []byte, v any) error {
	sv, err := structValue(v)
	if err != nil {
		return err
	}
	md, err := c.descriptor(sv.Type())
	if err != nil {
		return err
	}

	msg := dynamicpb.NewMessage(md)
	if err := proto.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("directoryv1: unmarshal %T: %w", v, err)
	}
	decodeStruct(msg, sv)
	return nil
}

func (c *messageCodec) Name() string {
	return CodecName
}

func init() {
	encoding.RegisterCodec(&messageCodec{})
}

func structValue(v any) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("directoryv1: %T is not a pointer to a message struct", v)
	}
	return rv.Elem(), nil
}

// descriptor は t と、t から辿れるメッセージ型を 1 つの .proto ファイルとして組み立てます。
func (c *messageCodec) descriptor(t reflect.Type) (protoreflect.MessageDescriptor, error) {
	if md, ok := c.descriptors.Load(t); ok {
		return md.(protoreflect.MessageDescriptor), nil
	}

	file := &descriptorpb.FileDescriptorProto{
		Name:    proto.String("directory/v1/" + strings.ToLower(t.Name()) + ".proto"),
		Package: proto.String(protoPackage),
		Syntax:  proto.String("proto3"),
		Dependency: []string{
			"google/protobuf/wrappers.proto",
			"google/protobuf/timestamp.proto",
		},
	}

	seen := make(map[reflect.Type]bool)
	queue := []reflect.Type{t}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if seen[cur] {
			continue
		}
		seen[cur] = true

		msg := &descriptorpb.DescriptorProto{Name: proto.String(cur.Name())}
		for i := 0; i < cur.NumField(); i++ {
			field, nested, err := fieldDescriptor(cur.Field(i), int32(i+1))
			if err != nil {
				return nil, fmt.Errorf("directoryv1: %s: %w", cur.Name(), err)
			}
			msg.Field = append(msg.Field, field)
			if nested != nil {
				queue = append(queue, nested)
			}
		}
		file.MessageType = append(file.MessageType, msg)
	}

	fd, err := protodesc.NewFile(file, protoregistry.GlobalFiles)
	if err != nil {
		return nil, fmt.Errorf("directoryv1: build descriptor for %s: %w", t.Name(), err)
	}
	md := fd.Messages().ByName(protoreflect.Name(t.Name()))
	actual, _ := c.descriptors.LoadOrStore(t, md)
	return actual.(protoreflect.MessageDescriptor), nil
}

func fieldDescriptor(f reflect.StructField, number int32) (*descriptorpb.FieldDescriptorProto, reflect.Type, error) {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" {
		name = strings.ToLower(f.Name)
	}
	field := &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
	}

	ft := f.Type
	switch {
	case ft.Kind() == reflect.Int64:
		field.Type = descriptorpb.FieldDescriptorProto_TYPE_INT64.Enum()
	case ft.Kind() == reflect.String:
		field.Type = descriptorpb.FieldDescriptorProto_TYPE_STRING.Enum()
	case ft.Kind() == reflect.Pointer && ft.Elem().Kind() == reflect.String:
		setMessageType(field, stringValueName)
	case ft.Kind() == reflect.Pointer && ft.Elem().Kind() == reflect.Int64:
		setMessageType(field, int64ValueName)
	case ft.Kind() == reflect.Pointer && ft.Elem() == timeType:
		setMessageType(field, timestampName)
	case ft.Kind() == reflect.Pointer && ft.Elem().Kind() == reflect.Struct:
		setMessageType(field, protoreflect.FullName(protoPackage+"."+ft.Elem().Name()))
		return field, ft.Elem(), nil
	case ft.Kind() == reflect.Slice && ft.Elem().Kind() == reflect.Pointer && ft.Elem().Elem().Kind() == reflect.Struct:
		setMessageType(field, protoreflect.FullName(protoPackage+"."+ft.Elem().Elem().Name()))
		field.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
		return field, ft.Elem().Elem(), nil
	default:
		return nil, nil, fmt.Errorf("field %s: unsupported type %s", f.Name, ft)
	}
	return field, nil, nil
}

func setMessageType(field *descriptorpb.FieldDescriptorProto, name protoreflect.FullName) {
	field.Type = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum()
	field.TypeName = proto.String("." + string(name))
}

func encodeStruct(msg protoreflect.Message, sv reflect.Value) error {
	fields := msg.Descriptor().Fields()
	for i := 0; i < sv.NumField(); i++ {
		fd := fields.ByNumber(protoreflect.FieldNumber(i + 1))
		fv := sv.Field(i)

		switch {
		case fd.IsList():
			if fv.Len() == 0 {
				continue
			}
			list := msg.Mutable(fd).List()
			for j := 0; j < fv.Len(); j++ {
				elem := list.NewElement()
				if item := fv.Index(j); !item.IsNil() {
					if err := encodeStruct(elem.Message(), item.Elem()); err != nil {
						return err
					}
				}
				list.Append(elem)
			}
		case fd.Kind() == protoreflect.Int64Kind:
			msg.Set(fd, protoreflect.ValueOfInt64(fv.Int()))
		case fd.Kind() == protoreflect.StringKind:
			msg.Set(fd, protoreflect.ValueOfString(fv.String()))
		case fv.IsNil():
		default:
			switch fd.Message().FullName() {
			case stringValueName:
				msg.Set(fd, protoreflect.ValueOfMessage(wrapperspb.String(fv.Elem().String()).ProtoReflect()))
			case int64ValueName:
				msg.Set(fd, protoreflect.ValueOfMessage(wrapperspb.Int64(fv.Elem().Int()).ProtoReflect()))
			case timestampName:
				ts := timestamppb.New(fv.Elem().Interface().(time.Time))
				if err := ts.CheckValid(); err != nil {
					return fmt.Errorf("field %s: %w", fd.Name(), err)
				}
				msg.Set(fd, protoreflect.ValueOfMessage(ts.ProtoReflect()))
			default:
				if err := encodeStruct(msg.Mutable(fd).Message(), fv.Elem()); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func decodeStruct(msg protoreflect.Message, sv reflect.Value) {
	fields := msg.Descriptor().Fields()
	for i := 0; i < sv.NumField(); i++ {
		fd := fields.ByNumber(protoreflect.FieldNumber(i + 1))
		fv := sv.Field(i)

		switch {
		case fd.IsList():
			list := msg.Get(fd).List()
			if list.Len() == 0 {
				continue
			}
			out := reflect.MakeSlice(fv.Type(), list.Len(), list.Len())
			for j := 0; j < list.Len(); j++ {
				item := reflect.New(fv.Type().Elem().Elem())
				decodeStruct(list.Get(j).Message(), item.Elem())
				out.Index(j).Set(item)
			}
			fv.Set(out)
		case fd.Kind() == protoreflect.Int64Kind:
			fv.SetInt(msg.Get(fd).Int())
		case fd.Kind() == protoreflect.StringKind:
			fv.SetString(msg.Get(fd).String())
		case !msg.Has(fd):
		default:
			sub := msg.Get(fd).Message()
			ptr := reflect.New(fv.Type().Elem())
			switch fd.Message().FullName() {
			case stringValueName:
				ptr.Elem().SetString(wrappedValue(sub).String())
			case int64ValueName:
				ptr.Elem().SetInt(wrappedValue(sub).Int())
			case timestampName:
				subFields := sub.Descriptor().Fields()
				seconds := sub.Get(subFields.ByName("seconds")).Int()
				nanos := sub.Get(subFields.ByName("nanos")).Int()
				ptr.Elem().Set(reflect.ValueOf(time.Unix(seconds, nanos).UTC()))
			default:
				decodeStruct(sub, ptr.Elem())
			}
			fv.Set(ptr)
		}
	}
}

// wrappedValue は google.protobuf.*Value の value フィールドを返します。
func wrappedValue(msg protoreflect.Message) protoreflect.Value {
	return msg.Get(msg.Descriptor().Fields().ByName("value"))
}
