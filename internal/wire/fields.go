package wire

import (
	"fmt"

	"github.com/gogo/protobuf/proto"
)

// Field is a single decoded protobuf field. Only the varint and
// length-delimited wire types are supported, which is all the light client
// messages use.
type Field struct {
	Number   uint64
	WireType uint64
	Varint   uint64
	Bytes    []byte
}

// Key returns the protobuf field key for the given field number and wire type.
func Key(number, wireType uint64) uint64 {
	return number<<3 | wireType
}

// AppendBytes appends a length-delimited field to the buffer. Empty values
// are omitted following proto3 semantics.
func AppendBytes(buf *proto.Buffer, number uint64, bz []byte) error {
	if len(bz) == 0 {
		return nil
	}
	if err := buf.EncodeVarint(Key(number, proto.WireBytes)); err != nil {
		return err
	}
	return buf.EncodeRawBytes(bz)
}

// AppendMessage appends an embedded message field to the buffer. Nil messages
// are omitted.
func AppendMessage(buf *proto.Buffer, number uint64, msg proto.Message) error {
	if msg == nil {
		return nil
	}
	if err := buf.EncodeVarint(Key(number, proto.WireBytes)); err != nil {
		return err
	}
	return buf.EncodeMessage(msg)
}

// AppendVarint appends a varint field to the buffer. Zero values are omitted.
func AppendVarint(buf *proto.Buffer, number, value uint64) error {
	if value == 0 {
		return nil
	}
	if err := buf.EncodeVarint(Key(number, proto.WireVarint)); err != nil {
		return err
	}
	return buf.EncodeVarint(value)
}

// DecodeFields splits a serialized protobuf message into its fields in wire order.
func DecodeFields(bz []byte) ([]Field, error) {
	var fields []Field
	for len(bz) > 0 {
		key, n := proto.DecodeVarint(bz)
		if n == 0 {
			return nil, fmt.Errorf("invalid field key at offset %d", len(bz))
		}
		bz = bz[n:]

		field := Field{Number: key >> 3, WireType: key & 7}
		if field.Number == 0 {
			return nil, fmt.Errorf("invalid field number 0")
		}

		switch field.WireType {
		case proto.WireVarint:
			v, n := proto.DecodeVarint(bz)
			if n == 0 {
				return nil, fmt.Errorf("truncated varint for field %d", field.Number)
			}
			field.Varint = v
			bz = bz[n:]
		case proto.WireBytes:
			length, n := proto.DecodeVarint(bz)
			if n == 0 || uint64(len(bz)-n) < length {
				return nil, fmt.Errorf("truncated bytes for field %d", field.Number)
			}
			field.Bytes = bz[n : n+int(length)]
			bz = bz[n+int(length):]
		default:
			return nil, fmt.Errorf("unsupported wire type %d for field %d", field.WireType, field.Number)
		}

		fields = append(fields, field)
	}
	return fields, nil
}
