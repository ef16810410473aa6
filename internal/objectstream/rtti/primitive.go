package rtti

import (
	"fmt"

	"github.com/lk2023060901/objectstream-go/internal/objectstream/stream"
)

// PrimitiveKind 标识一种原生类型。集合封闭，在包初始化时注册完毕，
// 不支持运行期扩展。
type PrimitiveKind uint8

const (
	PrimitiveBool PrimitiveKind = iota
	PrimitiveInt8
	PrimitiveUint8
	PrimitiveInt16
	PrimitiveUint16
	PrimitiveInt32
	PrimitiveUint32
	PrimitiveInt64
	PrimitiveUint64
	PrimitiveFloat32
	PrimitiveFloat64
	PrimitiveString
)

// primitiveCodec 把一种原生类型映射到它的标签写入与值写入操作。
type primitiveCodec struct {
	tag        stream.DataType
	writeValue func(s stream.OutStream, v any)
}

var primitiveCodecs map[PrimitiveKind]primitiveCodec

func init() {
	primitiveCodecs = map[PrimitiveKind]primitiveCodec{
		PrimitiveBool: {stream.DataTypeBool, func(s stream.OutStream, v any) {
			s.WriteBool(v.(bool))
		}},
		PrimitiveInt8: {stream.DataTypeInt8, func(s stream.OutStream, v any) {
			s.WriteInt8(v.(int8))
		}},
		PrimitiveUint8: {stream.DataTypeUint8, func(s stream.OutStream, v any) {
			s.WriteUint8(v.(uint8))
		}},
		PrimitiveInt16: {stream.DataTypeInt16, func(s stream.OutStream, v any) {
			s.WriteInt16(v.(int16))
		}},
		PrimitiveUint16: {stream.DataTypeUint16, func(s stream.OutStream, v any) {
			s.WriteUint16(v.(uint16))
		}},
		PrimitiveInt32: {stream.DataTypeInt32, func(s stream.OutStream, v any) {
			s.WriteInt32(v.(int32))
		}},
		PrimitiveUint32: {stream.DataTypeUint32, func(s stream.OutStream, v any) {
			s.WriteUint32(v.(uint32))
		}},
		PrimitiveInt64: {stream.DataTypeInt64, func(s stream.OutStream, v any) {
			s.WriteInt64(v.(int64))
		}},
		PrimitiveUint64: {stream.DataTypeUint64, func(s stream.OutStream, v any) {
			s.WriteUint64(v.(uint64))
		}},
		PrimitiveFloat32: {stream.DataTypeFloat32, func(s stream.OutStream, v any) {
			s.WriteFloat32(v.(float32))
		}},
		PrimitiveFloat64: {stream.DataTypeFloat64, func(s stream.OutStream, v any) {
			s.WriteFloat64(v.(float64))
		}},
		PrimitiveString: {stream.DataTypeString, func(s stream.OutStream, v any) {
			s.WriteString(v.(string))
		}},
	}
}

func codecOf(kind PrimitiveKind) primitiveCodec {
	codec, ok := primitiveCodecs[kind]
	if !ok {
		panic(fmt.Sprintf("rtti: unknown primitive kind %d", kind))
	}
	return codec
}
