// Package stream 定义对象流的编码后端：一个面向记录的输出能力接口
// OutStream，以及文本、二进制两种实现。两种后端编码同一逻辑记录流，
// 仅物理表示不同。
package stream

// Identifier 是会话内对象实例的唯一编号。0 保留给空引用，
// 真实实例从 1 开始按首次引用顺序单调分配。
type Identifier uint32

// NullIdentifier 表示空引用。
const NullIdentifier Identifier = 0

// DataType 是记录流中的类型标签。
type DataType uint32

const (
	// DataTypeDeclare 类声明记录。
	DataTypeDeclare DataType = iota
	// DataTypeObject 顶层对象体记录。
	DataTypeObject
	// DataTypeInstance 内嵌复合值。
	DataTypeInstance
	// DataTypePointer 对象引用，仅携带 Identifier。
	DataTypePointer

	// 以下为原生类型标签，与 rtti 的原生类型注册表一一对应。
	DataTypeBool
	DataTypeInt8
	DataTypeUint8
	DataTypeInt16
	DataTypeUint16
	DataTypeInt32
	DataTypeUint32
	DataTypeInt64
	DataTypeUint64
	DataTypeFloat32
	DataTypeFloat64
	DataTypeString
)

var dataTypeNames = map[DataType]string{
	DataTypeDeclare:  "declare",
	DataTypeObject:   "object",
	DataTypeInstance: "instance",
	DataTypePointer:  "pointer",
	DataTypeBool:     "bool",
	DataTypeInt8:     "int8",
	DataTypeUint8:    "uint8",
	DataTypeInt16:    "int16",
	DataTypeUint16:   "uint16",
	DataTypeInt32:    "int32",
	DataTypeUint32:   "uint32",
	DataTypeInt64:    "int64",
	DataTypeUint64:   "uint64",
	DataTypeFloat32:  "float32",
	DataTypeFloat64:  "float64",
	DataTypeString:   "string",
}

// String 返回标签的文本形式，未知标签返回 "unknown"。
func (t DataType) String() string {
	if name, ok := dataTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// OutStream 是编码后端的能力接口。所有写入操作共享一个粘性故障标志：
// 任一底层写入失败后，后续写入全部变为空操作，Fault 返回首个错误。
// 调用方应在逻辑检查点轮询 Fault，而不是在每次写入后检查。
type OutStream interface {
	// HintNextItem 提示下一条逻辑项开始，仅影响排版，无语义。
	HintNextItem()
	// HintIndentUp 提升一级缩进，仅影响排版。
	HintIndentUp()
	// HintIndentDown 降低一级缩进，仅影响排版。
	HintIndentDown()

	// WriteDataType 写入一个类型标签。
	WriteDataType(t DataType)
	// WriteName 写入一个名字（类名或属性名）。
	WriteName(name string)
	// WriteCount 写入一个无符号计数。
	WriteCount(count uint32)
	// WriteIdentifier 写入一个对象编号。
	WriteIdentifier(id Identifier)

	WriteBool(v bool)
	WriteInt8(v int8)
	WriteUint8(v uint8)
	WriteInt16(v int16)
	WriteUint16(v uint16)
	WriteInt32(v int32)
	WriteUint32(v uint32)
	WriteInt64(v int64)
	WriteUint64(v uint64)
	WriteFloat32(v float32)
	WriteFloat64(v float64)
	WriteString(v string)

	// Fault 返回粘性故障。会话开始后一旦返回非 nil，之后恒为同一错误。
	Fault() error
}
