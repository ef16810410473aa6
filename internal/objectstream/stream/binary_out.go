package stream

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/lk2023060901/objectstream-go/pkg/util/merr"
)

// binaryStringTableOffset 为名字表索引的起始值，0 保留给
// "后面跟随字符串内容" 这一带内信号。
const binaryStringTableOffset = 1

// BinaryOut 把记录流编码为紧凑二进制：计数、编号、长度用 uvarint，
// 定长标量用大端序。名字维护一张会话级字符串表，每个名字的内容只
// 物理写入一次，之后用表索引回引。排版提示是空操作。
type BinaryOut struct {
	w     io.Writer
	names map[string]uint64
	buf   [binary.MaxVarintLen64]byte
	fault error
}

var _ OutStream = (*BinaryOut)(nil)

// NewBinaryOut 创建二进制后端，输出写入 w。
func NewBinaryOut(w io.Writer) *BinaryOut {
	return &BinaryOut{
		w:     w,
		names: make(map[string]uint64),
	}
}

func (s *BinaryOut) HintNextItem()   {}
func (s *BinaryOut) HintIndentUp()   {}
func (s *BinaryOut) HintIndentDown() {}

func (s *BinaryOut) WriteDataType(t DataType) { s.writeUvarint(uint64(t)) }

// WriteName 首次遇到的名字写入信号 0 加字符串内容并登记表项，
// 之后同名只写表索引。
func (s *BinaryOut) WriteName(name string) {
	if s.fault != nil {
		return
	}
	if idx, ok := s.names[name]; ok {
		s.writeUvarint(idx)
		return
	}
	s.names[name] = uint64(len(s.names)) + binaryStringTableOffset
	s.writeUvarint(0)
	s.writeBytes([]byte(name))
}

func (s *BinaryOut) WriteCount(count uint32) { s.writeUvarint(uint64(count)) }

func (s *BinaryOut) WriteIdentifier(id Identifier) { s.writeUvarint(uint64(id)) }

func (s *BinaryOut) WriteBool(v bool) {
	if v {
		s.writeRaw([]byte{1})
	} else {
		s.writeRaw([]byte{0})
	}
}

func (s *BinaryOut) WriteInt8(v int8)   { s.writeRaw([]byte{byte(v)}) }
func (s *BinaryOut) WriteUint8(v uint8) { s.writeRaw([]byte{v}) }

func (s *BinaryOut) WriteInt16(v int16)   { s.writeBE16(uint16(v)) }
func (s *BinaryOut) WriteUint16(v uint16) { s.writeBE16(v) }

func (s *BinaryOut) WriteInt32(v int32)   { s.writeBE32(uint32(v)) }
func (s *BinaryOut) WriteUint32(v uint32) { s.writeBE32(v) }

func (s *BinaryOut) WriteInt64(v int64)   { s.writeBE64(uint64(v)) }
func (s *BinaryOut) WriteUint64(v uint64) { s.writeBE64(v) }

func (s *BinaryOut) WriteFloat32(v float32) { s.writeBE32(math.Float32bits(v)) }
func (s *BinaryOut) WriteFloat64(v float64) { s.writeBE64(math.Float64bits(v)) }

func (s *BinaryOut) WriteString(v string) { s.writeBytes([]byte(v)) }

func (s *BinaryOut) Fault() error { return s.fault }

// Format 返回后端的物理格式。
func (s *BinaryOut) Format() Format { return FormatBinary }

func (s *BinaryOut) writeBE16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	s.writeRaw(b[:])
}

func (s *BinaryOut) writeBE32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	s.writeRaw(b[:])
}

func (s *BinaryOut) writeBE64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	s.writeRaw(b[:])
}

func (s *BinaryOut) writeUvarint(v uint64) {
	n := binary.PutUvarint(s.buf[:], v)
	s.writeRaw(s.buf[:n])
}

// writeBytes 写入 uvarint 长度前缀加内容。
func (s *BinaryOut) writeBytes(data []byte) {
	s.writeUvarint(uint64(len(data)))
	s.writeRaw(data)
}

func (s *BinaryOut) writeRaw(data []byte) {
	if s.fault != nil {
		return
	}
	if _, err := s.w.Write(data); err != nil {
		s.fault = merr.WrapErrIoFailedReason(err.Error(), "binary stream write failed")
	}
}
