package stream

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/objectstream-go/pkg/util/merr"
)

// failAfterWriter 前 n 次写入成功，之后恒定失败。
type failAfterWriter struct {
	n     int
	count int
}

func (w *failAfterWriter) Write(p []byte) (int, error) {
	w.count++
	if w.count > w.n {
		return 0, errors.New("disk full")
	}
	return len(p), nil
}

func TestTextOutLayout(t *testing.T) {
	var buf bytes.Buffer
	s := NewTextOut(&buf)

	s.HintNextItem()
	s.WriteDataType(DataTypeDeclare)
	s.WriteName("Body")
	s.WriteCount(2)
	s.HintIndentUp()
	s.HintNextItem()
	s.WriteName("mass")
	s.WriteDataType(DataTypeFloat32)
	s.HintIndentDown()
	s.HintNextItem()
	s.WriteDataType(DataTypeObject)
	s.WriteName("Body")
	s.WriteIdentifier(1)

	require.NoError(t, s.Fault())
	expected := "declare Body 2\n\tmass float32\nobject Body 1"
	assert.Equal(t, expected, buf.String())
}

func TestTextOutValues(t *testing.T) {
	var buf bytes.Buffer
	s := NewTextOut(&buf)

	s.WriteBool(true)
	s.WriteInt32(-7)
	s.WriteUint64(42)
	s.WriteFloat64(1.5)
	s.WriteString("a \"b\"\n")

	require.NoError(t, s.Fault())
	assert.Equal(t, `true -7 42 1.5 "a \"b\"\n"`, buf.String())
}

func TestTextOutStickyFault(t *testing.T) {
	s := NewTextOut(&failAfterWriter{n: 1})

	s.WriteName("first")
	require.NoError(t, s.Fault())

	s.WriteName("second") // 分隔空格触发第二次底层写入
	err := s.Fault()
	require.Error(t, err)
	assert.True(t, errors.Is(err, merr.ErrIoFailed))

	// 故障后写入为空操作，错误保持不变
	s.WriteName("third")
	assert.Equal(t, err, s.Fault())
}

func TestBinaryOutNameTable(t *testing.T) {
	var buf bytes.Buffer
	s := NewBinaryOut(&buf)

	s.WriteName("Body")
	s.WriteName("Body")
	s.WriteName("Wheel")
	s.WriteName("Wheel")
	require.NoError(t, s.Fault())

	r := bytes.NewReader(buf.Bytes())
	readUvarint := func() uint64 {
		v, err := binary.ReadUvarint(r)
		require.NoError(t, err)
		return v
	}
	readName := func() string {
		n := readUvarint()
		b := make([]byte, n)
		_, err := r.Read(b)
		require.NoError(t, err)
		return string(b)
	}

	// 首次出现：信号 0 + 内容；再次出现：表索引
	assert.EqualValues(t, 0, readUvarint())
	assert.Equal(t, "Body", readName())
	assert.EqualValues(t, 1, readUvarint())
	assert.EqualValues(t, 0, readUvarint())
	assert.Equal(t, "Wheel", readName())
	assert.EqualValues(t, 2, readUvarint())
	assert.Zero(t, r.Len())
}

func TestBinaryOutScalars(t *testing.T) {
	var buf bytes.Buffer
	s := NewBinaryOut(&buf)

	s.WriteBool(true)
	s.WriteUint16(0x0102)
	s.WriteInt32(-1)
	s.WriteFloat32(1.0)
	s.WriteIdentifier(300)
	require.NoError(t, s.Fault())

	expected := []byte{
		1,          // bool
		0x01, 0x02, // uint16 大端
		0xff, 0xff, 0xff, 0xff, // int32 -1
		0x3f, 0x80, 0x00, 0x00, // float32 1.0
		0xac, 0x02, // uvarint 300
	}
	assert.Equal(t, expected, buf.Bytes())
}

func TestBinaryOutHintsAreNoops(t *testing.T) {
	var buf bytes.Buffer
	s := NewBinaryOut(&buf)

	s.HintNextItem()
	s.HintIndentUp()
	s.HintIndentDown()
	assert.Zero(t, buf.Len())
}

func TestNewOutStream(t *testing.T) {
	var buf bytes.Buffer

	s, err := NewOutStream(FormatText, &buf)
	require.NoError(t, err)
	assert.IsType(t, &TextOut{}, s)

	s, err = NewOutStream(FormatBinary, &buf)
	require.NoError(t, err)
	assert.IsType(t, &BinaryOut{}, s)

	_, err = NewOutStream(Format("xml"), &buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, merr.ErrStreamFormatUnsupported))
}
