package stream

import (
	"io"
	"strconv"

	"github.com/lk2023060901/objectstream-go/pkg/util/merr"
)

// TextOut 把记录流编码为人类可读的文本：每条逻辑项占一行，
// 缩进用制表符表示，字符串带引号转义。
type TextOut struct {
	w       io.Writer
	indent  int
	started bool // 是否已输出过任何 token，决定换行前缀
	lineLen int  // 当前行已有 token 数，决定分隔空格
	fault   error
}

var _ OutStream = (*TextOut)(nil)

// NewTextOut 创建文本后端，输出写入 w。
func NewTextOut(w io.Writer) *TextOut {
	return &TextOut{w: w}
}

func (s *TextOut) HintNextItem() {
	if s.fault != nil {
		return
	}
	if !s.started {
		return
	}
	s.emit("\n")
	for i := 0; i < s.indent; i++ {
		s.emit("\t")
	}
	s.lineLen = 0
}

func (s *TextOut) HintIndentUp()   { s.indent++ }
func (s *TextOut) HintIndentDown() { s.indent-- }

func (s *TextOut) WriteDataType(t DataType) { s.token(t.String()) }
func (s *TextOut) WriteName(name string)    { s.token(name) }

func (s *TextOut) WriteCount(count uint32) {
	s.token(strconv.FormatUint(uint64(count), 10))
}

func (s *TextOut) WriteIdentifier(id Identifier) {
	s.token(strconv.FormatUint(uint64(id), 10))
}

func (s *TextOut) WriteBool(v bool) { s.token(strconv.FormatBool(v)) }

func (s *TextOut) WriteInt8(v int8)   { s.token(strconv.FormatInt(int64(v), 10)) }
func (s *TextOut) WriteUint8(v uint8) { s.token(strconv.FormatUint(uint64(v), 10)) }

func (s *TextOut) WriteInt16(v int16)   { s.token(strconv.FormatInt(int64(v), 10)) }
func (s *TextOut) WriteUint16(v uint16) { s.token(strconv.FormatUint(uint64(v), 10)) }

func (s *TextOut) WriteInt32(v int32)   { s.token(strconv.FormatInt(int64(v), 10)) }
func (s *TextOut) WriteUint32(v uint32) { s.token(strconv.FormatUint(uint64(v), 10)) }

func (s *TextOut) WriteInt64(v int64)   { s.token(strconv.FormatInt(v, 10)) }
func (s *TextOut) WriteUint64(v uint64) { s.token(strconv.FormatUint(v, 10)) }

func (s *TextOut) WriteFloat32(v float32) {
	s.token(strconv.FormatFloat(float64(v), 'g', -1, 32))
}

func (s *TextOut) WriteFloat64(v float64) {
	s.token(strconv.FormatFloat(v, 'g', -1, 64))
}

func (s *TextOut) WriteString(v string) { s.token(strconv.Quote(v)) }

func (s *TextOut) Fault() error { return s.fault }

// Format 返回后端的物理格式。
func (s *TextOut) Format() Format { return FormatText }

// token 输出一个 token，同一行内的 token 之间用一个空格分隔。
func (s *TextOut) token(tok string) {
	if s.fault != nil {
		return
	}
	if s.lineLen > 0 {
		s.emit(" ")
	}
	s.emit(tok)
	s.started = true
	s.lineLen++
}

func (s *TextOut) emit(text string) {
	if s.fault != nil {
		return
	}
	if _, err := io.WriteString(s.w, text); err != nil {
		s.fault = merr.WrapErrIoFailedReason(err.Error(), "text stream write failed")
	}
}
