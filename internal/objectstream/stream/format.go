package stream

import (
	"io"

	"github.com/lk2023060901/objectstream-go/pkg/util/merr"
)

// Format 是编码后端的物理格式。
type Format string

const (
	// FormatText 人类可读文本格式。
	FormatText Format = "text"
	// FormatBinary 紧凑二进制格式。
	FormatBinary Format = "binary"
)

// NewOutStream 按格式创建编码后端。
func NewOutStream(format Format, w io.Writer) (OutStream, error) {
	switch format {
	case FormatText:
		return NewTextOut(w), nil
	case FormatBinary:
		return NewBinaryOut(w), nil
	default:
		return nil, merr.WrapErrStreamFormatUnsupported(string(format))
	}
}
