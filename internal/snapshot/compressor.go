package snapshot

import (
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/lk2023060901/objectstream-go/pkg/util/hardware"
	"github.com/lk2023060901/objectstream-go/pkg/util/merr"
)

// Compressor 把落盘前的字节流包上一层压缩。实现必须保证 Close 之后
// 数据完整落到被包裹的 writer。
type Compressor interface {
	// Name 返回压缩算法名，写入清单供读取方识别。
	Name() string
	// WrapWriter 包裹 w，返回压缩写入端。
	WrapWriter(w io.Writer) (io.WriteCloser, error)
}

// nopCompressor 不压缩，直接透传。
type nopCompressor struct{}

var _ Compressor = nopCompressor{}

// NopCompressor 返回透传压缩器。
func NopCompressor() Compressor { return nopCompressor{} }

func (nopCompressor) Name() string { return "none" }

func (nopCompressor) WrapWriter(w io.Writer) (io.WriteCloser, error) {
	return nopWriteCloser{w}, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// zstdCompressor 基于 zstd，压缩并发度取物理核数。
type zstdCompressor struct {
	level zstd.EncoderLevel
}

var _ Compressor = zstdCompressor{}

// ZstdCompressor 返回 zstd 压缩器。
func ZstdCompressor() Compressor {
	return zstdCompressor{level: zstd.SpeedDefault}
}

func (zstdCompressor) Name() string { return "zstd" }

func (c zstdCompressor) WrapWriter(w io.Writer) (io.WriteCloser, error) {
	enc, err := zstd.NewWriter(w,
		zstd.WithEncoderLevel(c.level),
		zstd.WithEncoderConcurrency(hardware.GetCPUNum()))
	if err != nil {
		return nil, merr.WrapErrIoFailedReason(err.Error(), "create zstd writer")
	}
	return enc, nil
}
