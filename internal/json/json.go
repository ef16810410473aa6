package json

import (
	"io"

	"github.com/bytedance/sonic"
)

// 统一的 JSON 编解码入口，基于 bytedance/sonic。
//
// 采用 ConfigStd 以保持与标准库 encoding/json 兼容的行为，
// 便于外部工具直接读取生成的清单等 JSON 文件。
var json = sonic.ConfigStd

// Marshal 将任意对象编码为 JSON 字节序列。
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// MarshalIndent 将任意对象编码为带缩进的 JSON 字节序列。
func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return json.MarshalIndent(v, prefix, indent)
}

// Unmarshal 将 JSON 字节序列解码到目标对象。
func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// NewEncoder 创建一个向 w 写出 JSON 的编码器。
func NewEncoder(w io.Writer) sonic.Encoder {
	return json.NewEncoder(w)
}

// NewDecoder 创建一个从 r 读取 JSON 的解码器。
func NewDecoder(r io.Reader) sonic.Decoder {
	return json.NewDecoder(r)
}
