// 实现比特币的变长整数（CompactSize）编码。
package codec

import (
	"encoding/binary"
	"io"
)

// MaxVarIntPayload 是一个变长整数编码后的最大字节数。
const MaxVarIntPayload = 9

// VarIntSerializeSize 返回 v 编码后的字节数。
func VarIntSerializeSize(v uint64) int {
	switch {
	case v < 0xfd:
		return 1
	case v <= 0xffff:
		return 3
	case v <= 0xffffffff:
		return 5
	}
	return 9
}

// AppendVarInt 将 v 的编码追加到 dst 之后。
func AppendVarInt(dst []byte, v uint64) []byte {
	switch {
	case v < 0xfd:
		return append(dst, byte(v))

	case v <= 0xffff:
		dst = append(dst, 0xfd)
		return binary.LittleEndian.AppendUint16(dst, uint16(v))

	case v <= 0xffffffff:
		dst = append(dst, 0xfe)
		return binary.LittleEndian.AppendUint32(dst, uint32(v))
	}

	dst = append(dst, 0xff)
	return binary.LittleEndian.AppendUint64(dst, v)
}

// WriteVarInt 将 v 的编码写入 w。
func WriteVarInt(w io.Writer, v uint64) error {
	var buf [MaxVarIntPayload]byte
	_, err := w.Write(AppendVarInt(buf[:0], v))
	return err
}

// DecodeVarInt 从 b 的开头解码一个变长整数，返回值与消费的字节数。
// 非最小编码被视为格式错误，保证编码与解码一一对应。
func DecodeVarInt(b []byte) (uint64, int, error) {
	if len(b) == 0 {
		return 0, 0, truncated(0, 1, "varint")
	}

	var (
		v   uint64
		n   int
		min uint64
	)
	switch prefix := b[0]; prefix {
	case 0xff:
		n, min = 9, 0x100000000
	case 0xfe:
		n, min = 5, 0x10000
	case 0xfd:
		n, min = 3, 0xfd
	default:
		return uint64(prefix), 1, nil
	}

	if len(b) < n {
		return 0, 0, truncated(0, n, "varint")
	}
	switch n {
	case 9:
		v = binary.LittleEndian.Uint64(b[1:9])
	case 5:
		v = uint64(binary.LittleEndian.Uint32(b[1:5]))
	case 3:
		v = uint64(binary.LittleEndian.Uint16(b[1:3]))
	}

	// The encoding is not canonical if the value could have been
	// encoded using fewer bytes.
	if v < min {
		return 0, 0, malformed(0, "non-canonical varint %x - discriminant "+
			"%x must encode a value greater than %x", v, b[0], min)
	}
	return v, n, nil
}

// VarBytesSerializeSize 返回带长度前缀的字节串编码后的字节数。
func VarBytesSerializeSize(n int) int {
	return VarIntSerializeSize(uint64(n)) + n
}

// WriteVarBytes 写入以变长整数为长度前缀的字节串。
func WriteVarBytes(w io.Writer, b []byte) error {
	if err := WriteVarInt(w, uint64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}
