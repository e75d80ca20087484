// 提供带偏移量跟踪的只读游标，用于逐字段解码二进制数据。
package codec

import "encoding/binary"

// Reader 是一个顺序读取字节切片的游标。
// 所有读取失败都返回 DecodeError，并携带出错位置，
// 调用者可据此区分数据不足与数据损坏。
type Reader struct {
	b   []byte
	pos int
}

// NewReader 创建一个从 b 起始位置读取的游标。
func NewReader(b []byte) *Reader {
	return &Reader{b: b}
}

// Offset 返回已经消费的字节数。
func (r *Reader) Offset() int {
	return r.pos
}

// Seek 把游标移到 offset，超出范围时截断到数据两端。
func (r *Reader) Seek(offset int) {
	switch {
	case offset < 0:
		offset = 0
	case offset > len(r.b):
		offset = len(r.b)
	}
	r.pos = offset
}

// Remaining 返回尚未读取的字节数。
func (r *Reader) Remaining() int {
	if r.pos >= len(r.b) {
		return 0
	}
	return len(r.b) - r.pos
}

// next returns the next n bytes without copying them.
func (r *Reader) next(n int, field string) ([]byte, error) {
	if n < 0 {
		return nil, malformed(r.pos, "negative length %d for %s", n, field)
	}
	if r.Remaining() < n {
		return nil, truncated(r.pos, r.pos+n, field)
	}
	start := r.pos
	r.pos += n
	return r.b[start:r.pos], nil
}

// ReadBytes 读取 n 个字节并返回其副本。
func (r *Reader) ReadBytes(n int, field string) ([]byte, error) {
	b, err := r.next(n, field)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// ReadInto 将 len(dst) 个字节读入 dst。
func (r *Reader) ReadInto(dst []byte, field string) error {
	b, err := r.next(len(dst), field)
	if err != nil {
		return err
	}
	copy(dst, b)
	return nil
}

// ReadUint8 读取一个字节。
func (r *Reader) ReadUint8(field string) (uint8, error) {
	b, err := r.next(1, field)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadUint16LE 读取一个小端 uint16。
func (r *Reader) ReadUint16LE(field string) (uint16, error) {
	b, err := r.next(2, field)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadUint32LE 读取一个小端 uint32。
func (r *Reader) ReadUint32LE(field string) (uint32, error) {
	b, err := r.next(4, field)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadUint32BE 读取一个大端 uint32。
func (r *Reader) ReadUint32BE(field string) (uint32, error) {
	b, err := r.next(4, field)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// ReadUint64LE 读取一个小端 uint64。
func (r *Reader) ReadUint64LE(field string) (uint64, error) {
	b, err := r.next(8, field)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadVarInt 读取一个规范编码的变长整数。
func (r *Reader) ReadVarInt(field string) (uint64, error) {
	v, n, err := DecodeVarInt(r.b[r.pos:])
	if err != nil {
		if derr, ok := err.(DecodeError); ok {
			derr.Offset += r.pos
			if derr.Expected > 0 {
				derr.Expected += r.pos
			}
			derr.Description += " (" + field + ")"
			return 0, derr
		}
		return 0, err
	}
	r.pos += n
	return v, nil
}

// ReadVarBytes 读取一个以变长整数为长度前缀的字节串。
// 长度超过 maxAllowed 时视为数据损坏，避免恶意长度导致的大内存分配。
func (r *Reader) ReadVarBytes(maxAllowed uint64, field string) ([]byte, error) {
	start := r.pos
	count, err := r.ReadVarInt(field)
	if err != nil {
		return nil, err
	}
	if count > maxAllowed {
		return nil, malformed(start, "%s is larger than the max allowed size "+
			"[count %d, max %d]", field, count, maxAllowed)
	}
	return r.ReadBytes(int(count), field)
}

// ExpectEOF 在仍有未读字节时返回错误。
func (r *Reader) ExpectEOF() error {
	if r.Remaining() != 0 {
		return malformed(r.pos, "%d trailing bytes after end of data",
			r.Remaining())
	}
	return nil
}
