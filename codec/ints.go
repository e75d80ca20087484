// 定长整数的写入辅助函数，比特币协议中的整数除特别说明外均为小端序。
package codec

import (
	"encoding/binary"
	"io"
)

// WriteUint8 写入一个字节。
func WriteUint8(w io.Writer, v uint8) error {
	_, err := w.Write([]byte{v})
	return err
}

// WriteUint16LE 写入一个小端 uint16。
func WriteUint16LE(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// WriteUint32LE 写入一个小端 uint32。
func WriteUint32LE(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// WriteUint32BE 写入一个大端 uint32。
func WriteUint32BE(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// WriteUint64LE 写入一个小端 uint64。
func WriteUint64LE(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReverseBytes 函数将一个字节切片的元素顺序原地反转。
func ReverseBytes(data []byte) {
	// 使用两个指针i和j从字节切片的两端开始，向中间遍历并交换元素。
	for i, j := 0, len(data)-1; i < j; i, j = i+1, j-1 {
		data[i], data[j] = data[j], data[i]
	}
}
