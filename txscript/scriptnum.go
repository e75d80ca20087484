// 实现了脚本数字的处理。

package txscript

import "fmt"

const (
	maxInt32 = 1<<31 - 1
	minInt32 = -1 << 31

	// maxScriptNumLen 是作为数字解释的栈元素的最大字节数。
	maxScriptNumLen = 4

	// cltvMaxScriptNumLen 是 CHECKLOCKTIMEVERIFY 与 CHECKSEQUENCEVERIFY 操作数允许的字节数，
	// 5 字节可以表示到 2^39-1 的锁定时间。
	cltvMaxScriptNumLen = 5
)

// scriptNum 是脚本中的数字。
//
// 栈上的数字以小端、符号位在最高字节最高位的形式编码，0 为空字节串。
// 作为操作数时最多 4 字节，运算结果可以超出这个范围，
// 因此这里使用 int64 保存，结果再次作为操作数时会因长度超限而失败。
type scriptNum int64

// checkMinimalDataEncoding 报告字节串是否为数字的最短编码。
func checkMinimalDataEncoding(v []byte) error {
	if len(v) == 0 {
		return nil
	}

	// The most significant byte may only be zero (ignoring the sign bit) if
	// the next byte needs its high bit for the magnitude.
	if v[len(v)-1]&0x7f == 0 {
		if len(v) == 1 || v[len(v)-2]&0x80 == 0 {
			str := fmt.Sprintf("numeric value encoded as %x is not "+
				"minimally encoded", v)
			return scriptError(ErrMinimalData, str)
		}
	}

	return nil
}

// Bytes 返回数字的最短编码。0 编码为空字节串。
func (n scriptNum) Bytes() []byte {
	if n == 0 {
		return nil
	}

	isNegative := n < 0
	if isNegative {
		n = -n
	}

	result := make([]byte, 0, 9)
	for n > 0 {
		result = append(result, byte(n&0xff))
		n >>= 8
	}

	// The high bit of the last byte carries the sign; add a byte when the
	// magnitude already uses it.
	if result[len(result)-1]&0x80 != 0 {
		extraByte := byte(0x00)
		if isNegative {
			extraByte = 0x80
		}
		result = append(result, extraByte)
	} else if isNegative {
		result[len(result)-1] |= 0x80
	}

	return result
}

// Int32 返回截断到 int32 范围内的值。
func (n scriptNum) Int32() int32 {
	if n > maxInt32 {
		return maxInt32
	}
	if n < minInt32 {
		return minInt32
	}
	return int32(n)
}

// MakeScriptNum 将字节串解释为脚本数字。
// 长度超过 scriptNumLen 时返回 ErrNumberTooBig；requireMinimal 为真时非最短编码返回 ErrMinimalData。
func MakeScriptNum(v []byte, requireMinimal bool, scriptNumLen int) (scriptNum, error) {
	if len(v) > scriptNumLen {
		str := fmt.Sprintf("numeric value encoded as %x is %d bytes "+
			"which exceeds the max allowed of %d", v, len(v),
			scriptNumLen)
		return 0, scriptError(ErrNumberTooBig, str)
	}

	if requireMinimal {
		if err := checkMinimalDataEncoding(v); err != nil {
			return 0, err
		}
	}

	if len(v) == 0 {
		return 0, nil
	}

	var result int64
	for i, val := range v {
		result |= int64(val) << uint8(8*i)
	}

	if v[len(v)-1]&0x80 != 0 {
		result &= ^(int64(0x80) << uint8(8*(len(v)-1)))
		return scriptNum(-result), nil
	}

	return scriptNum(result), nil
}
