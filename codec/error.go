// 定义编解码过程中使用的错误类型和错误码。
package codec

import (
	"errors"
	"fmt"
)

// ErrorCode 标识一种编解码错误。
type ErrorCode int

const (
	// ErrMalformedEncoding 表示输入字节不符合预期的格式，可能是数据被截断，也可能是数据本身损坏。
	ErrMalformedEncoding ErrorCode = iota

	// ErrChecksumMismatch 表示 Base58Check 或 Bech32 的校验和不匹配。
	ErrChecksumMismatch

	// numErrorCodes 是错误码的最大值，仅用于测试时的合理性检查。
	numErrorCodes
)

// errorCodeStrings 是错误码到可读名称的映射。
var errorCodeStrings = map[ErrorCode]string{
	ErrMalformedEncoding: "ErrMalformedEncoding",
	ErrChecksumMismatch:  "ErrChecksumMismatch",
}

// String 返回错误码的可读名称。
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// DecodeError 描述一次解码失败。
// Offset 是检测到问题时已经消费的字节数，即出错字节的位置。
// Expected 仅在数据被截断时设置，表示完成当前字段所需的总字节数。
type DecodeError struct {
	Code        ErrorCode
	Offset      int
	Expected    int
	Description string
}

// Error 满足 error 接口。
func (e DecodeError) Error() string {
	if e.Truncated() {
		return fmt.Sprintf("%s at offset %d (need %d bytes)", e.Description,
			e.Offset, e.Expected)
	}
	return fmt.Sprintf("%s at offset %d", e.Description, e.Offset)
}

// Truncated 报告错误是否由数据不足引起，而不是数据损坏。
func (e DecodeError) Truncated() bool {
	return e.Expected > e.Offset
}

// malformed 创建一个表示数据损坏的 DecodeError。
func malformed(offset int, format string, args ...interface{}) DecodeError {
	return DecodeError{
		Code:        ErrMalformedEncoding,
		Offset:      offset,
		Description: fmt.Sprintf(format, args...),
	}
}

// truncated 创建一个表示数据不足的 DecodeError。
func truncated(offset, expected int, field string) DecodeError {
	return DecodeError{
		Code:        ErrMalformedEncoding,
		Offset:      offset,
		Expected:    expected,
		Description: fmt.Sprintf("unexpected end of data reading %s", field),
	}
}

// Malformed 供其他包构造带偏移量的格式错误。
func Malformed(offset int, format string, args ...interface{}) error {
	return malformed(offset, format, args...)
}

// IsErrorCode 报告 err 是否为带有指定错误码的 DecodeError。
func IsErrorCode(err error, c ErrorCode) bool {
	var derr DecodeError
	return errors.As(err, &derr) && derr.Code == c
}

// ShortData 供其他包构造表示数据不足的错误，expected 为完成该字段所需的总字节数。
func ShortData(offset, expected int, field string) error {
	return truncated(offset, expected, field)
}
