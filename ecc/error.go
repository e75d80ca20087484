// 定义有限域、椭圆曲线与 ECDSA 运算中使用的错误码。
package ecc

import (
	"errors"
	"fmt"
)

// ErrorCode 标识一种密码学运算错误。
type ErrorCode int

const (
	// ErrFieldMismatch 表示参与运算的两个元素属于不同的有限域，
	// 或两个点属于不同的曲线。
	ErrFieldMismatch ErrorCode = iota

	// ErrFieldRange 表示元素值不在 [0, prime) 范围内，或模数无效。
	ErrFieldRange

	// ErrDivideByZero 表示除数为零元素。
	ErrDivideByZero

	// ErrPointNotOnCurve 表示坐标不满足曲线方程。
	ErrPointNotOnCurve

	// ErrInvalidNonce 表示签名时选取的随机数导致 r 或 s 为零。
	ErrInvalidNonce

	// ErrInvalidPrivateKey 表示私钥标量不在 [1, n-1] 范围内。
	ErrInvalidPrivateKey

	// ErrInvalidPublicKey 表示公钥为无穷远点或不在 secp256k1 上。
	ErrInvalidPublicKey

	// numErrorCodes 是错误码的最大值，仅用于测试时的合理性检查。
	numErrorCodes
)

// errorCodeStrings 是错误码到可读名称的映射。
var errorCodeStrings = map[ErrorCode]string{
	ErrFieldMismatch:     "ErrFieldMismatch",
	ErrFieldRange:        "ErrFieldRange",
	ErrDivideByZero:      "ErrDivideByZero",
	ErrPointNotOnCurve:   "ErrPointNotOnCurve",
	ErrInvalidNonce:      "ErrInvalidNonce",
	ErrInvalidPrivateKey: "ErrInvalidPrivateKey",
	ErrInvalidPublicKey:  "ErrInvalidPublicKey",
}

// String 返回错误码的可读名称。
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// Error 是带有错误码的密码学错误。
type Error struct {
	ErrorCode   ErrorCode
	Description string
}

// Error 满足 error 接口。
func (e Error) Error() string {
	return e.Description
}

// eccError 创建一个 Error。
func eccError(c ErrorCode, desc string) Error {
	return Error{ErrorCode: c, Description: desc}
}

// IsErrorCode 报告 err 是否为带有指定错误码的 Error。
func IsErrorCode(err error, c ErrorCode) bool {
	var e Error
	return errors.As(err, &e) && e.ErrorCode == c
}
