// 定义区块与交易校验失败时返回的规则错误。

package blockchain

import (
	"errors"
	"fmt"
)

// ErrorCode 标识一种违反共识规则的情况。
type ErrorCode int

const (
	// ErrInsufficientWork 表示区块头哈希大于其难度位声明的目标值。
	ErrInsufficientWork ErrorCode = iota

	// ErrUnexpectedDifficulty 表示难度目标不为正或超过网络上限。
	ErrUnexpectedDifficulty

	// ErrNoTransactions 表示区块不含任何交易。
	ErrNoTransactions

	// ErrBlockTooBig 表示区块的序列化大小超过上限。
	ErrBlockTooBig

	// ErrFirstTxNotCoinbase 表示区块的第一笔交易不是 coinbase。
	ErrFirstTxNotCoinbase

	// ErrMultipleCoinbases 表示区块包含多笔 coinbase。
	ErrMultipleCoinbases

	// ErrBadMerkleRoot 表示计算出的 Merkle 根与区块头不符。
	ErrBadMerkleRoot

	// ErrDuplicateTx 表示区块包含重复的交易。
	ErrDuplicateTx

	// ErrTooManySigOps 表示签名操作数超过上限。
	ErrTooManySigOps

	// ErrNoTxInputs 表示交易没有输入。
	ErrNoTxInputs

	// ErrNoTxOutputs 表示交易没有输出。
	ErrNoTxOutputs

	// ErrTxTooBig 表示交易的序列化大小超过上限。
	ErrTxTooBig

	// ErrBadTxOutValue 表示输出金额为负、超过上限或总额溢出。
	ErrBadTxOutValue

	// ErrDuplicateTxInputs 表示交易重复花费同一个输出。
	ErrDuplicateTxInputs

	// ErrBadTxInput 表示非 coinbase 交易引用了空输出点。
	ErrBadTxInput

	// ErrBadCoinbaseScriptLen 表示 coinbase 脚本长度不在允许范围内。
	ErrBadCoinbaseScriptLen

	// ErrMissingTxOut 表示找不到输入引用的输出。
	ErrMissingTxOut

	// ErrScriptMalformed 表示无法为输入创建脚本引擎。
	ErrScriptMalformed

	// ErrScriptValidation 表示输入的脚本执行失败。
	ErrScriptValidation

	// ErrNoLeaves 表示构建 Merkle 树时没有叶子。
	ErrNoLeaves

	// ErrInvalidProofIndex 表示请求的叶子索引超出范围。
	ErrInvalidProofIndex

	// numErrorCodes 是错误码数量，仅用于测试。
	numErrorCodes
)

// errorCodeStrings 将错误码映射为可读名称。
var errorCodeStrings = map[ErrorCode]string{
	ErrInsufficientWork:     "ErrInsufficientWork",
	ErrUnexpectedDifficulty: "ErrUnexpectedDifficulty",
	ErrNoTransactions:       "ErrNoTransactions",
	ErrBlockTooBig:          "ErrBlockTooBig",
	ErrFirstTxNotCoinbase:   "ErrFirstTxNotCoinbase",
	ErrMultipleCoinbases:    "ErrMultipleCoinbases",
	ErrBadMerkleRoot:        "ErrBadMerkleRoot",
	ErrDuplicateTx:          "ErrDuplicateTx",
	ErrTooManySigOps:        "ErrTooManySigOps",
	ErrNoTxInputs:           "ErrNoTxInputs",
	ErrNoTxOutputs:          "ErrNoTxOutputs",
	ErrTxTooBig:             "ErrTxTooBig",
	ErrBadTxOutValue:        "ErrBadTxOutValue",
	ErrDuplicateTxInputs:    "ErrDuplicateTxInputs",
	ErrBadTxInput:           "ErrBadTxInput",
	ErrBadCoinbaseScriptLen: "ErrBadCoinbaseScriptLen",
	ErrMissingTxOut:         "ErrMissingTxOut",
	ErrScriptMalformed:      "ErrScriptMalformed",
	ErrScriptValidation:     "ErrScriptValidation",
	ErrNoLeaves:             "ErrNoLeaves",
	ErrInvalidProofIndex:    "ErrInvalidProofIndex",
}

// String 以可读形式返回错误码。
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// RuleError 标识违反共识规则的错误。
// 脚本校验失败时 Err 保存引擎返回的原始错误，可以用 errors.As 取出。
type RuleError struct {
	ErrorCode   ErrorCode
	Description string
	Err         error
}

// Error 满足 error 接口。
func (e RuleError) Error() string {
	return e.Description
}

// Unwrap 返回底层错误。
func (e RuleError) Unwrap() error {
	return e.Err
}

// ruleError 使用给定的错误码和描述创建一个 RuleError。
func ruleError(c ErrorCode, desc string) RuleError {
	return RuleError{ErrorCode: c, Description: desc}
}

// IsErrorCode 报告 err 是否为带有给定错误码的规则错误，包括被包装的情况。
func IsErrorCode(err error, c ErrorCode) bool {
	var rerr RuleError
	return errors.As(err, &rerr) && rerr.ErrorCode == c
}
