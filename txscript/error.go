// 定义了脚本处理过程中可能遇到的错误类型。

package txscript

import (
	"errors"
	"fmt"
)

// ErrorCode 标识一种脚本错误。
type ErrorCode int

const (
	// ErrInternal 表示不应发生的内部错误。
	ErrInternal ErrorCode = iota

	// ErrInvalidFlags 表示传入的脚本标志组合无效。
	ErrInvalidFlags

	// ErrInvalidIndex 表示输入索引越界。
	ErrInvalidIndex

	// ErrNoTxContext 表示需要交易上下文的操作码在没有上下文时执行。
	ErrNoTxContext

	// ErrUnsupportedAddress 表示无法为该地址类型生成锁定脚本。
	ErrUnsupportedAddress

	// ErrNotMultisigScript 表示脚本不是多签脚本。
	ErrNotMultisigScript

	// ErrTooManyRequiredSigs 表示多签脚本要求的签名数超过公钥数。
	ErrTooManyRequiredSigs

	// ErrTooMuchNullData 表示空数据脚本携带的数据超过上限。
	ErrTooMuchNullData

	// ErrInvalidScript 表示脚本无法解析，或执行到禁用、保留、未知的操作码。
	ErrInvalidScript

	// ErrStackUnderflow 表示操作码需要的栈元素不足，或访问了不存在的栈位置。
	ErrStackUnderflow

	// ErrEarlyReturn 表示执行了 OP_RETURN。
	ErrEarlyReturn

	// ErrEmptyStack 表示执行结束时栈为空。
	ErrEmptyStack

	// ErrEvalFalse 表示执行结束时栈顶元素为假。
	ErrEvalFalse

	// ErrScriptUnfinished 表示在脚本未执行完时检查结果。
	ErrScriptUnfinished

	// ErrInvalidProgramCounter 表示程序计数器越过了脚本末尾。
	ErrInvalidProgramCounter

	// ErrScriptTooBig 表示脚本长度超过 MaxScriptSize。
	ErrScriptTooBig

	// ErrElementTooBig 表示推送的数据超过 MaxScriptElementSize。
	ErrElementTooBig

	// ErrTooManyOperations 表示非推送操作码数超过 MaxOpsPerScript。
	ErrTooManyOperations

	// ErrStackOverflow 表示主栈与备用栈元素总数超过 MaxStackSize。
	ErrStackOverflow

	// ErrInvalidPubKeyCount 表示 CHECKMULTISIG 的公钥数为负或超过上限。
	ErrInvalidPubKeyCount

	// ErrInvalidSignatureCount 表示 CHECKMULTISIG 的签名数为负或大于公钥数。
	ErrInvalidSignatureCount

	// ErrNumberTooBig 表示脚本数字超过允许的字节数。
	ErrNumberTooBig

	// ErrVerify 表示 OP_VERIFY 失败。
	ErrVerify

	// ErrEqualVerify 表示 OP_EQUALVERIFY 失败。
	ErrEqualVerify

	// ErrNumEqualVerify 表示 OP_NUMEQUALVERIFY 失败。
	ErrNumEqualVerify

	// ErrCheckSigVerify 表示 OP_CHECKSIGVERIFY 失败。
	ErrCheckSigVerify

	// ErrCheckMultiSigVerify 表示 OP_CHECKMULTISIGVERIFY 失败。
	ErrCheckMultiSigVerify

	// ErrUnbalancedConditional 表示条件操作码不成对，或条件跨越了两个脚本。
	ErrUnbalancedConditional

	// ErrMinimalData 表示数据推送或脚本数字没有使用最短编码。
	ErrMinimalData

	// ErrMinimalIf 表示见证脚本中 OP_IF/OP_NOTIF 的操作数不是空或 0x01。
	ErrMinimalIf

	// ErrInvalidSigHashType 表示签名哈希类型无效。
	ErrInvalidSigHashType

	// ErrSigInvalidEncoding 表示签名不是严格的 DER 编码。
	ErrSigInvalidEncoding

	// ErrSigHighS 表示签名的 S 值大于曲线阶的一半。
	ErrSigHighS

	// ErrNotPushOnly 表示解锁脚本包含非推送操作码。
	ErrNotPushOnly

	// ErrSigNullDummy 表示 CHECKMULTISIG 的额外元素不为空。
	ErrSigNullDummy

	// ErrPubKeyType 表示公钥编码不合规。
	ErrPubKeyType

	// ErrCleanStack 表示执行结束后栈中不止一个元素。
	ErrCleanStack

	// ErrNullFail 表示签名校验失败时签名不为空。
	ErrNullFail

	// ErrWitnessMalleated 表示原生见证输出的解锁脚本不为空。
	ErrWitnessMalleated

	// ErrWitnessMalleatedP2SH 表示嵌套见证的解锁脚本不是单个规范推送。
	ErrWitnessMalleatedP2SH

	// ErrDiscourageUpgradableNOPs 表示执行了保留给软分叉的 NOP。
	ErrDiscourageUpgradableNOPs

	// ErrNegativeLockTime 表示锁定时间操作数为负。
	ErrNegativeLockTime

	// ErrUnsatisfiedLockTime 表示锁定时间条件未满足。
	ErrUnsatisfiedLockTime

	// ErrWitnessProgramEmpty 表示 P2WSH 花费没有见证数据。
	ErrWitnessProgramEmpty

	// ErrWitnessProgramMismatch 表示见证数据与见证程序不匹配。
	ErrWitnessProgramMismatch

	// ErrWitnessProgramWrongLength 表示版本 0 见证程序长度不是20或32。
	ErrWitnessProgramWrongLength

	// ErrWitnessUnexpected 表示非见证输入带有见证数据。
	ErrWitnessUnexpected

	// ErrWitnessPubKeyType 表示见证脚本中使用了非压缩公钥。
	ErrWitnessPubKeyType

	// ErrDiscourageUpgradableWitnessProgram 表示花费了未知版本的见证程序。
	ErrDiscourageUpgradableWitnessProgram

	// numErrorCodes 是错误码数量，仅用于测试。
	numErrorCodes
)

// errorCodeStrings 将错误码映射为可读名称。
var errorCodeStrings = map[ErrorCode]string{
	ErrInternal:                           "ErrInternal",
	ErrInvalidFlags:                       "ErrInvalidFlags",
	ErrInvalidIndex:                       "ErrInvalidIndex",
	ErrNoTxContext:                        "ErrNoTxContext",
	ErrUnsupportedAddress:                 "ErrUnsupportedAddress",
	ErrNotMultisigScript:                  "ErrNotMultisigScript",
	ErrTooManyRequiredSigs:                "ErrTooManyRequiredSigs",
	ErrTooMuchNullData:                    "ErrTooMuchNullData",
	ErrInvalidScript:                      "ErrInvalidScript",
	ErrStackUnderflow:                     "ErrStackUnderflow",
	ErrEarlyReturn:                        "ErrEarlyReturn",
	ErrEmptyStack:                         "ErrEmptyStack",
	ErrEvalFalse:                          "ErrEvalFalse",
	ErrScriptUnfinished:                   "ErrScriptUnfinished",
	ErrInvalidProgramCounter:              "ErrInvalidProgramCounter",
	ErrScriptTooBig:                       "ErrScriptTooBig",
	ErrElementTooBig:                      "ErrElementTooBig",
	ErrTooManyOperations:                  "ErrTooManyOperations",
	ErrStackOverflow:                      "ErrStackOverflow",
	ErrInvalidPubKeyCount:                 "ErrInvalidPubKeyCount",
	ErrInvalidSignatureCount:              "ErrInvalidSignatureCount",
	ErrNumberTooBig:                       "ErrNumberTooBig",
	ErrVerify:                             "ErrVerify",
	ErrEqualVerify:                        "ErrEqualVerify",
	ErrNumEqualVerify:                     "ErrNumEqualVerify",
	ErrCheckSigVerify:                     "ErrCheckSigVerify",
	ErrCheckMultiSigVerify:                "ErrCheckMultiSigVerify",
	ErrUnbalancedConditional:              "ErrUnbalancedConditional",
	ErrMinimalData:                        "ErrMinimalData",
	ErrMinimalIf:                          "ErrMinimalIf",
	ErrInvalidSigHashType:                 "ErrInvalidSigHashType",
	ErrSigInvalidEncoding:                 "ErrSigInvalidEncoding",
	ErrSigHighS:                           "ErrSigHighS",
	ErrNotPushOnly:                        "ErrNotPushOnly",
	ErrSigNullDummy:                       "ErrSigNullDummy",
	ErrPubKeyType:                         "ErrPubKeyType",
	ErrCleanStack:                         "ErrCleanStack",
	ErrNullFail:                           "ErrNullFail",
	ErrWitnessMalleated:                   "ErrWitnessMalleated",
	ErrWitnessMalleatedP2SH:               "ErrWitnessMalleatedP2SH",
	ErrDiscourageUpgradableNOPs:           "ErrDiscourageUpgradableNOPs",
	ErrNegativeLockTime:                   "ErrNegativeLockTime",
	ErrUnsatisfiedLockTime:                "ErrUnsatisfiedLockTime",
	ErrWitnessProgramEmpty:                "ErrWitnessProgramEmpty",
	ErrWitnessProgramMismatch:             "ErrWitnessProgramMismatch",
	ErrWitnessProgramWrongLength:          "ErrWitnessProgramWrongLength",
	ErrWitnessUnexpected:                  "ErrWitnessUnexpected",
	ErrWitnessPubKeyType:                  "ErrWitnessPubKeyType",
	ErrDiscourageUpgradableWitnessProgram: "ErrDiscourageUpgradableWitnessProgram",
}

// String 以可读形式返回错误码。
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// Error 标识脚本相关的错误。
// 调用方可以通过 ErrorCode 字段以编程方式区分错误，Description 提供上下文信息。
type Error struct {
	ErrorCode   ErrorCode
	Description string
}

// Error 满足 error 接口。
func (e Error) Error() string {
	return e.Description
}

// scriptError 使用给定的错误码和描述创建一个 Error。
func scriptError(c ErrorCode, desc string) Error {
	return Error{ErrorCode: c, Description: desc}
}

// IsErrorCode 报告 err 是否为带有给定错误码的脚本错误，包括被包装的情况。
func IsErrorCode(err error, c ErrorCode) bool {
	var serr Error
	return errors.As(err, &serr) && serr.ErrorCode == c
}
