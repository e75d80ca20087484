/*
Package txscript 实现比特币交易脚本语言。

脚本是基于栈的字节码，从左到右执行，不提供循环。执行时先运行输入的解锁脚本，
再以其结果栈作为初始栈运行被花费输出的锁定脚本；两者是独立的脚本，只共享栈。
最后栈顶为真即验证成功。支付到脚本哈希 (BIP16) 的赎回脚本作为第三个脚本执行，
版本 0 的隔离见证程序 (P2WPKH、P2WSH 及其 P2SH 嵌套形式) 以见证栈作为初始栈。
更高版本的见证程序按未知版本处理。

# 执行

最简单的入口是 Execute：

	err := txscript.Execute(lockingScript, unlockingScript, nil, 0)

不需要交易的脚本可以不提供上下文；签名与锁定时间类操作码需要 SigHashContext，
缺少时返回 ErrNoTxContext。验证交易输入时通常使用 NewEngine，它从上下文中的交易取出解锁脚本与见证。

# 签名哈希

CalcSignatureHash 实现传统的签名哈希，CalcWitnessSigHash 实现 BIP143。
同一交易的多个输入应共享一份 TxSigHashes。

# 错误

本包返回的错误类型为 Error，其 ErrorCode 字段标识具体错误，IsErrorCode 用于判断。
栈中元素不足时返回 ErrStackUnderflow，禁用、保留或无法解析的指令返回 ErrInvalidScript。
*/
package txscript
