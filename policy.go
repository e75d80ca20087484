package btccore

import (
	"errors"
	"fmt"

	"github.com/qinglongcn/btccore/blockchain"
	"github.com/qinglongcn/btccore/txscript"
	"github.com/qinglongcn/btccore/wire"
)

const (
	// maxStandardMultiSigKeys 是多重签名交易输出脚本中允许的最大公钥数量，以便将其视为标准。
	maxStandardMultiSigKeys = 3

	// maxStandardTxWeight 是标准交易的最大权重。
	maxStandardTxWeight = 400000

	// maxStandardSigScriptSize 是标准交易中解锁脚本的最大字节数，
	// 足以容纳 15-of-15 的 P2SH 多重签名。
	maxStandardSigScriptSize = 1650

	// maxTxVersion 是标准交易允许的最高版本。
	maxTxVersion = 2

	// defaultMinRelayTxFee 是每千字节的最低转发费率，单位为聪，用于计算粉尘阈值。
	defaultMinRelayTxFee = 1000
)

// ErrNonStandard 是所有标准策略检查失败时包装的错误。
var ErrNonStandard = errors.New("non-standard transaction")

// nonStandard 返回包装了 ErrNonStandard 的错误。
func nonStandard(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNonStandard, fmt.Sprintf(format, a...))
}

// checkPkScriptStandard 对交易输出脚本（公钥脚本）执行一系列检查，以确保它是“标准”公钥脚本。
// 标准公钥脚本是一种可识别的形式，对于多重签名脚本，仅包含 1 到 maxStandardMultiSigKeys 个公钥。
func checkPkScriptStandard(pkScript []byte, scriptClass txscript.ScriptClass) error {
	switch scriptClass {
	case txscript.MultiSigTy:
		numPubKeys, numSigs, err := txscript.CalcMultiSigStats(pkScript)
		if err != nil {
			return nonStandard("multi-signature script parse failure: %v", err)
		}

		// 标准多重签名公钥脚本必须包含 1 到 maxStandardMultiSigKeys 个公钥。
		if numPubKeys < 1 {
			return nonStandard("multi-signature script with no pubkeys")
		}
		if numPubKeys > maxStandardMultiSigKeys {
			return nonStandard("multi-signature script with %d public keys which is more than the allowed max of %d", numPubKeys, maxStandardMultiSigKeys)
		}

		// 标准多重签名公钥脚本必须至少有 1 个签名，且签名数量不得多于可用公钥。
		if numSigs < 1 {
			return nonStandard("multi-signature script with no signatures")
		}
		if numSigs > numPubKeys {
			return nonStandard("multi-signature script with %d signatures which is more than the available %d public keys", numSigs, numPubKeys)
		}

	case txscript.NonStandardTy, txscript.WitnessUnknownTy:
		return nonStandard("non-standard script form")
	}

	return nil
}

// GetDustThreshold 返回输出的粉尘阈值：花费该输出所需的估计字节数乘以 3。
func GetDustThreshold(txOut *wire.TxOut) int64 {
	// An input spending the output costs 41 bytes of outpoint, sequence
	// and script length, plus about 107 bytes of signature and pubkey. A
	// witness input pays a quarter of that for the witness.
	totalSize := txOut.SerializeSize() + 41
	if txscript.IsWitnessProgram(txOut.PkScript) {
		totalSize += 107 / blockchain.WitnessScaleFactor
	} else {
		totalSize += 107
	}

	return 3 * int64(totalSize)
}

// IsDust 判断输出金额是否低于按最低转发费率计算的花费成本。无法花费的输出总是粉尘。
func IsDust(txOut *wire.TxOut) bool {
	if txscript.IsUnspendable(txOut.PkScript) {
		return true
	}

	return txOut.Value*1000/GetDustThreshold(txOut) < defaultMinRelayTxFee
}

// txWeight 返回交易权重：不含见证的大小乘以 3 再加上完整大小。
func txWeight(tx *wire.MsgTx) int64 {
	baseSize := int64(tx.SerializeSizeStripped())
	totalSize := int64(tx.SerializeSize())

	return baseSize*(blockchain.WitnessScaleFactor-1) + totalSize
}

// CheckTransactionStandard 检查交易是否满足标准策略：版本、权重、解锁脚本只做数据推送且不过大、
// 输出脚本可识别、输出不是粉尘，且至多一个空数据输出。失败时返回包装了 ErrNonStandard 的错误。
func CheckTransactionStandard(tx *wire.MsgTx) error {
	if tx.Version > maxTxVersion || tx.Version < 1 {
		return nonStandard("transaction version %d is not in the valid range of %d-%d", tx.Version, 1, maxTxVersion)
	}

	if weight := txWeight(tx); weight > maxStandardTxWeight {
		return nonStandard("weight of transaction %v is larger than max allowed weight of %v", weight, maxStandardTxWeight)
	}

	for i, txIn := range tx.TxIn {
		sigScriptLen := len(txIn.SignatureScript)
		if sigScriptLen > maxStandardSigScriptSize {
			return nonStandard("transaction input %d: signature script size of %d bytes is larger than max allowed size of %d bytes", i, sigScriptLen, maxStandardSigScriptSize)
		}

		if !txscript.IsPushOnlyScript(txIn.SignatureScript) {
			return nonStandard("transaction input %d: signature script is not push only", i)
		}
	}

	numNullDataOutputs := 0
	for i, txOut := range tx.TxOut {
		scriptClass := txscript.GetScriptClass(txOut.PkScript)
		if err := checkPkScriptStandard(txOut.PkScript, scriptClass); err != nil {
			return fmt.Errorf("transaction output %d: %w", i, err)
		}

		if scriptClass == txscript.NullDataTy {
			numNullDataOutputs++
		} else if IsDust(txOut) {
			return nonStandard("transaction output %d: payment of %d is dust", i, txOut.Value)
		}
	}

	if numNullDataOutputs > 1 {
		return nonStandard("more than one transaction output in a nulldata script")
	}

	return nil
}
