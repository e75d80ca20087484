// 包含与上下文无关的交易与区块合法性检查。

package blockchain

import (
	"fmt"
	"math"
	"math/big"

	"github.com/qinglongcn/btccore/chainhash"
	"github.com/qinglongcn/btccore/codec"
	"github.com/qinglongcn/btccore/txscript"
	"github.com/qinglongcn/btccore/wire"
)

const (
	// SatoshiPerBitcoin 是一个比特币的聪数。
	SatoshiPerBitcoin = 1e8

	// MaxSatoshi 是任何金额允许的最大聪数。
	MaxSatoshi = 21e6 * SatoshiPerBitcoin

	// MaxBlockBaseSize 是不含见证数据时区块的最大序列化字节数。
	MaxBlockBaseSize = 1000000

	// WitnessScaleFactor 是非见证数据相对见证数据的权重倍数。
	WitnessScaleFactor = 4

	// MaxBlockSigOpsCost 是区块中签名操作的最大开销。
	MaxBlockSigOpsCost = 80000

	// MinCoinbaseScriptLen 是 coinbase 脚本的最小长度。
	MinCoinbaseScriptLen = 2

	// MaxCoinbaseScriptLen 是 coinbase 脚本的最大长度。
	MaxCoinbaseScriptLen = 100
)

// zeroHash is the zero value for a chainhash.Hash.
var zeroHash chainhash.Hash

// isNullOutpoint 判断输出点是否为 coinbase 使用的空输出点。
func isNullOutpoint(outpoint *wire.OutPoint) bool {
	return outpoint.Index == math.MaxUint32 && outpoint.Hash == zeroHash
}

// IsCoinBaseTx 判断交易是否为 coinbase：只有一个输入，且该输入引用空输出点。
func IsCoinBaseTx(msgTx *wire.MsgTx) bool {
	if len(msgTx.TxIn) != 1 {
		return false
	}

	return isNullOutpoint(&msgTx.TxIn[0].PreviousOutPoint)
}

// CheckTransactionSanity 对交易做与上下文无关的检查。
func CheckTransactionSanity(tx *wire.MsgTx) error {
	if len(tx.TxIn) == 0 {
		return ruleError(ErrNoTxInputs, "transaction has no inputs")
	}

	if len(tx.TxOut) == 0 {
		return ruleError(ErrNoTxOutputs, "transaction has no outputs")
	}

	serializedTxSize := tx.SerializeSizeStripped()
	if serializedTxSize > MaxBlockBaseSize {
		str := fmt.Sprintf("serialized transaction is too big - got "+
			"%d, max %d", serializedTxSize, MaxBlockBaseSize)
		return ruleError(ErrTxTooBig, str)
	}

	// Each output and the running total must lie in [0, MaxSatoshi].
	var totalSatoshi int64
	for _, txOut := range tx.TxOut {
		satoshi := txOut.Value
		if satoshi < 0 {
			str := fmt.Sprintf("transaction output has negative "+
				"value of %v", satoshi)
			return ruleError(ErrBadTxOutValue, str)
		}
		if satoshi > MaxSatoshi {
			str := fmt.Sprintf("transaction output value of %v is "+
				"higher than max allowed value of %v", satoshi,
				int64(MaxSatoshi))
			return ruleError(ErrBadTxOutValue, str)
		}

		totalSatoshi += satoshi
		if totalSatoshi > MaxSatoshi {
			str := fmt.Sprintf("total value of all transaction "+
				"outputs is %v which is higher than max "+
				"allowed value of %v", totalSatoshi,
				int64(MaxSatoshi))
			return ruleError(ErrBadTxOutValue, str)
		}
	}

	existingTxOut := make(map[wire.OutPoint]struct{})
	for _, txIn := range tx.TxIn {
		if _, exists := existingTxOut[txIn.PreviousOutPoint]; exists {
			return ruleError(ErrDuplicateTxInputs, "transaction "+
				"contains duplicate inputs")
		}
		existingTxOut[txIn.PreviousOutPoint] = struct{}{}
	}

	if IsCoinBaseTx(tx) {
		slen := len(tx.TxIn[0].SignatureScript)
		if slen < MinCoinbaseScriptLen || slen > MaxCoinbaseScriptLen {
			str := fmt.Sprintf("coinbase transaction script length "+
				"of %d is out of range (min: %d, max: %d)",
				slen, MinCoinbaseScriptLen, MaxCoinbaseScriptLen)
			return ruleError(ErrBadCoinbaseScriptLen, str)
		}
		return nil
	}

	for _, txIn := range tx.TxIn {
		if isNullOutpoint(&txIn.PreviousOutPoint) {
			return ruleError(ErrBadTxInput, "transaction "+
				"input refers to previous output that "+
				"is null")
		}
	}

	return nil
}

// CountSigOps 用不精确的计数方式统计交易所有输入输出脚本中的签名操作数。
func CountSigOps(tx *wire.MsgTx) int {
	totalSigOps := 0
	for _, txIn := range tx.TxIn {
		totalSigOps += txscript.GetSigOpCount(txIn.SignatureScript)
	}
	for _, txOut := range tx.TxOut {
		totalSigOps += txscript.GetSigOpCount(txOut.PkScript)
	}

	return totalSigOps
}

// blockSizeStripped 返回区块不含见证数据时的序列化大小。
func blockSizeStripped(block *wire.MsgBlock) int {
	n := wire.BlockHeaderLen +
		codec.VarIntSerializeSize(uint64(len(block.Transactions)))
	for _, tx := range block.Transactions {
		n += tx.SerializeSizeStripped()
	}
	return n
}

// CheckBlockSanity 对区块做与上下文无关的检查：工作量证明、交易数量与大小、coinbase 位置、
// 每笔交易的合法性、Merkle 根、重复交易以及签名操作数。
func CheckBlockSanity(block *wire.MsgBlock, powLimit *big.Int) error {
	header := &block.Header
	if err := CheckProofOfWork(header, powLimit); err != nil {
		return err
	}

	numTx := len(block.Transactions)
	if numTx == 0 {
		return ruleError(ErrNoTransactions, "block does not contain "+
			"any transactions")
	}

	serializedSize := blockSizeStripped(block)
	if serializedSize > MaxBlockBaseSize {
		str := fmt.Sprintf("serialized block is too big - got %d, "+
			"max %d", serializedSize, MaxBlockBaseSize)
		return ruleError(ErrBlockTooBig, str)
	}

	transactions := block.Transactions
	if !IsCoinBaseTx(transactions[0]) {
		return ruleError(ErrFirstTxNotCoinbase, "first transaction in "+
			"block is not a coinbase")
	}

	for i, tx := range transactions[1:] {
		if IsCoinBaseTx(tx) {
			str := fmt.Sprintf("block contains second coinbase at "+
				"index %d", i+1)
			return ruleError(ErrMultipleCoinbases, str)
		}
	}

	for _, tx := range transactions {
		if err := CheckTransactionSanity(tx); err != nil {
			return err
		}
	}

	calculatedMerkleRoot := CalcMerkleRoot(transactions)
	if header.MerkleRoot != calculatedMerkleRoot {
		str := fmt.Sprintf("block merkle root is invalid - block "+
			"header indicates %v, but calculated value is %v",
			header.MerkleRoot, calculatedMerkleRoot)
		return ruleError(ErrBadMerkleRoot, str)
	}

	existingTxHashes := make(map[chainhash.Hash]struct{})
	for _, tx := range transactions {
		hash := tx.TxHash()
		if _, exists := existingTxHashes[hash]; exists {
			str := fmt.Sprintf("block contains duplicate "+
				"transaction %v", hash)
			return ruleError(ErrDuplicateTx, str)
		}
		existingTxHashes[hash] = struct{}{}
	}

	totalSigOps := 0
	for _, tx := range transactions {
		totalSigOps += CountSigOps(tx) * WitnessScaleFactor
		if totalSigOps > MaxBlockSigOpsCost {
			str := fmt.Sprintf("block contains too many signature "+
				"operations - got %v, max %v", totalSigOps,
				MaxBlockSigOpsCost)
			return ruleError(ErrTooManySigOps, str)
		}
	}

	return nil
}
