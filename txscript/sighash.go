// 包含计算交易签名哈希的函数，这是签名验证过程的一部分。

package txscript

import (
	"bytes"
	"fmt"

	"github.com/qinglongcn/btccore/chainhash"
	"github.com/qinglongcn/btccore/codec"
	"github.com/qinglongcn/btccore/wire"
)

// SigHashType 是附加在签名末尾、决定签名覆盖交易哪些部分的字节。
type SigHashType uint32

// 签名哈希类型。
const (
	SigHashOld          SigHashType = 0x0
	SigHashAll          SigHashType = 0x1
	SigHashNone         SigHashType = 0x2
	SigHashSingle       SigHashType = 0x3
	SigHashAnyOneCanPay SigHashType = 0x80

	// sigHashMask 取出基本类型，去掉 ANYONECANPAY 标志。
	sigHashMask = 0x1f
)

// CalcSignatureHash 计算传统（非见证）输入的签名哈希。
//
// 做法是复制交易，把 idx 号输入的解锁脚本替换为去掉 OP_CODESEPARATOR 的 script，
// 清空其他输入的解锁脚本，按 hashType 裁剪输入输出，序列化后附加 4 字节小端的 hashType，
// 最后做两次 SHA256。
func CalcSignatureHash(script []byte, hashType SigHashType, tx *wire.MsgTx, idx int) ([]byte, error) {
	if idx < 0 || idx >= len(tx.TxIn) {
		str := fmt.Sprintf("transaction input index %d is negative or "+
			">= %d", idx, len(tx.TxIn))
		return nil, scriptError(ErrInvalidIndex, str)
	}
	if err := checkScriptParses(script); err != nil {
		return nil, err
	}

	return calcSignatureHash(script, hashType, tx, idx), nil
}

// calcSignatureHash 与 CalcSignatureHash 相同，但不检查参数。
func calcSignatureHash(script []byte, hashType SigHashType, tx *wire.MsgTx, idx int) []byte {
	// SIGHASH_SINGLE without a matching output signs the value one.
	if hashType&sigHashMask == SigHashSingle && idx >= len(tx.TxOut) {
		var hash chainhash.Hash
		hash[0] = 0x01
		return hash[:]
	}

	script = removeOpcodeRaw(script, OP_CODESEPARATOR)

	txCopy := tx.Copy()
	for i := range txCopy.TxIn {
		if i == idx {
			txCopy.TxIn[idx].SignatureScript = script
		} else {
			txCopy.TxIn[i].SignatureScript = nil
		}
	}

	switch hashType & sigHashMask {
	case SigHashNone:
		txCopy.TxOut = txCopy.TxOut[0:0]
		for i := range txCopy.TxIn {
			if i != idx {
				txCopy.TxIn[i].Sequence = 0
			}
		}

	case SigHashSingle:
		// Outputs before the input's index are blanked; later ones drop.
		txCopy.TxOut = txCopy.TxOut[:idx+1]
		for i := 0; i < idx; i++ {
			txCopy.TxOut[i].Value = -1
			txCopy.TxOut[i].PkScript = nil
		}
		for i := range txCopy.TxIn {
			if i != idx {
				txCopy.TxIn[i].Sequence = 0
			}
		}

	default:
		// SigHashOld and unknown types behave like SigHashAll.
	}

	if hashType&SigHashAnyOneCanPay != 0 {
		txCopy.TxIn = txCopy.TxIn[idx : idx+1]
	}

	var buf bytes.Buffer
	buf.Grow(txCopy.SerializeSizeStripped() + 4)
	_ = txCopy.SerializeNoWitness(&buf)
	_ = codec.WriteUint32LE(&buf, uint32(hashType))
	return chainhash.DoubleHashB(buf.Bytes())
}

// CalcWitnessSigHash 按 BIP143 计算版本 0 见证输入的签名哈希。
// sigHashes 可以为 nil，此时现场计算；同一交易的多个输入应共享一份 TxSigHashes。
// script 若是 P2WPKH 见证程序，会转换为对应的 P2PKH 脚本作为 scriptCode。
func CalcWitnessSigHash(script []byte, sigHashes *TxSigHashes, hashType SigHashType,
	tx *wire.MsgTx, idx int, amt int64) ([]byte, error) {

	if idx < 0 || idx >= len(tx.TxIn) {
		str := fmt.Sprintf("transaction input index %d is negative or "+
			">= %d", idx, len(tx.TxIn))
		return nil, scriptError(ErrInvalidIndex, str)
	}
	if err := checkScriptParses(script); err != nil {
		return nil, err
	}
	if sigHashes == nil {
		sigHashes = NewTxSigHashes(tx)
	}

	return calcWitnessSignatureHash(script, sigHashes, hashType, tx, idx, amt), nil
}

// calcWitnessSignatureHash 与 CalcWitnessSigHash 相同，但不检查参数。
func calcWitnessSignatureHash(script []byte, sigHashes *TxSigHashes,
	hashType SigHashType, tx *wire.MsgTx, idx int, amt int64) []byte {

	var sigHash bytes.Buffer
	var zeroHash chainhash.Hash

	_ = codec.WriteUint32LE(&sigHash, uint32(tx.Version))

	anyoneCanPay := hashType&SigHashAnyOneCanPay != 0
	baseType := hashType & sigHashMask

	if !anyoneCanPay {
		sigHash.Write(sigHashes.HashPrevOuts[:])
	} else {
		sigHash.Write(zeroHash[:])
	}

	if !anyoneCanPay && baseType != SigHashSingle && baseType != SigHashNone {
		sigHash.Write(sigHashes.HashSequence[:])
	} else {
		sigHash.Write(zeroHash[:])
	}

	txIn := tx.TxIn[idx]
	_ = wire.WriteOutPoint(&sigHash, &txIn.PreviousOutPoint)

	if isWitnessPubKeyHashScript(script) {
		// OP_DUP OP_HASH160 <20 bytes> OP_EQUALVERIFY OP_CHECKSIG
		scriptCode, _ := payToPubKeyHashScript(script[2:22])
		_ = codec.WriteVarBytes(&sigHash, scriptCode)
	} else {
		_ = codec.WriteVarBytes(&sigHash, script)
	}

	_ = codec.WriteUint64LE(&sigHash, uint64(amt))
	_ = codec.WriteUint32LE(&sigHash, txIn.Sequence)

	switch {
	case baseType != SigHashSingle && baseType != SigHashNone:
		sigHash.Write(sigHashes.HashOutputs[:])
	case baseType == SigHashSingle && idx < len(tx.TxOut):
		var b bytes.Buffer
		_ = wire.WriteTxOut(&b, tx.TxOut[idx])
		sigHash.Write(chainhash.DoubleHashB(b.Bytes()))
	default:
		sigHash.Write(zeroHash[:])
	}

	_ = codec.WriteUint32LE(&sigHash, tx.LockTime)
	_ = codec.WriteUint32LE(&sigHash, uint32(hashType))

	return chainhash.DoubleHashB(sigHash.Bytes())
}
