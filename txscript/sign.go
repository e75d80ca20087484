// 包含为交易输入生成签名与解锁数据的函数。

package txscript

import (
	"fmt"

	"github.com/qinglongcn/btccore/ecc"
	"github.com/qinglongcn/btccore/wire"
)

// RawTxInSignature 对交易第 idx 个输入的传统签名哈希签名，返回 DER 签名后接一个哈希类型字节。
func RawTxInSignature(tx *wire.MsgTx, idx int, subScript []byte,
	hashType SigHashType, key *ecc.PrivateKey) ([]byte, error) {

	hash, err := CalcSignatureHash(subScript, hashType, tx, idx)
	if err != nil {
		return nil, err
	}

	signature, err := key.Sign(hash)
	if err != nil {
		return nil, fmt.Errorf("cannot sign tx input: %w", err)
	}

	return append(signature.Serialize(), byte(hashType)), nil
}

// SignatureScript 创建花费 P2PKH 输出的解锁脚本：<签名> <公钥>。
// compress 决定公钥使用压缩还是非压缩格式，须与输出中的公钥哈希一致。
func SignatureScript(tx *wire.MsgTx, idx int, subscript []byte,
	hashType SigHashType, privKey *ecc.PrivateKey, compress bool) ([]byte, error) {

	sig, err := RawTxInSignature(tx, idx, subscript, hashType, privKey)
	if err != nil {
		return nil, err
	}

	pk := privKey.PubKey()
	var pkData []byte
	if compress {
		pkData = pk.SerializeCompressed()
	} else {
		pkData = pk.SerializeUncompressed()
	}

	return NewScriptBuilder().AddData(sig).AddData(pkData).Script()
}

// RawTxInWitnessSignature 对第 idx 个输入的 BIP143 签名哈希签名，amt 是被花费输出的金额。
// sigHashes 为 nil 时从交易计算。
func RawTxInWitnessSignature(tx *wire.MsgTx, sigHashes *TxSigHashes, idx int,
	amt int64, subScript []byte, hashType SigHashType,
	key *ecc.PrivateKey) ([]byte, error) {

	hash, err := CalcWitnessSigHash(subScript, sigHashes, hashType, tx,
		idx, amt)
	if err != nil {
		return nil, err
	}

	signature, err := key.Sign(hash)
	if err != nil {
		return nil, fmt.Errorf("cannot sign tx input: %w", err)
	}

	return append(signature.Serialize(), byte(hashType)), nil
}

// WitnessSignature 创建花费 P2WPKH 输出的见证：<签名> <公钥>。subscript 是被花费的输出脚本。
func WitnessSignature(tx *wire.MsgTx, sigHashes *TxSigHashes, idx int,
	amt int64, subscript []byte, hashType SigHashType,
	privKey *ecc.PrivateKey, compress bool) (wire.TxWitness, error) {

	sig, err := RawTxInWitnessSignature(tx, sigHashes, idx, amt, subscript,
		hashType, privKey)
	if err != nil {
		return nil, err
	}

	pk := privKey.PubKey()
	var pkData []byte
	if compress {
		pkData = pk.SerializeCompressed()
	} else {
		pkData = pk.SerializeUncompressed()
	}

	return wire.TxWitness{sig, pkData}, nil
}
