// 包含基准测试代码，用于评估签名哈希计算与脚本执行的性能。

package txscript

import (
	"testing"

	"github.com/qinglongcn/btccore/chainhash"
	"github.com/qinglongcn/btccore/ecc"
	"github.com/qinglongcn/btccore/wire"
)

var (
	// 用于签名基准测试的模拟先前输出脚本。
	prevOutScript = hexToBytes("a914f5916158e3e2c4551c1796708db8367207ed13bb87")
)

// manyInputsTx 构造一个包含 n 个输入的交易，用于衡量签名哈希随输入数量的增长。
func manyInputsTx(n int) *wire.MsgTx {
	tx := wire.NewMsgTx(2)
	for i := 0; i < n; i++ {
		tx.AddTxIn(&wire.TxIn{
			PreviousOutPoint: wire.OutPoint{
				Hash:  chainhash.DoubleHashH([]byte{byte(i), byte(i >> 8)}),
				Index: uint32(i),
			},
			SignatureScript: prevOutScript,
			Sequence:        wire.MaxTxInSequenceNum,
		})
	}
	tx.AddTxOut(wire.NewTxOut(5, prevOutScript))
	return tx
}

// BenchmarkCalcSigHash 基准测试计算具有多个输入的交易的所有输入的签名哈希值所需的时间。
func BenchmarkCalcSigHash(b *testing.B) {
	tx := manyInputsTx(100)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		for j := 0; j < len(tx.TxIn); j++ {
			_, err := CalcSignatureHash(prevOutScript, SigHashAll, tx, j)
			if err != nil {
				b.Fatalf("failed to calc signature hash: %v", err)
			}
		}
	}
}

// BenchmarkCalcWitnessSigHash 基准测试计算具有多个输入的交易的所有输入的见证签名哈希值所需的时间。
func BenchmarkCalcWitnessSigHash(b *testing.B) {
	tx := manyInputsTx(100)
	sigHashes := NewTxSigHashes(tx)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		for j := 0; j < len(tx.TxIn); j++ {
			_, err := CalcWitnessSigHash(prevOutScript, sigHashes,
				SigHashAll, tx, j, 5)
			if err != nil {
				b.Fatalf("failed to calc signature hash: %v", err)
			}
		}
	}
}

// BenchmarkExecuteP2WPKH 基准测试验证一个 P2WPKH 输入所需的时间，包括签名校验。
func BenchmarkExecuteP2WPKH(b *testing.B) {
	key, err := ecc.PrivKeyFromBytes(chainhash.HashB([]byte("bench")))
	if err != nil {
		b.Fatal(err)
	}
	pkScript, err := payToWitnessPubKeyHashScript(
		chainhash.Hash160(key.PubKey().SerializeCompressed()))
	if err != nil {
		b.Fatal(err)
	}

	tx := manyInputsTx(1)
	tx.TxIn[0].SignatureScript = nil
	tx.TxIn[0].Witness, err = WitnessSignature(tx, NewTxSigHashes(tx), 0,
		5, pkScript, SigHashAll, key, true)
	if err != nil {
		b.Fatal(err)
	}

	ctx := NewSigHashContext(tx, 0, NewCannedPrevOutputFetcher(pkScript, 5))

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		vm, err := NewEngine(pkScript, ctx, StandardVerifyFlags, nil)
		if err != nil {
			b.Fatal(err)
		}
		if err := vm.Execute(); err != nil {
			b.Fatalf("failed to execute script: %v", err)
		}
	}
}

// BenchmarkIsPushOnlyScript 基准测试检查大脚本是否只包含数据推送所需的时间。
func BenchmarkIsPushOnlyScript(b *testing.B) {
	script := make([]byte, 0, MaxScriptSize)
	for len(script)+21 <= MaxScriptSize {
		script = append(script, OP_DATA_20)
		script = append(script, make([]byte, 20)...)
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = IsPushOnlyScript(script)
	}
}
