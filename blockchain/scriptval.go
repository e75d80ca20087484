// 并行验证交易全部输入的脚本。

package blockchain

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/qinglongcn/btccore/txscript"
	"github.com/qinglongcn/btccore/wire"
)

// ValidateTransactionScripts 为交易的每个输入创建脚本引擎并并行执行，返回第一个失败。
//
// fetcher 提供每个输入引用的输出。所有输入共享一份 TxSigHashes；sigCache 可以为 nil。
// coinbase 交易没有需要验证的输入。
func ValidateTransactionScripts(tx *wire.MsgTx, fetcher txscript.PrevOutputFetcher,
	flags txscript.ScriptFlags, sigCache *txscript.SigCache) error {

	if IsCoinBaseTx(tx) {
		return nil
	}

	// Look up every referenced output before starting any engine.
	prevOuts := make([]*wire.TxOut, len(tx.TxIn))
	for i, txIn := range tx.TxIn {
		prevOut := fetcher.FetchPrevOutput(txIn.PreviousOutPoint)
		if prevOut == nil {
			str := fmt.Sprintf("output %v referenced from transaction "+
				"%s:%d does not exist", txIn.PreviousOutPoint,
				tx.TxHash(), i)
			return ruleError(ErrMissingTxOut, str)
		}
		prevOuts[i] = prevOut
	}

	sigHashes := txscript.NewTxSigHashes(tx)

	eg := &errgroup.Group{}
	for i := range tx.TxIn {
		i := i
		eg.Go(func() error {
			return validateInput(tx, i, prevOuts[i], fetcher, flags,
				sigCache, sigHashes)
		})
	}

	return eg.Wait()
}

// validateInput 执行单个输入的脚本。
func validateInput(tx *wire.MsgTx, idx int, prevOut *wire.TxOut,
	fetcher txscript.PrevOutputFetcher, flags txscript.ScriptFlags,
	sigCache *txscript.SigCache, sigHashes *txscript.TxSigHashes) error {

	txIn := tx.TxIn[idx]
	ctx := &txscript.SigHashContext{
		Tx:             tx,
		InputIndex:     idx,
		InputAmount:    prevOut.Value,
		PrevOutFetcher: fetcher,
		HashCache:      sigHashes,
	}

	vm, err := txscript.NewEngine(prevOut.PkScript, ctx, flags, sigCache)
	if err != nil {
		str := fmt.Sprintf("failed to parse input %s:%d which references "+
			"output %v - %v (input witness %x, input script bytes %x, "+
			"prev output script bytes %x)", tx.TxHash(), idx,
			txIn.PreviousOutPoint, err, txIn.Witness,
			txIn.SignatureScript, prevOut.PkScript)
		return RuleError{ErrorCode: ErrScriptMalformed, Description: str,
			Err: err}
	}

	if err := vm.Execute(); err != nil {
		str := fmt.Sprintf("failed to validate input %s:%d which "+
			"references output %v - %v (input witness %x, input "+
			"script bytes %x, prev output script bytes %x)",
			tx.TxHash(), idx, txIn.PreviousOutPoint, err,
			txIn.Witness, txIn.SignatureScript, prevOut.PkScript)
		logrus.WithFields(logrus.Fields{
			"txid":  tx.TxHash(),
			"input": idx,
		}).Debugf("[ValidateTransactionScripts] 脚本验证失败: %v", err)
		return RuleError{ErrorCode: ErrScriptValidation, Description: str,
			Err: err}
	}

	return nil
}
