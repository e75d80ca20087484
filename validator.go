package btccore

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/qinglongcn/btccore/blockchain"
	"github.com/qinglongcn/btccore/chainhash"
	"github.com/qinglongcn/btccore/txscript"
	"github.com/qinglongcn/btccore/wire"
)

// Validator 按选项中的网络参数与脚本标志校验交易、区块头与区块。
// 所有方法可以被多个 goroutine 同时调用。
type Validator struct {
	opt      *Options
	sigCache *txscript.SigCache
}

// New 检查选项并创建校验器，之后选项不可再修改
func New(opt *Options) (*Validator, error) {
	if err := opt.CheckAndSetOptions(); err != nil {
		return nil, err
	}
	opt.IsOpened = true

	logrus.Debugf("[New] 网络 %s, 脚本标志 %#x, 签名缓存 %d",
		opt.Params.Name, uint32(opt.ScriptFlags), opt.SigCacheSize)

	return &Validator{
		opt:      opt,
		sigCache: txscript.NewSigCache(opt.SigCacheSize),
	}, nil
}

// Options 返回校验器使用的选项
func (v *Validator) Options() *Options {
	return v.opt
}

// CheckTransaction 依次执行交易的合法性检查、可选的标准策略检查以及所有输入的脚本校验。
// fetcher 提供被花费的输出。
func (v *Validator) CheckTransaction(tx *wire.MsgTx, fetcher txscript.PrevOutputFetcher) error {
	txHash := tx.TxHash()

	if err := blockchain.CheckTransactionSanity(tx); err != nil {
		v.reject(txHash, "sanity", err)
		return err
	}

	if v.opt.RequireStandard {
		if err := CheckTransactionStandard(tx); err != nil {
			v.reject(txHash, "policy", err)
			return err
		}
	}

	err := blockchain.ValidateTransactionScripts(tx, fetcher,
		v.opt.ScriptFlags, v.sigCache)
	if err != nil {
		v.reject(txHash, "script", err)
		return err
	}

	return nil
}

// CheckHeader 检查区块头的工作量证明
func (v *Validator) CheckHeader(header *wire.BlockHeader) error {
	if err := blockchain.CheckProofOfWork(header, v.opt.Params.PowLimit); err != nil {
		logrus.WithFields(logrus.Fields{
			"block": header.BlockHash(),
			"bits":  fmt.Sprintf("%08x", header.Bits),
		}).Warnf("[CheckHeader] 区块头被拒绝: %v", err)
		return err
	}

	return nil
}

// CheckBlock 对区块做与上下文无关的检查
func (v *Validator) CheckBlock(block *wire.MsgBlock) error {
	if err := blockchain.CheckBlockSanity(block, v.opt.Params.PowLimit); err != nil {
		logrus.WithFields(logrus.Fields{
			"block": block.BlockHash(),
			"txs":   len(block.Transactions),
		}).Warnf("[CheckBlock] 区块被拒绝: %v", err)
		return err
	}

	return nil
}

// VerifyInclusion 检查 txid 经 proof 可以得到区块头中的 Merkle 根
func (v *Validator) VerifyInclusion(txid *chainhash.Hash, proof *blockchain.MerkleProof,
	header *wire.BlockHeader) bool {

	if proof == nil {
		return false
	}
	return proof.Verify(txid, &header.MerkleRoot)
}

// reject 记录交易被拒绝的原因
func (v *Validator) reject(txHash chainhash.Hash, stage string, err error) {
	logrus.WithFields(logrus.Fields{
		"txid":  txHash,
		"stage": stage,
	}).Warnf("[CheckTransaction] 交易被拒绝: %v", err)
}

// InclusionProof 为区块中第 index 笔交易生成 Merkle 包含证明
func InclusionProof(block *wire.MsgBlock, index uint32) (*blockchain.MerkleProof, error) {
	tree, err := blockchain.NewMerkleTree(block.TxHashes())
	if err != nil {
		return nil, err
	}
	return tree.Proof(index)
}
