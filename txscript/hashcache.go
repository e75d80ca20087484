// 实现了一个哈希缓存，用于优化交易签名验证过程。

package txscript

import (
	"bytes"
	"sync"

	"github.com/qinglongcn/btccore/chainhash"
	"github.com/qinglongcn/btccore/codec"
	"github.com/qinglongcn/btccore/wire"
)

// PrevOutputFetcher 按输出点查询被花费的输出。
type PrevOutputFetcher interface {
	// FetchPrevOutput 返回输出点对应的输出，不存在时返回 nil。
	FetchPrevOutput(wire.OutPoint) *wire.TxOut
}

// CannedPrevOutputFetcher 对任意输出点都返回同一个输出，适合单输入的场景。
type CannedPrevOutputFetcher struct {
	pkScript []byte
	amt      int64
}

// NewCannedPrevOutputFetcher 创建一个 CannedPrevOutputFetcher。
func NewCannedPrevOutputFetcher(script []byte, amt int64) *CannedPrevOutputFetcher {
	return &CannedPrevOutputFetcher{
		pkScript: script,
		amt:      amt,
	}
}

// FetchPrevOutput 返回预设的输出。
func (c *CannedPrevOutputFetcher) FetchPrevOutput(wire.OutPoint) *wire.TxOut {
	return wire.NewTxOut(c.amt, c.pkScript)
}

var _ PrevOutputFetcher = (*CannedPrevOutputFetcher)(nil)

// MultiPrevOutFetcher 用映射保存多个被花费的输出。
type MultiPrevOutFetcher struct {
	prevOuts map[wire.OutPoint]*wire.TxOut
}

// NewMultiPrevOutFetcher 用已知输出创建 MultiPrevOutFetcher，prevOuts 可以为 nil。
func NewMultiPrevOutFetcher(prevOuts map[wire.OutPoint]*wire.TxOut) *MultiPrevOutFetcher {
	if prevOuts == nil {
		prevOuts = make(map[wire.OutPoint]*wire.TxOut)
	}

	return &MultiPrevOutFetcher{
		prevOuts: prevOuts,
	}
}

// FetchPrevOutput 返回输出点对应的输出。
func (m *MultiPrevOutFetcher) FetchPrevOutput(op wire.OutPoint) *wire.TxOut {
	return m.prevOuts[op]
}

// AddPrevOut 添加一个输出。
func (m *MultiPrevOutFetcher) AddPrevOut(op wire.OutPoint, txOut *wire.TxOut) {
	m.prevOuts[op] = txOut
}

var _ PrevOutputFetcher = (*MultiPrevOutFetcher)(nil)

// TxSigHashes 保存 BIP143 签名哈希中与输入无关的三个中间摘要，
// 每笔交易只需计算一次，避免签名哈希随输入数量呈平方增长。
type TxSigHashes struct {
	HashPrevOuts chainhash.Hash
	HashSequence chainhash.Hash
	HashOutputs  chainhash.Hash
}

// NewTxSigHashes 为交易计算 TxSigHashes。
func NewTxSigHashes(tx *wire.MsgTx) *TxSigHashes {
	return &TxSigHashes{
		HashPrevOuts: calcHashPrevOuts(tx),
		HashSequence: calcHashSequence(tx),
		HashOutputs:  calcHashOutputs(tx),
	}
}

// calcHashPrevOuts 是所有输入输出点序列化后的双 SHA256。
func calcHashPrevOuts(tx *wire.MsgTx) chainhash.Hash {
	var b bytes.Buffer
	for _, in := range tx.TxIn {
		_ = wire.WriteOutPoint(&b, &in.PreviousOutPoint)
	}

	return chainhash.DoubleHashH(b.Bytes())
}

// calcHashSequence 是所有输入序列号的双 SHA256。
func calcHashSequence(tx *wire.MsgTx) chainhash.Hash {
	var b bytes.Buffer
	for _, in := range tx.TxIn {
		_ = codec.WriteUint32LE(&b, in.Sequence)
	}

	return chainhash.DoubleHashH(b.Bytes())
}

// calcHashOutputs 是所有输出序列化后的双 SHA256。
func calcHashOutputs(tx *wire.MsgTx) chainhash.Hash {
	var b bytes.Buffer
	for _, out := range tx.TxOut {
		_ = wire.WriteTxOut(&b, out)
	}

	return chainhash.DoubleHashH(b.Bytes())
}

// HashCache 按交易哈希缓存 TxSigHashes，可并发使用。
type HashCache struct {
	sigHashes map[chainhash.Hash]*TxSigHashes

	sync.RWMutex
}

// NewHashCache 创建一个预留 maxSize 个条目的 HashCache。
func NewHashCache(maxSize uint) *HashCache {
	return &HashCache{
		sigHashes: make(map[chainhash.Hash]*TxSigHashes, maxSize),
	}
}

// AddSigHashes 计算并缓存交易的 TxSigHashes，返回缓存的值。
func (h *HashCache) AddSigHashes(tx *wire.MsgTx) *TxSigHashes {
	sigHashes := NewTxSigHashes(tx)

	h.Lock()
	h.sigHashes[tx.TxHash()] = sigHashes
	h.Unlock()

	return sigHashes
}

// ContainsHashes 报告缓存中是否有该交易。
func (h *HashCache) ContainsHashes(txid *chainhash.Hash) bool {
	h.RLock()
	_, found := h.sigHashes[*txid]
	h.RUnlock()

	return found
}

// GetSigHashes 返回缓存的 TxSigHashes。
func (h *HashCache) GetSigHashes(txid *chainhash.Hash) (*TxSigHashes, bool) {
	h.RLock()
	item, found := h.sigHashes[*txid]
	h.RUnlock()

	return item, found
}

// PurgeSigHashes 删除交易的缓存。
func (h *HashCache) PurgeSigHashes(txid *chainhash.Hash) {
	h.Lock()
	delete(h.sigHashes, *txid)
	h.Unlock()
}
