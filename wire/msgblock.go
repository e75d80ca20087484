package wire

import (
	"bytes"
	"io"

	"github.com/qinglongcn/btccore/chainhash"
	"github.com/qinglongcn/btccore/codec"
)

// minTxPayload 是一笔交易的最小字节数。
const minTxPayload = 10

// MsgBlock 是完整的区块：区块头加交易列表。
type MsgBlock struct {
	Header       BlockHeader
	Transactions []*MsgTx
}

// AddTransaction 追加一笔交易。
func (msg *MsgBlock) AddTransaction(tx *MsgTx) {
	msg.Transactions = append(msg.Transactions, tx)
}

// BlockHash 返回区块头哈希。
func (msg *MsgBlock) BlockHash() chainhash.Hash {
	return msg.Header.BlockHash()
}

// TxHashes 按顺序返回全部交易的 txid。
func (msg *MsgBlock) TxHashes() []chainhash.Hash {
	hashList := make([]chainhash.Hash, 0, len(msg.Transactions))
	for _, tx := range msg.Transactions {
		hashList = append(hashList, tx.TxHash())
	}
	return hashList
}

// Serialize 将区块写入 w。
func (msg *MsgBlock) Serialize(w io.Writer) error {
	if err := msg.Header.Serialize(w); err != nil {
		return err
	}
	if err := codec.WriteVarInt(w, uint64(len(msg.Transactions))); err != nil {
		return err
	}
	for _, tx := range msg.Transactions {
		if err := tx.Serialize(w); err != nil {
			return err
		}
	}
	return nil
}

// Bytes 返回区块的序列化结果。
func (msg *MsgBlock) Bytes() []byte {
	var buf bytes.Buffer
	_ = msg.Serialize(&buf)
	return buf.Bytes()
}

// DecodeBlock 从 b 解码一个区块，要求恰好消费全部字节。
func DecodeBlock(b []byte) (*MsgBlock, error) {
	r := codec.NewReader(b)

	var msg MsgBlock
	if err := msg.Header.Decode(r); err != nil {
		return nil, err
	}

	countOffset := r.Offset()
	count, err := r.ReadVarInt("transaction count")
	if err != nil {
		return nil, err
	}

	// Every transaction is at least ten bytes.
	if count > uint64(r.Remaining()/minTxPayload) {
		return nil, shortCount(r, countOffset, count, minTxPayload,
			"transactions")
	}

	msg.Transactions = make([]*MsgTx, 0, count)
	for i := uint64(0); i < count; i++ {
		tx := new(MsgTx)
		if err := tx.Decode(r); err != nil {
			return nil, err
		}
		msg.Transactions = append(msg.Transactions, tx)
	}

	if err := r.ExpectEOF(); err != nil {
		return nil, err
	}
	return &msg, nil
}
