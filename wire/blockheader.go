// 定义80字节的区块头及其序列化。
package wire

import (
	"bytes"
	"io"
	"time"

	"github.com/qinglongcn/btccore/chainhash"
	"github.com/qinglongcn/btccore/codec"
)

// BlockHeaderLen 是序列化区块头的固定长度：
// 版本 4 字节 + 前一区块哈希 32 字节 + Merkle 根 32 字节 + 时间戳 4 字节 + 难度位 4 字节 + 随机数 4 字节。
const BlockHeaderLen = 80

// BlockHeader 是区块头。
type BlockHeader struct {
	// 区块版本
	Version int32

	// 前一区块的哈希
	PrevBlock chainhash.Hash

	// 区块内全部交易的 Merkle 根
	MerkleRoot chainhash.Hash

	// 区块创建时间，序列化时精确到秒
	Timestamp time.Time

	// 紧凑格式的难度目标
	Bits uint32

	// 用于工作量证明的随机数
	Nonce uint32
}

// NewBlockHeader 创建区块头，时间戳截断到秒。
func NewBlockHeader(version int32, prevHash, merkleRootHash *chainhash.Hash,
	bits uint32, nonce uint32) *BlockHeader {

	return &BlockHeader{
		Version:    version,
		PrevBlock:  *prevHash,
		MerkleRoot: *merkleRootHash,
		Timestamp:  time.Unix(time.Now().Unix(), 0),
		Bits:       bits,
		Nonce:      nonce,
	}
}

// BlockHash 计算区块头的双 SHA256。
func (h *BlockHeader) BlockHash() chainhash.Hash {
	return chainhash.DoubleHashH(h.Bytes())
}

// Serialize 将区块头写入 w。
func (h *BlockHeader) Serialize(w io.Writer) error {
	if err := codec.WriteUint32LE(w, uint32(h.Version)); err != nil {
		return err
	}
	if _, err := w.Write(h.PrevBlock[:]); err != nil {
		return err
	}
	if _, err := w.Write(h.MerkleRoot[:]); err != nil {
		return err
	}
	if err := codec.WriteUint32LE(w, uint32(h.Timestamp.Unix())); err != nil {
		return err
	}
	if err := codec.WriteUint32LE(w, h.Bits); err != nil {
		return err
	}
	return codec.WriteUint32LE(w, h.Nonce)
}

// Bytes 返回80字节的序列化区块头。
func (h *BlockHeader) Bytes() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, BlockHeaderLen))
	_ = h.Serialize(buf)
	return buf.Bytes()
}

// Decode 从游标读取区块头。
func (h *BlockHeader) Decode(r *codec.Reader) error {
	version, err := r.ReadUint32LE("block version")
	if err != nil {
		return err
	}
	h.Version = int32(version)

	if err := r.ReadInto(h.PrevBlock[:], "previous block hash"); err != nil {
		return err
	}
	if err := r.ReadInto(h.MerkleRoot[:], "merkle root"); err != nil {
		return err
	}

	sec, err := r.ReadUint32LE("block timestamp")
	if err != nil {
		return err
	}
	h.Timestamp = time.Unix(int64(sec), 0)

	if h.Bits, err = r.ReadUint32LE("block bits"); err != nil {
		return err
	}
	h.Nonce, err = r.ReadUint32LE("block nonce")
	return err
}

// DecodeBlockHeader 解码恰好80字节的区块头。
func DecodeBlockHeader(b []byte) (*BlockHeader, error) {
	r := codec.NewReader(b)
	var h BlockHeader
	if err := h.Decode(r); err != nil {
		return nil, err
	}
	if err := r.ExpectEOF(); err != nil {
		return nil, err
	}
	return &h, nil
}
