// 包含 Merkle 树的构建以及包含证明的生成与验证。

package blockchain

import (
	"fmt"

	"github.com/qinglongcn/btccore/chainhash"
	"github.com/qinglongcn/btccore/wire"
)

// HashMerkleBranches 返回 SHA256d(left || right)。
func HashMerkleBranches(left, right *chainhash.Hash) chainhash.Hash {
	var hash [chainhash.HashSize * 2]byte
	copy(hash[:chainhash.HashSize], left[:])
	copy(hash[chainhash.HashSize:], right[:])

	return chainhash.DoubleHashH(hash[:])
}

// MerkleTree 代表一个 Merkle 树，按层保存从叶子到根的全部节点
type MerkleTree struct {
	levels [][]chainhash.Hash
}

// NewMerkleTree 从有序的叶子哈希创建 Merkle 树。
// 每层两两相邻节点拼接后做双 SHA256，节点数为奇数时复制最后一个节点。
func NewMerkleTree(leaves []chainhash.Hash) (*MerkleTree, error) {
	if len(leaves) == 0 {
		return nil, ruleError(ErrNoLeaves, "merkle tree needs at least "+
			"one leaf")
	}

	level := make([]chainhash.Hash, len(leaves))
	copy(level, leaves)
	levels := [][]chainhash.Hash{level}

	for len(level) > 1 {
		next := make([]chainhash.Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			// The last node of an odd level is paired with itself.
			right := &level[i]
			if i+1 < len(level) {
				right = &level[i+1]
			}
			next = append(next, HashMerkleBranches(&level[i], right))
		}
		levels = append(levels, next)
		level = next
	}

	return &MerkleTree{levels: levels}, nil
}

// Root 返回 Merkle 根。
func (t *MerkleTree) Root() chainhash.Hash {
	return t.levels[len(t.levels)-1][0]
}

// Levels 返回从叶子层到根的所有层。返回的切片不可修改。
func (t *MerkleTree) Levels() [][]chainhash.Hash {
	return t.levels
}

// LeafCount 返回叶子数。
func (t *MerkleTree) LeafCount() uint32 {
	return uint32(len(t.levels[0]))
}

// MerkleProof 是某个叶子的包含证明：叶子索引、叶子总数以及从叶子层向上的兄弟节点。
type MerkleProof struct {
	Index     uint32
	LeafCount uint32
	Siblings  []chainhash.Hash
}

// Proof 返回第 index 个叶子的包含证明。
func (t *MerkleTree) Proof(index uint32) (*MerkleProof, error) {
	if index >= t.LeafCount() {
		str := fmt.Sprintf("leaf index %d out of range for %d leaves",
			index, t.LeafCount())
		return nil, ruleError(ErrInvalidProofIndex, str)
	}

	proof := &MerkleProof{
		Index:     index,
		LeafCount: t.LeafCount(),
		Siblings:  make([]chainhash.Hash, 0, len(t.levels)-1),
	}

	idx := int(index)
	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := idx ^ 1
		if sibling >= len(level) {
			sibling = idx
		}
		proof.Siblings = append(proof.Siblings, level[sibling])
		idx /= 2
	}

	return proof, nil
}

// Verify 检查 leaf 经过该证明能得到 root。
func (p *MerkleProof) Verify(leaf, root *chainhash.Hash) bool {
	return VerifyMerkleProof(leaf, p.Index, p.LeafCount, p.Siblings, root)
}

// merkleDepth 返回 leafCount 个叶子的树除叶子层外的层数。
func merkleDepth(leafCount uint32) int {
	depth := 0
	for n := uint64(leafCount); n > 1; n = (n + 1) / 2 {
		depth++
	}
	return depth
}

// VerifyMerkleProof 用兄弟节点从叶子重新计算根，与 root 相等时返回 true。
//
// 每一层中当前索引为偶数时兄弟在右侧，为奇数时在左侧，之后索引减半。
// 兄弟节点数必须等于树的深度，索引必须小于叶子总数。
func VerifyMerkleProof(leaf *chainhash.Hash, index, leafCount uint32,
	siblings []chainhash.Hash, root *chainhash.Hash) bool {

	if index >= leafCount || len(siblings) != merkleDepth(leafCount) {
		return false
	}

	current := *leaf
	for i := range siblings {
		if index%2 == 0 {
			current = HashMerkleBranches(&current, &siblings[i])
		} else {
			current = HashMerkleBranches(&siblings[i], &current)
		}
		index /= 2
	}

	return current == *root
}

// CalcMerkleRoot 计算交易列表的 Merkle 根，叶子是各交易的 txid。
// 交易列表为空时返回全零哈希。
func CalcMerkleRoot(txs []*wire.MsgTx) chainhash.Hash {
	if len(txs) == 0 {
		return chainhash.Hash{}
	}

	leaves := make([]chainhash.Hash, 0, len(txs))
	for _, tx := range txs {
		leaves = append(leaves, tx.TxHash())
	}

	tree, _ := NewMerkleTree(leaves)
	return tree.Root()
}
