package blockchain

import (
	"fmt"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"

	"github.com/qinglongcn/btccore/chaincfg"
	"github.com/qinglongcn/btccore/chainhash"
)

// testLeaves 生成 n 个互不相同的叶子。
func testLeaves(n int) []chainhash.Hash {
	leaves := make([]chainhash.Hash, n)
	for i := range leaves {
		leaves[i] = chainhash.DoubleHashH([]byte(fmt.Sprintf("leaf %d", i)))
	}
	return leaves
}

// TestMerkleTreeRoot 对照手工拼接的哈希检查根。
func TestMerkleTreeRoot(t *testing.T) {
	t.Parallel()

	l := testLeaves(4)
	ab := HashMerkleBranches(&l[0], &l[1])
	cd := HashMerkleBranches(&l[2], &l[3])
	want := HashMerkleBranches(&ab, &cd)

	tree, err := NewMerkleTree(l)
	require.NoError(t, err)
	require.Equal(t, want, tree.Root())
	require.Equal(t, uint32(4), tree.LeafCount())
	require.Len(t, tree.Levels(), 3)

	// An odd level duplicates its last node.
	tree, err = NewMerkleTree(l[:3])
	require.NoError(t, err)
	cc := HashMerkleBranches(&l[2], &l[2])
	require.Equal(t, HashMerkleBranches(&ab, &cc), tree.Root())

	// A single leaf is its own root.
	tree, err = NewMerkleTree(l[:1])
	require.NoError(t, err)
	require.Equal(t, l[0], tree.Root())

	// The tree keeps its own copy of the leaves.
	leaves := testLeaves(2)
	tree, err = NewMerkleTree(leaves)
	require.NoError(t, err)
	root := tree.Root()
	leaves[0][0] ^= 0xff
	require.Equal(t, root, tree.Root())
}

// TestMerkleTreeNoLeaves 检查空叶子列表。
func TestMerkleTreeNoLeaves(t *testing.T) {
	t.Parallel()

	_, err := NewMerkleTree(nil)
	require.True(t, IsErrorCode(err, ErrNoLeaves), "got %v", err)
}

// TestMerkleProof 为不同规模的树生成并验证每个叶子的证明。
func TestMerkleProof(t *testing.T) {
	t.Parallel()

	for n := 1; n <= 17; n++ {
		leaves := testLeaves(n)
		tree, err := NewMerkleTree(leaves)
		require.NoError(t, err)
		root := tree.Root()

		for i := range leaves {
			proof, err := tree.Proof(uint32(i))
			require.NoError(t, err)
			require.Len(t, proof.Siblings, merkleDepth(uint32(n)))
			require.True(t, proof.Verify(&leaves[i], &root),
				"n=%d i=%d proof=%v", n, i, spew.Sdump(proof))

			// The proof does not hold for any other leaf.
			other := leaves[(i+1)%n]
			if n > 1 {
				require.False(t, proof.Verify(&other, &root))
			}
		}

		_, err = tree.Proof(uint32(n))
		require.True(t, IsErrorCode(err, ErrInvalidProofIndex),
			"got %v", err)
	}
}

// TestVerifyMerkleProof 检查四个叶子时索引 2 的证明以及各种篡改。
func TestVerifyMerkleProof(t *testing.T) {
	t.Parallel()

	l := testLeaves(4)
	ab := HashMerkleBranches(&l[0], &l[1])
	cd := HashMerkleBranches(&l[2], &l[3])
	root := HashMerkleBranches(&ab, &cd)

	siblings := []chainhash.Hash{l[3], ab}
	require.True(t, VerifyMerkleProof(&l[2], 2, 4, siblings, &root))

	tree, err := NewMerkleTree(l)
	require.NoError(t, err)
	proof, err := tree.Proof(2)
	require.NoError(t, err)
	require.Equal(t, siblings, proof.Siblings)

	// A flipped bit in a sibling.
	bad := []chainhash.Hash{l[3], ab}
	bad[1][7] ^= 0x01
	require.False(t, VerifyMerkleProof(&l[2], 2, 4, bad, &root))

	// The wrong position for the leaf.
	require.False(t, VerifyMerkleProof(&l[2], 3, 4, siblings, &root))

	// Index outside of the tree.
	require.False(t, VerifyMerkleProof(&l[2], 4, 4, siblings, &root))
	require.False(t, VerifyMerkleProof(&l[2], 0, 0, nil, &root))

	// Sibling count must match the depth.
	require.False(t, VerifyMerkleProof(&l[2], 2, 4, siblings[:1], &root))
	require.False(t, VerifyMerkleProof(&l[2], 2, 4,
		append(siblings, l[0]), &root))

	// A single leaf needs no siblings.
	require.True(t, VerifyMerkleProof(&l[0], 0, 1, nil, &l[0]))
}

// TestMerkleDepth 检查不同叶子数的树高。
func TestMerkleDepth(t *testing.T) {
	t.Parallel()

	tests := map[uint32]int{
		0: 0, 1: 0, 2: 1, 3: 2, 4: 2, 5: 3, 8: 3, 9: 4, 4096: 12, 4097: 13,
	}
	for n, want := range tests {
		require.Equal(t, want, merkleDepth(n), "leaf count %d", n)
	}
}

// TestMerkleRootBlock100000 使用主网 100000 号区块的交易检查根。
func TestMerkleRootBlock100000(t *testing.T) {
	t.Parallel()

	txids := []string{
		"8c14f0db3df150123e6f3dbbf30f8b955a8249b62ac1d1ff16284aefa3d06d87",
		"fff2525b8931402dd09222c50775608f75787bd2b87e56995a7bdd30f79702c4",
		"6359f0868171b1d194cbee1af2f16ea598ae8fad666d9b012c8ed2b79a236ec4",
		"e9a66845e05d5abc0ad04ec80f774a7e585c6e8db975962d069a522137b80c1d",
	}
	leaves := make([]chainhash.Hash, len(txids))
	for i, txid := range txids {
		hash, err := chainhash.NewHashFromStr(txid)
		require.NoError(t, err)
		leaves[i] = *hash
	}

	want, err := chainhash.NewHashFromStr("f3e94742aca4b5ef85488dc37c06c3" +
		"282295ffec960994b2c0d5ac2a25a95766")
	require.NoError(t, err)

	tree, err := NewMerkleTree(leaves)
	require.NoError(t, err)
	require.Equal(t, *want, tree.Root())

	for i := range leaves {
		proof, err := tree.Proof(uint32(i))
		require.NoError(t, err)
		require.True(t, proof.Verify(&leaves[i], want))
	}
}

// TestCalcMerkleRoot 检查创世区块的 Merkle 根。
func TestCalcMerkleRoot(t *testing.T) {
	t.Parallel()

	genesis := chaincfg.MainNetParams.GenesisBlock
	require.Equal(t, genesis.Header.MerkleRoot,
		CalcMerkleRoot(genesis.Transactions))

	require.Equal(t, chainhash.Hash{}, CalcMerkleRoot(nil))
}
