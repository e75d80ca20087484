// 包含区块头的工作量证明校验与求解。

package blockchain

import (
	"fmt"
	"math"
	"math/big"

	"github.com/sirupsen/logrus"

	"github.com/qinglongcn/btccore/chainhash"
	"github.com/qinglongcn/btccore/wire"
)

// CheckHashWork 检查哈希按小端整数解释后不大于 target，否则返回 ErrInsufficientWork。
func CheckHashWork(hash *chainhash.Hash, target *big.Int) error {
	hashNum := HashToBig(hash)
	if hashNum.Cmp(target) > 0 {
		str := fmt.Sprintf("block hash of %064x is higher than "+
			"expected max of %064x", hashNum, target)
		return ruleError(ErrInsufficientWork, str)
	}
	return nil
}

// CheckWork 计算80字节区块头的双 SHA256，检查其不大于难度位解码出的目标值。
func CheckWork(header *wire.BlockHeader) error {
	hash := header.BlockHash()
	return CheckHashWork(&hash, CompactToBig(header.Bits))
}

// CheckProofOfWork 在 CheckWork 之外还要求目标值为正且不超过 powLimit。
func CheckProofOfWork(header *wire.BlockHeader, powLimit *big.Int) error {
	// The target difficulty must be larger than zero.
	target := CompactToBig(header.Bits)
	if target.Sign() <= 0 {
		str := fmt.Sprintf("block target difficulty of %064x is too low",
			target)
		return ruleError(ErrUnexpectedDifficulty, str)
	}

	// The target difficulty must be less than the maximum allowed.
	if target.Cmp(powLimit) > 0 {
		str := fmt.Sprintf("block target difficulty of %064x is "+
			"higher than max of %064x", target, powLimit)
		return ruleError(ErrUnexpectedDifficulty, str)
	}

	hash := header.BlockHash()
	return CheckHashWork(&hash, target)
}

// ProofOfWork 表示对一个区块头求解工作量证明
type ProofOfWork struct {
	Header *wire.BlockHeader // 需要进行工作量证明的区块头
	Target *big.Int          // 由难度位解码出的目标值
}

// NewProofOfWork 创建一个新的工作量证明实例
func NewProofOfWork(header *wire.BlockHeader) *ProofOfWork {
	return &ProofOfWork{
		Header: header,
		Target: CompactToBig(header.Bits),
	}
}

// Run 从区块头当前的随机数开始递增，直到区块头哈希不大于目标值。
// 找到时把随机数写入区块头并返回 true；随机数空间耗尽时返回 false，区块头保持原样。
func (pow *ProofOfWork) Run() bool {
	header := *pow.Header
	for nonce := uint64(header.Nonce); nonce <= math.MaxUint32; nonce++ {
		header.Nonce = uint32(nonce)
		hash := header.BlockHash()
		if HashToBig(&hash).Cmp(pow.Target) <= 0 {
			logrus.Debugf("[ProofOfWork] 找到随机数 %d, 区块哈希 %v",
				header.Nonce, hash)
			pow.Header.Nonce = header.Nonce
			return true
		}
	}

	logrus.Warnf("[ProofOfWork] 随机数空间耗尽, 难度位 %08x", header.Bits)
	return false
}

// Validate 验证区块头的工作量证明是否有效
func (pow *ProofOfWork) Validate() bool {
	hash := pow.Header.BlockHash()
	return CheckHashWork(&hash, pow.Target) == nil
}
