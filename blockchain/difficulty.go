// 包含难度位与目标值之间的转换以及难度调整。

package blockchain

import (
	"math/big"
	"time"

	"github.com/qinglongcn/btccore/chaincfg"
	"github.com/qinglongcn/btccore/chainhash"
)

var (
	// bigOne is 1 represented as a big.Int.
	bigOne = big.NewInt(1)

	// oneLsh256 is 1 shifted left 256 bits.
	oneLsh256 = new(big.Int).Lsh(bigOne, 256)

	// targetTimespan 是主网一个难度周期的期望时长，单位为秒。
	targetTimespan = int64(chaincfg.MainNetParams.TargetTimespan / time.Second)
)

// HashToBig 将哈希按小端整数解释为 big.Int。
func HashToBig(hash *chainhash.Hash) *big.Int {
	// A Hash is in little-endian, but the big package wants the bytes in
	// big-endian, so reverse them.
	buf := *hash
	blen := len(buf)
	for i := 0; i < blen/2; i++ {
		buf[i], buf[blen-1-i] = buf[blen-1-i], buf[i]
	}

	return new(big.Int).SetBytes(buf[:])
}

// CompactToBig 将紧凑格式的难度位解码为目标值。
//
// 紧凑格式类似浮点数：最高字节是以字节计的指数，低 23 位是尾数，第 24 位是符号位。
// 目标值等于 尾数 * 256^(指数-3)。
//
//	-------------------------------------------------
//	|   Exponent     |    Sign    |    Mantissa     |
//	-------------------------------------------------
//	| 8 bits [31-24] | 1 bit [23] | 23 bits [22-00] |
//	-------------------------------------------------
func CompactToBig(compact uint32) *big.Int {
	mantissa := compact & 0x007fffff
	isNegative := compact&0x00800000 != 0
	exponent := uint(compact >> 24)

	var bn *big.Int
	if exponent <= 3 {
		mantissa >>= 8 * (3 - exponent)
		bn = big.NewInt(int64(mantissa))
	} else {
		bn = big.NewInt(int64(mantissa))
		bn.Lsh(bn, 8*(exponent-3))
	}

	if isNegative {
		bn = bn.Neg(bn)
	}

	return bn
}

// BigToCompact 将目标值编码为紧凑格式，低位精度会丢失。
func BigToCompact(n *big.Int) uint32 {
	if n.Sign() == 0 {
		return 0
	}

	// The exponent is the number of bytes in the absolute value; the
	// mantissa is its top three bytes.
	var mantissa uint32
	exponent := uint(len(n.Bytes()))
	if exponent <= 3 {
		mantissa = uint32(n.Bits()[0])
		mantissa <<= 8 * (3 - exponent)
	} else {
		tn := new(big.Int).Abs(n)
		mantissa = uint32(tn.Rsh(tn, 8*(exponent-3)).Bits()[0])
	}

	// Bit 23 is the sign bit, so move a set top bit into the exponent.
	if mantissa&0x00800000 != 0 {
		mantissa >>= 8
		exponent++
	}

	compact := uint32(exponent<<24) | mantissa
	if n.Sign() < 0 {
		compact |= 0x00800000
	}
	return compact
}

// CalcWork 返回满足难度位所需的期望哈希次数：2^256 / (target+1)。
// 目标值不为正时返回 0。
func CalcWork(bits uint32) *big.Int {
	difficultyNum := CompactToBig(bits)
	if difficultyNum.Sign() <= 0 {
		return big.NewInt(0)
	}

	denominator := new(big.Int).Add(difficultyNum, bigOne)
	return new(big.Int).Div(oneLsh256, denominator)
}

// calcNextTarget 以 powLimit 为上限计算下一周期的目标值。
func calcNextTarget(epochStart, epochEnd int64, prevTarget *big.Int,
	timespan, adjustmentFactor int64, powLimit *big.Int) *big.Int {

	minRetargetTimespan := timespan / adjustmentFactor
	maxRetargetTimespan := timespan * adjustmentFactor

	adjustedTimespan := epochEnd - epochStart
	if adjustedTimespan < minRetargetTimespan {
		adjustedTimespan = minRetargetTimespan
	} else if adjustedTimespan > maxRetargetTimespan {
		adjustedTimespan = maxRetargetTimespan
	}

	// new = prev * actual / expected
	newTarget := new(big.Int).Mul(prevTarget, big.NewInt(adjustedTimespan))
	newTarget.Div(newTarget, big.NewInt(timespan))

	if newTarget.Cmp(powLimit) > 0 {
		newTarget.Set(powLimit)
	}
	return newTarget
}

// CalcNextTarget 按主网规则计算新难度周期的目标值。
//
// epochStart 与 epochEnd 是上一周期第一个和最后一个区块的时间戳（Unix 秒）。
// 实际用时被限制在期望时长的 1/4 到 4 倍之间，新目标值为 prevTarget 乘以实际用时与期望时长之比，
// 并且不超过主网的工作量证明上限。
func CalcNextTarget(epochStart, epochEnd int64, prevTarget *big.Int) *big.Int {
	return calcNextTarget(epochStart, epochEnd, prevTarget, targetTimespan,
		chaincfg.MainNetParams.RetargetAdjustmentFactor,
		chaincfg.MainNetParams.PowLimit)
}

// CalcNextRequiredDifficulty 按 params 的规则计算新周期的难度位。
// 不做难度调整的网络直接返回 prevBits。
func CalcNextRequiredDifficulty(epochStart, epochEnd int64, prevBits uint32,
	params *chaincfg.Params) uint32 {

	if params.PoWNoRetargeting {
		return prevBits
	}

	timespan := int64(params.TargetTimespan / time.Second)
	newTarget := calcNextTarget(epochStart, epochEnd, CompactToBig(prevBits),
		timespan, params.RetargetAdjustmentFactor, params.PowLimit)

	// Rounding through the compact form is part of the consensus rules.
	return BigToCompact(newTarget)
}
