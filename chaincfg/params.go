// 定义比特币各网络的不可变参数：地址前缀、工作量证明上限与难度调整常量。
package chaincfg

import (
	"errors"
	"math/big"
	"time"

	"github.com/qinglongcn/btccore/chainhash"
	"github.com/qinglongcn/btccore/wire"
)

// These variables are the chain proof-of-work limit parameters for each default
// network.
var (
	// bigOne is 1 represented as a big.Int.  It is defined here to avoid
	// the overhead of creating it multiple times.
	bigOne = big.NewInt(1)

	// mainPowLimit is the highest proof of work value a Bitcoin block can
	// have for the main network.  It is the value 2^224 - 1.
	mainPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 224), bigOne)

	// regressionPowLimit is the highest proof of work value a Bitcoin block
	// can have for the regression test network.  It is the value 2^255 - 1.
	regressionPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 255), bigOne)
)

// Params 描述一个比特币网络。
type Params struct {
	// Name 是网络名称。
	Name string

	// Net 是网络的魔数。
	Net uint32

	// GenesisBlock 是创世区块。
	GenesisBlock *wire.MsgBlock

	// GenesisHash 是创世区块哈希。
	GenesisHash *chainhash.Hash

	// PowLimit defines the highest allowed proof of work value for a block
	// as a uint256.
	PowLimit *big.Int

	// PowLimitBits defines the highest allowed proof of work value for a
	// block in compact form.
	PowLimitBits uint32

	// TargetTimespan is the desired amount of time that should elapse
	// before the block difficulty requirement is examined to determine how
	// it should be changed in order to maintain the desired block
	// generation rate.
	TargetTimespan time.Duration

	// TargetTimePerBlock is the desired amount of time to generate each
	// block.
	TargetTimePerBlock time.Duration

	// RetargetAdjustmentFactor is the adjustment factor used to limit
	// the minimum and maximum amount of adjustment that can occur between
	// difficulty retargets.
	RetargetAdjustmentFactor int64

	// ReduceMinDifficulty defines whether the network should reduce the
	// minimum required difficulty after a long enough period of time has
	// passed without finding a block.
	ReduceMinDifficulty bool

	// PoWNoRetargeting defines whether the network has difficulty
	// retargeting enabled or not.
	PoWNoRetargeting bool

	// Human-readable part for Bech32 encoded segwit addresses.
	Bech32HRPSegwit string

	// Address encoding magics
	PubKeyHashAddrID byte // First byte of a P2PKH address
	ScriptHashAddrID byte // First byte of a P2SH address
	PrivateKeyID     byte // First byte of a WIF private key
}

// BlocksPerRetarget 返回两次难度调整之间的区块数。
func (p *Params) BlocksPerRetarget() int64 {
	return int64(p.TargetTimespan / p.TargetTimePerBlock)
}

// MainNetParams defines the network parameters for the main Bitcoin network.
var MainNetParams = Params{
	Name:         "mainnet",
	Net:          0xd9b4bef9,
	GenesisBlock: &genesisBlock,
	GenesisHash:  &genesisHash,

	PowLimit:                 mainPowLimit,
	PowLimitBits:             0x1d00ffff,
	TargetTimespan:           time.Hour * 24 * 14, // 14 days
	TargetTimePerBlock:       time.Minute * 10,    // 10 minutes
	RetargetAdjustmentFactor: 4,                   // 25% less, 400% more
	ReduceMinDifficulty:      false,
	PoWNoRetargeting:         false,

	Bech32HRPSegwit:  "bc", // always bc for main net
	PubKeyHashAddrID: 0x00, // starts with 1
	ScriptHashAddrID: 0x05, // starts with 3
	PrivateKeyID:     0x80, // starts with 5 (uncompressed) or K (compressed)
}

// TestNet3Params defines the network parameters for the test Bitcoin network
// (version 3).
var TestNet3Params = Params{
	Name:         "testnet3",
	Net:          0x0709110b,
	GenesisBlock: &testNet3GenesisBlock,
	GenesisHash:  &testNet3GenesisHash,

	PowLimit:                 mainPowLimit,
	PowLimitBits:             0x1d00ffff,
	TargetTimespan:           time.Hour * 24 * 14,
	TargetTimePerBlock:       time.Minute * 10,
	RetargetAdjustmentFactor: 4,
	ReduceMinDifficulty:      true,
	PoWNoRetargeting:         false,

	Bech32HRPSegwit:  "tb", // always tb for test net
	PubKeyHashAddrID: 0x6f, // starts with m or n
	ScriptHashAddrID: 0xc4, // starts with 2
	PrivateKeyID:     0xef, // starts with 9 (uncompressed) or c (compressed)
}

// RegressionNetParams defines the network parameters for the regression test
// Bitcoin network.
var RegressionNetParams = Params{
	Name:         "regtest",
	Net:          0xdab5bffa,
	GenesisBlock: &regTestGenesisBlock,
	GenesisHash:  &regTestGenesisHash,

	PowLimit:                 regressionPowLimit,
	PowLimitBits:             0x207fffff,
	TargetTimespan:           time.Hour * 24 * 14,
	TargetTimePerBlock:       time.Minute * 10,
	RetargetAdjustmentFactor: 4,
	ReduceMinDifficulty:      true,
	PoWNoRetargeting:         true,

	Bech32HRPSegwit:  "bcrt", // always bcrt for reg test net
	PubKeyHashAddrID: 0x6f,
	ScriptHashAddrID: 0xc4,
	PrivateKeyID:     0xef,
}

// ErrUnknownNet describes an error where the requested network name is not
// one of the known networks.
var ErrUnknownNet = errors.New("unknown bitcoin network")

// ParamsForNet 按名称返回网络参数。
func ParamsForNet(name string) (*Params, error) {
	switch name {
	case MainNetParams.Name:
		return &MainNetParams, nil
	case TestNet3Params.Name, "testnet":
		return &TestNet3Params, nil
	case RegressionNetParams.Name:
		return &RegressionNetParams, nil
	}
	return nil, ErrUnknownNet
}
