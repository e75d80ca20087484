// 包含脚本验证用到的共识常量。

package txscript

const (
	// LockTimeThreshold 是锁定时间的分界：小于它的值是区块高度，否则是 Unix 时间戳。
	LockTimeThreshold = 5e8 // 1985-11-05 00:53:20 UTC

	// MaxSigOpsPerTx 是单个交易中允许的最大签名操作数。
	MaxSigOpsPerTx = 80000 / 4
)

// ConsensusVerifyFlags 是共识规则要求的脚本标志，StandardVerifyFlags 在此基础上增加了策略检查。
const ConsensusVerifyFlags = ScriptBip16 |
	ScriptVerifyDERSignatures |
	ScriptVerifyCheckLockTimeVerify |
	ScriptVerifyCheckSequenceVerify |
	ScriptVerifyWitness
