// 包含脚本执行引擎的核心代码，负责处理脚本的解析和执行。

package txscript

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/qinglongcn/btccore/chainhash"
	"github.com/qinglongcn/btccore/ecc"
	"github.com/qinglongcn/btccore/wire"
)

// ScriptFlags 是一个位掩码，定义执行脚本时附加的检查。
type ScriptFlags uint32

const (
	// ScriptBip16 启用 BIP16 支付到脚本哈希的完整验证。
	ScriptBip16 ScriptFlags = 1 << iota

	// ScriptStrictMultiSig 要求 CHECKMULTISIG 额外弹出的元素为空。
	ScriptStrictMultiSig

	// ScriptDiscourageUpgradableNops 使保留给软分叉的 NOP 执行失败。
	// 这只是标准性检查，不得用于共识。
	ScriptDiscourageUpgradableNops

	// ScriptVerifyCheckLockTimeVerify 启用 BIP65 的 OP_CHECKLOCKTIMEVERIFY。
	ScriptVerifyCheckLockTimeVerify

	// ScriptVerifyCheckSequenceVerify 启用 BIP112 的 OP_CHECKSEQUENCEVERIFY。
	ScriptVerifyCheckSequenceVerify

	// ScriptVerifyCleanStack 要求执行结束后栈中恰好剩一个元素（BIP62 规则 6）。
	// 必须与 ScriptBip16 或 ScriptVerifyWitness 一起使用。
	ScriptVerifyCleanStack

	// ScriptVerifyDERSignatures 要求签名为严格 DER 编码（BIP66）。
	ScriptVerifyDERSignatures

	// ScriptVerifyLowS 要求签名的 S 不大于曲线阶的一半（BIP62 规则 5）。
	ScriptVerifyLowS

	// ScriptVerifyMinimalData 要求数据推送与数字使用最短编码（BIP62 规则 3、4）。
	ScriptVerifyMinimalData

	// ScriptVerifyNullFail 要求签名校验失败时签名为空。
	ScriptVerifyNullFail

	// ScriptVerifySigPushOnly 要求解锁脚本只包含数据推送（BIP62 规则 2）。
	ScriptVerifySigPushOnly

	// ScriptVerifyStrictEncoding 要求签名、哈希类型与公钥严格编码。
	ScriptVerifyStrictEncoding

	// ScriptVerifyWitness 启用隔离见证程序的验证。
	ScriptVerifyWitness

	// ScriptVerifyDiscourageUpgradeableWitnessProgram 使花费未知版本见证程序的交易非标准。
	ScriptVerifyDiscourageUpgradeableWitnessProgram

	// ScriptVerifyMinimalIf 要求见证脚本中 OP_IF/OP_NOTIF 的操作数为空或 0x01。
	ScriptVerifyMinimalIf

	// ScriptVerifyWitnessPubKeyType 要求见证脚本中的公钥为压缩格式。
	ScriptVerifyWitnessPubKeyType
)

const (
	// MaxStackSize 是主栈与备用栈元素个数之和的上限。
	MaxStackSize = 1000

	// MaxScriptSize 是单个脚本的最大字节数。
	MaxScriptSize = 10000

	// payToWitnessPubKeyHashDataSize 是 P2WPKH 见证程序的长度。
	payToWitnessPubKeyHashDataSize = 20

	// payToWitnessScriptHashDataSize 是 P2WSH 见证程序的长度。
	payToWitnessScriptHashDataSize = 32
)

// SigHashContext 是签名检查所需的交易上下文：被花费的交易、输入索引以及该输入花费的金额。
// 版本 0 见证输入的签名哈希需要金额；InputAmount 为 0 且 PrevOutFetcher 不为空时，
// 金额从 PrevOutFetcher 查询。HashCache 为空时按需计算。
type SigHashContext struct {
	Tx             *wire.MsgTx
	InputIndex     int
	InputAmount    int64
	PrevOutFetcher PrevOutputFetcher
	HashCache      *TxSigHashes
}

// NewSigHashContext 创建交易第 idx 个输入的上下文，金额从 fetcher 查询。
func NewSigHashContext(tx *wire.MsgTx, idx int, fetcher PrevOutputFetcher) *SigHashContext {
	ctx := &SigHashContext{
		Tx:             tx,
		InputIndex:     idx,
		PrevOutFetcher: fetcher,
	}
	ctx.InputAmount = ctx.amount()
	return ctx
}

// amount 返回被花费输出的金额。
func (c *SigHashContext) amount() int64 {
	if c.InputAmount != 0 || c.PrevOutFetcher == nil {
		return c.InputAmount
	}
	if c.InputIndex < 0 || c.InputIndex >= len(c.Tx.TxIn) {
		return 0
	}

	prevOut := c.PrevOutFetcher.FetchPrevOutput(
		c.Tx.TxIn[c.InputIndex].PreviousOutPoint)
	if prevOut == nil {
		return 0
	}
	return prevOut.Value
}

// Engine 是执行脚本的虚拟机。
type Engine struct {
	// 以下字段在创建引擎时设置，之后不再改变。
	//
	// tx 与 txIdx 来自 SigHashContext，没有上下文时 tx 为 nil，
	// 此时依赖交易的操作码返回 ErrNoTxContext。
	//
	// bip16 表示锁定脚本是 P2SH 形式，需要执行赎回脚本。
	//
	// sigHashes 是 BIP143 的中间摘要，首次需要时计算。
	flags       ScriptFlags
	tx          *wire.MsgTx
	txIdx       int
	inputAmount int64
	witness     wire.TxWitness
	bip16       bool
	sigCache    *SigCache
	sigHashes   *TxSigHashes

	// 以下字段是执行状态。
	//
	// scripts 依次是解锁脚本、锁定脚本，以及随后追加的赎回脚本或见证脚本。
	// scriptIdx 与 tokenizer 共同构成程序计数器，opcodeIdx 只用于反汇编。
	//
	// lastCodeSep 是当前脚本中最后一个 OP_CODESEPARATOR 之后的字节偏移。
	//
	// savedFirstStack 保存解锁脚本执行后的栈，用于 P2SH 赎回脚本。
	//
	// condStack 记录嵌套条件的状态，numOps 记录当前脚本中非推送操作码的个数。
	scripts         [][]byte
	scriptIdx       int
	opcodeIdx       int
	lastCodeSep     int
	tokenizer       ScriptTokenizer
	savedFirstStack [][]byte
	dstack          stack
	astack          stack
	condStack       []int
	numOps          int
	witnessVersion  int
	witnessProgram  []byte
}

// hasFlag 返回引擎是否设置了该标志。
func (vm *Engine) hasFlag(flag ScriptFlags) bool {
	return vm.flags&flag == flag
}

// isBranchExecuting 返回当前条件分支是否在执行。
func (vm *Engine) isBranchExecuting() bool {
	if len(vm.condStack) == 0 {
		return true
	}
	return vm.condStack[len(vm.condStack)-1] == OpCondTrue
}

// isOpcodeDisabled 返回操作码是否已禁用。禁用的操作码即使位于未执行的分支中也会失败。
func isOpcodeDisabled(opcode byte) bool {
	switch opcode {
	case OP_CAT, OP_SUBSTR, OP_LEFT, OP_RIGHT, OP_INVERT, OP_AND, OP_OR,
		OP_XOR, OP_2MUL, OP_2DIV, OP_MUL, OP_DIV, OP_MOD, OP_LSHIFT,
		OP_RSHIFT:
		return true
	}
	return false
}

// isOpcodeAlwaysIllegal 返回操作码是否在任何分支中都非法。
func isOpcodeAlwaysIllegal(opcode byte) bool {
	return opcode == OP_VERIF || opcode == OP_VERNOTIF
}

// isOpcodeConditional 返回操作码是否会修改条件栈。
func isOpcodeConditional(opcode byte) bool {
	switch opcode {
	case OP_IF, OP_NOTIF, OP_ELSE, OP_ENDIF:
		return true
	}
	return false
}

// checkMinimalDataPush 检查推送 data 时是否使用了最短的操作码。
func checkMinimalDataPush(op *opcode, data []byte) error {
	opcodeVal := op.value
	dataLen := len(data)
	switch {
	case dataLen == 0 && opcodeVal != OP_0:
		str := fmt.Sprintf("zero length data push is encoded with opcode %s "+
			"instead of OP_0", op.name)
		return scriptError(ErrMinimalData, str)
	case dataLen == 1 && data[0] >= 1 && data[0] <= 16:
		if opcodeVal != OP_1+data[0]-1 {
			str := fmt.Sprintf("data push of the value %d encoded with opcode "+
				"%s instead of OP_%d", data[0], op.name, data[0])
			return scriptError(ErrMinimalData, str)
		}
	case dataLen == 1 && data[0] == 0x81:
		if opcodeVal != OP_1NEGATE {
			str := fmt.Sprintf("data push of the value -1 encoded with opcode "+
				"%s instead of OP_1NEGATE", op.name)
			return scriptError(ErrMinimalData, str)
		}
	case dataLen <= 75:
		if int(opcodeVal) != dataLen {
			str := fmt.Sprintf("data push of %d bytes encoded with opcode %s "+
				"instead of OP_DATA_%d", dataLen, op.name, dataLen)
			return scriptError(ErrMinimalData, str)
		}
	case dataLen <= 255:
		if opcodeVal != OP_PUSHDATA1 {
			str := fmt.Sprintf("data push of %d bytes encoded with opcode %s "+
				"instead of OP_PUSHDATA1", dataLen, op.name)
			return scriptError(ErrMinimalData, str)
		}
	case dataLen <= 65535:
		if opcodeVal != OP_PUSHDATA2 {
			str := fmt.Sprintf("data push of %d bytes encoded with opcode %s "+
				"instead of OP_PUSHDATA2", dataLen, op.name)
			return scriptError(ErrMinimalData, str)
		}
	}
	return nil
}

// executeOpcode 执行一个操作码。未执行分支中的操作码也要经过禁用、非法与计数检查。
func (vm *Engine) executeOpcode(op *opcode, data []byte) error {
	if isOpcodeDisabled(op.value) {
		str := fmt.Sprintf("attempt to execute disabled opcode %s", op.name)
		return scriptError(ErrInvalidScript, str)
	}

	if isOpcodeAlwaysIllegal(op.value) {
		str := fmt.Sprintf("attempt to execute reserved opcode %s", op.name)
		return scriptError(ErrInvalidScript, str)
	}

	// OP_RESERVED counts as a push here.
	if op.value > OP_16 {
		vm.numOps++
		if vm.numOps > MaxOpsPerScript {
			str := fmt.Sprintf("exceeded max operation limit of %d",
				MaxOpsPerScript)
			return scriptError(ErrTooManyOperations, str)
		}
	} else if len(data) > MaxScriptElementSize {
		str := fmt.Sprintf("element size %d exceeds max allowed size %d",
			len(data), MaxScriptElementSize)
		return scriptError(ErrElementTooBig, str)
	}

	if !vm.isBranchExecuting() && !isOpcodeConditional(op.value) {
		return nil
	}

	if vm.dstack.verifyMinimalData && vm.isBranchExecuting() &&
		op.value <= OP_PUSHDATA4 {

		if err := checkMinimalDataPush(op, data); err != nil {
			return err
		}
	}

	return op.opfunc(op, data, vm)
}

// checkValidPC 在程序计数器越过所有脚本时返回错误。
func (vm *Engine) checkValidPC() error {
	if vm.scriptIdx >= len(vm.scripts) {
		str := fmt.Sprintf("program counter beyond input scripts (script idx "+
			"%d, total scripts %d)", vm.scriptIdx, len(vm.scripts))
		return scriptError(ErrInvalidProgramCounter, str)
	}
	return nil
}

// isWitnessVersionActive 返回是否正在执行指定版本的见证程序。
func (vm *Engine) isWitnessVersionActive(version uint) bool {
	return vm.witnessProgram != nil && uint(vm.witnessVersion) == version
}

// verifyWitnessProgram 根据见证程序追加要执行的脚本，并以见证栈作为其初始栈。
func (vm *Engine) verifyWitnessProgram(witness wire.TxWitness) error {
	if !vm.isWitnessVersionActive(0) {
		if vm.hasFlag(ScriptVerifyDiscourageUpgradeableWitnessProgram) {
			str := fmt.Sprintf("new witness program versions "+
				"invalid: %v", vm.witnessVersion)
			return scriptError(ErrDiscourageUpgradableWitnessProgram, str)
		}

		// Unknown witness versions leave the locking script's own result
		// to decide. Like any witness spend the stack is then cut down to
		// its bottom item so the clean stack rule does not apply.
		vm.witnessProgram = nil
		top, err := vm.dstack.PeekBool(0)
		if err != nil {
			return err
		}
		if !top {
			return scriptError(ErrEvalFalse,
				"false stack entry at end of script execution")
		}
		vm.SetStack(vm.GetStack()[:1])
		return nil
	}

	switch len(vm.witnessProgram) {
	case payToWitnessPubKeyHashDataSize:
		if len(witness) != 2 {
			str := fmt.Sprintf("should have exactly two items in "+
				"witness, instead have %v", len(witness))
			return scriptError(ErrWitnessProgramMismatch, str)
		}

		pkScript, err := payToPubKeyHashScript(vm.witnessProgram)
		if err != nil {
			return err
		}
		vm.scripts = append(vm.scripts, pkScript)
		vm.SetStack(witness)

	case payToWitnessScriptHashDataSize:
		if len(witness) == 0 {
			return scriptError(ErrWitnessProgramEmpty, "witness "+
				"program empty passed empty witness")
		}

		witnessScript := witness[len(witness)-1]
		if len(witnessScript) > MaxScriptSize {
			str := fmt.Sprintf("witnessScript size %d is larger than "+
				"max allowed size %d", len(witnessScript), MaxScriptSize)
			return scriptError(ErrScriptTooBig, str)
		}

		witnessHash := sha256.Sum256(witnessScript)
		if !bytes.Equal(witnessHash[:], vm.witnessProgram) {
			return scriptError(ErrWitnessProgramMismatch,
				"witness program hash mismatch")
		}

		if err := checkScriptParses(witnessScript); err != nil {
			return err
		}
		vm.scripts = append(vm.scripts, witnessScript)
		vm.SetStack(witness[:len(witness)-1])

	default:
		str := fmt.Sprintf("length of witness program must either be "+
			"%v or %v bytes, instead is %v bytes",
			payToWitnessPubKeyHashDataSize,
			payToWitnessScriptHashDataSize,
			len(vm.witnessProgram))
		return scriptError(ErrWitnessProgramWrongLength, str)
	}

	// Witness stack elements obey the same size limit as pushes.
	for i, witElement := range vm.GetStack() {
		if len(witElement) > MaxScriptElementSize {
			str := fmt.Sprintf("element %d size %d exceeds max allowed "+
				"size %d", i, len(witElement), MaxScriptElementSize)
			return scriptError(ErrElementTooBig, str)
		}
	}

	return nil
}

// DisasmPC 返回下一次 Step 将要执行的操作码的反汇编。
func (vm *Engine) DisasmPC() (string, error) {
	if err := vm.checkValidPC(); err != nil {
		return "", err
	}

	peekTokenizer := vm.tokenizer
	if !peekTokenizer.Next() {
		if err := peekTokenizer.Err(); err != nil {
			return "", err
		}

		str := fmt.Sprintf("program counter beyond script index %d (bytes %x)",
			vm.scriptIdx, vm.scripts[vm.scriptIdx])
		return "", scriptError(ErrInvalidProgramCounter, str)
	}

	var buf strings.Builder
	disasmOpcode(&buf, peekTokenizer.op, peekTokenizer.Data(), false)
	return fmt.Sprintf("%02x:%04x: %s", vm.scriptIdx, vm.opcodeIdx,
		buf.String()), nil
}

// DisasmScript 返回第 idx 个脚本的反汇编。0 是解锁脚本，1 是锁定脚本，
// 2 及以后是执行过程中追加的赎回脚本或见证脚本。
func (vm *Engine) DisasmScript(idx int) (string, error) {
	if idx >= len(vm.scripts) {
		str := fmt.Sprintf("script index %d >= total scripts %d", idx,
			len(vm.scripts))
		return "", scriptError(ErrInvalidIndex, str)
	}

	var disbuf strings.Builder
	tokenizer := MakeScriptTokenizer(vm.scripts[idx])
	var opcodeIdx int
	for tokenizer.Next() {
		disbuf.WriteString(fmt.Sprintf("%02x:%04x: ", idx, opcodeIdx))
		disasmOpcode(&disbuf, tokenizer.op, tokenizer.Data(), false)
		disbuf.WriteByte('\n')
		opcodeIdx++
	}
	return disbuf.String(), tokenizer.Err()
}

// CheckErrorCondition 在所有脚本执行完毕且栈顶为真时返回 nil。
// finalScript 为真时还会检查干净栈要求。
func (vm *Engine) CheckErrorCondition(finalScript bool) error {
	if vm.scriptIdx < len(vm.scripts) {
		return scriptError(ErrScriptUnfinished,
			"error check when script unfinished")
	}

	// Version 0 witness programs always require a clean stack.
	if finalScript && vm.isWitnessVersionActive(0) && vm.dstack.Depth() != 1 {
		return scriptError(ErrEvalFalse, "witness program must "+
			"have clean stack")
	}

	if finalScript && vm.hasFlag(ScriptVerifyCleanStack) &&
		vm.dstack.Depth() != 1 {

		str := fmt.Sprintf("stack must contain exactly one item (contains %d)",
			vm.dstack.Depth())
		return scriptError(ErrCleanStack, str)
	} else if vm.dstack.Depth() < 1 {
		return scriptError(ErrEmptyStack,
			"stack empty at end of script execution")
	}

	v, err := vm.dstack.PopBool()
	if err != nil {
		return err
	}
	if !v {
		logrus.Tracef("%v", newLogClosure(func() string {
			var buf strings.Builder
			buf.WriteString("scripts failed:\n")
			for i := range vm.scripts {
				dis, _ := vm.DisasmScript(i)
				buf.WriteString(fmt.Sprintf("script%d:\n", i))
				buf.WriteString(dis)
			}
			return buf.String()
		}))
		return scriptError(ErrEvalFalse,
			"false stack entry at end of script execution")
	}
	return nil
}

// Step 执行一个操作码并推进程序计数器，当前脚本结束时切换到下一个脚本。
// 全部脚本执行完毕时 done 为 true。返回错误后引擎的状态未定义。
func (vm *Engine) Step() (done bool, err error) {
	if err := vm.checkValidPC(); err != nil {
		return true, err
	}

	if !vm.tokenizer.Next() {
		// Scripts are checked to parse before execution, so this is only
		// reachable through a bug.
		if err := vm.tokenizer.Err(); err != nil {
			return false, err
		}

		str := fmt.Sprintf("attempt to step beyond script index %d (bytes %x)",
			vm.scriptIdx, vm.scripts[vm.scriptIdx])
		return true, scriptError(ErrInvalidProgramCounter, str)
	}

	err = vm.executeOpcode(vm.tokenizer.op, vm.tokenizer.Data())
	if err != nil {
		return true, err
	}

	combinedStackSize := vm.dstack.Depth() + vm.astack.Depth()
	if combinedStackSize > MaxStackSize {
		str := fmt.Sprintf("combined stack size %d > max allowed %d",
			combinedStackSize, MaxStackSize)
		return false, scriptError(ErrStackOverflow, str)
	}

	vm.opcodeIdx++
	if !vm.tokenizer.Done() {
		return false, nil
	}

	// A conditional may not straddle two scripts.
	if len(vm.condStack) != 0 {
		return false, scriptError(ErrUnbalancedConditional,
			"end of script reached in conditional execution")
	}

	// The alt stack and the operation count are per script.
	_ = vm.astack.DropN(vm.astack.Depth())
	vm.numOps = 0
	vm.opcodeIdx = 0

	switch {
	case vm.scriptIdx == 0 && vm.bip16:
		vm.scriptIdx++
		vm.savedFirstStack = vm.GetStack()

	case vm.scriptIdx == 1 && vm.bip16:
		// Past the end for CheckErrorCondition.
		vm.scriptIdx++

		if err := vm.CheckErrorCondition(false); err != nil {
			return false, err
		}

		// The redeem script is the last push of the unlocking script.
		script := vm.savedFirstStack[len(vm.savedFirstStack)-1]
		if err := checkScriptParses(script); err != nil {
			return false, err
		}
		vm.scripts = append(vm.scripts, script)
		vm.SetStack(vm.savedFirstStack[:len(vm.savedFirstStack)-1])

	case vm.scriptIdx == 1 && vm.witnessProgram != nil,
		vm.scriptIdx == 2 && vm.witnessProgram != nil && vm.bip16:

		vm.scriptIdx++
		if err := vm.verifyWitnessProgram(vm.witness); err != nil {
			return false, err
		}

	default:
		vm.scriptIdx++
	}

	// Skip empty scripts.
	if vm.scriptIdx < len(vm.scripts) && len(vm.scripts[vm.scriptIdx]) == 0 {
		vm.scriptIdx++
	}

	vm.lastCodeSep = 0
	if vm.scriptIdx >= len(vm.scripts) {
		return true, nil
	}

	vm.tokenizer = MakeScriptTokenizer(vm.scripts[vm.scriptIdx])
	return false, nil
}

// Execute 执行全部脚本，验证成功时返回 nil。
func (vm *Engine) Execute() (err error) {
	done := false
	for !done {
		logrus.Tracef("%v", newLogClosure(func() string {
			dis, err := vm.DisasmPC()
			if err != nil {
				return fmt.Sprintf("stepping - failed to disasm pc: %v", err)
			}
			return fmt.Sprintf("stepping %v", dis)
		}))

		done, err = vm.Step()
		if err != nil {
			return err
		}

		logrus.Tracef("%v", newLogClosure(func() string {
			var dstr, astr string
			if vm.dstack.Depth() != 0 {
				dstr = "Stack:\n" + vm.dstack.String()
			}
			if vm.astack.Depth() != 0 {
				astr = "AltStack:\n" + vm.astack.String()
			}
			return dstr + astr
		}))
	}

	return vm.CheckErrorCondition(true)
}

// subScript 返回当前脚本中最后一个 OP_CODESEPARATOR 之后的部分。
func (vm *Engine) subScript() []byte {
	return vm.scripts[vm.scriptIdx][vm.lastCodeSep:]
}

// txInput 返回正在花费的交易与输入，没有交易上下文时返回 ErrNoTxContext。
func (vm *Engine) txInput(op *opcode) (*wire.MsgTx, *wire.TxIn, error) {
	if vm.tx == nil {
		str := fmt.Sprintf("opcode %s requires a transaction context",
			op.name)
		return nil, nil, scriptError(ErrNoTxContext, str)
	}
	return vm.tx, vm.tx.TxIn[vm.txIdx], nil
}

// calcSigHash 计算当前输入的签名哈希。版本 0 见证程序使用 BIP143，其余使用传统算法。
func (vm *Engine) calcSigHash(op *opcode, script []byte, hashType SigHashType) ([]byte, error) {
	tx, _, err := vm.txInput(op)
	if err != nil {
		return nil, err
	}

	if vm.isWitnessVersionActive(0) {
		if vm.sigHashes == nil {
			vm.sigHashes = NewTxSigHashes(tx)
		}
		return calcWitnessSignatureHash(script, vm.sigHashes, hashType, tx,
			vm.txIdx, vm.inputAmount), nil
	}

	return calcSignatureHash(script, hashType, tx, vm.txIdx), nil
}

// checkHashTypeEncoding 在 ScriptVerifyStrictEncoding 下检查签名哈希类型。
func (vm *Engine) checkHashTypeEncoding(hashType SigHashType) error {
	if !vm.hasFlag(ScriptVerifyStrictEncoding) {
		return nil
	}

	sigHashType := hashType & ^SigHashAnyOneCanPay
	if sigHashType < SigHashAll || sigHashType > SigHashSingle {
		str := fmt.Sprintf("invalid hash type 0x%x", hashType)
		return scriptError(ErrInvalidSigHashType, str)
	}
	return nil
}

// isStrictPubKeyEncoding 返回公钥是否为 33 字节压缩或 65 字节非压缩格式。
func isStrictPubKeyEncoding(pubKey []byte) bool {
	if len(pubKey) == 33 && (pubKey[0] == 0x02 || pubKey[0] == 0x03) {
		return true
	}
	return len(pubKey) == 65 && pubKey[0] == 0x04
}

// checkPubKeyEncoding 按标志检查公钥编码。
func (vm *Engine) checkPubKeyEncoding(pubKey []byte) error {
	if vm.hasFlag(ScriptVerifyWitnessPubKeyType) &&
		vm.isWitnessVersionActive(0) && !ecc.IsCompressedPubKey(pubKey) {

		str := "only compressed keys are accepted post-segwit"
		return scriptError(ErrWitnessPubKeyType, str)
	}

	if !vm.hasFlag(ScriptVerifyStrictEncoding) {
		return nil
	}

	if isStrictPubKeyEncoding(pubKey) {
		return nil
	}
	return scriptError(ErrPubKeyType, "unsupported public key type")
}

// checkSignatureEncoding 按标志检查签名（不含哈希类型字节）的编码。
func (vm *Engine) checkSignatureEncoding(sig []byte) error {
	if !vm.hasFlag(ScriptVerifyDERSignatures) &&
		!vm.hasFlag(ScriptVerifyLowS) &&
		!vm.hasFlag(ScriptVerifyStrictEncoding) {

		return nil
	}

	parsed, err := ecc.ParseDERSignature(sig)
	if err != nil {
		str := fmt.Sprintf("malformed signature: %v", err)
		return scriptError(ErrSigInvalidEncoding, str)
	}

	if vm.hasFlag(ScriptVerifyLowS) && !parsed.IsLowS() {
		str := "signature is not canonical due to unnecessarily high S value"
		return scriptError(ErrSigHighS, str)
	}

	return nil
}

// parseSignature 按标志以严格或宽松的 DER 规则解析签名。
func (vm *Engine) parseSignature(sig []byte) (*ecc.Signature, error) {
	if vm.hasFlag(ScriptVerifyStrictEncoding) ||
		vm.hasFlag(ScriptVerifyDERSignatures) {

		return ecc.ParseDERSignature(sig)
	}
	return ecc.ParseSignature(sig)
}

// verifySignature 解析签名与公钥并校验，任一无法解析都视为校验失败。
func (vm *Engine) verifySignature(sigHash, sigBytes, pkBytes []byte) bool {
	pubKey, err := ecc.ParsePubKey(pkBytes)
	if err != nil {
		return false
	}

	sig, err := vm.parseSignature(sigBytes)
	if err != nil {
		return false
	}

	return vm.verifyParsedSignature(sigHash, sig, sigBytes, pubKey, pkBytes)
}

// verifyParsedSignature 校验签名，设置了签名缓存时先查缓存，校验通过后写入缓存。
func (vm *Engine) verifyParsedSignature(sigHash []byte, sig *ecc.Signature,
	sigBytes []byte, pubKey *ecc.PublicKey, pkBytes []byte) bool {

	if vm.sigCache == nil {
		return sig.Verify(sigHash, pubKey)
	}

	var hash chainhash.Hash
	copy(hash[:], sigHash)
	if vm.sigCache.Exists(hash, sigBytes, pkBytes) {
		return true
	}
	if !sig.Verify(sigHash, pubKey) {
		return false
	}
	vm.sigCache.Add(hash, sigBytes, pkBytes)
	return true
}

// getStack 以自底向上的顺序返回栈的内容。
func getStack(stack *stack) [][]byte {
	array := make([][]byte, stack.Depth())
	for i := range array {
		array[len(array)-i-1], _ = stack.PeekByteArray(int32(i))
	}
	return array
}

// setStack 用 data 替换栈的内容，data 的最后一项成为栈顶。
func setStack(stack *stack, data [][]byte) {
	_ = stack.DropN(stack.Depth())

	for i := range data {
		stack.PushByteArray(data[i])
	}
}

// GetStack 返回主栈的内容，最后一项是栈顶。
func (vm *Engine) GetStack() [][]byte {
	return getStack(&vm.dstack)
}

// SetStack 设置主栈的内容，最后一项是栈顶。
func (vm *Engine) SetStack(data [][]byte) {
	setStack(&vm.dstack, data)
}

// GetAltStack 返回备用栈的内容，最后一项是栈顶。
func (vm *Engine) GetAltStack() [][]byte {
	return getStack(&vm.astack)
}

// SetAltStack 设置备用栈的内容，最后一项是栈顶。
func (vm *Engine) SetAltStack(data [][]byte) {
	setStack(&vm.astack, data)
}

// NewEngine 为 ctx 指定的输入创建引擎，解锁脚本与见证取自该输入，scriptPubKey 是被花费的锁定脚本。
// sigCache 可以为 nil。
func NewEngine(scriptPubKey []byte, ctx *SigHashContext, flags ScriptFlags,
	sigCache *SigCache) (*Engine, error) {

	if ctx == nil || ctx.Tx == nil {
		return nil, scriptError(ErrNoTxContext,
			"a transaction context is required")
	}
	if ctx.InputIndex < 0 || ctx.InputIndex >= len(ctx.Tx.TxIn) {
		str := fmt.Sprintf("transaction input index %d is negative or "+
			">= %d", ctx.InputIndex, len(ctx.Tx.TxIn))
		return nil, scriptError(ErrInvalidIndex, str)
	}

	scriptSig := ctx.Tx.TxIn[ctx.InputIndex].SignatureScript
	return newEngine(scriptPubKey, scriptSig, ctx, flags, sigCache)
}

// Execute 先执行解锁脚本，再以其结果栈作为初始栈执行锁定脚本，成功时返回 nil。
// ctx 可以为 nil，此时签名与锁定时间类操作码返回 ErrNoTxContext；
// ctx 不为 nil 时，隔离见证数据取自 ctx 指定的输入。
func Execute(lockingScript, unlockingScript []byte, ctx *SigHashContext,
	flags ScriptFlags) error {

	vm, err := newEngine(lockingScript, unlockingScript, ctx, flags, nil)
	if err != nil {
		return err
	}
	return vm.Execute()
}

func newEngine(scriptPubKey, scriptSig []byte, ctx *SigHashContext,
	flags ScriptFlags, sigCache *SigCache) (*Engine, error) {

	vm := Engine{
		flags:    flags,
		sigCache: sigCache,
	}

	if ctx != nil && ctx.Tx != nil {
		if ctx.InputIndex < 0 || ctx.InputIndex >= len(ctx.Tx.TxIn) {
			str := fmt.Sprintf("transaction input index %d is negative "+
				"or >= %d", ctx.InputIndex, len(ctx.Tx.TxIn))
			return nil, scriptError(ErrInvalidIndex, str)
		}
		vm.tx = ctx.Tx
		vm.txIdx = ctx.InputIndex
		vm.inputAmount = ctx.amount()
		vm.sigHashes = ctx.HashCache
		vm.witness = ctx.Tx.TxIn[ctx.InputIndex].Witness
	}

	// Both scripts empty always ends with an empty stack.
	if len(scriptSig) == 0 && len(scriptPubKey) == 0 {
		return nil, scriptError(ErrEvalFalse,
			"false stack entry at end of script execution")
	}

	if vm.hasFlag(ScriptVerifyCleanStack) && (!vm.hasFlag(ScriptBip16) &&
		!vm.hasFlag(ScriptVerifyWitness)) {
		return nil, scriptError(ErrInvalidFlags,
			"invalid flags combination")
	}

	if vm.hasFlag(ScriptVerifySigPushOnly) && !IsPushOnlyScript(scriptSig) {
		return nil, scriptError(ErrNotPushOnly,
			"signature script is not push only")
	}

	// P2SH unlocking scripts may only push data.
	if vm.hasFlag(ScriptBip16) && isScriptHashScript(scriptPubKey) {
		if !vm.hasFlag(ScriptVerifySigPushOnly) && !IsPushOnlyScript(scriptSig) {
			return nil, scriptError(ErrNotPushOnly,
				"pay to script hash is not push only")
		}
		vm.bip16 = true
	}

	scripts := [][]byte{scriptSig, scriptPubKey}
	for _, scr := range scripts {
		if len(scr) > MaxScriptSize {
			str := fmt.Sprintf("script size %d is larger than max allowed "+
				"size %d", len(scr), MaxScriptSize)
			return nil, scriptError(ErrScriptTooBig, str)
		}
		if err := checkScriptParses(scr); err != nil {
			return nil, err
		}
	}
	vm.scripts = scripts

	// Nothing to execute in an empty unlocking script.
	if len(scriptSig) == 0 {
		vm.scriptIdx++
	}

	if vm.hasFlag(ScriptVerifyMinimalData) {
		vm.dstack.verifyMinimalData = true
		vm.astack.verifyMinimalData = true
	}

	if vm.hasFlag(ScriptVerifyWitness) {
		if !vm.hasFlag(ScriptBip16) {
			errStr := "P2SH must be enabled to do witness verification"
			return nil, scriptError(ErrInvalidFlags, errStr)
		}

		var witProgram []byte
		switch {
		case IsWitnessProgram(scriptPubKey):
			// Native witness programs must have an empty unlocking script.
			if len(scriptSig) != 0 {
				errStr := "native witness program cannot " +
					"also have a signature script"
				return nil, scriptError(ErrWitnessMalleated, errStr)
			}
			witProgram = scriptPubKey

		case len(vm.witness) != 0 && vm.bip16:
			// The unlocking script must be exactly one canonical push of
			// the witness program.
			if len(scriptSig) > 2 &&
				isCanonicalPush(scriptSig[0], scriptSig[1:]) &&
				IsWitnessProgram(scriptSig[1:]) {

				witProgram = scriptSig[1:]
			} else {
				errStr := "signature script for witness " +
					"nested p2sh is not canonical"
				return nil, scriptError(ErrWitnessMalleatedP2SH, errStr)
			}
		}

		if witProgram != nil {
			var err error
			vm.witnessVersion, vm.witnessProgram, err =
				ExtractWitnessProgramInfo(witProgram)
			if err != nil {
				return nil, err
			}
		} else if len(vm.witness) != 0 {
			errStr := "non-witness inputs cannot have a witness"
			return nil, scriptError(ErrWitnessUnexpected, errStr)
		}
	}

	vm.tokenizer = MakeScriptTokenizer(scripts[vm.scriptIdx])
	return &vm, nil
}
