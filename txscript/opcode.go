// 包含比特币脚本语言中所有操作码的实现。

package txscript

import (
	"bytes"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/ripemd160"

	"github.com/qinglongcn/btccore/chainhash"
	"github.com/qinglongcn/btccore/ecc"
	"github.com/qinglongcn/btccore/wire"
)

// opcode 描述一个操作码：值、名称、包含数据在内的长度以及执行函数。
// length 为正表示固定长度；为 -1、-2、-4 表示其后跟随对应字节数的小端长度前缀。
type opcode struct {
	value  byte
	name   string
	length int
	opfunc func(*opcode, []byte, *Engine) error
}

// 操作码的值。OP_DATA_1 到 OP_DATA_75 直接推送对应字节数的数据，这里只列出用到的几个。
const (
	OP_0                   = 0x00
	OP_FALSE               = 0x00
	OP_DATA_1              = 0x01
	OP_DATA_20             = 0x14
	OP_DATA_32             = 0x20
	OP_DATA_33             = 0x21
	OP_DATA_65             = 0x41
	OP_DATA_75             = 0x4b
	OP_PUSHDATA1           = 0x4c
	OP_PUSHDATA2           = 0x4d
	OP_PUSHDATA4           = 0x4e
	OP_1NEGATE             = 0x4f
	OP_RESERVED            = 0x50
	OP_1                   = 0x51
	OP_TRUE                = 0x51
	OP_2                   = 0x52
	OP_3                   = 0x53
	OP_4                   = 0x54
	OP_5                   = 0x55
	OP_6                   = 0x56
	OP_7                   = 0x57
	OP_8                   = 0x58
	OP_9                   = 0x59
	OP_10                  = 0x5a
	OP_11                  = 0x5b
	OP_12                  = 0x5c
	OP_13                  = 0x5d
	OP_14                  = 0x5e
	OP_15                  = 0x5f
	OP_16                  = 0x60
	OP_NOP                 = 0x61
	OP_VER                 = 0x62
	OP_IF                  = 0x63
	OP_NOTIF               = 0x64
	OP_VERIF               = 0x65
	OP_VERNOTIF            = 0x66
	OP_ELSE                = 0x67
	OP_ENDIF               = 0x68
	OP_VERIFY              = 0x69
	OP_RETURN              = 0x6a
	OP_TOALTSTACK          = 0x6b
	OP_FROMALTSTACK        = 0x6c
	OP_2DROP               = 0x6d
	OP_2DUP                = 0x6e
	OP_3DUP                = 0x6f
	OP_2OVER               = 0x70
	OP_2ROT                = 0x71
	OP_2SWAP               = 0x72
	OP_IFDUP               = 0x73
	OP_DEPTH               = 0x74
	OP_DROP                = 0x75
	OP_DUP                 = 0x76
	OP_NIP                 = 0x77
	OP_OVER                = 0x78
	OP_PICK                = 0x79
	OP_ROLL                = 0x7a
	OP_ROT                 = 0x7b
	OP_SWAP                = 0x7c
	OP_TUCK                = 0x7d
	OP_CAT                 = 0x7e
	OP_SUBSTR              = 0x7f
	OP_LEFT                = 0x80
	OP_RIGHT               = 0x81
	OP_SIZE                = 0x82
	OP_INVERT              = 0x83
	OP_AND                 = 0x84
	OP_OR                  = 0x85
	OP_XOR                 = 0x86
	OP_EQUAL               = 0x87
	OP_EQUALVERIFY         = 0x88
	OP_RESERVED1           = 0x89
	OP_RESERVED2           = 0x8a
	OP_1ADD                = 0x8b
	OP_1SUB                = 0x8c
	OP_2MUL                = 0x8d
	OP_2DIV                = 0x8e
	OP_NEGATE              = 0x8f
	OP_ABS                 = 0x90
	OP_NOT                 = 0x91
	OP_0NOTEQUAL           = 0x92
	OP_ADD                 = 0x93
	OP_SUB                 = 0x94
	OP_MUL                 = 0x95
	OP_DIV                 = 0x96
	OP_MOD                 = 0x97
	OP_LSHIFT              = 0x98
	OP_RSHIFT              = 0x99
	OP_BOOLAND             = 0x9a
	OP_BOOLOR              = 0x9b
	OP_NUMEQUAL            = 0x9c
	OP_NUMEQUALVERIFY      = 0x9d
	OP_NUMNOTEQUAL         = 0x9e
	OP_LESSTHAN            = 0x9f
	OP_GREATERTHAN         = 0xa0
	OP_LESSTHANOREQUAL     = 0xa1
	OP_GREATERTHANOREQUAL  = 0xa2
	OP_MIN                 = 0xa3
	OP_MAX                 = 0xa4
	OP_WITHIN              = 0xa5
	OP_RIPEMD160           = 0xa6
	OP_SHA1                = 0xa7
	OP_SHA256              = 0xa8
	OP_HASH160             = 0xa9
	OP_HASH256             = 0xaa
	OP_CODESEPARATOR       = 0xab
	OP_CHECKSIG            = 0xac
	OP_CHECKSIGVERIFY      = 0xad
	OP_CHECKMULTISIG       = 0xae
	OP_CHECKMULTISIGVERIFY = 0xaf
	OP_NOP1                = 0xb0
	OP_NOP2                = 0xb1
	OP_CHECKLOCKTIMEVERIFY = 0xb1
	OP_NOP3                = 0xb2
	OP_CHECKSEQUENCEVERIFY = 0xb2
	OP_NOP4                = 0xb3
	OP_NOP5                = 0xb4
	OP_NOP6                = 0xb5
	OP_NOP7                = 0xb6
	OP_NOP8                = 0xb7
	OP_NOP9                = 0xb8
	OP_NOP10               = 0xb9
	OP_INVALIDOPCODE       = 0xff
)

// 条件栈中的状态。
const (
	OpCondFalse = 0
	OpCondTrue  = 1
	OpCondSkip  = 2
)

// opcodeArray 是按操作码值索引的分派表。增删操作码只需要修改 init 中的表项。
var opcodeArray [256]opcode

// OpcodeByName 将操作码名称映射为值，包括 OP_FALSE、OP_TRUE、OP_NOP2、OP_NOP3 这几个别名。
var OpcodeByName = make(map[string]byte)

// opcodeOnelineRepls 是单行反汇编时替换为数值的操作码名称。
var opcodeOnelineRepls = map[string]string{
	"OP_1NEGATE": "-1",
	"OP_0":       "0",
	"OP_1":       "1",
	"OP_2":       "2",
	"OP_3":       "3",
	"OP_4":       "4",
	"OP_5":       "5",
	"OP_6":       "6",
	"OP_7":       "7",
	"OP_8":       "8",
	"OP_9":       "9",
	"OP_10":      "10",
	"OP_11":      "11",
	"OP_12":      "12",
	"OP_13":      "13",
	"OP_14":      "14",
	"OP_15":      "15",
	"OP_16":      "16",
}

func init() {
	// Everything not listed below is an unknown opcode, except the direct
	// data pushes.
	for i := range opcodeArray {
		v := byte(i)
		if v >= OP_DATA_1 && v <= OP_DATA_75 {
			opcodeArray[i] = opcode{v, fmt.Sprintf("OP_DATA_%d", i), i + 1,
				opcodePushData}
			continue
		}
		opcodeArray[i] = opcode{v, fmt.Sprintf("OP_UNKNOWN%d", i), 1,
			opcodeInvalid}
	}

	named := []opcode{
		// 数据推送。
		{OP_0, "OP_0", 1, opcodeFalse},
		{OP_PUSHDATA1, "OP_PUSHDATA1", -1, opcodePushData},
		{OP_PUSHDATA2, "OP_PUSHDATA2", -2, opcodePushData},
		{OP_PUSHDATA4, "OP_PUSHDATA4", -4, opcodePushData},
		{OP_1NEGATE, "OP_1NEGATE", 1, opcode1Negate},
		{OP_RESERVED, "OP_RESERVED", 1, opcodeReserved},
		{OP_1, "OP_1", 1, opcodeN},
		{OP_2, "OP_2", 1, opcodeN},
		{OP_3, "OP_3", 1, opcodeN},
		{OP_4, "OP_4", 1, opcodeN},
		{OP_5, "OP_5", 1, opcodeN},
		{OP_6, "OP_6", 1, opcodeN},
		{OP_7, "OP_7", 1, opcodeN},
		{OP_8, "OP_8", 1, opcodeN},
		{OP_9, "OP_9", 1, opcodeN},
		{OP_10, "OP_10", 1, opcodeN},
		{OP_11, "OP_11", 1, opcodeN},
		{OP_12, "OP_12", 1, opcodeN},
		{OP_13, "OP_13", 1, opcodeN},
		{OP_14, "OP_14", 1, opcodeN},
		{OP_15, "OP_15", 1, opcodeN},
		{OP_16, "OP_16", 1, opcodeN},

		// 控制流。
		{OP_NOP, "OP_NOP", 1, opcodeNop},
		{OP_VER, "OP_VER", 1, opcodeReserved},
		{OP_IF, "OP_IF", 1, opcodeIf},
		{OP_NOTIF, "OP_NOTIF", 1, opcodeNotIf},
		{OP_VERIF, "OP_VERIF", 1, opcodeReserved},
		{OP_VERNOTIF, "OP_VERNOTIF", 1, opcodeReserved},
		{OP_ELSE, "OP_ELSE", 1, opcodeElse},
		{OP_ENDIF, "OP_ENDIF", 1, opcodeEndif},
		{OP_VERIFY, "OP_VERIFY", 1, opcodeVerify},
		{OP_RETURN, "OP_RETURN", 1, opcodeReturn},
		{OP_CHECKLOCKTIMEVERIFY, "OP_CHECKLOCKTIMEVERIFY", 1, opcodeCheckLockTimeVerify},
		{OP_CHECKSEQUENCEVERIFY, "OP_CHECKSEQUENCEVERIFY", 1, opcodeCheckSequenceVerify},

		// 栈操作。
		{OP_TOALTSTACK, "OP_TOALTSTACK", 1, opcodeToAltStack},
		{OP_FROMALTSTACK, "OP_FROMALTSTACK", 1, opcodeFromAltStack},
		{OP_2DROP, "OP_2DROP", 1, opcode2Drop},
		{OP_2DUP, "OP_2DUP", 1, opcode2Dup},
		{OP_3DUP, "OP_3DUP", 1, opcode3Dup},
		{OP_2OVER, "OP_2OVER", 1, opcode2Over},
		{OP_2ROT, "OP_2ROT", 1, opcode2Rot},
		{OP_2SWAP, "OP_2SWAP", 1, opcode2Swap},
		{OP_IFDUP, "OP_IFDUP", 1, opcodeIfDup},
		{OP_DEPTH, "OP_DEPTH", 1, opcodeDepth},
		{OP_DROP, "OP_DROP", 1, opcodeDrop},
		{OP_DUP, "OP_DUP", 1, opcodeDup},
		{OP_NIP, "OP_NIP", 1, opcodeNip},
		{OP_OVER, "OP_OVER", 1, opcodeOver},
		{OP_PICK, "OP_PICK", 1, opcodePick},
		{OP_ROLL, "OP_ROLL", 1, opcodeRoll},
		{OP_ROT, "OP_ROT", 1, opcodeRot},
		{OP_SWAP, "OP_SWAP", 1, opcodeSwap},
		{OP_TUCK, "OP_TUCK", 1, opcodeTuck},

		// 拼接与位运算，除 SIZE、EQUAL 外均已禁用。
		{OP_CAT, "OP_CAT", 1, opcodeDisabled},
		{OP_SUBSTR, "OP_SUBSTR", 1, opcodeDisabled},
		{OP_LEFT, "OP_LEFT", 1, opcodeDisabled},
		{OP_RIGHT, "OP_RIGHT", 1, opcodeDisabled},
		{OP_SIZE, "OP_SIZE", 1, opcodeSize},
		{OP_INVERT, "OP_INVERT", 1, opcodeDisabled},
		{OP_AND, "OP_AND", 1, opcodeDisabled},
		{OP_OR, "OP_OR", 1, opcodeDisabled},
		{OP_XOR, "OP_XOR", 1, opcodeDisabled},
		{OP_EQUAL, "OP_EQUAL", 1, opcodeEqual},
		{OP_EQUALVERIFY, "OP_EQUALVERIFY", 1, opcodeEqualVerify},
		{OP_RESERVED1, "OP_RESERVED1", 1, opcodeReserved},
		{OP_RESERVED2, "OP_RESERVED2", 1, opcodeReserved},

		// 数值运算。
		{OP_1ADD, "OP_1ADD", 1, opcode1Add},
		{OP_1SUB, "OP_1SUB", 1, opcode1Sub},
		{OP_2MUL, "OP_2MUL", 1, opcodeDisabled},
		{OP_2DIV, "OP_2DIV", 1, opcodeDisabled},
		{OP_NEGATE, "OP_NEGATE", 1, opcodeNegate},
		{OP_ABS, "OP_ABS", 1, opcodeAbs},
		{OP_NOT, "OP_NOT", 1, opcodeNot},
		{OP_0NOTEQUAL, "OP_0NOTEQUAL", 1, opcode0NotEqual},
		{OP_ADD, "OP_ADD", 1, opcodeAdd},
		{OP_SUB, "OP_SUB", 1, opcodeSub},
		{OP_MUL, "OP_MUL", 1, opcodeDisabled},
		{OP_DIV, "OP_DIV", 1, opcodeDisabled},
		{OP_MOD, "OP_MOD", 1, opcodeDisabled},
		{OP_LSHIFT, "OP_LSHIFT", 1, opcodeDisabled},
		{OP_RSHIFT, "OP_RSHIFT", 1, opcodeDisabled},
		{OP_BOOLAND, "OP_BOOLAND", 1, opcodeBoolAnd},
		{OP_BOOLOR, "OP_BOOLOR", 1, opcodeBoolOr},
		{OP_NUMEQUAL, "OP_NUMEQUAL", 1, opcodeNumEqual},
		{OP_NUMEQUALVERIFY, "OP_NUMEQUALVERIFY", 1, opcodeNumEqualVerify},
		{OP_NUMNOTEQUAL, "OP_NUMNOTEQUAL", 1, opcodeNumNotEqual},
		{OP_LESSTHAN, "OP_LESSTHAN", 1, opcodeLessThan},
		{OP_GREATERTHAN, "OP_GREATERTHAN", 1, opcodeGreaterThan},
		{OP_LESSTHANOREQUAL, "OP_LESSTHANOREQUAL", 1, opcodeLessThanOrEqual},
		{OP_GREATERTHANOREQUAL, "OP_GREATERTHANOREQUAL", 1, opcodeGreaterThanOrEqual},
		{OP_MIN, "OP_MIN", 1, opcodeMin},
		{OP_MAX, "OP_MAX", 1, opcodeMax},
		{OP_WITHIN, "OP_WITHIN", 1, opcodeWithin},

		// 密码学。
		{OP_RIPEMD160, "OP_RIPEMD160", 1, opcodeRipemd160},
		{OP_SHA1, "OP_SHA1", 1, opcodeSha1},
		{OP_SHA256, "OP_SHA256", 1, opcodeSha256},
		{OP_HASH160, "OP_HASH160", 1, opcodeHash160},
		{OP_HASH256, "OP_HASH256", 1, opcodeHash256},
		{OP_CODESEPARATOR, "OP_CODESEPARATOR", 1, opcodeCodeSeparator},
		{OP_CHECKSIG, "OP_CHECKSIG", 1, opcodeCheckSig},
		{OP_CHECKSIGVERIFY, "OP_CHECKSIGVERIFY", 1, opcodeCheckSigVerify},
		{OP_CHECKMULTISIG, "OP_CHECKMULTISIG", 1, opcodeCheckMultiSig},
		{OP_CHECKMULTISIGVERIFY, "OP_CHECKMULTISIGVERIFY", 1, opcodeCheckMultiSigVerify},

		// 保留给软分叉升级的 NOP。
		{OP_NOP1, "OP_NOP1", 1, opcodeNop},
		{OP_NOP4, "OP_NOP4", 1, opcodeNop},
		{OP_NOP5, "OP_NOP5", 1, opcodeNop},
		{OP_NOP6, "OP_NOP6", 1, opcodeNop},
		{OP_NOP7, "OP_NOP7", 1, opcodeNop},
		{OP_NOP8, "OP_NOP8", 1, opcodeNop},
		{OP_NOP9, "OP_NOP9", 1, opcodeNop},
		{OP_NOP10, "OP_NOP10", 1, opcodeNop},

		{OP_INVALIDOPCODE, "OP_INVALIDOPCODE", 1, opcodeInvalid},
	}
	for _, op := range named {
		opcodeArray[op.value] = op
	}

	for _, op := range opcodeArray {
		OpcodeByName[op.name] = op.value
	}
	OpcodeByName["OP_FALSE"] = OP_FALSE
	OpcodeByName["OP_TRUE"] = OP_TRUE
	OpcodeByName["OP_NOP2"] = OP_CHECKLOCKTIMEVERIFY
	OpcodeByName["OP_NOP3"] = OP_CHECKSEQUENCEVERIFY
}

// disasmOpcode 将操作码及其数据的反汇编写入 buf。
// compact 为真时小整数写成数值，推送的数据只写十六进制。
func disasmOpcode(buf *strings.Builder, op *opcode, data []byte, compact bool) {
	opcodeName := op.name
	if compact {
		if replName, ok := opcodeOnelineRepls[opcodeName]; ok {
			opcodeName = replName
		}

		if op.length == 1 {
			buf.WriteString(opcodeName)
			return
		}
		buf.WriteString(hex.EncodeToString(data))
		return
	}

	buf.WriteString(opcodeName)

	switch op.length {
	case 1:
		return
	case -1:
		buf.WriteString(fmt.Sprintf(" 0x%02x", len(data)))
	case -2:
		buf.WriteString(fmt.Sprintf(" 0x%04x", len(data)))
	case -4:
		buf.WriteString(fmt.Sprintf(" 0x%08x", len(data)))
	}

	buf.WriteString(fmt.Sprintf(" 0x%02x", data))
}

// *******************************************
// 操作码实现函数从这里开始。
// *******************************************

// opcodeDisabled 处理已禁用的操作码。
// 执行引擎在程序计数器经过它们时就会拒绝，即使位于未执行的分支中。
func opcodeDisabled(op *opcode, data []byte, vm *Engine) error {
	str := fmt.Sprintf("attempt to execute disabled opcode %s", op.name)
	return scriptError(ErrInvalidScript, str)
}

// opcodeReserved 处理保留的操作码。
func opcodeReserved(op *opcode, data []byte, vm *Engine) error {
	str := fmt.Sprintf("attempt to execute reserved opcode %s", op.name)
	return scriptError(ErrInvalidScript, str)
}

// opcodeInvalid 处理未知的操作码。
func opcodeInvalid(op *opcode, data []byte, vm *Engine) error {
	str := fmt.Sprintf("attempt to execute invalid opcode %s", op.name)
	return scriptError(ErrInvalidScript, str)
}

// opcodeFalse 压入空字节串，即数字 0。
func opcodeFalse(op *opcode, data []byte, vm *Engine) error {
	vm.dstack.PushByteArray(nil)
	return nil
}

// opcodePushData 压入操作码携带的数据。
func opcodePushData(op *opcode, data []byte, vm *Engine) error {
	vm.dstack.PushByteArray(data)
	return nil
}

// opcode1Negate 压入 -1。
func opcode1Negate(op *opcode, data []byte, vm *Engine) error {
	vm.dstack.PushInt(scriptNum(-1))
	return nil
}

// opcodeN 压入操作码表示的小整数 1 到 16。
func opcodeN(op *opcode, data []byte, vm *Engine) error {
	vm.dstack.PushInt(scriptNum(op.value - (OP_1 - 1)))
	return nil
}

// opcodeNop 什么也不做。设置了 ScriptDiscourageUpgradableNops 时，保留的 NOP 会返回错误。
func opcodeNop(op *opcode, data []byte, vm *Engine) error {
	switch op.value {
	case OP_NOP1, OP_NOP4, OP_NOP5, OP_NOP6, OP_NOP7, OP_NOP8, OP_NOP9,
		OP_NOP10:

		if vm.hasFlag(ScriptDiscourageUpgradableNops) {
			str := fmt.Sprintf("%v reserved for soft-fork upgrades",
				op.name)
			return scriptError(ErrDiscourageUpgradableNOPs, str)
		}
	}
	return nil
}

// popIfBool 弹出 OP_IF/OP_NOTIF 的条件。
// 版本 0 见证脚本在设置 ScriptVerifyMinimalIf 时只接受空或 0x01。
func popIfBool(vm *Engine) (bool, error) {
	if !vm.isWitnessVersionActive(0) || !vm.hasFlag(ScriptVerifyMinimalIf) {
		return vm.dstack.PopBool()
	}

	so, err := vm.dstack.PopByteArray()
	if err != nil {
		return false, err
	}

	if len(so) > 1 {
		str := fmt.Sprintf("minimal if is active, top element MUST "+
			"have a length of at most 1, instead length is %v", len(so))
		return false, scriptError(ErrMinimalIf, str)
	}
	if len(so) == 1 && so[0] != 0x01 {
		str := fmt.Sprintf("minimal if is active, top stack item MUST "+
			"be an empty byte array or 0x01, is instead: %v", so[0])
		return false, scriptError(ErrMinimalIf, str)
	}

	return asBool(so), nil
}

// opcodeIf 在条件栈中压入新的分支状态。
// 当前分支正在执行时弹出栈顶：真则执行该分支；当前分支未执行时压入 OpCondSkip，
// 使后续的 OP_ELSE 也不会执行。
//
// 栈变换：[... bool] -> [...]
func opcodeIf(op *opcode, data []byte, vm *Engine) error {
	condVal := OpCondFalse
	if vm.isBranchExecuting() {
		ok, err := popIfBool(vm)
		if err != nil {
			return err
		}

		if ok {
			condVal = OpCondTrue
		}
	} else {
		condVal = OpCondSkip
	}
	vm.condStack = append(vm.condStack, condVal)
	return nil
}

// opcodeNotIf 与 opcodeIf 相同，只是条件取反。
//
// 栈变换：[... bool] -> [...]
func opcodeNotIf(op *opcode, data []byte, vm *Engine) error {
	condVal := OpCondFalse
	if vm.isBranchExecuting() {
		ok, err := popIfBool(vm)
		if err != nil {
			return err
		}

		if !ok {
			condVal = OpCondTrue
		}
	} else {
		condVal = OpCondSkip
	}
	vm.condStack = append(vm.condStack, condVal)
	return nil
}

// opcodeElse 翻转当前分支的执行状态，OpCondSkip 保持不变。
func opcodeElse(op *opcode, data []byte, vm *Engine) error {
	if len(vm.condStack) == 0 {
		str := fmt.Sprintf("encountered opcode %s with no matching "+
			"opcode to begin conditional execution", op.name)
		return scriptError(ErrUnbalancedConditional, str)
	}

	conditionalIdx := len(vm.condStack) - 1
	switch vm.condStack[conditionalIdx] {
	case OpCondTrue:
		vm.condStack[conditionalIdx] = OpCondFalse
	case OpCondFalse:
		vm.condStack[conditionalIdx] = OpCondTrue
	case OpCondSkip:
	}
	return nil
}

// opcodeEndif 结束当前条件分支。
func opcodeEndif(op *opcode, data []byte, vm *Engine) error {
	if len(vm.condStack) == 0 {
		str := fmt.Sprintf("encountered opcode %s with no matching "+
			"opcode to begin conditional execution", op.name)
		return scriptError(ErrUnbalancedConditional, str)
	}

	vm.condStack = vm.condStack[:len(vm.condStack)-1]
	return nil
}

// abstractVerify 弹出栈顶，为假时返回错误码为 c 的错误。
func abstractVerify(op *opcode, vm *Engine, c ErrorCode) error {
	verified, err := vm.dstack.PopBool()
	if err != nil {
		return err
	}

	if !verified {
		str := fmt.Sprintf("%s failed", op.name)
		return scriptError(c, str)
	}
	return nil
}

// opcodeVerify 栈顶为假时终止执行。
//
// 栈变换：[... bool] -> [...]
func opcodeVerify(op *opcode, data []byte, vm *Engine) error {
	return abstractVerify(op, vm, ErrVerify)
}

// opcodeReturn 立即以失败终止执行。
func opcodeReturn(op *opcode, data []byte, vm *Engine) error {
	return scriptError(ErrEarlyReturn, "script returned early")
}

// verifyLockTime 检查脚本给出的锁定时间与交易的锁定时间是否同为区块高度或同为时间戳，
// 且前者不大于后者。
func verifyLockTime(txLockTime, threshold, lockTime int64) error {
	if !((txLockTime < threshold && lockTime < threshold) ||
		(txLockTime >= threshold && lockTime >= threshold)) {
		str := fmt.Sprintf("mismatched locktime types -- tx locktime "+
			"%d, stack locktime %d", txLockTime, lockTime)
		return scriptError(ErrUnsatisfiedLockTime, str)
	}

	if lockTime > txLockTime {
		str := fmt.Sprintf("locktime requirement not satisfied -- "+
			"locktime is greater than the transaction locktime: "+
			"%d > %d", lockTime, txLockTime)
		return scriptError(ErrUnsatisfiedLockTime, str)
	}

	return nil
}

// opcodeCheckLockTimeVerify 实现 BIP65：交易的锁定时间必须不小于栈顶给出的值，
// 且该输入未被最终化。栈顶元素保留在栈中。
func opcodeCheckLockTimeVerify(op *opcode, data []byte, vm *Engine) error {
	if !vm.hasFlag(ScriptVerifyCheckLockTimeVerify) {
		if vm.hasFlag(ScriptDiscourageUpgradableNops) {
			return scriptError(ErrDiscourageUpgradableNOPs,
				"OP_NOP2 reserved for soft-fork upgrades")
		}
		return nil
	}

	so, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}
	lockTime, err := MakeScriptNum(so, vm.dstack.verifyMinimalData,
		cltvMaxScriptNumLen)
	if err != nil {
		return err
	}

	if lockTime < 0 {
		str := fmt.Sprintf("negative lock time: %d", lockTime)
		return scriptError(ErrNegativeLockTime, str)
	}

	tx, txIn, err := vm.txInput(op)
	if err != nil {
		return err
	}

	err = verifyLockTime(int64(tx.LockTime), LockTimeThreshold,
		int64(lockTime))
	if err != nil {
		return err
	}

	// A finalized input disables the transaction's lock time entirely.
	if txIn.Sequence == wire.MaxTxInSequenceNum {
		return scriptError(ErrUnsatisfiedLockTime,
			"transaction input is finalized")
	}

	return nil
}

// opcodeCheckSequenceVerify 实现 BIP112：输入的相对锁定时间必须满足栈顶给出的值。
// 栈顶元素保留在栈中。
func opcodeCheckSequenceVerify(op *opcode, data []byte, vm *Engine) error {
	if !vm.hasFlag(ScriptVerifyCheckSequenceVerify) {
		if vm.hasFlag(ScriptDiscourageUpgradableNops) {
			return scriptError(ErrDiscourageUpgradableNOPs,
				"OP_NOP3 reserved for soft-fork upgrades")
		}
		return nil
	}

	so, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}
	stackSequence, err := MakeScriptNum(so, vm.dstack.verifyMinimalData,
		cltvMaxScriptNumLen)
	if err != nil {
		return err
	}

	if stackSequence < 0 {
		str := fmt.Sprintf("negative sequence: %d", stackSequence)
		return scriptError(ErrNegativeLockTime, str)
	}

	sequence := int64(stackSequence)

	// The disable flag on the stack operand turns the opcode into a NOP.
	if sequence&int64(wire.SequenceLockTimeDisabled) != 0 {
		return nil
	}

	tx, txIn, err := vm.txInput(op)
	if err != nil {
		return err
	}

	if tx.Version < 2 {
		str := fmt.Sprintf("invalid transaction version: %d",
			tx.Version)
		return scriptError(ErrUnsatisfiedLockTime, str)
	}

	txSequence := int64(txIn.Sequence)
	if txSequence&int64(wire.SequenceLockTimeDisabled) != 0 {
		str := fmt.Sprintf("transaction sequence has sequence "+
			"locktime disabled bit set: 0x%x", txSequence)
		return scriptError(ErrUnsatisfiedLockTime, str)
	}

	lockTimeMask := int64(wire.SequenceLockTimeIsSeconds |
		wire.SequenceLockTimeMask)
	return verifyLockTime(txSequence&lockTimeMask,
		wire.SequenceLockTimeIsSeconds, sequence&lockTimeMask)
}

// opcodeToAltStack 将栈顶元素移到备用栈。
func opcodeToAltStack(op *opcode, data []byte, vm *Engine) error {
	so, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	vm.astack.PushByteArray(so)

	return nil
}

// opcodeFromAltStack 将备用栈栈顶元素移回主栈。
func opcodeFromAltStack(op *opcode, data []byte, vm *Engine) error {
	so, err := vm.astack.PopByteArray()
	if err != nil {
		return err
	}
	vm.dstack.PushByteArray(so)

	return nil
}

func opcode2Drop(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.DropN(2)
}

func opcode2Dup(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.DupN(2)
}

func opcode3Dup(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.DupN(3)
}

func opcode2Over(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.OverN(2)
}

func opcode2Rot(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.RotN(2)
}

func opcode2Swap(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.SwapN(2)
}

// opcodeIfDup 栈顶为真时复制栈顶。
func opcodeIfDup(op *opcode, data []byte, vm *Engine) error {
	so, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}

	if asBool(so) {
		vm.dstack.PushByteArray(so)
	}

	return nil
}

// opcodeDepth 压入当前栈深度。
func opcodeDepth(op *opcode, data []byte, vm *Engine) error {
	vm.dstack.PushInt(scriptNum(vm.dstack.Depth()))
	return nil
}

func opcodeDrop(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.DropN(1)
}

func opcodeDup(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.DupN(1)
}

func opcodeNip(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.NipN(1)
}

func opcodeOver(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.OverN(1)
}

// opcodePick 弹出 n，然后将距栈顶 n 处的元素复制到栈顶。
func opcodePick(op *opcode, data []byte, vm *Engine) error {
	val, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	return vm.dstack.PickN(val.Int32())
}

// opcodeRoll 弹出 n，然后将距栈顶 n 处的元素移到栈顶。
func opcodeRoll(op *opcode, data []byte, vm *Engine) error {
	val, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	return vm.dstack.RollN(val.Int32())
}

func opcodeRot(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.RotN(1)
}

func opcodeSwap(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.SwapN(1)
}

func opcodeTuck(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.Tuck()
}

// opcodeSize 压入栈顶元素的字节数，栈顶元素保留。
func opcodeSize(op *opcode, data []byte, vm *Engine) error {
	so, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}

	vm.dstack.PushInt(scriptNum(len(so)))
	return nil
}

// opcodeEqual 弹出两个元素，按字节比较后压入结果。
func opcodeEqual(op *opcode, data []byte, vm *Engine) error {
	a, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	b, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	vm.dstack.PushBool(bytes.Equal(a, b))
	return nil
}

func opcodeEqualVerify(op *opcode, data []byte, vm *Engine) error {
	err := opcodeEqual(op, data, vm)
	if err == nil {
		err = abstractVerify(op, vm, ErrEqualVerify)
	}
	return err
}

// unaryNumOp 弹出一个数字，压入 f 的结果。
func unaryNumOp(vm *Engine, f func(scriptNum) scriptNum) error {
	m, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	vm.dstack.PushInt(f(m))
	return nil
}

// binaryNumOp 弹出两个数字 v0（栈顶）与 v1，压入 f(v1, v0) 的结果。
func binaryNumOp(vm *Engine, f func(v1, v0 scriptNum) scriptNum) error {
	v0, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	v1, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	vm.dstack.PushInt(f(v1, v0))
	return nil
}

// binaryBoolOp 弹出两个数字，压入比较结果。
func binaryBoolOp(vm *Engine, f func(v1, v0 scriptNum) bool) error {
	return binaryNumOp(vm, func(v1, v0 scriptNum) scriptNum {
		if f(v1, v0) {
			return 1
		}
		return 0
	})
}

func opcode1Add(op *opcode, data []byte, vm *Engine) error {
	return unaryNumOp(vm, func(m scriptNum) scriptNum { return m + 1 })
}

func opcode1Sub(op *opcode, data []byte, vm *Engine) error {
	return unaryNumOp(vm, func(m scriptNum) scriptNum { return m - 1 })
}

func opcodeNegate(op *opcode, data []byte, vm *Engine) error {
	return unaryNumOp(vm, func(m scriptNum) scriptNum { return -m })
}

func opcodeAbs(op *opcode, data []byte, vm *Engine) error {
	return unaryNumOp(vm, func(m scriptNum) scriptNum {
		if m < 0 {
			return -m
		}
		return m
	})
}

// opcodeNot 栈顶为 0 时压入 1，否则压入 0。
func opcodeNot(op *opcode, data []byte, vm *Engine) error {
	return unaryNumOp(vm, func(m scriptNum) scriptNum {
		if m == 0 {
			return 1
		}
		return 0
	})
}

// opcode0NotEqual 栈顶为 0 时压入 0，否则压入 1。
func opcode0NotEqual(op *opcode, data []byte, vm *Engine) error {
	return unaryNumOp(vm, func(m scriptNum) scriptNum {
		if m != 0 {
			return 1
		}
		return 0
	})
}

func opcodeAdd(op *opcode, data []byte, vm *Engine) error {
	return binaryNumOp(vm, func(v1, v0 scriptNum) scriptNum { return v1 + v0 })
}

// opcodeSub 压入次栈顶减栈顶的差。
func opcodeSub(op *opcode, data []byte, vm *Engine) error {
	return binaryNumOp(vm, func(v1, v0 scriptNum) scriptNum { return v1 - v0 })
}

func opcodeBoolAnd(op *opcode, data []byte, vm *Engine) error {
	return binaryBoolOp(vm, func(v1, v0 scriptNum) bool { return v1 != 0 && v0 != 0 })
}

func opcodeBoolOr(op *opcode, data []byte, vm *Engine) error {
	return binaryBoolOp(vm, func(v1, v0 scriptNum) bool { return v1 != 0 || v0 != 0 })
}

func opcodeNumEqual(op *opcode, data []byte, vm *Engine) error {
	return binaryBoolOp(vm, func(v1, v0 scriptNum) bool { return v1 == v0 })
}

func opcodeNumEqualVerify(op *opcode, data []byte, vm *Engine) error {
	err := opcodeNumEqual(op, data, vm)
	if err == nil {
		err = abstractVerify(op, vm, ErrNumEqualVerify)
	}
	return err
}

func opcodeNumNotEqual(op *opcode, data []byte, vm *Engine) error {
	return binaryBoolOp(vm, func(v1, v0 scriptNum) bool { return v1 != v0 })
}

func opcodeLessThan(op *opcode, data []byte, vm *Engine) error {
	return binaryBoolOp(vm, func(v1, v0 scriptNum) bool { return v1 < v0 })
}

func opcodeGreaterThan(op *opcode, data []byte, vm *Engine) error {
	return binaryBoolOp(vm, func(v1, v0 scriptNum) bool { return v1 > v0 })
}

func opcodeLessThanOrEqual(op *opcode, data []byte, vm *Engine) error {
	return binaryBoolOp(vm, func(v1, v0 scriptNum) bool { return v1 <= v0 })
}

func opcodeGreaterThanOrEqual(op *opcode, data []byte, vm *Engine) error {
	return binaryBoolOp(vm, func(v1, v0 scriptNum) bool { return v1 >= v0 })
}

func opcodeMin(op *opcode, data []byte, vm *Engine) error {
	return binaryNumOp(vm, func(v1, v0 scriptNum) scriptNum {
		if v1 < v0 {
			return v1
		}
		return v0
	})
}

func opcodeMax(op *opcode, data []byte, vm *Engine) error {
	return binaryNumOp(vm, func(v1, v0 scriptNum) scriptNum {
		if v1 > v0 {
			return v1
		}
		return v0
	})
}

// opcodeWithin 弹出 max、min、x 三个数字，压入 min <= x < max 的结果。
//
// 栈变换：[... x min max] -> [... bool]
func opcodeWithin(op *opcode, data []byte, vm *Engine) error {
	maxVal, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	minVal, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	x, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	vm.dstack.PushBool(x >= minVal && x < maxVal)
	return nil
}

// calcHash 计算 buf 的摘要。
func calcHash(buf []byte, hasher hash.Hash) []byte {
	hasher.Write(buf)
	return hasher.Sum(nil)
}

// hashOp 弹出栈顶，压入 f 的摘要结果。
func hashOp(vm *Engine, f func([]byte) []byte) error {
	buf, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	vm.dstack.PushByteArray(f(buf))
	return nil
}

func opcodeRipemd160(op *opcode, data []byte, vm *Engine) error {
	return hashOp(vm, func(b []byte) []byte { return calcHash(b, ripemd160.New()) })
}

func opcodeSha1(op *opcode, data []byte, vm *Engine) error {
	return hashOp(vm, func(b []byte) []byte {
		h := sha1.Sum(b)
		return h[:]
	})
}

func opcodeSha256(op *opcode, data []byte, vm *Engine) error {
	return hashOp(vm, func(b []byte) []byte {
		h := sha256.Sum256(b)
		return h[:]
	})
}

func opcodeHash160(op *opcode, data []byte, vm *Engine) error {
	return hashOp(vm, chainhash.Hash160)
}

func opcodeHash256(op *opcode, data []byte, vm *Engine) error {
	return hashOp(vm, chainhash.DoubleHashB)
}

// opcodeCodeSeparator 记录签名哈希所用子脚本的起点。
func opcodeCodeSeparator(op *opcode, data []byte, vm *Engine) error {
	vm.lastCodeSep = vm.tokenizer.ByteIndex()
	return nil
}

// opcodeCheckSig 弹出公钥与签名，校验签名是否覆盖当前输入的签名哈希，压入结果。
// 签名最后一个字节是签名哈希类型。
//
// 栈变换：[... signature pubkey] -> [... bool]
func opcodeCheckSig(op *opcode, data []byte, vm *Engine) error {
	pkBytes, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	fullSigBytes, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	// An empty signature is an allowed compact way to fail the check.
	if len(fullSigBytes) < 1 {
		vm.dstack.PushBool(false)
		return nil
	}

	hashType := SigHashType(fullSigBytes[len(fullSigBytes)-1])
	sigBytes := fullSigBytes[:len(fullSigBytes)-1]
	if err := vm.checkHashTypeEncoding(hashType); err != nil {
		return err
	}
	if err := vm.checkSignatureEncoding(sigBytes); err != nil {
		return err
	}
	if err := vm.checkPubKeyEncoding(pkBytes); err != nil {
		return err
	}

	subScript := vm.subScript()
	if !vm.isWitnessVersionActive(0) {
		subScript = removeOpcodeByData(subScript, fullSigBytes)
	}

	sigHash, err := vm.calcSigHash(op, subScript, hashType)
	if err != nil {
		return err
	}

	valid := vm.verifySignature(sigHash, sigBytes, pkBytes)
	if !valid && vm.hasFlag(ScriptVerifyNullFail) && len(sigBytes) > 0 {
		str := "signature not empty on failed checksig"
		return scriptError(ErrNullFail, str)
	}

	vm.dstack.PushBool(valid)
	return nil
}

func opcodeCheckSigVerify(op *opcode, data []byte, vm *Engine) error {
	err := opcodeCheckSig(op, data, vm)
	if err == nil {
		err = abstractVerify(op, vm, ErrCheckSigVerify)
	}
	return err
}

// parsedSigInfo 缓存多签校验中已解析过的签名。
type parsedSigInfo struct {
	signature       []byte
	parsedSignature *ecc.Signature
	parsed          bool
}

// opcodeCheckMultiSig 实现 m-of-n 多签校验。
// 签名必须与公钥保持相同的相对顺序；由于历史原因会多弹出一个无用元素。
//
// 栈变换：[... dummy [sig ...] numsigs [pubkey ...] numpubkeys] -> [... bool]
func opcodeCheckMultiSig(op *opcode, data []byte, vm *Engine) error {
	numKeys, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	numPubKeys := int(numKeys.Int32())
	if numPubKeys < 0 {
		str := fmt.Sprintf("number of pubkeys %d is negative",
			numPubKeys)
		return scriptError(ErrInvalidPubKeyCount, str)
	}
	if numPubKeys > MaxPubKeysPerMultiSig {
		str := fmt.Sprintf("too many pubkeys: %d > %d",
			numPubKeys, MaxPubKeysPerMultiSig)
		return scriptError(ErrInvalidPubKeyCount, str)
	}
	vm.numOps += numPubKeys
	if vm.numOps > MaxOpsPerScript {
		str := fmt.Sprintf("exceeded max operation limit of %d",
			MaxOpsPerScript)
		return scriptError(ErrTooManyOperations, str)
	}

	pubKeys := make([][]byte, 0, numPubKeys)
	for i := 0; i < numPubKeys; i++ {
		pubKey, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		pubKeys = append(pubKeys, pubKey)
	}

	numSigs, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	numSignatures := int(numSigs.Int32())
	if numSignatures < 0 {
		str := fmt.Sprintf("number of signatures %d is negative",
			numSignatures)
		return scriptError(ErrInvalidSignatureCount, str)
	}
	if numSignatures > numPubKeys {
		str := fmt.Sprintf("more signatures than pubkeys: %d > %d",
			numSignatures, numPubKeys)
		return scriptError(ErrInvalidSignatureCount, str)
	}

	signatures := make([]*parsedSigInfo, 0, numSignatures)
	for i := 0; i < numSignatures; i++ {
		signature, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		signatures = append(signatures, &parsedSigInfo{signature: signature})
	}

	dummy, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	if vm.hasFlag(ScriptStrictMultiSig) && len(dummy) != 0 {
		str := fmt.Sprintf("multisig dummy argument has length %d "+
			"instead of 0", len(dummy))
		return scriptError(ErrSigNullDummy, str)
	}

	script := vm.subScript()
	if !vm.isWitnessVersionActive(0) {
		for _, sigInfo := range signatures {
			script = removeOpcodeByData(script, sigInfo.signature)
		}
	}

	success := true
	numPubKeys++
	pubKeyIdx := -1
	signatureIdx := 0
	for numSignatures > 0 {
		// Not enough public keys left to match the remaining signatures.
		pubKeyIdx++
		numPubKeys--
		if numSignatures > numPubKeys {
			success = false
			break
		}

		sigInfo := signatures[signatureIdx]
		pubKey := pubKeys[pubKeyIdx]

		rawSig := sigInfo.signature
		if len(rawSig) == 0 {
			// Skip to the next pubkey if the signature is empty.
			continue
		}

		hashType := SigHashType(rawSig[len(rawSig)-1])
		signature := rawSig[:len(rawSig)-1]

		var parsedSig *ecc.Signature
		if !sigInfo.parsed {
			if err := vm.checkHashTypeEncoding(hashType); err != nil {
				return err
			}
			if err := vm.checkSignatureEncoding(signature); err != nil {
				return err
			}

			sigInfo.parsed = true
			parsedSig, err = vm.parseSignature(signature)
			if err != nil {
				continue
			}
			sigInfo.parsedSignature = parsedSig
		} else {
			// Skip to the next pubkey if the signature is invalid.
			if sigInfo.parsedSignature == nil {
				continue
			}
			parsedSig = sigInfo.parsedSignature
		}

		if err := vm.checkPubKeyEncoding(pubKey); err != nil {
			return err
		}

		parsedPubKey, err := ecc.ParsePubKey(pubKey)
		if err != nil {
			continue
		}

		sigHash, err := vm.calcSigHash(op, script, hashType)
		if err != nil {
			return err
		}

		if vm.verifyParsedSignature(sigHash, parsedSig, signature,
			parsedPubKey, pubKey) {

			// Move to the next signature since this one matched.
			signatureIdx++
			numSignatures--
		}
	}

	if !success && vm.hasFlag(ScriptVerifyNullFail) {
		for _, sig := range signatures {
			if len(sig.signature) > 0 {
				str := "not all signatures empty on failed checkmultisig"
				return scriptError(ErrNullFail, str)
			}
		}
	}

	vm.dstack.PushBool(success)
	return nil
}

func opcodeCheckMultiSigVerify(op *opcode, data []byte, vm *Engine) error {
	err := opcodeCheckMultiSig(op, data, vm)
	if err == nil {
		err = abstractVerify(op, vm, ErrCheckMultiSigVerify)
	}
	return err
}
