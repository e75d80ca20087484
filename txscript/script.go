// 包含处理脚本字节码的基本函数和方法。

package txscript

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/qinglongcn/btccore/wire"
)

// 这些是为各个脚本中的最大值指定的常量。
const (
	MaxOpsPerScript       = 201 // 最大非推送操作数。
	MaxPubKeysPerMultiSig = 20  // 多重签名不能有比这更多的签名。
	MaxScriptElementSize  = 520 // 可推入堆栈的最大字节数。
)

// Command 是解析后的一条脚本指令：操作码以及它推送的数据（非推送操作码的 Data 为 nil）。
type Command struct {
	Opcode byte
	Data   []byte
}

// String 返回指令的单行反汇编。
func (c Command) String() string {
	var buf strings.Builder
	disasmOpcode(&buf, &opcodeArray[c.Opcode], c.Data, true)
	return buf.String()
}

// ParseScript 将脚本解析为指令列表。推送长度超出脚本末尾时返回 ErrInvalidScript。
func ParseScript(script []byte) ([]Command, error) {
	var cmds []Command
	tokenizer := MakeScriptTokenizer(script)
	for tokenizer.Next() {
		cmds = append(cmds, Command{
			Opcode: tokenizer.Opcode(),
			Data:   tokenizer.Data(),
		})
	}
	if err := tokenizer.Err(); err != nil {
		return nil, err
	}
	return cmds, nil
}

// AssembleScript 将指令列表编码为脚本字节，是 ParseScript 的逆操作。
// 推送指令按其操作码写出长度前缀，数据长度与操作码不符时返回 ErrInvalidScript。
func AssembleScript(cmds []Command) ([]byte, error) {
	var buf bytes.Buffer
	for i, cmd := range cmds {
		op := &opcodeArray[cmd.Opcode]
		dataLen := len(cmd.Data)

		switch {
		case op.length > 1:
			if dataLen != op.length-1 {
				str := fmt.Sprintf("command %d: opcode %s requires %d "+
					"bytes, but data has %d", i, op.name, op.length-1,
					dataLen)
				return nil, scriptError(ErrInvalidScript, str)
			}
			buf.WriteByte(op.value)
			buf.Write(cmd.Data)

		case op.length < 0:
			var maxLen uint64
			switch op.length {
			case -1:
				maxLen = 0xff
			case -2:
				maxLen = 0xffff
			default:
				maxLen = 0xffffffff
			}
			if uint64(dataLen) > maxLen {
				str := fmt.Sprintf("command %d: opcode %s cannot push %d "+
					"bytes", i, op.name, dataLen)
				return nil, scriptError(ErrInvalidScript, str)
			}

			buf.WriteByte(op.value)
			for n := 0; n < -op.length; n++ {
				buf.WriteByte(byte(dataLen >> (8 * n)))
			}
			buf.Write(cmd.Data)

		default:
			if dataLen != 0 {
				str := fmt.Sprintf("command %d: opcode %s carries no "+
					"data", i, op.name)
				return nil, scriptError(ErrInvalidScript, str)
			}
			buf.WriteByte(op.value)
		}
	}
	return buf.Bytes(), nil
}

// isSmallInt 返回操作码是否为 OP_0 或 OP_1 到 OP_16。
func isSmallInt(op byte) bool {
	return op == OP_0 || (op >= OP_1 && op <= OP_16)
}

// asSmallInt 返回小整数操作码代表的值，调用前须确认 isSmallInt 为真。
func asSmallInt(op byte) int {
	if op == OP_0 {
		return 0
	}

	return int(op - (OP_1 - 1))
}

// IsPayToPubKey 返回脚本是否为标准的支付到公钥 (P2PK) 格式。
func IsPayToPubKey(script []byte) bool {
	return isPubKeyScript(script)
}

// IsPayToPubKeyHash 返回脚本是否为标准的支付到公钥哈希 (P2PKH) 格式。
func IsPayToPubKeyHash(script []byte) bool {
	return isPubKeyHashScript(script)
}

// IsPayToScriptHash 返回脚本是否为标准的支付到脚本哈希 (P2SH) 格式。
func IsPayToScriptHash(script []byte) bool {
	return isScriptHashScript(script)
}

// IsPayToWitnessScriptHash 返回脚本是否为 P2WSH 格式。
func IsPayToWitnessScriptHash(script []byte) bool {
	return isWitnessScriptHashScript(script)
}

// IsPayToWitnessPubKeyHash 返回脚本是否为 P2WPKH 格式。
func IsPayToWitnessPubKeyHash(script []byte) bool {
	return isWitnessPubKeyHashScript(script)
}

// IsWitnessProgram 返回脚本是否为见证程序：一个小整数版本号后跟 2 到 40 字节的推送。
func IsWitnessProgram(script []byte) bool {
	return isWitnessProgramScript(script)
}

// IsNullData 返回脚本是否为空数据 (OP_RETURN) 脚本。
func IsNullData(script []byte) bool {
	return isNullDataScript(script)
}

// ExtractWitnessProgramInfo 提取见证程序的版本与程序本身。
func ExtractWitnessProgramInfo(script []byte) (int, []byte, error) {
	version, program, valid := extractWitnessProgramInfo(script)
	if !valid {
		return 0, nil, scriptError(ErrWitnessProgramWrongLength,
			"script is not a witness program, unable to extract "+
				"version or witness program")
	}

	return version, program, nil
}

// IsPushOnlyScript 返回脚本是否只包含数据推送。OP_RESERVED 也算作推送，它在执行时会失败。
func IsPushOnlyScript(script []byte) bool {
	tokenizer := MakeScriptTokenizer(script)
	for tokenizer.Next() {
		if tokenizer.Opcode() > OP_16 {
			return false
		}
	}
	return tokenizer.Err() == nil
}

// DisasmString 将脚本反汇编为一行。解析失败时字符串包含失败点之前的部分并以 "[error]" 结尾，同时返回失败原因。
func DisasmString(script []byte) (string, error) {
	var disbuf strings.Builder
	tokenizer := MakeScriptTokenizer(script)
	if tokenizer.Next() {
		disasmOpcode(&disbuf, tokenizer.op, tokenizer.Data(), true)
	}
	for tokenizer.Next() {
		disbuf.WriteByte(' ')
		disasmOpcode(&disbuf, tokenizer.op, tokenizer.Data(), true)
	}
	if tokenizer.Err() != nil {
		if tokenizer.ByteIndex() != 0 {
			disbuf.WriteByte(' ')
		}
		disbuf.WriteString("[error]")
	}
	return disbuf.String(), tokenizer.Err()
}

// removeOpcodeRaw 返回删除所有 opcode 之后的脚本。没有匹配时原样返回，不分配新切片。
// 调用前须确认脚本可以解析。
func removeOpcodeRaw(script []byte, opcode byte) []byte {
	if len(script) == 0 {
		return script
	}

	var result []byte
	var prevOffset int

	tokenizer := MakeScriptTokenizer(script)
	for tokenizer.Next() {
		if tokenizer.Opcode() == opcode {
			if result == nil {
				result = make([]byte, 0, len(script))
				result = append(result, script[:prevOffset]...)
			}
		} else if result != nil {
			result = append(result, script[prevOffset:tokenizer.ByteIndex()]...)
		}
		prevOffset = tokenizer.ByteIndex()
	}
	if result == nil {
		return script
	}
	return result
}

// isCanonicalPush 返回推送是否使用了最短的操作码。非推送操作码总是规范的。
//
// 例如值 1 可以写成 OP_1、OP_DATA_1 0x01 或 OP_PUSHDATA1 0x01 0x01，只有第一种是规范的。
func isCanonicalPush(opcode byte, data []byte) bool {
	dataLen := len(data)
	if opcode > OP_16 {
		return true
	}

	if opcode < OP_PUSHDATA1 && opcode > OP_0 && (dataLen == 1 && data[0] <= 16) {
		return false
	}
	if opcode == OP_PUSHDATA1 && dataLen < OP_PUSHDATA1 {
		return false
	}
	if opcode == OP_PUSHDATA2 && dataLen <= 0xff {
		return false
	}
	if opcode == OP_PUSHDATA4 && dataLen <= 0xffff {
		return false
	}
	return true
}

// removeOpcodeByData 删除所有包含 dataToRemove 的规范推送。没有匹配时原样返回。
func removeOpcodeByData(script []byte, dataToRemove []byte) []byte {
	if len(script) == 0 || len(dataToRemove) == 0 {
		return script
	}

	var result []byte
	var prevOffset int
	tokenizer := MakeScriptTokenizer(script)
	for tokenizer.Next() {
		// Only allocate once a match is found.
		op, data := tokenizer.Opcode(), tokenizer.Data()
		if isCanonicalPush(op, data) && bytes.Contains(data, dataToRemove) {
			if result == nil {
				fullPushLen := tokenizer.ByteIndex() - prevOffset
				result = make([]byte, 0, len(script)-fullPushLen)
				result = append(result, script[0:prevOffset]...)
			}
		} else if result != nil {
			result = append(result, script[prevOffset:tokenizer.ByteIndex()]...)
		}

		prevOffset = tokenizer.ByteIndex()
	}
	if result == nil {
		result = script
	}
	return result
}

// countSigOps 统计脚本中直到第一个解析错误为止的签名操作数。
// precise 为真时，紧跟在小整数之后的 CHECKMULTISIG 按该整数计数，否则按 MaxPubKeysPerMultiSig 计数。
func countSigOps(script []byte, precise bool) int {
	numSigOps := 0
	tokenizer := MakeScriptTokenizer(script)
	prevOp := byte(OP_INVALIDOPCODE)
	for tokenizer.Next() {
		switch tokenizer.Opcode() {
		case OP_CHECKSIG, OP_CHECKSIGVERIFY:
			numSigOps++

		case OP_CHECKMULTISIG, OP_CHECKMULTISIGVERIFY:
			// OP_0 counts as the maximum in precise mode too.
			if precise && prevOp >= OP_1 && prevOp <= OP_16 {
				numSigOps += asSmallInt(prevOp)
			} else {
				numSigOps += MaxPubKeysPerMultiSig
			}
		}

		prevOp = tokenizer.Opcode()
	}

	return numSigOps
}

// GetSigOpCount 快速统计脚本中的签名操作数：CHECKSIG 计 1，CHECKMULTISIG 计 20。
// 解析失败时返回失败点之前的计数。
func GetSigOpCount(script []byte) int {
	return countSigOps(script, false)
}

// finalOpcodeData 返回脚本最后一条指令的数据，解析失败时返回 nil。
func finalOpcodeData(script []byte) []byte {
	if len(script) == 0 {
		return nil
	}

	var data []byte
	tokenizer := MakeScriptTokenizer(script)
	for tokenizer.Next() {
		data = tokenizer.Data()
	}
	if tokenizer.Err() != nil {
		return nil
	}
	return data
}

// GetPreciseSigOpCount 返回花费 scriptPubKey 产生的签名操作数。P2SH 输出按 scriptSig 中的赎回脚本精确计数。
func GetPreciseSigOpCount(scriptSig, scriptPubKey []byte) int {
	if !isScriptHashScript(scriptPubKey) {
		return countSigOps(scriptPubKey, true)
	}

	// A P2SH spend needs a push-only unlocking script.
	if len(scriptSig) == 0 || !IsPushOnlyScript(scriptSig) {
		return 0
	}

	redeemScript := finalOpcodeData(scriptSig)
	if len(redeemScript) == 0 {
		return 0
	}

	return countSigOps(redeemScript, true)
}

// GetWitnessSigOpCount 返回花费见证程序（包括嵌套在 P2SH 中的）产生的签名操作数。
func GetWitnessSigOpCount(sigScript, pkScript []byte, witness wire.TxWitness) int {
	if isWitnessProgramScript(pkScript) {
		return getWitnessSigOps(pkScript, witness)
	}

	if isScriptHashScript(pkScript) && IsPushOnlyScript(sigScript) &&
		len(sigScript) > 0 && isWitnessProgramScript(sigScript[1:]) {
		return getWitnessSigOps(sigScript[1:], witness)
	}

	return 0
}

// getWitnessSigOps 返回版本 0 见证程序的签名操作数，其他版本计 0。
func getWitnessSigOps(pkScript []byte, witness wire.TxWitness) int {
	witnessVersion, witnessProgram, err := ExtractWitnessProgramInfo(pkScript)
	if err != nil || witnessVersion != 0 {
		return 0
	}

	switch {
	case len(witnessProgram) == payToWitnessPubKeyHashDataSize:
		return 1
	case len(witnessProgram) == payToWitnessScriptHashDataSize &&
		len(witness) > 0:

		witnessScript := witness[len(witness)-1]
		return countSigOps(witnessScript, true)
	}

	return 0
}

// checkScriptParses 在脚本无法解析时返回错误。
func checkScriptParses(script []byte) error {
	tokenizer := MakeScriptTokenizer(script)
	for tokenizer.Next() {
	}
	return tokenizer.Err()
}

// IsUnspendable 返回输出脚本是否一定无法花费：以 OP_RETURN 开头、超过大小上限或无法解析。
func IsUnspendable(pkScript []byte) bool {
	switch {
	case len(pkScript) > 0 && pkScript[0] == OP_RETURN:
		return true
	case len(pkScript) > MaxScriptSize:
		return true
	}

	return checkScriptParses(pkScript) != nil
}
