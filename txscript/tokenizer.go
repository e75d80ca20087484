// 包含脚本令牌化的逻辑，用于将脚本分解为操作码和数据。

package txscript

import (
	"encoding/binary"
	"fmt"
)

// ScriptTokenizer 逐个解析脚本中的操作码及其推送的数据，不分配内存。
//
// 典型用法：
//
//	tokenizer := MakeScriptTokenizer(script)
//	for tokenizer.Next() {
//		// tokenizer.Opcode(), tokenizer.Data()
//	}
//	if err := tokenizer.Err(); err != nil {
//		// 脚本无法解析
//	}
type ScriptTokenizer struct {
	script []byte
	offset int
	op     *opcode
	data   []byte
	err    error
}

// MakeScriptTokenizer 为脚本创建一个令牌器。
func MakeScriptTokenizer(script []byte) ScriptTokenizer {
	return ScriptTokenizer{script: script}
}

// Done 报告是否已解析完所有操作码或遇到解析错误。
func (t *ScriptTokenizer) Done() bool {
	return t.err != nil || t.offset >= len(t.script)
}

// Next 解析下一个操作码。成功时返回 true；到达末尾或解析失败时返回 false，
// 失败原因可通过 Err 获取。
func (t *ScriptTokenizer) Next() bool {
	if t.Done() {
		return false
	}

	op := &opcodeArray[t.script[t.offset]]
	switch {
	// No additional data.
	case op.length == 1:
		t.offset++
		t.op = op
		t.data = nil
		return true

	// Data pushes of a fixed size.
	case op.length > 1:
		script := t.script[t.offset:]
		if len(script) < op.length {
			str := fmt.Sprintf("opcode %s requires %d bytes, but script "+
				"only has %d remaining", op.name, op.length, len(script))
			t.err = scriptError(ErrInvalidScript, str)
			return false
		}

		t.offset += op.length
		t.op = op
		t.data = script[1:op.length]
		return true

	// Data pushes with a little-endian length prefix.
	case op.length < 0:
		script := t.script[t.offset+1:]
		prefixLen := -op.length
		if len(script) < prefixLen {
			str := fmt.Sprintf("opcode %s requires %d bytes, but script "+
				"only has %d remaining", op.name, prefixLen, len(script))
			t.err = scriptError(ErrInvalidScript, str)
			return false
		}

		var dataLen uint64
		switch prefixLen {
		case 1:
			dataLen = uint64(script[0])
		case 2:
			dataLen = uint64(binary.LittleEndian.Uint16(script[:2]))
		case 4:
			dataLen = uint64(binary.LittleEndian.Uint32(script[:4]))
		default:
			str := fmt.Sprintf("invalid opcode length %d", op.length)
			t.err = scriptError(ErrInternal, str)
			return false
		}

		script = script[prefixLen:]
		if dataLen > uint64(len(script)) {
			str := fmt.Sprintf("opcode %s pushes %d bytes, but script only "+
				"has %d remaining", op.name, dataLen, len(script))
			t.err = scriptError(ErrInvalidScript, str)
			return false
		}

		t.op = op
		t.data = script[:dataLen]
		t.offset += 1 + prefixLen + int(dataLen)
		return true
	}

	str := fmt.Sprintf("invalid opcode length %d", op.length)
	t.err = scriptError(ErrInternal, str)
	return false
}

// Script 返回正在解析的完整脚本。
func (t *ScriptTokenizer) Script() []byte {
	return t.script
}

// ByteIndex 返回下一个待解析操作码的字节偏移。
func (t *ScriptTokenizer) ByteIndex() int {
	return t.offset
}

// Opcode 返回当前操作码。
func (t *ScriptTokenizer) Opcode() byte {
	return t.op.value
}

// Data 返回当前操作码推送的数据，非推送操作码返回 nil。
func (t *ScriptTokenizer) Data() []byte {
	return t.data
}

// Err 返回解析错误，没有错误时返回 nil。
func (t *ScriptTokenizer) Err() error {
	return t.err
}
