package txscript

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qinglongcn/btccore/wire"
)

// repeatByte 返回 n 个 b。
func repeatByte(b byte, n int) []byte {
	return bytes.Repeat([]byte{b}, n)
}

// concat 拼接多个字节切片。
func concat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

// TestIsPushOnlyScript 检查只含数据推送的判断。
func TestIsPushOnlyScript(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		script []byte
		want   bool
	}{
		{"empty", nil, true},
		{"small ints and data", []byte{OP_0, OP_DATA_1, 0x01, OP_1NEGATE, OP_16}, true},
		{"reserved counts as push", []byte{OP_RESERVED}, true},
		{"pushdata1", []byte{OP_PUSHDATA1, 0x01, 0xff}, true},
		{"nop", []byte{OP_1, OP_NOP}, false},
		{"checksig", []byte{OP_CHECKSIG}, false},
		{"malformed", []byte{0x02, 0x01}, false},
	}

	for _, test := range tests {
		require.Equal(t, test.want, IsPushOnlyScript(test.script), test.name)
	}
}

// TestDisasmString 检查单行反汇编，包括解析失败时的输出。
func TestDisasmString(t *testing.T) {
	t.Parallel()

	p2pkh := concat([]byte{OP_DUP, OP_HASH160, OP_DATA_20},
		repeatByte(0x11, 20), []byte{OP_EQUALVERIFY, OP_CHECKSIG})

	tests := []struct {
		name    string
		script  []byte
		want    string
		invalid bool
	}{
		{"empty", nil, "", false},
		{
			"p2pkh",
			p2pkh,
			"OP_DUP OP_HASH160 " + strings.Repeat("11", 20) +
				" OP_EQUALVERIFY OP_CHECKSIG",
			false,
		},
		{"small ints", []byte{OP_0, OP_16, OP_1NEGATE}, "0 16 -1", false},
		{
			"cltv",
			[]byte{OP_0, OP_1NEGATE, OP_16, OP_CHECKLOCKTIMEVERIFY},
			"0 -1 16 OP_CHECKLOCKTIMEVERIFY",
			false,
		},
		{"pushdata2", []byte{OP_PUSHDATA2, 0x02, 0x00, 0xab, 0xcd}, "abcd", false},
		{"truncated after op", []byte{OP_1, OP_DATA_20, 0x01}, "1 [error]", true},
		{"truncated first op", []byte{OP_DATA_20, 0x01}, "[error]", true},
	}

	for _, test := range tests {
		got, err := DisasmString(test.script)
		require.Equal(t, test.want, got, test.name)
		if test.invalid {
			require.True(t, IsErrorCode(err, ErrInvalidScript), test.name)
		} else {
			require.NoError(t, err, test.name)
		}
	}
}

// TestSigOpCounts 比较快速计数与精确计数。
func TestSigOpCounts(t *testing.T) {
	t.Parallel()

	script := []byte{OP_CHECKSIG, OP_CHECKSIGVERIFY, OP_2, OP_CHECKMULTISIG}
	require.Equal(t, 22, GetSigOpCount(script))
	require.Equal(t, 4, GetPreciseSigOpCount(nil, script))

	// OP_0 before CHECKMULTISIG counts as the maximum.
	script = []byte{OP_0, OP_CHECKMULTISIGVERIFY}
	require.Equal(t, MaxPubKeysPerMultiSig, GetPreciseSigOpCount(nil, script))

	// Counting stops at the first parse failure.
	require.Equal(t, 1, GetSigOpCount([]byte{OP_CHECKSIG, OP_DATA_20, 0x01,
		OP_CHECKSIG}))
}

// TestGetPreciseSigOpCountP2SH 检查 P2SH 输出按赎回脚本计数。
func TestGetPreciseSigOpCountP2SH(t *testing.T) {
	t.Parallel()

	pubKey := concat([]byte{0x02}, repeatByte(0x22, 32))
	redeem := concat([]byte{OP_2, OP_DATA_33}, pubKey, []byte{OP_DATA_33},
		pubKey, []byte{OP_DATA_33}, pubKey, []byte{OP_3, OP_CHECKMULTISIG})
	p2sh := concat([]byte{OP_HASH160, OP_DATA_20}, repeatByte(0x33, 20),
		[]byte{OP_EQUAL})

	sigScript, err := NewScriptBuilder().AddOp(OP_0).AddData(redeem).Script()
	require.NoError(t, err)

	require.Equal(t, 3, GetPreciseSigOpCount(sigScript, p2sh))
	require.Equal(t, 0, GetPreciseSigOpCount(nil, p2sh))
	require.Equal(t, 0, GetPreciseSigOpCount(
		append([]byte{OP_CHECKSIG}, sigScript...), p2sh))

	// Without P2SH the redeem script is just data.
	require.Equal(t, 0, GetPreciseSigOpCount(sigScript, repeatByte(OP_NOP, 1)))
}

// TestGetWitnessSigOpCount 检查原生与嵌套见证程序的签名操作计数。
func TestGetWitnessSigOpCount(t *testing.T) {
	t.Parallel()

	p2wpkh := concat([]byte{OP_0, OP_DATA_20}, repeatByte(0x44, 20))
	p2wsh := concat([]byte{OP_0, OP_DATA_32}, repeatByte(0x55, 32))
	p2tr := concat([]byte{OP_1, OP_DATA_32}, repeatByte(0x66, 32))
	p2sh := concat([]byte{OP_HASH160, OP_DATA_20}, repeatByte(0x77, 20),
		[]byte{OP_EQUAL})
	witnessScript := []byte{OP_CHECKSIG, OP_1, OP_CHECKMULTISIG}

	tests := []struct {
		name      string
		sigScript []byte
		pkScript  []byte
		witness   wire.TxWitness
		want      int
	}{
		{"p2wpkh", nil, p2wpkh, nil, 1},
		{"p2wsh", nil, p2wsh, wire.TxWitness{{0x01}, witnessScript}, 2},
		{"p2wsh without witness", nil, p2wsh, nil, 0},
		{"taproot", nil, p2tr, wire.TxWitness{{0x01}}, 0},
		{
			"nested p2wpkh",
			concat([]byte{byte(len(p2wpkh))}, p2wpkh),
			p2sh,
			nil,
			1,
		},
		{"plain p2sh", []byte{OP_1}, p2sh, nil, 0},
		{"legacy", nil, []byte{OP_CHECKSIG}, nil, 0},
	}

	for _, test := range tests {
		got := GetWitnessSigOpCount(test.sigScript, test.pkScript, test.witness)
		require.Equal(t, test.want, got, test.name)
	}
}

// TestExtractWitnessProgramInfo 检查见证程序的版本与程序提取。
func TestExtractWitnessProgramInfo(t *testing.T) {
	t.Parallel()

	program := repeatByte(0x44, 20)
	version, got, err := ExtractWitnessProgramInfo(
		concat([]byte{OP_0, OP_DATA_20}, program))
	require.NoError(t, err)
	require.Zero(t, version)
	require.Equal(t, program, got)

	version, _, err = ExtractWitnessProgramInfo(
		concat([]byte{OP_16, 0x02}, []byte{0x01, 0x02}))
	require.NoError(t, err)
	require.Equal(t, 16, version)

	_, _, err = ExtractWitnessProgramInfo([]byte{OP_0, OP_DATA_1, 0x01})
	require.True(t, IsErrorCode(err, ErrWitnessProgramWrongLength))
}

// TestIsUnspendable 检查一定无法花费的输出脚本。
func TestIsUnspendable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		script []byte
		want   bool
	}{
		{"op_return", []byte{OP_RETURN, OP_DATA_1, 0x01}, true},
		{"malformed", []byte{OP_DATA_20, 0x01}, true},
		{"too big", make([]byte, MaxScriptSize+1), true},
		{"empty", nil, false},
		{"anyone can spend", []byte{OP_TRUE}, false},
	}

	for _, test := range tests {
		require.Equal(t, test.want, IsUnspendable(test.script), test.name)
	}
}

// TestIsCanonicalPush 检查推送是否使用最短编码。
func TestIsCanonicalPush(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		opcode byte
		data   []byte
		want   bool
	}{
		{"small int as data", OP_DATA_1, []byte{0x05}, false},
		{"small int", OP_5, nil, true},
		{"byte above 16", OP_DATA_1, []byte{0x11}, true},
		{"pushdata1 short", OP_PUSHDATA1, make([]byte, 75), false},
		{"pushdata1", OP_PUSHDATA1, make([]byte, 76), true},
		{"pushdata2 short", OP_PUSHDATA2, make([]byte, 255), false},
		{"pushdata2", OP_PUSHDATA2, make([]byte, 256), true},
		{"pushdata4 short", OP_PUSHDATA4, make([]byte, 65535), false},
		{"not a push", OP_CHECKSIG, nil, true},
	}

	for _, test := range tests {
		require.Equal(t, test.want, isCanonicalPush(test.opcode, test.data),
			test.name)
	}
}

// TestRemoveOpcodes 检查签名哈希计算前对脚本的裁剪。
func TestRemoveOpcodes(t *testing.T) {
	t.Parallel()

	script := []byte{OP_CODESEPARATOR, OP_1, OP_CODESEPARATOR, OP_2}
	require.Equal(t, []byte{OP_1, OP_2}, removeOpcodeRaw(script, OP_CODESEPARATOR))

	unchanged := []byte{OP_1, OP_2}
	require.Equal(t, unchanged, removeOpcodeRaw(unchanged, OP_CODESEPARATOR))

	// Only canonical pushes of the data are removed.
	data := []byte{0x01, 0x02, 0x03}
	script = []byte{
		0x03, 0x01, 0x02, 0x03,
		OP_CHECKSIG,
		OP_PUSHDATA1, 0x03, 0x01, 0x02, 0x03,
	}
	require.Equal(t, []byte{OP_CHECKSIG, OP_PUSHDATA1, 0x03, 0x01, 0x02, 0x03},
		removeOpcodeByData(script, data))
	require.Equal(t, unchanged, removeOpcodeByData(unchanged, data))
}
