package txscript

import (
	"bytes"
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qinglongcn/btccore/chainhash"
	"github.com/qinglongcn/btccore/wire"
)

// mustScript 返回构建器生成的脚本，出错时 panic，只用于测试中的固定脚本。
func mustScript(b *ScriptBuilder) []byte {
	script, err := b.Script()
	if err != nil {
		panic(err)
	}
	return script
}

// TestExecute 执行不依赖交易的脚本对，检查结果。
func TestExecute(t *testing.T) {
	t.Parallel()

	tooManyOps := bytes.Repeat([]byte{OP_NOP}, MaxOpsPerScript+1)
	tooManyOps = append(tooManyOps, OP_1)

	tooManyItems := bytes.Repeat([]byte{OP_1}, MaxStackSize+1)

	bigElement := mustScript(NewScriptBuilder().
		AddFullData(make([]byte, MaxScriptElementSize+1)).AddOp(OP_DROP).
		AddOp(OP_1))

	tests := []struct {
		name      string
		unlocking []byte
		locking   []byte
		flags     ScriptFlags
		err       ErrorCode
	}{
		{
			name:      "dup equal",
			unlocking: []byte{OP_DATA_1, 0x05},
			locking:   []byte{OP_DUP, OP_EQUAL},
			err:       -1,
		},
		{
			name:    "dup equal on empty stack",
			locking: []byte{OP_DUP, OP_EQUAL},
			err:     ErrStackUnderflow,
		},
		{
			name:    "both scripts empty",
			err:     ErrEvalFalse,
		},
		{
			name:      "unlocking stack feeds locking script",
			unlocking: []byte{OP_2, OP_3},
			locking:   []byte{OP_ADD, OP_5, OP_NUMEQUAL},
			err:       -1,
		},
		{
			name:    "arithmetic and comparison",
			locking: []byte{OP_16, OP_1NEGATE, OP_SUB, OP_DATA_1, 0x11, OP_NUMEQUALVERIFY, OP_3, OP_2, OP_7, OP_WITHIN},
			err:     -1,
		},
		{
			name:    "false result",
			locking: []byte{OP_1, OP_2, OP_EQUAL},
			err:     ErrEvalFalse,
		},
		{
			name:      "negative zero is false",
			unlocking: []byte{OP_DATA_1, 0x80},
			locking:   []byte{OP_NOP},
			err:       ErrEvalFalse,
		},
		{
			name:    "empty final stack",
			locking: []byte{OP_1, OP_DROP},
			err:     ErrEmptyStack,
		},
		{
			name:    "if else endif",
			locking: []byte{OP_0, OP_IF, OP_0, OP_ELSE, OP_1, OP_ENDIF},
			err:     -1,
		},
		{
			name:    "notif nested in unexecuted branch",
			locking: []byte{OP_0, OP_IF, OP_NOTIF, OP_RETURN, OP_ENDIF, OP_ENDIF, OP_1},
			err:     -1,
		},
		{
			name:    "unbalanced if",
			locking: []byte{OP_1, OP_IF, OP_1},
			err:     ErrUnbalancedConditional,
		},
		{
			name:    "endif without if",
			locking: []byte{OP_1, OP_ENDIF},
			err:     ErrUnbalancedConditional,
		},
		{
			name:      "conditional across scripts",
			unlocking: []byte{OP_1, OP_IF},
			locking:   []byte{OP_ENDIF, OP_1},
			err:       ErrUnbalancedConditional,
		},
		{
			name:    "disabled opcode executed",
			locking: []byte{OP_2, OP_2, OP_MUL},
			err:     ErrInvalidScript,
		},
		{
			name:    "disabled opcode in unexecuted branch",
			locking: []byte{OP_0, OP_IF, OP_CAT, OP_ENDIF, OP_1},
			err:     ErrInvalidScript,
		},
		{
			name:    "verif in unexecuted branch",
			locking: []byte{OP_0, OP_IF, OP_VERIF, OP_ENDIF, OP_1},
			err:     ErrInvalidScript,
		},
		{
			name:    "reserved opcode executed",
			locking: []byte{OP_1, OP_RESERVED},
			err:     ErrInvalidScript,
		},
		{
			name:    "reserved opcode in unexecuted branch",
			locking: []byte{OP_0, OP_IF, OP_RESERVED, OP_VER, OP_ENDIF, OP_1},
			err:     -1,
		},
		{
			name:    "unknown opcode executed",
			locking: []byte{OP_1, 0xba},
			err:     ErrInvalidScript,
		},
		{
			name:    "unknown opcode in unexecuted branch",
			locking: []byte{OP_0, OP_IF, 0xba, 0xff, OP_ENDIF, OP_1},
			err:     -1,
		},
		{
			name:    "malformed push",
			locking: []byte{OP_1, 0x02, 0x01},
			err:     ErrInvalidScript,
		},
		{
			name:    "return",
			locking: []byte{OP_1, OP_RETURN},
			err:     ErrEarlyReturn,
		},
		{
			name:    "verify false",
			locking: []byte{OP_0, OP_VERIFY, OP_1},
			err:     ErrVerify,
		},
		{
			name:    "equalverify",
			locking: []byte{OP_1, OP_2, OP_EQUALVERIFY, OP_1},
			err:     ErrEqualVerify,
		},
		{
			name:    "pick and roll",
			locking: []byte{OP_1, OP_2, OP_3, OP_2, OP_PICK, OP_1, OP_EQUALVERIFY, OP_2, OP_ROLL, OP_1, OP_EQUALVERIFY, OP_DEPTH, OP_2, OP_EQUAL},
			err:     -1,
		},
		{
			name:    "pick underflow",
			locking: []byte{OP_1, OP_5, OP_PICK},
			err:     ErrStackUnderflow,
		},
		{
			name:    "alt stack",
			locking: []byte{OP_7, OP_TOALTSTACK, OP_FROMALTSTACK, OP_7, OP_EQUAL},
			err:     -1,
		},
		{
			name:    "from empty alt stack",
			locking: []byte{OP_FROMALTSTACK},
			err:     ErrStackUnderflow,
		},
		{
			name:    "alt stack cleared between scripts",
			unlocking: []byte{OP_1, OP_TOALTSTACK},
			locking: []byte{OP_FROMALTSTACK},
			err:     ErrStackUnderflow,
		},
		{
			name:    "number too big",
			locking: []byte{0x05, 1, 2, 3, 4, 5, OP_1ADD},
			err:     ErrNumberTooBig,
		},
		{
			name:    "too many operations",
			locking: tooManyOps,
			err:     ErrTooManyOperations,
		},
		{
			name:    "stack overflow",
			locking: tooManyItems,
			err:     ErrStackOverflow,
		},
		{
			name:    "element too big",
			locking: bigElement,
			err:     ErrElementTooBig,
		},
		{
			name:    "checksig without transaction",
			locking: []byte{OP_DATA_1, 0x01, OP_DATA_1, 0x02, OP_CHECKSIG},
			err:     ErrNoTxContext,
		},
		{
			name:    "empty signature checksig",
			locking: []byte{OP_0, OP_DATA_1, 0x02, OP_CHECKSIG, OP_NOT},
			err:     -1,
		},
		{
			name:    "cltv without transaction",
			locking: []byte{OP_1, OP_CHECKLOCKTIMEVERIFY},
			flags:   ScriptVerifyCheckLockTimeVerify,
			err:     ErrNoTxContext,
		},
		{
			name:    "cltv as nop",
			locking: []byte{OP_1, OP_CHECKLOCKTIMEVERIFY},
			err:     -1,
		},
		{
			name:    "cltv negative",
			locking: []byte{OP_1NEGATE, OP_CHECKLOCKTIMEVERIFY},
			flags:   ScriptVerifyCheckLockTimeVerify,
			err:     ErrNegativeLockTime,
		},
		{
			name:    "discouraged nop",
			locking: []byte{OP_NOP10, OP_1},
			flags:   ScriptDiscourageUpgradableNops,
			err:     ErrDiscourageUpgradableNOPs,
		},
		{
			name:      "minimal data",
			unlocking: []byte{OP_DATA_1, 0x05},
			locking:   []byte{OP_5, OP_EQUAL},
			flags:     ScriptVerifyMinimalData,
			err:       ErrMinimalData,
		},
		{
			name:      "minimal data satisfied",
			unlocking: []byte{OP_5},
			locking:   []byte{OP_5, OP_EQUAL},
			flags:     ScriptVerifyMinimalData,
			err:       -1,
		},
		{
			name:      "sig push only",
			unlocking: []byte{OP_1, OP_NOP},
			locking:   []byte{OP_1},
			flags:     ScriptVerifySigPushOnly,
			err:       ErrNotPushOnly,
		},
		{
			name:    "clean stack without p2sh",
			locking: []byte{OP_1},
			flags:   ScriptVerifyCleanStack,
			err:     ErrInvalidFlags,
		},
		{
			name:    "clean stack",
			locking: []byte{OP_1, OP_1},
			flags:   ScriptBip16 | ScriptVerifyCleanStack,
			err:     ErrCleanStack,
		},
		{
			name:    "witness without p2sh",
			locking: []byte{OP_1},
			flags:   ScriptVerifyWitness,
			err:     ErrInvalidFlags,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			err := Execute(test.locking, test.unlocking, nil, test.flags)
			if test.err == -1 {
				require.NoError(t, err)
				return
			}
			require.True(t, IsErrorCode(err, test.err),
				"got error %v, want %v", err, test.err)
		})
	}
}

// TestHashOpcodes 确保哈希操作码对空输入的结果与已知摘要一致。
func TestHashOpcodes(t *testing.T) {
	t.Parallel()

	emptySha256 := sha256.Sum256(nil)
	tests := []struct {
		op     byte
		digest []byte
	}{
		{OP_RIPEMD160, hexToBytes("9c1185a5c5e9fc54612808977ee8f548b2258d31")},
		{OP_SHA1, hexToBytes("da39a3ee5e6b4b0d3255bfef95601890afd80709")},
		{OP_SHA256, emptySha256[:]},
		{OP_HASH160, hexToBytes("b472a266d0bd89c13706a4132ccfb16f7c3b9fcb")},
		{OP_HASH256, chainhash.DoubleHashB(nil)},
	}

	for _, test := range tests {
		locking := mustScript(NewScriptBuilder().AddOp(OP_0).
			AddOp(test.op).AddData(test.digest).AddOp(OP_EQUAL))
		err := Execute(locking, nil, nil, 0)
		require.NoError(t, err, opcodeArray[test.op].name)
	}
}

// TestPayToScriptHash 确保 P2SH 的赎回脚本作为第三个脚本执行。
func TestPayToScriptHash(t *testing.T) {
	t.Parallel()

	p2sh := func(redeem []byte) []byte {
		script, err := payToScriptHashScript(chainhash.Hash160(redeem))
		require.NoError(t, err)
		return script
	}

	redeemTrue := []byte{OP_2, OP_EQUAL}
	unlocking := mustScript(NewScriptBuilder().AddOp(OP_2).AddData(redeemTrue))
	require.NoError(t, Execute(p2sh(redeemTrue), unlocking, nil, ScriptBip16))

	// The redeem script sees only the stack below it.
	unlocking = mustScript(NewScriptBuilder().AddOp(OP_3).AddData(redeemTrue))
	err := Execute(p2sh(redeemTrue), unlocking, nil, ScriptBip16)
	require.True(t, IsErrorCode(err, ErrEvalFalse), "got %v", err)

	// Without BIP16 only the hash is checked.
	require.NoError(t, Execute(p2sh(redeemTrue), unlocking, nil, 0))

	unlocking = append([]byte{OP_NOP}, unlocking...)
	err = Execute(p2sh(redeemTrue), unlocking, nil, ScriptBip16)
	require.True(t, IsErrorCode(err, ErrNotPushOnly), "got %v", err)
}

// TestWitnessProgramWithoutTx 检查不依赖签名的见证程序分支。
func TestWitnessProgramWithoutTx(t *testing.T) {
	t.Parallel()

	const flags = ScriptBip16 | ScriptVerifyWitness

	v1Program := append([]byte{OP_1, OP_DATA_32}, repeatByte(0x01, 32)...)
	require.NoError(t, Execute(v1Program, nil, nil, flags))
	require.NoError(t, Execute(v1Program, nil, nil,
		flags|ScriptVerifyCleanStack))

	err := Execute(v1Program, nil, nil,
		flags|ScriptVerifyDiscourageUpgradeableWitnessProgram)
	require.True(t, IsErrorCode(err, ErrDiscourageUpgradableWitnessProgram),
		"got %v", err)

	// An unknown version whose program is false fails like any other
	// script, whatever the witness holds.
	unknownFalse := []byte{OP_16, 0x02, 0x00, 0x00}
	unknownTx := wire.NewMsgTx(2)
	unknownTx.AddTxIn(&wire.TxIn{
		Witness:  wire.TxWitness{{0x01}},
		Sequence: wire.MaxTxInSequenceNum,
	})
	err = Execute(unknownFalse, nil, &SigHashContext{Tx: unknownTx}, flags)
	require.True(t, IsErrorCode(err, ErrEvalFalse), "got %v", err)

	zeroProgram := append([]byte{OP_1, OP_DATA_32}, make([]byte, 32)...)
	err = Execute(zeroProgram, nil, nil, flags)
	require.True(t, IsErrorCode(err, ErrEvalFalse), "got %v", err)

	p2wpkh := append([]byte{OP_0, OP_DATA_20}, make([]byte, 20)...)
	err = Execute(p2wpkh, nil, nil, flags)
	require.True(t, IsErrorCode(err, ErrWitnessProgramMismatch), "got %v", err)

	err = Execute(p2wpkh, []byte{OP_1}, nil, flags)
	require.True(t, IsErrorCode(err, ErrWitnessMalleated), "got %v", err)

	// P2WSH whose witness script needs no signatures.
	witnessScript := []byte{OP_3, OP_EQUAL}
	scriptHash := sha256.Sum256(witnessScript)
	p2wsh := append([]byte{OP_0, OP_DATA_32}, scriptHash[:]...)

	tx := wire.NewMsgTx(2)
	tx.AddTxIn(&wire.TxIn{
		Witness:  wire.TxWitness{{0x03}, witnessScript},
		Sequence: wire.MaxTxInSequenceNum,
	})
	ctx := &SigHashContext{Tx: tx}
	require.NoError(t, Execute(p2wsh, nil, ctx, flags))

	tx.TxIn[0].Witness = wire.TxWitness{{0x04}, witnessScript}
	err = Execute(p2wsh, nil, ctx, flags)
	require.True(t, IsErrorCode(err, ErrEvalFalse), "got %v", err)

	tx.TxIn[0].Witness = wire.TxWitness{{0x03}, {OP_3, OP_EQUAL, OP_NOP}}
	err = Execute(p2wsh, nil, ctx, flags)
	require.True(t, IsErrorCode(err, ErrWitnessProgramMismatch), "got %v", err)

	// A witness on an input that does not spend a witness program.
	tx.TxIn[0].Witness = wire.TxWitness{{0x01}}
	err = Execute([]byte{OP_1}, nil, ctx, flags)
	require.True(t, IsErrorCode(err, ErrWitnessUnexpected), "got %v", err)
}

// TestEngineStep 逐步执行并检查栈与反汇编。
func TestEngineStep(t *testing.T) {
	t.Parallel()

	vm, err := newEngine([]byte{OP_DUP, OP_ADD}, []byte{OP_2}, nil, 0, nil)
	require.NoError(t, err)

	dis, err := vm.DisasmPC()
	require.NoError(t, err)
	require.Equal(t, "00:0000: OP_2", dis)

	done, err := vm.Step()
	require.NoError(t, err)
	require.False(t, done)
	require.Equal(t, [][]byte{{0x02}}, vm.GetStack())

	dis, err = vm.DisasmPC()
	require.NoError(t, err)
	require.Equal(t, "01:0000: OP_DUP", dis)

	done, err = vm.Step()
	require.NoError(t, err)
	require.False(t, done)
	require.Equal(t, [][]byte{{0x02}, {0x02}}, vm.GetStack())

	done, err = vm.Step()
	require.NoError(t, err)
	require.True(t, done)
	require.Equal(t, [][]byte{{0x04}}, vm.GetStack())

	_, err = vm.Step()
	require.True(t, IsErrorCode(err, ErrInvalidProgramCounter), "got %v", err)
	require.NoError(t, vm.CheckErrorCondition(true))

	dis, err = vm.DisasmScript(1)
	require.NoError(t, err)
	require.Equal(t, "01:0000: OP_DUP\n01:0001: OP_ADD\n", dis)

	_, err = vm.DisasmScript(2)
	require.True(t, IsErrorCode(err, ErrInvalidIndex), "got %v", err)

	vm.SetAltStack([][]byte{{0x01}, {0x02}})
	require.Equal(t, [][]byte{{0x01}, {0x02}}, vm.GetAltStack())
}

// TestCheckErrorConditionUnfinished 确保脚本未执行完时不能判定结果。
func TestCheckErrorConditionUnfinished(t *testing.T) {
	t.Parallel()

	vm, err := newEngine([]byte{OP_1, OP_1}, nil, nil, 0, nil)
	require.NoError(t, err)

	_, err = vm.Step()
	require.NoError(t, err)

	err = vm.CheckErrorCondition(false)
	require.True(t, IsErrorCode(err, ErrScriptUnfinished), "got %v", err)
}

// TestNewEngineRequiresContext 确保 NewEngine 需要交易与有效的输入索引。
func TestNewEngineRequiresContext(t *testing.T) {
	t.Parallel()

	_, err := NewEngine([]byte{OP_1}, nil, 0, nil)
	require.True(t, IsErrorCode(err, ErrNoTxContext), "got %v", err)

	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{Sequence: wire.MaxTxInSequenceNum})
	_, err = NewEngine([]byte{OP_1}, &SigHashContext{Tx: tx, InputIndex: 1}, 0, nil)
	require.True(t, IsErrorCode(err, ErrInvalidIndex), "got %v", err)

	vm, err := NewEngine([]byte{OP_1}, &SigHashContext{Tx: tx}, 0, nil)
	require.NoError(t, err)
	require.NoError(t, vm.Execute())
}
