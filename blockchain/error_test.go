package blockchain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestErrorCodeStringer 确保每个错误码都有名称。
func TestErrorCodeStringer(t *testing.T) {
	t.Parallel()

	require.Len(t, errorCodeStrings, int(numErrorCodes))
	for code := ErrInsufficientWork; code < numErrorCodes; code++ {
		require.Equal(t, errorCodeStrings[code], code.String())
	}
	require.Equal(t, "Unknown ErrorCode (9999)", ErrorCode(9999).String())
}

// TestRuleError 检查错误描述、错误码匹配与底层错误的解包。
func TestRuleError(t *testing.T) {
	t.Parallel()

	err := ruleError(ErrBadMerkleRoot, "bad root")
	require.Equal(t, "bad root", err.Error())
	require.Nil(t, err.Unwrap())
	require.True(t, IsErrorCode(err, ErrBadMerkleRoot))
	require.False(t, IsErrorCode(err, ErrDuplicateTx))

	wrapped := fmt.Errorf("block 1: %w", err)
	require.True(t, IsErrorCode(wrapped, ErrBadMerkleRoot))

	inner := errors.New("engine failure")
	withCause := RuleError{ErrorCode: ErrScriptValidation,
		Description: "input 0", Err: inner}
	require.ErrorIs(t, withCause, inner)

	require.False(t, IsErrorCode(nil, ErrBadMerkleRoot))
	require.False(t, IsErrorCode(inner, ErrScriptValidation))
}
