package txscript

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestScriptBuilderAddInt64 检查整数的最短编码。
func TestScriptBuilderAddInt64(t *testing.T) {
	t.Parallel()

	tests := []struct {
		val      int64
		expected []byte
	}{
		{0, []byte{OP_0}},
		{-1, []byte{OP_1NEGATE}},
		{1, []byte{OP_1}},
		{16, []byte{OP_16}},
		{17, []byte{OP_DATA_1, 0x11}},
		{127, []byte{OP_DATA_1, 0x7f}},
		{128, []byte{0x02, 0x80, 0x00}},
		{255, []byte{0x02, 0xff, 0x00}},
		{256, []byte{0x02, 0x00, 0x01}},
		{-2, []byte{OP_DATA_1, 0x82}},
		{-128, []byte{0x02, 0x80, 0x80}},
		{2147483647, []byte{0x04, 0xff, 0xff, 0xff, 0x7f}},
		{-2147483648, []byte{0x05, 0x00, 0x00, 0x00, 0x80, 0x80}},
	}

	builder := NewScriptBuilder()
	for _, test := range tests {
		script, err := builder.Reset().AddInt64(test.val).Script()
		require.NoError(t, err, "val %d", test.val)
		require.Equal(t, test.expected, script, "val %d", test.val)
	}
}

// TestScriptBuilderAddData 检查数据推送选择的操作码。
func TestScriptBuilderAddData(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     []byte
		expected []byte
	}{
		{"empty", nil, []byte{OP_0}},
		{"zero byte", []byte{0x00}, []byte{OP_0}},
		{"small int", []byte{0x01}, []byte{OP_1}},
		{"sixteen", []byte{0x10}, []byte{OP_16}},
		{"seventeen", []byte{0x11}, []byte{OP_DATA_1, 0x11}},
		{"negative one", []byte{0x81}, []byte{OP_1NEGATE}},
		{"two bytes", []byte{0x01, 0x02}, []byte{0x02, 0x01, 0x02}},
		{
			"75 bytes",
			bytes.Repeat([]byte{0x49}, 75),
			append([]byte{OP_DATA_75}, bytes.Repeat([]byte{0x49}, 75)...),
		},
		{
			"76 bytes",
			bytes.Repeat([]byte{0x49}, 76),
			append([]byte{OP_PUSHDATA1, 76}, bytes.Repeat([]byte{0x49}, 76)...),
		},
		{
			"256 bytes",
			bytes.Repeat([]byte{0x49}, 256),
			append([]byte{OP_PUSHDATA2, 0x00, 0x01}, bytes.Repeat([]byte{0x49}, 256)...),
		},
		{
			"max element",
			bytes.Repeat([]byte{0x49}, MaxScriptElementSize),
			append([]byte{OP_PUSHDATA2, 0x08, 0x02},
				bytes.Repeat([]byte{0x49}, MaxScriptElementSize)...),
		},
	}

	for _, test := range tests {
		script, err := NewScriptBuilder().AddData(test.data).Script()
		require.NoError(t, err, test.name)
		require.Equal(t, test.expected, script, test.name)
	}
}

// TestScriptBuilderLimits 检查脚本与元素大小限制，以及出错后调用不再生效。
func TestScriptBuilderLimits(t *testing.T) {
	t.Parallel()

	_, err := NewScriptBuilder().
		AddData(make([]byte, MaxScriptElementSize+1)).Script()
	require.True(t, IsErrorCode(err, ErrElementTooBig), "got %v", err)

	// AddFullData skips the element limit.
	script, err := NewScriptBuilder().
		AddFullData(make([]byte, MaxScriptElementSize+1)).Script()
	require.NoError(t, err)
	require.Len(t, script, MaxScriptElementSize+4)

	builder := NewScriptBuilder().AddFullData(make([]byte, MaxScriptSize-3))
	script, err = builder.Script()
	require.NoError(t, err)
	require.Len(t, script, MaxScriptSize)

	script, err = builder.AddOp(OP_1).AddData([]byte{0x01}).Script()
	require.True(t, IsErrorCode(err, ErrScriptTooBig), "got %v", err)
	require.Len(t, script, MaxScriptSize)

	script, err = builder.Reset().AddOps([]byte{OP_1, OP_2}).Script()
	require.NoError(t, err)
	require.Equal(t, []byte{OP_1, OP_2}, script)

	_, err = builder.AddOps(make([]byte, MaxScriptSize)).Script()
	require.True(t, IsErrorCode(err, ErrScriptTooBig), "got %v", err)

	_, err = builder.Reset().AddFullData(make([]byte, MaxScriptSize-4)).
		AddInt64(1).Script()
	require.NoError(t, err)

	_, err = builder.AddInt64(2).Script()
	require.True(t, IsErrorCode(err, ErrScriptTooBig), "got %v", err)
}
