package txscript

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
)

// TestAsBool 确保全零与负零为假，其余为真。
func TestAsBool(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   []byte
		want bool
	}{
		{nil, false},
		{[]byte{}, false},
		{[]byte{0x00}, false},
		{[]byte{0x00, 0x00}, false},
		{[]byte{0x80}, false},
		{[]byte{0x00, 0x80}, false},
		{[]byte{0x01}, true},
		{[]byte{0x80, 0x00}, true},
		{[]byte{0x00, 0x81}, true},
	}

	for _, test := range tests {
		require.Equal(t, test.want, asBool(test.in), "asBool(%x)", test.in)
	}
}

// TestStack 对栈的每种操作检查结果栈或错误码。
func TestStack(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		before    [][]byte
		operation func(*stack) error
		err       ErrorCode
		after     [][]byte
	}{
		{
			name:   "noop",
			before: [][]byte{{1}, {2}},
			operation: func(s *stack) error {
				return nil
			},
			err:   -1,
			after: [][]byte{{1}, {2}},
		},
		{
			name:   "peek underflow",
			before: [][]byte{{1}},
			operation: func(s *stack) error {
				_, err := s.PeekByteArray(1)
				return err
			},
			err: ErrStackUnderflow,
		},
		{
			name:   "pop",
			before: [][]byte{{1}, {2}, {3}},
			operation: func(s *stack) error {
				_, err := s.PopByteArray()
				return err
			},
			err:   -1,
			after: [][]byte{{1}, {2}},
		},
		{
			name:   "pop empty",
			before: nil,
			operation: func(s *stack) error {
				_, err := s.PopByteArray()
				return err
			},
			err: ErrStackUnderflow,
		},
		{
			name:   "pop int too big",
			before: [][]byte{{1, 2, 3, 4, 5}},
			operation: func(s *stack) error {
				_, err := s.PopInt()
				return err
			},
			err: ErrNumberTooBig,
		},
		{
			name:   "push int",
			before: nil,
			operation: func(s *stack) error {
				s.PushInt(-129)
				s.PushBool(true)
				s.PushBool(false)
				return nil
			},
			err:   -1,
			after: [][]byte{{0x81, 0x80}, {1}, nil},
		},
		{
			name:   "nip middle",
			before: [][]byte{{1}, {2}, {3}},
			operation: func(s *stack) error {
				return s.NipN(1)
			},
			err:   -1,
			after: [][]byte{{1}, {3}},
		},
		{
			name:   "nip bottom",
			before: [][]byte{{1}, {2}, {3}},
			operation: func(s *stack) error {
				return s.NipN(2)
			},
			err:   -1,
			after: [][]byte{{2}, {3}},
		},
		{
			name:   "nip out of range",
			before: [][]byte{{1}, {2}, {3}},
			operation: func(s *stack) error {
				return s.NipN(3)
			},
			err: ErrStackUnderflow,
		},
		{
			name:   "tuck",
			before: [][]byte{{1}, {2}},
			operation: func(s *stack) error {
				return s.Tuck()
			},
			err:   -1,
			after: [][]byte{{2}, {1}, {2}},
		},
		{
			name:   "tuck underflow",
			before: [][]byte{{1}},
			operation: func(s *stack) error {
				return s.Tuck()
			},
			err: ErrStackUnderflow,
		},
		{
			name:   "drop 2",
			before: [][]byte{{1}, {2}, {3}},
			operation: func(s *stack) error {
				return s.DropN(2)
			},
			err:   -1,
			after: [][]byte{{1}},
		},
		{
			name:   "drop 0",
			before: [][]byte{{1}},
			operation: func(s *stack) error {
				return s.DropN(0)
			},
			err: ErrInternal,
		},
		{
			name:   "dup 2",
			before: [][]byte{{1}, {2}},
			operation: func(s *stack) error {
				return s.DupN(2)
			},
			err:   -1,
			after: [][]byte{{1}, {2}, {1}, {2}},
		},
		{
			name:   "dup 3 underflow",
			before: [][]byte{{1}, {2}},
			operation: func(s *stack) error {
				return s.DupN(3)
			},
			err: ErrStackUnderflow,
		},
		{
			name:   "rot 1",
			before: [][]byte{{1}, {2}, {3}},
			operation: func(s *stack) error {
				return s.RotN(1)
			},
			err:   -1,
			after: [][]byte{{2}, {3}, {1}},
		},
		{
			name:   "rot 2",
			before: [][]byte{{1}, {2}, {3}, {4}, {5}, {6}},
			operation: func(s *stack) error {
				return s.RotN(2)
			},
			err:   -1,
			after: [][]byte{{3}, {4}, {5}, {6}, {1}, {2}},
		},
		{
			name:   "swap 1",
			before: [][]byte{{1}, {2}},
			operation: func(s *stack) error {
				return s.SwapN(1)
			},
			err:   -1,
			after: [][]byte{{2}, {1}},
		},
		{
			name:   "swap 2",
			before: [][]byte{{1}, {2}, {3}, {4}},
			operation: func(s *stack) error {
				return s.SwapN(2)
			},
			err:   -1,
			after: [][]byte{{3}, {4}, {1}, {2}},
		},
		{
			name:   "over 1",
			before: [][]byte{{1}, {2}},
			operation: func(s *stack) error {
				return s.OverN(1)
			},
			err:   -1,
			after: [][]byte{{1}, {2}, {1}},
		},
		{
			name:   "over 2",
			before: [][]byte{{1}, {2}, {3}, {4}},
			operation: func(s *stack) error {
				return s.OverN(2)
			},
			err:   -1,
			after: [][]byte{{1}, {2}, {3}, {4}, {1}, {2}},
		},
		{
			name:   "pick 1",
			before: [][]byte{{1}, {2}, {3}},
			operation: func(s *stack) error {
				return s.PickN(1)
			},
			err:   -1,
			after: [][]byte{{1}, {2}, {3}, {2}},
		},
		{
			name:   "roll 2",
			before: [][]byte{{1}, {2}, {3}},
			operation: func(s *stack) error {
				return s.RollN(2)
			},
			err:   -1,
			after: [][]byte{{2}, {3}, {1}},
		},
		{
			name:   "roll underflow",
			before: [][]byte{{1}, {2}, {3}},
			operation: func(s *stack) error {
				return s.RollN(3)
			},
			err: ErrStackUnderflow,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			s := stack{}
			for _, elem := range test.before {
				s.PushByteArray(elem)
			}

			err := test.operation(&s)
			if test.err != -1 {
				require.True(t, IsErrorCode(err, test.err),
					"got error %v, want %v", err, test.err)
				return
			}
			require.NoError(t, err)

			got := getStack(&s)
			require.Equal(t, len(test.after), len(got), spew.Sdump(got))
			for i := range test.after {
				require.Equal(t, len(test.after[i]), len(got[i]),
					"element %d: %s", i, spew.Sdump(got))
				if len(test.after[i]) != 0 {
					require.Equal(t, test.after[i], got[i])
				}
			}
		})
	}
}
