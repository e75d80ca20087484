package ecc

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func fe(t *testing.T, num, prime int64) FieldElement {
	t.Helper()
	e, err := NewFieldElementInt64(num, prime)
	require.NoError(t, err)
	return e
}

// TestFieldElementRange ensures elements outside [0, p) are rejected.
func TestFieldElementRange(t *testing.T) {
	t.Parallel()

	for _, num := range []int64{-1, 31, 100} {
		_, err := NewFieldElementInt64(num, 31)
		require.True(t, IsErrorCode(err, ErrFieldRange), "num %d", num)
	}
	_, err := NewFieldElementInt64(0, 1)
	require.True(t, IsErrorCode(err, ErrFieldRange))
}

// TestFieldElementArithmetic checks the field operations on small known
// values in F_31.
func TestFieldElementArithmetic(t *testing.T) {
	t.Parallel()

	type binop func(a, b FieldElement) (FieldElement, error)
	add := FieldElement.Add
	sub := FieldElement.Sub
	mul := FieldElement.Mul
	div := FieldElement.Div

	tests := []struct {
		name string
		op   binop
		a, b int64
		want int64
	}{
		{"add", add, 2, 15, 17},
		{"add wraps", add, 17, 21, 7},
		{"sub", sub, 29, 4, 25},
		{"sub wraps", sub, 15, 30, 16},
		{"mul", mul, 24, 19, 22},
		{"div", div, 3, 24, 4},
	}

	for _, test := range tests {
		got, err := test.op(fe(t, test.a, 31), fe(t, test.b, 31))
		require.NoError(t, err, test.name)
		if !got.Equal(fe(t, test.want, 31)) {
			t.Errorf("%s: got %v want %d", test.name, got, test.want)
		}
	}

	// Exponents, including negative ones reduced modulo p-1.
	require.True(t, fe(t, 17, 31).Pow(big.NewInt(3)).Equal(fe(t, 15, 31)))
	require.True(t, fe(t, 17, 31).Pow(big.NewInt(-3)).Equal(fe(t, 29, 31)))

	got, err := fe(t, 4, 31).Pow(big.NewInt(-4)).Mul(fe(t, 11, 31))
	require.NoError(t, err)
	require.True(t, got.Equal(fe(t, 13, 31)))

	got, err = fe(t, 5, 31).Pow(big.NewInt(5)).Mul(fe(t, 18, 31))
	require.NoError(t, err)
	require.True(t, got.Equal(fe(t, 16, 31)))
}

// TestFieldElementAddSub verifies (a + b) - b == a across the whole of a small
// field.
func TestFieldElementAddSub(t *testing.T) {
	t.Parallel()

	const prime = 19
	for a := int64(0); a < prime; a++ {
		for b := int64(0); b < prime; b++ {
			sum, err := fe(t, a, prime).Add(fe(t, b, prime))
			require.NoError(t, err)
			back, err := sum.Sub(fe(t, b, prime))
			require.NoError(t, err)
			if !back.Equal(fe(t, a, prime)) {
				t.Fatalf("(%d + %d) - %d = %v", a, b, b, back)
			}
		}
	}
}

// TestFieldElementErrors checks mismatched fields and division by zero.
func TestFieldElementErrors(t *testing.T) {
	t.Parallel()

	_, err := fe(t, 1, 31).Add(fe(t, 1, 37))
	require.True(t, IsErrorCode(err, ErrFieldMismatch))
	_, err = fe(t, 1, 31).Mul(fe(t, 1, 37))
	require.True(t, IsErrorCode(err, ErrFieldMismatch))
	_, err = fe(t, 1, 31).Div(fe(t, 0, 31))
	require.True(t, IsErrorCode(err, ErrDivideByZero))
}
