package ecc

import (
	"crypto/sha256"
	"math/big"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/qinglongcn/btccore/codec"
	"github.com/stretchr/testify/require"
)

var testPrivKeys = []string{
	"0000000000000000000000000000000000000000000000000000000000000001",
	"0000000000000000000000000000000000000000000000000000000000003039",
	"eaf02ca348c524e6392655ba4d29603cd1a7347d9d65cfe93ce1ebffdca22694",
	"fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364140",
}

var testMessages = []string{
	"Satoshi Nakamoto",
	"All those moments will be lost in time, like tears in rain. Time to die...",
	"",
}

// TestNonceRFC6979 compares nonce generation with the decred implementation.
func TestNonceRFC6979(t *testing.T) {
	t.Parallel()

	for _, k := range testPrivKeys {
		raw := hexToBytes(k)
		d := new(big.Int).SetBytes(raw)
		for _, msg := range testMessages {
			hash := sha256.Sum256([]byte(msg))
			for iter := uint32(0); iter < 3; iter++ {
				want := secp256k1.NonceRFC6979(raw, hash[:], nil, nil, iter)
				wantBytes := want.Bytes()
				got := NonceRFC6979(d, hash[:], iter)
				require.Equal(t, wantBytes[:], int2octets(got),
					"key %s msg %q iter %d", k, msg, iter)
			}
		}
	}
}

// TestSignVerify signs with every test key and checks the result against
// btcec byte for byte.
func TestSignVerify(t *testing.T) {
	t.Parallel()

	for _, k := range testPrivKeys {
		raw := hexToBytes(k)
		priv, err := PrivKeyFromBytes(raw)
		require.NoError(t, err)
		oraclePriv, oraclePub := btcec.PrivKeyFromBytes(raw)

		for _, msg := range testMessages {
			hash := sha256.Sum256([]byte(msg))

			sig, err := Sign(priv, hash[:])
			require.NoError(t, err)
			require.True(t, sig.IsLowS())
			require.True(t, Verify(priv.PubKey(), hash[:], sig))

			want := btcecdsa.Sign(oraclePriv, hash[:]).Serialize()
			require.Equal(t, want, sig.Serialize(), "key %s msg %q", k, msg)

			oracleSig, err := btcecdsa.ParseDERSignature(sig.Serialize())
			require.NoError(t, err)
			require.True(t, oracleSig.Verify(hash[:], oraclePub))

			// Any change to the message invalidates the signature.
			other := sha256.Sum256([]byte(msg + "!"))
			require.False(t, Verify(priv.PubKey(), other[:], sig))
		}
	}
}

// TestVerifyRejects covers signatures that must not verify.
func TestVerifyRejects(t *testing.T) {
	t.Parallel()

	priv, err := PrivKeyFromScalar(big.NewInt(12345))
	require.NoError(t, err)
	hash := sha256.Sum256([]byte("btccore"))
	sig, err := priv.Sign(hash[:])
	require.NoError(t, err)

	n := S256().N

	// The high-s twin is still a mathematically valid signature.
	highS := NewSignature(sig.R(), new(big.Int).Sub(n, sig.S()))
	require.False(t, highS.IsLowS())
	require.True(t, highS.Verify(hash[:], priv.PubKey()))

	other, err := PrivKeyFromScalar(big.NewInt(54321))
	require.NoError(t, err)
	require.False(t, sig.Verify(hash[:], other.PubKey()))

	require.False(t, Verify(priv.PubKey(), hash[:], NewSignature(big.NewInt(0), sig.S())))
	require.False(t, Verify(priv.PubKey(), hash[:], NewSignature(sig.R(), n)))
	require.False(t, Verify(nil, hash[:], sig))
}

// TestSignWithNonce checks the zero r/s guards.
func TestSignWithNonce(t *testing.T) {
	t.Parallel()

	_, err := signWithNonce(big.NewInt(1), big.NewInt(0), big.NewInt(1))
	require.True(t, IsErrorCode(err, ErrInvalidNonce))

	// With d = 1, k = 1 and z = -r the value of s is zero.
	r := new(big.Int).Mod(Generator().X().Num(), S256().N)
	z := new(big.Int).Sub(S256().N, r)
	_, err = signWithNonce(big.NewInt(1), big.NewInt(1), z)
	require.True(t, IsErrorCode(err, ErrInvalidNonce))
}

// TestDERSignature exercises DER parsing of valid and malformed encodings.
func TestDERSignature(t *testing.T) {
	t.Parallel()

	priv, err := PrivKeyFromScalar(big.NewInt(1))
	require.NoError(t, err)
	hash := sha256.Sum256([]byte("Satoshi Nakamoto"))
	sig, err := priv.Sign(hash[:])
	require.NoError(t, err)

	der := sig.Serialize()
	parsed, err := ParseDERSignature(der)
	require.NoError(t, err)
	require.True(t, parsed.IsEqual(sig))

	// A trailing byte is malformed and the offset points just past the
	// declared sequence.
	_, err = ParseDERSignature(append(append([]byte{}, der...), 0x01))
	require.True(t, codec.IsErrorCode(err, codec.ErrMalformedEncoding))
	require.Equal(t, len(der), err.(codec.DecodeError).Offset)

	tests := []struct {
		name      string
		sig       string
		strictErr bool
		laxErr    bool
	}{
		{"minimal", "3006020101020101", false, false},
		{"too short", "30050201010201", true, true},
		{"wrong sequence id", "3106020101020101", true, true},
		{"length too long", "3007020101020101", true, true},
		{"r marker", "3006030101020101", true, true},
		{"zero r length", "3006020002020101", true, true},
		{"s marker", "3006020101030101", true, true},
		{"zero s length", "3006020101020001", true, true},
		{"negative r", "3006020181020101", true, false},
		{"negative s", "3006020101020181", true, false},
		{"padded r", "300702020001020101", true, false},
		{"padded s", "300702010102020001", true, false},
		{"doubly padded r", "30080203000001020101", true, false},
		{"trailing byte", "300602010102010100", true, false},
		{"s past declared length", "300602010102020101", true, true},
		{"r leaves no room for s", "3006020201010201", true, true},
		{"zero r", "3006020100020101", true, true},
		{"padded zero s", "300702010102020000", true, true},
	}

	for _, test := range tests {
		_, err := ParseDERSignature(hexToBytes(test.sig))
		require.Equal(t, test.strictErr, err != nil, "strict %s: %v", test.name, err)
		_, err = ParseSignature(hexToBytes(test.sig))
		require.Equal(t, test.laxErr, err != nil, "lax %s: %v", test.name, err)

		// The lax rules are those of btcec's non-strict parser.
		_, err = btcecdsa.ParseSignature(hexToBytes(test.sig))
		require.Equal(t, test.laxErr, err != nil, "btcec lax %s: %v", test.name, err)
	}

	// A negative-looking R is read as an unsigned magnitude.
	lax, err := ParseSignature(hexToBytes("3006020181020101"))
	require.NoError(t, err)
	require.Equal(t, int64(0x81), lax.R().Int64())

	// r equal to the curve order is out of range.
	var nSig []byte
	nSig = append(nSig, 0x30, 0x26, 0x02, 0x21, 0x00)
	nSig = append(nSig, S256().N.Bytes()...)
	nSig = append(nSig, 0x02, 0x01, 0x01)
	_, err = ParseDERSignature(nSig)
	require.Error(t, err)
}

// TestErrorCodeStringer tests the stringized output for the ErrorCode type.
func TestErrorCodeStringer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   ErrorCode
		want string
	}{
		{ErrFieldMismatch, "ErrFieldMismatch"},
		{ErrFieldRange, "ErrFieldRange"},
		{ErrDivideByZero, "ErrDivideByZero"},
		{ErrPointNotOnCurve, "ErrPointNotOnCurve"},
		{ErrInvalidNonce, "ErrInvalidNonce"},
		{ErrInvalidPrivateKey, "ErrInvalidPrivateKey"},
		{ErrInvalidPublicKey, "ErrInvalidPublicKey"},
		{0xffff, "Unknown ErrorCode (65535)"},
	}

	if len(tests)-1 != int(numErrorCodes) {
		t.Errorf("It appears an error code was added without adding an " +
			"associated stringer test")
	}

	for i, test := range tests {
		if got := test.in.String(); got != test.want {
			t.Errorf("String #%d\n got: %s want: %s", i, got, test.want)
		}
	}
}
