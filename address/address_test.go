package address

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	btcchaincfg "github.com/btcsuite/btcd/chaincfg"
	"github.com/davecgh/go-spew/spew"
	"github.com/qinglongcn/btccore/chaincfg"
	"github.com/qinglongcn/btccore/codec"
	"github.com/qinglongcn/btccore/ecc"
	"github.com/stretchr/testify/require"
)

func hexToBytes(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic("invalid hex in source file: " + s)
	}
	return b
}

// TestAddresses encodes and decodes every supported address type and checks
// the result against btcutil.
func TestAddresses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		addr    string
		script  string
		make    func() (Address, error)
		net     *chaincfg.Params
		btcdNet *btcchaincfg.Params
	}{
		{
			name:   "mainnet p2pkh",
			addr:   "1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMH",
			script: "751e76e8199196d454941c45d1b3a323f1433bd6",
			make: func() (Address, error) {
				return NewAddressPubKeyHash(hexToBytes("751e76e8199196d454941c45d1b3a323f1433bd6"), &chaincfg.MainNetParams)
			},
			net:     &chaincfg.MainNetParams,
			btcdNet: &btcchaincfg.MainNetParams,
		},
		{
			name:   "testnet p2pkh",
			addr:   "mrCDrCybB6J1vRfbwM5hemdJz73FwDBC8r",
			script: "751e76e8199196d454941c45d1b3a323f1433bd6",
			make: func() (Address, error) {
				return NewAddressPubKeyHash(hexToBytes("751e76e8199196d454941c45d1b3a323f1433bd6"), &chaincfg.TestNet3Params)
			},
			net:     &chaincfg.TestNet3Params,
			btcdNet: &btcchaincfg.TestNet3Params,
		},
		{
			name:   "mainnet p2sh",
			addr:   "3QJmV3qfvL9SuYo34YihAf3sRCW3qSinyC",
			script: "f815b036d9bbbce5e9f2a00abd1bf3dc91e95510",
			make: func() (Address, error) {
				return NewAddressScriptHashFromHash(hexToBytes("f815b036d9bbbce5e9f2a00abd1bf3dc91e95510"), &chaincfg.MainNetParams)
			},
			net:     &chaincfg.MainNetParams,
			btcdNet: &btcchaincfg.MainNetParams,
		},
		{
			name:   "mainnet p2wpkh",
			addr:   "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4",
			script: "751e76e8199196d454941c45d1b3a323f1433bd6",
			make: func() (Address, error) {
				return NewAddressWitnessPubKeyHash(hexToBytes("751e76e8199196d454941c45d1b3a323f1433bd6"), &chaincfg.MainNetParams)
			},
			net:     &chaincfg.MainNetParams,
			btcdNet: &btcchaincfg.MainNetParams,
		},
		{
			name:   "testnet p2wpkh",
			addr:   "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx",
			script: "751e76e8199196d454941c45d1b3a323f1433bd6",
			make: func() (Address, error) {
				return NewAddressWitnessPubKeyHash(hexToBytes("751e76e8199196d454941c45d1b3a323f1433bd6"), &chaincfg.TestNet3Params)
			},
			net:     &chaincfg.TestNet3Params,
			btcdNet: &btcchaincfg.TestNet3Params,
		},
		{
			name:   "mainnet p2wsh",
			addr:   "bc1qrp33g0q5c5txsp9arysrx4k6zdkfs4nce4xj0gdcccefvpysxf3qccfmv3",
			script: "1863143c14c5166804bd19203356da136c985678cd4d27a1b8c6329604903262",
			make: func() (Address, error) {
				return NewAddressWitnessScriptHash(hexToBytes("1863143c14c5166804bd19203356da136c985678cd4d27a1b8c6329604903262"), &chaincfg.MainNetParams)
			},
			net:     &chaincfg.MainNetParams,
			btcdNet: &btcchaincfg.MainNetParams,
		},
		{
			name:   "mainnet p2tr",
			addr:   "bc1p0xlxvlhemja6c4dqv22uapctqupfhlxm9h8z3k2e72q4k9hcz7vqzk5jj0",
			script: "79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798",
			make: func() (Address, error) {
				return NewAddressTaproot(hexToBytes("79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"), &chaincfg.MainNetParams)
			},
			net:     &chaincfg.MainNetParams,
			btcdNet: &btcchaincfg.MainNetParams,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			made, err := test.make()
			require.NoError(t, err)
			require.Equal(t, test.addr, made.EncodeAddress())
			require.Equal(t, test.addr, made.String())
			require.True(t, made.IsForNet(test.net))

			decoded, err := DecodeAddress(test.addr, test.net)
			require.NoError(t, err, spew.Sdump(test))
			require.IsType(t, made, decoded)
			require.Equal(t, hexToBytes(test.script), decoded.ScriptAddress())
			require.Equal(t, test.addr, decoded.EncodeAddress())

			oracle, err := btcutil.DecodeAddress(test.addr, test.btcdNet)
			require.NoError(t, err)
			require.Equal(t, oracle.EncodeAddress(), decoded.EncodeAddress())
			require.Equal(t, oracle.ScriptAddress(), decoded.ScriptAddress())
		})
	}
}

// TestNewAddressScriptHash checks that the redeem script is hashed.
func TestNewAddressScriptHash(t *testing.T) {
	t.Parallel()

	script := hexToBytes("5121" + "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798" + "51ae")
	addr, err := NewAddressScriptHash(script, &chaincfg.MainNetParams)
	require.NoError(t, err)

	oracle, err := btcutil.NewAddressScriptHash(script, &btcchaincfg.MainNetParams)
	require.NoError(t, err)
	require.Equal(t, oracle.EncodeAddress(), addr.EncodeAddress())
	require.Equal(t, oracle.Hash160()[:], addr.Hash160()[:])
}

// TestDecodeAddressErrors checks the failures DecodeAddress reports.
func TestDecodeAddressErrors(t *testing.T) {
	t.Parallel()

	// Bad checksum: last character altered.
	_, err := DecodeAddress("1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMJ", &chaincfg.MainNetParams)
	require.True(t, codec.IsErrorCode(err, codec.ErrChecksumMismatch), "%v", err)

	// Valid testnet address decoded on mainnet.
	_, err = DecodeAddress("mrCDrCybB6J1vRfbwM5hemdJz73FwDBC8r", &chaincfg.MainNetParams)
	require.True(t, errors.Is(err, ErrWrongNetwork), "%v", err)

	// Valid testnet segwit address decoded on mainnet falls back to base58
	// and fails there.
	_, err = DecodeAddress("tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx", &chaincfg.MainNetParams)
	require.Error(t, err)

	// Bech32 checksum with a witness v1 program is rejected.
	_, err = DecodeAddress("bc1pw508d6qejxtdg4y5r3zarvary0c5xw7kw508d6qejxtdg4y5r3zarvary0c5xw7k7grplx", &chaincfg.MainNetParams)
	require.True(t, codec.IsErrorCode(err, codec.ErrMalformedEncoding), "%v", err)

	// Base58 payload of the wrong size.
	_, err = DecodeAddress(codec.CheckEncode([]byte{1, 2, 3}, 0x00), &chaincfg.MainNetParams)
	require.True(t, errors.Is(err, ErrUnknownAddressType), "%v", err)
}

// TestWIF checks WIF encoding for the private key 1 against known strings and
// btcutil.
func TestWIF(t *testing.T) {
	t.Parallel()

	priv, err := ecc.PrivKeyFromBytes([]byte{0x01})
	require.NoError(t, err)

	tests := []struct {
		name     string
		net      *chaincfg.Params
		compress bool
		wif      string
	}{
		{"mainnet compressed", &chaincfg.MainNetParams, true, "KwDiBf89QgGbjEhKnhXJuH7LrciVrZi3qYjgd9M7rFU73sVHnoWn"},
		{"mainnet uncompressed", &chaincfg.MainNetParams, false, "5HpHagT65TZzG1PH3CSu63k8DbpvD8s5ip4nEB3kEsreAnchuDf"},
		{"testnet compressed", &chaincfg.TestNet3Params, true, "cMahea7zqjxrtgAbB7LSGbcQUr1uX1ojuat9jZodMN87JcbXMTcA"},
	}

	for _, test := range tests {
		w := NewWIF(priv, test.net, test.compress)
		require.Equal(t, test.wif, w.String(), test.name)
		require.True(t, w.IsForNet(test.net), test.name)

		decoded, err := DecodeWIF(test.wif)
		require.NoError(t, err, test.name)
		require.Equal(t, test.compress, decoded.CompressPubKey, test.name)
		require.Equal(t, priv.Serialize(), decoded.PrivKey.Serialize(), test.name)
		require.Equal(t, w.SerializePubKey(), decoded.SerializePubKey(), test.name)

		oracle, err := btcutil.DecodeWIF(test.wif)
		require.NoError(t, err, test.name)
		require.Equal(t, oracle.SerializePubKey(), decoded.SerializePubKey(), test.name)
	}

	// Bad compression marker.
	bad := codec.CheckEncode(append(priv.Serialize(), 0x02), 0x80)
	_, err = DecodeWIF(bad)
	require.ErrorIs(t, err, ErrMalformedPrivateKey)
}
