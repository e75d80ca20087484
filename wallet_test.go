package btccore

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qinglongcn/btccore/address"
	"github.com/qinglongcn/btccore/chaincfg"
)

// TestWalletFromWIF 使用私钥 1 的已知编码检查导入与各类地址。
func TestWalletFromWIF(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		wif        string
		params     *chaincfg.Params
		compressed bool
		address    string
		witness    string
	}{
		{
			name:       "mainnet compressed",
			wif:        "KwDiBf89QgGbjEhKnhXJuH7LrciVrZi3qYjgd9M7rFU73sVHnoWn",
			params:     &chaincfg.MainNetParams,
			compressed: true,
			address:    "1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMH",
			witness:    "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4",
		},
		{
			name:    "mainnet uncompressed",
			wif:     "5HpHagT65TZzG1PH3CSu63k8DbpvD8s5ip4nEB3kEsreAnchuDf",
			params:  &chaincfg.MainNetParams,
			address: "1EHNa6Q4Jz2uvNExL497mE43ikXhwF6kZm",
		},
		{
			name:       "testnet compressed",
			wif:        "cMahea7zqjxrtgAbB7LSGbcQUr1uX1ojuat9jZodMN87JcbXMTcA",
			params:     &chaincfg.TestNet3Params,
			compressed: true,
			address:    "mrCDrCybB6J1vRfbwM5hemdJz73FwDBC8r",
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			w, err := WalletFromWIF(test.wif, test.params)
			require.NoError(t, err)
			require.Equal(t, test.compressed, w.Compressed)
			require.Equal(t, test.wif, w.WIF(test.params))

			addr, err := w.Address(test.params)
			require.NoError(t, err)
			require.Equal(t, test.address, addr.EncodeAddress())
			require.True(t, ValidateAddress(test.address, test.params))

			got, err := GetAddress(w.PublicKey(), test.params)
			require.NoError(t, err)
			require.Equal(t, test.address, got)

			witness, err := w.WitnessAddress(test.params)
			if !test.compressed {
				require.ErrorIs(t, err, ErrUncompressedWitnessKey)
				return
			}
			require.NoError(t, err)
			if test.witness != "" {
				require.Equal(t, test.witness, witness.EncodeAddress())
			}
			require.True(t, ValidateAddress(witness.EncodeAddress(), test.params))
		})
	}
}

// TestWalletFromWIFErrors 检查错误网络与损坏的 WIF。
func TestWalletFromWIFErrors(t *testing.T) {
	t.Parallel()

	_, err := WalletFromWIF("KwDiBf89QgGbjEhKnhXJuH7LrciVrZi3qYjgd9M7rFU73sVHnoWn",
		&chaincfg.TestNet3Params)
	require.ErrorIs(t, err, address.ErrWrongNetwork)

	_, err = WalletFromWIF("KwDiBf89QgGbjEhKnhXJuH7LrciVrZi3qYjgd9M7rFU73sVHnoWo",
		&chaincfg.MainNetParams)
	require.Error(t, err)
}

// TestNewWallet 确保新钱包可以通过 WIF 恢复。
func TestNewWallet(t *testing.T) {
	t.Parallel()

	w, err := NewWallet()
	require.NoError(t, err)
	require.True(t, w.Compressed)
	require.Len(t, w.PublicKey(), 33)

	restored, err := WalletFromWIF(w.WIF(&chaincfg.RegressionNetParams),
		&chaincfg.RegressionNetParams)
	require.NoError(t, err)
	require.Equal(t, w.PublicKey(), restored.PublicKey())

	addr, err := w.Address(&chaincfg.MainNetParams)
	require.NoError(t, err)
	require.True(t, ValidateAddress(addr.EncodeAddress(), &chaincfg.MainNetParams))
}

// TestHashPubKey 检查公钥哈希。
func TestHashPubKey(t *testing.T) {
	t.Parallel()

	pubKey, err := hex.DecodeString("0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798")
	require.NoError(t, err)
	require.Equal(t, "751e76e8199196d454941c45d1b3a323f1433bd6",
		hex.EncodeToString(HashPubKey(pubKey)))
}

// TestValidateAddress 检查地址校验。
func TestValidateAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		addr   string
		params *chaincfg.Params
		valid  bool
	}{
		{"1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMH", &chaincfg.MainNetParams, true},
		{"3CNHUhP3uyB9EUtRLsmvFUmvGdjGdkTxJw", &chaincfg.MainNetParams, true},
		{"bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", &chaincfg.MainNetParams, true},
		{"1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMH", &chaincfg.TestNet3Params, false},
		{"1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMI", &chaincfg.MainNetParams, false},
		{"bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t5", &chaincfg.MainNetParams, false},
		{"", &chaincfg.MainNetParams, false},
	}

	for _, test := range tests {
		require.Equal(t, test.valid, ValidateAddress(test.addr, test.params),
			test.addr)
	}

	_, err := GetAddress([]byte{0x02, 0x01}, &chaincfg.MainNetParams)
	require.Error(t, err)
}
