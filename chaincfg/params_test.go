package chaincfg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestGenesisBlocks ensures the hard-coded genesis blocks hash to the
// hard-coded genesis hashes and commit to their coinbase.
func TestGenesisBlocks(t *testing.T) {
	t.Parallel()

	for _, params := range []*Params{&MainNetParams, &TestNet3Params,
		&RegressionNetParams} {

		block := params.GenesisBlock
		hash := block.BlockHash()
		if !params.GenesisHash.IsEqual(&hash) {
			t.Errorf("%s: genesis hash mismatch - got %v, want %v",
				params.Name, hash, params.GenesisHash)
		}
		require.Equal(t, block.Header.MerkleRoot,
			block.Transactions[0].TxHash(), params.Name)
	}

	require.Equal(t,
		"000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f",
		MainNetParams.GenesisHash.String())
	require.Equal(t,
		"000000000933ea01ad0ee984209779baaec3ced90fa3f408719526f8d77f4943",
		TestNet3Params.GenesisHash.String())
	require.Equal(t,
		"0f9188f13cb7b2c71f2a335e3a4fc328bf5beb436012afca590b1a11466e2206",
		RegressionNetParams.GenesisHash.String())
}

// TestParamsForNet checks network lookup by name.
func TestParamsForNet(t *testing.T) {
	t.Parallel()

	params, err := ParamsForNet("mainnet")
	require.NoError(t, err)
	require.Equal(t, "bc", params.Bech32HRPSegwit)
	require.Equal(t, int64(2016), params.BlocksPerRetarget())

	params, err = ParamsForNet("testnet")
	require.NoError(t, err)
	require.Equal(t, &TestNet3Params, params)

	_, err = ParamsForNet("signet")
	require.ErrorIs(t, err, ErrUnknownNet)
}
