package btccore

import (
	"errors"
	"fmt"

	"github.com/qinglongcn/btccore/address"
	"github.com/qinglongcn/btccore/chaincfg"
	"github.com/qinglongcn/btccore/chainhash"
	"github.com/qinglongcn/btccore/ecc"
)

// ErrUncompressedWitnessKey 表示未压缩公钥不能用于隔离见证地址。
var ErrUncompressedWitnessKey = errors.New("witness address requires a compressed public key")

// Wallet 是一个单密钥钱包
type Wallet struct {
	PrivateKey *ecc.PrivateKey // 私钥
	Compressed bool            // 公钥是否使用压缩格式
}

// NewWallet 生成一个使用压缩公钥的新钱包
func NewWallet() (*Wallet, error) {
	privKey, err := ecc.NewPrivateKey()
	if err != nil {
		return nil, err
	}

	return &Wallet{PrivateKey: privKey, Compressed: true}, nil
}

// WalletFromWIF 从 WIF 字符串导入钱包，WIF 必须属于 params 指定的网络
func WalletFromWIF(wif string, params *chaincfg.Params) (*Wallet, error) {
	decoded, err := address.DecodeWIF(wif)
	if err != nil {
		return nil, fmt.Errorf("解码 WIF 失败: %w", err)
	}
	if !decoded.IsForNet(params) {
		return nil, fmt.Errorf("WIF 不属于网络 %s: %w", params.Name,
			address.ErrWrongNetwork)
	}

	return &Wallet{
		PrivateKey: decoded.PrivKey,
		Compressed: decoded.CompressPubKey,
	}, nil
}

// PublicKey 返回序列化的公钥
func (w *Wallet) PublicKey() []byte {
	if w.Compressed {
		return w.PrivateKey.PubKey().SerializeCompressed()
	}
	return w.PrivateKey.PubKey().SerializeUncompressed()
}

// Address 返回 P2PKH 地址
func (w *Wallet) Address(params *chaincfg.Params) (*address.AddressPubKeyHash, error) {
	return address.NewAddressPubKeyHash(HashPubKey(w.PublicKey()), params)
}

// WitnessAddress 返回 P2WPKH 地址
func (w *Wallet) WitnessAddress(params *chaincfg.Params) (*address.AddressWitnessPubKeyHash, error) {
	if !w.Compressed {
		return nil, ErrUncompressedWitnessKey
	}
	return address.NewAddressWitnessPubKeyHash(HashPubKey(w.PublicKey()), params)
}

// WIF 返回私钥的 WIF 编码
func (w *Wallet) WIF(params *chaincfg.Params) string {
	return address.NewWIF(w.PrivateKey, params, w.Compressed).String()
}

// HashPubKey 返回公钥的 RIPEMD160(SHA256(pubKey))
func HashPubKey(pubKey []byte) []byte {
	return chainhash.Hash160(pubKey)
}

// GetAddress 返回公钥的 P2PKH 钱包地址
func GetAddress(pubKey []byte, params *chaincfg.Params) (string, error) {
	if _, err := ecc.ParsePubKey(pubKey); err != nil {
		return "", err
	}

	addr, err := address.NewAddressPubKeyHash(HashPubKey(pubKey), params)
	if err != nil {
		return "", err
	}
	return addr.EncodeAddress(), nil
}

// ValidateAddress 检查地址是否有效且属于 params 指定的网络
func ValidateAddress(addr string, params *chaincfg.Params) bool {
	decoded, err := address.DecodeAddress(addr, params)
	if err != nil {
		return false
	}
	return decoded.IsForNet(params)
}
