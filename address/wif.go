package address

import (
	"errors"

	"github.com/qinglongcn/btccore/chaincfg"
	"github.com/qinglongcn/btccore/codec"
	"github.com/qinglongcn/btccore/ecc"
)

// compressMagic is the magic byte used to identify a WIF encoding for
// an address created from a compressed serialized public key.
const compressMagic byte = 0x01

// ErrMalformedPrivateKey describes an error where a WIF-encoded private
// key cannot be decoded due to being improperly formatted.
var ErrMalformedPrivateKey = errors.New("malformed private key")

// WIF 是钱包导入格式的私钥：版本字节 + 32字节私钥 + 可选的压缩标记，整体 Base58Check 编码。
type WIF struct {
	PrivKey        *ecc.PrivateKey
	CompressPubKey bool
	netID          byte
}

// NewWIF 为 params 指定的网络创建 WIF。
func NewWIF(privKey *ecc.PrivateKey, params *chaincfg.Params, compress bool) *WIF {
	return &WIF{PrivKey: privKey, CompressPubKey: compress, netID: params.PrivateKeyID}
}

// IsForNet 报告 WIF 是否属于给定网络。
func (w *WIF) IsForNet(params *chaincfg.Params) bool {
	return w.netID == params.PrivateKeyID
}

// DecodeWIF 解码 WIF 字符串。
func DecodeWIF(wif string) (*WIF, error) {
	payload, netID, err := codec.CheckDecode(wif)
	if err != nil {
		return nil, err
	}

	var compress bool
	switch len(payload) {
	case ecc.PrivKeyBytesLen + 1:
		if payload[ecc.PrivKeyBytesLen] != compressMagic {
			return nil, ErrMalformedPrivateKey
		}
		compress = true
	case ecc.PrivKeyBytesLen:
	default:
		return nil, ErrMalformedPrivateKey
	}

	privKey, err := ecc.PrivKeyFromBytes(payload[:ecc.PrivKeyBytesLen])
	if err != nil {
		return nil, err
	}
	return &WIF{PrivKey: privKey, CompressPubKey: compress, netID: netID}, nil
}

// String 返回 WIF 的 Base58Check 编码。
func (w *WIF) String() string {
	payload := w.PrivKey.Serialize()
	if w.CompressPubKey {
		payload = append(payload, compressMagic)
	}
	return codec.CheckEncode(payload, w.netID)
}

// SerializePubKey 按 WIF 的压缩标记序列化对应的公钥。
func (w *WIF) SerializePubKey() []byte {
	if w.CompressPubKey {
		return w.PrivKey.PubKey().SerializeCompressed()
	}
	return w.PrivKey.PubKey().SerializeUncompressed()
}
