// 私钥与公钥，以及公钥的 SEC 序列化格式。
package ecc

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/qinglongcn/btccore/codec"
)

const (
	// PrivKeyBytesLen 是序列化私钥的字节数。
	PrivKeyBytesLen = 32

	// PubKeyBytesLenCompressed 是压缩公钥的字节数。
	PubKeyBytesLenCompressed = 33

	// PubKeyBytesLenUncompressed 是未压缩公钥的字节数。
	PubKeyBytesLenUncompressed = 65
)

// SEC 公钥格式的前缀字节。
const (
	pubkeyCompressed   byte = 0x2 // y_bit + x coord
	pubkeyUncompressed byte = 0x4 // x coord + y coord
	pubkeyHybrid       byte = 0x6 // y_bit + x coord + y coord
)

// PrivateKey 是 secp256k1 私钥，标量 d 位于 [1, n-1]。
// 公钥在构造时由 d*G 推导，之后只读。
type PrivateKey struct {
	d   *big.Int
	pub *PublicKey
}

// NewPrivateKey 使用 crypto/rand 生成一个随机私钥。
func NewPrivateKey() (*PrivateKey, error) {
	var buf [PrivKeyBytesLen]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			return nil, fmt.Errorf("生成随机私钥失败: %w", err)
		}
		d := new(big.Int).SetBytes(buf[:])
		if d.Sign() > 0 && d.Cmp(secp256k1Params.N) < 0 {
			return PrivKeyFromScalar(d)
		}
	}
}

// PrivKeyFromScalar 从标量创建私钥。
func PrivKeyFromScalar(d *big.Int) (*PrivateKey, error) {
	if d == nil || d.Sign() <= 0 || d.Cmp(secp256k1Params.N) >= 0 {
		return nil, eccError(ErrInvalidPrivateKey,
			"private key scalar must be in [1, n-1]")
	}
	scalar := new(big.Int).Set(d)
	return &PrivateKey{
		d:   scalar,
		pub: &PublicKey{point: ScalarBaseMult(scalar)},
	}, nil
}

// PrivKeyFromBytes 从大端字节创建私钥，长度不得超过32字节。
func PrivKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) > PrivKeyBytesLen {
		return nil, eccError(ErrInvalidPrivateKey, fmt.Sprintf("private "+
			"key length %d exceeds %d", len(b), PrivKeyBytesLen))
	}
	return PrivKeyFromScalar(new(big.Int).SetBytes(b))
}

// D 返回私钥标量的副本。
func (p *PrivateKey) D() *big.Int {
	return new(big.Int).Set(p.d)
}

// PubKey 返回对应的公钥。
func (p *PrivateKey) PubKey() *PublicKey {
	return p.pub
}

// Serialize 返回32字节的大端私钥。
func (p *PrivateKey) Serialize() []byte {
	b := make([]byte, PrivKeyBytesLen)
	return p.d.FillBytes(b)
}

// Sign 使用确定性随机数对哈希签名。
func (p *PrivateKey) Sign(hash []byte) (*Signature, error) {
	return Sign(p, hash)
}

// PublicKey 是 secp256k1 上的一个有限点。
type PublicKey struct {
	point Point
}

// NewPublicKey 从 secp256k1 上的点创建公钥。
func NewPublicKey(p Point) (*PublicKey, error) {
	if !IsOnS256(p) {
		return nil, eccError(ErrInvalidPublicKey,
			"public key must be a finite point on secp256k1")
	}
	return &PublicKey{point: p}, nil
}

// Point 返回公钥对应的点。
func (k *PublicKey) Point() Point {
	return k.point
}

// X 返回 x 坐标。
func (k *PublicKey) X() *big.Int {
	return k.point.x.Num()
}

// Y 返回 y 坐标。
func (k *PublicKey) Y() *big.Int {
	return k.point.y.Num()
}

// IsEqual 报告两个公钥是否相同。
func (k *PublicKey) IsEqual(o *PublicKey) bool {
	return k.point.Equal(o.point)
}

// SerializeUncompressed 返回 65 字节的 SEC 未压缩格式：0x04 || x || y。
func (k *PublicKey) SerializeUncompressed() []byte {
	b := make([]byte, PubKeyBytesLenUncompressed)
	b[0] = pubkeyUncompressed
	k.point.x.num.FillBytes(b[1:33])
	k.point.y.num.FillBytes(b[33:])
	return b
}

// SerializeCompressed 返回 33 字节的 SEC 压缩格式：0x02/0x03 || x。
func (k *PublicKey) SerializeCompressed() []byte {
	b := make([]byte, PubKeyBytesLenCompressed)
	b[0] = pubkeyCompressed
	if k.point.y.num.Bit(0) == 1 {
		b[0] |= 0x1
	}
	k.point.x.num.FillBytes(b[1:])
	return b
}

// IsCompressedPubKey 报告字节串是否具有压缩公钥的格式。
func IsCompressedPubKey(pubKey []byte) bool {
	return len(pubKey) == PubKeyBytesLenCompressed &&
		(pubKey[0]&^0x1) == pubkeyCompressed
}

// ParsePubKey 解析 SEC 格式的公钥，支持压缩、未压缩与混合格式。
func ParsePubKey(pubKeyStr []byte) (*PublicKey, error) {
	if len(pubKeyStr) == 0 {
		return nil, codec.ShortData(0, 1, "public key format")
	}

	format := pubKeyStr[0]
	ybit := (format & 0x1) == 0x1
	format &= ^byte(0x1)

	var x, y *big.Int
	switch len(pubKeyStr) {
	case PubKeyBytesLenUncompressed:
		if format != pubkeyUncompressed && format != pubkeyHybrid {
			return nil, codec.Malformed(0, "invalid magic in pubkey str: "+
				"%d", pubKeyStr[0])
		}

		x = new(big.Int).SetBytes(pubKeyStr[1:33])
		y = new(big.Int).SetBytes(pubKeyStr[33:])
		if format == pubkeyHybrid && ybit != (y.Bit(0) == 1) {
			return nil, codec.Malformed(0, "ybit doesn't match oddness")
		}
		if x.Cmp(secp256k1Params.P) >= 0 {
			return nil, codec.Malformed(1, "pubkey X parameter is >= to P")
		}
		if y.Cmp(secp256k1Params.P) >= 0 {
			return nil, codec.Malformed(33, "pubkey Y parameter is >= to P")
		}

	case PubKeyBytesLenCompressed:
		if format != pubkeyCompressed {
			return nil, codec.Malformed(0, "invalid magic in compressed "+
				"pubkey string: %d", pubKeyStr[0])
		}

		x = new(big.Int).SetBytes(pubKeyStr[1:33])
		if x.Cmp(secp256k1Params.P) >= 0 {
			return nil, codec.Malformed(1, "pubkey X parameter is >= to P")
		}
		var err error
		if y, err = decompressY(x, ybit); err != nil {
			return nil, err
		}

	default:
		return nil, codec.Malformed(0, "invalid pub key length %d",
			len(pubKeyStr))
	}

	point, err := NewS256Point(x, y)
	if err != nil {
		return nil, err
	}
	return &PublicKey{point: point}, nil
}
