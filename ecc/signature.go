// ECDSA 签名及其 DER 编码。
package ecc

import (
	"math/big"

	"github.com/qinglongcn/btccore/codec"
)

// DER 签名格式：
// 0x30 <total length> 0x02 <length of R> <R> 0x02 <length of S> <S>
const (
	asn1SequenceID = 0x30
	asn1IntegerID  = 0x02

	// minSigLen is the minimum length of a DER encoded signature and is when
	// both R and S are 1 byte each.
	//
	// 0x30 + <1-byte> + 0x02 + 0x01 + <byte> + 0x2 + 0x01 + <byte>
	minSigLen = 8

	// maxSigLen is the maximum length of a DER encoded signature and is
	// when both R and S are 33 bytes each.  It is 33 bytes because a
	// 256-bit integer requires 32 bytes and an additional leading null byte
	// might be required if the high bit is set in the value.
	//
	// 0x30 + <1-byte> + 0x02 + 0x21 + <33 bytes> + 0x2 + 0x21 + <33 bytes>
	maxSigLen = 72

	sequenceOffset = 0
	dataLenOffset  = 1
	rTypeOffset    = 2
	rLenOffset     = 3
	rOffset        = 4
)

// Signature 是 ECDSA 签名 (r, s)，值不可变。
type Signature struct {
	r *big.Int
	s *big.Int
}

// NewSignature 创建一个签名。
func NewSignature(r, s *big.Int) *Signature {
	return &Signature{r: new(big.Int).Set(r), s: new(big.Int).Set(s)}
}

// R 返回 r 的副本。
func (sig *Signature) R() *big.Int {
	return new(big.Int).Set(sig.r)
}

// S 返回 s 的副本。
func (sig *Signature) S() *big.Int {
	return new(big.Int).Set(sig.s)
}

// IsEqual 报告两个签名是否相同。
func (sig *Signature) IsEqual(o *Signature) bool {
	return sig.r.Cmp(o.r) == 0 && sig.s.Cmp(o.s) == 0
}

// IsLowS 报告 s 是否不大于 n/2。
func (sig *Signature) IsLowS() bool {
	return sig.s.Cmp(halfOrder) <= 0
}

// Verify 验证签名是否由 pub 对 hash 生成。
func (sig *Signature) Verify(hash []byte, pub *PublicKey) bool {
	return Verify(pub, hash, sig)
}

// canonicalPadding returns the minimal big-endian encoding of a positive
// integer as required by DER, with a leading zero when the high bit is set.
func canonicalPadding(v *big.Int) []byte {
	b := v.Bytes()
	if len(b) == 0 {
		return []byte{0x00}
	}
	if b[0]&0x80 != 0 {
		return append([]byte{0x00}, b...)
	}
	return b
}

// Serialize 返回签名的 DER 编码。
func (sig *Signature) Serialize() []byte {
	rb := canonicalPadding(sig.r)
	sb := canonicalPadding(sig.s)

	// total length of returned signature is 1 byte for each magic and
	// length (6 total), plus lengths of r and s
	length := 6 + len(rb) + len(sb)
	b := make([]byte, 0, length)

	b = append(b, asn1SequenceID, byte(length-2))
	b = append(b, asn1IntegerID, byte(len(rb)))
	b = append(b, rb...)
	b = append(b, asn1IntegerID, byte(len(sb)))
	b = append(b, sb...)
	return b
}

// ParseDERSignature 严格解析 DER 编码的签名：
// 不允许多余的填充字节、负数或尾随数据，r 与 s 必须位于 [1, n-1]。
func ParseDERSignature(sig []byte) (*Signature, error) {
	return parseDERSig(sig)
}

// ParseSignature 按 BIP66 之前的共识规则宽松解析签名：
// r 与 s 按无符号大端整数读取，允许负数形式与任意前导零，
// 声明的序列长度之后的字节被忽略。r 与 s 仍须位于 [1, n-1]。
func ParseSignature(sig []byte) (*Signature, error) {
	sigLen := len(sig)
	if sigLen < minSigLen {
		return nil, codec.ShortData(sigLen, minSigLen, "signature")
	}
	if sig[sequenceOffset] != asn1SequenceID {
		return nil, codec.Malformed(sequenceOffset, "malformed signature: "+
			"format has wrong type: %#x", sig[sequenceOffset])
	}

	declared := int(sig[dataLenOffset]) + 2
	if declared > sigLen {
		return nil, codec.ShortData(sigLen, declared, "signature")
	}
	if declared < minSigLen {
		return nil, codec.Malformed(dataLenOffset, "malformed signature: "+
			"bad length %d", declared-2)
	}
	sig = sig[:declared]

	if sig[rTypeOffset] != asn1IntegerID {
		return nil, codec.Malformed(rTypeOffset, "malformed signature: R "+
			"integer marker: %#x != %#x", sig[rTypeOffset], asn1IntegerID)
	}

	// R must leave room for the S marker, its length and one byte of S.
	rLen := int(sig[rLenOffset])
	if rLen == 0 || rLen > declared-rOffset-3 {
		return nil, codec.Malformed(rLenOffset, "malformed signature: "+
			"bogus R length %d", rLen)
	}
	r, err := laxSigInt(sig[rOffset:rOffset+rLen], rOffset, "R")
	if err != nil {
		return nil, err
	}

	sTypeOffset := rOffset + rLen
	if sig[sTypeOffset] != asn1IntegerID {
		return nil, codec.Malformed(sTypeOffset, "malformed signature: S "+
			"integer marker: %#x != %#x", sig[sTypeOffset], asn1IntegerID)
	}
	sLenOffset := sTypeOffset + 1
	sOffset := sLenOffset + 1
	sLen := int(sig[sLenOffset])
	if sLen == 0 || sOffset+sLen != declared {
		return nil, codec.Malformed(sLenOffset, "malformed signature: "+
			"bogus S length %d", sLen)
	}
	s, err := laxSigInt(sig[sOffset:], sOffset, "S")
	if err != nil {
		return nil, err
	}
	return &Signature{r: r, s: s}, nil
}

// laxSigInt reads b as an unsigned magnitude after dropping leading zeros.
func laxSigInt(b []byte, offset int, name string) (*big.Int, error) {
	for len(b) > 0 && b[0] == 0x00 {
		b = b[1:]
	}
	if len(b) > 32 {
		return nil, codec.Malformed(offset, "signature %s is larger than "+
			"256 bits", name)
	}
	return sigIntInRange(new(big.Int).SetBytes(b), offset, name)
}

func sigIntInRange(v *big.Int, offset int, name string) (*big.Int, error) {
	if v.Sign() == 0 {
		return nil, codec.Malformed(offset, "signature %s is zero", name)
	}
	if v.Cmp(secp256k1Params.N) >= 0 {
		return nil, codec.Malformed(offset, "signature %s is >= curve "+
			"order", name)
	}
	return v, nil
}

func parseDERSig(sig []byte) (*Signature, error) {
	sigLen := len(sig)
	if sigLen < minSigLen {
		return nil, codec.ShortData(sigLen, minSigLen, "signature")
	}
	if sig[sequenceOffset] != asn1SequenceID {
		return nil, codec.Malformed(sequenceOffset, "malformed signature: "+
			"format has wrong type: %#x", sig[sequenceOffset])
	}

	// The declared sequence length must cover exactly the remaining bytes.
	declared := int(sig[dataLenOffset]) + 2
	if declared > sigLen {
		return nil, codec.ShortData(sigLen, declared, "signature")
	}
	if declared < sigLen {
		return nil, codec.Malformed(declared, "malformed signature: %d "+
			"trailing bytes after signature", sigLen-declared)
	}
	if sigLen > maxSigLen {
		return nil, codec.Malformed(maxSigLen, "malformed signature: too "+
			"long: %d > %d", sigLen, maxSigLen)
	}

	if sig[rTypeOffset] != asn1IntegerID {
		return nil, codec.Malformed(rTypeOffset, "malformed signature: R "+
			"integer marker: %#x != %#x", sig[rTypeOffset], asn1IntegerID)
	}
	rLen := int(sig[rLenOffset])
	if rLen == 0 {
		return nil, codec.Malformed(rLenOffset, "malformed signature: R "+
			"length is zero")
	}

	// The S type and length bytes must fit after R.
	sTypeOffset := rOffset + rLen
	sLenOffset := sTypeOffset + 1
	if sLenOffset >= sigLen {
		return nil, codec.Malformed(rLenOffset, "malformed signature: R "+
			"length %d is too long", rLen)
	}
	if sig[sTypeOffset] != asn1IntegerID {
		return nil, codec.Malformed(sTypeOffset, "malformed signature: S "+
			"integer marker: %#x != %#x", sig[sTypeOffset], asn1IntegerID)
	}
	sLen := int(sig[sLenOffset])
	if sLen == 0 {
		return nil, codec.Malformed(sLenOffset, "malformed signature: S "+
			"length is zero")
	}
	sOffset := sLenOffset + 1
	if sOffset+sLen != sigLen {
		return nil, codec.Malformed(sLenOffset, "malformed signature: "+
			"invalid S length %d", sLen)
	}

	r, err := parseSigInt(sig[rOffset:rOffset+rLen], rOffset, "R")
	if err != nil {
		return nil, err
	}
	s, err := parseSigInt(sig[sOffset:], sOffset, "S")
	if err != nil {
		return nil, err
	}
	return &Signature{r: r, s: s}, nil
}

func parseSigInt(b []byte, offset int, name string) (*big.Int, error) {
	if b[0]&0x80 != 0 {
		return nil, codec.Malformed(offset, "malformed signature: %s is "+
			"negative", name)
	}

	// Only one leading zero is allowed, and only when the next byte has its
	// high bit set.
	if len(b) > 1 && b[0] == 0x00 && b[1]&0x80 == 0 {
		return nil, codec.Malformed(offset, "malformed signature: %s "+
			"value has too much padding", name)
	}

	return sigIntInRange(new(big.Int).SetBytes(b), offset, name)
}
