// 按 RFC6979 使用 HMAC-SHA256 生成确定性签名随机数。
package ecc

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"math/big"
)

var (
	// singleZero and singleOne are used as separators in the HMAC-DRBG
	// steps.
	singleZero = []byte{0x00}
	singleOne  = []byte{0x01}
)

// int2octets 将整数编码为32字节大端形式。
func int2octets(v *big.Int) []byte {
	out := make([]byte, PrivKeyBytesLen)
	return v.FillBytes(out)
}

// hashToInt 将哈希解释为整数，超过曲线位数时截取最左侧的位（RFC6979 bits2int）。
func hashToInt(hash []byte) *big.Int {
	orderBytes := (secp256k1Params.N.BitLen() + 7) / 8
	if len(hash) > orderBytes {
		hash = hash[:orderBytes]
	}

	ret := new(big.Int).SetBytes(hash)
	excess := len(hash)*8 - secp256k1Params.N.BitLen()
	if excess > 0 {
		ret.Rsh(ret, uint(excess))
	}
	return ret
}

func mac(k []byte, parts ...[]byte) []byte {
	h := hmac.New(sha256.New, k)
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}

// NonceRFC6979 为私钥 d 与消息哈希生成确定性随机数 k，满足 1 <= k < n。
// extraIterations 跳过前若干个有效候选值，签名时遇到 r 或 s 为零就用它取下一个候选值。
func NonceRFC6979(d *big.Int, hash []byte, extraIterations uint32) *big.Int {
	n := secp256k1Params.N

	x := int2octets(d)

	// bits2octets(h1) = int2octets(bits2int(h1) mod n)
	h1 := hashToInt(hash)
	if h1.Cmp(n) >= 0 {
		h1.Sub(h1, n)
	}
	hb := int2octets(h1)

	// Step B: V = 0x01 0x01 ... 0x01
	v := bytes.Repeat(singleOne, sha256.Size)

	// Step C: K = 0x00 0x00 ... 0x00
	k := make([]byte, sha256.Size)

	// Step D: K = HMAC_K(V || 0x00 || int2octets(x) || bits2octets(h1))
	k = mac(k, v, singleZero, x, hb)

	// Step E: V = HMAC_K(V)
	v = mac(k, v)

	// Step F: K = HMAC_K(V || 0x01 || int2octets(x) || bits2octets(h1))
	k = mac(k, v, singleOne, x, hb)

	// Step G: V = HMAC_K(V)
	v = mac(k, v)

	// Step H: generate candidates until one lands in [1, n-1].
	var generated uint32
	for {
		// qlen == hlen for secp256k1 with SHA-256, so a single HMAC
		// output is enough for T.
		v = mac(k, v)

		secret := hashToInt(v)
		if secret.Sign() > 0 && secret.Cmp(n) < 0 {
			if generated == extraIterations {
				return secret
			}
			generated++
		}

		k = mac(k, v, singleZero)
		v = mac(k, v)
	}
}
