// ECDSA 签名与验证。
package ecc

import (
	"fmt"
	"math/big"

	"github.com/sirupsen/logrus"
)

// Sign 使用 RFC6979 确定性随机数对 hash 签名，并将 s 规范化为低值形式。
// 当候选随机数导致 r 或 s 为零时，取下一个候选值重试。
func Sign(priv *PrivateKey, hash []byte) (*Signature, error) {
	z := hashToInt(hash)
	for iteration := uint32(0); ; iteration++ {
		k := NonceRFC6979(priv.d, hash, iteration)
		sig, err := signWithNonce(priv.d, k, z)
		if IsErrorCode(err, ErrInvalidNonce) {
			logrus.Debugf("签名随机数无效，第 %d 次重试: %v", iteration+1, err)
			continue
		}
		return sig, err
	}
}

// signWithNonce computes r = (kG).x mod n and s = k^-1 (z + r d) mod n with
// the inverse taken via Fermat (k^(n-2)).
func signWithNonce(d, k, z *big.Int) (*Signature, error) {
	n := secp256k1Params.N
	if k.Sign() <= 0 || k.Cmp(n) >= 0 {
		return nil, eccError(ErrInvalidNonce, "nonce is not in [1, n-1]")
	}

	R := ScalarBaseMult(k)
	r := new(big.Int).Mod(R.x.num, n)
	if r.Sign() == 0 {
		return nil, eccError(ErrInvalidNonce, "calculated R is zero")
	}

	kInv := new(big.Int).Exp(k, new(big.Int).Sub(n, bigTwo), n)
	s := new(big.Int).Mul(r, d)
	s.Add(s, z)
	s.Mul(s, kInv)
	s.Mod(s, n)
	if s.Sign() == 0 {
		return nil, eccError(ErrInvalidNonce, "calculated S is zero")
	}

	// Low-s: a signature with s > n/2 is replaced by its n - s twin.
	if s.Cmp(halfOrder) > 0 {
		s.Sub(n, s)
	}
	return &Signature{r: r, s: s}, nil
}

// Verify 报告 sig 是否为 pub 对 hash 的有效签名。无效签名返回 false 而不是错误。
func Verify(pub *PublicKey, hash []byte, sig *Signature) bool {
	if pub == nil || sig == nil || !IsOnS256(pub.point) {
		return false
	}

	n := secp256k1Params.N
	if sig.r.Sign() <= 0 || sig.r.Cmp(n) >= 0 ||
		sig.s.Sign() <= 0 || sig.s.Cmp(n) >= 0 {
		return false
	}

	z := hashToInt(hash)
	sInv := new(big.Int).Exp(sig.s, new(big.Int).Sub(n, bigTwo), n)
	u1 := new(big.Int).Mul(z, sInv)
	u1.Mod(u1, n)
	u2 := new(big.Int).Mul(sig.r, sInv)
	u2.Mod(u2, n)

	R := ScalarBaseMult(u1).add(ScalarMultS256(pub.point, u2))
	if R.infinity {
		return false
	}
	return new(big.Int).Mod(R.x.num, n).Cmp(sig.r) == 0
}

// String 返回签名的可读形式。
func (sig *Signature) String() string {
	return fmt.Sprintf("Signature(%064x, %064x)", sig.r, sig.s)
}
