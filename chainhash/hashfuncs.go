package chainhash

import (
	"crypto/sha256"

	"golang.org/x/crypto/ripemd160"
)

// HashB 计算 b 的 SHA256。
func HashB(b []byte) []byte {
	hash := sha256.Sum256(b)
	return hash[:]
}

// HashH 计算 b 的 SHA256 并以 Hash 返回。
func HashH(b []byte) Hash {
	return Hash(sha256.Sum256(b))
}

// DoubleHashB 计算 sha256(sha256(b))。
func DoubleHashB(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:]
}

// DoubleHashH 计算 sha256(sha256(b)) 并以 Hash 返回。
func DoubleHashH(b []byte) Hash {
	first := sha256.Sum256(b)
	return Hash(sha256.Sum256(first[:]))
}

// Hash160 计算 ripemd160(sha256(b))，用于公钥哈希与脚本哈希。
func Hash160(b []byte) []byte {
	h := ripemd160.New()
	h.Write(HashB(b))
	return h.Sum(nil)
}
