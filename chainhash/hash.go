// 定义32字节哈希类型及其字节序约定。
package chainhash

import (
	"encoding/hex"
	"fmt"

	"github.com/qinglongcn/btccore/codec"
)

// HashSize 是哈希的字节数。
const HashSize = 32

// MaxHashStringSize 是哈希十六进制字符串的最大长度。
const MaxHashStringSize = HashSize * 2

// ErrHashStrSize 描述哈希字符串过长的错误。
var ErrHashStrSize = fmt.Errorf("max hash string length is %v bytes", MaxHashStringSize)

// Hash 是交易、区块头和 Merkle 节点使用的双 SHA256 哈希。
// 内部以协议字节序存储，字符串形式按惯例反转显示。
type Hash [HashSize]byte

// String 返回反转字节序后的十六进制字符串。
func (hash Hash) String() string {
	for i := 0; i < HashSize/2; i++ {
		hash[i], hash[HashSize-1-i] = hash[HashSize-1-i], hash[i]
	}
	return hex.EncodeToString(hash[:])
}

// CloneBytes 返回哈希字节的副本。
func (hash *Hash) CloneBytes() []byte {
	newHash := make([]byte, HashSize)
	copy(newHash, hash[:])

	return newHash
}

// SetBytes 设置哈希字节，长度必须为 HashSize。
func (hash *Hash) SetBytes(newHash []byte) error {
	nhlen := len(newHash)
	if nhlen != HashSize {
		return fmt.Errorf("invalid hash length of %v, want %v", nhlen,
			HashSize)
	}
	copy(hash[:], newHash)

	return nil
}

// IsEqual 报告两个哈希是否相等。
func (hash *Hash) IsEqual(target *Hash) bool {
	if hash == nil && target == nil {
		return true
	}
	if hash == nil || target == nil {
		return false
	}
	return *hash == *target
}

// NewHash 从字节切片创建哈希。
func NewHash(newHash []byte) (*Hash, error) {
	var sh Hash
	err := sh.SetBytes(newHash)
	if err != nil {
		return nil, err
	}
	return &sh, err
}

// NewHashFromStr 从反转字节序的十六进制字符串创建哈希。
func NewHashFromStr(hash string) (*Hash, error) {
	ret := new(Hash)
	err := Decode(ret, hash)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Decode 将反转字节序的十六进制字符串解码到 dst。
// 长度不足64个字符时在高位补零。
func Decode(dst *Hash, src string) error {
	if len(src) > MaxHashStringSize {
		return ErrHashStrSize
	}

	var srcBytes []byte
	if len(src)%2 == 0 {
		srcBytes = []byte(src)
	} else {
		srcBytes = make([]byte, 1+len(src))
		srcBytes[0] = '0'
		copy(srcBytes[1:], src)
	}

	var reversedHash Hash
	_, err := hex.Decode(reversedHash[HashSize-hex.DecodedLen(len(srcBytes)):], srcBytes)
	if err != nil {
		return err
	}

	copy(dst[:], reversedHash[:])
	codec.ReverseBytes(dst[:])
	return nil
}
