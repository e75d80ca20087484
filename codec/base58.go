// 实现 Base58 编码与 Base58Check 编码。
package codec

import (
	"bytes"
	"crypto/sha256"
	"math/big"
)

// b58Alphabet 是Base58编码的字母表。
var b58Alphabet = []byte("123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz")

var bigRadix = big.NewInt(58)

// checksumLen 是 Base58Check 校验和的长度。
const checksumLen = 4

// Base58Encode 函数接受一个字节切片输入，并返回其Base58编码的字符串。
func Base58Encode(input []byte) string {
	var result []byte

	// 将输入字节切片转换为大整数x，不断除以58并记录余数。
	x := new(big.Int).SetBytes(input)
	mod := new(big.Int)
	for x.Sign() != 0 {
		x.DivMod(x, bigRadix, mod)
		result = append(result, b58Alphabet[mod.Int64()])
	}

	// 每个前导0x00字节都编码为字母表的第一个字符。
	for _, b := range input {
		if b != 0x00 {
			break
		}
		result = append(result, b58Alphabet[0])
	}

	// 反转result字节切片，得到最终的Base58编码结果。
	ReverseBytes(result)

	return string(result)
}

// Base58Decode 函数接受一个Base58编码的字符串，并返回解码后的字节切片。
// 出现字母表以外的字符时返回 ErrMalformedEncoding，Offset 指向该字符。
func Base58Decode(input string) ([]byte, error) {
	result := new(big.Int)
	for i := 0; i < len(input); i++ {
		// 查找当前字节在Base58字母表中的索引
		charIndex := bytes.IndexByte(b58Alphabet, input[i])
		if charIndex < 0 {
			return nil, malformed(i, "invalid base58 character %q", input[i])
		}
		result.Mul(result, bigRadix)
		result.Add(result, big.NewInt(int64(charIndex)))
	}

	decoded := result.Bytes()

	// 每个前导的字母表首字符对应一个0x00字节
	var numZeros int
	for numZeros < len(input) && input[numZeros] == b58Alphabet[0] {
		numZeros++
	}

	out := make([]byte, numZeros+len(decoded))
	copy(out[numZeros:], decoded)
	return out, nil
}

// checksum 计算 payload 的双 SHA256 并返回前 4 个字节。
func checksum(payload []byte) [checksumLen]byte {
	firstSHA := sha256.Sum256(payload)
	secondSHA := sha256.Sum256(firstSHA[:])

	var out [checksumLen]byte
	copy(out[:], secondSHA[:checksumLen])
	return out
}

// CheckEncode 在 payload 前加上版本字节、在末尾追加校验和，然后进行 Base58 编码。
func CheckEncode(payload []byte, version byte) string {
	versioned := make([]byte, 0, 1+len(payload)+checksumLen)
	versioned = append(versioned, version)
	versioned = append(versioned, payload...)
	cksum := checksum(versioned)
	return Base58Encode(append(versioned, cksum[:]...))
}

// CheckDecode 解码 Base58Check 字符串，返回 payload 与版本字节。
func CheckDecode(input string) ([]byte, byte, error) {
	decoded, err := Base58Decode(input)
	if err != nil {
		return nil, 0, err
	}
	if len(decoded) < 1+checksumLen {
		return nil, 0, DecodeError{
			Code:        ErrMalformedEncoding,
			Offset:      len(decoded),
			Expected:    1 + checksumLen,
			Description: "base58check payload too short",
		}
	}

	body := decoded[:len(decoded)-checksumLen]
	want := checksum(body)
	if !bytes.Equal(want[:], decoded[len(decoded)-checksumLen:]) {
		return nil, 0, DecodeError{
			Code:        ErrChecksumMismatch,
			Offset:      len(body),
			Description: "base58check checksum mismatch",
		}
	}
	return body[1:], body[0], nil
}
