// 实现 BIP173 的 Bech32 与 BIP350 的 Bech32m 编码，以及隔离见证地址的编解码。
package codec

import (
	"strings"
)

const bech32Charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

// bech32MaxLength 是 BIP173 规定的字符串最大长度。
const bech32MaxLength = 90

// Bech32Variant 区分 Bech32 与 Bech32m 两种校验和常量。
type Bech32Variant int

const (
	// VariantBech32 用于见证版本 0。
	VariantBech32 Bech32Variant = iota + 1

	// VariantBech32m 用于见证版本 1 及以上。
	VariantBech32m
)

var bech32Gen = [5]uint32{0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3}

func (v Bech32Variant) constant() uint32 {
	if v == VariantBech32m {
		return 0x2bc830a3
	}
	return 1
}

// String 返回变体名称。
func (v Bech32Variant) String() string {
	switch v {
	case VariantBech32:
		return "bech32"
	case VariantBech32m:
		return "bech32m"
	}
	return "unknown"
}

var bech32Rev = func() [128]int8 {
	var rev [128]int8
	for i := range rev {
		rev[i] = -1
	}
	for i := 0; i < len(bech32Charset); i++ {
		rev[bech32Charset[i]] = int8(i)
	}
	return rev
}()

func bech32Polymod(values []byte) uint32 {
	chk := uint32(1)
	for _, v := range values {
		top := chk >> 25
		chk = (chk&0x1ffffff)<<5 ^ uint32(v)
		for i := 0; i < 5; i++ {
			if (top>>uint(i))&1 == 1 {
				chk ^= bech32Gen[i]
			}
		}
	}
	return chk
}

func bech32HrpExpand(hrp string) []byte {
	out := make([]byte, 0, len(hrp)*2+1)
	for i := 0; i < len(hrp); i++ {
		out = append(out, hrp[i]>>5)
	}
	out = append(out, 0)
	for i := 0; i < len(hrp); i++ {
		out = append(out, hrp[i]&31)
	}
	return out
}

func bech32Checksum(hrp string, data []byte, variant Bech32Variant) []byte {
	values := append(bech32HrpExpand(hrp), data...)
	values = append(values, 0, 0, 0, 0, 0, 0)
	mod := bech32Polymod(values) ^ variant.constant()

	out := make([]byte, 6)
	for i := 0; i < 6; i++ {
		out[i] = byte((mod >> uint(5*(5-i))) & 31)
	}
	return out
}

// Bech32Encode 使用给定的人类可读部分和 5 位分组数据生成 Bech32/Bech32m 字符串。
func Bech32Encode(hrp string, data []byte, variant Bech32Variant) (string, error) {
	hrp = strings.ToLower(hrp)
	if len(hrp)+len(data)+7 > bech32MaxLength {
		return "", malformed(0, "bech32 string length %d exceeds %d",
			len(hrp)+len(data)+7, bech32MaxLength)
	}

	var sb strings.Builder
	sb.Grow(len(hrp) + 1 + len(data) + 6)
	sb.WriteString(hrp)
	sb.WriteByte('1')
	for i, b := range data {
		if b >= 32 {
			return "", malformed(i, "invalid 5-bit value %d", b)
		}
		sb.WriteByte(bech32Charset[b])
	}
	for _, b := range bech32Checksum(hrp, data, variant) {
		sb.WriteByte(bech32Charset[b])
	}
	return sb.String(), nil
}

// Bech32Decode 解码一个 Bech32 或 Bech32m 字符串，返回人类可读部分、
// 不含校验和的 5 位分组数据以及识别出的变体。
func Bech32Decode(s string) (string, []byte, Bech32Variant, error) {
	if len(s) > bech32MaxLength {
		return "", nil, 0, malformed(bech32MaxLength,
			"bech32 string length %d exceeds %d", len(s), bech32MaxLength)
	}

	var hasLower, hasUpper bool
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 33 || c > 126 {
			return "", nil, 0, malformed(i, "invalid bech32 character %q", c)
		}
		if c >= 'a' && c <= 'z' {
			hasLower = true
		}
		if c >= 'A' && c <= 'Z' {
			hasUpper = true
		}
	}
	if hasLower && hasUpper {
		return "", nil, 0, malformed(0, "bech32 string uses mixed case")
	}
	s = strings.ToLower(s)

	sep := strings.LastIndexByte(s, '1')
	if sep < 1 {
		return "", nil, 0, malformed(0, "bech32 separator missing or hrp empty")
	}
	if sep+7 > len(s) {
		return "", nil, 0, DecodeError{
			Code:        ErrMalformedEncoding,
			Offset:      len(s),
			Expected:    sep + 7,
			Description: "bech32 checksum too short",
		}
	}

	hrp := s[:sep]
	data := make([]byte, 0, len(s)-sep-1)
	for i := sep + 1; i < len(s); i++ {
		v := bech32Rev[s[i]]
		if v < 0 {
			return "", nil, 0, malformed(i, "invalid bech32 character %q", s[i])
		}
		data = append(data, byte(v))
	}

	var variant Bech32Variant
	switch bech32Polymod(append(bech32HrpExpand(hrp), data...)) {
	case VariantBech32.constant():
		variant = VariantBech32
	case VariantBech32m.constant():
		variant = VariantBech32m
	default:
		return "", nil, 0, DecodeError{
			Code:        ErrChecksumMismatch,
			Offset:      len(s) - 6,
			Description: "bech32 checksum mismatch",
		}
	}

	return hrp, data[:len(data)-6], variant, nil
}

// ConvertBits 在不同位宽的分组之间转换，例如 8 位字节与 5 位分组。
func ConvertBits(data []byte, fromBits, toBits uint, pad bool) ([]byte, error) {
	var (
		acc  uint32
		bits uint
		out  []byte
	)
	maxv := uint32(1)<<toBits - 1
	for i, b := range data {
		if uint32(b)>>fromBits != 0 {
			return nil, malformed(i, "invalid %d-bit group %d", fromBits, b)
		}
		acc = acc<<fromBits | uint32(b)
		bits += fromBits
		for bits >= toBits {
			bits -= toBits
			out = append(out, byte(acc>>bits&maxv))
		}
	}

	if pad {
		if bits > 0 {
			out = append(out, byte(acc<<(toBits-bits)&maxv))
		}
	} else if bits >= fromBits || acc<<(toBits-bits)&maxv != 0 {
		return nil, malformed(len(data), "invalid padding in %d-bit groups",
			fromBits)
	}
	return out, nil
}

// EncodeSegWitAddress 编码一个隔离见证地址。版本 0 使用 Bech32，其余版本使用 Bech32m。
func EncodeSegWitAddress(hrp string, version byte, program []byte) (string, error) {
	if err := checkWitnessProgram(version, program); err != nil {
		return "", err
	}

	conv, err := ConvertBits(program, 8, 5, true)
	if err != nil {
		return "", err
	}
	variant := VariantBech32
	if version != 0 {
		variant = VariantBech32m
	}
	return Bech32Encode(hrp, append([]byte{version}, conv...), variant)
}

// DecodeSegWitAddress 解码隔离见证地址，并校验 hrp、版本与所用变体是否一致。
func DecodeSegWitAddress(hrp, addr string) (byte, []byte, error) {
	gotHrp, data, variant, err := Bech32Decode(addr)
	if err != nil {
		return 0, nil, err
	}
	if gotHrp != strings.ToLower(hrp) {
		return 0, nil, malformed(0, "invalid human-readable part %q, want %q",
			gotHrp, hrp)
	}
	if len(data) < 1 {
		return 0, nil, malformed(len(gotHrp)+1, "missing witness version")
	}

	version := data[0]
	if version > 16 {
		return 0, nil, malformed(len(gotHrp)+1, "invalid witness version %d",
			version)
	}
	if (version == 0) != (variant == VariantBech32) {
		return 0, nil, malformed(len(gotHrp)+1, "witness version %d encoded "+
			"with %s", version, variant)
	}

	program, err := ConvertBits(data[1:], 5, 8, false)
	if err != nil {
		return 0, nil, err
	}
	if err := checkWitnessProgram(version, program); err != nil {
		return 0, nil, err
	}
	return version, program, nil
}

func checkWitnessProgram(version byte, program []byte) error {
	if version > 16 {
		return malformed(0, "invalid witness version %d", version)
	}
	if len(program) < 2 || len(program) > 40 {
		return malformed(0, "invalid witness program length %d", len(program))
	}
	if version == 0 && len(program) != 20 && len(program) != 32 {
		return malformed(0, "invalid witness v0 program length %d",
			len(program))
	}
	return nil
}
