// 比特币地址：Base58Check 编码的 P2PKH/P2SH 与 Bech32/Bech32m 编码的隔离见证地址。
package address

import (
	"errors"
	"fmt"
	"strings"

	"github.com/qinglongcn/btccore/chaincfg"
	"github.com/qinglongcn/btccore/chainhash"
	"github.com/qinglongcn/btccore/codec"
)

// Hash160Size 是公钥哈希与脚本哈希的字节数。
const Hash160Size = 20

var (
	// ErrUnknownAddressType 表示地址能够解码，但不是已知的地址类型。
	ErrUnknownAddressType = errors.New("unknown address type")

	// ErrWrongNetwork 表示地址属于另一个网络。
	ErrWrongNetwork = errors.New("address is for the wrong network")
)

// Address 是一个可以作为交易输出目标的比特币地址。
type Address interface {
	// String 返回地址的编码形式，与 EncodeAddress 相同。
	String() string

	// EncodeAddress 返回地址的字符串编码。
	EncodeAddress() string

	// ScriptAddress 返回放入锁定脚本中的原始字节（哈希或见证程序）。
	ScriptAddress() []byte

	// IsForNet 报告地址是否属于给定网络。
	IsForNet(*chaincfg.Params) bool
}

// DecodeAddress 解码地址字符串，并检查其是否属于 params 指定的网络。
func DecodeAddress(addr string, params *chaincfg.Params) (Address, error) {
	// Segwit addresses start with the network's human-readable part.
	oneIndex := strings.LastIndexByte(addr, '1')
	if oneIndex > 1 {
		prefix := addr[:oneIndex+1]
		if strings.EqualFold(prefix, params.Bech32HRPSegwit+"1") {
			return decodeSegWitAddress(addr, params)
		}
	}

	decoded, netID, err := codec.CheckDecode(addr)
	if err != nil {
		return nil, err
	}
	if len(decoded) != Hash160Size {
		return nil, fmt.Errorf("%w: decoded address is of unknown size %d",
			ErrUnknownAddressType, len(decoded))
	}

	switch netID {
	case params.PubKeyHashAddrID:
		return newAddressPubKeyHash(decoded, netID)
	case params.ScriptHashAddrID:
		return newAddressScriptHashFromHash(decoded, netID)
	}
	return nil, ErrWrongNetwork
}

func decodeSegWitAddress(addr string, params *chaincfg.Params) (Address, error) {
	version, program, err := codec.DecodeSegWitAddress(params.Bech32HRPSegwit, addr)
	if err != nil {
		return nil, err
	}

	hrp := params.Bech32HRPSegwit
	switch {
	case version == 0 && len(program) == Hash160Size:
		return newAddressWitnessPubKeyHash(hrp, program)
	case version == 0 && len(program) == 32:
		return newAddressWitnessScriptHash(hrp, program)
	case version == 1 && len(program) == 32:
		return newAddressTaproot(hrp, program)
	}
	return nil, fmt.Errorf("%w: witness version %d program length %d",
		ErrUnknownAddressType, version, len(program))
}

// AddressPubKeyHash 是支付到公钥哈希（P2PKH）地址。
type AddressPubKeyHash struct {
	hash  [Hash160Size]byte
	netID byte
}

// NewAddressPubKeyHash 从20字节公钥哈希创建 P2PKH 地址。
func NewAddressPubKeyHash(pkHash []byte, params *chaincfg.Params) (*AddressPubKeyHash, error) {
	return newAddressPubKeyHash(pkHash, params.PubKeyHashAddrID)
}

// NewAddressPubKeyHashFromPubKey 从序列化公钥创建 P2PKH 地址。
func NewAddressPubKeyHashFromPubKey(serializedPubKey []byte, params *chaincfg.Params) (*AddressPubKeyHash, error) {
	return NewAddressPubKeyHash(chainhash.Hash160(serializedPubKey), params)
}

func newAddressPubKeyHash(pkHash []byte, netID byte) (*AddressPubKeyHash, error) {
	if len(pkHash) != Hash160Size {
		return nil, errors.New("pkHash must be 20 bytes")
	}

	addr := &AddressPubKeyHash{netID: netID}
	copy(addr.hash[:], pkHash)
	return addr, nil
}

// EncodeAddress 返回 Base58Check 编码的地址。
func (a *AddressPubKeyHash) EncodeAddress() string {
	return codec.CheckEncode(a.hash[:], a.netID)
}

// ScriptAddress 返回公钥哈希。
func (a *AddressPubKeyHash) ScriptAddress() []byte {
	return a.hash[:]
}

// IsForNet 报告地址是否属于给定网络。
func (a *AddressPubKeyHash) IsForNet(params *chaincfg.Params) bool {
	return a.netID == params.PubKeyHashAddrID
}

// String 返回编码后的地址。
func (a *AddressPubKeyHash) String() string {
	return a.EncodeAddress()
}

// Hash160 返回公钥哈希数组。
func (a *AddressPubKeyHash) Hash160() *[Hash160Size]byte {
	return &a.hash
}

// AddressScriptHash 是支付到脚本哈希（P2SH）地址。
type AddressScriptHash struct {
	hash  [Hash160Size]byte
	netID byte
}

// NewAddressScriptHash 对赎回脚本取 HASH160 并创建 P2SH 地址。
func NewAddressScriptHash(serializedScript []byte, params *chaincfg.Params) (*AddressScriptHash, error) {
	return newAddressScriptHashFromHash(chainhash.Hash160(serializedScript),
		params.ScriptHashAddrID)
}

// NewAddressScriptHashFromHash 从20字节脚本哈希创建 P2SH 地址。
func NewAddressScriptHashFromHash(scriptHash []byte, params *chaincfg.Params) (*AddressScriptHash, error) {
	return newAddressScriptHashFromHash(scriptHash, params.ScriptHashAddrID)
}

func newAddressScriptHashFromHash(scriptHash []byte, netID byte) (*AddressScriptHash, error) {
	if len(scriptHash) != Hash160Size {
		return nil, errors.New("scriptHash must be 20 bytes")
	}

	addr := &AddressScriptHash{netID: netID}
	copy(addr.hash[:], scriptHash)
	return addr, nil
}

// EncodeAddress 返回 Base58Check 编码的地址。
func (a *AddressScriptHash) EncodeAddress() string {
	return codec.CheckEncode(a.hash[:], a.netID)
}

// ScriptAddress 返回脚本哈希。
func (a *AddressScriptHash) ScriptAddress() []byte {
	return a.hash[:]
}

// IsForNet 报告地址是否属于给定网络。
func (a *AddressScriptHash) IsForNet(params *chaincfg.Params) bool {
	return a.netID == params.ScriptHashAddrID
}

// String 返回编码后的地址。
func (a *AddressScriptHash) String() string {
	return a.EncodeAddress()
}

// Hash160 返回脚本哈希数组。
func (a *AddressScriptHash) Hash160() *[Hash160Size]byte {
	return &a.hash
}

// addressSegWit 是各类隔离见证地址的公共部分。
type addressSegWit struct {
	hrp            string
	witnessVersion byte
	witnessProgram []byte
}

// EncodeAddress 返回 Bech32 或 Bech32m 编码的地址。
func (a *addressSegWit) EncodeAddress() string {
	str, err := codec.EncodeSegWitAddress(a.hrp, a.witnessVersion, a.witnessProgram)
	if err != nil {
		return ""
	}
	return str
}

// ScriptAddress 返回见证程序。
func (a *addressSegWit) ScriptAddress() []byte {
	return a.witnessProgram
}

// IsForNet 报告地址是否属于给定网络。
func (a *addressSegWit) IsForNet(params *chaincfg.Params) bool {
	return a.hrp == params.Bech32HRPSegwit
}

// String 返回编码后的地址。
func (a *addressSegWit) String() string {
	return a.EncodeAddress()
}

// WitnessVersion 返回见证版本。
func (a *addressSegWit) WitnessVersion() byte {
	return a.witnessVersion
}

// WitnessProgram 返回见证程序。
func (a *addressSegWit) WitnessProgram() []byte {
	return a.witnessProgram
}

// AddressWitnessPubKeyHash 是版本 0 的支付到见证公钥哈希（P2WPKH）地址。
type AddressWitnessPubKeyHash struct {
	addressSegWit
}

// NewAddressWitnessPubKeyHash 从20字节公钥哈希创建 P2WPKH 地址。
func NewAddressWitnessPubKeyHash(witnessProg []byte, params *chaincfg.Params) (*AddressWitnessPubKeyHash, error) {
	return newAddressWitnessPubKeyHash(params.Bech32HRPSegwit, witnessProg)
}

func newAddressWitnessPubKeyHash(hrp string, witnessProg []byte) (*AddressWitnessPubKeyHash, error) {
	if len(witnessProg) != Hash160Size {
		return nil, errors.New("witness program must be 20 bytes for p2wpkh")
	}
	return &AddressWitnessPubKeyHash{addressSegWit{
		hrp:            strings.ToLower(hrp),
		witnessVersion: 0x00,
		witnessProgram: append([]byte(nil), witnessProg...),
	}}, nil
}

// AddressWitnessScriptHash 是版本 0 的支付到见证脚本哈希（P2WSH）地址。
type AddressWitnessScriptHash struct {
	addressSegWit
}

// NewAddressWitnessScriptHash 从32字节脚本 SHA256 创建 P2WSH 地址。
func NewAddressWitnessScriptHash(witnessProg []byte, params *chaincfg.Params) (*AddressWitnessScriptHash, error) {
	return newAddressWitnessScriptHash(params.Bech32HRPSegwit, witnessProg)
}

func newAddressWitnessScriptHash(hrp string, witnessProg []byte) (*AddressWitnessScriptHash, error) {
	if len(witnessProg) != 32 {
		return nil, errors.New("witness program must be 32 bytes for p2wsh")
	}
	return &AddressWitnessScriptHash{addressSegWit{
		hrp:            strings.ToLower(hrp),
		witnessVersion: 0x00,
		witnessProgram: append([]byte(nil), witnessProg...),
	}}, nil
}

// AddressTaproot 是版本 1 的见证地址。这里只负责编解码，不校验 Schnorr 花费。
type AddressTaproot struct {
	addressSegWit
}

// NewAddressTaproot 从32字节输出公钥创建 P2TR 地址。
func NewAddressTaproot(witnessProg []byte, params *chaincfg.Params) (*AddressTaproot, error) {
	return newAddressTaproot(params.Bech32HRPSegwit, witnessProg)
}

func newAddressTaproot(hrp string, witnessProg []byte) (*AddressTaproot, error) {
	if len(witnessProg) != 32 {
		return nil, errors.New("witness program must be 32 bytes for p2tr")
	}
	return &AddressTaproot{addressSegWit{
		hrp:            strings.ToLower(hrp),
		witnessVersion: 0x01,
		witnessProgram: append([]byte(nil), witnessProg...),
	}}, nil
}
