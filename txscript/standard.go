// 包含识别和处理标准交易类型的函数。

package txscript

import (
	"fmt"

	"github.com/qinglongcn/btccore/address"
	"github.com/qinglongcn/btccore/chaincfg"
)

const (
	// MaxDataCarrierSize 是空数据脚本中允许推送的最大字节数。
	MaxDataCarrierSize = 80

	// StandardVerifyFlags 是验证标准交易时使用的脚本标志。
	// 它们比共识规则更严格，用于减少交易延展性问题。
	StandardVerifyFlags = ScriptBip16 |
		ScriptVerifyDERSignatures |
		ScriptVerifyStrictEncoding |
		ScriptVerifyMinimalData |
		ScriptStrictMultiSig |
		ScriptDiscourageUpgradableNops |
		ScriptVerifyCleanStack |
		ScriptVerifyNullFail |
		ScriptVerifyCheckLockTimeVerify |
		ScriptVerifyCheckSequenceVerify |
		ScriptVerifyLowS |
		ScriptVerifyWitness |
		ScriptVerifyDiscourageUpgradeableWitnessProgram |
		ScriptVerifyMinimalIf |
		ScriptVerifyWitnessPubKeyType
)

const (
	witnessV0PubKeyHashLen = 22
	witnessV0ScriptHashLen = 34
	witnessV1TaprootLen    = 34
)

// ScriptClass 是脚本标准类型的枚举。
type ScriptClass byte

// 已知的脚本类型。
const (
	NonStandardTy         ScriptClass = iota // 没有任何公认的形式。
	PubKeyTy                                 // 支付到公钥。
	PubKeyHashTy                             // 支付到公钥哈希。
	WitnessV0PubKeyHashTy                    // 支付到见证公钥哈希。
	ScriptHashTy                             // 支付到脚本哈希。
	WitnessV0ScriptHashTy                    // 支付到见证脚本哈希。
	MultiSigTy                               // 多重签名。
	NullDataTy                               // 只有空数据（可证明可剪枝）。
	WitnessV1TaprootTy                       // taproot 输出。
	WitnessUnknownTy                         // 未知版本的见证程序。
)

var scriptClassToName = []string{
	NonStandardTy:         "nonstandard",
	PubKeyTy:              "pubkey",
	PubKeyHashTy:          "pubkeyhash",
	WitnessV0PubKeyHashTy: "witness_v0_keyhash",
	ScriptHashTy:          "scripthash",
	WitnessV0ScriptHashTy: "witness_v0_scripthash",
	MultiSigTy:            "multisig",
	NullDataTy:            "nulldata",
	WitnessV1TaprootTy:    "witness_v1_taproot",
	WitnessUnknownTy:      "witness_unknown",
}

// String 返回脚本类型的名称，无效值返回 "Invalid"。
func (t ScriptClass) String() string {
	if int(t) >= len(scriptClassToName) {
		return "Invalid"
	}
	return scriptClassToName[t]
}

// extractCompressedPubKey 从 OP_DATA_33 <pubkey> OP_CHECKSIG 中提取压缩公钥，否则返回 nil。
func extractCompressedPubKey(script []byte) []byte {
	if len(script) == 35 &&
		script[34] == OP_CHECKSIG &&
		script[0] == OP_DATA_33 &&
		(script[1] == 0x02 || script[1] == 0x03) {

		return script[1:34]
	}

	return nil
}

// extractUncompressedPubKey 从 OP_DATA_65 <pubkey> OP_CHECKSIG 中提取非压缩公钥，否则返回 nil。
func extractUncompressedPubKey(script []byte) []byte {
	// 0x06 and 0x07 are the hybrid forms.
	if len(script) == 67 &&
		script[66] == OP_CHECKSIG &&
		script[0] == OP_DATA_65 &&
		(script[1] == 0x04 || script[1] == 0x06 || script[1] == 0x07) {

		return script[1:66]
	}
	return nil
}

func extractPubKey(script []byte) []byte {
	if pubKey := extractCompressedPubKey(script); pubKey != nil {
		return pubKey
	}
	return extractUncompressedPubKey(script)
}

func isPubKeyScript(script []byte) bool {
	return extractPubKey(script) != nil
}

// extractPubKeyHash 从标准 P2PKH 脚本中提取公钥哈希，否则返回 nil。
func extractPubKeyHash(script []byte) []byte {
	// OP_DUP OP_HASH160 <20-byte hash> OP_EQUALVERIFY OP_CHECKSIG
	if len(script) == 25 &&
		script[0] == OP_DUP &&
		script[1] == OP_HASH160 &&
		script[2] == OP_DATA_20 &&
		script[23] == OP_EQUALVERIFY &&
		script[24] == OP_CHECKSIG {

		return script[3:23]
	}

	return nil
}

func isPubKeyHashScript(script []byte) bool {
	return extractPubKeyHash(script) != nil
}

// extractScriptHash 从标准 P2SH 脚本中提取脚本哈希，否则返回 nil。
func extractScriptHash(script []byte) []byte {
	// OP_HASH160 <20-byte scripthash> OP_EQUAL
	if len(script) == 23 &&
		script[0] == OP_HASH160 &&
		script[1] == OP_DATA_20 &&
		script[22] == OP_EQUAL {

		return script[2:22]
	}

	return nil
}

func isScriptHashScript(script []byte) bool {
	return extractScriptHash(script) != nil
}

// multiSigDetails 是从标准多重签名脚本中提取的信息。
type multiSigDetails struct {
	requiredSigs int
	numPubKeys   int
	pubKeys      [][]byte
	valid        bool
}

// extractMultisigScriptDetails 解析 NUM_SIGS PUBKEY ... NUM_PUBKEYS OP_CHECKMULTISIG 形式的脚本。
// extractPubKeys 为假时不收集公钥，以免分配。
func extractMultisigScriptDetails(script []byte, extractPubKeys bool) multiSigDetails {
	if len(script) < 3 || script[len(script)-1] != OP_CHECKMULTISIG {
		return multiSigDetails{}
	}

	tokenizer := MakeScriptTokenizer(script)
	if !tokenizer.Next() || !isSmallInt(tokenizer.Opcode()) {
		return multiSigDetails{}
	}
	requiredSigs := asSmallInt(tokenizer.Opcode())

	var numPubKeys int
	var pubKeys [][]byte
	if extractPubKeys {
		pubKeys = make([][]byte, 0, MaxPubKeysPerMultiSig)
	}
	for tokenizer.Next() {
		if isSmallInt(tokenizer.Opcode()) {
			break
		}

		data := tokenizer.Data()
		numPubKeys++
		if !isStrictPubKeyEncoding(data) {
			continue
		}
		if extractPubKeys {
			pubKeys = append(pubKeys, data)
		}
	}
	if tokenizer.Done() {
		return multiSigDetails{}
	}

	op := tokenizer.Opcode()
	if !isSmallInt(op) || asSmallInt(op) != numPubKeys {
		return multiSigDetails{}
	}

	// Only OP_CHECKMULTISIG may remain.
	if len(tokenizer.Script())-tokenizer.ByteIndex() != 1 {
		return multiSigDetails{}
	}

	return multiSigDetails{
		requiredSigs: requiredSigs,
		numPubKeys:   numPubKeys,
		pubKeys:      pubKeys,
		valid:        true,
	}
}

func isMultisigScript(script []byte) bool {
	return extractMultisigScriptDetails(script, false).valid
}

// IsMultisigScript 返回脚本是否为标准多重签名脚本。
func IsMultisigScript(script []byte) bool {
	return isMultisigScript(script)
}

// extractWitnessPubKeyHash 从 OP_0 OP_DATA_20 <hash> 中提取公钥哈希，否则返回 nil。
func extractWitnessPubKeyHash(script []byte) []byte {
	if len(script) == witnessV0PubKeyHashLen &&
		script[0] == OP_0 &&
		script[1] == OP_DATA_20 {

		return script[2:witnessV0PubKeyHashLen]
	}

	return nil
}

func isWitnessPubKeyHashScript(script []byte) bool {
	return extractWitnessPubKeyHash(script) != nil
}

// extractWitnessV0ScriptHash 从 OP_0 OP_DATA_32 <hash> 中提取脚本哈希，否则返回 nil。
func extractWitnessV0ScriptHash(script []byte) []byte {
	if len(script) == witnessV0ScriptHashLen &&
		script[0] == OP_0 &&
		script[1] == OP_DATA_32 {

		return script[2:34]
	}

	return nil
}

func isWitnessScriptHashScript(script []byte) bool {
	return extractWitnessV0ScriptHash(script) != nil
}

// extractWitnessV1KeyBytes 从 OP_1 OP_DATA_32 <key> 中提取输出公钥，否则返回 nil。
func extractWitnessV1KeyBytes(script []byte) []byte {
	if len(script) == witnessV1TaprootLen &&
		script[0] == OP_1 &&
		script[1] == OP_DATA_32 {

		return script[2:34]
	}

	return nil
}

func isWitnessTaprootScript(script []byte) bool {
	return extractWitnessV1KeyBytes(script) != nil
}

// extractWitnessProgramInfo 返回见证程序的版本与程序，最后一个返回值表示脚本是否为有效的见证程序。
func extractWitnessProgramInfo(script []byte) (int, []byte, bool) {
	// A version byte plus a 2 to 40 byte push.
	if len(script) < 4 || len(script) > 42 {
		return 0, nil, false
	}

	tokenizer := MakeScriptTokenizer(script)
	if !tokenizer.Next() || !isSmallInt(tokenizer.Opcode()) {
		return 0, nil, false
	}
	version := asSmallInt(tokenizer.Opcode())

	if !tokenizer.Next() ||
		!isCanonicalPush(tokenizer.Opcode(), tokenizer.Data()) {

		return 0, nil, false
	}
	program := tokenizer.Data()
	if len(program) < 2 || len(program) > 40 {
		return 0, nil, false
	}

	valid := tokenizer.Done() && tokenizer.Err() == nil
	return version, program, valid
}

func isWitnessProgramScript(script []byte) bool {
	_, _, valid := extractWitnessProgramInfo(script)
	return valid
}

// isNullDataScript 返回脚本是否为单独的 OP_RETURN，或 OP_RETURN 后跟一个不超过 MaxDataCarrierSize 字节的推送。
func isNullDataScript(script []byte) bool {
	if len(script) < 1 || script[0] != OP_RETURN {
		return false
	}

	if len(script) == 1 {
		return true
	}

	tokenizer := MakeScriptTokenizer(script[1:])
	return tokenizer.Next() && tokenizer.Done() &&
		(isSmallInt(tokenizer.Opcode()) || tokenizer.Opcode() <= OP_PUSHDATA4) &&
		len(tokenizer.Data()) <= MaxDataCarrierSize
}

// GetScriptClass 返回脚本的类型，无法识别或无法解析时返回 NonStandardTy。
func GetScriptClass(script []byte) ScriptClass {
	switch {
	case isPubKeyScript(script):
		return PubKeyTy
	case isPubKeyHashScript(script):
		return PubKeyHashTy
	case isScriptHashScript(script):
		return ScriptHashTy
	case isWitnessPubKeyHashScript(script):
		return WitnessV0PubKeyHashTy
	case isWitnessScriptHashScript(script):
		return WitnessV0ScriptHashTy
	case isWitnessTaprootScript(script):
		return WitnessV1TaprootTy
	case isMultisigScript(script):
		return MultiSigTy
	case isNullDataScript(script):
		return NullDataTy
	case isWitnessProgramScript(script):
		return WitnessUnknownTy
	}

	return NonStandardTy
}

// CalcMultiSigStats 返回多重签名脚本中的公钥数与所需签名数。
func CalcMultiSigStats(script []byte) (int, int, error) {
	details := extractMultisigScriptDetails(script, false)
	if !details.valid {
		str := fmt.Sprintf("script %x is not a multisig script", script)
		return 0, 0, scriptError(ErrNotMultisigScript, str)
	}

	return details.numPubKeys, details.requiredSigs, nil
}

// payToPubKeyHashScript 创建支付到 20 字节公钥哈希的脚本。
func payToPubKeyHashScript(pubKeyHash []byte) ([]byte, error) {
	return NewScriptBuilder().AddOp(OP_DUP).AddOp(OP_HASH160).
		AddData(pubKeyHash).AddOp(OP_EQUALVERIFY).AddOp(OP_CHECKSIG).
		Script()
}

func payToWitnessPubKeyHashScript(pubKeyHash []byte) ([]byte, error) {
	return NewScriptBuilder().AddOp(OP_0).AddData(pubKeyHash).Script()
}

func payToScriptHashScript(scriptHash []byte) ([]byte, error) {
	return NewScriptBuilder().AddOp(OP_HASH160).AddData(scriptHash).
		AddOp(OP_EQUAL).Script()
}

func payToWitnessScriptHashScript(scriptHash []byte) ([]byte, error) {
	return NewScriptBuilder().AddOp(OP_0).AddData(scriptHash).Script()
}

func payToWitnessTaprootScript(rawKey []byte) ([]byte, error) {
	return NewScriptBuilder().AddOp(OP_1).AddData(rawKey).Script()
}

// PayToPubKeyScript 创建支付到序列化公钥的脚本。
func PayToPubKeyScript(serializedPubKey []byte) ([]byte, error) {
	return NewScriptBuilder().AddData(serializedPubKey).
		AddOp(OP_CHECKSIG).Script()
}

// PayToAddrScript 创建向指定地址支付的输出脚本。
func PayToAddrScript(addr address.Address) ([]byte, error) {
	const nilAddrErrStr = "unable to generate payment script for nil address"

	switch addr := addr.(type) {
	case *address.AddressPubKeyHash:
		if addr == nil {
			return nil, scriptError(ErrUnsupportedAddress, nilAddrErrStr)
		}
		return payToPubKeyHashScript(addr.ScriptAddress())

	case *address.AddressScriptHash:
		if addr == nil {
			return nil, scriptError(ErrUnsupportedAddress, nilAddrErrStr)
		}
		return payToScriptHashScript(addr.ScriptAddress())

	case *address.AddressWitnessPubKeyHash:
		if addr == nil {
			return nil, scriptError(ErrUnsupportedAddress, nilAddrErrStr)
		}
		return payToWitnessPubKeyHashScript(addr.ScriptAddress())

	case *address.AddressWitnessScriptHash:
		if addr == nil {
			return nil, scriptError(ErrUnsupportedAddress, nilAddrErrStr)
		}
		return payToWitnessScriptHashScript(addr.ScriptAddress())

	case *address.AddressTaproot:
		if addr == nil {
			return nil, scriptError(ErrUnsupportedAddress, nilAddrErrStr)
		}
		return payToWitnessTaprootScript(addr.ScriptAddress())
	}

	str := fmt.Sprintf("unable to generate payment script for unsupported "+
		"address type %T", addr)
	return nil, scriptError(ErrUnsupportedAddress, str)
}

// NullDataScript 创建 OP_RETURN 后跟 data 的可证明不可花费脚本。
// data 超过 MaxDataCarrierSize 时返回 ErrTooMuchNullData。
func NullDataScript(data []byte) ([]byte, error) {
	if len(data) > MaxDataCarrierSize {
		str := fmt.Sprintf("data size %d is larger than max "+
			"allowed size %d", len(data), MaxDataCarrierSize)
		return nil, scriptError(ErrTooMuchNullData, str)
	}

	return NewScriptBuilder().AddOp(OP_RETURN).AddData(data).Script()
}

// MultiSigScript 创建 nrequired-of-len(pubkeys) 的多重签名脚本，pubkeys 是序列化公钥。
// nrequired 大于公钥数时返回 ErrTooManyRequiredSigs。
func MultiSigScript(pubkeys [][]byte, nrequired int) ([]byte, error) {
	if len(pubkeys) < nrequired {
		str := fmt.Sprintf("unable to generate multisig script with "+
			"%d required signatures when there are only %d public "+
			"keys available", nrequired, len(pubkeys))
		return nil, scriptError(ErrTooManyRequiredSigs, str)
	}
	if len(pubkeys) > MaxPubKeysPerMultiSig {
		str := fmt.Sprintf("too many pubkeys in multisig: %d > %d",
			len(pubkeys), MaxPubKeysPerMultiSig)
		return nil, scriptError(ErrInvalidPubKeyCount, str)
	}

	builder := NewScriptBuilder().AddInt64(int64(nrequired))
	for _, key := range pubkeys {
		builder.AddData(key)
	}
	builder.AddInt64(int64(len(pubkeys)))
	builder.AddOp(OP_CHECKMULTISIG)

	return builder.Script()
}

// PushedData 返回脚本中所有推送的数据，包括 OP_0，但不包括 OP_1 到 OP_16。
func PushedData(script []byte) ([][]byte, error) {
	var data [][]byte
	tokenizer := MakeScriptTokenizer(script)
	for tokenizer.Next() {
		if tokenizer.Data() != nil {
			data = append(data, tokenizer.Data())
		} else if tokenizer.Opcode() == OP_0 {
			data = append(data, nil)
		}
	}
	if err := tokenizer.Err(); err != nil {
		return nil, err
	}
	return data, nil
}

// ExtractPkScriptAddrs 返回输出脚本的类型、相关地址与所需签名数。
// 支付到公钥与多重签名中的公钥以其 P2PKH 地址表示。
func ExtractPkScriptAddrs(pkScript []byte,
	params *chaincfg.Params) (ScriptClass, []address.Address, int, error) {

	if hash := extractPubKeyHash(pkScript); hash != nil {
		return PubKeyHashTy, pubKeyHashToAddrs(hash, params), 1, nil
	}

	if hash := extractScriptHash(pkScript); hash != nil {
		var addrs []address.Address
		addr, err := address.NewAddressScriptHashFromHash(hash, params)
		if err == nil {
			addrs = append(addrs, addr)
		}
		return ScriptHashTy, addrs, 1, nil
	}

	if data := extractPubKey(pkScript); data != nil {
		return PubKeyTy, pubKeysToAddrs([][]byte{data}, params), 1, nil
	}

	details := extractMultisigScriptDetails(pkScript, true)
	if details.valid {
		addrs := pubKeysToAddrs(details.pubKeys, params)
		return MultiSigTy, addrs, details.requiredSigs, nil
	}

	if isNullDataScript(pkScript) {
		return NullDataTy, nil, 0, nil
	}

	if hash := extractWitnessPubKeyHash(pkScript); hash != nil {
		var addrs []address.Address
		addr, err := address.NewAddressWitnessPubKeyHash(hash, params)
		if err == nil {
			addrs = append(addrs, addr)
		}
		return WitnessV0PubKeyHashTy, addrs, 1, nil
	}

	if hash := extractWitnessV0ScriptHash(pkScript); hash != nil {
		var addrs []address.Address
		addr, err := address.NewAddressWitnessScriptHash(hash, params)
		if err == nil {
			addrs = append(addrs, addr)
		}
		return WitnessV0ScriptHashTy, addrs, 1, nil
	}

	if rawKey := extractWitnessV1KeyBytes(pkScript); rawKey != nil {
		var addrs []address.Address
		addr, err := address.NewAddressTaproot(rawKey, params)
		if err == nil {
			addrs = append(addrs, addr)
		}
		return WitnessV1TaprootTy, addrs, 1, nil
	}

	return NonStandardTy, nil, 0, nil
}

func pubKeyHashToAddrs(hash []byte, params *chaincfg.Params) []address.Address {
	var addrs []address.Address
	addr, err := address.NewAddressPubKeyHash(hash, params)
	if err == nil {
		addrs = append(addrs, addr)
	}
	return addrs
}

// pubKeysToAddrs 将公钥转换为 P2PKH 地址。
func pubKeysToAddrs(pubKeys [][]byte, params *chaincfg.Params) []address.Address {
	addrs := make([]address.Address, 0, len(pubKeys))
	for _, pubKey := range pubKeys {
		addr, err := address.NewAddressPubKeyHashFromPubKey(pubKey, params)
		if err == nil {
			addrs = append(addrs, addr)
		}
	}
	return addrs
}
