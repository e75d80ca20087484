package txscript_test

import (
	"encoding/hex"
	"fmt"

	"github.com/qinglongcn/btccore/address"
	"github.com/qinglongcn/btccore/chaincfg"
	"github.com/qinglongcn/btccore/txscript"
)

// 执行一对不需要交易的脚本。
func ExampleExecute() {
	unlocking := []byte{txscript.OP_3}
	locking := []byte{txscript.OP_2, txscript.OP_ADD, txscript.OP_5, txscript.OP_EQUAL}

	err := txscript.Execute(locking, unlocking, nil, 0)
	fmt.Println("valid:", err == nil)

	err = txscript.Execute(locking, []byte{txscript.OP_4}, nil, 0)
	fmt.Println(txscript.IsErrorCode(err, txscript.ErrEvalFalse))

	// Output:
	// valid: true
	// true
}

// 为地址生成输出脚本并反汇编。
func ExamplePayToAddrScript() {
	addr, err := address.DecodeAddress("1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMH",
		&chaincfg.MainNetParams)
	if err != nil {
		fmt.Println(err)
		return
	}

	script, err := txscript.PayToAddrScript(addr)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(hex.EncodeToString(script))

	disasm, err := txscript.DisasmString(script)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(disasm)

	// Output:
	// 76a914751e76e8199196d454941c45d1b3a323f1433bd688ac
	// OP_DUP OP_HASH160 751e76e8199196d454941c45d1b3a323f1433bd6 OP_EQUALVERIFY OP_CHECKSIG
}

// 从输出脚本中提取地址。
func ExampleExtractPkScriptAddrs() {
	script, _ := hex.DecodeString("0014751e76e8199196d454941c45d1b3a323f1433bd6")

	class, addrs, reqSigs, err := txscript.ExtractPkScriptAddrs(script,
		&chaincfg.MainNetParams)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("Script Class:", class)
	fmt.Println("Addresses:", addrs)
	fmt.Println("Required Signatures:", reqSigs)

	// Output:
	// Script Class: witness_v0_keyhash
	// Addresses: [bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4]
	// Required Signatures: 1
}
