// 定义交易的数据模型以及传统格式与隔离见证格式的序列化。
package wire

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/qinglongcn/btccore/chainhash"
	"github.com/qinglongcn/btccore/codec"
)

const (
	// TxVersion 是当前默认的交易版本。
	TxVersion = 1

	// MaxTxInSequenceNum 是输入序列号的最大值。
	MaxTxInSequenceNum uint32 = 0xffffffff

	// MaxPrevOutIndex 是前一输出索引的最大值，coinbase 输入使用该值。
	MaxPrevOutIndex uint32 = 0xffffffff

	// SequenceLockTimeDisabled 置位时，序列号不作为相对锁定时间解释（BIP68）。
	SequenceLockTimeDisabled = 1 << 31

	// SequenceLockTimeIsSeconds 置位时，相对锁定时间以 512 秒为单位，否则以区块数为单位。
	SequenceLockTimeIsSeconds = 1 << 22

	// SequenceLockTimeMask 提取序列号中的相对锁定时间值。
	SequenceLockTimeMask = 0x0000ffff

	// SequenceLockTimeGranularity 是基于时间的相对锁定时间的粒度（2^9 = 512 秒）。
	SequenceLockTimeGranularity = 9

	// MaxBlockPayload 是区块序列化后的最大字节数，也作为单个字段长度的上限。
	MaxBlockPayload = 4000000

	// minTxInPayload 是一个交易输入的最小字节数：
	// 前一输出哈希 32 字节 + 索引 4 字节 + 脚本长度 1 字节 + 序列号 4 字节。
	minTxInPayload = 9 + chainhash.HashSize

	// minTxOutPayload 是一个交易输出的最小字节数：金额 8 字节 + 脚本长度 1 字节。
	minTxOutPayload = 9

	// maxWitnessItemsPerInput 是单个输入的见证栈元素上限。
	maxWitnessItemsPerInput = 4000000

	// maxWitnessItemSize 是单个见证元素的最大字节数。
	maxWitnessItemSize = 4000000
)

const (
	// witnessMarkerByte 与 witnessFlag 紧随版本号出现，标识隔离见证序列化格式。
	witnessMarkerByte = 0x00
	witnessFlag       = 0x01
)

// OutPoint 通过交易哈希与输出索引引用一个之前的交易输出。
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// NewOutPoint 创建一个 OutPoint。
func NewOutPoint(hash *chainhash.Hash, index uint32) *OutPoint {
	return &OutPoint{
		Hash:  *hash,
		Index: index,
	}
}

// String 返回 "hash:index" 形式的字符串。
func (o OutPoint) String() string {
	return o.Hash.String() + ":" + strconv.FormatUint(uint64(o.Index), 10)
}

// TxWitness 是一个输入的见证栈，按从底到顶的顺序排列。
type TxWitness [][]byte

// SerializeSize 返回见证栈序列化后的字节数。
func (t TxWitness) SerializeSize() int {
	n := codec.VarIntSerializeSize(uint64(len(t)))
	for _, item := range t {
		n += codec.VarBytesSerializeSize(len(item))
	}
	return n
}

// TxIn 是交易的一个输入。
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  []byte
	Witness          TxWitness
	Sequence         uint32
}

// SerializeSize 返回输入在不含见证数据时序列化后的字节数。
func (t *TxIn) SerializeSize() int {
	return 40 + codec.VarBytesSerializeSize(len(t.SignatureScript))
}

// NewTxIn 创建一个序列号为最大值的交易输入。
func NewTxIn(prevOut *OutPoint, signatureScript []byte, witness [][]byte) *TxIn {
	return &TxIn{
		PreviousOutPoint: *prevOut,
		SignatureScript:  signatureScript,
		Witness:          witness,
		Sequence:         MaxTxInSequenceNum,
	}
}

// TxOut 是交易的一个输出。
type TxOut struct {
	Value    int64
	PkScript []byte
}

// SerializeSize 返回输出序列化后的字节数。
func (t *TxOut) SerializeSize() int {
	return 8 + codec.VarBytesSerializeSize(len(t.PkScript))
}

// NewTxOut 创建一个交易输出。
func NewTxOut(value int64, pkScript []byte) *TxOut {
	return &TxOut{
		Value:    value,
		PkScript: pkScript,
	}
}

// MsgTx 是一笔比特币交易。
// 是否带有隔离见证标记不单独存储，而是由输入中是否存在见证数据推导。
type MsgTx struct {
	Version  int32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32
}

// NewMsgTx 创建一笔没有输入输出的交易。
func NewMsgTx(version int32) *MsgTx {
	return &MsgTx{
		Version: version,
		TxIn:    make([]*TxIn, 0, 1),
		TxOut:   make([]*TxOut, 0, 1),
	}
}

// AddTxIn 追加一个输入。
func (msg *MsgTx) AddTxIn(ti *TxIn) {
	msg.TxIn = append(msg.TxIn, ti)
}

// AddTxOut 追加一个输出。
func (msg *MsgTx) AddTxOut(to *TxOut) {
	msg.TxOut = append(msg.TxOut, to)
}

// HasWitness 报告是否有任何输入携带见证数据。
func (msg *MsgTx) HasWitness() bool {
	for _, txIn := range msg.TxIn {
		if len(txIn.Witness) != 0 {
			return true
		}
	}
	return false
}

// TxHash 计算交易标识（txid），即不含见证数据的序列化结果的双 SHA256。
func (msg *MsgTx) TxHash() chainhash.Hash {
	var buf bytes.Buffer
	buf.Grow(msg.SerializeSizeStripped())
	_ = msg.SerializeNoWitness(&buf)
	return chainhash.DoubleHashH(buf.Bytes())
}

// WitnessHash 计算包含见证数据的交易哈希（wtxid）。没有见证数据时等于 TxHash。
func (msg *MsgTx) WitnessHash() chainhash.Hash {
	if !msg.HasWitness() {
		return msg.TxHash()
	}
	return chainhash.DoubleHashH(msg.Bytes())
}

// Copy 创建交易的深拷贝，修改副本不会影响原交易。
func (msg *MsgTx) Copy() *MsgTx {
	newTx := MsgTx{
		Version:  msg.Version,
		TxIn:     make([]*TxIn, 0, len(msg.TxIn)),
		TxOut:    make([]*TxOut, 0, len(msg.TxOut)),
		LockTime: msg.LockTime,
	}

	for _, oldTxIn := range msg.TxIn {
		newTxIn := TxIn{
			PreviousOutPoint: oldTxIn.PreviousOutPoint,
			SignatureScript:  cloneBytes(oldTxIn.SignatureScript),
			Sequence:         oldTxIn.Sequence,
		}
		if len(oldTxIn.Witness) != 0 {
			newTxIn.Witness = make(TxWitness, len(oldTxIn.Witness))
			for i, item := range oldTxIn.Witness {
				newTxIn.Witness[i] = cloneBytes(item)
			}
		}
		newTx.TxIn = append(newTx.TxIn, &newTxIn)
	}

	for _, oldTxOut := range msg.TxOut {
		newTx.TxOut = append(newTx.TxOut, &TxOut{
			Value:    oldTxOut.Value,
			PkScript: cloneBytes(oldTxOut.PkScript),
		})
	}

	return &newTx
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Serialize 将交易写入 w。存在见证数据时使用 BIP144 格式。
func (msg *MsgTx) Serialize(w io.Writer) error {
	return msg.encode(w, msg.HasWitness())
}

// SerializeNoWitness 将交易以传统格式写入 w，忽略所有见证数据。
func (msg *MsgTx) SerializeNoWitness(w io.Writer) error {
	return msg.encode(w, false)
}

// Bytes 返回交易的完整序列化结果。
func (msg *MsgTx) Bytes() []byte {
	var buf bytes.Buffer
	buf.Grow(msg.SerializeSize())
	_ = msg.Serialize(&buf)
	return buf.Bytes()
}

func (msg *MsgTx) encode(w io.Writer, doWitness bool) error {
	if err := codec.WriteUint32LE(w, uint32(msg.Version)); err != nil {
		return err
	}

	if doWitness {
		if _, err := w.Write([]byte{witnessMarkerByte, witnessFlag}); err != nil {
			return err
		}
	}

	if err := codec.WriteVarInt(w, uint64(len(msg.TxIn))); err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		if err := writeTxIn(w, ti); err != nil {
			return err
		}
	}

	if err := codec.WriteVarInt(w, uint64(len(msg.TxOut))); err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		if err := WriteTxOut(w, to); err != nil {
			return err
		}
	}

	if doWitness {
		for _, ti := range msg.TxIn {
			if err := writeTxWitness(w, ti.Witness); err != nil {
				return err
			}
		}
	}

	return codec.WriteUint32LE(w, msg.LockTime)
}

// WriteOutPoint 写入一个 OutPoint：32 字节哈希加 4 字节小端索引。
func WriteOutPoint(w io.Writer, op *OutPoint) error {
	if _, err := w.Write(op.Hash[:]); err != nil {
		return err
	}
	return codec.WriteUint32LE(w, op.Index)
}

func writeTxIn(w io.Writer, ti *TxIn) error {
	if err := WriteOutPoint(w, &ti.PreviousOutPoint); err != nil {
		return err
	}
	if err := codec.WriteVarBytes(w, ti.SignatureScript); err != nil {
		return err
	}
	return codec.WriteUint32LE(w, ti.Sequence)
}

// WriteTxOut 写入一个交易输出，签名哈希计算也会用到它。
func WriteTxOut(w io.Writer, to *TxOut) error {
	if err := codec.WriteUint64LE(w, uint64(to.Value)); err != nil {
		return err
	}
	return codec.WriteVarBytes(w, to.PkScript)
}

func writeTxWitness(w io.Writer, wit TxWitness) error {
	if err := codec.WriteVarInt(w, uint64(len(wit))); err != nil {
		return err
	}
	for _, item := range wit {
		if err := codec.WriteVarBytes(w, item); err != nil {
			return err
		}
	}
	return nil
}

// SerializeSize 返回交易完整序列化后的字节数。
func (msg *MsgTx) SerializeSize() int {
	n := msg.baseSize()
	if msg.HasWitness() {
		// The marker and flag fields take up two additional bytes.
		n += 2
		for _, txIn := range msg.TxIn {
			n += txIn.Witness.SerializeSize()
		}
	}
	return n
}

// SerializeSizeStripped 返回不含见证数据时序列化后的字节数。
func (msg *MsgTx) SerializeSizeStripped() int {
	return msg.baseSize()
}

func (msg *MsgTx) baseSize() int {
	// Version 4 bytes + LockTime 4 bytes + Serialized varint size for the
	// number of transaction inputs and outputs.
	n := 8 + codec.VarIntSerializeSize(uint64(len(msg.TxIn))) +
		codec.VarIntSerializeSize(uint64(len(msg.TxOut)))

	for _, txIn := range msg.TxIn {
		n += txIn.SerializeSize()
	}
	for _, txOut := range msg.TxOut {
		n += txOut.SerializeSize()
	}
	return n
}

// DecodeTx 从 b 解码一笔交易，要求恰好消费全部字节。
func DecodeTx(b []byte) (*MsgTx, error) {
	r := codec.NewReader(b)
	var msg MsgTx
	sawMarker, err := msg.decode(r, true)
	if err == nil {
		err = r.ExpectEOF()
	}
	if err == nil {
		return &msg, nil
	}

	// The marker byte is also a legacy zero input count.
	if sawMarker {
		lr := codec.NewReader(b)
		var legacy MsgTx
		if _, lerr := legacy.decode(lr, false); lerr == nil &&
			lr.ExpectEOF() == nil {

			return &legacy, nil
		}
	}
	return nil, err
}

// Decode 从游标 r 读取一笔交易，自动识别传统格式与隔离见证格式。
// 见证格式解读失败时，按没有输入的传统交易重新读取。
func (msg *MsgTx) Decode(r *codec.Reader) error {
	start := r.Offset()
	sawMarker, err := msg.decode(r, true)
	if err == nil || !sawMarker {
		return err
	}

	end := r.Offset()
	r.Seek(start)
	var legacy MsgTx
	if _, lerr := legacy.decode(r, false); lerr == nil {
		*msg = legacy
		return nil
	}
	r.Seek(end)
	return err
}

// decode reads one transaction. With allowWitness a zero input count is
// taken as the segwit marker, reported through sawMarker.
func (msg *MsgTx) decode(r *codec.Reader, allowWitness bool) (sawMarker bool, err error) {
	version, err := r.ReadUint32LE("tx version")
	if err != nil {
		return false, err
	}
	msg.Version = int32(version)

	countOffset := r.Offset()
	count, err := r.ReadVarInt("tx input count")
	if err != nil {
		return false, err
	}

	// A zero input count is the segwit marker, in which case the next byte
	// must be the flag and the real input count follows.
	var hasWitness bool
	if count == 0 && allowWitness {
		sawMarker = true
		flag, err := r.ReadUint8("witness flag")
		if err != nil {
			return sawMarker, err
		}
		if flag != witnessFlag {
			return sawMarker, codec.Malformed(r.Offset()-1, "witness tx "+
				"but flag byte is %x", flag)
		}
		hasWitness = true

		countOffset = r.Offset()
		if count, err = r.ReadVarInt("tx input count"); err != nil {
			return sawMarker, err
		}
	}

	if count > uint64(r.Remaining()/minTxInPayload) {
		return sawMarker, shortCount(r, countOffset, count, minTxInPayload, "tx inputs")
	}
	msg.TxIn = make([]*TxIn, count)
	for i := range msg.TxIn {
		ti := new(TxIn)
		if err := readTxIn(r, ti); err != nil {
			return sawMarker, err
		}
		msg.TxIn[i] = ti
	}

	countOffset = r.Offset()
	count, err = r.ReadVarInt("tx output count")
	if err != nil {
		return sawMarker, err
	}
	if count > uint64(r.Remaining()/minTxOutPayload) {
		return sawMarker, shortCount(r, countOffset, count, minTxOutPayload, "tx outputs")
	}
	msg.TxOut = make([]*TxOut, count)
	for i := range msg.TxOut {
		to := new(TxOut)
		if err := ReadTxOut(r, to); err != nil {
			return sawMarker, err
		}
		msg.TxOut[i] = to
	}

	if hasWitness {
		witnessStart := r.Offset()
		for _, ti := range msg.TxIn {
			if ti.Witness, err = readTxWitness(r); err != nil {
				return sawMarker, err
			}
		}

		// A witness flag with no witness data would not serialize back to
		// the same bytes.
		if !msg.HasWitness() {
			return sawMarker, codec.Malformed(witnessStart, "witness flag set but "+
				"no input carries witness data")
		}
	}

	msg.LockTime, err = r.ReadUint32LE("tx locktime")
	return sawMarker, err
}

// shortCount reports a declared element count that cannot fit into the
// remaining bytes. Counts beyond the block size limit are corrupt, smaller
// ones only mean the input was cut short.
func shortCount(r *codec.Reader, countOffset int, count uint64, minSize int,
	field string) error {

	if count > MaxBlockPayload/uint64(minSize) {
		return codec.Malformed(countOffset, "too many %s to fit into max "+
			"block size [count %d]", field, count)
	}
	return codec.ShortData(r.Offset(), r.Offset()+int(count)*minSize, field)
}

func readOutPoint(r *codec.Reader, op *OutPoint) error {
	if err := r.ReadInto(op.Hash[:], "previous outpoint hash"); err != nil {
		return err
	}
	var err error
	op.Index, err = r.ReadUint32LE("previous outpoint index")
	return err
}

func readTxIn(r *codec.Reader, ti *TxIn) error {
	if err := readOutPoint(r, &ti.PreviousOutPoint); err != nil {
		return err
	}

	var err error
	ti.SignatureScript, err = r.ReadVarBytes(MaxBlockPayload,
		"transaction input signature script")
	if err != nil {
		return err
	}

	ti.Sequence, err = r.ReadUint32LE("tx input sequence")
	return err
}

// ReadTxOut 从游标读取一个交易输出。
func ReadTxOut(r *codec.Reader, to *TxOut) error {
	value, err := r.ReadUint64LE("tx output value")
	if err != nil {
		return err
	}
	to.Value = int64(value)

	to.PkScript, err = r.ReadVarBytes(MaxBlockPayload,
		"transaction output public key script")
	return err
}

func readTxWitness(r *codec.Reader) (TxWitness, error) {
	countOffset := r.Offset()
	count, err := r.ReadVarInt("witness item count")
	if err != nil {
		return nil, err
	}
	if count > maxWitnessItemsPerInput {
		return nil, codec.Malformed(countOffset, "too many witness items "+
			"to fit into max message size [count %d, max %d]", count,
			maxWitnessItemsPerInput)
	}
	if count > uint64(r.Remaining()) {
		return nil, shortCount(r, countOffset, count, 1, "witness items")
	}
	if count == 0 {
		return nil, nil
	}

	witness := make(TxWitness, count)
	for i := range witness {
		witness[i], err = r.ReadVarBytes(maxWitnessItemSize, "script witness item")
		if err != nil {
			return nil, err
		}
	}
	return witness, nil
}

// String 返回交易的简要描述，便于日志输出。
func (msg *MsgTx) String() string {
	return fmt.Sprintf("tx %v (version %d, %d inputs, %d outputs, locktime %d)",
		msg.TxHash(), msg.Version, len(msg.TxIn), len(msg.TxOut), msg.LockTime)
}
