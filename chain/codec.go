// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package chain

import (
	"github.com/basalt-chain/basalt/codec"
	"github.com/basalt-chain/basalt/types"
)

// EncodeTransaction serializes tx in the fixed field order from spec.md
// §6: type ‖ nonce ‖ sender ‖ to ‖ value ‖ gas_limit ‖ gas_price ‖
// max_fee_per_gas ‖ max_priority_fee_per_gas ‖ data ‖ priority ‖
// chain_id ‖ signature ‖ sender_public_key ‖ varint(count) ‖
// compliance_proofs.
func EncodeTransaction(tx Transaction) ([]byte, error) {
	w := codec.NewWriter(256 + len(tx.Data) + len(tx.ComplianceProofs)*32)
	encodeTransactionPreSignature(w, tx)
	w.WriteRaw(tx.Signature[:])
	w.WriteRaw(tx.SenderPublicKey[:])
	encodeComplianceProofs(w, tx)
	if err := w.Err(); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// encodeTransactionPreSignature writes every field that precedes
// signature/sender_public_key on the wire (spec.md §6).
func encodeTransactionPreSignature(w *codec.Writer, tx Transaction) {
	w.WriteByte(byte(tx.Type))
	w.WriteUint64(tx.Nonce)
	w.WriteRaw(tx.Sender[:])
	w.WriteRaw(tx.To[:])
	value := tx.Value.BigEndianBytes()
	w.WriteRaw(value[:])
	w.WriteUint64(tx.GasLimit)
	gasPrice := tx.GasPrice.BigEndianBytes()
	w.WriteRaw(gasPrice[:])
	maxFee := tx.MaxFeePerGas.BigEndianBytes()
	w.WriteRaw(maxFee[:])
	maxPriority := tx.MaxPriorityFeePerGas.BigEndianBytes()
	w.WriteRaw(maxPriority[:])
	w.WriteBytes(tx.Data)
	w.WriteByte(tx.Priority)
	w.WriteUint32(tx.ChainID)
}

func encodeComplianceProofs(w *codec.Writer, tx Transaction) {
	w.WriteVarInt(uint64(len(tx.ComplianceProofs)))
	for _, proof := range tx.ComplianceProofs {
		w.WriteRaw(proof[:])
	}
}

// encodeTransactionSigningFields writes the subset of tx's fields that
// the signing hash covers: every field except signature and
// sender_public_key (spec.md §3: "Transaction.hash = BLAKE3(serialized
// tx excluding signature and sender_public_key)").
func encodeTransactionSigningFields(w *codec.Writer, tx Transaction) {
	encodeTransactionPreSignature(w, tx)
	encodeComplianceProofs(w, tx)
}

// readUInt256 consumes a 32-byte big-endian field. It copies rather than
// converting the raw slice to an array directly, so a short or already
// failed Reader yields a zero value instead of a runtime panic.
func readUInt256(r *codec.Reader) types.UInt256 {
	var b [32]byte
	copy(b[:], r.ReadRaw(32))
	return types.NewUInt256FromBigEndian(b)
}

// DecodeTransaction parses the wire layout written by EncodeTransaction,
// rejecting a compliance_proofs count above MaxComplianceProofs.
func DecodeTransaction(buf []byte) (Transaction, error) {
	r := codec.NewReader(buf)
	var tx Transaction
	tx.Type = TxType(r.ReadByte())
	tx.Nonce = r.ReadUint64()
	copy(tx.Sender[:], r.ReadRaw(20))
	copy(tx.To[:], r.ReadRaw(20))
	tx.Value = readUInt256(r)
	tx.GasLimit = r.ReadUint64()
	tx.GasPrice = readUInt256(r)
	tx.MaxFeePerGas = readUInt256(r)
	tx.MaxPriorityFeePerGas = readUInt256(r)
	tx.Data = append([]byte(nil), r.ReadBytes(codec.MaxBytesLength)...)
	tx.Priority = r.ReadByte()
	tx.ChainID = r.ReadUint32()
	copy(tx.Signature[:], r.ReadRaw(64))
	copy(tx.SenderPublicKey[:], r.ReadRaw(32))

	count := r.ReadVarInt()
	if err := r.Err(); err != nil {
		return Transaction{}, err
	}
	if tx.Type > TxValidatorRegister {
		return Transaction{}, ErrUnknownTxType
	}
	if count > MaxComplianceProofs {
		return Transaction{}, ErrTooManyComplianceProofs
	}
	tx.ComplianceProofs = make([]types.Hash256, count)
	for i := range tx.ComplianceProofs {
		copy(tx.ComplianceProofs[i][:], r.ReadRaw(32))
	}
	if err := r.Err(); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

// EncodeHeader serializes h's 220-byte fixed prefix followed by its
// length-prefixed ExtraData tail.
func EncodeHeader(h Header) ([]byte, error) {
	w := codec.NewWriter(HeaderFixedPrefixSize + len(h.ExtraData) + 8)
	w.WriteUint64(h.Number)
	w.WriteRaw(h.ParentHash[:])
	w.WriteRaw(h.StateRoot[:])
	w.WriteRaw(h.TransactionsRoot[:])
	w.WriteRaw(h.ReceiptsRoot[:])
	w.WriteInt64(h.Timestamp)
	w.WriteRaw(h.Proposer[:])
	w.WriteUint32(h.ChainID)
	w.WriteUint64(h.GasUsed)
	w.WriteUint64(h.GasLimit)
	baseFee := h.BaseFee.BigEndianBytes()
	w.WriteRaw(baseFee[:])
	w.WriteUint32(h.ProtocolVersion)
	w.WriteBytes(h.ExtraData)
	if err := w.Err(); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// DecodeHeader parses the layout written by EncodeHeader.
func DecodeHeader(buf []byte) (Header, error) {
	r := codec.NewReader(buf)
	h := decodeHeaderFields(r)
	if err := r.Err(); err != nil {
		return Header{}, err
	}
	return h, nil
}

func decodeHeaderFields(r *codec.Reader) Header {
	var h Header
	h.Number = r.ReadUint64()
	copy(h.ParentHash[:], r.ReadRaw(32))
	copy(h.StateRoot[:], r.ReadRaw(32))
	copy(h.TransactionsRoot[:], r.ReadRaw(32))
	copy(h.ReceiptsRoot[:], r.ReadRaw(32))
	h.Timestamp = r.ReadInt64()
	copy(h.Proposer[:], r.ReadRaw(20))
	h.ChainID = r.ReadUint32()
	h.GasUsed = r.ReadUint64()
	h.GasLimit = r.ReadUint64()
	h.BaseFee = readUInt256(r)
	h.ProtocolVersion = r.ReadUint32()
	h.ExtraData = append([]byte(nil), r.ReadBytes(codec.MaxBytesLength)...)
	return h
}

// EncodeBlock serializes b's header followed by varint(tx_count) and that
// many length-prefixed transactions (spec.md §6).
func EncodeBlock(b Block) ([]byte, error) {
	headerBytes, err := EncodeHeader(b.Header)
	if err != nil {
		return nil, err
	}
	w := codec.NewWriter(len(headerBytes) + 16)
	w.WriteRaw(headerBytes)
	w.WriteVarInt(uint64(len(b.Transactions)))
	for _, tx := range b.Transactions {
		txBytes, err := EncodeTransaction(tx)
		if err != nil {
			return nil, err
		}
		w.WriteBytes(txBytes)
	}
	if err := w.Err(); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// DecodeBlock parses the layout written by EncodeBlock, rejecting a
// tx_count above maxTxCount.
func DecodeBlock(buf []byte, maxTxCount int) (Block, error) {
	if len(buf) < HeaderFixedPrefixSize {
		return Block{}, codec.ErrShortBuffer
	}
	r := codec.NewReader(buf)
	h := decodeHeaderFields(r)
	if err := r.Err(); err != nil {
		return Block{}, err
	}

	txCount := r.ReadVarInt()
	if err := r.Err(); err != nil {
		return Block{}, err
	}
	if txCount > uint64(maxTxCount) {
		return Block{}, ErrTooManyTransactions
	}

	txs := make([]Transaction, txCount)
	for i := range txs {
		raw := r.ReadBytes(codec.MaxBytesLength)
		if err := r.Err(); err != nil {
			return Block{}, err
		}
		tx, err := DecodeTransaction(raw)
		if err != nil {
			return Block{}, err
		}
		txs[i] = tx
	}
	return Block{Header: h, Transactions: txs}, nil
}
