// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package chain

import "github.com/basalt-chain/basalt/types"

// TxType is the tagged-sum discriminant for a Transaction's payload
// (spec.md §9: "no class hierarchies, explicit type byte on the wire").
type TxType uint8

const (
	TxTransfer TxType = iota
	TxContractDeploy
	TxContractCall
	TxStakeDeposit
	TxStakeWithdraw
	TxValidatorRegister
)

func (t TxType) String() string {
	switch t {
	case TxTransfer:
		return "transfer"
	case TxContractDeploy:
		return "contract_deploy"
	case TxContractCall:
		return "contract_call"
	case TxStakeDeposit:
		return "stake_deposit"
	case TxStakeWithdraw:
		return "stake_withdraw"
	case TxValidatorRegister:
		return "validator_register"
	default:
		return "unknown"
	}
}

// MaxComplianceProofs bounds the compliance_proofs count a decoder will
// accept (spec.md §6).
const MaxComplianceProofs = 1024

// Transaction is a signed, typed operation against state (spec.md §6).
type Transaction struct {
	Type                 TxType
	Nonce                uint64
	Sender               types.Address
	To                   types.Address
	Value                types.UInt256
	GasLimit             uint64
	GasPrice             types.UInt256
	MaxFeePerGas         types.UInt256
	MaxPriorityFeePerGas types.UInt256
	Data                 []byte
	Priority             uint8
	ChainID              uint32
	Signature            types.Signature
	SenderPublicKey      types.PublicKey
	ComplianceProofs     []types.Hash256
}

// Header is a block's fixed-layout metadata (spec.md §3, §6): 220 bytes
// of fixed-width fields followed by a length-prefixed ExtraData tail.
type Header struct {
	Number           uint64
	ParentHash       types.Hash256
	StateRoot        types.Hash256
	TransactionsRoot types.Hash256
	ReceiptsRoot     types.Hash256
	Timestamp        int64
	Proposer         types.Address
	ChainID          uint32
	GasUsed          uint64
	GasLimit         uint64
	BaseFee          types.UInt256
	ProtocolVersion  uint32
	ExtraData        []byte
}

// HeaderFixedPrefixSize is the size in bytes of Header's fixed-width
// fields, excluding ExtraData (spec.md §6: "220-byte fixed prefix").
const HeaderFixedPrefixSize = 220

// Block is a Header together with its ordered transactions.
type Block struct {
	Header       Header
	Transactions []Transaction
}
