// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package chain implements the block and transaction wire codec and the
// BLAKE3 content-addressing scheme used for block hashes, transaction
// hashes, and contract address derivation (spec.md §3, §6).
package chain

import "errors"

var (
	// ErrTooManyComplianceProofs is returned when a transaction's
	// declared compliance_proofs count exceeds MaxComplianceProofs.
	ErrTooManyComplianceProofs = errors.New("chain: too many compliance proofs")
	// ErrTooManyTransactions is returned when a block's declared
	// tx_count exceeds the node-configured limit.
	ErrTooManyTransactions = errors.New("chain: too many transactions in block")
	// ErrUnknownTxType is returned when decoding a transaction whose type
	// byte does not match any known TxType.
	ErrUnknownTxType = errors.New("chain: unknown transaction type")
)
