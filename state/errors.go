// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package state implements the account-model state database: a flat
// Address->AccountState mapping and a (Address, slot)->bytes storage
// mapping, with fork/overlay support for speculative block building
// (spec.md §4.4).
package state

import "errors"

// ErrAccountNotFound is returned when an operation requires an existing
// account record.
var ErrAccountNotFound = errors.New("state: account not found")

// ErrInsufficientBalance is returned when a balance-reducing operation
// would underflow.
var ErrInsufficientBalance = errors.New("state: insufficient balance")

// ErrNonceMismatch is returned when a transaction's nonce does not match
// the sender's current account nonce.
var ErrNonceMismatch = errors.New("state: nonce mismatch")
