// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret provides a memory-safe buffer for the inbox
// identity's signing key.
//
// Buffer allocates memory outside the Go heap via mmap(MAP_ANONYMOUS),
// locks it into physical RAM via mlock (preventing swap), and marks it
// excluded from core dumps via madvise(MADV_DONTDUMP). On Close, the
// memory is zeroed, unlocked, and unmapped.
//
// The invite protocol keeps the identity's secp256k1 private key in a
// Buffer for the lifetime of the session; seal, open, and sign
// operations borrow the bytes at the call boundary and never retain
// them.
package secret
