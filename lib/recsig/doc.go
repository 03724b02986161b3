// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

// Package recsig signs and verifies invite payloads with recoverable
// secp256k1 ECDSA signatures.
//
// Signatures are computed over SHA-256 of the payload bytes and
// encoded as r(32) || s(32) || recoveryID(1). The recovery id lets a
// verifier reconstruct the signer's public key from the signature and
// message alone; [Verify] then binds the recovered key to the expected
// signer so that "some valid signature" is never silently accepted as
// "the creator's signature".
package recsig
