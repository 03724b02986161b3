// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

// Package token seals conversation identifiers into authenticated,
// versioned binary tokens that travel inside invite envelopes.
//
// The symmetric key is derived per creator and per inbox identity with
// HKDF-SHA256 (fixed protocol salt, the inbox id in the info string),
// so the same private key never yields the same key across identity
// contexts. Encryption is ChaCha20-Poly1305 with the creator inbox id
// as associated data: swapping the claimed creator breaks
// authentication rather than decrypting to garbage.
//
// Wire format: version(1) || nonce(12) || ciphertext+tag(16). The
// plaintext is a packed conversation id — 16 raw bytes for UUID-shaped
// ids, a length-prefixed UTF-8 string otherwise.
package token
