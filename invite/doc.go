// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

// Package invite builds, serializes, and validates signed invite
// envelopes.
//
// An invite is a CBOR payload — the sealed conversation token, the
// creator's inbox id, a random correlation tag, optional display
// metadata, optional expirations — plus a recoverable secp256k1
// signature over the exact payload bytes. The signature covers the
// bytes as serialized at creation time, never a re-encode, so the
// envelope keeps both the decoded payload and the original bytes.
//
// Envelopes travel as URL slugs: serialize, compress when that
// shrinks the result, base64url-encode, and insert a separator every
// 300 characters for transports that mangle long unbroken strings.
// The same pipeline (minus the signature) encodes the group metadata
// field that carries the tag back to the invite sender.
package invite
