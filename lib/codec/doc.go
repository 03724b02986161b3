// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides CBOR serialization for invite payloads,
// envelopes, and group metadata.
//
// Encoding uses Core Deterministic Encoding so that the same logical
// payload always serializes to identical bytes. This matters because
// invite signatures are computed over the serialized payload: a
// non-deterministic encoder would make an envelope fail verification
// after an innocent re-encode.
//
// Consumers import only this package, not fxamacker/cbor directly.
package codec
