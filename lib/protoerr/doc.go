// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

// Package protoerr defines the invite protocol's error taxonomy.
//
// The original exception-based control flow is modeled as explicit
// error values: every failure a codec, cipher, or matcher can produce
// carries a [Kind] that tells the caller which recovery policy applies.
// Format errors reject a single artifact, cryptographic errors mark the
// source untrusted, protocol errors skip the message and continue.
//
// This package depends on no other convoskit packages.
package protoerr
