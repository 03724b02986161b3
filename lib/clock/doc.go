// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time for the invite protocol's expiry
// checks. Production code injects [Real]; tests inject [Fake] and move
// time across expiry boundaries deterministically.
package clock
