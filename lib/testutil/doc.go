// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides channel assertion helpers for tests that
// observe the match event stream. Each helper bounds the wait with a
// timeout so a broken emitter fails the test instead of hanging it.
package testutil
