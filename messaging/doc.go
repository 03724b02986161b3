// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

// Package messaging defines the narrow surface the invite protocol
// consumes from the peer-to-peer messaging transport: value types for
// groups, direct channels, and messages, the [Transport] interface of
// collaborator operations, and the [Identity] handle holding the inbox
// id and its signing key.
//
// The transport's own wire protocol is out of scope. Applications bind
// their client library to [Transport]; the protocol packages never
// reach past it. All Transport methods take a context and may fail or
// time out — the protocol's policy on such failures is skip-and-log,
// never abort-the-batch.
package messaging
