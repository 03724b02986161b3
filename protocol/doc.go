// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

// Package protocol implements the backend-less join handshake around
// signed invites.
//
// The handshake is asymmetric. The invite holder (Matcher) sends the
// invite slug back to the creator over a direct channel, records the
// invite in a pending table keyed by its tag, and waits for the target
// group to become visible; when it does, CheckGroup correlates the
// group to the pending entry via the tag and grants consent. The
// creator (Processor) scans inbound direct channels for slugs it
// signed, opens the sealed conversation token with its own key, and
// admits the sender to the group.
//
// No server coordinates the exchange: the only shared state is the
// messaging transport itself, and every artifact that crosses it is
// signed or sealed.
package protocol
