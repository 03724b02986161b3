// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

// convos-invite is a command-line tool for working with signed
// conversation invites: minting new invites from a creator key,
// inspecting and verifying shared slugs or links, and encoding the
// group metadata field creators publish alongside a group.
package main
