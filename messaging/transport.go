// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"errors"
	"time"
)

// ErrGroupNotFound is returned by GroupByID when the conversation is
// not visible to this client. The protocol treats it as "skip this
// message and keep scanning", not as a failure.
var ErrGroupNotFound = errors.New("messaging: group not found")

// ErrNotAGroup is returned by GroupByID when the conversation id
// resolves to a direct channel rather than a group. Like
// ErrGroupNotFound, the protocol skips rather than fails.
var ErrNotAGroup = errors.New("messaging: conversation is not a group")

// Transport is the collaborator interface the invite protocol consumes
// from the messaging client. Implementations wrap a real peer-to-peer
// client; tests use in-memory fakes.
//
// Every method may fail or time out. Callers in the protocol packages
// handle failures per item: one channel or group failing never aborts
// its siblings.
type Transport interface {
	// SyncConversations refreshes the local view of conversations
	// from the network.
	SyncConversations(ctx context.Context) error

	// SendDirectMessage sends text over the 1:1 channel with the
	// given peer, creating the channel if needed.
	SendDirectMessage(ctx context.Context, peerInboxID, text string) error

	// ListDirectChannelsSince lists direct channels, restricted to
	// those created at or after since when since is non-nil.
	ListDirectChannelsSince(ctx context.Context, since *time.Time) ([]DirectChannel, error)

	// ChannelMessages returns a channel's messages in delivery order.
	ChannelMessages(ctx context.Context, channelID string) ([]Message, error)

	// ListGroups lists the groups visible to this client.
	ListGroups(ctx context.Context) ([]Group, error)

	// GroupByID looks up a single group. Returns ErrGroupNotFound
	// when the conversation is not visible, and ErrNotAGroup when the
	// id resolves to a direct channel.
	GroupByID(ctx context.Context, groupID string) (*Group, error)

	// GroupMembers returns the inbox identities of a group's members.
	GroupMembers(ctx context.Context, groupID string) ([]string, error)

	// AddMembers adds inbox identities to a group's membership.
	AddMembers(ctx context.Context, groupID string, inboxIDs []string) error

	// SetGroupConsent mutates a group's consent state.
	SetGroupConsent(ctx context.Context, groupID string, state ConsentState) error

	// SetChannelConsent mutates a direct channel's consent state.
	SetChannelConsent(ctx context.Context, channelID string, state ConsentState) error

	// ReadGroupMetadataField reads the dedicated application-data
	// field a creator writes invite metadata into. Empty string means
	// the field is absent.
	ReadGroupMetadataField(ctx context.Context, groupID string) (string, error)

	// WriteGroupMetadataField writes the dedicated application-data
	// field at group-creation time.
	WriteGroupMetadataField(ctx context.Context, groupID, value string) error
}
