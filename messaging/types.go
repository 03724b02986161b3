// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import "time"

// ConsentState is the per-conversation tri-state trust flag. New
// conversations start Unknown; the matching protocol moves them to
// Allowed or Denied and never back.
type ConsentState int

const (
	// ConsentUnknown means no consent decision has been made.
	ConsentUnknown ConsentState = iota
	// ConsentAllowed marks the conversation trusted and visible.
	ConsentAllowed
	// ConsentDenied marks the conversation blocked.
	ConsentDenied
)

// String returns the state's name for logging.
func (s ConsentState) String() string {
	switch s {
	case ConsentAllowed:
		return "allowed"
	case ConsentDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// Group is a multi-party conversation as seen through the transport.
type Group struct {
	// ID is the opaque conversation identifier.
	ID string
	// Name is the display name, possibly empty.
	Name string
	// Description is the free-text description field. Older creators
	// smuggle encoded invite metadata through it.
	Description string
	// CreatedAt is when the group became visible to this client.
	CreatedAt time.Time
	// Consent is the current consent state.
	Consent ConsentState
	// AddedByInboxID is the inbox identity that added this client to
	// the group, when the transport knows it. Used by the
	// sole-pending-creator matching heuristic.
	AddedByInboxID string
}

// DirectChannel is a 1:1 message channel between exactly two inbox
// identities.
type DirectChannel struct {
	// ID is the opaque channel identifier.
	ID string
	// PeerInboxID is the other party's inbox identity.
	PeerInboxID string
	// CreatedAt is when the channel became visible to this client.
	CreatedAt time.Time
	// Consent is the current consent state.
	Consent ConsentState
}

// Message is a single message in a direct channel.
type Message struct {
	// ID is the opaque message identifier.
	ID string
	// SenderInboxID is the authoring inbox identity.
	SenderInboxID string
	// Text is the message body; empty for non-text content.
	Text string
	// SentAt is the delivery timestamp.
	SentAt time.Time
}
