// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

package invite

import (
	"encoding/hex"

	"github.com/convos-chat/convoskit/lib/codec"
	"github.com/convos-chat/convoskit/lib/protoerr"
)

// Payload is the signed portion of an invite. Field keys are small
// integers (CBOR keyasint) to keep slugs short.
type Payload struct {
	// ConversationToken is the sealed conversation id (token.Seal
	// output). Only the creator can open it.
	ConversationToken []byte `cbor:"1,keyasint"`

	// CreatorInboxID is the creator's inbox identity as raw bytes
	// (hex-decoded when the source id is a hex string, for
	// compactness).
	CreatorInboxID []byte `cbor:"2,keyasint"`

	// Tag is the random correlation identifier minted per invite
	// instance. It is the join-correlation key, not a secret.
	Tag string `cbor:"3,keyasint"`

	// Name, Description, and ImageURL are optional display metadata.
	Name        string `cbor:"4,keyasint,omitempty"`
	Description string `cbor:"5,keyasint,omitempty"`
	ImageURL    string `cbor:"6,keyasint,omitempty"`

	// ExpiresAt is the invite's own expiry as a Unix-second
	// timestamp. Zero means the invite never expires.
	ExpiresAt int64 `cbor:"7,keyasint,omitempty"`

	// ConversationExpiresAt is the target conversation's expiry as a
	// Unix-second timestamp, independent of ExpiresAt. Zero means
	// never.
	ConversationExpiresAt int64 `cbor:"8,keyasint,omitempty"`

	// ExpiresAfterUse marks single-use invites.
	ExpiresAfterUse bool `cbor:"9,keyasint,omitempty"`
}

// Marshal serializes the payload with deterministic CBOR. These are
// the bytes a signature covers.
func (p *Payload) Marshal() ([]byte, error) {
	data, err := codec.Marshal(p)
	if err != nil {
		return nil, protoerr.Wrap(protoerr.KindInvalidInviteFormat, err, "serializing invite payload")
	}
	return data, nil
}

// ParsePayload decodes serialized payload bytes. The tag and
// conversation token are required; everything else is optional.
func ParsePayload(data []byte) (Payload, error) {
	var payload Payload
	if err := codec.Unmarshal(data, &payload); err != nil {
		return Payload{}, protoerr.Wrap(protoerr.KindInvalidInviteFormat, err, "parsing invite payload")
	}
	if payload.Tag == "" {
		return Payload{}, protoerr.New(protoerr.KindInvalidInviteFormat, "invite payload has no tag")
	}
	if len(payload.ConversationToken) == 0 {
		return Payload{}, protoerr.New(protoerr.KindInvalidInviteFormat, "invite payload has no conversation token")
	}
	return payload, nil
}

// CreatorIDString renders the creator inbox id bytes back into the
// transport identifier form. Inbox ids are lowercase hex on the wire,
// so this is the inverse of InboxIDBytes for hex-string ids. Callers
// comparing identities should compare byte forms instead; see
// InboxIDBytes.
func (p *Payload) CreatorIDString() string {
	return hex.EncodeToString(p.CreatorInboxID)
}

// InboxIDBytes converts an inbox id string to the compact byte form
// stored in payloads: hex-decoded when the id is a hex string, raw
// UTF-8 bytes otherwise. The raw fallback exists for comparing
// against inbound payloads from peers that predate the hex rule; New
// never mints a non-hex id.
func InboxIDBytes(inboxID string) []byte {
	if decoded, err := hex.DecodeString(inboxID); err == nil && len(inboxID) > 0 {
		return decoded
	}
	return []byte(inboxID)
}

// isHexInboxID reports whether the id is non-empty lowercase hex,
// the only form CreatorIDString round-trips exactly.
func isHexInboxID(inboxID string) bool {
	if inboxID == "" {
		return false
	}
	decoded, err := hex.DecodeString(inboxID)
	if err != nil {
		return false
	}
	return hex.EncodeToString(decoded) == inboxID
}
