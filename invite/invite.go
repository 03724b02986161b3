// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

package invite

import (
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/google/uuid"

	"github.com/convos-chat/convoskit/invite/token"
	"github.com/convos-chat/convoskit/lib/protoerr"
	"github.com/convos-chat/convoskit/lib/recsig"
)

// SignedInvite is an immutable signed invite envelope. PayloadBytes
// holds the exact serialized bytes the signature covers; Payload is
// the decoded view of those same bytes. Re-serializing Payload is
// never used for verification.
type SignedInvite struct {
	Payload      Payload
	PayloadBytes []byte
	Signature    []byte
}

// Options carries the optional invite fields. The zero value means no
// display metadata, no expirations, multi-use.
type Options struct {
	Name        string
	Description string
	ImageURL    string

	// ExpiresAt and ConversationExpiresAt are expiry instants; the
	// zero time means "never expires" for that dimension.
	ExpiresAt             time.Time
	ConversationExpiresAt time.Time

	ExpiresAfterUse bool
}

// New creates a signed invite: seals the conversation id under the
// creator's identity, builds the payload with the given tag and
// options, serializes it, and signs the exact serialized bytes.
//
// The creator inbox id must be lowercase hex. The payload stores it
// as decoded bytes, and readers render it back with CreatorIDString
// to address join requests; any other form would come back as a
// different identifier.
func New(conversationID, creatorInboxID string, privateKey []byte, tag string, opts Options) (*SignedInvite, error) {
	if !isHexInboxID(creatorInboxID) {
		return nil, protoerr.New(protoerr.KindInvalidFormat, "creator inbox id %q is not lowercase hex", creatorInboxID)
	}
	sealed, err := token.Seal(conversationID, creatorInboxID, privateKey)
	if err != nil {
		return nil, err
	}

	payload := Payload{
		ConversationToken: sealed,
		CreatorInboxID:    InboxIDBytes(creatorInboxID),
		Tag:               tag,
		Name:              opts.Name,
		Description:       opts.Description,
		ImageURL:          opts.ImageURL,
		ExpiresAfterUse:   opts.ExpiresAfterUse,
	}
	if !opts.ExpiresAt.IsZero() {
		payload.ExpiresAt = opts.ExpiresAt.Unix()
	}
	if !opts.ConversationExpiresAt.IsZero() {
		payload.ConversationExpiresAt = opts.ConversationExpiresAt.Unix()
	}

	payloadBytes, err := payload.Marshal()
	if err != nil {
		return nil, err
	}
	signature, err := recsig.Sign(payloadBytes, privateKey)
	if err != nil {
		return nil, err
	}

	return &SignedInvite{
		Payload:      payload,
		PayloadBytes: payloadBytes,
		Signature:    signature,
	}, nil
}

// NewTag mints a random correlation tag for an invite instance.
func NewTag() string {
	return uuid.NewString()
}

// Verify checks the envelope's signature over its exact payload
// bytes. When expectedSigner is non-nil, the recovered public key
// must equal it; pass the creator's known public key whenever it is
// available (see RecoverSigner for the unbound form).
func (si *SignedInvite) Verify(expectedSigner *secp256k1.PublicKey) error {
	return recsig.Verify(si.PayloadBytes, si.Signature, expectedSigner)
}

// RecoverSigner recovers the public key that produced the envelope's
// signature. The result proves self-consistency only — bind it to a
// known creator key before trusting the invite.
func (si *SignedInvite) RecoverSigner() (*secp256k1.PublicKey, error) {
	return recsig.RecoverPublicKey(si.PayloadBytes, si.Signature)
}

// OpenConversationID opens the sealed conversation token with the
// creator's own inbox id and private key.
func (si *SignedInvite) OpenConversationID(creatorInboxID string, privateKey []byte) (string, error) {
	return token.Open(si.Payload.ConversationToken, creatorInboxID, privateKey)
}

// Expired reports whether the invite's own expiry has passed. A zero
// timestamp never expires. The comparison is strict: an invite
// expiring exactly now is still valid for this second.
func (si *SignedInvite) Expired(now time.Time) bool {
	return si.Payload.ExpiresAt != 0 && si.Payload.ExpiresAt < now.Unix()
}

// ConversationExpired reports whether the target conversation's
// expiry has passed, independent of the invite's own expiry.
func (si *SignedInvite) ConversationExpired(now time.Time) bool {
	return si.Payload.ConversationExpiresAt != 0 && si.Payload.ConversationExpiresAt < now.Unix()
}
