// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

package invite

import (
	"strings"

	"github.com/convos-chat/convoskit/lib/armor"
	"github.com/convos-chat/convoskit/lib/codec"
	"github.com/convos-chat/convoskit/lib/deflate"
	"github.com/convos-chat/convoskit/lib/protoerr"
	"github.com/convos-chat/convoskit/lib/recsig"
)

// envelope is the CBOR wire form of a SignedInvite. The payload stays
// opaque bytes so the signature's coverage is byte-exact.
type envelope struct {
	Payload   []byte `cbor:"1,keyasint"`
	Signature []byte `cbor:"2,keyasint"`
}

// URLSlug serializes the envelope into the shareable text form:
// CBOR-encode, compress when that is strictly smaller, base64url,
// then a separator every 300 characters.
func (si *SignedInvite) URLSlug() (string, error) {
	raw, err := codec.Marshal(envelope{
		Payload:   si.PayloadBytes,
		Signature: si.Signature,
	})
	if err != nil {
		return "", protoerr.Wrap(protoerr.KindInvalidInviteFormat, err, "serializing invite envelope")
	}
	if frame, ok := deflate.CompressIfSmaller(raw); ok {
		raw = frame
	}
	return armor.Chunk(armor.Encode(raw)), nil
}

// FromURLSlug parses a slug back into a SignedInvite: strip
// separators, base64url-decode, reverse compression when the frame
// marker is present, then decode the envelope and its payload. Every
// parse failure surfaces as KindInvalidInviteFormat.
func FromURLSlug(slug string) (*SignedInvite, error) {
	cleaned := armor.Unchunk(strings.TrimSpace(slug))
	if cleaned == "" {
		return nil, protoerr.New(protoerr.KindInvalidInviteFormat, "empty invite slug")
	}

	raw, err := armor.Decode(cleaned)
	if err != nil {
		return nil, protoerr.Wrap(protoerr.KindInvalidInviteFormat, err, "decoding invite slug")
	}
	if deflate.IsCompressed(raw) {
		raw, err = deflate.Decompress(raw)
		if err != nil {
			return nil, protoerr.Wrap(protoerr.KindInvalidInviteFormat, err, "decompressing invite envelope")
		}
	}

	var env envelope
	if err := codec.Unmarshal(raw, &env); err != nil {
		return nil, protoerr.Wrap(protoerr.KindInvalidInviteFormat, err, "parsing invite envelope")
	}
	if len(env.Signature) != recsig.SignatureSize {
		return nil, protoerr.New(protoerr.KindInvalidInviteFormat, "envelope signature is %d bytes, want %d", len(env.Signature), recsig.SignatureSize)
	}

	payload, err := ParsePayload(env.Payload)
	if err != nil {
		return nil, err
	}

	return &SignedInvite{
		Payload:      payload,
		PayloadBytes: env.Payload,
		Signature:    env.Signature,
	}, nil
}
