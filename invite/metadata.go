// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

package invite

import (
	"encoding/hex"

	"github.com/convos-chat/convoskit/lib/armor"
	"github.com/convos-chat/convoskit/lib/codec"
	"github.com/convos-chat/convoskit/lib/deflate"
	"github.com/convos-chat/convoskit/lib/protoerr"
)

// MemberProfile is a per-member display profile carried in group
// metadata.
type MemberProfile struct {
	InboxID  string `cbor:"1,keyasint"`
	Name     string `cbor:"2,keyasint,omitempty"`
	ImageURL string `cbor:"3,keyasint,omitempty"`
}

// Metadata is the group side-channel payload a creator writes into the
// group's dedicated application-data field at creation time. Any
// member can read it back to correlate the group with a pending
// invite via the tag.
type Metadata struct {
	// Tag is the invite correlation tag.
	Tag string `cbor:"1,keyasint"`

	// ExpiresAt is the conversation expiry as a Unix-second
	// timestamp. Zero means never.
	ExpiresAt int64 `cbor:"2,keyasint,omitempty"`

	// Profiles are optional per-member display profiles.
	Profiles []MemberProfile `cbor:"3,keyasint,omitempty"`
}

// EncodeField serializes the metadata for the group's application-data
// field: CBOR, compression when strictly smaller, base64url.
func (m *Metadata) EncodeField() (string, error) {
	if m.Tag == "" {
		return "", protoerr.New(protoerr.KindInvalidFormat, "metadata has no tag")
	}
	raw, err := codec.Marshal(m)
	if err != nil {
		return "", protoerr.Wrap(protoerr.KindInvalidFormat, err, "serializing group metadata")
	}
	if frame, ok := deflate.CompressIfSmaller(raw); ok {
		raw = frame
	}
	return armor.Encode(raw), nil
}

// ParseMetadataField reverses EncodeField. A legacy plain-hex encoding
// (older creators hex-encoded the serialized bytes instead of
// base64url) is accepted as a fallback. Returns a typed error when the
// value parses under neither encoding or carries no tag.
func ParseMetadataField(value string) (*Metadata, error) {
	if value == "" {
		return nil, protoerr.New(protoerr.KindInvalidFormat, "empty metadata field")
	}

	if raw, err := armor.Decode(value); err == nil {
		if metadata, err := parseMetadataBytes(raw); err == nil {
			return metadata, nil
		}
	}

	// Legacy fallback: plain hex digits. Hex strings are also valid
	// base64url, so this ordering keeps the structured path primary.
	decoded, err := hex.DecodeString(value)
	if err != nil {
		return nil, protoerr.New(protoerr.KindInvalidFormat, "metadata field is neither base64url nor hex")
	}
	return parseMetadataBytes(decoded)
}

// parseMetadataBytes decompresses (when framed) and decodes metadata
// bytes.
func parseMetadataBytes(raw []byte) (*Metadata, error) {
	if deflate.IsCompressed(raw) {
		var err error
		raw, err = deflate.Decompress(raw)
		if err != nil {
			return nil, err
		}
	}
	var metadata Metadata
	if err := codec.Unmarshal(raw, &metadata); err != nil {
		return nil, protoerr.Wrap(protoerr.KindInvalidFormat, err, "parsing group metadata")
	}
	if metadata.Tag == "" {
		return nil, protoerr.New(protoerr.KindInvalidFormat, "group metadata has no tag")
	}
	return &metadata, nil
}
