// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

package token

import (
	"encoding/binary"

	"github.com/google/uuid"

	"github.com/convos-chat/convoskit/lib/protoerr"
)

// Packed conversation id forms. The UUID form stores the 16 raw bytes
// (big-endian 64+64-bit halves); the string form stores a length
// prefix and UTF-8 bytes. UUID form is preferred when the id is a
// canonical UUID string, for compactness.
const (
	formUUID   byte = 0x01
	formString byte = 0x02

	// extendedLengthMarker in the string form's first length byte
	// signals a 2-byte big-endian length. Unambiguous because empty
	// ids are rejected, so a genuine 1-byte length is never zero.
	extendedLengthMarker byte = 0x00

	// maxStringLength is the ceiling on a conversation id's UTF-8
	// byte length.
	maxStringLength = 65535

	// minPackedSize is the smallest valid packed id: form byte,
	// 1-byte length, one character.
	minPackedSize = 3
)

// packConversationID encodes a conversation id into its compact binary
// form. Ids that are canonical UUID strings use the 17-byte UUID form;
// everything else uses the length-prefixed string form.
func packConversationID(conversationID string) ([]byte, error) {
	if conversationID == "" {
		return nil, protoerr.New(protoerr.KindEmptyConversationID, "conversation id is empty")
	}

	// UUID form only when the id is already the canonical string:
	// unpack emits canonical form, so anything else (uppercase,
	// braced, URN-prefixed) must take the string form to round-trip
	// byte for byte.
	if parsed, err := uuid.Parse(conversationID); err == nil && parsed.String() == conversationID {
		packed := make([]byte, 1+len(parsed))
		packed[0] = formUUID
		copy(packed[1:], parsed[:])
		return packed, nil
	}

	if len(conversationID) > maxStringLength {
		return nil, protoerr.New(protoerr.KindStringTooLong, "conversation id is %d bytes, maximum is %d", len(conversationID), maxStringLength)
	}

	if len(conversationID) <= 255 {
		packed := make([]byte, 0, 2+len(conversationID))
		packed = append(packed, formString, byte(len(conversationID)))
		return append(packed, conversationID...), nil
	}

	packed := make([]byte, 0, 4+len(conversationID))
	packed = append(packed, formString, extendedLengthMarker)
	packed = binary.BigEndian.AppendUint16(packed, uint16(len(conversationID)))
	return append(packed, conversationID...), nil
}

// unpackConversationID reverses packConversationID. UUID-form ids come
// back in canonical lowercase-hyphenated form.
func unpackConversationID(packed []byte) (string, error) {
	if len(packed) < 2 {
		return "", protoerr.New(protoerr.KindTruncated, "packed conversation id is %d bytes", len(packed))
	}

	switch packed[0] {
	case formUUID:
		if len(packed) != 17 {
			return "", protoerr.New(protoerr.KindInvalidFormat, "UUID form is %d bytes, want 17", len(packed))
		}
		parsed, err := uuid.FromBytes(packed[1:])
		if err != nil {
			return "", protoerr.Wrap(protoerr.KindInvalidFormat, err, "parsing UUID bytes")
		}
		return parsed.String(), nil

	case formString:
		var length int
		var payload []byte
		if packed[1] == extendedLengthMarker {
			if len(packed) < 4 {
				return "", protoerr.New(protoerr.KindTruncated, "string form with extended length is %d bytes", len(packed))
			}
			length = int(binary.BigEndian.Uint16(packed[2:4]))
			payload = packed[4:]
		} else {
			length = int(packed[1])
			payload = packed[2:]
		}
		if length == 0 {
			return "", protoerr.New(protoerr.KindEmptyConversationID, "packed conversation id has zero length")
		}
		if len(payload) != length {
			return "", protoerr.New(protoerr.KindInvalidFormat, "string form carries %d bytes, declared %d", len(payload), length)
		}
		return string(payload), nil

	default:
		return "", protoerr.New(protoerr.KindInvalidFormat, "unknown packed conversation id form 0x%02X", packed[0])
	}
}
