// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

// Package armor converts binary protocol artifacts to and from the
// URL-safe text form used in invite slugs, deep links, and group
// metadata fields.
//
// The encoding is base64 with the URL alphabet ('-' and '_' in place
// of '+' and '/') and no padding. Encode and Decode round-trip every
// byte string exactly, including the empty string.
//
// Chunk and Unchunk implement the separator workaround for transports
// that mangle very long unbroken URL strings: a '*' is inserted every
// 300 characters on the way out and stripped on the way back in. The
// transform is order-preserving and lossless.
package armor

import (
	"encoding/base64"
	"strings"

	"github.com/convos-chat/convoskit/lib/protoerr"
)

// Separator is the character inserted into long encoded strings. It is
// not part of the base64 URL alphabet, so stripping it is unambiguous.
const Separator = "*"

// chunkInterval is the number of characters between separators.
const chunkInterval = 300

// Encode returns the URL-safe base64 encoding of data, without padding.
func Encode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// Decode reverses Encode. Padding is not accepted.
func Decode(encoded string) ([]byte, error) {
	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, protoerr.Wrap(protoerr.KindInvalidFormat, err, "decoding base64url string of %d chars", len(encoded))
	}
	return data, nil
}

// Chunk inserts a Separator after every 300 characters of encoded.
// Strings of 300 characters or fewer are returned unchanged, and no
// trailing separator is ever produced.
func Chunk(encoded string) string {
	if len(encoded) <= chunkInterval {
		return encoded
	}
	var builder strings.Builder
	builder.Grow(len(encoded) + len(encoded)/chunkInterval)
	for start := 0; start < len(encoded); start += chunkInterval {
		if start > 0 {
			builder.WriteString(Separator)
		}
		end := start + chunkInterval
		if end > len(encoded) {
			end = len(encoded)
		}
		builder.WriteString(encoded[start:end])
	}
	return builder.String()
}

// Unchunk removes every Separator from chunked. It accepts input that
// was never chunked, chunked at a different interval, or chunked and
// then URL-unescaped, since it simply strips all separators.
func Unchunk(chunked string) string {
	return strings.ReplaceAll(chunked, Separator, "")
}
