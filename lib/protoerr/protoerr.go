// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

package protoerr

import (
	"errors"
	"fmt"
)

// Kind classifies a protocol failure. Every parse, crypto, and
// matching failure in the invite protocol carries a Kind so that
// callers can decide between the three recovery policies: reject the
// single artifact, distrust the originating channel, or skip the
// message and continue scanning.
type Kind int

const (
	// KindUnknown is the zero Kind. Errors from outside the protocol
	// (transport failures, I/O) report this.
	KindUnknown Kind = iota

	// Format errors. Recovered by rejecting the single artifact.

	// KindTruncated means the input ended before a complete frame,
	// header, or length-prefixed field could be read.
	KindTruncated
	// KindMissingVersion means the input was empty where a version
	// byte was required.
	KindMissingVersion
	// KindUnsupportedVersion means the version byte is not one this
	// implementation understands.
	KindUnsupportedVersion
	// KindInvalidFormat means the input is structurally malformed:
	// bad marker byte, bad base64, length mismatch, unknown type tag.
	KindInvalidFormat
	// KindStringTooLong means a conversation id exceeds the 65535-byte
	// ceiling of the packed string form.
	KindStringTooLong
	// KindEmptyConversationID means a conversation id was empty, which
	// the packed forms never represent.
	KindEmptyConversationID
	// KindInvalidInviteFormat means a slug or envelope failed to parse
	// into a signed invite.
	KindInvalidInviteFormat

	// Cryptographic errors. Recovered by treating the artifact as
	// untrusted; for inbound join requests this denies the channel.

	// KindBadKeyMaterial means a private key was missing, the wrong
	// length, or outside the curve order.
	KindBadKeyMaterial
	// KindCryptoOpenFailed means AEAD authentication failed: the
	// ciphertext or its bound inbox id was tampered with, or the wrong
	// key was used.
	KindCryptoOpenFailed
	// KindInvalidSignature means a signature was malformed, failed
	// curve recovery, or recovered a key other than the expected
	// signer.
	KindInvalidSignature

	// Protocol errors. Recovered by skipping the specific message or
	// invite and continuing the scan.

	// KindConversationNotFound means the conversation referenced by a
	// token is not visible to this client.
	KindConversationNotFound
	// KindInvalidConversationType means the referenced conversation
	// exists but is not a group.
	KindInvalidConversationType
	// KindExpired means the invite's own expiry has passed.
	KindExpired
	// KindExpiredConversation means the target conversation's expiry
	// has passed.
	KindExpiredConversation
	// KindMissingTextContent means a scanned message carried no text
	// to parse a slug from.
	KindMissingTextContent
)

// String returns the Kind's name for logging.
func (k Kind) String() string {
	switch k {
	case KindTruncated:
		return "truncated"
	case KindMissingVersion:
		return "missing_version"
	case KindUnsupportedVersion:
		return "unsupported_version"
	case KindInvalidFormat:
		return "invalid_format"
	case KindStringTooLong:
		return "string_too_long"
	case KindEmptyConversationID:
		return "empty_conversation_id"
	case KindInvalidInviteFormat:
		return "invalid_invite_format"
	case KindBadKeyMaterial:
		return "bad_key_material"
	case KindCryptoOpenFailed:
		return "crypto_open_failed"
	case KindInvalidSignature:
		return "invalid_signature"
	case KindConversationNotFound:
		return "conversation_not_found"
	case KindInvalidConversationType:
		return "invalid_conversation_type"
	case KindExpired:
		return "expired"
	case KindExpiredConversation:
		return "expired_conversation"
	case KindMissingTextContent:
		return "missing_text_content"
	default:
		return "unknown"
	}
}

// Error is a protocol failure with a Kind classification. Callers use
// errors.As to extract the structured information:
//
//	var protoErr *protoerr.Error
//	if errors.As(err, &protoErr) {
//	    if protoErr.Kind == protoerr.KindExpired { ... }
//	}
//
// or the IsKind helper for a single-kind check.
type Error struct {
	// Kind classifies the failure.
	Kind Kind
	// Message is the human-readable description.
	Message string
	// Err is the wrapped cause, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause for errors.Is/errors.As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error with the given kind and formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error with the given kind, formatted message, and
// wrapped cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// IsKind checks whether err is (or wraps) a *Error with the given kind.
func IsKind(err error, kind Kind) bool {
	var protoErr *Error
	if errors.As(err, &protoErr) {
		return protoErr.Kind == kind
	}
	return false
}

// KindOf returns the Kind of err, or KindUnknown if err carries no
// classification.
func KindOf(err error) Kind {
	var protoErr *Error
	if errors.As(err, &protoErr) {
		return protoErr.Kind
	}
	return KindUnknown
}
