// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

package token

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/convos-chat/convoskit/lib/armor"
	"github.com/convos-chat/convoskit/lib/protoerr"
)

const (
	// Version is the only sealed-token version this implementation
	// produces or accepts.
	Version byte = 1

	// KeySize is the derived symmetric key length.
	KeySize = chacha20poly1305.KeySize

	// NonceSize is the random nonce length carried in each token.
	NonceSize = chacha20poly1305.NonceSize

	// saltV1 is the fixed HKDF salt for version 1 tokens. A protocol
	// constant shared with every peer implementation.
	saltV1 = "ConvosInviteV1"

	// infoPrefix prefixes the creator inbox id in the HKDF info
	// string, binding the derived key to the identity context: the
	// same private key yields a different symmetric key per inbox.
	infoPrefix = "inbox:"

	// minSealedSize is version(1) + nonce(12) + the smallest possible
	// packed conversation id (3 bytes) + the Poly1305 tag (16).
	minSealedSize = 1 + NonceSize + minPackedSize + chacha20poly1305.Overhead
)

// DeriveKey derives the per-creator, per-inbox symmetric key:
// HKDF-SHA256 with the private key as secret, the fixed protocol salt,
// and "inbox:"+creatorInboxID as info.
func DeriveKey(privateKey []byte, creatorInboxID string) ([]byte, error) {
	if len(privateKey) == 0 {
		return nil, protoerr.New(protoerr.KindBadKeyMaterial, "empty private key")
	}
	reader := hkdf.New(sha256.New, privateKey, []byte(saltV1), []byte(infoPrefix+creatorInboxID))
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, protoerr.Wrap(protoerr.KindBadKeyMaterial, err, "HKDF expansion failed")
	}
	return key, nil
}

// Seal encrypts a conversation id under the creator's derived key and
// returns the binary token: version(1) || nonce(12) || ciphertext+tag.
// The creator inbox id is bound as AEAD associated data, so a token
// presented under a different claimed creator fails authentication.
func Seal(conversationID, creatorInboxID string, privateKey []byte) ([]byte, error) {
	plaintext, err := packConversationID(conversationID)
	if err != nil {
		return nil, err
	}

	key, err := DeriveKey(privateKey, creatorInboxID)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, protoerr.Wrap(protoerr.KindBadKeyMaterial, err, "constructing AEAD")
	}

	sealed := make([]byte, 1+NonceSize, 1+NonceSize+len(plaintext)+chacha20poly1305.Overhead)
	sealed[0] = Version
	if _, err := rand.Read(sealed[1 : 1+NonceSize]); err != nil {
		return nil, fmt.Errorf("token: reading nonce: %w", err)
	}

	return aead.Seal(sealed, sealed[1:1+NonceSize], plaintext, []byte(creatorInboxID)), nil
}

// Open authenticates and decrypts a token produced by Seal, returning
// the conversation id. The same creator inbox id and private key used
// at seal time are required; any mismatch, truncation, or tampering
// surfaces as a typed error rather than a wrong-but-plausible id.
func Open(sealed []byte, creatorInboxID string, privateKey []byte) (string, error) {
	if len(sealed) == 0 {
		return "", protoerr.New(protoerr.KindMissingVersion, "empty sealed token")
	}
	if len(sealed) < minSealedSize {
		return "", protoerr.New(protoerr.KindInvalidFormat, "sealed token is %d bytes, minimum is %d", len(sealed), minSealedSize)
	}
	if sealed[0] != Version {
		return "", protoerr.New(protoerr.KindUnsupportedVersion, "sealed token version %d, want %d", sealed[0], Version)
	}

	key, err := DeriveKey(privateKey, creatorInboxID)
	if err != nil {
		return "", err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return "", protoerr.Wrap(protoerr.KindBadKeyMaterial, err, "constructing AEAD")
	}

	nonce := sealed[1 : 1+NonceSize]
	ciphertext := sealed[1+NonceSize:]
	plaintext, err := aead.Open(nil, nonce, ciphertext, []byte(creatorInboxID))
	if err != nil {
		return "", protoerr.Wrap(protoerr.KindCryptoOpenFailed, err, "token authentication failed")
	}

	return unpackConversationID(plaintext)
}

// SealString seals a conversation id and returns the URL-safe encoded
// token string, the form that travels inside shareable links.
func SealString(conversationID, creatorInboxID string, privateKey []byte) (string, error) {
	sealed, err := Seal(conversationID, creatorInboxID, privateKey)
	if err != nil {
		return "", err
	}
	return armor.Encode(sealed), nil
}

// OpenString reverses SealString.
func OpenString(tokenString, creatorInboxID string, privateKey []byte) (string, error) {
	sealed, err := armor.Decode(tokenString)
	if err != nil {
		return "", err
	}
	return Open(sealed, creatorInboxID, privateKey)
}
