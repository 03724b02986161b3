// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

package recsig

import (
	"crypto/sha256"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/convos-chat/convoskit/lib/protoerr"
)

const (
	// SignatureSize is the length of a recoverable signature:
	// r(32) || s(32) || recoveryID(1).
	SignatureSize = 65

	// PrivateKeySize is the length of a raw secp256k1 private key.
	PrivateKeySize = 32

	// compactHeaderBase is the header byte offset of the compact
	// signature format used internally for recovery: 27 for the base,
	// plus 4 because the signer's public key is always treated as
	// compressed.
	compactHeaderBase = 27 + 4
)

// ParsePrivateKey validates raw private key bytes and returns the
// parsed key. The bytes must be exactly 32 bytes and represent a
// non-zero scalar within the curve order.
func ParsePrivateKey(privateKey []byte) (*secp256k1.PrivateKey, error) {
	if len(privateKey) != PrivateKeySize {
		return nil, protoerr.New(protoerr.KindBadKeyMaterial, "private key is %d bytes, want %d", len(privateKey), PrivateKeySize)
	}
	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(privateKey); overflow {
		return nil, protoerr.New(protoerr.KindBadKeyMaterial, "private key is not within the curve order")
	}
	if scalar.IsZero() {
		return nil, protoerr.New(protoerr.KindBadKeyMaterial, "private key is the zero scalar")
	}
	return secp256k1.NewPrivateKey(&scalar), nil
}

// PublicKeyFromPrivate derives the public key for raw private key
// bytes. The matcher and join-request processor use this to obtain the
// expected signer key for signature binding.
func PublicKeyFromPrivate(privateKey []byte) (*secp256k1.PublicKey, error) {
	parsed, err := ParsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	return parsed.PubKey(), nil
}

// Sign produces a 65-byte recoverable ECDSA signature over
// SHA-256(payload) with the secp256k1 curve. The final byte is the
// recovery id, found by brute force: each candidate in 0..3 is used to
// recover a public key from (r, s), and the candidate whose recovered
// key matches the signer's actual public key wins.
//
// A failed search means the signature arithmetic itself is broken, not
// that the input is bad; that case returns a plain error and must be
// treated as fatal by the caller.
func Sign(payload, privateKey []byte) ([]byte, error) {
	parsed, err := ParsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}

	digest := sha256.Sum256(payload)
	compact := secpecdsa.SignCompact(parsed, digest[:], true)

	signature := make([]byte, SignatureSize)
	copy(signature[:64], compact[1:])

	signerKey := parsed.PubKey()
	for candidate := byte(0); candidate < 4; candidate++ {
		compact[0] = compactHeaderBase + candidate
		recovered, _, err := secpecdsa.RecoverCompact(compact, digest[:])
		if err != nil {
			// Not every (r, candidate) pair maps to a curve point.
			continue
		}
		if recovered.IsEqual(signerKey) {
			signature[64] = candidate
			return signature, nil
		}
	}

	return nil, fmt.Errorf("recsig: no recovery id reproduces the signer public key")
}

// RecoverPublicKey recovers the signer's public key from a 65-byte
// recoverable signature and the payload it covers. Malformed
// signatures are rejected before any curve arithmetic runs; curve
// failures during recovery surface as KindInvalidSignature, never as a
// panic.
func RecoverPublicKey(payload, signature []byte) (*secp256k1.PublicKey, error) {
	if len(signature) != SignatureSize {
		return nil, protoerr.New(protoerr.KindInvalidSignature, "signature is %d bytes, want %d", len(signature), SignatureSize)
	}
	recoveryID := signature[64]
	if recoveryID > 3 {
		return nil, protoerr.New(protoerr.KindInvalidSignature, "recovery id %d out of range", recoveryID)
	}

	compact := make([]byte, SignatureSize)
	compact[0] = compactHeaderBase + recoveryID
	copy(compact[1:], signature[:64])

	digest := sha256.Sum256(payload)
	recovered, _, err := secpecdsa.RecoverCompact(compact, digest[:])
	if err != nil {
		return nil, protoerr.Wrap(protoerr.KindInvalidSignature, err, "public key recovery failed")
	}
	return recovered, nil
}

// Verify checks a recoverable signature over payload. Successful
// recovery proves the signature is a valid secp256k1 signature by
// SOME key; when expected is non-nil, the recovered key must also
// equal it, binding the signature to a specific signer. Passing nil
// accepts any self-consistent signature and exists only for the
// legacy compatibility path — the protocol always binds.
func Verify(payload, signature []byte, expected *secp256k1.PublicKey) error {
	recovered, err := RecoverPublicKey(payload, signature)
	if err != nil {
		return err
	}
	if expected != nil && !recovered.IsEqual(expected) {
		return protoerr.New(protoerr.KindInvalidSignature, "recovered public key does not match the expected signer")
	}
	return nil
}
