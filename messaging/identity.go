// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"fmt"

	"github.com/convos-chat/convoskit/lib/secret"
)

// Identity is an inbox identity: the identifier a participant is known
// by on the transport, paired with the secp256k1 private key that
// signs and decrypts on its behalf. The key lives in a secret.Buffer
// (mmap-backed, locked against swap, excluded from core dumps).
//
// The caller must call Close when the identity is no longer needed.
type Identity struct {
	inboxID    string
	privateKey *secret.Buffer
}

// NewIdentity wraps an inbox id and raw private key bytes. The key
// bytes are copied into protected memory and the caller's slice is
// zeroed in place.
func NewIdentity(inboxID string, privateKey []byte) (*Identity, error) {
	if inboxID == "" {
		return nil, fmt.Errorf("messaging: inbox id is required")
	}
	if len(privateKey) == 0 {
		return nil, fmt.Errorf("messaging: private key is required")
	}
	buffer, err := secret.NewFromBytes(privateKey)
	if err != nil {
		return nil, fmt.Errorf("messaging: protecting private key: %w", err)
	}
	return &Identity{inboxID: inboxID, privateKey: buffer}, nil
}

// InboxID returns the inbox identifier.
func (id *Identity) InboxID() string {
	return id.inboxID
}

// PrivateKeyBytes borrows the raw private key. The slice points into
// protected memory — do not retain it past the call that needs it, and
// never after Close. Returns an error instead of panicking when the
// identity has been closed, so a message-processing loop can abort the
// single message rather than the batch.
func (id *Identity) PrivateKeyBytes() ([]byte, error) {
	if id.privateKey.Closed() {
		return nil, fmt.Errorf("messaging: identity %s has been closed", id.inboxID)
	}
	return id.privateKey.Bytes(), nil
}

// Close releases the private key memory. Idempotent.
func (id *Identity) Close() error {
	return id.privateKey.Close()
}
