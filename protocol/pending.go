// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"sync"

	"github.com/convos-chat/convoskit/invite"
)

// PendingStore holds invites this client has requested to join, keyed
// by tag, until the creator admits us and the matching group becomes
// visible. The table is deliberately ephemeral: entries survive only
// for the life of the process, never longer.
//
// Implementations must be safe for concurrent use. The matcher
// additionally serializes its own read-check-remove sequences, so a
// store does not need compare-and-swap semantics beyond per-call
// atomicity.
type PendingStore interface {
	// Put records a pending invite under its tag, replacing any
	// previous entry with the same tag.
	Put(tag string, inv *invite.SignedInvite)

	// Take removes and returns the entry for tag, or returns false
	// when no such entry exists.
	Take(tag string) (*invite.SignedInvite, bool)

	// Each calls fn for every entry until fn returns false. The
	// iteration order is unspecified.
	Each(fn func(tag string, inv *invite.SignedInvite) bool)

	// Len reports the number of pending entries.
	Len() int
}

// MemoryPendingStore is the in-memory PendingStore.
type MemoryPendingStore struct {
	mu      sync.Mutex
	entries map[string]*invite.SignedInvite
}

// NewMemoryPendingStore returns an empty in-memory store.
func NewMemoryPendingStore() *MemoryPendingStore {
	return &MemoryPendingStore{entries: make(map[string]*invite.SignedInvite)}
}

func (s *MemoryPendingStore) Put(tag string, inv *invite.SignedInvite) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[tag] = inv
}

func (s *MemoryPendingStore) Take(tag string) (*invite.SignedInvite, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.entries[tag]
	if ok {
		delete(s.entries, tag)
	}
	return inv, ok
}

func (s *MemoryPendingStore) Each(fn func(tag string, inv *invite.SignedInvite) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for tag, inv := range s.entries {
		if !fn(tag, inv) {
			return
		}
	}
}

func (s *MemoryPendingStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
