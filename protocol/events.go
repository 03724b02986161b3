// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"sync"

	"github.com/convos-chat/convoskit/invite"
)

// MatchEvent announces that a newly visible group was matched to a
// pending invite and its consent was set to allowed.
type MatchEvent struct {
	// GroupID is the matched conversation id.
	GroupID string
	// Tag is the correlation tag that resolved the match.
	Tag string
	// Invite is the pending invite the tag resolved to.
	Invite *invite.SignedInvite
}

// matchStream fans MatchEvents out to subscribers. The most recent
// event is cached and replayed to late subscribers, so a UI that
// attaches after the match still learns about it.
type matchStream struct {
	mu   sync.Mutex
	subs map[chan MatchEvent]struct{}
	last *MatchEvent
}

func newMatchStream() *matchStream {
	return &matchStream{subs: make(map[chan MatchEvent]struct{})}
}

// subscribe registers a new subscriber and replays the most recent
// event into it. The returned cancel func unregisters the subscriber
// and closes its channel; it is safe to call more than once.
func (s *matchStream) subscribe() (<-chan MatchEvent, func()) {
	ch := make(chan MatchEvent, 8)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	if s.last != nil {
		ch <- *s.last
	}
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, ch)
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// publish delivers the event to every subscriber and caches it for
// replay. A subscriber that has fallen 8 events behind misses this
// one; publish never blocks.
func (s *matchStream) publish(event MatchEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &event
	for ch := range s.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
