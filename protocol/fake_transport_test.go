// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/convos-chat/convoskit/messaging"
)

// fakeTransport is an in-memory messaging.Transport for protocol
// tests. All state mutations happen under one mutex so tests can
// exercise the concurrent paths.
type fakeTransport struct {
	mu       sync.Mutex
	groups   map[string]*messaging.Group
	members  map[string][]string
	metadata map[string]string
	channels map[string]*messaging.DirectChannel
	messages map[string][]messaging.Message
	sent     []sentMessage

	syncErr error
	syncs   int

	// groupConsentFailures makes the next N SetGroupConsent calls
	// fail, simulating a transient transport outage.
	groupConsentFailures int
}

type sentMessage struct {
	peerInboxID string
	text        string
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		groups:   make(map[string]*messaging.Group),
		members:  make(map[string][]string),
		metadata: make(map[string]string),
		channels: make(map[string]*messaging.DirectChannel),
		messages: make(map[string][]messaging.Message),
	}
}

func (f *fakeTransport) addGroup(group messaging.Group) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.groups[group.ID] = &group
}

func (f *fakeTransport) addChannel(channel messaging.DirectChannel, messages ...messaging.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels[channel.ID] = &channel
	f.messages[channel.ID] = append(f.messages[channel.ID], messages...)
}

func (f *fakeTransport) groupConsent(groupID string) messaging.ConsentState {
	f.mu.Lock()
	defer f.mu.Unlock()
	if group, ok := f.groups[groupID]; ok {
		return group.Consent
	}
	return messaging.ConsentUnknown
}

func (f *fakeTransport) channelConsent(channelID string) messaging.ConsentState {
	f.mu.Lock()
	defer f.mu.Unlock()
	if channel, ok := f.channels[channelID]; ok {
		return channel.Consent
	}
	return messaging.ConsentUnknown
}

func (f *fakeTransport) groupMembers(groupID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.members[groupID]...)
}

func (f *fakeTransport) sentMessages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

func (f *fakeTransport) SyncConversations(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncs++
	return f.syncErr
}

func (f *fakeTransport) SendDirectMessage(_ context.Context, peerInboxID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{peerInboxID: peerInboxID, text: text})
	return nil
}

func (f *fakeTransport) ListDirectChannelsSince(_ context.Context, since *time.Time) ([]messaging.DirectChannel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []messaging.DirectChannel
	for _, channel := range f.channels {
		if since != nil && channel.CreatedAt.Before(*since) {
			continue
		}
		out = append(out, *channel)
	}
	return out, nil
}

func (f *fakeTransport) ChannelMessages(_ context.Context, channelID string) ([]messaging.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]messaging.Message(nil), f.messages[channelID]...), nil
}

func (f *fakeTransport) ListGroups(context.Context) ([]messaging.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []messaging.Group
	for _, group := range f.groups {
		out = append(out, *group)
	}
	return out, nil
}

func (f *fakeTransport) GroupByID(_ context.Context, groupID string) (*messaging.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	group, ok := f.groups[groupID]
	if !ok {
		if _, isChannel := f.channels[groupID]; isChannel {
			return nil, messaging.ErrNotAGroup
		}
		return nil, messaging.ErrGroupNotFound
	}
	copied := *group
	return &copied, nil
}

func (f *fakeTransport) GroupMembers(_ context.Context, groupID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.groups[groupID]; !ok {
		return nil, messaging.ErrGroupNotFound
	}
	return append([]string(nil), f.members[groupID]...), nil
}

func (f *fakeTransport) AddMembers(_ context.Context, groupID string, inboxIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.groups[groupID]; !ok {
		return messaging.ErrGroupNotFound
	}
	f.members[groupID] = append(f.members[groupID], inboxIDs...)
	return nil
}

func (f *fakeTransport) SetGroupConsent(_ context.Context, groupID string, state messaging.ConsentState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.groupConsentFailures > 0 {
		f.groupConsentFailures--
		return fmt.Errorf("transient consent failure")
	}
	group, ok := f.groups[groupID]
	if !ok {
		return messaging.ErrGroupNotFound
	}
	group.Consent = state
	return nil
}

func (f *fakeTransport) SetChannelConsent(_ context.Context, channelID string, state messaging.ConsentState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	channel, ok := f.channels[channelID]
	if !ok {
		return fmt.Errorf("no channel %s", channelID)
	}
	channel.Consent = state
	return nil
}

func (f *fakeTransport) ReadGroupMetadataField(_ context.Context, groupID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.groups[groupID]; !ok {
		return "", messaging.ErrGroupNotFound
	}
	return f.metadata[groupID], nil
}

func (f *fakeTransport) WriteGroupMetadataField(_ context.Context, groupID, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.groups[groupID]; !ok {
		return messaging.ErrGroupNotFound
	}
	f.metadata[groupID] = value
	return nil
}

var _ messaging.Transport = (*fakeTransport)(nil)
