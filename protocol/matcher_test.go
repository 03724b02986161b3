// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/convos-chat/convoskit/invite"
	"github.com/convos-chat/convoskit/lib/clock"
	"github.com/convos-chat/convoskit/lib/protoerr"
	"github.com/convos-chat/convoskit/lib/testutil"
	"github.com/convos-chat/convoskit/messaging"
)

const (
	testConversationID = "11111111-1111-1111-1111-111111111111"
	creatorInbox       = "abc123"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestKey(t *testing.T) []byte {
	t.Helper()
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generating private key: %v", err)
	}
	return key.Serialize()
}

func newTestInvite(t *testing.T, key []byte, tag string, opts invite.Options) *invite.SignedInvite {
	t.Helper()
	inv, err := invite.New(testConversationID, creatorInbox, key, tag, opts)
	if err != nil {
		t.Fatalf("creating invite: %v", err)
	}
	return inv
}

func metadataField(t *testing.T, tag string) string {
	t.Helper()
	field, err := (&invite.Metadata{Tag: tag}).EncodeField()
	if err != nil {
		t.Fatalf("encoding metadata: %v", err)
	}
	return field
}

func newTestMatcher(transport *fakeTransport) *Matcher {
	return NewMatcher(MatcherConfig{
		Transport: transport,
		Clock:     clock.Fake(time.Unix(1700000000, 0)),
		Logger:    quietLogger(),
	})
}

func TestMatcher_MetadataTagResolvesExactEntry(t *testing.T) {
	ctx := context.Background()
	key := newTestKey(t)
	transport := newFakeTransport()
	matcher := newTestMatcher(transport)

	inv1 := newTestInvite(t, key, "t1", invite.Options{})
	inv2 := newTestInvite(t, key, "t2", invite.Options{})
	matcher.StorePendingInvite(inv1)
	matcher.StorePendingInvite(inv2)

	transport.addGroup(messaging.Group{ID: "g1"})
	if err := transport.WriteGroupMetadataField(ctx, "g1", metadataField(t, "t1")); err != nil {
		t.Fatalf("writing metadata: %v", err)
	}

	events, cancel := matcher.Matches()
	defer cancel()

	matched, err := matcher.CheckGroup(ctx, "g1")
	if err != nil {
		t.Fatalf("CheckGroup error: %v", err)
	}
	if !matched {
		t.Fatal("group with pending tag t1 did not match")
	}
	if got := transport.groupConsent("g1"); got != messaging.ConsentAllowed {
		t.Errorf("group consent = %v, want allowed", got)
	}

	event := testutil.RequireReceive(t, events, time.Second, "waiting for match event")
	if event.GroupID != "g1" || event.Tag != "t1" {
		t.Errorf("event = %+v", event)
	}

	// t1 is consumed; t2 stays pending.
	if _, ok := matcher.pending.Take("t1"); ok {
		t.Error("t1 still pending after match")
	}
	if _, ok := matcher.pending.Take("t2"); !ok {
		t.Error("t2 consumed by an unrelated match")
	}
}

func TestMatcher_RecheckIsIdempotent(t *testing.T) {
	ctx := context.Background()
	key := newTestKey(t)
	transport := newFakeTransport()
	matcher := newTestMatcher(transport)

	matcher.StorePendingInvite(newTestInvite(t, key, "t1", invite.Options{}))
	transport.addGroup(messaging.Group{ID: "g1"})
	if err := transport.WriteGroupMetadataField(ctx, "g1", metadataField(t, "t1")); err != nil {
		t.Fatalf("writing metadata: %v", err)
	}

	events, cancel := matcher.Matches()
	defer cancel()

	if matched, err := matcher.CheckGroup(ctx, "g1"); err != nil || !matched {
		t.Fatalf("first CheckGroup = (%v, %v), want (true, nil)", matched, err)
	}
	testutil.RequireReceive(t, events, time.Second, "first match event")

	// Re-checking reports the earlier outcome without a second emit.
	if matched, err := matcher.CheckGroup(ctx, "g1"); err != nil || !matched {
		t.Fatalf("second CheckGroup = (%v, %v), want (true, nil)", matched, err)
	}
	testutil.RequireNoReceive(t, events, 50*time.Millisecond, "second emit for resolved group")
}

func TestMatcher_TransientConsentFailureKeepsEntryPending(t *testing.T) {
	ctx := context.Background()
	key := newTestKey(t)
	transport := newFakeTransport()
	matcher := newTestMatcher(transport)

	matcher.StorePendingInvite(newTestInvite(t, key, "t1", invite.Options{}))
	transport.addGroup(messaging.Group{ID: "g1"})
	if err := transport.WriteGroupMetadataField(ctx, "g1", metadataField(t, "t1")); err != nil {
		t.Fatalf("writing metadata: %v", err)
	}

	// The consent mutation fails once, then the transport recovers.
	transport.groupConsentFailures = 1

	if _, err := matcher.CheckGroup(ctx, "g1"); err == nil {
		t.Fatal("CheckGroup succeeded despite the consent failure")
	}
	if matcher.pending.Len() != 1 {
		t.Fatal("pending entry lost after a transient consent failure")
	}
	if got := transport.groupConsent("g1"); got != messaging.ConsentUnknown {
		t.Fatalf("group consent = %v after failed mutation, want unknown", got)
	}

	events, cancel := matcher.Matches()
	defer cancel()

	matched, err := matcher.CheckGroup(ctx, "g1")
	if err != nil {
		t.Fatalf("retry CheckGroup error: %v", err)
	}
	if !matched {
		t.Fatal("retry after transient consent failure did not match")
	}
	if got := transport.groupConsent("g1"); got != messaging.ConsentAllowed {
		t.Errorf("group consent = %v after retry, want allowed", got)
	}
	event := testutil.RequireReceive(t, events, time.Second, "match event on retry")
	if event.Tag != "t1" {
		t.Errorf("event tag = %q", event.Tag)
	}
}

func TestMatcher_LegacyDescriptionTag(t *testing.T) {
	ctx := context.Background()
	key := newTestKey(t)
	transport := newFakeTransport()
	matcher := newTestMatcher(transport)

	matcher.StorePendingInvite(newTestInvite(t, key, "t1", invite.Options{}))
	transport.addGroup(messaging.Group{ID: "g1", Description: metadataField(t, "t1")})

	matched, err := matcher.CheckGroup(ctx, "g1")
	if err != nil {
		t.Fatalf("CheckGroup error: %v", err)
	}
	if !matched {
		t.Error("description-carried tag did not match")
	}
}

func TestMatcher_SoleCreatorHeuristic(t *testing.T) {
	ctx := context.Background()
	key := newTestKey(t)
	transport := newFakeTransport()
	matcher := newTestMatcher(transport)

	matcher.StorePendingInvite(newTestInvite(t, key, "t1", invite.Options{}))

	// No metadata anywhere; the adder is the sole pending creator.
	transport.addGroup(messaging.Group{ID: "g1", AddedByInboxID: creatorInbox})

	matched, err := matcher.CheckGroup(ctx, "g1")
	if err != nil {
		t.Fatalf("CheckGroup error: %v", err)
	}
	if !matched {
		t.Error("sole-creator heuristic did not match")
	}
}

func TestMatcher_AmbiguousHeuristicDenies(t *testing.T) {
	ctx := context.Background()
	key := newTestKey(t)
	transport := newFakeTransport()
	matcher := newTestMatcher(transport)

	// Two pending invites from the same creator: ambiguous, no match.
	matcher.StorePendingInvite(newTestInvite(t, key, "t1", invite.Options{}))
	matcher.StorePendingInvite(newTestInvite(t, key, "t2", invite.Options{}))
	transport.addGroup(messaging.Group{ID: "g1", AddedByInboxID: creatorInbox})

	matched, err := matcher.CheckGroup(ctx, "g1")
	if err != nil {
		t.Fatalf("CheckGroup error: %v", err)
	}
	if matched {
		t.Error("ambiguous heuristic produced a match")
	}
	if got := transport.groupConsent("g1"); got != messaging.ConsentDenied {
		t.Errorf("group consent = %v, want denied", got)
	}
	if matcher.pending.Len() != 2 {
		t.Errorf("pending entries = %d, want 2 untouched", matcher.pending.Len())
	}
}

func TestMatcher_UnmatchedGroupDenied(t *testing.T) {
	ctx := context.Background()
	transport := newFakeTransport()
	matcher := newTestMatcher(transport)

	transport.addGroup(messaging.Group{ID: "g1"})
	if err := transport.WriteGroupMetadataField(context.Background(), "g1", metadataField(t, "unknown-tag")); err != nil {
		t.Fatalf("writing metadata: %v", err)
	}

	matched, err := matcher.CheckGroup(ctx, "g1")
	if err != nil {
		t.Fatalf("CheckGroup error: %v", err)
	}
	if matched {
		t.Error("unknown tag matched")
	}
	if got := transport.groupConsent("g1"); got != messaging.ConsentDenied {
		t.Errorf("group consent = %v, want denied", got)
	}
}

func TestMatcher_ExpiredConversationDenied(t *testing.T) {
	ctx := context.Background()
	key := newTestKey(t)
	transport := newFakeTransport()
	fake := clock.Fake(time.Unix(1700000000, 0))
	matcher := NewMatcher(MatcherConfig{Transport: transport, Clock: fake, Logger: quietLogger()})

	inv := newTestInvite(t, key, "t1", invite.Options{
		ConversationExpiresAt: fake.Now().Add(-time.Minute),
	})
	matcher.StorePendingInvite(inv)
	transport.addGroup(messaging.Group{ID: "g1"})
	if err := transport.WriteGroupMetadataField(ctx, "g1", metadataField(t, "t1")); err != nil {
		t.Fatalf("writing metadata: %v", err)
	}

	matched, err := matcher.CheckGroup(ctx, "g1")
	if err != nil {
		t.Fatalf("CheckGroup error: %v", err)
	}
	if matched {
		t.Error("expired conversation matched")
	}
	if got := transport.groupConsent("g1"); got != messaging.ConsentDenied {
		t.Errorf("group consent = %v, want denied", got)
	}
}

func TestMatcher_LateSubscriberSeesReplay(t *testing.T) {
	ctx := context.Background()
	key := newTestKey(t)
	transport := newFakeTransport()
	matcher := newTestMatcher(transport)

	matcher.StorePendingInvite(newTestInvite(t, key, "t1", invite.Options{}))
	transport.addGroup(messaging.Group{ID: "g1"})
	if err := transport.WriteGroupMetadataField(ctx, "g1", metadataField(t, "t1")); err != nil {
		t.Fatalf("writing metadata: %v", err)
	}
	if matched, err := matcher.CheckGroup(ctx, "g1"); err != nil || !matched {
		t.Fatalf("CheckGroup = (%v, %v)", matched, err)
	}

	// Subscribe only after the match happened.
	events, cancel := matcher.Matches()
	defer cancel()
	event := testutil.RequireReceive(t, events, time.Second, "replayed match event")
	if event.GroupID != "g1" || event.Tag != "t1" {
		t.Errorf("replayed event = %+v", event)
	}
}

func TestMatcher_CheckNewGroupsSweepsUnknownOnly(t *testing.T) {
	ctx := context.Background()
	key := newTestKey(t)
	transport := newFakeTransport()
	matcher := newTestMatcher(transport)

	matcher.StorePendingInvite(newTestInvite(t, key, "t1", invite.Options{}))
	transport.addGroup(messaging.Group{ID: "g1"})
	if err := transport.WriteGroupMetadataField(ctx, "g1", metadataField(t, "t1")); err != nil {
		t.Fatalf("writing metadata: %v", err)
	}
	transport.addGroup(messaging.Group{ID: "g2", Consent: messaging.ConsentAllowed})
	transport.addGroup(messaging.Group{ID: "g3"})

	matched, err := matcher.CheckNewGroups(ctx)
	if err != nil {
		t.Fatalf("CheckNewGroups error: %v", err)
	}
	if len(matched) != 1 || matched[0] != "g1" {
		t.Errorf("matched = %v, want [g1]", matched)
	}
	if got := transport.groupConsent("g2"); got != messaging.ConsentAllowed {
		t.Errorf("already-resolved group consent changed to %v", got)
	}
	if got := transport.groupConsent("g3"); got != messaging.ConsentDenied {
		t.Errorf("unmatched group consent = %v, want denied", got)
	}
}

func TestMatcher_RequestJoin(t *testing.T) {
	ctx := context.Background()
	key := newTestKey(t)
	transport := newFakeTransport()
	matcher := newTestMatcher(transport)

	inv := newTestInvite(t, key, "t1", invite.Options{})
	if err := matcher.RequestJoin(ctx, inv); err != nil {
		t.Fatalf("RequestJoin error: %v", err)
	}

	sent := transport.sentMessages()
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sent))
	}
	if sent[0].peerInboxID != creatorInbox {
		t.Errorf("join request sent to %q, want %q", sent[0].peerInboxID, creatorInbox)
	}
	parsed, err := invite.FromURLSlug(sent[0].text)
	if err != nil {
		t.Fatalf("sent text is not a slug: %v", err)
	}
	if parsed.Payload.Tag != "t1" {
		t.Errorf("sent tag = %q", parsed.Payload.Tag)
	}
	if _, ok := matcher.pending.Take("t1"); !ok {
		t.Error("invite not recorded as pending")
	}
}

func TestMatcher_RequestJoinRejectsExpired(t *testing.T) {
	ctx := context.Background()
	key := newTestKey(t)
	transport := newFakeTransport()
	fake := clock.Fake(time.Unix(1700000000, 0))
	matcher := NewMatcher(MatcherConfig{Transport: transport, Clock: fake, Logger: quietLogger()})

	inv := newTestInvite(t, key, "t1", invite.Options{ExpiresAt: fake.Now().Add(-time.Second)})
	err := matcher.RequestJoin(ctx, inv)
	if !protoerr.IsKind(err, protoerr.KindExpired) {
		t.Fatalf("RequestJoin error = %v, want expired", err)
	}
	if len(transport.sentMessages()) != 0 {
		t.Error("expired invite still sent a join request")
	}
	if matcher.pending.Len() != 0 {
		t.Error("expired invite recorded as pending")
	}
}
