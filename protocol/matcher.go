// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"bytes"
	"context"
	"log/slog"
	"sync"

	"github.com/convos-chat/convoskit/invite"
	"github.com/convos-chat/convoskit/lib/clock"
	"github.com/convos-chat/convoskit/lib/protoerr"
	"github.com/convos-chat/convoskit/messaging"
)

// MatcherConfig configures a Matcher. Transport is required; the rest
// default sensibly.
type MatcherConfig struct {
	Transport messaging.Transport

	// Pending is the pending-invite table. Defaults to a fresh
	// MemoryPendingStore.
	Pending PendingStore

	// Clock supplies the current time for expiry checks. Defaults to
	// the real clock.
	Clock clock.Clock

	// Logger receives per-group resolution decisions. Defaults to
	// slog.Default.
	Logger *slog.Logger
}

// Matcher is the invite-holder's half of the join handshake. After
// sending a join request it records the invite in the pending table,
// then watches for the target group to become visible: CheckGroup
// resolves a group's correlation tag against the table, granting
// consent on a match and denying it otherwise.
//
// CheckGroup serializes its read-check-remove sequence under an
// internal mutex so two concurrent checks cannot both observe a
// pending entry and both emit a match.
type Matcher struct {
	transport messaging.Transport
	pending   PendingStore
	clock     clock.Clock
	logger    *slog.Logger
	events    *matchStream

	mu sync.Mutex
}

// NewMatcher builds a Matcher from the config.
func NewMatcher(cfg MatcherConfig) *Matcher {
	if cfg.Pending == nil {
		cfg.Pending = NewMemoryPendingStore()
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Matcher{
		transport: cfg.Transport,
		pending:   cfg.Pending,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
		events:    newMatchStream(),
	}
}

// RequestJoin validates the invite, sends its slug to the creator as a
// direct message, and records the invite in the pending table so the
// group can be matched when the creator admits us.
//
// The signature is verified without key binding here: the holder of a
// shared invite knows the creator only by the claimed inbox id, so the
// strongest available check is internal consistency. The creator
// re-verifies against its own key when it processes the request.
func (m *Matcher) RequestJoin(ctx context.Context, inv *invite.SignedInvite) error {
	now := m.clock.Now()
	if inv.Expired(now) {
		return protoerr.New(protoerr.KindExpired, "invite expired")
	}
	if inv.ConversationExpired(now) {
		return protoerr.New(protoerr.KindExpiredConversation, "target conversation expired")
	}
	if err := inv.Verify(nil); err != nil {
		return err
	}

	slug, err := inv.URLSlug()
	if err != nil {
		return err
	}
	creator := inv.Payload.CreatorIDString()
	if err := m.transport.SendDirectMessage(ctx, creator, slug); err != nil {
		return err
	}
	m.StorePendingInvite(inv)

	m.logger.Info("sent join request",
		"creator", creator,
		"tag", inv.Payload.Tag)
	return nil
}

// StorePendingInvite records an invite in the pending table without
// sending anything. Used when the join request was delivered out of
// band.
func (m *Matcher) StorePendingInvite(inv *invite.SignedInvite) {
	m.pending.Put(inv.Payload.Tag, inv)
}

// Matches subscribes to the matched-group event stream. The most
// recent match is replayed immediately, so subscribing after the match
// still observes it. The cancel func releases the subscription.
func (m *Matcher) Matches() (<-chan MatchEvent, func()) {
	return m.events.subscribe()
}

// CheckGroup resolves a newly visible group against the pending table
// and reports whether it matched. On a match the group's consent is
// set to allowed, the pending entry is removed, and a MatchEvent is
// published; otherwise consent is set to denied.
//
// Re-checking a group that has already been resolved is a no-op that
// reports the earlier outcome.
func (m *Matcher) CheckGroup(ctx context.Context, groupID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	group, err := m.transport.GroupByID(ctx, groupID)
	if err != nil {
		return false, err
	}

	// Already resolved: idempotent, no second emit.
	if group.Consent != messaging.ConsentUnknown {
		return group.Consent == messaging.ConsentAllowed, nil
	}

	tag := m.resolveTag(ctx, group)
	if tag != "" {
		if inv, ok := m.pending.Take(tag); ok {
			if inv.ConversationExpired(m.clock.Now()) {
				m.logger.Info("denying group: matched invite's conversation expired",
					"group", groupID, "tag", tag)
				return false, m.transport.SetGroupConsent(ctx, groupID, messaging.ConsentDenied)
			}
			if err := m.transport.SetGroupConsent(ctx, groupID, messaging.ConsentAllowed); err != nil {
				// Consent never changed, so the match has not
				// happened yet. Restore the entry for the retry.
				m.pending.Put(tag, inv)
				return false, err
			}
			m.logger.Info("matched group to pending invite", "group", groupID, "tag", tag)
			m.events.publish(MatchEvent{GroupID: groupID, Tag: tag, Invite: inv})
			return true, nil
		}
	}

	m.logger.Info("denying unmatched group", "group", groupID, "tag", tag)
	return false, m.transport.SetGroupConsent(ctx, groupID, messaging.ConsentDenied)
}

// CheckNewGroups runs CheckGroup over every visible group whose
// consent is still unknown. Per-group failures are logged and do not
// abort the sweep. Returns the ids of the groups that matched.
func (m *Matcher) CheckNewGroups(ctx context.Context) ([]string, error) {
	groups, err := m.transport.ListGroups(ctx)
	if err != nil {
		return nil, err
	}

	var matched []string
	for _, group := range groups {
		if group.Consent != messaging.ConsentUnknown {
			continue
		}
		ok, err := m.CheckGroup(ctx, group.ID)
		if err != nil {
			m.logger.Warn("checking group failed", "group", group.ID, "error", err)
			continue
		}
		if ok {
			matched = append(matched, group.ID)
		}
	}
	return matched, nil
}

// resolveTag extracts the correlation tag for a group, in priority
// order: the structured metadata field, the legacy encoding in the
// description, then the sole-pending-creator heuristic. Returns ""
// when no tag can be resolved.
func (m *Matcher) resolveTag(ctx context.Context, group *messaging.Group) string {
	if field, err := m.transport.ReadGroupMetadataField(ctx, group.ID); err != nil {
		m.logger.Warn("reading group metadata field failed", "group", group.ID, "error", err)
	} else if field != "" {
		if metadata, err := invite.ParseMetadataField(field); err == nil {
			return metadata.Tag
		}
	}

	// Older creators carried the encoded metadata in the description.
	if group.Description != "" {
		if metadata, err := invite.ParseMetadataField(group.Description); err == nil {
			return metadata.Tag
		}
	}

	return m.soleCreatorTag(ctx, group)
}

// soleCreatorTag is the lowest-priority fallback for creators that
// write no metadata at all: if exactly one pending invite's creator is
// among the identities that could have added this group, use its tag.
// Zero or multiple candidates resolve nothing.
func (m *Matcher) soleCreatorTag(ctx context.Context, group *messaging.Group) string {
	adders := []string{group.AddedByInboxID}
	if group.AddedByInboxID == "" {
		members, err := m.transport.GroupMembers(ctx, group.ID)
		if err != nil {
			m.logger.Warn("listing group members failed", "group", group.ID, "error", err)
			return ""
		}
		adders = members
	}

	var tag string
	count := 0
	m.pending.Each(func(candidate string, inv *invite.SignedInvite) bool {
		for _, adder := range adders {
			if bytes.Equal(invite.InboxIDBytes(adder), inv.Payload.CreatorInboxID) {
				tag = candidate
				count++
				break
			}
		}
		return count < 2
	})
	if count != 1 {
		return ""
	}
	return tag
}
