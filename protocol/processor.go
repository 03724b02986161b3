// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/convos-chat/convoskit/invite"
	"github.com/convos-chat/convoskit/lib/clock"
	"github.com/convos-chat/convoskit/lib/protoerr"
	"github.com/convos-chat/convoskit/lib/recsig"
	"github.com/convos-chat/convoskit/messaging"
)

// JoinResult reports one admitted join request.
type JoinResult struct {
	// ConversationID is the group the requester was admitted to.
	ConversationID string
	// Name is the group's display name.
	Name string
	// ChannelID is the direct channel the request arrived on.
	ChannelID string
	// PeerInboxID is the admitted requester.
	PeerInboxID string
}

// ProcessorConfig configures a Processor. Transport and Identity are
// required.
type ProcessorConfig struct {
	Transport messaging.Transport

	// Identity is the creator identity join requests are addressed
	// to. Its private key opens the conversation tokens it sealed.
	Identity *messaging.Identity

	// Clock supplies the current time for expiry checks. Defaults to
	// the real clock.
	Clock clock.Clock

	// Logger receives per-message decisions. Defaults to
	// slog.Default.
	Logger *slog.Logger
}

// Processor is the creator's half of the join handshake. It scans
// inbound direct channels for messages carrying an invite slug this
// identity signed, and on a valid request admits the sender to the
// referenced group.
type Processor struct {
	transport messaging.Transport
	identity  *messaging.Identity
	clock     clock.Clock
	logger    *slog.Logger
}

// NewProcessor builds a Processor from the config.
func NewProcessor(cfg ProcessorConfig) *Processor {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Processor{
		transport: cfg.Transport,
		identity:  cfg.Identity,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
	}
}

// PublishMetadata encodes the invite correlation metadata and writes
// it into the group's application-data field. The creator calls this
// at group-creation time; the invite holder's matcher reads it back to
// correlate the group with its pending invite.
func (p *Processor) PublishMetadata(ctx context.Context, groupID string, metadata *invite.Metadata) error {
	field, err := metadata.EncodeField()
	if err != nil {
		return err
	}
	return p.transport.WriteGroupMetadataField(ctx, groupID, field)
}

// ProcessJoinRequests syncs, lists direct channels (restricted to
// those created at or after since when non-nil), and scans each
// channel's peer messages for a valid join request. Channels are
// processed concurrently, one goroutine per channel; mutations for a
// given channel happen only inside its goroutine, and within a channel
// the first valid request wins.
//
// Rejected requests (expired, wrong creator, bad signature) deny the
// originating channel. Requests for groups whose consent is not yet
// allowed are skipped silently. A failure on one channel never aborts
// its siblings.
func (p *Processor) ProcessJoinRequests(ctx context.Context, since *time.Time) ([]JoinResult, error) {
	if err := p.transport.SyncConversations(ctx); err != nil {
		// Stale local state still lets us process what we already
		// have.
		p.logger.Warn("syncing conversations failed", "error", err)
	}

	channels, err := p.transport.ListDirectChannelsSince(ctx, since)
	if err != nil {
		return nil, err
	}

	results := make(chan JoinResult, len(channels))
	var wg sync.WaitGroup
	for _, channel := range channels {
		wg.Add(1)
		go func(channel messaging.DirectChannel) {
			defer wg.Done()
			if result := p.processChannel(ctx, channel); result != nil {
				results <- *result
			}
		}(channel)
	}
	wg.Wait()
	close(results)

	var admitted []JoinResult
	for result := range results {
		admitted = append(admitted, result)
	}
	return admitted, nil
}

// processChannel scans one channel's messages in delivery order and
// admits the first valid join request, if any.
func (p *Processor) processChannel(ctx context.Context, channel messaging.DirectChannel) *JoinResult {
	messages, err := p.transport.ChannelMessages(ctx, channel.ID)
	if err != nil {
		p.logger.Warn("listing channel messages failed", "channel", channel.ID, "error", err)
		return nil
	}

	for _, message := range messages {
		if message.SenderInboxID == p.identity.InboxID() {
			continue
		}
		inv, err := parseJoinRequest(message)
		if err != nil {
			// Ordinary conversation, not a join request.
			continue
		}

		result, admitted := p.handleRequest(ctx, channel, message.SenderInboxID, inv)
		if admitted {
			return result
		}
	}
	return nil
}

// parseJoinRequest extracts a signed invite from a message, accepting
// any of the deep-link carriers or a bare slug.
func parseJoinRequest(message messaging.Message) (*invite.SignedInvite, error) {
	if message.Text == "" {
		return nil, protoerr.New(protoerr.KindMissingTextContent, "message %s has no text content", message.ID)
	}
	slug, ok := invite.SlugFromLink(message.Text)
	if !ok {
		slug = message.Text
	}
	return invite.FromURLSlug(slug)
}

// handleRequest validates one parsed join request. The second return
// is true only when the sender was admitted; a nil-false return means
// the message was skipped or rejected and the scan continues.
func (p *Processor) handleRequest(ctx context.Context, channel messaging.DirectChannel, sender string, inv *invite.SignedInvite) (*JoinResult, bool) {
	logger := p.logger.With("channel", channel.ID, "sender", sender, "tag", inv.Payload.Tag)

	now := p.clock.Now()
	if inv.Expired(now) {
		logger.Info("rejecting join request: invite expired")
		p.denyChannel(ctx, channel.ID, logger)
		return nil, false
	}
	if inv.ConversationExpired(now) {
		logger.Info("rejecting join request: conversation expired")
		p.denyChannel(ctx, channel.ID, logger)
		return nil, false
	}

	// The request must carry an invite this identity minted.
	if !bytes.Equal(invite.InboxIDBytes(p.identity.InboxID()), inv.Payload.CreatorInboxID) {
		logger.Info("rejecting join request: creator id is not this identity",
			"creator", inv.Payload.CreatorIDString())
		p.denyChannel(ctx, channel.ID, logger)
		return nil, false
	}

	privateKey, err := p.identity.PrivateKeyBytes()
	if err != nil {
		// Identity closed underneath us; abort this message only.
		logger.Warn("private key unavailable", "error", err)
		return nil, false
	}
	signer, err := recsig.PublicKeyFromPrivate(privateKey)
	if err != nil {
		logger.Warn("deriving own public key failed", "error", err)
		return nil, false
	}
	if err := inv.Verify(signer); err != nil {
		logger.Info("rejecting join request: signature verification failed", "error", err)
		p.denyChannel(ctx, channel.ID, logger)
		return nil, false
	}

	conversationID, err := inv.OpenConversationID(p.identity.InboxID(), privateKey)
	if err != nil {
		logger.Info("rejecting join request: conversation token does not open", "error", err)
		p.denyChannel(ctx, channel.ID, logger)
		return nil, false
	}

	group, err := p.transport.GroupByID(ctx, conversationID)
	if err != nil {
		switch {
		case errors.Is(err, messaging.ErrGroupNotFound):
			logger.Info("skipping join request", "error",
				protoerr.Wrap(protoerr.KindConversationNotFound, err, "conversation %s is not visible", conversationID))
		case errors.Is(err, messaging.ErrNotAGroup):
			logger.Info("skipping join request", "error",
				protoerr.Wrap(protoerr.KindInvalidConversationType, err, "conversation %s is not a group", conversationID))
		default:
			logger.Warn("looking up conversation failed", "conversation", conversationID, "error", err)
		}
		return nil, false
	}

	// The creator must already have approved this conversation for
	// join requests. Anything else is "not yet", not a rejection.
	if group.Consent != messaging.ConsentAllowed {
		logger.Info("skipping join request: conversation consent not allowed",
			"conversation", conversationID, "consent", group.Consent)
		return nil, false
	}

	if err := p.transport.AddMembers(ctx, group.ID, []string{sender}); err != nil {
		logger.Warn("adding member failed", "conversation", group.ID, "error", err)
		return nil, false
	}
	if err := p.transport.SetChannelConsent(ctx, channel.ID, messaging.ConsentAllowed); err != nil {
		logger.Warn("allowing channel failed", "error", err)
	}

	logger.Info("admitted join request", "conversation", group.ID)
	return &JoinResult{
		ConversationID: group.ID,
		Name:           group.Name,
		ChannelID:      channel.ID,
		PeerInboxID:    sender,
	}, true
}

func (p *Processor) denyChannel(ctx context.Context, channelID string, logger *slog.Logger) {
	if err := p.transport.SetChannelConsent(ctx, channelID, messaging.ConsentDenied); err != nil {
		logger.Warn("denying channel failed", "error", err)
	}
}
