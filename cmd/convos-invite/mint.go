// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/convos-chat/convoskit/invite"
)

func runMint(args []string) error {
	var (
		configPath     string
		conversationID string
		tag            string
		name           string
		description    string
		imageURL       string
		expiresIn      time.Duration
		convExpiresIn  time.Duration
		singleUse      bool
	)

	flags := pflag.NewFlagSet("mint", pflag.ContinueOnError)
	flags.StringVar(&configPath, "config", "", "config file (default: $CONVOS_CONFIG)")
	flags.StringVar(&conversationID, "conversation", "", "conversation id to invite into (required)")
	flags.StringVar(&tag, "tag", "", "correlation tag (default: random UUID)")
	flags.StringVar(&name, "name", "", "display name carried in the invite")
	flags.StringVar(&description, "description", "", "description carried in the invite")
	flags.StringVar(&imageURL, "image-url", "", "image URL carried in the invite")
	flags.DurationVar(&expiresIn, "expires-in", 0, "invite lifetime, e.g. 72h (default: no expiry)")
	flags.DurationVar(&convExpiresIn, "conversation-expires-in", 0, "conversation lifetime (default: no expiry)")
	flags.BoolVar(&singleUse, "single-use", false, "mark the invite as expiring after first use")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if conversationID == "" {
		return fmt.Errorf("--conversation is required")
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	key, err := loadKey(cfg.KeyFile)
	if err != nil {
		return err
	}

	if tag == "" {
		tag = invite.NewTag()
	}
	opts := invite.Options{
		Name:            name,
		Description:     description,
		ImageURL:        imageURL,
		ExpiresAfterUse: singleUse,
	}
	now := time.Now()
	if expiresIn > 0 {
		opts.ExpiresAt = now.Add(expiresIn)
	}
	if convExpiresIn > 0 {
		opts.ConversationExpiresAt = now.Add(convExpiresIn)
	}

	signed, err := invite.New(conversationID, cfg.InboxID, key, tag, opts)
	if err != nil {
		return err
	}
	slug, err := signed.URLSlug()
	if err != nil {
		return err
	}

	fmt.Printf("tag:      %s\n", tag)
	fmt.Printf("slug:     %s\n", slug)
	fmt.Printf("app link: %s\n", invite.AppLink(cfg.Link.Scheme, slug))
	fmt.Printf("web link: %s\n", invite.WebLink(cfg.Link.Host, slug))
	return nil
}
