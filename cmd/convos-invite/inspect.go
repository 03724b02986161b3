// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/convos-chat/convoskit/invite"
	"github.com/convos-chat/convoskit/lib/recsig"
)

func runInspect(args []string) error {
	var keyFile string

	flags := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
	flags.StringVar(&keyFile, "key", "", "private key file; when set, also verify the signature binds to this key and open the conversation token")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return fmt.Errorf("usage: convos-invite inspect [flags] <slug-or-link>")
	}

	raw := flags.Arg(0)
	slug, ok := invite.SlugFromLink(raw)
	if !ok {
		slug = raw
	}
	signed, err := invite.FromURLSlug(slug)
	if err != nil {
		return err
	}

	payload := signed.Payload
	fmt.Printf("tag:              %s\n", payload.Tag)
	fmt.Printf("creator inbox:    %s\n", payload.CreatorIDString())
	if payload.Name != "" {
		fmt.Printf("name:             %s\n", payload.Name)
	}
	if payload.Description != "" {
		fmt.Printf("description:      %s\n", payload.Description)
	}
	if payload.ImageURL != "" {
		fmt.Printf("image url:        %s\n", payload.ImageURL)
	}
	fmt.Printf("single use:       %t\n", payload.ExpiresAfterUse)

	now := time.Now()
	fmt.Printf("invite expiry:    %s\n", expiryStatus(payload.ExpiresAt, now))
	fmt.Printf("conv expiry:      %s\n", expiryStatus(payload.ConversationExpiresAt, now))

	signer, err := signed.RecoverSigner()
	if err != nil {
		return err
	}
	fmt.Printf("signature:        valid (signer %s)\n",
		hex.EncodeToString(signer.SerializeCompressed()))

	if keyFile != "" {
		key, err := loadKey(keyFile)
		if err != nil {
			return err
		}
		expected, err := recsig.PublicKeyFromPrivate(key)
		if err != nil {
			return err
		}
		if err := signed.Verify(expected); err != nil {
			return fmt.Errorf("signature does not bind to the given key: %w", err)
		}
		fmt.Printf("key binding:      valid\n")

		conversationID, err := signed.OpenConversationID(payload.CreatorIDString(), key)
		if err != nil {
			return fmt.Errorf("opening conversation token: %w", err)
		}
		fmt.Printf("conversation id:  %s\n", conversationID)
	}
	return nil
}

func expiryStatus(expiresAt int64, now time.Time) string {
	if expiresAt == 0 {
		return "never"
	}
	at := time.Unix(expiresAt, 0).UTC()
	if expiresAt < now.Unix() {
		return fmt.Sprintf("EXPIRED (%s)", at.Format(time.RFC3339))
	}
	return at.Format(time.RFC3339)
}
