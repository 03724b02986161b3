// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/convos-chat/convoskit/invite"
)

func runMetadata(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: convos-invite metadata <encode|decode> [flags]")
	}
	switch args[0] {
	case "encode":
		return runMetadataEncode(args[1:])
	case "decode":
		return runMetadataDecode(args[1:])
	default:
		return fmt.Errorf("unknown metadata action: %q (want encode or decode)", args[0])
	}
}

func runMetadataEncode(args []string) error {
	var (
		tag       string
		expiresIn time.Duration
	)

	flags := pflag.NewFlagSet("metadata encode", pflag.ContinueOnError)
	flags.StringVar(&tag, "tag", "", "correlation tag (required)")
	flags.DurationVar(&expiresIn, "expires-in", 0, "conversation lifetime (default: no expiry)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if tag == "" {
		return fmt.Errorf("--tag is required")
	}

	metadata := &invite.Metadata{Tag: tag}
	if expiresIn > 0 {
		metadata.ExpiresAt = time.Now().Add(expiresIn).Unix()
	}
	field, err := metadata.EncodeField()
	if err != nil {
		return err
	}
	fmt.Println(field)
	return nil
}

func runMetadataDecode(args []string) error {
	flags := pflag.NewFlagSet("metadata decode", pflag.ContinueOnError)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return fmt.Errorf("usage: convos-invite metadata decode <field-value>")
	}

	metadata, err := invite.ParseMetadataField(flags.Arg(0))
	if err != nil {
		return err
	}
	fmt.Printf("tag:     %s\n", metadata.Tag)
	fmt.Printf("expiry:  %s\n", expiryStatus(metadata.ExpiresAt, time.Now()))
	for _, profile := range metadata.Profiles {
		fmt.Printf("member:  %s", profile.InboxID)
		if profile.Name != "" {
			fmt.Printf(" (%s)", profile.Name)
		}
		fmt.Println()
	}
	return nil
}
