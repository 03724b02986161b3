// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/convos-chat/convoskit/lib/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if len(os.Args) < 2 {
		printUsage()
		return fmt.Errorf("subcommand required")
	}

	switch os.Args[1] {
	case "mint":
		return runMint(os.Args[2:])
	case "inspect":
		return runInspect(os.Args[2:])
	case "metadata":
		return runMetadata(os.Args[2:])
	case "-h", "--help", "help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown subcommand: %q", os.Args[1])
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: convos-invite <subcommand> [flags]

Subcommands:
  mint       Create a signed invite for a conversation and print its links
  inspect    Decode an invite slug or link and verify its signature
  metadata   Encode or decode the group metadata field

Run 'convos-invite <subcommand> --help' for subcommand flags.
`)
}

// loadConfig resolves the config from --config when given, otherwise
// from CONVOS_CONFIG.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// loadKey reads a secp256k1 private key file: either 32 raw bytes or
// 64 hex characters (surrounding whitespace ignored).
func loadKey(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading key file: %w", err)
	}
	trimmed := strings.TrimSpace(string(data))
	if len(trimmed) == 64 {
		key, err := hex.DecodeString(trimmed)
		if err == nil {
			return key, nil
		}
	}
	if len(data) == 32 {
		return data, nil
	}
	return nil, fmt.Errorf("key file %s is neither 32 raw bytes nor 64 hex characters", path)
}
