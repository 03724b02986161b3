// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeKeyFile(t *testing.T, contents []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.key")
	if err := os.WriteFile(path, contents, 0o600); err != nil {
		t.Fatalf("writing key file: %v", err)
	}
	return path
}

func TestLoadKey(t *testing.T) {
	raw := bytes.Repeat([]byte{0x42}, 32)

	key, err := loadKey(writeKeyFile(t, raw))
	if err != nil {
		t.Fatalf("loadKey(raw) error: %v", err)
	}
	if !bytes.Equal(key, raw) {
		t.Errorf("raw key = %x", key)
	}

	key, err = loadKey(writeKeyFile(t, []byte(hex.EncodeToString(raw)+"\n")))
	if err != nil {
		t.Fatalf("loadKey(hex) error: %v", err)
	}
	if !bytes.Equal(key, raw) {
		t.Errorf("hex key = %x", key)
	}

	if _, err := loadKey(writeKeyFile(t, []byte("too short"))); err == nil {
		t.Error("loadKey accepted a malformed key file")
	}
}

func TestExpiryStatus(t *testing.T) {
	now := time.Unix(1700000000, 0)

	if got := expiryStatus(0, now); got != "never" {
		t.Errorf("zero expiry = %q", got)
	}
	if got := expiryStatus(now.Unix()-1, now); got[:7] != "EXPIRED" {
		t.Errorf("past expiry = %q", got)
	}
	if got := expiryStatus(now.Unix()+3600, now); got[:7] == "EXPIRED" {
		t.Errorf("future expiry = %q", got)
	}
}
