// Copyright 2026 The GLPI Notifier Authors
// SPDX-License-Identifier: Apache-2.0

package binhash

import (
	"crypto/sha256"
	"os"
	"path/filepath"
	"testing"
)

func TestHashFile(t *testing.T) {
	content := []byte("notifier build payload")
	path := filepath.Join(t.TempDir(), "binary")
	if err := os.WriteFile(path, content, 0755); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}

	want := sha256.Sum256(content)
	if got != want {
		t.Errorf("HashFile = %x, want %x", got, want)
	}
}

func TestHashFileMissing(t *testing.T) {
	_, err := HashFile(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Fatal("HashFile of missing file should fail")
	}
}

func TestFormatDigestLength(t *testing.T) {
	digest := sha256.Sum256([]byte("x"))
	formatted := FormatDigest(digest)
	if len(formatted) != 64 {
		t.Errorf("FormatDigest length = %d, want 64", len(formatted))
	}
}

func TestSelfDigest(t *testing.T) {
	digest, err := SelfDigest()
	if err != nil {
		t.Fatalf("SelfDigest: %v", err)
	}
	if len(digest) != 64 {
		t.Errorf("SelfDigest length = %d, want 64", len(digest))
	}
}
