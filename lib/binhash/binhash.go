// Copyright 2026 The GLPI Notifier Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash identifies the running notifier build. The heartbeat
// file records the SHA256 of the executable so an operator reading a
// liveness report can tell exactly which binary produced it, without
// trusting version strings that survive a botched deploy.
package binhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// HashFile computes the SHA256 digest of the file at path, streamed in
// chunks so memory usage stays constant regardless of binary size.
func HashFile(path string) ([32]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return [32]byte{}, fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return [32]byte{}, fmt.Errorf("hashing %s: %w", path, err)
	}

	var digest [32]byte
	copy(digest[:], hasher.Sum(nil))
	return digest, nil
}

// SelfDigest hashes the currently running executable and returns the
// hex form. Returns an empty string with an error when the executable
// path cannot be resolved (the heartbeat writer treats that as
// "unknown build" rather than failing the cycle).
func SelfDigest() (string, error) {
	executable, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolving executable path: %w", err)
	}
	digest, err := HashFile(executable)
	if err != nil {
		return "", err
	}
	return FormatDigest(digest), nil
}

// FormatDigest returns the hex-encoded form of a SHA256 digest, the
// format used in heartbeat files and log output.
func FormatDigest(digest [32]byte) string {
	return hex.EncodeToString(digest[:])
}
