// Copyright 2026 The GLPI Notifier Authors
// SPDX-License-Identifier: Apache-2.0

// Package heartbeat maintains the notifier's liveness file.
//
// Every completed poll cycle rewrites a small JSON document with the
// cycle timestamp and result. External monitoring (or a curious
// operator) reads it to tell a quietly healthy notifier apart from a
// hung one. The file is advisory: failure to write it is logged by the
// caller, never fatal.
package heartbeat

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Beat is one heartbeat record.
type Beat struct {
	// Timestamp is when the poll cycle finished, RFC 3339 UTC.
	Timestamp time.Time `json:"timestamp"`

	// OK reports whether the cycle completed without error.
	OK bool `json:"ok"`

	// NewCount is the number of tickets notified this cycle.
	NewCount int `json:"new_count"`

	// Error carries the cycle failure when OK is false.
	Error string `json:"error,omitempty"`

	// BinaryDigest is the hex SHA-256 of the running executable, so
	// monitoring can tell which build wrote the beat. Empty when the
	// digest could not be computed.
	BinaryDigest string `json:"binary_digest,omitempty"`
}

// Writer writes beats to a fixed path.
type Writer struct {
	path         string
	binaryDigest string
}

// NewWriter creates a Writer for path. The binary digest is computed
// once; it cannot change while the process runs.
func NewWriter(path, binaryDigest string) *Writer {
	return &Writer{path: path, binaryDigest: binaryDigest}
}

// Write replaces the heartbeat file with beat. The write is atomic so
// a reader never sees a truncated document.
func (writer *Writer) Write(beat Beat) error {
	beat.Timestamp = beat.Timestamp.UTC()
	beat.BinaryDigest = writer.binaryDigest

	encoded, err := json.MarshalIndent(beat, "", "  ")
	if err != nil {
		return fmt.Errorf("heartbeat: encoding: %w", err)
	}
	encoded = append(encoded, '\n')

	directory := filepath.Dir(writer.path)
	temporary, err := os.CreateTemp(directory, ".heartbeat-*.tmp")
	if err != nil {
		return fmt.Errorf("heartbeat: creating temporary file: %w", err)
	}
	temporaryPath := temporary.Name()
	defer os.Remove(temporaryPath)

	if _, err := temporary.Write(encoded); err != nil {
		temporary.Close()
		return fmt.Errorf("heartbeat: writing %s: %w", temporaryPath, err)
	}
	if err := temporary.Close(); err != nil {
		return fmt.Errorf("heartbeat: closing %s: %w", temporaryPath, err)
	}
	if err := os.Chmod(temporaryPath, 0o600); err != nil {
		return fmt.Errorf("heartbeat: setting mode on %s: %w", temporaryPath, err)
	}
	if err := os.Rename(temporaryPath, writer.path); err != nil {
		return fmt.Errorf("heartbeat: renaming into place: %w", err)
	}
	return nil
}

// Read loads a beat from path. Monitoring tools use this; the notifier
// itself only writes.
func Read(path string) (Beat, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Beat{}, fmt.Errorf("heartbeat: reading %s: %w", path, err)
	}
	var beat Beat
	if err := json.Unmarshal(data, &beat); err != nil {
		return Beat{}, fmt.Errorf("heartbeat: decoding %s: %w", path, err)
	}
	return beat, nil
}
