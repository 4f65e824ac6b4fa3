// Copyright 2026 The GLPI Notifier Authors
// SPDX-License-Identifier: Apache-2.0

package seenstate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileIsFirstRun(t *testing.T) {
	set, err := Load(filepath.Join(t.TempDir(), "seen.cbor"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !set.FirstRun() {
		t.Error("a missing state file should mean first run")
	}
	if set.Len() != 0 {
		t.Errorf("Len = %d, want 0", set.Len())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.cbor")

	set := New()
	for _, id := range []int64{101, 100, 103} {
		if !set.Add(id) {
			t.Errorf("Add(%d) should report new", id)
		}
	}
	if set.Add(101) {
		t.Error("Add(101) twice should report already seen")
	}
	if err := set.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.FirstRun() {
		t.Error("a loaded non-empty set is not a first run")
	}
	if loaded.Len() != 3 {
		t.Errorf("Len = %d, want 3", loaded.Len())
	}
	for _, id := range []int64{100, 101, 103} {
		if !loaded.Contains(id) {
			t.Errorf("Contains(%d) = false", id)
		}
	}
	if loaded.Contains(102) {
		t.Error("Contains(102) = true for an id never added")
	}

	ids := loaded.IDs()
	if len(ids) != 3 || ids[0] != 100 || ids[1] != 101 || ids[2] != 103 {
		t.Errorf("IDs = %v, want ascending [100 101 103]", ids)
	}
}

func TestSaveLeavesNoTemporaryFiles(t *testing.T) {
	directory := t.TempDir()
	path := filepath.Join(directory, "seen.cbor")

	set := New()
	set.Add(7)
	if err := set.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	entries, err := os.ReadDir(directory)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".tmp") {
			t.Errorf("temporary file %s left behind", entry.Name())
		}
	}
}

func TestSaveIsPrivate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.cbor")
	set := New()
	set.Add(1)
	if err := set.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if mode := info.Mode().Perm(); mode != 0o600 {
		t.Errorf("mode = %o, want 600", mode)
	}
}

func TestLoadCorruptFileFallsBackToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.cbor")
	if err := os.WriteFile(path, []byte("not cbor at all"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	set, err := Load(path)
	if err == nil {
		t.Error("Load should report the discarded state")
	}
	if set == nil {
		t.Fatal("Load must still return a usable set")
	}
	if set.Len() != 0 || !set.FirstRun() {
		t.Errorf("set = %d ids, FirstRun %t; want an empty first-run set", set.Len(), set.FirstRun())
	}
}

func TestLoadedEmptySetIsFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.cbor")
	if err := New().Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	set, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !set.FirstRun() {
		t.Error("an empty persisted set still counts as first run")
	}
}
