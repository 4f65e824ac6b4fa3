// Copyright 2026 The GLPI Notifier Authors
// SPDX-License-Identifier: Apache-2.0

package seenstate

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/glpinotify/glpinotify/lib/codec"
)

// snapshot is the on-disk form. Ids are stored sorted so the encoding
// is deterministic and diffs of state files are readable.
type snapshot struct {
	Version int     `cbor:"version"`
	Seen    []int64 `cbor:"seen"`
}

const snapshotVersion = 1

// Set is the in-memory seen-set. Not safe for concurrent use; the
// polling loop is the only writer.
type Set struct {
	seen map[int64]struct{}

	// loadedEmpty records whether Load found no usable prior state,
	// which the poller interprets as a first run.
	loadedEmpty bool
}

// New returns an empty set, flagged as first-run.
func New() *Set {
	return &Set{seen: make(map[int64]struct{}), loadedEmpty: true}
}

// Load reads the set from path. A missing file yields an empty set
// with FirstRun true. The returned set is always usable: a file that
// exists but cannot be read or decoded also yields an empty first-run
// set, alongside a non-nil error describing the prior state that was
// discarded, so callers can warn and carry on. Empty-set first-run
// semantics then keep the backlog from replaying as notifications.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return New(), fmt.Errorf("seenstate: reading %s: %w", path, err)
	}

	var parsed snapshot
	if err := codec.Unmarshal(data, &parsed); err != nil {
		return New(), fmt.Errorf("seenstate: decoding %s: %w", path, err)
	}
	if parsed.Version != snapshotVersion {
		return New(), fmt.Errorf("seenstate: %s has unsupported version %d", path, parsed.Version)
	}

	set := &Set{seen: make(map[int64]struct{}, len(parsed.Seen))}
	for _, id := range parsed.Seen {
		set.seen[id] = struct{}{}
	}
	set.loadedEmpty = len(set.seen) == 0
	return set, nil
}

// Save writes the set to path atomically: encode, write to a temp file
// in the same directory, fsync, rename over the target, fsync the
// directory. Readers never observe a partial file.
func (set *Set) Save(path string) error {
	encoded, err := codec.Marshal(snapshot{
		Version: snapshotVersion,
		Seen:    set.IDs(),
	})
	if err != nil {
		return fmt.Errorf("seenstate: encoding: %w", err)
	}

	directory := filepath.Dir(path)
	temporary, err := os.CreateTemp(directory, ".seen-*.tmp")
	if err != nil {
		return fmt.Errorf("seenstate: creating temporary file: %w", err)
	}
	temporaryPath := temporary.Name()
	defer os.Remove(temporaryPath)

	if _, err := temporary.Write(encoded); err != nil {
		temporary.Close()
		return fmt.Errorf("seenstate: writing %s: %w", temporaryPath, err)
	}
	if err := temporary.Sync(); err != nil {
		temporary.Close()
		return fmt.Errorf("seenstate: syncing %s: %w", temporaryPath, err)
	}
	if err := temporary.Close(); err != nil {
		return fmt.Errorf("seenstate: closing %s: %w", temporaryPath, err)
	}
	if err := os.Chmod(temporaryPath, 0o600); err != nil {
		return fmt.Errorf("seenstate: setting mode on %s: %w", temporaryPath, err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		return fmt.Errorf("seenstate: renaming into place: %w", err)
	}
	if parent, err := os.Open(directory); err == nil {
		parent.Sync()
		parent.Close()
	}
	return nil
}

// Contains reports whether id has been seen.
func (set *Set) Contains(id int64) bool {
	_, ok := set.seen[id]
	return ok
}

// Add marks id as seen. Returns true when the id was new to the set.
func (set *Set) Add(id int64) bool {
	if _, ok := set.seen[id]; ok {
		return false
	}
	set.seen[id] = struct{}{}
	return true
}

// Len returns the number of seen ids.
func (set *Set) Len() int {
	return len(set.seen)
}

// FirstRun reports whether this set started from no prior state. It
// stays true for the life of the process even after ids are added.
func (set *Set) FirstRun() bool {
	return set.loadedEmpty
}

// IDs returns all seen ids in ascending order.
func (set *Set) IDs() []int64 {
	ids := make([]int64, 0, len(set.seen))
	for id := range set.seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
