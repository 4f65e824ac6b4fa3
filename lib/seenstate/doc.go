// Copyright 2026 The GLPI Notifier Authors
// SPDX-License-Identifier: Apache-2.0

// Package seenstate persists the set of ticket ids the notifier has
// already announced.
//
// The set only grows: a ticket, once seen, is never forgotten, so a
// ticket leaving and re-entering the "new" status does not fire a
// second notification. Persistence is a single CBOR file written
// atomically (temp file, fsync, rename), so a crash mid-write leaves
// the previous snapshot intact. A missing file is not an error — it is
// the definition of a first run.
package seenstate
