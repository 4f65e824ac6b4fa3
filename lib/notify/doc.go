// Copyright 2026 The GLPI Notifier Authors
// SPDX-License-Identifier: Apache-2.0

// Package notify delivers ticket notifications through an external
// toast helper process.
//
// The helper (SnoreToast or a compatible replacement) encodes what
// happened to the toast in its exit code: shown, hidden, dismissed,
// timed out, button pressed, or text entered. The notifier blocks
// until the helper exits, so a toast the user is looking at delays the
// next poll rather than piling up. A button press opens the ticket in
// the browser via the configured URL template.
package notify
