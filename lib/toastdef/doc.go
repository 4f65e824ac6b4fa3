// Copyright 2026 The GLPI Notifier Authors
// SPDX-License-Identifier: Apache-2.0

// Package toastdef parses toast profile files.
//
// A profile customizes how notifications are presented: button label,
// duration, logo, and the URL opened when the button is pressed. The
// format is JSON with comments (JSONC) so operators can annotate their
// deployment files. Profiles are optional; an absent file means the
// built-in presentation.
package toastdef
