// Copyright 2026 The GLPI Notifier Authors
// SPDX-License-Identifier: Apache-2.0

// Package glpi is a thin client for the GLPI REST API endpoints the
// notifier needs: session init/teardown, search-option introspection,
// and two ticket searches. It is deliberately not a general GLPI
// client — every operation is read-only and shaped for detecting and
// describing newly created tickets.
//
// Sessions are lazy: any query on a client without a session token
// authenticates first. After a failed cycle the poller calls
// DropSession so the next cycle starts with fresh authentication
// rather than reusing a possibly stale token.
package glpi
