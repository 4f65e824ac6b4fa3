// Copyright 2026 The GLPI Notifier Authors
// SPDX-License-Identifier: Apache-2.0

// Package poller drives the notifier's main loop.
//
// Each cycle queries the server for tickets in the "new" status,
// reconciles the result against the persisted seen-set, and delivers
// one toast per previously unseen ticket, newest first. The first run
// of a fresh install seeds the seen-set silently instead of replaying
// the server's entire backlog as notifications.
//
// Failures are absorbed: a failed cycle drops the session, records the
// error in the heartbeat file, and waits for the next interval. There
// is no backoff — the interval is the backoff. The one exception is a
// schema that lacks the mandatory ticket fields, which no amount of
// retrying will fix.
package poller
