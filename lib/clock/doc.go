// Copyright 2026 The GLPI Notifier Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts the time operations the notifier needs so
// tests can run the polling loop without real sleeps. Production code
// injects Real(); tests inject a *FakeClock and advance it manually.
//
// The notifier is a single sequential loop, so the surface is small:
// Now for timestamps, Sleep for the one-second shutdown-check slices
// of the poll interval.
package clock
